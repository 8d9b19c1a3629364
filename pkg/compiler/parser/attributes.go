package parser

import (
	"regexp"
	"strings"

	"github.com/recera/vtc/pkg/compiler/ast"
)

// directiveRE splits a directive attribute name into name, argument and
// modifiers: v-on:click.stop, :title, @submit.prevent, #default, v-bind:[key]
var directiveRE = regexp.MustCompile(`(?i)^(?:v-([a-z0-9-]+))?(?:(?::|^@|^#)(\[[^\]]+\]|[^.]+))?(.+)?$`)

// parseAttributes parses attributes and directives up to the end of a start tag
func (p *Parser) parseAttributes() []ast.PropNode {
	var props []ast.PropNode
	seen := make(map[string]bool)

	for {
		p.skipWhitespace()
		if p.eof() || p.peek(">") || p.peek("/>") {
			break
		}
		if p.peek("/") {
			p.advance()
			continue
		}

		prop := p.parseAttribute()
		if attr, ok := prop.(*ast.Attribute); ok {
			if seen[attr.Name] {
				p.errorf(attr.Loc, "duplicate attribute %q", attr.Name)
			}
			seen[attr.Name] = true
		}
		props = append(props, prop)
	}

	return props
}

type attrValue struct {
	raw     string             // value without quotes
	loc     ast.SourceLocation // including quotes
	content ast.SourceLocation // excluding quotes
}

// parseAttribute parses one name[=value] pair
func (p *Parser) parseAttribute() ast.PropNode {
	start := p.cursor()

	// a leading '=' is taken as part of the name
	p.advance()
	for !p.eof() {
		c := p.input[p.pos]
		if c == '=' || c == '>' || c == '/' || strings.IndexByte(whitespace, c) >= 0 {
			break
		}
		p.advance()
	}
	name := p.input[start.Offset:p.pos]

	var value *attrValue
	before := p.save()
	p.skipWhitespace()
	if p.consume("=") {
		p.skipWhitespace()
		value = p.parseAttributeValue()
	} else {
		p.restore(before)
	}

	loc := p.locFrom(start)
	if dir := p.parseDirective(name, start, value, loc); dir != nil {
		return dir
	}

	var text *ast.Text
	if value != nil {
		content := value.raw
		if p.opts.DecodeEntities != nil {
			content = p.opts.DecodeEntities(content)
		}
		text = ast.NewText(content, value.loc)
	}
	return ast.NewAttribute(name, text, loc)
}

func (p *Parser) parseAttributeValue() *attrValue {
	start := p.cursor()

	if p.peek(`"`) || p.peek("'") {
		quote := p.input[p.pos]
		p.advance()
		contentStart := p.cursor()
		end := strings.IndexByte(p.input[p.pos:], quote)
		if end < 0 {
			p.advanceTo(len(p.input))
			v := &attrValue{loc: p.locFrom(start), content: p.locFrom(contentStart)}
			v.raw = v.content.Source
			p.errorf(v.loc, "unterminated attribute value")
			return v
		}
		p.advanceTo(p.pos + end)
		content := p.locFrom(contentStart)
		p.advance()
		return &attrValue{raw: content.Source, loc: p.locFrom(start), content: content}
	}

	for !p.eof() && p.input[p.pos] != '>' && strings.IndexByte(whitespace, p.input[p.pos]) < 0 {
		p.advance()
	}
	loc := p.locFrom(start)
	if loc.Len() == 0 {
		p.errorf(loc, "missing attribute value")
	}
	return &attrValue{raw: loc.Source, loc: loc, content: loc}
}

// parseDirective returns nil when name is a plain attribute
func (p *Parser) parseDirective(name string, start ast.Position, value *attrValue, loc ast.SourceLocation) *ast.Directive {
	isShorthand := name[0] == ':' || name[0] == '@' || name[0] == '#'
	if !isShorthand && !strings.HasPrefix(name, "v-") {
		return nil
	}
	m := directiveRE.FindStringSubmatchIndex(name)
	if m == nil || (m[2] < 0 && !isShorthand) {
		return nil
	}

	var dirName string
	switch {
	case m[2] >= 0:
		dirName = name[m[2]:m[3]]
	case name[0] == ':':
		dirName = "bind"
	case name[0] == '@':
		dirName = "on"
	default:
		dirName = "slot"
	}

	var arg *ast.Expression
	if m[4] >= 0 {
		argStart := positionAfter(start, name[:m[4]])
		argLoc := p.span(argStart, positionAfter(argStart, name[m[4]:m[5]]))
		content, isStatic := argLoc.Source, true
		if strings.HasPrefix(content, "[") {
			isStatic = false
			content = strings.TrimSuffix(content[1:], "]")
		}
		arg = ast.NewExpression(content, isStatic, argLoc)
	}

	var modifiers []string
	if m[6] >= 0 {
		modifiers = strings.Split(strings.TrimPrefix(name[m[6]:m[7]], "."), ".")
	}

	var exp *ast.Expression
	if value != nil {
		exp = ast.NewExpression(value.raw, false, value.content)
	}

	return ast.NewDirective(dirName, exp, arg, modifiers, loc)
}
