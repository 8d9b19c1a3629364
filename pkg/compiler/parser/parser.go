// Package parser turns template source into an ast.Root.
//
// The parser upholds the producer side of the node model contract: every
// location's Source is the exact input slice it covers, and v-if / v-else-if /
// v-else siblings are folded into a single If node whose only condition-less
// branch, if any, is the last one.
package parser

import (
	"fmt"
	"strings"

	"github.com/recera/vtc/pkg/compiler/ast"
)

// Parser is a recursive descent parser for templates
type Parser struct {
	input  string
	pos    int
	line   int
	col    int
	opts   Options
	errors ErrorList
}

type state struct {
	pos, line, col int
}

// Parse parses source into a tree. When the source has syntax errors the
// returned error is an ErrorList and the returned tree holds everything that
// could be recovered.
func Parse(source string, opts Options) (*ast.Root, error) {
	p := NewParser(source, opts)
	root := p.Parse()
	return root, p.errors.Err()
}

// NewParser creates a parser over source
func NewParser(source string, opts Options) *Parser {
	opts.applyDefaults()
	return &Parser{
		input: source,
		pos:   0,
		line:  1,
		col:   1,
		opts:  opts,
	}
}

// Parse parses the whole input. Errors are available from Errors.
func (p *Parser) Parse() *ast.Root {
	start := p.cursor()
	children := p.parseChildren(nil)
	return ast.NewRoot(children, p.locFrom(start))
}

// Errors returns the errors collected so far
func (p *Parser) Errors() ErrorList {
	return p.errors
}

// parseChildren parses nodes until EOF or an end tag closing one of the open
// elements in stack. The end tag is left for the caller.
func (p *Parser) parseChildren(stack []*ast.Element) []ast.ChildNode {
	var nodes []ast.ChildNode

	for !p.eof() {
		switch {
		case p.peek("<!--"):
			comment := p.parseComment()
			if p.opts.Comments {
				nodes = append(nodes, comment)
			}
		case p.peek("</"):
			if p.closesOpenElement(stack) {
				return p.finishChildren(nodes, stack)
			}
			p.skipStrayEndTag()
		case p.peek("<") && p.isTagStart(p.pos+1):
			el := p.parseElement(stack)
			nodes = p.attach(nodes, el)
		case p.peek(p.opts.Delimiters[0]):
			if exp := p.parseInterpolation(); exp != nil {
				nodes = append(nodes, exp)
			}
		default:
			nodes = append(nodes, p.parseText())
		}
	}

	return p.finishChildren(nodes, stack)
}

// finishChildren drops whitespace-only text that cannot affect rendering:
// leading and trailing whitespace, whitespace next to comments, and
// whitespace containing a newline between two elements.
func (p *Parser) finishChildren(nodes []ast.ChildNode, stack []*ast.Element) []ast.ChildNode {
	for _, el := range stack {
		if el.Tag == "pre" {
			return nodes
		}
	}

	out := make([]ast.ChildNode, 0, len(nodes))
	for i, n := range nodes {
		t, ok := n.(*ast.Text)
		if !ok || !ast.IsWhitespace(t.Loc.Source) {
			out = append(out, n)
			continue
		}
		if i == 0 || i == len(nodes)-1 {
			continue
		}
		prev, next := nodes[i-1], nodes[i+1]
		if isComment(prev) || isComment(next) {
			continue
		}
		if isBlock(prev) && isBlock(next) && strings.ContainsAny(t.Content, "\r\n") {
			continue
		}
		out = append(out, n)
	}
	return out
}

func isComment(n ast.ChildNode) bool {
	_, ok := n.(*ast.Comment)
	return ok
}

func isBlock(n ast.ChildNode) bool {
	switch n.(type) {
	case *ast.Element, *ast.If, *ast.For:
		return true
	}
	return false
}

// parseElement parses a start tag, its children and its end tag
func (p *Parser) parseElement(stack []*ast.Element) *ast.Element {
	start := p.cursor()
	p.consume("<")
	tag := p.parseTagName()

	parentNS, parentTag := ast.NamespaceHTML, ""
	if len(stack) > 0 {
		parent := stack[len(stack)-1]
		parentNS, parentTag = parent.NS, parent.Tag
	}

	el := &ast.Element{
		NS:    p.opts.GetNamespace(tag, parentNS, parentTag),
		Tag:   tag,
		Props: p.parseAttributes(),
	}
	el.TagType = p.tagType(tag, el.Props)

	if p.consume("/>") {
		el.IsSelfClosing = true
		el.Loc = p.locFrom(start)
		return el
	}
	if !p.consume(">") {
		el.Loc = p.locFrom(start)
		p.errorf(el.Loc, "unterminated start tag <%s>", tag)
		return el
	}
	if p.opts.IsVoidTag(tag) {
		el.Loc = p.locFrom(start)
		return el
	}

	if isRawTextTag(tag) {
		el.Children = p.parseRawText(tag)
	} else {
		el.Children = p.parseChildren(append(stack, el))
	}

	if p.peekEndTagName() == tag {
		p.consumeEndTag()
	} else {
		p.errorf(p.span(start, start), "element <%s> is missing end tag", tag)
	}
	el.Loc = p.locFrom(start)
	return el
}

func isRawTextTag(tag string) bool {
	return tag == "script" || tag == "style"
}

// parseRawText reads everything up to </tag> as a single text node
func (p *Parser) parseRawText(tag string) []ast.ChildNode {
	end := strings.Index(p.input[p.pos:], "</"+tag)
	if end < 0 {
		end = len(p.input) - p.pos
	}
	if end == 0 {
		return nil
	}
	start := p.cursor()
	p.advanceTo(p.pos + end)
	loc := p.locFrom(start)
	return []ast.ChildNode{ast.NewText(loc.Source, loc)}
}

func (p *Parser) tagType(tag string, props []ast.PropNode) ast.ElementType {
	switch {
	case tag == "slot":
		return ast.ElementSlot
	case tag == "template" && hasStructuralDirective(props):
		return ast.ElementTemplate
	case p.isComponent(tag):
		return ast.ElementComponent
	}
	return ast.ElementPlain
}

func (p *Parser) isComponent(tag string) bool {
	if tag == "component" || (tag[0] >= 'A' && tag[0] <= 'Z') {
		return true
	}
	return p.opts.IsNativeTag != nil && !p.opts.IsNativeTag(tag)
}

func hasStructuralDirective(props []ast.PropNode) bool {
	for _, prop := range props {
		if d, ok := prop.(*ast.Directive); ok {
			switch d.Name {
			case "if", "else-if", "else", "for", "slot":
				return true
			}
		}
	}
	return false
}

// parseComment parses <!-- ... -->
func (p *Parser) parseComment() *ast.Comment {
	start := p.cursor()
	p.consume("<!--")
	contentStart := p.pos

	end := strings.Index(p.input[p.pos:], "-->")
	if end < 0 {
		p.advanceTo(len(p.input))
		loc := p.locFrom(start)
		p.errorf(loc, "unterminated comment")
		return ast.NewComment(p.input[contentStart:], loc)
	}

	content := p.input[contentStart : contentStart+end]
	p.advanceTo(contentStart + end + len("-->"))
	return ast.NewComment(content, p.locFrom(start))
}

// parseInterpolation parses a delimited expression. The expression's
// location covers the trimmed inner text only.
func (p *Parser) parseInterpolation() *ast.Expression {
	openDelim, closeDelim := p.opts.Delimiters[0], p.opts.Delimiters[1]
	start := p.cursor()
	p.consume(openDelim)

	end := strings.Index(p.input[p.pos:], closeDelim)
	if end < 0 {
		p.advanceTo(len(p.input))
		p.errorf(p.locFrom(start), "interpolation is missing end delimiter %q", closeDelim)
		return nil
	}

	inner := p.input[p.pos : p.pos+end]
	lead := len(inner) - len(strings.TrimLeft(inner, whitespace))
	content := strings.Trim(inner, whitespace)

	p.advanceTo(p.pos + lead)
	expStart := p.cursor()
	p.advanceTo(expStart.Offset + len(content))
	exp := ast.NewExpression(content, false, p.locFrom(expStart))

	p.advanceTo(start.Offset + len(openDelim) + end + len(closeDelim))
	return exp
}

// parseText reads text up to the next tag, comment or interpolation
func (p *Parser) parseText() *ast.Text {
	start := p.cursor()
	p.advance()
	for !p.eof() {
		if p.peek("<!--") || p.peek("</") || (p.peek("<") && p.isTagStart(p.pos+1)) || p.peek(p.opts.Delimiters[0]) {
			break
		}
		p.advance()
	}

	loc := p.locFrom(start)
	content := loc.Source
	if p.opts.DecodeEntities != nil {
		content = p.opts.DecodeEntities(content)
	}
	return ast.NewText(content, loc)
}

func (p *Parser) closesOpenElement(stack []*ast.Element) bool {
	name := p.peekEndTagName()
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].Tag == name {
			return true
		}
	}
	return false
}

// peekEndTagName returns the tag name of the end tag at the cursor without
// consuming it
func (p *Parser) peekEndTagName() string {
	if !p.peek("</") {
		return ""
	}
	i := p.pos + 2
	for i < len(p.input) && !isTagNameEnd(p.input[i]) {
		i++
	}
	return p.input[p.pos+2 : i]
}

func (p *Parser) consumeEndTag() {
	start := p.cursor()
	p.consume("</")
	p.parseTagName()
	p.skipWhitespace()
	if !p.consume(">") {
		p.skipPast('>')
		p.errorf(p.locFrom(start), "malformed end tag")
	}
}

func (p *Parser) skipStrayEndTag() {
	start := p.cursor()
	name := p.peekEndTagName()
	p.skipPast('>')
	p.errorf(p.locFrom(start), "invalid end tag </%s>", name)
}

func (p *Parser) parseTagName() string {
	start := p.pos
	for !p.eof() && !isTagNameEnd(p.input[p.pos]) {
		p.advance()
	}
	return p.input[start:p.pos]
}

func isTagNameEnd(c byte) bool {
	return c == '/' || c == '>' || strings.IndexByte(whitespace, c) >= 0
}

func (p *Parser) isTagStart(i int) bool {
	if i >= len(p.input) {
		return false
	}
	c := p.input[i]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Helper methods

const whitespace = " \t\r\n\f"

func (p *Parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *Parser) peek(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *Parser) consume(s string) bool {
	if p.peek(s) {
		p.advanceTo(p.pos + len(s))
		return true
	}
	return false
}

// advance moves past one byte. Columns count runes, so UTF-8
// continuation bytes do not move the column.
func (p *Parser) advance() {
	if p.pos >= len(p.input) {
		return
	}
	switch c := p.input[p.pos]; {
	case c == '\n':
		p.line++
		p.col = 1
	case c&0xC0 != 0x80:
		p.col++
	}
	p.pos++
}

func (p *Parser) advanceTo(offset int) {
	for p.pos < offset && p.pos < len(p.input) {
		p.advance()
	}
}

func (p *Parser) skipWhitespace() {
	for !p.eof() && strings.IndexByte(whitespace, p.input[p.pos]) >= 0 {
		p.advance()
	}
}

// skipPast advances past the next occurrence of c, or to EOF
func (p *Parser) skipPast(c byte) {
	for !p.eof() {
		done := p.input[p.pos] == c
		p.advance()
		if done {
			return
		}
	}
}

func (p *Parser) cursor() ast.Position {
	return ast.Position{Offset: p.pos, Line: p.line, Column: p.col}
}

func (p *Parser) save() state {
	return state{pos: p.pos, line: p.line, col: p.col}
}

func (p *Parser) restore(s state) {
	p.pos, p.line, p.col = s.pos, s.line, s.col
}

func (p *Parser) locFrom(start ast.Position) ast.SourceLocation {
	return p.span(start, p.cursor())
}

func (p *Parser) span(start, end ast.Position) ast.SourceLocation {
	return ast.SourceLocation{
		Start:  start,
		End:    end,
		Source: p.input[start.Offset:end.Offset],
	}
}

// positionAfter returns the position reached by reading text from pos
func positionAfter(pos ast.Position, text string) ast.Position {
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\n':
			pos.Line++
			pos.Column = 1
		case c&0xC0 != 0x80:
			pos.Column++
		}
		pos.Offset++
	}
	return pos
}

func (p *Parser) errorf(loc ast.SourceLocation, format string, args ...interface{}) {
	p.errors = append(p.errors, &Error{
		Filename: p.opts.Filename,
		Loc:      loc,
		Msg:      fmt.Sprintf(format, args...),
	})
}
