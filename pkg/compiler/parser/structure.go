package parser

import (
	"regexp"
	"strings"

	"github.com/recera/vtc/pkg/compiler/ast"
)

var (
	// forAliasRE splits "(item, key, index) in list" at the in/of keyword
	forAliasRE = regexp.MustCompile(`^([\s\S]*?)\s+(?:in|of)\s+([\s\S]*)$`)
	// forIteratorRE matches the ", key, index" tail of the alias list
	forIteratorRE = regexp.MustCompile(`,([^,\}\]]*)(?:,([^,\}\]]*))?$`)
)

// attach appends el to nodes, wrapping it in For and If nodes as its
// structural directives demand. v-if binds looser than v-for, so an element
// carrying both becomes If > IfBranch > For > el.
func (p *Parser) attach(nodes []ast.ChildNode, el *ast.Element) []ast.ChildNode {
	forDir := takeDirective(el, "for")
	ifDir := takeDirective(el, "if", "else-if", "else")

	var node ast.ChildNode = el
	if forDir != nil {
		if f := p.buildFor(el, forDir); f != nil {
			node = f
		}
	}

	var children []ast.ChildNode
	if _, wrapped := node.(*ast.For); wrapped {
		children = []ast.ChildNode{node}
	} else {
		children = unwrapTemplate(el)
	}

	if ifDir == nil {
		return append(nodes, node)
	}

	switch ifDir.Name {
	case "if":
		branch := ast.NewIfBranch(p.condition(ifDir), children, el.Loc)
		return append(nodes, ast.NewIf([]*ast.IfBranch{branch}, el.Loc))
	default:
		i := len(nodes) - 1
		for i >= 0 && isSkippableBetweenBranches(nodes[i]) {
			i--
		}
		var chain *ast.If
		if i >= 0 {
			chain, _ = nodes[i].(*ast.If)
		}
		if chain == nil || chain.Branches[len(chain.Branches)-1].IsElse() {
			p.errorf(ifDir.Loc, "v-%s has no adjacent v-if or v-else-if", ifDir.Name)
			return append(nodes, node)
		}

		var cond *ast.Expression
		if ifDir.Name == "else-if" {
			cond = p.condition(ifDir)
		}
		chain.Branches = append(chain.Branches, ast.NewIfBranch(cond, children, el.Loc))
		chain.Loc = p.span(chain.Loc.Start, el.Loc.End)
		return nodes[:i+1]
	}
}

// condition returns the directive's expression, reporting an error and
// returning an empty expression when it is missing
func (p *Parser) condition(dir *ast.Directive) *ast.Expression {
	if dir.Exp == nil || strings.Trim(dir.Exp.Content, whitespace) == "" {
		p.errorf(dir.Loc, "v-%s is missing expression", dir.Name)
		if dir.Exp != nil {
			return dir.Exp
		}
		return ast.NewExpression("", false, p.span(dir.Loc.End, dir.Loc.End))
	}
	return dir.Exp
}

func isSkippableBetweenBranches(n ast.ChildNode) bool {
	switch n := n.(type) {
	case *ast.Comment:
		return true
	case *ast.Text:
		return n.IsEmpty
	}
	return false
}

// unwrapTemplate returns the children a structural directive on el
// controls: a <template> wrapper contributes its children, anything else
// contributes itself.
func unwrapTemplate(el *ast.Element) []ast.ChildNode {
	if el.TagType == ast.ElementTemplate && ast.FindDirective(el, "slot") == nil {
		return el.Children
	}
	return []ast.ChildNode{el}
}

// takeDirective removes and returns the first directive named one of names
func takeDirective(el *ast.Element, names ...string) *ast.Directive {
	for i, prop := range el.Props {
		d, ok := prop.(*ast.Directive)
		if !ok {
			continue
		}
		for _, name := range names {
			if d.Name == name {
				el.Props = append(el.Props[:i:i], el.Props[i+1:]...)
				return d
			}
		}
	}
	return nil
}

func (p *Parser) buildFor(el *ast.Element, dir *ast.Directive) *ast.For {
	if dir.Exp == nil {
		p.errorf(dir.Loc, "v-for is missing expression")
		return nil
	}

	exp := dir.Exp
	m := forAliasRE.FindStringSubmatchIndex(exp.Content)
	if m == nil {
		p.errorf(exp.Loc, "v-for has invalid expression %q", exp.Content)
		return nil
	}

	source := p.subExpression(exp, m[4], m[5])
	if source == nil {
		p.errorf(exp.Loc, "v-for is missing a source to iterate")
		return nil
	}

	// strip the optional parentheses around the alias list
	lhsStart, lhsEnd := trimRange(exp.Content, m[2], m[3])
	if lhsEnd > lhsStart && exp.Content[lhsStart] == '(' {
		lhsStart++
		if exp.Content[lhsEnd-1] == ')' {
			lhsEnd--
		}
	}

	var value, key, index *ast.Expression
	valueEnd := lhsEnd
	if it := forIteratorRE.FindStringSubmatchIndex(exp.Content[lhsStart:lhsEnd]); it != nil {
		valueEnd = lhsStart + it[0]
		key = p.subExpression(exp, lhsStart+it[2], lhsStart+it[3])
		if it[4] >= 0 {
			index = p.subExpression(exp, lhsStart+it[4], lhsStart+it[5])
		}
	}
	value = p.subExpression(exp, lhsStart, valueEnd)

	return ast.NewFor(source, value, key, index, unwrapTemplate(el), el.Loc)
}

// subExpression cuts the trimmed range [start, end) of parent's content into
// its own expression. parent's content must equal its source text.
func (p *Parser) subExpression(parent *ast.Expression, start, end int) *ast.Expression {
	start, end = trimRange(parent.Content, start, end)
	if start >= end {
		return nil
	}
	from := positionAfter(parent.Loc.Start, parent.Content[:start])
	to := positionAfter(from, parent.Content[start:end])
	return ast.NewExpression(parent.Content[start:end], false, p.span(from, to))
}

// trimRange narrows [start, end) of s to exclude surrounding whitespace
func trimRange(s string, start, end int) (int, int) {
	for start < end && strings.IndexByte(whitespace, s[start]) >= 0 {
		start++
	}
	for end > start && strings.IndexByte(whitespace, s[end-1]) >= 0 {
		end--
	}
	return start, end
}
