package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/runtime"
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

func (g *generator) genRoot(root *ast.Root) {
	children := renderable(root.Children)
	switch len(children) {
	case 0:
		g.write("null")
	case 1:
		g.genChild(children[0])
	default:
		g.genFragment(children)
	}
}

// renderable drops elements a transform left without a codegen node
func renderable(children []ast.ChildNode) []ast.ChildNode {
	out := make([]ast.ChildNode, 0, len(children))
	for _, c := range children {
		if el, ok := c.(*ast.Element); ok && el.CodegenNode == nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (g *generator) genFragment(children []ast.ChildNode) {
	g.write(g.helper(runtime.CreateVNode) + "(" + g.helper(runtime.Fragment) + ", null, ")
	g.genChildList(children)
	g.write(")")
}

func (g *generator) genChildList(children []ast.ChildNode) {
	g.write("[")
	for i, c := range renderable(children) {
		if i > 0 {
			g.write(", ")
		}
		g.genChild(c)
	}
	g.write("]")
}

func (g *generator) genChild(n ast.ChildNode) {
	switch n := n.(type) {
	case *ast.Element:
		if id, ok := g.hoisted[n.CodegenNode]; ok {
			g.writef("_hoisted_%d", id)
			return
		}
		g.genCall(n.CodegenNode)
	case *ast.Text:
		g.write(g.helper(runtime.CreateTextVNode) + "(")
		g.writeMapped(jsString(n.Content), n.Loc)
		g.write(")")
	case *ast.Comment:
		g.write(g.helper(runtime.CreateCommentVNode) + "(" + jsString(n.Content) + ")")
	case *ast.Expression:
		g.write(g.helper(runtime.CreateTextVNode) + "(" + g.helper(runtime.ToDisplayString) + "(")
		g.writeMapped(n.Content, n.Loc)
		g.write("))")
	case *ast.If:
		g.genIf(n)
	case *ast.For:
		g.genFor(n)
	default:
		g.fail(fmt.Errorf("%w: %T in child position", ErrUnknownNodeType, n))
	}
}

// genIf renders the branch chain as nested conditionals. A chain without
// an else falls through to a placeholder comment.
func (g *generator) genIf(n *ast.If) {
	for _, b := range n.Branches {
		if b.IsElse() {
			g.genBranch(b.Children)
			return
		}
		g.write("(")
		g.writeMapped(b.Condition.Content, b.Condition.Loc)
		g.write(") ? ")
		g.genBranch(b.Children)
		g.write(" : ")
	}
	g.write(g.helper(runtime.CreateCommentVNode) + `("v-if", true)`)
}

func (g *generator) genBranch(children []ast.ChildNode) {
	children = renderable(children)
	switch len(children) {
	case 0:
		g.write(g.helper(runtime.CreateCommentVNode) + `("v-if", true)`)
	case 1:
		g.genChild(children[0])
	default:
		g.genFragment(children)
	}
}

func (g *generator) genFor(n *ast.For) {
	if n.Source == nil {
		g.fail(fmt.Errorf("%w: for block at %s has no source", ErrUnknownNodeType, n.Loc.Start))
		return
	}

	g.write(g.helper(runtime.CreateVNode) + "(" + g.helper(runtime.Fragment) + ", null, ")
	g.write(g.helper(runtime.RenderList) + "(")
	g.writeMapped(n.Source.Content, n.Source.Loc)
	g.write(", (")

	aliases := []*ast.Expression{n.ValueAlias, n.KeyAlias, n.ObjectIndexAlias}
	for len(aliases) > 0 && aliases[len(aliases)-1] == nil {
		aliases = aliases[:len(aliases)-1]
	}
	for i, a := range aliases {
		if i > 0 {
			g.write(", ")
		}
		if a == nil {
			g.write(strings.Repeat("_", i+1))
			continue
		}
		g.writeMapped(a.Content, a.Loc)
	}

	g.write(") => ")
	children := renderable(n.Children)
	switch len(children) {
	case 0:
		g.write("null")
	case 1:
		g.genChild(children[0])
	default:
		g.genFragment(children)
	}
	g.write("))")
}

func (g *generator) genCall(c *ast.CallExpression) {
	if c == nil {
		g.write("null")
		return
	}
	g.write(g.helper(c.Callee) + "(")
	for i, a := range c.Arguments {
		if i > 0 {
			g.write(", ")
		}
		g.genArg(a)
	}
	g.write(")")
}

func (g *generator) genArg(a ast.CallArgument) {
	switch a := a.(type) {
	case nil:
		g.write("null")
	case ast.RawString:
		g.write(string(a))
	case ast.ChildList:
		g.genChildList(a)
	case *ast.CallExpression:
		g.genCall(a)
	case *ast.ObjectExpression:
		g.genObject(a)
	case *ast.ArrayExpression:
		g.genArray(a)
	case *ast.Expression:
		g.genExpression(a)
	default:
		g.fail(fmt.Errorf("%w: %T in argument position", ErrUnknownNodeType, a))
	}
}

func (g *generator) genObject(o *ast.ObjectExpression) {
	if o == nil {
		g.write("null")
		return
	}
	if len(o.Properties) == 0 {
		g.write("{}")
		return
	}
	g.write("{ ")
	for i, p := range o.Properties {
		if i > 0 {
			g.write(", ")
		}
		g.genKey(p.Key)
		g.write(": ")
		if p.Value == nil {
			g.write("undefined")
		} else {
			g.genExpression(p.Value)
		}
	}
	g.write(" }")
}

func (g *generator) genKey(k *ast.Expression) {
	switch {
	case k == nil:
		g.fail(fmt.Errorf("%w: property without a key", ErrUnknownNodeType))
	case !k.IsStatic:
		g.write("[")
		g.writeMapped(k.Content, k.Loc)
		g.write("]")
	case identifierRE.MatchString(k.Content):
		g.write(k.Content)
	default:
		g.write(jsString(k.Content))
	}
}

func (g *generator) genArray(a *ast.ArrayExpression) {
	if a == nil {
		g.write("null")
		return
	}
	g.write("[")
	for i, e := range a.Elements {
		if i > 0 {
			g.write(", ")
		}
		g.genArg(e)
	}
	g.write("]")
}

// genExpression writes static expressions as string literals and dynamic
// ones verbatim
func (g *generator) genExpression(e *ast.Expression) {
	if e == nil {
		g.write("null")
		return
	}
	if e.IsStatic {
		g.writeMapped(jsString(e.Content), e.Loc)
		return
	}
	g.writeMapped(e.Content, e.Loc)
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
