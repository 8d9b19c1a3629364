// Package validate checks a template tree against the node model's
// structural invariants. Producers and transforms are trusted to uphold
// them; this package is for tests, tooling and externally decoded trees.
package validate

import (
	"errors"
	"fmt"

	"github.com/recera/vtc/pkg/compiler/ast"
)

// Diagnostic codes
const (
	CodeInvalidPosition = "invalid-position"
	CodeLengthMismatch  = "length-mismatch"
	CodeSourceMismatch  = "source-mismatch"
	CodeOutsideParent   = "outside-parent"
	CodeEmptyIf         = "empty-if"
	CodeElseNotLast     = "else-not-last"
	CodeNilNode         = "nil-node"
	CodeAliasedNode     = "aliased-node"
	CodeCodegenShape    = "codegen-shape"
)

// Diagnostic is one violated invariant
type Diagnostic struct {
	Code string
	Node ast.NodeType
	Loc  ast.SourceLocation
	Msg  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Loc, d.Node, d.Code, d.Msg)
}

// Err joins diagnostics into one error, or returns nil when there are none
func Err(diags []Diagnostic) error {
	errs := make([]error, len(diags))
	for i, d := range diags {
		errs[i] = d
	}
	return errors.Join(errs...)
}

type checker struct {
	input string
	diags []Diagnostic
	seen  map[ast.Node]bool
}

// Tree checks root, parsed from input, and returns every violation found.
// Synthetic locations are exempt from span checks.
func Tree(root *ast.Root, input string) []Diagnostic {
	c := &checker{input: input, seen: make(map[ast.Node]bool)}

	ast.Inspect(root, func(n ast.Node, path []ast.Node) bool {
		if !c.visit(n) {
			return false
		}
		c.checkLocation(n)
		if parent := spannedAncestor(path); parent != nil {
			c.checkContained(n, parent.Location())
		}

		switch n := n.(type) {
		case *ast.If:
			c.checkIf(n)
		case *ast.Element:
			c.checkChildren(n, n.Children)
			c.checkProps(n)
			if n.CodegenNode != nil {
				c.checkCodegen(n, n.CodegenNode)
			}
		case ast.ParentNode:
			c.checkChildren(n, n.ChildNodes())
		}
		return true
	})

	return c.diags
}

func (c *checker) report(n ast.Node, loc ast.SourceLocation, code, format string, args ...any) {
	var typ ast.NodeType
	if n != nil {
		typ = n.Type()
	}
	c.diags = append(c.diags, Diagnostic{Code: code, Node: typ, Loc: loc, Msg: fmt.Sprintf(format, args...)})
}

// visit marks n as seen and reports it if it already occupies another slot
func (c *checker) visit(n ast.Node) bool {
	if c.seen[n] {
		c.report(n, n.Location(), CodeAliasedNode, "node appears in more than one slot")
		return false
	}
	c.seen[n] = true
	return true
}

func (c *checker) checkLocation(n ast.Node) {
	loc := n.Location()
	if loc.IsSynthetic() {
		return
	}

	for _, p := range []ast.Position{loc.Start, loc.End} {
		if p.Offset < 0 || p.Line < 1 || p.Column < 1 {
			c.report(n, loc, CodeInvalidPosition, "position %d:%d offset %d", p.Line, p.Column, p.Offset)
			return
		}
	}
	if loc.End.Offset < loc.Start.Offset {
		c.report(n, loc, CodeInvalidPosition, "end offset %d before start offset %d", loc.End.Offset, loc.Start.Offset)
		return
	}
	if len(loc.Source) != loc.Len() {
		c.report(n, loc, CodeLengthMismatch, "source has %d bytes, span covers %d", len(loc.Source), loc.Len())
	}
	if loc.End.Offset > len(c.input) {
		c.report(n, loc, CodeSourceMismatch, "span ends at %d past input length %d", loc.End.Offset, len(c.input))
		return
	}
	if got := c.input[loc.Start.Offset:loc.End.Offset]; got != loc.Source {
		c.report(n, loc, CodeSourceMismatch, "source %q differs from input %q", loc.Source, got)
	}
}

func (c *checker) checkContained(n ast.Node, parent ast.SourceLocation) {
	loc := n.Location()
	if loc.IsSynthetic() || parent.Contains(loc) {
		return
	}
	c.report(n, loc, CodeOutsideParent, "span not within parent span %s", parent)
}

// spannedAncestor returns the nearest ancestor with a real location
func spannedAncestor(path []ast.Node) ast.Node {
	for i := len(path) - 1; i >= 0; i-- {
		if !path[i].Location().IsSynthetic() {
			return path[i]
		}
	}
	return nil
}

func (c *checker) checkIf(n *ast.If) {
	if len(n.Branches) == 0 {
		c.report(n, n.Loc, CodeEmptyIf, "if node has no branches")
		return
	}
	for i, b := range n.Branches {
		if b == nil {
			c.report(n, n.Loc, CodeNilNode, "branch %d is nil", i)
			continue
		}
		if b.IsElse() && i != len(n.Branches)-1 {
			c.report(b, b.Loc, CodeElseNotLast, "else branch at %d of %d", i, len(n.Branches))
		}
	}
}

func (c *checker) checkChildren(parent ast.Node, children []ast.ChildNode) {
	for i, child := range children {
		if child == nil {
			c.report(parent, parent.Location(), CodeNilNode, "child %d is nil", i)
		}
	}
}

func (c *checker) checkProps(el *ast.Element) {
	for i, p := range el.Props {
		if p == nil {
			c.report(el, el.Loc, CodeNilNode, "prop %d is nil", i)
		}
	}
}

// checkCodegen walks an element's codegen subtree. Codegen nodes share the
// aliasing and span rules of syntax nodes; spans must fall within the
// element.
func (c *checker) checkCodegen(el *ast.Element, call *ast.CallExpression) {
	ast.InspectCodegen(call, func(n ast.Node) bool {
		if !c.visit(n) {
			return false
		}
		c.checkLocation(n)
		c.checkContained(n, el.Loc)

		switch n := n.(type) {
		case *ast.CallExpression:
			if n.Callee == "" {
				c.report(n, n.Loc, CodeCodegenShape, "call has no callee")
			}
			for i, a := range n.Arguments {
				if isNil(a) {
					c.report(n, n.Loc, CodeCodegenShape, "argument %d is nil", i)
				}
			}
		case *ast.Property:
			if n.Key == nil || n.Value == nil {
				c.report(n, n.Loc, CodeCodegenShape, "property is missing its key or value")
			}
		case *ast.ArrayExpression:
			for i, e := range n.Elements {
				if isNil(e) {
					c.report(n, n.Loc, CodeCodegenShape, "element %d is nil", i)
				}
			}
		}
		return true
	})
}

// isNil reports nil interfaces and typed nil pointers
func isNil(a ast.CallArgument) bool {
	switch a := a.(type) {
	case nil:
		return true
	case *ast.CallExpression:
		return a == nil
	case *ast.ObjectExpression:
		return a == nil
	case *ast.ArrayExpression:
		return a == nil
	case *ast.Expression:
		return a == nil
	}
	return false
}
