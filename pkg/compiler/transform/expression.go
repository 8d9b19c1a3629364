package transform

import (
	"errors"
	"strings"

	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/runtime"
)

// ErrEmptyExpression is reported for interpolations with no content
var ErrEmptyExpression = errors.New("empty expression")

// TransformExpression prepares interpolations for display. Interpolations
// sit in child position; expressions owned by directives and control flow
// nodes are left alone.
func TransformExpression(n ast.Node, ctx *Context) func() {
	exp, ok := n.(*ast.Expression)
	if !ok || ctx.Parent == nil {
		return nil
	}
	if strings.TrimSpace(exp.Content) == "" {
		ctx.errorf(exp.Loc, ErrEmptyExpression, "interpolation has no content")
		return nil
	}
	ctx.Helper(runtime.ToDisplayString)
	ctx.Helper(runtime.CreateTextVNode)
	return nil
}

// TransformControlFlow records the helpers if and for blocks render with
func TransformControlFlow(n ast.Node, ctx *Context) func() {
	switch n := n.(type) {
	case *ast.If:
		if len(n.Branches) == 0 || !n.Branches[len(n.Branches)-1].IsElse() {
			ctx.Helper(runtime.CreateCommentVNode)
		}
	case *ast.For:
		ctx.Helper(runtime.RenderList)
		ctx.Helper(runtime.Fragment)
		ctx.Helper(runtime.CreateVNode)
	case *ast.Text:
		if ctx.Parent != nil {
			ctx.Helper(runtime.CreateTextVNode)
		}
	case *ast.Comment:
		ctx.Helper(runtime.CreateCommentVNode)
	}
	return nil
}
