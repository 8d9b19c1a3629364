package transform

import (
	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/runtime"
)

// hoistStatic lifts element children whose whole subtree is static. Only
// children of elements are considered: root children and the direct
// children of if branches and for blocks are the blocks themselves.
func (c *Context) hoistStatic(root *ast.Root) {
	ast.Inspect(root, func(n ast.Node, path []ast.Node) bool {
		el, ok := n.(*ast.Element)
		if !ok {
			return true
		}
		if len(path) == 0 {
			return true
		}
		if _, underElement := path[len(path)-1].(*ast.Element); !underElement {
			return true
		}
		if el.CodegenNode != nil && isStatic(el) {
			c.Hoists = append(c.Hoists, el.CodegenNode)
			return false
		}
		return true
	})
}

// isStatic reports whether el renders the same vnode on every call: a plain
// element whose codegen call has only static expressions and whose children
// are text, comments or static elements
func isStatic(el *ast.Element) bool {
	if el.TagType != ast.ElementPlain || el.CodegenNode == nil {
		return false
	}
	if el.CodegenNode.Callee != runtime.CreateVNode {
		return false
	}

	static := true
	ast.InspectCodegen(el.CodegenNode, func(n ast.Node) bool {
		if e, ok := n.(*ast.Expression); ok && !e.IsStatic {
			static = false
		}
		return static
	})
	if !static {
		return false
	}

	for _, child := range el.Children {
		switch child := child.(type) {
		case *ast.Text, *ast.Comment:
		case *ast.Element:
			if !isStatic(child) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
