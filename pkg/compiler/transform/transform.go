package transform

import (
	"errors"

	"github.com/recera/vtc/pkg/compiler/ast"
)

// Result summarizes a transform run
type Result struct {
	// Helpers are the runtime helpers the transformed tree references, sorted
	Helpers []string

	// Hoists are the element calls lifted out of the render function, in
	// document order
	Hoists []*ast.CallExpression
}

// Transform runs the node transforms over root, rewriting it in place.
// Errors reported by transforms are joined; the tree is still usable for
// diagnostics when an error is returned.
func Transform(root *ast.Root, opts Options) (*Result, error) {
	ctx := newContext(root, opts)
	ctx.traverseNode(root)

	if opts.HoistStatic {
		ctx.hoistStatic(root)
	}

	return &Result{
		Helpers: ctx.helperNames(),
		Hoists:  ctx.Hoists,
	}, errors.Join(ctx.errs...)
}

func (c *Context) traverseNode(node ast.Node) {
	c.CurrentNode = node

	var exits []func()
	for _, t := range c.transforms {
		if exit := t(node, c); exit != nil {
			exits = append(exits, exit)
		}
		if c.CurrentNode == nil {
			return
		}
		node = c.CurrentNode
	}

	parent, index := c.Parent, c.ChildIndex
	switch n := node.(type) {
	case *ast.If:
		c.Ancestors = append(c.Ancestors, n)
		for _, b := range n.Branches {
			c.Parent, c.ChildIndex = nil, -1
			c.traverseNode(b)
		}
		c.Ancestors = c.Ancestors[:len(c.Ancestors)-1]
	case ast.ParentNode:
		c.traverseChildren(n)
	}

	c.Parent, c.ChildIndex, c.CurrentNode = parent, index, node
	for i := len(exits) - 1; i >= 0; i-- {
		exits[i]()
	}
}

func (c *Context) traverseChildren(parent ast.ParentNode) {
	c.Ancestors = append(c.Ancestors, parent)
	for i := 0; i < len(parent.ChildNodes()); i++ {
		c.Parent, c.ChildIndex = parent, i
		c.removed = false
		c.traverseNode(parent.ChildNodes()[i])
		if c.removed {
			c.removed = false
			i--
		}
	}
	c.Ancestors = c.Ancestors[:len(c.Ancestors)-1]
}
