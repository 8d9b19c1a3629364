// Package transform walks a parsed template and fills in the codegen IR the
// code generator consumes. Node transforms run depth-first; each may return
// an exit function that runs after the node's children have been processed.
package transform

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/recera/vtc/pkg/compiler/ast"
)

var (
	// ErrCodegenReassigned is returned when an element's codegen node is set twice
	ErrCodegenReassigned = errors.New("codegen node already set")
	// ErrImmutableSlot is returned when replacing or removing a node whose
	// parent does not own a rewritable child list
	ErrImmutableSlot = errors.New("children of this parent cannot be rewritten")
	// ErrUnsupportedDirective marks directive usage the transforms cannot lower
	ErrUnsupportedDirective = errors.New("unsupported directive")
)

// NodeTransform inspects or rewrites one node. The returned exit function,
// if any, runs once the node's subtree has been traversed.
type NodeTransform func(n ast.Node, ctx *Context) (exit func())

// Options configures a transform run
type Options struct {
	// NodeTransforms run in order on every node. Nil means DefaultTransforms.
	NodeTransforms []NodeTransform

	// HoistStatic lifts fully static element subtrees out of the render
	// function
	HoistStatic bool
}

// DefaultTransforms returns the built-in transforms in the order they run
func DefaultTransforms() []NodeTransform {
	return []NodeTransform{
		TransformControlFlow,
		TransformExpression,
		TransformElement,
	}
}

// Context is the traversal state handed to every node transform. Parent
// links live here rather than on nodes.
type Context struct {
	Root *ast.Root

	// Parent owns the current node's slot. It is nil for the root and for
	// if branches, which are not children.
	Parent     ast.ParentNode
	ChildIndex int

	// CurrentNode is nil once the node has been removed
	CurrentNode ast.Node

	// Ancestors is the path from the root to the current node's parent
	Ancestors []ast.Node

	// Helpers counts uses of each runtime helper
	Helpers map[string]int

	// Hoists collects the codegen calls lifted by HoistStatic, in order
	Hoists []*ast.CallExpression

	transforms []NodeTransform
	errs       []error
	removed    bool
}

func newContext(root *ast.Root, opts Options) *Context {
	transforms := opts.NodeTransforms
	if transforms == nil {
		transforms = DefaultTransforms()
	}
	return &Context{
		Root:        root,
		ChildIndex:  -1,
		CurrentNode: root,
		Helpers:     make(map[string]int),
		transforms:  transforms,
	}
}

// Helper records a use of the named runtime helper and returns the name
func (c *Context) Helper(name string) string {
	c.Helpers[name]++
	return name
}

// ReportError records a non-fatal error; traversal continues
func (c *Context) ReportError(err error) {
	c.errs = append(c.errs, err)
}

// errorf reports an error positioned at loc
func (c *Context) errorf(loc ast.SourceLocation, err error, format string, args ...any) {
	c.ReportError(fmt.Errorf("%s: %w: %s", loc.Start, err, fmt.Sprintf(format, args...)))
}

// ReplaceNode puts n in the current node's slot. Traversal continues with n.
func (c *Context) ReplaceNode(n ast.ChildNode) error {
	children, err := c.mutableChildren()
	if err != nil {
		return err
	}
	(*children)[c.ChildIndex] = n
	c.CurrentNode = n
	return nil
}

// RemoveNode deletes the current node from its parent. Remaining transforms
// and the node's subtree are skipped.
func (c *Context) RemoveNode() error {
	children, err := c.mutableChildren()
	if err != nil {
		return err
	}
	*children = slices.Delete(*children, c.ChildIndex, c.ChildIndex+1)
	c.CurrentNode = nil
	c.removed = true
	return nil
}

// mutableChildren returns the child list the current node lives in. Only
// roots and elements own child lists that transforms may rewrite.
func (c *Context) mutableChildren() (*[]ast.ChildNode, error) {
	switch p := c.Parent.(type) {
	case *ast.Root:
		return &p.Children, nil
	case *ast.Element:
		return &p.Children, nil
	case nil:
		return nil, fmt.Errorf("%w: node has no parent slot", ErrImmutableSlot)
	default:
		return nil, fmt.Errorf("%w: parent is %s", ErrImmutableSlot, p.Type())
	}
}

// SetCodegenNode sets el's codegen node. The transition is one way: once set
// it may not be replaced.
func (c *Context) SetCodegenNode(el *ast.Element, call *ast.CallExpression) error {
	if call == nil {
		return nil
	}
	if el.CodegenNode != nil {
		return fmt.Errorf("%w: <%s> at %s", ErrCodegenReassigned, el.Tag, el.Loc.Start)
	}
	el.CodegenNode = call
	return nil
}

// helperNames returns the helpers used at least once, sorted
func (c *Context) helperNames() []string {
	var names []string
	for name, n := range c.Helpers {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
