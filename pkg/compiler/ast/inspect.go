package ast

// Inspect walks the syntax tree rooted at n depth-first. fn is called with
// each node and the chain of its ancestors, outermost first; returning false
// skips the node's descendants. The path slice is reused between calls and
// must be copied if retained.
//
// Props, directive expressions, if conditions and for aliases are visited
// before children. Element codegen nodes are not visited; use
// InspectCodegen for those.
func Inspect(n Node, fn func(n Node, path []Node) bool) {
	w := walker{fn: fn}
	w.walk(n)
}

type walker struct {
	fn   func(Node, []Node) bool
	path []Node
}

func (w *walker) walk(n Node) {
	if n == nil {
		return
	}
	if !w.fn(n, w.path) {
		return
	}
	w.path = append(w.path, n)
	defer func() { w.path = w.path[:len(w.path)-1] }()

	switch n := n.(type) {
	case *Root:
		w.children(n.Children)
	case *Element:
		for _, p := range n.Props {
			w.walk(p)
		}
		w.children(n.Children)
	case *Attribute:
		if n.Value != nil {
			w.walk(n.Value)
		}
	case *Directive:
		w.expr(n.Arg)
		w.expr(n.Exp)
	case *If:
		for _, b := range n.Branches {
			if b != nil {
				w.walk(b)
			}
		}
	case *IfBranch:
		w.expr(n.Condition)
		w.children(n.Children)
	case *For:
		w.expr(n.Source)
		w.expr(n.ValueAlias)
		w.expr(n.KeyAlias)
		w.expr(n.ObjectIndexAlias)
		w.children(n.Children)
	}
}

func (w *walker) children(cs []ChildNode) {
	for _, c := range cs {
		w.walk(c)
	}
}

// expr guards against typed nil pointers stored in a Node interface
func (w *walker) expr(e *Expression) {
	if e != nil {
		w.walk(e)
	}
}

// InspectCodegen walks a codegen subtree depth-first, calling fn for every
// codegen node and expression. RawString arguments are skipped. ChildList
// arguments are not descended into since they reference syntax children
// owned elsewhere.
func InspectCodegen(n CallArgument, fn func(n Node) bool) {
	switch n := n.(type) {
	case *CallExpression:
		if n == nil || !fn(n) {
			return
		}
		for _, a := range n.Arguments {
			InspectCodegen(a, fn)
		}
	case *ObjectExpression:
		if n == nil || !fn(n) {
			return
		}
		for _, p := range n.Properties {
			if p == nil || !fn(p) {
				continue
			}
			if p.Key != nil {
				fn(p.Key)
			}
			if p.Value != nil {
				fn(p.Value)
			}
		}
	case *ArrayExpression:
		if n == nil || !fn(n) {
			return
		}
		for _, e := range n.Elements {
			InspectCodegen(e, fn)
		}
	case *Expression:
		if n != nil {
			fn(n)
		}
	}
}

// Count returns the number of syntax nodes reachable from n
func Count(n Node) int {
	total := 0
	Inspect(n, func(Node, []Node) bool {
		total++
		return true
	})
	return total
}
