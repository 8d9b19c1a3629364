package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/recera/vtc/pkg/compiler/ast"
)

const maxDetail = 48

// Row is one line of a rendered syntax tree
type Row struct {
	// Box drawing guides leading up to the node
	Prefix string
	Node   ast.Node
	Kind   string
	Detail string
}

// Rows flattens the tree under root into display rows, depth first.
// Props are folded into their element's detail rather than given rows.
func Rows(root *ast.Root) []Row {
	rows := []Row{{Node: root, Kind: root.Type().String(), Detail: fmt.Sprintf("%d children", len(root.Children))}}
	var b rowBuilder
	b.children(childrenOf(root), "")
	return append(rows, b.rows...)
}

type rowBuilder struct {
	rows []Row
}

func (b *rowBuilder) children(nodes []ast.Node, indent string) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		b.rows = append(b.rows, Row{
			Prefix: indent + branch,
			Node:   n,
			Kind:   n.Type().String(),
			Detail: detail(n),
		})
		b.children(childrenOf(n), indent+next)
	}
}

func childrenOf(n ast.Node) []ast.Node {
	var out []ast.Node
	switch n := n.(type) {
	case *ast.If:
		for _, br := range n.Branches {
			if br != nil {
				out = append(out, br)
			}
		}
		return out
	case ast.ParentNode:
		for _, c := range n.ChildNodes() {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func detail(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Element:
		var b strings.Builder
		b.WriteString("<" + n.Tag + ">")
		if n.TagType != ast.ElementPlain {
			b.WriteString(" " + strings.ToLower(n.TagType.String()))
		}
		for _, p := range n.Props {
			b.WriteString(" " + propName(p))
		}
		if n.CodegenNode != nil {
			b.WriteString(" → " + n.CodegenNode.Callee)
		}
		return b.String()
	case *ast.Text:
		return quote(n.Content)
	case *ast.Comment:
		return quote(n.Content)
	case *ast.Expression:
		return "{{ " + truncate(n.Content) + " }}"
	case *ast.If:
		return fmt.Sprintf("%d branches", len(n.Branches))
	case *ast.IfBranch:
		if n.IsElse() {
			return "else"
		}
		return "if " + truncate(n.Condition.Content)
	case *ast.For:
		return forDetail(n)
	}
	return ""
}

func propName(p ast.PropNode) string {
	switch p := p.(type) {
	case *ast.Attribute:
		return p.Name
	case *ast.Directive:
		name := "v-" + p.Name
		if p.Arg != nil {
			name += ":" + p.Arg.Content
		}
		for _, m := range p.Modifiers {
			name += "." + m
		}
		return name
	}
	return ""
}

func forDetail(n *ast.For) string {
	var aliases []string
	for _, a := range []*ast.Expression{n.ValueAlias, n.KeyAlias, n.ObjectIndexAlias} {
		if a != nil {
			aliases = append(aliases, a.Content)
		}
	}
	source := ""
	if n.Source != nil {
		source = n.Source.Content
	}
	return truncate("(" + strings.Join(aliases, ", ") + ") in " + source)
}

func quote(s string) string {
	return strconv.Quote(truncate(s))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxDetail {
		return s
	}
	return string(r[:maxDetail-1]) + "…"
}

// RenderTree renders the tree under root with guides, styled kinds and
// source positions, one node per line
func RenderTree(root *ast.Root) string {
	var b strings.Builder
	for _, row := range Rows(root) {
		b.WriteString(renderRow(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderRow(row Row) string {
	style := kindStyle
	switch row.Node.(type) {
	case *ast.If, *ast.IfBranch, *ast.For:
		style = controlStyle
	}
	line := mutedStyle.Render(row.Prefix) + style.Render(row.Kind)
	if row.Detail != "" {
		line += " " + detailStyle.Render(row.Detail)
	}
	if loc := row.Node.Location(); !loc.IsSynthetic() {
		line += " " + mutedStyle.Render(loc.String())
	}
	return line
}
