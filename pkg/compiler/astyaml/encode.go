package astyaml

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/recera/vtc/pkg/compiler/ast"
)

// Encode renders root as YAML
func Encode(root *ast.Root) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(encodeNode(root)); err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJSON renders root as indented JSON
func EncodeJSON(root *ast.Root) ([]byte, error) {
	data, err := json.MarshalIndent(encodeNode(root), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	return data, nil
}

func encodeNode(n ast.Node) *record {
	r := &record{Type: n.Type().String(), Loc: location(n.Location())}

	switch n := n.(type) {
	case *ast.Root:
		r.Children = encodeChildren(n.Children)
	case *ast.Element:
		r.NS = int(n.NS)
		r.Tag = n.Tag
		r.TagType = n.TagType.String()
		r.SelfClosing = n.IsSelfClosing
		for _, p := range n.Props {
			r.Props = append(r.Props, encodeNode(p))
		}
		r.Children = encodeChildren(n.Children)
		if n.CodegenNode != nil {
			r.Codegen = encodeArg(n.CodegenNode, n)
		}
	case *ast.Text:
		r.Content = n.Content
	case *ast.Comment:
		r.Content = n.Content
	case *ast.Expression:
		r.Content = n.Content
		r.IsStatic = n.IsStatic
	case *ast.Attribute:
		r.Name = n.Name
		if n.Value != nil {
			r.Value = encodeNode(n.Value)
		}
	case *ast.Directive:
		r.Name = n.Name
		r.Exp = encodeExpression(n.Exp)
		r.Arg = encodeExpression(n.Arg)
		r.Modifiers = n.Modifiers
	case *ast.If:
		for _, b := range n.Branches {
			r.Branches = append(r.Branches, encodeNode(b))
		}
	case *ast.IfBranch:
		r.Condition = encodeExpression(n.Condition)
		r.Children = encodeChildren(n.Children)
	case *ast.For:
		r.Source = encodeExpression(n.Source)
		r.ValueAlias = encodeExpression(n.ValueAlias)
		r.KeyAlias = encodeExpression(n.KeyAlias)
		r.IndexAlias = encodeExpression(n.ObjectIndexAlias)
		r.Children = encodeChildren(n.Children)
	case *ast.Property:
		r.Key = encodeExpression(n.Key)
		r.Value = encodeExpression(n.Value)
	}
	return r
}

func encodeChildren(children []ast.ChildNode) []*record {
	var out []*record
	for _, c := range children {
		out = append(out, encodeNode(c))
	}
	return out
}

func encodeExpression(e *ast.Expression) *record {
	if e == nil {
		return nil
	}
	return encodeNode(e)
}

// encodeArg encodes a codegen argument. A ChildList holding exactly the
// owning element's children is written as a bare CHILDREN reference.
func encodeArg(a ast.CallArgument, owner *ast.Element) *record {
	switch a := a.(type) {
	case ast.RawString:
		return &record{Type: typeRaw, Content: string(a)}
	case ast.ChildList:
		if sameChildren(a, owner.Children) {
			return &record{Type: typeChildren}
		}
		return &record{Type: typeChildren, Children: encodeChildren(a)}
	case *ast.CallExpression:
		r := &record{Type: a.Type().String(), Loc: location(a.Loc), Callee: a.Callee}
		for _, arg := range a.Arguments {
			r.Arguments = append(r.Arguments, encodeArg(arg, owner))
		}
		return r
	case *ast.ObjectExpression:
		r := &record{Type: a.Type().String(), Loc: location(a.Loc)}
		for _, p := range a.Properties {
			r.Properties = append(r.Properties, encodeNode(p))
		}
		return r
	case *ast.ArrayExpression:
		r := &record{Type: a.Type().String(), Loc: location(a.Loc)}
		for _, e := range a.Elements {
			r.Elements = append(r.Elements, encodeArg(e, owner))
		}
		return r
	case *ast.Expression:
		return encodeNode(a)
	}
	return nil
}

func sameChildren(list ast.ChildList, children []ast.ChildNode) bool {
	if len(list) != len(children) {
		return false
	}
	for i := range list {
		if list[i] != children[i] {
			return false
		}
	}
	return true
}
