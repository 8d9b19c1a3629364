package astyaml

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/recera/vtc/pkg/compiler/ast"
)

var (
	// ErrUnknownNodeType is returned for a record whose type tag is not a
	// node type valid in its position
	ErrUnknownNodeType = errors.New("unknown node type")
	// ErrMissingField is returned when a required field is absent
	ErrMissingField = errors.New("missing field")
)

// Decode parses a tree written by Encode or EncodeJSON. JSON input is
// accepted since it is valid YAML.
func Decode(data []byte) (*ast.Root, error) {
	var r record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	if r.Type != ast.TypeRoot.String() {
		return nil, fmt.Errorf("%w: top level is %q, want %s", ErrUnknownNodeType, r.Type, ast.TypeRoot)
	}
	children, err := decodeChildren(r.Children)
	if err != nil {
		return nil, err
	}
	return ast.NewRoot(children, r.location()), nil
}

func decodeChildren(records []*record) ([]ast.ChildNode, error) {
	var children []ast.ChildNode
	for i, r := range records {
		child, err := decodeChild(r)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func decodeChild(r *record) (ast.ChildNode, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: child", ErrMissingField)
	}
	typ, ok := ast.ParseNodeType(r.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, r.Type)
	}

	switch typ {
	case ast.TypeElement:
		return decodeElement(r)
	case ast.TypeText:
		return ast.NewText(r.Content, r.location()), nil
	case ast.TypeComment:
		return ast.NewComment(r.Content, r.location()), nil
	case ast.TypeExpression:
		return ast.NewExpression(r.Content, r.IsStatic, r.location()), nil
	case ast.TypeIf:
		var branches []*ast.IfBranch
		for i, b := range r.Branches {
			branch, err := decodeBranch(b)
			if err != nil {
				return nil, fmt.Errorf("branch %d: %w", i, err)
			}
			branches = append(branches, branch)
		}
		return ast.NewIf(branches, r.location()), nil
	case ast.TypeFor:
		return decodeFor(r)
	}
	return nil, fmt.Errorf("%w: %s in child position", ErrUnknownNodeType, typ)
}

func decodeElement(r *record) (*ast.Element, error) {
	tagType, ok := ast.ParseElementType(r.TagType)
	if !ok && r.TagType != "" {
		return nil, fmt.Errorf("%w: element type %q", ErrUnknownNodeType, r.TagType)
	}

	var props []ast.PropNode
	for i, p := range r.Props {
		prop, err := decodeProp(p)
		if err != nil {
			return nil, fmt.Errorf("prop %d: %w", i, err)
		}
		props = append(props, prop)
	}

	children, err := decodeChildren(r.Children)
	if err != nil {
		return nil, err
	}

	el := ast.NewElement(ast.Namespace(r.NS), r.Tag, tagType, r.SelfClosing, props, children, r.location())
	if r.Codegen != nil {
		arg, err := decodeArg(r.Codegen, el)
		if err != nil {
			return nil, fmt.Errorf("codegen: %w", err)
		}
		call, ok := arg.(*ast.CallExpression)
		if !ok {
			return nil, fmt.Errorf("%w: element codegen is %s", ErrUnknownNodeType, r.Codegen.Type)
		}
		el.CodegenNode = call
	}
	return el, nil
}

func decodeProp(r *record) (ast.PropNode, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: prop", ErrMissingField)
	}
	switch r.Type {
	case ast.TypeAttribute.String():
		var value *ast.Text
		if r.Value != nil {
			value = ast.NewText(r.Value.Content, r.Value.location())
		}
		return ast.NewAttribute(r.Name, value, r.location()), nil
	case ast.TypeDirective.String():
		return ast.NewDirective(r.Name, decodeExpression(r.Exp), decodeExpression(r.Arg), r.Modifiers, r.location()), nil
	}
	return nil, fmt.Errorf("%w: %q in prop position", ErrUnknownNodeType, r.Type)
}

func decodeBranch(r *record) (*ast.IfBranch, error) {
	if r == nil || r.Type != ast.TypeIfBranch.String() {
		return nil, fmt.Errorf("%w: expected %s", ErrUnknownNodeType, ast.TypeIfBranch)
	}
	children, err := decodeChildren(r.Children)
	if err != nil {
		return nil, err
	}
	return ast.NewIfBranch(decodeExpression(r.Condition), children, r.location()), nil
}

func decodeFor(r *record) (*ast.For, error) {
	if r.Source == nil {
		return nil, fmt.Errorf("%w: for source", ErrMissingField)
	}
	children, err := decodeChildren(r.Children)
	if err != nil {
		return nil, err
	}
	return ast.NewFor(
		decodeExpression(r.Source),
		decodeExpression(r.ValueAlias),
		decodeExpression(r.KeyAlias),
		decodeExpression(r.IndexAlias),
		children,
		r.location(),
	), nil
}

func decodeExpression(r *record) *ast.Expression {
	if r == nil {
		return nil
	}
	return ast.NewExpression(r.Content, r.IsStatic, r.location())
}

// decodeArg decodes a codegen argument. A bare CHILDREN record refers to
// owner's children.
func decodeArg(r *record, owner *ast.Element) (ast.CallArgument, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: argument", ErrMissingField)
	}

	switch r.Type {
	case typeRaw:
		return ast.RawString(r.Content), nil
	case typeChildren:
		if r.Children == nil {
			return ast.ChildList(owner.Children), nil
		}
		children, err := decodeChildren(r.Children)
		if err != nil {
			return nil, err
		}
		return ast.ChildList(children), nil
	case ast.TypeCallExpression.String():
		var args []ast.CallArgument
		for i, a := range r.Arguments {
			arg, err := decodeArg(a, owner)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			args = append(args, arg)
		}
		return ast.NewCallExpression(r.Callee, args, r.location()), nil
	case ast.TypeObjectExpression.String():
		var props []*ast.Property
		for i, p := range r.Properties {
			if p == nil || p.Type != ast.TypeProperty.String() {
				return nil, fmt.Errorf("property %d: %w: expected %s", i, ErrUnknownNodeType, ast.TypeProperty)
			}
			props = append(props, ast.NewObjectProperty(decodeExpression(p.Key), decodeExpression(p.Value), p.location()))
		}
		return ast.NewObjectExpression(props, r.location()), nil
	case ast.TypeArrayExpression.String():
		var elements []ast.CodegenNode
		for i, e := range r.Elements {
			arg, err := decodeArg(e, owner)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			node, ok := arg.(ast.CodegenNode)
			if !ok {
				return nil, fmt.Errorf("element %d: %w: %s in array", i, ErrUnknownNodeType, e.Type)
			}
			elements = append(elements, node)
		}
		return ast.NewArrayExpression(elements, r.location()), nil
	case ast.TypeExpression.String():
		return decodeExpression(r), nil
	}
	return nil, fmt.Errorf("%w: %q in argument position", ErrUnknownNodeType, r.Type)
}
