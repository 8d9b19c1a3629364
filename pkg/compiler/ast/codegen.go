package ast

// The codegen IR is a deliberately small subset of a JavaScript AST, just
// enough to describe render function output.

// CodegenNode is RawString, *CallExpression, *ObjectExpression,
// *ArrayExpression or *Expression.
type CodegenNode interface {
	CallArgument
	codegenNode()
}

// CallArgument is anything a CallExpression accepts as an argument: a
// CodegenNode or a ChildList.
type CallArgument interface {
	callArgument()
}

// RawString is an argument that is already literalized and is emitted as is
type RawString string

// ChildList passes syntax children straight through as a call argument
type ChildList []ChildNode

// CallExpression calls a runtime helper. Callee is an identifier only; it
// has no source text so it carries no location of its own.
type CallExpression struct {
	Loc       SourceLocation
	Callee    string
	Arguments []CallArgument
}

// ObjectExpression is an ordered property list. Duplicate keys are kept.
type ObjectExpression struct {
	Loc        SourceLocation
	Properties []*Property
}

// Property is one key/value pair of an ObjectExpression
type Property struct {
	Loc   SourceLocation
	Key   *Expression
	Value *Expression
}

// ArrayExpression is an array literal
type ArrayExpression struct {
	Loc      SourceLocation
	Elements []CodegenNode
}

func (*CallExpression) Type() NodeType   { return TypeCallExpression }
func (*ObjectExpression) Type() NodeType { return TypeObjectExpression }
func (*Property) Type() NodeType         { return TypeProperty }
func (*ArrayExpression) Type() NodeType  { return TypeArrayExpression }

func (n *CallExpression) Location() SourceLocation   { return n.Loc }
func (n *ObjectExpression) Location() SourceLocation { return n.Loc }
func (n *Property) Location() SourceLocation         { return n.Loc }
func (n *ArrayExpression) Location() SourceLocation  { return n.Loc }

func (RawString) codegenNode()         {}
func (*CallExpression) codegenNode()   {}
func (*ObjectExpression) codegenNode() {}
func (*ArrayExpression) codegenNode()  {}
func (*Expression) codegenNode()       {}

func (RawString) callArgument()         {}
func (ChildList) callArgument()         {}
func (*CallExpression) callArgument()   {}
func (*ObjectExpression) callArgument() {}
func (*ArrayExpression) callArgument()  {}
func (*Expression) callArgument()       {}

// NewArrayExpression wraps elements verbatim. An empty slice is an empty
// runtime array.
func NewArrayExpression(elements []CodegenNode, loc SourceLocation) *ArrayExpression {
	return &ArrayExpression{
		Loc:      loc,
		Elements: elements,
	}
}

// NewObjectExpression wraps properties verbatim, keeping order and duplicates
func NewObjectExpression(properties []*Property, loc SourceLocation) *ObjectExpression {
	return &ObjectExpression{
		Loc:        loc,
		Properties: properties,
	}
}

// NewObjectProperty pairs key with value. The key need not be static.
func NewObjectProperty(key, value *Expression, loc SourceLocation) *Property {
	return &Property{
		Loc:   loc,
		Key:   key,
		Value: value,
	}
}

// NewExpression creates an expression node. Empty content is allowed.
func NewExpression(content string, isStatic bool, loc SourceLocation) *Expression {
	return &Expression{
		Loc:      loc,
		Content:  content,
		IsStatic: isStatic,
	}
}

// NewCallExpression creates a call to callee. The callee is not checked
// against any helper table here.
func NewCallExpression(callee string, args []CallArgument, loc SourceLocation) *CallExpression {
	return &CallExpression{
		Loc:       loc,
		Callee:    callee,
		Arguments: args,
	}
}
