// Package ast defines the node model produced by the template parser and
// consumed by transforms and the code generator.
//
// Two disjoint node families share one location type: syntax nodes (Root,
// Element, Text, ...) describe the template as written, and codegen nodes
// (CallExpression, ObjectExpression, Property, ArrayExpression) describe what
// the generator should emit. Expression belongs to both.
//
// Nodes never point at their parent. Parent context is carried by whoever is
// walking the tree, so subtrees can be moved between parents freely.
package ast

// Namespace identifies the markup namespace an element belongs to. Platform
// packages declare values beyond NamespaceHTML.
type Namespace int

const (
	// NamespaceHTML is plain markup
	NamespaceHTML Namespace = iota
)

// NodeType discriminates the node variants
type NodeType uint8

const (
	// TypeRoot is the top of a parsed template
	TypeRoot NodeType = iota
	// TypeElement is a tag with props and children
	TypeElement
	// TypeText is literal text between tags
	TypeText
	// TypeComment is an HTML comment kept when comments are enabled
	TypeComment
	// TypeExpression is a JavaScript expression, interpolated or bound
	TypeExpression
	// TypeAttribute is a static name="value" prop
	TypeAttribute
	// TypeDirective is a v- prop or one of its shorthands
	TypeDirective

	// TypeIf groups the branches of a v-if chain
	TypeIf
	// TypeIfBranch is one v-if, v-else-if or v-else arm
	TypeIfBranch
	// TypeFor is a v-for loop over its source expression
	TypeFor

	// TypeCallExpression is a runtime helper call
	TypeCallExpression
	// TypeObjectExpression is an object literal
	TypeObjectExpression
	// TypeProperty is one key/value pair of an object literal
	TypeProperty
	// TypeArrayExpression is an array literal
	TypeArrayExpression
)

var nodeTypeNames = [...]string{
	TypeRoot:             "ROOT",
	TypeElement:          "ELEMENT",
	TypeText:             "TEXT",
	TypeComment:          "COMMENT",
	TypeExpression:       "EXPRESSION",
	TypeAttribute:        "ATTRIBUTE",
	TypeDirective:        "DIRECTIVE",
	TypeIf:               "IF",
	TypeIfBranch:         "IF_BRANCH",
	TypeFor:              "FOR",
	TypeCallExpression:   "CALL_EXPRESSION",
	TypeObjectExpression: "OBJECT_EXPRESSION",
	TypeProperty:         "PROPERTY",
	TypeArrayExpression:  "ARRAY_EXPRESSION",
}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "UNKNOWN"
}

// IsCodegen reports whether t belongs to the codegen IR family
func (t NodeType) IsCodegen() bool {
	return t >= TypeCallExpression && t <= TypeArrayExpression
}

// ParseNodeType is the inverse of NodeType.String
func ParseNodeType(s string) (NodeType, bool) {
	for i, name := range nodeTypeNames {
		if name == s {
			return NodeType(i), true
		}
	}
	return 0, false
}

// ElementType tells codegen how to interpret an element's tag
type ElementType uint8

const (
	// ElementPlain is a native platform element
	ElementPlain ElementType = iota
	// ElementComponent is a user component resolved at runtime
	ElementComponent
	// ElementSlot is a <slot> outlet
	ElementSlot
	// ElementTemplate is a <template> wrapper carrying a structural directive
	ElementTemplate
)

var elementTypeNames = [...]string{"ELEMENT", "COMPONENT", "SLOT", "TEMPLATE"}

func (t ElementType) String() string {
	if int(t) < len(elementTypeNames) {
		return elementTypeNames[t]
	}
	return "UNKNOWN"
}

// ParseElementType is the inverse of ElementType.String
func ParseElementType(s string) (ElementType, bool) {
	for i, name := range elementTypeNames {
		if name == s {
			return ElementType(i), true
		}
	}
	return 0, false
}

// Node is implemented by every syntax and codegen node
type Node interface {
	Type() NodeType
	Location() SourceLocation
}

// ChildNode is a node that may appear in a children list:
// Element, Expression, Text, Comment, If or For.
type ChildNode interface {
	Node
	childNode()
}

// ParentNode is a node owning a children list walked by traversal:
// Root, Element, IfBranch or For.
type ParentNode interface {
	Node
	ChildNodes() []ChildNode
	parentNode()
}

// PropNode is an element prop: Attribute or Directive
type PropNode interface {
	Node
	propNode()
}

// Root is the whole-template container
type Root struct {
	Loc      SourceLocation
	Children []ChildNode
}

// Element is a markup element, component, slot outlet or template wrapper
type Element struct {
	Loc           SourceLocation
	NS            Namespace
	Tag           string
	TagType       ElementType
	IsSelfClosing bool
	Props         []PropNode
	Children      []ChildNode

	// CodegenNode is nil until a transform populates it. Once set it is
	// never replaced.
	CodegenNode *CallExpression
}

// Text is literal text content
type Text struct {
	Loc     SourceLocation
	Content string
	IsEmpty bool
}

// Comment never emits runtime output
type Comment struct {
	Loc     SourceLocation
	Content string
}

// Attribute is a static name/value pair. A nil Value is a boolean attribute.
type Attribute struct {
	Loc   SourceLocation
	Name  string
	Value *Text
}

// Directive is a dynamic binding or behavioral annotation, e.g.
// v-on:click.stop="handler".
type Directive struct {
	Loc       SourceLocation
	Name      string
	Exp       *Expression
	Arg       *Expression
	Modifiers []string
}

// Expression is a static token or a dynamic expression evaluated at render
// time. IsStatic gates hoisting.
type Expression struct {
	Loc      SourceLocation
	Content  string
	IsStatic bool
}

// If is an ordered if / else-if / else chain
type If struct {
	Loc      SourceLocation
	Branches []*IfBranch
}

// IfBranch is one arm of an If. A nil Condition marks the trailing else.
type IfBranch struct {
	Loc       SourceLocation
	Condition *Expression
	Children  []ChildNode
}

// For iterates Source, binding the optional aliases per iteration
type For struct {
	Loc              SourceLocation
	Source           *Expression
	ValueAlias       *Expression
	KeyAlias         *Expression
	ObjectIndexAlias *Expression
	Children         []ChildNode
}

func (*Root) Type() NodeType       { return TypeRoot }
func (*Element) Type() NodeType    { return TypeElement }
func (*Text) Type() NodeType       { return TypeText }
func (*Comment) Type() NodeType    { return TypeComment }
func (*Attribute) Type() NodeType  { return TypeAttribute }
func (*Directive) Type() NodeType  { return TypeDirective }
func (*Expression) Type() NodeType { return TypeExpression }
func (*If) Type() NodeType         { return TypeIf }
func (*IfBranch) Type() NodeType   { return TypeIfBranch }
func (*For) Type() NodeType        { return TypeFor }

func (n *Root) Location() SourceLocation       { return n.Loc }
func (n *Element) Location() SourceLocation    { return n.Loc }
func (n *Text) Location() SourceLocation       { return n.Loc }
func (n *Comment) Location() SourceLocation    { return n.Loc }
func (n *Attribute) Location() SourceLocation  { return n.Loc }
func (n *Directive) Location() SourceLocation  { return n.Loc }
func (n *Expression) Location() SourceLocation { return n.Loc }
func (n *If) Location() SourceLocation         { return n.Loc }
func (n *IfBranch) Location() SourceLocation   { return n.Loc }
func (n *For) Location() SourceLocation        { return n.Loc }

func (*Element) childNode()    {}
func (*Expression) childNode() {}
func (*Text) childNode()       {}
func (*Comment) childNode()    {}
func (*If) childNode()         {}
func (*For) childNode()        {}

func (*Root) parentNode()     {}
func (*Element) parentNode()  {}
func (*IfBranch) parentNode() {}
func (*For) parentNode()      {}

func (n *Root) ChildNodes() []ChildNode     { return n.Children }
func (n *Element) ChildNodes() []ChildNode  { return n.Children }
func (n *IfBranch) ChildNodes() []ChildNode { return n.Children }
func (n *For) ChildNodes() []ChildNode      { return n.Children }

func (*Attribute) propNode() {}
func (*Directive) propNode() {}

// IsElse reports whether b is the terminal else branch
func (b *IfBranch) IsElse() bool {
	return b.Condition == nil
}

// FindProp returns the first attribute or directive on el with the given
// name. Directive names are matched without their "v-" prefix.
func FindProp(el *Element, name string) PropNode {
	for _, p := range el.Props {
		switch p := p.(type) {
		case *Attribute:
			if p.Name == name {
				return p
			}
		case *Directive:
			if p.Name == name {
				return p
			}
		}
	}
	return nil
}

// FindDirective returns the first directive on el with the given name
func FindDirective(el *Element, name string) *Directive {
	for _, p := range el.Props {
		if d, ok := p.(*Directive); ok && d.Name == name {
			return d
		}
	}
	return nil
}
