package ast

import "strings"

// markupSpace is the whitespace set of the markup grammar
const markupSpace = " \t\r\n\f"

// IsWhitespace reports whether s is empty or consists only of markup whitespace
func IsWhitespace(s string) bool {
	return strings.TrimLeft(s, markupSpace) == ""
}

// NewRoot creates the template root
func NewRoot(children []ChildNode, loc SourceLocation) *Root {
	return &Root{Loc: loc, Children: children}
}

// NewElement creates an element without a codegen node
func NewElement(ns Namespace, tag string, tagType ElementType, selfClosing bool, props []PropNode, children []ChildNode, loc SourceLocation) *Element {
	return &Element{
		Loc:           loc,
		NS:            ns,
		Tag:           tag,
		TagType:       tagType,
		IsSelfClosing: selfClosing,
		Props:         props,
		Children:      children,
	}
}

// NewText creates a text node, deriving IsEmpty from content
func NewText(content string, loc SourceLocation) *Text {
	return &Text{
		Loc:     loc,
		Content: content,
		IsEmpty: IsWhitespace(content),
	}
}

func NewComment(content string, loc SourceLocation) *Comment {
	return &Comment{Loc: loc, Content: content}
}

// NewAttribute creates a static attribute; value may be nil
func NewAttribute(name string, value *Text, loc SourceLocation) *Attribute {
	return &Attribute{Loc: loc, Name: name, Value: value}
}

func NewDirective(name string, exp, arg *Expression, modifiers []string, loc SourceLocation) *Directive {
	return &Directive{
		Loc:       loc,
		Name:      name,
		Exp:       exp,
		Arg:       arg,
		Modifiers: modifiers,
	}
}

func NewIf(branches []*IfBranch, loc SourceLocation) *If {
	return &If{Loc: loc, Branches: branches}
}

// NewIfBranch creates a branch; a nil condition makes it the else branch
func NewIfBranch(condition *Expression, children []ChildNode, loc SourceLocation) *IfBranch {
	return &IfBranch{Loc: loc, Condition: condition, Children: children}
}

func NewFor(source, value, key, index *Expression, children []ChildNode, loc SourceLocation) *For {
	return &For{
		Loc:              loc,
		Source:           source,
		ValueAlias:       value,
		KeyAlias:         key,
		ObjectIndexAlias: index,
		Children:         children,
	}
}
