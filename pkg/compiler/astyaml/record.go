// Package astyaml serializes template trees to YAML or JSON and decodes them
// back. Every node becomes a record tagged with its node type; codegen
// arguments that are not nodes use the RAW and CHILDREN tags.
package astyaml

import "github.com/recera/vtc/pkg/compiler/ast"

const (
	typeRaw      = "RAW"
	typeChildren = "CHILDREN"
)

// record is the serialized form of one node. Fields a node type does not
// use are left empty and omitted.
type record struct {
	Type string              `yaml:"type" json:"type"`
	Loc  *ast.SourceLocation `yaml:"loc,omitempty" json:"loc,omitempty"`

	// element
	NS          int       `yaml:"ns,omitempty" json:"ns,omitempty"`
	Tag         string    `yaml:"tag,omitempty" json:"tag,omitempty"`
	TagType     string    `yaml:"tagType,omitempty" json:"tagType,omitempty"`
	SelfClosing bool      `yaml:"selfClosing,omitempty" json:"selfClosing,omitempty"`
	Props       []*record `yaml:"props,omitempty" json:"props,omitempty"`
	Codegen     *record   `yaml:"codegen,omitempty" json:"codegen,omitempty"`

	// text, comment, expression, raw
	Content  string `yaml:"content,omitempty" json:"content,omitempty"`
	IsStatic bool   `yaml:"isStatic,omitempty" json:"isStatic,omitempty"`

	// attribute, directive
	Name      string   `yaml:"name,omitempty" json:"name,omitempty"`
	Value     *record  `yaml:"value,omitempty" json:"value,omitempty"`
	Exp       *record  `yaml:"exp,omitempty" json:"exp,omitempty"`
	Arg       *record  `yaml:"arg,omitempty" json:"arg,omitempty"`
	Modifiers []string `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`

	// if, branch, for
	Branches   []*record `yaml:"branches,omitempty" json:"branches,omitempty"`
	Condition  *record   `yaml:"condition,omitempty" json:"condition,omitempty"`
	Source     *record   `yaml:"source,omitempty" json:"source,omitempty"`
	ValueAlias *record   `yaml:"valueAlias,omitempty" json:"valueAlias,omitempty"`
	KeyAlias   *record   `yaml:"keyAlias,omitempty" json:"keyAlias,omitempty"`
	IndexAlias *record   `yaml:"objectIndexAlias,omitempty" json:"objectIndexAlias,omitempty"`

	Children []*record `yaml:"children,omitempty" json:"children,omitempty"`

	// codegen
	Callee     string    `yaml:"callee,omitempty" json:"callee,omitempty"`
	Arguments  []*record `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	Properties []*record `yaml:"properties,omitempty" json:"properties,omitempty"`
	Key        *record   `yaml:"key,omitempty" json:"key,omitempty"`
	Elements   []*record `yaml:"elements,omitempty" json:"elements,omitempty"`
}

func location(loc ast.SourceLocation) *ast.SourceLocation {
	if loc.IsSynthetic() {
		return nil
	}
	return &loc
}

func (r *record) location() ast.SourceLocation {
	if r.Loc == nil {
		return ast.LocStub
	}
	return *r.Loc
}
