package parser

import "github.com/recera/vtc/pkg/compiler/ast"

// Options configures a parse. Platform packages fill in the tag hooks.
type Options struct {
	// Filename is used in error messages only
	Filename string

	// Delimiters open and close an interpolation, {{ and }} by default
	Delimiters [2]string

	// Comments keeps <!-- --> comments in the tree
	Comments bool

	// IsVoidTag reports tags that never have an end tag
	IsVoidTag func(tag string) bool

	// IsNativeTag reports platform elements. Tags it rejects become
	// components. When nil only capitalized tags are components.
	IsNativeTag func(tag string) bool

	// GetNamespace resolves an element's namespace from its parent
	GetNamespace func(tag string, parentNS ast.Namespace, parentTag string) ast.Namespace

	// DecodeEntities decodes character references in text and attribute
	// values. When nil text is kept verbatim.
	DecodeEntities func(raw string) string
}

// DefaultOptions returns platform-agnostic options
func DefaultOptions() Options {
	return Options{
		Delimiters: [2]string{"{{", "}}"},
		Comments:   false,
		IsVoidTag:  func(string) bool { return false },
		GetNamespace: func(_ string, parentNS ast.Namespace, _ string) ast.Namespace {
			return parentNS
		},
	}
}

func (o *Options) applyDefaults() {
	defaults := DefaultOptions()
	if o.Delimiters[0] == "" || o.Delimiters[1] == "" {
		o.Delimiters = defaults.Delimiters
	}
	if o.IsVoidTag == nil {
		o.IsVoidTag = defaults.IsVoidTag
	}
	if o.GetNamespace == nil {
		o.GetNamespace = defaults.GetNamespace
	}
	if o.Filename == "" {
		o.Filename = "template"
	}
}
