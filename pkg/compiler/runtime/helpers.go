// Package runtime names the helpers a compiled render function imports from
// the renderer. Transforms use these names as CallExpression callees; the
// code generator resolves callees against the same table.
package runtime

const (
	Fragment           = "Fragment"
	CreateVNode        = "createVNode"
	CreateCommentVNode = "createCommentVNode"
	CreateTextVNode    = "createTextVNode"
	ResolveComponent   = "resolveComponent"
	ResolveDynamic     = "resolveDynamicComponent"
	ResolveDirective   = "resolveDirective"
	WithDirectives     = "withDirectives"
	WithModifiers      = "withModifiers"
	WithKeys           = "withKeys"
	RenderList         = "renderList"
	RenderSlot         = "renderSlot"
	ToDisplayString    = "toDisplayString"
	ToHandlerKey       = "toHandlerKey"
	VShow              = "vShow"
	VModelText         = "vModelText"
)

var known = map[string]bool{
	Fragment:           true,
	CreateVNode:        true,
	CreateCommentVNode: true,
	CreateTextVNode:    true,
	ResolveComponent:   true,
	ResolveDynamic:     true,
	ResolveDirective:   true,
	WithDirectives:     true,
	WithModifiers:      true,
	WithKeys:           true,
	RenderList:         true,
	RenderSlot:         true,
	ToDisplayString:    true,
	ToHandlerKey:       true,
	VShow:              true,
	VModelText:         true,
}

// IsHelper reports whether name is a built-in runtime helper
func IsHelper(name string) bool {
	return known[name]
}

// Alias is the local identifier a helper is imported as
func Alias(name string) string {
	return "_" + name
}
