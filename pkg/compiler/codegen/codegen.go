// Package codegen renders a transformed template tree as the source of a
// render function.
package codegen

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/runtime"
)

var (
	// ErrUnknownHelper is returned for a callee that is neither a runtime
	// helper nor listed in Options.Helpers
	ErrUnknownHelper = errors.New("unknown helper")
	// ErrUnknownNodeType is returned for a node outside the closed unions
	ErrUnknownNodeType = errors.New("unknown node type")
)

// Options configures generation
type Options struct {
	// RuntimeGlobal is the global the helpers are read from, Vue by default
	RuntimeGlobal string

	// Helpers extends the runtime helper table with extra allowed callees
	Helpers []string

	// Imports are helpers referenced outside callee position, such as the
	// Fragment symbol, that must be imported regardless
	Imports []string

	// Hoists are element calls emitted once outside the render function
	Hoists []*ast.CallExpression
}

// Mapping ties a span of generated code to the template source it came from
type Mapping struct {
	Offset int                `json:"offset" yaml:"offset"`
	Length int                `json:"length" yaml:"length"`
	Source ast.SourceLocation `json:"source" yaml:"source"`
}

// Result is the generated render function
type Result struct {
	Code     string
	Helpers  []string
	Mappings []Mapping
}

type generator struct {
	opts     Options
	extra    map[string]bool
	buf      strings.Builder
	helpers  map[string]bool
	hoisted  map[*ast.CallExpression]int
	mappings []Mapping
	err      error
}

// Generate renders root. Elements without a codegen node are elided.
func Generate(root *ast.Root, opts Options) (*Result, error) {
	if opts.RuntimeGlobal == "" {
		opts.RuntimeGlobal = "Vue"
	}
	g := &generator{
		opts:    opts,
		extra:   make(map[string]bool),
		helpers: make(map[string]bool),
		hoisted: make(map[*ast.CallExpression]int),
	}
	for _, h := range opts.Helpers {
		g.extra[h] = true
	}
	for _, h := range opts.Imports {
		g.helper(h)
	}

	for i, call := range opts.Hoists {
		g.writef("const _hoisted_%d = ", i+1)
		g.genCall(call)
		g.write("\n")
		g.hoisted[call] = i + 1
	}
	if len(opts.Hoists) > 0 {
		g.write("\n")
	}

	g.write("return function render(_ctx, _cache) {\n")
	g.write("  with (_ctx) {\n")
	g.write("    return ")
	g.genRoot(root)
	g.write("\n  }\n}\n")

	if g.err != nil {
		return nil, g.err
	}

	helpers := make([]string, 0, len(g.helpers))
	for h := range g.helpers {
		helpers = append(helpers, h)
	}
	sort.Strings(helpers)

	preamble := g.preamble(helpers)
	for i := range g.mappings {
		g.mappings[i].Offset += len(preamble)
	}

	return &Result{
		Code:     preamble + g.buf.String(),
		Helpers:  helpers,
		Mappings: g.mappings,
	}, nil
}

func (g *generator) preamble(helpers []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "const _Vue = %s\n", g.opts.RuntimeGlobal)
	if len(helpers) > 0 {
		aliases := make([]string, len(helpers))
		for i, h := range helpers {
			aliases[i] = h + ": " + runtime.Alias(h)
		}
		fmt.Fprintf(&b, "const { %s } = _Vue\n", strings.Join(aliases, ", "))
	}
	b.WriteString("\n")
	return b.String()
}

// helper validates name and records it for import, returning its alias
func (g *generator) helper(name string) string {
	if !runtime.IsHelper(name) && !g.extra[name] {
		g.fail(fmt.Errorf("%w: %q", ErrUnknownHelper, name))
	}
	g.helpers[name] = true
	return runtime.Alias(name)
}

func (g *generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func (g *generator) write(s string) {
	g.buf.WriteString(s)
}

func (g *generator) writef(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

// writeMapped writes code that came from loc and records the mapping
func (g *generator) writeMapped(code string, loc ast.SourceLocation) {
	if !loc.IsSynthetic() {
		g.mappings = append(g.mappings, Mapping{
			Offset: g.buf.Len(),
			Length: len(code),
			Source: loc,
		})
	}
	g.write(code)
}
