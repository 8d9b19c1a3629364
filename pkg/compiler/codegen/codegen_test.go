package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/parser"
	"github.com/recera/vtc/pkg/compiler/transform"
)

func compile(t *testing.T, source string, hoist bool) *Result {
	t.Helper()
	root, err := parser.Parse(source, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	tr, err := transform.Transform(root, transform.Options{HoistStatic: hoist})
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}
	res, err := Generate(root, Options{Imports: tr.Helpers, Hoists: tr.Hoists})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	return res
}

// body returns the expression the render function returns
func body(t *testing.T, code string) string {
	t.Helper()
	const marker = "    return "
	i := strings.Index(code, marker)
	if i < 0 {
		t.Fatalf("no return statement in:\n%s", code)
	}
	rest := code[i+len(marker):]
	return rest[:strings.IndexByte(rest, '\n')]
}

func TestGenerate_Element(t *testing.T) {
	res := compile(t, `<div id="app">{{ msg }}</div>`, false)

	want := `const _Vue = Vue
const { createTextVNode: _createTextVNode, createVNode: _createVNode, toDisplayString: _toDisplayString } = _Vue

return function render(_ctx, _cache) {
  with (_ctx) {
    return _createVNode("div", { id: "app" }, [_createTextVNode(_toDisplayString(msg))])
  }
}
`
	if diff := cmp.Diff(want, res.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"createTextVNode", "createVNode", "toDisplayString"}, res.Helpers); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_ControlFlow(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "if without else",
			source: `<p v-if="ok">a</p><p v-else-if="other">b</p>`,
			want: `(ok) ? _createVNode("p", null, [_createTextVNode("a")]) : ` +
				`(other) ? _createVNode("p", null, [_createTextVNode("b")]) : _createCommentVNode("v-if", true)`,
		},
		{
			name:   "if with else",
			source: `<p v-if="ok">a</p><i v-else/>`,
			want:   `(ok) ? _createVNode("p", null, [_createTextVNode("a")]) : _createVNode("i")`,
		},
		{
			name:   "for",
			source: `<li v-for="(item, i) in items">{{ item }}</li>`,
			want: `_createVNode(_Fragment, null, _renderList(items, (item, i) => ` +
				`_createVNode("li", null, [_createTextVNode(_toDisplayString(item))])))`,
		},
		{
			name:   "for with only a key alias",
			source: `<b v-for="(, k) in obj"/>`,
			want:   `_createVNode(_Fragment, null, _renderList(obj, (_, k) => _createVNode("b")))`,
		},
		{
			name:   "template branch with several children",
			source: `<template v-if="ok"><a/><b/></template>`,
			want: `(ok) ? _createVNode(_Fragment, null, [_createVNode("a"), _createVNode("b")]) : ` +
				`_createCommentVNode("v-if", true)`,
		},
		{
			name:   "several roots",
			source: `<a/><b/>`,
			want:   `_createVNode(_Fragment, null, [_createVNode("a"), _createVNode("b")])`,
		},
		{
			name:   "empty template",
			source: ``,
			want:   `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, tt.source, false)
			if got := body(t, res.Code); got != tt.want {
				t.Errorf("body mismatch\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestGenerate_Directives(t *testing.T) {
	res := compile(t, `<input v-model="name" @keyup.stop="save"/>`, false)
	want := `_withDirectives(_createVNode("input", { "onUpdate:modelValue": $event => ((name) = $event), ` +
		`onKeyup: _withModifiers(save, ["stop"]) }), [[_vModelText, name]])`
	if got := body(t, res.Code); got != want {
		t.Errorf("body mismatch\n got: %s\nwant: %s", got, want)
	}
	for _, h := range []string{"vModelText: _vModelText", "withModifiers: _withModifiers", "withDirectives: _withDirectives"} {
		if !strings.Contains(res.Code, h) {
			t.Errorf("preamble is missing %q", h)
		}
	}
}

func TestGenerate_KeyModifiers(t *testing.T) {
	res := compile(t, `<input @keyup.enter="submit"/>`, false)
	want := `_createVNode("input", { onKeyup: _withKeys(submit, ["enter"]) })`
	if got := body(t, res.Code); got != want {
		t.Errorf("body mismatch\n got: %s\nwant: %s", got, want)
	}
	if !strings.Contains(res.Code, "withKeys: _withKeys") {
		t.Errorf("preamble is missing withKeys in:\n%s", res.Code)
	}
}

func TestGenerate_DynamicComponent(t *testing.T) {
	res := compile(t, `<component :is="view" :msg="m"/>`, false)
	want := `_createVNode(_resolveDynamicComponent(view), { msg: m })`
	if got := body(t, res.Code); got != want {
		t.Errorf("body mismatch\n got: %s\nwant: %s", got, want)
	}
	if strings.Contains(res.Code, `"component"`) {
		t.Errorf("component tag should not be resolved by name:\n%s", res.Code)
	}
}

func TestGenerate_HoistStatic(t *testing.T) {
	res := compile(t, `<div><p class="x">hi</p>{{ a }}</div>`, true)

	hoist := `const _hoisted_1 = _createVNode("p", { class: "x" }, [_createTextVNode("hi")])` + "\n"
	if !strings.Contains(res.Code, hoist) {
		t.Errorf("missing hoist declaration in:\n%s", res.Code)
	}
	want := `_createVNode("div", null, [_hoisted_1, _createTextVNode(_toDisplayString(a))])`
	if got := body(t, res.Code); got != want {
		t.Errorf("body mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestGenerate_ElidedElements(t *testing.T) {
	text := ast.NewText("kept", ast.LocStub)
	elided := ast.NewElement(ast.NamespaceHTML, "div", ast.ElementPlain, false, nil, nil, ast.LocStub)

	res, err := Generate(ast.NewRoot([]ast.ChildNode{elided}, ast.LocStub), Options{})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if got := body(t, res.Code); got != "null" {
		t.Errorf("body = %q, want null", got)
	}
	if len(res.Helpers) != 0 {
		t.Errorf("expected no helpers, got %v", res.Helpers)
	}

	res, err = Generate(ast.NewRoot([]ast.ChildNode{elided, text}, ast.LocStub), Options{})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if got := body(t, res.Code); got != `_createTextVNode("kept")` {
		t.Errorf("body = %q", got)
	}
}

func TestGenerate_UnknownHelper(t *testing.T) {
	el := ast.NewElement(ast.NamespaceHTML, "div", ast.ElementPlain, false, nil, nil, ast.LocStub)
	el.CodegenNode = ast.NewCallExpression("mystery", []ast.CallArgument{ast.RawString("1")}, ast.LocStub)
	root := ast.NewRoot([]ast.ChildNode{el}, ast.LocStub)

	if _, err := Generate(root, Options{}); !errors.Is(err, ErrUnknownHelper) {
		t.Fatalf("expected ErrUnknownHelper, got %v", err)
	}

	res, err := Generate(root, Options{Helpers: []string{"mystery"}})
	if err != nil {
		t.Fatalf("Generate() with extra helper failed: %v", err)
	}
	if got := body(t, res.Code); got != "_mystery(1)" {
		t.Errorf("body = %q", got)
	}
	if diff := cmp.Diff([]string{"mystery"}, res.Helpers); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}

	if _, err := Generate(root, Options{Helpers: []string{"mystery"}, Imports: []string{"other"}}); !errors.Is(err, ErrUnknownHelper) {
		t.Errorf("unknown import: expected ErrUnknownHelper, got %v", err)
	}
}

func TestGenerate_IRShapes(t *testing.T) {
	str := func(s string) *ast.Expression { return ast.NewExpression(s, true, ast.LocStub) }
	dyn := func(s string) *ast.Expression { return ast.NewExpression(s, false, ast.LocStub) }

	props := ast.NewObjectExpression([]*ast.Property{
		ast.NewObjectProperty(str("id"), str(`a"b`), ast.LocStub),
		ast.NewObjectProperty(str("data-x"), dyn("x"), ast.LocStub),
		ast.NewObjectProperty(dyn("key"), str("<v>"), ast.LocStub),
		ast.NewObjectProperty(str("id"), str("dup"), ast.LocStub),
	}, ast.LocStub)
	call := ast.NewCallExpression("createVNode", []ast.CallArgument{
		ast.RawString(`"div"`),
		props,
		ast.NewArrayExpression(nil, ast.LocStub),
		ast.NewObjectExpression(nil, ast.LocStub),
		ast.ChildList{},
	}, ast.LocStub)

	el := ast.NewElement(ast.NamespaceHTML, "div", ast.ElementPlain, false, nil, nil, ast.LocStub)
	el.CodegenNode = call
	res, err := Generate(ast.NewRoot([]ast.ChildNode{el}, ast.LocStub), Options{})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	want := `_createVNode("div", { id: "a\"b", "data-x": x, [key]: "<v>", id: "dup" }, [], {}, [])`
	if got := body(t, res.Code); got != want {
		t.Errorf("body mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestGenerate_Mappings(t *testing.T) {
	source := "<p>\n  {{ msg }}\n</p>"
	res := compile(t, source, false)

	var found bool
	for _, m := range res.Mappings {
		if got := res.Code[m.Offset : m.Offset+m.Length]; m.Source.Source == "msg" {
			found = true
			if got != "msg" {
				t.Errorf("mapping points at %q, want msg", got)
			}
			if m.Source.Start.Line != 2 || m.Source.Start.Column != 6 {
				t.Errorf("mapping source starts at %v, want 2:6", m.Source.Start)
			}
		}
	}
	if !found {
		t.Fatalf("no mapping for msg in %+v", res.Mappings)
	}
}

func TestGenerate_RuntimeGlobal(t *testing.T) {
	res, err := Generate(ast.NewRoot(nil, ast.LocStub), Options{RuntimeGlobal: "Runtime"})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if !strings.HasPrefix(res.Code, "const _Vue = Runtime\n\nreturn function render") {
		t.Errorf("unexpected preamble:\n%s", res.Code)
	}
}
