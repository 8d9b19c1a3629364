package transform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/parser"
	"github.com/recera/vtc/pkg/compiler/runtime"
)

func mustParse(t *testing.T, source string) *ast.Root {
	t.Helper()
	root, err := parser.Parse(source, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return root
}

func mustTransform(t *testing.T, source string, opts Options) (*ast.Root, *Result) {
	t.Helper()
	root := mustParse(t, source)
	res, err := Transform(root, opts)
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}
	return root, res
}

// propPairs flattens an object expression into key/value contents
func propPairs(obj *ast.ObjectExpression) [][2]string {
	var pairs [][2]string
	for _, p := range obj.Properties {
		pairs = append(pairs, [2]string{p.Key.Content, p.Value.Content})
	}
	return pairs
}

func firstElement(t *testing.T, root *ast.Root) *ast.Element {
	t.Helper()
	el, ok := root.Children[0].(*ast.Element)
	if !ok {
		t.Fatalf("expected *ast.Element, got %T", root.Children[0])
	}
	return el
}

func TestTransform_ElementCodegen(t *testing.T) {
	root, res := mustTransform(t, `<div id="app" :title="msg" @click="go">hi</div>`, Options{})
	el := firstElement(t, root)

	call := el.CodegenNode
	if call == nil {
		t.Fatal("expected codegen node to be set")
	}
	if call.Callee != runtime.CreateVNode {
		t.Errorf("Callee = %q, want %q", call.Callee, runtime.CreateVNode)
	}
	if call.Loc != el.Loc {
		t.Errorf("call location %v, want element location %v", call.Loc, el.Loc)
	}
	if len(call.Arguments) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(call.Arguments))
	}
	if tag, ok := call.Arguments[0].(ast.RawString); !ok || tag != `"div"` {
		t.Errorf("tag argument = %#v", call.Arguments[0])
	}

	props, ok := call.Arguments[1].(*ast.ObjectExpression)
	if !ok {
		t.Fatalf("expected props object, got %T", call.Arguments[1])
	}
	want := [][2]string{{"id", "app"}, {"title", "msg"}, {"onClick", "go"}}
	if diff := cmp.Diff(want, propPairs(props)); diff != "" {
		t.Errorf("props mismatch (-want +got):\n%s", diff)
	}
	if !props.Properties[0].Value.IsStatic || props.Properties[1].Value.IsStatic {
		t.Error("attribute values should be static and bound values dynamic")
	}

	children, ok := call.Arguments[2].(ast.ChildList)
	if !ok || len(children) != 1 {
		t.Fatalf("children argument = %#v", call.Arguments[2])
	}
	if children[0] != el.Children[0] {
		t.Error("child list should reference the element's children")
	}

	if diff := cmp.Diff([]string{runtime.CreateTextVNode, runtime.CreateVNode}, res.Helpers); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_CodegenIsSetOnce(t *testing.T) {
	root := mustParse(t, `<div><span/></div>`)
	if _, err := Transform(root, Options{}); err != nil {
		t.Fatalf("first Transform() failed: %v", err)
	}
	first := firstElement(t, root).CodegenNode

	_, err := Transform(root, Options{})
	if !errors.Is(err, ErrCodegenReassigned) {
		t.Fatalf("expected ErrCodegenReassigned, got %v", err)
	}
	if firstElement(t, root).CodegenNode != first {
		t.Error("codegen node was replaced")
	}
}

func TestTransform_SetCodegenNodeIgnoresNil(t *testing.T) {
	el := ast.NewElement(ast.NamespaceHTML, "p", ast.ElementPlain, false, nil, nil, ast.LocStub)
	ctx := newContext(ast.NewRoot([]ast.ChildNode{el}, ast.LocStub), Options{})

	if err := ctx.SetCodegenNode(el, nil); err != nil {
		t.Fatalf("SetCodegenNode(nil) = %v", err)
	}
	if el.CodegenNode != nil {
		t.Fatal("nil call should leave the codegen node absent")
	}

	call := ast.NewCallExpression(runtime.CreateVNode, nil, ast.LocStub)
	if err := ctx.SetCodegenNode(el, call); err != nil {
		t.Fatalf("SetCodegenNode() = %v", err)
	}
	if err := ctx.SetCodegenNode(el, call); !errors.Is(err, ErrCodegenReassigned) {
		t.Fatalf("expected ErrCodegenReassigned, got %v", err)
	}
}

func TestTransform_Component(t *testing.T) {
	root, res := mustTransform(t, `<MyButton/>`, Options{})
	call := firstElement(t, root).CodegenNode

	if len(call.Arguments) != 1 {
		t.Fatalf("expected only a tag argument, got %d", len(call.Arguments))
	}
	resolve, ok := call.Arguments[0].(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected resolveComponent call, got %T", call.Arguments[0])
	}
	if resolve.Callee != runtime.ResolveComponent {
		t.Errorf("Callee = %q", resolve.Callee)
	}
	if diff := cmp.Diff([]ast.CallArgument{ast.RawString(`"MyButton"`)}, resolve.Arguments); diff != "" {
		t.Errorf("arguments mismatch (-want +got):\n%s", diff)
	}
	if res.Helpers[0] != runtime.CreateVNode || res.Helpers[1] != runtime.ResolveComponent {
		t.Errorf("unexpected helpers %v", res.Helpers)
	}
}

func TestTransform_DynamicComponent(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   ast.CallArgument
	}{
		{"bound", `<component :is="view" :msg="m"/>`, ast.NewExpression("view", false, ast.LocStub)},
		{"static", `<component is="MyCard" :msg="m"/>`, ast.RawString(`"MyCard"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, res := mustTransform(t, tt.source, Options{})
			call := firstElement(t, root).CodegenNode

			resolve, ok := call.Arguments[0].(*ast.CallExpression)
			if !ok || resolve.Callee != runtime.ResolveDynamic || len(resolve.Arguments) != 1 {
				t.Fatalf("tag argument = %#v", call.Arguments[0])
			}
			switch want := tt.want.(type) {
			case *ast.Expression:
				got, ok := resolve.Arguments[0].(*ast.Expression)
				if !ok || got.Content != want.Content {
					t.Errorf("is argument = %#v, want %q", resolve.Arguments[0], want.Content)
				}
			default:
				if resolve.Arguments[0] != want {
					t.Errorf("is argument = %#v, want %#v", resolve.Arguments[0], want)
				}
			}

			props := call.Arguments[1].(*ast.ObjectExpression)
			if diff := cmp.Diff([][2]string{{"msg", "m"}}, propPairs(props)); diff != "" {
				t.Errorf("props mismatch (-want +got):\n%s", diff)
			}
			for _, h := range res.Helpers {
				if h == runtime.ResolveComponent {
					t.Errorf("resolveComponent should not be used, helpers %v", res.Helpers)
				}
			}
		})
	}

	root := mustParse(t, `<component :msg="m"/>`)
	if _, err := Transform(root, Options{}); !errors.Is(err, ErrUnsupportedDirective) {
		t.Fatalf("expected ErrUnsupportedDirective without is, got %v", err)
	}
}

func TestTransform_EventHandlers(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantKey string
		wantVal string
	}{
		{"method reference", `<a @click="save"/>`, "onClick", "save"},
		{"member reference", `<a @click="user.save"/>`, "onClick", "user.save"},
		{"inline statement", `<a @click="count++"/>`, "onClick", "$event => (count++)"},
		{"arrow function", `<a @click="e => go(e)"/>`, "onClick", "e => go(e)"},
		{"kebab event", `<a @my-event="go"/>`, "onMyEvent", "go"},
		{"runtime modifiers", `<a @click.stop.prevent="go"/>`, "onClick", `_withModifiers(go, ["stop","prevent"])`},
		{"option modifier", `<a @click.once="go"/>`, "onClickOnce", "go"},
		{"key modifier", `<input @keyup.enter="submit"/>`, "onKeyup", `_withKeys(submit, ["enter"])`},
		{"key and runtime modifiers", `<input @keydown.ctrl.enter.prevent="go"/>`, "onKeydown", `_withKeys(_withModifiers(go, ["ctrl","prevent"]), ["enter"])`},
		{"arrow key", `<input @keyup.left="back"/>`, "onKeyup", `_withKeys(back, ["left"])`},
		{"mouse button", `<a @click.right="menu"/>`, "onClick", `_withModifiers(menu, ["right"])`},
		{"dynamic event key", `<a @[name].esc="go"/>`, "_toHandlerKey(name)", `_withKeys(go, ["esc"])`},
		{"no handler", `<a @click/>`, "onClick", "() => {}"},
		{"dynamic event", `<a @[name]="go"/>`, "_toHandlerKey(name)", "go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, _ := mustTransform(t, tt.source, Options{})
			call := firstElement(t, root).CodegenNode
			props, ok := call.Arguments[1].(*ast.ObjectExpression)
			if !ok || len(props.Properties) != 1 {
				t.Fatalf("props argument = %#v", call.Arguments[1])
			}
			if got := props.Properties[0].Key.Content; got != tt.wantKey {
				t.Errorf("key = %q, want %q", got, tt.wantKey)
			}
			if got := props.Properties[0].Value.Content; got != tt.wantVal {
				t.Errorf("value = %q, want %q", got, tt.wantVal)
			}
		})
	}
}

func TestTransform_RuntimeDirectives(t *testing.T) {
	root, res := mustTransform(t, `<p v-show="ok" v-focus:x.a></p>`, Options{})
	call := firstElement(t, root).CodegenNode

	if call.Callee != runtime.WithDirectives {
		t.Fatalf("Callee = %q, want %q", call.Callee, runtime.WithDirectives)
	}
	inner, ok := call.Arguments[0].(*ast.CallExpression)
	if !ok || inner.Callee != runtime.CreateVNode {
		t.Fatalf("expected wrapped createVNode call, got %#v", call.Arguments[0])
	}
	list, ok := call.Arguments[1].(*ast.ArrayExpression)
	if !ok || len(list.Elements) != 2 {
		t.Fatalf("directive list = %#v", call.Arguments[1])
	}

	show := list.Elements[0].(*ast.ArrayExpression)
	if show.Elements[0] != ast.RawString("_vShow") {
		t.Errorf("show directive ref = %#v", show.Elements[0])
	}
	if exp, ok := show.Elements[1].(*ast.Expression); !ok || exp.Content != "ok" {
		t.Errorf("show value = %#v", show.Elements[1])
	}

	custom := list.Elements[1].(*ast.ArrayExpression)
	if len(custom.Elements) != 4 {
		t.Fatalf("custom tuple has %d elements, want 4", len(custom.Elements))
	}
	ref, ok := custom.Elements[0].(*ast.CallExpression)
	if !ok || ref.Callee != runtime.ResolveDirective {
		t.Errorf("custom ref = %#v", custom.Elements[0])
	}
	if custom.Elements[1] != ast.RawString("void 0") || custom.Elements[2] != ast.RawString(`"x"`) {
		t.Errorf("custom value/arg = %#v, %#v", custom.Elements[1], custom.Elements[2])
	}
	mods, ok := custom.Elements[3].(*ast.ObjectExpression)
	if !ok {
		t.Fatalf("custom modifiers = %#v", custom.Elements[3])
	}
	if diff := cmp.Diff([][2]string{{"a", "true"}}, propPairs(mods)); diff != "" {
		t.Errorf("modifiers mismatch (-want +got):\n%s", diff)
	}

	for _, h := range []string{runtime.VShow, runtime.ResolveDirective, runtime.WithDirectives} {
		found := false
		for _, got := range res.Helpers {
			found = found || got == h
		}
		if !found {
			t.Errorf("helper %q not recorded in %v", h, res.Helpers)
		}
	}
}

func TestTransform_Model(t *testing.T) {
	root, _ := mustTransform(t, `<Field v-model="name"/>`, Options{})
	call := firstElement(t, root).CodegenNode
	props := call.Arguments[1].(*ast.ObjectExpression)

	want := [][2]string{
		{"modelValue", "name"},
		{"onUpdate:modelValue", "$event => ((name) = $event)"},
	}
	if diff := cmp.Diff(want, propPairs(props)); diff != "" {
		t.Errorf("props mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_Slot(t *testing.T) {
	root, _ := mustTransform(t, `<slot name="header">fallback</slot>`, Options{})
	call := firstElement(t, root).CodegenNode

	if call.Callee != runtime.RenderSlot {
		t.Fatalf("Callee = %q", call.Callee)
	}
	if call.Arguments[1] != ast.RawString(`"header"`) {
		t.Errorf("slot name = %#v", call.Arguments[1])
	}
	if _, ok := call.Arguments[3].(ast.ChildList); !ok {
		t.Errorf("fallback = %#v", call.Arguments[3])
	}
}

func TestTransform_UnsupportedDirective(t *testing.T) {
	root := mustParse(t, `<div v-bind="attrs"></div>`)
	_, err := Transform(root, Options{})
	if !errors.Is(err, ErrUnsupportedDirective) {
		t.Fatalf("expected ErrUnsupportedDirective, got %v", err)
	}
	if firstElement(t, root).CodegenNode == nil {
		t.Error("element should still get a codegen node")
	}
}

func TestTransform_KeyModifiers(t *testing.T) {
	_, res := mustTransform(t, `<input @keyup.enter="submit"/>`, Options{})
	found := false
	for _, h := range res.Helpers {
		found = found || h == runtime.WithKeys
	}
	if !found {
		t.Errorf("helper %q not recorded in %v", runtime.WithKeys, res.Helpers)
	}

	root := mustParse(t, `<a @click.enter="go"/>`)
	if _, err := Transform(root, Options{}); !errors.Is(err, ErrUnsupportedDirective) {
		t.Fatalf("expected ErrUnsupportedDirective for a key modifier on click, got %v", err)
	}
}

func TestTransform_EmptyInterpolation(t *testing.T) {
	root := mustParse(t, `<p>{{ }}</p>`)
	if _, err := Transform(root, Options{}); !errors.Is(err, ErrEmptyExpression) {
		t.Fatalf("expected ErrEmptyExpression, got %v", err)
	}
}

func TestTransform_ReplaceNode(t *testing.T) {
	root := mustParse(t, `<div>old</div>`)
	var seen []string
	replace := func(n ast.Node, ctx *Context) func() {
		text, ok := n.(*ast.Text)
		if !ok {
			return nil
		}
		seen = append(seen, text.Content)
		if text.Content == "old" {
			if err := ctx.ReplaceNode(ast.NewText("new", text.Loc)); err != nil {
				t.Errorf("ReplaceNode() = %v", err)
			}
		}
		return nil
	}
	record := func(n ast.Node, ctx *Context) func() {
		if text, ok := n.(*ast.Text); ok {
			seen = append(seen, text.Content)
		}
		return nil
	}

	if _, err := Transform(root, Options{NodeTransforms: []NodeTransform{replace, record}}); err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	el := firstElement(t, root)
	if got := el.Children[0].(*ast.Text).Content; got != "new" {
		t.Errorf("child content = %q, want new", got)
	}
	// later transforms see the replacement
	if diff := cmp.Diff([]string{"old", "new"}, seen); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_RemoveNode(t *testing.T) {
	root := mustParse(t, `<div>a<b>drop</b>c</div>`)
	var seen []string
	remove := func(n ast.Node, ctx *Context) func() {
		switch n := n.(type) {
		case *ast.Element:
			if n.Tag == "b" {
				if err := ctx.RemoveNode(); err != nil {
					t.Errorf("RemoveNode() = %v", err)
				}
			}
		case *ast.Text:
			seen = append(seen, n.Content)
		}
		return nil
	}

	if _, err := Transform(root, Options{NodeTransforms: []NodeTransform{remove}}); err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	el := firstElement(t, root)
	if len(el.Children) != 2 {
		t.Fatalf("expected 2 children after removal, got %d", len(el.Children))
	}
	if diff := cmp.Diff([]string{"a", "c"}, seen); diff != "" {
		t.Errorf("visited texts mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_ImmutableSlots(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"if branch", `<template v-if="x">hello</template>`},
		{"for block", `<template v-for="i in 3">hello</template>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.source)
			var replaceErr, removeErr error
			visit := func(n ast.Node, ctx *Context) func() {
				if text, ok := n.(*ast.Text); ok {
					replaceErr = ctx.ReplaceNode(ast.NewText("x", text.Loc))
					removeErr = ctx.RemoveNode()
				}
				return nil
			}
			if _, err := Transform(root, Options{NodeTransforms: []NodeTransform{visit}}); err != nil {
				t.Fatalf("Transform() failed: %v", err)
			}
			if !errors.Is(replaceErr, ErrImmutableSlot) {
				t.Errorf("ReplaceNode() = %v, want ErrImmutableSlot", replaceErr)
			}
			if !errors.Is(removeErr, ErrImmutableSlot) {
				t.Errorf("RemoveNode() = %v, want ErrImmutableSlot", removeErr)
			}
		})
	}
}

func TestTransform_AncestorsAndExitOrder(t *testing.T) {
	root := mustParse(t, `<div><p v-if="a">{{ b }}</p></div>`)

	var path []ast.NodeType
	var events []string
	visit := func(n ast.Node, ctx *Context) func() {
		if _, ok := n.(*ast.Expression); ok {
			for _, a := range ctx.Ancestors {
				path = append(path, a.Type())
			}
		}
		el, ok := n.(*ast.Element)
		if !ok {
			return nil
		}
		events = append(events, "enter "+el.Tag)
		return func() {
			if ctx.CurrentNode != el {
				t.Errorf("exit for <%s> sees current node %v", el.Tag, ctx.CurrentNode)
			}
			events = append(events, "exit "+el.Tag)
		}
	}

	if _, err := Transform(root, Options{NodeTransforms: []NodeTransform{visit}}); err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	wantPath := []ast.NodeType{ast.TypeRoot, ast.TypeElement, ast.TypeIf, ast.TypeIfBranch, ast.TypeElement}
	if diff := cmp.Diff(wantPath, path); diff != "" {
		t.Errorf("ancestors mismatch (-want +got):\n%s", diff)
	}
	wantEvents := []string{"enter div", "enter p", "exit p", "exit div"}
	if diff := cmp.Diff(wantEvents, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_HoistStatic(t *testing.T) {
	source := `<div><p class="x">static <b>text</b></p><span>{{ a }}</span><i :id="b"></i></div>`
	root, res := mustTransform(t, source, Options{HoistStatic: true})

	div := firstElement(t, root)
	p := div.Children[0].(*ast.Element)
	if len(res.Hoists) != 1 {
		t.Fatalf("expected 1 hoist, got %d", len(res.Hoists))
	}
	if res.Hoists[0] != p.CodegenNode {
		t.Error("hoisted call should be the static <p>'s codegen node")
	}

	_, res = mustTransform(t, source, Options{})
	if len(res.Hoists) != 0 {
		t.Errorf("hoisting disabled but got %d hoists", len(res.Hoists))
	}
}

func TestTransform_ControlFlowHelpers(t *testing.T) {
	_, res := mustTransform(t, `<p v-if="a">x</p><ul><li v-for="i in items">{{ i }}</li></ul>`, Options{})
	want := []string{
		runtime.Fragment,
		runtime.CreateCommentVNode,
		runtime.CreateTextVNode,
		runtime.CreateVNode,
		runtime.RenderList,
		runtime.ToDisplayString,
	}
	if diff := cmp.Diff(want, res.Helpers); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}
}
