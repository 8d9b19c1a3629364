package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recera/vtc/pkg/compiler/codegen"
	"github.com/recera/vtc/pkg/compiler/dom"
	"github.com/recera/vtc/pkg/compiler/parser"
)

func TestCompile(t *testing.T) {
	source := `<ul class="list"><li v-for="item in items" :key="item.id">{{ item.name }}</li></ul>`
	res, err := Compile(source, Options{Parser: dom.ParserOptions(), Validate: true})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	want := `_createVNode("ul", { class: "list" }, [_createVNode(_Fragment, null, _renderList(items, (item) => ` +
		`_createVNode("li", { key: item.id }, [_createTextVNode(_toDisplayString(item.name))])))])`
	if !strings.Contains(res.Code, "return "+want+"\n") {
		t.Errorf("unexpected code:\n%s", res.Code)
	}
	if res.AST == nil || len(res.AST.Children) != 1 {
		t.Fatal("result should carry the transformed tree")
	}
	if len(res.Mappings) == 0 {
		t.Error("expected source mappings")
	}
}

func TestCompile_Errors(t *testing.T) {
	var list parser.ErrorList
	_, err := Compile(`<div>`, Options{Parser: parser.Options{Filename: "broken.vue"}})
	if !errors.As(err, &list) {
		t.Fatalf("expected parser.ErrorList, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken.vue:1:1") {
		t.Errorf("error should carry the file position: %v", err)
	}

	_, err = Compile(`<div/>`, Options{Codegen: codegen.Options{Imports: []string{"nope"}}})
	if !errors.Is(err, codegen.ErrUnknownHelper) {
		t.Errorf("expected ErrUnknownHelper, got %v", err)
	}
}

func TestCompile_SharedOptionsAreNotMutated(t *testing.T) {
	imports := make([]string, 1, 4)
	imports[0] = "Fragment"
	opts := Options{Codegen: codegen.Options{Imports: imports}}

	if _, err := Compile(`<a>{{ x }}</a>`, opts); err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if len(opts.Codegen.Imports) != 1 || imports[:2][1] != "" {
		t.Error("Compile() wrote into the caller's import slice")
	}
}

func TestCompileFiles(t *testing.T) {
	dir := t.TempDir()
	sources := map[string]string{
		"a.vue": `<p>{{ a }}</p>`,
		"b.vue": `<MyCard title="b"/>`,
		"c.vue": `<span v-if="c">c</span>`,
	}
	var paths []string
	for _, name := range []string{"a.vue", "b.vue", "c.vue"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(sources[name]), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}

	results, err := CompileFiles(context.Background(), paths, Options{Parser: dom.ParserOptions()}, 2)
	if err != nil {
		t.Fatalf("CompileFiles() failed: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res.Filename != paths[i] {
			t.Errorf("result %d is for %s, want %s", i, res.Filename, paths[i])
		}
	}
	if !strings.Contains(results[1].Code, `_resolveComponent("MyCard")`) {
		t.Errorf("component not resolved:\n%s", results[1].Code)
	}
}

func TestCompileFiles_Failure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.vue")
	bad := filepath.Join(dir, "bad.vue")
	if err := os.WriteFile(good, []byte(`<p/>`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte(`<p v-else/>`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := CompileFiles(context.Background(), []string{good, bad}, Options{}, 0)
	if err == nil || !strings.Contains(err.Error(), bad) {
		t.Fatalf("expected an error naming %s, got %v", bad, err)
	}

	_, err = CompileFiles(context.Background(), []string{filepath.Join(dir, "missing.vue")}, Options{}, 1)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CompileFiles(ctx, []string{good}, Options{}, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
