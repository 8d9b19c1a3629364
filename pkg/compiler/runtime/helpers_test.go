package runtime

import "testing"

func TestIsHelper(t *testing.T) {
	for _, name := range []string{Fragment, CreateVNode, RenderList, VModelText, WithKeys} {
		if !IsHelper(name) {
			t.Errorf("IsHelper(%q) = false", name)
		}
	}
	for _, name := range []string{"", "h", "_createVNode", "CreateVNode"} {
		if IsHelper(name) {
			t.Errorf("IsHelper(%q) = true", name)
		}
	}
}

func TestAlias(t *testing.T) {
	if got := Alias(CreateVNode); got != "_createVNode" {
		t.Errorf("Alias() = %q", got)
	}
}
