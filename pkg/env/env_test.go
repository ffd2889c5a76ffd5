package env

import (
	"testing"

	"github.com/fippli/fip/pkg/value"
)

func TestLookupWalksParentChain(t *testing.T) {
	root := New()
	root.Define("x", value.NumberFromInt(1))
	child := root.Child()

	v, ok := child.Lookup("x")
	if !ok {
		t.Fatalf("expected x to be visible from a child frame")
	}
	if !value.Equal(v, value.NumberFromInt(1)) {
		t.Errorf("got %v", v)
	}
}

func TestDefinedOnlyChecksOwnFrame(t *testing.T) {
	root := New()
	root.Define("x", value.NumberFromInt(1))
	child := root.Child()

	if child.Defined("x") {
		t.Errorf("Defined should not see an ancestor's binding")
	}
	if !root.Defined("x") {
		t.Errorf("Defined should see the frame's own binding")
	}
}

func TestChildShadowsParentWithoutMutatingIt(t *testing.T) {
	root := New()
	root.Define("x", value.NumberFromInt(1))
	child := root.Child()
	child.Define("x", value.NumberFromInt(2))

	rv, _ := root.Lookup("x")
	cv, _ := child.Lookup("x")
	if !value.Equal(rv, value.NumberFromInt(1)) {
		t.Errorf("parent binding was mutated: %v", rv)
	}
	if !value.Equal(cv, value.NumberFromInt(2)) {
		t.Errorf("child did not shadow: %v", cv)
	}
}

func TestAllNamesWalksChain(t *testing.T) {
	root := New()
	root.Define("outer", value.Nil)
	child := root.Child()
	child.Define("inner", value.Nil)

	names := map[string]bool{}
	for _, n := range child.AllNames() {
		names[n] = true
	}
	if !names["outer"] || !names["inner"] {
		t.Errorf("expected both outer and inner in %v", names)
	}
}
