package value

import "testing"

func TestEqualityTypeStrictness(t *testing.T) {
	one := NumberFromInt(1)
	trueV := BoolValue(true)
	oneStr := StringValue("1")

	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"1 = true", one, trueV, false},
		{"1 = \"1\"", one, oneStr, false},
		{"\"x\" = true", StringValue("x"), trueV, false},
		{"1 = 1", one, NumberFromInt(1), true},
		{"null = null", Nil, Nil, true},
	}
	for _, c := range cases {
		if got := Equal(c.a, c.b); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestObjectWithIsImmutable(t *testing.T) {
	base := NewObject([]string{"a"}, map[string]Value{"a": NumberFromInt(1)})
	updated := base.With("b", NumberFromInt(2))

	if len(base.Keys) != 1 {
		t.Fatalf("base was mutated: %v", base.Keys)
	}
	if _, ok := base.Values["b"]; ok {
		t.Fatalf("base was mutated with key b")
	}
	if len(updated.Keys) != 2 {
		t.Fatalf("expected updated to have 2 keys, got %v", updated.Keys)
	}
}

func TestObjectWithOverwritesLaterKeyWins(t *testing.T) {
	base := NewObject([]string{"a"}, map[string]Value{"a": NumberFromInt(1)})
	updated := base.With("a", NumberFromInt(2))
	if !Equal(updated.Get("a"), NumberFromInt(2)) {
		t.Fatalf("expected overwritten value 2, got %v", updated.Get("a"))
	}
	if len(updated.Keys) != 1 {
		t.Fatalf("expected key list to stay length 1 on overwrite, got %v", updated.Keys)
	}
}

func TestArrayNewArrayCopiesBackingSlice(t *testing.T) {
	src := []Value{NumberFromInt(1), NumberFromInt(2)}
	arr := NewArray(src)
	src[0] = NumberFromInt(99)
	if !Equal(arr.Elements[0], NumberFromInt(1)) {
		t.Fatalf("ArrayValue shares backing storage with its source slice")
	}
}

func TestObjectGetMissingKeyYieldsNull(t *testing.T) {
	obj := NewObject(nil, nil)
	if obj.Get("missing").Kind() != Null {
		t.Fatalf("expected Null for a missing key")
	}
}

func TestPromiseIdentityIsOpaque(t *testing.T) {
	p1, resolve1, _ := NewPromise()
	p2, _, _ := NewPromise()
	resolve1(NumberFromInt(1))

	if Equal(p1, p2) {
		t.Fatalf("two distinct promises compared equal")
	}
	if !Equal(p1, p1) {
		t.Fatalf("a promise does not compare equal to itself")
	}
	if !p1.Settled() || p1.Rejected() {
		t.Fatalf("expected p1 fulfilled, got settled=%v rejected=%v", p1.Settled(), p1.Rejected())
	}
	if p2.Settled() {
		t.Fatalf("expected p2 to remain pending")
	}
}

func TestRenderNestedStringsAreQuoted(t *testing.T) {
	arr := NewArray([]Value{StringValue("hi")})
	if got, want := arr.Render(), `["hi"]`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
