package format

import (
	"testing"

	"github.com/fippli/fip/pkg/parser"
)

func formatSource(t *testing.T, src string) string {
	t.Helper()
	p, err := parser.New()
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	prog, err := p.ParseString("test.fip", src)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", src, err)
	}
	return Format(prog)
}

func TestFormatCanonicalOperatorSpacing(t *testing.T) {
	got := formatSource(t, "x:1+2*3")
	want := "x: 1 + 2 * 3\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatIndentsFunctionBody(t *testing.T) {
	got := formatSource(t, "f: (x){\nx+1\n}")
	want := "f: (x){\n  x + 1\n}\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatIsStableOnItsOwnOutput(t *testing.T) {
	first := formatSource(t, "add:(x,y){x+y}\nadd(1,2)\nuse a from \"m.fip\"")
	second := formatSource(t, first)
	if first != second {
		t.Errorf("formatting is not idempotent:\nfirst:  %q\nsecond: %q", first, second)
	}
}
