package interp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/fippli/fip/pkg/value"
)

func evalSource(t *testing.T, source string) (value.Value, error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.fip")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return EvaluateFile(path)
}

func mustEval(t *testing.T, source string) value.Value {
	t.Helper()
	v, err := evalSource(t, source)
	if err != nil {
		t.Fatalf("evaluating %q: %v", source, err)
	}
	return v
}

func TestCurryingEquivalence(t *testing.T) {
	full := mustEval(t, "add: (x,y){x+y}\nadd(2,3)")
	split := mustEval(t, "add: (x,y){x+y}\nadd(2)(3)")
	if !value.Equal(full, split) {
		t.Fatalf("full=%v split=%v", full.Render(), split.Render())
	}
	if got := full.Render(); got != "5" {
		t.Errorf("got %q, want 5", got)
	}
}

func TestArityOverflowIsRuntimeError(t *testing.T) {
	_, err := evalSource(t, "add: (x,y){x+y}\nadd(2,3,4)")
	if err == nil {
		t.Fatalf("expected a runtime error for arity overflow")
	}
}

func TestNullChainingShortCircuits(t *testing.T) {
	v := mustEval(t, `{a: {b: 1}}.a.b`)
	if v.Render() != "1" {
		t.Errorf("got %q, want 1", v.Render())
	}
	v2 := mustEval(t, `{a: {b: 1}}.a.c`)
	if v2.Kind() != value.Null {
		t.Errorf("expected null, got %v", v2.Render())
	}
	v3 := mustEval(t, `null.x.y`)
	if v3.Kind() != value.Null {
		t.Errorf("expected null, got %v", v3.Render())
	}
}

func TestMutationErrorOnRebind(t *testing.T) {
	_, err := evalSource(t, "count: 3\ncount: 4")
	if err == nil {
		t.Fatalf("expected a mutation error")
	}
	ie, ok := err.(*Error)
	if !ok || ie.Kind != KindMutation {
		t.Fatalf("expected a mutation error, got %v", err)
	}
}

func TestSuffixErrorOnUnwitnessedImpureSuffix(t *testing.T) {
	_, err := evalSource(t, "pure!: (x){ x+1 }")
	if err == nil {
		t.Fatalf("expected a suffix error")
	}
	ie, ok := err.(*Error)
	if !ok || ie.Kind != KindSuffix {
		t.Fatalf("expected a suffix error, got %v", err)
	}
}

func TestSuffixOkWhenBodyHasImpurityWitness(t *testing.T) {
	if _, err := evalSource(t, `ok!: (x){ log!(x) }`); err != nil {
		t.Fatalf("expected ok!: to define cleanly, got %v", err)
	}
}

func TestSuffixErrorWhenImpureBodyNotMarked(t *testing.T) {
	_, err := evalSource(t, "sneaky: (x){ log!(x) }")
	if err == nil {
		t.Fatalf("expected a suffix error for an unmarked impure body")
	}
}

func TestPredicateSuffixRequiresBooleanResult(t *testing.T) {
	_, err := evalSource(t, "isBig?: (x){ x }")
	if err == nil {
		t.Fatalf("expected a suffix error for a non-boolean predicate body")
	}
	if _, err := evalSource(t, "isBig?: (x){ x > 10 }"); err != nil {
		t.Fatalf("expected isBig?: to define cleanly, got %v", err)
	}
}

func TestReduceOverListAndEmptyList(t *testing.T) {
	v := mustEval(t, "reduce((acc,n){acc+n}, 0, [1,2,3,4])")
	if v.Render() != "10" {
		t.Errorf("got %q, want 10", v.Render())
	}
	v2 := mustEval(t, "reduce((acc,n){acc+n}, 0, [])")
	if v2.Render() != "0" {
		t.Errorf("got %q, want 0", v2.Render())
	}
}

func TestImportCycleIsDetected(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("m.fip", `use a from "n.fip"`)
	write("n.fip", `use a from "m.fip"`)

	_, err := EvaluateFile(filepath.Join(dir, "m.fip"))
	if err == nil {
		t.Fatalf("expected an import-cycle error")
	}
}

func TestIdempotentModuleLoadEvaluatesOnce(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("counter.fip", "count!: (x){ log!(x) }\ntotal: 1")
	write("main.fip", "use total from \"counter.fip\"\nuse total as t2 from \"counter.fip\"\ntotal")

	v, err := EvaluateFile(filepath.Join(dir, "main.fip"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Render() != "1" {
		t.Errorf("got %q, want 1", v.Render())
	}

	// A second load of the same path reuses the cached module instead of
	// evaluating the file again.
	e := NewEvaluator(dir)
	first, err := e.loadModule("counter.fip", lexer.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.loadModule("counter.fip", lexer.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("second load of counter.fip evaluated it again instead of reusing the cached module")
	}
}

func TestUseAliasBindsModuleObject(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("m.fip", "a: 1\nb: 2")
	write("main.fip", "use a as m from \"m.fip\"\nm.b")

	v, err := EvaluateFile(filepath.Join(dir, "main.fip"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Render() != "2" {
		t.Errorf("got %q, want 2 (alias should expose every export)", v.Render())
	}
}

func TestSpreadProducesFreshValueArrayImmutability(t *testing.T) {
	v := mustEval(t, `base: [1,2]
grown: [...base, 3]
base`)
	if v.Render() != "[1, 2]" {
		t.Errorf("base was mutated by spread: %v", v.Render())
	}
}

func TestComposableBlockPipeline(t *testing.T) {
	v := mustEval(t, `increment: (x){x+1}
1
increment
increment`)
	if v.Render() != "3" {
		t.Errorf("got %q, want 3", v.Render())
	}
}

func TestMultiStatementFunctionBody(t *testing.T) {
	v := mustEval(t, `f: (x){
  y: x + 1
  y * 2
}
f(3)`)
	if v.Render() != "8" {
		t.Errorf("got %q, want 8", v.Render())
	}
}

func TestComposableBlockInsideFunctionBody(t *testing.T) {
	v := mustEval(t, `inc: (x){x+1}
pipe: (x){
  x
  inc
  inc
}
pipe(1)`)
	if v.Render() != "3" {
		t.Errorf("got %q, want 3", v.Render())
	}
}

func TestDotMapMethodStyle(t *testing.T) {
	v := mustEval(t, `[1,2,3].map(increment)`)
	if v.Render() != "[2, 3, 4]" {
		t.Errorf("got %q, want [2, 3, 4]", v.Render())
	}
}

func TestMultiLineObjectLiteralAccess(t *testing.T) {
	v := mustEval(t, `o: {
  a: 1,
  b: 2
}
o.b`)
	if v.Render() != "2" {
		t.Errorf("got %q, want 2", v.Render())
	}
}

func TestDestructuringMissingPositionsBindNull(t *testing.T) {
	v := mustEval(t, `[a, b]: [1]
b`)
	if v.Kind() != value.Null {
		t.Errorf("expected null for a missing array position, got %v", v.Render())
	}
}

func TestHalveDecimalSemantics(t *testing.T) {
	v := mustEval(t, "halve: (x){divide(x,2)}\nhalve(9)")
	if v.Render() != "4.5" {
		t.Errorf("got %q, want 4.5 (decimal ruling)", v.Render())
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	_, err := evalSource(t, "divide(1,0)")
	if err == nil {
		t.Fatalf("expected a runtime error for division by zero")
	}
}
