package parser

import (
	"testing"

	"github.com/fippli/fip/pkg/ast"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	p, err := New()
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	prog, err := p.ParseString("test.fip", source)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", source, err)
	}
	return prog
}

func TestParseSimpleBinding(t *testing.T) {
	r := mustParse(t, `x: 1`)
	if len(r.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(r.Stmts))
	}
	if r.Stmts[0].Binding == nil {
		t.Fatalf("expected a binding statement")
	}
	if *r.Stmts[0].Binding.Pattern.Ident != "x" {
		t.Errorf("expected pattern ident x, got %v", r.Stmts[0].Binding.Pattern.Ident)
	}
}

func TestParseNamedFunction(t *testing.T) {
	r := mustParse(t, "add: (x,y){x+y}")
	if len(r.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(r.Stmts))
	}
	fn := r.Stmts[0].Binding.Value.Or.Left.Left.Left.Left.Left.Left.Postfix.Primary.FuncLit
	if fn == nil {
		t.Fatalf("expected a function literal")
	}
	if len(fn.Params) != 2 || fn.Params[0] != "x" || fn.Params[1] != "y" {
		t.Errorf("unexpected params: %v", fn.Params)
	}
}

func TestParseUseForms(t *testing.T) {
	cases := []string{
		`use a from "m"`,
		`use { a, b } from "m"`,
		`use a as alias from "m"`,
	}
	for _, src := range cases {
		r := mustParse(t, src)
		if r.Stmts[0].Use == nil {
			t.Errorf("source %q: expected a use statement", src)
		}
	}
}

func TestParseMultipleStatementsOnSeparateLines(t *testing.T) {
	r := mustParse(t, "x: 1\ny: 2\nx\n")
	if len(r.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(r.Stmts))
	}
}

func TestParseMultiStatementFunctionBody(t *testing.T) {
	r := mustParse(t, "f: (x){\n  y: x\n  y\n}\n")
	fn := r.Stmts[0].Binding.Value.Or.Left.Left.Left.Left.Left.Left.Postfix.Primary.FuncLit
	if fn == nil {
		t.Fatalf("expected a function literal")
	}
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(fn.Body.Stmts))
	}
}

func TestParseMultiLineFunctionLiteralInsideCall(t *testing.T) {
	r := mustParse(t, "map((x){\n  y: x\n  y\n}, xs)\n")
	if len(r.Stmts) != 1 || r.Stmts[0].Expr == nil {
		t.Fatalf("expected a single call expression")
	}
}

func TestParseMultiLineObjectLiteral(t *testing.T) {
	r := mustParse(t, "o: {\n  a: 1,\n  b: 2\n}\n")
	obj := r.Stmts[0].Binding.Value.Or.Left.Left.Left.Left.Left.Left.Postfix.Primary.Object
	if obj == nil {
		t.Fatalf("expected an object literal")
	}
	if len(obj.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(obj.Elements))
	}
}

func TestParseMultiLineCallArguments(t *testing.T) {
	r := mustParse(t, "f(\n  1,\n  2\n)\n")
	if len(r.Stmts) != 1 || r.Stmts[0].Expr == nil {
		t.Fatalf("expected a single call expression")
	}
}

func TestParseCallChain(t *testing.T) {
	r := mustParse(t, `f(a)(b).c(d)`)
	postfix := r.Stmts[0].Expr.Or.Left.Left.Left.Left.Left.Left.Postfix
	// (a), (b), .c and (d): each call and each property access is one op.
	if len(postfix.Ops) != 4 {
		t.Fatalf("expected 4 postfix operations, got %d", len(postfix.Ops))
	}
}

func TestParseStringInterpolation(t *testing.T) {
	r := mustParse(t, `"hello <name>!"`)
	lit := r.Stmts[0].Expr.Or.Left.Left.Left.Left.Left.Left.Postfix.Primary.Str
	if lit == nil {
		t.Fatalf("expected a string literal")
	}
	var sawInterp bool
	for _, part := range lit.Parts {
		if part.Interp != nil && *part.Interp == "name" {
			sawInterp = true
		}
	}
	if !sawInterp {
		t.Errorf("expected an interpolated identifier named %q", "name")
	}
}
