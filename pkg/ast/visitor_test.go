package ast

import "testing"

// countingVisitor counts how many times each node type is visited.
type countingVisitor struct {
	BaseVisitor
	counts map[string]int
}

func newCountingVisitor() *countingVisitor {
	return &countingVisitor{counts: make(map[string]int)}
}

func (v *countingVisitor) VisitExpr(node *Expr) interface{} {
	v.counts["Expr"]++
	return v.BaseVisitor.VisitExpr(node)
}

func (v *countingVisitor) VisitPrimary(node *Primary) interface{} {
	v.counts["Primary"]++
	return v.BaseVisitor.VisitPrimary(node)
}

func (v *countingVisitor) VisitFuncLit(node *FuncLit) interface{} {
	v.counts["FuncLit"]++
	return v.BaseVisitor.VisitFuncLit(node)
}

func number(s string) *Expr {
	return &Expr{Or: &OrExpr{Left: &AndExpr{Left: &EqExpr{Left: &RelExpr{Left: &AddExpr{
		Left: &MulExpr{Left: &UnaryExpr{Postfix: &Postfix{Primary: &Primary{Number: &s}}}},
	}}}}}}
}

func TestBaseVisitorTraversesAddExpr(t *testing.T) {
	one, two := "1", "2"
	expr := number(one)
	expr.Or.Left.Left.Left.Left.Rest = append(expr.Or.Left.Left.Left.Left.Rest, &AddTail{
		Op: "+", Right: &MulExpr{Left: &UnaryExpr{Postfix: &Postfix{Primary: &Primary{Number: &two}}}},
	})

	v := newCountingVisitor()
	expr.Accept(v)

	if v.counts["Expr"] != 1 {
		t.Errorf("expected 1 Expr, got %d", v.counts["Expr"])
	}
	if v.counts["Primary"] != 2 {
		t.Errorf("expected 2 Primary nodes (left and right operand), got %d", v.counts["Primary"])
	}
}

func TestBaseVisitorSkipsNestedFuncLitOnlyWhenToldTo(t *testing.T) {
	// (x){ (y){ y } }  — an outer function literal whose body contains a
	// nested function literal. A plain BaseVisitor walk visits both; the
	// purity checker's witness scan stops at the inner one instead, which
	// pkg/interp's purity tests exercise.
	inner := &FuncLit{Params: []string{"y"}, Body: &Block{Stmts: []*Stmt{
		{Expr: &Expr{Or: &OrExpr{Left: &AndExpr{Left: &EqExpr{Left: &RelExpr{Left: &AddExpr{
			Left: &MulExpr{Left: &UnaryExpr{Postfix: &Postfix{Primary: &Primary{Ident: strPtr("y")}}}},
		}}}}}}},
	}}}
	outer := &FuncLit{Params: []string{"x"}, Body: &Block{Stmts: []*Stmt{
		{Expr: &Expr{Or: &OrExpr{Left: &AndExpr{Left: &EqExpr{Left: &RelExpr{Left: &AddExpr{
			Left: &MulExpr{Left: &UnaryExpr{Postfix: &Postfix{Primary: &Primary{FuncLit: inner}}}},
		}}}}}}},
	}}}

	v := newCountingVisitor()
	outer.Accept(v)

	if v.counts["FuncLit"] != 2 {
		t.Errorf("expected unrestricted traversal to see both literals, got %d", v.counts["FuncLit"])
	}
}

func strPtr(s string) *string { return &s }
