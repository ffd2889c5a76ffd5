package interp

import (
	"strings"

	"github.com/fippli/fip/pkg/ast"
)

// CheckPurity runs the static suffix discipline once, when a FuncLit is
// evaluated into a Function (its definition point, not its call sites),
// against the literal's own suffix. Anonymous literals (no binder to carry a
// suffix of their own) are always checked this way.
func CheckPurity(lit *ast.FuncLit) error {
	return checkPurityAgainst(lit, "function literal", lit.Impure, lit.Pred)
}

// validateNamedFuncLit is checkPurityAgainst plus the binder/literal
// suffix-agreement rule, shared by the evaluator (eval.go's
// buildNamedFunction) and the stand-alone lint pass (module.go's
// AnalyzeFile) so both enforce exactly the same discipline.
func validateNamedFuncLit(lit *ast.FuncLit, name string, impure, pred bool) error {
	if lit.Impure && !impure {
		return suffixErr(lit.Pos, name, "function literal suffixed ! but its binder is not")
	}
	if lit.Pred && !pred {
		return suffixErr(lit.Pos, name, "function literal suffixed ? but its binder is not")
	}
	return checkPurityAgainst(lit, name, impure, pred)
}

// checkPurityAgainst runs the suffix discipline against an explicit
// impure/pred pair rather than lit's own suffix fields — used for a named
// function binding (or async def), where the *binder's* suffix stands in for
// an unwritten literal suffix (e.g. `ok!: (x){ log!(x) }` defines
// successfully; see DESIGN.md).
func checkPurityAgainst(lit *ast.FuncLit, name string, impure, pred bool) error {
	witness := hasImpurityWitness(lit.Body)
	if impure && !witness {
		return suffixErr(lit.Pos, name, "suffixed ! but its body has no impurity witness")
	}
	// Rule 3 applies to any function not suffixed ! — including one
	// suffixed ? — since callers would otherwise silently propagate effects.
	if !impure && witness {
		return suffixErr(lit.Pos, name, "body has an impurity witness but is not suffixed !")
	}
	if pred && !blockIsBooleanResult(lit.Body) {
		return suffixErr(lit.Pos, name, "suffixed ? but its body's final expression is not a Boolean-result form")
	}
	return nil
}

// ---- Boolean-result witness ----

func blockIsBooleanResult(b *ast.Block) bool {
	e, ok := finalExpr(b)
	if !ok {
		return false
	}
	return isBooleanResult(e)
}

func finalExpr(b *ast.Block) (*ast.Expr, bool) {
	if len(b.Stmts) == 0 {
		return nil, false
	}
	last := b.Stmts[len(b.Stmts)-1]
	if last.Expr == nil {
		return nil, false
	}
	return last.Expr, true
}

func isBooleanResult(e *ast.Expr) bool {
	or := e.Or
	if len(or.Rest) > 0 {
		return true
	}
	and := or.Left
	if len(and.Rest) > 0 {
		return true
	}
	eq := and.Left
	if len(eq.Rest) > 0 {
		return true
	}
	rel := eq.Left
	if len(rel.Rest) > 0 {
		return true
	}
	add := rel.Left
	if len(add.Rest) > 0 {
		return false
	}
	mul := add.Left
	if len(mul.Rest) > 0 {
		return false
	}
	unary := mul.Left
	if unary.Neg || unary.Await {
		return false
	}
	return isBooleanPostfix(unary.Postfix)
}

func isBooleanPostfix(p *ast.Postfix) bool {
	if len(p.Ops) == 0 {
		return p.Primary.True || p.Primary.False
	}
	last := p.Ops[len(p.Ops)-1]
	if last.Call == nil {
		return false
	}
	name, ok := calleeNameOf(p)
	if !ok {
		return false
	}
	if name == "if" && len(last.Call.Args) == 3 {
		thenLit, ok1 := literalFuncLit(last.Call.Args[1])
		elseLit, ok2 := literalFuncLit(last.Call.Args[2])
		if !ok1 || !ok2 {
			return false
		}
		return blockIsBooleanResult(thenLit.Body) && blockIsBooleanResult(elseLit.Body)
	}
	return strings.HasSuffix(name, "?")
}

// calleeNameOf names the callee of the last Call op in p, either the bare
// primary identifier (a direct call) or the property name immediately
// preceding the call (a method-style call).
func calleeNameOf(p *ast.Postfix) (string, bool) {
	idx := len(p.Ops) - 1
	if idx == 0 {
		if p.Primary.Ident != nil {
			return *p.Primary.Ident, true
		}
		return "", false
	}
	if prev := p.Ops[idx-1]; prev.Prop != nil {
		return *prev.Prop, true
	}
	return "", false
}

// ---- Impurity witness ----

func hasImpurityWitness(b *ast.Block) bool {
	for _, stmt := range b.Stmts {
		switch {
		case stmt.Binding != nil:
			if exprHasImpurity(stmt.Binding.Value) {
				return true
			}
		case stmt.Expr != nil:
			if exprHasImpurity(stmt.Expr) {
				return true
			}
		}
		// Use and Async statements carry no scannable identifier references
		// of their own (a use path is a string literal; an async def's body
		// is a nested function, checked by validateNamedFuncLit when the
		// async def itself is evaluated).
	}
	return false
}

func exprHasImpurity(e *ast.Expr) bool {
	return orHasImpurity(e.Or)
}

func orHasImpurity(x *ast.OrExpr) bool {
	if andHasImpurity(x.Left) {
		return true
	}
	for _, t := range x.Rest {
		if andHasImpurity(t.Right) {
			return true
		}
	}
	return false
}

func andHasImpurity(x *ast.AndExpr) bool {
	if eqHasImpurity(x.Left) {
		return true
	}
	for _, t := range x.Rest {
		if eqHasImpurity(t.Right) {
			return true
		}
	}
	return false
}

func eqHasImpurity(x *ast.EqExpr) bool {
	if relHasImpurity(x.Left) {
		return true
	}
	for _, t := range x.Rest {
		if relHasImpurity(t.Right) {
			return true
		}
	}
	return false
}

func relHasImpurity(x *ast.RelExpr) bool {
	if addHasImpurity(x.Left) {
		return true
	}
	for _, t := range x.Rest {
		if addHasImpurity(t.Right) {
			return true
		}
	}
	return false
}

func addHasImpurity(x *ast.AddExpr) bool {
	if mulHasImpurity(x.Left) {
		return true
	}
	for _, t := range x.Rest {
		if mulHasImpurity(t.Right) {
			return true
		}
	}
	return false
}

func mulHasImpurity(x *ast.MulExpr) bool {
	if unaryHasImpurity(x.Left) {
		return true
	}
	for _, t := range x.Rest {
		if unaryHasImpurity(t.Right) {
			return true
		}
	}
	return false
}

func unaryHasImpurity(x *ast.UnaryExpr) bool {
	return postfixHasImpurity(x.Postfix)
}

func postfixHasImpurity(p *ast.Postfix) bool {
	if primaryHasImpurity(p.Primary) {
		return true
	}
	for _, op := range p.Ops {
		if op.Prop != nil && strings.HasSuffix(*op.Prop, "!") {
			return true
		}
		if op.Call != nil {
			for _, a := range op.Call.Args {
				if exprHasImpurity(a) {
					return true
				}
			}
		}
	}
	return false
}

func primaryHasImpurity(p *ast.Primary) bool {
	switch {
	case p.Ident != nil:
		return strings.HasSuffix(*p.Ident, "!")
	case p.Str != nil:
		for _, part := range p.Str.Parts {
			if part.Interp != nil && strings.HasSuffix(*part.Interp, "!") {
				return true
			}
		}
		return false
	case p.Array != nil:
		for _, el := range p.Array.Elements {
			if exprHasImpurity(el.Value) {
				return true
			}
		}
		return false
	case p.Object != nil:
		for _, el := range p.Object.Elements {
			if el.Spread != nil && exprHasImpurity(el.Spread) {
				return true
			}
			if el.Pair != nil && exprHasImpurity(el.Pair.Value) {
				return true
			}
		}
		return false
	case p.Paren != nil:
		return exprHasImpurity(p.Paren)
	case p.FuncLit != nil:
		// Nested function literals are scanned by their own CheckPurity
		// call, never by the enclosing body's witness scan.
		return false
	}
	return false
}
