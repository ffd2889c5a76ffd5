package interp

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/shopspring/decimal"

	"github.com/fippli/fip/internal/diagnostics"
	"github.com/fippli/fip/pkg/ast"
	"github.com/fippli/fip/pkg/builtins"
	"github.com/fippli/fip/pkg/env"
	"github.com/fippli/fip/pkg/value"
)

// Evaluator is the interpreter handle threaded through every eval call: it
// owns the module cache and in-progress set and implements
// builtins.Caller so native builtins can call back into FIP closures.
type Evaluator struct {
	entryDir   string
	cache      map[string]*Module
	inProgress map[string]bool
}

// callCtx carries diagnostic context through a call. Purity enforcement
// itself is a static scan at function-definition time (purity.go), so ctx
// only records the current function's declared purity and name for
// diagnostics.
type callCtx struct {
	impure bool
	pred   bool
	name   string
}

func NewEvaluator(entryDir string) *Evaluator {
	return &Evaluator{
		entryDir:   entryDir,
		cache:      map[string]*Module{},
		inProgress: map[string]bool{},
	}
}

// evalBlock evaluates a Block's statements under the composable-block rule:
// bindings/use/async execute for effect without disturbing the running
// pipeline value; plain expression statements seed or pipe through it.
func (e *Evaluator) evalBlock(b *ast.Block, frame *env.Env, ctx callCtx) (value.Value, error) {
	var running value.Value
	have := false
	for _, stmt := range b.Stmts {
		switch {
		case stmt.Use != nil:
			if err := e.evalUseStmt(stmt.Use, frame); err != nil {
				return nil, err
			}
		case stmt.Async != nil:
			if err := e.evalAsyncDef(stmt.Async, frame, ctx); err != nil {
				return nil, err
			}
		case stmt.Binding != nil:
			if err := e.evalBindingStmt(stmt.Binding, frame, ctx); err != nil {
				return nil, err
			}
		case stmt.Expr != nil:
			v, err := e.evalExpr(stmt.Expr, frame, ctx)
			if err != nil {
				return nil, err
			}
			// "composable blocks": the first line seeds the
			// running value; each later line that evaluates to a callable
			// of arity >= 1 is invoked ON the running value (the pipeline
			// idiom `x -> increment -> identity`) rather than replacing it.
			if have {
				if callee, ok := v.(value.Callable); ok && callee.Arity() >= 1 {
					next, err := e.Call(callee, []value.Value{running}, stmt.Expr.Pos)
					if err != nil {
						return nil, err
					}
					running = next
					continue
				}
			}
			running = v
			have = true
		}
	}
	if !have {
		return value.Nil, nil
	}
	return running, nil
}

// evalProgram evaluates a whole module file's top-level statements into
// frame, in source order.
func (e *Evaluator) evalProgram(p *ast.Program, frame *env.Env) error {
	block := &ast.Block{Pos: p.Pos, Stmts: p.Stmts}
	_, err := e.evalBlock(block, frame, callCtx{})
	return err
}

func (e *Evaluator) evalAsyncDef(a *ast.AsyncDef, frame *env.Env, ctx callCtx) error {
	_, impure, pred := parseIdentSuffix(a.Name)
	fn, err := e.buildNamedFunction(a.Fn, frame, a.Name, impure, pred)
	if err != nil {
		return err
	}
	async := &asyncFunction{inner: fn}
	if frame.Defined(a.Name) {
		return mutationErr(a.Pos, a.Name)
	}
	frame.Define(a.Name, async)
	return nil
}

func (e *Evaluator) evalBindingStmt(b *ast.Binding, frame *env.Env, ctx callCtx) error {
	// Bindings are stored under their full identifier text, suffix
	// included: a reference to `ok!` elsewhere in the source looks up the
	// token `ok!` verbatim, since a trailing ! or ? is part of the
	// identifier.
	if b.Pattern.Ident != nil {
		full := *b.Pattern.Ident
		if lit, ok := literalFuncLit(b.Value); ok {
			_, impure, pred := parseIdentSuffix(full)
			fn, err := e.buildNamedFunction(lit, frame, full, impure, pred)
			if err != nil {
				return err
			}
			if frame.Defined(full) {
				return mutationErr(b.Pos, full)
			}
			frame.Define(full, fn)
			return nil
		}
		v, err := e.evalExpr(b.Value, frame, ctx)
		if err != nil {
			return err
		}
		if frame.Defined(full) {
			return mutationErr(b.Pos, full)
		}
		frame.Define(full, v)
		return nil
	}
	v, err := e.evalExpr(b.Value, frame, ctx)
	if err != nil {
		return err
	}
	return e.destructure(b.Pattern, v, frame, b.Pos)
}

// literalFuncLit reports whether expr is, syntactically, nothing but a bare
// function literal — the named-function form of a binding — used to check
// binder/literal suffix agreement.
func literalFuncLit(e *ast.Expr) (*ast.FuncLit, bool) {
	or := e.Or
	and := or.Left
	eq := and.Left
	rel := eq.Left
	add := rel.Left
	mul := add.Left
	unary := mul.Left
	if len(or.Rest) != 0 || len(and.Rest) != 0 || len(eq.Rest) != 0 ||
		len(rel.Rest) != 0 || len(add.Rest) != 0 || len(mul.Rest) != 0 {
		return nil, false
	}
	if unary.Neg || unary.Await {
		return nil, false
	}
	if len(unary.Postfix.Ops) != 0 {
		return nil, false
	}
	if unary.Postfix.Primary.FuncLit == nil {
		return nil, false
	}
	return unary.Postfix.Primary.FuncLit, true
}

func parseIdentSuffix(name string) (base string, impure, pred bool) {
	if strings.HasSuffix(name, "!") {
		return strings.TrimSuffix(name, "!"), true, false
	}
	if strings.HasSuffix(name, "?") {
		return strings.TrimSuffix(name, "?"), false, true
	}
	return name, false, false
}

// buildFunction builds an anonymous literal's Function, checking purity
// against the literal's own suffix — anonymous literals follow the same
// suffix rules as named ones.
func (e *Evaluator) buildFunction(lit *ast.FuncLit, frame *env.Env, name string) (*Function, error) {
	if err := CheckPurity(lit); err != nil {
		return nil, err
	}
	return &Function{
		Params:   lit.Params,
		Body:     lit.Body,
		Captured: frame,
		Impure:   lit.Impure,
		Pred:     lit.Pred,
		Name:     name,
	}, nil
}

// buildNamedFunction builds a named binding's (or async def's) Function. The
// binder's identifier may itself carry ! or ?, which must agree with the
// literal's suffix: a literal written with no suffix of its own agrees
// trivially and takes the binder's; a literal that does carry an explicit
// suffix must match it exactly.
func (e *Evaluator) buildNamedFunction(lit *ast.FuncLit, frame *env.Env, name string, impure, pred bool) (*Function, error) {
	if err := validateNamedFuncLit(lit, name, impure, pred); err != nil {
		return nil, err
	}
	return &Function{
		Params:   lit.Params,
		Body:     lit.Body,
		Captured: frame,
		Impure:   impure,
		Pred:     pred,
		Name:     name,
	}, nil
}

// ---- expression precedence ladder ----

func (e *Evaluator) evalExpr(x *ast.Expr, frame *env.Env, ctx callCtx) (value.Value, error) {
	return e.evalOr(x.Or, frame, ctx)
}

func (e *Evaluator) evalOr(x *ast.OrExpr, frame *env.Env, ctx callCtx) (value.Value, error) {
	left, err := e.evalAnd(x.Left, frame, ctx)
	if err != nil {
		return nil, err
	}
	for _, tail := range x.Rest {
		right, err := e.evalAnd(tail.Right, frame, ctx)
		if err != nil {
			return nil, err
		}
		lb, lok := left.(value.BoolValue)
		rb, rok := right.(value.BoolValue)
		if !lok || !rok {
			return nil, doesntMakeSenseErr(tail.Pos, "|", kindName(left), kindName(right))
		}
		left = value.BoolValue(bool(lb) || bool(rb))
	}
	return left, nil
}

func (e *Evaluator) evalAnd(x *ast.AndExpr, frame *env.Env, ctx callCtx) (value.Value, error) {
	left, err := e.evalEq(x.Left, frame, ctx)
	if err != nil {
		return nil, err
	}
	for _, tail := range x.Rest {
		right, err := e.evalEq(tail.Right, frame, ctx)
		if err != nil {
			return nil, err
		}
		lb, lok := left.(value.BoolValue)
		rb, rok := right.(value.BoolValue)
		if !lok || !rok {
			return nil, doesntMakeSenseErr(tail.Pos, "&", kindName(left), kindName(right))
		}
		left = value.BoolValue(bool(lb) && bool(rb))
	}
	return left, nil
}

func (e *Evaluator) evalEq(x *ast.EqExpr, frame *env.Env, ctx callCtx) (value.Value, error) {
	left, err := e.evalRel(x.Left, frame, ctx)
	if err != nil {
		return nil, err
	}
	for _, tail := range x.Rest {
		right, err := e.evalRel(tail.Right, frame, ctx)
		if err != nil {
			return nil, err
		}
		eq := value.Equal(left, right)
		if tail.Op == "≠" {
			eq = !eq
		}
		left = value.BoolValue(eq)
	}
	return left, nil
}

func (e *Evaluator) evalRel(x *ast.RelExpr, frame *env.Env, ctx callCtx) (value.Value, error) {
	left, err := e.evalAdd(x.Left, frame, ctx)
	if err != nil {
		return nil, err
	}
	for _, tail := range x.Rest {
		right, err := e.evalAdd(tail.Right, frame, ctx)
		if err != nil {
			return nil, err
		}
		ln, lok := left.(value.NumberValue)
		rn, rok := right.(value.NumberValue)
		if !lok || !rok {
			return nil, doesntMakeSenseErr(tail.Pos, tail.Op, kindName(left), kindName(right))
		}
		var result bool
		switch tail.Op {
		case "<":
			result = ln.D.LessThan(rn.D)
		case ">":
			result = ln.D.GreaterThan(rn.D)
		case "<=":
			result = ln.D.LessThanOrEqual(rn.D)
		case ">=":
			result = ln.D.GreaterThanOrEqual(rn.D)
		}
		left = value.BoolValue(result)
	}
	return left, nil
}

func (e *Evaluator) evalAdd(x *ast.AddExpr, frame *env.Env, ctx callCtx) (value.Value, error) {
	left, err := e.evalMul(x.Left, frame, ctx)
	if err != nil {
		return nil, err
	}
	for _, tail := range x.Rest {
		right, err := e.evalMul(tail.Right, frame, ctx)
		if err != nil {
			return nil, err
		}
		ln, lok := left.(value.NumberValue)
		rn, rok := right.(value.NumberValue)
		if !lok || !rok {
			return nil, doesntMakeSenseErr(tail.Pos, tail.Op, kindName(left), kindName(right))
		}
		if tail.Op == "+" {
			left = value.NewNumber(ln.D.Add(rn.D))
		} else {
			left = value.NewNumber(ln.D.Sub(rn.D))
		}
	}
	return left, nil
}

func (e *Evaluator) evalMul(x *ast.MulExpr, frame *env.Env, ctx callCtx) (value.Value, error) {
	left, err := e.evalUnary(x.Left, frame, ctx)
	if err != nil {
		return nil, err
	}
	for _, tail := range x.Rest {
		right, err := e.evalUnary(tail.Right, frame, ctx)
		if err != nil {
			return nil, err
		}
		ln, lok := left.(value.NumberValue)
		rn, rok := right.(value.NumberValue)
		if !lok || !rok {
			return nil, doesntMakeSenseErr(tail.Pos, tail.Op, kindName(left), kindName(right))
		}
		if tail.Op == "*" {
			left = value.NewNumber(ln.D.Mul(rn.D))
		} else {
			if rn.D.IsZero() {
				return nil, runtimeErr(tail.Pos, "division by zero")
			}
			left = value.NewNumber(ln.D.Div(rn.D))
		}
	}
	return left, nil
}

func (e *Evaluator) evalUnary(x *ast.UnaryExpr, frame *env.Env, ctx callCtx) (value.Value, error) {
	v, err := e.evalPostfix(x.Postfix, frame, ctx)
	if err != nil {
		return nil, err
	}
	if x.Neg {
		n, ok := v.(value.NumberValue)
		if !ok {
			return nil, doesntMakeSenseErr(x.Pos, "-", "Number", kindName(v))
		}
		return value.NewNumber(n.D.Neg()), nil
	}
	if x.Await {
		return e.evalAwait(v, x.Pos)
	}
	return v, nil
}

func (e *Evaluator) evalAwait(v value.Value, pos lexer.Position) (value.Value, error) {
	p, ok := v.(value.PromiseValue)
	if !ok {
		return v, nil
	}
	if !p.Settled() {
		return nil, runtimeErr(pos, "await of a promise that never settled")
	}
	if p.Rejected() {
		return nil, runtimeErr(pos, "await of a rejected promise: %v", p.Reason())
	}
	return p.Result(), nil
}

func (e *Evaluator) evalPostfix(x *ast.Postfix, frame *env.Env, ctx callCtx) (value.Value, error) {
	v, err := e.evalPrimary(x.Primary, frame, ctx)
	if err != nil {
		return nil, err
	}
	for _, op := range x.Ops {
		switch {
		case op.Call != nil:
			args := make([]value.Value, len(op.Call.Args))
			for i, a := range op.Call.Args {
				av, err := e.evalExpr(a, frame, ctx)
				if err != nil {
					return nil, err
				}
				args[i] = av
			}
			callee, ok := v.(value.Callable)
			if !ok {
				return nil, runtimeErr(op.Pos, "%s is not callable", v.Render())
			}
			v, err = e.Call(callee, args, op.Pos)
			if err != nil {
				return nil, err
			}
		case op.Prop != nil:
			v, err = propertyAccess(v, *op.Prop, op.Pos)
			if err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

func propertyAccess(v value.Value, name string, pos lexer.Position) (value.Value, error) {
	switch o := v.(type) {
	case value.NullValue:
		return value.Nil, nil
	case value.ObjectValue:
		return o.Get(name), nil
	default:
		// Method-style builtins (".map") make `list.map(fn)` work on Arrays:
		// the receiver is pre-bound as the builtin's first argument and the
		// usual currying contract covers the rest.
		if ref, ok := builtins.Lookup("." + name); ok {
			return &builtins.Ref{Def: ref.Def, Partial: []value.Value{v}}, nil
		}
		return nil, runtimeErr(pos, "property access on non-Object, non-Null value %s", v.Render())
	}
}

func (e *Evaluator) evalPrimary(x *ast.Primary, frame *env.Env, ctx callCtx) (value.Value, error) {
	switch {
	case x.Number != nil:
		d, err := decimal.NewFromString(*x.Number)
		if err != nil {
			return nil, runtimeErr(x.Pos, "invalid number literal %q", *x.Number)
		}
		return value.NewNumber(d), nil
	case x.Str != nil:
		return e.evalStringLit(x.Str, frame, ctx)
	case x.True:
		return value.BoolValue(true), nil
	case x.False:
		return value.BoolValue(false), nil
	case x.Null:
		return value.Nil, nil
	case x.Array != nil:
		return e.evalArrayLit(x.Array, frame, ctx)
	case x.Object != nil:
		return e.evalObjectLit(x.Object, frame, ctx)
	case x.FuncLit != nil:
		return e.buildFunction(x.FuncLit, frame, "")
	case x.Paren != nil:
		return e.evalExpr(x.Paren, frame, ctx)
	case x.Ident != nil:
		return e.lookupIdent(*x.Ident, frame, x.Pos)
	}
	return nil, runtimeErr(x.Pos, "malformed expression")
}

func (e *Evaluator) lookupIdent(name string, frame *env.Env, pos lexer.Position) (value.Value, error) {
	if v, ok := frame.Lookup(name); ok {
		return v, nil
	}
	if ref, ok := builtins.Lookup(name); ok {
		return ref, nil
	}
	if ns, ok := builtins.Namespaces()[name]; ok {
		return ns, nil
	}
	candidates := append(frame.AllNames(), builtins.Names()...)
	msg := diagnostics.WithSuggestion(fmt.Sprintf("undefined identifier %q", name), name, candidates)
	return nil, runtimeErr(pos, "%s", msg)
}

func (e *Evaluator) evalStringLit(s *ast.StringLit, frame *env.Env, ctx callCtx) (value.Value, error) {
	var b strings.Builder
	for _, part := range s.Parts {
		switch {
		case part.Text != nil:
			b.WriteString(*part.Text)
		case part.Escape != nil:
			switch *part.Escape {
			case `\"`:
				b.WriteByte('"')
			case `\\`:
				b.WriteByte('\\')
			default:
				b.WriteString(*part.Escape)
			}
		case part.Interp != nil:
			v, err := e.lookupIdent(*part.Interp, frame, part.Pos)
			if err != nil {
				return nil, err
			}
			if v.Kind() != value.Null {
				b.WriteString(v.Render())
			}
		}
	}
	return value.StringValue(b.String()), nil
}

func (e *Evaluator) evalArrayLit(a *ast.ArrayLit, frame *env.Env, ctx callCtx) (value.Value, error) {
	var elems []value.Value
	for _, el := range a.Elements {
		v, err := e.evalExpr(el.Value, frame, ctx)
		if err != nil {
			return nil, err
		}
		if el.Spread {
			arr, ok := v.(value.ArrayValue)
			if !ok {
				return nil, runtimeErr(el.Pos, "spread of a non-Array value %s", v.Render())
			}
			elems = append(elems, arr.Elements...)
			continue
		}
		elems = append(elems, v)
	}
	return value.NewArray(elems), nil
}

func (e *Evaluator) evalObjectLit(o *ast.ObjectLit, frame *env.Env, ctx callCtx) (value.Value, error) {
	obj := value.NewObject(nil, nil)
	for _, el := range o.Elements {
		if el.Spread != nil {
			v, err := e.evalExpr(el.Spread, frame, ctx)
			if err != nil {
				return nil, err
			}
			src, ok := v.(value.ObjectValue)
			if !ok {
				return nil, runtimeErr(el.Pos, "spread of a non-Object value %s", v.Render())
			}
			for _, k := range src.Keys {
				obj = obj.With(k, src.Values[k])
			}
			continue
		}
		v, err := e.evalExpr(el.Pair.Value, frame, ctx)
		if err != nil {
			return nil, err
		}
		obj = obj.With(el.Pair.Key, v)
	}
	return obj, nil
}

func kindName(v value.Value) string {
	switch v.Kind() {
	case value.Number:
		return "Number"
	case value.String:
		return "String"
	case value.Boolean:
		return "Boolean"
	case value.Null:
		return "Null"
	case value.Array:
		return "Array"
	case value.Object:
		return "Object"
	case value.PromiseKind:
		return "Promise"
	default:
		return "Function"
	}
}
