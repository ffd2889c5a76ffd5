package interp

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/fippli/fip/pkg/builtins"
	"github.com/fippli/fip/pkg/value"
)

// Call is the single apply path shared by Functions and Builtins: both
// dispatch through one tagged variant. It implements builtins.Caller so
// native builtin bodies (map, filter, Promise.then, ...) can invoke FIP
// callables without pkg/builtins ever importing pkg/interp.
func (e *Evaluator) Call(callee value.Value, args []value.Value, pos lexer.Position) (value.Value, error) {
	switch c := callee.(type) {
	case *Function:
		return e.callFunction(c, args, pos)
	case *asyncFunction:
		return e.callAsync(c, args, pos)
	case *builtins.Ref:
		return e.callBuiltin(c, args, pos)
	default:
		return nil, runtimeErr(pos, "%s is not callable", callee.Render())
	}
}

func (e *Evaluator) callFunction(f *Function, args []value.Value, pos lexer.Position) (value.Value, error) {
	n := f.Arity()
	k := len(args)
	switch {
	case k < n:
		return f.withMore(args), nil
	case k > n:
		return nil, runtimeErr(pos, "function %s expects %d arguments, got %d", diagName(f.Name), n, k)
	}
	return e.invokeFunctionBody(f, args)
}

func (e *Evaluator) invokeFunctionBody(f *Function, args []value.Value) (value.Value, error) {
	frame := f.Captured.Child()
	all := append(append([]value.Value{}, f.Partial...), args...)
	for i, p := range f.Params {
		frame.Define(p, all[i])
	}
	ctx := callCtx{impure: f.Impure, pred: f.Pred, name: f.Name}
	return e.evalBlock(f.Body, frame, ctx)
}

// callAsync makes invocation return a Promise that settles with the body's
// result or with the error it raised, rather than propagating the error
// synchronously to the caller.
func (e *Evaluator) callAsync(a *asyncFunction, args []value.Value, pos lexer.Position) (value.Value, error) {
	n := a.inner.Arity()
	k := len(args)
	switch {
	case k < n:
		return &asyncFunction{inner: a.inner.withMore(args)}, nil
	case k > n:
		return nil, runtimeErr(pos, "function %s expects %d arguments, got %d", diagName(a.inner.Name), n, k)
	}
	p, resolve, reject := value.NewPromise()
	result, err := e.invokeFunctionBody(a.inner, args)
	if err != nil {
		reject(err)
		return p, nil
	}
	resolve(result)
	return p, nil
}

func (e *Evaluator) callBuiltin(r *builtins.Ref, args []value.Value, pos lexer.Position) (value.Value, error) {
	n := r.Arity()
	k := len(args)
	switch {
	case k < n:
		return &builtins.Ref{Def: r.Def, Partial: append(append([]value.Value{}, r.Partial...), args...)}, nil
	case k > n:
		return nil, runtimeErr(pos, "function %s expects %d arguments, got %d", diagName(r.Def.Name), n, k)
	}
	all := append(append([]value.Value{}, r.Partial...), args...)
	return r.Def.Body(e, pos, all)
}

func diagName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}
