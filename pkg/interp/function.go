package interp

import (
	"fmt"

	"github.com/fippli/fip/pkg/ast"
	"github.com/fippli/fip/pkg/env"
	"github.com/fippli/fip/pkg/value"
)

// Function is a user-defined closure: params, body, the environment captured
// at definition, the impure/predicate flags, and an optional diagnostic name.
// Partial application is represented by Partial, the curried-equivalent of
// builtins.Ref.
type Function struct {
	Params   []string
	Body     *ast.Block
	Captured *env.Env
	Impure   bool
	Pred     bool
	Name     string
	Partial  []value.Value
}

func (f *Function) Kind() value.Kind { return value.Func }

func (f *Function) Render() string {
	if f.Name != "" {
		return fmt.Sprintf("<function %s>", f.Name)
	}
	return "<function>"
}

func (f *Function) Arity() int { return len(f.Params) - len(f.Partial) }

func (f *Function) ParamNames() []string { return f.Params[len(f.Partial):] }

// withMore returns a new Function with extra arguments appended to Partial,
// the Function-side counterpart of builtins.Ref's partial application.
func (f *Function) withMore(extra []value.Value) *Function {
	partial := make([]value.Value, 0, len(f.Partial)+len(extra))
	partial = append(partial, f.Partial...)
	partial = append(partial, extra...)
	return &Function{
		Params:   f.Params,
		Body:     f.Body,
		Captured: f.Captured,
		Impure:   f.Impure,
		Pred:     f.Pred,
		Name:     f.Name,
		Partial:  partial,
	}
}
