package interp

import "github.com/fippli/fip/pkg/value"

// asyncFunction wraps a Function whose invocation is made to return a
// Promise instead of a plain Value ("Async function"). It is a
// distinct Callable rather than a flag on Function so Call's type switch
// (call.go) stays the single dispatch point asks for.
type asyncFunction struct {
	inner *Function
}

func (a *asyncFunction) Kind() value.Kind     { return value.Func }
func (a *asyncFunction) Render() string       { return a.inner.Render() }
func (a *asyncFunction) Arity() int           { return a.inner.Arity() }
func (a *asyncFunction) ParamNames() []string { return a.inner.ParamNames() }
