// Package builtins implements FIP's standard library: the process-wide
// builtin registry (arithmetic wrappers, list helpers, effectful helpers,
// control, promise and HTTP stubs).
//
// This package never imports pkg/interp: builtins that need to invoke a FIP
// callable (map, filter, reduce, Promise.then, ...) do so through the Caller
// interface below, which pkg/interp's evaluator implements. That keeps the
// dependency a one-way arrow (interp -> builtins), the same discipline that
// keeps pkg/ast's visitors depending on pkg/ast and never the reverse.
package builtins

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/fippli/fip/pkg/value"
)

// Caller is the callback surface a builtin body needs to apply a FIP value as
// a function, e.g. the mapping function passed to `map`.
type Caller interface {
	Call(callee value.Value, args []value.Value, pos lexer.Position) (value.Value, error)
}

// Func is the native body of a builtin: given the calling evaluator and the
// fully-supplied argument vector (never fewer than Arity, currying is
// resolved before Func is ever invoked), it produces a Value or an error.
type Func func(c Caller, pos lexer.Position, args []value.Value) (value.Value, error)

// Builtin is one entry in the registry: name, impure flag, ordered parameter
// names (required for all builtins so the currying rule applies uniformly),
// and a native body.
type Builtin struct {
	Name   string
	Impure bool
	Params []string
	Body   Func
}

func (b *Builtin) Kind() value.Kind { return value.Builtin }
func (b *Builtin) Render() string   { return fmt.Sprintf("<builtin %s>", b.Name) }
func (b *Builtin) Arity() int       { return len(b.Params) }
func (b *Builtin) ParamNames() []string {
	return b.Params
}

// Ref is a (possibly partially applied) reference to a Builtin — the
// currying-equivalent of a Function closure.
type Ref struct {
	Def     *Builtin
	Partial []value.Value
}

func (r *Ref) Kind() value.Kind { return value.Builtin }
func (r *Ref) Render() string   { return r.Def.Render() }
func (r *Ref) Arity() int       { return len(r.Def.Params) - len(r.Partial) }
func (r *Ref) ParamNames() []string {
	return r.Def.Params[len(r.Partial):]
}

// Registry is the process-wide builtin table, populated once at package
// initialization and thereafter read-only.
var Registry = map[string]*Builtin{}

func register(b *Builtin) {
	Registry[b.Name] = b
}

// Lookup returns a fresh, zero-partial Ref for name, or false if name is not
// a builtin.
func Lookup(name string) (*Ref, bool) {
	b, ok := Registry[name]
	if !ok {
		return nil, false
	}
	return &Ref{Def: b}, true
}

// Names returns every registered builtin name, used as candidates by the
// "did you mean" diagnostics in internal/diagnostics. Module root
// environments are not seeded with builtins; identifier lookup falls back to
// Lookup when a name is not bound in the environment chain.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	return names
}
