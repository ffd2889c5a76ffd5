// Package env implements FIP's lexically scoped environment chain.
package env

import "github.com/fippli/fip/pkg/value"

// Env is a mapping from identifier to Value plus a link to a parent
// environment. Lookups walk the chain; definitions insert into the innermost
// frame. Frames are created strictly newer-than-parent, so the graph they
// form can never contain a cycle.
type Env struct {
	vars   map[string]value.Value
	parent *Env
}

// New creates a root environment with no parent — one per module, since the
// environment chain is never shared across modules.
func New() *Env {
	return &Env{vars: make(map[string]value.Value)}
}

// Child creates a new frame whose parent is e.
func (e *Env) Child() *Env {
	return &Env{vars: make(map[string]value.Value), parent: e}
}

// Lookup walks the environment chain for name, reporting whether it was found.
func (e *Env) Lookup(name string) (value.Value, bool) {
	for frame := e; frame != nil; frame = frame.parent {
		if v, ok := frame.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Defined reports whether name is bound in this frame specifically (not an
// ancestor), used to detect a rebinding before it happens.
func (e *Env) Defined(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Define binds name in the innermost (this) frame. Callers are responsible
// for checking Defined first to raise the Mutation error — Define itself
// always succeeds; the error is the evaluator's concern, not the
// environment's.
func (e *Env) Define(name string, v value.Value) {
	e.vars[name] = v
}

// Names returns every identifier bound directly in this frame, in
// unspecified order — used by the module loader to compute a module's export
// set, where "exported" equals "defined at top level".
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	return names
}

// AllNames returns every identifier visible from this frame, walking the
// full parent chain — used only for "did you mean" diagnostics, never for
// evaluation (Lookup already walks the chain itself for that).
func (e *Env) AllNames() []string {
	var names []string
	for frame := e; frame != nil; frame = frame.parent {
		for name := range frame.vars {
			names = append(names, name)
		}
	}
	return names
}
