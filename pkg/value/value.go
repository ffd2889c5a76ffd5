// Package value implements FIP's runtime value model.
//
// Numbers are backed by github.com/shopspring/decimal rather than a native
// int64 or float64; see DESIGN.md for the ruling between integer-only and
// rational/float semantics. Arrays and
// Objects are immutable: every operation that looks like a mutation (spread,
// field update) returns a fresh Value and never touches an existing one.
package value

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tags a Value's runtime shape.
type Kind int

const (
	Number Kind = iota
	String
	Boolean
	Null
	Array
	Object
	Func
	Builtin
	PromiseKind
)

// Callable is implemented by both user Functions and builtin Refs so the
// evaluator can dispatch calls through a single path.
type Callable interface {
	Value
	Arity() int
	ParamNames() []string
}

// Value is the sum of FIP's runtime shapes.
type Value interface {
	Kind() Kind
	// Render produces the canonical textual form used consistently across
	// log!, trace!, and error messages.
	Render() string
}

// ---- Number ----

type NumberValue struct {
	D decimal.Decimal
}

func NewNumber(d decimal.Decimal) NumberValue { return NumberValue{D: d} }

func NumberFromInt(n int64) NumberValue { return NumberValue{D: decimal.NewFromInt(n)} }

func (NumberValue) Kind() Kind       { return Number }
func (n NumberValue) Render() string { return n.D.String() }

// ---- String ----

type StringValue string

func (StringValue) Kind() Kind       { return String }
func (s StringValue) Render() string { return string(s) }

// ---- Boolean ----

type BoolValue bool

func (BoolValue) Kind() Kind { return Boolean }
func (b BoolValue) Render() string {
	if b {
		return "true"
	}
	return "false"
}

// ---- Null ----

type NullValue struct{}

func (NullValue) Kind() Kind        { return Null }
func (NullValue) Render() string    { return "null" }

var Nil = NullValue{}

// ---- Array ----

type ArrayValue struct {
	Elements []Value
}

func NewArray(elems []Value) ArrayValue {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return ArrayValue{Elements: cp}
}

func (ArrayValue) Kind() Kind { return Array }

func (a ArrayValue) Render() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = renderNested(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ---- Object ----

// ObjectValue preserves insertion order for iteration, so it
// pairs a key slice with a value map rather than relying on Go's randomized
// map iteration order.
type ObjectValue struct {
	Keys   []string
	Values map[string]Value
}

func NewObject(keys []string, values map[string]Value) ObjectValue {
	keysCp := make([]string, len(keys))
	copy(keysCp, keys)
	valuesCp := make(map[string]Value, len(values))
	for k, v := range values {
		valuesCp[k] = v
	}
	return ObjectValue{Keys: keysCp, Values: valuesCp}
}

func (ObjectValue) Kind() Kind { return Object }

// Get returns the value at key, or Nil if absent — the short-circuit
// property-access rule.
func (o ObjectValue) Get(key string) Value {
	if v, ok := o.Values[key]; ok {
		return v
	}
	return Nil
}

// With returns a fresh ObjectValue with key set to v. Later keys overwrite
// earlier ones, matching spread semantics.
func (o ObjectValue) With(key string, v Value) ObjectValue {
	keys := o.Keys
	if _, exists := o.Values[key]; !exists {
		keys = append(append([]string{}, o.Keys...), key)
	}
	values := make(map[string]Value, len(o.Values)+1)
	for k, val := range o.Values {
		values[k] = val
	}
	values[key] = v
	return ObjectValue{Keys: keys, Values: values}
}

func (o ObjectValue) Render() string {
	parts := make([]string, 0, len(o.Keys))
	for _, k := range o.Keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, renderNested(o.Values[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// renderNested renders a value as it should look nested inside an Array or
// Object: strings keep their quotes, unlike top-level interpolation.
func renderNested(v Value) string {
	if s, ok := v.(StringValue); ok {
		return fmt.Sprintf("%q", string(s))
	}
	return v.Render()
}

// ---- Promise ----

// PromiseValue is an opaque, comparable handle to a future value.
// Its identity comes from google/uuid rather than Go pointer identity
// so promises remain comparable across serialization boundaries (e.g. the
// dev server's websocket protocol, internal/devserver).
type PromiseValue struct {
	ID    uuid.UUID
	state *promiseState
}

type promiseState struct {
	settled  bool
	rejected bool
	result   Value
	reason   error
}

func NewPromise() (PromiseValue, func(Value), func(error)) {
	st := &promiseState{}
	p := PromiseValue{ID: uuid.New(), state: st}
	resolve := func(v Value) {
		if !st.settled {
			st.settled, st.result = true, v
		}
	}
	reject := func(err error) {
		if !st.settled {
			st.settled, st.rejected, st.reason = true, true, err
		}
	}
	return p, resolve, reject
}

func (PromiseValue) Kind() Kind { return PromiseKind }
func (p PromiseValue) Render() string {
	return fmt.Sprintf("Promise<%s>", p.ID)
}

func (p PromiseValue) Settled() bool  { return p.state.settled }
func (p PromiseValue) Rejected() bool { return p.state.rejected }
func (p PromiseValue) Result() Value  { return p.state.result }
func (p PromiseValue) Reason() error  { return p.state.reason }

// Equal implements structural, type-strict equality: two Values are equal
// iff their tags match and their components are recursively equal; a Number
// is never equal to a Boolean or a String.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case NumberValue:
		return av.D.Equal(b.(NumberValue).D)
	case StringValue:
		return av == b.(StringValue)
	case BoolValue:
		return av == b.(BoolValue)
	case NullValue:
		return true
	case ArrayValue:
		bv := b.(ArrayValue)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case ObjectValue:
		bv := b.(ObjectValue)
		if len(av.Keys) != len(bv.Keys) {
			return false
		}
		for k, v := range av.Values {
			bval, ok := bv.Values[k]
			if !ok || !Equal(v, bval) {
				return false
			}
		}
		return true
	case PromiseValue:
		return av.ID == b.(PromiseValue).ID
	default:
		return a == b
	}
}

// Truthy is used only by builtins/evaluator internals that need a plain bool
// out of a BoolValue. Any non-Boolean value counts as false (every? and some?
// pass their callback's result here unchecked); operators do not use it,
// since they require Boolean operands and never coerce other kinds.
func Truthy(v Value) bool {
	b, ok := v.(BoolValue)
	return ok && bool(b)
}
