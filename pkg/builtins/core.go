package builtins

import (
	"fmt"
	"time"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/jpillora/backoff"

	"github.com/fippli/fip/pkg/value"
)

func init() {
	register(&Builtin{Name: "log!", Impure: true, Params: []string{"x"}, Body: logBang})
	register(&Builtin{Name: "trace!", Impure: true, Params: []string{"x"}, Body: traceBang})
	register(&Builtin{Name: "identity", Params: []string{"x"}, Body: identityFn})
	register(&Builtin{Name: "defined?", Params: []string{"x"}, Body: definedPred})

	register(&Builtin{Name: "increment", Params: []string{"x"}, Body: increment})
	register(&Builtin{Name: "decrement", Params: []string{"x"}, Body: decrement})
	register(&Builtin{Name: "add", Params: []string{"x", "y"}, Body: arith("add", func(a, b value.NumberValue) value.NumberValue {
		return value.NewNumber(a.D.Add(b.D))
	})})
	register(&Builtin{Name: "subtract", Params: []string{"x", "y"}, Body: arith("subtract", func(a, b value.NumberValue) value.NumberValue {
		return value.NewNumber(a.D.Sub(b.D))
	})})
	register(&Builtin{Name: "multiply", Params: []string{"x", "y"}, Body: arith("multiply", func(a, b value.NumberValue) value.NumberValue {
		return value.NewNumber(a.D.Mul(b.D))
	})})
	register(&Builtin{Name: "divide", Params: []string{"x", "y"}, Body: divideFn})
	register(&Builtin{Name: "divide-by", Params: []string{"x", "y"}, Body: divideByFn})

	register(&Builtin{Name: "sum", Params: []string{"list"}, Body: sumFn})
	register(&Builtin{Name: "map", Params: []string{"fn", "list"}, Body: mapFn})
	register(&Builtin{Name: ".map", Params: []string{"list", "fn"}, Body: dotMapFn})
	register(&Builtin{Name: "filter", Params: []string{"fn", "list"}, Body: filterFn})
	register(&Builtin{Name: "reduce", Params: []string{"fn", "initial", "list"}, Body: reduceFn})
	register(&Builtin{Name: "every?", Params: []string{"fn", "list"}, Body: everyPred})
	register(&Builtin{Name: "some?", Params: []string{"fn", "list"}, Body: somePred})
	register(&Builtin{Name: "none?", Params: []string{"fn", "list"}, Body: nonePred})
	register(&Builtin{Name: "for-each!", Impure: true, Params: []string{"fn", "list"}, Body: forEachBang})

	register(&Builtin{Name: "wait!", Impure: true, Params: []string{"ms"}, Body: waitBang})
	register(&Builtin{Name: "repeat!", Impure: true, Params: []string{"n", "fn"}, Body: repeatBang})

	register(&Builtin{Name: "if", Params: []string{"cond", "then", "otherwise"}, Body: ifFn})
}

func logBang(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	fmt.Println(args[0].Render())
	return value.Nil, nil
}

func traceBang(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	fmt.Println(args[0].Render())
	return args[0], nil
}

func identityFn(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	return args[0], nil
}

func definedPred(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	return value.BoolValue(args[0].Kind() != value.Null), nil
}

func increment(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	n, err := asNumber(pos, "increment", args[0])
	if err != nil {
		return nil, err
	}
	return value.NewNumber(n.D.Add(value.NumberFromInt(1).D)), nil
}

func decrement(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	n, err := asNumber(pos, "decrement", args[0])
	if err != nil {
		return nil, err
	}
	return value.NewNumber(n.D.Sub(value.NumberFromInt(1).D)), nil
}

func arith(name string, f func(a, b value.NumberValue) value.NumberValue) Func {
	return func(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
		a, err := asNumber(pos, name, args[0])
		if err != nil {
			return nil, err
		}
		b, err := asNumber(pos, name, args[1])
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	}
}

func divideFn(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	a, err := asNumber(pos, "divide", args[0])
	if err != nil {
		return nil, err
	}
	b, err := asNumber(pos, "divide", args[1])
	if err != nil {
		return nil, err
	}
	if b.D.IsZero() {
		return nil, fmt.Errorf("%s:%d:%d: runtime error: division by zero", pos.Filename, pos.Line, pos.Column)
	}
	return value.NewNumber(a.D.Div(b.D)), nil
}

// divide-by is the reverse-argument form of divide: divide-by(x, y) = y / x.
func divideByFn(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	return divideFn(nil, pos, []value.Value{args[1], args[0]})
}

func sumFn(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	list, err := asArray(pos, "sum", args[0])
	if err != nil {
		return nil, err
	}
	total := value.NumberFromInt(0).D
	for _, el := range list.Elements {
		n, err := asNumber(pos, "sum", el)
		if err != nil {
			return nil, err
		}
		total = total.Add(n.D)
	}
	return value.NewNumber(total), nil
}

func mapFn(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	fn, err := asCallable(pos, "map", args[0])
	if err != nil {
		return nil, err
	}
	list, err := asArray(pos, "map", args[1])
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(list.Elements))
	for i, el := range list.Elements {
		v, err := c.Call(fn, []value.Value{el}, pos)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return value.NewArray(out), nil
}

// dotMapFn is the property-style spelling of map, reached as `list.map(fn)`:
// property access on an Array pre-binds the receiver as the first argument,
// so its parameter order is the reverse of map's.
func dotMapFn(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	return mapFn(c, pos, []value.Value{args[1], args[0]})
}

func filterFn(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	fn, err := asCallable(pos, "filter", args[0])
	if err != nil {
		return nil, err
	}
	list, err := asArray(pos, "filter", args[1])
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, el := range list.Elements {
		v, err := c.Call(fn, []value.Value{el}, pos)
		if err != nil {
			return nil, err
		}
		b, ok := v.(value.BoolValue)
		if !ok {
			return nil, argErr(pos, "filter", "a Boolean-returning function", v)
		}
		if bool(b) {
			out = append(out, el)
		}
	}
	return value.NewArray(out), nil
}

func reduceFn(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	fn, err := asCallable(pos, "reduce", args[0])
	if err != nil {
		return nil, err
	}
	list, err := asArray(pos, "reduce", args[2])
	if err != nil {
		return nil, err
	}
	acc := args[1]
	for _, el := range list.Elements {
		acc, err = c.Call(fn, []value.Value{acc, el}, pos)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func everyPred(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	fn, err := asCallable(pos, "every?", args[0])
	if err != nil {
		return nil, err
	}
	list, err := asArray(pos, "every?", args[1])
	if err != nil {
		return nil, err
	}
	for _, el := range list.Elements {
		v, err := c.Call(fn, []value.Value{el}, pos)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(v) {
			return value.BoolValue(false), nil
		}
	}
	return value.BoolValue(true), nil
}

func somePred(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	fn, err := asCallable(pos, "some?", args[0])
	if err != nil {
		return nil, err
	}
	list, err := asArray(pos, "some?", args[1])
	if err != nil {
		return nil, err
	}
	for _, el := range list.Elements {
		v, err := c.Call(fn, []value.Value{el}, pos)
		if err != nil {
			return nil, err
		}
		if value.Truthy(v) {
			return value.BoolValue(true), nil
		}
	}
	return value.BoolValue(false), nil
}

func nonePred(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	v, err := somePred(c, pos, args)
	if err != nil {
		return nil, err
	}
	return value.BoolValue(!bool(v.(value.BoolValue))), nil
}

func forEachBang(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	fn, err := asCallable(pos, "for-each!", args[0])
	if err != nil {
		return nil, err
	}
	list, err := asArray(pos, "for-each!", args[1])
	if err != nil {
		return nil, err
	}
	for _, el := range list.Elements {
		if _, err := c.Call(fn, []value.Value{el}, pos); err != nil {
			return nil, err
		}
	}
	return value.Nil, nil
}

// waitBang blocks for ms milliseconds, a documented blocking suspension
// point alongside await.
func waitBang(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	n, err := asNumber(pos, "wait!", args[0])
	if err != nil {
		return nil, err
	}
	ms, _ := n.D.Float64()
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return value.Nil, nil
}

// repeatBang calls fn n times with the 0-based iteration index, backing off
// between calls with jpillora/backoff the way http.request! backs off
// between retries; each call builds its own Backoff schedule.
func repeatBang(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	n, err := asNumber(pos, "repeat!", args[0])
	if err != nil {
		return nil, err
	}
	fn, err := asCallable(pos, "repeat!", args[1])
	if err != nil {
		return nil, err
	}
	count := n.D.IntPart()
	b := &backoff.Backoff{Min: 1 * time.Millisecond, Max: 50 * time.Millisecond, Factor: 2}
	out := make([]value.Value, 0, count)
	for i := int64(0); i < count; i++ {
		v, err := c.Call(fn, []value.Value{value.NumberFromInt(i)}, pos)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if i < count-1 {
			time.Sleep(b.Duration())
		}
	}
	return value.NewArray(out), nil
}

// ifFn is FIP's only conditional: the grammar has no if-expression, so
// branching is this builtin taking a Boolean and two zero-arity thunks.
func ifFn(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	cond, ok := args[0].(value.BoolValue)
	if !ok {
		return nil, argErr(pos, "if", "a Boolean condition", args[0])
	}
	branch := args[2]
	if bool(cond) {
		branch = args[1]
	}
	thunk, err := asCallable(pos, "if", branch)
	if err != nil {
		return nil, err
	}
	return c.Call(thunk, nil, pos)
}
