package builtins

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/fippli/fip/pkg/value"
)

func init() {
	register(&Builtin{Name: "Promise.resolve", Params: []string{"value"}, Body: promiseResolve})
	register(&Builtin{Name: "Promise.reject", Params: []string{"reason"}, Body: promiseReject})
	register(&Builtin{Name: "Promise.then", Params: []string{"promise", "fn"}, Body: promiseThen})
	register(&Builtin{Name: "Promise.all", Params: []string{"list"}, Body: promiseAll})
}

// promiseResolve settles immediately — the async subsystem is a synchronous
// layer over the core evaluator, so a freshly resolved promise is already
// settled by the time any caller can observe it.
func promiseResolve(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	p, resolve, _ := value.NewPromise()
	resolve(args[0])
	return p, nil
}

func promiseReject(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	p, _, reject := value.NewPromise()
	reject(runtimeError(pos, "Promise rejected: %s", args[0].Render()))
	return p, nil
}

// promiseThen runs fn against the settled value of promise (or propagates
// rejection without calling fn), synchronously: visible effect ordering only
// has to follow source order, which a synchronous chain satisfies trivially.
func promiseThen(c Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	pv, ok := args[0].(value.PromiseValue)
	if !ok {
		return nil, argErr(pos, "Promise.then", "a Promise", args[0])
	}
	fn, err := asCallable(pos, "Promise.then", args[1])
	if err != nil {
		return nil, err
	}
	out, resolve, reject := value.NewPromise()
	if !pv.Settled() {
		reject(runtimeError(pos, "Promise.then on a promise that never settled"))
		return out, nil
	}
	if pv.Rejected() {
		reject(pv.Reason())
		return out, nil
	}
	result, err := c.Call(fn, []value.Value{pv.Result()}, pos)
	if err != nil {
		reject(err)
		return out, nil
	}
	resolve(result)
	return out, nil
}

// promiseAll fulfills in input order once every element has settled,
// rejecting with the first rejection encountered in input order.
func promiseAll(_ Caller, pos lexer.Position, args []value.Value) (value.Value, error) {
	list, err := asArray(pos, "Promise.all", args[0])
	if err != nil {
		return nil, err
	}
	out, resolve, reject := value.NewPromise()
	results := make([]value.Value, len(list.Elements))
	for i, el := range list.Elements {
		pv, ok := el.(value.PromiseValue)
		if !ok {
			reject(runtimeError(pos, "Promise.all: element %d is not a Promise", i))
			return out, nil
		}
		if !pv.Settled() {
			reject(runtimeError(pos, "Promise.all: element %d never settled", i))
			return out, nil
		}
		if pv.Rejected() {
			reject(pv.Reason())
			return out, nil
		}
		results[i] = pv.Result()
	}
	resolve(value.NewArray(results))
	return out, nil
}

func runtimeError(pos lexer.Position, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s:%d:%d: runtime error: %s", pos.Filename, pos.Line, pos.Column, msg)
}
