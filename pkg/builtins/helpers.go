package builtins

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/shopspring/decimal"

	"github.com/fippli/fip/pkg/value"
)

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// argErr is the Runtime error for a builtin called with an operand of the
// wrong shape.
func argErr(pos lexer.Position, builtin string, want string, got value.Value) error {
	return fmt.Errorf("%s:%d:%d: runtime error: %s expects %s, got %s",
		pos.Filename, pos.Line, pos.Column, builtin, want, kindName(got))
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

func asNumber(pos lexer.Position, name string, v value.Value) (value.NumberValue, error) {
	n, ok := v.(value.NumberValue)
	if !ok {
		return value.NumberValue{}, argErr(pos, name, "a Number", v)
	}
	return n, nil
}

func asArray(pos lexer.Position, name string, v value.Value) (value.ArrayValue, error) {
	a, ok := v.(value.ArrayValue)
	if !ok {
		return value.ArrayValue{}, argErr(pos, name, "an Array", v)
	}
	return a, nil
}

func asString(pos lexer.Position, name string, v value.Value) (value.StringValue, error) {
	s, ok := v.(value.StringValue)
	if !ok {
		return "", argErr(pos, name, "a String", v)
	}
	return s, nil
}

func asCallable(pos lexer.Position, name string, v value.Value) (value.Callable, error) {
	c, ok := v.(value.Callable)
	if !ok {
		return nil, argErr(pos, name, "a callable", v)
	}
	return c, nil
}
