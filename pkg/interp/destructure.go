package interp

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/fippli/fip/pkg/ast"
	"github.com/fippli/fip/pkg/env"
	"github.com/fippli/fip/pkg/value"
)

// destructure matches v against pat, defining every bound identifier in
// frame; patterns nest to arbitrary depth. Missing array positions and
// missing object keys bind to Null rather than raising.
func (e *Evaluator) destructure(pat *ast.Pattern, v value.Value, frame *env.Env, pos lexer.Position) error {
	switch {
	case pat.Ident != nil:
		name := *pat.Ident
		if frame.Defined(name) {
			return mutationErr(pat.Pos, name)
		}
		frame.Define(name, v)
		return nil

	case pat.Array != nil:
		arr, _ := v.(value.ArrayValue)
		for i, sub := range pat.Array {
			var el value.Value = value.Nil
			if i < len(arr.Elements) {
				el = arr.Elements[i]
			}
			if err := e.destructure(sub, el, frame, pos); err != nil {
				return err
			}
		}
		return nil

	case pat.Object != nil:
		obj, _ := v.(value.ObjectValue)
		for _, el := range pat.Object {
			field := obj.Get(el.Key)
			if el.SubPat != nil {
				if err := e.destructure(el.SubPat, field, frame, el.Pos); err != nil {
					return err
				}
				continue
			}
			if frame.Defined(el.Key) {
				return mutationErr(el.Pos, el.Key)
			}
			frame.Define(el.Key, field)
		}
		return nil
	}
	return runtimeErr(pos, "malformed pattern")
}
