// Package interp implements the FIP evaluator: lexical scoping, currying,
// destructuring, spread, string interpolation, short-circuit property access,
// the purity/predicate discipline, and the module loader.
package interp

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// ErrorKind tags one of the runtime error taxonomy members.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindDoesntMakeSense
	KindSuffix
	KindMutation
)

func (k ErrorKind) String() string {
	switch k {
	case KindDoesntMakeSense:
		return "doesn't make sense"
	case KindSuffix:
		return "suffix error"
	case KindMutation:
		return "mutation error"
	default:
		return "runtime error"
	}
}

// Error is every error the evaluator itself raises, tagged by Kind, and
// carries the file:line of the originating token when one is available.
// Lexer and parser errors are reported directly by participle (pkg/parser)
// and are not wrapped here; runtime errors raised inside builtin bodies
// (pkg/builtins) are plain errors whose text carries the same
// "file:line:column: runtime error:" prefix.
type Error struct {
	Kind ErrorKind
	Pos  lexer.Position
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.Filename == "" && e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Kind, e.Msg)
}

func runtimeErr(pos lexer.Position, format string, args ...interface{}) *Error {
	return &Error{Kind: KindRuntime, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func doesntMakeSenseErr(pos lexer.Position, op string, a, b string) *Error {
	return &Error{
		Kind: KindDoesntMakeSense,
		Pos:  pos,
		Msg:  fmt.Sprintf("%s doesn't make sense between %s and %s", op, a, b),
	}
}

func suffixErr(pos lexer.Position, name, reason string) *Error {
	return &Error{Kind: KindSuffix, Pos: pos, Msg: fmt.Sprintf("%s: %s", name, reason)}
}

func mutationErr(pos lexer.Position, name string) *Error {
	return &Error{Kind: KindMutation, Pos: pos, Msg: fmt.Sprintf("%s is already bound in this scope", name)}
}
