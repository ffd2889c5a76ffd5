// Package lexer turns FIP source bytes into the token stream the parser consumes.
//
// The raw token rules use a stateful lexer (participle/v2/lexer.MustStateful
// with push/pop sub-states) whose String/Interp states carve `<ident>`
// interpolation holes out of string literals at lex time. A thin wrapper on
// top inserts implicit statement terminators at end-of-line, the same trick
// Go's own scanner uses, so the grammar never has to reason about raw
// newlines itself.
package lexer

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2/lexer"
)

// Raw is the stateful lexer definition before implicit-semicolon insertion.
// Exported so the parser package can hand it directly to participle when it
// only needs raw tokens (e.g. for syntax-only tooling).
var Raw = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"NL", `\r?\n`, nil},
		{"Whitespace", `[ \t]+`, nil},
		{"Keyword", `\b(true|false|null|use|from|as|async|await)\b`, nil},
		{"Number", `\d+`, nil},
		// Identifiers are lower-case-starting, with one concession: the
		// Promise namespace is reached as `Promise.resolve` from source, so
		// the leading-character class admits upper case too (see DESIGN.md).
		{"Ident", `[a-zA-Z][a-zA-Z0-9-]*[!?]?`, nil},
		{"DotDotDot", `\.\.\.`, nil},
		{"Op", `(<=|>=|≠|&|\||\+|-|\*|/|=|<|>|!|\?)`, nil},
		{"Punct", `[:,.;(){}\[\]]`, nil},
		{"StringStart", `"`, lexer.Push("String")},
	},
	"String": {
		{"StringEnd", `"`, lexer.Pop()},
		{"Escape", `\\[\\"]`, nil},
		{"InterpOpen", `<`, lexer.Push("Interp")},
		{"StrText", `[^"\\<]+`, nil},
	},
	"Interp": {
		{"InterpClose", `>`, lexer.Pop()},
		{"InterpIdent", `[a-z][a-zA-Z0-9-]*[!?]?`, nil},
	},
})

// symbolByName maps the Raw lexer's token names to their lexer.TokenType, used
// by the wrapper to recognize tokens by name without hard-coding numbers.
var symbolByName = Raw.Symbols()

// openers/closers pair up the three bracket kinds. The wrapper keeps a stack
// of open brackets: a raw newline terminates a statement only when the
// innermost open bracket is a brace (a block, whose statements separate by
// line) or when no bracket is open at all. Inside parens or square brackets
// a newline is just whitespace — even when those sit inside an outer brace.
var openers = map[string]bool{"(": true, "[": true, "{": true}
var closers = map[string]bool{")": true, "]": true, "}": true}

// statementEnders are token names after which a line-ending newline does
// terminate a statement (mirrors Go's ASI "last token on the line" rule).
var statementEnders = map[string]bool{
	"Ident": true, "Number": true, "StringEnd": true, "Keyword": true,
}

// endsStatement reports whether a token of the given name/value can be the
// last token of a statement, so a following newline should close it.
func endsStatement(name, value string) bool {
	if statementEnders[name] {
		return true
	}
	return name == "Punct" && closers[value]
}

// Definition wraps Raw with implicit semicolon insertion so the grammar only
// ever has to deal with an explicit ";" terminator.
type Definition struct{}

var _ lexer.Definition = Definition{}

func (Definition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	inner, err := Raw.Lex(filename, r)
	if err != nil {
		return nil, err
	}
	return &asiLexer{inner: inner}, nil
}

func (Definition) Symbols() map[string]lexer.TokenType {
	return symbolByName
}

// asiLexer drives the raw stateful lexer and turns a line-ending NL into a
// synthetic ";" token whenever it follows a token that could end a statement
// and the innermost open bracket (if any) is a brace.
type asiLexer struct {
	inner     lexer.Lexer
	brackets  []string // stack of open bracket texts
	lastName  string   // name of the last significant (non-NL, non-comment) token
	lastValue string   // its text, needed to tell "(" from ")"
}

// atStatementLevel reports whether a newline here separates statements: true
// at top level and directly inside a block's braces, false inside parens or
// square brackets.
func (a *asiLexer) atStatementLevel() bool {
	return len(a.brackets) == 0 || a.brackets[len(a.brackets)-1] == "{"
}

func (a *asiLexer) Next() (lexer.Token, error) {
	for {
		tok, err := a.inner.Next()
		if err != nil {
			return tok, err
		}

		name := symbolName(tok.Type)

		if tok.EOF() {
			if len(a.brackets) == 0 && endsStatement(a.lastName, a.lastValue) {
				a.lastName = ""
				return lexer.Token{Type: symbolByName["Punct"], Value: ";", Pos: tok.Pos}, nil
			}
			return tok, nil
		}

		switch name {
		case "Comment", "Whitespace":
			continue
		case "NL":
			if a.atStatementLevel() && endsStatement(a.lastName, a.lastValue) {
				a.lastName = ""
				return lexer.Token{Type: symbolByName["Punct"], Value: ";", Pos: tok.Pos}, nil
			}
			continue
		}

		if name == "Punct" {
			switch {
			case openers[tok.Value]:
				a.brackets = append(a.brackets, tok.Value)
			case closers[tok.Value]:
				if len(a.brackets) > 0 {
					a.brackets = a.brackets[:len(a.brackets)-1]
				}
			}
		}

		a.lastName = name
		a.lastValue = tok.Value
		return tok, nil
	}
}

func symbolName(t lexer.TokenType) string {
	for name, tt := range symbolByName {
		if tt == t {
			return name
		}
	}
	return fmt.Sprintf("<%d>", t)
}
