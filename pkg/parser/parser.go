// Package parser provides the FIP language parser using participle: a single
// participle.Parser wrapping a stateful lexer, exposed through
// Parse/ParseString/ParseBytes methods.
package parser

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"

	"github.com/fippli/fip/pkg/ast"
	fiplexer "github.com/fippli/fip/pkg/lexer"
)

// Parser is the FIP language parser.
type Parser struct {
	parser *participle.Parser[ast.Program]
}

// New creates a new FIP parser.
func New() (*Parser, error) {
	p, err := participle.Build[ast.Program](
		participle.Lexer(fiplexer.Definition{}),
		// Telling a destructuring binding `[a, [b, c]]: xs` apart from an
		// array-literal expression takes scanning ahead to the ":", which can
		// be well past the default lookahead for nested patterns.
		participle.UseLookahead(64),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{parser: p}, nil
}

// Parse parses FIP source from a reader.
func (p *Parser) Parse(filename string, r io.Reader) (*ast.Program, error) {
	prog, err := p.parser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return prog, nil
}

// ParseString parses FIP source held in a string.
func (p *Parser) ParseString(filename, source string) (*ast.Program, error) {
	prog, err := p.parser.ParseString(filename, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return prog, nil
}

// ParseBytes parses FIP source bytes.
func (p *Parser) ParseBytes(filename string, source []byte) (*ast.Program, error) {
	prog, err := p.parser.ParseBytes(filename, source)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", filename, err)
	}
	return prog, nil
}
