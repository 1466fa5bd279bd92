// Package parser builds the Lox syntax tree from a token stream using
// recursive descent with one token of lookahead.
package parser

import (
	"errors"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/lexer"
	"lox/interpreter-go/pkg/token"
)

// maxArity bounds parameter and argument lists.
const maxArity = 255

// errSyntax unwinds the current declaration so the parser can resynchronize.
// The diagnostic itself is already recorded when it is returned.
var errSyntax = errors.New("syntax error")

// Parser consumes a token slice produced by the lexer.
type Parser struct {
	tokens  []token.Token
	current int
	errs    diag.List
}

// New wraps tokens, which must end with an EOF token.
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.New(token.EOF, "", line))
	}
	return &Parser{tokens: tokens}
}

// Parse is a convenience wrapper around New(tokens).Program().
func Parse(tokens []token.Token) ([]ast.Statement, diag.List) {
	return New(tokens).Program()
}

// ParseSource scans and parses source, returning the diagnostics of both
// phases in order.
func ParseSource(source string) ([]ast.Statement, diag.List) {
	tokens, scanErrs := lexer.Scan(source)
	program, parseErrs := Parse(tokens)
	return program, append(scanErrs, parseErrs...)
}

// Program parses declarations until end of input. A malformed declaration is
// skipped after resynchronizing, so the remaining ones are still returned.
func (p *Parser) Program() ([]ast.Statement, diag.List) {
	statements := make([]ast.Statement, 0)
	for !p.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			p.synchronize()
			continue
		}
		statements = append(statements, stmt)
	}
	return statements, p.errs
}
