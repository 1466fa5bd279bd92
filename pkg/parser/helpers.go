package parser

import (
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/token"
)

func (p *Parser) match(kinds ...token.Type) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Type, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), message)
}

func (p *Parser) check(kind token.Type) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Type == kind
}

// checkNext looks one token past the current one.
func (p *Parser) checkNext(kind token.Type) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == kind
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) atEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

// errorAt records a diagnostic and returns errSyntax for callers that need to
// abandon the current declaration. Reports that should not unwind simply
// ignore the return value.
func (p *Parser) errorAt(tok token.Token, message string) error {
	d := diag.Diagnostic{Phase: diag.PhaseParse, Line: tok.Line, Message: message}
	if tok.Type == token.EOF {
		d.Where = "end"
		d.Incomplete = true
	} else {
		d.Where = "'" + tok.Lexeme + "'"
	}
	p.errs = append(p.errs, d)
	return errSyntax
}

// synchronize discards tokens until a likely statement boundary.
func (p *Parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
