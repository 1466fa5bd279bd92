package parser

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

func (p *Parser) declaration() (ast.Statement, error) {
	switch {
	// `fun name(...)` declares; a bare `fun (...)` starts a lambda expression.
	case p.check(token.Fun) && p.checkNext(token.Identifier):
		p.advance()
		return p.function("function")
	case p.match(token.Class):
		return p.classDeclaration()
	case p.match(token.Var):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) varDeclaration() (ast.Statement, error) {
	name, err := p.consume(token.Identifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var initializer ast.Expression
	if p.match(token.Equal) {
		initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.Semicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return ast.NewVarStatement(name, initializer), nil
}

func (p *Parser) classDeclaration() (ast.Statement, error) {
	name, err := p.consume(token.Identifier, "Expect class name.")
	if err != nil {
		return nil, err
	}

	var superclass *ast.VariableExpression
	if p.match(token.Less) {
		superName, err := p.consume(token.Identifier, "Expect superclass name.")
		if err != nil {
			return nil, err
		}
		superclass = ast.NewVariableExpression(superName)
	}

	if _, err := p.consume(token.LeftBrace, "Expect '{' before class body."); err != nil {
		return nil, err
	}
	methods := make([]*ast.FunctionStatement, 0)
	for !p.check(token.RightBrace) && !p.atEnd() {
		method, err := p.function("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if _, err := p.consume(token.RightBrace, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	return ast.NewClassStatement(name, superclass, methods), nil
}

// function parses the remainder of a named function or method; kind only
// flavours the diagnostics.
func (p *Parser) function(kind string) (*ast.FunctionStatement, error) {
	name, err := p.consume(token.Identifier, fmt.Sprintf("Expect %s name.", kind))
	if err != nil {
		return nil, err
	}
	params, body, err := p.functionTail(kind)
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionStatement(name, params, body), nil
}

// functionTail parses `(params) { body }`, shared by named functions and
// lambdas.
func (p *Parser) functionTail(kind string) ([]token.Token, []ast.Statement, error) {
	if _, err := p.consume(token.LeftParen, fmt.Sprintf("Expect '(' after %s name.", kind)); err != nil {
		return nil, nil, err
	}
	params := make([]token.Token, 0)
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArity {
				_ = p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", maxArity))
			}
			param, err := p.consume(token.Identifier, "Expect parameter name.")
			if err != nil {
				return nil, nil, err
			}
			params = append(params, param)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	if _, err := p.consume(token.RightParen, "Expect ')' after parameters."); err != nil {
		return nil, nil, err
	}
	if _, err := p.consume(token.LeftBrace, fmt.Sprintf("Expect '{' before %s body.", kind)); err != nil {
		return nil, nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, nil, err
	}
	return params, body, nil
}
