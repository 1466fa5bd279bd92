package parser

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

// Precedence, lowest first: comma, assignment, ternary, or, and, equality,
// comparison, term, factor, unary, call, primary.

func (p *Parser) expression() (ast.Expression, error) {
	return p.comma()
}

// comma is left-associative: `a, b, c` is `(a, b), c`.
func (p *Parser) comma() (ast.Expression, error) {
	expr, err := p.assignment()
	if err != nil {
		return nil, err
	}
	for p.match(token.Comma) {
		operator := p.previous()
		right, err := p.assignment()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpression(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) assignment() (ast.Expression, error) {
	expr, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if !p.match(token.Equal) {
		return expr, nil
	}
	equals := p.previous()
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	switch target := expr.(type) {
	case *ast.VariableExpression:
		return ast.NewAssignExpression(target.Name, value), nil
	case *ast.GetExpression:
		return ast.NewSetExpression(target.Object, target.Name, value), nil
	}
	// Reported but not unwound: the parser is not confused about where it is.
	_ = p.errorAt(equals, "Invalid assignment target.")
	return expr, nil
}

// ternary is right-associative; the middle operand may be a full expression.
func (p *Parser) ternary() (ast.Expression, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.match(token.Question) {
		return expr, nil
	}
	question := p.previous()
	then, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.Colon, "Expect ':' after then branch of ternary expression."); err != nil {
		return nil, err
	}
	otherwise, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return ast.NewTernaryExpression(expr, question, then, otherwise), nil
}

func (p *Parser) or() (ast.Expression, error) {
	return p.logical(p.and, token.Or)
}

func (p *Parser) and() (ast.Expression, error) {
	return p.logical(p.equality, token.And)
}

func (p *Parser) logical(operand func() (ast.Expression, error), kind token.Type) (ast.Expression, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(kind) {
		operator := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = ast.NewLogicalExpression(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expression, error) {
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *Parser) comparison() (ast.Expression, error) {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *Parser) term() (ast.Expression, error) {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *Parser) factor() (ast.Expression, error) {
	return p.binary(p.unary, token.Slash, token.Star)
}

// binary parses a left-associative chain of operators sharing one level.
func (p *Parser) binary(operand func() (ast.Expression, error), kinds ...token.Type) (ast.Expression, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(kinds...) {
		operator := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = ast.NewBinaryExpression(expr, operator, right)
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expression, error) {
	if p.match(token.Bang, token.Minus) {
		operator := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpression(operator, right), nil
	}
	if p.match(token.Plus, token.Slash, token.Star, token.Comma,
		token.EqualEqual, token.BangEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual) {
		return nil, p.errorAt(p.previous(), "Invalid unary operator.")
	}
	return p.call()
}

// call handles any mix of `(args)` and `.name` suffixes.
func (p *Parser) call() (ast.Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.LeftParen):
			if expr, err = p.finishCall(expr); err != nil {
				return nil, err
			}
		case p.match(token.Dot):
			name, err := p.consume(token.Identifier, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = ast.NewGetExpression(expr, name)
		default:
			return expr, nil
		}
	}
}

// finishCall parses arguments at assignment precedence so commas separate
// arguments instead of forming comma expressions.
func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	args := make([]ast.Expression, 0)
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArity {
				_ = p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", maxArity))
			}
			arg, err := p.assignment()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren, err := p.consume(token.RightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return ast.NewCallExpression(callee, paren, args), nil
}

func (p *Parser) primary() (ast.Expression, error) {
	switch {
	case p.match(token.False):
		return ast.NewLiteralExpression(false), nil
	case p.match(token.True):
		return ast.NewLiteralExpression(true), nil
	case p.match(token.Nil):
		return ast.NewLiteralExpression(nil), nil
	case p.match(token.Number, token.String):
		return ast.NewLiteralExpression(p.previous().Literal), nil
	case p.match(token.Super):
		keyword := p.previous()
		if _, err := p.consume(token.Dot, "Expect '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := p.consume(token.Identifier, "Expect superclass method name.")
		if err != nil {
			return nil, err
		}
		return ast.NewSuperExpression(keyword, method), nil
	case p.match(token.This):
		return ast.NewThisExpression(p.previous()), nil
	case p.match(token.Identifier):
		return ast.NewVariableExpression(p.previous()), nil
	case p.match(token.Fun):
		keyword := p.previous()
		params, body, err := p.functionTail("function literal")
		if err != nil {
			return nil, err
		}
		return ast.NewLambdaExpression(keyword, params, body), nil
	case p.match(token.LeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return ast.NewGroupingExpression(expr), nil
	}
	return nil, p.errorAt(p.peek(), "Expect expression.")
}
