package ast

import "lox/interpreter-go/pkg/token"

// Token helpers. Synthesised tokens sit on line 1.

var operatorTypes = map[string]token.Type{
	"+":   token.Plus,
	"-":   token.Minus,
	"*":   token.Star,
	"/":   token.Slash,
	"!":   token.Bang,
	"!=":  token.BangEqual,
	"==":  token.EqualEqual,
	">":   token.Greater,
	">=":  token.GreaterEqual,
	"<":   token.Less,
	"<=":  token.LessEqual,
	",":   token.Comma,
	"and": token.And,
	"or":  token.Or,
}

func Tok(kind token.Type, lexeme string) token.Token {
	return token.New(kind, lexeme, 1)
}

func Ident(name string) token.Token {
	return Tok(token.Identifier, name)
}

func Op(lexeme string) token.Token {
	kind, ok := operatorTypes[lexeme]
	if !ok {
		panic("ast: unknown operator " + lexeme)
	}
	return Tok(kind, lexeme)
}

func idents(names []string) []token.Token {
	out := make([]token.Token, 0, len(names))
	for _, name := range names {
		out = append(out, Ident(name))
	}
	return out
}

// Expression helpers.

func Num(value float64) *LiteralExpression {
	return NewLiteralExpression(value)
}

func Str(value string) *LiteralExpression {
	return NewLiteralExpression(value)
}

func Bool(value bool) *LiteralExpression {
	return NewLiteralExpression(value)
}

func Nil() *LiteralExpression {
	return NewLiteralExpression(nil)
}

func ID(name string) *VariableExpression {
	return NewVariableExpression(Ident(name))
}

func Assign(name string, value Expression) *AssignExpression {
	return NewAssignExpression(Ident(name), value)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(left, Op(op), right)
}

func Logic(op string, left, right Expression) *LogicalExpression {
	return NewLogicalExpression(left, Op(op), right)
}

func Un(op string, right Expression) *UnaryExpression {
	return NewUnaryExpression(Op(op), right)
}

func Group(inner Expression) *GroupingExpression {
	return NewGroupingExpression(inner)
}

func Tern(condition, then, otherwise Expression) *TernaryExpression {
	return NewTernaryExpression(condition, Tok(token.Question, "?"), then, otherwise)
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, Tok(token.RightParen, ")"), args)
}

func Get(object Expression, name string) *GetExpression {
	return NewGetExpression(object, Ident(name))
}

func Set(object Expression, name string, value Expression) *SetExpression {
	return NewSetExpression(object, Ident(name), value)
}

func This() *ThisExpression {
	return NewThisExpression(Tok(token.This, "this"))
}

func Super(method string) *SuperExpression {
	return NewSuperExpression(Tok(token.Super, "super"), Ident(method))
}

func Lambda(params []string, body ...Statement) *LambdaExpression {
	return NewLambdaExpression(Tok(token.Fun, "fun"), idents(params), body)
}

// Statement helpers.

func Expr(expression Expression) *ExpressionStatement {
	return NewExpressionStatement(expression)
}

func Print(expression Expression) *PrintStatement {
	return NewPrintStatement(Tok(token.Print, "print"), expression)
}

func Let(name string, initializer Expression) *VarStatement {
	return NewVarStatement(Ident(name), initializer)
}

func Block(statements ...Statement) *BlockStatement {
	return NewBlockStatement(statements)
}

func If(condition Expression, thenBranch, elseBranch Statement) *IfStatement {
	return NewIfStatement(condition, thenBranch, elseBranch)
}

func While(condition Expression, body Statement) *WhileStatement {
	return NewWhileStatement(condition, body)
}

func Fn(name string, params []string, body ...Statement) *FunctionStatement {
	return NewFunctionStatement(Ident(name), idents(params), body)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(Tok(token.Return, "return"), value)
}

// Class builds a class declaration; an empty superclass means none.
func Class(name, superclass string, methods ...*FunctionStatement) *ClassStatement {
	var super *VariableExpression
	if superclass != "" {
		super = ID(superclass)
	}
	return NewClassStatement(Ident(name), super, methods)
}
