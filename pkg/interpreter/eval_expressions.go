package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.LiteralExpression:
		return runtime.FromLiteral(n.Value), nil
	case *ast.GroupingExpression:
		return i.evaluateExpression(n.Expression, env)
	case *ast.VariableExpression:
		return i.lookUpVariable(n.Name, n, env)
	case *ast.AssignExpression:
		value, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return nil, err
		}
		if err := i.assignVariable(n, value, env); err != nil {
			return nil, err
		}
		return value, nil
	case *ast.UnaryExpression:
		return i.evaluateUnary(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinary(n, env)
	case *ast.LogicalExpression:
		left, err := i.evaluateExpression(n.Left, env)
		if err != nil {
			return nil, err
		}
		if n.Operator.Type == token.Or {
			if runtime.IsTruthy(left) {
				return left, nil
			}
		} else if !runtime.IsTruthy(left) {
			return left, nil
		}
		return i.evaluateExpression(n.Right, env)
	case *ast.TernaryExpression:
		cond, err := i.evaluateExpression(n.Condition, env)
		if err != nil {
			return nil, err
		}
		if runtime.IsTruthy(cond) {
			return i.evaluateExpression(n.Then, env)
		}
		return i.evaluateExpression(n.Else, env)
	case *ast.CallExpression:
		return i.evaluateCall(n, env)
	case *ast.GetExpression:
		return i.evaluateGet(n, env)
	case *ast.SetExpression:
		return i.evaluateSet(n, env)
	case *ast.ThisExpression:
		return i.lookUpVariable(n.Keyword, n, env)
	case *ast.SuperExpression:
		return i.evaluateSuper(n, env)
	case *ast.LambdaExpression:
		return runtime.NewLambda(n, env), nil
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

// lookUpVariable jumps straight to the resolved frame, or reads the global
// frame when the resolver left the reference unresolved.
func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	if distance, ok := i.locals[expr]; ok {
		return env.GetAt(distance, name.Lexeme), nil
	}
	value, err := i.global.Get(name.Lexeme)
	if err != nil {
		return nil, &runtime.Error{Token: name, Message: err.Error()}
	}
	return value, nil
}

func (i *Interpreter) assignVariable(expr *ast.AssignExpression, value runtime.Value, env *runtime.Environment) error {
	if distance, ok := i.locals[expr]; ok {
		env.AssignAt(distance, expr.Name.Lexeme, value)
		return nil
	}
	if err := i.global.Assign(expr.Name.Lexeme, value); err != nil {
		return &runtime.Error{Token: expr.Name, Message: err.Error()}
	}
	return nil
}

func (i *Interpreter) evaluateUnary(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator.Type {
	case token.Bang:
		return runtime.BoolValue{Val: !runtime.IsTruthy(right)}, nil
	case token.Minus:
		n, ok := right.(runtime.NumberValue)
		if !ok {
			return nil, runtime.NewError(expr.Operator, "Operand must be a number.")
		}
		return runtime.NumberValue{Val: -n.Val}, nil
	default:
		return nil, runtime.NewError(expr.Operator, "Unsupported unary operator %s.", expr.Operator.Lexeme)
	}
}

// evaluateBinary always evaluates both operands, left first. The comma
// operator is a binary expression that keeps the right value.
func (i *Interpreter) evaluateBinary(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}

	op := expr.Operator
	switch op.Type {
	case token.Comma:
		return right, nil
	case token.EqualEqual:
		return runtime.BoolValue{Val: runtime.IsEqual(left, right)}, nil
	case token.BangEqual:
		return runtime.BoolValue{Val: !runtime.IsEqual(left, right)}, nil
	case token.Plus:
		if l, ok := left.(runtime.NumberValue); ok {
			if r, ok := right.(runtime.NumberValue); ok {
				return runtime.NumberValue{Val: l.Val + r.Val}, nil
			}
		}
		if l, ok := left.(runtime.StringValue); ok {
			if r, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: l.Val + r.Val}, nil
			}
		}
		return nil, runtime.NewError(op, "Operands must be two numbers or two strings.")
	}

	l, r, err := numberOperands(op, left, right)
	if err != nil {
		return nil, err
	}
	switch op.Type {
	case token.Minus:
		return runtime.NumberValue{Val: l - r}, nil
	case token.Star:
		return runtime.NumberValue{Val: l * r}, nil
	case token.Slash:
		// IEEE division: x/0 is ±Inf or NaN, never an error.
		return runtime.NumberValue{Val: l / r}, nil
	case token.Greater:
		return runtime.BoolValue{Val: l > r}, nil
	case token.GreaterEqual:
		return runtime.BoolValue{Val: l >= r}, nil
	case token.Less:
		return runtime.BoolValue{Val: l < r}, nil
	case token.LessEqual:
		return runtime.BoolValue{Val: l <= r}, nil
	default:
		return nil, runtime.NewError(op, "Unsupported binary operator %s.", op.Lexeme)
	}
}

func numberOperands(op token.Token, left, right runtime.Value) (float64, float64, error) {
	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return 0, 0, runtime.NewError(op, "Operands must be numbers.")
	}
	return l.Val, r.Val, nil
}
