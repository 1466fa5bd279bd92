package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

// completion says how a statement finished. A returning completion carries
// the value up to the nearest call boundary.
type completion struct {
	returning bool
	value     runtime.Value
}

var normal = completion{}

func (i *Interpreter) executeStatement(node ast.Statement, env *runtime.Environment) (completion, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		_, err := i.evaluateExpression(n.Expression, env)
		return normal, err
	case *ast.PrintStatement:
		value, err := i.evaluateExpression(n.Expression, env)
		if err != nil {
			return normal, err
		}
		fmt.Fprintln(i.stdout, runtime.Stringify(value))
		return normal, nil
	case *ast.VarStatement:
		var value runtime.Value = runtime.NilValue{}
		if n.Initializer != nil {
			v, err := i.evaluateExpression(n.Initializer, env)
			if err != nil {
				return normal, err
			}
			value = v
		}
		env.Define(n.Name.Lexeme, value)
		return normal, nil
	case *ast.BlockStatement:
		return i.executeBlock(n.Statements, runtime.NewEnvironment(env))
	case *ast.IfStatement:
		return i.executeIf(n, env)
	case *ast.WhileStatement:
		return i.executeWhile(n, env)
	case *ast.FunctionStatement:
		env.Define(n.Name.Lexeme, runtime.NewFunction(n, env, false))
		return normal, nil
	case *ast.ReturnStatement:
		var value runtime.Value = runtime.NilValue{}
		if n.Value != nil {
			v, err := i.evaluateExpression(n.Value, env)
			if err != nil {
				return normal, err
			}
			value = v
		}
		return completion{returning: true, value: value}, nil
	case *ast.ClassStatement:
		return normal, i.executeClass(n, env)
	default:
		return normal, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

// executeBlock runs statements in env, stopping at the first return.
func (i *Interpreter) executeBlock(statements []ast.Statement, env *runtime.Environment) (completion, error) {
	for _, stmt := range statements {
		c, err := i.executeStatement(stmt, env)
		if err != nil || c.returning {
			return c, err
		}
	}
	return normal, nil
}

func (i *Interpreter) executeIf(stmt *ast.IfStatement, env *runtime.Environment) (completion, error) {
	cond, err := i.evaluateExpression(stmt.Condition, env)
	if err != nil {
		return normal, err
	}
	if runtime.IsTruthy(cond) {
		return i.executeStatement(stmt.ThenBranch, env)
	}
	if stmt.ElseBranch != nil {
		return i.executeStatement(stmt.ElseBranch, env)
	}
	return normal, nil
}

func (i *Interpreter) executeWhile(loop *ast.WhileStatement, env *runtime.Environment) (completion, error) {
	for {
		if err := i.interrupted(); err != nil {
			return normal, err
		}
		cond, err := i.evaluateExpression(loop.Condition, env)
		if err != nil {
			return normal, err
		}
		if !runtime.IsTruthy(cond) {
			return normal, nil
		}
		c, err := i.executeStatement(loop.Body, env)
		if err != nil || c.returning {
			return c, err
		}
	}
}

func (i *Interpreter) executeClass(stmt *ast.ClassStatement, env *runtime.Environment) error {
	var superclass *runtime.Class
	if stmt.Superclass != nil {
		value, err := i.evaluateExpression(stmt.Superclass, env)
		if err != nil {
			return err
		}
		class, ok := value.(*runtime.Class)
		if !ok {
			return runtime.NewError(stmt.Superclass.Name, "Superclass must be a class.")
		}
		superclass = class
	}

	env.Define(stmt.Name.Lexeme, runtime.NilValue{})

	// Methods close over a frame holding `super`, mirroring the resolver's
	// class scopes.
	methodEnv := env
	if superclass != nil {
		methodEnv = runtime.NewEnvironment(env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*runtime.Function, len(stmt.Methods))
	for _, method := range stmt.Methods {
		methods[method.Name.Lexeme] = runtime.NewFunction(method, methodEnv, method.Name.Lexeme == "init")
	}

	env.Define(stmt.Name.Lexeme, runtime.NewClass(stmt.Name.Lexeme, superclass, methods))
	return nil
}
