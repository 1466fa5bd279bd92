package interpreter

import (
	"errors"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

func (i *Interpreter) evaluateCall(expr *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(expr.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(expr.Arguments))
	for _, argExpr := range expr.Arguments {
		arg, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	callable, ok := callee.(runtime.Callable)
	if !ok {
		return nil, runtime.NewError(expr.Paren, "Can only call functions and classes.")
	}
	if len(args) != callable.Arity() {
		return nil, runtime.NewError(expr.Paren, "Expected %d arguments but got %d.", callable.Arity(), len(args))
	}
	return i.call(callable, args, expr.Paren)
}

// call dispatches on the callable's concrete kind. paren locates errors that
// have no better token, such as native failures.
func (i *Interpreter) call(callee runtime.Callable, args []runtime.Value, paren token.Token) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.Function:
		return i.callFunction(fn, args, paren)
	case *runtime.Class:
		return i.instantiate(fn, args, paren)
	case *runtime.NativeFunction:
		value, err := fn.Impl(i.nativeContext(), args)
		if err != nil {
			var nativeErr *runtime.NativeError
			if errors.As(err, &nativeErr) {
				return nil, &runtime.Error{Token: paren, Message: nativeErr.Message}
			}
			return nil, err
		}
		if value == nil {
			value = runtime.NilValue{}
		}
		return value, nil
	default:
		return nil, runtime.NewError(paren, "Can only call functions and classes.")
	}
}

// callFunction runs the body in a fresh frame enclosing the captured
// environment, never the caller's.
func (i *Interpreter) callFunction(fn *runtime.Function, args []runtime.Value, paren token.Token) (runtime.Value, error) {
	if i.depth >= i.maxCallDepth {
		return nil, runtime.NewError(paren, "Stack overflow.")
	}
	if err := i.interrupted(); err != nil {
		return nil, err
	}
	i.depth++
	defer func() { i.depth-- }()

	env := runtime.NewEnvironment(fn.Closure)
	for idx, param := range fn.Params() {
		env.Define(param.Lexeme, args[idx])
	}
	c, err := i.executeBlock(fn.Body(), env)
	if err != nil {
		return nil, err
	}
	if fn.IsInitializer {
		return fn.Closure.GetAt(0, "this"), nil
	}
	if c.returning {
		return c.value, nil
	}
	return runtime.NilValue{}, nil
}

// instantiate allocates an instance and runs init, own or inherited, on it.
// The call always yields the instance.
func (i *Interpreter) instantiate(class *runtime.Class, args []runtime.Value, paren token.Token) (runtime.Value, error) {
	instance := runtime.NewInstance(class)
	if initializer := class.FindMethod("init"); initializer != nil {
		if _, err := i.callFunction(initializer.Bind(instance), args, paren); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (i *Interpreter) evaluateGet(expr *ast.GetExpression, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := object.(*runtime.Instance)
	if !ok {
		return nil, runtime.NewError(expr.Name, "Only instances have properties.")
	}
	return instance.Get(expr.Name)
}

func (i *Interpreter) evaluateSet(expr *ast.SetExpression, env *runtime.Environment) (runtime.Value, error) {
	object, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := object.(*runtime.Instance)
	if !ok {
		return nil, runtime.NewError(expr.Name, "Only instances have fields.")
	}
	value, err := i.evaluateExpression(expr.Value, env)
	if err != nil {
		return nil, err
	}
	instance.Set(expr.Name, value)
	return value, nil
}

// evaluateSuper starts the method search at the superclass captured when the
// enclosing class was declared, then binds the method to the current
// receiver. The receiver's own class plays no part in the lookup.
func (i *Interpreter) evaluateSuper(expr *ast.SuperExpression, env *runtime.Environment) (runtime.Value, error) {
	distance, ok := i.locals[expr]
	if !ok {
		return nil, runtime.NewError(expr.Keyword, "Can't use 'super' outside of a class.")
	}
	superclass, _ := env.GetAt(distance, "super").(*runtime.Class)
	receiver, _ := env.GetAt(distance-1, "this").(*runtime.Instance)
	if superclass == nil || receiver == nil {
		return nil, runtime.NewError(expr.Keyword, "Can't use 'super' outside of a class.")
	}
	method := superclass.FindMethod(expr.Method.Lexeme)
	if method == nil {
		return nil, runtime.NewError(expr.Method, "Undefined property '%s'.", expr.Method.Lexeme)
	}
	return method.Bind(receiver), nil
}
