package runtime

import (
	"fmt"
	"io"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindFunction
	KindNativeFunction
	KindClass
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// FromLiteral converts a parsed literal (nil, bool, float64 or string) into a
// runtime value.
func FromLiteral(literal any) Value {
	switch v := literal.(type) {
	case nil:
		return NilValue{}
	case bool:
		return BoolValue{Val: v}
	case float64:
		return NumberValue{Val: v}
	case string:
		return StringValue{Val: v}
	default:
		panic(fmt.Sprintf("runtime: unsupported literal %T", literal))
	}
}

// IsTruthy treats nil and false as falsey and everything else as truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case nil, NilValue:
		return false
	case BoolValue:
		return val.Val
	default:
		return true
	}
}

// IsEqual compares without coercion. Scalars compare by value (numbers with
// IEEE semantics), objects by identity.
func IsEqual(a, b Value) bool {
	if a == nil {
		a = NilValue{}
	}
	if b == nil {
		b = NilValue{}
	}
	return a == b
}

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// Callable is implemented by every value the call operator accepts.
type Callable interface {
	Value
	Arity() int
}

// Function is a user function or lambda paired with the environment it was
// declared in. Bound methods are Functions whose closure defines `this`.
type Function struct {
	Declaration   ast.Node // *ast.FunctionStatement or *ast.LambdaExpression
	Closure       *Environment
	IsInitializer bool
}

func NewFunction(decl *ast.FunctionStatement, closure *Environment, isInitializer bool) *Function {
	return &Function{Declaration: decl, Closure: closure, IsInitializer: isInitializer}
}

func NewLambda(expr *ast.LambdaExpression, closure *Environment) *Function {
	return &Function{Declaration: expr, Closure: closure}
}

func (f *Function) Kind() Kind { return KindFunction }

// Name is empty for lambdas.
func (f *Function) Name() string {
	if decl, ok := f.Declaration.(*ast.FunctionStatement); ok {
		return decl.Name.Lexeme
	}
	return ""
}

func (f *Function) Params() []token.Token {
	switch decl := f.Declaration.(type) {
	case *ast.FunctionStatement:
		return decl.Params
	case *ast.LambdaExpression:
		return decl.Params
	}
	return nil
}

func (f *Function) Body() []ast.Statement {
	switch decl := f.Declaration.(type) {
	case *ast.FunctionStatement:
		return decl.Body
	case *ast.LambdaExpression:
		return decl.Body
	}
	return nil
}

func (f *Function) Arity() int { return len(f.Params()) }

// Bind returns a copy of f whose closure has `this` fixed to instance. The
// extra frame sits between the method body and the class frame, matching the
// scope the resolver opens for `this`.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

// NativeCallContext gives natives access to host facilities.
type NativeCallContext struct {
	Stdout io.Writer
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeFunction is a host-provided builtin. Impl reports failures with a
// *NativeError, which the call site turns into a runtime error.
type NativeFunction struct {
	Name     string
	ArgCount int
	Impl     NativeFunc
}

func (v *NativeFunction) Kind() Kind { return KindNativeFunction }
func (v *NativeFunction) Arity() int { return v.ArgCount }

//-----------------------------------------------------------------------------
// Classes & instances
//-----------------------------------------------------------------------------

type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	if methods == nil {
		methods = make(map[string]*Function)
	}
	return &Class{Name: name, Superclass: superclass, Methods: methods}
}

func (c *Class) Kind() Kind { return KindClass }

// FindMethod searches the class and then its ancestors; the nearest
// definition wins.
func (c *Class) FindMethod(name string) *Function {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method
		}
	}
	return nil
}

// Arity is the arity of init, or zero when the class has none.
func (c *Class) Arity() int {
	if initializer := c.FindMethod("init"); initializer != nil {
		return initializer.Arity()
	}
	return 0
}

type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value)}
}

func (v *Instance) Kind() Kind { return KindInstance }

// Get prefers an own field, then a freshly bound method.
func (v *Instance) Get(name token.Token) (Value, error) {
	if value, ok := v.Fields[name.Lexeme]; ok {
		return value, nil
	}
	if method := v.Class.FindMethod(name.Lexeme); method != nil {
		return method.Bind(v), nil
	}
	return nil, NewError(name, "Undefined property '%s'.", name.Lexeme)
}

// Set always writes an own field.
func (v *Instance) Set(name token.Token, value Value) {
	v.Fields[name.Lexeme] = value
}
