// Package resolver performs the static pass that runs between parsing and
// execution. It binds every local variable reference to the number of scopes
// between the use and its declaration and rejects scope-rule violations.
package resolver

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/token"
)

// Locals maps a variable, assignment, this or super expression to its scope
// distance. Expressions absent from the table resolve in the global frame.
// Keys are node pointers, so structurally equal nodes stay distinct.
type Locals map[ast.Expression]int

// Merge copies other into l, overwriting shared keys.
func (l Locals) Merge(other Locals) {
	for expr, depth := range other {
		l[expr] = depth
	}
}

type functionKind int

const (
	functionNone functionKind = iota
	functionPlain
	functionMethod
	functionInitializer
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSubclass
)

// Resolver walks a program once.
type Resolver struct {
	scopes          []map[string]bool
	currentFunction functionKind
	currentClass    classKind
	locals          Locals
	errs            diag.List
}

// Resolve runs a fresh pass over statements. Running it twice over the same
// program yields equal tables.
func Resolve(statements []ast.Statement) (Locals, diag.List) {
	r := &Resolver{locals: make(Locals)}
	r.resolveStatements(statements)
	return r.locals, r.errs
}

func (r *Resolver) resolveStatements(statements []ast.Statement) {
	for _, stmt := range statements {
		r.resolveStatement(stmt)
	}
}

func (r *Resolver) resolveStatement(node ast.Statement) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		r.resolveExpression(n.Expression)
	case *ast.PrintStatement:
		r.resolveExpression(n.Expression)
	case *ast.VarStatement:
		r.declare(n.Name)
		if n.Initializer != nil {
			r.resolveExpression(n.Initializer)
		}
		r.define(n.Name)
	case *ast.BlockStatement:
		r.beginScope()
		r.resolveStatements(n.Statements)
		r.endScope()
	case *ast.IfStatement:
		r.resolveExpression(n.Condition)
		r.resolveStatement(n.ThenBranch)
		if n.ElseBranch != nil {
			r.resolveStatement(n.ElseBranch)
		}
	case *ast.WhileStatement:
		r.resolveExpression(n.Condition)
		r.resolveStatement(n.Body)
	case *ast.FunctionStatement:
		// Defined before the body so the function can recurse.
		r.declare(n.Name)
		r.define(n.Name)
		r.resolveFunction(n.Params, n.Body, functionPlain)
	case *ast.ReturnStatement:
		if r.currentFunction == functionNone {
			r.errorAt(n.Keyword, "Can't return from top-level code.")
		}
		if n.Value != nil {
			if r.currentFunction == functionInitializer {
				r.errorAt(n.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpression(n.Value)
		}
	case *ast.ClassStatement:
		r.resolveClass(n)
	default:
		panic(fmt.Sprintf("resolver: unsupported statement type %T", node))
	}
}

func (r *Resolver) resolveClass(n *ast.ClassStatement) {
	enclosingClass := r.currentClass
	r.currentClass = classPlain
	defer func() { r.currentClass = enclosingClass }()

	r.declare(n.Name)
	r.define(n.Name)

	if n.Superclass != nil {
		if n.Superclass.Name.Lexeme == n.Name.Lexeme {
			r.errorAt(n.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpression(n.Superclass)

		// `super` sits exactly one scope outside `this`.
		r.beginScope()
		r.peek()["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.peek()["this"] = true
	for _, method := range n.Methods {
		kind := functionMethod
		if method.Name.Lexeme == "init" {
			kind = functionInitializer
		}
		r.resolveFunction(method.Params, method.Body, kind)
	}
	r.endScope()
}

func (r *Resolver) resolveFunction(params []token.Token, body []ast.Statement, kind functionKind) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpression(node ast.Expression) {
	switch n := node.(type) {
	case *ast.VariableExpression:
		if len(r.scopes) > 0 {
			if ready, ok := r.peek()[n.Name.Lexeme]; ok && !ready {
				r.errorAt(n.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(n, n.Name)
	case *ast.AssignExpression:
		r.resolveExpression(n.Value)
		r.resolveLocal(n, n.Name)
	case *ast.TernaryExpression:
		r.resolveExpression(n.Condition)
		r.resolveExpression(n.Then)
		r.resolveExpression(n.Else)
	case *ast.BinaryExpression:
		r.resolveExpression(n.Left)
		r.resolveExpression(n.Right)
	case *ast.LogicalExpression:
		r.resolveExpression(n.Left)
		r.resolveExpression(n.Right)
	case *ast.UnaryExpression:
		r.resolveExpression(n.Right)
	case *ast.GroupingExpression:
		r.resolveExpression(n.Expression)
	case *ast.LiteralExpression:
	case *ast.CallExpression:
		r.resolveExpression(n.Callee)
		for _, arg := range n.Arguments {
			r.resolveExpression(arg)
		}
	case *ast.GetExpression:
		r.resolveExpression(n.Object)
	case *ast.SetExpression:
		r.resolveExpression(n.Value)
		r.resolveExpression(n.Object)
	case *ast.ThisExpression:
		if r.currentClass == classNone {
			r.errorAt(n.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(n, n.Keyword)
	case *ast.SuperExpression:
		switch r.currentClass {
		case classNone:
			r.errorAt(n.Keyword, "Can't use 'super' outside of a class.")
			return
		case classPlain:
			r.errorAt(n.Keyword, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(n, n.Keyword)
	case *ast.LambdaExpression:
		r.resolveFunction(n.Params, n.Body, functionPlain)
	default:
		panic(fmt.Sprintf("resolver: unsupported expression type %T", node))
	}
}

// resolveLocal records the hop count to the innermost scope declaring name.
// Globals are left out of the table.
func (r *Resolver) resolveLocal(expr ast.Expression, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) peek() map[string]bool {
	return r.scopes[len(r.scopes)-1]
}

// declare marks name as present but not yet readable. The global scope is
// not tracked, so globals may be redeclared freely.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.peek()
	if _, exists := scope[name.Lexeme]; exists {
		r.errorAt(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peek()[name.Lexeme] = true
}

func (r *Resolver) errorAt(tok token.Token, message string) {
	where := "'" + tok.Lexeme + "'"
	if tok.Type == token.EOF {
		where = "end"
	}
	r.errs = append(r.errs, diag.Diagnostic{Phase: diag.PhaseResolve, Line: tok.Line, Where: where, Message: message})
}
