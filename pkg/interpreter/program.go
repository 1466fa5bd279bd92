package interpreter

import (
	"context"
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/runtime"
)

// Program is a parsed and resolved unit ready to execute. It is read-only
// after Compile, so one Program may be executed by many interpreters.
type Program struct {
	Statements []ast.Statement
	Locals     resolver.Locals
}

// Compile runs the static pipeline. Resolution is skipped when scanning or
// parsing failed; any diagnostic means the program must not run.
func Compile(source string) (*Program, diag.List) {
	statements, errs := parser.ParseSource(source)
	if len(errs) > 0 {
		return nil, errs
	}
	locals, errs := resolver.Resolve(statements)
	if len(errs) > 0 {
		return nil, errs
	}
	return &Program{Statements: statements, Locals: locals}, nil
}

// Execute runs program against the interpreter's global state. The first
// runtime error aborts the run and is returned as-is (usually a
// *runtime.Error).
func (i *Interpreter) Execute(program *Program) error {
	i.Resolve(program.Locals)
	i.depth = 0
	for _, stmt := range program.Statements {
		if err := i.executeTopLevel(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteContext is Execute with cancellation: once ctx is done the run
// stops at the next loop iteration or call and returns ctx.Err().
func (i *Interpreter) ExecuteContext(ctx context.Context, program *Program) error {
	i.ctx = ctx
	defer func() { i.ctx = nil }()
	return i.Execute(program)
}

// Run compiles and executes source. Static failures come back as a
// diag.List, runtime failures as the error that aborted execution.
func (i *Interpreter) Run(source string) error {
	program, errs := Compile(source)
	if len(errs) > 0 {
		return errs
	}
	return i.Execute(program)
}

func (i *Interpreter) executeTopLevel(stmt ast.Statement) error {
	if exprStmt, ok := stmt.(*ast.ExpressionStatement); ok && i.interactive {
		value, err := i.evaluateExpression(exprStmt.Expression, i.global)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.stdout, runtime.Stringify(value))
		i.global.Define(ReplVariable, value)
		return nil
	}
	c, err := i.executeStatement(stmt, i.global)
	if err != nil {
		return err
	}
	if c.returning {
		// The resolver rejects top-level returns; reaching here means the
		// program skipped resolution.
		return fmt.Errorf("return outside function")
	}
	return nil
}
