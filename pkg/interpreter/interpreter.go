// Package interpreter executes resolved Lox programs by walking the syntax
// tree. Evaluation is a single type switch per node family; `return` travels
// back up as a completion value rather than through panics or errors.
package interpreter

import (
	"context"
	"io"
	"os"

	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/runtime"
)

// DefaultMaxCallDepth bounds nested calls before a run aborts with a
// "Stack overflow." runtime error.
const DefaultMaxCallDepth = 10000

// ReplVariable holds the value of the last top-level expression statement in
// interactive mode.
const ReplVariable = "_"

// Interpreter drives evaluation of Lox programs. It is not safe for
// concurrent use; give each goroutine its own.
type Interpreter struct {
	global       *runtime.Environment
	locals       resolver.Locals
	stdout       io.Writer
	interactive  bool
	maxCallDepth int
	depth        int
	ctx          context.Context
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStdout redirects print output (defaults to os.Stdout).
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) { i.stdout = w }
}

// WithInteractive turns on echoing of top-level expression values.
func WithInteractive(enabled bool) Option {
	return func(i *Interpreter) { i.interactive = enabled }
}

// WithMaxCallDepth overrides DefaultMaxCallDepth; values below one are
// ignored.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxCallDepth = depth
		}
	}
}

// New returns an interpreter with an empty global environment. Natives are
// installed separately through Define or RegisterNative.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		global:       runtime.NewEnvironment(nil),
		locals:       make(resolver.Locals),
		stdout:       os.Stdout,
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// GlobalEnvironment returns the interpreter’s global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Define binds name in the global frame.
func (i *Interpreter) Define(name string, value runtime.Value) {
	i.global.Define(name, value)
}

// RegisterNative installs a host function under name.
func (i *Interpreter) RegisterNative(name string, arity int, impl runtime.NativeFunc) {
	i.global.Define(name, &runtime.NativeFunction{Name: name, ArgCount: arity, Impl: impl})
}

// SetInteractive toggles interactive mode between runs.
func (i *Interpreter) SetInteractive(enabled bool) {
	i.interactive = enabled
}

// Interactive reports whether interactive mode is on.
func (i *Interpreter) Interactive() bool {
	return i.interactive
}

// Resolve records scope distances produced by the resolver. Tables from
// successive programs accumulate so closures created by earlier REPL entries
// keep working.
func (i *Interpreter) Resolve(locals resolver.Locals) {
	i.locals.Merge(locals)
}

// interrupted reports cancellation of the context passed to ExecuteContext.
// Loops and calls poll it so a runaway program can be stopped.
func (i *Interpreter) interrupted() error {
	if i.ctx == nil {
		return nil
	}
	return i.ctx.Err()
}

func (i *Interpreter) nativeContext() *runtime.NativeCallContext {
	return &runtime.NativeCallContext{Stdout: i.stdout}
}
