// Package natives provides the builtin functions installed into the global
// frame before a program runs.
package natives

import (
	"fmt"
	"math"
	"sort"
	"time"

	"lox/interpreter-go/pkg/runtime"
)

// Registrar is satisfied by *interpreter.Interpreter.
type Registrar interface {
	RegisterNative(name string, arity int, impl runtime.NativeFunc)
}

// Native describes one builtin.
type Native struct {
	Name  string
	Arity int
	Impl  runtime.NativeFunc
}

// ExitError asks the host to terminate with Code. It is not a
// *runtime.NativeError, so it passes through the interpreter untouched.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Clock is swapped in tests.
var Clock = time.Now

var builtins = map[string]Native{
	"clock":  {Name: "clock", Arity: 0, Impl: clock},
	"abs":    {Name: "abs", Arity: 1, Impl: abs},
	"assert": {Name: "assert", Arity: 1, Impl: assert},
	"exit":   {Name: "exit", Arity: 1, Impl: exit},
}

// Names lists every builtin in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the builtin called name.
func Lookup(name string) (Native, bool) {
	n, ok := builtins[name]
	return n, ok
}

// Install registers the named builtins, or all of them when names is empty.
// Unknown names are reported before anything is installed.
func Install(r Registrar, names ...string) error {
	if len(names) == 0 {
		names = Names()
	}
	selected := make([]Native, 0, len(names))
	for _, name := range names {
		n, ok := builtins[name]
		if !ok {
			return fmt.Errorf("unknown native function %q", name)
		}
		selected = append(selected, n)
	}
	for _, n := range selected {
		r.RegisterNative(n.Name, n.Arity, n.Impl)
	}
	return nil
}

func clock(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
	return runtime.NumberValue{Val: float64(Clock().UnixMilli()) / 1000.0}, nil
}

func abs(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	n, ok := args[0].(runtime.NumberValue)
	if !ok {
		return nil, runtime.NewNativeError("abs(x) argument must be a number.")
	}
	return runtime.NumberValue{Val: math.Abs(n.Val)}, nil
}

func assert(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	cond, ok := args[0].(runtime.BoolValue)
	if !ok {
		return nil, runtime.NewNativeError("assert(condition) argument must evaluate to a boolean.")
	}
	if !cond.Val {
		return nil, runtime.NewNativeError("Assert failed.")
	}
	return runtime.NilValue{}, nil
}

func exit(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	n, ok := args[0].(runtime.NumberValue)
	if !ok {
		return nil, runtime.NewNativeError("exit(code) argument must be a number.")
	}
	code := int(n.Val)
	if ctx != nil && ctx.Stdout != nil {
		fmt.Fprintf(ctx.Stdout, "Exiting with code %d\n", code)
	}
	return nil, &ExitError{Code: code}
}
