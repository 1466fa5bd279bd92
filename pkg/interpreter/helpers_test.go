package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"lox/interpreter-go/pkg/runtime"
)

// runSource executes source on a fresh interpreter and returns the printed
// lines together with the terminal error, if any.
func runSource(t *testing.T, source string, opts ...Option) ([]string, error) {
	t.Helper()
	var out bytes.Buffer
	interp := New(append([]Option{WithStdout(&out)}, opts...)...)
	err := interp.Run(source)
	return outputLines(out.String()), err
}

// mustRun fails the test on any error.
func mustRun(t *testing.T, source string, opts ...Option) []string {
	t.Helper()
	lines, err := runSource(t, source, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return lines
}

// runtimeError runs source and asserts it aborts with a runtime error.
func runtimeError(t *testing.T, source string) ([]string, *runtime.Error) {
	t.Helper()
	lines, err := runSource(t, source)
	rtErr, ok := err.(*runtime.Error)
	if !ok {
		t.Fatalf("expected *runtime.Error, got %T (%v)", err, err)
	}
	return lines, rtErr
}

func outputLines(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return []string{}
	}
	return strings.Split(out, "\n")
}
