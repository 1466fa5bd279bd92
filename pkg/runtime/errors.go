package runtime

import (
	"fmt"

	"lox/interpreter-go/pkg/token"
)

// Error is a runtime failure tied to the token that triggered it. It aborts
// the rest of the run.
type Error struct {
	Token   token.Token
	Message string
}

func NewError(tok token.Token, format string, args ...any) *Error {
	return &Error{Token: tok, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Token.Line, e.Message)
}

// Line is the source line of the offending token.
func (e *Error) Line() int { return e.Token.Line }

// NativeError is raised by builtins. It carries no location; the interpreter
// attaches the call's closing paren.
type NativeError struct {
	Message string
}

func NewNativeError(format string, args ...any) *NativeError {
	return &NativeError{Message: fmt.Sprintf(format, args...)}
}

func (e *NativeError) Error() string { return e.Message }
