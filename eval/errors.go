package eval

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies the kind of an evaluation failure.
type Code string

const (
	ErrUnknownColumn     Code = "ErrUnknownColumn"
	ErrUnknownParameter  Code = "ErrUnknownParameter"
	ErrUnknownFunction   Code = "ErrUnknownFunction"
	ErrArityMismatch     Code = "ErrArityMismatch"
	ErrTypeMismatch      Code = "ErrTypeMismatch"
	ErrDivisionByZero    Code = "ErrDivisionByZero"
	ErrIntegerOverflow   Code = "ErrIntegerOverflow"
	ErrNoReturnValue     Code = "ErrNoReturnValue"
	ErrCallDepthExceeded Code = "ErrCallDepthExceeded"
	// a native function returned an error
	ErrFunctionFailed Code = "ErrFunctionFailed"
)

// EvalError is a per-row evaluation failure.
type EvalError struct {
	Code Code
	// Function is the function whose body was executing, empty at query level
	Function string
	// Name is the offending column, parameter or function name
	Name   string
	Detail string
	// Err is the underlying cause for ErrFunctionFailed
	Err error
}

func (e *EvalError) Error() string {
	var sb strings.Builder
	sb.WriteString("eval error [")
	sb.WriteString(string(e.Code))
	sb.WriteString("]: ")
	sb.WriteString(e.message())
	if e.Function != "" {
		sb.WriteString(" in function '")
		sb.WriteString(e.Function)
		sb.WriteString("'")
	}
	return sb.String()
}

func (e *EvalError) message() string {
	switch e.Code {
	case ErrUnknownColumn:
		return fmt.Sprintf("unknown column '%s'", e.Name)
	case ErrUnknownParameter:
		return fmt.Sprintf("unknown parameter '%s'", e.Name)
	case ErrUnknownFunction:
		return fmt.Sprintf("unknown function '%s'", e.Name)
	case ErrDivisionByZero:
		return "division by zero"
	case ErrNoReturnValue:
		return "function completed without RETURN"
	}
	if e.Detail != "" {
		return e.Detail
	}
	return strings.TrimPrefix(string(e.Code), "Err")
}

// Is matches another *EvalError with the same code.
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	return ok && t.Code == e.Code
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// Is reports whether err is an EvalError with the given code.
func Is(err error, code Code) bool {
	return errors.Is(err, &EvalError{Code: code})
}

// CodeOf returns the code of the EvalError in err's chain, or "".
func CodeOf(err error) Code {
	var e *EvalError
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newError(code Code, fn, name, detail string) *EvalError {
	return &EvalError{Code: code, Function: fn, Name: name, Detail: detail}
}
