package compiler

import (
	"errors"
	"fmt"
)

// Code identifies the kind of a compile failure.
type Code string

const (
	// a name in a function body is not one of its parameters
	ErrUnknownIdentifier Code = "ErrUnknownIdentifier"
	// the registry rejected the compiled definition
	ErrInvalidDefinition Code = "ErrInvalidDefinition"
	ErrUnsupported       Code = "ErrUnsupported"
)

// CompileError reports a statement that parsed but cannot be compiled.
// The registry is never modified when compilation fails.
type CompileError struct {
	Code     Code
	Function string
	Name     string
	Line     int
	Column   int
	Detail   string
}

func (e *CompileError) Error() string {
	msg := e.Detail
	if e.Code == ErrUnknownIdentifier {
		msg = fmt.Sprintf("unknown identifier '%s'", e.Name)
	}
	pos := ""
	if e.Line > 0 {
		pos = fmt.Sprintf(" at line %d, column %d", e.Line, e.Column)
	}
	if e.Function != "" {
		return fmt.Sprintf("compile error [%s]%s: %s in function '%s'", e.Code, pos, msg, e.Function)
	}
	return fmt.Sprintf("compile error [%s]%s: %s", e.Code, pos, msg)
}

// Is matches another *CompileError with the same code.
func (e *CompileError) Is(target error) bool {
	t, ok := target.(*CompileError)
	return ok && t.Code == e.Code
}

// Is reports whether err is a CompileError with the given code.
func Is(err error, code Code) bool {
	return errors.Is(err, &CompileError{Code: code})
}
