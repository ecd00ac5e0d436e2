package functions

import (
	"fmt"
	"strings"

	"github.com/rulego/udfsql/expr"
	"github.com/rulego/udfsql/types"
)

// FunctionType 函数类型枚举
type FunctionType string

const (
	// 用户通过 CREATE FUNCTION 定义的函数
	TypeUser FunctionType = "user"
	// 内置函数
	TypeBuiltin FunctionType = "builtin"
)

// Parameter 函数参数
type Parameter struct {
	Name string
	Type types.DataType
}

// NativeFunc implements a function in Go. args has already been checked
// against the parameter list.
type NativeFunc func(args []types.Value) (types.Value, error)

// FunctionDef is a compiled scalar function. A definition is immutable once
// it has been handed to a Registry; redefining a name installs a new
// FunctionDef instead of changing the old one.
type FunctionDef struct {
	// Name is the normalized (lower-case) function name
	Name       string
	Type       FunctionType
	Params     []Parameter
	ReturnType types.DataType
	// Body is set for user functions, Native for built-ins
	Body   expr.Statement
	Native NativeFunc
	// Source is the CREATE FUNCTION text for user functions
	Source      string
	Description string
	// Warnings collected by the compiler's static checks
	Warnings []string
}

// NormalizeName returns the registry key of a function name.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// Arity 参数个数
func (d *FunctionDef) Arity() int {
	return len(d.Params)
}

// IsNative reports whether the function is implemented in Go.
func (d *FunctionDef) IsNative() bool {
	return d.Native != nil
}

// Param returns the index of the named parameter, or -1.
func (d *FunctionDef) Param(name string) int {
	for i, p := range d.Params {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// Signature formats the declaration, e.g. "price_div_two(price INT) RETURNS INT".
func (d *FunctionDef) Signature() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	sb.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		sb.WriteByte(' ')
		sb.WriteString(p.Type.String())
	}
	sb.WriteString(") RETURNS ")
	sb.WriteString(d.ReturnType.String())
	return sb.String()
}

func (d *FunctionDef) validate() error {
	if d == nil {
		return fmt.Errorf("function definition is nil")
	}
	if d.Name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if d.Body == nil && d.Native == nil {
		return fmt.Errorf("function %s has no body", d.Name)
	}
	if d.Body != nil && d.Native != nil {
		return fmt.Errorf("function %s has both a body and a native implementation", d.Name)
	}
	return nil
}
