package eval

import (
	"github.com/rulego/udfsql/functions"
	"github.com/rulego/udfsql/types"
)

// Frame binds the parameters of one function invocation. A nil Frame is
// the query-level context: no parameters, depth zero.
type Frame struct {
	fn     *functions.FunctionDef
	values []types.Value
	depth  int
}

// NewFrame binds args to the parameters of def positionally.
func NewFrame(def *functions.FunctionDef, args []types.Value) *Frame {
	return &Frame{fn: def, values: args, depth: 1}
}

// Get 获取参数值
func (f *Frame) Get(name string) (types.Value, bool) {
	if f == nil || f.fn == nil {
		return types.Null, false
	}
	i := f.fn.Param(name)
	if i < 0 || i >= len(f.values) {
		return types.Null, false
	}
	return f.values[i], true
}

// Function returns the name of the executing function, or "".
func (f *Frame) Function() string {
	if f == nil || f.fn == nil {
		return ""
	}
	return f.fn.Name
}

// Depth is the number of active invocations including this one.
func (f *Frame) Depth() int {
	if f == nil {
		return 0
	}
	return f.depth
}

// Signal is the outcome of executing a statement: either it produced a
// RETURN value or control fell through to the next statement.
type Signal struct {
	Returned bool
	Value    types.Value
}

// FellThrough is the signal of a statement that did not return.
var FellThrough = Signal{}

// Return builds the signal of an executed RETURN.
func Return(v types.Value) Signal {
	return Signal{Returned: true, Value: v}
}
