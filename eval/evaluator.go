package eval

import (
	"fmt"
	"math"

	"github.com/rulego/udfsql/expr"
	"github.com/rulego/udfsql/functions"
	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/types"
)

// DefaultMaxCallDepth limits nested function invocations.
const DefaultMaxCallDepth = 64

// Evaluator evaluates expression and statement IR against rows and call
// frames. It keeps no per-evaluation state and may be shared by concurrent
// queries.
type Evaluator struct {
	registry *functions.Registry
	maxDepth int
	logger   logger.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxCallDepth sets the invocation depth limit. Values below 1 are ignored.
func WithMaxCallDepth(n int) Option {
	return func(ev *Evaluator) {
		if n > 0 {
			ev.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l logger.Logger) Option {
	return func(ev *Evaluator) {
		if l != nil {
			ev.logger = l
		}
	}
}

// New creates an Evaluator resolving calls through reg.
func New(reg *functions.Registry, opts ...Option) *Evaluator {
	ev := &Evaluator{
		registry: reg,
		maxDepth: DefaultMaxCallDepth,
		logger:   logger.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Registry returns the registry calls are resolved against.
func (ev *Evaluator) Registry() *functions.Registry {
	return ev.registry
}

// MaxCallDepth returns the invocation depth limit.
func (ev *Evaluator) MaxCallDepth() int {
	return ev.maxDepth
}

// Evaluate computes e against row and frame.
func (ev *Evaluator) Evaluate(e expr.Expr, row types.Row, frame *Frame) (types.Value, error) {
	switch n := e.(type) {
	case *expr.Literal:
		return n.Value, nil

	case *expr.ColumnRef:
		if v, ok := row.Get(n.Name); ok {
			return v, nil
		}
		// 裸标识符：回退为零参数函数调用
		if def, ok := ev.registry.Lookup(n.Name); ok && def.Arity() == 0 {
			return ev.invoke(def, nil, frame)
		}
		return types.Null, newError(ErrUnknownColumn, frame.Function(), n.Name, "")

	case *expr.ParamRef:
		if v, ok := frame.Get(n.Name); ok {
			return v, nil
		}
		return types.Null, newError(ErrUnknownParameter, frame.Function(), n.Name, "")

	case *expr.BinaryOp:
		if n.Op.IsLogical() {
			return ev.evalLogical(n, row, frame)
		}
		left, err := ev.Evaluate(n.Left, row, frame)
		if err != nil {
			return types.Null, err
		}
		right, err := ev.Evaluate(n.Right, row, frame)
		if err != nil {
			return types.Null, err
		}
		if left.IsNull() || right.IsNull() {
			return types.Null, nil
		}
		if n.Op.IsArithmetic() {
			return arithmetic(n.Op, left, right, frame)
		}
		return compare(n.Op, left, right, frame)

	case *expr.UnaryOp:
		x, err := ev.Evaluate(n.X, row, frame)
		if err != nil || x.IsNull() {
			return types.Null, err
		}
		switch n.Op {
		case expr.OpNeg:
			if i, ok := x.AsInt(); ok {
				if i == math.MinInt64 {
					return types.Null, overflow(frame, "-(%d)", i)
				}
				return types.Int(-i), nil
			}
		case expr.OpNot:
			if b, ok := x.AsBool(); ok {
				return types.Bool(!b), nil
			}
		}
		return types.Null, typeMismatch(frame, "operator %s does not apply to %s", n.Op, x.Type())

	case *expr.IsNull:
		x, err := ev.Evaluate(n.X, row, frame)
		if err != nil {
			return types.Null, err
		}
		return types.Bool(x.IsNull() != n.Not), nil

	case *expr.FunctionCall:
		def, ok := ev.registry.Lookup(n.Name)
		if !ok {
			return types.Null, newError(ErrUnknownFunction, frame.Function(), n.Name, "")
		}
		args := make([]types.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := ev.Evaluate(a, row, frame)
			if err != nil {
				return types.Null, err
			}
			args[i] = v
		}
		return ev.invoke(def, args, frame)

	default:
		return types.Null, fmt.Errorf("unsupported expression node %T", e)
	}
}

// Call invokes a registered function with already evaluated arguments.
func (ev *Evaluator) Call(name string, args []types.Value) (types.Value, error) {
	def, ok := ev.registry.Lookup(name)
	if !ok {
		return types.Null, newError(ErrUnknownFunction, "", name, "")
	}
	return ev.invoke(def, args, nil)
}

// Exec runs a function-body statement under frame. Bodies never see the
// caller's row.
func (ev *Evaluator) Exec(s expr.Statement, frame *Frame) (Signal, error) {
	switch n := s.(type) {
	case *expr.Sequence:
		for _, child := range n.Stmts {
			sig, err := ev.Exec(child, frame)
			if err != nil || sig.Returned {
				return sig, err
			}
		}
		return FellThrough, nil

	case *expr.If:
		cond, err := ev.Evaluate(n.Cond, types.EmptyRow, frame)
		if err != nil {
			return FellThrough, err
		}
		if cond.IsNull() {
			return ev.execElse(n, frame)
		}
		b, ok := cond.AsBool()
		if !ok {
			return FellThrough, typeMismatch(frame, "IF condition must be BOOL, got %s", cond.Type())
		}
		if b {
			return ev.Exec(n.Then, frame)
		}
		return ev.execElse(n, frame)

	case *expr.Return:
		v, err := ev.Evaluate(n.Value, types.EmptyRow, frame)
		if err != nil {
			return FellThrough, err
		}
		return Return(v), nil

	default:
		return FellThrough, fmt.Errorf("unsupported statement node %T", s)
	}
}

func (ev *Evaluator) execElse(n *expr.If, frame *Frame) (Signal, error) {
	if n.Else == nil {
		return FellThrough, nil
	}
	return ev.Exec(n.Else, frame)
}

// invoke checks args against def and runs it one level below caller.
func (ev *Evaluator) invoke(def *functions.FunctionDef, args []types.Value, caller *Frame) (types.Value, error) {
	if len(args) != def.Arity() {
		return types.Null, newError(ErrArityMismatch, def.Name, def.Name,
			fmt.Sprintf("function %s expects %d arguments, got %d", def.Name, def.Arity(), len(args)))
	}
	for i, p := range def.Params {
		if !args[i].IsNull() && args[i].Type() != p.Type {
			return types.Null, newError(ErrTypeMismatch, def.Name, p.Name,
				fmt.Sprintf("argument %s expects %s, got %s", p.Name, p.Type, args[i].Type()))
		}
	}
	depth := caller.Depth() + 1
	if depth > ev.maxDepth {
		ev.logger.Warn("function %s: call depth limit %d reached", def.Name, ev.maxDepth)
		return types.Null, newError(ErrCallDepthExceeded, def.Name, def.Name,
			fmt.Sprintf("call depth exceeds %d", ev.maxDepth))
	}

	var result types.Value
	if def.IsNative() {
		v, err := def.Native(args)
		if err != nil {
			return types.Null, &EvalError{Code: ErrFunctionFailed, Function: def.Name, Name: def.Name, Detail: err.Error(), Err: err}
		}
		result = v
	} else {
		frame := &Frame{fn: def, values: args, depth: depth}
		sig, err := ev.Exec(def.Body, frame)
		if err != nil {
			return types.Null, err
		}
		if !sig.Returned {
			return types.Null, newError(ErrNoReturnValue, def.Name, def.Name, "")
		}
		result = sig.Value
	}

	if !result.IsNull() && result.Type() != def.ReturnType {
		return types.Null, newError(ErrTypeMismatch, def.Name, def.Name,
			fmt.Sprintf("function %s declared RETURNS %s but returned %s", def.Name, def.ReturnType, result.Type()))
	}
	return result, nil
}

// evalLogical applies Kleene AND / OR, evaluating the right operand only
// when the left one does not decide the result.
func (ev *Evaluator) evalLogical(n *expr.BinaryOp, row types.Row, frame *Frame) (types.Value, error) {
	left, err := ev.Evaluate(n.Left, row, frame)
	if err != nil {
		return types.Null, err
	}
	l, err := logicalOperand(n.Op, left, frame)
	if err != nil {
		return types.Null, err
	}
	decisive := n.Op == expr.OpOr
	if l != nil && *l == decisive {
		return types.Bool(decisive), nil
	}

	right, err := ev.Evaluate(n.Right, row, frame)
	if err != nil {
		return types.Null, err
	}
	r, err := logicalOperand(n.Op, right, frame)
	if err != nil {
		return types.Null, err
	}
	if r != nil && *r == decisive {
		return types.Bool(decisive), nil
	}
	if l == nil || r == nil {
		return types.Null, nil
	}
	return types.Bool(!decisive), nil
}

// logicalOperand returns nil for NULL.
func logicalOperand(op expr.Op, v types.Value, frame *Frame) (*bool, error) {
	if v.IsNull() {
		return nil, nil
	}
	b, ok := v.AsBool()
	if !ok {
		return nil, typeMismatch(frame, "operator %s requires BOOL operands, got %s", op, v.Type())
	}
	return &b, nil
}

func arithmetic(op expr.Op, left, right types.Value, frame *Frame) (types.Value, error) {
	l, lok := left.AsInt()
	r, rok := right.AsInt()
	if !lok || !rok {
		return types.Null, typeMismatch(frame, "operator %s requires INT operands, got %s and %s", op, left.Type(), right.Type())
	}
	switch op {
	case expr.OpAdd:
		sum := l + r
		// 同号相加结果变号即溢出
		if (l >= 0) == (r >= 0) && (sum >= 0) != (l >= 0) {
			return types.Null, overflow(frame, "%d + %d", l, r)
		}
		return types.Int(sum), nil
	case expr.OpSub:
		diff := l - r
		if (l >= 0) != (r >= 0) && (diff >= 0) != (l >= 0) {
			return types.Null, overflow(frame, "%d - %d", l, r)
		}
		return types.Int(diff), nil
	case expr.OpMul:
		if l == 0 || r == 0 {
			return types.Int(0), nil
		}
		prod := l * r
		if prod/r != l || (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64) {
			return types.Null, overflow(frame, "%d * %d", l, r)
		}
		return types.Int(prod), nil
	case expr.OpDiv:
		if r == 0 {
			return types.Null, newError(ErrDivisionByZero, frame.Function(), "", "")
		}
		if l == math.MinInt64 && r == -1 {
			return types.Null, overflow(frame, "%d / %d", l, r)
		}
		// Go 整数除法向零截断
		return types.Int(l / r), nil
	}
	return types.Null, fmt.Errorf("unsupported arithmetic operator %s", op)
}

func compare(op expr.Op, left, right types.Value, frame *Frame) (types.Value, error) {
	if left.Type() != right.Type() {
		return types.Null, typeMismatch(frame, "cannot compare %s with %s", left.Type(), right.Type())
	}
	var c int
	switch left.Type() {
	case types.TypeInt:
		l, _ := left.AsInt()
		r, _ := right.AsInt()
		c = cmp3(l < r, l > r)
	case types.TypeText:
		l, _ := left.AsText()
		r, _ := right.AsText()
		c = cmp3(l < r, l > r)
	case types.TypeBool:
		l, _ := left.AsBool()
		r, _ := right.AsBool()
		c = cmp3(!l && r, l && !r)
	}
	switch op {
	case expr.OpEq:
		return types.Bool(c == 0), nil
	case expr.OpNe:
		return types.Bool(c != 0), nil
	case expr.OpLt:
		return types.Bool(c < 0), nil
	case expr.OpLe:
		return types.Bool(c <= 0), nil
	case expr.OpGt:
		return types.Bool(c > 0), nil
	case expr.OpGe:
		return types.Bool(c >= 0), nil
	}
	return types.Null, fmt.Errorf("unsupported comparison operator %s", op)
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func overflow(frame *Frame, format string, args ...any) *EvalError {
	return newError(ErrIntegerOverflow, frame.Function(), "", "integer overflow: "+fmt.Sprintf(format, args...))
}

func typeMismatch(frame *Frame, format string, args ...any) *EvalError {
	return newError(ErrTypeMismatch, frame.Function(), "", fmt.Sprintf(format, args...))
}
