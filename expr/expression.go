package expr

import (
	"strings"

	"github.com/rulego/udfsql/types"
)

// Op 运算符
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	// 一元运算符
	OpNeg
	OpNot
)

var opNames = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpEq:  "=",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpAnd: "AND",
	OpOr:  "OR",
	OpNeg: "-",
	OpNot: "NOT",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "?"
}

// IsArithmetic reports whether the operator works on integers.
func (o Op) IsArithmetic() bool {
	return o >= OpAdd && o <= OpDiv
}

// IsComparison reports whether the operator compares two values.
func (o Op) IsComparison() bool {
	return o >= OpEq && o <= OpGe
}

// IsLogical reports whether the operator is AND or OR.
func (o Op) IsLogical() bool {
	return o == OpAnd || o == OpOr
}

// Expr is a resolved expression node. Every node owns its children; trees
// are built once by the compiler and only read afterwards.
type Expr interface {
	String() string
	exprNode()
}

// Literal 常量
type Literal struct {
	Value types.Value
}

// ColumnRef 当前行中的列
type ColumnRef struct {
	Name string
}

// ParamRef 当前调用帧中的参数
type ParamRef struct {
	Name string
}

// BinaryOp 二元运算
type BinaryOp struct {
	Op    Op
	Left  Expr
	Right Expr
}

// UnaryOp 一元运算：取负或 NOT
type UnaryOp struct {
	Op Op
	X  Expr
}

// IsNull x IS [NOT] NULL
type IsNull struct {
	X   Expr
	Not bool
}

// FunctionCall 调用已注册的函数，名称在求值时解析
type FunctionCall struct {
	Name string
	Args []Expr
}

func (*Literal) exprNode()      {}
func (*ColumnRef) exprNode()    {}
func (*ParamRef) exprNode()     {}
func (*BinaryOp) exprNode()     {}
func (*UnaryOp) exprNode()      {}
func (*IsNull) exprNode()       {}
func (*FunctionCall) exprNode() {}

func (e *Literal) String() string   { return e.Value.SQL() }
func (e *ColumnRef) String() string { return e.Name }
func (e *ParamRef) String() string  { return e.Name }

func (e *BinaryOp) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

func (e *UnaryOp) String() string {
	if e.Op == OpNot {
		return "NOT " + e.X.String()
	}
	return "-" + e.X.String()
}

func (e *IsNull) String() string {
	if e.Not {
		return e.X.String() + " IS NOT NULL"
	}
	return e.X.String() + " IS NULL"
}

func (e *FunctionCall) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Name + "(" + strings.Join(args, ", ") + ")"
}
