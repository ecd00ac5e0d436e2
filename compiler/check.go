package compiler

import (
	"fmt"

	"github.com/rulego/udfsql/expr"
	"github.com/rulego/udfsql/functions"
	"github.com/rulego/udfsql/types"
)

// checker infers static types of a compiled body and collects warnings
// for mismatches that are certain to fail when the path runs. Mismatches
// are reported, not rejected: evaluation raises the actual error.
type checker struct {
	registry *functions.Registry
	def      *functions.FunctionDef
	returns  int
	warnings []string
}

func newChecker(reg *functions.Registry, def *functions.FunctionDef) *checker {
	return &checker{registry: reg, def: def}
}

func (c *checker) check(body expr.Statement) []string {
	c.stmt(body)
	if c.returns == 0 {
		c.warnf("body has no RETURN statement")
	}
	return c.warnings
}

func (c *checker) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *checker) stmt(s expr.Statement) {
	switch n := s.(type) {
	case *expr.Sequence:
		for _, child := range n.Stmts {
			c.stmt(child)
		}
	case *expr.If:
		if t := c.typeOf(n.Cond); t != types.TypeNull && t != types.TypeBool {
			c.warnf("IF condition %s has type %s, expected BOOL", n.Cond, t)
		}
		c.stmt(n.Then)
		if n.Else != nil {
			c.stmt(n.Else)
		}
	case *expr.Return:
		c.returns++
		if t := c.typeOf(n.Value); t != types.TypeNull && t != c.def.ReturnType {
			c.warnf("RETURN %s has type %s but the function returns %s", n.Value, t, c.def.ReturnType)
		}
	}
}

// typeOf returns TypeNull when the type is unknown until run time.
func (c *checker) typeOf(e expr.Expr) types.DataType {
	switch n := e.(type) {
	case *expr.Literal:
		return n.Value.Type()
	case *expr.ParamRef:
		if i := c.def.Param(n.Name); i >= 0 {
			return c.def.Params[i].Type
		}
		return types.TypeNull
	case *expr.BinaryOp:
		l, r := c.typeOf(n.Left), c.typeOf(n.Right)
		switch {
		case n.Op.IsArithmetic():
			c.expect(n.Op, types.TypeInt, l, r)
			return types.TypeInt
		case n.Op.IsLogical():
			c.expect(n.Op, types.TypeBool, l, r)
		default:
			if l != types.TypeNull && r != types.TypeNull && l != r {
				c.warnf("comparison %s between %s and %s", n, l, r)
			}
		}
		return types.TypeBool
	case *expr.UnaryOp:
		x := c.typeOf(n.X)
		if n.Op == expr.OpNeg {
			c.expect(n.Op, types.TypeInt, x)
			return types.TypeInt
		}
		c.expect(n.Op, types.TypeBool, x)
		return types.TypeBool
	case *expr.IsNull:
		c.typeOf(n.X)
		return types.TypeBool
	case *expr.FunctionCall:
		for _, a := range n.Args {
			c.typeOf(a)
		}
		if n.Name == c.def.Name {
			return c.def.ReturnType
		}
		callee, ok := c.registry.Lookup(n.Name)
		if !ok {
			c.warnf("function %s is not defined", n.Name)
			return types.TypeNull
		}
		if callee.Arity() != len(n.Args) {
			c.warnf("%s expects %d arguments, got %d", n.Name, callee.Arity(), len(n.Args))
		}
		return callee.ReturnType
	}
	return types.TypeNull
}

func (c *checker) expect(op expr.Op, want types.DataType, operands ...types.DataType) {
	for _, t := range operands {
		if t != types.TypeNull && t != want {
			c.warnf("operator %s applied to %s, expected %s", op, t, want)
		}
	}
}
