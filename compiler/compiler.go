package compiler

import (
	"fmt"
	"strings"

	"github.com/rulego/udfsql/expr"
	"github.com/rulego/udfsql/functions"
	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/query"
	"github.com/rulego/udfsql/rsql"
	"github.com/rulego/udfsql/types"
)

// Compiler lowers parsed statements to executable IR. Function
// definitions are installed into the registry it was created with.
type Compiler struct {
	registry *functions.Registry
	logger   logger.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for definitions and warnings.
func WithLogger(l logger.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Compiler for reg.
func New(reg *functions.Registry, opts ...Option) *Compiler {
	c := &Compiler{registry: reg, logger: logger.NewDiscardLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// scope resolves identifiers while lowering expressions.
type scope struct {
	fn     string
	params map[string]functions.Parameter // 为 nil 时表示查询上下文
}

// CompileFunction compiles a CREATE FUNCTION statement and defines the
// result in the registry. On error the registry is left untouched.
func (c *Compiler) CompileFunction(stmt *rsql.CreateFunctionStatement) (*functions.FunctionDef, error) {
	name := functions.NormalizeName(stmt.Name)
	sc := &scope{fn: name, params: make(map[string]functions.Parameter, len(stmt.Params))}
	params := make([]functions.Parameter, len(stmt.Params))
	for i, p := range stmt.Params {
		params[i] = functions.Parameter{Name: p.Name, Type: p.Type}
		sc.params[strings.ToLower(p.Name)] = params[i]
	}

	body, err := c.lowerBlock(stmt.Body, sc)
	if err != nil {
		return nil, err
	}

	def := &functions.FunctionDef{
		Name:       name,
		Type:       functions.TypeUser,
		Params:     params,
		ReturnType: stmt.ReturnType,
		Body:       body,
		Source:     stmt.Source,
	}
	def.Warnings = newChecker(c.registry, def).check(body)

	replaced, err := c.registry.Define(def)
	if err != nil {
		return nil, &CompileError{Code: ErrInvalidDefinition, Function: name, Detail: err.Error()}
	}
	for _, w := range def.Warnings {
		c.logger.Warn("function %s: %s", name, w)
	}
	if replaced {
		c.logger.Info("function %s replaced: %s", name, def.Signature())
	} else {
		c.logger.Info("function %s defined: %s", name, def.Signature())
	}
	return def, nil
}

// CompileSelect binds the identifiers of a SELECT to columns of the
// scanned table.
func (c *Compiler) CompileSelect(stmt *rsql.SelectStatement) (*query.Plan, error) {
	sc := &scope{}
	plan := &query.Plan{Table: stmt.From, Star: stmt.Star, Source: stmt.Source}
	for _, f := range stmt.Fields {
		e, err := c.lowerExpr(f.Expr, sc)
		if err != nil {
			return nil, err
		}
		plan.Columns = append(plan.Columns, query.Column{Name: columnName(f), Expr: e})
	}
	if stmt.Where != nil {
		where, err := c.lowerExpr(stmt.Where, sc)
		if err != nil {
			return nil, err
		}
		plan.Where = where
	}
	return plan, nil
}

// columnName 输出列名：别名、列名或表达式原文
func columnName(f rsql.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	switch e := f.Expr.(type) {
	case *rsql.NameRef:
		return e.Name
	case *rsql.BinaryExpr:
		// 去掉最外层括号
		s := rsql.String(e)
		return s[1 : len(s)-1]
	}
	return rsql.String(f.Expr)
}

func (c *Compiler) lowerBlock(stmts []rsql.ProcStatement, sc *scope) (*expr.Sequence, error) {
	seq := &expr.Sequence{Stmts: make([]expr.Statement, 0, len(stmts))}
	for _, st := range stmts {
		lowered, err := c.lowerStatement(st, sc)
		if err != nil {
			return nil, err
		}
		seq.Stmts = append(seq.Stmts, lowered)
	}
	return seq, nil
}

func (c *Compiler) lowerStatement(st rsql.ProcStatement, sc *scope) (expr.Statement, error) {
	switch s := st.(type) {
	case *rsql.ReturnStatement:
		v, err := c.lowerExpr(s.Value, sc)
		if err != nil {
			return nil, err
		}
		return &expr.Return{Value: v}, nil

	case *rsql.IfStatement:
		cond, err := c.lowerExpr(s.Cond, sc)
		if err != nil {
			return nil, err
		}
		then, err := c.lowerBlock(s.Then, sc)
		if err != nil {
			return nil, err
		}
		out := &expr.If{Cond: cond, Then: then}
		if s.Else != nil {
			els, err := c.lowerBlock(s.Else, sc)
			if err != nil {
				return nil, err
			}
			out.Else = els
		}
		return out, nil

	default:
		tok := st.Pos()
		return nil, &CompileError{Code: ErrUnsupported, Function: sc.fn, Line: tok.Line, Column: tok.Column,
			Detail: fmt.Sprintf("unsupported statement %T", st)}
	}
}

func (c *Compiler) lowerExpr(e rsql.Expr, sc *scope) (expr.Expr, error) {
	switch n := e.(type) {
	case *rsql.NumberLit:
		return &expr.Literal{Value: types.Int(n.Value)}, nil
	case *rsql.StringLit:
		return &expr.Literal{Value: types.Text(n.Value)}, nil
	case *rsql.BoolLit:
		return &expr.Literal{Value: types.Bool(n.Value)}, nil
	case *rsql.NullLit:
		return &expr.Literal{Value: types.Null}, nil

	case *rsql.NameRef:
		if sc.params == nil {
			return &expr.ColumnRef{Name: n.Name}, nil
		}
		p, ok := sc.params[strings.ToLower(n.Name)]
		if !ok {
			return nil, &CompileError{Code: ErrUnknownIdentifier, Function: sc.fn, Name: n.Name,
				Line: n.Tok.Line, Column: n.Tok.Column}
		}
		return &expr.ParamRef{Name: p.Name}, nil

	case *rsql.BinaryExpr:
		op, ok := binaryOps[n.Op]
		if !ok {
			return nil, unsupportedOp(n.OpTok, sc)
		}
		left, err := c.lowerExpr(n.Left, sc)
		if err != nil {
			return nil, err
		}
		right, err := c.lowerExpr(n.Right, sc)
		if err != nil {
			return nil, err
		}
		return &expr.BinaryOp{Op: op, Left: left, Right: right}, nil

	case *rsql.UnaryExpr:
		x, err := c.lowerExpr(n.X, sc)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case rsql.TokenMinus:
			return &expr.UnaryOp{Op: expr.OpNeg, X: x}, nil
		case rsql.TokenNOT:
			return &expr.UnaryOp{Op: expr.OpNot, X: x}, nil
		}
		return nil, unsupportedOp(n.OpTok, sc)

	case *rsql.IsNullExpr:
		x, err := c.lowerExpr(n.X, sc)
		if err != nil {
			return nil, err
		}
		return &expr.IsNull{X: x, Not: n.Not}, nil

	case *rsql.CallExpr:
		call := &expr.FunctionCall{Name: functions.NormalizeName(n.Name), Args: make([]expr.Expr, len(n.Args))}
		for i, a := range n.Args {
			arg, err := c.lowerExpr(a, sc)
			if err != nil {
				return nil, err
			}
			call.Args[i] = arg
		}
		return call, nil

	default:
		tok := e.Pos()
		return nil, &CompileError{Code: ErrUnsupported, Function: sc.fn, Line: tok.Line, Column: tok.Column,
			Detail: fmt.Sprintf("unsupported expression %T", e)}
	}
}

var binaryOps = map[rsql.TokenType]expr.Op{
	rsql.TokenPlus:     expr.OpAdd,
	rsql.TokenMinus:    expr.OpSub,
	rsql.TokenAsterisk: expr.OpMul,
	rsql.TokenSlash:    expr.OpDiv,
	rsql.TokenEQ:       expr.OpEq,
	rsql.TokenNE:       expr.OpNe,
	rsql.TokenLT:       expr.OpLt,
	rsql.TokenLE:       expr.OpLe,
	rsql.TokenGT:       expr.OpGt,
	rsql.TokenGE:       expr.OpGe,
	rsql.TokenAND:      expr.OpAnd,
	rsql.TokenOR:       expr.OpOr,
}

func unsupportedOp(tok rsql.Token, sc *scope) *CompileError {
	return &CompileError{Code: ErrUnsupported, Function: sc.fn, Line: tok.Line, Column: tok.Column,
		Detail: fmt.Sprintf("unsupported operator %s", tok.Type)}
}
