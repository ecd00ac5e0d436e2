/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// ast.go 定义了未解析的语法树。标识符统一表示为 NameRef，
// 由编译阶段根据作用域绑定为参数或列。

package rsql

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/rulego/udfsql/types"
)

// Node 是 AST 的基础接口
type Node interface {
	// Format 将节点格式化为 SQL 文本
	Format(buf *bytes.Buffer)
	// Pos 返回节点起始 token，用于错误定位
	Pos() Token
}

// Statement 顶层 SQL 语句
type Statement interface {
	Node
	statementNode()
}

// ProcStatement 函数体内的过程语句
type ProcStatement interface {
	Node
	procStatementNode()
}

// Expr 语法表达式
type Expr interface {
	Node
	exprNode()
}

// String 格式化任意节点
func String(n Node) string {
	var buf bytes.Buffer
	n.Format(&buf)
	return buf.String()
}

// ---------- 表达式 ----------

// NameRef 未解析的标识符
type NameRef struct {
	Tok  Token
	Name string
}

// NumberLit 整数字面量
type NumberLit struct {
	Tok   Token
	Value int64
}

// StringLit 单引号字符串字面量
type StringLit struct {
	Tok   Token
	Value string
}

// BoolLit TRUE / FALSE
type BoolLit struct {
	Tok   Token
	Value bool
}

// NullLit NULL
type NullLit struct {
	Tok Token
}

// BinaryExpr 二元运算，Op 为运算符或 AND/OR 的 token 类型
type BinaryExpr struct {
	OpTok Token
	Op    TokenType
	Left  Expr
	Right Expr
}

// UnaryExpr NOT x 或 -x
type UnaryExpr struct {
	OpTok Token
	Op    TokenType
	X     Expr
}

// IsNullExpr x IS [NOT] NULL
type IsNullExpr struct {
	X   Expr
	Not bool
}

// CallExpr 函数调用 name(args...)
type CallExpr struct {
	Tok  Token
	Name string
	Args []Expr
}

func (*NameRef) exprNode()    {}
func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*NullLit) exprNode()    {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*IsNullExpr) exprNode() {}
func (*CallExpr) exprNode()   {}

func (e *NameRef) Pos() Token    { return e.Tok }
func (e *NumberLit) Pos() Token  { return e.Tok }
func (e *StringLit) Pos() Token  { return e.Tok }
func (e *BoolLit) Pos() Token    { return e.Tok }
func (e *NullLit) Pos() Token    { return e.Tok }
func (e *BinaryExpr) Pos() Token { return e.Left.Pos() }
func (e *UnaryExpr) Pos() Token  { return e.OpTok }
func (e *IsNullExpr) Pos() Token { return e.X.Pos() }
func (e *CallExpr) Pos() Token   { return e.Tok }

func (e *NameRef) Format(buf *bytes.Buffer) { buf.WriteString(e.Name) }

func (e *NumberLit) Format(buf *bytes.Buffer) {
	buf.WriteString(strconv.FormatInt(e.Value, 10))
}

func (e *StringLit) Format(buf *bytes.Buffer) {
	buf.WriteString(types.Text(e.Value).SQL())
}

func (e *BoolLit) Format(buf *bytes.Buffer) {
	if e.Value {
		buf.WriteString("TRUE")
	} else {
		buf.WriteString("FALSE")
	}
}

func (e *NullLit) Format(buf *bytes.Buffer) { buf.WriteString("NULL") }

func (e *BinaryExpr) Format(buf *bytes.Buffer) {
	buf.WriteByte('(')
	e.Left.Format(buf)
	buf.WriteByte(' ')
	buf.WriteString(e.Op.String())
	buf.WriteByte(' ')
	e.Right.Format(buf)
	buf.WriteByte(')')
}

func (e *UnaryExpr) Format(buf *bytes.Buffer) {
	if e.Op == TokenNOT {
		buf.WriteString("NOT ")
	} else {
		buf.WriteString(e.Op.String())
	}
	e.X.Format(buf)
}

func (e *IsNullExpr) Format(buf *bytes.Buffer) {
	e.X.Format(buf)
	if e.Not {
		buf.WriteString(" IS NOT NULL")
	} else {
		buf.WriteString(" IS NULL")
	}
}

func (e *CallExpr) Format(buf *bytes.Buffer) {
	buf.WriteString(e.Name)
	buf.WriteByte('(')
	for i, arg := range e.Args {
		if i > 0 {
			buf.WriteString(", ")
		}
		arg.Format(buf)
	}
	buf.WriteByte(')')
}

// ---------- 过程语句 ----------

// IfStatement IF cond THEN ... [ELSE ...] END IF
type IfStatement struct {
	Tok  Token
	Cond Expr
	Then []ProcStatement
	// Else 为 nil 表示没有 ELSE 分支，空切片表示 ELSE 后没有语句
	Else []ProcStatement
}

// ReturnStatement RETURN expr
type ReturnStatement struct {
	Tok   Token
	Value Expr
}

func (*IfStatement) procStatementNode()     {}
func (*ReturnStatement) procStatementNode() {}

func (s *IfStatement) Pos() Token     { return s.Tok }
func (s *ReturnStatement) Pos() Token { return s.Tok }

func (s *IfStatement) Format(buf *bytes.Buffer) {
	buf.WriteString("IF ")
	s.Cond.Format(buf)
	buf.WriteString(" THEN ")
	formatBlock(buf, s.Then)
	if s.Else != nil {
		buf.WriteString("ELSE ")
		formatBlock(buf, s.Else)
	}
	buf.WriteString("END IF")
}

func (s *ReturnStatement) Format(buf *bytes.Buffer) {
	buf.WriteString("RETURN ")
	s.Value.Format(buf)
}

func formatBlock(buf *bytes.Buffer, stmts []ProcStatement) {
	for _, st := range stmts {
		st.Format(buf)
		buf.WriteString("; ")
	}
}

// ---------- 顶层语句 ----------

// ParamDecl 函数参数声明
type ParamDecl struct {
	Tok  Token
	Name string
	Type types.DataType
}

// CreateFunctionStatement CREATE [OR REPLACE] FUNCTION
type CreateFunctionStatement struct {
	Tok        Token
	OrReplace  bool
	Name       string
	Params     []ParamDecl
	ReturnType types.DataType
	Body       []ProcStatement
	// Source 为语句原文，用于展示
	Source string
}

// DropFunctionStatement DROP FUNCTION [IF EXISTS] name
type DropFunctionStatement struct {
	Tok      Token
	Name     string
	IfExists bool
}

// Field SELECT 列表中的一项
type Field struct {
	Expr  Expr
	Alias string
}

// SelectStatement SELECT fields FROM table [WHERE cond]
type SelectStatement struct {
	Tok    Token
	Star   bool
	Fields []Field
	From   string
	Where  Expr
	Source string
}

func (*CreateFunctionStatement) statementNode() {}
func (*DropFunctionStatement) statementNode()   {}
func (*SelectStatement) statementNode()         {}

func (s *CreateFunctionStatement) Pos() Token { return s.Tok }
func (s *DropFunctionStatement) Pos() Token   { return s.Tok }
func (s *SelectStatement) Pos() Token         { return s.Tok }

func (s *CreateFunctionStatement) Format(buf *bytes.Buffer) {
	buf.WriteString("CREATE ")
	if s.OrReplace {
		buf.WriteString("OR REPLACE ")
	}
	buf.WriteString("FUNCTION ")
	buf.WriteString(s.Name)
	buf.WriteByte('(')
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Name + " " + p.Type.String()
	}
	buf.WriteString(strings.Join(params, ", "))
	buf.WriteString(") RETURNS ")
	buf.WriteString(s.ReturnType.String())
	buf.WriteString(" BEGIN ")
	formatBlock(buf, s.Body)
	buf.WriteString("END")
}

func (s *DropFunctionStatement) Format(buf *bytes.Buffer) {
	buf.WriteString("DROP FUNCTION ")
	if s.IfExists {
		buf.WriteString("IF EXISTS ")
	}
	buf.WriteString(s.Name)
}

func (s *SelectStatement) Format(buf *bytes.Buffer) {
	buf.WriteString("SELECT ")
	if s.Star {
		buf.WriteByte('*')
	}
	for i, f := range s.Fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		f.Expr.Format(buf)
		if f.Alias != "" {
			buf.WriteString(" AS ")
			buf.WriteString(f.Alias)
		}
	}
	buf.WriteString(" FROM ")
	buf.WriteString(s.From)
	if s.Where != nil {
		buf.WriteString(" WHERE ")
		s.Where.Format(buf)
	}
}
