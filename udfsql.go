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

package udfsql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rulego/udfsql/compiler"
	"github.com/rulego/udfsql/eval"
	"github.com/rulego/udfsql/functions"
	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/query"
	"github.com/rulego/udfsql/rsql"
	"github.com/rulego/udfsql/storage"
)

// ErrFunctionNotFound is returned by DROP FUNCTION without IF EXISTS
// when the function is not registered.
var ErrFunctionNotFound = errors.New("function not found")

// Engine 是 udfsql 的主要接口。
// 它封装了SQL解析、函数编译、函数注册表和查询执行。
// 每个 Engine 拥有独立的函数注册表，多个实例互不影响。
//
// 使用示例:
//
//	engine := udfsql.New()
//	engine.RegisterTable(products)
//	_, err := engine.Exec(ctx, "CREATE FUNCTION price_div_two(price INT) RETURNS INT BEGIN RETURN price / 2; END")
//	result, err := engine.Exec(ctx, "SELECT name, price_div_two(price) FROM products")
type Engine struct {
	registry  *functions.Registry
	catalog   *storage.Catalog
	compiler  *compiler.Compiler
	evaluator *eval.Evaluator
	logger    logger.Logger

	logLevel     *logger.Level
	policy       query.ErrorPolicy
	onRowError   query.RowErrorHandler
	maxCallDepth int
	builtins     bool
}

// New 创建一个新的引擎实例。
// 默认注册内置函数，使用全局默认日志器，查询采用 abort 策略。
//
// 参数:
//   - options: 可变长度的配置选项
//
// 示例:
//
//	// 创建默认实例
//	engine := udfsql.New()
//
//	// 跳过求值失败的行
//	engine := udfsql.New(udfsql.WithErrorPolicy(query.ErrorPolicySkip))
func New(options ...Option) *Engine {
	e := &Engine{
		registry:     functions.NewRegistry(),
		catalog:      storage.NewCatalog(),
		logger:       logger.GetDefault(),
		maxCallDepth: eval.DefaultMaxCallDepth,
		builtins:     true,
	}
	for _, option := range options {
		option(e)
	}
	if e.logLevel != nil {
		if e.logger == logger.GetDefault() {
			// 不修改全局日志器的级别，其他引擎仍在使用它
			e.logger = logger.NewLogger(*e.logLevel, os.Stderr)
		} else {
			e.logger.SetLevel(*e.logLevel)
		}
	}

	if e.builtins {
		if err := functions.RegisterBuiltins(e.registry); err != nil {
			// 内置函数由常量定义，失败意味着程序错误
			panic(fmt.Sprintf("register builtins: %v", err))
		}
	}
	e.compiler = compiler.New(e.registry, compiler.WithLogger(e.logger))
	e.evaluator = eval.New(e.registry,
		eval.WithMaxCallDepth(e.maxCallDepth),
		eval.WithLogger(e.logger))
	return e
}

// Registry 返回引擎的函数注册表
func (e *Engine) Registry() *functions.Registry {
	return e.registry
}

// Catalog 返回引擎的表目录
func (e *Engine) Catalog() *storage.Catalog {
	return e.catalog
}

// Evaluator 返回引擎的表达式求值器，可用于直接调用已注册的函数
func (e *Engine) Evaluator() *eval.Evaluator {
	return e.evaluator
}

// Logger 返回引擎使用的日志器
func (e *Engine) Logger() logger.Logger {
	return e.logger
}

// RegisterTable 注册一张可被 SELECT 查询的表，同名表会被替换
func (e *Engine) RegisterTable(t storage.Table) {
	e.catalog.Register(t)
	e.logger.Debug("table %s registered: %v", t.Name(), t.Columns())
}

// LoadTables 并发加载目录下的所有 JSON 表文件
func (e *Engine) LoadTables(ctx context.Context, dir string) ([]string, error) {
	names, err := e.catalog.LoadDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	e.logger.Info("loaded %d tables from %s: %v", len(names), dir, names)
	return names, nil
}

// Functions 返回所有已注册的函数，按名称排序
func (e *Engine) Functions() []*functions.FunctionDef {
	return e.registry.List()
}

// CompileFunction 解析并编译一条 CREATE FUNCTION 语句，成功后注册到注册表。
// 同名函数被原子地替换；失败时注册表保持不变。
//
// 返回值:
//   - *functions.FunctionDef: 编译后的函数定义，Warnings 中包含静态检查发现的问题
//   - error: *rsql.ParseError 或 *compiler.CompileError
func (e *Engine) CompileFunction(sql string) (*functions.FunctionDef, error) {
	stmt, err := rsql.Parse(sql)
	if err != nil {
		return nil, err
	}
	create, ok := stmt.(*rsql.CreateFunctionStatement)
	if !ok {
		return nil, fmt.Errorf("expected CREATE FUNCTION, got %s", kindOf(stmt))
	}
	return e.compiler.CompileFunction(create)
}

// DropFunction 删除函数。ifExists 为 false 且函数不存在时返回 ErrFunctionNotFound。
func (e *Engine) DropFunction(name string, ifExists bool) (bool, error) {
	if e.registry.Drop(name) {
		e.logger.Info("function %s dropped", functions.NormalizeName(name))
		return true, nil
	}
	if ifExists {
		return false, nil
	}
	return false, fmt.Errorf("drop function %s: %w", name, ErrFunctionNotFound)
}

// Query 解析并启动一条 SELECT 查询，返回惰性的结果集。
// 调用方负责在读取结束后调用 Rows.Close。
//
// 示例:
//
//	rows, err := engine.Query(ctx, "SELECT name FROM products WHERE is_expensive(price)")
//	if err != nil {
//	    return err
//	}
//	defer rows.Close()
//	for rows.Next() {
//	    fmt.Println(rows.Values())
//	}
//	return rows.Err()
func (e *Engine) Query(ctx context.Context, sql string, opts ...query.Option) (*query.Rows, error) {
	stmt, err := rsql.Parse(sql)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*rsql.SelectStatement)
	if !ok {
		return nil, fmt.Errorf("expected SELECT, got %s", kindOf(stmt))
	}
	rows, _, err := e.startQuery(ctx, sel, opts...)
	return rows, err
}

func (e *Engine) startQuery(ctx context.Context, stmt *rsql.SelectStatement, opts ...query.Option) (*query.Rows, string, error) {
	plan, err := e.compiler.CompileSelect(stmt)
	if err != nil {
		return nil, "", err
	}
	table, err := e.catalog.Lookup(plan.Table)
	if err != nil {
		return nil, "", err
	}
	src, err := table.Scan(ctx)
	if err != nil {
		return nil, "", err
	}

	id := uuid.NewString()
	e.logger.Debug("query %s: %s", id, plan)
	runOpts := []query.Option{
		query.WithErrorPolicy(e.policy),
		query.WithRowErrorHandler(e.onRowError),
		query.WithLogger(e.logger),
		query.WithQueryID(id),
	}
	return query.Run(ctx, e.evaluator, plan, src, append(runOpts, opts...)...), id, nil
}

// Exec 解析并执行一条语句。SELECT 的结果被完整读取到 Result.Rows。
// 语句失败时同时返回 Result（Err 已设置）和错误。
//
// 支持的语句:
//   - CREATE [OR REPLACE] FUNCTION name(p type, ...) RETURNS type BEGIN ... END
//   - DROP FUNCTION [IF EXISTS] name
//   - SELECT expr [AS alias], ... | * FROM table [WHERE expr]
func (e *Engine) Exec(ctx context.Context, sql string) (*Result, error) {
	stmt, err := rsql.Parse(sql)
	if err != nil {
		return &Result{Source: sql, Err: err}, err
	}
	res := e.execStatement(ctx, stmt)
	return res, res.Err
}

// Execute 依次执行脚本中以分号分隔的所有语句。
// 一条语句失败（包括解析失败）不影响后续语句，每条语句对应一个 Result。
// ctx 取消后剩余语句不再执行。
func (e *Engine) Execute(ctx context.Context, script string) []*Result {
	var results []*Result
	p := rsql.NewParser(script)
	for {
		if err := ctx.Err(); err != nil {
			return append(results, &Result{Err: err})
		}
		stmt, err := p.Next()
		if err == io.EOF {
			return results
		}
		if err != nil {
			e.logger.Error("parse: %v", err)
			results = append(results, &Result{Err: err})
			continue
		}
		results = append(results, e.execStatement(ctx, stmt))
	}
}

func (e *Engine) execStatement(ctx context.Context, stmt rsql.Statement) *Result {
	switch s := stmt.(type) {
	case *rsql.CreateFunctionStatement:
		res := &Result{Kind: KindCreateFunction, Source: s.Source, Name: functions.NormalizeName(s.Name)}
		res.Function, res.Err = e.compiler.CompileFunction(s)
		if res.Err != nil {
			e.logger.Error("create function %s: %v", s.Name, res.Err)
		}
		return res

	case *rsql.DropFunctionStatement:
		res := &Result{Kind: KindDropFunction, Source: rsql.String(s), Name: functions.NormalizeName(s.Name)}
		res.Dropped, res.Err = e.DropFunction(s.Name, s.IfExists)
		return res

	case *rsql.SelectStatement:
		return e.execSelect(ctx, s)

	default:
		return &Result{Source: rsql.String(stmt), Err: fmt.Errorf("unsupported statement %T", stmt)}
	}
}

func (e *Engine) execSelect(ctx context.Context, stmt *rsql.SelectStatement) *Result {
	res := &Result{Kind: KindSelect, Source: stmt.Source}
	collect := query.WithRowErrorHandler(func(rowErr *query.RowError) {
		res.RowErrors = append(res.RowErrors, rowErr)
		if e.onRowError != nil {
			e.onRowError(rowErr)
		}
	})
	rows, id, err := e.startQuery(ctx, stmt, collect)
	if err != nil {
		res.Err = err
		e.logger.Error("select: %v", err)
		return res
	}
	res.QueryID = id
	res.Columns = rows.Columns()
	res.Rows, res.Err = rows.All()
	res.Stats = rows.Stats()
	return res
}

func kindOf(stmt rsql.Statement) StatementKind {
	switch stmt.(type) {
	case *rsql.CreateFunctionStatement:
		return KindCreateFunction
	case *rsql.DropFunctionStatement:
		return KindDropFunction
	case *rsql.SelectStatement:
		return KindSelect
	}
	return KindUnknown
}
