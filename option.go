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
	"io"

	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/query"
	"github.com/rulego/udfsql/storage"
)

// Option 表示对Engine默认行为的修改配置。
// 通过函数式选项模式，用户可以灵活地配置引擎的各种行为。
type Option func(*Engine)

// WithLogger 设置自定义日志记录器。
// 只影响当前引擎实例，不修改全局默认日志器。
//
// 示例:
//
//	customLogger := logger.NewLogger(logger.DEBUG, os.Stderr)
//	engine := udfsql.New(udfsql.WithLogger(customLogger))
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// WithLogLevel 设置日志级别。
// 在所有选项应用之后作用于引擎使用的日志器，与选项顺序无关。
// 未指定日志器时引擎创建自己的 stderr 日志器，全局默认日志器不受影响。
//
// 参数:
//   - level: 日志级别，可选值：DEBUG, INFO, WARN, ERROR, OFF
func WithLogLevel(level logger.Level) Option {
	return func(e *Engine) {
		e.logLevel = &level
	}
}

// WithLogOutput 设置日志输出目标和级别。
//
// 示例:
//
//	logFile, _ := os.OpenFile("udfsql.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
//	engine := udfsql.New(udfsql.WithLogOutput(logFile, logger.INFO))
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(e *Engine) {
		e.logger = logger.NewLogger(level, output)
	}
}

// WithDiscardLog 禁用所有日志输出。
func WithDiscardLog() Option {
	return func(e *Engine) {
		e.logger = logger.NewDiscardLogger()
	}
}

// WithErrorPolicy 设置查询中单行求值失败时的处理策略。
// 默认 query.ErrorPolicyAbort：第一行失败即终止查询。
// query.ErrorPolicySkip：跳过失败行，继续扫描。
func WithErrorPolicy(policy query.ErrorPolicy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithRowErrorHandler 设置被跳过行的回调，仅在 skip 策略下调用。
//
// 示例:
//
//	engine := udfsql.New(
//	    udfsql.WithErrorPolicy(query.ErrorPolicySkip),
//	    udfsql.WithRowErrorHandler(func(err *query.RowError) {
//	        log.Printf("skipped: %v", err)
//	    }),
//	)
func WithRowErrorHandler(handler query.RowErrorHandler) Option {
	return func(e *Engine) {
		e.onRowError = handler
	}
}

// WithMaxCallDepth 设置函数嵌套调用的最大深度，默认 64。
// 超过限制的调用失败并返回 ErrCallDepthExceeded。
func WithMaxCallDepth(depth int) Option {
	return func(e *Engine) {
		e.maxCallDepth = depth
	}
}

// WithoutBuiltins 不注册内置函数，注册表初始为空。
func WithoutBuiltins() Option {
	return func(e *Engine) {
		e.builtins = false
	}
}

// WithCatalog 使用外部提供的表目录，多个引擎可以共享同一份数据。
func WithCatalog(catalog *storage.Catalog) Option {
	return func(e *Engine) {
		if catalog != nil {
			e.catalog = catalog
		}
	}
}
