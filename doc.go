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

/*
Package udfsql 是一个以用户自定义标量函数为核心的轻量级 SQL 引擎。

函数通过 CREATE FUNCTION 定义，函数体支持 IF/ELSE 和 RETURN，
编译后注册到引擎的函数注册表，随后可以在 SELECT 的投影列和 WHERE 条件中调用。

# 核心特性

• 类型化参数和返回值 - INT、TEXT、BOOL，以及 NULL
• 过程式函数体 - IF/THEN/ELSE/END IF、RETURN，支持函数之间互相调用
• SQL 三值逻辑 - NULL 在算术和比较中传播，WHERE 中 NULL 视为 false
• 写时复制的函数注册表 - 重定义函数不影响正在执行的查询
• 惰性查询 - 结果按行拉取，可选择跳过或终止于求值失败的行
• 多种数据源 - 内存表、JSON 表文件、SQLite 表

# 入门示例

	package main

	import (
		"context"
		"fmt"

		"github.com/rulego/udfsql"
		"github.com/rulego/udfsql/storage"
	)

	func main() {
		ctx := context.Background()
		engine := udfsql.New()

		products := storage.NewMemoryTable("products", "name", "price")
		products.Insert("widget", 10)
		products.Insert("gizmo", 150)
		engine.RegisterTable(products)

		results := engine.Execute(ctx, `
			CREATE FUNCTION is_expensive(price INT) RETURNS BOOL
			BEGIN
				RETURN price > 100;
			END;
			SELECT name, price / 2 AS half FROM products WHERE is_expensive(price);
		`)
		for _, r := range results {
			fmt.Println(r.Message(), r.Rows)
		}
	}

# 错误处理

解析失败返回 *rsql.ParseError，带行列位置；函数体引用未声明的名称返回
*compiler.CompileError，注册表保持不变；求值失败返回 *eval.EvalError，
可以用 eval.Is(err, eval.ErrDivisionByZero) 按错误码判断。

查询默认在第一行失败时终止。使用 WithErrorPolicy(query.ErrorPolicySkip)
跳过失败的行，并通过 WithRowErrorHandler 接收被跳过的行。

# 类型规则

函数返回值必须与声明的返回类型一致（NULL 除外），不做隐式转换：
声明 RETURNS INT 的函数执行 RETURN 'adult' 时返回 ErrTypeMismatch。
编译期能确定的类型不一致只记录为警告。
*/
package udfsql
