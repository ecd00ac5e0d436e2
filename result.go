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
	"fmt"

	"github.com/rulego/udfsql/functions"
	"github.com/rulego/udfsql/query"
	"github.com/rulego/udfsql/types"
)

// StatementKind 语句类型
type StatementKind int

const (
	// KindUnknown 语句解析失败时的类型
	KindUnknown StatementKind = iota
	KindCreateFunction
	KindDropFunction
	KindSelect
)

func (k StatementKind) String() string {
	switch k {
	case KindCreateFunction:
		return "CREATE FUNCTION"
	case KindDropFunction:
		return "DROP FUNCTION"
	case KindSelect:
		return "SELECT"
	default:
		return "UNKNOWN"
	}
}

// Result 单条语句的执行结果。
// Err 非空时语句失败；对 SELECT 而言 Rows 中保留失败前已产出的行。
type Result struct {
	Kind StatementKind
	// Source 语句原文
	Source string

	// CREATE FUNCTION
	Function *functions.FunctionDef

	// DROP FUNCTION，函数不存在且带 IF EXISTS 时为 false
	Name    string
	Dropped bool

	// SELECT
	QueryID   string
	Columns   []string
	Rows      [][]types.Value
	Stats     query.Stats
	RowErrors []*query.RowError

	Err error
}

// Message 返回非查询语句的简短描述
func (r *Result) Message() string {
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	switch r.Kind {
	case KindCreateFunction:
		if r.Function != nil {
			return fmt.Sprintf("Created function: %s", r.Function.Signature())
		}
	case KindDropFunction:
		if r.Dropped {
			return fmt.Sprintf("Dropped function: %s", r.Name)
		}
		return fmt.Sprintf("Function %s does not exist, skipped", r.Name)
	case KindSelect:
		return fmt.Sprintf("(%d rows)", len(r.Rows))
	}
	return ""
}
