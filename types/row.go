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

package types

import "strings"

// Row is one input record: an ordered mapping from column name to value.
// Rows are produced by a row source and are read-only to the engine.
// Columns and Values have the same length.
type Row struct {
	Columns []string
	Values  []Value
}

// EmptyRow is the row context of a function body, which sees no columns.
var EmptyRow = Row{}

// NewRow pairs column names with values. Missing trailing values are NULL.
func NewRow(columns []string, values ...Value) Row {
	vals := make([]Value, len(columns))
	copy(vals, values)
	return Row{Columns: columns, Values: vals}
}

// Get returns the value of the named column. Column names match
// case-insensitively, exact matches win. A column without a value reads
// as NULL.
func (r Row) Get(name string) (Value, bool) {
	for i, col := range r.Columns {
		if col == name {
			return r.value(i), true
		}
	}
	for i, col := range r.Columns {
		if strings.EqualFold(col, name) {
			return r.value(i), true
		}
	}
	return Null, false
}

func (r Row) value(i int) Value {
	if i < len(r.Values) {
		return r.Values[i]
	}
	return Null
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.Columns)
}
