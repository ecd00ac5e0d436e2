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

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType is the logical type tag of a Value.
type DataType int

const (
	TypeNull DataType = iota
	TypeInt
	TypeText
	TypeBool
)

// String returns the SQL keyword of the type
func (t DataType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInt:
		return "INT"
	case TypeText:
		return "TEXT"
	case TypeBool:
		return "BOOL"
	default:
		return "UNKNOWN"
	}
}

// 类型关键字及其同义词
var typeKeywords = map[string]DataType{
	"INT":     TypeInt,
	"INTEGER": TypeInt,
	"TEXT":    TypeText,
	"VARCHAR": TypeText,
	"STRING":  TypeText,
	"BOOL":    TypeBool,
	"BOOLEAN": TypeBool,
}

// ParseDataType resolves a declared type keyword, case-insensitively.
// NULL is not a declarable type.
func ParseDataType(keyword string) (DataType, bool) {
	t, ok := typeKeywords[strings.ToUpper(keyword)]
	return t, ok
}

// Value is a scalar SQL value. Exactly one of the payload fields is
// meaningful, selected by the type tag; the zero Value is NULL.
type Value struct {
	typ DataType
	i   int64
	s   string
	b   bool
}

// Null is the NULL value.
var Null = Value{}

// Int creates an Integer value
func Int(v int64) Value {
	return Value{typ: TypeInt, i: v}
}

// Text creates a Text value
func Text(v string) Value {
	return Value{typ: TypeText, s: v}
}

// Bool creates a Boolean value
func Bool(v bool) Value {
	return Value{typ: TypeBool, b: v}
}

// Type returns the type tag of the value.
func (v Value) Type() DataType { return v.typ }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.typ == TypeNull }

// AsInt returns the integer payload; ok is false for any other type.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.typ == TypeInt
}

// AsText returns the text payload; ok is false for any other type.
func (v Value) AsText() (string, bool) {
	return v.s, v.typ == TypeText
}

// AsBool returns the boolean payload; ok is false for any other type.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.typ == TypeBool
}

// Any returns the payload as a plain Go value: int64, string, bool or nil.
func (v Value) Any() any {
	switch v.typ {
	case TypeInt:
		return v.i
	case TypeText:
		return v.s
	case TypeBool:
		return v.b
	default:
		return nil
	}
}

// Equal reports whether two values have the same type and payload.
// Unlike SQL equality, NULL equals NULL here.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeInt:
		return v.i == o.i
	case TypeText:
		return v.s == o.s
	case TypeBool:
		return v.b == o.b
	default:
		return true
	}
}

// String renders the value for display; text is not quoted.
func (v Value) String() string {
	switch v.typ {
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeText:
		return v.s
	case TypeBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return "NULL"
	}
}

// SQL renders the value as a SQL literal.
func (v Value) SQL() string {
	if v.typ == TypeText {
		return "'" + strings.ReplaceAll(v.s, "'", "''") + "'"
	}
	return v.String()
}

// GoString implements fmt.GoStringer, handy in test failure output.
func (v Value) GoString() string {
	if v.typ == TypeNull {
		return "Null"
	}
	return fmt.Sprintf("%s(%s)", v.typ, v.SQL())
}
