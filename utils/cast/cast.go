/*
 * Copyright 2024 The RuleGo Authors.
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

// Package cast converts loosely typed Go values into SQL values.
package cast

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/rulego/udfsql/types"
	"github.com/spf13/cast"
)

// ToValue converts a Go value into a types.Value.
// Integers of any width become INT; whole floats and json.Number become INT;
// strings become TEXT; bools become BOOL; nil becomes NULL.
func ToValue(x any) (types.Value, error) {
	switch v := x.(type) {
	case nil:
		return types.Null, nil
	case types.Value:
		return v, nil
	case bool:
		return types.Bool(v), nil
	case string:
		return types.Text(v), nil
	case []byte:
		return types.Text(string(v)), nil
	case float32:
		return floatValue(float64(v))
	case float64:
		return floatValue(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return types.Null, fmt.Errorf("cannot convert %s to INT: %w", v.String(), err)
		}
		return types.Int(i), nil
	case uint64:
		if v > math.MaxInt64 {
			return types.Null, fmt.Errorf("value %d overflows INT", v)
		}
		return types.Int(int64(v)), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return types.Null, err
		}
		return types.Int(i), nil
	default:
		return types.Null, fmt.Errorf("unsupported value type %T", x)
	}
}

// MustValue is like ToValue but panics on failure
func MustValue(x any) types.Value {
	v, err := ToValue(x)
	if err != nil {
		panic(err)
	}
	return v
}

// ToValues converts a slice of Go values.
func ToValues(xs []any) ([]types.Value, error) {
	out := make([]types.Value, len(xs))
	for i, x := range xs {
		v, err := ToValue(x)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ToValueAs converts x and then coerces it to the wanted type. Used for
// results of native functions and for typed table columns, where the Go
// value type is not under our control (e.g. int vs int64, "1" for INT).
func ToValueAs(x any, want types.DataType) (types.Value, error) {
	if x == nil {
		return types.Null, nil
	}
	switch want {
	case types.TypeInt:
		i, err := cast.ToInt64E(x)
		if err != nil {
			return types.Null, fmt.Errorf("cannot convert %v (%T) to INT", x, x)
		}
		return types.Int(i), nil
	case types.TypeText:
		s, err := cast.ToStringE(x)
		if err != nil {
			return types.Null, fmt.Errorf("cannot convert %v (%T) to TEXT", x, x)
		}
		return types.Text(s), nil
	case types.TypeBool:
		b, err := cast.ToBoolE(x)
		if err != nil {
			return types.Null, fmt.Errorf("cannot convert %v (%T) to BOOL", x, x)
		}
		return types.Bool(b), nil
	default:
		return ToValue(x)
	}
}

func floatValue(f float64) (types.Value, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return types.Null, fmt.Errorf("non-integer number %v is not supported", f)
	}
	// float64(math.MaxInt64) 等于 2^63，已超出 int64 范围
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return types.Null, fmt.Errorf("number %v is out of INT range", f)
	}
	return types.Int(int64(f)), nil
}
