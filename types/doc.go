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
Package types provides the scalar value model shared by every udfsql package.

# Values

A Value is a tagged union over INT, TEXT, BOOL and NULL. The zero Value is
NULL, so uninitialised slots read as NULL:

	v := types.Int(42)
	n, ok := v.AsInt() // 42, true
	types.Null.IsNull() // true

# Declared types

Function parameters and return types are declared with keywords resolved by
ParseDataType. Synonyms are accepted:

	INT | INTEGER
	TEXT | VARCHAR | STRING
	BOOL | BOOLEAN

# Rows

A Row is the read-only input record handed to the evaluator by a row source.
Column lookup is case-insensitive:

	row := types.NewRow([]string{"name", "price"}, types.Text("pen"), types.Int(3))
	price, _ := row.Get("PRICE")
*/
package types
