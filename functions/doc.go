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
Package functions holds compiled function definitions and the registry that
maps names to them.

# Definitions

A FunctionDef is either a user function, whose Body is a statement tree
produced by the compiler, or a built-in whose Native implementation runs in
Go. Definitions are never modified after they are defined; CREATE OR REPLACE
installs a new FunctionDef under the same name.

# Registry

Names are case-insensitive and stored lower-cased. The registry is an
explicit object owned by an engine, so several engines in one process do not
share functions:

	reg := functions.NewRegistry()
	_ = functions.RegisterBuiltins(reg)
	def, ok := reg.Lookup("ABS")

Lookups read an immutable snapshot and take no lock. Define and Drop are
serialized and publish a new snapshot atomically.

# Built-in Functions

Built-ins are expr-lang expressions over their parameters:

	ABS(x INT) INT
	UPPER(s TEXT) TEXT
	LOWER(s TEXT) TEXT
	LENGTH(s TEXT) INT
	TRIM(s TEXT) TEXT
	CONCAT(a TEXT, b TEXT) TEXT
	GREATEST(a INT, b INT) INT
	LEAST(a INT, b INT) INT

NewExprFunction builds further native functions the same way.
*/
package functions
