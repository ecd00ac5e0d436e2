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
Package expr defines the executable intermediate form produced by the
compiler: resolved expression trees and function-body statements.

# Expressions

Identifiers are already bound when an Expr exists. Inside a function body a
name is a ParamRef; inside a query it is a ColumnRef:

	Literal       constant value
	ColumnRef     column of the current row
	ParamRef      parameter of the current call frame
	BinaryOp      arithmetic, comparison, AND / OR
	UnaryOp       unary minus, NOT
	IsNull        x IS [NOT] NULL
	FunctionCall  call resolved through the function registry at run time

# Statements

A function body is a Statement tree:

	Sequence  children run in order until one returns
	If        Cond, Then, optional Else
	Return    produces the invocation result

Trees are acyclic and exclusively owned by their parent. They are never
mutated after compilation, so one compiled body can be evaluated by many
queries at once.
*/
package expr
