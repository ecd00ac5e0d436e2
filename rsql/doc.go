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
Package rsql provides the lexer and recursive-descent parser for udfsql.

The parser produces an unresolved syntax tree: every identifier is a NameRef,
and later stages decide whether it names a function parameter or a table
column.

# Supported statements

	CREATE [OR REPLACE] FUNCTION name(param type, ...) RETURNS type
	BEGIN
	    IF expr THEN stmt* [ELSE stmt*] END IF;
	    RETURN expr;
	END;

	SELECT expr [AS alias], ... | * FROM table [WHERE expr];

	DROP FUNCTION [IF EXISTS] name;

# Expressions

Operator precedence, lowest first:

	OR
	AND
	NOT
	= != <> < <= > >=   IS [NOT] NULL
	+ -
	* /
	unary -
	literals, names, calls, parentheses

# Errors

Every failure is a *ParseError carrying the offending token and its line and
column. Parser.Next skips to the next statement after an error, so a script
can report several broken statements in one pass:

	p := rsql.NewParser(script)
	for {
		stmt, err := p.Next()
		if err == io.EOF {
			break
		}
		...
	}
*/
package rsql
