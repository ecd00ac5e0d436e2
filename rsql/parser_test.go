package rsql

import (
	"errors"
	"io"
	"testing"

	"github.com/rulego/udfsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const isAdultSQL = `
CREATE FUNCTION is_adult(age INT) RETURNS TEXT
BEGIN
    IF age >= 18 THEN
        RETURN 'adult';
    ELSE
        RETURN 'child';
    END IF;
END;`

func TestParseCreateFunction(t *testing.T) {
	stmt, err := Parse(isAdultSQL)
	require.NoError(t, err)

	fn, ok := stmt.(*CreateFunctionStatement)
	require.True(t, ok, "got %T", stmt)
	assert.Equal(t, "is_adult", fn.Name)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "age", fn.Params[0].Name)
	assert.Equal(t, types.TypeInt, fn.Params[0].Type)
	assert.Equal(t, types.TypeText, fn.ReturnType)
	assert.False(t, fn.OrReplace)

	require.Len(t, fn.Body, 1)
	ifStmt, ok := fn.Body[0].(*IfStatement)
	require.True(t, ok)
	assert.Equal(t, "(age >= 18)", String(ifStmt.Cond))
	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.Else, 1)
	assert.Equal(t, "RETURN 'adult'", String(ifStmt.Then[0]))
	assert.Equal(t, "RETURN 'child'", String(ifStmt.Else[0]))
	assert.Contains(t, fn.Source, "CREATE FUNCTION is_adult")
}

func TestParseCreateFunctionVariants(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		params int
		ret    types.DataType
		body   string
	}{
		{
			name:   "simple return",
			sql:    "CREATE FUNCTION price_div_two(price INT) RETURNS INT BEGIN RETURN price/2; END",
			params: 1,
			ret:    types.TypeInt,
			body:   "RETURN (price / 2); ",
		},
		{
			name:   "lower case types and no semicolons",
			sql:    "create function add_numbers(a int, b int) returns int begin return a + b end",
			params: 2,
			ret:    types.TypeInt,
			body:   "RETURN (a + b); ",
		},
		{
			name:   "no parameters",
			sql:    "CREATE FUNCTION answer() RETURNS INT BEGIN RETURN 42; END",
			params: 0,
			ret:    types.TypeInt,
			body:   "RETURN 42; ",
		},
		{
			name:   "if without else",
			sql:    "CREATE FUNCTION pos(x INT) RETURNS BOOL BEGIN IF x > 0 THEN RETURN TRUE; END IF; RETURN FALSE; END",
			params: 1,
			ret:    types.TypeBool,
			body:   "IF (x > 0) THEN RETURN TRUE; END IF; RETURN FALSE; ",
		},
		{
			name:   "nested if",
			sql:    "CREATE FUNCTION grade(s INT) RETURNS TEXT BEGIN IF s >= 90 THEN RETURN 'A'; ELSE IF s >= 50 THEN RETURN 'B'; END IF; END IF; END",
			params: 1,
			ret:    types.TypeText,
			body:   "IF (s >= 90) THEN RETURN 'A'; ELSE IF (s >= 50) THEN RETURN 'B'; END IF; END IF; ",
		},
		{
			name:   "empty body",
			sql:    "CREATE FUNCTION nothing() RETURNS INT BEGIN END",
			params: 0,
			ret:    types.TypeInt,
			body:   "",
		},
		{
			name:   "type synonyms",
			sql:    "CREATE FUNCTION f(a INTEGER, b VARCHAR, c BOOLEAN) RETURNS BOOLEAN BEGIN RETURN c; END",
			params: 3,
			ret:    types.TypeBool,
			body:   "RETURN c; ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Parse(tt.sql)
			require.NoError(t, err)
			fn := stmt.(*CreateFunctionStatement)
			assert.Len(t, fn.Params, tt.params)
			assert.Equal(t, tt.ret, fn.ReturnType)
			var body string
			for _, st := range fn.Body {
				body += String(st) + "; "
			}
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestParseCreateOrReplace(t *testing.T) {
	stmt, err := Parse("CREATE OR REPLACE FUNCTION f() RETURNS INT BEGIN RETURN 1; END;")
	require.NoError(t, err)
	assert.True(t, stmt.(*CreateFunctionStatement).OrReplace)
}

func TestParseCreateFunctionErrors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		errType ErrorType
	}{
		{"missing END", "CREATE FUNCTION f(x INT) RETURNS INT BEGIN RETURN x;", ErrorTypeMissingToken},
		{"missing END IF", "CREATE FUNCTION f(x INT) RETURNS INT BEGIN IF x > 1 THEN RETURN 1; END", ErrorTypeMissingToken},
		{"missing END IF at eof", "CREATE FUNCTION f(x INT) RETURNS INT BEGIN IF x > 1 THEN RETURN 1;", ErrorTypeMissingToken},
		{"duplicate parameter", "CREATE FUNCTION f(x INT, X TEXT) RETURNS INT BEGIN RETURN 1; END", ErrorTypeDuplicateParameter},
		{"unknown parameter type", "CREATE FUNCTION f(x FLOAT) RETURNS INT BEGIN RETURN 1; END", ErrorTypeUnknownType},
		{"unknown return type", "CREATE FUNCTION f(x INT) RETURNS DATE BEGIN RETURN 1; END", ErrorTypeUnknownType},
		{"missing RETURNS", "CREATE FUNCTION f(x INT) BEGIN RETURN 1; END", ErrorTypeUnexpectedToken},
		{"missing THEN", "CREATE FUNCTION f(x INT) RETURNS INT BEGIN IF x RETURN 1; END IF; END", ErrorTypeUnexpectedToken},
		{"double ELSE", "CREATE FUNCTION f(x INT) RETURNS INT BEGIN IF x THEN RETURN 1; ELSE RETURN 2; ELSE RETURN 3; END IF; END", ErrorTypeUnexpectedToken},
		{"unsupported statement", "CREATE FUNCTION f(x INT) RETURNS INT BEGIN SET x = 1; END", ErrorTypeUnexpectedToken},
		{"unterminated string", "CREATE FUNCTION f() RETURNS TEXT BEGIN RETURN 'oops; END", ErrorTypeLexical},
		{"integer overflow", "CREATE FUNCTION f() RETURNS INT BEGIN RETURN 99999999999999999999; END", ErrorTypeInvalidNumber},
		{"trailing garbage", "CREATE FUNCTION f() RETURNS INT BEGIN RETURN 1 2; END", ErrorTypeUnexpectedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.sql)
			require.Error(t, err)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %T", err)
			assert.Equal(t, tt.errType, perr.Type, perr.Error())
			assert.Greater(t, perr.Line, 0)
		})
	}
}

func TestParseSelect(t *testing.T) {
	stmt, err := Parse("SELECT name, price_div_two(price) AS half FROM items WHERE is_expensive(price)")
	require.NoError(t, err)

	sel, ok := stmt.(*SelectStatement)
	require.True(t, ok)
	assert.Equal(t, "items", sel.From)
	require.Len(t, sel.Fields, 2)
	assert.Equal(t, "name", String(sel.Fields[0].Expr))
	assert.Equal(t, "", sel.Fields[0].Alias)
	assert.Equal(t, "price_div_two(price)", String(sel.Fields[1].Expr))
	assert.Equal(t, "half", sel.Fields[1].Alias)
	assert.Equal(t, "is_expensive(price)", String(sel.Where))
	assert.False(t, sel.Star)
}

func TestParseSelectStarAndImplicitAlias(t *testing.T) {
	stmt, err := Parse("select * from users")
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	assert.True(t, sel.Star)
	assert.Nil(t, sel.Where)

	stmt, err = Parse("SELECT age + 1 next_age FROM users")
	require.NoError(t, err)
	sel = stmt.(*SelectStatement)
	assert.Equal(t, "next_age", sel.Fields[0].Alias)
}

func TestParseSelectErrors(t *testing.T) {
	for _, sql := range []string{
		"SELECT FROM items",
		"SELECT name items",
		"SELECT name FROM",
		"SELECT name FROM items WHERE",
		"SELECT f(a, FROM items",
		"SELECT (a + 1 FROM items",
	} {
		t.Run(sql, func(t *testing.T) {
			_, err := Parse(sql)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "expected parse error for %q, got %v", sql, err)
		})
	}
}

func TestParseDropFunction(t *testing.T) {
	stmt, err := Parse("DROP FUNCTION IF EXISTS is_adult;")
	require.NoError(t, err)
	drop := stmt.(*DropFunctionStatement)
	assert.Equal(t, "is_adult", drop.Name)
	assert.True(t, drop.IfExists)

	stmt, err = Parse("DROP FUNCTION is_adult")
	require.NoError(t, err)
	assert.False(t, stmt.(*DropFunctionStatement).IfExists)
}

func TestParseExprPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a - b - c", "((a - b) - c)"},
		{"a / 2 >= 10", "((a / 2) >= 10)"},
		{"a = 1 AND b < 2 OR c > 3", "(((a = 1) AND (b < 2)) OR (c > 3))"},
		{"NOT a = 1", "NOT (a = 1)"},
		{"-5 * x", "(-5 * x)"},
		{"-(x)", "-x"},
		{"f(a, g(b + 1))", "f(a, g((b + 1)))"},
		{"x IS NOT NULL AND y IS NULL", "(x IS NOT NULL AND y IS NULL)"},
		{"a <> 'b'", "(a != 'b')"},
		{"flag = TRUE", "(flag = TRUE)"},
		{"-9223372036854775808", "-9223372036854775808"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := ParseExpr(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, String(e))
		})
	}
}

func TestParseExprNameRef(t *testing.T) {
	e, err := ParseExpr("price")
	require.NoError(t, err)
	ref, ok := e.(*NameRef)
	require.True(t, ok)
	assert.Equal(t, "price", ref.Name)
	assert.Equal(t, 1, ref.Pos().Column)
}

func TestParserRecovery(t *testing.T) {
	script := `
CREATE FUNCTION ok1(x INT) RETURNS INT BEGIN RETURN x; END;
CREATE FUNCTION bad(x INT) RETURNS INT BEGIN IF x THEN RETURN 1; END;
SELECT ok1(price) FROM items;
`
	p := NewParser(script)

	stmt, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "ok1", stmt.(*CreateFunctionStatement).Name)

	_, err = p.Next()
	require.Error(t, err)

	stmt, err = p.Next()
	require.NoError(t, err)
	assert.Equal(t, "SELECT ok1(price) FROM items", stmt.(*SelectStatement).Source)

	_, err = p.Next()
	assert.Equal(t, io.EOF, err)
}

func TestParseScript(t *testing.T) {
	stmts, err := ParseScript(isAdultSQL + "\nSELECT is_adult(age) FROM users;\n;")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.IsType(t, &CreateFunctionStatement{}, stmts[0])
	assert.IsType(t, &SelectStatement{}, stmts[1])

	_, err = Parse("  ")
	assert.Error(t, err)
}
