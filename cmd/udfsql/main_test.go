package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/rulego/udfsql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var c cli
	var stdout, stderr bytes.Buffer
	parser, err := kong.New(&c, append(kongOptions(), kong.Writers(&stdout, &stderr))...)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = ctx.Run(&c.Globals)
	return stdout.String(), err
}

func TestStatementComplete(t *testing.T) {
	tests := []struct {
		input    string
		complete bool
	}{
		{"SELECT 1 FROM t;", true},
		{"SELECT 1 FROM t", false},
		{"SELECT 1\nFROM t;", true},
		{"SELECT 'a;b' FROM t", false},
		{"SELECT 1 FROM t; -- trailing", true},
		{"CREATE FUNCTION f(x INT) RETURNS INT\nBEGIN\n RETURN x;", false},
		{"CREATE FUNCTION f(x INT) RETURNS INT\nBEGIN\n RETURN x;\nEND;", true},
		{"CREATE FUNCTION f(x INT) RETURNS INT BEGIN IF x > 0 THEN RETURN 1; END IF;", false},
		{"CREATE FUNCTION f(x INT) RETURNS INT BEGIN IF x > 0 THEN RETURN 1; END IF; RETURN 0; END;", true},
		{"DROP FUNCTION IF EXISTS f;", true},
		{"SELECT 'unterminated", true},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.complete, statementComplete(tt.input))
		})
	}
}

func TestSessionMultiLine(t *testing.T) {
	var out bytes.Buffer
	e := udfsql.New(udfsql.WithDiscardLog())
	s := newSession(e, &out, false)
	ctx := context.Background()

	lines := []string{
		"CREATE FUNCTION sign(x INT) RETURNS INT",
		"BEGIN",
		"  IF x > 0 THEN",
		"    RETURN 1;",
		"  END IF;",
		"  RETURN 0;",
		"END;",
	}
	assert.Equal(t, prompt, s.prompt())
	for i, line := range lines {
		stmt, more := s.handleLine(ctx, line)
		assert.True(t, more)
		if i < len(lines)-1 {
			assert.Empty(t, stmt)
			assert.Equal(t, continuationPrompt, s.prompt())
		} else {
			assert.Equal(t, strings.Join(lines, "\n"), stmt)
		}
	}
	assert.Equal(t, prompt, s.prompt())
	assert.Contains(t, out.String(), "Created function: sign(x INT) RETURNS INT")

	_, ok := e.Registry().Lookup("SIGN")
	assert.True(t, ok)
}

func TestSessionReset(t *testing.T) {
	var out bytes.Buffer
	s := newSession(udfsql.New(udfsql.WithDiscardLog()), &out, false)

	assert.False(t, s.reset())
	s.handleLine(context.Background(), "SELECT name")
	assert.True(t, s.reset())
	assert.Equal(t, prompt, s.prompt())
	assert.Empty(t, out.String())
}

func TestSessionCommands(t *testing.T) {
	var out bytes.Buffer
	e := udfsql.New(udfsql.WithDiscardLog(), udfsql.WithoutBuiltins())
	_, err := e.LoadTables(context.Background(), "../../testdata/tables")
	require.NoError(t, err)
	s := newSession(e, &out, false)
	ctx := context.Background()

	_, more := s.handleLine(ctx, ":help")
	assert.True(t, more)
	assert.Contains(t, out.String(), ":run <file>")

	out.Reset()
	s.handleLine(ctx, ":tables")
	assert.Equal(t, "products\nusers\n", out.String())

	out.Reset()
	s.handleLine(ctx, "run ../../testdata/scripts/functions.sql")
	assert.Contains(t, out.String(), "Created function: is_adult(age INT) RETURNS TEXT")
	assert.Contains(t, out.String(), "warning: RETURN")

	out.Reset()
	s.handleLine(ctx, ":functions")
	assert.Contains(t, out.String(), "user     price_div_two(price INT) RETURNS INT")
	assert.Contains(t, out.String(), "(4 functions)")

	out.Reset()
	s.handleLine(ctx, ":run")
	assert.Equal(t, "usage: :run <file>\n", out.String())

	out.Reset()
	s.handleLine(ctx, ":bogus")
	assert.Equal(t, "unknown command \"bogus\", type :help\n", out.String())

	out.Reset()
	s.handleLine(ctx, "SELECT name, is_adult(age) AS category FROM users WHERE id = 1;")
	assert.Contains(t, out.String(), "| Alice | adult    |")
	assert.Contains(t, out.String(), "(1 rows)")

	_, more = s.handleLine(ctx, "exit")
	assert.False(t, more)
}

func TestCompletions(t *testing.T) {
	e := udfsql.New(udfsql.WithDiscardLog(), udfsql.WithoutBuiltins())
	_, err := e.LoadTables(context.Background(), "../../testdata/tables")
	require.NoError(t, err)
	_, err = e.CompileFunction("CREATE FUNCTION is_adult(age INT) RETURNS BOOL BEGIN RETURN age >= 18; END")
	require.NoError(t, err)
	s := newSession(e, &bytes.Buffer{}, false)

	assert.Equal(t, []string{"SELECT"}, s.completions("sel"))
	assert.Equal(t, []string{"SELECT is_adult"}, s.completions("SELECT is_"))
	assert.Equal(t, []string{"SELECT name FROM users"}, s.completions("SELECT name FROM us"))
	assert.Nil(t, s.completions("SELECT "))
}

func TestPrintResultsDumpIR(t *testing.T) {
	var out bytes.Buffer
	e := udfsql.New(udfsql.WithDiscardLog())
	results := e.Execute(context.Background(), `
		CREATE FUNCTION half(x INT) RETURNS INT BEGIN RETURN x / 2; END;
		DROP FUNCTION IF EXISTS missing;
		SELECT nope FROM nowhere;`)

	failed := printResults(&out, results, true)
	assert.Equal(t, 1, failed)
	text := out.String()
	assert.Contains(t, text, "Created function: half(x INT) RETURNS INT")
	assert.Contains(t, text, "expr.Return")
	assert.Contains(t, text, "Function missing does not exist, skipped")
	assert.Contains(t, text, "Error: ")
}

func TestCLIVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "udfsql "+version+"\n", out)
}

func TestCLIRun(t *testing.T) {
	out, err := runCLI(t, "--log-level", "off", "--data", "../../testdata/tables",
		"run", "../../testdata/scripts/functions.sql", "../../testdata/scripts/queries.sql")
	require.Error(t, err)
	// kong 将 existingfile 参数解析为绝对路径
	queries, absErr := filepath.Abs("../../testdata/scripts/queries.sql")
	require.NoError(t, absErr)
	assert.Equal(t, queries+": 1 statements failed", err.Error())

	assert.Contains(t, out, "Created function: adult_code(age INT) RETURNS INT")
	assert.Contains(t, out, "| doohickey | NULL |")
	assert.Contains(t, out, "| Carol | adult    |")
	assert.Contains(t, out, "Error: row 0: eval error [ErrTypeMismatch]")
}

func TestCLISkipPolicy(t *testing.T) {
	out, err := runCLI(t, "--log-level", "off", "--on-error", "skip", "--data", "../../testdata/tables",
		"run", "../../testdata/scripts/functions.sql", "../../testdata/scripts/queries.sql")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped row 0: eval error [ErrTypeMismatch]")
}

func TestCLIConfig(t *testing.T) {
	t.Setenv("PEOPLE_FILE", "")
	out, err := runCLI(t, "--config", "../../config/testdata/udfsql.yaml", "--log-level", "off",
		"functions", "--type", "user")
	require.NoError(t, err)
	assert.Equal(t, "user     is_adult(age INT) RETURNS TEXT\n(1 functions)\n", out)
}

func TestCLIBadFlags(t *testing.T) {
	_, err := runCLI(t, "--log-level", "loud", "functions")
	assert.EqualError(t, err, `invalid log level "loud"`)

	_, err = runCLI(t, "--on-error", "ignore", "functions")
	assert.Error(t, err)
}
