package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rulego/udfsql"
	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/query"
	"github.com/rulego/udfsql/storage"
	"github.com/rulego/udfsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""), "", noEnv)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, logger.WARN, cfg.LogLevel)
	assert.Equal(t, 64, cfg.MaxCallDepth)
	assert.True(t, cfg.Builtins)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "udfsql.yaml"), noEnv)
	require.NoError(t, err)

	base, err := filepath.Abs("testdata")
	require.NoError(t, err)
	assert.Equal(t, base, cfg.BaseDir)
	assert.Equal(t, logger.DEBUG, cfg.LogLevel)
	assert.Equal(t, query.ErrorPolicySkip, cfg.ErrorPolicy)
	assert.Equal(t, 16, cfg.MaxCallDepth)
	assert.False(t, cfg.Builtins)
	assert.Equal(t, filepath.Join(base, "tables"), cfg.DataDir)
	assert.Equal(t, []string{filepath.Join(base, "functions.sql")}, cfg.Scripts)
	assert.Equal(t, []TableConfig{{
		Name:   "people",
		Format: FormatJSON,
		Path:   filepath.Join(base, "tables", "users.json"),
		Table:  "people",
	}}, cfg.Tables)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.yaml"), noEnv)
	assert.ErrorContains(t, err, "failed to read config")
}

func TestEnvInterpolation(t *testing.T) {
	env := map[string]string{"DB": "/data/shop.db"}
	getenv := func(k string) string { return env[k] }

	cfg, err := Parse([]byte(`
tables:
  - name: orders
    format: SQLite
    path: ${DB}
  - name: users
    path: ${USERS:-users.json}
`), "/etc/udfsql", getenv)
	require.NoError(t, err)
	require.Len(t, cfg.Tables, 2)
	assert.Equal(t, TableConfig{Name: "orders", Format: FormatSQLite, Path: "/data/shop.db", Table: "orders"}, cfg.Tables[0])
	assert.Equal(t, filepath.Join("/etc/udfsql", "users.json"), cfg.Tables[1].Path)
}

func TestLooseScalars(t *testing.T) {
	tests := []struct {
		yaml     string
		depth    int
		builtins bool
	}{
		{"max_call_depth: 8\nbuiltins: false", 8, false},
		{"max_call_depth: '8'\nbuiltins: 'true'", 8, true},
		{"builtins: off", 64, false},
		{"builtins: yes", 64, true},
		{"builtins: 0", 64, false},
	}
	for _, tt := range tests {
		t.Run(tt.yaml, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml), "", noEnv)
			require.NoError(t, err)
			assert.Equal(t, tt.depth, cfg.MaxCallDepth)
			assert.Equal(t, tt.builtins, cfg.Builtins)
		})
	}
}

func TestValidation(t *testing.T) {
	_, err := Parse([]byte(`
log_level: loud
error_policy: retry
max_call_depth: 0
builtins: maybe
tables:
  - name: a
    format: csv
    path: a.csv
  - format: sqlite
    path: x.db
  - name: A
`), "", noEnv)
	require.Error(t, err)
	for _, want := range []string{
		"configuration errors:\n",
		`invalid log level "loud"`,
		`invalid error policy "retry", expected abort or skip`,
		"max_call_depth: must be positive, got 0",
		"builtins: ",
		`tables[0]: unknown format "csv", expected json or sqlite`,
		"tables[1]: sqlite tables need a name",
		"tables[2]: path is required",
		"tables[2]: duplicate table A",
	} {
		assert.Contains(t, err.Error(), want)
	}

	_, err = Parse([]byte("log_level: [1"), "", noEnv)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestOptionsAndTables(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "udfsql.yaml"), noEnv)
	require.NoError(t, err)
	cfg.LogLevel = logger.OFF

	catalog := storage.NewCatalog()
	closeTables, err := cfg.OpenTables(context.Background(), catalog)
	require.NoError(t, err)
	defer closeTables()
	assert.Equal(t, []string{"people", "users"}, catalog.Names())

	e := udfsql.New(append(cfg.Options(), udfsql.WithDiscardLog(), udfsql.WithCatalog(catalog))...)
	assert.Empty(t, e.Functions(), "builtins disabled")
	assert.Equal(t, 16, e.Evaluator().MaxCallDepth())

	script, err := os.ReadFile(cfg.Scripts[0])
	require.NoError(t, err)
	for _, r := range e.Execute(context.Background(), string(script)) {
		require.NoError(t, r.Err)
	}

	r, err := e.Exec(context.Background(), "SELECT name FROM people WHERE is_adult(age) = 'child'")
	require.NoError(t, err)
	assert.Equal(t, [][]types.Value{{types.Text("Bob")}, {types.Text("Dave")}}, r.Rows)
}

func TestOpenTablesSQLite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.db")
	db, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE orders (id INTEGER, amount INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO orders VALUES (1, 10)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg, err := Parse([]byte(`
tables:
  - name: orders
    format: sqlite
    path: shop.db
  - name: big_orders
    format: sqlite
    path: shop.db
    table: orders
  - name: missing
    format: sqlite
    path: shop.db
`), dir, noEnv)
	require.NoError(t, err)

	catalog := storage.NewCatalog()
	_, err = cfg.OpenTables(context.Background(), catalog)
	assert.ErrorIs(t, err, storage.ErrTableNotFound)

	cfg.Tables = cfg.Tables[:2]
	closeTables, err := cfg.OpenTables(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"big_orders", "orders"}, catalog.Names())
	assert.NoError(t, closeTables())
}
