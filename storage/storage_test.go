package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rulego/udfsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, src RowSource) [][]types.Value {
	t.Helper()
	var out [][]types.Value
	for {
		row, err := src.Next(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, row.Values)
	}
}

func TestMemoryTable(t *testing.T) {
	tbl := NewMemoryTable("products", "name", "price")
	require.NoError(t, tbl.Insert("widget", 10))
	require.NoError(t, tbl.Insert("gadget", int64(7)))
	assert.Equal(t, 2, tbl.Len())

	err := tbl.Insert("only name")
	assert.Error(t, err)
	err = tbl.Insert("bad", 1.5)
	assert.Error(t, err)
	assert.Equal(t, 2, tbl.Len())

	src, err := tbl.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "price"}, src.Columns())

	// 扫描开始后的插入不可见
	require.NoError(t, tbl.Insert("gizmo", 150))
	rows := drain(t, src)
	require.Len(t, rows, 2)
	assert.Equal(t, []types.Value{types.Text("gadget"), types.Int(7)}, rows[1])

	_, err = src.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestSliceSourceRaggedRow(t *testing.T) {
	ctx := context.Background()
	src := NewSliceSource([]string{"a", "b"}, [][]types.Value{
		{types.Int(1), types.Int(2)},
		{types.Int(3)},
	})

	row, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Value{types.Int(1), types.Int(2)}, row.Values)

	_, err = src.Next(ctx)
	assert.EqualError(t, err, "row 1 has 1 values for 2 columns")

	_, err = src.Next(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestLoadJSONTable(t *testing.T) {
	tbl, err := LoadJSONTable(filepath.Join("testdata", "tables", "products.json"))
	require.NoError(t, err)
	assert.Equal(t, "products", tbl.Name())
	assert.Equal(t, []string{"name", "price", "in_stock"}, tbl.Columns())
	assert.Equal(t, 4, tbl.Len())

	src, err := tbl.Scan(context.Background())
	require.NoError(t, err)
	rows := drain(t, src)
	assert.Equal(t, []types.Value{types.Text("widget"), types.Int(10), types.Bool(true)}, rows[0])
	assert.True(t, rows[3][1].IsNull())

	unnamed, err := LoadJSONTable(filepath.Join("testdata", "tables", "unnamed.json"))
	require.NoError(t, err)
	assert.Equal(t, "unnamed", unnamed.Name())
}

func TestLoadJSONTableErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name    string
		path    string
		message string
	}{
		{"missing file", filepath.Join(dir, "none.json"), "read json table"},
		{"invalid json", write("invalid.json", "{"), "decode json table"},
		{"no columns", write("nocols.json", `{"name":"x","rows":[]}`), "no columns"},
		{"float value", filepath.Join("testdata", "broken", "bad.json"), "row 0"},
		{"row arity", write("arity.json", `{"columns":["a","b"],"rows":[[1]]}`), "1 values for 2 columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadJSONTable(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestJSONTableSave(t *testing.T) {
	dir := t.TempDir()
	tbl := NewJSONTable("people", "id", "name")
	require.NoError(t, tbl.Insert(1, "Alice"))
	require.NoError(t, tbl.Insert(2, nil))
	require.NoError(t, tbl.Save(context.Background(), dir))
	assert.Equal(t, filepath.Join(dir, "people.json"), tbl.Path())

	loaded, err := LoadJSONTable(tbl.Path())
	require.NoError(t, err)
	src, err := loaded.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]types.Value{
		{types.Int(1), types.Text("Alice")},
		{types.Int(2), types.Null},
	}, drain(t, src))
}

func newSQLiteDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE products (name TEXT, price INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO products VALUES ('widget', 10), ('gadget', 7), ('mystery', NULL)`)
	require.NoError(t, err)
	return path
}

func TestSQLiteTable(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(newSQLiteDB(t))
	require.NoError(t, err)
	defer db.Close()

	tbl, err := OpenSQLiteTable(ctx, db, "", "products")
	require.NoError(t, err)
	assert.Equal(t, "products", tbl.Name())
	assert.Equal(t, []string{"name", "price"}, tbl.Columns())

	src, err := tbl.Scan(ctx)
	require.NoError(t, err)
	rows := drain(t, src)
	assert.Equal(t, [][]types.Value{
		{types.Text("widget"), types.Int(10)},
		{types.Text("gadget"), types.Int(7)},
		{types.Text("mystery"), types.Null},
	}, rows)
	require.NoError(t, src.(io.Closer).Close())

	// 表可以重复扫描
	src, err = tbl.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, drain(t, src), 3)

	aliased, err := OpenSQLiteTable(ctx, db, "items", "products")
	require.NoError(t, err)
	assert.Equal(t, "items", aliased.Name())

	_, err = OpenSQLiteTable(ctx, db, "", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestSQLiteSourceCloseEarly(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(newSQLiteDB(t))
	require.NoError(t, err)
	defer db.Close()

	tbl, err := OpenSQLiteTable(ctx, db, "", "products")
	require.NoError(t, err)
	src, err := tbl.Scan(ctx)
	require.NoError(t, err)
	_, err = src.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, src.(io.Closer).Close())

	_, err = src.Next(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	c.Register(NewMemoryTable("Products", "name"))

	tbl, err := c.Lookup("products")
	require.NoError(t, err)
	assert.Equal(t, "Products", tbl.Name())

	_, err = c.Lookup("orders")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
	assert.Contains(t, err.Error(), "table orders")

	assert.Equal(t, []string{"Products"}, c.Names())
	assert.True(t, c.Drop("PRODUCTS"))
	assert.False(t, c.Drop("products"))
	assert.Empty(t, c.Names())
}

func TestCatalogLoadDir(t *testing.T) {
	c := NewCatalog()
	names, err := c.LoadDir(context.Background(), filepath.Join("testdata", "tables"))
	require.NoError(t, err)
	assert.Equal(t, []string{"products", "unnamed", "users"}, names)
	assert.Equal(t, []string{"products", "unnamed", "users"}, c.Names())

	users, err := c.Lookup("USERS")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age"}, users.Columns())
}

func TestCatalogLoadDirFailure(t *testing.T) {
	c := NewCatalog()
	_, err := c.LoadDir(context.Background(), filepath.Join("testdata", "broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
	// 任一文件失败时不注册任何表
	assert.Empty(t, c.Names())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.LoadDir(ctx, filepath.Join("testdata", "tables"))
	assert.Error(t, err)
}
