package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rulego/udfsql/utils/cast"
)

// jsonTableFile is the on-disk layout of a JSON table:
//
//	{"name": "products", "columns": ["name", "price"], "rows": [["widget", 10]]}
type jsonTableFile struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// JSONTable is a table loaded from a JSON file. Rows are held in memory.
type JSONTable struct {
	*MemoryTable
	path string
}

// Path returns the file the table was loaded from, or "" for new tables.
func (t *JSONTable) Path() string {
	return t.path
}

// NewJSONTable creates an empty JSON table.
func NewJSONTable(name string, columns ...string) *JSONTable {
	return &JSONTable{MemoryTable: NewMemoryTable(name, columns...)}
}

// LoadJSONTable reads a table file. When the file has no name the file
// name without extension is used.
func LoadJSONTable(path string) (*JSONTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read json table")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var file jsonTableFile
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrapf(err, "decode json table %s", path)
	}
	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(file.Columns) == 0 {
		return nil, errors.Errorf("json table %s: no columns", path)
	}

	t := &JSONTable{MemoryTable: NewMemoryTable(file.Name, file.Columns...), path: path}
	for i, raw := range file.Rows {
		values, err := cast.ToValues(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "json table %s: row %d", path, i)
		}
		if err := t.InsertValues(values...); err != nil {
			return nil, errors.Wrapf(err, "json table %s: row %d", path, i)
		}
	}
	return t, nil
}

// Save writes the table to dir/<name>.json.
func (t *JSONTable) Save(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create table dir")
	}
	file := jsonTableFile{Name: t.Name(), Columns: t.Columns(), Rows: [][]any{}}
	src, err := t.Scan(ctx)
	if err != nil {
		return err
	}
	for {
		row, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		raw := make([]any, len(row.Values))
		for i, v := range row.Values {
			raw[i] = v.Any()
		}
		file.Rows = append(file.Rows, raw)
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode json table")
	}
	path := filepath.Join(dir, t.Name()+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write json table %s", path)
	}
	t.path = path
	return nil
}

var _ Table = (*JSONTable)(nil)
