package storage

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rulego/udfsql/types"
	"github.com/rulego/udfsql/utils/cast"
)

// MemoryTable 内存表
type MemoryTable struct {
	name    string
	columns []string

	mu   sync.RWMutex
	rows [][]types.Value
}

// NewMemoryTable creates an empty table.
func NewMemoryTable(name string, columns ...string) *MemoryTable {
	return &MemoryTable{name: name, columns: columns}
}

func (t *MemoryTable) Name() string      { return t.name }
func (t *MemoryTable) Columns() []string { return t.columns }

// Insert appends a row of Go values converted with cast.ToValue.
func (t *MemoryTable) Insert(values ...any) error {
	row, err := cast.ToValues(values)
	if err != nil {
		return errors.Wrapf(err, "insert into %s", t.name)
	}
	return t.InsertValues(row...)
}

// InsertValues appends a row of SQL values.
func (t *MemoryTable) InsertValues(values ...types.Value) error {
	if len(values) != len(t.columns) {
		return errors.Errorf("insert into %s: %d values for %d columns", t.name, len(values), len(t.columns))
	}
	t.mu.Lock()
	t.rows = append(t.rows, values)
	t.mu.Unlock()
	return nil
}

// Len returns the number of rows.
func (t *MemoryTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Scan iterates over the rows present when Scan is called; later inserts
// are not visible to the returned source.
func (t *MemoryTable) Scan(ctx context.Context) (RowSource, error) {
	t.mu.RLock()
	rows := t.rows[:len(t.rows):len(t.rows)]
	t.mu.RUnlock()
	return NewSliceSource(t.columns, rows), nil
}
