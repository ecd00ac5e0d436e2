// Package storage provides the tables SELECT statements read from: in-memory
// tables, JSON table files and SQLite tables, plus a catalog that resolves
// table names.
package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rulego/udfsql/types"
)

// RowSource yields the rows of one scan. Next returns io.EOF after the
// last row. A source is single pass; sources holding resources also
// implement io.Closer.
type RowSource interface {
	Columns() []string
	Next(ctx context.Context) (types.Row, error)
}

// Table is a named relation that can be scanned any number of times.
type Table interface {
	Name() string
	Columns() []string
	Scan(ctx context.Context) (RowSource, error)
}

// SliceSource iterates over rows held in memory.
type SliceSource struct {
	columns []string
	rows    [][]types.Value
	pos     int
}

// NewSliceSource creates a source over rows. The slices are not copied.
func NewSliceSource(columns []string, rows [][]types.Value) *SliceSource {
	return &SliceSource{columns: columns, rows: rows}
}

func (s *SliceSource) Columns() []string {
	return s.columns
}

func (s *SliceSource) Next(ctx context.Context) (types.Row, error) {
	if s.pos >= len(s.rows) {
		return types.Row{}, io.EOF
	}
	values := s.rows[s.pos]
	s.pos++
	if len(values) != len(s.columns) {
		return types.Row{}, errors.Errorf("row %d has %d values for %d columns", s.pos-1, len(values), len(s.columns))
	}
	return types.Row{Columns: s.columns, Values: values}, nil
}
