package storage

import (
	"context"
	"database/sql"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rulego/udfsql/types"
	"github.com/rulego/udfsql/utils/cast"

	_ "modernc.org/sqlite"
)

// SQLiteDriver is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriver = "sqlite"

// OpenSQLite opens a SQLite database file. Use ":memory:" for a private
// in-memory database.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(SQLiteDriver, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	return db, nil
}

// SQLiteTable reads an existing table of a SQLite database. Each scan runs
// SELECT * and streams the result set.
type SQLiteTable struct {
	db      *sql.DB
	name    string
	table   string
	columns []string
}

// OpenSQLiteTable binds table of db under the given name. An empty name
// uses the SQLite table name.
func OpenSQLiteTable(ctx context.Context, db *sql.DB, name, table string) (*SQLiteTable, error) {
	if name == "" {
		name = table
	}
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, errors.Wrapf(err, "inspect sqlite table %s", table)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, errors.Wrapf(err, "inspect sqlite table %s", table)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "inspect sqlite table %s", table)
	}
	if len(columns) == 0 {
		return nil, errors.Wrapf(ErrTableNotFound, "sqlite table %s", table)
	}
	return &SQLiteTable{db: db, name: name, table: table, columns: columns}, nil
}

func (t *SQLiteTable) Name() string      { return t.name }
func (t *SQLiteTable) Columns() []string { return t.columns }

func (t *SQLiteTable) Scan(ctx context.Context) (RowSource, error) {
	rows, err := t.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(t.table))
	if err != nil {
		return nil, errors.Wrapf(err, "scan sqlite table %s", t.table)
	}
	return &sqlRowsSource{rows: rows, columns: t.columns, table: t.table}, nil
}

// sqlRowsSource converts database/sql rows lazily.
type sqlRowsSource struct {
	rows    *sql.Rows
	columns []string
	table   string
	closed  bool
}

func (s *sqlRowsSource) Columns() []string {
	return s.columns
}

func (s *sqlRowsSource) Next(ctx context.Context) (types.Row, error) {
	if s.closed {
		return types.Row{}, io.EOF
	}
	if !s.rows.Next() {
		err := s.rows.Err()
		_ = s.Close()
		if err != nil {
			return types.Row{}, errors.Wrapf(err, "scan sqlite table %s", s.table)
		}
		return types.Row{}, io.EOF
	}
	raw := make([]any, len(s.columns))
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return types.Row{}, errors.Wrapf(err, "scan sqlite table %s", s.table)
	}
	values, err := cast.ToValues(raw)
	if err != nil {
		return types.Row{}, errors.Wrapf(err, "sqlite table %s", s.table)
	}
	return types.Row{Columns: s.columns, Values: values}, nil
}

func (s *sqlRowsSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.rows.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
