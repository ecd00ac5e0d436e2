package query

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rulego/udfsql/eval"
	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/storage"
	"github.com/rulego/udfsql/types"
)

// Stats counts the work done by a query so far.
type Stats struct {
	Scanned int
	Emitted int
	Skipped int
}

// Rows is the lazy result of a SELECT. Each call to Next pulls source rows
// until one passes the filter, then projects it. Rows is single pass and
// not safe for concurrent use.
type Rows struct {
	ctx     context.Context
	ev      *eval.Evaluator
	plan    *Plan
	src     storage.RowSource
	opts    Options
	columns []string

	values []types.Value
	err    error
	done   bool
	stats  Stats
}

// Run starts executing plan over src. Nothing is read from src until the
// first call to Next.
func Run(ctx context.Context, ev *eval.Evaluator, plan *Plan, src storage.RowSource, opts ...Option) *Rows {
	o := Options{Logger: logger.NewDiscardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	r := &Rows{ctx: ctx, ev: ev, plan: plan, src: src, opts: o}
	if plan.Star {
		r.columns = append([]string(nil), src.Columns()...)
	} else {
		r.columns = plan.ColumnNames()
	}
	return r
}

// Columns returns the output column names.
func (r *Rows) Columns() []string {
	return r.columns
}

// Next advances to the next output row. It returns false at the end of the
// scan or after a failure; check Err to tell them apart.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}
	for {
		if err := r.ctx.Err(); err != nil {
			r.fail(err)
			return false
		}
		row, err := r.src.Next(r.ctx)
		if err == io.EOF {
			r.finish()
			return false
		}
		if err == nil && len(row.Values) != len(row.Columns) {
			err = fmt.Errorf("row %d has %d values for %d columns", r.stats.Scanned, len(row.Values), len(row.Columns))
		}
		if err != nil {
			r.fail(fmt.Errorf("read table %s: %w", r.plan.Table, err))
			return false
		}
		index := r.stats.Scanned
		r.stats.Scanned++

		values, ok, err := r.process(row)
		if err != nil {
			rowErr := &RowError{Index: index, Row: row, Err: err}
			if r.opts.Policy == ErrorPolicySkip {
				r.stats.Skipped++
				r.opts.Logger.Warn("query %s: skip %v", r.opts.QueryID, rowErr)
				if r.opts.OnRowError != nil {
					r.opts.OnRowError(rowErr)
				}
				continue
			}
			r.fail(rowErr)
			return false
		}
		if !ok {
			continue
		}
		r.values = values
		r.stats.Emitted++
		return true
	}
}

// process filters and projects one row. ok is false when the WHERE clause
// is FALSE or NULL.
func (r *Rows) process(row types.Row) (values []types.Value, ok bool, err error) {
	if r.plan.Where != nil {
		cond, err := r.ev.Evaluate(r.plan.Where, row, nil)
		if err != nil {
			return nil, false, err
		}
		if cond.IsNull() {
			return nil, false, nil
		}
		b, isBool := cond.AsBool()
		if !isBool {
			return nil, false, &eval.EvalError{
				Code:   eval.ErrTypeMismatch,
				Detail: fmt.Sprintf("WHERE clause must be BOOL, got %s", cond.Type()),
			}
		}
		if !b {
			return nil, false, nil
		}
	}

	if r.plan.Star {
		return append([]types.Value(nil), row.Values...), true, nil
	}
	values = make([]types.Value, len(r.plan.Columns))
	for i, c := range r.plan.Columns {
		v, err := r.ev.Evaluate(c.Expr, row, nil)
		if err != nil {
			return nil, false, err
		}
		values[i] = v
	}
	return values, true, nil
}

// Values returns the current output row. The slice is owned by the caller.
func (r *Rows) Values() []types.Value {
	return r.values
}

// Row returns the current output row with its column names.
func (r *Rows) Row() types.Row {
	return types.Row{Columns: r.columns, Values: r.values}
}

// Err returns the error that ended the scan, if any.
func (r *Rows) Err() error {
	return r.err
}

// Stats returns the counters of the scan so far.
func (r *Rows) Stats() Stats {
	return r.stats
}

// Close stops the scan and releases the row source. Remaining rows are
// never evaluated.
func (r *Rows) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	r.values = nil
	return r.closeSource()
}

// All drains the remaining rows.
func (r *Rows) All() ([][]types.Value, error) {
	defer r.Close()
	var out [][]types.Value
	for r.Next() {
		out = append(out, r.Values())
	}
	return out, r.Err()
}

func (r *Rows) finish() {
	r.done = true
	r.values = nil
	if err := r.closeSource(); err != nil {
		r.err = err
	}
	r.opts.Logger.Debug("query %s: scanned=%d emitted=%d skipped=%d",
		r.opts.QueryID, r.stats.Scanned, r.stats.Emitted, r.stats.Skipped)
}

func (r *Rows) fail(err error) {
	r.err = err
	r.done = true
	r.values = nil
	_ = r.closeSource()
	if !errors.Is(err, context.Canceled) {
		r.opts.Logger.Error("query %s: %v", r.opts.QueryID, err)
	}
}

func (r *Rows) closeSource() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
