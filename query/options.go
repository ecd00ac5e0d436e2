package query

import (
	"fmt"
	"strings"

	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/types"
)

// ErrorPolicy decides what a query does when evaluating one row fails.
type ErrorPolicy int

const (
	// ErrorPolicyAbort stops the query at the first failing row; Rows.Err reports it.
	ErrorPolicyAbort ErrorPolicy = iota
	// ErrorPolicySkip drops the failing row, reports it to the row error
	// handler and keeps scanning.
	ErrorPolicySkip
)

func (p ErrorPolicy) String() string {
	switch p {
	case ErrorPolicyAbort:
		return "abort"
	case ErrorPolicySkip:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseErrorPolicy parses "abort" or "skip".
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return ErrorPolicyAbort, nil
	case "skip":
		return ErrorPolicySkip, nil
	default:
		return ErrorPolicyAbort, fmt.Errorf("invalid error policy %q, expected abort or skip", s)
	}
}

// RowErrorHandler receives rows dropped under ErrorPolicySkip.
type RowErrorHandler func(err *RowError)

// RowError is the failure of a single source row.
type RowError struct {
	// Index is the zero-based position of the row in the scan
	Index int
	Row   types.Row
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Options 查询执行配置
type Options struct {
	Policy     ErrorPolicy
	OnRowError RowErrorHandler
	Logger     logger.Logger
	// QueryID tags log lines of one execution
	QueryID string
}

// Option configures a query run.
type Option func(*Options)

// WithErrorPolicy sets the per-row error policy
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithRowErrorHandler sets the callback for skipped rows
func WithRowErrorHandler(h RowErrorHandler) Option {
	return func(o *Options) { o.OnRowError = h }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithQueryID sets the id printed in log lines
func WithQueryID(id string) Option {
	return func(o *Options) { o.QueryID = id }
}
