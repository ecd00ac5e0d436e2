package query

import (
	"fmt"
	"strings"

	"github.com/rulego/udfsql/expr"
)

// Column is one projected output column.
type Column struct {
	Name string
	Expr expr.Expr
}

// Plan is a compiled SELECT: a single table scan, an optional filter and a
// projection list. Star plans emit every source column unchanged.
type Plan struct {
	Table   string
	Star    bool
	Columns []Column
	// Where is nil when the statement has no WHERE clause
	Where  expr.Expr
	Source string
}

// ColumnNames returns the output names of a non-star plan.
func (p *Plan) ColumnNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}

func (p *Plan) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if p.Star {
		sb.WriteString("*")
	} else {
		parts := make([]string, len(p.Columns))
		for i, c := range p.Columns {
			parts[i] = fmt.Sprintf("%s AS %s", c.Expr, c.Name)
		}
		sb.WriteString(strings.Join(parts, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(p.Table)
	if p.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(p.Where.String())
	}
	return sb.String()
}
