package expr

import "strings"

// Statement is a node of a compiled function body.
type Statement interface {
	String() string
	stmtNode()
}

// Sequence runs its children in order until one of them returns.
type Sequence struct {
	Stmts []Statement
}

// If runs Then when Cond is TRUE, otherwise Else. Else is nil when the
// source had no ELSE branch.
type If struct {
	Cond Expr
	Then Statement
	Else Statement
}

// Return ends the invocation with the value of Value.
type Return struct {
	Value Expr
}

func (*Sequence) stmtNode() {}
func (*If) stmtNode()       {}
func (*Return) stmtNode()   {}

func (s *Sequence) String() string {
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String() + ";"
	}
	return strings.Join(parts, " ")
}

func (s *If) String() string {
	var sb strings.Builder
	sb.WriteString("IF ")
	sb.WriteString(s.Cond.String())
	sb.WriteString(" THEN ")
	sb.WriteString(s.Then.String())
	if s.Else != nil {
		sb.WriteString(" ELSE ")
		sb.WriteString(s.Else.String())
	}
	sb.WriteString(" END IF")
	return sb.String()
}

func (s *Return) String() string {
	return "RETURN " + s.Value.String()
}
