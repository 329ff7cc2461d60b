package script

import (
	"strconv"
	"strings"
)

// String renders the program as one S-expression per statement.
func (p *Program) String() string {
	if p == nil {
		return ""
	}
	lines := make([]string, 0, len(p.Stmts))
	for _, st := range p.Stmts {
		lines = append(lines, st.String())
	}
	return strings.Join(lines, "\n")
}

func (s *ExprStmt) String() string   { return s.X.String() }
func (s *PrintStmt) String() string  { return "(print " + s.X.String() + ")" }
func (s *ReturnStmt) String() string { return "(return " + s.X.String() + ")" }

func (s *BlockStmt) String() string {
	if len(s.Stmts) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(s.Stmts))
	for _, st := range s.Stmts {
		parts = append(parts, st.String())
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func (s *IfStmt) String() string {
	out := "(if " + s.Cond.String() + " " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out + ")"
}

func (e *Ident) String() string     { return e.Name }
func (e *NumberLit) String() string { return FormatNumber(e.Value) }
func (e *StringLit) String() string { return strconv.Quote(e.Text.String()) }

func (e *PrefixExpr) String() string {
	return "(" + e.Op.String() + " " + e.Right.String() + ")"
}

func (e *InfixExpr) String() string {
	return "(" + e.Op.String() + " " + e.Left.String() + " " + e.Right.String() + ")"
}

func (e *PostfixExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + ")"
}
