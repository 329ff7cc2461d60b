package script

type Program struct {
	Path  string
	Stmts []Stmt
}

type Stmt interface {
	stmtNode()
	Pos() Pos
	String() string
}

type Expr interface {
	exprNode()
	Pos() Pos
	String() string
}

type ExprStmt struct {
	P Pos
	X Expr
}

func (*ExprStmt) stmtNode()  {}
func (s *ExprStmt) Pos() Pos { return s.P }

type PrintStmt struct {
	P Pos
	X Expr
}

func (*PrintStmt) stmtNode()  {}
func (s *PrintStmt) Pos() Pos { return s.P }

type ReturnStmt struct {
	P Pos
	X Expr
}

func (*ReturnStmt) stmtNode()  {}
func (s *ReturnStmt) Pos() Pos { return s.P }

type BlockStmt struct {
	P     Pos
	Stmts []Stmt
}

func (*BlockStmt) stmtNode()  {}
func (s *BlockStmt) Pos() Pos { return s.P }

type IfStmt struct {
	P    Pos
	Cond Expr
	Then *BlockStmt
	Else *BlockStmt
}

func (*IfStmt) stmtNode()  {}
func (s *IfStmt) Pos() Pos { return s.P }

type Ident struct {
	P    Pos
	Name string
}

func (*Ident) exprNode()  {}
func (e *Ident) Pos() Pos { return e.P }

type NumberLit struct {
	P     Pos
	Value float64
}

func (*NumberLit) exprNode()  {}
func (e *NumberLit) Pos() Pos { return e.P }

// StringLit owns the text handle shared by every evaluation of the literal.
type StringLit struct {
	P    Pos
	Text *Text
}

func (*StringLit) exprNode()  {}
func (e *StringLit) Pos() Pos { return e.P }

type PrefixExpr struct {
	P     Pos
	Op    Operator
	Right Expr
}

func (*PrefixExpr) exprNode()  {}
func (e *PrefixExpr) Pos() Pos { return e.P }

type InfixExpr struct {
	P     Pos
	Left  Expr
	Op    Operator
	Right Expr
}

func (*InfixExpr) exprNode()  {}
func (e *InfixExpr) Pos() Pos { return e.P }

// PostfixExpr is never produced by the parser; evaluating one is an
// UnsupportedFeature error.
type PostfixExpr struct {
	P    Pos
	Left Expr
	Op   Operator
}

func (*PostfixExpr) exprNode()  {}
func (e *PostfixExpr) Pos() Pos { return e.P }
