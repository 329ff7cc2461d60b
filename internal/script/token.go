package script

import "fmt"

type Kind int

const (
	EOF Kind = iota
	ILLEGAL

	IDENT
	NUMBER
	STRING

	LPAREN
	RPAREN
	LBRACE
	RBRACE

	OPERATOR
	RESERVED
	NEWLINE
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case IDENT:
		return "IDENT"
	case NUMBER:
		return "NUMBER"
	case STRING:
		return "STRING"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case OPERATOR:
		return "OPERATOR"
	case RESERVED:
		return "RESERVED"
	case NEWLINE:
		return "NEWLINE"
	default:
		return "?"
	}
}

type Operator int

const (
	OpNone Operator = iota

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpEq
	OpNe
	OpIdentical
	OpGt
	OpGe
	OpLt
	OpLe

	OpAnd
	OpOr
	OpNot

	OpBitAnd
	OpBitOr

	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
)

var opText = map[Operator]string{
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpMod:       "%",
	OpEq:        "==",
	OpNe:        "!=",
	OpIdentical: "===",
	OpGt:        ">",
	OpGe:        ">=",
	OpLt:        "<",
	OpLe:        "<=",
	OpAnd:       "&&",
	OpOr:        "||",
	OpNot:       "!",
	OpBitAnd:    "&",
	OpBitOr:     "|",
	OpAssign:    "=",
	OpAddAssign: "+=",
	OpSubAssign: "-=",
	OpMulAssign: "*=",
	OpDivAssign: "/=",
	OpModAssign: "%=",
}

var opByText = func() map[string]Operator {
	out := make(map[string]Operator, len(opText))
	for op, s := range opText {
		out[s] = op
	}
	return out
}()

func (op Operator) String() string {
	if s, ok := opText[op]; ok {
		return s
	}
	return "?"
}

type Precedence int

const (
	Lowest Precedence = iota
	PrecAssign
	PrecLogicalOr
	PrecLogicalAnd
	PrecBitOr
	PrecBitAnd
	PrecEquality
	PrecCompare
	PrecSum
	PrecProduct
	PrecPrefix
	PrecPostfix
)

func (op Operator) Precedence() Precedence {
	switch op {
	case OpAssign, OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign, OpModAssign:
		return PrecAssign
	case OpOr:
		return PrecLogicalOr
	case OpAnd:
		return PrecLogicalAnd
	case OpBitOr:
		return PrecBitOr
	case OpBitAnd:
		return PrecBitAnd
	case OpEq, OpNe, OpIdentical:
		return PrecEquality
	case OpGt, OpGe, OpLt, OpLe:
		return PrecCompare
	case OpAdd, OpSub:
		return PrecSum
	case OpMul, OpDiv, OpMod:
		return PrecProduct
	case OpNot:
		return PrecPrefix
	default:
		return Lowest
	}
}

// IsInfix reports whether op may continue an expression as a binary operator.
func (op Operator) IsInfix() bool {
	return op != OpNone && op != OpNot
}

func (op Operator) IsPrefix() bool {
	return op == OpAdd || op == OpSub || op == OpNot
}

func (op Operator) IsAssign() bool {
	return op.Precedence() == PrecAssign
}

// Base returns the arithmetic operator behind a compound assignment.
func (op Operator) Base() Operator {
	switch op {
	case OpAddAssign:
		return OpAdd
	case OpSubAssign:
		return OpSub
	case OpMulAssign:
		return OpMul
	case OpDivAssign:
		return OpDiv
	case OpModAssign:
		return OpMod
	default:
		return OpNone
	}
}

type Reserved int

const (
	KwNone Reserved = iota
	KwPrint
	KwReturn
	KwIf
	KwElse
	KwFor
	KwFn
	KwTypeof
)

var kwText = map[Reserved]string{
	KwPrint:  "print",
	KwReturn: "return",
	KwIf:     "if",
	KwElse:   "else",
	KwFor:    "for",
	KwFn:     "fn",
	KwTypeof: "typeof",
}

func (k Reserved) String() string {
	if s, ok := kwText[k]; ok {
		return s
	}
	return "?"
}

// IsKeyword reports whether name is a reserved word.
func IsKeyword(name string) bool {
	for _, s := range kwText {
		if s == name {
			return true
		}
	}
	return false
}

type Tok struct {
	K   Kind
	Lit string
	N   float64
	Op  Operator
	Kw  Reserved
	P   Pos
}

func (t Tok) Is(k Kind) bool { return t.K == k }

func (t Tok) IsKw(kw Reserved) bool { return t.K == RESERVED && t.Kw == kw }

func (t Tok) String() string {
	switch t.K {
	case IDENT, STRING, ILLEGAL:
		return fmt.Sprintf("%s %s %q", t.P, t.K, t.Lit)
	case NUMBER:
		return fmt.Sprintf("%s %s %s", t.P, t.K, FormatNumber(t.N))
	case OPERATOR:
		return fmt.Sprintf("%s %s %s", t.P, t.K, t.Op)
	case RESERVED:
		return fmt.Sprintf("%s %s %s", t.P, t.K, t.Kw)
	default:
		return fmt.Sprintf("%s %s", t.P, t.K)
	}
}

// describe renders a token for "expected X, found Y" messages.
func describe(t Tok) string {
	switch t.K {
	case EOF:
		return "end of input"
	case NEWLINE:
		return "newline"
	case IDENT:
		return fmt.Sprintf("identifier %q", t.Lit)
	case NUMBER:
		return "number " + FormatNumber(t.N)
	case STRING:
		return fmt.Sprintf("string %q", t.Lit)
	case OPERATOR:
		return fmt.Sprintf("%q", t.Op.String())
	case RESERVED:
		return fmt.Sprintf("keyword %q", t.Kw.String())
	case LPAREN:
		return `"("`
	case RPAREN:
		return `")"`
	case LBRACE:
		return `"{"`
	case RBRACE:
		return `"}"`
	case ILLEGAL:
		return t.Lit
	default:
		return t.K.String()
	}
}
