package script

import (
	"math"
	"strconv"
)

// Text is an immutable string buffer. Values share a *Text when they come
// from the same literal or assignment, and === compares the pointers.
type Text struct {
	s string
}

func NewText(s string) *Text { return &Text{s: s} }

func (t *Text) String() string {
	if t == nil {
		return ""
	}
	return t.s
}

type VKind int

const (
	VNumber VKind = iota
	VBoolean
	VString
)

func (k VKind) String() string {
	switch k {
	case VNumber:
		return "number"
	case VBoolean:
		return "boolean"
	case VString:
		return "string"
	default:
		return "?"
	}
}

type Primitive struct {
	K VKind
	N float64
	B bool
	S *Text
}

func Num(v float64) Primitive  { return Primitive{K: VNumber, N: v} }
func Bool(v bool) Primitive    { return Primitive{K: VBoolean, B: v} }
func Str(v *Text) Primitive    { return Primitive{K: VString, S: v} }
func NewStr(s string) Primitive { return Str(NewText(s)) }

func (v Primitive) TypeName() string { return v.K.String() }

// String is the display form used by print.
func (v Primitive) String() string {
	switch v.K {
	case VNumber:
		return FormatNumber(v.N)
	case VBoolean:
		return strconv.FormatBool(v.B)
	case VString:
		return v.S.String()
	default:
		return ""
	}
}

// FormatNumber prints the shortest decimal that round-trips, never using
// exponent notation.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ExitCode converts the value of a return statement to a process status.
func (v Primitive) ExitCode() (int, error) {
	switch v.K {
	case VNumber:
		return int(toInt32(v.N)), nil
	case VBoolean:
		if v.B {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, &RuntimeError{Kind: TypeError, Msg: "return value must be number or boolean, got " + v.TypeName()}
	}
}

// toInt32 truncates toward zero and saturates at the int32 bounds; NaN is 0.
func toInt32(n float64) int32 {
	switch {
	case math.IsNaN(n):
		return 0
	case n >= math.MaxInt32:
		return math.MaxInt32
	case n <= math.MinInt32:
		return math.MinInt32
	}
	return int32(n)
}
