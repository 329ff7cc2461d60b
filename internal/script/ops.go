package script

import "math"

// Unary applies a prefix operator. Only numbers are accepted.
func Unary(op Operator, x Primitive) (Primitive, error) {
	if x.K != VNumber {
		return Primitive{}, &RuntimeError{
			Kind: TypeError,
			Msg:  "cannot apply prefix " + op.String() + " to " + x.TypeName(),
		}
	}
	switch op {
	case OpAdd:
		return x, nil
	case OpSub:
		return Num(-x.N), nil
	case OpNot:
		return Bool(x.N == 0), nil
	}
	return Primitive{}, &RuntimeError{Kind: TypeError, Msg: op.String() + " is not a prefix operator"}
}

// Binary applies a non-assigning infix operator to two evaluated operands.
func Binary(op Operator, l, r Primitive) (Primitive, error) {
	switch op {
	case OpAdd:
		if l.K == VNumber && r.K == VNumber {
			return Num(l.N + r.N), nil
		}
		if l.K == VString && r.K == VString {
			return NewStr(l.S.String() + r.S.String()), nil
		}
	case OpSub, OpMul, OpDiv, OpMod:
		if l.K == VNumber && r.K == VNumber {
			return Num(arith(op, l.N, r.N)), nil
		}
	case OpEq:
		return Bool(Equal(l, r)), nil
	case OpNe:
		return Bool(!Equal(l, r)), nil
	case OpGt, OpGe, OpLt, OpLe:
		return order(op, l, r)
	case OpIdentical:
		if l.K == VString && r.K == VString {
			return Bool(l.S == r.S), nil
		}
	case OpAnd:
		if l.K == VBoolean && r.K == VBoolean {
			return Bool(l.B && r.B), nil
		}
	case OpOr:
		if l.K == VBoolean && r.K == VBoolean {
			return Bool(l.B || r.B), nil
		}
	case OpBitAnd:
		if l.K == VNumber && r.K == VNumber {
			return Num(float64(toInt32(l.N) & toInt32(r.N))), nil
		}
	case OpBitOr:
		if l.K == VNumber && r.K == VNumber {
			return Num(float64(toInt32(l.N) | toInt32(r.N))), nil
		}
	default:
		return Primitive{}, &RuntimeError{Kind: TypeError, Msg: op.String() + " is not a binary operator"}
	}
	return Primitive{}, mismatch(op, l, r)
}

// Equal is structural equality; values of different kinds are never equal.
func Equal(l, r Primitive) bool {
	if l.K != r.K {
		return false
	}
	switch l.K {
	case VNumber:
		return l.N == r.N
	case VBoolean:
		return l.B == r.B
	case VString:
		return l.S.String() == r.S.String()
	}
	return false
}

func arith(op Operator, a, b float64) float64 {
	switch op {
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	case OpMod:
		return math.Mod(a, b)
	}
	return math.NaN()
}

func order(op Operator, l, r Primitive) (Primitive, error) {
	if l.K != r.K {
		return Primitive{}, mismatch(op, l, r)
	}
	var lt, gt bool
	switch l.K {
	case VNumber:
		lt, gt = l.N < r.N, l.N > r.N
	case VBoolean:
		lt, gt = !l.B && r.B, l.B && !r.B
	case VString:
		ls, rs := l.S.String(), r.S.String()
		lt, gt = ls < rs, ls > rs
	}
	eq := Equal(l, r)
	switch op {
	case OpLt:
		return Bool(lt), nil
	case OpLe:
		return Bool(lt || eq), nil
	case OpGt:
		return Bool(gt), nil
	default:
		return Bool(gt || eq), nil
	}
}

func mismatch(op Operator, l, r Primitive) error {
	return &RuntimeError{
		Kind: TypeError,
		Msg:  "cannot apply " + op.String() + " to " + l.TypeName() + " and " + r.TypeName(),
	}
}
