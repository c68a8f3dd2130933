package fx

// BinaryOp identifies a binary operator node's operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpLt
	OpLe
	OpGt
	OpGe
	OpHas
	OpHasAny
	OpEq
	OpNeq
	OpAnd
	OpOr
)

// applyArith evaluates a numeric binary operator (+ - * / % ^) over two
// Values. Mixed Integer/Fraction promotes to Fraction; dividing two integers
// at runtime truncates toward zero (parse-time int/int literals are already
// promoted to Fraction by the parser, per spec.md §3).
func applyArith(op BinaryOp, l, r Value) (Value, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return Value{}, typeError("operator requires numeric operands, got %s and %s", l.Kind(), r.Kind())
	}
	if l.Kind() == KindInt && r.Kind() == KindInt {
		return applyArithInt(op, l.AsInt(), r.AsInt())
	}
	return applyArithFrac(op, l, r)
}

func applyArithInt(op BinaryOp, a, b int64) (Value, error) {
	switch op {
	case OpAdd:
		v, overflow := checkedAdd(a, b)
		if overflow {
			return Value{}, arithmeticError("integer overflow in %d + %d", a, b)
		}
		return Int(v), nil
	case OpSub:
		v, overflow := checkedSub(a, b)
		if overflow {
			return Value{}, arithmeticError("integer overflow in %d - %d", a, b)
		}
		return Int(v), nil
	case OpMul:
		v, overflow := checkedMul(a, b)
		if overflow {
			return Value{}, arithmeticError("integer overflow in %d * %d", a, b)
		}
		return Int(v), nil
	case OpDiv:
		if b == 0 {
			return Value{}, arithmeticError("division by zero")
		}
		return Int(a / b), nil
	case OpMod:
		if b == 0 {
			return Value{}, arithmeticError("division by zero in modulo")
		}
		return Int(a % b), nil
	case OpPow:
		return intPow(a, b)
	default:
		return Value{}, typeError("not an arithmetic operator")
	}
}

func intPow(base, exp int64) (Value, error) {
	if exp < 0 {
		return applyArithFrac(OpPow, Int(base), Int(exp))
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		v, overflow := checkedMul(result, base)
		if overflow {
			return Value{}, arithmeticError("integer overflow in %d ^ %d", base, exp)
		}
		result = v
	}
	return Int(result), nil
}

func applyArithFrac(op BinaryOp, l, r Value) (Value, error) {
	ln, ld := l.AsFraction()
	rn, rd := r.AsFraction()
	switch op {
	case OpAdd:
		return Frac(ln*rd+rn*ld, ld*rd), nil
	case OpSub:
		return Frac(ln*rd-rn*ld, ld*rd), nil
	case OpMul:
		return Frac(ln*rn, ld*rd), nil
	case OpDiv:
		if rn == 0 {
			return Value{}, arithmeticError("division by zero")
		}
		return Frac(ln*rd, ld*rn), nil
	case OpMod:
		return Value{}, typeError("modulo requires integer operands")
	case OpPow:
		if rd != 1 {
			return Value{}, typeError("exponent must be an integer")
		}
		if rn < 0 {
			base, err := intPow(ld, -rn)
			if err != nil {
				return Value{}, err
			}
			numPow, err := intPow(ln, -rn)
			if err != nil {
				return Value{}, err
			}
			bn, bd := base.AsFraction()
			_ = bd
			return Frac(bn, numPow.AsInt()), nil
		}
		numPow, err := intPow(ln, rn)
		if err != nil {
			return Value{}, err
		}
		denPow, err := intPow(ld, rn)
		if err != nil {
			return Value{}, err
		}
		return Frac(numPow.AsInt(), denPow.AsInt()), nil
	default:
		return Value{}, typeError("not an arithmetic operator")
	}
}

// applyCompare evaluates <, <=, >, >= which require two numeric operands.
func applyCompare(op BinaryOp, l, r Value) (Value, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return Value{}, typeError("comparison requires numeric operands, got %s and %s", l.Kind(), r.Kind())
	}
	ln, ld := l.AsFraction()
	rn, rd := r.AsFraction()
	lhs := ln * rd
	rhs := rn * ld
	switch op {
	case OpLt:
		return Bool(lhs < rhs), nil
	case OpLe:
		return Bool(lhs <= rhs), nil
	case OpGt:
		return Bool(lhs > rhs), nil
	case OpGe:
		return Bool(lhs >= rhs), nil
	default:
		return Value{}, typeError("not a comparison operator")
	}
}

// applyEquality evaluates == and !=, valid across compatible kinds: Integer
// vs Fraction numerically, String by bytes, Boolean by identity, Handle by
// identity (Kind+ID), List/Object by deep structural equality, Undefined
// only equal to Undefined.
func applyEquality(op BinaryOp, l, r Value) Value {
	eq := valuesEqual(l, r)
	if op == OpNeq {
		return Bool(!eq)
	}
	return Bool(eq)
}

func valuesEqual(l, r Value) bool {
	if l.IsNumeric() && r.IsNumeric() {
		ln, ld := l.AsFraction()
		rn, rd := r.AsFraction()
		return ln*rd == rn*ld
	}
	if l.Kind() != r.Kind() {
		return false
	}
	switch l.Kind() {
	case KindUndefined:
		return true
	case KindBool:
		return l.AsBool() == r.AsBool()
	case KindString:
		return l.AsString() == r.AsString()
	case KindHandle:
		return l.AsHandle() == r.AsHandle()
	case KindList:
		ll, rl := l.AsList(), r.AsList()
		if len(ll) != len(rl) {
			return false
		}
		for i := range ll {
			if !valuesEqual(ll[i], rl[i]) {
				return false
			}
		}
		return true
	case KindObject:
		lo, ro := l.AsObject(), r.AsObject()
		if lo.Len() != ro.Len() {
			return false
		}
		for _, k := range lo.Keys() {
			lv, _ := lo.Get(k)
			rv, ok := ro.Get(k)
			if !ok || !valuesEqual(lv, rv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// applyHas evaluates `has` (List has any-value membership).
func applyHas(l, r Value) (Value, error) {
	if l.Kind() != KindList {
		return Value{}, typeError("'has' requires a list on the left, got %s", l.Kind())
	}
	for _, e := range l.AsList() {
		if valuesEqual(e, r) {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

// applyHasAny evaluates `hasany` (List/List intersection membership).
func applyHasAny(l, r Value) (Value, error) {
	if l.Kind() != KindList || r.Kind() != KindList {
		return Value{}, typeError("'hasany' requires two lists, got %s and %s", l.Kind(), r.Kind())
	}
	for _, e := range l.AsList() {
		for _, f := range r.AsList() {
			if valuesEqual(e, f) {
				return Bool(true), nil
			}
		}
	}
	return Bool(false), nil
}

// negate implements the unary `!` operator's coercion table: false, integer
// 0, fraction 0/1, empty string, empty list all negate to true; all other
// defined values negate to false; Undefined negates to true.
func negate(v Value) Value {
	return Bool(!truthy(v))
}

// truthy implements the same coercion table as negate, without inverting:
// used by if/while-style dispatch on expression results.
func truthy(v Value) bool {
	switch v.Kind() {
	case KindUndefined:
		return false
	case KindBool:
		return v.AsBool()
	case KindInt:
		return v.AsInt() != 0
	case KindFraction:
		n, _ := v.AsFraction()
		return n != 0
	case KindString:
		return v.AsString() != ""
	case KindList:
		return len(v.AsList()) != 0
	default:
		return true
	}
}
