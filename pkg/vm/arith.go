package vm

import (
	"math"

	"github.com/vrlcore/vrlcore/pkg/value"
)

// Arith implements Add/Sub/Mul/Div/Mod over integer and float operands,
// with string concatenation for OpAdd over two Bytes values, array
// concatenation for OpAdd over two Array values, and right-biased object
// merge for OpAdd over two Object values. Mixed integer/float operands
// promote to float, matching the teacher VM's numeric-tower behavior.
func Arith(op Opcode, a, b value.Value) (value.Value, error) {
	if op == OpAdd {
		if as, ok := a.AsBytes(); ok {
			if bs, ok := b.AsBytes(); ok {
				return value.Bytes(as + bs), nil
			}
		}
		if aArr, ok := a.AsArray(); ok {
			if bArr, ok := b.AsArray(); ok {
				return value.Array(append(append([]value.Value{}, aArr...), bArr...)), nil
			}
		}
		if aObj, ok := a.AsObject(); ok {
			if bObj, ok := b.AsObject(); ok {
				merged := make(map[string]value.Value, len(aObj)+len(bObj))
				for k, v := range aObj {
					merged[k] = v
				}
				for k, v := range bObj {
					merged[k] = v
				}
				return value.Object(merged), nil
			}
		}
	}

	ai, aIsInt := a.AsInteger()
	bi, bIsInt := b.AsInteger()
	if aIsInt && bIsInt {
		switch op {
		case OpAdd:
			sum, overflowed := addInt64(ai, bi)
			if overflowed {
				return value.Value{}, value.NewArithmeticOverflow("integer overflow in addition")
			}
			return value.Integer(sum), nil
		case OpSub:
			diff, overflowed := subInt64(ai, bi)
			if overflowed {
				return value.Value{}, value.NewArithmeticOverflow("integer overflow in subtraction")
			}
			return value.Integer(diff), nil
		case OpMul:
			prod, overflowed := mulInt64(ai, bi)
			if overflowed {
				return value.Value{}, value.NewArithmeticOverflow("integer overflow in multiplication")
			}
			return value.Integer(prod), nil
		case OpDiv:
			if bi == 0 {
				return value.Value{}, value.NewArithmeticOverflow("division by zero")
			}
			return value.Integer(ai / bi), nil
		case OpMod:
			if bi == 0 {
				return value.Value{}, value.NewArithmeticOverflow("modulo by zero")
			}
			return value.Integer(ai % bi), nil
		}
	}

	af, ok1 := asFloat(a)
	bf, ok2 := asFloat(b)
	if !ok1 || !ok2 {
		return value.Value{}, value.NewTypeMismatch("cannot apply %s to %s and %s", op, a.Kind(), b.Kind())
	}
	switch op {
	case OpAdd:
		return value.Float(af + bf), nil
	case OpSub:
		return value.Float(af - bf), nil
	case OpMul:
		return value.Float(af * bf), nil
	case OpDiv:
		if bf == 0 {
			return value.Value{}, value.NewArithmeticOverflow("division by zero")
		}
		return value.Float(af / bf), nil
	case OpMod:
		if bf == 0 {
			return value.Value{}, value.NewArithmeticOverflow("modulo by zero")
		}
		return value.Float(float64(int64(af) % int64(bf))), nil
	}
	return value.Value{}, value.NewTypeMismatch("unsupported arithmetic opcode %s", op)
}

// addInt64/subInt64/mulInt64 report whether the operation overflows int64,
// the check spec.md §4.C/§3 requires before returning an ArithmeticOverflow
// EvalError rather than silently wrapping.
func addInt64(a, b int64) (sum int64, overflowed bool) {
	sum = a + b
	return sum, ((a ^ sum) & (b ^ sum)) < 0
}

func subInt64(a, b int64) (diff int64, overflowed bool) {
	diff = a - b
	return diff, ((a ^ b) & (a ^ diff)) < 0
}

func mulInt64(a, b int64) (prod int64, overflowed bool) {
	prod = a * b
	if a == 0 || b == 0 {
		return prod, false
	}
	if a == math.MinInt64 && b == -1 {
		return prod, true
	}
	return prod, prod/b != a
}

func asFloat(v value.Value) (float64, bool) {
	if f, ok := v.AsFloat(); ok {
		return f, true
	}
	if i, ok := v.AsInteger(); ok {
		return float64(i), true
	}
	return 0, false
}

func Compare(op Opcode, a, b value.Value) (bool, error) {
	af, ok1 := asFloat(a)
	bf, ok2 := asFloat(b)
	if ok1 && ok2 {
		switch op {
		case OpLt:
			return af < bf, nil
		case OpLe:
			return af <= bf, nil
		case OpGt:
			return af > bf, nil
		case OpGe:
			return af >= bf, nil
		}
	}
	as, ok1 := a.AsBytes()
	bs, ok2 := b.AsBytes()
	if ok1 && ok2 {
		switch op {
		case OpLt:
			return as < bs, nil
		case OpLe:
			return as <= bs, nil
		case OpGt:
			return as > bs, nil
		case OpGe:
			return as >= bs, nil
		}
	}
	return false, value.NewTypeMismatch("cannot compare %s and %s", a.Kind(), b.Kind())
}

func Negate(v value.Value) (value.Value, error) {
	if i, ok := v.AsInteger(); ok {
		return value.Integer(-i), nil
	}
	if f, ok := v.AsFloat(); ok {
		return value.Float(-f), nil
	}
	return value.Value{}, value.NewTypeMismatch("cannot negate %s", v.Kind())
}
