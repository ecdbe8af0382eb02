package runtime

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// --- Arithmetic ---

// numeric applies intOp when both operands are integers and decOp when at
// least one is a decimal number.
func numeric(op string, a, b Value,
	intOp func(x, y int64) (Value, error),
	decOp func(x, y decimal.Decimal) (Value, error)) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return None, operandError(op, a, b)
	}
	if a.Type != NumberType && b.Type != NumberType {
		x, _ := a.GetInt()
		y, _ := b.GetInt()
		return intOp(x, y)
	}
	x, _ := a.GetNumber()
	y, _ := b.GetNumber()
	return decOp(x, y)
}

func operandError(op string, operands ...Value) error {
	names := make([]string, len(operands))
	for i, v := range operands {
		names[i] = v.TypeName()
	}
	return fmt.Errorf("%w: unsupported operand type(s) for %s: %s", ErrInvalidOperand, op, strings.Join(names, ", "))
}

func bigInt(x int64) decimal.Decimal { return decimal.NewFromInt(x) }

func Add(a, b Value) (Value, error) {
	switch {
	case a.Type == StrType && b.Type == StrType:
		return StringValue(a.Value.(string) + b.Value.(string)), nil
	case a.Type == TupleType && b.Type == TupleType:
		return TupleValue(concat(a.Value.([]Value), b.Value.([]Value))...), nil
	case a.Type == ListType && b.Type == ListType:
		return ListOf(concat(a.Value.(*ListValue).Items, b.Value.(*ListValue).Items)...), nil
	}
	return numeric("+", a, b,
		func(x, y int64) (Value, error) {
			s := x + y
			if (x > 0 && y > 0 && s < 0) || (x < 0 && y < 0 && s >= 0) {
				return NumberValue(bigInt(x).Add(bigInt(y))), nil
			}
			return IntValue(s), nil
		},
		func(x, y decimal.Decimal) (Value, error) { return NumberValue(x.Add(y)), nil })
}

func concat(a, b []Value) []Value {
	out := make([]Value, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

func Sub(a, b Value) (Value, error) {
	if a.Type == SetType && b.Type == SetType {
		out := NewSet()
		for _, item := range a.Value.(*SetValue).Items() {
			if ok, _ := b.Value.(*SetValue).Contains(item); !ok {
				out.Add(item)
			}
		}
		return Value{SetType, out}, nil
	}
	return numeric("-", a, b,
		func(x, y int64) (Value, error) {
			s := x - y
			if (x >= 0 && y < 0 && s < 0) || (x < 0 && y > 0 && s >= 0) {
				return NumberValue(bigInt(x).Sub(bigInt(y))), nil
			}
			return IntValue(s), nil
		},
		func(x, y decimal.Decimal) (Value, error) { return NumberValue(x.Sub(y)), nil })
}

func Mul(a, b Value) (Value, error) {
	if seq, n, ok := repeatOperands(a, b); ok {
		return repeat(seq, n)
	}
	return numeric("*", a, b,
		func(x, y int64) (Value, error) {
			p := x * y
			if x != 0 && (p/x != y || (x == -1 && y == math.MinInt64)) {
				return NumberValue(bigInt(x).Mul(bigInt(y))), nil
			}
			return IntValue(p), nil
		},
		func(x, y decimal.Decimal) (Value, error) { return NumberValue(x.Mul(y)), nil })
}

func repeatOperands(a, b Value) (Value, int64, bool) {
	isSeq := func(v Value) bool { return v.Type == StrType || v.Type == ListType || v.Type == TupleType }
	if isSeq(a) && b.Type == IntType {
		return a, b.Value.(int64), true
	}
	if isSeq(b) && a.Type == IntType {
		return b, a.Value.(int64), true
	}
	return None, 0, false
}

// MaxRepeatLen caps the element (or byte) count a repetition may produce.
const MaxRepeatLen = 1 << 26

func repeat(seq Value, n int64) (Value, error) {
	if n < 0 {
		n = 0
	}
	var size int
	if seq.Type == StrType {
		size = len(seq.Value.(string))
	} else {
		items, _ := seq.Elements()
		size = len(items)
	}
	if size == 0 {
		n = 0
	} else if n > MaxRepeatLen/int64(size) {
		return None, fmt.Errorf("%w: repeating %s %d times is too large", ErrInvalidOperand, seq.TypeName(), n)
	}
	switch seq.Type {
	case StrType:
		return StringValue(strings.Repeat(seq.Value.(string), int(n))), nil
	}
	items, _ := seq.Elements()
	out := make([]Value, 0, len(items)*int(n))
	for range n {
		out = append(out, items...)
	}
	if seq.Type == ListType {
		return ListOf(out...), nil
	}
	return TupleValue(out...), nil
}

func Div(a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return None, operandError("/", a, b)
	}
	x, _ := a.GetNumber()
	y, _ := b.GetNumber()
	if y.IsZero() {
		return None, ErrDivisionByZero
	}
	return NumberValue(x.Div(y)), nil
}

// FloorDiv rounds towards negative infinity.
func FloorDiv(a, b Value) (Value, error) {
	return numeric("//", a, b,
		func(x, y int64) (Value, error) {
			if y == 0 {
				return None, ErrDivisionByZero
			}
			q := x / y
			if (x%y != 0) && ((x < 0) != (y < 0)) {
				q--
			}
			return IntValue(q), nil
		},
		func(x, y decimal.Decimal) (Value, error) {
			if y.IsZero() {
				return None, ErrDivisionByZero
			}
			q, r := x.QuoRem(y, 0)
			if !r.IsZero() && (r.Sign() != y.Sign()) {
				q = q.Sub(decimal.NewFromInt(1))
			}
			return NumberValue(q), nil
		})
}

// Mod takes the sign of the divisor.
func Mod(a, b Value) (Value, error) {
	return numeric("%", a, b,
		func(x, y int64) (Value, error) {
			if y == 0 {
				return None, ErrDivisionByZero
			}
			r := x % y
			if r != 0 && ((r < 0) != (y < 0)) {
				r += y
			}
			return IntValue(r), nil
		},
		func(x, y decimal.Decimal) (Value, error) {
			if y.IsZero() {
				return None, ErrDivisionByZero
			}
			r := x.Mod(y)
			if !r.IsZero() && r.Sign() != y.Sign() {
				r = r.Add(y)
			}
			return NumberValue(r), nil
		})
}

func Pow(a, b Value) (Value, error) {
	return numeric("^", a, b,
		func(x, y int64) (Value, error) {
			if y < 0 {
				if x == 0 {
					return None, ErrDivisionByZero
				}
				return NumberValue(bigInt(x).Pow(bigInt(y))), nil
			}
			result, base := int64(1), x
			overflow := false
			for e := y; e > 0; e >>= 1 {
				if e&1 == 1 {
					next := result * base
					if base != 0 && next/base != result {
						overflow = true
						break
					}
					result = next
				}
				if e > 1 {
					sq := base * base
					if base != 0 && sq/base != base {
						overflow = true
						break
					}
					base = sq
				}
			}
			if overflow {
				return NumberValue(bigInt(x).Pow(bigInt(y))), nil
			}
			return IntValue(result), nil
		},
		func(x, y decimal.Decimal) (Value, error) {
			if x.IsZero() && y.Sign() < 0 {
				return None, ErrDivisionByZero
			}
			if y.IsInteger() {
				return NumberValue(x.Pow(y)), nil
			}
			if x.Sign() < 0 {
				return None, fmt.Errorf("%w: fractional power of a negative number", ErrInvalidOperand)
			}
			return NumberValue(decimal.NewFromFloat(math.Pow(x.InexactFloat64(), y.InexactFloat64()))), nil
		})
}

func Neg(a Value) (Value, error) {
	switch a.Type {
	case IntType:
		x := a.Value.(int64)
		if x == math.MinInt64 {
			return NumberValue(bigInt(x).Neg()), nil
		}
		return IntValue(-x), nil
	case BoolType:
		x, _ := a.GetInt()
		return IntValue(-x), nil
	case NumberType:
		return NumberValue(a.Value.(decimal.Decimal).Neg()), nil
	}
	return None, operandError("-", a)
}

func Pos(a Value) (Value, error) {
	if !a.IsNumeric() {
		return None, operandError("+", a)
	}
	if a.Type == BoolType {
		x, _ := a.GetInt()
		return IntValue(x), nil
	}
	return a, nil
}

func Invert(a Value) (Value, error) {
	if a.Type != IntType && a.Type != BoolType {
		return None, operandError("~", a)
	}
	x, _ := a.GetInt()
	return IntValue(^x), nil
}

func Abs(a Value) (Value, error) {
	switch a.Type {
	case NumberType:
		return NumberValue(a.Value.(decimal.Decimal).Abs()), nil
	case IntType, BoolType:
		x, _ := a.GetInt()
		if x < 0 {
			return Neg(IntValue(x))
		}
		return IntValue(x), nil
	}
	return None, operandError("abs", a)
}

func Floor(a Value) (Value, error) {
	if !a.IsNumeric() {
		return None, operandError("floor", a)
	}
	d, _ := a.GetNumber()
	return intOrNumber(d.Floor()), nil
}

func Ceil(a Value) (Value, error) {
	if !a.IsNumeric() {
		return None, operandError("ceil", a)
	}
	d, _ := a.GetNumber()
	return intOrNumber(d.Ceil()), nil
}

// intOrNumber narrows an integral decimal to an int when it fits.
func intOrNumber(d decimal.Decimal) Value {
	if d.IsInteger() && d.Cmp(bigInt(math.MaxInt64)) <= 0 && d.Cmp(bigInt(math.MinInt64)) >= 0 {
		return IntValue(d.IntPart())
	}
	return NumberValue(d)
}

func Factorial(a Value) (Value, error) {
	n, err := a.GetInt()
	if err != nil || n < 0 {
		return None, operandError("!", a)
	}
	acc := decimal.NewFromInt(1)
	for i := int64(2); i <= n; i++ {
		acc = acc.Mul(bigInt(i))
	}
	return intOrNumber(acc), nil
}

// --- Comparison ---

// Compare orders numbers, strings, tuples and lists.  Sequences compare
// lexicographically.
func Compare(a, b Value) (int, error) {
	if a.IsNumeric() && b.IsNumeric() {
		x, _ := a.GetNumber()
		y, _ := b.GetNumber()
		return x.Cmp(y), nil
	}
	if a.Type == StrType && b.Type == StrType {
		return strings.Compare(a.Value.(string), b.Value.(string)), nil
	}
	if a.Type == b.Type && (a.Type == TupleType || a.Type == ListType) {
		x, _ := a.Elements()
		y, _ := b.Elements()
		for i := 0; i < len(x) && i < len(y); i++ {
			if Equal(x[i], y[i]) {
				continue
			}
			return Compare(x[i], y[i])
		}
		return len(x) - len(y), nil
	}
	return 0, operandError("comparison", a, b)
}

func comparator(op string, test func(c int) bool) func(a, b Value) (Value, error) {
	return func(a, b Value) (Value, error) {
		c, err := Compare(a, b)
		if err != nil {
			return None, fmt.Errorf("%s: %w", op, err)
		}
		return BoolValue(test(c)), nil
	}
}

var (
	Lt = comparator("<", func(c int) bool { return c < 0 })
	Le = comparator("<=", func(c int) bool { return c <= 0 })
	Gt = comparator(">", func(c int) bool { return c > 0 })
	Ge = comparator(">=", func(c int) bool { return c >= 0 })
)

func Eq(a, b Value) (Value, error) { return BoolValue(Equal(a, b)), nil }
func Ne(a, b Value) (Value, error) { return BoolValue(!Equal(a, b)), nil }

// Contains implements `item in container`.
func Contains(container, item Value) (bool, error) {
	switch container.Type {
	case StrType:
		s, err := item.GetString()
		if err != nil {
			return false, err
		}
		return strings.Contains(container.Value.(string), s), nil
	case SetType:
		return container.Value.(*SetValue).Contains(item)
	case MapType:
		_, ok, err := container.Value.(*MapValue).Get(item)
		return ok, err
	}
	items, err := container.Elements()
	if err != nil {
		return false, err
	}
	for _, v := range items {
		if Equal(v, item) {
			return true, nil
		}
	}
	return false, nil
}

// --- Logic ---

func Not(a Value) (Value, error) { return BoolValue(!a.Truthy()), nil }

// And and Or return one of their operands.  Both operands have already been
// evaluated by the time an operator is applied.
func And(a, b Value) (Value, error) {
	if !a.Truthy() {
		return a, nil
	}
	return b, nil
}

func Or(a, b Value) (Value, error) {
	if a.Truthy() {
		return a, nil
	}
	return b, nil
}
