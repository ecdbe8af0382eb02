package runtime

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"
	"github.com/shopspring/decimal"
)

// Value wraps a Go value with its runtime type.
//
// Scalars (none, bool, int, number, str) and tuples are immutable and copy
// freely.  Lists, sets and dicts are held by pointer so assignment shares
// them.
type Value struct {
	Type  *Type
	Value any // The underlying Go value
}

// ListValue is a mutable sequence.
type ListValue struct {
	Items []Value
}

// SliceValue is the result of a `start:stop:step` index.  Missing parts are None.
type SliceValue struct {
	Start, Stop, Step Value
}

// Overloads maps an arity to the implementation for that many arguments.
type Overloads map[int]Callable

var (
	None  = Value{NoneType, nil}
	True  = Value{BoolType, true}
	False = Value{BoolType, false}
)

func BoolValue(b bool) Value {
	if b {
		return True
	}
	return False
}

func IntValue(i int64) Value             { return Value{IntType, i} }
func NumberValue(d decimal.Decimal) Value { return Value{NumberType, d} }
func StringValue(s string) Value          { return Value{StrType, s} }
func FuncValue(c Callable) Value          { return Value{FuncType, c} }
func OverloadsValue(o Overloads) Value    { return Value{OverloadsType, o} }

func TupleValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{TupleType, items}
}

func ListOf(items ...Value) Value {
	return Value{ListType, &ListValue{Items: append([]Value{}, items...)}}
}

func SliceOf(start, stop, step Value) Value {
	return Value{SliceType, &SliceValue{start, stop, step}}
}

// --- Getters ---

func (v Value) IsNone() bool { return v.Type == nil || v.Type == NoneType }

func (v Value) GetBool() (bool, error) {
	if v.Type != BoolType {
		return false, typeError("bool", v)
	}
	return v.Value.(bool), nil
}

func (v Value) GetInt() (int64, error) {
	switch v.Type {
	case IntType:
		return v.Value.(int64), nil
	case BoolType:
		if v.Value.(bool) {
			return 1, nil
		}
		return 0, nil
	case NumberType:
		d := v.Value.(decimal.Decimal)
		if d.IsInteger() {
			return d.IntPart(), nil
		}
	}
	return 0, typeError("int", v)
}

func (v Value) GetNumber() (decimal.Decimal, error) {
	switch v.Type {
	case NumberType:
		return v.Value.(decimal.Decimal), nil
	case IntType:
		return decimal.NewFromInt(v.Value.(int64)), nil
	case BoolType:
		if v.Value.(bool) {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	}
	return decimal.Zero, typeError("number", v)
}

func (v Value) GetString() (string, error) {
	if v.Type != StrType {
		return "", typeError("str", v)
	}
	return v.Value.(string), nil
}

func (v Value) GetTuple() ([]Value, error) {
	if v.Type != TupleType {
		return nil, typeError("tuple", v)
	}
	return v.Value.([]Value), nil
}

func (v Value) GetList() (*ListValue, error) {
	if v.Type != ListType {
		return nil, typeError("list", v)
	}
	return v.Value.(*ListValue), nil
}

func (v Value) GetSet() (*SetValue, error) {
	if v.Type != SetType {
		return nil, typeError("set", v)
	}
	return v.Value.(*SetValue), nil
}

func (v Value) GetMap() (*MapValue, error) {
	if v.Type != MapType {
		return nil, typeError("dict", v)
	}
	return v.Value.(*MapValue), nil
}

func (v Value) GetFunc() (Callable, error) {
	if v.Type != FuncType {
		return nil, typeError("function", v)
	}
	return v.Value.(Callable), nil
}

func (v Value) GetSlice() (*SliceValue, error) {
	if v.Type != SliceType {
		return nil, typeError("slice", v)
	}
	return v.Value.(*SliceValue), nil
}

// IsNumeric is true for int, number and bool values.
func (v Value) IsNumeric() bool {
	return v.Type == IntType || v.Type == NumberType || v.Type == BoolType
}

func (v Value) TypeName() string {
	if v.Type == nil {
		return NoneType.Name
	}
	return v.Type.Name
}

func typeError(expected string, v Value) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrInvalidOperand, expected, v.TypeName())
}

// Elements returns the items of any iterable value: the items of a tuple,
// list or set, the keys of a dict, or the characters of a string.
func (v Value) Elements() ([]Value, error) {
	switch v.Type {
	case TupleType:
		return v.Value.([]Value), nil
	case ListType:
		return append([]Value{}, v.Value.(*ListValue).Items...), nil
	case SetType:
		return v.Value.(*SetValue).Items(), nil
	case MapType:
		return v.Value.(*MapValue).Keys(), nil
	case StrType:
		return gfn.Map([]rune(v.Value.(string)), func(r rune) Value { return StringValue(string(r)) }), nil
	}
	return nil, fmt.Errorf("%w: %s is not iterable", ErrInvalidOperand, v.TypeName())
}

// Truthy follows the usual rules: None, False, zero, and empty strings or
// containers are false and everything else is true.
func (v Value) Truthy() bool {
	switch v.Type {
	case nil, NoneType:
		return false
	case BoolType:
		return v.Value.(bool)
	case IntType:
		return v.Value.(int64) != 0
	case NumberType:
		return !v.Value.(decimal.Decimal).IsZero()
	case StrType:
		return v.Value.(string) != ""
	case TupleType:
		return len(v.Value.([]Value)) > 0
	case ListType:
		return len(v.Value.(*ListValue).Items) > 0
	case SetType:
		return v.Value.(*SetValue).Len() > 0
	case MapType:
		return v.Value.(*MapValue).Len() > 0
	}
	return true
}

// --- Formatting ---

// String is what `str()` and `print` produce: strings appear bare.
func (v Value) String() string {
	if v.Type == StrType {
		return v.Value.(string)
	}
	return v.Repr()
}

// Repr is the literal-like rendering used inside containers and the REPL.
func (v Value) Repr() string {
	switch v.Type {
	case nil, NoneType:
		return "None"
	case BoolType:
		if v.Value.(bool) {
			return "True"
		}
		return "False"
	case IntType:
		return strconv.FormatInt(v.Value.(int64), 10)
	case NumberType:
		return v.Value.(decimal.Decimal).String()
	case StrType:
		return strconv.Quote(v.Value.(string))
	case TupleType:
		items := v.Value.([]Value)
		if len(items) == 1 {
			return "(" + items[0].Repr() + ",)"
		}
		return "(" + reprAll(items) + ")"
	case ListType:
		return "[" + reprAll(v.Value.(*ListValue).Items) + "]"
	case SetType:
		s := v.Value.(*SetValue)
		if s.Len() == 0 {
			return "set()"
		}
		return "{" + reprAll(s.Items()) + "}"
	case MapType:
		m := v.Value.(*MapValue)
		parts := gfn.Map(m.Entries(), func(e MapEntry) string { return e.Key.Repr() + ": " + e.Value.Repr() })
		return "{" + strings.Join(parts, ", ") + "}"
	case FuncType:
		return fmt.Sprintf("<function %s>", v.Value.(Callable).Name())
	case OverloadsType:
		arities := []int{}
		for k := range v.Value.(Overloads) {
			arities = append(arities, k)
		}
		sort.Ints(arities)
		return fmt.Sprintf("<builtin arities %v>", arities)
	case SliceType:
		s := v.Value.(*SliceValue)
		return fmt.Sprintf("slice(%s, %s, %s)", s.Start.Repr(), s.Stop.Repr(), s.Step.Repr())
	}
	return fmt.Sprintf("%v", v.Value)
}

func reprAll(items []Value) string {
	return strings.Join(gfn.Map(items, func(v Value) string { return v.Repr() }), ", ")
}

// --- Equality and hashing ---

// Equal compares values structurally.  Numbers compare by value across int
// and number, containers compare element-wise and functions by identity.
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		x, _ := a.GetNumber()
		y, _ := b.GetNumber()
		return x.Equal(y)
	}
	if a.IsNone() || b.IsNone() {
		return a.IsNone() && b.IsNone()
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case StrType:
		return a.Value.(string) == b.Value.(string)
	case TupleType:
		return equalSeq(a.Value.([]Value), b.Value.([]Value))
	case ListType:
		return equalSeq(a.Value.(*ListValue).Items, b.Value.(*ListValue).Items)
	case SetType:
		x, y := a.Value.(*SetValue), b.Value.(*SetValue)
		if x.Len() != y.Len() {
			return false
		}
		for _, item := range x.Items() {
			if ok, _ := y.Contains(item); !ok {
				return false
			}
		}
		return true
	case MapType:
		x, y := a.Value.(*MapValue), b.Value.(*MapValue)
		if x.Len() != y.Len() {
			return false
		}
		for _, e := range x.Entries() {
			other, ok, _ := y.Get(e.Key)
			if !ok || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	case SliceType:
		x, y := a.Value.(*SliceValue), b.Value.(*SliceValue)
		return Equal(x.Start, y.Start) && Equal(x.Stop, y.Stop) && Equal(x.Step, y.Step)
	case OverloadsType:
		// Maps are not comparable; the same table is the same value.
		return reflect.ValueOf(a.Value).UnsafePointer() == reflect.ValueOf(b.Value).UnsafePointer()
	}
	return a.Value == b.Value
}

func equalSeq(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// HashKey returns a canonical string for values usable as dict keys and
// set members.  Equal numbers hash the same regardless of int or number.
func HashKey(v Value) (string, error) {
	switch v.Type {
	case nil, NoneType:
		return "N", nil
	case BoolType, IntType, NumberType:
		d, _ := v.GetNumber()
		return "n" + d.String(), nil
	case StrType:
		return "s" + v.Value.(string), nil
	case TupleType:
		parts := []string{}
		for _, item := range v.Value.([]Value) {
			k, err := HashKey(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, strconv.Quote(k))
		}
		return "t(" + strings.Join(parts, ",") + ")", nil
	}
	return "", fmt.Errorf("%w: unhashable type %s", ErrInvalidOperand, v.TypeName())
}
