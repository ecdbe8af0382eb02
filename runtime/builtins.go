package runtime

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func registerBuiltins(b *ConstantsBuilder) {
	b.Func1("len", builtinLen).
		Func1("abs", Abs).
		Func1("floor", Floor).
		Func1("ceil", Ceil).
		Func1("str", func(a Value) (Value, error) { return StringValue(a.String()), nil }).
		Func1("repr", func(a Value) (Value, error) { return StringValue(a.Repr()), nil }).
		Func1("bool", func(a Value) (Value, error) { return BoolValue(a.Truthy()), nil }).
		Func1("type", func(a Value) (Value, error) { return StringValue(a.TypeName()), nil }).
		Func1("int", builtinInt).
		Func1("number", builtinNumber).
		Func1("decimal", builtinNumber).
		Func1("float", builtinNumber).
		Func1("any", func(a Value) (Value, error) { return anyAll(a, true) }).
		Func1("all", func(a Value) (Value, error) { return anyAll(a, false) }).
		Func1("reversed", func(a Value) (Value, error) {
			items, err := a.Elements()
			if err != nil {
				return None, err
			}
			items = slices.Clone(items)
			slices.Reverse(items)
			return ListOf(items...), nil
		}).
		Func1("enumerate", func(a Value) (Value, error) {
			items, err := a.Elements()
			if err != nil {
				return None, err
			}
			out := make([]Value, len(items))
			for i, item := range items {
				out[i] = TupleValue(IntValue(int64(i)), item)
			}
			return ListOf(out...), nil
		}).
		Func("min", func(args []Value, kwargs []KwArg) (Value, error) { return extremum("min", args, kwargs, -1) }).
		Func("max", func(args []Value, kwargs []KwArg) (Value, error) { return extremum("max", args, kwargs, 1) }).
		Func("sum", builtinSum).
		Func("tuple", containerCtor("tuple", func(items []Value) (Value, error) { return TupleValue(slices.Clone(items)...), nil })).
		Func("list", containerCtor("list", func(items []Value) (Value, error) { return ListOf(items...), nil })).
		Func("set", containerCtor("set", func(items []Value) (Value, error) { return SetOf(items...) })).
		Func("dict", builtinDict).
		Func("range", builtinRange).
		Func("sorted", builtinSorted).
		Func("round", builtinRound).
		Func("zip", builtinZip).
		Func2("map", func(fn, seq Value) (Value, error) {
			items, err := seq.Elements()
			if err != nil {
				return None, err
			}
			out := make([]Value, len(items))
			for i, item := range items {
				if out[i], err = CallValue(fn, []Value{item}, nil); err != nil {
					return None, err
				}
			}
			return ListOf(out...), nil
		}).
		Func2("filter", func(fn, seq Value) (Value, error) {
			items, err := seq.Elements()
			if err != nil {
				return None, err
			}
			out := []Value{}
			for _, item := range items {
				keep, err := CallValue(fn, []Value{item}, nil)
				if err != nil {
					return None, err
				}
				if keep.Truthy() {
					out = append(out, item)
				}
			}
			return ListOf(out...), nil
		})
}

func noKwargs(name string, kwargs []KwArg) error {
	if len(kwargs) > 0 {
		return fmt.Errorf("%w: %s takes no keyword argument %s", ErrArityMismatch, name, kwargs[0].Name)
	}
	return nil
}

func builtinLen(a Value) (Value, error) {
	switch a.Type {
	case StrType:
		return IntValue(int64(len([]rune(a.Value.(string))))), nil
	case SetType:
		return IntValue(int64(a.Value.(*SetValue).Len())), nil
	case MapType:
		return IntValue(int64(a.Value.(*MapValue).Len())), nil
	case TupleType:
		return IntValue(int64(len(a.Value.([]Value)))), nil
	case ListType:
		return IntValue(int64(len(a.Value.(*ListValue).Items))), nil
	}
	return None, operandError("len", a)
}

func builtinInt(a Value) (Value, error) {
	switch a.Type {
	case IntType:
		return a, nil
	case BoolType:
		x, _ := a.GetInt()
		return IntValue(x), nil
	case NumberType:
		return intOrNumber(a.Value.(decimal.Decimal).Truncate(0)), nil
	case StrType:
		i, err := strconv.ParseInt(strings.TrimSpace(a.Value.(string)), 10, 64)
		if err != nil {
			return None, fmt.Errorf("%w: invalid literal for int: %q", ErrInvalidOperand, a.Value)
		}
		return IntValue(i), nil
	}
	return None, operandError("int", a)
}

func builtinNumber(a Value) (Value, error) {
	if a.IsNumeric() {
		d, _ := a.GetNumber()
		return NumberValue(d), nil
	}
	if a.Type == StrType {
		d, err := decimal.NewFromString(strings.TrimSpace(a.Value.(string)))
		if err != nil {
			return None, fmt.Errorf("%w: invalid literal for number: %q", ErrInvalidOperand, a.Value)
		}
		return NumberValue(d), nil
	}
	return None, operandError("number", a)
}

func anyAll(a Value, isAny bool) (Value, error) {
	items, err := a.Elements()
	if err != nil {
		return None, err
	}
	for _, item := range items {
		if item.Truthy() == isAny {
			return BoolValue(isAny), nil
		}
	}
	return BoolValue(!isAny), nil
}

// extremum implements min and max: either over one iterable argument or
// over all positional arguments.
func extremum(name string, args []Value, kwargs []KwArg, sign int) (Value, error) {
	if err := noKwargs(name, kwargs); err != nil {
		return None, err
	}
	items := args
	if len(args) == 1 {
		var err error
		if items, err = args[0].Elements(); err != nil {
			return None, err
		}
	}
	if len(items) == 0 {
		return None, fmt.Errorf("%w: %s of an empty sequence", ErrInvalidOperand, name)
	}
	best := items[0]
	for _, item := range items[1:] {
		c, err := Compare(item, best)
		if err != nil {
			return None, err
		}
		if c*sign > 0 {
			best = item
		}
	}
	return best, nil
}

func builtinSum(args []Value, kwargs []KwArg) (Value, error) {
	if err := noKwargs("sum", kwargs); err != nil {
		return None, err
	}
	if len(args) < 1 || len(args) > 2 {
		return None, arityError("sum", 1, len(args))
	}
	items, err := args[0].Elements()
	if err != nil {
		return None, err
	}
	acc := IntValue(0)
	if len(args) == 2 {
		acc = args[1]
	}
	for _, item := range items {
		if acc, err = Add(acc, item); err != nil {
			return None, err
		}
	}
	return acc, nil
}

func containerCtor(name string, build func(items []Value) (Value, error)) func(args []Value, kwargs []KwArg) (Value, error) {
	return func(args []Value, kwargs []KwArg) (Value, error) {
		if err := noKwargs(name, kwargs); err != nil {
			return None, err
		}
		switch len(args) {
		case 0:
			return build(nil)
		case 1:
			items, err := args[0].Elements()
			if err != nil {
				return None, err
			}
			return build(items)
		}
		return None, arityError(name, 1, len(args))
	}
}

// builtinDict accepts an optional dict or sequence of pairs, followed by
// keyword arguments that become string keys.
func builtinDict(args []Value, kwargs []KwArg) (Value, error) {
	if len(args) > 1 {
		return None, arityError("dict", 1, len(args))
	}
	out := NewMap()
	if len(args) == 1 {
		if m, err := args[0].GetMap(); err == nil {
			for _, e := range m.Entries() {
				out.Set(e.Key, e.Value)
			}
		} else {
			pairs, err := args[0].Elements()
			if err != nil {
				return None, err
			}
			for _, pair := range pairs {
				kv, err := pair.Elements()
				if err != nil || len(kv) != 2 {
					return None, fmt.Errorf("%w: dict entries must be pairs", ErrUnpack)
				}
				if err := out.Set(kv[0], kv[1]); err != nil {
					return None, err
				}
			}
		}
	}
	for _, kw := range kwargs {
		out.Set(StringValue(kw.Name), kw.Value)
	}
	return Value{MapType, out}, nil
}

func builtinRange(args []Value, kwargs []KwArg) (Value, error) {
	if err := noKwargs("range", kwargs); err != nil {
		return None, err
	}
	bounds := make([]int64, len(args))
	for i, a := range args {
		var err error
		if bounds[i], err = a.GetInt(); err != nil {
			return None, err
		}
	}
	var start, stop, step int64 = 0, 0, 1
	switch len(bounds) {
	case 1:
		stop = bounds[0]
	case 2:
		start, stop = bounds[0], bounds[1]
	case 3:
		start, stop, step = bounds[0], bounds[1], bounds[2]
	default:
		return None, arityError("range", 3, len(args))
	}
	if step == 0 {
		return None, fmt.Errorf("%w: range step must not be zero", ErrInvalidOperand)
	}
	out := []Value{}
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, IntValue(i))
		// The next step would pass stop, or wrap around int64.
		if (step > 0 && i > stop-step) || (step < 0 && i < stop-step) {
			break
		}
	}
	return ListOf(out...), nil
}

// builtinSorted takes an optional `key` function and `reverse` flag.
func builtinSorted(args []Value, kwargs []KwArg) (Value, error) {
	if len(args) != 1 {
		return None, arityError("sorted", 1, len(args))
	}
	items, err := args[0].Elements()
	if err != nil {
		return None, err
	}
	key, reverse := None, false
	for _, kw := range kwargs {
		switch kw.Name {
		case "key":
			key = kw.Value
		case "reverse":
			reverse = kw.Value.Truthy()
		default:
			return None, fmt.Errorf("%w: sorted has no keyword argument %s", ErrArityMismatch, kw.Name)
		}
	}
	keys := slices.Clone(items)
	if !key.IsNone() {
		for i, item := range items {
			if keys[i], err = CallValue(key, []Value{item}, nil); err != nil {
				return None, err
			}
		}
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	var cmpErr error
	slices.SortStableFunc(order, func(i, j int) int {
		c, err := Compare(keys[i], keys[j])
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		if reverse {
			return -c
		}
		return c
	})
	if cmpErr != nil {
		return None, cmpErr
	}
	out := make([]Value, len(items))
	for i, idx := range order {
		out[i] = items[idx]
	}
	return ListOf(out...), nil
}

func builtinRound(args []Value, kwargs []KwArg) (Value, error) {
	if err := noKwargs("round", kwargs); err != nil {
		return None, err
	}
	if len(args) < 1 || len(args) > 2 {
		return None, arityError("round", 1, len(args))
	}
	d, err := args[0].GetNumber()
	if err != nil {
		return None, err
	}
	if len(args) == 1 {
		return intOrNumber(d.RoundBank(0)), nil
	}
	places, err := args[1].GetInt()
	if err != nil {
		return None, err
	}
	if places < math.MinInt32 || places > math.MaxInt32 {
		return None, fmt.Errorf("%w: round to %d places", ErrInvalidOperand, places)
	}
	return NumberValue(d.RoundBank(int32(places))), nil
}

func builtinZip(args []Value, kwargs []KwArg) (Value, error) {
	if err := noKwargs("zip", kwargs); err != nil {
		return None, err
	}
	seqs := make([][]Value, len(args))
	shortest := -1
	for i, a := range args {
		items, err := a.Elements()
		if err != nil {
			return None, err
		}
		seqs[i] = items
		if shortest < 0 || len(items) < shortest {
			shortest = len(items)
		}
	}
	out := []Value{}
	for i := 0; i < shortest; i++ {
		row := make([]Value, len(seqs))
		for j := range seqs {
			row[j] = seqs[j][i]
		}
		out = append(out, TupleValue(row...))
	}
	return ListOf(out...), nil
}
