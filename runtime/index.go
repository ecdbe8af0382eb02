package runtime

import (
	"fmt"
)

// Index applies `container[index]`.  A slice index works on strings,
// tuples and lists and always produces a new value of the same kind.
func Index(container, index Value) (Value, error) {
	if container.Type == MapType {
		v, ok, err := container.Value.(*MapValue).Get(index)
		if err != nil {
			return None, err
		}
		if !ok {
			return None, fmt.Errorf("%w: %s", ErrKeyNotFound, index.Repr())
		}
		return v, nil
	}

	var items []Value
	var runes []rune
	switch container.Type {
	case StrType:
		runes = []rune(container.Value.(string))
	case TupleType:
		items = container.Value.([]Value)
	case ListType:
		items = container.Value.(*ListValue).Items
	default:
		return None, fmt.Errorf("%w: %s is not subscriptable", ErrInvalidOperand, container.TypeName())
	}
	length := len(items)
	if container.Type == StrType {
		length = len(runes)
	}

	if index.Type == SliceType {
		start, stop, step, err := sliceIndices(index.Value.(*SliceValue), length)
		if err != nil {
			return None, err
		}
		picked := []int{}
		for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
			picked = append(picked, i)
		}
		switch container.Type {
		case StrType:
			out := make([]rune, len(picked))
			for i, p := range picked {
				out[i] = runes[p]
			}
			return StringValue(string(out)), nil
		}
		out := make([]Value, len(picked))
		for i, p := range picked {
			out[i] = items[p]
		}
		if container.Type == ListType {
			return ListOf(out...), nil
		}
		return TupleValue(out...), nil
	}

	pos, err := normalizeIndex(index, length)
	if err != nil {
		return None, err
	}
	if container.Type == StrType {
		return StringValue(string(runes[pos])), nil
	}
	return items[pos], nil
}

// normalizeIndex resolves a possibly negative index against length.
func normalizeIndex(index Value, length int) (int, error) {
	if index.Type != IntType && index.Type != BoolType {
		return 0, fmt.Errorf("%w: indices must be integers, not %s", ErrInvalidOperand, index.TypeName())
	}
	i, _ := index.GetInt()
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, fmt.Errorf("%w: %s", ErrIndexOutOfRange, index.Repr())
	}
	return int(i), nil
}

// sliceIndices fills in missing bounds and clamps them the way sequence
// slicing does: a positive step defaults to [0, length) and a negative
// step to [length-1, -1).
func sliceIndices(s *SliceValue, length int) (start, stop, step int, err error) {
	step = 1
	if !s.Step.IsNone() {
		st, err := s.Step.GetInt()
		if err != nil {
			return 0, 0, 0, err
		}
		if st == 0 {
			return 0, 0, 0, fmt.Errorf("%w: slice step cannot be zero", ErrInvalidOperand)
		}
		step = int(st)
	}
	bound := func(v Value, def int) (int, error) {
		if v.IsNone() {
			return def, nil
		}
		i, err := v.GetInt()
		if err != nil {
			return 0, err
		}
		n := int(i)
		if n < 0 {
			n += length
		}
		lo, hi := 0, length
		if step < 0 {
			lo, hi = -1, length-1
		}
		return max(lo, min(n, hi)), nil
	}
	if step > 0 {
		if start, err = bound(s.Start, 0); err != nil {
			return
		}
		stop, err = bound(s.Stop, length)
	} else {
		if start, err = bound(s.Start, length-1); err != nil {
			return
		}
		stop, err = bound(s.Stop, -1)
	}
	return
}
