package runtime

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// method is a builtin bound to a receiver.
type method func(recv Value, args []Value) (Value, error)

// fixed wraps a method that takes exactly n arguments.
func fixed(n int, fn method) method {
	return func(recv Value, args []Value) (Value, error) {
		if len(args) != n {
			return None, fmt.Errorf("%w: takes %d argument(s), got %d", ErrArityMismatch, n, len(args))
		}
		return fn(recv, args)
	}
}

var listMethods = map[string]method{
	"append": fixed(1, func(recv Value, args []Value) (Value, error) {
		l := recv.Value.(*ListValue)
		l.Items = append(l.Items, args[0])
		return None, nil
	}),
	"extend": fixed(1, func(recv Value, args []Value) (Value, error) {
		items, err := args[0].Elements()
		if err != nil {
			return None, err
		}
		l := recv.Value.(*ListValue)
		l.Items = append(l.Items, items...)
		return None, nil
	}),
	"insert": fixed(2, func(recv Value, args []Value) (Value, error) {
		l := recv.Value.(*ListValue)
		i, err := args[0].GetInt()
		if err != nil {
			return None, err
		}
		n := int64(len(l.Items))
		if i < 0 {
			i = max(0, i+n)
		}
		i = min(i, n)
		l.Items = append(l.Items[:i], append([]Value{args[1]}, l.Items[i:]...)...)
		return None, nil
	}),
	"pop": func(recv Value, args []Value) (Value, error) {
		l := recv.Value.(*ListValue)
		idx := IntValue(-1)
		if len(args) == 1 {
			idx = args[0]
		} else if len(args) > 1 {
			return None, fmt.Errorf("%w: pop takes at most 1 argument", ErrArityMismatch)
		}
		pos, err := normalizeIndex(idx, len(l.Items))
		if err != nil {
			return None, err
		}
		out := l.Items[pos]
		l.Items = append(l.Items[:pos], l.Items[pos+1:]...)
		return out, nil
	},
	"index": fixed(1, func(recv Value, args []Value) (Value, error) {
		for i, item := range recv.Value.(*ListValue).Items {
			if Equal(item, args[0]) {
				return IntValue(int64(i)), nil
			}
		}
		return None, fmt.Errorf("%w: %s is not in list", ErrKeyNotFound, args[0].Repr())
	}),
	"count": fixed(1, func(recv Value, args []Value) (Value, error) {
		n := 0
		for _, item := range recv.Value.(*ListValue).Items {
			if Equal(item, args[0]) {
				n++
			}
		}
		return IntValue(int64(n)), nil
	}),
}

var mapMethods = map[string]method{
	"keys": fixed(0, func(recv Value, args []Value) (Value, error) {
		return ListOf(recv.Value.(*MapValue).Keys()...), nil
	}),
	"values": fixed(0, func(recv Value, args []Value) (Value, error) {
		return ListOf(recv.Value.(*MapValue).Values()...), nil
	}),
	"items": fixed(0, func(recv Value, args []Value) (Value, error) {
		return ListOf(gfn.Map(recv.Value.(*MapValue).Entries(), func(e MapEntry) Value {
			return TupleValue(e.Key, e.Value)
		})...), nil
	}),
	"get": func(recv Value, args []Value) (Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return None, fmt.Errorf("%w: get takes 1 or 2 arguments", ErrArityMismatch)
		}
		v, ok, err := recv.Value.(*MapValue).Get(args[0])
		if err != nil || ok {
			return v, err
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return None, nil
	},
	"pop": fixed(1, func(recv Value, args []Value) (Value, error) {
		m := recv.Value.(*MapValue)
		v, ok, err := m.Get(args[0])
		if err != nil {
			return None, err
		}
		if !ok {
			return None, fmt.Errorf("%w: %s", ErrKeyNotFound, args[0].Repr())
		}
		m.Delete(args[0])
		return v, nil
	}),
	"update": fixed(1, func(recv Value, args []Value) (Value, error) {
		other, err := args[0].GetMap()
		if err != nil {
			return None, err
		}
		m := recv.Value.(*MapValue)
		for _, e := range other.Entries() {
			m.Set(e.Key, e.Value)
		}
		return None, nil
	}),
}

var setMethods = map[string]method{
	"add": fixed(1, func(recv Value, args []Value) (Value, error) {
		return None, recv.Value.(*SetValue).Add(args[0])
	}),
	"remove": fixed(1, func(recv Value, args []Value) (Value, error) {
		ok, err := recv.Value.(*SetValue).Remove(args[0])
		if err == nil && !ok {
			err = fmt.Errorf("%w: %s", ErrKeyNotFound, args[0].Repr())
		}
		return None, err
	}),
	"discard": fixed(1, func(recv Value, args []Value) (Value, error) {
		_, err := recv.Value.(*SetValue).Remove(args[0])
		return None, err
	}),
}

func strArg(args []Value, i int) (string, error) { return args[i].GetString() }

var strMethods = map[string]method{
	"upper": fixed(0, func(recv Value, args []Value) (Value, error) {
		return StringValue(strings.ToUpper(recv.Value.(string))), nil
	}),
	"lower": fixed(0, func(recv Value, args []Value) (Value, error) {
		return StringValue(strings.ToLower(recv.Value.(string))), nil
	}),
	"strip": fixed(0, func(recv Value, args []Value) (Value, error) {
		return StringValue(strings.TrimSpace(recv.Value.(string))), nil
	}),
	"split": func(recv Value, args []Value) (Value, error) {
		s := recv.Value.(string)
		var parts []string
		switch len(args) {
		case 0:
			parts = strings.Fields(s)
		case 1:
			sep, err := strArg(args, 0)
			if err != nil {
				return None, err
			}
			parts = strings.Split(s, sep)
		default:
			return None, fmt.Errorf("%w: split takes at most 1 argument", ErrArityMismatch)
		}
		return ListOf(gfn.Map(parts, StringValue)...), nil
	},
	"join": fixed(1, func(recv Value, args []Value) (Value, error) {
		items, err := args[0].Elements()
		if err != nil {
			return None, err
		}
		parts := make([]string, len(items))
		for i, item := range items {
			if parts[i], err = item.GetString(); err != nil {
				return None, err
			}
		}
		return StringValue(strings.Join(parts, recv.Value.(string))), nil
	}),
	"startswith": fixed(1, func(recv Value, args []Value) (Value, error) {
		prefix, err := strArg(args, 0)
		return BoolValue(strings.HasPrefix(recv.Value.(string), prefix)), err
	}),
	"endswith": fixed(1, func(recv Value, args []Value) (Value, error) {
		suffix, err := strArg(args, 0)
		return BoolValue(strings.HasSuffix(recv.Value.(string), suffix)), err
	}),
	"replace": fixed(2, func(recv Value, args []Value) (Value, error) {
		old, err := strArg(args, 0)
		if err != nil {
			return None, err
		}
		repl, err := strArg(args, 1)
		if err != nil {
			return None, err
		}
		return StringValue(strings.ReplaceAll(recv.Value.(string), old, repl)), nil
	}),
	"find": fixed(1, func(recv Value, args []Value) (Value, error) {
		sub, err := strArg(args, 0)
		if err != nil {
			return None, err
		}
		s := recv.Value.(string)
		idx := strings.Index(s, sub)
		if idx > 0 {
			idx = len([]rune(s[:idx]))
		}
		return IntValue(int64(idx)), nil
	}),
}

// GetAttr applies `value.name`.  A dict's string keys shadow its methods.
func GetAttr(v Value, name string) (Value, error) {
	var table map[string]method
	switch v.Type {
	case MapType:
		if attr, ok, _ := v.Value.(*MapValue).Get(StringValue(name)); ok {
			return attr, nil
		}
		table = mapMethods
	case ListType:
		table = listMethods
	case SetType:
		table = setMethods
	case StrType:
		table = strMethods
	}
	if fn, ok := table[name]; ok {
		qualified := v.TypeName() + "." + name
		return FuncValue(NewBuiltin(qualified, func(args []Value, kwargs []KwArg) (Value, error) {
			if err := noKwargs(qualified, kwargs); err != nil {
				return None, err
			}
			return fn(v, args)
		})), nil
	}
	return None, fmt.Errorf("%w: %s has no attribute %s", ErrNoAttribute, v.TypeName(), name)
}
