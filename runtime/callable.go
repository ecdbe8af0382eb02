package runtime

import "fmt"

// KwArg is a keyword argument.  Keyword arguments keep their call order.
type KwArg struct {
	Name  string
	Value Value
}

// Callable is anything that can sit behind a function value: builtins,
// user closures, lambdas and bound methods.
type Callable interface {
	Name() string
	Call(args []Value, kwargs []KwArg) (Value, error)
}

// Builtin wraps a Go function as a Callable.
type Builtin struct {
	name string
	fn   func(args []Value, kwargs []KwArg) (Value, error)
}

func NewBuiltin(name string, fn func(args []Value, kwargs []KwArg) (Value, error)) *Builtin {
	return &Builtin{name: name, fn: fn}
}

func (b *Builtin) Name() string { return b.name }

func (b *Builtin) Call(args []Value, kwargs []KwArg) (Value, error) {
	return b.fn(args, kwargs)
}

// Fixed arity helpers.  They reject keyword arguments.

func Func1(name string, fn func(a Value) (Value, error)) *Builtin {
	return NewBuiltin(name, func(args []Value, kwargs []KwArg) (Value, error) {
		if len(args) != 1 || len(kwargs) > 0 {
			return None, arityError(name, 1, len(args)+len(kwargs))
		}
		return fn(args[0])
	})
}

func Func2(name string, fn func(a, b Value) (Value, error)) *Builtin {
	return NewBuiltin(name, func(args []Value, kwargs []KwArg) (Value, error) {
		if len(args) != 2 || len(kwargs) > 0 {
			return None, arityError(name, 2, len(args)+len(kwargs))
		}
		return fn(args[0], args[1])
	})
}

func arityError(name string, want, got int) error {
	return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrArityMismatch, name, want, got)
}

// CallValue invokes a function or overload value with the given arguments.
func CallValue(fn Value, args []Value, kwargs []KwArg) (Value, error) {
	switch fn.Type {
	case FuncType:
		return fn.Value.(Callable).Call(args, kwargs)
	case OverloadsType:
		arity := len(args) + len(kwargs)
		impl, ok := fn.Value.(Overloads)[arity]
		if !ok {
			return None, fmt.Errorf("%w: no overload for %d argument(s)", ErrArityMismatch, arity)
		}
		return impl.Call(args, kwargs)
	}
	return None, fmt.Errorf("%w: %s", ErrNotCallable, fn.TypeName())
}
