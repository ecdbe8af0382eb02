package runtime

import "fmt"

// Call resolves name against the bindings and then the constants and
// applies it.  An overload table is indexed by the total argument count,
// a function value is invoked whatever the count, and any other value
// stands for itself when called with no arguments.
func (e *Env) Call(name string, args []Value, kwargs []KwArg) (Value, error) {
	fn, ok := e.Lookup(name)
	if !ok {
		return None, fmt.Errorf("%w: %s", ErrUnboundName, name)
	}
	switch fn.Type {
	case OverloadsType:
		arity := len(args) + len(kwargs)
		impl, ok := fn.Value.(Overloads)[arity]
		if !ok {
			return None, fmt.Errorf("%w: %s has no overload for %d argument(s)", ErrArityMismatch, name, arity)
		}
		return impl.Call(args, kwargs)
	case FuncType:
		return fn.Value.(Callable).Call(args, kwargs)
	}
	if len(args)+len(kwargs) == 0 {
		return fn, nil
	}
	return None, fmt.Errorf("%w: %s is a %s", ErrNotCallable, name, fn.TypeName())
}

// BifixName is the binding key for a bifix operator with the given delimiters.
func BifixName(left, right string) string {
	return left + " " + right
}
