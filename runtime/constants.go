package runtime

import "maps"

// ConstantsBuilder assembles the read-only table an interpreter is seeded
// with.  Each interpreter gets its own copy from Build.
type ConstantsBuilder struct {
	values map[string]Value
}

func NewConstants() *ConstantsBuilder {
	return &ConstantsBuilder{values: map[string]Value{}}
}

// From starts with a copy of an existing table.
func (b *ConstantsBuilder) From(values map[string]Value) *ConstantsBuilder {
	maps.Copy(b.values, values)
	return b
}

func (b *ConstantsBuilder) Set(name string, v Value) *ConstantsBuilder {
	b.values[name] = v
	return b
}

// Func binds a variadic builtin under name.
func (b *ConstantsBuilder) Func(name string, fn func(args []Value, kwargs []KwArg) (Value, error)) *ConstantsBuilder {
	return b.Set(name, FuncValue(NewBuiltin(name, fn)))
}

func (b *ConstantsBuilder) Func1(name string, fn func(a Value) (Value, error)) *ConstantsBuilder {
	return b.Set(name, FuncValue(Func1(name, fn)))
}

func (b *ConstantsBuilder) Func2(name string, fn func(a, b Value) (Value, error)) *ConstantsBuilder {
	return b.Set(name, FuncValue(Func2(name, fn)))
}

// Overload adds an implementation for one arity of name, turning name into
// an overload table if it is not one already.
func (b *ConstantsBuilder) Overload(name string, arity int, impl Callable) *ConstantsBuilder {
	table := Overloads{}
	if existing, ok := b.values[name]; ok && existing.Type == OverloadsType {
		table = maps.Clone(existing.Value.(Overloads))
	}
	table[arity] = impl
	return b.Set(name, OverloadsValue(table))
}

// Unary and Binary are Overload shorthands for operators shared between a
// prefix and an infix form, such as `-`.
func (b *ConstantsBuilder) Unary(op string, fn func(a Value) (Value, error)) *ConstantsBuilder {
	return b.Overload(op, 1, Func1(op, fn))
}

func (b *ConstantsBuilder) Binary(op string, fn func(a, b Value) (Value, error)) *ConstantsBuilder {
	return b.Overload(op, 2, Func2(op, fn))
}

// Bifix binds fn under the key of the (left, right) delimiter pair.
func (b *ConstantsBuilder) Bifix(left, right string, fn func(a Value) (Value, error)) *ConstantsBuilder {
	name := BifixName(left, right)
	return b.Set(name, FuncValue(Func1(name, fn)))
}

func (b *ConstantsBuilder) Build() map[string]Value {
	return maps.Clone(b.values)
}

// StandardConstants is the default table: literals, the operator set and
// the builtin functions.
func StandardConstants() *ConstantsBuilder {
	b := NewConstants().
		Set("True", True).
		Set("False", False).
		Set("None", None).
		Unary("+", Pos).Binary("+", Add).
		Unary("-", Neg).Binary("-", Sub).
		Unary("~", Invert).
		Unary("!", Factorial).
		Binary("*", Mul).
		Binary("/", Div).
		Binary("//", FloorDiv).
		Binary("%", Mod).
		Binary("^", Pow).
		Binary("**", Pow).
		Binary("==", Eq).
		Binary("!=", Ne).
		Binary("<", Lt).
		Binary("<=", Le).
		Binary(">", Gt).
		Binary(">=", Ge).
		Binary("in", func(a, c Value) (Value, error) {
			ok, err := Contains(c, a)
			return BoolValue(ok), err
		}).
		Binary("not in", func(a, c Value) (Value, error) {
			ok, err := Contains(c, a)
			return BoolValue(!ok), err
		}).
		Unary("not", Not).
		Binary("and", And).
		Binary("or", Or).
		Bifix("|", "|", Abs).
		Bifix("⌊", "⌋", Floor).
		Bifix("⌈", "⌉", Ceil)
	registerBuiltins(b)
	return b
}
