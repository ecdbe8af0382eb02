package runtime

import (
	"fmt"

	"github.com/panyam/pylang/decl"
)

// Eval evaluates an expression.  It never writes to env's bindings.
func (in *Interpreter) Eval(expr decl.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *decl.NoneLit:
		return None, nil
	case *decl.BoolLit:
		return BoolValue(e.Value), nil
	case *decl.IntLit:
		return IntValue(e.Value), nil
	case *decl.NumberLit:
		return NumberValue(e.Value), nil
	case *decl.StringLit:
		return StringValue(e.Value), nil
	case *decl.Variable:
		return env.Get(e.Name)
	case *decl.ConstantRef:
		if v, ok := env.Constant(e.Name); ok {
			return v, nil
		}
		return None, fmt.Errorf("%w: constant %s", ErrUnboundName, e.Name)
	case *decl.CallExpr:
		args, kwargs, err := in.evalArgs(e.Args, env)
		if err != nil {
			return None, err
		}
		return env.Call(e.Name, args, kwargs)
	case *decl.UnaryExpr:
		v, err := in.Eval(e.Operand, env)
		if err != nil {
			return None, err
		}
		return env.Call(e.Operator, []Value{v}, nil)
	case *decl.BinaryExpr:
		return in.evalBinary(e, env)
	case *decl.CompareExpr:
		return in.evalCompare(e, env)
	case *decl.TernaryExpr:
		cond, err := in.Eval(e.Cond, env)
		if err != nil {
			return None, err
		}
		if cond.Truthy() {
			return in.Eval(e.Then, env)
		}
		return in.Eval(e.Else, env)
	case *decl.BifixExpr:
		args, err := in.evalAll(e.Args, env)
		if err != nil {
			return None, err
		}
		return env.Call(BifixName(e.Left, e.Right), args, nil)
	case *decl.PostfixExpr:
		return in.evalPostfix(e, env)
	case *decl.SliceExpr:
		parts := [3]Value{None, None, None}
		for i, part := range []decl.Expr{e.Start, e.Stop, e.Step} {
			if part == nil {
				continue
			}
			v, err := in.Eval(part, env)
			if err != nil {
				return None, err
			}
			parts[i] = v
		}
		return SliceOf(parts[0], parts[1], parts[2]), nil
	case *decl.TupleExpr:
		items, err := in.evalAll(e.Items, env)
		if err != nil {
			return None, err
		}
		return TupleValue(items...), nil
	case *decl.ListExpr:
		items, err := in.evalAll(e.Items, env)
		if err != nil {
			return None, err
		}
		return ListOf(items...), nil
	case *decl.SetExpr:
		items, err := in.evalAll(e.Items, env)
		if err != nil {
			return None, err
		}
		return SetOf(items...)
	case *decl.MapExpr:
		m := NewMap()
		for _, entry := range e.Entries {
			k, err := in.Eval(entry.Key, env)
			if err != nil {
				return None, err
			}
			v, err := in.Eval(entry.Value, env)
			if err != nil {
				return None, err
			}
			if err := m.Set(k, v); err != nil {
				return None, err
			}
		}
		return Value{MapType, m}, nil
	case *decl.LambdaExpr:
		c, err := in.newClosure("<lambda>", e.Params, nil, e.Body, env.Child())
		if err != nil {
			return None, err
		}
		return FuncValue(c), nil
	case *decl.LetExpr:
		values, err := in.evalAll(e.Values, env)
		if err != nil {
			return None, err
		}
		local := env.Child()
		for i, name := range e.Names {
			if err := local.Set(name, values[i]); err != nil {
				return None, err
			}
		}
		return in.Eval(e.Body, local)
	case nil:
		return None, fmt.Errorf("%w: nil expression", ErrNotImplemented)
	}
	return None, fmt.Errorf("%w: %T", ErrNotImplemented, expr)
}

func (in *Interpreter) evalAll(exprs []decl.Expr, env *Env) ([]Value, error) {
	out := make([]Value, len(exprs))
	for i, e := range exprs {
		v, err := in.Eval(e, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// evalArgs evaluates call arguments, splicing `*xs` into the positionals
// and the string keyed entries of `**kw` into the keywords.
func (in *Interpreter) evalArgs(args []decl.Arg, env *Env) (positional []Value, kwargs []KwArg, err error) {
	for _, a := range args {
		v, err := in.Eval(a.Value, env)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case a.Unpack == decl.UnpackArgs:
			items, err := v.Elements()
			if err != nil {
				return nil, nil, fmt.Errorf("%w: *%s: %w", ErrUnpack, a.Value, err)
			}
			positional = append(positional, items...)
		case a.Unpack == decl.UnpackKwargs:
			m, err := v.GetMap()
			if err != nil {
				return nil, nil, fmt.Errorf("%w: **%s: %w", ErrUnpack, a.Value, err)
			}
			for _, entry := range m.Entries() {
				name, err := entry.Key.GetString()
				if err != nil {
					return nil, nil, fmt.Errorf("%w: keywords must be strings", ErrUnpack)
				}
				kwargs = append(kwargs, KwArg{name, entry.Value})
			}
		case a.Name != "":
			kwargs = append(kwargs, KwArg{a.Name, v})
		default:
			positional = append(positional, v)
		}
	}
	return
}

// evalBinary evaluates every operand once, left to right, and then folds
// the operators over them: from the left for left associative chains and
// from the right otherwise.  Mixed operators are applied one at a time to
// the rolling result.
func (in *Interpreter) evalBinary(e *decl.BinaryExpr, env *Env) (Value, error) {
	vals, err := in.evalAll(e.Operands, env)
	if err != nil {
		return None, err
	}
	if len(vals) != len(e.Operators)+1 {
		return None, fmt.Errorf("%w: malformed operator chain %s", ErrInvalidOperand, e)
	}
	if e.RightAssoc {
		acc := vals[len(vals)-1]
		for i := len(e.Operators) - 1; i >= 0; i-- {
			if acc, err = env.Call(e.Operators[i], []Value{vals[i], acc}, nil); err != nil {
				return None, err
			}
		}
		return acc, nil
	}
	acc := vals[0]
	for i, op := range e.Operators {
		if acc, err = env.Call(op, []Value{acc, vals[i+1]}, nil); err != nil {
			return None, err
		}
	}
	return acc, nil
}

// evalCompare reads operands lazily and stops at the first pair that does
// not hold, so operands after it are never evaluated.
func (in *Interpreter) evalCompare(e *decl.CompareExpr, env *Env) (Value, error) {
	left, err := in.Eval(e.Operands[0], env)
	if err != nil {
		return None, err
	}
	for i, op := range e.Operators {
		right, err := in.Eval(e.Operands[i+1], env)
		if err != nil {
			return None, err
		}
		ok, err := env.Call(op, []Value{left, right}, nil)
		if err != nil {
			return None, err
		}
		if !ok.Truthy() {
			return False, nil
		}
		left = right
	}
	return True, nil
}

func (in *Interpreter) evalPostfix(e *decl.PostfixExpr, env *Env) (Value, error) {
	v, err := in.Eval(e.Operand, env)
	if err != nil {
		return None, err
	}
	for _, op := range e.Ops {
		switch op := op.(type) {
		case decl.IndexOp:
			idx, err := in.Eval(op.Index, env)
			if err != nil {
				return None, err
			}
			if v, err = Index(v, idx); err != nil {
				return None, err
			}
		case decl.CallOp:
			args, kwargs, err := in.evalArgs(op.Args, env)
			if err != nil {
				return None, err
			}
			if v, err = CallValue(v, args, kwargs); err != nil {
				return None, err
			}
		case decl.AttrOp:
			if v, err = GetAttr(v, op.Name); err != nil {
				return None, err
			}
		default:
			return None, fmt.Errorf("%w: postfix %T", ErrNotImplemented, op)
		}
	}
	return v, nil
}
