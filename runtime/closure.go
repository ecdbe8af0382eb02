package runtime

import (
	"fmt"

	"github.com/panyam/pylang/decl"
)

// Closure is a user defined function or lambda.
//
// It keeps a reference to its defining environment and copies that
// environment's bindings afresh on every call, so a function sees names
// bound after its definition (including itself) but writes made during a
// call stay inside the call.
type Closure struct {
	name     string
	params   []decl.Param
	defaults map[string]Value
	body     *decl.Block // set for def
	expr     decl.Expr   // set for lambda
	defEnv   *Env
	interp   *Interpreter
}

// newClosure evaluates parameter defaults in the defining environment.
func (in *Interpreter) newClosure(name string, params []decl.Param, body *decl.Block, expr decl.Expr, env *Env) (*Closure, error) {
	c := &Closure{
		name:     name,
		params:   params,
		defaults: map[string]Value{},
		body:     body,
		expr:     expr,
		defEnv:   env,
		interp:   in,
	}
	for _, p := range params {
		if p.Default == nil {
			continue
		}
		v, err := in.Eval(p.Default, env)
		if err != nil {
			return nil, fmt.Errorf("default for %s.%s: %w", name, p.Name, err)
		}
		c.defaults[p.Name] = v
	}
	return c, nil
}

func (c *Closure) Name() string { return c.name }

func (c *Closure) Call(args []Value, kwargs []KwArg) (Value, error) {
	if err := c.defEnv.enterCall(c.name); err != nil {
		return None, err
	}
	defer c.defEnv.exitCall()

	env := c.defEnv.Child()
	if err := c.bind(env, args, kwargs); err != nil {
		return None, err
	}
	if c.expr != nil {
		return c.interp.Eval(c.expr, env)
	}
	if err := c.interp.execBlock(c.body, env); err != nil {
		return None, err
	}
	if env.Control() == ControlReturn {
		return env.ReturnValue(), nil
	}
	return None, nil
}

// bind assigns defaults, then positionals, then keywords, then the rest
// parameters.
func (c *Closure) bind(env *Env, args []Value, kwargs []KwArg) error {
	locals := map[string]Value{}
	var plain []string
	var rest, kwrest string
	for _, p := range c.params {
		switch p.Kind {
		case decl.ParamRest:
			rest = p.Name
		case decl.ParamKwRest:
			kwrest = p.Name
		default:
			plain = append(plain, p.Name)
			if d, ok := c.defaults[p.Name]; ok {
				locals[p.Name] = d
			}
		}
	}

	positional := map[string]bool{}
	for i, a := range args {
		if i < len(plain) {
			locals[plain[i]] = a
			positional[plain[i]] = true
		}
	}
	if len(args) > len(plain) {
		if rest == "" {
			return fmt.Errorf("%w: %s takes %d positional argument(s), got %d", ErrArityMismatch, c.name, len(plain), len(args))
		}
		locals[rest] = TupleValue(append([]Value{}, args[len(plain):]...)...)
	} else if rest != "" {
		locals[rest] = TupleValue()
	}

	extra := NewMap()
	for _, kw := range kwargs {
		switch {
		case positional[kw.Name]:
			return fmt.Errorf("%w: %s got multiple values for %s", ErrArityMismatch, c.name, kw.Name)
		case isPlain(plain, kw.Name):
			locals[kw.Name] = kw.Value
		case kwrest != "":
			extra.Set(StringValue(kw.Name), kw.Value)
		default:
			return fmt.Errorf("%w: %s got an unexpected keyword argument %s", ErrArityMismatch, c.name, kw.Name)
		}
	}
	if kwrest != "" {
		locals[kwrest] = Value{MapType, extra}
	}

	for _, name := range plain {
		if _, ok := locals[name]; !ok {
			return fmt.Errorf("%w: %s missing argument %s", ErrArityMismatch, c.name, name)
		}
	}
	return env.SetMany(locals)
}

func isPlain(plain []string, name string) bool {
	for _, p := range plain {
		if p == name {
			return true
		}
	}
	return false
}
