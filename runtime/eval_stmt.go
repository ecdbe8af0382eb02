package runtime

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
	"github.com/panyam/pylang/decl"
)

// Exec executes a statement.  Its only effects are on env's bindings and
// control register (and whatever print or embed do outside).
func (in *Interpreter) Exec(stmt decl.Stmt, env *Env) error {
	switch s := stmt.(type) {
	case *decl.Block:
		return in.execBlock(s, env)
	case *decl.ExprStmt:
		_, err := in.Eval(s.X, env)
		return err
	case *decl.AssignStmt:
		return in.execAssign(s, env)
	case *decl.IfStmt:
		for _, br := range s.Branches {
			cond, err := in.Eval(br.Cond, env)
			if err != nil {
				return err
			}
			if cond.Truthy() {
				return in.execBlock(br.Body, env)
			}
		}
		if s.Else != nil {
			return in.execBlock(s.Else, env)
		}
		return nil
	case *decl.WhileStmt:
		return in.execWhile(s, env)
	case *decl.ForStmt:
		return in.execFor(s, env)
	case *decl.BreakStmt:
		env.SetControl(ControlBreak)
		return nil
	case *decl.ContinueStmt:
		env.SetControl(ControlContinue)
		return nil
	case *decl.ReturnStmt:
		var result Value
		switch len(s.Values) {
		case 0:
			result = None
		case 1:
			v, err := in.Eval(s.Values[0], env)
			if err != nil {
				return err
			}
			result = v
		default:
			items, err := in.evalAll(s.Values, env)
			if err != nil {
				return err
			}
			result = TupleValue(items...)
		}
		env.SetReturn(result)
		return nil
	case *decl.PassStmt:
		return nil
	case *decl.PrintStmt:
		vals, err := in.evalAll(s.Args, env)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(in.out, strings.Join(gfn.Map(vals, func(v Value) string { return v.String() }), " "))
		return err
	case *decl.DeleteStmt:
		for _, name := range s.Names {
			if env.IsConstant(name) {
				return fmt.Errorf("%w: %s", ErrReadOnlyName, name)
			}
			if _, ok := env.Bindings()[name]; !ok {
				return fmt.Errorf("%w: %s", ErrDeleteMissingName, name)
			}
		}
		for _, name := range s.Names {
			if err := env.Delete(name); err != nil {
				return err
			}
		}
		return nil
	case *decl.DefStmt:
		return in.execDef(s, env)
	case *decl.EmbedStmt:
		if in.embed == nil {
			return fmt.Errorf("%w: no embed hook installed", ErrHostEmbed)
		}
		if err := in.embed(s.Code, env.Bindings()); err != nil {
			return fmt.Errorf("%w: %w", ErrHostEmbed, err)
		}
		return nil
	case nil:
		return fmt.Errorf("%w: nil statement", ErrNotImplemented)
	}
	return fmt.Errorf("%w: %T", ErrNotImplemented, stmt)
}

// execBlock runs statements in order and stops at the first one that
// leaves a control signal for an enclosing loop or call.
func (in *Interpreter) execBlock(b *decl.Block, env *Env) error {
	if b == nil {
		return nil
	}
	for _, stmt := range b.Stmts {
		if err := in.Exec(stmt, env); err != nil {
			return err
		}
		if env.Control() != ControlNone {
			return nil
		}
	}
	return nil
}

// execAssign checks every target before writing any of them.
func (in *Interpreter) execAssign(s *decl.AssignStmt, env *Env) error {
	var value Value
	if len(s.Values) == 1 {
		v, err := in.Eval(s.Values[0], env)
		if err != nil {
			return err
		}
		value = v
	} else {
		items, err := in.evalAll(s.Values, env)
		if err != nil {
			return err
		}
		value = TupleValue(items...)
	}

	values := []Value{value}
	if len(s.Targets) > 1 {
		items, err := unpack(value, len(s.Targets))
		if err != nil {
			return err
		}
		values = items
	}

	for i, target := range s.Targets {
		if err := assertType(target, values[i]); err != nil {
			return err
		}
		if env.IsConstant(target.Name) {
			return fmt.Errorf("%w: %s", ErrReadOnlyName, target.Name)
		}
	}
	// Repeated names: the last write wins, as if assigned in order.
	for i, target := range s.Targets {
		if err := env.Set(target.Name, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func unpack(v Value, n int) ([]Value, error) {
	if v.Type != TupleType && v.Type != ListType {
		return nil, fmt.Errorf("%w: %s into %d names", ErrUnpack, v.TypeName(), n)
	}
	items, _ := v.Elements()
	if len(items) != n {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrUnpack, n, len(items))
	}
	return items, nil
}

func assertType(target decl.AssignTarget, v Value) error {
	if target.TypeName == "" {
		return nil
	}
	t, ok := TypeByName(target.TypeName)
	if !ok {
		return fmt.Errorf("%w: unknown type %s for %s", ErrTypeMismatch, target.TypeName, target.Name)
	}
	if !t.Accepts(v) {
		return fmt.Errorf("%w: %s expects %s, got %s", ErrTypeMismatch, target.Name, t, v.TypeName())
	}
	return nil
}

// afterIteration consumes a loop body's control signal.  It reports
// whether the loop has to stop.  A return stays set for the caller.
func afterIteration(env *Env) (stop bool) {
	switch env.Control() {
	case ControlBreak:
		env.ClearControl()
		return true
	case ControlContinue:
		env.ClearControl()
	case ControlReturn:
		return true
	}
	return false
}

func (in *Interpreter) execWhile(s *decl.WhileStmt, env *Env) error {
	for {
		cond, err := in.Eval(s.Cond, env)
		if err != nil {
			return err
		}
		if !cond.Truthy() {
			return nil
		}
		if err := env.consumeIteration(); err != nil {
			return err
		}
		if err := in.execBlock(s.Body, env); err != nil {
			return err
		}
		if afterIteration(env) {
			return nil
		}
	}
}

func (in *Interpreter) execFor(s *decl.ForStmt, env *Env) error {
	seq, err := in.Eval(s.Iter, env)
	if err != nil {
		return err
	}
	items, err := seq.Elements()
	if err != nil {
		return err
	}
	for _, item := range items {
		if len(s.Targets) == 1 {
			err = env.Set(s.Targets[0], item)
		} else {
			var parts []Value
			if parts, err = unpack(item, len(s.Targets)); err == nil {
				for i, name := range s.Targets {
					if err = env.Set(name, parts[i]); err != nil {
						break
					}
				}
			}
		}
		if err != nil {
			return err
		}
		if err := env.consumeIteration(); err != nil {
			return err
		}
		if err := in.execBlock(s.Body, env); err != nil {
			return err
		}
		if afterIteration(env) {
			return nil
		}
	}
	return nil
}

func (in *Interpreter) execDef(s *decl.DefStmt, env *Env) error {
	key := s.Name
	if s.Kind == decl.DefBifix {
		key = BifixName(s.Left, s.Right)
	}
	if env.IsConstant(key) {
		return fmt.Errorf("%w: %s", ErrReadOnlyName, key)
	}
	c, err := in.newClosure(key, s.Params, s.Body, nil, env)
	if err != nil {
		return err
	}
	in.logger.Debug("defined function", "name", key, "params", len(s.Params))
	return env.Set(key, FuncValue(c))
}
