package runtime

import (
	"fmt"
	"maps"
	"slices"
)

// Control is the pending structured jump left behind by a statement.
type Control int

const (
	ControlNone Control = iota
	ControlBreak
	ControlContinue
	ControlReturn
)

func (c Control) String() string {
	switch c {
	case ControlBreak:
		return "break"
	case ControlContinue:
		return "continue"
	case ControlReturn:
		return "return"
	}
	return "none"
}

// execState is shared by a root environment and every child derived from it.
type execState struct {
	loopBudget   int
	callDepth    int
	maxCallDepth int
}

// Env is one scope of a running program.
//
// constants is shared read-only by every Env of an interpreter.  bindings
// is private to the Env; children start from a shallow copy so writes
// inside a call never leak to the caller while containers still alias.
type Env struct {
	constants   map[string]Value
	bindings    map[string]Value
	control     Control
	returnValue Value
	state       *execState
}

// NewEnv creates a fresh top-level environment.  A maxCallDepth <= 0
// disables the recursion ceiling.
func NewEnv(constants map[string]Value, loopBudget, maxCallDepth int) *Env {
	if constants == nil {
		constants = map[string]Value{}
	}
	return &Env{
		constants:   constants,
		bindings:    map[string]Value{},
		returnValue: None,
		state:       &execState{loopBudget: loopBudget, maxCallDepth: maxCallDepth},
	}
}

// Child returns a scope for a call, lambda or let.  It copies the current
// bindings and shares constants and the execution limits.
func (e *Env) Child() *Env {
	return &Env{
		constants:   e.constants,
		bindings:    maps.Clone(e.bindings),
		returnValue: None,
		state:       e.state,
	}
}

// Lookup finds a name in the bindings and then the constants.
func (e *Env) Lookup(name string) (Value, bool) {
	if v, ok := e.bindings[name]; ok {
		return v, true
	}
	v, ok := e.constants[name]
	return v, ok
}

func (e *Env) Get(name string) (Value, error) {
	if v, ok := e.Lookup(name); ok {
		return v, nil
	}
	return None, fmt.Errorf("%w: %s", ErrUnboundName, name)
}

func (e *Env) Constant(name string) (Value, bool) {
	v, ok := e.constants[name]
	return v, ok
}

func (e *Env) IsConstant(name string) bool {
	_, ok := e.constants[name]
	return ok
}

func (e *Env) Set(name string, value Value) error {
	if e.IsConstant(name) {
		return fmt.Errorf("%w: %s", ErrReadOnlyName, name)
	}
	e.bindings[name] = value
	return nil
}

// Set multiple key/values at once.  Nothing is written if any name is read-only.
func (e *Env) SetMany(kvpairs map[string]Value) error {
	for k := range kvpairs {
		if e.IsConstant(k) {
			return fmt.Errorf("%w: %s", ErrReadOnlyName, k)
		}
	}
	maps.Copy(e.bindings, kvpairs)
	return nil
}

func (e *Env) Delete(name string) error {
	if e.IsConstant(name) {
		return fmt.Errorf("%w: %s", ErrReadOnlyName, name)
	}
	if _, ok := e.bindings[name]; !ok {
		return fmt.Errorf("%w: %s", ErrDeleteMissingName, name)
	}
	delete(e.bindings, name)
	return nil
}

// Bindings exposes the live bindings map.  Only the embed hook is expected
// to write through it.
func (e *Env) Bindings() map[string]Value { return e.bindings }

// Keys returns the bound names in sorted order (constants excluded).
func (e *Env) Keys() []string {
	return slices.Sorted(maps.Keys(e.bindings))
}

// All returns a copy of the bindings.
func (e *Env) All() map[string]Value {
	return maps.Clone(e.bindings)
}

// --- Control register ---

func (e *Env) Control() Control  { return e.control }
func (e *Env) ReturnValue() Value { return e.returnValue }

func (e *Env) SetControl(c Control) { e.control = c }

func (e *Env) SetReturn(v Value) {
	e.returnValue = v
	e.control = ControlReturn
}

func (e *Env) ClearControl() { e.control = ControlNone }

// --- Limits ---

// LoopBudget is the number of loop iterations still allowed.
func (e *Env) LoopBudget() int { return e.state.loopBudget }

// consumeIteration charges one loop iteration against the shared budget.
func (e *Env) consumeIteration() error {
	if e.state.loopBudget <= 0 {
		return ErrLoopBudgetExhausted
	}
	e.state.loopBudget--
	return nil
}

func (e *Env) enterCall(name string) error {
	if e.state.maxCallDepth > 0 && e.state.callDepth >= e.state.maxCallDepth {
		return fmt.Errorf("%w: depth %d calling %s", ErrRecursionLimit, e.state.callDepth, name)
	}
	e.state.callDepth++
	return nil
}

func (e *Env) exitCall() { e.state.callDepth-- }

// String representation for debugging
func (e *Env) String() string {
	return fmt.Sprintf("Env{bindings: %v, control: %s, budget: %d}", e.Keys(), e.control, e.state.loopBudget)
}
