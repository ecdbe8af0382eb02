package runtime

import (
	"errors"
	"fmt"

	"github.com/panyam/pylang/decl"
)

var (
	ErrUnboundName         = errors.New("unbound name")
	ErrArityMismatch       = errors.New("arity mismatch")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrDeleteMissingName   = errors.New("cannot delete missing name")
	ErrLoopBudgetExhausted = errors.New("loop budget exhausted")
	ErrHostEmbed           = errors.New("host embed failed")
	ErrRecursionLimit      = errors.New("recursion limit exceeded")
	ErrReadOnlyName        = errors.New("name is read-only")
	ErrNotCallable         = errors.New("value is not callable")
	ErrInvalidOperand      = errors.New("invalid operand")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrKeyNotFound         = errors.New("key not found")
	ErrNoAttribute         = errors.New("no such attribute")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrUnpack              = errors.New("cannot unpack")
	ErrLoad                = errors.New("load failed")
	ErrNotImplemented      = errors.New("evaluation for this node type not implemented")
)

// IsFatal reports errors raised by the interpreter's safety limits.  These
// abort a whole run and a REPL should reset rather than continue.
func IsFatal(err error) bool {
	return errors.Is(err, ErrLoopBudgetExhausted) || errors.Is(err, ErrRecursionLimit)
}

// ExecError is returned for a top level statement that failed.  It unwraps
// to the underlying sentinel.
type ExecError struct {
	Origin string
	Loc    decl.Location
	Stmt   decl.Stmt
	Err    error
}

func (e *ExecError) Error() string {
	where := e.Loc.String()
	if e.Origin != "" {
		where = e.Origin + ":" + where
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
