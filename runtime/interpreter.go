package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/panyam/pylang/decl"
)

const (
	DefaultLoopBudget   = 5000
	DefaultMaxCallDepth = 1000
	DefaultMaxLoadDepth = 10
)

// EmbedHook runs a raw block of host code against the live bindings.  It
// may read and write the map.
type EmbedHook func(code string, bindings map[string]Value) error

// ProgramLoader resolves and parses the target of a `load` statement.
// importer is the path of the loading program ("" for inline sources).
// The returned program's Path must be its canonical location.
type ProgramLoader interface {
	Load(importer, path string) (*decl.Program, error)
}

// Interpreter executes programs against one root environment.  It is not
// safe for concurrent use; independent interpreters share nothing.
type Interpreter struct {
	constants    map[string]Value
	env          *Env
	out          io.Writer
	logger       *slog.Logger
	embed        EmbedHook
	loader       ProgramLoader
	loopBudget   int
	maxCallDepth int
	maxLoadDepth int

	loading   []string
	loaded    map[string]bool
	lastValue Value
}

type Option func(*Interpreter)

func WithOutput(w io.Writer) Option { return func(in *Interpreter) { in.out = w } }
func WithLogger(l *slog.Logger) Option { return func(in *Interpreter) { in.logger = l } }
func WithLoopBudget(n int) Option { return func(in *Interpreter) { in.loopBudget = n } }
func WithMaxCallDepth(n int) Option { return func(in *Interpreter) { in.maxCallDepth = n } }
func WithMaxLoadDepth(n int) Option { return func(in *Interpreter) { in.maxLoadDepth = n } }
func WithEmbedHook(h EmbedHook) Option { return func(in *Interpreter) { in.embed = h } }
func WithLoader(l ProgramLoader) Option { return func(in *Interpreter) { in.loader = l } }

// NewInterpreter creates an interpreter seeded with constants, typically
// StandardConstants().Build().
func NewInterpreter(constants map[string]Value, opts ...Option) *Interpreter {
	in := &Interpreter{
		constants:    constants,
		out:          os.Stdout,
		logger:       slog.Default(),
		loopBudget:   DefaultLoopBudget,
		maxCallDepth: DefaultMaxCallDepth,
		maxLoadDepth: DefaultMaxLoadDepth,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.Reset()
	return in
}

// Reset discards all bindings and restores the loop budget.
func (in *Interpreter) Reset() {
	in.env = NewEnv(in.constants, in.loopBudget, in.maxCallDepth)
	in.loading = nil
	in.loaded = map[string]bool{}
	in.lastValue = None
}

func (in *Interpreter) Env() *Env { return in.env }

// Bindings returns a snapshot of the root bindings.
func (in *Interpreter) Bindings() map[string]Value { return in.env.All() }

// LastValue is the value of the most recent top level expression statement.
func (in *Interpreter) LastValue() Value { return in.lastValue }

// Run executes the program's loads and then its statements in the root
// environment.  The first failing statement aborts the rest of the program;
// bindings written by earlier statements are kept.
func (in *Interpreter) Run(prog *decl.Program) error {
	if prog.Path != "" {
		in.loading = append(in.loading, prog.Path)
		defer func() { in.loading = in.loading[:len(in.loading)-1] }()
		in.loaded[prog.Path] = true
	}
	for _, load := range prog.Loads {
		for _, path := range load.Paths {
			if err := in.load(prog.Path, path); err != nil {
				return in.wrap(prog, load, err)
			}
		}
	}
	if prog.Body == nil {
		return nil
	}
	for _, stmt := range prog.Body.Stmts {
		if err := in.execTop(stmt); err != nil {
			return in.wrap(prog, stmt, err)
		}
		if in.env.Control() != ControlNone {
			// Nothing above the top level can consume the signal.
			in.env.ClearControl()
			break
		}
	}
	return nil
}

// execTop runs one top level statement.  Only a top level expression
// statement sets the last value; anything else clears it.
func (in *Interpreter) execTop(stmt decl.Stmt) error {
	in.lastValue = None
	es, ok := stmt.(*decl.ExprStmt)
	if !ok {
		return in.Exec(stmt, in.env)
	}
	v, err := in.Eval(es.X, in.env)
	if err != nil {
		return err
	}
	in.lastValue = v
	return nil
}

func (in *Interpreter) wrap(prog *decl.Program, node decl.Node, err error) error {
	var execErr *ExecError
	if errors.As(err, &execErr) {
		return err
	}
	stmt, _ := node.(decl.Stmt)
	if IsFatal(err) {
		in.logger.Warn("execution aborted", "origin", prog.Path, "loc", node.Loc().String(), "error", err)
	}
	return &ExecError{Origin: prog.Path, Loc: node.Loc(), Stmt: stmt, Err: err}
}

func (in *Interpreter) load(importer, path string) error {
	if in.loader == nil {
		return fmt.Errorf("%w: no loader configured for %q", ErrLoad, path)
	}
	if len(in.loading) >= in.maxLoadDepth {
		return fmt.Errorf("%w: load depth %d exceeded at %q", ErrLoad, in.maxLoadDepth, path)
	}
	prog, err := in.loader.Load(importer, path)
	if err != nil {
		if errors.Is(err, ErrLoad) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	if slices.Contains(in.loading, prog.Path) {
		return fmt.Errorf("%w: cycle loading %s (via %v)", ErrLoad, prog.Path, in.loading)
	}
	if in.loaded[prog.Path] {
		in.logger.Debug("already loaded", "path", prog.Path)
		return nil
	}
	in.logger.Debug("loading", "path", prog.Path, "importer", importer)
	return in.Run(prog)
}
