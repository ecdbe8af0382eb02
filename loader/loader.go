// Package loader finds, reads and parses the files named by `load`
// statements.  Parsed programs are cached by canonical path, so a file
// loaded from several places is parsed once.
package loader

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/panyam/pylang/decl"
	"github.com/panyam/pylang/parser"
	"github.com/panyam/pylang/runtime"
)

// Loader implements runtime.ProgramLoader.  Executing loaded programs,
// including cycle and depth checks, is left to the interpreter.
type Loader struct {
	fs       FileSystem
	resolver Resolver
	opts     parser.Options
	logger   *slog.Logger

	mutex  sync.Mutex
	parsed map[string]*decl.Program
}

var _ runtime.ProgramLoader = (*Loader)(nil)

// NewLoader creates a loader.  A nil opts uses parser.DefaultOptions.
func NewLoader(fs FileSystem, resolver Resolver, opts *parser.Options, logger *slog.Logger) *Loader {
	if opts == nil {
		opts = parser.DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fs:       fs,
		resolver: resolver,
		opts:     *opts,
		logger:   logger,
		parsed:   make(map[string]*decl.Program),
	}
}

// Load resolves loadPath against the importing program and returns the
// parsed target.
func (l *Loader) Load(importer, loadPath string) (*decl.Program, error) {
	canonical, err := l.resolver.Resolve(importer, loadPath)
	if err != nil {
		return nil, err
	}
	return l.parseFile(canonical)
}

// LoadFile reads and parses a root file given on the command line.
func (l *Loader) LoadFile(filePath string) (*decl.Program, error) {
	if !l.fs.Exists(filePath) {
		return nil, fmt.Errorf("%w: file not found: %s", runtime.ErrLoad, filePath)
	}
	return l.parseFile(l.fs.Canonical(filePath))
}

func (l *Loader) parseFile(canonical string) (*decl.Program, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if prog, found := l.parsed[canonical]; found {
		return prog, nil
	}

	data, err := l.fs.ReadFile(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", runtime.ErrLoad, canonical, err)
	}
	opts := l.opts
	opts.Path = canonical
	prog, err := parser.Parse(string(data), &opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", runtime.ErrLoad, err)
	}
	l.logger.Debug("parsed", "path", canonical, "loads", len(prog.Loads), "stmts", len(prog.Body.Stmts))
	l.parsed[canonical] = prog
	return prog, nil
}

// Forget drops a cached program so the next load re-reads it.
func (l *Loader) Forget(canonical string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.parsed, canonical)
}
