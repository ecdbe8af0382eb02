// Package console is the interactive read-eval-print loop.
package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/panyam/pylang/parser"
	"github.com/panyam/pylang/runtime"
	"github.com/peterh/liner"
)

const (
	PromptMain = ">>> "
	PromptCont = "... "
)

// Prompter reads one line of input.  *liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

var (
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// Repl evaluates chunks of source against one interpreter.  Bindings
// survive between chunks until :reset.
type Repl struct {
	Interp     *runtime.Interpreter
	ParserOpts *parser.Options
	Out        io.Writer
	ErrOut     io.Writer
	Logger     *slog.Logger
}

func NewRepl(interp *runtime.Interpreter, opts *parser.Options, out, errOut io.Writer) *Repl {
	return &Repl{Interp: interp, ParserOpts: opts, Out: out, ErrOut: errOut, Logger: slog.Default()}
}

// ReadChunk reads lines until they parse, or fail for a reason other than
// running out of input.  ok is false at end of input.
func (r *Repl) ReadChunk(p Prompter) (src string, ok bool) {
	var b strings.Builder
	for {
		prompt := PromptMain
		if b.Len() > 0 {
			prompt = PromptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return b.String(), b.Len() > 0
		}
		if err != nil {
			// Ctrl-C drops the pending chunk.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src = b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := parser.Parse(src, r.ParserOpts)
		if !errors.Is(perr, parser.ErrIncomplete) {
			return src, true
		}
	}
}

// Eval runs one chunk.  It returns true when the session should end.
func (r *Repl) Eval(src string) (quit bool) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, ":") {
		return r.command(trimmed)
	}

	prog, err := parser.Parse(src, r.ParserOpts)
	if err != nil {
		fmt.Fprintln(r.ErrOut, red(err.Error()))
		return false
	}
	if err := r.Interp.Run(prog); err != nil {
		fmt.Fprintln(r.ErrOut, red(err.Error()))
		if runtime.IsFatal(err) {
			fmt.Fprintln(r.ErrOut, yellow("use :reset to restore the loop budget"))
		}
		return false
	}
	if v := r.Interp.LastValue(); !v.IsNone() {
		fmt.Fprintln(r.Out, cyan(v.Repr()))
	}
	return false
}

func (r *Repl) command(cmd string) (quit bool) {
	fields := strings.Fields(cmd)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":exit", ":q":
		return true
	case ":vars":
		env := r.Interp.Env()
		for _, name := range env.Keys() {
			v, _ := env.Get(name)
			fmt.Fprintf(r.Out, "%s = %s\n", name, v.Repr())
		}
	case ":reset":
		r.Interp.Reset()
		fmt.Fprintln(r.Out, "bindings cleared")
	case ":help":
		fmt.Fprintln(r.Out, ":vars   list bindings")
		fmt.Fprintln(r.Out, ":reset  clear bindings and restore the loop budget")
		fmt.Fprintln(r.Out, ":quit   leave")
	default:
		fmt.Fprintf(r.ErrOut, "unknown command %s, try :help\n", fields[0])
	}
	return false
}

// Loop reads and evaluates chunks until :quit or end of input.
func (r *Repl) Loop(p Prompter, onChunk func(string)) {
	for {
		src, ok := r.ReadChunk(p)
		if !ok {
			fmt.Fprintln(r.Out)
			return
		}
		if onChunk != nil && strings.TrimSpace(src) != "" {
			onChunk(src)
		}
		if r.Eval(src) {
			return
		}
	}
}

// RunTerminal runs the loop on the terminal with line editing.  History is
// read from and written back to historyFile when it is set.
func (r *Repl) RunTerminal(historyFile string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(historyFile)
			if err != nil {
				r.Logger.Warn("cannot save history", "file", historyFile, "error", err)
				return
			}
			defer f.Close()
			if _, err := ln.WriteHistory(f); err != nil {
				r.Logger.Warn("cannot save history", "file", historyFile, "error", err)
			}
		}()
	}

	fmt.Fprintln(r.Out, "pylang REPL. :help for commands, :quit to leave.")
	r.Loop(ln, func(src string) {
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	})
	return nil
}
