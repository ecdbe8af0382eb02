package console

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/panyam/pylang/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted feeds canned lines and records the prompts it was shown.
type scripted struct {
	lines   []string
	prompts []string
}

func (s *scripted) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", errors.New("aborted")
	}
	return line, nil
}

func setupRepl(t *testing.T, opts ...runtime.Option) (*Repl, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	opts = append([]runtime.Option{runtime.WithOutput(out), runtime.WithLogger(runtime.QuietLogger())}, opts...)
	in := runtime.NewInterpreter(runtime.StandardConstants().Build(), opts...)
	r := NewRepl(in, nil, out, errOut)
	r.Logger = runtime.QuietLogger()
	return r, out, errOut
}

func TestReadChunkContinuation(t *testing.T) {
	r, _, _ := setupRepl(t)
	p := &scripted{lines: []string{"def f(x) {", "  return x * 2", "}", "f(4)"}}

	src, ok := r.ReadChunk(p)
	require.True(t, ok)
	assert.Equal(t, "def f(x) {\n  return x * 2\n}", src)
	assert.Equal(t, []string{PromptMain, PromptCont, PromptCont}, p.prompts)

	src, ok = r.ReadChunk(p)
	require.True(t, ok)
	assert.Equal(t, "f(4)", src)

	_, ok = r.ReadChunk(p)
	assert.False(t, ok)
}

func TestReadChunkSyntaxErrorReturnsEarly(t *testing.T) {
	r, _, _ := setupRepl(t)
	p := &scripted{lines: []string{"x = );", "y = 1"}}
	src, ok := r.ReadChunk(p)
	require.True(t, ok)
	assert.Equal(t, "x = );", src)
}

func TestLoopEchoesAndKeepsBindings(t *testing.T) {
	r, out, errOut := setupRepl(t)
	p := &scripted{lines: []string{
		"x = 20",
		"x + 22",
		"print \"hi\"",
		"y = undefined_name + 1",
		":vars",
		":quit",
		"never = 1",
	}}
	var history []string
	r.Loop(p, func(src string) { history = append(history, src) })

	assert.Equal(t, "42\nhi\nx = 20\n", out.String())
	assert.Contains(t, errOut.String(), "undefined_name")
	assert.Len(t, history, 6)
	_, err := r.Interp.Env().Get("never")
	assert.ErrorIs(t, err, runtime.ErrUnboundName)
}

func TestResetRestoresBudget(t *testing.T) {
	r, out, errOut := setupRepl(t, runtime.WithLoopBudget(3))
	r.Eval("while True { pass }")
	assert.Contains(t, errOut.String(), "loop")

	r.Eval(":reset")
	assert.Contains(t, out.String(), "bindings cleared")
	r.Eval("i = 0; while i < 2 { i = i + 1 }; i")
	assert.Contains(t, out.String(), "2\n")
}

func TestUnknownCommandAndCtrlC(t *testing.T) {
	r, _, errOut := setupRepl(t)
	assert.False(t, r.Eval(":bogus"))
	assert.Contains(t, errOut.String(), "unknown command")

	p := &scripted{lines: []string{"if x {", "^C", "1"}}
	src, ok := r.ReadChunk(p)
	assert.True(t, ok)
	assert.Equal(t, "", src)
}
