package commands

import (
	"bytes"
	"testing"

	"github.com/panyam/pylang/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tfs "gotest.tools/v3/fs"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunFiles(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-run",
		tfs.WithFile("a.pyl", "x = 20;\n"),
		tfs.WithFile("b.pyl", "y = x + 1;\nprint y;\n"))

	out, err := execute(t, "run", dir.Join("a.pyl"), dir.Join("b.pyl"), "--vars")
	require.NoError(t, err)
	assert.Equal(t, "21\nx = 20\ny = 21\n", out)
}

func TestRunEvalAndSearchPath(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-path", tfs.WithFile("util.pyl", "def twice(n) { return n * 2; }\n"))

	out, err := execute(t, "--path", dir.Path(), "run", "-e", "load util\nprint twice(4);")
	require.NoError(t, err)
	assert.Equal(t, "8\n", out)
}

func TestRunEmbed(t *testing.T) {
	out, err := execute(t, "run", "-e", "embed { size: 3 }\nprint size;")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "run")
	assert.ErrorContains(t, err, "nothing to run")

	_, err = execute(t, "run", "missing.pyl")
	assert.Error(t, err)

	_, err = execute(t, "--loop-budget", "5", "run", "-e", "while True { x = 1; }")
	require.Error(t, err)
	assert.ErrorIs(t, err, runtime.ErrLoopBudgetExhausted)
	assert.True(t, runtime.IsFatal(err))

	_, err = execute(t, "--log-level", "loud", "run", "-e", "x = 1;")
	assert.ErrorContains(t, err, "config:")
}

func TestConfigFileFlag(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-cfg",
		tfs.WithFile("pylang.yaml", "embed: off\n"))

	_, err := execute(t, "--config", dir.Join("pylang.yaml"), "run", "-e", "embed { a: 1 }")
	assert.Error(t, err, "embedding is disabled by the config file")
}

func TestParseCommand(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-parse", tfs.WithFile("p.pyl", "x = 1 + 2 * 3;\n"))

	out, err := execute(t, "parse", "--sexpr", dir.Join("p.pyl"))
	require.NoError(t, err)
	assert.Equal(t, "(= (x) (+ 1 (* 2 3)))\n", out)

	out, err = execute(t, "parse", dir.Join("p.pyl"))
	require.NoError(t, err)
	assert.Equal(t, "x = (1 + (2 * 3));\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pylang dev\n", out)
}
