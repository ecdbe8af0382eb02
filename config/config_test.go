package config

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/panyam/pylang/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tfs "gotest.tools/v3/fs"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5000, cfg.LoopBudget)
	assert.Equal(t, 1000, cfg.MaxCallDepth)
	assert.Equal(t, ".pyl", cfg.Suffix)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, parser.CommentPython, cfg.ParserOptions().Comments)
}

func TestLoadYAML(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-config",
		tfs.WithFile("pylang.yaml", `
loop_budget: 200
search_paths: [lib, /opt/pylang]
comment_style: cpp
log_level: debug
`))
	defer dir.Remove()

	cfg, err := Load(dir.Join("pylang.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.LoopBudget)
	assert.Equal(t, 1000, cfg.MaxCallDepth, "missing keys keep defaults")
	assert.Equal(t, []string{"lib", "/opt/pylang"}, cfg.SearchPaths)
	assert.Equal(t, parser.CommentCPP, cfg.ParserOptions().Comments)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, dir.Join("pylang.yaml"), cfg.Path)
	assert.Len(t, cfg.InterpreterOptions(), 2)
}

func TestLoadErrors(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-config-bad",
		tfs.WithFile("bad.yaml", "loop_budget: [1"),
		tfs.WithFile("invalid.yaml", "loop_budget: -1\nembed: lua\n"))
	defer dir.Remove()

	_, err := Load(dir.Join("bad.yaml"))
	assert.Error(t, err)

	_, err = Load(dir.Join("invalid.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loop_budget")
	assert.Contains(t, err.Error(), "embed")

	_, err = Load(dir.Join("missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PYLANG_LOOP_BUDGET", "42")
	t.Setenv("PYLANG_PATH", "/a"+string(filepath.ListSeparator)+"/b")
	t.Setenv("PYLANG_LOG_LEVEL", "warn")
	t.Setenv("PYLANG_SUFFIX", ".py")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, 42, cfg.LoopBudget)
	assert.Equal(t, []string{"/a", "/b"}, cfg.SearchPaths)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, ".py", cfg.Suffix)

	t.Setenv("PYLANG_MAX_CALL_DEPTH", "lots")
	assert.Error(t, Default().ApplyEnv())
}

func TestLoadDefaultWithoutFile(t *testing.T) {
	dir := tfs.NewDir(t, "pylang-empty")
	defer dir.Remove()
	t.Chdir(dir.Path())

	cfg, err := LoadDefault("")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Path)
}
