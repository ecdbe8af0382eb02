// Package config holds interpreter settings read from defaults, an optional
// YAML file and PYLANG_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/panyam/pylang/parser"
	"github.com/panyam/pylang/runtime"
	"gopkg.in/yaml.v3"
)

// Embed modes for `embed { ... }` blocks.
const (
	EmbedYAML = "yaml"
	EmbedOff  = "off"
)

type Config struct {
	LoopBudget   int      `yaml:"loop_budget"`
	MaxCallDepth int      `yaml:"max_call_depth"`
	SearchPaths  []string `yaml:"search_paths"`
	Suffix       string   `yaml:"suffix"`
	CommentStyle string   `yaml:"comment_style"`
	LogLevel     string   `yaml:"log_level"`
	Embed        string   `yaml:"embed"`
	HistoryFile  string   `yaml:"history_file"`

	// Where the config was read from, if anywhere.
	Path string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		LoopBudget:   runtime.DefaultLoopBudget,
		MaxCallDepth: runtime.DefaultMaxCallDepth,
		Suffix:       ".pyl",
		CommentStyle: string(parser.CommentPython),
		LogLevel:     "info",
		Embed:        EmbedYAML,
		HistoryFile:  ".pylang_history",
	}
}

// Load reads a YAML file over the defaults.  An empty path returns the
// defaults.  Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, cfg.Validate()
}

// LoadDefault loads path when given.  Otherwise it looks for pylang.yaml in
// the working directory and falls back to defaults when there is none.
func LoadDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	for _, name := range []string{"pylang.yaml", "pylang.yml"} {
		if _, err := os.Stat(name); err == nil {
			return Load(name)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return Default(), nil
}

// ApplyEnv overrides settings from PYLANG_* variables.
func (c *Config) ApplyEnv() error {
	if err := envInt("PYLANG_LOOP_BUDGET", &c.LoopBudget); err != nil {
		return err
	}
	if err := envInt("PYLANG_MAX_CALL_DEPTH", &c.MaxCallDepth); err != nil {
		return err
	}
	if v := os.Getenv("PYLANG_PATH"); v != "" {
		c.SearchPaths = append(c.SearchPaths, filepath.SplitList(v)...)
	}
	if v := os.Getenv("PYLANG_SUFFIX"); v != "" {
		c.Suffix = v
	}
	if v := os.Getenv("PYLANG_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PYLANG_COMMENT_STYLE"); v != "" {
		c.CommentStyle = v
	}
	if v := os.Getenv("PYLANG_EMBED"); v != "" {
		c.Embed = v
	}
	return c.Validate()
}

func envInt(name string, dest *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}
	*dest = n
	return nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	var errs []error
	if c.LoopBudget <= 0 {
		errs = append(errs, fmt.Errorf("loop_budget must be positive, got %d", c.LoopBudget))
	}
	if c.MaxCallDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_call_depth must be positive, got %d", c.MaxCallDepth))
	}
	if _, err := parser.ParseCommentStyle(c.CommentStyle); err != nil {
		errs = append(errs, err)
	}
	if _, err := runtime.ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Embed != EmbedYAML && c.Embed != EmbedOff {
		errs = append(errs, fmt.Errorf("embed must be %q or %q, got %q", EmbedYAML, EmbedOff, c.Embed))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Level returns the parsed log level.  Validate has already checked it.
func (c *Config) Level() slog.Level {
	level, _ := runtime.ParseLogLevel(c.LogLevel)
	return level
}

// ParserOptions builds the parser settings for this config.
func (c *Config) ParserOptions() *parser.Options {
	opts := parser.DefaultOptions()
	if style, err := parser.ParseCommentStyle(c.CommentStyle); err == nil {
		opts.Comments = style
	}
	return opts
}

// InterpreterOptions returns the runtime options the config controls.
func (c *Config) InterpreterOptions() []runtime.Option {
	return []runtime.Option{
		runtime.WithLoopBudget(c.LoopBudget),
		runtime.WithMaxCallDepth(c.MaxCallDepth),
	}
}
