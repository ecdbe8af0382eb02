package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/panyam/pylang/config"
	"github.com/panyam/pylang/runtime"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// LogLevel drives the level of the process logger.  main installs its
// handler with this variable so the config can adjust it.
var LogLevel = new(slog.LevelVar)

// settings shared by every subcommand, filled in before each run.
type settings struct {
	configPath   string
	loopBudget   int
	maxCallDepth int
	searchPaths  []string
	logLevel     string
	commentStyle string

	cfg *config.Config
}

// NewRootCommand builds the pylang command tree.
func NewRootCommand() *cobra.Command {
	s := &settings{}
	rootCmd := &cobra.Command{
		Use:   "pylang",
		Short: "pylang runs small scripts with user defined operators",
		Long: `pylang is a tree-walking interpreter for a small brace delimited language
with closures, chained comparisons, custom infix and bifix operators.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&s.configPath, "config", "c", "", "Path to a YAML config file (default: ./pylang.yaml if present)")
	flags.IntVar(&s.loopBudget, "loop-budget", 0, "Total loop iterations allowed per run")
	flags.IntVar(&s.maxCallDepth, "max-call-depth", 0, "Maximum nesting of function calls")
	flags.StringArrayVarP(&s.searchPaths, "path", "p", nil, "Directory searched by load statements (repeatable)")
	flags.StringVar(&s.logLevel, "log-level", "", "Log level: debug, info, warn, error or off")
	flags.StringVar(&s.commentStyle, "comments", "", "Comment style: python, c or cpp")

	rootCmd.AddCommand(newRunCommand(s), newReplCommand(s), newParseCommand(s), newVersionCommand())
	return rootCmd
}

// load builds the effective config: defaults, file, environment, flags.
func (s *settings) load(cmd *cobra.Command) error {
	cfg, err := config.LoadDefault(s.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("loop-budget") {
		cfg.LoopBudget = s.loopBudget
	}
	if flags.Changed("max-call-depth") {
		cfg.MaxCallDepth = s.maxCallDepth
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = s.logLevel
	}
	if flags.Changed("comments") {
		cfg.CommentStyle = s.commentStyle
	}
	cfg.SearchPaths = append(cfg.SearchPaths, s.searchPaths...)
	if err := cfg.Validate(); err != nil {
		return err
	}
	LogLevel.Set(cfg.Level())
	s.cfg = cfg
	if cfg.Path != "" {
		slog.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}

// Execute runs the CLI.  This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		if runtime.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
