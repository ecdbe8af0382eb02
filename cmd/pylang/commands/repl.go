package commands

import (
	"log/slog"

	"github.com/panyam/pylang/console"
	"github.com/spf13/cobra"
)

func newReplCommand(s *settings) *cobra.Command {
	var noHistory bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Starts an interactive session",
		Long: `Starts a read-eval-print loop.  Unfinished input continues on the next
line.  Expression statements echo their value.  Type :help for commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interp := newInterpreter(s.cfg, cmd.OutOrStdout(), newLoader(s.cfg))
			repl := console.NewRepl(interp, s.cfg.ParserOptions(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			repl.Logger = slog.Default()
			history := s.cfg.HistoryFile
			if noHistory {
				history = ""
			}
			return repl.RunTerminal(history)
		},
	}
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not read or write the history file")
	return cmd
}
