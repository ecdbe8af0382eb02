package commands

import (
	"errors"

	"github.com/panyam/pylang/parser"
	"github.com/spf13/cobra"
)

func newRunCommand(s *settings) *cobra.Command {
	var showVars bool
	var inline string

	cmd := &cobra.Command{
		Use:   "run [file...]",
		Short: "Runs one or more programs in a shared environment",
		Long: `Runs each file in order against one interpreter, so later files see the
bindings of earlier ones.  Execution stops at the first error.  With --eval the
given source runs after the files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && inline == "" {
				return errors.New("nothing to run: give a file or --eval")
			}
			l := newLoader(s.cfg)
			interp := newInterpreter(s.cfg, cmd.OutOrStdout(), l)
			for _, path := range args {
				prog, err := l.LoadFile(path)
				if err != nil {
					return err
				}
				if err := interp.Run(prog); err != nil {
					return err
				}
			}
			if inline != "" {
				prog, err := parser.Parse(inline, s.cfg.ParserOptions())
				if err != nil {
					return err
				}
				if err := interp.Run(prog); err != nil {
					return err
				}
			}
			if showVars {
				printBindings(cmd.OutOrStdout(), interp.Bindings())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showVars, "vars", false, "Print the final bindings")
	cmd.Flags().StringVarP(&inline, "eval", "e", "", "Source to run after the files")
	return cmd
}
