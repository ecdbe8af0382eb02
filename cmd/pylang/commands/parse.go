package commands

import (
	"fmt"

	"github.com/panyam/pylang/decl"
	"github.com/spf13/cobra"
)

func newParseCommand(s *settings) *cobra.Command {
	var sexpr bool
	cmd := &cobra.Command{
		Use:   "parse <file...>",
		Short: "Parses files and prints their syntax tree",
		Long: `Parses each file without running it.  By default the tree is printed back as
formatted source; --sexpr prints one S-expression per statement instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := newLoader(s.cfg)
			out := cmd.OutOrStdout()
			for _, path := range args {
				prog, err := l.LoadFile(path)
				if err != nil {
					return err
				}
				if len(args) > 1 {
					fmt.Fprintf(out, "# %s\n", prog.Path)
				}
				if !sexpr {
					fmt.Fprintln(out, decl.Format(prog))
					continue
				}
				for _, load := range prog.Loads {
					fmt.Fprintln(out, decl.Sexpr(load))
				}
				for _, stmt := range prog.Body.Stmts {
					fmt.Fprintln(out, decl.Sexpr(stmt))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sexpr, "sexpr", false, "Print S-expressions")
	return cmd
}
