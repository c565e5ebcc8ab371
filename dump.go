package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (app *app) dumpCmd() *cobra.Command {
	var ascii bool
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print the resolved instruction stream of a program",
		Long: `Dump lexes, compresses, and resolves FILE, then prints one row per
instruction: its index, source position, operation, argument (a count or a
jump target), and loop nesting depth.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProgram(args[0])
			if err != nil {
				return err
			}
			dump := progDumper{prog: p, out: cmd.OutOrStdout()}
			if ascii {
				dump.style = &table.StyleDefault
			}
			return dump.dump()
		},
	}
	cmd.Flags().BoolVar(&ascii, "ascii", false, "draw the table with ASCII characters only")
	return cmd
}
