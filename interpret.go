package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcorbin/gobf/internal/logio"
	"github.com/jcorbin/gobf/internal/vm"
)

func (app *app) interpretCmd() *cobra.Command {
	var (
		tapeSize int
		noWrap   bool
		timeout  time.Duration
		trace    bool
		dump     bool
	)
	cmd := &cobra.Command{
		Use:     "interpret FILE",
		Aliases: []string{"run"},
		Short:   "Run a program on the tape interpreter",
		Long: `Interpret runs FILE with stdin as its input and stdout as its output.

Input is consumed one whole line at a time; at end of input a read stores 0.
Moving the pointer off either end of the tape is an error, as is, with
--no-wrap, incrementing 255 or decrementing 0.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("memory") {
				app.cfg.TapeSize = tapeSize
			}
			if flags.Changed("no-wrap") {
				app.cfg.Wrap = !noWrap
			}
			if flags.Changed("timeout") {
				app.cfg.Timeout = timeout
			}

			p, err := readProgram(args[0])
			if err != nil {
				return err
			}

			opts := []vm.Option{
				vm.WithInput(cmd.InOrStdin()),
				vm.WithOutput(cmd.OutOrStdout()),
				vm.WithTapeSize(app.cfg.TapeSize),
				vm.WithWrapping(app.cfg.Wrap),
			}
			if trace {
				opts = append(opts, vm.WithLogf(app.log.Leveledf("TRACE")))
			}
			m, err := vm.New(p, opts...)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if app.cfg.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, app.cfg.Timeout)
				defer cancel()
			}

			err = m.Run(ctx)
			if dump || (err != nil && trace) {
				lw := &logio.Writer{Logf: app.log.Leveledf("DUMP")}
				defer lw.Close()
				m.Dump(lw)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&tapeSize, "memory", "m", vm.DefaultTapeSize, "number of tape cells")
	flags.BoolVarP(&noWrap, "no-wrap", "w", false, "fail on cell overflow and underflow instead of wrapping")
	flags.DurationVar(&timeout, "timeout", 0, "stop the program after this long")
	flags.BoolVar(&trace, "trace", false, "log every executed instruction")
	flags.BoolVar(&dump, "dump", false, "dump the tape when the program stops")
	return cmd
}
