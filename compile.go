package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/gobf/internal/asm"
	"github.com/jcorbin/gobf/internal/build"
	"github.com/jcorbin/gobf/internal/prog"
	"github.com/jcorbin/gobf/internal/vm"
)

func (app *app) compileCmd() *cobra.Command {
	var (
		tapeSize int
		output   string
		tags     []string
		opts     build.Options
		emitAsm  bool
	)
	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a program to a static Linux executable",
		Long: `Compile generates assembly for FILE, then assembles and links it with the
target's toolchain; see the toolchains section of the config file to use
other programs than the defaults (nasm and ld for x86_64-linux,
arm-none-eabi-as and arm-none-eabi-ld for aarch32-linux).

Giving --arch more than once builds every target concurrently, suffixing
each output with its target tag.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("memory") {
				app.cfg.TapeSize = tapeSize
			}
			var arches []asm.Arch
			if len(tags) == 0 {
				arch, err := app.cfg.Architecture()
				if err != nil {
					return err
				}
				arches = []asm.Arch{arch}
			} else {
				var err error
				if arches, err = parseArches(tags); err != nil {
					return err
				}
			}

			p, err := readProgram(args[0])
			if err != nil {
				return err
			}

			if emitAsm {
				return app.emitAsm(cmd.OutOrStdout(), arches, p)
			}

			if output == "" {
				output = defaultOutput(args[0])
			}
			return app.buildAll(cmd, arches, p, output, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&tapeSize, "memory", "m", vm.DefaultTapeSize, "number of tape cells")
	flags.StringVarP(&output, "output", "o", "", "executable path (default: FILE without its extension)")
	flags.BoolVarP(&opts.KeepArtifacts, "keep-artifacts", "k", false, "keep the assembly source and object file")
	flags.BoolVarP(&opts.Debug, "debug", "g", false, "assemble with debug information; implies --keep-artifacts")
	flags.StringSliceVarP(&tags, "arch", "a", nil, fmt.Sprintf("target architecture, one of %v (default from config)", asm.Arches()))
	flags.BoolVarP(&emitAsm, "emit-asm", "S", false, "write assembly to stdout instead of building")
	return cmd
}

func parseArches(tags []string) ([]asm.Arch, error) {
	arches := make([]asm.Arch, 0, len(tags))
	seen := make(map[asm.Arch]bool, len(tags))
	for _, tag := range tags {
		arch, err := asm.ParseArch(tag)
		if err != nil {
			return nil, err
		}
		if !seen[arch] {
			seen[arch] = true
			arches = append(arches, arch)
		}
	}
	return arches, nil
}

func (app *app) emitAsm(w io.Writer, arches []asm.Arch, p prog.Program) error {
	for _, arch := range arches {
		arch := arch
		text, err := asm.Generate(arch, p, app.cfg.TapeSize)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
	}
	return nil
}

// buildAll builds one executable per arch, concurrently when there are
// several, in which case each output path is suffixed with the arch tag.
func (app *app) buildAll(cmd *cobra.Command, arches []asm.Arch, p prog.Program, output string, opts build.Options) error {
	drv := build.Driver{Runner: app.runner}
	if app.verbose {
		drv.Logf = app.log.Leveledf("BUILD")
	}

	eg, ctx := errgroup.WithContext(cmd.Context())
	for _, arch := range arches {
		arch := arch
		archOpts := opts
		archOpts.Output = output
		if len(arches) > 1 {
			archOpts.Output = output + "-" + arch.String()
		}
		eg.Go(func() error {
			text, err := asm.Generate(arch, p, app.cfg.TapeSize)
			if err != nil {
				return err
			}
			arts, err := drv.Build(ctx, arch, app.cfg.Toolchain(arch), text, archOpts)
			if err != nil {
				return fmt.Errorf("%v: %w", arch, err)
			}
			app.log.Printf("INFO", "built %v for %v", arts.Binary, arch)
			if arts.Source != "" {
				app.log.Printf("INFO", "kept %v and %v", arts.Source, arts.Object)
			}
			return nil
		})
	}
	return eg.Wait()
}
