package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/jcorbin/gobf/internal/build"
	"github.com/jcorbin/gobf/internal/config"
	"github.com/jcorbin/gobf/internal/logio"
	"github.com/jcorbin/gobf/internal/prog"
)

func main() {
	var log logio.Logger
	log.SetOutput(os.Stderr)
	atexit.Register(func() { log.Close() })

	app := newApp(&log, os.Stdin, os.Stdout)
	log.ErrorIf(app.execute(context.Background(), os.Args[1:]))
	atexit.Exit(log.ExitCode())
}

// app carries what every subcommand shares: streams, the logger, and the
// loaded configuration.
type app struct {
	log    *logio.Logger
	stdin  io.Reader
	stdout io.Writer
	runner build.Runner

	cfgPath string
	quiet   bool
	verbose bool
	cfg     config.Config
}

func newApp(log *logio.Logger, stdin io.Reader, stdout io.Writer) *app {
	return &app{
		log:    log,
		stdin:  stdin,
		stdout: stdout,
		runner: build.ExecRunner{},
		cfg:    config.Default(),
	}
}

func (app *app) execute(ctx context.Context, args []string) error {
	root := app.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (app *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gobf",
		Short: "Interpreter and native compiler for the eight symbol tape language",
		Long: `Gobf runs tape language programs on a byte tape interpreter, or compiles
them to static Linux executables through an external assembler and linker.

Defaults come from a YAML config file (` + config.DefaultPath + ` in the working
directory, if present, or the file named by --config); flags override it.
`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			app.log.Quiet = app.quiet
			required := cmd.Flags().Changed("config")
			app.cfg, err = config.Load(app.cfgPath, required)
			return err
		},
	}
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)

	flags := root.PersistentFlags()
	flags.StringVar(&app.cfgPath, "config", config.DefaultPath, "configuration file")
	flags.BoolVarP(&app.quiet, "quiet", "q", false, "only log errors")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "log every build step")

	root.AddCommand(
		app.interpretCmd(),
		app.compileCmd(),
		app.dumpCmd(),
	)
	return root
}

// readProgram parses the named source file.
func readProgram(path string) (prog.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return prog.Program{}, err
	}
	p, err := prog.Parse(string(src))
	if err != nil {
		return prog.Program{}, fmt.Errorf("%v: %w", path, err)
	}
	return p, nil
}

// defaultOutput names the executable built from a source file: the source
// path without its extension.
func defaultOutput(path string) string {
	out := strings.TrimSuffix(path, filepath.Ext(path))
	if out == path || out == "" || strings.HasSuffix(out, string(filepath.Separator)) {
		return path + ".out"
	}
	return out
}
