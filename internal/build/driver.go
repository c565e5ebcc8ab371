// Package build turns generated assembly into an executable by running an
// external assembler and linker, managing the intermediate artifacts.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jcorbin/gobf/internal/asm"
)

// ErrNoOutput is returned by Build when Options.Output is empty.
var ErrNoOutput = errors.New("no output path given")

// Runner runs one external command, returning its combined output.
type Runner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

// ExecRunner runs commands as subprocesses, in Dir if not empty.
type ExecRunner struct{ Dir string }

// Run starts argv under ctx and waits for it to exit.
func (r ExecRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	return cmd.CombinedOutput()
}

// ToolError reports a failed assembler or linker run, carrying whatever
// the tool printed.
type ToolError struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

func (err *ToolError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v failed: %v", err.Tool, err.Err)
	if out := strings.TrimRight(err.Output, "\n"); out != "" {
		sb.WriteString("\n")
		sb.WriteString(out)
	}
	return sb.String()
}

func (err *ToolError) Unwrap() error { return err.Err }

// Options control a single Build.
type Options struct {
	// Output is the executable path; the assembly source and object file
	// are written next to it as Output+Ext and Output+".o".
	Output string

	// KeepArtifacts retains the assembly source and object file.
	KeepArtifacts bool

	// Debug asks the assembler for debug information; implies
	// KeepArtifacts.
	Debug bool
}

// Artifacts names the files produced by a Build.
type Artifacts struct {
	Source string
	Object string
	Binary string
}

// Driver runs the build steps through Runner, logging each command to
// Logf if not nil.
type Driver struct {
	Runner Runner
	Logf   func(mess string, args ...interface{})
}

func (d *Driver) logf(mess string, args ...interface{}) {
	if d.Logf != nil {
		d.Logf(mess, args...)
	}
}

// Build writes text out as assembly source, assembles, then links it into
// opts.Output. The zero Toolchain means arch.Toolchain().
//
// On failure the partial binary is removed, as are the intermediate
// artifacts unless they were asked to be kept. On success the returned
// Artifacts name only the files left on disk.
func (d *Driver) Build(ctx context.Context, arch asm.Arch, tc asm.Toolchain, text string, opts Options) (arts Artifacts, err error) {
	if opts.Output == "" {
		return Artifacts{}, ErrNoOutput
	}
	if len(tc.Assembler) == 0 && len(tc.Linker) == 0 {
		tc = arch.Toolchain()
	}
	if len(tc.Assembler) == 0 || len(tc.Linker) == 0 {
		return Artifacts{}, fmt.Errorf("%w %v: no toolchain", asm.ErrUnknownArch, arch)
	}
	ext := tc.Ext
	if ext == "" {
		ext = ".s"
	}
	keep := opts.KeepArtifacts || opts.Debug

	arts = Artifacts{
		Source: opts.Output + ext,
		Object: opts.Output + ".o",
		Binary: opts.Output,
	}
	defer func() {
		if err != nil {
			d.remove(arts.Binary)
		}
		if !keep {
			d.remove(arts.Source)
			d.remove(arts.Object)
			arts.Source, arts.Object = "", ""
		}
		if err != nil {
			arts = Artifacts{}
		}
	}()

	d.logf("build %v: writing %v", arch, arts.Source)
	if err := os.WriteFile(arts.Source, []byte(text), 0o644); err != nil {
		return arts, err
	}

	asmArgv := append([]string(nil), tc.Assembler...)
	if opts.Debug {
		asmArgv = append(asmArgv, tc.DebugFlags...)
	}
	asmArgv = append(asmArgv, "-o", arts.Object, arts.Source)
	if err := d.run(ctx, asmArgv); err != nil {
		return arts, err
	}

	ldArgv := append([]string(nil), tc.Linker...)
	ldArgv = append(ldArgv, "-o", arts.Binary, arts.Object)
	if err := d.run(ctx, ldArgv); err != nil {
		return arts, err
	}

	d.logf("build %v: wrote %v", arch, arts.Binary)
	return arts, nil
}

func (d *Driver) run(ctx context.Context, argv []string) error {
	d.logf("run %v", strings.Join(argv, " "))
	out, err := d.Runner.Run(ctx, argv)
	if err != nil {
		return &ToolError{
			Tool:   argv[0],
			Args:   argv[1:],
			Output: string(out),
			Err:    err,
		}
	}
	if len(out) > 0 {
		d.logf("%v: %s", argv[0], out)
	}
	return nil
}

func (d *Driver) remove(name string) {
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logf("cleanup: %v", err)
	}
}
