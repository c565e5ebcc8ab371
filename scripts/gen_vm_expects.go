// Command gen_vm_expects generates standalone option functions from the
// with* and expect* methods of a vmTestCase builder, so that test tables
// can hold them as values.
//
// Usage: gen_vm_expects [-package name] [-script path] [IN [OUT]]
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"
)

type namedReader interface {
	io.ReadCloser
	Name() string
}

var (
	in  namedReader    = os.Stdin
	out io.WriteCloser = os.Stdout

	pkgName    = flag.String("package", "vm", "package name of the generated file")
	scriptPath = flag.String("script", "../../scripts/gen_vm_expects.go", "path to this script from the generated file's directory")
)

func parseFlags() {
	flag.Parse()

	args := flag.Args()

	if len(args) > 0 {
		name := args[0]
		f, err := os.Open(name)
		if err != nil {
			log.Fatalf("failed to open %v: %v", name, err)
		}
		args = args[1:]
		in = f
	}

	if len(args) > 0 {
		name := args[0]
		f, err := os.Create(name)
		if err != nil {
			log.Fatalf("failed to create %v: %v", name, err)
		}
		out = f
	}
}

func main() {
	ctx := context.Background()
	parseFlags()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	ready := make(chan struct{})

	// output is piped through goimports, which also fills in the imports that
	// argument types need
	eg.Go(func() error {
		fmtCmd := exec.CommandContext(ctx, "goimports")
		fmtPipe, err := fmtCmd.StdinPipe()
		if err != nil {
			return err
		}

		defer out.Close()
		fmtCmd.Stdout = out
		fmtCmd.Stderr = os.Stderr

		out = fmtPipe

		close(ready)
		if err := fmtCmd.Run(); err != nil {
			return fmt.Errorf("goimports run failed: %w", err)
		}
		return nil
	})

	eg.Go(func() (rerr error) {
		select {
		case <-ctx.Done():
		case <-ready:
		}

		defer func() {
			if cerr := in.Close(); rerr == nil {
				rerr = cerr
			}
			if cerr := out.Close(); rerr == nil {
				rerr = cerr
			}
		}()

		return run(ctx)
	})

	if err := eg.Wait(); err != nil {
		log.Fatalln(err)
	}
}

var builderMethod = regexp.MustCompile(`func \(vmt vmTestCase\) (expect|with)(.+?)\((.+?)\) vmTestCase`)

func run(ctx context.Context) error {
	var buf bytes.Buffer
	buf.Grow(1024)
	fmt.Fprintf(&buf, "// Code generated from %v by gen_vm_expects. DO NOT EDIT.\n\n", in.Name())
	fmt.Fprintf(&buf, "package %v\n\n", *pkgName)

	if args := flag.Args(); len(args) >= 2 {
		fmt.Fprintf(&buf, "//go:generate go run %v -package %v --", *scriptPath, *pkgName)
		for _, arg := range args {
			buf.WriteByte(' ')
			buf.WriteString(arg)
		}
		buf.WriteString("\n\n")
	}

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if match := builderMethod.FindSubmatch(sc.Bytes()); len(match) > 0 {
			writeWrapper(&buf, match[1], match[2], match[3])
		}

		if buf.Len() > 0 {
			if _, err := buf.WriteTo(out); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return sc.Err()
}

// writeWrapper writes e.g. expectVMOutput(output string) for the builder
// method expectOutput.
func writeWrapper(buf *bytes.Buffer, baseName, whatName, params []byte) {
	fmt.Fprintf(buf, "func %sVM%s(%s) func(vmTestCase) vmTestCase {\n", baseName, whatName, params)
	fmt.Fprintf(buf, "\treturn func(vmt vmTestCase) vmTestCase {\n")
	fmt.Fprintf(buf, "\t\treturn vmt.%s%s(", baseName, whatName)
	for i, part := range bytes.Split(params, []byte(",")) {
		if i > 0 {
			buf.WriteString(", ")
		}
		fields := bytes.Fields(part)
		buf.Write(fields[0])
		if len(fields) > 1 && bytes.HasPrefix(fields[1], []byte("...")) {
			buf.WriteString("...")
		}
	}
	buf.WriteString(")\n\t}\n}\n\n")
}
