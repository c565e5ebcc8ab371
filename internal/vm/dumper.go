package vm

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jcorbin/gobf/internal/runeio"
)

// Dumper renders VM state for humans: registers, then a table of every
// non-zero tape cell plus the one under the pointer.
type Dumper struct {
	VM  *VM
	Out io.Writer

	// Style selects a go-pretty table style; the zero value uses
	// table.StyleLight.
	Style *table.Style
}

// Dump writes a Dumper rendering of vm to w.
func (vm *VM) Dump(w io.Writer) error {
	return Dumper{VM: vm, Out: w}.Dump()
}

// Dump writes the VM state.
func (dump Dumper) Dump() error {
	vm := dump.VM
	if _, err := fmt.Fprintf(dump.Out, "# VM Dump\n  pc: %v\n  ptr: %v\n", vm.pc, vm.ptr); err != nil {
		return err
	}
	if vm.Halted() {
		if _, err := io.WriteString(dump.Out, "  next: halted\n"); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(dump.Out, "  next: %v @%v\n", vm.prog.At(vm.pc), vm.prog.Pos(vm.pc)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(dump.Out, "  pages: %v\n  input: %v buffered\n", vm.tape.Pages(), vm.in.Buffered()); err != nil {
		return err
	}

	tw := table.NewWriter()
	if dump.Style != nil {
		tw.SetStyle(*dump.Style)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.SetTitle("Tape (%v cells)", vm.tapeSize)
	tw.AppendHeader(table.Row{"Cell", "Value", "Byte", ""})

	size := int(vm.tape.Size())
	if size > vm.tapeSize {
		size = vm.tapeSize
	}
	buf := make([]byte, size)
	if err := vm.tape.LoadInto(0, buf); err != nil {
		return err
	}
	for addr, val := range buf {
		if val == 0 && addr != vm.ptr {
			continue
		}
		mark := ""
		if addr == vm.ptr {
			mark = "<- ptr"
		}
		tw.AppendRow(table.Row{addr, val, runeio.ByteName(val), mark})
	}
	if vm.ptr >= len(buf) {
		tw.AppendRow(table.Row{vm.ptr, 0, runeio.ByteName(0), "<- ptr"})
	}

	_, err := io.WriteString(dump.Out, tw.Render()+"\n")
	return err
}
