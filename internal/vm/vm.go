// Package vm implements an execution engine for resolved programs: a byte
// tape, a pointer into it, and a program counter walking the instruction
// stream until it runs off the end.
package vm

import (
	"context"
	"errors"

	"github.com/jcorbin/gobf/internal/flushio"
	"github.com/jcorbin/gobf/internal/lineinput"
	"github.com/jcorbin/gobf/internal/mem"
	"github.com/jcorbin/gobf/internal/panicerr"
	"github.com/jcorbin/gobf/internal/prog"
)

// DefaultTapeSize is the number of tape cells unless WithTapeSize says
// otherwise.
const DefaultTapeSize = 30000

// VM executes one Program; it owns its tape exclusively.
type VM struct {
	logging

	prog prog.Program
	pc   int // program counter
	ptr  int // tape pointer

	tape     mem.Bytes
	tapeSize int
	wrap     bool

	in  lineinput.Input
	out flushio.WriteFlusher
}

// New creates a VM ready to run p from its first instruction.
func New(p prog.Program, opts ...Option) (*VM, error) {
	vm := VM{prog: p}
	defaultOptions.apply(&vm)
	Options(opts...).apply(&vm)
	if vm.tapeSize <= 0 {
		return nil, tapeSizeError(vm.tapeSize)
	}
	vm.tape.Limit = uint(vm.tapeSize)
	vm.tape.PageSize = mem.DefaultBytesPageSize
	if vm.tapeSize < mem.DefaultBytesPageSize {
		vm.tape.PageSize = uint(vm.tapeSize)
	}
	vm.in.Refill = vm.out.Flush
	return &vm, nil
}

// Run executes instructions until the program counter reaches the end of
// the program, some instruction faults, or ctx is done.
// Output is flushed before returning.
func (vm *VM) Run(ctx context.Context) error {
	return unhalt(panicerr.Recover("vm", func() error {
		vm.run(ctx)
		return nil
	}))
}

// Step executes a single instruction, returning true once the VM has halted.
func (vm *VM) Step() (halted bool, err error) {
	if vm.Halted() {
		return true, nil
	}
	err = unhalt(panicerr.Recover("vm", func() error {
		vm.step()
		return nil
	}))
	if err == nil && vm.Halted() {
		err = vm.out.Flush()
	}
	return vm.Halted(), err
}

func unhalt(err error) error {
	var halt haltError
	if errors.As(err, &halt) {
		return halt.error
	}
	return err
}

// Close flushes any buffered output.
func (vm *VM) Close() error { return vm.out.Flush() }

// Halted returns true once the program counter has run off the program.
func (vm *VM) Halted() bool { return vm.pc >= vm.prog.Len() }

// PC returns the program counter.
func (vm *VM) PC() int { return vm.pc }

// Ptr returns the tape pointer.
func (vm *VM) Ptr() int { return vm.ptr }

// TapeSize returns the number of tape cells.
func (vm *VM) TapeSize() int { return vm.tapeSize }

// Cell returns the value of tape cell i.
func (vm *VM) Cell(i int) (byte, error) {
	if i < 0 {
		return 0, mem.LimitError{Addr: uint(i), Limit: vm.tape.Limit, Op: "load"}
	}
	return vm.tape.Load(uint(i))
}

type logging struct {
	logfn func(mess string, args ...interface{})
}

func (log logging) logf(mess string, args ...interface{}) {
	if log.logfn != nil {
		log.logfn(mess, args...)
	}
}
