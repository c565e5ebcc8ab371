package vm

import (
	"context"
	"io"

	"github.com/jcorbin/gobf/internal/flushio"
	"github.com/jcorbin/gobf/internal/prog"
)

func (vm *VM) run(ctx context.Context) {
	done := ctx.Done()
	for !vm.Halted() {
		vm.step()
		if done != nil {
			select {
			case <-done:
				vm.halt(ctx.Err())
			default:
			}
		}
	}
	vm.halt(nil)
}

// step executes the instruction under the program counter, then advances
// it. Loop markers that branch set the counter to their partner, so that
// execution continues just past it.
func (vm *VM) step() {
	in := vm.prog.At(vm.pc)
	if vm.logfn != nil {
		cell, _ := vm.tape.Load(uint(vm.ptr))
		vm.logf("exec @%v %v -- ptr:%v cell:%v", vm.pc, in, vm.ptr, cell)
	}

	switch in.Op {
	case prog.MoveRight:
		vm.move(in.Arg)
	case prog.MoveLeft:
		vm.move(-in.Arg)
	case prog.Increment:
		vm.add(in.Arg)
	case prog.Decrement:
		vm.sub(in.Arg)
	case prog.Read:
		vm.stor(vm.readByte())
	case prog.Write:
		vm.haltif(flushio.WriteByte(vm.out, vm.load()))
	case prog.LoopEntry:
		if vm.load() == 0 {
			vm.pc = in.Arg
		}
	case prog.LoopExit:
		if vm.load() != 0 {
			vm.pc = in.Arg
		}
	case prog.NoOp:
	}
	vm.pc++
}

func (vm *VM) move(delta int) {
	ptr := vm.ptr + delta
	if ptr < 0 || ptr >= vm.tapeSize {
		vm.halt(&BoundsError{PC: vm.pc, Ptr: vm.ptr, Delta: delta, Size: vm.tapeSize})
	}
	vm.ptr = ptr
}

func (vm *VM) add(n int) {
	cell := vm.load()
	if sum := int(cell) + n; sum > 0xff && !vm.wrap {
		vm.halt(&ArithError{Err: ErrOverflow, PC: vm.pc, Ptr: vm.ptr, Cell: cell, Count: n})
	}
	vm.stor(cell + byte(n))
}

func (vm *VM) sub(n int) {
	cell := vm.load()
	if diff := int(cell) - n; diff < 0 && !vm.wrap {
		vm.halt(&ArithError{Err: ErrUnderflow, PC: vm.pc, Ptr: vm.ptr, Cell: cell, Count: n})
	}
	vm.stor(cell - byte(n))
}

func (vm *VM) load() byte {
	val, err := vm.tape.Load(uint(vm.ptr))
	vm.haltif(err)
	return val
}

func (vm *VM) stor(val byte) {
	vm.haltif(vm.tape.Stor(uint(vm.ptr), val))
}

// readByte takes the next input byte, reading another line of input when
// the current one is used up; at end of input it reads as 0.
func (vm *VM) readByte() byte {
	b, err := vm.in.ReadByte()
	if err == io.EOF {
		vm.logf("read EOF")
		return 0
	}
	vm.haltif(err)
	return b
}

func (vm *VM) halt(err error) {
	if ferr := vm.out.Flush(); err == nil {
		err = ferr
	}
	if err == nil {
		vm.logf("halt")
	} else {
		vm.logf("halt error: %v", err)
	}
	panic(haltError{err})
}

func (vm *VM) haltif(err error) {
	if err != nil {
		vm.halt(err)
	}
}
