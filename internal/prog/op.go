package prog

import (
	"fmt"
	"strconv"
)

// Op names one of the instruction variants.
type Op uint8

// The instruction variants; NoOp is the zero value.
const (
	NoOp Op = iota
	MoveRight
	MoveLeft
	Increment
	Decrement
	Read
	Write
	LoopEntry
	LoopExit

	opMax
)

var opNames = [opMax]string{
	NoOp:      "NoOp",
	MoveRight: "MoveRight",
	MoveLeft:  "MoveLeft",
	Increment: "Increment",
	Decrement: "Decrement",
	Read:      "Read",
	Write:     "Write",
	LoopEntry: "LoopEntry",
	LoopExit:  "LoopExit",
}

var opSymbols = [opMax]byte{
	MoveRight: '>',
	MoveLeft:  '<',
	Increment: '+',
	Decrement: '-',
	Read:      ',',
	Write:     '.',
	LoopEntry: '[',
	LoopExit:  ']',
}

// symbolOps maps each source byte to its Op; bytes outside the alphabet map
// to NoOp.
var symbolOps [256]Op

func init() {
	for op, sym := range opSymbols {
		if sym != 0 {
			symbolOps[sym] = Op(op)
		}
	}
}

func (op Op) String() string {
	if op < opMax {
		return opNames[op]
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Symbol returns the source byte for op, or 0 for NoOp.
func (op Op) Symbol() byte {
	if op < opMax {
		return opSymbols[op]
	}
	return 0
}

// Counted returns true for ops whose Arg is a run length.
func (op Op) Counted() bool {
	switch op {
	case MoveRight, MoveLeft, Increment, Decrement:
		return true
	}
	return false
}

// Jump returns true for the two loop markers, whose Arg is a stream index.
func (op Op) Jump() bool { return op == LoopEntry || op == LoopExit }

// Instruction is one element of a Program.
// Arg is the count for counted ops, the partner index for loop markers, and
// zero otherwise.
type Instruction struct {
	Op  Op
	Arg int
}

func (in Instruction) String() string {
	switch {
	case in.Op.Counted():
		return fmt.Sprintf("%v(%v)", in.Op, in.Arg)
	case in.Op.Jump():
		return fmt.Sprintf("%v(->%v)", in.Op, in.Arg)
	default:
		return in.Op.String()
	}
}
