package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is wrapped by every BoundsError.
	ErrOutOfBounds = errors.New("tape pointer out of bounds")

	// ErrOverflow and ErrUnderflow are wrapped by ArithError-s, only raised
	// when wrapping is disabled.
	ErrOverflow  = errors.New("cell overflow")
	ErrUnderflow = errors.New("cell underflow")

	// ErrTapeSize is returned by New for a non-positive tape size.
	ErrTapeSize = errors.New("tape size must be positive")
)

// BoundsError reports a pointer move that would leave the tape.
type BoundsError struct {
	PC    int // faulting instruction
	Ptr   int // pointer before the move
	Delta int
	Size  int
}

func (err *BoundsError) Error() string {
	return fmt.Sprintf("%v: instruction %v moves pointer %v by %+d outside [0, %v)",
		ErrOutOfBounds, err.PC, err.Ptr, err.Delta, err.Size)
}

func (err *BoundsError) Unwrap() error { return ErrOutOfBounds }

// ArithError reports a checked increment or decrement leaving [0, 255].
// PC identifies the faulting instruction; Ptr the cell it operated on.
type ArithError struct {
	Err   error
	PC    int
	Ptr   int
	Cell  byte
	Count int
}

func (err *ArithError) Error() string {
	op := '+'
	if err.Err == ErrUnderflow {
		op = '-'
	}
	return fmt.Sprintf("%v: instruction %v computes %v %c %v in cell %v",
		err.Err, err.PC, err.Cell, op, err.Count, err.Ptr)
}

func (err *ArithError) Unwrap() error { return err.Err }

type tapeSizeError int

func (n tapeSizeError) Error() string { return fmt.Sprintf("%v, got %v", ErrTapeSize, int(n)) }
func (n tapeSizeError) Unwrap() error { return ErrTapeSize }

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}

func (err haltError) Unwrap() error { return err.error }
