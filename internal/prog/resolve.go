package prog

import (
	"errors"
	"fmt"
)

// ErrUnmatchedBracket is wrapped by every UnmatchedBracketError.
var ErrUnmatchedBracket = errors.New("unmatched bracket")

// UnmatchedBracketError reports a loop marker without a partner.
// Op is LoopEntry for an entry with no later exit, and LoopExit for an exit
// with no earlier entry.
type UnmatchedBracketError struct {
	Op    Op
	Index int
	Pos   Pos
}

func (err *UnmatchedBracketError) Error() string {
	at := fmt.Sprintf("instruction %v", err.Index)
	if err.Pos.Line != 0 {
		at += " (" + err.Pos.String() + ")"
	}
	if err.Op == LoopEntry {
		return fmt.Sprintf("unmatched %q at %v: loop entry has no exit", err.Op.Symbol(), at)
	}
	return fmt.Sprintf("unmatched %q at %v: loop exit has no entry", err.Op.Symbol(), at)
}

func (err *UnmatchedBracketError) Unwrap() error { return ErrUnmatchedBracket }

// Resolve writes the partner index into the Arg of every loop marker in code.
//
// It makes one pass holding the indices of still-open entries; the height of
// that stack is the nesting balance. An exit met with no open entry, or any
// entry left open at the end, fails with an *UnmatchedBracketError naming
// the lowest-index unmatched marker. The code is left partially resolved on
// failure.
func Resolve(code []Instruction) error {
	return resolve(code, nil)
}

func resolve(code []Instruction, pos []Pos) error {
	var open []int
	for i, in := range code {
		switch in.Op {
		case LoopEntry:
			open = append(open, i)
		case LoopExit:
			j := len(open) - 1
			if j < 0 {
				return unmatched(LoopExit, i, pos)
			}
			entry := open[j]
			open = open[:j]
			code[entry].Arg = i
			code[i].Arg = entry
		}
	}
	if len(open) > 0 {
		return unmatched(LoopEntry, open[0], pos)
	}
	return nil
}

func unmatched(op Op, i int, pos []Pos) error {
	err := &UnmatchedBracketError{Op: op, Index: i}
	if i < len(pos) {
		err.Pos = pos[i]
	}
	return err
}
