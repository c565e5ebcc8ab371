package prog

import (
	"errors"
	"fmt"
)

// Program is a resolved instruction stream.
// It is immutable once built: every accessor hands out copies.
type Program struct {
	code []Instruction
	pos  []Pos
}

// ErrInvalid is wrapped by every InvalidError.
var ErrInvalid = errors.New("invalid instruction stream")

// InvalidError reports an invariant violation in a hand-built stream.
type InvalidError struct {
	Index  int
	Reason string
}

func (err *InvalidError) Error() string {
	return fmt.Sprintf("%v: instruction %v %v", ErrInvalid, err.Index, err.Reason)
}

func (err *InvalidError) Unwrap() error { return ErrInvalid }

// Parse runs the whole front end over src: lex, compress, then resolve jumps.
func Parse(src string) (Program, error) {
	code, pos := Compress(Lex(src))
	if err := resolve(code, pos); err != nil {
		return Program{}, err
	}
	return Program{code, pos}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) Program {
	p, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return p
}

// New builds a Program from already resolved instructions, checking every
// stream invariant. The given slice is copied.
func New(code []Instruction) (Program, error) {
	code = append([]Instruction(nil), code...)
	if err := validate(code); err != nil {
		return Program{}, err
	}
	return Program{code: code}, nil
}

func validate(code []Instruction) error {
	var open []int
	for i, in := range code {
		switch in.Op {
		case MoveRight, MoveLeft:
			if in.Arg <= 0 {
				return &InvalidError{i, fmt.Sprintf("%v count must be positive", in)}
			}
		case Increment, Decrement:
			if in.Arg < 0 || in.Arg > 255 {
				return &InvalidError{i, fmt.Sprintf("%v count must be in [0, 255]", in)}
			}
		case Read, Write, NoOp:
			if in.Arg != 0 {
				return &InvalidError{i, fmt.Sprintf("%v takes no argument", in.Op)}
			}
		case LoopEntry:
			open = append(open, i)
			j := in.Arg
			if j <= i || j >= len(code) || code[j].Op != LoopExit || code[j].Arg != i {
				return &InvalidError{i, fmt.Sprintf("%v does not pair with a later LoopExit", in)}
			}
		case LoopExit:
			top := len(open) - 1
			if top < 0 {
				return &UnmatchedBracketError{Op: LoopExit, Index: i}
			}
			if in.Arg != open[top] {
				return &InvalidError{i, fmt.Sprintf("%v does not close the innermost loop entered at %v", in, open[top])}
			}
			open = open[:top]
		default:
			return &InvalidError{i, fmt.Sprintf("unknown op %v", in.Op)}
		}
	}
	if len(open) > 0 {
		return &UnmatchedBracketError{Op: LoopEntry, Index: open[0]}
	}
	return nil
}

// Len returns the number of instructions.
func (p Program) Len() int { return len(p.code) }

// At returns the i-th instruction.
func (p Program) At(i int) Instruction { return p.code[i] }

// Pos returns the source position of the i-th instruction; programs built by
// New have no positions and return the zero Pos.
func (p Program) Pos(i int) Pos {
	if i < len(p.pos) {
		return p.pos[i]
	}
	return Pos{}
}

// Instructions returns a copy of the stream.
func (p Program) Instructions() []Instruction {
	return append([]Instruction(nil), p.code...)
}

// Depths returns the loop nesting depth of each instruction; loop markers
// count as inside their own loop.
func (p Program) Depths() []int {
	depths := make([]int, len(p.code))
	depth := 0
	for i, in := range p.code {
		if in.Op == LoopEntry {
			depth++
		}
		depths[i] = depth
		if in.Op == LoopExit {
			depth--
		}
	}
	return depths
}

// String renders the stream as a comma separated instruction list.
func (p Program) String() string {
	buf := make([]byte, 0, 16*len(p.code))
	for i, in := range p.code {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, in.String()...)
	}
	return string(buf)
}
