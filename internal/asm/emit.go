package asm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jcorbin/gobf/internal/prog"
)

// ErrLabelMismatch is wrapped by every LabelError.
var ErrLabelMismatch = errors.New("loop label mismatch")

// LabelError reports a loop exit whose target is not the innermost open
// loop entry.
type LabelError struct {
	Index  int // of the LoopExit
	Target int // its recorded partner
	Open   int // innermost open entry, or -1 if none
}

func (err *LabelError) Error() string {
	if err.Open < 0 {
		return fmt.Sprintf("%v: exit @%v targets %v with no loop open", ErrLabelMismatch, err.Index, err.Target)
	}
	return fmt.Sprintf("%v: exit @%v targets %v, innermost open loop is @%v",
		ErrLabelMismatch, err.Index, err.Target, err.Open)
}

func (err *LabelError) Unwrap() error { return ErrLabelMismatch }

type openLoop struct {
	index int // of the LoopEntry
	label int
}

// labeler allocates one label number per loop occurrence, in order of
// appearance, pairing each exit with its entry through a stack.
type labeler struct {
	next int
	open []openLoop
}

func (lb *labeler) enter(i int) int {
	label := lb.next
	lb.next++
	lb.open = append(lb.open, openLoop{i, label})
	return label
}

func (lb *labeler) exit(i int, in prog.Instruction) (int, error) {
	top := len(lb.open) - 1
	if top < 0 {
		return 0, &LabelError{Index: i, Target: in.Arg, Open: -1}
	}
	loop := lb.open[top]
	if loop.index != in.Arg {
		return 0, &LabelError{Index: i, Target: in.Arg, Open: loop.index}
	}
	lb.open = lb.open[:top]
	return loop.label, nil
}

// emitter accumulates assembly text.
type emitter struct {
	strings.Builder
	labeler
}

func (em *emitter) printf(format string, args ...interface{}) {
	fmt.Fprintf(em, format, args...)
	em.WriteByte('\n')
}

// block writes each line of a literal text block, trimming its common
// leading tab indentation.
func (em *emitter) block(text string) {
	text = strings.TrimPrefix(text, "\n")
	for _, line := range strings.Split(strings.TrimRight(text, "\n\t"), "\n") {
		em.WriteString(strings.TrimPrefix(line, "\t"))
		em.WriteByte('\n')
	}
}

// each calls fn for every instruction of p, then checks that every loop
// was closed.
func (em *emitter) each(p prog.Program, fn func(i int, in prog.Instruction) error) error {
	for i := 0; i < p.Len(); i++ {
		if err := fn(i, p.At(i)); err != nil {
			return err
		}
	}
	if n := len(em.open); n > 0 {
		return fmt.Errorf("%w: loop entered @%v never exits", ErrLabelMismatch, em.open[n-1].index)
	}
	return nil
}
