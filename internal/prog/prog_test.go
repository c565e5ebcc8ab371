package prog_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gobf/internal/prog"
)

func inc(n int) prog.Instruction   { return prog.Instruction{Op: prog.Increment, Arg: n} }
func dec(n int) prog.Instruction   { return prog.Instruction{Op: prog.Decrement, Arg: n} }
func right(n int) prog.Instruction { return prog.Instruction{Op: prog.MoveRight, Arg: n} }
func left(n int) prog.Instruction  { return prog.Instruction{Op: prog.MoveLeft, Arg: n} }
func entry(j int) prog.Instruction { return prog.Instruction{Op: prog.LoopEntry, Arg: j} }
func exit(j int) prog.Instruction  { return prog.Instruction{Op: prog.LoopExit, Arg: j} }

var (
	read  = prog.Instruction{Op: prog.Read}
	write = prog.Instruction{Op: prog.Write}
)

func Test_Lex(t *testing.T) {
	for _, tc := range []struct {
		name   string
		src    string
		expect string
	}{
		{"empty", "", ""},
		{"only commentary", "hello world\n", ""},
		{"all symbols", "><+-.,[]", "><+-.,[]"},
		{"mixed", "a+b-c\n[x>y<z] . , !", "+-[><].,"},
		{"utf8 commentary", "héllo+wörld", "+"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var sb strings.Builder
			for _, sym := range prog.Lex(tc.src) {
				sb.WriteByte(sym.Op.Symbol())
			}
			assert.Equal(t, tc.expect, sb.String(), "expected filtered symbols")
		})
	}
}

func Test_Lex_positions(t *testing.T) {
	syms := prog.Lex("a+\n  [-]\n.")
	require.Len(t, syms, 5, "expected 5 symbols")
	assert.Equal(t, prog.Pos{Offset: 1, Line: 1, Col: 2}, syms[0].Pos, "expected + position")
	assert.Equal(t, prog.Pos{Offset: 5, Line: 2, Col: 3}, syms[1].Pos, "expected [ position")
	assert.Equal(t, prog.Pos{Offset: 7, Line: 2, Col: 5}, syms[3].Pos, "expected ] position")
	assert.Equal(t, prog.Pos{Offset: 9, Line: 3, Col: 1}, syms[4].Pos, "expected . position")
}

func Test_Fold(t *testing.T) {
	for _, tc := range []struct {
		name   string
		src    string
		expect []prog.Instruction
	}{
		{"empty", "", []prog.Instruction{}},
		{"single run", "+++", []prog.Instruction{inc(3)}},
		{"runs split by commentary", "++ x ++", []prog.Instruction{inc(4)}},
		{"alternating", "+-+", []prog.Instruction{inc(1), dec(1), inc(1)}},
		{"moves", ">>><<", []prog.Instruction{right(3), left(2)}},
		{"io is never folded", "..,,", []prog.Instruction{write, write, read, read}},
		{"loops are never folded", "[[]]", []prog.Instruction{entry(0), entry(0), exit(0), exit(0)}},
		{"wrap", strings.Repeat("+", 300), []prog.Instruction{inc(44)}},
		{"wrap to zero", strings.Repeat("-", 256), []prog.Instruction{dec(0)}},
		{"long move", strings.Repeat(">", 300), []prog.Instruction{right(300)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code, pos := prog.Compress(prog.Lex(tc.src))
			assert.Equal(t, tc.expect, code, "expected compressed code")
			assert.Len(t, pos, len(code), "expected a position per instruction")
			assert.Equal(t, code, prog.Fold(code), "expected folding to be idempotent")
		})
	}
}

func Test_Fold_runLengthModulo(t *testing.T) {
	for n := 1; n <= 600; n += 7 {
		for _, sym := range []string{"+", "-"} {
			a, _ := prog.Compress(prog.Lex(strings.Repeat(sym, n)))
			b, _ := prog.Compress(prog.Lex(strings.Repeat(sym, n+256)))
			require.Len(t, a, 1, "expected one instruction for %v×%q", n, sym)
			assert.Equal(t, n%256, a[0].Arg, "expected count mod 256 for %v×%q", n, sym)
			assert.Equal(t, a, b, "expected runs 256 apart to be identical for %v×%q", n, sym)
		}
	}
}

func Test_Fold_mergesCounted(t *testing.T) {
	assert.Equal(t,
		[]prog.Instruction{inc(4), right(5), dec(0), write},
		prog.Fold([]prog.Instruction{inc(200), inc(60), right(2), right(3), dec(128), dec(128), write}),
		"expected adjacent counted instructions to merge")
}

func Test_Parse(t *testing.T) {
	p, err := prog.Parse("++++[>+.<-]")
	require.NoError(t, err, "must parse")
	assert.Equal(t, []prog.Instruction{
		inc(4),
		entry(7),
		right(1),
		inc(1),
		write,
		left(1),
		dec(1),
		exit(1),
	}, p.Instructions(), "expected resolved stream")
	assert.Equal(t, "Increment(4), LoopEntry(->7), MoveRight(1), Increment(1), Write, MoveLeft(1), Decrement(1), LoopExit(->1)", p.String())
	assert.Equal(t, prog.Pos{Offset: 4, Line: 1, Col: 5}, p.Pos(1), "expected loop entry position")
	assert.Equal(t, []int{0, 1, 1, 1, 1, 1, 1, 1}, p.Depths(), "expected nesting depths")

	code, _ := prog.Compress(prog.Lex("++++[>+.<-]"))
	require.NoError(t, prog.Resolve(code), "must resolve")
	assert.Equal(t, p.Instructions(), prog.Fold(code), "expected folding a resolved stream to be idempotent")
}

func Test_Parse_emptyLoop(t *testing.T) {
	p, err := prog.Parse("+[]-")
	require.NoError(t, err, "must parse")
	assert.Equal(t, entry(2), p.At(1), "expected entry to target adjacent exit")
	assert.Equal(t, exit(1), p.At(2), "expected exit to target adjacent entry")
}

func Test_Parse_unmatched(t *testing.T) {
	for _, tc := range []struct {
		name  string
		src   string
		op    prog.Op
		index int
		err   string
	}{
		{"entry without exit", "[[+++>++]", prog.LoopEntry, 0, `unmatched '[' at instruction 0 (1:1): loop entry has no exit`},
		{"exit without entry", "[+>++]]]", prog.LoopExit, 5, `unmatched ']' at instruction 5 (1:7): loop exit has no entry`},
		{"lone exit", "]", prog.LoopExit, 0, `unmatched ']' at instruction 0 (1:1): loop exit has no entry`},
		{"lone entry", "\n +[", prog.LoopEntry, 1, `unmatched '[' at instruction 1 (2:3): loop entry has no exit`},
		{"exit before entry", "][", prog.LoopExit, 0, `unmatched ']' at instruction 0 (1:1): loop exit has no entry`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := prog.Parse(tc.src)
			require.Error(t, err, "must fail to parse")
			assert.True(t, errors.Is(err, prog.ErrUnmatchedBracket), "expected an unmatched bracket error, got %v", err)

			var ube *prog.UnmatchedBracketError
			require.True(t, errors.As(err, &ube), "must be an *UnmatchedBracketError")
			assert.Equal(t, tc.op, ube.Op, "expected unmatched marker kind")
			assert.Equal(t, tc.index, ube.Index, "expected unmatched marker index")
			assert.EqualError(t, err, tc.err)
		})
	}
}

func Test_Parse_deepNesting(t *testing.T) {
	for depth := 0; depth <= 64; depth++ {
		src := strings.Repeat("+[", depth) + "." + strings.Repeat("-]", depth)
		p, err := prog.Parse(src)
		require.NoError(t, err, "must parse depth %v", depth)
		checkPairs(t, p)
	}

	// siblings nested inside siblings
	p, err := prog.Parse("[[][[]]][[[][]][]]")
	require.NoError(t, err, "must parse siblings")
	checkPairs(t, p)
	assert.Equal(t, exit(0), p.At(7))
	assert.Equal(t, entry(17), p.At(8))
}

func checkPairs(t *testing.T, p prog.Program) {
	t.Helper()
	for i := 0; i < p.Len(); i++ {
		in := p.At(i)
		switch in.Op {
		case prog.LoopEntry:
			other := p.At(in.Arg)
			if assert.Equal(t, prog.LoopExit, other.Op, "expected exit @%v for entry @%v", in.Arg, i) {
				assert.Equal(t, i, other.Arg, "expected exit @%v to target entry @%v", in.Arg, i)
			}
		case prog.LoopExit:
			other := p.At(in.Arg)
			if assert.Equal(t, prog.LoopEntry, other.Op, "expected entry @%v for exit @%v", in.Arg, i) {
				assert.Equal(t, i, other.Arg, "expected entry @%v to target exit @%v", in.Arg, i)
			}
		}
	}
}

func Test_New(t *testing.T) {
	for _, tc := range []struct {
		name string
		code []prog.Instruction
		err  error
	}{
		{"empty", nil, nil},
		{"valid", []prog.Instruction{inc(255), entry(3), right(1), exit(1), {Op: prog.NoOp}}, nil},
		{"zero move", []prog.Instruction{right(0)}, prog.ErrInvalid},
		{"count too large", []prog.Instruction{inc(256)}, prog.ErrInvalid},
		{"negative count", []prog.Instruction{dec(-1)}, prog.ErrInvalid},
		{"write with arg", []prog.Instruction{{Op: prog.Write, Arg: 1}}, prog.ErrInvalid},
		{"one sided pair", []prog.Instruction{entry(1), exit(2), exit(0)}, prog.ErrInvalid},
		{"crossed pairs", []prog.Instruction{entry(2), entry(3), exit(0), exit(1)}, prog.ErrInvalid},
		{"unresolved entry", []prog.Instruction{entry(0)}, prog.ErrInvalid},
		{"stray exit", []prog.Instruction{exit(0)}, prog.ErrUnmatchedBracket},
		{"unknown op", []prog.Instruction{{Op: 42}}, prog.ErrInvalid},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := prog.New(tc.code)
			if tc.err == nil {
				require.NoError(t, err, "must build")
				assert.Equal(t, len(tc.code), p.Len(), "expected program length")
				assert.Equal(t, prog.Pos{}, p.Pos(0), "expected no positions")
			} else {
				assert.True(t, errors.Is(err, tc.err), "expected %v, got %v", tc.err, err)
			}
		})
	}
}

func Test_Program_immutable(t *testing.T) {
	code := []prog.Instruction{inc(1), write}
	p, err := prog.New(code)
	require.NoError(t, err, "must build")

	code[0] = dec(1)
	assert.Equal(t, inc(1), p.At(0), "expected New to copy its input")

	out := p.Instructions()
	out[1] = read
	assert.Equal(t, write, p.At(1), "expected Instructions to return a copy")
}

func Test_Op_strings(t *testing.T) {
	assert.Equal(t, "MoveRight", prog.MoveRight.String())
	assert.Equal(t, "Op(42)", prog.Op(42).String())
	assert.Equal(t, byte('['), prog.LoopEntry.Symbol())
	assert.Equal(t, byte(0), prog.NoOp.Symbol())
	assert.Equal(t, "NoOp", prog.Instruction{}.String())
	assert.Equal(t, "Decrement(3)", dec(3).String())
	assert.Equal(t, "LoopExit(->9)", exit(9).String())
}
