package prog

// Fold merges every maximal run of identical counted instructions into one,
// summing their counts; Increment and Decrement counts are reduced mod 256.
// Other instructions pass through untouched, so Fold never looks at nesting
// and is idempotent on its own output.
func Fold(code []Instruction) []Instruction {
	folded, _ := fold(code, nil)
	return folded
}

// Compress turns lexed symbols into folded instructions, returning alongside
// them the position of the first symbol of each folded run.
// Loop markers are left unresolved (Arg 0) for Resolve.
func Compress(syms []Symbol) ([]Instruction, []Pos) {
	code := make([]Instruction, len(syms))
	pos := make([]Pos, len(syms))
	for i, sym := range syms {
		code[i] = Instruction{Op: sym.Op}
		if sym.Op.Counted() {
			code[i].Arg = 1
		}
		pos[i] = sym.Pos
	}
	return fold(code, pos)
}

func fold(code []Instruction, pos []Pos) ([]Instruction, []Pos) {
	var (
		out    = make([]Instruction, 0, len(code))
		outPos []Pos
	)
	if pos != nil {
		outPos = make([]Pos, 0, len(pos))
	}
	for i := 0; i < len(code); {
		in := code[i]
		j := i + 1
		if in.Op.Counted() {
			for ; j < len(code) && code[j].Op == in.Op; j++ {
				in.Arg += code[j].Arg
			}
			if in.Op == Increment || in.Op == Decrement {
				in.Arg = int(uint8(in.Arg))
			}
		}
		out = append(out, in)
		if pos != nil {
			outPos = append(outPos, pos[i])
		}
		i = j
	}
	return out, outPos
}
