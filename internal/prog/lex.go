package prog

import "fmt"

// Pos locates a symbol within source text.
// Line and Col are 1-based; Col counts bytes.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

func (pos Pos) String() string {
	if pos.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%v:%v", pos.Line, pos.Col)
}

// Symbol is one instruction character kept by Lex.
type Symbol struct {
	Op  Op
	Pos Pos
}

// Lex filters src down to the instruction alphabet; every other byte is
// commentary and is dropped.
func Lex(src string) []Symbol {
	var syms []Symbol
	pos := Pos{Line: 1, Col: 1}
	for i := 0; i < len(src); i++ {
		c := src[i]
		pos.Offset = i
		if op := symbolOps[c]; op != NoOp {
			syms = append(syms, Symbol{op, pos})
		}
		if c == '\n' {
			pos.Line++
			pos.Col = 1
		} else {
			pos.Col++
		}
	}
	return syms
}
