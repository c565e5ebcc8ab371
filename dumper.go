package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jcorbin/gobf/internal/prog"
)

// progDumper renders a resolved program as a table: one row per
// instruction, indented by loop nesting depth.
type progDumper struct {
	prog prog.Program
	out  io.Writer

	style  *table.Style // defaults to table.StyleLight
	indent string
}

func (dump progDumper) dump() error {
	if dump.indent == "" {
		dump.indent = "  "
	}

	tw := table.NewWriter()
	if dump.style != nil {
		tw.SetStyle(*dump.style)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.AppendHeader(table.Row{"#", "Pos", "Op", "Arg", "Depth"})

	depths := dump.prog.Depths()
	for i := 0; i < dump.prog.Len(); i++ {
		in := dump.prog.At(i)

		depth := depths[i]
		if in.Op == prog.LoopEntry || in.Op == prog.LoopExit {
			depth-- // markers sit at their enclosing level
		}

		var arg interface{}
		switch {
		case in.Op.Jump():
			arg = "->" + strconv.Itoa(in.Arg)
		case in.Op.Counted():
			arg = in.Arg
		}

		tw.AppendRow(table.Row{
			i,
			dump.prog.Pos(i),
			strings.Repeat(dump.indent, depth) + in.Op.String(),
			arg,
			depths[i],
		})
	}
	tw.AppendFooter(table.Row{"", "", "instructions", dump.prog.Len()})

	_, err := io.WriteString(dump.out, tw.Render()+"\n")
	return err
}
