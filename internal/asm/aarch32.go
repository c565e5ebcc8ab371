package asm

import (
	"fmt"

	"github.com/jcorbin/gobf/internal/prog"
)

// genAarch32 emits GNU as source for static 32-bit ARM Linux executables.
// The tape pointer lives in r4 and the tape base address in r5; moves load
// their offset through the mov32 macro, so any count fits.
func genAarch32(em *emitter, p prog.Program, tapeSize int) error {
	em.printf("@ aarch32-linux, %v instructions, %v tape cells", p.Len(), tapeSize)
	em.block(`
	    .syntax unified
	    .arm
	    .global _start

	    .macro mov32, reg, val
	        movw \reg, #:lower16:\val
	        movt \reg, #:upper16:\val
	    .endm

	    .text
	_start:
	    mov r4, #0
	    mov32 r5, tape
	`)

	if err := em.each(p, func(i int, in prog.Instruction) error {
		em.printf("    @ @%v %v", i, in)
		switch in.Op {
		case prog.MoveRight:
			em.printf("    mov32 r0, %v", in.Arg)
			em.printf("    add r4, r4, r0")
		case prog.MoveLeft:
			em.printf("    mov32 r0, %v", in.Arg)
			em.printf("    sub r4, r4, r0")
		case prog.Increment:
			em.printf("    ldrb r1, [r5, r4]")
			em.printf("    add r1, r1, #%v", in.Arg)
			em.printf("    strb r1, [r5, r4]")
		case prog.Decrement:
			em.printf("    ldrb r1, [r5, r4]")
			em.printf("    sub r1, r1, #%v", in.Arg)
			em.printf("    strb r1, [r5, r4]")
		case prog.Read:
			em.printf("    bl read_byte")
		case prog.Write:
			em.printf("    bl write_byte")
		case prog.LoopEntry:
			n := em.enter(i)
			em.printf("    ldrb r0, [r5, r4]")
			em.printf("    cmp r0, #0")
			em.printf("    beq loop_%v_end", n)
			em.printf("loop_%v_start:", n)
		case prog.LoopExit:
			n, err := em.exit(i, in)
			if err != nil {
				return err
			}
			em.printf("    ldrb r0, [r5, r4]")
			em.printf("    cmp r0, #0")
			em.printf("    bne loop_%v_start", n)
			em.printf("loop_%v_end:", n)
		case prog.NoOp:
		default:
			return fmt.Errorf("aarch32: unsupported instruction @%v %v", i, in)
		}
		return nil
	}); err != nil {
		return err
	}

	em.block(`
	    mov r0, #0
	    mov r7, #1
	    svc #0

	@ write_byte writes the cell under r4 to stdout.
	write_byte:
	    mov r0, #1
	    add r1, r5, r4
	    mov r2, #1
	    mov r7, #4
	    svc #0
	    bx lr

	@ read_byte reads one stdin byte into the cell under r4; at end of input
	@ it stores 0.
	read_byte:
	    mov r0, #0
	    add r1, r5, r4
	    mov r2, #1
	    mov r7, #3
	    svc #0
	    cmp r0, #1
	    movne r0, #0
	    strbne r0, [r5, r4]
	    bx lr

	    .bss
	tape:
	`)
	em.printf("    .space %v", tapeSize)
	return nil
}
