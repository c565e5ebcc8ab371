package asm

import (
	"fmt"

	"github.com/jcorbin/gobf/internal/prog"
)

// inputCap bounds how many bytes of one input line are buffered at once;
// a longer line is consumed in inputCap sized pieces.
const inputCap = 4096

// genX86_64 emits NASM source for static x86_64 Linux executables.
// The tape pointer lives in rbx; Read and Write call out to small routines.
func genX86_64(em *emitter, p prog.Program, tapeSize int) error {
	em.printf("; x86_64-linux, %v instructions, %v tape cells", p.Len(), tapeSize)
	em.printf("bits 64")
	em.printf("")
	em.printf("section .bss")
	em.printf("tape:        resb %v", tapeSize)
	em.printf("input_buf:   resb %v", inputCap)
	em.printf("input_index: resq 1")
	em.printf("input_len:   resq 1")
	em.printf("")
	em.printf("section .text")
	em.printf("global _start")
	em.printf("")
	em.printf("_start:")
	em.printf("    xor ebx, ebx")

	if err := em.each(p, func(i int, in prog.Instruction) error {
		em.printf("    ; @%v %v", i, in)
		switch in.Op {
		case prog.MoveRight:
			em.printf("    add rbx, %v", in.Arg)
		case prog.MoveLeft:
			em.printf("    sub rbx, %v", in.Arg)
		case prog.Increment:
			em.printf("    add byte [tape + rbx], %v", in.Arg)
		case prog.Decrement:
			em.printf("    sub byte [tape + rbx], %v", in.Arg)
		case prog.Read:
			em.printf("    call read_byte")
		case prog.Write:
			em.printf("    call write_byte")
		case prog.LoopEntry:
			n := em.enter(i)
			em.printf("    cmp byte [tape + rbx], 0")
			em.printf("    je loop_%v_end", n)
			em.printf("loop_%v_start:", n)
		case prog.LoopExit:
			n, err := em.exit(i, in)
			if err != nil {
				return err
			}
			em.printf("    cmp byte [tape + rbx], 0")
			em.printf("    jne loop_%v_start", n)
			em.printf("loop_%v_end:", n)
		case prog.NoOp:
		default:
			return fmt.Errorf("x86_64: unsupported instruction @%v %v", i, in)
		}
		return nil
	}); err != nil {
		return err
	}

	em.block(`
	    mov eax, 60
	    xor edi, edi
	    syscall

	; write_byte writes the cell under rbx to stdout.
	write_byte:
	    mov eax, 1
	    mov edi, 1
	    lea rsi, [tape + rbx]
	    mov edx, 1
	    syscall
	    ret

	; read_byte stores the next input byte into the cell under rbx, reading
	; stdin one whole line at a time; at end of input it stores 0.
	read_byte:
	    mov rcx, [input_index]
	    cmp rcx, [input_len]
	    jb .take
	    mov qword [input_index], 0
	    mov qword [input_len], 0
	.fill:
	    mov rcx, [input_len]
	    cmp rcx, ` + fmt.Sprint(inputCap) + `
	    jae .filled
	    xor eax, eax
	    xor edi, edi
	    lea rsi, [input_buf + rcx]
	    mov edx, 1
	    syscall
	    cmp rax, 1
	    jne .filled
	    mov rcx, [input_len]
	    inc qword [input_len]
	    cmp byte [input_buf + rcx], 10
	    jne .fill
	.filled:
	    xor ecx, ecx
	    cmp qword [input_len], 0
	    jne .take
	    mov byte [tape + rbx], 0
	    ret
	.take:
	    mov dl, [input_buf + rcx]
	    mov [tape + rbx], dl
	    inc rcx
	    mov [input_index], rcx
	    ret
	`)
	return nil
}
