/*
Command gobf runs and compiles programs written in the eight symbol tape
language.

A program is any text; only the eight symbols below mean anything, every
other byte is commentary:

	>  move the tape pointer one cell right
	<  move the tape pointer one cell left
	+  increment the cell under the pointer
	-  decrement the cell under the pointer
	.  write the cell under the pointer as one output byte
	,  read one input byte into the cell under the pointer
	[  jump past the matching ] if the cell is zero
	]  jump back past the matching [ if the cell is not zero

Source goes through a small front end (see internal/prog): lexing drops
commentary, runs of moves and of increments or decrements fold into single
counted instructions (increments and decrements modulo 256), and every loop
marker is resolved to the index of its partner. An unmatched bracket is
reported with its source position.

The resolved stream then either runs on the interpreter (gobf interpret,
see internal/vm) over a tape of 30000 cells by default, or is compiled to
NASM or GNU as assembly (gobf compile, see internal/asm) and built into a
static Linux executable by an external assembler and linker (see
internal/build). Every backend reads input one line at a time and stores 0
at end of input, so a program behaves the same however it is run.

Usage:

	gobf interpret hello.bf
	gobf interpret --no-wrap --timeout 5s -m 100 prog.bf < input.txt
	gobf compile -a x86_64-linux -a aarch32-linux -o hello hello.bf
	gobf compile -S hello.bf
	gobf dump hello.bf

Defaults may be set in gobf.yaml:

	tape_size: 30000
	wrap: true
	arch: x86_64-linux
	timeout: 10s
	toolchains:
	  aarch32-linux:
	    assembler: [arm-linux-gnueabihf-as, -march=armv7-a]
	    linker: [arm-linux-gnueabihf-ld]
*/
package main
