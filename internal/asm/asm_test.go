package asm

import (
	"fmt"
	"regexp"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jcorbin/gobf/internal/prog"
)

var _ = Describe("Arch", func() {
	It("should round trip tags", func() {
		for _, arch := range Arches() {
			parsed, err := ParseArch(arch.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(arch))
		}
		Expect(X86_64Linux.String()).To(Equal("x86_64-linux"))
		Expect(Aarch32Linux.String()).To(Equal("aarch32-linux"))
		Expect(Arch(0).String()).To(Equal("Arch(0)"))
	})

	It("should reject unknown tags", func() {
		_, err := ParseArch("aarch64-linux")
		Expect(err).To(MatchError(ErrUnknownArch))
		Expect(err.Error()).To(ContainSubstring(`"aarch64-linux"`))
	})

	It("should carry a default toolchain", func() {
		for _, arch := range Arches() {
			tc := arch.Toolchain()
			Expect(tc.Assembler).NotTo(BeEmpty(), "%v assembler", arch)
			Expect(tc.Linker).NotTo(BeEmpty(), "%v linker", arch)
			Expect(tc.Ext).To(HavePrefix("."), "%v extension", arch)
		}
		Expect(X86_64Linux.Toolchain().Assembler).To(Equal([]string{"nasm", "-f", "elf64"}))
		Expect(Arch(9).Toolchain()).To(Equal(Toolchain{}))
	})
})

var _ = Describe("Generate", func() {
	It("should reject an unknown arch", func() {
		_, err := Generate(Arch(9), prog.MustParse("+"), 8)
		Expect(err).To(MatchError(ErrUnknownArch))
	})

	It("should reject a non-positive tape", func() {
		for _, arch := range Arches() {
			_, err := Generate(arch, prog.MustParse("+"), 0)
			Expect(err).To(MatchError(ErrTapeSize))
		}
	})

	DescribeTable("should pair loop labels uniquely",
		func(arch Arch, src string, loops int) {
			text, err := Generate(arch, prog.MustParse(src), 16)
			Expect(err).NotTo(HaveOccurred())
			checkLabels(text, loops)
		},
		Entry("x86_64 flat", X86_64Linux, "+[-]", 1),
		Entry("x86_64 nested", X86_64Linux, "[[][[]]][[[][]][]]", 9),
		Entry("x86_64 none", X86_64Linux, "+.>,", 0),
		Entry("aarch32 flat", Aarch32Linux, "+[-]", 1),
		Entry("aarch32 nested", Aarch32Linux, "[[][[]]][[[][]][]]", 9),
		Entry("aarch32 deep", Aarch32Linux, strings.Repeat("+[", 50)+strings.Repeat("-]", 50), 50),
	)

	Context("for x86_64-linux", func() {
		It("should render the countdown program", func() {
			text, err := Generate(X86_64Linux, prog.MustParse("++++[>+.<-]"), 8)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(ContainSubstring("tape:        resb 8\n"))
			Expect(text).To(ContainSubstring("_start:\n    xor ebx, ebx\n"))
			Expect(lines(text, "    ; @")).To(Equal([]string{
				"    ; @0 Increment(4)",
				"    ; @1 LoopEntry(->7)",
				"    ; @2 MoveRight(1)",
				"    ; @3 Increment(1)",
				"    ; @4 Write",
				"    ; @5 MoveLeft(1)",
				"    ; @6 Decrement(1)",
				"    ; @7 LoopExit(->1)",
			}))
			Expect(text).To(ContainSubstring(
				"    ; @1 LoopEntry(->7)\n" +
					"    cmp byte [tape + rbx], 0\n" +
					"    je loop_0_end\n" +
					"loop_0_start:\n" +
					"    ; @2 MoveRight(1)\n" +
					"    add rbx, 1\n"))
			Expect(text).To(ContainSubstring(
				"    ; @7 LoopExit(->1)\n" +
					"    cmp byte [tape + rbx], 0\n" +
					"    jne loop_0_start\n" +
					"loop_0_end:\n" +
					"    mov eax, 60\n"))
			Expect(text).To(ContainSubstring("    add byte [tape + rbx], 4\n"))
			Expect(text).To(ContainSubstring("    sub byte [tape + rbx], 1\n"))
			Expect(text).To(ContainSubstring("    call write_byte\n"))
		})

		It("should keep counts as immediates", func() {
			text, err := Generate(X86_64Linux, prog.MustParse(strings.Repeat(">", 300)+strings.Repeat("-", 300)), 1000)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(ContainSubstring("    add rbx, 300\n"))
			Expect(text).To(ContainSubstring("    sub byte [tape + rbx], 44\n"))
		})

		It("should route reads through the line buffer", func() {
			text, err := Generate(X86_64Linux, prog.MustParse(",."), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(ContainSubstring("    call read_byte\n"))
			Expect(text).To(ContainSubstring("read_byte:\n"))
			Expect(text).To(ContainSubstring("cmp byte [input_buf + rcx], 10"))
			Expect(text).To(ContainSubstring("mov byte [tape + rbx], 0"))
		})
	})

	Context("for aarch32-linux", func() {
		It("should render the countdown program", func() {
			text, err := Generate(Aarch32Linux, prog.MustParse("++++[>+.<-]"), 8)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(HavePrefix("@ aarch32-linux, 8 instructions, 8 tape cells\n"))
			Expect(text).To(ContainSubstring("    .macro mov32, reg, val\n        movw \\reg, #:lower16:\\val\n"))
			Expect(text).To(ContainSubstring("_start:\n    mov r4, #0\n    mov32 r5, tape\n"))
			Expect(text).To(ContainSubstring(
				"    @ @0 Increment(4)\n" +
					"    ldrb r1, [r5, r4]\n" +
					"    add r1, r1, #4\n" +
					"    strb r1, [r5, r4]\n"))
			Expect(text).To(ContainSubstring(
				"    @ @1 LoopEntry(->7)\n" +
					"    ldrb r0, [r5, r4]\n" +
					"    cmp r0, #0\n" +
					"    beq loop_0_end\n" +
					"loop_0_start:\n"))
			Expect(text).To(ContainSubstring("    bne loop_0_start\nloop_0_end:\n"))
			Expect(text).To(ContainSubstring("    bl write_byte\n"))
			Expect(text).To(HaveSuffix("tape:\n    .space 8\n"))
		})

		It("should load move counts with mov32", func() {
			text, err := Generate(Aarch32Linux, prog.MustParse(strings.Repeat(">", 70000)+"<"), 80000)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(ContainSubstring("    mov32 r0, 70000\n    add r4, r4, r0\n"))
			Expect(text).To(ContainSubstring("    mov32 r0, 1\n    sub r4, r4, r0\n"))
		})

		It("should store zero at end of input", func() {
			text, err := Generate(Aarch32Linux, prog.MustParse(","), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(ContainSubstring("    bl read_byte\n"))
			Expect(text).To(ContainSubstring("    movne r0, #0\n    strbne r0, [r5, r4]\n"))
		})
	})

	It("should emit nothing but a comment for NoOp", func() {
		p, err := prog.New([]prog.Instruction{{Op: prog.NoOp}})
		Expect(err).NotTo(HaveOccurred())
		for _, arch := range Arches() {
			empty, err := Generate(arch, prog.Program{}, 4)
			Expect(err).NotTo(HaveOccurred())
			text, err := Generate(arch, p, 4)
			Expect(err).NotTo(HaveOccurred())

			// only the header instruction count and the comment differ
			Expect(len(strings.Split(text, "\n"))).To(Equal(len(strings.Split(empty, "\n"))+1), "%v", arch)
			Expect(text).To(ContainSubstring("@0 NoOp\n"))
		}
	})
})

var _ = Describe("labeler", func() {
	It("should number loops in order of appearance", func() {
		var lb labeler
		Expect(lb.enter(0)).To(Equal(0))
		Expect(lb.enter(1)).To(Equal(1))
		Expect(lb.exit(2, prog.Instruction{Op: prog.LoopExit, Arg: 1})).To(Equal(1))
		Expect(lb.enter(3)).To(Equal(2))
		Expect(lb.exit(4, prog.Instruction{Op: prog.LoopExit, Arg: 3})).To(Equal(2))
		Expect(lb.exit(5, prog.Instruction{Op: prog.LoopExit, Arg: 0})).To(Equal(0))
		Expect(lb.open).To(BeEmpty())
	})

	It("should reject an exit targeting some other entry", func() {
		var lb labeler
		lb.enter(0)
		lb.enter(1)
		_, err := lb.exit(2, prog.Instruction{Op: prog.LoopExit, Arg: 0})
		Expect(err).To(MatchError(ErrLabelMismatch))
		Expect(err).To(MatchError("loop label mismatch: exit @2 targets 0, innermost open loop is @1"))
	})

	It("should reject an exit with no loop open", func() {
		var lb labeler
		_, err := lb.exit(0, prog.Instruction{Op: prog.LoopExit, Arg: 3})
		Expect(err).To(MatchError(ErrLabelMismatch))
		var le *LabelError
		Expect(err).To(BeAssignableToTypeOf(le))
		Expect(err.(*LabelError).Open).To(Equal(-1))
	})

	It("should reject a loop left open", func() {
		var em emitter
		em.enter(0)
		err := em.each(prog.Program{}, func(int, prog.Instruction) error { return nil })
		Expect(err).To(MatchError(ErrLabelMismatch))
	})
})

var labelDef = regexp.MustCompile(`(?m)^(loop_\d+_(?:start|end)):$`)
var labelRef = regexp.MustCompile(`(?m)^\s+(?:je|jne|beq|bne) (loop_\d+_(?:start|end))$`)

// checkLabels asserts that every loop defines one start and one end label
// exactly once, and that every branch names a defined label.
func checkLabels(text string, loops int) {
	defs := make(map[string]int)
	for _, m := range labelDef.FindAllStringSubmatch(text, -1) {
		defs[m[1]]++
	}
	Expect(defs).To(HaveLen(2 * loops))
	for n := 0; n < loops; n++ {
		for _, kind := range []string{"start", "end"} {
			label := fmt.Sprintf("loop_%v_%v", n, kind)
			Expect(defs).To(HaveKeyWithValue(label, 1), "label %v defined once", label)
		}
	}
	refs := labelRef.FindAllStringSubmatch(text, -1)
	Expect(refs).To(HaveLen(2 * loops))
	for _, m := range refs {
		Expect(defs).To(HaveKey(m[1]), "branch target %v defined", m[1])
	}
}

func lines(text, prefix string) (matched []string) {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			matched = append(matched, line)
		}
	}
	return matched
}
