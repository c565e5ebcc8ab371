// Package asm generates assembly text for resolved programs, one generator
// per supported target architecture.
package asm

import (
	"errors"
	"fmt"

	"github.com/jcorbin/gobf/internal/prog"
)

// Arch names a supported target; the set is closed.
type Arch uint8

// Supported target architectures.
const (
	X86_64Linux Arch = iota + 1
	Aarch32Linux
)

var (
	// ErrUnknownArch is returned for an unsupported architecture or tag.
	ErrUnknownArch = errors.New("unknown architecture")

	// ErrTapeSize is returned by Generate for a non-positive tape size.
	ErrTapeSize = errors.New("tape size must be positive")
)

var archTags = [...]string{
	X86_64Linux:  "x86_64-linux",
	Aarch32Linux: "aarch32-linux",
}

func (arch Arch) String() string {
	if int(arch) < len(archTags) && archTags[arch] != "" {
		return archTags[arch]
	}
	return fmt.Sprintf("Arch(%d)", uint8(arch))
}

// Arches returns every supported architecture.
func Arches() []Arch { return []Arch{X86_64Linux, Aarch32Linux} }

// ParseArch returns the architecture named by tag, e.g. "x86_64-linux".
func ParseArch(tag string) (Arch, error) {
	for _, arch := range Arches() {
		if archTags[arch] == tag {
			return arch, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownArch, tag)
}

// Toolchain describes the external programs that turn generated assembly
// into an executable. Assembler and Linker are argv prefixes; the build
// driver appends output and input paths.
type Toolchain struct {
	Assembler  []string
	Linker     []string
	DebugFlags []string // added to the assembler argv for debug builds
	Ext        string   // assembly source file extension
}

// Toolchain returns the default toolchain for arch.
func (arch Arch) Toolchain() Toolchain {
	switch arch {
	case X86_64Linux:
		return Toolchain{
			Assembler:  []string{"nasm", "-f", "elf64"},
			Linker:     []string{"ld"},
			DebugFlags: []string{"-g", "-F", "dwarf"},
			Ext:        ".asm",
		}
	case Aarch32Linux:
		return Toolchain{
			Assembler:  []string{"arm-none-eabi-as", "-march=armv7-a"},
			Linker:     []string{"arm-none-eabi-ld"},
			DebugFlags: []string{"-g"},
			Ext:        ".s",
		}
	}
	return Toolchain{}
}

// Generate renders p as assembly text for arch, reserving tapeSize cells.
func Generate(arch Arch, p prog.Program, tapeSize int) (string, error) {
	if tapeSize <= 0 {
		return "", fmt.Errorf("%w, got %v", ErrTapeSize, tapeSize)
	}
	var gen func(em *emitter, p prog.Program, tapeSize int) error
	switch arch {
	case X86_64Linux:
		gen = genX86_64
	case Aarch32Linux:
		gen = genAarch32
	default:
		return "", fmt.Errorf("%w %v", ErrUnknownArch, arch)
	}
	var em emitter
	if err := gen(&em, p, tapeSize); err != nil {
		return "", err
	}
	return em.String(), nil
}
