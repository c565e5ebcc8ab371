// Package config loads the optional YAML configuration file that supplies
// defaults for the command line.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/gobf/internal/asm"
	"github.com/jcorbin/gobf/internal/vm"
)

// DefaultPath is read when no configuration file is named explicitly; it
// may be absent.
const DefaultPath = "gobf.yaml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds every configurable default. Command line flags override it.
type Config struct {
	TapeSize   int                  `yaml:"tape_size"`
	Wrap       bool                 `yaml:"wrap"`
	Arch       string               `yaml:"arch"`
	Timeout    time.Duration        `yaml:"timeout"`
	Toolchains map[string]Toolchain `yaml:"toolchains"`
}

// Toolchain overrides parts of an architecture's default toolchain; empty
// fields keep the default.
type Toolchain struct {
	Assembler  []string `yaml:"assembler"`
	Linker     []string `yaml:"linker"`
	DebugFlags []string `yaml:"debug_flags"`
}

// Default returns the built in configuration.
func Default() Config {
	return Config{
		TapeSize: vm.DefaultTapeSize,
		Wrap:     true,
		Arch:     asm.X86_64Linux.String(),
	}
}

// Load reads the file at path over the built in defaults. A missing file is
// only an error if required.
func Load(path string, required bool) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%v: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r over the built in defaults, rejecting unknown
// keys, then validates the result. Empty input yields the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values.
func (cfg Config) Validate() error {
	if cfg.TapeSize <= 0 {
		return fmt.Errorf("%w: tape_size must be positive, got %v", ErrInvalid, cfg.TapeSize)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got %v", ErrInvalid, cfg.Timeout)
	}
	if _, err := asm.ParseArch(cfg.Arch); err != nil {
		return fmt.Errorf("%w: arch: %v", ErrInvalid, err)
	}
	for tag := range cfg.Toolchains {
		if _, err := asm.ParseArch(tag); err != nil {
			return fmt.Errorf("%w: toolchains: %v", ErrInvalid, err)
		}
	}
	return nil
}

// Architecture returns the parsed Arch field.
func (cfg Config) Architecture() (asm.Arch, error) {
	return asm.ParseArch(cfg.Arch)
}

// Toolchain returns arch's default toolchain with any configured overrides
// applied.
func (cfg Config) Toolchain(arch asm.Arch) asm.Toolchain {
	tc := arch.Toolchain()
	over, ok := cfg.Toolchains[arch.String()]
	if !ok {
		return tc
	}
	if len(over.Assembler) > 0 {
		tc.Assembler = over.Assembler
	}
	if len(over.Linker) > 0 {
		tc.Linker = over.Linker
	}
	if over.DebugFlags != nil {
		tc.DebugFlags = over.DebugFlags
	}
	return tc
}
