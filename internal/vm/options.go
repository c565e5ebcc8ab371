package vm

import (
	"io"

	"github.com/jcorbin/gobf/internal/flushio"
)

// Option configures a VM under New.
type Option interface{ apply(vm *VM) }

var defaultOptions = Options(
	WithTapeSize(DefaultTapeSize),
	WithWrapping(true),
	WithOutput(io.Discard),
)

// Options combines any number of options into one, applied in order; nil
// options are ignored.
func Options(opts ...Option) Option {
	var all options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			all = append(all, impl...)
		default:
			all = append(all, opt)
		}
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

type options []Option

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

// WithInput queues r as a source of input bytes; sources are read in turn
// until each is exhausted.
func WithInput(r io.Reader) Option { return inputOption{r} }

// WithOutput sets where written bytes go, replacing (after flushing) any
// prior output.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithTee adds another output that receives a copy of everything written.
func WithTee(w io.Writer) Option { return teeOption{w} }

// WithTapeSize sets the number of tape cells; it must be positive.
func WithTapeSize(n int) Option { return tapeSizeOption(n) }

// WithWrapping chooses between silent 8-bit wraparound (true, the default)
// and checked arithmetic that faults on overflow or underflow.
func WithWrapping(wrap bool) Option { return wrapOption(wrap) }

// WithLogf enables trace logging of every executed instruction.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type tapeSizeOption int
type wrapOption bool
type withLogfn func(mess string, args ...interface{})

func (i inputOption) apply(vm *VM) {
	vm.in.Queue = append(vm.in.Queue, i.Reader)
}

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.WriteFlushers(vm.out, flushio.NewWriteFlusher(o.Writer))
}

func (n tapeSizeOption) apply(vm *VM) { vm.tapeSize = int(n) }
func (wrap wrapOption) apply(vm *VM)  { vm.wrap = bool(wrap) }
func (logfn withLogfn) apply(vm *VM)  { vm.logfn = logfn }
