// Package vm provides the virtual machine for executing BNA programs.
// It implements a flat, program-counter driven execution model:
// - Labels are no-ops; jumps move the program counter to a label's index
// - Loops and early exits are ordinary forward and backward jumps
// - One mutable Environment per run
// - Side effects (printing, input, waiting, files, randomness) go through
//   narrow collaborator interfaces
// - Optional step limit and per-instruction tracing
package vm

import (
	"log/slog"
	"os"

	"github.com/zurustar/bna/pkg/host"
	"github.com/zurustar/bna/pkg/logger"
	"github.com/zurustar/bna/pkg/opcode"
)

// Special variables written by the VM itself.
const (
	// EOFVar is set to 1 when READ hits the end of a file and to 0 otherwise.
	EOFVar = "eof"
)

// Step describes the state at an instruction boundary, just before the
// instruction at PC runs.
type Step struct {
	PC          int
	Instruction opcode.Instruction
	Env         *Environment // snapshot; safe to keep
}

// VM executes programs. A VM holds configuration and collaborators only; all
// run state lives inside Run, so one VM can execute any number of runs. Runs
// that share a VM also share its collaborators.
type VM struct {
	maxSteps int
	trace    func(Step)

	random  RandomSource
	clock   Clock
	console Console
	files   FileSystem

	log *slog.Logger
}

// Option is a functional option for configuring the VM.
type Option func(*VM)

// WithMaxSteps aborts a run with STEP_LIMIT_EXCEEDED once n instructions have
// executed. n <= 0 means no limit.
func WithMaxSteps(n int) Option {
	return func(vm *VM) {
		vm.maxSteps = n
	}
}

// WithTrace registers a callback invoked at every instruction boundary.
func WithTrace(fn func(Step)) Option {
	return func(vm *VM) {
		vm.trace = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// WithRandom sets the random source used by RANDOM.
func WithRandom(r RandomSource) Option {
	return func(vm *VM) {
		vm.random = r
	}
}

// WithClock sets the clock used by WAIT.
func WithClock(c Clock) Option {
	return func(vm *VM) {
		vm.clock = c
	}
}

// WithConsole sets the console used by PRINT and INPUT.
func WithConsole(c Console) Option {
	return func(vm *VM) {
		vm.console = c
	}
}

// WithFileSystem sets the file collaborator used by OPEN, CLOSE, READ and WRITE.
func WithFileSystem(fs FileSystem) Option {
	return func(vm *VM) {
		vm.files = fs
	}
}

// New creates a VM. Collaborators not supplied through options default to the
// host implementations: a time-seeded random source, the wall clock, the process
// terminal, and a file table rooted at the working directory.
func New(opts ...Option) *VM {
	vm := &VM{
		log: logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.random == nil {
		vm.random = host.NewRandom()
	}
	if vm.clock == nil {
		vm.clock = host.SystemClock{}
	}
	if vm.console == nil {
		vm.console = host.NewConsole(os.Stdin, os.Stdout)
	}
	if vm.files == nil {
		vm.files = host.NewFileTable("")
	}
	return vm
}
