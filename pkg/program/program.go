// Package program builds validated, label-resolved programs from flat
// instruction sequences.
//
// A Program is built once and may then be run any number of times, from any
// number of goroutines: it holds no run state and is never modified after Build
// returns.
package program

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zurustar/bna/pkg/opcode"
)

// Program is an ordered instruction sequence plus the index of every label in it.
type Program struct {
	instructions []opcode.Instruction
	labels       map[string]int
}

// Build validates instructions and resolves every label.
//
// The instruction order is kept exactly; Label instructions stay in the stream
// as no-ops so that falling through past a label is well defined. Build fails
// with a *BuildError, and returns no Program, when a label is declared twice or
// a jump names a label that does not exist.
func Build(instructions []opcode.Instruction) (*Program, error) {
	p := &Program{
		instructions: make([]opcode.Instruction, len(instructions)),
		labels:       make(map[string]int),
	}
	copy(p.instructions, instructions)

	for i, in := range p.instructions {
		if in.Kind != opcode.Label {
			continue
		}
		if in.Label == "" {
			return nil, newBuildError(ErrorUnresolvedLabel, in.Label, i, in.Line, "label has an empty name")
		}
		if first, dup := p.labels[in.Label]; dup {
			return nil, newBuildError(ErrorDuplicateLabel, in.Label, i, in.Line,
				fmt.Sprintf("label %q already declared at index %d", in.Label, first))
		}
		p.labels[in.Label] = i
	}

	for i, in := range p.instructions {
		if in.Kind != opcode.Jump {
			continue
		}
		if in.Label == "" {
			return nil, newBuildError(ErrorUnresolvedLabel, in.Label, i, in.Line, "jump has no target label")
		}
		if _, ok := p.labels[in.Label]; !ok {
			return nil, newBuildError(ErrorUnresolvedLabel, in.Label, i, in.Line,
				fmt.Sprintf("jump to undeclared label %q", in.Label))
		}
	}

	return p, nil
}

// MustBuild is like Build but panics on error. It is meant for programs
// assembled in Go code, such as tests and examples.
func MustBuild(instructions ...opcode.Instruction) *Program {
	p, err := Build(instructions)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.instructions) }

// At returns the instruction at index i.
func (p *Program) At(i int) opcode.Instruction { return p.instructions[i] }

// Resolve returns the index of the named label.
func (p *Program) Resolve(name string) (int, bool) {
	i, ok := p.labels[name]
	return i, ok
}

// Labels returns the declared label names in sorted order.
func (p *Program) Labels() []string {
	names := make([]string, 0, len(p.labels))
	for name := range p.labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a numbered listing of the program. Jumps show their resolved index.
func (p *Program) String() string {
	var b strings.Builder
	width := len(fmt.Sprint(len(p.instructions)))
	for i, in := range p.instructions {
		fmt.Fprintf(&b, "%*d  %s", width, i, in)
		if in.Kind == opcode.Jump {
			fmt.Fprintf(&b, "  ; -> %d", p.labels[in.Label])
		}
		if in.Line > 0 {
			fmt.Fprintf(&b, "  ; line %d", in.Line)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
