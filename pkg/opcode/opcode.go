// Package opcode defines the instruction set for the BNA engine.
// This package is the foundation that both the compiler and the VM depend on.
// The compiler lowers statements into Instruction sequences, the program builder
// resolves their labels, and the VM executes them.
package opcode

import (
	"fmt"
	"strings"
)

// Kind represents an instruction kind.
type Kind int

// Instruction kinds. Every instruction the VM can execute is one of these.
const (
	// Assign stores the value of Expr into Target (or Target@Index).
	Assign Kind = iota

	// Expression is a read-modify-write of Target: Expr refers to Target itself,
	// so the variable must already exist.
	Expression

	// Print emits the value of Expr through the console.
	Print

	// IO performs a delegated side effect selected by Op.
	IO

	// Label marks a jump destination. It has no effect when executed.
	Label

	// Jump transfers control to Label when Cond holds. A nil Cond always jumps.
	Jump
)

var kindNames = [...]string{
	Assign:     "Assign",
	Expression: "Expression",
	Print:      "Print",
	IO:         "IO",
	Label:      "Label",
	Jump:       "Jump",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IOOp selects the side effect of an IO instruction.
type IOOp string

// IO operations and the operands each one uses.
const (
	// Open opens Args[0] (a path) in Mode and stores the handle in Target.
	Open IOOp = "OPEN"

	// Close closes the handle Args[0].
	Close IOOp = "CLOSE"

	// Read reads one line from handle Args[0] into Target.
	Read IOOp = "READ"

	// Write writes Args[1] as one line to handle Args[0].
	Write IOOp = "WRITE"

	// Input shows the prompt Args[0] and stores the typed line into Target.
	Input IOOp = "INPUT"

	// Wait pauses for Args[0] seconds.
	Wait IOOp = "WAIT"

	// Fail aborts the run with the message Args[0].
	Fail IOOp = "ERROR"
)

// FileMode is the access mode of an Open instruction.
type FileMode int

const (
	ReadMode FileMode = iota
	WriteMode
)

func (m FileMode) String() string {
	if m == WriteMode {
		return "WRITE"
	}
	return "READ"
}

// Instruction is a single, immutable VM instruction.
// Only the fields relevant to Kind are set.
type Instruction struct {
	Kind   Kind
	Target string   // variable written by Assign, Expression, and the Open/Read/Input IO ops
	Index  Expr     // optional element index for Assign (Target@Index)
	Expr   Expr     // value of Assign, Expression and Print
	Label  string   // name of a Label, or destination of a Jump
	Cond   Expr     // Jump condition; nil means unconditional
	Op     IOOp     // IO operation
	Mode   FileMode // Open mode
	Args   []Expr   // IO operands
	Line   int      // source line, 0 when built programmatically
}

// NewAssign returns an instruction storing e into target.
func NewAssign(target string, e Expr) Instruction {
	return Instruction{Kind: Assign, Target: target, Expr: e}
}

// NewAssignIndex returns an instruction storing e into element index of the list target.
func NewAssignIndex(target string, index, e Expr) Instruction {
	return Instruction{Kind: Assign, Target: target, Index: index, Expr: e}
}

// NewExpression returns a read-modify-write of target.
func NewExpression(target string, e Expr) Instruction {
	return Instruction{Kind: Expression, Target: target, Expr: e}
}

// NewPrint returns an instruction printing e.
func NewPrint(e Expr) Instruction {
	return Instruction{Kind: Print, Expr: e}
}

// NewIO returns an IO instruction. target is empty for ops that do not store a result.
func NewIO(op IOOp, target string, args ...Expr) Instruction {
	return Instruction{Kind: IO, Op: op, Target: target, Args: args}
}

// NewOpen returns an instruction opening path in mode and storing the handle in target.
func NewOpen(target string, path Expr, mode FileMode) Instruction {
	return Instruction{Kind: IO, Op: Open, Target: target, Mode: mode, Args: []Expr{path}}
}

// NewLabel returns a label marker.
func NewLabel(name string) Instruction {
	return Instruction{Kind: Label, Label: name}
}

// NewJump returns a conditional jump to label. A nil cond makes it unconditional.
func NewJump(label string, cond Expr) Instruction {
	return Instruction{Kind: Jump, Label: label, Cond: cond}
}

// NewGoto returns an unconditional jump to label.
func NewGoto(label string) Instruction {
	return NewJump(label, nil)
}

// WithLine returns a copy of the instruction tagged with a source line.
func (in Instruction) WithLine(line int) Instruction {
	in.Line = line
	return in
}

// String renders the instruction for listings and debug logs.
func (in Instruction) String() string {
	switch in.Kind {
	case Assign:
		if in.Index != nil {
			return fmt.Sprintf("SET %s@%s = %s", in.Target, in.Index, in.Expr)
		}
		return fmt.Sprintf("SET %s = %s", in.Target, in.Expr)
	case Expression:
		return fmt.Sprintf("UPDATE %s = %s", in.Target, in.Expr)
	case Print:
		return fmt.Sprintf("PRINT %s", in.Expr)
	case IO:
		var b strings.Builder
		b.WriteString(string(in.Op))
		for i, a := range in.Args {
			if i == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		if in.Op == Open {
			b.WriteString(" AS ")
			b.WriteString(in.Mode.String())
		}
		if in.Target != "" {
			b.WriteString(" -> ")
			b.WriteString(in.Target)
		}
		return b.String()
	case Label:
		return fmt.Sprintf("^%s:", in.Label)
	case Jump:
		if in.Cond == nil {
			return fmt.Sprintf("GOTO %s", in.Label)
		}
		return fmt.Sprintf("GOTO %s IF %s", in.Label, in.Cond)
	}
	return in.Kind.String()
}
