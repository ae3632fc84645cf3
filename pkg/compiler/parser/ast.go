// Package parser provides syntax analysis for BNA scripts (.bna files).
//
// A BNA script is a sequence of lines, each holding at most one statement.
// Every statement starts with a keyword (or ^ for a label) followed by a fixed
// pattern of operands and helper keywords, so the AST is flat: one Statement
// per line, each with up to two operands.
package parser

import (
	"fmt"
	"strings"

	"github.com/zurustar/bna/pkg/compiler/token"
	"github.com/zurustar/bna/pkg/value"
)

// Node is the interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	String() string
}

// Program is the root node of the AST.
type Program struct {
	Statements []*Statement
}

// TokenLiteral returns the literal value of the first statement's token.
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// String returns the program in canonical source form, one statement per line.
func (p *Program) String() string {
	var b strings.Builder
	for _, s := range p.Statements {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// OperandKind classifies an operand.
type OperandKind int

const (
	VariableOperand OperandKind = iota // counter, xs@i
	NumberOperand                      // 12, -3, 1.5
	StringOperand                      // "text"
	ListOperand                        // (1, 2, x)
)

func (k OperandKind) String() string {
	switch k {
	case VariableOperand:
		return "variable"
	case NumberOperand:
		return "number"
	case StringOperand:
		return "string"
	case ListOperand:
		return "list"
	default:
		return fmt.Sprintf("OperandKind(%d)", int(k))
	}
}

// Operand is a statement argument.
type Operand struct {
	Token token.Token
	Kind  OperandKind

	// Name and Index are set for variables; Index is nil unless the operand is
	// an element access (name@index).
	Name  string
	Index *Operand

	// Value holds the literal for numbers and strings.
	Value value.Value

	// Elems holds the elements of a list literal.
	Elems []*Operand
}

// TokenLiteral returns the literal of the operand's first token.
func (o *Operand) TokenLiteral() string { return o.Token.Literal }

// String returns the operand in source form.
func (o *Operand) String() string {
	switch o.Kind {
	case VariableOperand:
		if o.Index != nil {
			return o.Name + "@" + o.Index.String()
		}
		return o.Name
	case NumberOperand:
		return o.Token.Literal
	case StringOperand:
		return o.Value.GoString()
	case ListOperand:
		parts := make([]string, len(o.Elems))
		for i, e := range o.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "?"
	}
}

// IsVariable reports whether the operand names a variable (indexed or not).
func (o *Operand) IsVariable() bool { return o.Kind == VariableOperand }

// Statement is one parsed line.
//
// Target is the first operand of the statement's pattern: the variable that is
// written (SET x, ADD ... TO x), or read by TEST. Value is the second operand.
// Either may be nil when the pattern has no such slot.
type Statement struct {
	Token  token.Token     // the starting keyword, or ^ for labels
	Kind   token.TokenType // keyword type, token.LABEL for labels
	Target *Operand
	Value  *Operand
	Op     string // TEST comparison (> < = !) or OPEN mode (READ, WRITE)
	Label  string // label name for labels and GOTO
}

// TokenLiteral returns the literal of the starting token.
func (s *Statement) TokenLiteral() string { return s.Token.Literal }

// Line returns the 1-indexed source line of the statement.
func (s *Statement) Line() int { return s.Token.Line }

// Column returns the 1-indexed source column of the statement.
func (s *Statement) Column() int { return s.Token.Column }

// String returns the statement in canonical source form.
func (s *Statement) String() string {
	t, v := s.Target.orBlank(), s.Value.orBlank()
	switch s.Kind {
	case token.LABEL:
		return "^" + s.Label + ":"
	case token.SET:
		return fmt.Sprintf("SET %s TO %s", t, v)
	case token.ADD, token.APPEND:
		return fmt.Sprintf("%s %s TO %s", s.Kind, v, t)
	case token.WRITE:
		return fmt.Sprintf("WRITE %s TO %s", v, t)
	case token.SUBTRACT:
		return fmt.Sprintf("SUBTRACT %s FROM %s", v, t)
	case token.MULTIPLY, token.DIVIDE:
		return fmt.Sprintf("%s %s BY %s", s.Kind, t, v)
	case token.AND, token.OR, token.XOR, token.INPUT:
		return fmt.Sprintf("%s %s WITH %s", s.Kind, t, v)
	case token.MOD, token.LOG:
		return fmt.Sprintf("%s %s OF %s", s.Kind, v, t)
	case token.SIZE, token.TYPE:
		return fmt.Sprintf("%s %s OF %s", s.Kind, t, v)
	case token.RAISE:
		return fmt.Sprintf("RAISE %s TO %s", t, v)
	case token.RANDOM:
		return fmt.Sprintf("RANDOM %s MAX %s", t, v)
	case token.LIST:
		return fmt.Sprintf("LIST %s SIZE %s", t, v)
	case token.TEST:
		return fmt.Sprintf("TEST %s %s %s", t, s.Op, v)
	case token.GOTO:
		if s.Value != nil {
			return fmt.Sprintf("GOTO %s IF %s", s.Label, v)
		}
		return "GOTO " + s.Label
	case token.OPEN:
		return fmt.Sprintf("OPEN %s AS %s %s", v, s.Op, t)
	case token.READ:
		return fmt.Sprintf("READ %s FROM %s", t, v)
	case token.NEGATE, token.ROUND, token.CLOSE:
		return fmt.Sprintf("%s %s", s.Kind, t)
	case token.WAIT, token.PRINT, token.ERROR:
		return fmt.Sprintf("%s %s", s.Kind, v)
	case token.EXIT:
		return "EXIT"
	default:
		return string(s.Kind)
	}
}

func (o *Operand) orBlank() string {
	if o == nil {
		return ""
	}
	return o.String()
}
