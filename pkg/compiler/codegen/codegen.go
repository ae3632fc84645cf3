// Package codegen lowers parsed BNA statements into VM instructions.
package codegen

import (
	"fmt"

	"github.com/zurustar/bna/pkg/compiler/parser"
	"github.com/zurustar/bna/pkg/compiler/token"
	"github.com/zurustar/bna/pkg/opcode"
)

const (
	// ExitLabel is the label EXIT jumps to. It is appended after the last
	// instruction, and cannot collide with a user label because '$' never
	// appears in an identifier.
	ExitLabel = "$exit"

	// ResultVar is the variable TEST stores its outcome in.
	ResultVar = "result"
)

// Error is a statement that cannot be lowered.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}

// Generator converts the AST to instruction sequences.
type Generator struct {
	errors   []*Error
	usesExit bool
}

// New creates a new code generator.
func New() *Generator {
	return &Generator{
		errors: []*Error{},
	}
}

// Errors returns the generator errors.
func (g *Generator) Errors() []*Error {
	return g.errors
}

// Generate converts a program AST to an instruction sequence.
// Each instruction carries the source line of the statement it came from.
func (g *Generator) Generate(program *parser.Program) []opcode.Instruction {
	var out []opcode.Instruction

	for _, stmt := range program.Statements {
		for _, in := range g.generateStatement(stmt) {
			out = append(out, in.WithLine(stmt.Line()))
		}
	}

	if g.usesExit {
		out = append(out, opcode.NewLabel(ExitLabel))
	}
	return out
}

var updateOps = map[token.TokenType]opcode.BinaryOp{
	token.ADD:      opcode.Add,
	token.SUBTRACT: opcode.Sub,
	token.MULTIPLY: opcode.Mul,
	token.DIVIDE:   opcode.Div,
	token.RAISE:    opcode.Pow,
	token.MOD:      opcode.Mod,
	token.LOG:      opcode.Log,
	token.AND:      opcode.And,
	token.OR:       opcode.Or,
	token.XOR:      opcode.Xor,
	token.APPEND:   opcode.Append,
}

var testOps = map[string]opcode.BinaryOp{
	">": opcode.Gt,
	"<": opcode.Lt,
	"=": opcode.Eq,
	"!": opcode.Neq,
}

// generateStatement lowers one statement.
func (g *Generator) generateStatement(stmt *parser.Statement) []opcode.Instruction {
	if op, ok := updateOps[stmt.Kind]; ok {
		// x = x <op> v
		return one(update(stmt.Target, opcode.Bin(op, ref(stmt.Target), expr(stmt.Value))))
	}

	switch stmt.Kind {
	case token.LABEL:
		return one(opcode.NewLabel(stmt.Label))

	case token.SET:
		return one(assign(stmt.Target, expr(stmt.Value)))

	case token.NEGATE:
		return one(update(stmt.Target, opcode.Un(opcode.Not, ref(stmt.Target))))

	case token.ROUND:
		return one(update(stmt.Target, opcode.Un(opcode.Round, ref(stmt.Target))))

	case token.RANDOM:
		// MAX is exclusive: RANDOM x MAX 6 draws from 0..5.
		return one(assign(stmt.Target, opcode.RandBelow(expr(stmt.Value))))

	case token.TEST:
		op, ok := testOps[stmt.Op]
		if !ok {
			g.addError(stmt, fmt.Sprintf("unknown comparison %q", stmt.Op))
			return nil
		}
		return one(opcode.NewAssign(ResultVar, opcode.Bin(op, ref(stmt.Target), expr(stmt.Value))))

	case token.GOTO:
		var cond opcode.Expr
		if stmt.Value != nil {
			cond = expr(stmt.Value)
		}
		return one(opcode.NewJump(stmt.Label, cond))

	case token.LIST:
		return one(assign(stmt.Target, opcode.Un(opcode.MakeList, expr(stmt.Value))))

	case token.SIZE:
		return one(assign(stmt.Target, opcode.Un(opcode.Size, expr(stmt.Value))))

	case token.TYPE:
		return one(assign(stmt.Target, opcode.Un(opcode.TypeOf, expr(stmt.Value))))

	case token.WAIT:
		return one(opcode.NewIO(opcode.Wait, "", expr(stmt.Value)))

	case token.PRINT:
		return one(opcode.NewPrint(expr(stmt.Value)))

	case token.ERROR:
		return one(opcode.NewIO(opcode.Fail, "", expr(stmt.Value)))

	case token.EXIT:
		g.usesExit = true
		return one(opcode.NewGoto(ExitLabel))

	case token.OPEN:
		if !g.plain(stmt) {
			return nil
		}
		mode := opcode.ReadMode
		if stmt.Op == token.WRITE {
			mode = opcode.WriteMode
		}
		return one(opcode.NewOpen(stmt.Target.Name, expr(stmt.Value), mode))

	case token.CLOSE:
		return one(opcode.NewIO(opcode.Close, "", ref(stmt.Target)))

	case token.WRITE:
		return one(opcode.NewIO(opcode.Write, "", ref(stmt.Target), expr(stmt.Value)))

	case token.READ, token.INPUT:
		if !g.plain(stmt) {
			return nil
		}
		op := opcode.Read
		if stmt.Kind == token.INPUT {
			op = opcode.Input
		}
		// The text read is turned into a number when it looks like one.
		name := stmt.Target.Name
		return []opcode.Instruction{
			opcode.NewIO(op, name, expr(stmt.Value)),
			opcode.NewExpression(name, opcode.Un(opcode.Coerce, opcode.Ref(name))),
		}

	default:
		g.addError(stmt, fmt.Sprintf("unknown statement type: %s", stmt.Kind))
		return nil
	}
}

// plain requires the statement's target to be a whole variable, not an element.
func (g *Generator) plain(stmt *parser.Statement) bool {
	if stmt.Target.Index == nil {
		return true
	}
	g.addError(stmt, fmt.Sprintf("%s cannot store into list element %s", stmt.Kind, stmt.Target))
	return false
}

func (g *Generator) addError(stmt *parser.Statement, msg string) {
	g.errors = append(g.errors, &Error{Message: msg, Line: stmt.Line(), Column: stmt.Column()})
}

func one(in opcode.Instruction) []opcode.Instruction {
	return []opcode.Instruction{in}
}

// assign stores e into the target, or into one element of it.
func assign(target *parser.Operand, e opcode.Expr) opcode.Instruction {
	if target.Index != nil {
		return opcode.NewAssignIndex(target.Name, expr(target.Index), e)
	}
	return opcode.NewAssign(target.Name, e)
}

// update is a read-modify-write of the target, which must already exist.
func update(target *parser.Operand, e opcode.Expr) opcode.Instruction {
	if target.Index != nil {
		return opcode.NewAssignIndex(target.Name, expr(target.Index), e)
	}
	return opcode.NewExpression(target.Name, e)
}

// ref reads a variable operand.
func ref(o *parser.Operand) opcode.Expr {
	if o.Index != nil {
		return opcode.Elem(o.Name, expr(o.Index))
	}
	return opcode.Ref(o.Name)
}

// expr converts an operand into an expression.
func expr(o *parser.Operand) opcode.Expr {
	switch o.Kind {
	case parser.VariableOperand:
		return ref(o)
	case parser.ListOperand:
		elems := make([]opcode.Expr, len(o.Elems))
		for i, e := range o.Elems {
			elems[i] = expr(e)
		}
		return opcode.List(elems...)
	default:
		return opcode.Lit(o.Value)
	}
}
