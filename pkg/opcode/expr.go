package opcode

import (
	"strconv"
	"strings"

	"github.com/zurustar/bna/pkg/value"
)

// Expr is a node of an expression tree evaluated by the VM.
// The set of node types is closed; see Literal, Var, ListLit, Unary, Binary, Random
// and RandomBelow.
type Expr interface {
	String() string
	expr()
}

// UnaryOp is the operator of a Unary node.
type UnaryOp string

const (
	Not      UnaryOp = "~"
	Neg      UnaryOp = "-"
	Round    UnaryOp = "round"
	Size     UnaryOp = "size"
	TypeOf   UnaryOp = "type"
	Coerce   UnaryOp = "coerce"
	Number   UnaryOp = "number"
	MakeList UnaryOp = "list"
)

// BinaryOp is the operator of a Binary node.
type BinaryOp string

const (
	Add    BinaryOp = "+"
	Sub    BinaryOp = "-"
	Mul    BinaryOp = "*"
	Div    BinaryOp = "/"
	IntDiv BinaryOp = "//"
	Pow    BinaryOp = "**"
	Mod    BinaryOp = "%"
	Log    BinaryOp = "log"
	And    BinaryOp = "&"
	Or     BinaryOp = "|"
	Xor    BinaryOp = "^"
	Append BinaryOp = "append"
	Eq     BinaryOp = "=="
	Neq    BinaryOp = "!="
	Gt     BinaryOp = ">"
	Lt     BinaryOp = "<"
	Ge     BinaryOp = ">="
	Le     BinaryOp = "<="
)

// Literal is a constant value.
type Literal struct {
	Value value.Value
}

// Var reads a variable, or one element of it when Index is set.
type Var struct {
	Name  string
	Index Expr
}

// ListLit builds a list from its element expressions.
type ListLit struct {
	Elems []Expr
}

// Unary applies Op to X.
type Unary struct {
	Op UnaryOp
	X  Expr
}

// Binary applies Op to X and Y.
type Binary struct {
	Op   BinaryOp
	X, Y Expr
}

// Random draws an integer in [Low, High] from the run's random source.
type Random struct {
	Low, High Expr
}

// RandomBelow draws a number in [0, Max). An Integer Max yields an Integer,
// a Real Max yields a Real.
type RandomBelow struct {
	Max Expr
}

func (Literal) expr()     {}
func (Var) expr()         {}
func (ListLit) expr()     {}
func (Unary) expr()       {}
func (Binary) expr()      {}
func (Random) expr()      {}
func (RandomBelow) expr() {}

func (l Literal) String() string {
	if l.Value.Kind() == value.Text {
		s, _ := l.Value.AsText()
		return strconv.Quote(s)
	}
	return l.Value.String()
}

func (v Var) String() string {
	if v.Index != nil {
		return v.Name + "@" + v.Index.String()
	}
	return v.Name
}

func (l ListLit) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (u Unary) String() string {
	switch u.Op {
	case Not, Neg:
		return string(u.Op) + u.X.String()
	}
	return string(u.Op) + "(" + u.X.String() + ")"
}

func (b Binary) String() string {
	if b.Op == Log {
		return "log(" + b.X.String() + ", " + b.Y.String() + ")"
	}
	return "(" + b.X.String() + " " + string(b.Op) + " " + b.Y.String() + ")"
}

func (r Random) String() string {
	return "random(" + r.Low.String() + ", " + r.High.String() + ")"
}

func (r RandomBelow) String() string {
	return "random(" + r.Max.String() + ")"
}

// Lit wraps a value as a literal.
func Lit(v value.Value) Literal { return Literal{Value: v} }

// Int is shorthand for an Integer literal.
func Int(i int64) Literal { return Literal{Value: value.Int(i)} }

// Str is shorthand for a Text literal.
func Str(s string) Literal { return Literal{Value: value.Str(s)} }

// Ref reads the variable name.
func Ref(name string) Var { return Var{Name: name} }

// Elem reads element index of the variable name.
func Elem(name string, index Expr) Var { return Var{Name: name, Index: index} }

// List builds a list literal.
func List(elems ...Expr) ListLit { return ListLit{Elems: elems} }

// Un builds a unary node.
func Un(op UnaryOp, x Expr) Unary { return Unary{Op: op, X: x} }

// Bin builds a binary node.
func Bin(op BinaryOp, x, y Expr) Binary { return Binary{Op: op, X: x, Y: y} }

// Rand builds a random draw in [low, high].
func Rand(low, high Expr) Random { return Random{Low: low, High: high} }

// RandBelow builds a random draw in [0, limit).
func RandBelow(limit Expr) RandomBelow { return RandomBelow{Max: limit} }
