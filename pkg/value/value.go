// Package value defines the dynamically typed values stored in a BNA environment.
//
// A Value is a small tagged union: Integer, Real, Text or List. Lists hold numbers
// only. Values are immutable; operations that change a list return a new one, so a
// value can be shared between environments without aliasing surprises.
package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which member of the union a Value holds.
type Kind int

const (
	Integer Kind = iota
	Real
	Text
	List
)

var kindNames = map[Kind]string{
	Integer: "INTEGER",
	Real:    "REAL",
	Text:    "TEXT",
	List:    "LIST",
}

// String returns the upper-case kind name reported by the TYPE statement.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinel errors returned by value operations. Callers classify failures with errors.Is.
var (
	ErrTypeMismatch = errors.New("type mismatch")
	ErrArithmetic   = errors.New("arithmetic error")
	ErrIndex        = errors.New("index out of range")
)

// Value is a single runtime value.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	l    []Value
}

// Int returns an Integer value.
func Int(i int64) Value { return Value{kind: Integer, i: i} }

// Float returns a Real value.
func Float(f float64) Value { return Value{kind: Real, f: f} }

// Str returns a Text value.
func Str(s string) Value { return Value{kind: Text, s: s} }

// Bool returns Integer 1 for true and 0 for false.
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// NewList builds a List from numeric elements.
// A non-numeric element is rejected with ErrTypeMismatch.
func NewList(elems ...Value) (Value, error) {
	l := make([]Value, len(elems))
	for i, e := range elems {
		if !e.IsNumeric() {
			return Value{}, fmt.Errorf("%w: list element %d is %s, lists hold numbers only", ErrTypeMismatch, i, e.kind)
		}
		l[i] = e
	}
	return Value{kind: List, l: l}, nil
}

// MaxListSize is the largest number of elements a List may hold.
const MaxListSize = 1 << 24

// Zeros returns a List of n Integer zeros. n must be within [0, MaxListSize];
// MakeList checks it.
func Zeros(n int) Value {
	l := make([]Value, n)
	for i := range l {
		l[i] = Int(0)
	}
	return Value{kind: List, l: l}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNumeric reports whether v is an Integer or a Real.
func (v Value) IsNumeric() bool { return v.kind == Integer || v.kind == Real }

// AsInt returns the integer payload. Only Integer values qualify.
func (v Value) AsInt() (int64, bool) {
	if v.kind != Integer {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns v as a float64, promoting Integer values.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case Integer:
		return float64(v.i), true
	case Real:
		return v.f, true
	default:
		return 0, false
	}
}

// AsText returns the text payload. Only Text values qualify.
func (v Value) AsText() (string, bool) {
	if v.kind != Text {
		return "", false
	}
	return v.s, true
}

// Elems returns a copy of the elements of a List, or nil for other kinds.
func (v Value) Elems() []Value {
	if v.kind != List {
		return nil
	}
	out := make([]Value, len(v.l))
	copy(out, v.l)
	return out
}

// Len returns the number of elements of a List or characters of a Text.
func (v Value) Len() (int, bool) {
	switch v.kind {
	case List:
		return len(v.l), true
	case Text:
		return len([]rune(v.s)), true
	default:
		return 0, false
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	if v.kind == List {
		v.l = v.Elems()
	}
	return v
}

// Equal reports whether v and o hold the same value.
// Integer and Real compare numerically; other kinds must match exactly.
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		if v.kind == Integer && o.kind == Integer {
			return v.i == o.i
		}
		a, _ := v.AsFloat()
		b, _ := o.AsFloat()
		return a == b
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Text:
		return v.s == o.s
	case List:
		if len(v.l) != len(o.l) {
			return false
		}
		for i := range v.l {
			if !v.l[i].Equal(o.l[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String formats v the way PRINT and WRITE emit it.
func (v Value) String() string {
	switch v.kind {
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Real:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case Text:
		return v.s
	case List:
		parts := make([]string, len(v.l))
		for i, e := range v.l {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return ""
}

// GoString makes values readable in test failures and debug logs.
func (v Value) GoString() string {
	if v.kind == Text {
		return strconv.Quote(v.s)
	}
	return v.String()
}

// Parse interprets text as a number: an Integer if it parses as one, else a Real.
// Surrounding whitespace is ignored.
func Parse(text string) (Value, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Value{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), true
	}
	return Value{}, false
}

// FromAny converts a decoded configuration value (YAML or JSON) into a Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Int(int64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return Str(t), nil
	case bool:
		return Bool(t), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return NewList(elems...)
	default:
		return Value{}, fmt.Errorf("%w: unsupported input type %T", ErrTypeMismatch, x)
	}
}
