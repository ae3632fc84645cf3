package value

import (
	"fmt"
	"math"
)

func mismatch(op string, operands ...Value) error {
	switch len(operands) {
	case 1:
		return fmt.Errorf("%w: %s is not defined for %s", ErrTypeMismatch, op, operands[0].kind)
	default:
		return fmt.Errorf("%w: %s is not defined for %s and %s", ErrTypeMismatch, op, operands[0].kind, operands[1].kind)
	}
}

// numeric applies intOp when both operands are Integer and floatOp otherwise.
// intOp reports false when the result does not fit in an int64.
func numeric(op string, a, b Value, intOp func(x, y int64) (int64, bool), floatOp func(x, y float64) float64) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, mismatch(op, a, b)
	}
	if a.kind == Integer && b.kind == Integer {
		r, ok := intOp(a.i, b.i)
		if !ok {
			return Value{}, overflow(op, a.i, b.i)
		}
		return Int(r), nil
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	return Float(floatOp(x, y)), nil
}

func overflow(op string, x, y int64) error {
	return fmt.Errorf("%w: %d %s %d overflows INTEGER", ErrArithmetic, x, op, y)
}

func addInt(x, y int64) (int64, bool) {
	r := x + y
	return r, (r > x) == (y > 0)
}

func subInt(x, y int64) (int64, bool) {
	r := x - y
	return r, (r < x) == (y > 0)
}

func mulInt(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	r := x * y
	if r/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}
	return r, true
}

// Add returns a + b. Integer overflow is an arithmetic error.
func Add(a, b Value) (Value, error) {
	return numeric("+", a, b, addInt,
		func(x, y float64) float64 { return x + y })
}

// Sub returns a - b. Integer overflow is an arithmetic error.
func Sub(a, b Value) (Value, error) {
	return numeric("-", a, b, subInt,
		func(x, y float64) float64 { return x - y })
}

// Mul returns a * b. Integer overflow is an arithmetic error.
func Mul(a, b Value) (Value, error) {
	return numeric("*", a, b, mulInt,
		func(x, y float64) float64 { return x * y })
}

// Div returns a / b as a Real. Division by zero is an arithmetic error,
// never an infinity or NaN.
func Div(a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, mismatch("/", a, b)
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	if y == 0 {
		return Value{}, fmt.Errorf("%w: division by zero", ErrArithmetic)
	}
	return Float(x / y), nil
}

// IntDiv returns the truncated quotient of two Integer values.
func IntDiv(a, b Value) (Value, error) {
	if a.kind != Integer || b.kind != Integer {
		return Value{}, mismatch("integer division", a, b)
	}
	if b.i == 0 {
		return Value{}, fmt.Errorf("%w: division by zero", ErrArithmetic)
	}
	if a.i == math.MinInt64 && b.i == -1 {
		return Value{}, overflow("//", a.i, b.i)
	}
	return Int(a.i / b.i), nil
}

// Mod returns the remainder of a / b with the sign of a.
func Mod(a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, mismatch("%", a, b)
	}
	if a.kind == Integer && b.kind == Integer {
		if b.i == 0 {
			return Value{}, fmt.Errorf("%w: modulo by zero", ErrArithmetic)
		}
		return Int(a.i % b.i), nil
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	if y == 0 {
		return Value{}, fmt.Errorf("%w: modulo by zero", ErrArithmetic)
	}
	return Float(math.Mod(x, y)), nil
}

// Pow returns a raised to b. Integer bases with non-negative Integer exponents
// stay Integer; everything else is computed as a Real.
func Pow(a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, mismatch("**", a, b)
	}
	if a.kind == Integer && b.kind == Integer && b.i >= 0 {
		result, ok := powInt(a.i, b.i)
		if !ok {
			return Value{}, overflow("**", a.i, b.i)
		}
		return Int(result), nil
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	r := math.Pow(x, y)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Value{}, fmt.Errorf("%w: %v ** %v is not a finite number", ErrArithmetic, x, y)
	}
	return Float(r), nil
}

// powInt is exponentiation by squaring with overflow detection.
func powInt(base, e int64) (int64, bool) {
	result := int64(1)
	for ; e > 0; e >>= 1 {
		var ok bool
		if e&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		if e > 1 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

// Log returns the logarithm of a in the given base.
func Log(a, base Value) (Value, error) {
	if !a.IsNumeric() || !base.IsNumeric() {
		return Value{}, mismatch("log", a, base)
	}
	x, _ := a.AsFloat()
	b, _ := base.AsFloat()
	if x <= 0 || b <= 0 || b == 1 {
		return Value{}, fmt.Errorf("%w: log of %v in base %v is undefined", ErrArithmetic, x, b)
	}
	return Float(math.Log(x) / math.Log(b)), nil
}

func bitwise(op string, a, b Value, f func(x, y int64) int64) (Value, error) {
	if a.kind != Integer || b.kind != Integer {
		return Value{}, mismatch(op, a, b)
	}
	return Int(f(a.i, b.i)), nil
}

// And returns the bitwise AND of two Integer values.
func And(a, b Value) (Value, error) {
	return bitwise("&", a, b, func(x, y int64) int64 { return x & y })
}

// Or returns the bitwise OR of two Integer values.
func Or(a, b Value) (Value, error) {
	return bitwise("|", a, b, func(x, y int64) int64 { return x | y })
}

// Xor returns the bitwise XOR of two Integer values.
func Xor(a, b Value) (Value, error) {
	return bitwise("^", a, b, func(x, y int64) int64 { return x ^ y })
}

// Not returns the bitwise complement of an Integer value.
func Not(a Value) (Value, error) {
	if a.kind != Integer {
		return Value{}, mismatch("~", a)
	}
	return Int(^a.i), nil
}

// Neg returns -a.
func Neg(a Value) (Value, error) {
	switch a.kind {
	case Integer:
		if a.i == math.MinInt64 {
			return Value{}, fmt.Errorf("%w: -(%d) overflows INTEGER", ErrArithmetic, a.i)
		}
		return Int(-a.i), nil
	case Real:
		return Float(-a.f), nil
	}
	return Value{}, mismatch("negation", a)
}

// Round rounds a Real half away from zero to an Integer. Integers are returned unchanged.
func Round(a Value) (Value, error) {
	switch a.kind {
	case Integer:
		return a, nil
	case Real:
		r := math.Round(a.f)
		if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %v does not fit in INTEGER", ErrArithmetic, a.f)
		}
		return Int(int64(r)), nil
	}
	return Value{}, mismatch("round", a)
}

// Size returns the length of a List or Text as an Integer.
func Size(a Value) (Value, error) {
	n, ok := a.Len()
	if !ok {
		return Value{}, mismatch("size", a)
	}
	return Int(int64(n)), nil
}

// MakeList returns a List of n Integer zeros, failing with ErrArithmetic when n is
// negative or larger than MaxListSize.
func MakeList(n int64) (Value, error) {
	if n < 0 {
		return Value{}, fmt.Errorf("%w: negative list size %d", ErrArithmetic, n)
	}
	if n > MaxListSize {
		return Value{}, fmt.Errorf("%w: list size %d exceeds the maximum of %d", ErrArithmetic, n, MaxListSize)
	}
	return Zeros(int(n)), nil
}

// Append returns a new List with b appended to a. Appending a List concatenates.
func Append(a, b Value) (Value, error) {
	if a.kind != List {
		return Value{}, mismatch("append", a, b)
	}
	out := a.Elems()
	switch {
	case b.IsNumeric():
		if len(out) >= MaxListSize {
			return Value{}, fmt.Errorf("%w: list size %d exceeds the maximum of %d", ErrArithmetic, len(out)+1, MaxListSize)
		}
		out = append(out, b)
	case b.kind == List:
		if len(out)+len(b.l) > MaxListSize {
			return Value{}, fmt.Errorf("%w: list size %d exceeds the maximum of %d", ErrArithmetic, len(out)+len(b.l), MaxListSize)
		}
		out = append(out, b.l...)
	default:
		return Value{}, mismatch("append", a, b)
	}
	return Value{kind: List, l: out}, nil
}

// Index returns element i of a List, or the i-th character of a Text.
func Index(a Value, i int64) (Value, error) {
	switch a.kind {
	case List:
		if i < 0 || i >= int64(len(a.l)) {
			return Value{}, fmt.Errorf("%w: index %d, length %d", ErrIndex, i, len(a.l))
		}
		return a.l[i], nil
	case Text:
		r := []rune(a.s)
		if i < 0 || i >= int64(len(r)) {
			return Value{}, fmt.Errorf("%w: index %d, length %d", ErrIndex, i, len(r))
		}
		return Str(string(r[i])), nil
	}
	return Value{}, mismatch("indexing", a)
}

// SetIndex returns a copy of List a with element i replaced by x.
func SetIndex(a Value, i int64, x Value) (Value, error) {
	if a.kind != List {
		return Value{}, mismatch("indexed assignment", a)
	}
	if !x.IsNumeric() {
		return Value{}, fmt.Errorf("%w: cannot store %s in a list", ErrTypeMismatch, x.kind)
	}
	if i < 0 || i >= int64(len(a.l)) {
		return Value{}, fmt.Errorf("%w: index %d, length %d", ErrIndex, i, len(a.l))
	}
	out := a.Elems()
	out[i] = x
	return Value{kind: List, l: out}, nil
}

// Compare orders two numeric values, returning -1, 0 or +1.
func Compare(a, b Value) (int, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return 0, mismatch("ordering", a, b)
	}
	if a.kind == Integer && b.kind == Integer {
		switch {
		case a.i < b.i:
			return -1, nil
		case a.i > b.i:
			return 1, nil
		}
		return 0, nil
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}

// Truthy reports whether a numeric value is non-zero.
func Truthy(a Value) (bool, error) {
	switch a.kind {
	case Integer:
		return a.i != 0, nil
	case Real:
		return a.f != 0, nil
	}
	return false, mismatch("condition", a)
}

// Coerce turns numeric-looking Text into a number. Any other value is returned as is.
func Coerce(a Value) Value {
	if a.kind != Text {
		return a
	}
	if n, ok := Parse(a.s); ok {
		return n
	}
	return a
}

// Number converts a value to a number, failing with ErrTypeMismatch when Text does
// not parse or the value is a List.
func Number(a Value) (Value, error) {
	switch a.kind {
	case Integer, Real:
		return a, nil
	case Text:
		if n, ok := Parse(a.s); ok {
			return n, nil
		}
		return Value{}, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, a.s)
	}
	return Value{}, mismatch("numeric conversion", a)
}
