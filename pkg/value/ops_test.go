package value

import (
	"errors"
	"math"
	"testing"
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b Value) (Value, error)
		a, b Value
		want Value
	}{
		{"add ints", Add, Int(2), Int(3), Int(5)},
		{"add promotes", Add, Int(2), Float(0.5), Float(2.5)},
		{"sub", Sub, Int(2), Int(5), Int(-3)},
		{"mul", Mul, Int(4), Int(6), Int(24)},
		{"div is real", Div, Int(7), Int(2), Float(3.5)},
		{"intdiv truncates", IntDiv, Int(7), Int(2), Int(3)},
		{"mod", Mod, Int(7), Int(5), Int(2)},
		{"mod negative", Mod, Int(-7), Int(5), Int(-2)},
		{"mod real", Mod, Float(7.5), Int(2), Float(1.5)},
		{"pow ints", Pow, Int(2), Int(10), Int(1024)},
		{"pow zero exponent", Pow, Int(5), Int(0), Int(1)},
		{"pow negative exponent", Pow, Int(2), Int(-1), Float(0.5)},
		{"pow largest", Pow, Int(2), Int(62), Int(1 << 62)},
		{"pow negative base", Pow, Int(-2), Int(63), Int(math.MinInt64)},
		{"add to min", Add, Int(math.MinInt64 + 1), Int(-1), Int(math.MinInt64)},
		{"mul min by one", Mul, Int(math.MinInt64), Int(1), Int(math.MinInt64)},
		{"log", Log, Int(8), Int(2), Float(3)},
		{"and", And, Int(6), Int(7), Int(6)},
		{"or", Or, Int(6), Int(7), Int(7)},
		{"xor", Xor, Int(6), Int(7), Int(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind() != tt.want.Kind() || !got.Equal(tt.want) {
				t.Errorf("got %#v (%s), want %#v (%s)", got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	tests := []struct {
		name    string
		op      func(a, b Value) (Value, error)
		a, b    Value
		wantErr error
	}{
		{"div by zero", Div, Int(1), Int(0), ErrArithmetic},
		{"div by real zero", Div, Float(1), Float(0), ErrArithmetic},
		{"intdiv by zero", IntDiv, Int(1), Int(0), ErrArithmetic},
		{"mod by zero", Mod, Int(1), Int(0), ErrArithmetic},
		{"mod by real zero", Mod, Float(1), Float(0), ErrArithmetic},
		{"log of zero", Log, Int(0), Int(10), ErrArithmetic},
		{"log base one", Log, Int(5), Int(1), ErrArithmetic},
		{"add text", Add, Str("a"), Int(1), ErrTypeMismatch},
		{"and real", And, Float(1.5), Int(1), ErrTypeMismatch},
		{"xor text", Xor, Int(1), Str("1"), ErrTypeMismatch},
		{"intdiv real", IntDiv, Float(4), Int(2), ErrTypeMismatch},
		{"add overflow", Add, Int(math.MaxInt64), Int(1), ErrArithmetic},
		{"sub overflow", Sub, Int(math.MinInt64), Int(1), ErrArithmetic},
		{"mul overflow", Mul, Int(1 << 32), Int(1 << 32), ErrArithmetic},
		{"mul min by minus one", Mul, Int(math.MinInt64), Int(-1), ErrArithmetic},
		{"pow overflow", Pow, Int(2), Int(63), ErrArithmetic},
		{"pow large exponent", Pow, Int(3), Int(1000), ErrArithmetic},
		{"intdiv overflow", IntDiv, Int(math.MinInt64), Int(-1), ErrArithmetic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.op(tt.a, tt.b)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnary(t *testing.T) {
	if got, _ := Not(Int(6)); !got.Equal(Int(-7)) {
		t.Errorf("Not(6) = %v, want -7", got)
	}
	if _, err := Not(Str("6")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Not(text) error = %v", err)
	}
	if got, _ := Neg(Float(1.5)); !got.Equal(Float(-1.5)) {
		t.Errorf("Neg(1.5) = %v", got)
	}
	if got, _ := Round(Float(2.5)); got.Kind() != Integer || !got.Equal(Int(3)) {
		t.Errorf("Round(2.5) = %#v", got)
	}
	if got, _ := Round(Float(-2.5)); !got.Equal(Int(-3)) {
		t.Errorf("Round(-2.5) = %#v", got)
	}
	if got, _ := Size(Str("héllo")); !got.Equal(Int(5)) {
		t.Errorf("Size(text) = %v", got)
	}
	if _, err := Size(Int(1)); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Size(int) error = %v", err)
	}
	if _, err := Neg(Int(math.MinInt64)); !errors.Is(err, ErrArithmetic) {
		t.Errorf("Neg(min) error = %v", err)
	}
	if _, err := Round(Float(1e19)); !errors.Is(err, ErrArithmetic) {
		t.Errorf("Round(1e19) error = %v", err)
	}
}

func TestMakeList(t *testing.T) {
	tests := []struct {
		name    string
		n       int64
		want    string
		wantErr error
	}{
		{"empty", 0, "()", nil},
		{"three", 3, "(0, 0, 0)", nil},
		{"negative", -1, "", ErrArithmetic},
		{"over maximum", MaxListSize + 1, "", ErrArithmetic},
		{"huge", math.MaxInt64, "", ErrArithmetic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MakeList(tt.n)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("MakeList(%d) = %s, want %s", tt.n, got, tt.want)
			}
		})
	}

	full, err := MakeList(MaxListSize)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Append(full, Int(1)); !errors.Is(err, ErrArithmetic) {
		t.Errorf("Append past the maximum error = %v", err)
	}
}

func TestAppendAndIndex(t *testing.T) {
	l := Zeros(2)
	l2, err := Append(l, Int(7))
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := l.Len(); n != 2 {
		t.Errorf("Append modified its input: %v", l)
	}
	if l2.String() != "(0, 0, 7)" {
		t.Errorf("Append = %v", l2)
	}
	l3, err := Append(l2, mustList(t, Int(8), Int(9)))
	if err != nil {
		t.Fatal(err)
	}
	if l3.String() != "(0, 0, 7, 8, 9)" {
		t.Errorf("Append list = %v", l3)
	}
	if _, err := Append(l, Str("x")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Append text error = %v", err)
	}
	if _, err := Index(l3, 5); !errors.Is(err, ErrIndex) {
		t.Errorf("Index out of range error = %v", err)
	}
	if got, _ := Index(Str("abc"), 1); !got.Equal(Str("b")) {
		t.Errorf("Index(text) = %v", got)
	}
}

func TestCompareAndTruthy(t *testing.T) {
	if c, _ := Compare(Int(1), Float(1.5)); c != -1 {
		t.Errorf("Compare(1, 1.5) = %d", c)
	}
	if c, _ := Compare(Int(2), Int(2)); c != 0 {
		t.Errorf("Compare(2, 2) = %d", c)
	}
	if _, err := Compare(Str("a"), Int(1)); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Compare(text) error = %v", err)
	}
	if ok, _ := Truthy(Float(0.1)); !ok {
		t.Error("Truthy(0.1) = false")
	}
	if ok, _ := Truthy(Int(0)); ok {
		t.Error("Truthy(0) = true")
	}
	if _, err := Truthy(Str("1")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Truthy(text) error = %v", err)
	}
}

func TestCoerceAndNumber(t *testing.T) {
	if got := Coerce(Str(" 12 ")); got.Kind() != Integer || !got.Equal(Int(12)) {
		t.Errorf("Coerce(\" 12 \") = %#v", got)
	}
	if got := Coerce(Str("abc")); got.Kind() != Text {
		t.Errorf("Coerce(\"abc\") = %#v", got)
	}
	if _, err := Number(Str("abc")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Number(\"abc\") error = %v", err)
	}
	if got, _ := Number(Str("2.5")); !got.Equal(Float(2.5)) {
		t.Errorf("Number(\"2.5\") = %#v", got)
	}
}
