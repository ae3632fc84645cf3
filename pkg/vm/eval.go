package vm

import (
	"fmt"
	"math"

	"github.com/zurustar/bna/pkg/opcode"
	"github.com/zurustar/bna/pkg/value"
)

var binaryOps = map[opcode.BinaryOp]func(a, b value.Value) (value.Value, error){
	opcode.Add:    value.Add,
	opcode.Sub:    value.Sub,
	opcode.Mul:    value.Mul,
	opcode.Div:    value.Div,
	opcode.IntDiv: value.IntDiv,
	opcode.Pow:    value.Pow,
	opcode.Mod:    value.Mod,
	opcode.Log:    value.Log,
	opcode.And:    value.And,
	opcode.Or:     value.Or,
	opcode.Xor:    value.Xor,
	opcode.Append: value.Append,
}

// eval evaluates an expression tree against the current environment.
func (r *run) eval(e opcode.Expr) (value.Value, error) {
	switch x := e.(type) {
	case opcode.Literal:
		return x.Value, nil

	case opcode.Var:
		v, ok := r.env.Get(x.Name)
		if !ok {
			return value.Value{}, NewUndefinedVariableError(x.Name)
		}
		if x.Index == nil {
			return v, nil
		}
		i, err := r.evalIndex(x.Index)
		if err != nil {
			return value.Value{}, err
		}
		return value.Index(v, i)

	case opcode.ListLit:
		elems := make([]value.Value, len(x.Elems))
		for i, el := range x.Elems {
			v, err := r.eval(el)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = v
		}
		return value.NewList(elems...)

	case opcode.Unary:
		v, err := r.eval(x.X)
		if err != nil {
			return value.Value{}, err
		}
		return unary(x.Op, v)

	case opcode.Binary:
		a, err := r.eval(x.X)
		if err != nil {
			return value.Value{}, err
		}
		b, err := r.eval(x.Y)
		if err != nil {
			return value.Value{}, err
		}
		return binary(x.Op, a, b)

	case opcode.Random:
		lo, err := r.eval(x.Low)
		if err != nil {
			return value.Value{}, err
		}
		hi, err := r.eval(x.High)
		if err != nil {
			return value.Value{}, err
		}
		l, okL := lo.AsInt()
		h, okH := hi.AsInt()
		if !okL || !okH {
			return value.Value{}, fmt.Errorf("%w: random bounds must be INTEGER, got %s and %s", value.ErrTypeMismatch, lo.Kind(), hi.Kind())
		}
		if h < l {
			return value.Value{}, fmt.Errorf("%w: empty random range [%d, %d]", value.ErrArithmetic, l, h)
		}
		return value.Int(r.vm.random.NextInt(l, h)), nil

	case opcode.RandomBelow:
		m, err := r.eval(x.Max)
		if err != nil {
			return value.Value{}, err
		}
		return r.randomBelow(m)

	case nil:
		return value.Value{}, NewRuntimeError(ErrorInvalidOperation, "missing expression")
	}
	return value.Value{}, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unknown expression %T", e))
}

// randomBelow draws from [0, limit): an Integer for an Integer limit, a Real for a Real one.
func (r *run) randomBelow(limit value.Value) (value.Value, error) {
	if n, ok := limit.AsInt(); ok {
		if n <= 0 {
			return value.Value{}, fmt.Errorf("%w: random maximum must be positive, got %d", value.ErrArithmetic, n)
		}
		return value.Int(r.vm.random.NextInt(0, n-1)), nil
	}
	if limit.Kind() != value.Real {
		return value.Value{}, fmt.Errorf("%w: random maximum must be a number, got %s", value.ErrTypeMismatch, limit.Kind())
	}
	f, _ := limit.AsFloat()
	if !(f > 0) || math.IsInf(f, 1) {
		return value.Value{}, fmt.Errorf("%w: random maximum must be a finite positive number, got %v", value.ErrArithmetic, f)
	}
	return value.Float(r.vm.random.NextFloat() * f), nil
}

func (r *run) evalIndex(e opcode.Expr) (int64, error) {
	v, err := r.eval(e)
	if err != nil {
		return 0, err
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, fmt.Errorf("%w: index must be INTEGER, got %s", value.ErrTypeMismatch, v.Kind())
	}
	return i, nil
}

func unary(op opcode.UnaryOp, v value.Value) (value.Value, error) {
	switch op {
	case opcode.Not:
		return value.Not(v)
	case opcode.Neg:
		return value.Neg(v)
	case opcode.Round:
		return value.Round(v)
	case opcode.Size:
		return value.Size(v)
	case opcode.TypeOf:
		return value.Str(v.Kind().String()), nil
	case opcode.Coerce:
		return value.Coerce(v), nil
	case opcode.Number:
		return value.Number(v)
	case opcode.MakeList:
		n, ok := v.AsInt()
		if !ok {
			return value.Value{}, fmt.Errorf("%w: list size must be INTEGER, got %s", value.ErrTypeMismatch, v.Kind())
		}
		return value.MakeList(n)
	}
	return value.Value{}, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unknown unary operator %q", op))
}

func binary(op opcode.BinaryOp, a, b value.Value) (value.Value, error) {
	if fn, ok := binaryOps[op]; ok {
		return fn(a, b)
	}
	switch op {
	case opcode.Eq:
		return value.Bool(a.Equal(b)), nil
	case opcode.Neq:
		return value.Bool(!a.Equal(b)), nil
	case opcode.Gt, opcode.Lt, opcode.Ge, opcode.Le:
		c, err := value.Compare(a, b)
		if err != nil {
			return value.Value{}, err
		}
		switch op {
		case opcode.Gt:
			return value.Bool(c > 0), nil
		case opcode.Lt:
			return value.Bool(c < 0), nil
		case opcode.Ge:
			return value.Bool(c >= 0), nil
		default:
			return value.Bool(c <= 0), nil
		}
	}
	return value.Value{}, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("unknown binary operator %q", op))
}
