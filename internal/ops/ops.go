// Package ops implements the binary/unary operators and equality
// semantics of spec §4.7, apart from `+` itself (which lives in
// internal/value because the object model's `+:` field merge needs it
// internally — see DESIGN.md). This package is the one that knows about
// comparisons, bitwise/logical operators, and the primitiveEquals/equals
// distinction.
package ops

import (
	"math"

	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/value"
)

func typeMismatch(op string, expected []string, got string) *errors.Error {
	return errors.New(errors.TypeMismatch, "operator %s: expected one of %v, got %s", op, expected, got).
		WithDetail(errors.TypeMismatchDetail{Context: op, Expected: expected, Got: got})
}

// Add delegates to value.Add; exported here so evaluator code only needs
// to import one operators facade for every binary operator.
func Add(pool *interner.Pool, a, b value.Value) (value.Value, error) {
	return value.Add(pool, a, b)
}

// Sub, Mul, Div, Mod are numeric-only.
func Sub(a, b value.Value) (value.Value, error) { return numOp("-", a, b, func(x, y float64) float64 { return x - y }) }
func Mul(a, b value.Value) (value.Value, error) { return numOp("*", a, b, func(x, y float64) float64 { return x * y }) }

// Div lets a non-finite result (x/0, 0/0) fall through to numOp's
// value.NewNumber call, which rejects it as Overflow (spec §8 invariant 4:
// any evaluation that would produce a non-finite number fails at the point
// of production) rather than special-casing the zero divisor here.
func Div(a, b value.Value) (value.Value, error) {
	return numOp("/", a, b, func(x, y float64) float64 { return x / y })
}

func Mod(a, b value.Value) (value.Value, error) {
	return numOp("%", a, b, math.Mod)
}

func numOp(op string, a, b value.Value, f func(x, y float64) float64) (value.Value, error) {
	an, ok := a.(value.Number)
	if !ok {
		return nil, typeMismatch(op, []string{"number"}, a.Kind().String())
	}
	bn, ok := b.(value.Number)
	if !ok {
		return nil, typeMismatch(op, []string{"number"}, b.Kind().String())
	}
	return value.NewNumber(f(float64(an), float64(bn)))
}

// Compare orders two primitive values (numbers lexically via IEEE-754,
// strings via Unicode scalar lexical order — spec §4.7). Returns -1, 0, 1.
func Compare(a, b value.Value) (int, error) {
	switch av := a.(type) {
	case value.Number:
		bv, ok := b.(value.Number)
		if !ok {
			return 0, typeMismatch("comparison", []string{"number"}, b.Kind().String())
		}
		switch {
		case float64(av) < float64(bv):
			return -1, nil
		case float64(av) > float64(bv):
			return 1, nil
		default:
			return 0, nil
		}
	case value.String:
		bv, ok := b.(value.String)
		if !ok {
			return 0, typeMismatch("comparison", []string{"string"}, b.Kind().String())
		}
		ar, br := av.Go(), bv.Go()
		switch {
		case ar < br:
			return -1, nil
		case ar > br:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, typeMismatch("comparison", []string{"number", "string"}, a.Kind().String())
	}
}

// Lt, Le, Gt, Ge are the comparison operators built on Compare.
func Lt(a, b value.Value) (bool, error) { c, err := Compare(a, b); return c < 0, err }
func Le(a, b value.Value) (bool, error) { c, err := Compare(a, b); return c <= 0, err }
func Gt(a, b value.Value) (bool, error) { c, err := Compare(a, b); return c > 0, err }
func Ge(a, b value.Value) (bool, error) { c, err := Compare(a, b); return c >= 0, err }

// PrimitiveEquals requires both operands to be primitive (not array,
// object, or function); numbers compare within EqualULP (spec §4.7, §9
// open question preserved for compatibility).
func PrimitiveEquals(pool *interner.Pool, a, b value.Value) (bool, error) {
	if isComposite(a) || isComposite(b) {
		return false, errors.New(errors.TypeMismatch, "primitiveEquals requires primitive operands, got %s and %s", a.Kind(), b.Kind())
	}
	return rawEquals(a, b)
}

func isComposite(v value.Value) bool {
	switch v.(type) {
	case value.Array, *value.Object, value.Function:
		return true
	default:
		return false
	}
}

func rawEquals(a, b value.Value) (bool, error) {
	if a.Kind() != b.Kind() {
		return false, nil
	}
	switch av := a.(type) {
	case value.Null:
		return true, nil
	case value.Bool:
		return av == b.(value.Bool), nil
	case value.Number:
		return value.NumbersEqual(av, b.(value.Number)), nil
	case value.String:
		return av.Go() == b.(value.String).Go(), nil
	default:
		return false, nil
	}
}

// Equals is structural equality over arrays and objects, reflexive and
// symmetric on primitives and non-function composites; pointer-equal
// short-circuits both, and comparing functions is an error (spec §4.7, §8
// invariant 8).
func Equals(pool *interner.Pool, a, b value.Value) (bool, error) {
	if _, ok := a.(value.Function); ok {
		return false, errors.New(errors.TypeMismatch, "cannot compare function values for equality")
	}
	if _, ok := b.(value.Function); ok {
		return false, errors.New(errors.TypeMismatch, "cannot compare function values for equality")
	}
	if a.Kind() != b.Kind() {
		return false, nil
	}
	switch av := a.(type) {
	case value.Array:
		bv := b.(value.Array)
		if av == bv {
			return true, nil
		}
		if av.Len() != bv.Len() {
			return false, nil
		}
		for i := 0; i < av.Len(); i++ {
			ai, err := av.At(i).Force()
			if err != nil {
				return false, err
			}
			bi, err := bv.At(i).Force()
			if err != nil {
				return false, err
			}
			eq, err := Equals(pool, ai, bi)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case *value.Object:
		bv := b.(*value.Object)
		if av == bv {
			return true, nil
		}
		namesA := av.FieldNames(false, false)
		namesB := bv.FieldNames(false, false)
		if len(namesA) != len(namesB) {
			return false, nil
		}
		for i, n := range namesA {
			if namesB[i] != n {
				return false, nil
			}
		}
		for _, n := range namesA {
			ta, _ := av.Field(pool, n, av)
			tb, _ := bv.Field(pool, n, bv)
			fa, err := ta.Force()
			if err != nil {
				return false, err
			}
			fb, err := tb.Force()
			if err != nil {
				return false, err
			}
			eq, err := Equals(pool, fa, fb)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	default:
		return rawEquals(a, b)
	}
}

// Not, Neg, BitNot implement the unary operators.
func Not(a value.Value) (value.Value, error) {
	b, ok := a.(value.Bool)
	if !ok {
		return nil, typeMismatch("!", []string{"boolean"}, a.Kind().String())
	}
	return !b, nil
}

func Neg(a value.Value) (value.Value, error) {
	n, ok := a.(value.Number)
	if !ok {
		return nil, typeMismatch("unary -", []string{"number"}, a.Kind().String())
	}
	return value.NewNumber(-float64(n))
}

func BitNot(a value.Value) (value.Value, error) {
	n, ok := a.(value.Number)
	if !ok {
		return nil, typeMismatch("unary ~", []string{"number"}, a.Kind().String())
	}
	return value.NewNumber(float64(^int64(n)))
}

// BitAnd, BitOr, BitXor, Shl, Shr are the bitwise operators, defined over
// numbers truncated to int64 (spec does not mandate a specific bit width;
// int64 matches the host word size used elsewhere in number handling).
func BitAnd(a, b value.Value) (value.Value, error) { return bitOp("&", a, b, func(x, y int64) int64 { return x & y }) }
func BitOr(a, b value.Value) (value.Value, error)  { return bitOp("|", a, b, func(x, y int64) int64 { return x | y }) }
func BitXor(a, b value.Value) (value.Value, error) { return bitOp("^", a, b, func(x, y int64) int64 { return x ^ y }) }
func Shl(a, b value.Value) (value.Value, error)    { return bitOp("<<", a, b, func(x, y int64) int64 { return x << uint(y) }) }
func Shr(a, b value.Value) (value.Value, error)    { return bitOp(">>", a, b, func(x, y int64) int64 { return x >> uint(y) }) }

func bitOp(op string, a, b value.Value, f func(x, y int64) int64) (value.Value, error) {
	an, ok := a.(value.Number)
	if !ok {
		return nil, typeMismatch(op, []string{"number"}, a.Kind().String())
	}
	bn, ok := b.(value.Number)
	if !ok {
		return nil, typeMismatch(op, []string{"number"}, b.Kind().String())
	}
	return value.NewNumber(float64(f(int64(an), int64(bn))))
}
