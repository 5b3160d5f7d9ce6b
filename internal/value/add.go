package value

import (
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
)

func errTypeMismatch(context string, expected []string, got string) *errors.Error {
	return errors.New(errors.TypeMismatch, "%s: expected one of %v, got %s", context, expected, got).
		WithDetail(errors.TypeMismatchDetail{Context: context, Expected: expected, Got: got})
}

// Add implements the `+` overload (spec §4.7): num+num, str+anything
// (string coercion via Stringify, either operand may be the string),
// arr+arr (O(1) concatenation), obj+obj (super-chain splice, see addObjects).
// It also backs object fields' `+:` merge (value/object.go's Field).
func Add(pool *interner.Pool, a, b Value) (Value, error) {
	if _, ok := a.(String); ok {
		return addStrings(pool, a, b)
	}
	if _, ok := b.(String); ok {
		return addStrings(pool, a, b)
	}

	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return nil, errTypeMismatch("+", []string{"number"}, b.Kind().String())
		}
		return NewNumber(float64(av) + float64(bv))
	case Array:
		bv, ok := b.(Array)
		if !ok {
			return nil, errTypeMismatch("+", []string{"array"}, b.Kind().String())
		}
		return Concat(av, bv), nil
	case *Object:
		bv, ok := b.(*Object)
		if !ok {
			return nil, errTypeMismatch("+", []string{"object"}, b.Kind().String())
		}
		return addObjects(av, bv), nil
	default:
		return nil, errTypeMismatch("+", []string{"number", "string", "array", "object"}, a.Kind().String())
	}
}

func addStrings(pool *interner.Pool, a, b Value) (Value, error) {
	as, err := Stringify(pool, a)
	if err != nil {
		return nil, err
	}
	bs, err := Stringify(pool, b)
	if err != nil {
		return nil, err
	}
	h, err := pool.InternString(as + bs)
	if err != nil {
		return nil, err
	}
	return NewString(h), nil
}

// addObjects implements "obj+obj" (spec §4.7): the result behaves as right
// (its own fields, asserts), with its super chain spliced to terminate at
// left instead of nil — so a `super` reference anywhere in right's chain
// still finds left (and left's own super, recursively) once right's
// original ancestors are exhausted. Each level is a freshly identified
// Object so assertion memoization is independent of the operands.
func addObjects(left, right *Object) *Object {
	return spliceSuper(right, left)
}

func spliceSuper(o, bottom *Object) *Object {
	if o == nil {
		return bottom
	}
	return &Object{
		fields:   o.fields,
		ownOrder: o.ownOrder,
		asserts:  o.asserts,
		super:    spliceSuper(o.super, bottom),
	}
}
