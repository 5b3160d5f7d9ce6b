package evaluator

import (
	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/state"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// evalIndex implements `target[index]` (spec §4.5 Index) over the four
// indexable kinds, plus the std.thisFile special case: forcing an object
// field whose bound value raises MagicThisFileUsed (because the field's
// definition is, or calls through to, the `thisFile` intrinsic) resolves
// to this Index node's own location's file rather than propagating as a
// user-visible error (see jrsonnet's evaluate::Index, confirmed directly
// against crates/jrsonnet-evaluator/src/evaluate/mod.rs in DESIGN.md).
func evalIndex(n *ast.Index, ctx *value.Context, st *state.State) (value.Value, error) {
	target, err := Eval(n.Target, ctx, st)
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case *value.Object:
		iv, err := Eval(n.Index, ctx, st)
		if err != nil {
			return nil, err
		}
		is, ok := iv.(value.String)
		if !ok {
			return nil, errors.New(errors.FieldMustBeStringGot, "object field name must be a string, got %s", iv.Kind())
		}
		name := is.Go()
		if err := t.RunAsserts(t); err != nil {
			return nil, err
		}
		thunk, ok := t.Field(st.Pool, name, t)
		if !ok {
			return nil, noSuchField(name, t)
		}
		v, err := thunk.Force()
		if err != nil {
			if e, ok := err.(*errors.Error); ok && e.Kind == errors.MagicThisFileUsed {
				h, ierr := st.Pool.InternString(n.Loc().File)
				if ierr != nil {
					return nil, ierr
				}
				return value.NewString(h), nil
			}
			return nil, err
		}
		return v, nil

	case value.Array:
		iv, err := Eval(n.Index, ctx, st)
		if err != nil {
			return nil, err
		}
		if is, ok := iv.(value.String); ok {
			return nil, errors.New(errors.AttemptedIndexAnArrayWithString, "attempted to index an array with string %q", is.Go())
		}
		in, ok := iv.(value.Number)
		if !ok {
			return nil, errors.New(errors.ValueIndexMustBeTypeGot, "array index must be a number, got %s", iv.Kind())
		}
		idx, err := intIndex(in)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= t.Len() {
			return nil, errors.New(errors.ArrayBoundsError, "array index %d out of range (length %d)", idx, t.Len()).
				WithDetail(errors.ArrayBoundsDetail{Index: idx, Len: t.Len()})
		}
		return t.At(idx).Force()

	case value.String:
		iv, err := Eval(n.Index, ctx, st)
		if err != nil {
			return nil, err
		}
		in, ok := iv.(value.Number)
		if !ok {
			return nil, errors.New(errors.ValueIndexMustBeTypeGot, "string index must be a number, got %s", iv.Kind())
		}
		idx, err := intIndex(in)
		if err != nil {
			return nil, err
		}
		runes := t.Runes()
		if idx < 0 || idx >= len(runes) {
			return nil, errors.New(errors.StringBoundsError, "string index %d out of range (length %d)", idx, len(runes)).
				WithDetail(errors.StringBoundsDetail{Index: idx, ScalarCount: len(runes)})
		}
		h, err := st.Pool.InternString(string(runes[idx]))
		if err != nil {
			return nil, err
		}
		return value.NewString(h), nil

	case value.Function:
		return nil, errors.New(errors.CantIndexInto, "cannot index into a function value")

	default:
		return nil, errors.New(errors.ValueIsNotIndexable, "value of type %s is not indexable", target.Kind())
	}
}

func noSuchField(name string, obj *value.Object) *errors.Error {
	suggestions := suggestFields(name, obj.FieldNames(false, false))
	return errors.New(errors.NoSuchField, "object has no field %q", name).
		WithDetail(errors.NoSuchFieldDetail{Field: name, Suggestions: suggestions})
}

func intIndex(n value.Number) (int, error) {
	f := float64(n)
	i := int(f)
	if float64(i) != f {
		return 0, errors.New(errors.FractionalIndex, "index must be a whole number, got %v", f)
	}
	return i, nil
}

// evalSlice implements `target[start:end:step]` (spec §4.5 Slice),
// delegating bounds normalization to the standard Python-style slice
// routine: negative indices count from the end, a negative step reverses
// direction, and any bound may be omitted.
func evalSlice(n *ast.Slice, ctx *value.Context, st *state.State) (value.Value, error) {
	target, err := Eval(n.Target, ctx, st)
	if err != nil {
		return nil, err
	}

	var length int
	switch target.(type) {
	case value.Array:
		length = target.(value.Array).Len()
	case value.String:
		length = len(target.(value.String).Runes())
	default:
		return nil, errors.New(errors.TypeMismatch, "slicing requires an array or string, got %s", target.Kind())
	}

	start, end, step, err := sliceBounds(n, ctx, st, length)
	if err != nil {
		return nil, err
	}
	indices := sliceIndices(start, end, step)

	switch t := target.(type) {
	case value.Array:
		elems := make([]*value.Thunk, len(indices))
		for i, idx := range indices {
			elems[i] = t.At(idx)
		}
		return value.NewLazyArray(elems), nil
	case value.String:
		runes := t.Runes()
		out := make([]rune, len(indices))
		for i, idx := range indices {
			out[i] = runes[idx]
		}
		h, err := st.Pool.InternString(string(out))
		if err != nil {
			return nil, err
		}
		return value.NewString(h), nil
	default:
		panic("unreachable")
	}
}

func sliceBounds(n *ast.Slice, ctx *value.Context, st *state.State, length int) (start, end, step int, err error) {
	step = 1
	if n.Step != nil {
		sv, err := Eval(n.Step, ctx, st)
		if err != nil {
			return 0, 0, 0, err
		}
		sn, ok := sv.(value.Number)
		if !ok {
			return 0, 0, 0, errors.New(errors.TypeMismatch, "slice step must be a number, got %s", sv.Kind())
		}
		step, err = intIndex(sn)
		if err != nil {
			return 0, 0, 0, err
		}
		if step == 0 {
			return 0, 0, 0, errors.New(errors.RuntimeError, "slice step must not be zero")
		}
	}

	if step > 0 {
		start, end = 0, length
	} else {
		start, end = length-1, -1
	}

	if n.Start != nil {
		v, err := Eval(n.Start, ctx, st)
		if err != nil {
			return 0, 0, 0, err
		}
		nv, ok := v.(value.Number)
		if !ok {
			return 0, 0, 0, errors.New(errors.TypeMismatch, "slice start must be a number, got %s", v.Kind())
		}
		start, err = intIndex(nv)
		if err != nil {
			return 0, 0, 0, err
		}
		start = normalizeSliceIndex(start, length, step)
	}
	if n.End != nil {
		v, err := Eval(n.End, ctx, st)
		if err != nil {
			return 0, 0, 0, err
		}
		nv, ok := v.(value.Number)
		if !ok {
			return 0, 0, 0, errors.New(errors.TypeMismatch, "slice end must be a number, got %s", v.Kind())
		}
		end, err = intIndex(nv)
		if err != nil {
			return 0, 0, 0, err
		}
		end = normalizeSliceIndex(end, length, step)
	}
	return start, end, step, nil
}

// normalizeSliceIndex clamps a possibly-negative, possibly-out-of-range
// slice bound into [0, length] for a positive step and [-1, length-1] for
// a negative one, matching Python's slice semantics.
func normalizeSliceIndex(i, length, step int) int {
	lo, hi := 0, length
	if step < 0 {
		lo, hi = -1, length-1
	}
	if i < 0 {
		i += length
	}
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

func sliceIndices(start, end, step int) []int {
	var out []int
	if step > 0 {
		for i := start; i < end; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > end; i += step {
			out = append(out, i)
		}
	}
	return out
}
