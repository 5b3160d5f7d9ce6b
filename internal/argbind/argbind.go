// Package argbind implements spec §4.6: binding a call's positional and
// named arguments against a function's (or builtin's) ordered parameter
// list, including defaults and destructuring patterns. It is shared by
// internal/evaluator's user-function Apply path and by static/dynamic
// builtin dispatch, so both go through one binding algorithm (spec.md's
// "Function & argbind" line item in the size table treats these as one
// concern).
//
// argbind never imports internal/evaluator: default-value expressions are
// ast.Expr and must be evaluated against the function's context, but
// doing that here would create an import cycle (evaluator already needs
// argbind to bind the arguments for every Apply). Instead, the caller
// injects an EvalDefault callback — in practice internal/evaluator's own
// Eval function — so argbind only ever calls back into code the caller
// already owns.
package argbind

import (
	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// EvalDefault evaluates a parameter default expression against ctx,
// returning a thunk for its value. Supplied by internal/evaluator.
type EvalDefault func(expr ast.Expr, ctx *value.Context) (*value.Thunk, error)

// NamedArgs maps argument name to its (lazy, unforced) value thunk.
type NamedArgs map[string]*value.Thunk

// Bind implements spec §4.6 steps 1-5 against params, given the caller's
// positional and named argument thunks. pending is the Pending whose
// eventual Context is the function's captured context extended with the
// returned bindings; default-value thunks close over pending.Get() so
// that one default may reference a sibling parameter (including a later
// one) per spec §4.6 "defaults may reference other parameters ... because
// all defaults share the same Pending". The caller fills pending only
// after building that context from Bind's result.
//
// When tailstrict is true, every bound argument thunk (but not defaults,
// which are produced lazily regardless) is forced immediately as it is
// bound, surfacing argument-evaluation errors before the call proper
// begins, and the caller pushes no trace frame for the call (spec §4.6
// "tailstrict").
func Bind(pool *interner.Pool, params value.ParamList, positional []*value.Thunk, named NamedArgs, tailstrict bool, pending *value.Pending, evalDefault EvalDefault) (map[string]*value.Thunk, error) {
	if len(positional) > len(params) {
		return nil, errors.New(errors.TooManyArgsFunctionHas, "function has %d parameter(s), got %d positional argument(s)", len(params), len(positional))
	}

	out := make(map[string]*value.Thunk, len(params))
	passed := make([]bool, len(params))

	// Step 2: positionals bind the first n parameters, via destructuring.
	for i, arg := range positional {
		if err := Destructure(pool, params[i].Pattern, arg, out); err != nil {
			return nil, err
		}
		passed[i] = true
		if tailstrict {
			if _, err := arg.Force(); err != nil {
				return nil, err
			}
		}
	}

	// Step 3: named arguments.
	for name, arg := range named {
		idx := indexOf(params, name)
		if idx < 0 {
			return nil, errors.New(errors.UnknownFunctionParameter, "function has no parameter named %q", name)
		}
		if passed[idx] {
			return nil, errors.New(errors.BindingParameterASecondTime, "parameter %q bound more than once", name)
		}
		if err := Destructure(pool, params[idx].Pattern, arg, out); err != nil {
			return nil, err
		}
		passed[idx] = true
		if tailstrict {
			if _, err := arg.Force(); err != nil {
				return nil, err
			}
		}
	}

	// Steps 4-5: defaults for everything still unfilled, evaluated lazily
	// against the Pending context so siblings (including later params)
	// are visible once filled.
	for i, p := range params {
		if passed[i] {
			continue
		}
		if p.Default == nil {
			return nil, errors.New(errors.FunctionParameterNotBoundInCall, "parameter %q has no default and was not bound in this call", p.Name)
		}
		var t *value.Thunk
		if e, ok := p.Default.(ast.Expr); ok {
			t = value.NewThunk(func() (value.Value, error) {
				th, err := evalDefault(e, pending.Get())
				if err != nil {
					return nil, err
				}
				return th.Force()
			})
		} else {
			t = value.Done(p.Default.(value.Value))
		}
		if err := Destructure(pool, p.Pattern, t, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func indexOf(params value.ParamList, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// DefaultOnlyBindings builds the reflective binding spec §4.6 describes
// for introspection use: every parameter becomes a thunk that, for a
// required parameter, fails with FunctionParameterNotBoundInCall if
// forced, and for a defaulted parameter, evaluates that default exactly
// as Bind would with no arguments supplied.
func DefaultOnlyBindings(pool *interner.Pool, params value.ParamList, pending *value.Pending, evalDefault EvalDefault) (map[string]*value.Thunk, error) {
	out := make(map[string]*value.Thunk, len(params))
	for _, p := range params {
		name := p.Name
		if p.Default == nil {
			out[name] = value.NewThunk(func() (value.Value, error) {
				return nil, errors.New(errors.FunctionParameterNotBoundInCall, "parameter %q has no default and was not bound in this call", name)
			})
			continue
		}
		if e, ok := p.Default.(ast.Expr); ok {
			t := value.NewThunk(func() (value.Value, error) {
				th, err := evalDefault(e, pending.Get())
				if err != nil {
					return nil, err
				}
				return th.Force()
			})
			if err := Destructure(pool, p.Pattern, t, out); err != nil {
				return nil, err
			}
			continue
		}
		if err := Destructure(pool, p.Pattern, value.Done(p.Default.(value.Value)), out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Destructure is the recursive destructuring-to-thunk-map writer spec
// §4.3/Design Notes describes ("binding is a recursive function that
// writes into a name -> thunk map"). src is the thunk for the whole value
// bound at this pattern's position.
func Destructure(pool *interner.Pool, pat ast.DestructPattern, src *value.Thunk, out map[string]*value.Thunk) error {
	switch pat.Kind {
	case ast.DestructIdent:
		out[pat.Ident] = src
		return nil

	case ast.DestructArray:
		out[pat.SyntheticName] = src
		n := len(pat.Elements)
		for i, elemPat := range pat.Elements {
			i := i
			elemThunk := value.NewThunk(func() (value.Value, error) {
				v, err := src.Force()
				if err != nil {
					return nil, err
				}
				arr, ok := v.(value.Array)
				if !ok {
					return nil, errors.New(errors.TypeMismatch, "cannot destructure a %s as an array", v.Kind())
				}
				if i >= arr.Len() {
					return nil, errors.New(errors.ArrayBoundsError, "array destructuring pattern expects at least %d element(s), got %d", n, arr.Len()).
						WithDetail(errors.ArrayBoundsDetail{Index: i, Len: arr.Len()})
				}
				return arr.At(i).Force()
			})
			if err := Destructure(pool, elemPat, elemThunk, out); err != nil {
				return err
			}
		}
		if pat.HasRest {
			restThunk := value.NewThunk(func() (value.Value, error) {
				v, err := src.Force()
				if err != nil {
					return nil, err
				}
				arr, ok := v.(value.Array)
				if !ok {
					return nil, errors.New(errors.TypeMismatch, "cannot destructure a %s as an array", v.Kind())
				}
				rest := make([]*value.Thunk, 0, arr.Len()-n)
				for i := n; i < arr.Len(); i++ {
					rest = append(rest, arr.At(i))
				}
				return value.NewEagerArray(forceAll(rest)), restErr(rest)
			})
			out[pat.RestName] = restThunk
		}
		return nil

	case ast.DestructObject:
		out[pat.SyntheticName] = src
		for _, fieldPat := range pat.Fields {
			name := fieldPat.Name
			fieldThunk := value.NewThunk(func() (value.Value, error) {
				v, err := src.Force()
				if err != nil {
					return nil, err
				}
				obj, ok := v.(*value.Object)
				if !ok {
					return nil, errors.New(errors.TypeMismatch, "cannot destructure a %s as an object", v.Kind())
				}
				t, ok := obj.Field(pool, name, obj)
				if !ok {
					return nil, errors.New(errors.NoSuchField, "object has no field %q to destructure", name).
						WithDetail(errors.NoSuchFieldDetail{Field: name})
				}
				return t.Force()
			})
			if err := Destructure(pool, fieldPat.Pattern, fieldThunk, out); err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.New(errors.TypeMismatch, "unknown destructuring pattern kind")
	}
}

// forceAll and restErr keep the rest-array builder above readable: the
// rest array is eager (NewEagerArray takes Values, not Thunks), so forcing
// the rest binding forces every element it covers, once, at that point.
func forceAll(thunks []*value.Thunk) []value.Value {
	out := make([]value.Value, len(thunks))
	for i, t := range thunks {
		v, err := t.Force()
		if err != nil {
			// Swallowed here; restErr surfaces the first failure to the
			// caller, which checks it before using the returned slice.
			continue
		}
		out[i] = v
	}
	return out
}

func restErr(thunks []*value.Thunk) error {
	for _, t := range thunks {
		if _, err := t.Force(); err != nil {
			return err
		}
	}
	return nil
}
