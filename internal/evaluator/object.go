package evaluator

import (
	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/state"
	"github.com/madkinsz/jrsonnet/internal/value"
)

func mapVisibility(v ast.FieldVisibility) value.Visibility {
	switch v {
	case ast.VisibilityHidden:
		return value.VisibilityHidden
	case ast.VisibilityForceVisible:
		return value.VisibilityForceVisible
	default:
		return value.VisibilityNormal
	}
}

// fieldCtx extends the field's lexically-captured context with the
// effective this/super for this access, and (per Context.Extend) dollar
// falls back to this the first time a context enters object scope.
func fieldCtx(ctx *value.Context, super, this *value.Object) *value.Context {
	return ctx.Extend(nil, value.ExtendOpts{This: this, SetThis: true, Super: super, SetSuper: true})
}

// evalObject builds an Object from a literal (spec §4.4/§4.5 Object):
// fixed field names bind directly; computed (`[expr]:`) names are
// evaluated once, eagerly, against the literal's own lexical context (not
// self/super) — a name that evaluates to null omits the field entirely.
// Method sugar (`f(x): body`) and asserts are wired the same way the
// value model's Bindable contract expects.
func evalObject(n *ast.Object, ctx *value.Context, st *state.State) (value.Value, error) {
	builder := value.NewObjValueBuilder()

	for _, f := range n.Fields {
		f := f
		var name string
		if f.Name != nil {
			name = *f.Name
		} else {
			kv, err := Eval(f.NameExpr, ctx, st)
			if err != nil {
				return nil, err
			}
			if kv == value.NullValue {
				continue
			}
			ks, ok := kv.(value.String)
			if !ok {
				return nil, errors.New(errors.FieldMustBeStringGot, "computed field name must be a string, got %s", kv.Kind())
			}
			name = ks.Go()
		}

		member := builder.Member(name).WithAdd(f.Plus).WithVisibility(mapVisibility(f.Visibility)).WithLocation(f.Loc)

		producer := func(super, this *value.Object) (*value.Thunk, error) {
			c := fieldCtx(ctx, super, this)
			if f.Params != nil {
				params := f.Params
				body := f.Value
				return value.NewThunk(func() (value.Value, error) {
					return &value.UserFunction{Captured: c, AST: params, Body: body}, nil
				}), nil
			}
			return EvalThunk(f.Value, c, st), nil
		}

		var err error
		if f.Params != nil {
			err = member.Method(producer)
		} else {
			err = member.Bindable(producer)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, a := range n.Asserts {
		a := a
		builder.Assert(func(super, this *value.Object) (*value.Thunk, error) {
			c := fieldCtx(ctx, super, this)
			return value.NewThunk(func() (value.Value, error) {
				if err := runAssert(a.Cond, a.Msg, c, st); err != nil {
					return nil, err
				}
				return value.NullValue, nil
			}), nil
		})
	}

	return builder.Build(nil), nil
}

// driveComp recursively walks a CompSpec chain (ForSpec/IfSpec, in source
// order), invoking visit once per surviving tuple of bound loop variables
// with ctx extended accordingly (spec §4.5 "comprehensions share one
// driving walk" between ArrayComp and ObjectComp).
func driveComp(specs []ast.CompSpec, idx int, ctx *value.Context, st *state.State, visit func(*value.Context) error) error {
	if idx == len(specs) {
		return visit(ctx)
	}
	spec := specs[idx]

	if spec.IfSpec != nil {
		cv, err := Eval(spec.IfSpec.Cond, ctx, st)
		if err != nil {
			return err
		}
		cb, ok := cv.(value.Bool)
		if !ok {
			return errors.New(errors.TypeMismatch, "comprehension if clause must be a boolean, got %s", cv.Kind())
		}
		if !bool(cb) {
			return nil
		}
		return driveComp(specs, idx+1, ctx, st, visit)
	}

	fs := spec.ForSpec
	iv, err := Eval(fs.In, ctx, st)
	if err != nil {
		return err
	}
	arr, ok := iv.(value.Array)
	if !ok {
		return errors.New(errors.InComprehensionCanOnlyIterateOverArray, "for clause must iterate over an array, got %s", iv.Kind())
	}
	n := arr.Len()
	for i := 0; i < n; i++ {
		elemThunk := arr.At(i)
		iterCtx := ctx.Extend(map[string]*value.Thunk{fs.VarName: elemThunk}, value.ExtendOpts{})
		if err := driveComp(specs, idx+1, iterCtx, st, visit); err != nil {
			return err
		}
	}
	return nil
}

// evalArrayComp implements `[body for x in arr if cond ...]` (spec §4.5
// ArrayComp): each surviving iteration contributes one lazily-evaluated
// element, in iteration order.
func evalArrayComp(n *ast.ArrayComp, ctx *value.Context, st *state.State) (value.Value, error) {
	var elems []*value.Thunk
	err := driveComp(n.Specs, 0, ctx, st, func(iterCtx *value.Context) error {
		elems = append(elems, EvalThunk(n.Body, iterCtx, st))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value.NewLazyArray(elems), nil
}

// evalObjectComp implements `{ [k]: v for x in arr if cond ... }` (spec
// §4.5 ObjectComp): the key expression is forced eagerly per iteration (a
// non-string key is an error; jsonnet disallows null-skipping here, unlike
// a plain object literal's computed fields), and each generated field's
// value closes over a Pending that is filled with the finished object as
// `this` once every iteration has been gathered — matching the spec's
// literal description of the comprehension's self-reference timing.
func evalObjectComp(n *ast.ObjectComp, ctx *value.Context, st *state.State) (value.Value, error) {
	type entry struct {
		name    string
		pending *value.Pending
		value   ast.Expr
		iterCtx *value.Context
	}
	var entries []entry

	err := driveComp(n.Specs, 0, ctx, st, func(iterCtx *value.Context) error {
		kv, err := Eval(n.KeyExpr, iterCtx, st)
		if err != nil {
			return err
		}
		ks, ok := kv.(value.String)
		if !ok {
			return errors.New(errors.FieldMustBeStringGot, "object comprehension key must be a string, got %s", kv.Kind())
		}
		entries = append(entries, entry{name: ks.Go(), pending: value.NewPending(), value: n.ValueExpr, iterCtx: iterCtx})
		return nil
	})
	if err != nil {
		return nil, err
	}

	builder := value.NewObjValueBuilder()
	for _, e := range entries {
		e := e
		err := builder.Member(e.name).Bindable(func(super, this *value.Object) (*value.Thunk, error) {
			return value.NewThunk(func() (value.Value, error) {
				return Eval(e.value, e.pending.Get(), st)
			}), nil
		})
		if err != nil {
			return nil, err
		}
	}
	obj := builder.Build(nil)
	for _, e := range entries {
		e.pending.Fill(fieldCtx(e.iterCtx, nil, obj))
	}
	return obj, nil
}
