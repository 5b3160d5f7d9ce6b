package argbind

import (
	"testing"

	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/value"
)

func identParam(name string, def ast.Expr) value.ParamSpec {
	spec := value.ParamSpec{Name: name, Pattern: ast.DestructPattern{Kind: ast.DestructIdent, Ident: name}}
	if def != nil {
		spec.Default = def
	}
	return spec
}

func numThunk(n float64) *value.Thunk {
	v, _ := value.NewNumber(n)
	return value.Done(v)
}

func noEval(_ ast.Expr, _ *value.Context) (*value.Thunk, error) {
	panic("evalDefault should not be called in this test")
}

func TestBind_PositionalOnly(t *testing.T) {
	pool := interner.NewPool()
	params := value.ParamList{identParam("x", nil), identParam("y", nil)}
	pending := value.NewPending()
	bound, err := Bind(pool, params, []*value.Thunk{numThunk(1), numThunk(2)}, nil, false, pending, noEval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bound) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bound))
	}
	xv, _ := bound["x"].Force()
	if xv.(value.Number) != 1 {
		t.Errorf("expected x=1, got %v", xv)
	}
}

func TestBind_TooManyPositional(t *testing.T) {
	pool := interner.NewPool()
	params := value.ParamList{identParam("x", nil)}
	pending := value.NewPending()
	_, err := Bind(pool, params, []*value.Thunk{numThunk(1), numThunk(2)}, nil, false, pending, noEval)
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.TooManyArgsFunctionHas {
		t.Fatalf("expected TooManyArgsFunctionHas, got %v", err)
	}
}

func TestBind_NamedArgument(t *testing.T) {
	pool := interner.NewPool()
	params := value.ParamList{identParam("x", nil), identParam("y", nil)}
	pending := value.NewPending()
	bound, err := Bind(pool, params, []*value.Thunk{numThunk(1)}, NamedArgs{"y": numThunk(2)}, false, pending, noEval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	yv, _ := bound["y"].Force()
	if yv.(value.Number) != 2 {
		t.Errorf("expected y=2, got %v", yv)
	}
}

func TestBind_UnknownNamedArgument(t *testing.T) {
	pool := interner.NewPool()
	params := value.ParamList{identParam("x", nil)}
	pending := value.NewPending()
	_, err := Bind(pool, params, nil, NamedArgs{"z": numThunk(1)}, false, pending, noEval)
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.UnknownFunctionParameter {
		t.Fatalf("expected UnknownFunctionParameter, got %v", err)
	}
}

func TestBind_DuplicateBinding(t *testing.T) {
	pool := interner.NewPool()
	params := value.ParamList{identParam("x", nil)}
	pending := value.NewPending()
	_, err := Bind(pool, params, []*value.Thunk{numThunk(1)}, NamedArgs{"x": numThunk(2)}, false, pending, noEval)
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.BindingParameterASecondTime {
		t.Fatalf("expected BindingParameterASecondTime, got %v", err)
	}
}

func TestBind_MissingRequiredParameter(t *testing.T) {
	pool := interner.NewPool()
	params := value.ParamList{identParam("x", nil)}
	pending := value.NewPending()
	_, err := Bind(pool, params, nil, nil, false, pending, noEval)
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.FunctionParameterNotBoundInCall {
		t.Fatalf("expected FunctionParameterNotBoundInCall, got %v", err)
	}
}

func TestBind_DefaultReferencesSibling(t *testing.T) {
	pool := interner.NewPool()
	// y defaults to an expression; evalDefault below looks up "x" in the
	// Pending context, proving siblings are visible to defaults.
	yDefault := &ast.Var{Name: "x"}
	params := value.ParamList{identParam("x", nil), identParam("y", yDefault)}
	pending := value.NewPending()

	evalDefault := func(expr ast.Expr, ctx *value.Context) (*value.Thunk, error) {
		v := expr.(*ast.Var)
		thunk, ok := ctx.Lookup(v.Name)
		if !ok {
			return nil, errors.New(errors.RuntimeError, "no such variable %q", v.Name)
		}
		return thunk, nil
	}

	bound, err := Bind(pool, params, []*value.Thunk{numThunk(5)}, nil, false, pending, evalDefault)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := value.NewRootContext().Extend(bound, value.ExtendOpts{})
	pending.Fill(ctx)

	yv, err := bound["y"].Force()
	if err != nil {
		t.Fatalf("unexpected error forcing default: %v", err)
	}
	if yv.(value.Number) != 5 {
		t.Errorf("expected y to default to x=5, got %v", yv)
	}
}

func TestBind_TailstrictForcesArgumentsEagerly(t *testing.T) {
	pool := interner.NewPool()
	params := value.ParamList{identParam("x", nil)}
	pending := value.NewPending()
	boom := value.NewThunk(func() (value.Value, error) {
		return nil, errors.New(errors.RuntimeError, "boom")
	})
	_, err := Bind(pool, params, []*value.Thunk{boom}, nil, true, pending, noEval)
	if err == nil {
		t.Fatalf("expected tailstrict binding to surface the argument's error immediately")
	}
}

func TestBindPattern_ArrayDestructuring(t *testing.T) {
	pool := interner.NewPool()
	pattern := ast.DestructPattern{
		Kind:          ast.DestructArray,
		SyntheticName: "$dest0",
		Elements: []ast.DestructPattern{
			{Kind: ast.DestructIdent, Ident: "a"},
			{Kind: ast.DestructIdent, Ident: "b"},
		},
	}
	arr := value.NewEagerArray([]value.Value{mustNum(1), mustNum(2)})
	out := map[string]*value.Thunk{}
	if err := Destructure(pool, pattern, value.Done(arr), out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	av, _ := out["a"].Force()
	bv, _ := out["b"].Force()
	if av.(value.Number) != 1 || bv.(value.Number) != 2 {
		t.Errorf("expected a=1, b=2, got a=%v b=%v", av, bv)
	}
}

func TestBindPattern_ArrayDestructuringTooShort(t *testing.T) {
	pool := interner.NewPool()
	pattern := ast.DestructPattern{
		Kind:          ast.DestructArray,
		SyntheticName: "$dest0",
		Elements: []ast.DestructPattern{
			{Kind: ast.DestructIdent, Ident: "a"},
			{Kind: ast.DestructIdent, Ident: "b"},
		},
	}
	arr := value.NewEagerArray([]value.Value{mustNum(1)})
	out := map[string]*value.Thunk{}
	if err := Destructure(pool, pattern, value.Done(arr), out); err != nil {
		t.Fatalf("unexpected error building pattern: %v", err)
	}
	_, err := out["b"].Force()
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.ArrayBoundsError {
		t.Fatalf("expected ArrayBoundsError forcing short element, got %v", err)
	}
}

func mustNum(n float64) value.Value {
	v, _ := value.NewNumber(n)
	return v
}
