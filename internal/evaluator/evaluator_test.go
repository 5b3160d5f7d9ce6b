package evaluator

import (
	"testing"

	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/state"
	"github.com/madkinsz/jrsonnet/internal/value"
)

type stubImporter struct{}

func (stubImporter) ResolveFile(fromDir, path string) (string, error) { return fromDir + "/" + path, nil }
func (stubImporter) Import(resolved string) (value.Value, error)     { return value.NullValue, nil }
func (stubImporter) ImportStr(resolved string) (value.String, error) { return value.String{}, nil }
func (stubImporter) ImportBin(resolved string) (value.Array, error)  { return value.NewEagerArray(nil), nil }

func newState() *state.State {
	return state.New(interner.NewPool(), stubImporter{})
}

func num(n float64) ast.Expr { return &ast.NumberLit{Value: n} }
func str(s string) ast.Expr { return &ast.StringLit{Value: s} }

func mustEvalNum(t *testing.T, node ast.Expr) float64 {
	t.Helper()
	v, err := Eval(node, value.NewRootContext(), newState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(value.Number)
	if !ok {
		t.Fatalf("expected a number, got %T", v)
	}
	return float64(n)
}

func TestEval_Literals(t *testing.T) {
	st := newState()
	ctx := value.NewRootContext()

	if v, _ := Eval(&ast.NullLit{}, ctx, st); v != value.NullValue {
		t.Errorf("expected null, got %v", v)
	}
	if v, _ := Eval(&ast.BooleanLit{Value: true}, ctx, st); v.(value.Bool) != true {
		t.Errorf("expected true, got %v", v)
	}
	if got := mustEvalNum(t, num(3.5)); got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}
}

func TestEval_ArithmeticPrecedenceIsCallerDriven(t *testing.T) {
	// (2 + 3) * 4
	expr := &ast.Binary{
		Op:   ast.OpMul,
		Left: &ast.Binary{Op: ast.OpAdd, Left: num(2), Right: num(3)},
		Right: num(4),
	}
	if got := mustEvalNum(t, expr); got != 20 {
		t.Errorf("expected 20, got %v", got)
	}
}

func TestEval_AndShortCircuitsRightOperand(t *testing.T) {
	st := newState()
	ctx := value.NewRootContext()
	boom := &ast.ErrorExpr{Expr: str("should never evaluate")}
	expr := &ast.Binary{Op: ast.OpAnd, Left: &ast.BooleanLit{Value: false}, Right: boom}
	v, err := Eval(expr, ctx, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(value.Bool) != false {
		t.Errorf("expected false, got %v", v)
	}
}

func TestEval_OrShortCircuitsRightOperand(t *testing.T) {
	st := newState()
	ctx := value.NewRootContext()
	boom := &ast.ErrorExpr{Expr: str("should never evaluate")}
	expr := &ast.Binary{Op: ast.OpOr, Left: &ast.BooleanLit{Value: true}, Right: boom}
	v, err := Eval(expr, ctx, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(value.Bool) != true {
		t.Errorf("expected true, got %v", v)
	}
}

func TestEval_IfElse(t *testing.T) {
	expr := &ast.If{
		Cond:        &ast.BooleanLit{Value: false},
		TrueBranch:  num(1),
		FalseBranch: num(2),
	}
	if got := mustEvalNum(t, expr); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestEval_LocalBindingsSeeEachOther(t *testing.T) {
	// local x = 1, y = x + 1; y
	local := &ast.Local{
		Binds: []ast.LocalBind{
			{Pattern: ast.DestructPattern{Kind: ast.DestructIdent, Ident: "x"}, Value: num(1)},
			{Pattern: ast.DestructPattern{Kind: ast.DestructIdent, Ident: "y"}, Value: &ast.Binary{Op: ast.OpAdd, Left: &ast.Var{Name: "x"}, Right: num(1)}},
		},
		Body: &ast.Var{Name: "y"},
	}
	if got := mustEvalNum(t, local); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestEval_LocalRecursiveFunction(t *testing.T) {
	// local fact(n) = if n <= 0 then 1 else n * fact(n - 1); fact(4)
	fact := &ast.Function{
		Params: &ast.Params{List: []ast.Param{
			{Pattern: ast.DestructPattern{Kind: ast.DestructIdent, Ident: "n"}},
		}},
		Body: &ast.If{
			Cond: &ast.Binary{Op: ast.OpLe, Left: &ast.Var{Name: "n"}, Right: num(0)},
			TrueBranch: num(1),
			FalseBranch: &ast.Binary{
				Op:   ast.OpMul,
				Left: &ast.Var{Name: "n"},
				Right: &ast.Apply{
					Callee:     &ast.Var{Name: "fact"},
					Positional: []ast.Expr{&ast.Binary{Op: ast.OpSub, Left: &ast.Var{Name: "n"}, Right: num(1)}},
				},
			},
		},
	}
	local := &ast.Local{
		Binds: []ast.LocalBind{
			{Pattern: ast.DestructPattern{Kind: ast.DestructIdent, Ident: "fact"}, Fun: fact},
		},
		Body: &ast.Apply{Callee: &ast.Var{Name: "fact"}, Positional: []ast.Expr{num(4)}},
	}
	if got := mustEvalNum(t, local); got != 24 {
		t.Errorf("expected 24, got %v", got)
	}
}

func TestEval_FunctionDefaultReferencesSibling(t *testing.T) {
	// function(x, y = x + 1) y
	fn := &ast.Function{
		Params: &ast.Params{List: []ast.Param{
			{Pattern: ast.DestructPattern{Kind: ast.DestructIdent, Ident: "x"}},
			{Pattern: ast.DestructPattern{Kind: ast.DestructIdent, Ident: "y"}, Default: &ast.Binary{Op: ast.OpAdd, Left: &ast.Var{Name: "x"}, Right: num(1)}},
		}},
		Body: &ast.Var{Name: "y"},
	}
	call := &ast.Apply{Callee: fn, Positional: []ast.Expr{num(5)}}
	if got := mustEvalNum(t, call); got != 6 {
		t.Errorf("expected 6, got %v", got)
	}
}

func TestEval_ArrayAndIndex(t *testing.T) {
	arr := &ast.Array{Elements: []ast.Expr{num(10), num(20), num(30)}}
	idx := &ast.Index{Target: arr, Index: num(1)}
	if got := mustEvalNum(t, idx); got != 20 {
		t.Errorf("expected 20, got %v", got)
	}
}

func TestEval_ArrayIndexOutOfBounds(t *testing.T) {
	arr := &ast.Array{Elements: []ast.Expr{num(1)}}
	idx := &ast.Index{Target: arr, Index: num(5)}
	_, err := Eval(idx, value.NewRootContext(), newState())
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.ArrayBoundsError {
		t.Fatalf("expected ArrayBoundsError, got %v", err)
	}
}

func TestEval_ObjectFieldAccessAndSelf(t *testing.T) {
	// { a: 1, b: self.a + 1 }.b
	obj := &ast.Object{Fields: []ast.ObjectField{
		{Name: strPtr("a"), Value: num(1)},
		{Name: strPtr("b"), Value: &ast.Binary{Op: ast.OpAdd, Left: &ast.Index{Target: &ast.Self{}, Index: str("a")}, Right: num(1)}},
	}}
	idx := &ast.Index{Target: obj, Index: str("b")}
	if got := mustEvalNum(t, idx); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestEval_ObjectNoSuchFieldSuggestsSimilarName(t *testing.T) {
	obj := &ast.Object{Fields: []ast.ObjectField{
		{Name: strPtr("length"), Value: num(1)},
	}}
	idx := &ast.Index{Target: obj, Index: str("lenght")}
	_, err := Eval(idx, value.NewRootContext(), newState())
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.NoSuchField {
		t.Fatalf("expected NoSuchField, got %v", err)
	}
	detail, ok := e.Detail.(errors.NoSuchFieldDetail)
	if !ok || len(detail.Suggestions) == 0 || detail.Suggestions[0] != "length" {
		t.Errorf("expected a 'length' suggestion, got %+v", detail)
	}
}

func TestEval_ObjectPlusMergeWithSuper(t *testing.T) {
	// ({ a: 1 } + { a+: 10 }).a == 11
	base := &ast.Object{Fields: []ast.ObjectField{{Name: strPtr("a"), Value: num(1)}}}
	ext := &ast.Object{Fields: []ast.ObjectField{{Name: strPtr("a"), Value: num(10), Plus: true}}}
	idx := &ast.Index{Target: &ast.ObjectExtend{Left: base, Right: ext}, Index: str("a")}
	if got := mustEvalNum(t, idx); got != 11 {
		t.Errorf("expected 11, got %v", got)
	}
}

func TestEval_ArrayComprehension(t *testing.T) {
	// [x * 2 for x in [1, 2, 3] if x != 2]
	comp := &ast.ArrayComp{
		Body: &ast.Binary{Op: ast.OpMul, Left: &ast.Var{Name: "x"}, Right: num(2)},
		Specs: []ast.CompSpec{
			{ForSpec: &ast.ForSpec{VarName: "x", In: &ast.Array{Elements: []ast.Expr{num(1), num(2), num(3)}}}},
			{IfSpec: &ast.IfSpec{Cond: &ast.Binary{Op: ast.OpNe, Left: &ast.Var{Name: "x"}, Right: num(2)}}},
		},
	}
	v, err := Eval(comp, value.NewRootContext(), newState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := v.(value.Array)
	if arr.Len() != 2 {
		t.Fatalf("expected 2 elements, got %d", arr.Len())
	}
	first, _ := arr.At(0).Force()
	second, _ := arr.At(1).Force()
	if first.(value.Number) != 2 || second.(value.Number) != 6 {
		t.Errorf("expected [2, 6], got [%v, %v]", first, second)
	}
}

func TestEval_AssertFailureHasTraceFrame(t *testing.T) {
	a := &ast.Assert{
		Cond: &ast.BooleanLit{Value: false},
		Msg:  str("custom message"),
		Body: num(1),
	}
	_, err := Eval(a, value.NewRootContext(), newState())
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.AssertionFailed {
		t.Fatalf("expected AssertionFailed, got %v", err)
	}
	if len(e.Frames) == 0 {
		t.Errorf("expected at least one trace frame attached")
	}
}

func TestEval_SliceNegativeIndices(t *testing.T) {
	arr := &ast.Array{Elements: []ast.Expr{num(1), num(2), num(3), num(4), num(5)}}
	neg := func(n float64) ast.Expr { return &ast.Unary{Op: ast.OpNeg, Operand: num(n)} }
	sl := &ast.Slice{Target: arr, Start: neg(3), End: neg(1)}
	v, err := Eval(sl, value.NewRootContext(), newState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := value.Elements(v.(value.Array))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].(value.Number) != 3 || got[1].(value.Number) != 4 {
		t.Errorf("expected [3, 4], got %v", got)
	}
}

func strPtr(s string) *string { return &s }

func TestEval_SelfReferentialLocalIsRecursiveLazyValueEvaluation(t *testing.T) {
	// local x = x; x
	local := &ast.Local{
		Binds: []ast.LocalBind{{
			Pattern: ast.DestructPattern{Ident: "x"},
			Value:   &ast.Var{Name: "x"},
		}},
		Body: &ast.Var{Name: "x"},
	}
	_, err := Eval(local, value.NewRootContext(), newState())
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.RecursiveLazyValueEvaluation {
		t.Fatalf("expected RecursiveLazyValueEvaluation, got %v", err)
	}
}

func TestEval_DivisionByZeroIsOverflow(t *testing.T) {
	div := &ast.Binary{Op: ast.OpDiv, Left: num(1), Right: num(0)}
	_, err := Eval(div, value.NewRootContext(), newState())
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.Overflow {
		t.Fatalf("expected Overflow, got %v", err)
	}
}

func TestEval_MutuallyRecursiveLocalsAreRecursiveLazyValueEvaluation(t *testing.T) {
	// local x = y, y = x; x
	local := &ast.Local{
		Binds: []ast.LocalBind{
			{Pattern: ast.DestructPattern{Ident: "x"}, Value: &ast.Var{Name: "y"}},
			{Pattern: ast.DestructPattern{Ident: "y"}, Value: &ast.Var{Name: "x"}},
		},
		Body: &ast.Var{Name: "x"},
	}
	_, err := Eval(local, value.NewRootContext(), newState())
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.RecursiveLazyValueEvaluation {
		t.Fatalf("expected RecursiveLazyValueEvaluation, got %v", err)
	}
}
