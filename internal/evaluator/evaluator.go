// Package evaluator walks a located AST (internal/ast) against a lexical
// Context and State, producing a Value (spec §4.5). It is the one package
// that ties value, ops, argbind, interner, and state together into a
// running program; every other package is a leaf this one calls into.
package evaluator

import (
	"fmt"

	"github.com/madkinsz/jrsonnet/internal/argbind"
	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/ops"
	"github.com/madkinsz/jrsonnet/internal/state"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// Eval evaluates node in ctx, threading st for trace frames, the interner
// pool, import hooks, and the builtins registry.
func Eval(node ast.Expr, ctx *value.Context, st *state.State) (value.Value, error) {
	switch n := node.(type) {
	case *ast.NullLit:
		return value.NullValue, nil
	case *ast.BooleanLit:
		return value.Bool(n.Value), nil
	case *ast.NumberLit:
		return value.NewNumber(n.Value)
	case *ast.StringLit:
		h, err := st.Pool.InternString(n.Value)
		if err != nil {
			return nil, err
		}
		return value.NewString(h), nil

	case *ast.Self:
		if this := ctx.This(); this != nil {
			return this, nil
		}
		return nil, errors.New(errors.CantUseSelfOutsideOfObject, "self is only valid inside an object")
	case *ast.Super:
		if super := ctx.Super(); super != nil {
			return super, nil
		}
		return nil, errors.New(errors.NoSuperFound, "no super object in this context")
	case *ast.Dollar:
		if dollar := ctx.Dollar(); dollar != nil {
			return dollar, nil
		}
		return nil, errors.New(errors.NoTopLevelObjectFound, "no top-level object ($) in this context")

	case *ast.Var:
		return st.Push(n.Loc(), fmt.Sprintf("variable <%s>", n.Name), func() (value.Value, error) {
			t, ok := ctx.Lookup(n.Name)
			if !ok {
				return nil, errors.New(errors.RuntimeError, "unknown variable %q", n.Name)
			}
			return t.Force()
		})

	case *ast.Local:
		return evalLocal(n, ctx, st)

	case *ast.Array:
		elems := make([]*value.Thunk, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = EvalThunk(e, ctx, st)
		}
		return value.NewLazyArray(elems), nil

	case *ast.ArrayComp:
		return evalArrayComp(n, ctx, st)
	case *ast.ObjectComp:
		return evalObjectComp(n, ctx, st)

	case *ast.Object:
		return evalObject(n, ctx, st)
	case *ast.ObjectExtend:
		left, err := Eval(n.Left, ctx, st)
		if err != nil {
			return nil, err
		}
		right, err := Eval(n.Right, ctx, st)
		if err != nil {
			return nil, err
		}
		return ops.Add(st.Pool, left, right)

	case *ast.Index:
		return evalIndex(n, ctx, st)
	case *ast.Slice:
		return evalSlice(n, ctx, st)

	case *ast.Binary:
		return evalBinary(n, ctx, st)
	case *ast.Unary:
		return evalUnary(n, ctx, st)

	case *ast.Apply:
		return evalApply(n, ctx, st)
	case *ast.Function:
		return &value.UserFunction{Captured: ctx, AST: n.Params, Body: n.Body}, nil

	case *ast.Assert:
		return st.Push(n.Loc(), "assert", func() (value.Value, error) {
			if err := runAssert(n.Cond, n.Msg, ctx, st); err != nil {
				return nil, err
			}
			return Eval(n.Body, ctx, st)
		})

	case *ast.ErrorExpr:
		return st.Push(n.Loc(), "error statement", func() (value.Value, error) {
			v, err := Eval(n.Expr, ctx, st)
			if err != nil {
				return nil, err
			}
			msg, err := value.Stringify(st.Pool, v)
			if err != nil {
				return nil, err
			}
			return nil, errors.New(errors.RuntimeError, "%s", msg)
		})

	case *ast.If:
		cv, err := Eval(n.Cond, ctx, st)
		if err != nil {
			return nil, err
		}
		cb, ok := cv.(value.Bool)
		if !ok {
			return nil, errors.New(errors.TypeMismatch, "if condition must be a boolean, got %s", cv.Kind())
		}
		if bool(cb) {
			return Eval(n.TrueBranch, ctx, st)
		}
		if n.FalseBranch == nil {
			return value.NullValue, nil
		}
		return Eval(n.FalseBranch, ctx, st)

	case *ast.Import:
		return evalImport(n, ctx, st)
	case *ast.ImportStr:
		return evalImportStr(n, ctx, st)
	case *ast.ImportBin:
		return evalImportBin(n, ctx, st)

	case *ast.Intrinsic:
		if n.Name == "thisFile" {
			return nil, errors.New(errors.MagicThisFileUsed, "std.thisFile used outside of field access")
		}
		fn, ok := st.Builtin(n.Name)
		if !ok {
			return nil, errors.New(errors.IntrinsicNotFound, "no such intrinsic %q", n.Name)
		}
		return fn, nil

	default:
		return nil, errors.New(errors.RuntimeError, "evaluator: unhandled AST node %T", node)
	}
}

// EvalThunk wraps node as a lazily-forced Thunk, capturing ctx and st.
// This is how every laziness boundary in the evaluator (array elements,
// call arguments, local bindings, object fields) is built.
func EvalThunk(node ast.Expr, ctx *value.Context, st *state.State) *value.Thunk {
	return value.NewThunk(func() (value.Value, error) {
		return Eval(node, ctx, st)
	})
}

// evalDefault adapts Eval into the argbind.EvalDefault callback shape, the
// dependency-injection point that lets internal/argbind evaluate a
// parameter's default expression without importing this package (see
// DESIGN.md).
func evalDefault(st *state.State) argbind.EvalDefault {
	return func(expr ast.Expr, ctx *value.Context) (*value.Thunk, error) {
		return EvalThunk(expr, ctx, st), nil
	}
}

func runAssert(cond, msg ast.Expr, ctx *value.Context, st *state.State) error {
	cv, err := st.Push(cond.Loc(), "assertion condition", func() (value.Value, error) {
		return Eval(cond, ctx, st)
	})
	if err != nil {
		return err
	}
	cb, ok := cv.(value.Bool)
	if !ok {
		return errors.New(errors.TypeMismatch, "assert condition must be a boolean, got %s", cv.Kind())
	}
	if bool(cb) {
		return nil
	}
	return st.Push(cond.Loc(), "assertion failure", func() (value.Value, error) {
		if msg == nil {
			return nil, errors.New(errors.AssertionFailed, "assertion failed")
		}
		mv, err := Eval(msg, ctx, st)
		if err != nil {
			return nil, err
		}
		text, err := value.Stringify(st.Pool, mv)
		if err != nil {
			return nil, err
		}
		return nil, errors.New(errors.AssertionFailed, "%s", text)
	})
}

func evalLocal(n *ast.Local, ctx *value.Context, st *state.State) (value.Value, error) {
	pending := value.NewPending()
	bindings := make(map[string]*value.Thunk, len(n.Binds))
	for _, b := range n.Binds {
		b := b
		var t *value.Thunk
		if b.Fun != nil {
			fn := b.Fun
			name := b.Pattern.Ident
			t = value.NewThunk(func() (value.Value, error) {
				return &value.UserFunction{Name: name, Captured: pending.Get(), AST: fn.Params, Body: fn.Body}, nil
			})
		} else {
			val := b.Value
			t = value.NewThunk(func() (value.Value, error) {
				return Eval(val, pending.Get(), st)
			})
		}
		if err := argbind.Destructure(st.Pool, b.Pattern, t, bindings); err != nil {
			return nil, err
		}
	}
	bodyCtx := ctx.Extend(bindings, value.ExtendOpts{})
	pending.Fill(bodyCtx)
	return Eval(n.Body, bodyCtx, st)
}
