package evaluator

import (
	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/ops"
	"github.com/madkinsz/jrsonnet/internal/state"
	"github.com/madkinsz/jrsonnet/internal/value"
)

func evalBinary(n *ast.Binary, ctx *value.Context, st *state.State) (value.Value, error) {
	// And/Or short-circuit: the right operand's thunk must never be forced
	// when the left already decides the result (spec §4.7).
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		lv, err := Eval(n.Left, ctx, st)
		if err != nil {
			return nil, err
		}
		lb, ok := lv.(value.Bool)
		if !ok {
			return nil, errors.New(errors.TypeMismatch, "operator && / || requires boolean operands, got %s", lv.Kind())
		}
		if n.Op == ast.OpAnd && !bool(lb) {
			return value.Bool(false), nil
		}
		if n.Op == ast.OpOr && bool(lb) {
			return value.Bool(true), nil
		}
		rv, err := Eval(n.Right, ctx, st)
		if err != nil {
			return nil, err
		}
		rb, ok := rv.(value.Bool)
		if !ok {
			return nil, errors.New(errors.TypeMismatch, "operator && / || requires boolean operands, got %s", rv.Kind())
		}
		return rb, nil
	}

	// `in` tests object field membership without forcing the field's value.
	if n.Op == ast.OpIn {
		rv, err := Eval(n.Right, ctx, st)
		if err != nil {
			return nil, err
		}
		obj, ok := rv.(*value.Object)
		if !ok {
			return nil, errors.New(errors.TypeMismatch, "operator in requires an object on the right, got %s", rv.Kind())
		}
		lv, err := Eval(n.Left, ctx, st)
		if err != nil {
			return nil, err
		}
		ls, ok := lv.(value.String)
		if !ok {
			return nil, errors.New(errors.TypeMismatch, "operator in requires a string on the left, got %s", lv.Kind())
		}
		return value.Bool(obj.HasField(ls.Go())), nil
	}

	lv, err := Eval(n.Left, ctx, st)
	if err != nil {
		return nil, err
	}
	rv, err := Eval(n.Right, ctx, st)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpAdd:
		return ops.Add(st.Pool, lv, rv)
	case ast.OpSub:
		return ops.Sub(lv, rv)
	case ast.OpMul:
		return ops.Mul(lv, rv)
	case ast.OpDiv:
		return ops.Div(lv, rv)
	case ast.OpMod:
		return ops.Mod(lv, rv)
	case ast.OpLt:
		b, err := ops.Lt(lv, rv)
		return value.Bool(b), err
	case ast.OpLe:
		b, err := ops.Le(lv, rv)
		return value.Bool(b), err
	case ast.OpGt:
		b, err := ops.Gt(lv, rv)
		return value.Bool(b), err
	case ast.OpGe:
		b, err := ops.Ge(lv, rv)
		return value.Bool(b), err
	case ast.OpEq:
		b, err := ops.Equals(st.Pool, lv, rv)
		return value.Bool(b), err
	case ast.OpNe:
		b, err := ops.Equals(st.Pool, lv, rv)
		return value.Bool(!b), err
	case ast.OpBitAnd:
		return ops.BitAnd(lv, rv)
	case ast.OpBitOr:
		return ops.BitOr(lv, rv)
	case ast.OpBitXor:
		return ops.BitXor(lv, rv)
	case ast.OpShl:
		return ops.Shl(lv, rv)
	case ast.OpShr:
		return ops.Shr(lv, rv)
	default:
		return nil, errors.New(errors.RuntimeError, "evaluator: unhandled binary operator %d", n.Op)
	}
}

func evalUnary(n *ast.Unary, ctx *value.Context, st *state.State) (value.Value, error) {
	v, err := Eval(n.Operand, ctx, st)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpNot:
		return ops.Not(v)
	case ast.OpNeg:
		return ops.Neg(v)
	case ast.OpBitNot:
		return ops.BitNot(v)
	case ast.OpPlus:
		if _, ok := v.(value.Number); !ok {
			return nil, errors.New(errors.TypeMismatch, "unary + requires a number, got %s", v.Kind())
		}
		return v, nil
	default:
		return nil, errors.New(errors.RuntimeError, "evaluator: unhandled unary operator %d", n.Op)
	}
}
