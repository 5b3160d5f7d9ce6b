package evaluator

import (
	"github.com/madkinsz/jrsonnet/internal/argbind"
	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/state"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// evalApply implements function calls (spec §4.6): the callee and every
// argument are evaluated against the caller's context (arguments as
// lazy thunks, forced only as argbind.Bind's tailstrict handling or the
// callee's own body demands), bound against the callee's parameter list,
// and the callee's body runs in its captured context extended with the
// bound names. A non-tailstrict call pushes one trace frame naming the
// function; a tailstrict call pushes none (spec §4.6 "tailstrict calls
// do not grow the visible stack").
func evalApply(n *ast.Apply, ctx *value.Context, st *state.State) (value.Value, error) {
	callee, err := Eval(n.Callee, ctx, st)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(value.Function)
	if !ok {
		return nil, errors.New(errors.OnlyFunctionsCanBeCalledGot, "only functions can be called, got %s", callee.Kind())
	}

	positional := make([]*value.Thunk, len(n.Positional))
	for i, a := range n.Positional {
		positional[i] = EvalThunk(a, ctx, st)
	}
	var named argbind.NamedArgs
	if len(n.Named) > 0 {
		named = make(argbind.NamedArgs, len(n.Named))
		for _, a := range n.Named {
			named[a.Name] = EvalThunk(a.Value, ctx, st)
		}
	}

	switch f := fn.(type) {
	case *value.UserFunction:
		pending := value.NewPending()
		bound, err := argbind.Bind(st.Pool, f.Params(), positional, named, n.TailStrict, pending, evalDefault(st))
		if err != nil {
			return nil, err
		}
		bodyCtx := f.Captured.Extend(bound, value.ExtendOpts{})
		pending.Fill(bodyCtx)

		if n.TailStrict {
			return Eval(f.Body, bodyCtx, st)
		}
		name := f.Name
		if name == "" {
			name = "anonymous"
		}
		return st.Push(n.Loc(), "function <"+name+">", func() (value.Value, error) {
			return Eval(f.Body, bodyCtx, st)
		})

	default:
		return callBuiltin(fn, positional, named, n, st)
	}
}

// callBuiltin binds against a static/dynamic builtin's parameter list the
// same way a user function would, then forces every bound argument (spec
// §4.6: builtins never see laziness beyond what argbind itself defers)
// before invoking the builtin in parameter order.
func callBuiltin(fn value.Function, positional []*value.Thunk, named argbind.NamedArgs, n *ast.Apply, st *state.State) (value.Value, error) {
	params := append(value.ParamList(nil), fn.Params()...)
	for i := range params {
		if params[i].Pattern.Kind == ast.DestructIdent && params[i].Pattern.Ident == "" {
			params[i].Pattern.Ident = params[i].Name
		}
	}
	pending := value.NewPending()
	bound, err := argbind.Bind(st.Pool, params, positional, named, true, pending, noBuiltinDefault)
	if err != nil {
		return nil, err
	}
	pending.Fill(value.NewRootContext())

	args := make([]value.Value, len(params))
	for i, p := range params {
		v, err := bound[p.Name].Force()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	var call func(args []value.Value) (value.Value, error)
	switch f := fn.(type) {
	case *value.StaticBuiltin:
		call = f.Fn
	case *value.DynamicBuiltin:
		call = f.Fn
	default:
		return nil, errors.New(errors.RuntimeError, "evaluator: unhandled builtin type %T", fn)
	}

	name := builtinName(fn)
	return st.Push(n.Loc(), "builtin <"+name+">", func() (value.Value, error) {
		return call(args)
	})
}

func builtinName(fn value.Function) string {
	switch f := fn.(type) {
	case *value.StaticBuiltin:
		return f.Name
	case *value.DynamicBuiltin:
		return f.Name
	default:
		return "builtin"
	}
}

// noBuiltinDefault panics if invoked: builtins' ParamSpec.Default is
// always either nil or an already-computed Value (never an ast.Expr), so
// argbind.Bind never needs to evaluate an expression on a builtin's
// behalf (see internal/argbind's Bind contract).
func noBuiltinDefault(expr ast.Expr, ctx *value.Context) (*value.Thunk, error) {
	panic("evaluator: builtin parameter default must not be an expression")
}
