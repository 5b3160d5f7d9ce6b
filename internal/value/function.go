package value

import "github.com/madkinsz/jrsonnet/internal/ast"

// Function is implemented by every callable value (spec §3.4): a user
// function (captured context + AST body), a static builtin (Go function
// pointer), or a user-provided dynamic builtin. Functions are not
// equatable (spec §4.7); internal/ops's equality check type-switches on
// Function and always errors.
type Function interface {
	Value
	Params() ParamList
}

// ParamSpec is one formal parameter as seen by internal/argbind, shared
// between user functions and builtins so parse_builtin_call-style binding
// logic (spec Design Notes) does not need two code paths.
//
// Default is nil for a required parameter. Otherwise it holds either an
// ast.Expr (a user function's default, evaluated lazily in the function's
// captured scope) or an already-computed Value (a builtin's default,
// which needs no evaluation context). internal/argbind's caller injects an
// expression evaluator callback for the former case to avoid a dependency
// from argbind back onto the evaluator package.
type ParamSpec struct {
	Name    string
	Pattern ast.DestructPattern
	Default any
}

// ParamList is an ordered parameter descriptor.
type ParamList []ParamSpec

// UserFunction is a function literal together with the context it closed
// over at the point of definition (spec §4.6 "two contexts per call":
// Captured is extended with bound parameters to evaluate defaults and
// Body).
type UserFunction struct {
	Name     string // for trace frames; "" for anonymous functions
	Captured *Context
	AST      *ast.Params
	Body     ast.Expr
}

func (*UserFunction) Kind() Kind { return KindFunction }

// Params builds the shared ParamList view from the function's AST params.
func (f *UserFunction) Params() ParamList {
	list := make(ParamList, len(f.AST.List))
	for i, p := range f.AST.List {
		list[i] = ParamSpec{Name: p.Name(), Pattern: p.Pattern, Default: p.Default}
	}
	return list
}

// BuiltinFn is a static builtin's implementation: arguments arrive already
// bound and forced (builtins are not exposed to laziness beyond what
// argbind gives every call).
type BuiltinFn func(args []Value) (Value, error)

// StaticBuiltin is a builtin registered in State's intrinsic table (spec
// §6 "builtins registry", §4.5 Intrinsic node).
type StaticBuiltin struct {
	Name    string
	Params_ ParamList
	Fn      BuiltinFn
}

func (*StaticBuiltin) Kind() Kind        { return KindFunction }
func (b *StaticBuiltin) Params() ParamList { return b.Params_ }

// DynamicBuiltin is a host-registered builtin with the same call shape as
// StaticBuiltin, kept as a distinct type so a host can distinguish
// "shipped with the core" from "registered by the embedder" (spec §3.4).
type DynamicBuiltin struct {
	Name    string
	Params_ ParamList
	Fn      BuiltinFn
}

func (*DynamicBuiltin) Kind() Kind        { return KindFunction }
func (b *DynamicBuiltin) Params() ParamList { return b.Params_ }
