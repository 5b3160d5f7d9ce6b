// Package jsonnet is the public embedding facade over the evaluation core:
// one import path wiring internal/value, internal/evaluator,
// internal/state, and internal/manifest together, the way the teacher's
// pkg/dwscript wires interp+evaluator+types behind a single Engine type
// (see internal/interp/runner.New/NewWithOptions). A host program supplies
// its own parser and std-library builtins; this package only evaluates an
// already-built ast.Expr and renders the result.
package jsonnet

import (
	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/evaluator"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/manifest"
	"github.com/madkinsz/jrsonnet/internal/state"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// Importer is re-exported so callers need only import this package to
// implement the host hooks `import`/`importstr`/`importbin` resolve
// against.
type Importer = state.Importer

// TraceFormat selects how FormatError renders a captured call stack.
type TraceFormat = state.TraceFormat

const (
	TraceFormatCompact    = state.TraceFormatCompact
	TraceFormatExplaining = state.TraceFormatExplaining
)

// Engine is one isolated evaluation core: its own string-interning pool
// and its own ambient State (call stack, builtins registry, importer).
// Engine is goroutine-confined, matching spec §5's thread-local state
// requirement — share an Importer across engines, never an Engine itself,
// across goroutines.
type Engine struct {
	pool  *interner.Pool
	state *state.State
}

// Option configures an Engine at construction time, following the
// teacher's functional-options style (dwscript.WithTypeCheck and
// friends).
type Option func(*Engine)

// WithMaxTrace bounds how many innermost trace frames FormatError renders
// (spec §6, default 20).
func WithMaxTrace(n int) Option {
	return func(e *Engine) { e.state.SetMaxTrace(n) }
}

// WithTraceFormat selects compact or explaining trace rendering.
func WithTraceFormat(f TraceFormat) Option {
	return func(e *Engine) { e.state.SetTraceFormat(f) }
}

// New builds an Engine around importer, which resolves the host's
// `import`/`importstr`/`importbin` expressions.
func New(importer Importer, opts ...Option) *Engine {
	pool := interner.NewPool()
	e := &Engine{pool: pool, state: state.New(pool, importer)}
	e.state.SetMaxTrace(20)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pool exposes the engine's interning pool, e.g. so a caller can intern
// field names before building an ast.Object by hand.
func (e *Engine) Pool() *interner.Pool { return e.pool }

// RegisterBuiltin installs a host-provided builtin under name, reachable
// from Jsonnet source as `std.<name>` once the front end that produced the
// AST desugars `std.<name>` to an Intrinsic node of that name.
func (e *Engine) RegisterBuiltin(name string, fn value.Function) {
	e.state.RegisterBuiltin(name, fn)
}

// Eval evaluates node against a fresh root context (no `this`, no `super`,
// `$` unset). Use EvalFile instead when node's imports should resolve
// relative to a named file.
func (e *Engine) Eval(node ast.Expr) (value.Value, error) {
	return evaluator.Eval(node, value.NewRootContext(), e.state)
}

// EvalFile evaluates node as though it were the contents of file: nested
// `import`/`importstr`/`importbin` expressions resolve relative to file's
// directory, and trace frames report file for node's own position.
func (e *Engine) EvalFile(node ast.Expr, file string) (value.Value, error) {
	return e.state.PushFile(node.Loc(), file, func() (value.Value, error) {
		return evaluator.Eval(node, value.NewRootContext(), e.state)
	})
}

// ManifestJSON renders v as JSON per opts (spec §4.8's four modes).
func (e *Engine) ManifestJSON(v value.Value, opts manifest.JSONOptions) (string, error) {
	return manifest.JSON(e.pool, v, opts)
}

// ManifestYAML renders v as a single YAML document.
func (e *Engine) ManifestYAML(v value.Value, opts manifest.YAMLOptions) (string, error) {
	return manifest.YAML(e.pool, v, opts)
}

// ManifestYAMLStream renders v (which must be an array) as a YAML document
// stream, one `---`-framed document per element.
func (e *Engine) ManifestYAMLStream(v value.Value, opts manifest.YAMLOptions) (string, error) {
	return manifest.YAMLStream(e.pool, v, opts)
}

// ManifestString requires v to already be a string and returns it plain.
func (e *Engine) ManifestString(v value.Value) (string, error) {
	return manifest.ToStringManifest(e.pool, v)
}

// ManifestMulti requires v to be an object and JSON-manifests each of its
// fields independently, keyed by field name.
func (e *Engine) ManifestMulti(v value.Value, opts manifest.JSONOptions) (map[string]string, error) {
	return manifest.MultiManifest(e.pool, v, opts)
}

// FormatError renders err's trace in the engine's configured trace format
// (WithTraceFormat) and truncated to its max-trace bound (WithMaxTrace), if
// err carries a trace (i.e. is an *errors.Error); otherwise it falls back
// to err.Error().
func (e *Engine) FormatError(err error) string {
	if je, ok := err.(*errors.Error); ok {
		return state.FormatTrace(je, e.state.TraceFormat(), e.state.MaxTrace())
	}
	return err.Error()
}
