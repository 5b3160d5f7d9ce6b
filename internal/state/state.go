// Package state holds the ambient, goroutine-confined evaluation context
// spec §5/§6 describes: the live call-stack trace, the max-trace display
// bound, the host-supplied import hooks, and the intrinsic (builtins)
// registry. It plays the role the teacher's internal/interp environment
// plus internal/errors.StackTrace play together, but collapsed into one
// value explicitly threaded through internal/evaluator rather than held
// in package-level/global state, per spec §5's "no value may cross
// threads" / "all mutable state is thread-local" requirement.
package state

import (
	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// Importer resolves and loads the files the `import`, `importstr`, and
// `importbin` expression forms need (spec §6 "resolve_file"/"import"/
// "import_str"/"import_bin"). A host embeds this core by implementing
// Importer over its own filesystem/module-path conventions; nothing in
// this package reads from disk directly.
type Importer interface {
	// ResolveFile turns a possibly-relative path into the canonical path
	// used as the import cache key, resolving it against fromDir (the
	// directory of the importing file).
	ResolveFile(fromDir, path string) (string, error)
	// Import evaluates resolved as Jsonnet and returns its value.
	Import(resolved string) (value.Value, error)
	// ImportStr reads resolved as a single interned string.
	ImportStr(resolved string) (value.String, error)
	// ImportBin reads resolved as a byte array.
	ImportBin(resolved string) (value.Array, error)
}

// TraceFormat selects how a captured trace renders (spec §6
// "set_trace_format"); State only carries the selection, and FormatTrace
// in trace.go does the rendering.
type TraceFormat int

const (
	TraceFormatCompact TraceFormat = iota
	TraceFormatExplaining
)

type importEntry struct {
	v   value.Value
	err error
}

// State is created once per top-level evaluation and threaded explicitly
// through every Eval call; it is never shared across goroutines.
type State struct {
	Pool     *interner.Pool
	Importer Importer

	builtins map[string]value.Function

	frames      []errors.Frame
	maxTrace    int
	traceFormat TraceFormat
	currentFile string

	imports    map[string]importEntry
	importStrs map[string]value.String
	importBins map[string]value.Array
}

// New builds a State around pool and importer with spec §6's default
// max-trace (20) and compact trace format (spec.md §6 "CLI / environment"
// mirrors this default; a host may override both before evaluating).
func New(pool *interner.Pool, importer Importer) *State {
	return &State{
		Pool:        pool,
		Importer:    importer,
		builtins:    make(map[string]value.Function),
		maxTrace:    20,
		traceFormat: TraceFormatCompact,
		imports:     make(map[string]importEntry),
		importStrs:  make(map[string]value.String),
		importBins:  make(map[string]value.Array),
	}
}

// RegisterBuiltin installs fn under name in the intrinsic registry (spec
// §6 "builtins registry keyed by intrinsic name").
func (s *State) RegisterBuiltin(name string, fn value.Function) {
	s.builtins[name] = fn
}

// Builtin looks up an intrinsic by name; the evaluator turns a miss into
// an IntrinsicNotFound error.
func (s *State) Builtin(name string) (value.Function, bool) {
	fn, ok := s.builtins[name]
	return fn, ok
}

// SetMaxTrace configures how many innermost frames errors.Error.Format
// renders; 0 means unbounded (spec §5 "Cancellation and timeouts", §6
// "set_max_trace").
func (s *State) SetMaxTrace(n int) { s.maxTrace = n }

// MaxTrace returns the configured bound.
func (s *State) MaxTrace() int { return s.maxTrace }

// SetTraceFormat selects the format cmd/jsonnet renders a trace in.
func (s *State) SetTraceFormat(f TraceFormat) { s.traceFormat = f }

// TraceFormat returns the configured format.
func (s *State) TraceFormat() TraceFormat { return s.traceFormat }

// CurrentFile returns the path of the file whose evaluation is currently
// innermost on the stack, as tracked by PushFile; the evaluator's import
// handling resolves relative paths against its directory.
func (s *State) CurrentFile() string { return s.currentFile }

// Frames returns a snapshot of the live call stack, innermost last.
func (s *State) Frames() []errors.Frame {
	out := make([]errors.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Push wraps action with a trace frame (spec §6 "push(frame_location,
// description, action)"). The frame is visible on the live stack while
// action runs and, if action fails, is attached to the returned error on
// the way back out — however deep inside action the failure actually
// occurred. Depth here is unbounded; only rendering via
// errors.Error.Format truncates, per MaxTrace.
func (s *State) Push(loc ast.Location, desc string, action func() (value.Value, error)) (value.Value, error) {
	frame := errors.Frame{Loc: loc, Desc: desc}
	s.frames = append(s.frames, frame)
	defer func() { s.frames = s.frames[:len(s.frames)-1] }()

	v, err := action()
	if err == nil {
		return v, nil
	}
	e, ok := err.(*errors.Error)
	if !ok {
		e = errors.New(errors.RuntimeError, "%s", err.Error())
	}
	return nil, e.Push(frame)
}

// PushFile is Push's variant for import boundaries: it additionally
// updates CurrentFile for action's duration.
func (s *State) PushFile(loc ast.Location, file string, action func() (value.Value, error)) (value.Value, error) {
	prev := s.currentFile
	s.currentFile = file
	defer func() { s.currentFile = prev }()
	return s.Push(loc, "file "+file, action)
}

// ResolveFile proxies to Importer.ResolveFile.
func (s *State) ResolveFile(fromDir, path string) (string, error) {
	return s.Importer.ResolveFile(fromDir, path)
}

// Import evaluates the file at resolved, memoized by resolved path so a
// file imported from multiple sites is only ever evaluated once (spec §6
// "import(resolved) -> Value"; matches Jsonnet's own import-cache
// semantics, which the distilled spec assumes without spelling out).
func (s *State) Import(resolved string) (value.Value, error) {
	if e, ok := s.imports[resolved]; ok {
		return e.v, e.err
	}
	v, err := s.Importer.Import(resolved)
	s.imports[resolved] = importEntry{v: v, err: err}
	return v, err
}

// ImportStr reads resolved as a string, memoized by resolved path.
func (s *State) ImportStr(resolved string) (value.String, error) {
	if str, ok := s.importStrs[resolved]; ok {
		return str, nil
	}
	str, err := s.Importer.ImportStr(resolved)
	if err != nil {
		return value.String{}, err
	}
	s.importStrs[resolved] = str
	return str, nil
}

// ImportBin reads resolved as a byte array, memoized by resolved path.
func (s *State) ImportBin(resolved string) (value.Array, error) {
	if arr, ok := s.importBins[resolved]; ok {
		return arr, nil
	}
	arr, err := s.Importer.ImportBin(resolved)
	if err != nil {
		return nil, err
	}
	s.importBins[resolved] = arr
	return arr, nil
}
