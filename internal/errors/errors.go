// Package errors defines the single error-kind enum the evaluation core
// fails with (spec §7), plus the stack-frame decoration State.Push attaches
// as errors propagate. It follows the shape of the teacher's
// internal/errors package (a structured, located error value with a
// Format/Error contract) but the kinds themselves come from spec §7, not
// from DWScript's compiler-diagnostic set.
package errors

import (
	"fmt"
	"strings"

	"github.com/madkinsz/jrsonnet/internal/ast"
)

// Kind enumerates every distinct failure the evaluator, object model,
// manifester, and argument binder can raise.
type Kind int

const (
	// Type errors
	TypeMismatch Kind = iota
	OnlyFunctionsCanBeCalledGot
	ValueIndexMustBeTypeGot
	FieldMustBeStringGot
	CantIndexInto
	ValueIsNotIndexable
	AttemptedIndexAnArrayWithString

	// Bounds
	ArrayBoundsError
	StringBoundsError
	FractionalIndex

	// Lookup
	NoSuchField
	UnknownFunctionParameter
	IntrinsicNotFound

	// Binding
	BindingParameterASecondTime
	FunctionParameterNotBoundInCall
	TooManyArgsFunctionHas

	// Context
	CantUseSelfOutsideOfObject
	NoSuperFound
	NoTopLevelObjectFound

	// Runtime
	RuntimeError
	AssertionFailed
	RecursiveLazyValueEvaluation
	Overflow

	// Manifest
	MultiManifestOutputIsNotAObject
	StreamManifestOutputIsNotAArray
	StreamManifestOutputCannotBeRecursed
	StreamManifestCannotNestString
	StringManifestOutputIsNotAString

	// Comprehension
	InComprehensionCanOnlyIterateOverArray

	// Object construction (spec §4.4 "Duplicate names")
	DuplicateFieldName

	// MagicThisFileUsed is not a user-visible failure: it is a signal
	// raised by the `std.thisFile` intrinsic and caught by Index evaluation
	// to substitute the current file's path (spec §4.5, §7).
	MagicThisFileUsed
)

var kindNames = map[Kind]string{
	TypeMismatch:                            "TypeMismatch",
	OnlyFunctionsCanBeCalledGot:              "OnlyFunctionsCanBeCalledGot",
	ValueIndexMustBeTypeGot:                  "ValueIndexMustBeTypeGot",
	FieldMustBeStringGot:                     "FieldMustBeStringGot",
	CantIndexInto:                            "CantIndexInto",
	ValueIsNotIndexable:                      "ValueIsNotIndexable",
	AttemptedIndexAnArrayWithString:          "AttemptedIndexAnArrayWithString",
	ArrayBoundsError:                         "ArrayBoundsError",
	StringBoundsError:                        "StringBoundsError",
	FractionalIndex:                          "FractionalIndex",
	NoSuchField:                              "NoSuchField",
	UnknownFunctionParameter:                 "UnknownFunctionParameter",
	IntrinsicNotFound:                        "IntrinsicNotFound",
	BindingParameterASecondTime:              "BindingParameterASecondTime",
	FunctionParameterNotBoundInCall:          "FunctionParameterNotBoundInCall",
	TooManyArgsFunctionHas:                   "TooManyArgsFunctionHas",
	CantUseSelfOutsideOfObject:               "CantUseSelfOutsideOfObject",
	NoSuperFound:                             "NoSuperFound",
	NoTopLevelObjectFound:                    "NoTopLevelObjectFound",
	RuntimeError:                             "RuntimeError",
	AssertionFailed:                          "AssertionFailed",
	RecursiveLazyValueEvaluation:             "RecursiveLazyValueEvaluation",
	Overflow:                                 "Overflow",
	MultiManifestOutputIsNotAObject:          "MultiManifestOutputIsNotAObject",
	StreamManifestOutputIsNotAArray:          "StreamManifestOutputIsNotAArray",
	StreamManifestOutputCannotBeRecursed:     "StreamManifestOutputCannotBeRecursed",
	StreamManifestCannotNestString:           "StreamManifestCannotNestString",
	StringManifestOutputIsNotAString:         "StringManifestOutputIsNotAString",
	InComprehensionCanOnlyIterateOverArray:   "InComprehensionCanOnlyIterateOverArray",
	DuplicateFieldName:                      "DuplicateFieldName",
	MagicThisFileUsed:                       "MagicThisFileUsed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UnknownError"
}

// Frame is a single entry in a call-stack trace, pushed by State.Push as
// evaluation descends into a sub-expression (spec §6 "push").
type Frame struct {
	Loc  ast.Location
	Desc string // e.g. "variable x", "function <anonymous>", "assertion condition"
}

func (f Frame) String() string {
	if f.Loc.String() == "" {
		return f.Desc
	}
	return fmt.Sprintf("%s (%s)", f.Desc, f.Loc)
}

// Error is the evaluator's sole error type. All evaluator, object-model,
// argument-binding, and manifester failures are one *Error value.
type Error struct {
	Kind    Kind
	Message string
	Frames  []Frame // innermost frame first; appended to as the error propagates

	// Structured detail used by callers that want to inspect the error
	// programmatically instead of parsing Message (e.g. suggestions for
	// NoSuchField, or the index/len pair for ArrayBoundsError).
	Detail any
}

// New creates an *Error with no frames yet attached.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches structured detail and returns the same error for
// chaining at the construction site.
func (e *Error) WithDetail(detail any) *Error {
	e.Detail = detail
	return e
}

// Push appends a frame as the error unwinds through State.Push (innermost
// call first; Error() renders innermost-last so the trace reads top of
// stack to bottom, matching the teacher's StackTrace.String rendering
// order).
func (e *Error) Push(frame Frame) *Error {
	e.Frames = append(e.Frames, frame)
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Format(0)
}

// Format renders the error with its trace, truncated to maxFrames (0 means
// unbounded), matching the max_trace knob in spec §5/§6.
func (e *Error) Format(maxFrames int) string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	sb.WriteString(": ")
	sb.WriteString(e.Message)

	if len(e.Frames) == 0 {
		return sb.String()
	}

	frames := e.Frames
	truncated := 0
	if maxFrames > 0 && len(frames) > maxFrames {
		truncated = len(frames) - maxFrames
		frames = frames[:maxFrames]
	}

	for i := len(frames) - 1; i >= 0; i-- {
		sb.WriteString("\n\tduring ")
		sb.WriteString(frames[i].String())
	}
	if truncated > 0 {
		sb.WriteString(fmt.Sprintf("\n\t... %d more frame(s) elided", truncated))
	}
	return sb.String()
}

// NoSuchFieldDetail is the Detail payload for a NoSuchField error (spec §7,
// §8 invariant 9: suggestions are Jaro-Winkler >= 0.8, sorted descending).
type NoSuchFieldDetail struct {
	Field       string
	Suggestions []string
}

// ArrayBoundsDetail is the Detail payload for ArrayBoundsError.
type ArrayBoundsDetail struct {
	Index int
	Len   int
}

// StringBoundsDetail is the Detail payload for StringBoundsError.
type StringBoundsDetail struct {
	Index       int
	ScalarCount int
}

// TypeMismatchDetail is the Detail payload for TypeMismatch.
type TypeMismatchDetail struct {
	Context  string
	Expected []string
	Got      string
}

// As reports whether err is an *Error of the given kind, returning it.
func As(err error, kind Kind) (*Error, bool) {
	e, ok := err.(*Error)
	if !ok || e.Kind != kind {
		return nil, false
	}
	return e, true
}
