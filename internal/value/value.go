// Package value implements the Jsonnet value model (spec §3): the tagged
// Value sum type, the three array shapes, the object model with
// inheritance, user/builtin functions, and the lexical Context/Pending
// pair that object and function bodies close over. These live in one
// package because the object model and the context it binds against are
// mutually recursive (a field's bound thunk captures a Context whose
// `this` slot is the Object itself) — the same shape the reference
// jrsonnet implementation uses in its single val.rs module (see
// DESIGN.md).
package value

import (
	"math"

	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/thunk"
)

// Kind tags a Value's concrete shape.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Value is the sum type every Jsonnet runtime value implements.
type Value interface {
	Kind() Kind
}

// Thunk is the lazy cell specialized to Value, used throughout the
// evaluator, array, and object model.
type Thunk = thunk.Thunk[Value]

// NewThunk wraps a producer as a Pending Thunk.
func NewThunk(producer func() (Value, error)) *Thunk {
	return thunk.New[Value](producer)
}

// Done wraps an already-computed Value as a Computed Thunk.
func Done(v Value) *Thunk {
	return thunk.Done[Value](v)
}

// Null is the singleton `null` value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

// NullValue is the single shared `null` instance; Jsonnet's `null` has no
// observable identity, so one instance suffices.
var NullValue Value = Null{}

// Bool is the `true`/`false` value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Number is a finite IEEE-754 double. Construction rejects NaN/Inf per
// spec §3.1 invariant ("*Overflow*" at the point of production).
type Number float64

func (Number) Kind() Kind { return KindNumber }

// NewNumber validates f and returns a Number, or an Overflow error if f is
// not finite (spec §8 invariant 4).
func NewNumber(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New(errors.Overflow, "evaluation produced a non-finite number")
	}
	return Number(f), nil
}

// EqualULP is the tolerance used for number equality (spec §4.7, §9 open
// question: preserved verbatim from the source implementation for
// compatibility rather than requiring bit-exact comparison).
const EqualULP = 1e-9

// NumbersEqual reports whether a and b are equal within EqualULP.
func NumbersEqual(a, b Number) bool {
	if a == b {
		return true
	}
	return math.Abs(float64(a)-float64(b)) <= EqualULP
}

// String is an interned Jsonnet string.
type String struct {
	h *interner.Handle
}

func (String) Kind() Kind { return KindString }

// NewString wraps an already-interned handle.
func NewString(h *interner.Handle) String {
	return String{h: h}
}

// Handle returns the backing interned handle.
func (s String) Handle() *interner.Handle { return s.h }

// Go returns the Go string content.
func (s String) Go() string { return s.h.String() }

// Runes returns the string's Unicode scalars, per spec §4.5/§9: string
// indexing and length operate on scalars, not UTF-8 code units.
func (s String) Runes() []rune { return []rune(s.Go()) }
