// Package interner implements the string/bytes interning pool described in
// spec §4.1. A Pool is goroutine-confined — like the rest of this module
// (spec §5), it carries no internal synchronization and must not be shared
// across goroutines.
package interner

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// entry is the pool's backing storage for one unique, NFC-normalized byte
// content. Handles compare and hash by the entry's address, never by
// content, so identity stays O(1) once interned (spec §4.1 contract).
type entry struct {
	data []byte
	refs int
}

// Handle is an interned string or byte buffer. Two handles returned for
// equal content compare equal (by address) and hash equal; a handle cast
// between string and bytes views shares the same backing entry.
type Handle struct {
	e *entry
}

// Pool is the interning set. The zero value is not usable; use NewPool.
type Pool struct {
	byContent map[string]*entry
}

// NewPool creates an empty interning pool.
func NewPool() *Pool {
	return &Pool{byContent: make(map[string]*entry)}
}

// InternBytes interns a byte slice. The slice is copied; callers retain
// ownership of the input.
func (p *Pool) InternBytes(b []byte) *Handle {
	normalized := norm.NFC.Bytes(b)
	key := string(normalized)
	if e, ok := p.byContent[key]; ok {
		e.refs++
		return &Handle{e: e}
	}
	// norm.NFC.Bytes may return b itself when it is already NFC.
	e := &entry{data: append([]byte(nil), normalized...), refs: 1}
	p.byContent[key] = e
	return &Handle{e: e}
}

// InternString interns a string. UTF-8 is validated once at ingress, per
// spec §4.1; malformed input is rejected rather than silently repaired —
// a Jsonnet string must be provably valid UTF-8.
func (p *Pool) InternString(s string) (*Handle, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("interner: string is not valid UTF-8")
	}
	return p.InternBytes([]byte(s)), nil
}

// InternStringFromBytes interns a byte buffer as a string, rejecting
// malformed ImportBin-sourced content instead of silently promoting it
// byte-by-byte to runes. The buffer is checked with utf8.Valid first,
// because the UTF-8 decode-transform round trip that follows replaces
// ill-formed sequences with U+FFFD rather than failing on them.
func (p *Pool) InternStringFromBytes(b []byte) (*Handle, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("interner: bytes are not valid UTF-8")
	}
	decoder := unicode.UTF8.NewDecoder()
	decoded, _, err := transform.Bytes(decoder, b)
	if err != nil {
		return nil, fmt.Errorf("interner: bytes are not valid UTF-8: %w", err)
	}
	return p.InternBytes(decoded), nil
}

// Acquire adds an external reference to an already-interned handle (e.g.
// when a value is cloned into a second container).
func (p *Pool) Acquire(h *Handle) {
	h.e.refs++
}

// Release drops an external reference. Once the last external handle for a
// content is released, the pool may evict the entry; a later Intern of the
// same content then yields a distinct (but still equal-by-content) handle,
// matching the contract in spec §4.1.
func (p *Pool) Release(h *Handle) {
	h.e.refs--
	if h.e.refs <= 0 {
		key := string(h.e.data)
		if cur, ok := p.byContent[key]; ok && cur == h.e {
			delete(p.byContent, key)
		}
	}
}

// Bytes returns the handle's backing bytes. Callers must not mutate the
// returned slice.
func (h *Handle) Bytes() []byte { return h.e.data }

// String returns the handle's content as a string. Interned content is
// always valid UTF-8, so this never fails.
func (h *Handle) String() string { return string(h.e.data) }

// Equal reports whether two handles denote the same interned content.
// Comparison is by backing pointer, so it is O(1) and content-agnostic
// after interning (spec §4.1).
func (h *Handle) Equal(o *Handle) bool {
	if h == nil || o == nil {
		return h == o
	}
	return h.e == o.e
}

// Hash returns an identity hash suitable for use as a map key alongside
// Equal; it is derived from the entry's address, not its content, so it is
// O(1) and content-agnostic after interning.
func (h *Handle) Hash() uintptr {
	return reflect.ValueOf(h.e).Pointer()
}
