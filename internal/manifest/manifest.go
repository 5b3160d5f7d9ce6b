// Package manifest renders a Jsonnet Value as text (spec §4.8): JSON in
// four modes, and YAML (including stream mode). All of it shares one
// buffer-threaded recursion with a current-indent string, the way the
// original jrsonnet's stdlib/manifest.rs structures it.
package manifest

import (
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// JSONMode selects one of the four JSON rendering shapes spec §4.8 names.
type JSONMode int

const (
	// ModeManifest is the standard indented form.
	ModeManifest JSONMode = iota
	// ModeStd is std.manifestJson's shape: empty arrays/objects expand to
	// "[\n\n]" / "{\n\n}" instead of collapsing.
	ModeStd
	// ModeToString is the single-line, `+`-operator coercion shape: spaces
	// between separators, "[ ]" / "{ }" for empty.
	ModeToString
	// ModeMinify emits no whitespace at all.
	ModeMinify
)

// JSONOptions configures JSON manifestation (spec §6 "Manifest options").
type JSONOptions struct {
	Padding       string
	Mode          JSONMode
	Newline       string
	KeyValSep     string
	PreserveOrder bool
}

// DefaultJSONOptions matches the CLI's default `Manifest` rendering: two
// spaces of indent, "\n" between lines, ": " between key and value.
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{Padding: "  ", Mode: ModeManifest, Newline: "\n", KeyValSep: ": "}
}

// YAMLOptions configures YAML manifestation.
type YAMLOptions struct {
	Padding             string
	ArrElementPadding   string
	QuoteKeys           bool
	PreserveOrder       bool
}

// DefaultYAMLOptions matches the CLI's default YAML rendering.
func DefaultYAMLOptions() YAMLOptions {
	return YAMLOptions{Padding: "  ", ArrElementPadding: "  "}
}

// fieldNames returns obj's manifestable field names in the order the
// options request, after running the object's assertions exactly once
// (spec §4.8 "Object assertions run exactly once before the object's
// first manifestation, regardless of format").
func fieldNames(obj *value.Object, preserveOrder bool) ([]string, error) {
	if err := obj.RunAsserts(obj); err != nil {
		return nil, err
	}
	return obj.FieldNames(false, preserveOrder), nil
}

func fieldValue(pool *interner.Pool, obj *value.Object, name string) (value.Value, error) {
	t, ok := obj.Field(pool, name, obj)
	if !ok {
		return nil, errors.New(errors.NoSuchField, "manifest: object lost field %q between listing and access", name)
	}
	return t.Force()
}
