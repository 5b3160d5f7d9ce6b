package manifest

import (
	"strconv"
	"strings"

	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// YAML renders v per opts (spec §4.8 YAML). The scalar-quoting predicate
// is transcribed verbatim from the original implementation's
// yaml_needs_quotes (itself ported from yaml-rust's emitter, plus a
// two-dash date-like check) rather than re-derived, so its edge cases
// match exactly (see DESIGN.md).
func YAML(pool *interner.Pool, v value.Value, opts YAMLOptions) (string, error) {
	var sb strings.Builder
	if err := writeYAML(pool, &sb, v, opts, ""); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// yamlNeedsQuotes reports whether s must be double-quoted rather than
// emitted as a bare YAML scalar.
func yamlNeedsQuotes(s string) bool {
	if s == "" {
		return true
	}
	if strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		return true
	}
	if strings.ContainsAny(s[:1], "&*?|-<>=!%@") {
		return true
	}
	for _, r := range s {
		switch {
		case r == ':' || r == '{' || r == '}' || r == '[' || r == ']' || r == ',' || r == '#' || r == '`' || r == '"' || r == '\'' || r == '\\' || r == 0:
			return true
		case r >= '\x01' && r <= '\x06':
			return true
		case r == '\t' || r == '\n' || r == '\r':
			return true
		case r >= '\x0e' && r <= '\x1a':
			return true
		case r >= '\x1c' && r <= '\x1f':
			return true
		}
	}
	switch s {
	case "yes", "Yes", "YES", "no", "No", "NO", "True", "TRUE", "true", "False", "FALSE", "false",
		"on", "On", "ON", "off", "Off", "OFF",
		"null", "Null", "NULL", "~":
		return true
	}
	if isTwoDashDateLike(s) {
		return true
	}
	if strings.HasPrefix(s, ".") || strings.HasPrefix(s, "0x") {
		return true
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}

func isTwoDashDateLike(s string) bool {
	dashes := 0
	for _, r := range s {
		if r == '-' {
			dashes++
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return dashes == 2
}

func writeYAMLScalarString(sb *strings.Builder, s string, opts YAMLOptions, indent string) {
	switch {
	case s == "":
		sb.WriteString(`""`)
	case strings.HasSuffix(s, "\n"):
		sb.WriteString("|")
		for _, line := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
			sb.WriteString("\n")
			sb.WriteString(indent)
			sb.WriteString(opts.Padding)
			sb.WriteString(line)
		}
	case !opts.QuoteKeys && !yamlNeedsQuotes(s):
		sb.WriteString(s)
	default:
		sb.WriteString(value.JSONEscapeString(s))
	}
}

func writeYAML(pool *interner.Pool, sb *strings.Builder, v value.Value, opts YAMLOptions, indent string) error {
	switch vv := v.(type) {
	case value.Null:
		sb.WriteString("null")
	case value.Bool:
		if vv {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case value.Number:
		sb.WriteString(value.FormatNumber(vv))
	case value.String:
		writeYAMLScalarString(sb, vv.Go(), opts, indent)
	case value.Array:
		return writeYAMLArray(pool, sb, vv, opts, indent)
	case *value.Object:
		return writeYAMLObject(pool, sb, vv, opts, indent)
	case value.Function:
		return errors.New(errors.RuntimeError, "cannot manifest a function value")
	}
	return nil
}

func writeYAMLArray(pool *interner.Pool, sb *strings.Builder, arr value.Array, opts YAMLOptions, indent string) error {
	n := arr.Len()
	if n == 0 {
		sb.WriteString("[]")
		return nil
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString("\n")
			sb.WriteString(indent)
		}
		ev, err := arr.At(i).Force()
		if err != nil {
			return err
		}
		sb.WriteString("-")
		childIndent := indent
		if isNonEmptyArray(ev) {
			sb.WriteString("\n")
			sb.WriteString(indent)
			sb.WriteString(opts.Padding)
			childIndent = indent + opts.Padding
		} else {
			sb.WriteString(" ")
			if isNonEmptyCollection(ev) {
				childIndent = indent + opts.Padding
			}
		}
		if err := writeYAML(pool, sb, ev, opts, childIndent); err != nil {
			return err
		}
	}
	return nil
}

func writeYAMLObject(pool *interner.Pool, sb *strings.Builder, obj *value.Object, opts YAMLOptions, indent string) error {
	names, err := fieldNames(obj, opts.PreserveOrder)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		sb.WriteString("{}")
		return nil
	}
	for i, name := range names {
		if i > 0 {
			sb.WriteString("\n")
			sb.WriteString(indent)
		}
		if !opts.QuoteKeys && !yamlNeedsQuotes(name) {
			sb.WriteString(name)
		} else {
			sb.WriteString(value.JSONEscapeString(name))
		}
		sb.WriteString(":")

		fv, err := fieldValue(pool, obj, name)
		if err != nil {
			return err
		}
		childIndent := indent
		switch {
		case isNonEmptyArray(fv):
			sb.WriteString("\n")
			sb.WriteString(indent)
			sb.WriteString(opts.ArrElementPadding)
			childIndent = indent + opts.ArrElementPadding
		case isNonEmptyObject(fv):
			sb.WriteString("\n")
			sb.WriteString(indent)
			sb.WriteString(opts.Padding)
			childIndent = indent + opts.Padding
		default:
			sb.WriteString(" ")
		}
		if err := writeYAML(pool, sb, fv, opts, childIndent); err != nil {
			return err
		}
	}
	return nil
}

func isNonEmptyArray(v value.Value) bool {
	a, ok := v.(value.Array)
	return ok && a.Len() > 0
}

func isNonEmptyObject(v value.Value) bool {
	o, ok := v.(*value.Object)
	return ok && len(o.FieldNames(true, false)) > 0
}

func isNonEmptyCollection(v value.Value) bool {
	return isNonEmptyArray(v) || isNonEmptyObject(v)
}

// YAMLStream renders arr as a YAML document stream (spec §4.8 "YAML
// stream"): one "---\n<item>\n" block per element, terminated by a final
// "...\n" line. Nesting a stream inside itself, or manifesting a bare
// string as a stream item, is rejected per spec's stream-specific error
// kinds.
func YAMLStream(pool *interner.Pool, v value.Value, opts YAMLOptions) (string, error) {
	arr, ok := v.(value.Array)
	if !ok {
		return "", errors.New(errors.StreamManifestOutputIsNotAArray, "YAML stream manifestation requires an array at the top level, got %s", v.Kind())
	}

	var sb strings.Builder
	n := arr.Len()
	for i := 0; i < n; i++ {
		item, err := arr.At(i).Force()
		if err != nil {
			return "", err
		}
		if _, ok := item.(value.Array); ok {
			return "", errors.New(errors.StreamManifestOutputCannotBeRecursed, "YAML stream items cannot themselves be streamed (element %d is an array)", i)
		}
		if _, ok := item.(value.String); ok {
			return "", errors.New(errors.StreamManifestCannotNestString, "YAML stream items cannot be bare strings (element %d)", i)
		}
		sb.WriteString("---\n")
		if err := writeYAML(pool, &sb, item, opts, ""); err != nil {
			return "", err
		}
		sb.WriteString("\n")
	}
	sb.WriteString("...\n")
	return sb.String(), nil
}

// ToStringManifest implements the `StringManifestOutputIsNotAString` rule:
// a String-format manifestation target must itself already be a string.
func ToStringManifest(pool *interner.Pool, v value.Value) (string, error) {
	s, ok := v.(value.String)
	if !ok {
		return "", errors.New(errors.StringManifestOutputIsNotAString, "string manifestation requires a string value, got %s", v.Kind())
	}
	return s.Go(), nil
}

// MultiManifest implements std.manifestJsonMulti-style output: the value
// must be an object whose every field itself manifests (typically to
// JSON), keyed by field name (spec's *MultiManifestOutputIsNotAObject*).
func MultiManifest(pool *interner.Pool, v value.Value, opts JSONOptions) (map[string]string, error) {
	obj, ok := v.(*value.Object)
	if !ok {
		return nil, errors.New(errors.MultiManifestOutputIsNotAObject, "multi-manifestation requires an object at the top level, got %s", v.Kind())
	}
	names, err := fieldNames(obj, opts.PreserveOrder)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		fv, err := fieldValue(pool, obj, name)
		if err != nil {
			return nil, err
		}
		text, err := JSON(pool, fv, opts)
		if err != nil {
			return nil, err
		}
		out[name] = text
	}
	return out, nil
}
