package value

import (
	"strings"

	"github.com/madkinsz/jrsonnet/internal/interner"
)

// Stringify renders v the way the `+` operator's string coercion and the
// JSON manifester's ToString mode both require (spec §4.7 "str+anything",
// §4.8 "ToString"): a top-level String renders as its literal content
// (unquoted); everything else renders as single-line, comma-and-space
// separated JSON with `[ ]`/`{ }` for empty arrays/objects. The `+`
// coercion calls this function; internal/manifest's ToString mode renders
// the same shape through its own writer.
func Stringify(pool *interner.Pool, v Value) (string, error) {
	if s, ok := v.(String); ok {
		return s.Go(), nil
	}
	var sb strings.Builder
	if err := writeToString(pool, &sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeToString(pool *interner.Pool, sb *strings.Builder, v Value) error {
	switch vv := v.(type) {
	case Null:
		sb.WriteString("null")
	case Bool:
		if vv {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case Number:
		sb.WriteString(FormatNumber(vv))
	case String:
		sb.WriteString(JSONEscapeString(vv.Go()))
	case Array:
		n := vv.Len()
		if n == 0 {
			sb.WriteString("[ ]")
			return nil
		}
		sb.WriteString("[ ")
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			elem, err := vv.At(i).Force()
			if err != nil {
				return err
			}
			if err := writeToString(pool, sb, elem); err != nil {
				return err
			}
		}
		sb.WriteString(" ]")
	case *Object:
		if err := vv.RunAsserts(vv); err != nil {
			return err
		}
		names := vv.FieldNames(false, false)
		if len(names) == 0 {
			sb.WriteString("{ }")
			return nil
		}
		sb.WriteString("{ ")
		for i, name := range names {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(JSONEscapeString(name))
			sb.WriteString(": ")
			t, _ := vv.Field(pool, name, vv)
			fv, err := t.Force()
			if err != nil {
				return err
			}
			if err := writeToString(pool, sb, fv); err != nil {
				return err
			}
		}
		sb.WriteString(" }")
	case Function:
		return errTypeMismatch("string coercion", []string{"null", "boolean", "number", "string", "array", "object"}, "function")
	}
	return nil
}
