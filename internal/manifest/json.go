package manifest

import (
	"strings"

	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/value"
)

// JSON renders v per opts (spec §4.8's four JSON modes).
func JSON(pool *interner.Pool, v value.Value, opts JSONOptions) (string, error) {
	var sb strings.Builder
	if err := writeJSON(pool, &sb, v, opts, ""); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (o JSONOptions) sep() string {
	if o.Mode == ModeMinify {
		return ","
	}
	if o.Mode == ModeToString {
		return ", "
	}
	return "," + o.Newline
}

func (o JSONOptions) colon() string {
	if o.Mode == ModeMinify {
		return ":"
	}
	return o.KeyValSep
}

func writeJSON(pool *interner.Pool, sb *strings.Builder, v value.Value, opts JSONOptions, indent string) error {
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
		sb.WriteString(value.JSONEscapeString(vv.Go()))
	case value.Array:
		return writeJSONArray(pool, sb, vv, opts, indent)
	case *value.Object:
		return writeJSONObject(pool, sb, vv, opts, indent)
	case value.Function:
		return errors.New(errors.RuntimeError, "cannot manifest a function value")
	}
	return nil
}

func writeJSONArray(pool *interner.Pool, sb *strings.Builder, arr value.Array, opts JSONOptions, indent string) error {
	n := arr.Len()
	if n == 0 {
		switch opts.Mode {
		case ModeToString:
			sb.WriteString("[ ]")
		case ModeMinify:
			sb.WriteString("[]")
		case ModeStd:
			sb.WriteString("[" + opts.Newline + opts.Newline + indent + "]")
		default:
			sb.WriteString("[]")
		}
		return nil
	}

	inner := indent + opts.Padding
	oneLine := opts.Mode == ModeMinify || opts.Mode == ModeToString
	if oneLine {
		sb.WriteString("[")
		if opts.Mode == ModeToString {
			sb.WriteString(" ")
		}
	} else {
		sb.WriteString("[" + opts.Newline)
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(opts.sep())
		}
		if !oneLine {
			sb.WriteString(inner)
		}
		ev, err := arr.At(i).Force()
		if err != nil {
			return err
		}
		if err := writeJSON(pool, sb, ev, opts, inner); err != nil {
			return err
		}
	}
	if oneLine {
		if opts.Mode == ModeToString {
			sb.WriteString(" ")
		}
		sb.WriteString("]")
	} else {
		sb.WriteString(opts.Newline + indent + "]")
	}
	return nil
}

func writeJSONObject(pool *interner.Pool, sb *strings.Builder, obj *value.Object, opts JSONOptions, indent string) error {
	names, err := fieldNames(obj, opts.PreserveOrder)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		switch opts.Mode {
		case ModeToString:
			sb.WriteString("{ }")
		case ModeMinify:
			sb.WriteString("{}")
		case ModeStd:
			sb.WriteString("{" + opts.Newline + opts.Newline + indent + "}")
		default:
			sb.WriteString("{}")
		}
		return nil
	}

	inner := indent + opts.Padding
	oneLine := opts.Mode == ModeMinify || opts.Mode == ModeToString
	if oneLine {
		sb.WriteString("{")
		if opts.Mode == ModeToString {
			sb.WriteString(" ")
		}
	} else {
		sb.WriteString("{" + opts.Newline)
	}
	for i, name := range names {
		if i > 0 {
			sb.WriteString(opts.sep())
		}
		if !oneLine {
			sb.WriteString(inner)
		}
		sb.WriteString(value.JSONEscapeString(name))
		sb.WriteString(opts.colon())
		fv, err := fieldValue(pool, obj, name)
		if err != nil {
			return err
		}
		if err := writeJSON(pool, sb, fv, opts, inner); err != nil {
			return err
		}
	}
	if oneLine {
		if opts.Mode == ModeToString {
			sb.WriteString(" ")
		}
		sb.WriteString("}")
	} else {
		sb.WriteString(opts.Newline + indent + "}")
	}
	return nil
}
