package manifest

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/value"
)

func str(pool *interner.Pool, s string) value.Value {
	h, err := pool.InternString(s)
	if err != nil {
		panic(err)
	}
	return value.NewString(h)
}

func num(n float64) value.Value {
	v, _ := value.NewNumber(n)
	return v
}

func sampleObject(pool *interner.Pool) value.Value {
	builder := value.NewObjValueBuilder()
	_ = builder.Member("name").Bindable(func(super, this *value.Object) (*value.Thunk, error) {
		return value.Done(str(pool, "jrsonnet")), nil
	})
	_ = builder.Member("tags").Bindable(func(super, this *value.Object) (*value.Thunk, error) {
		return value.Done(value.NewEagerArray([]value.Value{str(pool, "fast"), str(pool, "lazy")})), nil
	})
	_ = builder.Member("meta").Bindable(func(super, this *value.Object) (*value.Thunk, error) {
		inner := value.NewObjValueBuilder()
		_ = inner.Member("stable").Bindable(func(super, this *value.Object) (*value.Thunk, error) {
			return value.Done(value.Bool(true)), nil
		})
		return value.Done(inner.Build(nil)), nil
	})
	return builder.Build(nil)
}

func TestJSON_ManifestMode(t *testing.T) {
	pool := interner.NewPool()
	out, err := JSON(pool, sampleObject(pool), DefaultJSONOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestJSON_Minify(t *testing.T) {
	pool := interner.NewPool()
	opts := DefaultJSONOptions()
	opts.Mode = ModeMinify
	out, err := JSON(pool, sampleObject(pool), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestJSON_ToString(t *testing.T) {
	pool := interner.NewPool()
	opts := DefaultJSONOptions()
	opts.Mode = ModeToString
	out, err := JSON(pool, sampleObject(pool), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestJSON_EmptyCollectionsPerMode(t *testing.T) {
	pool := interner.NewPool()
	empty := value.NewEagerArray(nil)

	manifestOut, _ := JSON(pool, empty, DefaultJSONOptions())
	if manifestOut != "[]" {
		t.Errorf("Manifest mode: expected []  got %q", manifestOut)
	}

	toStringOpts := DefaultJSONOptions()
	toStringOpts.Mode = ModeToString
	toStringOut, _ := JSON(pool, empty, toStringOpts)
	if toStringOut != "[ ]" {
		t.Errorf("ToString mode: expected [ ], got %q", toStringOut)
	}

	stdOpts := DefaultJSONOptions()
	stdOpts.Mode = ModeStd
	stdOut, _ := JSON(pool, empty, stdOpts)
	if stdOut != "[\n\n]" {
		t.Errorf("Std mode: expected \"[\\n\\n]\", got %q", stdOut)
	}
}

func TestYAML_Manifest(t *testing.T) {
	pool := interner.NewPool()
	out, err := YAML(pool, sampleObject(pool), DefaultYAMLOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestYAML_ScalarQuotingPredicate(t *testing.T) {
	cases := map[string]bool{
		"plain":    false,
		"":         true,
		" leading": true,
		"true":     true,
		"null":     true,
		"~":        true,
		"1970-01-01": true,
		".5":        true,
		"0xFF":      true,
		"123":       true,
		"1.5":       true,
		"a: b":      true,
		"has\ttab":  true,
	}
	for s, want := range cases {
		if got := yamlNeedsQuotes(s); got != want {
			t.Errorf("yamlNeedsQuotes(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestYAML_BlockLiteralForTrailingNewline(t *testing.T) {
	pool := interner.NewPool()
	v := str(pool, "line one\nline two\n")
	out, err := YAML(pool, v, DefaultYAMLOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestYAMLStream_FramesEachElement(t *testing.T) {
	pool := interner.NewPool()
	arr := value.NewEagerArray([]value.Value{num(1), num(2)})
	out, err := YAMLStream(pool, arr, DefaultYAMLOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, out)
}

func TestYAMLStream_RejectsNonArray(t *testing.T) {
	pool := interner.NewPool()
	_, err := YAMLStream(pool, num(1), DefaultYAMLOptions())
	if err == nil {
		t.Fatalf("expected an error for a non-array stream target")
	}
}

func TestYAMLStream_RejectsNestedArray(t *testing.T) {
	pool := interner.NewPool()
	arr := value.NewEagerArray([]value.Value{value.NewEagerArray([]value.Value{num(1)})})
	_, err := YAMLStream(pool, arr, DefaultYAMLOptions())
	if err == nil {
		t.Fatalf("expected an error for a nested array stream element")
	}
}

func TestYAMLStream_RejectsBareString(t *testing.T) {
	pool := interner.NewPool()
	arr := value.NewEagerArray([]value.Value{str(pool, "hello")})
	_, err := YAMLStream(pool, arr, DefaultYAMLOptions())
	if err == nil {
		t.Fatalf("expected an error for a bare string stream element")
	}
}

func TestToStringManifest_RequiresString(t *testing.T) {
	pool := interner.NewPool()
	if _, err := ToStringManifest(pool, num(1)); err == nil {
		t.Fatalf("expected an error manifesting a number as a string")
	}
	out, err := ToStringManifest(pool, str(pool, "ok"))
	if err != nil || out != "ok" {
		t.Fatalf("expected \"ok\", got %q, err=%v", out, err)
	}
}

func TestMultiManifest_RequiresObject(t *testing.T) {
	pool := interner.NewPool()
	if _, err := MultiManifest(pool, num(1), DefaultJSONOptions()); err == nil {
		t.Fatalf("expected an error multi-manifesting a number")
	}
	out, err := MultiManifest(pool, sampleObject(pool), DefaultJSONOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out["name"]; !ok {
		t.Errorf("expected a \"name\" key in multi-manifest output, got %v", out)
	}
}
