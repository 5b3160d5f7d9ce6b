package state

import (
	"strings"
	"testing"

	"github.com/madkinsz/jrsonnet/internal/ast"
	"github.com/madkinsz/jrsonnet/internal/errors"
	"github.com/madkinsz/jrsonnet/internal/interner"
	"github.com/madkinsz/jrsonnet/internal/value"
)

type stubImporter struct {
	imported  map[string]value.Value
	importErr error
	calls     int
}

func (s *stubImporter) ResolveFile(fromDir, path string) (string, error) {
	return fromDir + "/" + path, nil
}

func (s *stubImporter) Import(resolved string) (value.Value, error) {
	s.calls++
	if s.importErr != nil {
		return nil, s.importErr
	}
	return s.imported[resolved], nil
}

func (s *stubImporter) ImportStr(resolved string) (value.String, error) {
	s.calls++
	return value.String{}, nil
}

func (s *stubImporter) ImportBin(resolved string) (value.Array, error) {
	s.calls++
	return value.NewEagerArray(nil), nil
}

func newTestState() (*State, *stubImporter) {
	imp := &stubImporter{imported: map[string]value.Value{"root/a.jsonnet": value.NullValue}}
	return New(interner.NewPool(), imp), imp
}

func TestNew_Defaults(t *testing.T) {
	s, _ := newTestState()
	if s.MaxTrace() != 20 {
		t.Errorf("expected default max trace 20, got %d", s.MaxTrace())
	}
	if s.TraceFormat() != TraceFormatCompact {
		t.Errorf("expected default compact trace format")
	}
}

func TestState_RegisterAndLookupBuiltin(t *testing.T) {
	s, _ := newTestState()
	if _, ok := s.Builtin("length"); ok {
		t.Fatalf("expected no builtin registered yet")
	}
	fn := &value.StaticBuiltin{Name: "length"}
	s.RegisterBuiltin("length", fn)
	got, ok := s.Builtin("length")
	if !ok {
		t.Fatalf("expected length to be registered")
	}
	if got.(*value.StaticBuiltin).Name != "length" {
		t.Errorf("got wrong builtin back: %+v", got)
	}
}

func TestState_Push_DecoratesErrorWithFrame(t *testing.T) {
	s, _ := newTestState()
	loc := ast.Location{File: "a.jsonnet", Line: 3, Column: 5}
	_, err := s.Push(loc, "evaluating x", func() (value.Value, error) {
		return nil, errors.New(errors.RuntimeError, "boom")
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if len(e.Frames) != 1 || e.Frames[0].Loc != loc || e.Frames[0].Desc != "evaluating x" {
		t.Errorf("frame not attached correctly: %+v", e.Frames)
	}
}

func TestState_Push_NestedFramesInnermostFirst(t *testing.T) {
	s, _ := newTestState()
	outer := ast.Location{File: "a.jsonnet", Line: 1, Column: 1}
	inner := ast.Location{File: "a.jsonnet", Line: 2, Column: 1}

	_, err := s.Push(outer, "outer", func() (value.Value, error) {
		return s.Push(inner, "inner", func() (value.Value, error) {
			return nil, errors.New(errors.RuntimeError, "boom")
		})
	})
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if len(e.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(e.Frames))
	}
	if e.Frames[0].Desc != "inner" || e.Frames[1].Desc != "outer" {
		t.Errorf("unexpected frame order: %+v", e.Frames)
	}
}

func TestState_Push_StackUnwindsOnSuccess(t *testing.T) {
	s, _ := newTestState()
	loc := ast.Location{File: "a.jsonnet", Line: 1, Column: 1}
	_, err := s.Push(loc, "ok", func() (value.Value, error) {
		if len(s.Frames()) != 1 {
			t.Errorf("expected 1 live frame during action, got %d", len(s.Frames()))
		}
		return value.NullValue, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Frames()) != 0 {
		t.Errorf("expected frame stack to unwind after Push returns, got %d", len(s.Frames()))
	}
}

func TestState_PushFile_TracksCurrentFile(t *testing.T) {
	s, _ := newTestState()
	if s.CurrentFile() != "" {
		t.Fatalf("expected no current file initially")
	}
	loc := ast.Location{File: "b.jsonnet", Line: 1, Column: 1}
	_, err := s.PushFile(loc, "b.jsonnet", func() (value.Value, error) {
		if s.CurrentFile() != "b.jsonnet" {
			t.Errorf("expected current file to be b.jsonnet during action, got %q", s.CurrentFile())
		}
		return value.NullValue, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CurrentFile() != "" {
		t.Errorf("expected current file to revert after PushFile returns, got %q", s.CurrentFile())
	}
}

func TestState_Import_MemoizesByResolvedPath(t *testing.T) {
	s, imp := newTestState()
	v1, err := s.Import("root/a.jsonnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := s.Import("root/a.jsonnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v1 != v2 {
		t.Errorf("expected memoized import to return the same value")
	}
	if imp.calls != 1 {
		t.Errorf("expected importer to be called once, got %d calls", imp.calls)
	}
}

func TestFormatTrace_CompactListsLocationsOnly(t *testing.T) {
	err := errors.New(errors.RuntimeError, "boom").
		Push(errors.Frame{Loc: ast.Location{File: "a.jsonnet", Line: 1, Column: 1}, Desc: "outer"}).
		Push(errors.Frame{Loc: ast.Location{File: "a.jsonnet", Line: 2, Column: 3}, Desc: "inner"})

	out := FormatTrace(err, TraceFormatCompact, 0)
	if !strings.Contains(out, "a.jsonnet:2:3") || !strings.Contains(out, "a.jsonnet:1:1") {
		t.Errorf("expected both locations in compact trace, got %q", out)
	}
	if strings.Contains(out, "outer") || strings.Contains(out, "inner") {
		t.Errorf("compact format should not include frame descriptions, got %q", out)
	}
}

func TestFormatTrace_ExplainingIncludesDescriptions(t *testing.T) {
	err := errors.New(errors.RuntimeError, "boom").
		Push(errors.Frame{Loc: ast.Location{File: "a.jsonnet", Line: 1, Column: 1}, Desc: "evaluating x"})

	out := FormatTrace(err, TraceFormatExplaining, 0)
	if !strings.Contains(out, "evaluating x") {
		t.Errorf("expected description in explaining trace, got %q", out)
	}
}

func TestFormatTrace_TruncatesToMaxTrace(t *testing.T) {
	err := errors.New(errors.RuntimeError, "boom")
	for i := 0; i < 5; i++ {
		err = err.Push(errors.Frame{Loc: ast.Location{File: "a.jsonnet", Line: i + 1, Column: 1}, Desc: "frame"})
	}
	out := FormatTrace(err, TraceFormatCompact, 2)
	if !strings.Contains(out, "3 more frame(s) elided") {
		t.Errorf("expected truncation note, got %q", out)
	}
}
