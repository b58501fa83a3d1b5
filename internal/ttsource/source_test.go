package ttsource

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/turniptext/turniptext/internal/ttdiag"
	"github.com/turniptext/turniptext/internal/ttspan"
)

func sp() ttspan.Span { return ttspan.Single(ttspan.NewPosition(0)) }

func TestPushNamedAssignsSequentialIndices(t *testing.T) {
	s := NewStack(afero.NewMemMapFs(), 0)
	i0, err := s.PushNamed("top.tt", "hello", sp())
	if err != nil || i0 != 0 {
		t.Fatalf("expected index 0, got %d, err %v", i0, err)
	}
	i1, err := s.PushNamed("included.tt", "world", sp())
	if err != nil || i1 != 1 {
		t.Fatalf("expected index 1, got %d, err %v", i1, err)
	}
	if s.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", s.Depth())
	}
}

func TestPushFileReadsFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "doc.tt", []byte("contents"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStack(fs, 0)
	if _, err := s.PushFile("doc.tt", sp()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Top().Contents != "contents" {
		t.Fatalf("expected contents to be read back, got %q", s.Top().Contents)
	}
}

func TestPopReturnsInnermostAndShrinksDepth(t *testing.T) {
	s := NewStack(afero.NewMemMapFs(), 0)
	s.PushNamed("a.tt", "A", sp())
	s.PushNamed("b.tt", "B", sp())
	f := s.Pop()
	if f.Name != "b.tt" {
		t.Fatalf("expected to pop b.tt, got %s", f.Name)
	}
	if s.Depth() != 1 {
		t.Fatalf("expected depth 1 after pop, got %d", s.Depth())
	}
	if s.Top().Name != "a.tt" {
		t.Fatalf("expected a.tt still open, got %s", s.Top().Name)
	}
}

func TestPushBeyondMaxDepthFails(t *testing.T) {
	s := NewStack(afero.NewMemMapFs(), 2)
	if _, err := s.PushNamed("a.tt", "A", sp()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PushNamed("b.tt", "B", sp()); err != nil {
		t.Fatal(err)
	}
	_, err := s.PushNamed("c.tt", "C", sp())
	var target *ttdiag.FileStackExceededLimit
	if !errors.As(err, &target) {
		t.Fatalf("expected FileStackExceededLimit, got %v", err)
	}
	if target.Limit != 2 {
		t.Fatalf("expected limit 2, got %d", target.Limit)
	}
}

func TestTableIsAppendOnlyAcrossPops(t *testing.T) {
	s := NewStack(afero.NewMemMapFs(), 0)
	idx, _ := s.PushNamed("a.tt", "A", sp())
	s.Pop()
	if s.Table.Len() != 1 {
		t.Fatalf("expected table to retain entry after pop, got len %d", s.Table.Len())
	}
	if s.Table.Get(idx).Name != "a.tt" {
		t.Fatalf("expected table entry preserved, got %v", s.Table.Get(idx))
	}
}

func TestNamesReportsOutermostFirst(t *testing.T) {
	s := NewStack(afero.NewMemMapFs(), 0)
	s.PushNamed("outer.tt", "O", sp())
	s.PushNamed("inner.tt", "I", sp())
	names := s.Names()
	if len(names) != 2 || names[0] != "outer.tt" || names[1] != "inner.tt" {
		t.Fatalf("unexpected names order: %v", names)
	}
}
