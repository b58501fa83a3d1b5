package ttspan

import "testing"

func TestPositionAdvanceCols(t *testing.T) {
	p := NewPosition(0)
	p = p.AdvanceCols(3, 3)
	if p.Line != 1 || p.Column != 4 || p.ByteOffset != 3 || p.CharOffset != 3 {
		t.Fatalf("unexpected position after AdvanceCols: %+v", p)
	}
}

func TestPositionAdvanceLine(t *testing.T) {
	p := NewPosition(0)
	p = p.AdvanceCols(2, 2) // "ab"
	p = p.AdvanceLine(2)    // "\r\n" -- 2 bytes, still one line/char
	if p.Line != 2 || p.Column != 1 || p.ByteOffset != 4 || p.CharOffset != 3 {
		t.Fatalf("unexpected position after AdvanceLine: %+v", p)
	}
}

func TestSpanExtendSameFile(t *testing.T) {
	a := Single(NewPosition(0).AdvanceCols(1, 1))
	b := Single(NewPosition(0).AdvanceCols(5, 5))
	got, err := a.Extend(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Start != a.Start || got.End != b.End {
		t.Fatalf("unexpected extended span: %+v", got)
	}
}

func TestSpanExtendCrossFile(t *testing.T) {
	a := Single(NewPosition(0))
	b := Single(NewPosition(1))
	if _, err := a.Extend(b); err != ErrCrossFile {
		t.Fatalf("expected ErrCrossFile, got %v", err)
	}
}

func TestContextFullAndContent(t *testing.T) {
	first := Single(NewPosition(0))
	ctx := NewContext(first)

	content := Single(NewPosition(0).AdvanceCols(5, 5))
	ctx, err := ctx.ExtendContent(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trailing := Single(NewPosition(0).AdvanceCols(8, 8))
	ctx, err = ctx.ExtendToken(trailing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ctx.Content().End != content.End {
		t.Fatalf("Content() should stop at last content token")
	}
	if ctx.Full().End != trailing.End {
		t.Fatalf("Full() should include trailing token")
	}
}
