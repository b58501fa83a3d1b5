package turniptext

import (
	"errors"
	"testing"

	"github.com/turniptext/turniptext/internal/ttdiag"
)

func TestParseWithNullEvaluatorIsInert(t *testing.T) {
	doc, err := Parse("doc.tt", "[some_code]\nhello world\n", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content.Blocks) == 0 {
		t.Fatal("expected at least one block")
	}
}

func TestParseReturnsRenderableParseError(t *testing.T) {
	_, err := Parse("doc.tt", "{\nunterminated", nil)
	if err == nil {
		t.Fatal("expected an error for an unterminated scope")
	}
	var pe *ttdiag.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a *ttdiag.ParseError, got %T", err)
	}
	if pe.Files == nil {
		t.Fatal("expected ParseError to carry a file table")
	}
}

func TestWithRecursionLimitIsHonored(t *testing.T) {
	_, err := Parse("doc.tt", "no includes here\n", nil, WithRecursionLimit(1))
	if err != nil {
		t.Fatalf("unexpected error with a file stack that never grows: %v", err)
	}
}
