package ttparse

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/turniptext/turniptext/internal/ttdiag"
	"github.com/turniptext/turniptext/internal/ttdom"
	"github.com/turniptext/turniptext/internal/tteval"
)

// fakeEvaluator resolves code spans by exact trimmed source text, the
// same pattern internal/tteval's own tests use: no real host language
// is involved, only canned results keyed by the code string.
type fakeEvaluator struct {
	results map[string]any
	sources map[string]fakeSource
}

type fakeSource struct{ name, contents string }

func (f *fakeEvaluator) Compile(code string, mode ttdiag.CompileMode) (tteval.CompiledUnit, error) {
	return code, nil
}

func (f *fakeEvaluator) Eval(unit tteval.CompiledUnit, globals tteval.Namespace) (any, error) {
	code := unit.(string)
	if s, ok := f.sources[code]; ok {
		return &tteval.Source{Name: s.name, Contents: s.contents}, nil
	}
	if v, ok := f.results[code]; ok {
		return v, nil
	}
	return nil, nil
}

func (f *fakeEvaluator) IsIndentationError(err error) bool { return false }
func (f *fakeEvaluator) IsSyntaxError(err error) bool      { return false }

func TestParseSimpleParagraph(t *testing.T) {
	doc, err := Parse("doc.tt", "hello world\n", &fakeEvaluator{}, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Content.Blocks))
	}
	para, ok := doc.Content.Blocks[0].(*ttdom.Paragraph)
	if !ok {
		t.Fatalf("expected Paragraph, got %T", doc.Content.Blocks[0])
	}
	if len(para.Sentences) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(para.Sentences))
	}
}

func TestParseEmptyAmbiguousScopeWrapsInParagraph(t *testing.T) {
	doc, err := Parse("doc.tt", "{}", &fakeEvaluator{}, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Content.Blocks))
	}
	para, ok := doc.Content.Blocks[0].(*ttdom.Paragraph)
	if !ok {
		t.Fatalf("expected Paragraph, got %T", doc.Content.Blocks[0])
	}
	if len(para.Sentences) != 1 || len(para.Sentences[0].Inlines) != 1 {
		t.Fatalf("expected one sentence with one inline, got %#v", para.Sentences)
	}
	if _, ok := para.Sentences[0].Inlines[0].(*ttdom.InlineScope); !ok {
		t.Fatalf("expected InlineScope as the sole inline, got %T", para.Sentences[0].Inlines[0])
	}
}

func TestParseBlockModeAmbiguousScope(t *testing.T) {
	doc, err := Parse("doc.tt", "{\nhello\n\n}", &fakeEvaluator{}, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Content.Blocks))
	}
	if _, ok := doc.Content.Blocks[0].(*ttdom.BlockScope); !ok {
		t.Fatalf("expected nested BlockScope, got %T", doc.Content.Blocks[0])
	}
}

func TestParseHashesFusedIntoRawScope(t *testing.T) {
	doc, err := Parse("doc.tt", "#{raw [brackets] here}#", &fakeEvaluator{}, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	para := doc.Content.Blocks[0].(*ttdom.Paragraph)
	raw, ok := para.Sentences[0].Inlines[0].(*ttdom.RawText)
	if !ok {
		t.Fatalf("expected RawText, got %T", para.Sentences[0].Inlines[0])
	}
	if raw.Content != "raw [brackets] here" {
		t.Fatalf("unexpected raw content %q", raw.Content)
	}
}

func TestParseInsufficientBlockSeparationErrors(t *testing.T) {
	_, err := Parse("doc.tt", "[x]\n[y]", &fakeEvaluator{results: map[string]any{
		"x": "a", "y": "b",
	}}, nil, nil, 0)
	var target *ttdiag.InsufficientBlockSeparation
	if !errors.As(err, &target) {
		t.Fatalf("expected InsufficientBlockSeparation, got %v", err)
	}
}

func TestParseHyphenSubstitution(t *testing.T) {
	doc, err := Parse("doc.tt", "em---dash en--dash\n", &fakeEvaluator{}, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	para := doc.Content.Blocks[0].(*ttdom.Paragraph)
	var got string
	for _, in := range para.Sentences[0].Inlines {
		if tx, ok := in.(*ttdom.Text); ok {
			got += tx.Content
		}
	}
	if got != "em—dash en–dash" {
		t.Fatalf("unexpected substitution result %q", got)
	}
}

func TestParseFileInclusion(t *testing.T) {
	fs := afero.NewMemMapFs()
	ev := &fakeEvaluator{sources: map[string]fakeSource{
		"inc": {name: "included.tt", contents: "included text\n"},
	}}
	doc, err := Parse("doc.tt", "[inc]\n", ev, nil, fs, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Content.Blocks))
	}
	if _, ok := doc.Content.Blocks[0].(*ttdom.BlockScope); !ok {
		t.Fatalf("expected included content as a BlockScope, got %T", doc.Content.Blocks[0])
	}
}
