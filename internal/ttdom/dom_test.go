package ttdom

import (
	"testing"

	"github.com/turniptext/turniptext/internal/ttspan"
)

var (
	_ Block  = (*BlockScope)(nil)
	_ Block  = (*Paragraph)(nil)
	_ Inline = (*InlineScope)(nil)
	_ Inline = (*Text)(nil)
	_ Inline = (*RawText)(nil)
)

type fakeHeader struct{ w int }

func (f fakeHeader) Weight() int { return f.w }

func TestHeaderCapability(t *testing.T) {
	var h Header = fakeHeader{w: 2}
	if h.Weight() != 2 {
		t.Fatalf("expected weight 2, got %d", h.Weight())
	}
}

type fakeBuilder struct{}

func (fakeBuilder) BuildFromBlocks(bs *BlockScope) (any, error)   { return bs, nil }
func (fakeBuilder) BuildFromInlines(is *InlineScope) (any, error) { return is, nil }
func (fakeBuilder) BuildFromRaw(s string) (any, error)            { return &RawText{Content: s}, nil }

func TestBuilderCapabilitiesAreNonExclusive(t *testing.T) {
	var v any = fakeBuilder{}
	_, okBlock := v.(BlockScopeBuilder)
	_, okInline := v.(InlineScopeBuilder)
	_, okRaw := v.(RawScopeBuilder)
	if !okBlock || !okInline || !okRaw {
		t.Fatalf("expected a single value to satisfy all three builder capabilities")
	}
}

func TestDocumentTreeShape(t *testing.T) {
	sp := ttspan.Single(ttspan.NewPosition(0))
	para := &Paragraph{Sp: sp, Sentences: []*Sentence{
		{Sp: sp, Inlines: []Inline{&Text{Content: "hi", Sp: sp}}},
	}}
	doc := &Document{Content: &BlockScope{Sp: sp, Blocks: []Block{para}}}
	if len(doc.Content.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Content.Blocks))
	}
}
