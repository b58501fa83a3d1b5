// Package ttdom defines the turnip-text document tree: the structural
// container nodes the parser assembles (BlockScope, Paragraph,
// Sentence, InlineScope, Text, RawText, DocSegment, Document) plus the
// capability interfaces that let an arbitrary evaluated user-code value
// participate in that tree (Header, and the three *Builder kinds).
//
// spec.md §1 lists the DOM as a host-provided collaborator specified
// only by interface; in this Go embedding there is no cross-language
// boundary to punt the container types across, so this package owns
// them directly. What genuinely stays host-side — because it comes
// out of whatever language the embedded evaluator runs — is any value
// claiming the Header or *Builder capabilities, which is why those
// remain pure interfaces with no concrete implementation here.
package ttdom

import "github.com/turniptext/turniptext/internal/ttspan"

// Block is implemented by every node that may appear directly inside
// a BlockScope.
type Block interface {
	Span() ttspan.Span
	isBlock()
}

// Inline is implemented by every node that may appear directly inside
// a Sentence or InlineScope.
type Inline interface {
	Span() ttspan.Span
	isInline()
}

// Header is the capability an evaluated user-code value must expose to
// drive document segmentation (spec.md §4.5). Lower weight nests
// outer; weight equality between siblings is explicitly permitted
// (spec.md §9).
type Header interface {
	Weight() int
}

// BlockScopeBuilder is the capability an evaluated user-code value
// exposes to consume the content of a following block scope instead of
// the scope producing a plain BlockScope. A single value may satisfy
// more than one *Builder capability simultaneously — dispatch is by
// the scope kind that follows, not by which capabilities the value
// happens to have (spec.md §9, §4.3 of original_source/src/python/typeclass.rs).
type BlockScopeBuilder interface {
	BuildFromBlocks(*BlockScope) (any, error)
}

// InlineScopeBuilder is the inline-scope analogue of BlockScopeBuilder.
type InlineScopeBuilder interface {
	BuildFromInlines(*InlineScope) (any, error)
}

// RawScopeBuilder is the raw-scope analogue of BlockScopeBuilder.
type RawScopeBuilder interface {
	BuildFromRaw(string) (any, error)
}

// BlockScope is an ordered sequence of Block nodes, produced by a `{`
// scope resolved to block mode, or as the root content of a Document
// or DocSegment.
type BlockScope struct {
	Blocks []Block
	Sp     ttspan.Span
}

func (b *BlockScope) Span() ttspan.Span { return b.Sp }
func (*BlockScope) isBlock()            {}

// Sentence is an ordered sequence of Inline nodes ending at a sentence
// break (a single Newline inside a Paragraph) or the paragraph's end.
type Sentence struct {
	Inlines []Inline
	Sp      ttspan.Span
}

func (s *Sentence) Span() ttspan.Span { return s.Sp }

// Paragraph is an ordered sequence of Sentences.
type Paragraph struct {
	Sentences []*Sentence
	Sp        ttspan.Span
}

func (p *Paragraph) Span() ttspan.Span { return p.Sp }
func (*Paragraph) isBlock()            {}

// InlineScope is an ordered sequence of Inline nodes produced by a `{`
// scope resolved to inline mode.
type InlineScope struct {
	Inlines []Inline
	Sp      ttspan.Span
}

func (s *InlineScope) Span() ttspan.Span { return s.Sp }
func (*InlineScope) isInline()           {}

// Text is a leaf inline node holding literal prose, after hyphen
// substitution (spec.md §4.11).
type Text struct {
	Content string
	Sp      ttspan.Span
}

func (t *Text) Span() ttspan.Span { return t.Sp }
func (*Text) isInline()           {}

// RawText is a leaf inline node holding the exact, unsubstituted
// content of a raw scope.
type RawText struct {
	Content string
	Sp      ttspan.Span
}

func (t *RawText) Span() ttspan.Span { return t.Sp }
func (*RawText) isInline()           {}

// DocSegment is the content governed by one Header: the blocks
// directly under it, plus any nested sub-segments whose header weight
// is strictly greater (spec.md §3 invariant 2).
type DocSegment struct {
	Header     Header
	Content    *BlockScope
	Subsegments []*DocSegment
	Sp         ttspan.Span
}

func (d *DocSegment) Span() ttspan.Span { return d.Sp }

// Document is the root of a successful parse: the content preceding
// any header, plus the top-level segments headers introduced.
type Document struct {
	Content  *BlockScope
	Segments []*DocSegment
}
