// Package ttspan tracks source positions and spans for the turnip-text
// lexer and parser. Frames never hold pointers into source buffers —
// only these spans — so the file table they reference can grow (or be
// reallocated) safely while parsing is suspended mid-file.
package ttspan

import "fmt"

// Position is a single point in a source file: line/column for human
// display, plus byte and character offsets for slicing and re-slicing
// the underlying buffer.
type Position struct {
	FileIndex  int
	Line       int // 1-based
	Column     int // 1-based
	ByteOffset int
	CharOffset int
}

// NewPosition returns the position at the start of the given file.
func NewPosition(fileIndex int) Position {
	return Position{FileIndex: fileIndex, Line: 1, Column: 1}
}

// AdvanceCols moves the position forward within the current line by
// nBytes bytes and nChars characters. It must not be used to cross a
// newline; use AdvanceLine for that.
func (p Position) AdvanceCols(nBytes, nChars int) Position {
	p.Column += nChars
	p.ByteOffset += nBytes
	p.CharOffset += nChars
	return p
}

// AdvanceLine moves the position past a single logical newline,
// resetting the column and incrementing the line. nBytes is the number
// of raw bytes the newline occupied in the source (1 for "\n" or "\r",
// 2 for "\r\n") — newline folding to a single logical line happens in
// the lexer, not here, so AdvanceLine always adds exactly one line and
// one character regardless of nBytes.
func (p Position) AdvanceLine(nBytes int) Position {
	p.Line++
	p.Column = 1
	p.ByteOffset += nBytes
	p.CharOffset++
	return p
}

// Span is a half-open-by-convention region `[Start, End]` within a
// single file. Start and End always share a FileIndex.
type Span struct {
	FileIndex int
	Start     Position
	End       Position
}

// NewSpan builds a span from two positions in the same file. It panics
// if the positions disagree on file index, since that would indicate a
// caller bug rather than a parse-time condition.
func NewSpan(start, end Position) Span {
	if start.FileIndex != end.FileIndex {
		panic("ttspan: NewSpan across file boundary")
	}
	return Span{FileIndex: start.FileIndex, Start: start, End: end}
}

// Single returns a zero-width span at p.
func Single(p Position) Span {
	return Span{FileIndex: p.FileIndex, Start: p, End: p}
}

// ErrCrossFile is returned by Extend when asked to absorb a span from a
// different file — extension across files signals a cross-file
// element, which the caller must reject rather than silently widen.
var ErrCrossFile = fmt.Errorf("ttspan: cannot extend span across file boundary")

// Extend returns a span covering s and then absorbing other, which must
// start at or after s and share its file index. Extend is used to grow
// a ParseContext's tracked region as more tokens are folded into it.
func (s Span) Extend(other Span) (Span, error) {
	if s.FileIndex != other.FileIndex {
		return Span{}, ErrCrossFile
	}
	end := s.End
	if other.End.ByteOffset > end.ByteOffset {
		end = other.End
	}
	return Span{FileIndex: s.FileIndex, Start: s.Start, End: end}, nil
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func (s Span) String() string {
	if s.Start == s.End {
		return s.Start.String()
	}
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Context describes an extended parsed region — a paragraph, a block
// scope, an in-progress document — as three spans: the first token
// that opened it, the last token that contributed actual content, and
// the last token consumed so far. All three always share a file index.
type Context struct {
	FirstToken  Span
	LastContent Span
	LastToken   Span
}

// NewContext starts a context at the given opening token span.
func NewContext(first Span) Context {
	return Context{FirstToken: first, LastContent: first, LastToken: first}
}

// FileIndex returns the file all three spans of c belong to.
func (c Context) FileIndex() int {
	return c.FirstToken.FileIndex
}

// ExtendToken folds tok into the context as the most recently consumed
// token, without counting it as content (e.g. trailing whitespace).
func (c Context) ExtendToken(tok Span) (Context, error) {
	if tok.FileIndex != c.FileIndex() {
		return Context{}, ErrCrossFile
	}
	c.LastToken = tok
	return c, nil
}

// ExtendContent folds tok into the context as both the most recent
// token and the most recent content, e.g. a word, a nested element.
func (c Context) ExtendContent(tok Span) (Context, error) {
	c, err := c.ExtendToken(tok)
	if err != nil {
		return Context{}, err
	}
	c.LastContent = tok
	return c, nil
}

// Full returns the span from the first token through the last token
// consumed (including trailing non-content tokens), used to describe
// the whole extent of the context for error reporting.
func (c Context) Full() Span {
	full, err := c.FirstToken.Extend(c.LastToken)
	if err != nil {
		// FirstToken and LastToken are only ever extended together
		// from the same file by ExtendToken/ExtendContent, so this
		// cannot happen outside of a caller bug.
		panic(err)
	}
	return full
}

// Content returns the span from the first token through the last token
// that contributed actual content, excluding any trailing separators.
func (c Context) Content() Span {
	content, err := c.FirstToken.Extend(c.LastContent)
	if err != nil {
		panic(err)
	}
	return content
}
