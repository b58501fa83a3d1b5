package ttlex

import (
	"fmt"
	"unicode/utf8"

	"github.com/turniptext/turniptext/internal/ttspan"
)

// NulByteError is returned by New when the source contains a NUL byte.
// It is reported before lexing begins, per spec.md §6.1.
type NulByteError struct {
	Pos ttspan.Position
}

func (e *NulByteError) Error() string {
	return fmt.Sprintf("NUL byte found in source at %s", e.Pos)
}

// Lexer is a deterministic single-pass scanner over one file's source
// text. It is not safe for concurrent use; the turnip-text parser is
// single-threaded by design (spec.md §5).
type Lexer struct {
	fileIndex int
	input     string

	pos   ttspan.Position // position of the next unread byte
	start ttspan.Position // position of the start of the token in progress

	eof bool
}

// New constructs a Lexer over contents for the file at fileIndex. It
// rejects a NUL byte anywhere in contents before lexing starts, since
// the lexer's "union of special and non-special covers everything"
// invariant excludes only that one byte.
func New(fileIndex int, contents string) (*Lexer, error) {
	if i := indexByte(contents, 0); i >= 0 {
		pos := NewPositionAt(fileIndex, contents, i)
		return nil, &NulByteError{Pos: pos}
	}
	p := ttspan.NewPosition(fileIndex)
	return &Lexer{fileIndex: fileIndex, input: contents, pos: p, start: p}, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// NewPositionAt recomputes a Position for byte offset off into
// contents, by scanning from the start. Used only for the NUL-byte
// rejection path, which runs once before the hot lexing loop.
func NewPositionAt(fileIndex int, contents string, off int) ttspan.Position {
	p := ttspan.NewPosition(fileIndex)
	i := 0
	for i < off {
		r, size := utf8.DecodeRuneInString(contents[i:])
		if r == '\n' {
			p = p.AdvanceLine(size)
		} else {
			p = p.AdvanceCols(size, 1)
		}
		i += size
	}
	return p
}

func (l *Lexer) atEnd() bool { return l.pos.ByteOffset >= len(l.input) }

func (l *Lexer) byteAt(off int) (byte, bool) {
	if off >= len(l.input) {
		return 0, false
	}
	return l.input[off], true
}

func (l *Lexer) peekByte() (byte, bool) { return l.byteAt(l.pos.ByteOffset) }

// advanceByte consumes exactly one ASCII byte (never a multi-byte
// rune), used for the single-byte structural specials.
func (l *Lexer) advanceByte() byte {
	b := l.input[l.pos.ByteOffset]
	if b == '\n' {
		l.pos = l.pos.AdvanceLine(1)
	} else {
		l.pos = l.pos.AdvanceCols(1, 1)
	}
	return b
}

func (l *Lexer) rawSince(start ttspan.Position) string {
	return l.input[start.ByteOffset:l.pos.ByteOffset]
}

func (l *Lexer) spanSince(start ttspan.Position) ttspan.Span {
	return ttspan.NewSpan(start, l.pos)
}

// countHashes consumes a maximal run of '#' starting at the current
// position and returns how many were consumed.
func (l *Lexer) countHashes() int {
	n := 0
	for {
		b, ok := l.peekByte()
		if !ok || b != '#' {
			break
		}
		l.advanceByte()
		n++
	}
	return n
}

// Next returns the next token from the input, applying the lexer's
// upper-layer rules: classifying all-whitespace OtherText runs as
// Whitespace, and synthesising EOF at stream end (repeatedly, once
// reached). Hyphen substitution (spec.md §4.11) and the Hashes+
// ScopeOpen{0} raw-scope fusion are NOT performed here — those are
// parser-level concerns applied by internal/ttparse, since both need
// context this lexer intentionally does not track.
func (l *Lexer) Next() Token {
	if l.atEnd() {
		l.eof = true
		return Token{Kind: KindEOF, Span: ttspan.Single(l.pos)}
	}

	tok := l.rawNext()
	if tok.Kind == KindOtherText && isAllSpaceOrTab(tok.Raw) {
		tok.Kind = KindWhitespace
	}
	return tok
}

func isAllSpaceOrTab(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return false
		}
	}
	return len(s) > 0
}

// rawNext implements the six priority-ordered disambiguation rules
// from spec.md §4.2.
func (l *Lexer) rawNext() Token {
	start := l.pos
	b, _ := l.peekByte()

	switch b {
	case '\\':
		l.advanceByte()
		if nb, ok := l.peekByte(); ok && IsSpecialByte(nb) {
			l.advanceByte()
			return Token{Kind: KindEscaped, Span: l.spanSince(start), Special: nb, Raw: l.rawSince(start)}
		}
		return Token{Kind: KindBackslash, Span: l.spanSince(start), Raw: l.rawSince(start)}

	case '\r':
		n := 1
		if nb, ok := l.byteAt(l.pos.ByteOffset + 1); ok && nb == '\n' {
			n = 2
		}
		l.pos = l.pos.AdvanceLine(n)
		return Token{Kind: KindNewline, Span: l.spanSince(start), Raw: l.rawSince(start)}

	case '\n':
		l.advanceByte()
		return Token{Kind: KindNewline, Span: l.spanSince(start), Raw: l.rawSince(start)}

	case '[':
		l.advanceByte()
		n := l.countHashes()
		return Token{Kind: KindCodeOpen, Span: l.spanSince(start), NHashes: n, Raw: l.rawSince(start)}

	case '{':
		l.advanceByte()
		n := l.countHashes()
		return Token{Kind: KindScopeOpen, Span: l.spanSince(start), NHashes: n, Raw: l.rawSince(start)}

	case '#':
		n := l.countHashes()
		if nb, ok := l.peekByte(); ok && nb == ']' {
			l.advanceByte()
			return Token{Kind: KindCodeClose, Span: l.spanSince(start), NHashes: n, Raw: l.rawSince(start)}
		}
		if nb, ok := l.peekByte(); ok && nb == '}' {
			l.advanceByte()
			return Token{Kind: KindScopeClose, Span: l.spanSince(start), NHashes: n, Raw: l.rawSince(start)}
		}
		return Token{Kind: KindHashes, Span: l.spanSince(start), NHashes: n, Raw: l.rawSince(start)}

	case ']':
		l.advanceByte()
		return Token{Kind: KindCodeClose, Span: l.spanSince(start), NHashes: 0, Raw: l.rawSince(start)}

	case '}':
		l.advanceByte()
		return Token{Kind: KindScopeClose, Span: l.spanSince(start), NHashes: 0, Raw: l.rawSince(start)}

	default:
		for {
			nb, ok := l.peekByte()
			if !ok || IsSpecialByte(nb) {
				break
			}
			_, size := utf8.DecodeRuneInString(l.input[l.pos.ByteOffset:])
			l.pos = l.pos.AdvanceCols(size, 1)
		}
		return Token{Kind: KindOtherText, Span: l.spanSince(start), Raw: l.rawSince(start)}
	}
}

// ScanRaw consumes the exact source text of a raw scope body, starting
// immediately after the opening "#^n{" delimiter, until the first
// occurrence of "}" followed by at least nHashes '#' characters (spec.md
// §4.10). No tokenisation occurs below the character level while
// scanning: the returned content is the verbatim source string. ok is
// false if the input ends before a matching close is found.
func (l *Lexer) ScanRaw(nHashes int) (content string, closeSpan ttspan.Span, ok bool) {
	contentStart := l.pos
	for {
		b, has := l.peekByte()
		if !has {
			return l.rawSince(contentStart), ttspan.Span{}, false
		}
		if b != '}' {
			l.advanceByte()
			continue
		}

		closeStart := l.pos
		l.advanceByte() // consume '}'
		n := l.countHashes()
		if n >= nHashes {
			// Only the first nHashes '#' belong to the delimiter;
			// push any extra hashes back so they lex normally.
			extra := n - nHashes
			l.pos.ByteOffset -= extra
			l.pos.CharOffset -= extra
			l.pos.Column -= extra
			content = l.input[contentStart.ByteOffset:closeStart.ByteOffset]
			return content, l.spanSince(closeStart), true
		}
		// Not enough hashes to close: "}" plus the short hash run are
		// part of the raw content: keep scanning.
	}
}

// Pos returns the lexer's current position (for EOF spans, etc).
func (l *Lexer) Pos() ttspan.Position { return l.pos }

// FileIndex returns the file index this lexer was constructed with.
func (l *Lexer) FileIndex() int { return l.fileIndex }
