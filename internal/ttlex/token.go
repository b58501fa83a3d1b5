// Package ttlex tokenises turnip-text source into a small alphabet of
// structural tokens, each carrying a span into the source it came
// from. The lexer is a deterministic single pass: it never fails
// except on a NUL byte, found before scanning begins.
package ttlex

import (
	"fmt"

	"github.com/turniptext/turniptext/internal/ttspan"
)

// Kind identifies the structural role of a Token.
type Kind int

const (
	// KindEOF marks the synthetic end-of-stream token. Once emitted,
	// a Lexer keeps emitting it for every subsequent call to Next.
	KindEOF Kind = iota
	// KindEscaped is a backslash followed by one of the structural
	// specials: \r \n \ [ ] { } #.
	KindEscaped
	// KindBackslash is a backslash not followed by a special.
	KindBackslash
	// KindNewline is "\n", "\r", or "\r\n" folded to one token.
	KindNewline
	// KindCodeOpen is "[" followed by NHashes '#' characters.
	KindCodeOpen
	// KindCodeClose is NHashes '#' characters followed by "]".
	KindCodeClose
	// KindScopeOpen is "{" followed by NHashes '#' characters.
	KindScopeOpen
	// KindScopeClose is NHashes '#' characters followed by "}".
	KindScopeClose
	// KindHashes is a maximal run of '#' not participating in an
	// open/close bracket.
	KindHashes
	// KindOtherText is a maximal run of non-special characters.
	KindOtherText
	// KindWhitespace is KindOtherText consisting only of spaces/tabs,
	// reclassified by the lexer's upper layer.
	KindWhitespace
	// KindRawScopeOpen is the fused pair (Hashes(n), ScopeOpen{0})
	// recognised when a hash run is immediately followed by a bare
	// "{" — the opening delimiter of a raw scope "#^n{ ... }#^n".
	// See DESIGN.md for why this implementation resolves the
	// raw-scope Open Question this way.
	KindRawScopeOpen
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindEscaped:
		return "Escaped"
	case KindBackslash:
		return "Backslash"
	case KindNewline:
		return "Newline"
	case KindCodeOpen:
		return "CodeOpen"
	case KindCodeClose:
		return "CodeClose"
	case KindScopeOpen:
		return "ScopeOpen"
	case KindScopeClose:
		return "ScopeClose"
	case KindHashes:
		return "Hashes"
	case KindOtherText:
		return "OtherText"
	case KindWhitespace:
		return "Whitespace"
	case KindRawScopeOpen:
		return "RawScopeOpen"
	default:
		return "Unknown"
	}
}

// Token is a single lexed unit carrying its exact source span and, for
// variants that need it, the raw source text it was lexed from. Frame
// code in internal/ttparse reads Raw for text content; code bodies are
// sliced directly from the file's source bytes and raw-scope bodies
// come from Lexer.ScanRaw, so neither is rebuilt from Raw.
type Token struct {
	Kind    Kind
	Span    ttspan.Span
	NHashes int    // CodeOpen/CodeClose/ScopeOpen/ScopeClose/Hashes/RawScopeOpen
	Special byte   // KindEscaped only: the escaped special character
	Raw     string // exact lexed source text
}

func (t Token) String() string {
	if t.Raw != "" {
		return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Raw, t.Span)
	}
	return fmt.Sprintf("%s@%s", t.Kind, t.Span)
}

// IsSpecialByte reports whether b is one of the structural specials:
// \r \n \ [ ] { } #. Exported so code outside the lexer can recognise
// escape targets.
func IsSpecialByte(b byte) bool {
	switch b {
	case '\r', '\n', '\\', '[', ']', '{', '}', '#':
		return true
	default:
		return false
	}
}
