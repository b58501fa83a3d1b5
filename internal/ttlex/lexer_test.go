package ttlex

import "testing"

func tokens(t *testing.T, input string) []Token {
	t.Helper()
	lx, err := New(0, input)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var toks []Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == KindEOF {
			break
		}
	}
	return toks
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func assertKinds(t *testing.T, input string, want ...Kind) {
	t.Helper()
	got := kinds(tokens(t, input))
	if len(got) != len(want) {
		t.Fatalf("Tokenize(%q) = %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize(%q)[%d] = %v, want %v (full: %v)", input, i, got[i], want[i], got)
		}
	}
}

func TestBackslashEscape(t *testing.T) {
	assertKinds(t, `\[`, KindEscaped, KindEOF)
	assertKinds(t, `\x`, KindBackslash, KindOtherText, KindEOF)
}

func TestNewlineFolding(t *testing.T) {
	for _, in := range []string{"\n", "\r", "\r\n"} {
		assertKinds(t, in, KindNewline, KindEOF)
	}
}

func TestCodeBracketsWithHashes(t *testing.T) {
	toks := tokens(t, `[## text ##]`)
	if toks[0].Kind != KindCodeOpen || toks[0].NHashes != 2 {
		t.Fatalf("expected CodeOpen{2}, got %+v", toks[0])
	}
	last := toks[len(toks)-2]
	if last.Kind != KindCodeClose || last.NHashes != 2 {
		t.Fatalf("expected CodeClose{2}, got %+v", last)
	}
}

func TestBareScopeBrackets(t *testing.T) {
	assertKinds(t, `{}`, KindScopeOpen, KindScopeClose, KindEOF)
}

func TestHashesNotClosingAnything(t *testing.T) {
	toks := tokens(t, `### hi`)
	if toks[0].Kind != KindHashes || toks[0].NHashes != 3 {
		t.Fatalf("expected Hashes{3}, got %+v", toks[0])
	}
}

func TestOtherTextMaximalRun(t *testing.T) {
	toks := tokens(t, "hello world")
	if toks[0].Kind != KindOtherText || toks[0].Raw != "hello world" {
		t.Fatalf("expected single OtherText run, got %+v", toks[0])
	}
}

func TestWhitespaceReclassified(t *testing.T) {
	toks := tokens(t, "{   }")
	if toks[1].Kind != KindWhitespace {
		t.Fatalf("expected Whitespace, got %+v", toks[1])
	}
}

func TestNulByteRejected(t *testing.T) {
	_, err := New(0, "abc\x00def")
	if err == nil {
		t.Fatalf("expected NulByteError")
	}
	var nerr *NulByteError
	if !errorsAs(err, &nerr) {
		t.Fatalf("expected *NulByteError, got %T", err)
	}
	if nerr.Pos.ByteOffset != 3 {
		t.Fatalf("expected offset 3, got %d", nerr.Pos.ByteOffset)
	}
}

func errorsAs(err error, target **NulByteError) bool {
	if e, ok := err.(*NulByteError); ok {
		*target = e
		return true
	}
	return false
}

func TestEOFRepeats(t *testing.T) {
	lx, err := New(0, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if tok := lx.Next(); tok.Kind != KindEOF {
			t.Fatalf("expected repeated EOF, got %+v", tok)
		}
	}
}

func TestScanRawExactHashCount(t *testing.T) {
	// simulates content already positioned after the opening "#{" of a
	// depth-1 raw scope: "\r}# tail"
	lx, err := New(0, "\r}# tail")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	content, _, ok := lx.ScanRaw(1)
	if !ok {
		t.Fatalf("expected closed raw scope")
	}
	if content != "\r" {
		t.Fatalf("expected raw content %q, got %q", "\r", content)
	}
	rest := lx.Next()
	if rest.Kind != KindOtherText || rest.Raw != " tail" {
		t.Fatalf("expected remaining content to lex normally, got %+v", rest)
	}
}

func TestScanRawRequiresFullHashCount(t *testing.T) {
	// "}" followed by only one hash does not close a depth-2 raw scope.
	lx, err := New(0, "x}#y}## tail")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	content, _, ok := lx.ScanRaw(2)
	if !ok {
		t.Fatalf("expected closed raw scope")
	}
	if content != "x}#y" {
		t.Fatalf("expected raw content %q, got %q", "x}#y", content)
	}
}

func TestScanRawUnterminated(t *testing.T) {
	lx, err := New(0, "no close here")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, _, ok := lx.ScanRaw(1)
	if ok {
		t.Fatalf("expected unterminated raw scope to report !ok")
	}
}
