package ttparse

import (
	"fmt"

	"github.com/turniptext/turniptext/internal/ttdiag"
	"github.com/turniptext/turniptext/internal/ttdom"
	"github.com/turniptext/turniptext/internal/tteval"
	"github.com/turniptext/turniptext/internal/ttlex"
	"github.com/turniptext/turniptext/internal/ttspan"
)

// ---- block-mode shared machinery (F) ----

// blockAccumulator holds one block-mode frame's in-progress content
// plus the separation bookkeeping spec.md §4.5 describes:
// expects_n_blank_lines_after becomes a simple "have we seen a blank
// line since the last block" flag, since the count this design ever
// needs is exactly one.
type blockAccumulator struct {
	blocks        []ttdom.Block
	haveBlock     bool
	sawBlankSince bool
	newlineRun    int
}

// noteNewline records one Newline token. Separation needs an actual
// blank line — two consecutive Newlines, with only Whitespace allowed
// between them — so a single line break is not enough to satisfy
// InsufficientBlockSeparation.
func (a *blockAccumulator) noteNewline() {
	a.newlineRun++
	if a.newlineRun >= 2 {
		a.sawBlankSince = true
	}
}

func (a *blockAccumulator) noteOtherToken() { a.newlineRun = 0 }

func (a *blockAccumulator) checkSeparation(next ttspan.Span) error {
	if a.haveBlock && !a.sawBlankSince {
		last := a.blocks[len(a.blocks)-1].Span()
		return &ttdiag.InsufficientBlockSeparation{LastBlock: last, NextBlock: next}
	}
	return nil
}

func (a *blockAccumulator) append(b ttdom.Block) {
	a.blocks = append(a.blocks, b)
	a.haveBlock = true
	a.sawBlankSince = false
}

// blockModeDispatch implements the shared token-acceptance rules of
// spec.md §4.5 for any block-mode frame. closeN is nil for a frame
// with no matching close bracket (TopLevel, or an included file's
// root); otherwise a stray ScopeClose is always reported, since the
// caller already special-cased the one hash count that legitimately
// closes this frame before calling in here.
func blockModeDispatch(p *Parser, acc *blockAccumulator, tok ttlex.Token, closeN *int) Result {
	if tok.Kind != ttlex.KindNewline && tok.Kind != ttlex.KindWhitespace {
		acc.noteOtherToken()
	}
	switch tok.Kind {
	case ttlex.KindNewline:
		acc.noteNewline()
		return Result{Action: actContinue}
	case ttlex.KindWhitespace:
		return Result{Action: actContinue}
	case ttlex.KindHashes:
		return Result{Action: actPush, Push: newCommentFrame()}
	case ttlex.KindCodeOpen:
		if err := acc.checkSeparation(tok.Span); err != nil {
			return Result{Action: actError, Err: err}
		}
		return Result{Action: actPush, Push: newCodeFrame(tok.Span, tok.NHashes, true)}
	case ttlex.KindScopeOpen:
		if err := acc.checkSeparation(tok.Span); err != nil {
			return Result{Action: actError, Err: err}
		}
		return Result{Action: actPush, Push: newAmbiguousBlockFrame(tok.Span, tok.NHashes)}
	case ttlex.KindScopeClose:
		_ = closeN
		return Result{Action: actError, Err: &ttdiag.BlockScopeCloseOutsideScope{Span: tok.Span}}
	case ttlex.KindRawScopeOpen:
		if err := acc.checkSeparation(tok.Span); err != nil {
			return Result{Action: actError, Err: err}
		}
		return Result{Action: actPush, Push: newParagraphFrame(tok.Span)}.reprocessWith(tok)
	case ttlex.KindOtherText, ttlex.KindEscaped, ttlex.KindBackslash:
		if err := acc.checkSeparation(tok.Span); err != nil {
			return Result{Action: actError, Err: err}
		}
		return Result{Action: actPush, Push: newParagraphFrame(tok.Span)}.reprocessWith(tok)
	default:
		return Result{Action: actContinue}
	}
}

// reprocessWith turns a plain Push into a push-then-reprocess by
// setting ReprocessTok; apply() re-dispatches tok to the freshly
// pushed frame once it becomes top of stack. Used for the tokens that
// both start a paragraph and belong inside it (spec.md §9's note on
// paragraph-starting tokens bubbling from resolved ambiguous scopes
// applies here too: block mode itself starts the paragraph).
func (r Result) reprocessWith(tok ttlex.Token) Result {
	r.ReprocessTok = &tok
	return r
}

// handleBlockChild absorbs an element produced by a pushed child into
// acc, following spec.md §4.5/§4.8: a Block is appended directly; a
// lone InlineScope (from an ambiguous scope that resolved to inline
// right at block level, e.g. "{}") is wrapped in a one-sentence
// Paragraph, since a block-mode frame cannot hold an Inline directly; a
// Header is only legal when allowHeader is set (the caller, TopLevel,
// handles that case itself before reaching here).
func handleBlockChild(acc *blockAccumulator, elem any, tok ttlex.Token, allowHeader bool) Result {
	switch v := elem.(type) {
	case nil:
		return Result{Action: actContinue}
	case *ttdom.BlockScope:
		if err := acc.checkSeparation(v.Sp); err != nil {
			return Result{Action: actError, Err: err}
		}
		acc.append(v)
		return Result{Action: actContinue}
	case *ttdom.Paragraph:
		if err := acc.checkSeparation(v.Sp); err != nil {
			return Result{Action: actError, Err: err}
		}
		acc.append(v)
		// A paragraph only ever closes on a blank line or EOF
		// (paragraphFrame never pops for any other reason), so the
		// separation this block needs from whatever comes next is
		// already satisfied regardless of how many of its trailing
		// newline tokens the accumulator itself gets to see.
		acc.sawBlankSince = true
		return Result{Action: actContinue}
	case *ttdom.InlineScope:
		para := &ttdom.Paragraph{
			Sentences: []*ttdom.Sentence{{Inlines: []ttdom.Inline{v}, Sp: v.Sp}},
			Sp:        v.Sp,
		}
		if err := acc.checkSeparation(para.Sp); err != nil {
			return Result{Action: actError, Err: err}
		}
		acc.append(para)
		return Result{Action: actContinue}
	case ttdom.Inline:
		sp := v.Span()
		para := &ttdom.Paragraph{
			Sentences: []*ttdom.Sentence{{Inlines: []ttdom.Inline{v}, Sp: sp}},
			Sp:        sp,
		}
		if err := acc.checkSeparation(para.Sp); err != nil {
			return Result{Action: actError, Err: err}
		}
		acc.append(para)
		return Result{Action: actContinue}
	case ttdom.Header:
		if allowHeader {
			return Result{Action: actError, Err: fmt.Errorf("ttparse: header must be handled by caller")}
		}
		return Result{Action: actError, Err: &ttdiag.CodeEmittedHeaderInBlockScope{Span: tok.Span}}
	default:
		return Result{Action: actError, Err: fmt.Errorf("ttparse: unexpected child %T in block mode", elem)}
	}
}

// ---- TopLevel frame ----

type segment struct {
	header   ttdom.Header
	acc      blockAccumulator
	subsegs  []*ttdom.DocSegment
	openSpan ttspan.Span
}

type topLevelFrame struct {
	acc      blockAccumulator
	segStack []*segment
	openSpan ttspan.Span

	content  *ttdom.BlockScope
	segments []*ttdom.DocSegment
}

func newTopLevelFrame(at ttspan.Span) *topLevelFrame {
	return &topLevelFrame{openSpan: at}
}

func (tl *topLevelFrame) currentAcc() *blockAccumulator {
	if len(tl.segStack) == 0 {
		return &tl.acc
	}
	return &tl.segStack[len(tl.segStack)-1].acc
}

func (tl *topLevelFrame) pushSegment(h ttdom.Header, at ttspan.Span) {
	tl.segStack = append(tl.segStack, &segment{header: h, openSpan: at})
}

func (tl *topLevelFrame) popSegment() {
	n := len(tl.segStack)
	s := tl.segStack[n-1]
	tl.segStack = tl.segStack[:n-1]
	doc := &ttdom.DocSegment{
		Header:      s.header,
		Content:     &ttdom.BlockScope{Blocks: s.acc.blocks, Sp: s.openSpan},
		Subsegments: s.subsegs,
		Sp:          s.openSpan,
	}
	if len(tl.segStack) == 0 {
		tl.segments = append(tl.segments, doc)
	} else {
		parent := tl.segStack[len(tl.segStack)-1]
		parent.subsegs = append(parent.subsegs, doc)
	}
}

func (tl *topLevelFrame) receiveHeader(h ttdom.Header, at ttspan.Span) {
	w := h.Weight()
	for len(tl.segStack) > 0 && tl.segStack[len(tl.segStack)-1].header.Weight() >= w {
		tl.popSegment()
	}
	tl.pushSegment(h, at)
}

func (tl *topLevelFrame) finalize() {
	for len(tl.segStack) > 0 {
		tl.popSegment()
	}
	tl.content = &ttdom.BlockScope{Blocks: tl.acc.blocks, Sp: tl.openSpan}
}

func (tl *topLevelFrame) processToken(p *Parser, tok ttlex.Token) Result {
	if tok.Kind == ttlex.KindEOF {
		tl.finalize()
		return Result{Action: actPop}
	}
	return blockModeDispatch(p, tl.currentAcc(), tok, nil)
}

func (tl *topLevelFrame) onChildProduced(p *Parser, elem any, tok ttlex.Token) Result {
	if h, ok := elem.(ttdom.Header); ok {
		tl.receiveHeader(h, tok.Span)
		return Result{Action: actContinue}
	}
	return handleBlockChild(tl.currentAcc(), elem, tok, true)
}

// ---- BlockScope frame (nested `{...}` resolved to block, or an
// included file's root content) ----

type blockScopeFrame struct {
	acc        blockAccumulator
	openSpan   ttspan.Span
	expectedN  int
	isFileRoot bool
}

func newBlockScopeFrame(openSpan ttspan.Span, expectedN int) *blockScopeFrame {
	return &blockScopeFrame{openSpan: openSpan, expectedN: expectedN}
}

func newFileRootBlockScopeFrame(at ttspan.Span) *blockScopeFrame {
	return &blockScopeFrame{openSpan: at, isFileRoot: true}
}

func (b *blockScopeFrame) processToken(p *Parser, tok ttlex.Token) Result {
	if tok.Kind == ttlex.KindEOF {
		if b.isFileRoot {
			return Result{Action: actPop}
		}
		return Result{Action: actError, Err: &ttdiag.EndedInsideScope{ScopeStart: b.openSpan, EOF: tok.Span}}
	}
	if !b.isFileRoot && tok.Kind == ttlex.KindScopeClose && tok.NHashes == b.expectedN {
		sp, _ := b.openSpan.Extend(tok.Span)
		return Result{Action: actPop, Element: &ttdom.BlockScope{Blocks: b.acc.blocks, Sp: sp}}
	}
	var closeN *int
	if !b.isFileRoot {
		n := b.expectedN
		closeN = &n
	}
	return blockModeDispatch(p, &b.acc, tok, closeN)
}

func (b *blockScopeFrame) onChildProduced(p *Parser, elem any, tok ttlex.Token) Result {
	return handleBlockChild(&b.acc, elem, tok, false)
}

// ---- Comment frame (§4.12) ----

type commentFrame struct{}

func newCommentFrame() *commentFrame { return &commentFrame{} }

func (c *commentFrame) processToken(p *Parser, tok ttlex.Token) Result {
	switch tok.Kind {
	case ttlex.KindNewline, ttlex.KindEOF:
		return Result{Action: actPopReprocess}
	default:
		return Result{Action: actContinue}
	}
}

func (c *commentFrame) onChildProduced(p *Parser, elem any, tok ttlex.Token) Result {
	return Result{Action: actError, Err: fmt.Errorf("ttparse: comment frame has no children")}
}

// ---- Ambiguous scope resolution (§4.8) ----

// ambiguousScopeFrame implements both AmbiguousBlockLevelScope and
// AmbiguousInlineLevelScope: the only difference between them is
// whether a Newline-first resolution is legal (block context) or an
// error (inline context), selected by inlineCtx being non-nil.
type ambiguousScopeFrame struct {
	openSpan  ttspan.Span
	expectedN int
	builder   any
	codeSpan  ttspan.Span
	inlineCtx *ttspan.Span // set when opened inside a paragraph/inline context
}

func newAmbiguousBlockFrame(openSpan ttspan.Span, expectedN int) *ambiguousScopeFrame {
	return &ambiguousScopeFrame{openSpan: openSpan, expectedN: expectedN}
}

func newAmbiguousBuilderFrame(openSpan ttspan.Span, expectedN int, builder any, codeSpan ttspan.Span) *ambiguousScopeFrame {
	return &ambiguousScopeFrame{openSpan: openSpan, expectedN: expectedN, builder: builder, codeSpan: codeSpan}
}

func newAmbiguousInlineFrame(openSpan ttspan.Span, expectedN int, inlineCtx ttspan.Span) *ambiguousScopeFrame {
	return &ambiguousScopeFrame{openSpan: openSpan, expectedN: expectedN, inlineCtx: &inlineCtx}
}

func (a *ambiguousScopeFrame) processToken(p *Parser, tok ttlex.Token) Result {
	switch tok.Kind {
	case ttlex.KindEOF:
		return Result{Action: actError, Err: &ttdiag.EndedInsideScope{ScopeStart: a.openSpan, EOF: tok.Span}}
	case ttlex.KindWhitespace:
		return Result{Action: actContinue}
	case ttlex.KindHashes:
		return Result{Action: actPush, Push: newCommentFrame()}
	case ttlex.KindNewline:
		if a.inlineCtx != nil {
			return Result{Action: actError, Err: &ttdiag.BlockScopeOpenedInInlineMode{
				InlineModeContext: *a.inlineCtx,
				ScopeOpen:         a.openSpan,
			}}
		}
		return Result{Action: actSwap, Push: newBlockScopeFrame(a.openSpan, a.expectedN)}
	default:
		return Result{Action: actSwapReprocess, Push: newInlineScopeFrame(a.openSpan, a.expectedN)}
	}
}

func (a *ambiguousScopeFrame) onChildProduced(p *Parser, elem any, tok ttlex.Token) Result {
	return Result{Action: actContinue}
}

// ---- InlineScope frame (§4.7) ----

type inlineScopeFrame struct {
	inlines   []ttdom.Inline
	openSpan  ttspan.Span
	expectedN int
}

func newInlineScopeFrame(openSpan ttspan.Span, expectedN int) *inlineScopeFrame {
	return &inlineScopeFrame{openSpan: openSpan, expectedN: expectedN}
}

func (s *inlineScopeFrame) append(in ttdom.Inline) { s.inlines = append(s.inlines, in) }

func (s *inlineScopeFrame) processToken(p *Parser, tok ttlex.Token) Result {
	switch tok.Kind {
	case ttlex.KindEOF:
		return Result{Action: actError, Err: &ttdiag.EndedInsideScope{ScopeStart: s.openSpan, EOF: tok.Span}}
	case ttlex.KindScopeClose:
		if tok.NHashes != s.expectedN {
			return Result{Action: actError, Err: &ttdiag.InlineScopeCloseOutsideScope{Span: tok.Span}}
		}
		if tok.Span.FileIndex != s.openSpan.FileIndex {
			return Result{Action: actError, Err: &ttdiag.BlockScopeCloseOutsideScope{Span: tok.Span}}
		}
		sp, _ := s.openSpan.Extend(tok.Span)
		return Result{Action: actPop, Element: &ttdom.InlineScope{Inlines: s.inlines, Sp: sp}}
	case ttlex.KindNewline:
		return Result{Action: actError, Err: &ttdiag.SentenceBreakInInlineScope{Span: tok.Span}}
	case ttlex.KindWhitespace:
		s.append(&ttdom.Text{Content: tok.Raw, Sp: tok.Span})
		return Result{Action: actContinue}
	case ttlex.KindOtherText:
		s.append(&ttdom.Text{Content: substituteHyphens(tok.Raw), Sp: tok.Span})
		return Result{Action: actContinue}
	case ttlex.KindEscaped:
		s.append(&ttdom.Text{Content: string(tok.Special), Sp: tok.Span})
		return Result{Action: actContinue}
	case ttlex.KindBackslash:
		for _, in := range consumeBackslash(p, tok) {
			s.append(in)
		}
		return Result{Action: actContinue}
	case ttlex.KindHashes:
		return Result{Action: actPush, Push: newCommentFrame()}
	case ttlex.KindRawScopeOpen:
		content, sp, err := p.scanRaw(tok)
		if err != nil {
			return Result{Action: actError, Err: err}
		}
		s.append(&ttdom.RawText{Content: content, Sp: sp})
		return Result{Action: actContinue}
	case ttlex.KindScopeOpen:
		return Result{Action: actPush, Push: newAmbiguousInlineFrame(tok.Span, tok.NHashes, ttspan.Single(s.openSpan.Start))}
	case ttlex.KindCodeOpen:
		return Result{Action: actPush, Push: newCodeFrame(tok.Span, tok.NHashes, false)}
	default:
		return Result{Action: actContinue}
	}
}

func (s *inlineScopeFrame) onChildProduced(p *Parser, elem any, tok ttlex.Token) Result {
	switch v := elem.(type) {
	case nil:
		return Result{Action: actContinue}
	case ttdom.Header:
		return Result{Action: actError, Err: &ttdiag.CodeEmittedHeaderInInlineMode{Span: tok.Span}}
	case ttdom.Block:
		return Result{Action: actError, Err: &ttdiag.CodeEmittedBlockInInlineMode{Span: v.Span()}}
	case ttdom.Inline:
		s.append(v)
		return Result{Action: actContinue}
	default:
		return Result{Action: actError, Err: fmt.Errorf("ttparse: unexpected child %T in inline scope", elem)}
	}
}

// ---- Paragraph frame (§4.6) ----

type paragraphFrame struct {
	sentences []*ttdom.Sentence
	current   []ttdom.Inline
	openSpan  ttspan.Span
	lastSpan  ttspan.Span
	sawBlank  bool
}

func newParagraphFrame(at ttspan.Span) *paragraphFrame {
	return &paragraphFrame{openSpan: at, lastSpan: at}
}

func (pf *paragraphFrame) ctx() ttspan.Span {
	sp, _ := pf.openSpan.Extend(pf.lastSpan)
	return sp
}

func (pf *paragraphFrame) append(in ttdom.Inline) {
	pf.current = append(pf.current, in)
	pf.lastSpan = in.Span()
}

func (pf *paragraphFrame) commitSentence() {
	if len(pf.current) == 0 {
		return
	}
	sp, _ := pf.current[0].Span().Extend(pf.current[len(pf.current)-1].Span())
	pf.sentences = append(pf.sentences, &ttdom.Sentence{Inlines: pf.current, Sp: sp})
	pf.current = nil
}

func (pf *paragraphFrame) finish() *ttdom.Paragraph {
	pf.commitSentence()
	return &ttdom.Paragraph{Sentences: pf.sentences, Sp: pf.ctx()}
}

func (pf *paragraphFrame) processToken(p *Parser, tok ttlex.Token) Result {
	switch tok.Kind {
	case ttlex.KindEOF:
		return Result{Action: actPopReprocess, Element: pf.finish()}
	case ttlex.KindNewline:
		pf.lastSpan = tok.Span
		if pf.sawBlank {
			return Result{Action: actPopReprocess, Element: pf.finish()}
		}
		pf.commitSentence()
		pf.sawBlank = true
		return Result{Action: actContinue}
	case ttlex.KindWhitespace:
		pf.lastSpan = tok.Span
		return Result{Action: actContinue}
	case ttlex.KindOtherText:
		pf.sawBlank = false
		pf.append(&ttdom.Text{Content: substituteHyphens(tok.Raw), Sp: tok.Span})
		return Result{Action: actContinue}
	case ttlex.KindEscaped:
		pf.sawBlank = false
		if tok.Special == '\n' || tok.Special == '\r' {
			// sentence continuation: no content, but skip subsequent
			// leading whitespace on the next line.
			pf.lastSpan = tok.Span
			return Result{Action: actContinue}
		}
		pf.append(&ttdom.Text{Content: string(tok.Special), Sp: tok.Span})
		return Result{Action: actContinue}
	case ttlex.KindBackslash:
		pf.sawBlank = false
		for _, in := range consumeBackslash(p, tok) {
			pf.append(in)
		}
		return Result{Action: actContinue}
	case ttlex.KindHashes:
		pf.sawBlank = false
		return Result{Action: actPush, Push: newCommentFrame()}
	case ttlex.KindRawScopeOpen:
		pf.sawBlank = false
		content, sp, err := p.scanRaw(tok)
		if err != nil {
			return Result{Action: actError, Err: err}
		}
		pf.append(&ttdom.RawText{Content: content, Sp: sp})
		return Result{Action: actContinue}
	case ttlex.KindScopeOpen:
		pf.sawBlank = false
		return Result{Action: actPush, Push: newAmbiguousInlineFrame(tok.Span, tok.NHashes, pf.ctx())}
	case ttlex.KindScopeClose:
		return Result{Action: actError, Err: &ttdiag.InlineScopeCloseOutsideScope{Span: tok.Span}}
	case ttlex.KindCodeOpen:
		pf.sawBlank = false
		return Result{Action: actPush, Push: newCodeFrame(tok.Span, tok.NHashes, false)}
	default:
		return Result{Action: actContinue}
	}
}

func (pf *paragraphFrame) onChildProduced(p *Parser, elem any, tok ttlex.Token) Result {
	switch v := elem.(type) {
	case nil:
		return Result{Action: actContinue}
	case ttdom.Header:
		return Result{Action: actError, Err: &ttdiag.CodeEmittedHeaderInInlineMode{Span: tok.Span}}
	case ttdom.Block:
		return Result{Action: actError, Err: &ttdiag.CodeEmittedBlockInInlineMode{Span: v.Span()}}
	case ttdom.Inline:
		pf.sawBlank = false
		pf.append(v)
		return Result{Action: actContinue}
	default:
		return Result{Action: actError, Err: fmt.Errorf("ttparse: unexpected child %T in paragraph", elem)}
	}
}

// consumeBackslash implements the hyphen-escape special case of
// spec.md §4.11: a backslash immediately followed by text starting
// with '-' peels off exactly one literal '-', pushing back the
// remainder so substitution runs are never allowed to span it.
func consumeBackslash(p *Parser, tok ttlex.Token) []ttdom.Inline {
	nxt := p.curLex().next()
	if nxt.Kind == ttlex.KindOtherText && len(nxt.Raw) > 0 && nxt.Raw[0] == '-' {
		out := []ttdom.Inline{&ttdom.Text{Content: "-", Sp: tok.Span}}
		if len(nxt.Raw) > 1 {
			rest := nxt
			rest.Raw = nxt.Raw[1:]
			p.curLex().pushback(rest)
		}
		return out
	}
	p.curLex().pushback(nxt)
	return []ttdom.Inline{&ttdom.Text{Content: "\\", Sp: tok.Span}}
}

// ---- Code frame (§4.9) ----

type codeFrame struct {
	openSpan     ttspan.Span
	expectedN    int
	blockContext bool

	pendingBuilder  any
	pendingCodeSpan ttspan.Span
}

func newCodeFrame(openSpan ttspan.Span, expectedN int, blockContext bool) *codeFrame {
	return &codeFrame{openSpan: openSpan, expectedN: expectedN, blockContext: blockContext}
}

func (c *codeFrame) processToken(p *Parser, tok ttlex.Token) Result {
	if tok.Kind == ttlex.KindEOF {
		return Result{Action: actError, Err: &ttdiag.EndedInsideCode{CodeStart: c.openSpan, EOF: tok.Span}}
	}
	if tok.Kind == ttlex.KindCodeClose && tok.NHashes == c.expectedN {
		contents := p.curLex().contents
		rawCode := contents[c.openSpan.End.ByteOffset:tok.Span.Start.ByteOffset]
		fullSpan, _ := c.openSpan.Extend(tok.Span)
		outcome, err := p.adapter.Run(p.eval, p.globals, rawCode, fullSpan)
		if err != nil {
			return Result{Action: actError, Err: err}
		}
		return c.resolveOutcome(p, outcome, fullSpan)
	}
	return Result{Action: actContinue}
}

func (c *codeFrame) resolveOutcome(p *Parser, outcome tteval.Outcome, fullSpan ttspan.Span) Result {
	if outcome.Source != nil {
		if !c.blockContext {
			return Result{Action: actError, Err: &ttdiag.CodeEmittedSourceInInlineMode{Span: fullSpan}}
		}
		idx, err := p.source.PushNamed(outcome.Source.Name, outcome.Source.Contents, fullSpan)
		if err != nil {
			return Result{Action: actError, Err: err}
		}
		content, _, err := p.parseFile(idx, outcome.Source.Contents, false)
		p.source.Pop()
		if err != nil {
			return Result{Action: actError, Err: err}
		}
		return Result{Action: actPop, Element: content}
	}

	if outcome.Builder != nil {
		next := p.nextSkippingWhitespace()
		switch {
		case next.Kind == ttlex.KindScopeOpen:
			ab := newAmbiguousBuilderFrame(next.Span, next.NHashes, outcome.Builder, fullSpan)
			c.pendingBuilder = outcome.Builder
			c.pendingCodeSpan = fullSpan
			return Result{Action: actPush, Push: ab}
		case next.Kind == ttlex.KindRawScopeOpen:
			content, rawSpan, err := p.scanRaw(next)
			if err != nil {
				return Result{Action: actError, Err: err}
			}
			out2, err := p.adapter.RunBuilder(p.globals, outcome.Builder, ttdiag.ScopeRaw, fullSpan, rawSpan, content)
			if err != nil {
				return Result{Action: actError, Err: err}
			}
			return Result{Action: actPop, Element: outcomeElement(out2)}
		default:
			el, err := coerceBuilderAsBareElement(outcome.Builder, fullSpan)
			if err != nil {
				return Result{Action: actError, Err: err}
			}
			n := next
			return Result{Action: actPopReprocess, Element: outcomeElement(el), ReprocessTok: &n}
		}
	}

	return Result{Action: actPop, Element: outcomeElement(outcome)}
}

func (c *codeFrame) onChildProduced(p *Parser, elem any, tok ttlex.Token) Result {
	var kind ttdiag.ScopeKind
	var scopeSpan ttspan.Span
	switch v := elem.(type) {
	case *ttdom.BlockScope:
		kind, scopeSpan = ttdiag.ScopeBlocks, v.Sp
	case *ttdom.InlineScope:
		kind, scopeSpan = ttdiag.ScopeInlines, v.Sp
	default:
		return Result{Action: actError, Err: fmt.Errorf("ttparse: unexpected builder scope result %T", elem)}
	}
	out, err := p.adapter.RunBuilder(p.globals, c.pendingBuilder, kind, c.pendingCodeSpan, scopeSpan, elem)
	if err != nil {
		return Result{Action: actError, Err: err}
	}
	return Result{Action: actPop, Element: outcomeElement(out)}
}

func coerceBuilderAsBareElement(builder any, codeSpan ttspan.Span) (tteval.Outcome, error) {
	switch v := builder.(type) {
	case ttdom.Header:
		return tteval.Outcome{Header: v}, nil
	case ttdom.Block:
		return tteval.Outcome{Block: v}, nil
	case ttdom.Inline:
		return tteval.Outcome{Inline: v}, nil
	}
	return tteval.Outcome{}, &ttdiag.CoercingEvalBracketToElement{
		CodeSpan: codeSpan,
		Cause:    fmt.Errorf("value of type %T is a builder with no following scope to build from", builder),
	}
}
