// Package ttparse is the parser/interpreter state machine (spec.md
// components E, F, G): an explicit stack of frames that consumes
// tokens from internal/ttlex, invokes embedded code through
// internal/tteval, and assembles the document tree defined by
// internal/ttdom. File inclusion is handled by recursively running the
// same driver over a newly pushed internal/ttsource entry — there is
// no concurrency to coordinate (spec.md §5), so a nested parse running
// to completion before control returns to its Code frame is a direct,
// not simulated, property of the call stack.
package ttparse

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/turniptext/turniptext/internal/ttdiag"
	"github.com/turniptext/turniptext/internal/ttdom"
	"github.com/turniptext/turniptext/internal/tteval"
	"github.com/turniptext/turniptext/internal/ttlex"
	"github.com/turniptext/turniptext/internal/ttsource"
	"github.com/turniptext/turniptext/internal/ttspan"
)

// Parse is the public entry point (spec.md §6.3): it parses contents,
// named name for diagnostics and the file table, against globals using
// ev as the embedded evaluator. fs is handed to the file-inclusion
// stack (ttsource.Stack.Fs); a nil fs uses an empty in-memory
// filesystem. The parse itself never reads from fs: an included source
// always enters with the Name and Contents of the Source value the
// evaluator returned. maxDepth <= 0 means ttsource.DefaultMaxDepth.
// Any failure is wrapped in a *ttdiag.ParseError carrying the file
// table so a caller can render `file:line:col` without reaching into
// this package's internals.
func Parse(name, contents string, ev tteval.Evaluator, globals tteval.Namespace, fs afero.Fs, maxDepth int) (*ttdom.Document, error) {
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	p := &Parser{
		source:  ttsource.NewStack(fs, maxDepth),
		eval:    ev,
		globals: globals,
	}
	startSpan := ttspan.Single(ttspan.NewPosition(0))
	idx, err := p.source.PushNamed(name, contents, startSpan)
	if err != nil {
		return nil, &ttdiag.ParseError{Cause: err, Files: p.source.Table}
	}
	content, segments, err := p.parseFile(idx, contents, true)
	p.source.Pop()
	if err != nil {
		return nil, &ttdiag.ParseError{Cause: err, Files: p.source.Table}
	}
	return &ttdom.Document{Content: content, Segments: segments}, nil
}

// Parser holds everything shared across the in-progress parse: the
// file-inclusion stack, the embedded evaluator and its namespace, and
// one tokenSource per currently open file.
type Parser struct {
	source  *ttsource.Stack
	eval    tteval.Evaluator
	globals tteval.Namespace
	adapter tteval.Adapter

	lexStack []*tokenSource
}

func (p *Parser) curLex() *tokenSource { return p.lexStack[len(p.lexStack)-1] }

// parseFile drives the frame stack over one file's tokens to
// completion. isRoot selects between a topLevelFrame (segment stack,
// Header support) for the outermost document and a plain
// fileRootBlockScopeFrame (no headers, per spec.md §9's resolution
// that only the outermost file may emit them) for an included file.
func (p *Parser) parseFile(fileIndex int, contents string, isRoot bool) (*ttdom.BlockScope, []*ttdom.DocSegment, error) {
	lx, err := ttlex.New(fileIndex, contents)
	if err != nil {
		if _, ok := err.(*ttlex.NulByteError); ok {
			return nil, nil, &ttdiag.NullByteFoundInSource{SourceName: p.source.Table.Name(fileIndex)}
		}
		return nil, nil, err
	}
	p.lexStack = append(p.lexStack, &tokenSource{lx: lx, contents: contents})
	defer func() { p.lexStack = p.lexStack[:len(p.lexStack)-1] }()

	startSpan := ttspan.Single(ttspan.NewPosition(fileIndex))

	var tl *topLevelFrame
	var bsf *blockScopeFrame
	var root Frame
	if isRoot {
		tl = newTopLevelFrame(startSpan)
		root = tl
	} else {
		bsf = newFileRootBlockScopeFrame(startSpan)
		root = bsf
	}

	frames := []Frame{root}
	for len(frames) > 0 {
		tok := p.fuse(p.curLex().next())
		res := frames[len(frames)-1].processToken(p, tok)
		frames, err = p.apply(frames, res, tok)
		if err != nil {
			return nil, nil, err
		}
	}

	if isRoot {
		return tl.content, tl.segments, nil
	}
	return &ttdom.BlockScope{Blocks: bsf.acc.blocks, Sp: startSpan}, nil, nil
}

// fuse recognises the Hashes(n)+bare-ScopeOpen{0} pair as a single
// KindRawScopeOpen token (DESIGN.md's resolution of the raw-scope Open
// Question), by peeking one token ahead whenever a Hashes token is
// seen and pushing it back if it doesn't turn out to open a raw scope.
func (p *Parser) fuse(tok ttlex.Token) ttlex.Token {
	if tok.Kind != ttlex.KindHashes {
		return tok
	}
	nxt := p.curLex().next()
	if nxt.Kind == ttlex.KindScopeOpen && nxt.NHashes == 0 {
		sp, _ := tok.Span.Extend(nxt.Span)
		return ttlex.Token{Kind: ttlex.KindRawScopeOpen, Span: sp, NHashes: tok.NHashes}
	}
	p.curLex().pushback(nxt)
	return tok
}

func (p *Parser) nextSkippingWhitespace() ttlex.Token {
	for {
		tok := p.fuse(p.curLex().next())
		if tok.Kind != ttlex.KindWhitespace {
			return tok
		}
	}
}

// scanRaw consumes a raw scope's body given its already-fused opening
// token, per spec.md §4.10.
func (p *Parser) scanRaw(open ttlex.Token) (string, ttspan.Span, error) {
	content, closeSpan, ok := p.curLex().lx.ScanRaw(open.NHashes)
	if !ok {
		eof := ttspan.Single(p.curLex().lx.Pos())
		return "", ttspan.Span{}, &ttdiag.EndedInsideRawScope{ScopeStart: open.Span, EOF: eof}
	}
	full, _ := open.Span.Extend(closeSpan)
	return content, full, nil
}

// tokenSource wraps one open file's lexer with a one-token pushback
// buffer (needed for fuse's lookahead) and keeps that file's full
// contents on hand so Code frames can slice their body directly from
// source bytes instead of reassembling it token by token.
type tokenSource struct {
	lx       *ttlex.Lexer
	contents string
	buf      []ttlex.Token
}

func (ts *tokenSource) next() ttlex.Token {
	if n := len(ts.buf); n > 0 {
		t := ts.buf[n-1]
		ts.buf = ts.buf[:n-1]
		return t
	}
	return ts.lx.Next()
}

func (ts *tokenSource) pushback(t ttlex.Token) {
	ts.buf = append(ts.buf, t)
}

// action is what a Frame asks the driver to do after handling a token.
type action int

const (
	actContinue      action = iota // token consumed, stay in this frame
	actPush                        // push Result.Push as a new child frame
	actSwap                        // replace the top frame in place
	actSwapReprocess                // replace the top frame, then feed tok to it again
	actPop                         // pop this frame, offering Result.Element to the parent
	actPopReprocess                // pop, offer the element, then re-dispatch tok to the parent
	actError                       // abort with Result.Err
)

// Result is what Frame.processToken and Frame.onChildProduced return.
// ReprocessTok, when set, overrides which token subsequent steps of
// the same action chain are dispatched with — used when a frame
// resolves against a different (usually peeked-ahead) token than the
// one it was literally called with.
type Result struct {
	Action       action
	Push         Frame
	Element      any
	Err          error
	ReprocessTok *ttlex.Token
}

// Frame is one entry on the parser's explicit stack (spec.md §9: must
// be an explicit heap-allocated stack of sum-typed frames, not
// recursive calls, for the same reason file suspension must be
// resumable). Every concrete frame type implements both methods;
// onChildProduced is only ever invoked with elements that type its own
// pushes can actually produce.
type Frame interface {
	processToken(p *Parser, tok ttlex.Token) Result
	onChildProduced(p *Parser, elem any, tok ttlex.Token) Result
}

// apply performs the stack surgery action describes, looping to follow
// onChildProduced cascades (a pop that itself causes the new top frame
// to pop, and so on) without recursion.
func (p *Parser) apply(frames []Frame, res Result, tok ttlex.Token) ([]Frame, error) {
	for {
		if res.ReprocessTok != nil {
			tok = *res.ReprocessTok
		}
		switch res.Action {
		case actContinue:
			return frames, nil
		case actError:
			return nil, res.Err
		case actPush:
			frames = append(frames, res.Push)
			if res.ReprocessTok != nil {
				res = frames[len(frames)-1].processToken(p, tok)
				continue
			}
			return frames, nil
		case actSwap:
			frames[len(frames)-1] = res.Push
			return frames, nil
		case actSwapReprocess:
			frames[len(frames)-1] = res.Push
			res = frames[len(frames)-1].processToken(p, tok)
			continue
		case actPop:
			frames = frames[:len(frames)-1]
			if len(frames) == 0 {
				return frames, nil
			}
			res = frames[len(frames)-1].onChildProduced(p, res.Element, tok)
			continue
		case actPopReprocess:
			frames = frames[:len(frames)-1]
			if len(frames) == 0 {
				return frames, nil
			}
			parent := frames[len(frames)-1]
			absorbed := parent.onChildProduced(p, res.Element, tok)
			if absorbed.ReprocessTok != nil {
				tok = *absorbed.ReprocessTok
			}
			if absorbed.Action == actContinue {
				res = parent.processToken(p, tok)
			} else {
				res = absorbed
			}
			continue
		default:
			return nil, fmt.Errorf("ttparse: unhandled action %d", res.Action)
		}
	}
}

func outcomeElement(o tteval.Outcome) any {
	switch {
	case o.Block != nil:
		return o.Block
	case o.Inline != nil:
		return o.Inline
	case o.Header != nil:
		return o.Header
	default:
		return nil
	}
}
