// Package ttdiag defines the closed error taxonomy turnip-text parsing
// can produce (spec.md §7): one exported struct per error kind, each
// carrying the spans needed to report it and nothing beyond that — no
// error in this package embeds raw file contents. Rendering a span
// into `file:line:col` form, which needs the file table, is a separate
// concern handled at the outer boundary (internal/diagnostics).
package ttdiag

import (
	"fmt"

	"github.com/turniptext/turniptext/internal/ttspan"
)

// ---- syntax errors (from the state machine, spec.md §7 stratum 1) ----

type CodeCloseOutsideCode struct{ Span ttspan.Span }

func (e *CodeCloseOutsideCode) Error() string {
	return fmt.Sprintf("%s: code scope close seen outside of a code scope", e.Span)
}

type BlockScopeCloseOutsideScope struct{ Span ttspan.Span }

func (e *BlockScopeCloseOutsideScope) Error() string {
	return fmt.Sprintf("%s: block scope close seen outside of an open scope", e.Span)
}

type InlineScopeCloseOutsideScope struct{ Span ttspan.Span }

func (e *InlineScopeCloseOutsideScope) Error() string {
	return fmt.Sprintf("%s: inline scope close seen outside of an open inline scope", e.Span)
}

type RawScopeCloseOutsideRawScope struct{ Span ttspan.Span }

func (e *RawScopeCloseOutsideRawScope) Error() string {
	return fmt.Sprintf("%s: raw scope close seen outside of an open raw scope", e.Span)
}

type EndedInsideCode struct{ CodeStart, EOF ttspan.Span }

func (e *EndedInsideCode) Error() string {
	return fmt.Sprintf("%s: file ended at %s while a code scope opened here was still open", e.CodeStart, e.EOF)
}

type EndedInsideRawScope struct{ ScopeStart, EOF ttspan.Span }

func (e *EndedInsideRawScope) Error() string {
	return fmt.Sprintf("%s: file ended at %s while a raw scope opened here was still open", e.ScopeStart, e.EOF)
}

type EndedInsideScope struct{ ScopeStart, EOF ttspan.Span }

func (e *EndedInsideScope) Error() string {
	return fmt.Sprintf("%s: file ended at %s while a scope opened here was still open", e.ScopeStart, e.EOF)
}

type BlockScopeOpenedInInlineMode struct {
	InlineModeContext ttspan.Span
	ScopeOpen         ttspan.Span
}

func (e *BlockScopeOpenedInInlineMode) Error() string {
	return fmt.Sprintf(
		"%s: block scope opened at %s but the enclosing context %s is inline mode",
		e.ScopeOpen, e.ScopeOpen, e.InlineModeContext,
	)
}

type CodeEmittedBlockInInlineMode struct{ Span ttspan.Span }

func (e *CodeEmittedBlockInInlineMode) Error() string {
	return fmt.Sprintf("%s: embedded code produced a block element while in inline mode", e.Span)
}

type CodeEmittedSourceInInlineMode struct{ Span ttspan.Span }

func (e *CodeEmittedSourceInInlineMode) Error() string {
	return fmt.Sprintf("%s: embedded code produced an included source while in inline mode", e.Span)
}

type CodeEmittedHeaderInInlineMode struct{ Span ttspan.Span }

func (e *CodeEmittedHeaderInInlineMode) Error() string {
	return fmt.Sprintf("%s: embedded code produced a header while in inline mode", e.Span)
}

type CodeEmittedHeaderInBlockScope struct{ Span ttspan.Span }

func (e *CodeEmittedHeaderInBlockScope) Error() string {
	return fmt.Sprintf("%s: embedded code produced a header inside a non-top-level block scope", e.Span)
}

type SentenceBreakInInlineScope struct{ Span ttspan.Span }

func (e *SentenceBreakInInlineScope) Error() string {
	return fmt.Sprintf("%s: unescaped newline inside an inline scope", e.Span)
}

type EscapedNewlineInBlockMode struct{ Span ttspan.Span }

func (e *EscapedNewlineInBlockMode) Error() string {
	return fmt.Sprintf("%s: escaped newline has no sentence to continue in block mode", e.Span)
}

type InsufficientBlockSeparation struct {
	LastBlock ttspan.Span
	NextBlock ttspan.Span
}

func (e *InsufficientBlockSeparation) Error() string {
	return fmt.Sprintf(
		"%s: block starting here needs a blank line after the block ending at %s",
		e.NextBlock, e.LastBlock,
	)
}

// ---- user-code errors (from the evaluator adapter, spec.md §7 stratum 2) ----

// CompileMode names which of the adapter's three compile attempts
// (spec.md §4.3) produced or failed to produce a unit.
type CompileMode string

const (
	ModeEvalExpr           CompileMode = "eval_expr"
	ModeExecStmts          CompileMode = "exec_stmts"
	ModeExecIndentedStmts  CompileMode = "exec_indented_stmts"
)

type CompilingEvalBrackets struct {
	CodeSpan ttspan.Span
	Code     string
	Mode     CompileMode
	Cause    error
}

func (e *CompilingEvalBrackets) Error() string {
	return fmt.Sprintf("%s: failed to compile code (%s): %v", e.CodeSpan, e.Mode, e.Cause)
}
func (e *CompilingEvalBrackets) Unwrap() error { return e.Cause }

type RunningEvalBrackets struct {
	CodeSpan ttspan.Span
	Code     string
	Mode     CompileMode
	Cause    error
}

func (e *RunningEvalBrackets) Error() string {
	return fmt.Sprintf("%s: error running code (%s): %v", e.CodeSpan, e.Mode, e.Cause)
}
func (e *RunningEvalBrackets) Unwrap() error { return e.Cause }

type CoercingEvalBracketToElement struct {
	CodeSpan ttspan.Span
	Code     string
	Mode     CompileMode
	Cause    error
}

func (e *CoercingEvalBracketToElement) Error() string {
	return fmt.Sprintf("%s: could not coerce evaluated code to a document element: %v", e.CodeSpan, e.Cause)
}
func (e *CoercingEvalBracketToElement) Unwrap() error { return e.Cause }

// ScopeKind names the kind of scope a parked builder trailer is
// discharged against: "blocks", "inlines", or "raw".
type ScopeKind string

const (
	ScopeBlocks  ScopeKind = "blocks"
	ScopeInlines ScopeKind = "inlines"
	ScopeRaw     ScopeKind = "raw"
)

type CoercingEvalBracketToBuilder struct {
	CodeSpan ttspan.Span
	Code     string
	Mode     CompileMode
	Kind     ScopeKind
	Cause    error
}

func (e *CoercingEvalBracketToBuilder) Error() string {
	return fmt.Sprintf(
		"%s: evaluated code does not support building from %s: %v",
		e.CodeSpan, e.Kind, e.Cause,
	)
}
func (e *CoercingEvalBracketToBuilder) Unwrap() error { return e.Cause }

type Building struct {
	CodeSpan  ttspan.Span
	ScopeSpan ttspan.Span
	Kind      ScopeKind
	Cause     error
}

func (e *Building) Error() string {
	return fmt.Sprintf("%s: error building from %s at %s: %v", e.CodeSpan, e.Kind, e.ScopeSpan, e.Cause)
}
func (e *Building) Unwrap() error { return e.Cause }

type CoercingBuildResultToElement struct {
	CodeSpan  ttspan.Span
	ScopeSpan ttspan.Span
	Cause     error
}

func (e *CoercingBuildResultToElement) Error() string {
	return fmt.Sprintf("%s: build result at %s could not be coerced to a document element: %v", e.CodeSpan, e.ScopeSpan, e.Cause)
}
func (e *CoercingBuildResultToElement) Unwrap() error { return e.Cause }

// ---- contextless infra errors (spec.md §7 stratum 3) ----

type NullByteFoundInSource struct{ SourceName string }

func (e *NullByteFoundInSource) Error() string {
	return fmt.Sprintf("%s: source contains a NUL byte", e.SourceName)
}

type FileStackExceededLimit struct {
	Limit int
	Span  ttspan.Span
}

func (e *FileStackExceededLimit) Error() string {
	return fmt.Sprintf("%s: file inclusion stack exceeded its limit of %d", e.Span, e.Limit)
}

type HostEvaluatorFailure struct{ Cause error }

func (e *HostEvaluatorFailure) Error() string { return fmt.Sprintf("internal host evaluator failure: %v", e.Cause) }
func (e *HostEvaluatorFailure) Unwrap() error { return e.Cause }

// ---- outer-boundary wrapper (spec.md §7: "every error carries spans;
// none carry raw file contents; the outer boundary attaches the file
// table") ----

// FileTable is the minimal view into the file-inclusion table a
// rendered diagnostic needs. ttsource.Table satisfies this structurally,
// without ttdiag importing ttsource (which itself imports ttdiag for
// FileStackExceededLimit).
type FileTable interface {
	Name(idx int) string
	Contents(idx int) string
}

// ParseError is what turniptext.Parse returns on failure: the
// structural or user-code cause from this package, plus the file
// table needed to resolve a span into `file:line:col` form.
type ParseError struct {
	Cause error
	Files FileTable
}

func (e *ParseError) Error() string { return e.Cause.Error() }
func (e *ParseError) Unwrap() error { return e.Cause }

// PrimarySpan extracts the span that best locates err for rendering,
// unwrapping through Unwrap (so a *ParseError's Cause, or any wrapped
// Cause further down, is inspected too). Returns false if err is not
// one of this package's span-carrying error kinds.
func PrimarySpan(err error) (ttspan.Span, bool) {
	for err != nil {
		switch e := err.(type) {
		case *CodeCloseOutsideCode:
			return e.Span, true
		case *BlockScopeCloseOutsideScope:
			return e.Span, true
		case *InlineScopeCloseOutsideScope:
			return e.Span, true
		case *RawScopeCloseOutsideRawScope:
			return e.Span, true
		case *EndedInsideCode:
			return e.CodeStart, true
		case *EndedInsideRawScope:
			return e.ScopeStart, true
		case *EndedInsideScope:
			return e.ScopeStart, true
		case *BlockScopeOpenedInInlineMode:
			return e.ScopeOpen, true
		case *CodeEmittedBlockInInlineMode:
			return e.Span, true
		case *CodeEmittedSourceInInlineMode:
			return e.Span, true
		case *CodeEmittedHeaderInInlineMode:
			return e.Span, true
		case *CodeEmittedHeaderInBlockScope:
			return e.Span, true
		case *SentenceBreakInInlineScope:
			return e.Span, true
		case *EscapedNewlineInBlockMode:
			return e.Span, true
		case *InsufficientBlockSeparation:
			return e.NextBlock, true
		case *CompilingEvalBrackets:
			return e.CodeSpan, true
		case *RunningEvalBrackets:
			return e.CodeSpan, true
		case *CoercingEvalBracketToElement:
			return e.CodeSpan, true
		case *CoercingEvalBracketToBuilder:
			return e.CodeSpan, true
		case *Building:
			return e.CodeSpan, true
		case *CoercingBuildResultToElement:
			return e.CodeSpan, true
		case *FileStackExceededLimit:
			return e.Span, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ttspan.Span{}, false
		}
		err = unwrapper.Unwrap()
	}
	return ttspan.Span{}, false
}
