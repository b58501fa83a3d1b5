package tteval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turniptext/turniptext/internal/ttdiag"
	"github.com/turniptext/turniptext/internal/ttdom"
	"github.com/turniptext/turniptext/internal/ttspan"
)

// Outcome is the classified result of running a `[...]` code span
// (spec.md §4.3). Exactly one field is meaningful; which one is
// decided by Adapter.Run, never by the caller inspecting the value's
// Go type.
type Outcome struct {
	None    bool
	Block   ttdom.Block
	Inline  ttdom.Inline
	Header  ttdom.Header
	Builder any
	Source  *Source
}

// Adapter runs code through an Evaluator's three-attempt compile
// cascade and coerces the result into an Outcome. It holds no state of
// its own; a zero value is ready to use.
type Adapter struct{}

// Run evaluates rawCode — the verbatim bytes between a code scope's
// brackets — against globals, and classifies the result. codeSpan is
// attached to every error so callers never need to stitch it back in.
func (Adapter) Run(ev Evaluator, globals Namespace, rawCode string, codeSpan ttspan.Span) (Outcome, error) {
	trimmed := trimASCIISpace(rawCode)

	if unit, cerr := ev.Compile(trimmed, ttdiag.ModeEvalExpr); cerr == nil {
		val, rerr := ev.Eval(unit, globals)
		if rerr != nil {
			return Outcome{}, &ttdiag.RunningEvalBrackets{CodeSpan: codeSpan, Code: trimmed, Mode: ttdiag.ModeEvalExpr, Cause: rerr}
		}
		return classify(val, globals, codeSpan, trimmed, ttdiag.ModeEvalExpr)
	} else if !ev.IsSyntaxError(cerr) {
		return Outcome{}, &ttdiag.CompilingEvalBrackets{CodeSpan: codeSpan, Code: trimmed, Mode: ttdiag.ModeEvalExpr, Cause: cerr}
	}

	if unit, cerr := ev.Compile(trimmed, ttdiag.ModeExecStmts); cerr == nil {
		if _, rerr := ev.Eval(unit, globals); rerr != nil {
			return Outcome{}, &ttdiag.RunningEvalBrackets{CodeSpan: codeSpan, Code: trimmed, Mode: ttdiag.ModeExecStmts, Cause: rerr}
		}
		return Outcome{None: true}, nil
	} else if !ev.IsIndentationError(cerr) {
		return Outcome{}, &ttdiag.CompilingEvalBrackets{CodeSpan: codeSpan, Code: trimmed, Mode: ttdiag.ModeExecStmts, Cause: cerr}
	}

	indented := "if True:\n" + rawCode
	unit, cerr := ev.Compile(indented, ttdiag.ModeExecIndentedStmts)
	if cerr != nil {
		return Outcome{}, &ttdiag.CompilingEvalBrackets{CodeSpan: codeSpan, Code: indented, Mode: ttdiag.ModeExecIndentedStmts, Cause: cerr}
	}
	if _, rerr := ev.Eval(unit, globals); rerr != nil {
		return Outcome{}, &ttdiag.RunningEvalBrackets{CodeSpan: codeSpan, Code: indented, Mode: ttdiag.ModeExecIndentedStmts, Cause: rerr}
	}
	return Outcome{None: true}, nil
}

// RunBuilder hands a parked builder value the content of the scope
// that followed it, and coerces whatever it returns the same way Run
// does. kind says which *Builder capability scopeSpan's content was
// produced for, so the three possible wrong-capability or build-error
// cases can name it in their diagnostic.
func (Adapter) RunBuilder(globals Namespace, builder any, kind ttdiag.ScopeKind, codeSpan, scopeSpan ttspan.Span, content any) (Outcome, error) {
	var (
		result any
		err    error
	)
	switch kind {
	case ttdiag.ScopeBlocks:
		b, ok := builder.(ttdom.BlockScopeBuilder)
		if !ok {
			return Outcome{}, &ttdiag.CoercingEvalBracketToBuilder{
				CodeSpan: codeSpan, Kind: kind,
				Cause: fmt.Errorf("value does not implement BuildFromBlocks"),
			}
		}
		result, err = b.BuildFromBlocks(content.(*ttdom.BlockScope))
	case ttdiag.ScopeInlines:
		b, ok := builder.(ttdom.InlineScopeBuilder)
		if !ok {
			return Outcome{}, &ttdiag.CoercingEvalBracketToBuilder{
				CodeSpan: codeSpan, Kind: kind,
				Cause: fmt.Errorf("value does not implement BuildFromInlines"),
			}
		}
		result, err = b.BuildFromInlines(content.(*ttdom.InlineScope))
	case ttdiag.ScopeRaw:
		b, ok := builder.(ttdom.RawScopeBuilder)
		if !ok {
			return Outcome{}, &ttdiag.CoercingEvalBracketToBuilder{
				CodeSpan: codeSpan, Kind: kind,
				Cause: fmt.Errorf("value does not implement BuildFromRaw"),
			}
		}
		result, err = b.BuildFromRaw(content.(string))
	default:
		return Outcome{}, fmt.Errorf("tteval: unknown scope kind %q", kind)
	}
	if err != nil {
		return Outcome{}, &ttdiag.Building{CodeSpan: codeSpan, ScopeSpan: scopeSpan, Kind: kind, Cause: err}
	}
	out, cerr := classify(result, globals, codeSpan, "", "")
	if cerr != nil {
		return Outcome{}, &ttdiag.CoercingBuildResultToElement{CodeSpan: codeSpan, ScopeSpan: scopeSpan, Cause: cerr}
	}
	return out, nil
}

// classify applies the `__get__` descriptor post-processing step and
// then the coercion rules of spec.md §4.3, in order: None, Header,
// Block, Inline, []Inline wrapped as an InlineScope, Source, strings
// and numbers wrapped as Text, Builder. Anything else is an error.
func classify(val any, globals Namespace, codeSpan ttspan.Span, code string, mode ttdiag.CompileMode) (Outcome, error) {
	if d, ok := val.(DataDescriptor); ok {
		got, err := d.Get(globals)
		if err != nil {
			return Outcome{}, &ttdiag.RunningEvalBrackets{CodeSpan: codeSpan, Code: code, Mode: mode, Cause: err}
		}
		val = got
	}

	switch v := val.(type) {
	case nil:
		return Outcome{None: true}, nil
	case ttdom.Header:
		return Outcome{Header: v}, nil
	case ttdom.Block:
		return Outcome{Block: v}, nil
	case ttdom.Inline:
		return Outcome{Inline: v}, nil
	case []ttdom.Inline:
		return Outcome{Inline: &ttdom.InlineScope{Inlines: v, Sp: codeSpan}}, nil
	case *Source:
		return Outcome{Source: v}, nil
	case string:
		return Outcome{Inline: &ttdom.Text{Content: v, Sp: codeSpan}}, nil
	case int:
		return Outcome{Inline: &ttdom.Text{Content: strconv.Itoa(v), Sp: codeSpan}}, nil
	case int64:
		return Outcome{Inline: &ttdom.Text{Content: strconv.FormatInt(v, 10), Sp: codeSpan}}, nil
	case float64:
		return Outcome{Inline: &ttdom.Text{Content: strconv.FormatFloat(v, 'g', -1, 64), Sp: codeSpan}}, nil
	}

	if isBuilder(val) {
		return Outcome{Builder: val}, nil
	}

	return Outcome{}, &ttdiag.CoercingEvalBracketToElement{
		CodeSpan: codeSpan, Code: code, Mode: mode,
		Cause: fmt.Errorf("value of type %T is not a recognized document element, builder, or source", val),
	}
}

func isBuilder(val any) bool {
	if _, ok := val.(ttdom.BlockScopeBuilder); ok {
		return true
	}
	if _, ok := val.(ttdom.InlineScopeBuilder); ok {
		return true
	}
	if _, ok := val.(ttdom.RawScopeBuilder); ok {
		return true
	}
	return false
}

// trimASCIISpace trims leading and trailing ASCII whitespace only —
// spec.md §4.3 trims the code span before the first compile attempt,
// and deliberately does not touch the original, un-trimmed code kept
// for the ExecIndentedStmts retry.
func trimASCIISpace(s string) string {
	return strings.Trim(s, " \t\r\n\v\f")
}
