package tteval

import (
	"errors"
	"testing"

	"github.com/turniptext/turniptext/internal/ttdiag"
	"github.com/turniptext/turniptext/internal/ttdom"
	"github.com/turniptext/turniptext/internal/ttspan"
)

// fakeEvaluator is a minimal, table-driven test double: it never
// actually interprets code, it just returns canned results keyed by
// (code, mode) so the adapter's cascade and classification logic can
// be exercised without a real host language.
type fakeEvaluator struct {
	compile map[string]compileResult
}

type compileResult struct {
	unit      any
	err       error
	indentErr bool
	syntaxErr bool
}

type fakeUnit struct {
	value any
	err   error
}

func (f *fakeEvaluator) Compile(code string, mode ttdiag.CompileMode) (CompiledUnit, error) {
	key := string(mode) + "|" + code
	r, ok := f.compile[key]
	if !ok {
		return nil, errors.New("no compile result registered for " + key)
	}
	return r.unit, r.err
}

func (f *fakeEvaluator) Eval(unit CompiledUnit, globals Namespace) (any, error) {
	fu := unit.(fakeUnit)
	return fu.value, fu.err
}

func (f *fakeEvaluator) IsIndentationError(err error) bool {
	key := findKeyForErr(f, err)
	return f.compile[key].indentErr
}

func (f *fakeEvaluator) IsSyntaxError(err error) bool {
	key := findKeyForErr(f, err)
	return f.compile[key].syntaxErr
}

func findKeyForErr(f *fakeEvaluator, err error) string {
	for k, v := range f.compile {
		if v.err == err {
			return k
		}
	}
	return ""
}

func sp() ttspan.Span { return ttspan.Single(ttspan.NewPosition(0)) }

func TestRunEvalExprSucceeds(t *testing.T) {
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|1+1": {unit: fakeUnit{value: "2"}},
	}}
	out, err := Adapter{}.Run(ev, nil, "1+1", sp())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, ok := out.Inline.(*ttdom.Text)
	if !ok || text.Content != "2" {
		t.Fatalf("expected Text(2), got %#v", out)
	}
}

func TestRunFallsBackToExecStmts(t *testing.T) {
	exprErr := errors.New("expr syntax error")
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|x = 1":  {err: exprErr, syntaxErr: true},
		"exec_stmts|x = 1": {unit: fakeUnit{value: nil}},
	}}
	out, err := Adapter{}.Run(ev, nil, "x = 1", sp())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.None {
		t.Fatalf("expected None outcome, got %#v", out)
	}
}

func TestRunFallsBackToExecIndentedStmts(t *testing.T) {
	exprErr := errors.New("expr syntax error")
	stmtErr := errors.New("unexpected indent")
	raw := "  y = 2"
	trimmed := "y = 2"
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|" + trimmed:                 {err: exprErr, syntaxErr: true},
		"exec_stmts|" + trimmed:                {err: stmtErr, indentErr: true},
		"exec_indented_stmts|if True:\n" + raw: {unit: fakeUnit{value: nil}},
	}}
	out, err := Adapter{}.Run(ev, nil, raw, sp())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.None {
		t.Fatalf("expected None outcome, got %#v", out)
	}
}

func TestRunNonSyntaxCompileErrorDoesNotFallBack(t *testing.T) {
	compileErr := errors.New("name error")
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|bad": {err: compileErr, syntaxErr: false},
	}}
	_, err := Adapter{}.Run(ev, nil, "bad", sp())
	var target *ttdiag.CompilingEvalBrackets
	if !errors.As(err, &target) {
		t.Fatalf("expected CompilingEvalBrackets, got %v (%T)", err, err)
	}
	if target.Mode != ttdiag.ModeEvalExpr {
		t.Fatalf("expected failure attributed to eval_expr, got %s", target.Mode)
	}
}

func TestRunNonIndentationExecErrorDoesNotFallBack(t *testing.T) {
	exprErr := errors.New("expr syntax error")
	stmtErr := errors.New("other compile error")
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|bad":  {err: exprErr, syntaxErr: true},
		"exec_stmts|bad": {err: stmtErr, indentErr: false},
	}}
	_, err := Adapter{}.Run(ev, nil, "bad", sp())
	var target *ttdiag.CompilingEvalBrackets
	if !errors.As(err, &target) {
		t.Fatalf("expected CompilingEvalBrackets, got %v (%T)", err, err)
	}
	if target.Mode != ttdiag.ModeExecStmts {
		t.Fatalf("expected failure attributed to exec_stmts, got %s", target.Mode)
	}
}

func TestRunEvalRuntimeErrorWraps(t *testing.T) {
	runErr := errors.New("boom")
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|x": {unit: fakeUnit{err: runErr}},
	}}
	_, err := Adapter{}.Run(ev, nil, "x", sp())
	var target *ttdiag.RunningEvalBrackets
	if !errors.As(err, &target) || !errors.Is(err, runErr) {
		t.Fatalf("expected RunningEvalBrackets wrapping cause, got %v (%T)", err, err)
	}
}

type fakeHeader struct{ w int }

func (f fakeHeader) Weight() int { return f.w }

func TestClassifyHeader(t *testing.T) {
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|h": {unit: fakeUnit{value: fakeHeader{w: 1}}},
	}}
	out, err := Adapter{}.Run(ev, nil, "h", sp())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Header == nil || out.Header.Weight() != 1 {
		t.Fatalf("expected header with weight 1, got %#v", out)
	}
}

func TestClassifyInlineList(t *testing.T) {
	inlines := []ttdom.Inline{&ttdom.Text{Content: "a"}, &ttdom.Text{Content: "b"}}
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|lst": {unit: fakeUnit{value: inlines}},
	}}
	out, err := Adapter{}.Run(ev, nil, "lst", sp())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scope, ok := out.Inline.(*ttdom.InlineScope)
	if !ok || len(scope.Inlines) != 2 {
		t.Fatalf("expected InlineScope of 2, got %#v", out)
	}
}

type fakeDescriptor struct{ got any }

func (d fakeDescriptor) Get(globals Namespace) (any, error) { return d.got, nil }

func TestClassifyDescriptorIndirection(t *testing.T) {
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|prop": {unit: fakeUnit{value: fakeDescriptor{got: "resolved"}}},
	}}
	out, err := Adapter{}.Run(ev, nil, "prop", sp())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, ok := out.Inline.(*ttdom.Text)
	if !ok || text.Content != "resolved" {
		t.Fatalf("expected descriptor to resolve to Text(resolved), got %#v", out)
	}
}

func TestClassifyUnrecognizedValueErrors(t *testing.T) {
	ev := &fakeEvaluator{compile: map[string]compileResult{
		"eval_expr|weird": {unit: fakeUnit{value: struct{ X int }{X: 1}}},
	}}
	_, err := Adapter{}.Run(ev, nil, "weird", sp())
	var target *ttdiag.CoercingEvalBracketToElement
	if !errors.As(err, &target) {
		t.Fatalf("expected CoercingEvalBracketToElement, got %v (%T)", err, err)
	}
}

type fakeBlockBuilder struct{}

func (fakeBlockBuilder) BuildFromBlocks(bs *ttdom.BlockScope) (any, error) {
	return &ttdom.Paragraph{Sp: bs.Sp}, nil
}

func TestRunBuilderDispatchesByKind(t *testing.T) {
	bs := &ttdom.BlockScope{Sp: sp()}
	out, err := Adapter{}.RunBuilder(nil, fakeBlockBuilder{}, ttdiag.ScopeBlocks, sp(), sp(), bs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out.Block.(*ttdom.Paragraph); !ok {
		t.Fatalf("expected Paragraph block, got %#v", out)
	}
}

func TestRunBuilderWrongCapabilityErrors(t *testing.T) {
	_, err := Adapter{}.RunBuilder(nil, fakeBlockBuilder{}, ttdiag.ScopeRaw, sp(), sp(), "raw content")
	var target *ttdiag.CoercingEvalBracketToBuilder
	if !errors.As(err, &target) {
		t.Fatalf("expected CoercingEvalBracketToBuilder, got %v (%T)", err, err)
	}
}
