package tteval

import "github.com/turniptext/turniptext/internal/ttdiag"

// NullEvaluator is the minimal Evaluator this module ships on its own
// (spec.md §6.2 and SPEC_FULL.md §10 both scope a real host language
// binding out: this repo owns the Evaluator interface and the
// three-attempt compile/coerce contract, not a language). Every code
// span compiles trivially and evaluates to None, so a caller with no
// host language wired up yet (the CLI's parse command, by default)
// still gets a document back instead of a nil-Evaluator panic — every
// `[...]` span in the source is simply inert.
//
// It is a test double, not a language: Compile never fails, so the
// three-attempt cascade in Adapter.Run always resolves on its first
// attempt (ModeEvalExpr), and Eval always returns nil.
type NullEvaluator struct{}

func (NullEvaluator) Compile(code string, mode ttdiag.CompileMode) (CompiledUnit, error) {
	return code, nil
}

func (NullEvaluator) Eval(unit CompiledUnit, globals Namespace) (any, error) {
	return nil, nil
}

func (NullEvaluator) IsIndentationError(err error) bool { return false }
func (NullEvaluator) IsSyntaxError(err error) bool      { return false }
