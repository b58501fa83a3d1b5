// Package tteval adapts an embedded host-language evaluator (spec.md
// §6.2) into the classified outcomes the parser's Code frame needs:
// an element, a builder, an included source, or nothing. The
// evaluator itself — a sandboxed eval/exec-capable interpreter with a
// persistent global namespace — is out of scope for this module and
// supplied by the embedder through the Evaluator interface.
package tteval

import "github.com/turniptext/turniptext/internal/ttdiag"

// Namespace is the host evaluator's persistent global namespace. Every
// file and every invocation during a parse shares the same Namespace
// value (spec.md §5).
type Namespace any

// CompiledUnit is an opaque, host-specific compiled form produced by
// Evaluator.Compile and consumed by Evaluator.Eval.
type CompiledUnit any

// Evaluator is the host evaluator contract from spec.md §6.2. An
// embedder wires a concrete implementation (backed by whatever
// sandboxed language it runs) to internal/tteval.Adapter.
type Evaluator interface {
	// Compile parses code under the given mode, returning a unit ready
	// for Eval, or a compile error.
	Compile(code string, mode ttdiag.CompileMode) (CompiledUnit, error)

	// Eval runs unit against globals, returning the expression's value
	// (ModeEvalExpr) or nil (the exec modes), or a runtime error.
	Eval(unit CompiledUnit, globals Namespace) (any, error)

	// IsIndentationError reports whether err, returned from Compile,
	// is specifically an indentation error.
	IsIndentationError(err error) bool

	// IsSyntaxError reports whether err, returned from Compile, is a
	// syntax error (as opposed to some other compile-time failure).
	IsSyntaxError(err error) bool
}

// DataDescriptor is implemented by an evaluated value that behaves
// like a property: the adapter invokes Get to retrieve the value a
// bare identifier should actually produce, mirroring the `__get__`
// protocol in spec.md §4.3.
type DataDescriptor interface {
	Get(globals Namespace) (any, error)
}

// Source is the value an Evaluator may return to request that a new
// file be spliced into the parse at the current position (spec.md
// §4.13). Name is used for the file table and for recursive-inclusion
// diagnostics; it need not be a filesystem path.
type Source struct {
	Name     string
	Contents string
}
