// Package turniptext parses turnip-text markup — block-structured
// prose with embedded, evaluator-driven code spans (spec.md §§1-5) —
// into the document tree defined by internal/ttdom. It is a thin
// public facade over internal/ttparse: callers that only need to parse
// and inspect a document use this package; internal/ttparse,
// internal/ttdom, internal/tteval, and internal/ttdiag remain the
// place that actually implements the state machine, and stay
// available to anyone building a more specialized host binding.
package turniptext

import (
	"github.com/spf13/afero"

	"github.com/turniptext/turniptext/internal/ttdom"
	"github.com/turniptext/turniptext/internal/ttparse"
	"github.com/turniptext/turniptext/internal/ttsource"
	"github.com/turniptext/turniptext/internal/tteval"
)

// Re-exported DOM and evaluator types callers need to pattern-match on
// or implement (SPEC_FULL.md §2), so a caller of this package never
// has to import internal/ttdom or internal/tteval directly.
type (
	Document          = ttdom.Document
	Block             = ttdom.Block
	Inline             = ttdom.Inline
	Header            = ttdom.Header
	BlockScope        = ttdom.BlockScope
	InlineScope       = ttdom.InlineScope
	Paragraph         = ttdom.Paragraph
	Sentence          = ttdom.Sentence
	Text              = ttdom.Text
	RawText           = ttdom.RawText
	DocSegment        = ttdom.DocSegment
	BlockScopeBuilder = ttdom.BlockScopeBuilder
	InlineScopeBuilder = ttdom.InlineScopeBuilder
	RawScopeBuilder   = ttdom.RawScopeBuilder

	Evaluator    = tteval.Evaluator
	Namespace    = tteval.Namespace
	CompiledUnit = tteval.CompiledUnit
	Source       = tteval.Source
)

// config collects what the ParseOption variadic tail can override; it
// is never exposed directly, mirroring spec.md §6.3's framing that
// these are CLI/embedder knobs, not parser-internal state.
type config struct {
	evaluator tteval.Evaluator
	fs        afero.Fs
	maxDepth  int
}

// ParseOption configures a single Parse call. The zero value of every
// option's underlying setting reproduces turnip-text's defaults: a
// NullEvaluator, an empty in-memory filesystem, and
// ttsource.DefaultMaxDepth.
type ParseOption func(*config)

// WithEvaluator supplies the embedded-code evaluator. Without this
// option, Parse uses tteval.NullEvaluator, under which every `[...]`
// span compiles and evaluates to nothing.
func WithEvaluator(ev Evaluator) ParseOption {
	return func(c *config) { c.evaluator = ev }
}

// WithFS hands fs to the file-inclusion stack instead of an empty
// in-memory filesystem. Inclusion during a parse does not read from
// it: an included Source always enters with the contents the evaluator
// returned.
func WithFS(fs afero.Fs) ParseOption {
	return func(c *config) { c.fs = fs }
}

// WithRecursionLimit bounds how many sources may be open
// simultaneously during file inclusion (spec.md §5). limit <= 0 means
// ttsource.DefaultMaxDepth.
func WithRecursionLimit(limit int) ParseOption {
	return func(c *config) { c.maxDepth = limit }
}

// Parse parses contents, named name for diagnostics and the file
// table, against globals, and returns the resulting Document
// (SPEC_FULL.md §6). Any failure is returned as a *ttdiag.ParseError;
// use internal/diagnostics to render one for a human, or
// errors.As/ttdiag.PrimarySpan to inspect it programmatically.
func Parse(name, contents string, globals Namespace, opts ...ParseOption) (*Document, error) {
	cfg := config{evaluator: tteval.NullEvaluator{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.evaluator == nil {
		cfg.evaluator = tteval.NullEvaluator{}
	}
	fs := cfg.fs
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	return ttparse.Parse(name, contents, cfg.evaluator, globals, fs, cfg.maxDepth)
}

// DefaultRecursionLimit is the bound WithRecursionLimit overrides; it
// is exported so a CLI's --recursion-limit flag can describe its own
// default without hardcoding ttsource's constant.
const DefaultRecursionLimit = ttsource.DefaultMaxDepth
