// Package ttsource manages the file-inclusion stack (spec.md §4.13):
// an append-only table of every source that has entered a parse, and a
// bounded LIFO stack tracking which of those sources are currently
// open. Stack.PushFile reads a source through an afero.Fs (a real
// filesystem, an in-memory fixture in tests, or any other backend the
// embedder wires in); the parser pushes included sources by name and
// contents with PushNamed and does not read from the Fs.
package ttsource

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/turniptext/turniptext/internal/ttdiag"
	"github.com/turniptext/turniptext/internal/ttspan"
)

// DefaultMaxDepth is the default bound on simultaneously open sources
// (spec.md §5), guarding against unbounded recursive inclusion.
const DefaultMaxDepth = 128

// File is one entry in the append-only file table: a name (not
// necessarily a filesystem path — an included source may be named by
// whatever the evaluator chose) and its contents at the time it was
// read.
type File struct {
	Index    int
	Name     string
	Contents string
}

// Table is the append-only record of every source that has ever
// entered the parse, indexed by ttspan.Position.FileIndex. Entries are
// never removed or mutated once added, so a Span captured anywhere
// during the parse stays valid for the table's lifetime.
type Table struct {
	files []File
}

// Add appends a new file to the table and returns its index.
func (t *Table) Add(name, contents string) int {
	idx := len(t.files)
	t.files = append(t.files, File{Index: idx, Name: name, Contents: contents})
	return idx
}

// Get returns the file at idx. It panics if idx is out of range,
// since a FileIndex can only ever come from Add.
func (t *Table) Get(idx int) File { return t.files[idx] }

// Len reports how many files have ever been added.
func (t *Table) Len() int { return len(t.files) }

// Name and Contents satisfy ttdiag.FileTable, letting a rendered
// *ttdiag.ParseError resolve a span's FileIndex without ttdiag
// importing this package.
func (t *Table) Name(idx int) string     { return t.files[idx].Name }
func (t *Table) Contents(idx int) string { return t.files[idx].Contents }

// Stack is the bounded LIFO of sources currently open during a parse.
// Pushing beyond MaxDepth (or its default) fails with
// ttdiag.FileStackExceededLimit rather than recursing unboundedly.
type Stack struct {
	Fs       afero.Fs
	Table    *Table
	MaxDepth int

	frames []int // indices into Table, innermost last
}

// NewStack builds a Stack reading from fs, with maxDepth <= 0 meaning
// DefaultMaxDepth.
func NewStack(fs afero.Fs, maxDepth int) *Stack {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Stack{Fs: fs, Table: &Table{}, MaxDepth: maxDepth}
}

// PushNamed adds contents to the table under name and pushes it onto
// the stack as the new innermost open source. It is used both for the
// initial top-level source and for a Source value returned from
// embedded code (spec.md §4.13).
func (s *Stack) PushNamed(name, contents string, at ttspan.Span) (int, error) {
	if len(s.frames) >= s.MaxDepth {
		return 0, &ttdiag.FileStackExceededLimit{Limit: s.MaxDepth, Span: at}
	}
	idx := s.Table.Add(name, contents)
	s.frames = append(s.frames, idx)
	return idx, nil
}

// PushFile reads path from the backing afero.Fs and pushes it, the
// way a file-based inclusion (as opposed to an in-memory Source value)
// enters the parse.
func (s *Stack) PushFile(path string, at ttspan.Span) (int, error) {
	f, err := s.Fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("ttsource: opening %q: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("ttsource: reading %q: %w", path, err)
	}
	return s.PushNamed(path, string(b), at)
}

// Pop removes the innermost open source. It panics if the stack is
// empty, since the driver only calls Pop after observing that source's
// EOF token.
func (s *Stack) Pop() File {
	n := len(s.frames)
	idx := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return s.Table.Get(idx)
}

// Depth reports how many sources are currently open.
func (s *Stack) Depth() int { return len(s.frames) }

// Top returns the innermost currently open source. It panics if the
// stack is empty.
func (s *Stack) Top() File { return s.Table.Get(s.frames[len(s.frames)-1]) }

// Names lists the currently open sources, outermost first, for
// building "included from" diagnostic chains.
func (s *Stack) Names() []string {
	names := make([]string, len(s.frames))
	for i, idx := range s.frames {
		names[i] = s.Table.Get(idx).Name
	}
	return names
}
