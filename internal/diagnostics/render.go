// Package diagnostics renders a parse failure for a human reading a
// terminal: `file:line:col: message`, styled red when output is a TTY
// (grounded on the teacher's internal/validation/formatters.go, same
// lipgloss + go-isatty pairing), plus a one-line source excerpt with a
// caret under the offending column when the file table has the line
// available.
package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/turniptext/turniptext/internal/ttdiag"
)

// ColorError mirrors the teacher's ColorError ANSI index; it is the
// foreground color errorStyle renders diagnostics in.
const ColorError = "1"

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Bold(true)

// isTTY reports whether w is a terminal. Render takes w explicitly
// (rather than hardcoding os.Stderr) so a caller can force plain output
// for --color=never or route to a non-fd writer in tests.
func isTTY(w *os.File) bool {
	return isatty.IsTerminal(w.Fd())
}

// Mode selects whether Render styles its output.
type Mode int

const (
	// ModeAuto styles output only when out is a terminal.
	ModeAuto Mode = iota
	ModeAlways
	ModeNever
)

func (m Mode) styled(out *os.File) bool {
	switch m {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	default:
		return isTTY(out)
	}
}

// Render formats err as a diagnostic string. If err is (or wraps) a
// *ttdiag.ParseError whose cause carries a span resolvable against its
// file table, the result is `file:line:col: message` followed by a
// source excerpt; otherwise it falls back to err.Error() on its own
// line. out is used only to decide whether ModeAuto styles the output.
func Render(err error, mode Mode, out *os.File) string {
	var perr *ttdiag.ParseError
	if !errors.As(err, &perr) {
		return err.Error()
	}

	styled := mode.styled(out)
	style := func(s string) string {
		if !styled {
			return s
		}
		return errorStyle.Render(s)
	}

	sp, ok := ttdiag.PrimarySpan(perr.Cause)
	if !ok || perr.Files == nil {
		return style(perr.Cause.Error())
	}

	name := perr.Files.Name(sp.Start.FileIndex)
	loc := fmt.Sprintf("%s:%d:%d", name, sp.Start.Line, sp.Start.Column)

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", style(loc), perr.Cause.Error())
	if line, ok := sourceLine(perr.Files.Contents(sp.Start.FileIndex), sp.Start.Line); ok {
		b.WriteString(line)
		b.WriteByte('\n')
		if sp.Start.Column > 0 {
			b.WriteString(strings.Repeat(" ", sp.Start.Column-1))
		}
		b.WriteString(style("^"))
		b.WriteByte('\n')
	}
	return b.String()
}

// sourceLine returns the 1-indexed line'th line of contents.
func sourceLine(contents string, line int) (string, bool) {
	if line <= 0 {
		return "", false
	}
	cur := 1
	start := 0
	for i := 0; i < len(contents); i++ {
		if cur == line && contents[i] == '\n' {
			return contents[start:i], true
		}
		if contents[i] == '\n' {
			cur++
			start = i + 1
		}
	}
	if cur == line {
		return contents[start:], true
	}
	return "", false
}
