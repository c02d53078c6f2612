// Package diag implements the compiler's single diagnostic format: a
// one-line message, the offending source line, and a caret span
// underneath it. Every fatal-on-first error in the pipeline is reported
// through this package.
//
// The column arithmetic mirrors the original Hexagn compiler's
// draw_arrows/print_error helpers (see original_source/src/util.rs in the
// retrieval pack) rather than anything invented here, since spec.md
// describes the shape of the diagnostic but not its exact offsets.
package diag

import (
	"fmt"
	"io"
	"strings"
)

// Code is the process exit code a diagnostic carries. spec.md section 7
// assigns these per error category rather than strictly by syntactic vs
// semantic kind - lexer errors are syntactic in nature but exit 1, so an
// Error carries its exit code rather than a syntactic/semantic kind.
type Code int

// pre-defined exit codes
const (
	Semantic Code = 1
	Syntax   Code = 2
)

// Error is a fatal compiler diagnostic. It implements the error interface
// so it can flow through ordinary Go error-returning functions; only
// cmd/hexagn's main package ever prints one and calls os.Exit.
type Error struct {
	Code    Code
	Message string
	Line    string // the offending source line, verbatim
	Lineno  int
	Start   int // caret span start, 0-indexed into Line
	End     int // caret span end, exclusive
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d", e.Message, e.Lineno)
}

// getLine returns the 1-indexed lineno-th line of src.
func getLine(src string, lineno int) string {
	lines := strings.Split(src, "\n")
	idx := lineno - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return lines[idx]
}

// New builds an Error keyed to a line within source, with the caret
// spanning the whole line.
func New(code Code, msg, source string, lineno int) *Error {
	line := getLine(source, lineno)
	return NewSpan(code, msg, source, lineno, 0, len(line))
}

// NewSpan is like New but with an explicit caret span within the line,
// for errors that should point at a sub-expression rather than the whole
// line.
func NewSpan(code Code, msg, source string, lineno, start, end int) *Error {
	return &Error{
		Code:    code,
		Message: msg,
		Line:    getLine(source, lineno),
		Lineno:  lineno,
		Start:   start,
		End:     end,
	}
}

// Print writes the full diagnostic - message, source line, caret span -
// to w, following the exact column arithmetic of the original compiler's
// draw_arrows: the caret row is indented by the width of the rendered
// "<lineno>: " prefix before the carets begin.
func Print(w io.Writer, e *Error) {
	fmt.Fprintf(w, "Error: %s at line %d\n", e.Message, e.Lineno)
	fmt.Fprintf(w, "%d: %s\n", e.Lineno, e.Line)

	prefixWidth := len(fmt.Sprintf("%d", e.Lineno)) + 2 // "N: "
	start := e.Start + prefixWidth
	end := e.End + prefixWidth

	fmt.Fprint(w, "\x1b[31m")
	fmt.Fprint(w, strings.Repeat(" ", start))
	if end > start {
		fmt.Fprint(w, strings.Repeat("^", end-start))
	}
	fmt.Fprint(w, "\x1b[0m\n")
}
