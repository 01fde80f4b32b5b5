// diag.go implements the diagnostic engine: collection, querying and rendering of
// compiler messages. The compiler pipeline is single-threaded, so the engine is a
// plain value rather than a channel-backed listener.

package util

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"cplusc/src/source"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Level differentiates the severity of a Diagnostic.
type Level int

// Severity levels, in the order §4.1 lists them.
const (
	Error Level = iota
	Warning
	Note
	Info
)

// Diagnostic is a single reported message with its source location and severity.
type Diagnostic struct {
	Level Level
	Location source.Location
	Message string
}

// Engine collects diagnostics reported by every compiler stage. A stage checks
// HasErrors() at its boundary and may decline to run if a predecessor reported errors.
type Engine struct {
	diagnostics []Diagnostic
}

// ---------------------
// ----- Constants -----
// ---------------------

const defaultBufferSize = 16

var levelName = [...]string{
	Error: "error",
	Warning: "warning",
	Note: "note",
	Info: "info",
}

var levelColor = [...]*color.Color{
	Error: color.New(color.FgRed, color.Bold),
	Warning: color.New(color.FgYellow, color.Bold),
	Note: color.New(color.FgCyan, color.Bold),
	Info: color.New(color.FgWhite, color.Bold),
}

// ---------------------
// ----- functions -----
// ---------------------

// NewEngine returns a ready to use diagnostic engine.
func NewEngine() *Engine {
	return &Engine{diagnostics: make([]Diagnostic, 0, defaultBufferSize)}
}

// Report appends a diagnostic, formatting the message immediately so that every
// caller's transient arguments (e.g. loop variables) are captured at report time.
func (e *Engine) Report(level Level, loc source.Location, format string, args...interface{}) {
	e.diagnostics = append(e.diagnostics, Diagnostic{
		Level: level,
		Location: loc,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any Error-level diagnostic has been collected.
func (e *Engine) HasErrors() bool {
	return e.ErrorCount() > 0
}

// ErrorCount returns the number of Error-level diagnostics collected.
func (e *Engine) ErrorCount() int {
	n := 0
	for _, d := range e.diagnostics {
		if d.Level == Error {
			n++
		}
	}
	return n
}

// WarningCount returns the number of Warning-level diagnostics collected.
func (e *Engine) WarningCount() int {
	n := 0
	for _, d := range e.diagnostics {
		if d.Level == Warning {
			n++
		}
	}
	return n
}

// Diagnostics returns every diagnostic in insertion order.
func (e *Engine) Diagnostics() []Diagnostic {
	return e.diagnostics
}

// Clear drops all stored messages.
func (e *Engine) Clear() {
	e.diagnostics = e.diagnostics[:0]
}

// PrintAll writes every diagnostic to w in insertion order, colored by level, followed
// by a summary line if any errors or warnings were reported.
func (e *Engine) PrintAll(w io.Writer) {
	for _, d := range e.diagnostics {
		label := levelColor[d.Level].Sprintf("%s:", levelName[d.Level])
		if d.Location == (source.Location{}) {
			fmt.Fprintf(w, "%s %s\n", label, d.Message)
			continue
		}
		fmt.Fprintf(w, "%s: %s %s\n", d.Location, label, d.Message)
	}
	ec, wc := e.ErrorCount(), e.WarningCount()
	if ec > 0 || wc > 0 {
		fmt.Fprintf(w, "%d error(s) generated, %d warning(s) generated\n", ec, wc)
	}
}

// Print is a convenience wrapper writing to stderr.
func (e *Engine) Print() {
	e.PrintAll(os.Stderr)
}
