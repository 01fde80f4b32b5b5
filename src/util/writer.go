// writer.go buffers textual output from a backend and flushes it to a destination
// writer, with small helpers for emitting labels, one- and two-operand instructions,
// comments and string directives.

package util

import (
	"fmt"
	"io"
	"strings"
)

// Writer accumulates backend output in a strings.Builder and flushes it on demand.
type Writer struct {
	sb strings.Builder
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write writes a format string to the buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
}

// WriteString writes a plain string to the buffer.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Ins1 writes a one-operand instruction line.
func (w *Writer) Ins1(op, rs1 string) {
	fmt.Fprintf(&w.sb, "\t%s %s\n", op, rs1)
}

// Ins2 writes a two-operand instruction line.
func (w *Writer) Ins2(op, rd, rs1 string) {
	fmt.Fprintf(&w.sb, "\t%s %s, %s\n", op, rd, rs1)
}

// Ins2imm writes a two-operand instruction line with a trailing signed immediate.
func (w *Writer) Ins2imm(op, rd string, imm int) {
	fmt.Fprintf(&w.sb, "\t%s %s, %d\n", op, rd, imm)
}

// Label writes a one-line label definition.
func (w *Writer) Label(name string) {
	fmt.Fprintf(&w.sb, "%s:\n", name)
}

// Comment writes a one-line assembler comment.
func (w *Writer) Comment(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, "\t; %s\n", fmt.Sprintf(format, args...))
}

// String returns the buffered contents.
func (w *Writer) String() string {
	return w.sb.String()
}

// Flush writes the buffered contents to dst and resets the buffer.
func (w *Writer) Flush(dst io.Writer) error {
	_, err := io.WriteString(dst, w.sb.String())
	w.sb.Reset()
	return err
}
