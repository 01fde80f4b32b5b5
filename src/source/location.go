// Package source provides the SourceLocation type shared by every later stage of the
// compiler: tokens, AST nodes and diagnostics all carry one.
package source

import "fmt"

// Location identifies a single point in a source file by file name, 1-based line and
// 1-based column. A Location is created once, on token consumption, and never mutated.
type Location struct {
	File   string
	Line   int
	Column int
}

// String formats the location the way diagnostics expect it: "file:line:col".
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// None is the zero Location, used for synthesized nodes that have no source origin.
var None = Location{}
