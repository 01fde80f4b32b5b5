// label.go generates unique assembly labels for conditionals and loops. Labeler is a
// plain counter value owned by the backend that invokes it, with one independent
// counter per label prefix, so kinds that share a prefix never repeat a label.

package util

import "fmt"

// Kind differentiates what a generated label is for.
type Kind int

const (
	LabelIfTrue Kind = iota
	LabelIfDone
	LabelWhileLoop
	LabelWhileContinue
	LabelWhileDone
	LabelForLoop
	LabelForContinue
	LabelForDone
	LabelString
)

var labelPrefix = [...]string{
	LabelIfTrue: "true",
	LabelIfDone: "done",
	LabelWhileLoop: "loop",
	LabelWhileContinue: "continueloop",
	LabelWhileDone: "doneloop",
	LabelForLoop: "loop",
	LabelForContinue: "continueloop",
	LabelForDone: "doneloop",
	LabelString: "str",
}

// Labeler hands out monotonically increasing label suffixes for each label prefix.
type Labeler struct {
	next map[string]int
}

// NewLabeler returns a ready to use Labeler with all counters at zero.
func NewLabeler() *Labeler {
	return &Labeler{next: make(map[string]int)}
}

// Next returns the next label of the given kind, e.g. ".loop3".
func (l *Labeler) Next(k Kind) string {
	n := l.next[labelPrefix[k]]
	l.next[labelPrefix[k]] = n + 1
	return fmt.Sprintf(".%s%d", labelPrefix[k], n)
}
