// Package dsl implements the bidirectional line-oriented textual notation
// for UCM diagrams: a parser driving the graph store's mutation API and a
// serializer performing the structural inverse. The text form is the
// persisted file format, so the grammar is stable.
package dsl

import "fmt"

// Issue is a parse finding carrying a 1-based source line number.
type Issue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s", i.Line, i.Message)
}

// Result accumulates parse findings. Errors block a successful apply;
// warnings never do.
type Result struct {
	Success  bool    `json:"success"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func (r *Result) errorf(line int, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) warnf(line int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Line: line, Message: fmt.Sprintf(format, args...)})
}
