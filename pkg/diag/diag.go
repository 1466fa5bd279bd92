// Package diag carries static diagnostics from the scan, parse and resolve
// phases back to the host. Presentation is left to the caller.
package diag

import (
	"fmt"
	"strings"
)

// Phase names the pipeline stage that produced a diagnostic.
type Phase int

const (
	PhaseScan Phase = iota
	PhaseParse
	PhaseResolve
)

func (p Phase) String() string {
	switch p {
	case PhaseScan:
		return "scan"
	case PhaseParse:
		return "parse"
	case PhaseResolve:
		return "resolve"
	default:
		return fmt.Sprintf("unknown_phase_%d", int(p))
	}
}

// Diagnostic is a single (line, message) report. Where holds the offending
// lexeme when one exists, or "end" for errors at end of input.
type Diagnostic struct {
	Phase      Phase  `json:"phase"`
	Line       int    `json:"line"`
	Where      string `json:"where,omitempty"`
	Message    string `json:"message"`
	Incomplete bool   `json:"incomplete,omitempty"`
}

func (d Diagnostic) Error() string {
	if d.Where != "" {
		return fmt.Sprintf("line %d at %s: %s", d.Line, d.Where, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// List accumulates diagnostics for one run.
type List []Diagnostic

// Err returns nil for an empty list and the list itself otherwise.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l List) Error() string {
	if len(l) == 0 {
		return "no diagnostics"
	}
	parts := make([]string, 0, len(l))
	for _, d := range l {
		parts = append(parts, d.Error())
	}
	return strings.Join(parts, "\n")
}

// Incomplete reports whether every diagnostic stems from input ending early,
// meaning more source could still turn the input into a valid program.
func (l List) Incomplete() bool {
	if len(l) == 0 {
		return false
	}
	for _, d := range l {
		if !d.Incomplete {
			return false
		}
	}
	return true
}
