// Package diagnostics renders the one-line `<file>:<line>:<column>:
// <severity>: <message>` format editor integrations consume, and computes
// "did you mean" suggestions for undefined identifiers and missing module
// exports using github.com/xrash/smetrics.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/xrash/smetrics"
)

// Severity is one of the three levels of the diagnostic line format.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Diagnostic is one line of editor-consumable output.
type Diagnostic struct {
	Pos      lexer.Position
	Severity Severity
	Message  string
}

// String renders the diagnostic line: 1-based line/column, lowercase
// severity.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Pos.Filename, d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
}

// suggestThreshold is the minimum Jaro-Winkler similarity (of 1.0) a
// candidate must clear before it's worth suggesting; below this the
// candidate is more likely to confuse than to help.
const suggestThreshold = 0.7

// Suggest returns the candidate closest to name by Jaro-Winkler distance, or
// "" if nothing clears suggestThreshold. Used to append "did you mean `x`?"
// to undefined-identifier and missing-export errors.
func Suggest(name string, candidates []string) string {
	best := ""
	bestScore := 0.0
	// Sort first so that, for a tie, the suggestion is stable across runs —
	// candidates come from map iteration (env frame names, builtin names)
	// whose order Go does not guarantee.
	sorted := append([]string{}, candidates...)
	sort.Strings(sorted)
	for _, c := range sorted {
		score := smetrics.JaroWinkler(name, c, 0.7, 4)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}

// WithSuggestion appends a "did you mean `x`?" clause to msg when Suggest
// finds a candidate, otherwise returns msg unchanged.
func WithSuggestion(msg, name string, candidates []string) string {
	if s := Suggest(name, candidates); s != "" && s != name {
		return fmt.Sprintf("%s (did you mean %q?)", msg, s)
	}
	return msg
}
