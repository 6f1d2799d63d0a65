package tui

import (
	"strings"

	"github.com/ctlscan-hq/ctlscan/core/validate"
)

// severityOrder defines the cycle order for the severity filter toggle.
var severityOrder = []validate.Severity{
	validate.SeverityError,
	validate.SeverityWarning,
	validate.SeverityInformation,
}

// filterState tracks the active filter configuration.
type filterState struct {
	severityIdx int    // -1 = all, 0..2 = specific severity
	search      string // free-text search query
	searching   bool   // true when search input is active
}

func newFilterState() filterState {
	return filterState{severityIdx: -1}
}

// cycleSeverity advances the severity filter to the next level.
func (f *filterState) cycleSeverity() {
	f.severityIdx++
	if f.severityIdx >= len(severityOrder) {
		f.severityIdx = -1
	}
}

// activeSeverity returns the current severity filter, or "all".
func (f *filterState) activeSeverity() string {
	if f.severityIdx < 0 {
		return "all"
	}
	return string(severityOrder[f.severityIdx])
}

// matchesDiagnostic returns true if the diagnostic passes all active filters.
func (f *filterState) matchesDiagnostic(d validate.Diagnostic) bool {
	// Severity filter.
	if f.severityIdx >= 0 {
		if d.Severity != severityOrder[f.severityIdx] {
			return false
		}
	}

	// Search filter.
	if f.search != "" {
		q := strings.ToLower(f.search)
		if !strings.Contains(strings.ToLower(string(d.Code)), q) &&
			!strings.Contains(strings.ToLower(d.SourceFile), q) &&
			!strings.Contains(strings.ToLower(d.Message), q) {
			return false
		}
	}

	return true
}

// filterDiagnostics returns diagnostics that pass the active filters.
func (f *filterState) filterDiagnostics(all []validate.Diagnostic) []validate.Diagnostic {
	var result []validate.Diagnostic
	for _, d := range all {
		if f.matchesDiagnostic(d) {
			result = append(result, d)
		}
	}
	return result
}
