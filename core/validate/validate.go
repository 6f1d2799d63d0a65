// Package validate cross-checks @nist control tags against the catalog and
// flags security-relevant lines that carry no nearby annotation. It operates
// on one file's full text at a time and never fails on malformed input; the
// worst case is fewer diagnostics than expected.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/ctlscan-hq/ctlscan/core/catalog"
	"github.com/ctlscan-hq/ctlscan/core/tags"
)

// Severity indicates how serious a diagnostic is.
type Severity string

// Diagnostic severity levels.
const (
	SeverityError       Severity = "error"
	SeverityWarning     Severity = "warning"
	SeverityInformation Severity = "information"
)

// Code is a stable diagnostic identifier for downstream consumers.
type Code string

// Diagnostic codes. These strings are part of the output contract and must
// not change.
const (
	CodeUnknownControl     Code = "unknown-control"
	CodeMissingDescription Code = "missing-description"
	CodeMissingTag         Code = "missing-tag"
)

// Diagnostic is one validation finding.
type Diagnostic struct {
	Severity   Severity `json:"severity"`
	Code       Code     `json:"code"`
	Message    string   `json:"message"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	Offset     int      `json:"offset"`
	SourceFile string   `json:"source_file,omitempty"`
}

// proximityWindow is the number of lines above and below a security-relevant
// line searched for an @nist marker before a missing-tag advisory is raised.
const proximityWindow = 5

// Validator checks documents against a catalog using a fixed advisory rule
// table. The rule table is set at construction so tests can substitute a
// reduced set; a Validator is safe for concurrent use.
type Validator struct {
	advisory []AdvisoryRule

	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// NewValidator returns a Validator with the built-in advisory rules.
func NewValidator() *Validator {
	return NewValidatorWith(DefaultAdvisoryRules())
}

// NewValidatorWith returns a Validator with a custom advisory rule table.
func NewValidatorWith(advisory []AdvisoryRule) *Validator {
	return &Validator{
		advisory: advisory,
		cache:    make(map[string]*regexp.Regexp),
	}
}

// ValidateDocument validates one file's full text and returns all
// diagnostics. Tag checks (unknown-control, missing-description) and the
// line-proximity scan (missing-tag) run as independent passes; each pass
// preserves document order.
func (v *Validator) ValidateDocument(text []byte, sourceFile string, cat *catalog.Catalog) []Diagnostic {
	var out []Diagnostic

	// Pass 1: parsed tags against the catalog.
	for _, tag := range tags.Parse(text, sourceFile) {
		if !cat.Has(tag.ControlID) {
			out = append(out, Diagnostic{
				Severity:   SeverityError,
				Code:       CodeUnknownControl,
				Message:    fmt.Sprintf("unknown control %q — not present in the catalog", tag.ControlID),
				Line:       tag.Line,
				Column:     tag.Column,
				Offset:     tag.Offset,
				SourceFile: sourceFile,
			})
			continue
		}
		if strings.TrimSpace(tag.Description) == "" {
			out = append(out, Diagnostic{
				Severity:   SeverityWarning,
				Code:       CodeMissingDescription,
				Message:    fmt.Sprintf("tag %s has no description — add a short justification", tag.ControlID),
				Line:       tag.Line,
				Column:     tag.Column,
				Offset:     tag.Offset,
				SourceFile: sourceFile,
			})
		}
	}

	// Pass 2: untagged security-relevant lines.
	lines := strings.Split(string(text), "\n")
	offset := 0
	for i, line := range lines {
		lineStart := offset
		offset += len(line) + 1

		if tags.ContainsMarker(line) {
			continue
		}

		for _, rule := range v.advisory {
			re := v.compile(rule.Pattern)
			if re == nil || !re.MatchString(line) {
				continue
			}
			if !v.taggedNearby(lines, i) {
				out = append(out, Diagnostic{
					Severity:   SeverityInformation,
					Code:       CodeMissingTag,
					Message:    rule.Message,
					Line:       i + 1,
					Column:     1,
					Offset:     lineStart,
					SourceFile: sourceFile,
				})
			}
			// At most one missing-tag diagnostic per line.
			break
		}
	}

	return out
}

// taggedNearby reports whether any line within the proximity window around
// index i (clamped to document bounds) carries the @nist marker.
func (v *Validator) taggedNearby(lines []string, i int) bool {
	lo := i - proximityWindow
	if lo < 0 {
		lo = 0
	}
	hi := i + proximityWindow
	if hi > len(lines)-1 {
		hi = len(lines) - 1
	}
	for j := lo; j <= hi; j++ {
		if tags.ContainsMarker(lines[j]) {
			return true
		}
	}
	return false
}

// compile returns the compiled regexp for pattern, using the cache when
// possible. Invalid patterns return nil and the rule never matches.
func (v *Validator) compile(pattern string) *regexp.Regexp {
	v.mu.Lock()
	defer v.mu.Unlock()

	if re, ok := v.cache[pattern]; ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	v.cache[pattern] = re
	return re
}

// CountBySeverity tallies diagnostics by severity level.
func CountBySeverity(dd []Diagnostic) map[Severity]int {
	counts := make(map[Severity]int)
	for i := range dd {
		counts[dd[i].Severity]++
	}
	return counts
}
