// Package report serializes compliance reports to Markdown and JSON. Both
// renderers are pure formatting over an aggregated coverage report; output
// is deterministic given identical report and timestamp.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ctlscan-hq/ctlscan/core/coverage"
)

// maxFilesListed caps the file paths shown per control in the breakdown
// before collapsing to an "and N more" suffix.
const maxFilesListed = 5

// Markdown renders the report as a Markdown document with fixed section
// order: summary, per-control breakdown, coverage, missing controls.
func Markdown(r *coverage.Report, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Compliance Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))

	// Summary.
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- Tagged controls: %d\n", len(r.TaggedControls))
	fmt.Fprintf(&b, "- Tag occurrences: %d\n", r.TagCount())
	fmt.Fprintf(&b, "- Files with tags: %d\n\n", r.FileCount())

	// Per-control breakdown, sorted by control id for stable output.
	fmt.Fprintf(&b, "## Controls\n\n")
	ids := make([]string, 0, len(r.TaggedControls))
	for id := range r.TaggedControls {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if title := r.ControlTitles[id]; title != "" {
			fmt.Fprintf(&b, "### %s — %s (%d occurrence(s))\n\n", id, title, r.TaggedControls[id])
		} else {
			fmt.Fprintf(&b, "### %s (%d occurrence(s))\n\n", id, r.TaggedControls[id])
		}
		files := r.FilesByControl[id]
		shown := files
		if len(shown) > maxFilesListed {
			shown = shown[:maxFilesListed]
		}
		for _, f := range shown {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		if extra := len(files) - len(shown); extra > 0 {
			fmt.Fprintf(&b, "- and %d more\n", extra)
		}
		b.WriteString("\n")
	}

	// Coverage.
	fmt.Fprintf(&b, "## Coverage (%s baseline)\n\n", r.Baseline)
	fmt.Fprintf(&b, "- Required controls: %d\n", len(r.RequiredControls))
	fmt.Fprintf(&b, "- Covered controls: %d\n", len(r.CoveredControls))
	fmt.Fprintf(&b, "- Coverage: %.1f%%\n\n", r.CoveragePercentage)

	// Missing controls in catalog order.
	fmt.Fprintf(&b, "## Missing Controls\n\n")
	if len(r.MissingControls) == 0 {
		fmt.Fprintf(&b, "None — every required control is tagged.\n")
	} else {
		for _, ctrl := range r.MissingControls {
			fmt.Fprintf(&b, "- %s: %s\n", ctrl.ID, ctrl.Title)
		}
	}

	return b.String()
}
