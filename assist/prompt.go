package assist

import (
	"fmt"
	"strings"

	core "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

// systemPrompt returns the system message that instructs the LLM on how to
// draft control tag descriptions for untagged code.
func systemPrompt() string {
	return `You are a compliance engineer annotating source code with NIST 800-53 control tags.
For each location, provide a JSON array with objects containing these fields:
- "file": the source file path (string)
- "line": the line number (number)
- "control_id": the suggested control identifier, e.g. "ia-2" (string)
- "description": one sentence describing how this code implements the control (string)

Descriptions must state what the code does, in present tense, under 120 characters.
Pick the single best-fitting control from the candidates listed for each location.
Respond ONLY with a valid JSON array. Do not include markdown fences or other text.`
}

// candidate is one untagged location with its surrounding source context and
// suggested controls.
type candidate struct {
	diag       validate.Diagnostic
	sourceLine string
	controls   []string
	titles     map[string]string
}

// formatCandidates converts a batch of untagged locations into structured
// text for the LLM.
func formatCandidates(cc []candidate) string {
	var b strings.Builder
	for i, c := range cc {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "File: %s\n", c.diag.SourceFile)
		fmt.Fprintf(&b, "Line: %d\n", c.diag.Line)
		if c.sourceLine != "" {
			fmt.Fprintf(&b, "Source: %s\n", strings.TrimSpace(c.sourceLine))
		}
		fmt.Fprintf(&b, "Hint: %s\n", c.diag.Message)
		if len(c.controls) > 0 {
			b.WriteString("Candidate controls:\n")
			for _, id := range c.controls {
				if title := c.titles[id]; title != "" {
					fmt.Fprintf(&b, "  %s: %s\n", id, title)
				} else {
					fmt.Fprintf(&b, "  %s\n", id)
				}
			}
		}
	}
	return b.String()
}

// formatContext summarises the scan result for the LLM so drafted
// descriptions fit the project's current compliance posture.
func formatContext(result *core.ScanResult) string {
	var b strings.Builder
	b.WriteString("Scan context:\n")
	fmt.Fprintf(&b, "Baseline: %s\n", result.Baseline)
	fmt.Fprintf(&b, "Coverage: %.1f%% (%d of %d required controls tagged)\n",
		result.Coverage.CoveragePercentage,
		len(result.Coverage.CoveredControls),
		len(result.Coverage.RequiredControls))

	if len(result.Coverage.MissingControls) > 0 {
		b.WriteString("Missing controls:\n")
		for _, ctrl := range result.Coverage.MissingControls {
			fmt.Fprintf(&b, "  %s: %s\n", ctrl.ID, ctrl.Title)
		}
	}

	counts := validate.CountBySeverity(result.Diagnostics)
	if len(counts) > 0 {
		b.WriteString("Open diagnostics:\n")
		for _, sev := range []validate.Severity{
			validate.SeverityError,
			validate.SeverityWarning,
			validate.SeverityInformation,
		} {
			if c := counts[sev]; c > 0 {
				fmt.Fprintf(&b, "  %s: %d\n", sev, c)
			}
		}
	}

	return b.String()
}

// summaryPrompt returns a user message asking the LLM to summarise the
// drafted annotations for the operator.
func summaryPrompt(drafts []TagDraft) string {
	var b strings.Builder
	b.WriteString("Based on these drafted control annotations, provide a 2-3 sentence summary ")
	b.WriteString("of what compliance evidence they add. Mention the most impactful controls.\n\n")
	for _, d := range drafts {
		fmt.Fprintf(&b, "- %s:%d [%s] %s\n", d.File, d.Line, d.ControlID, d.Description)
	}
	b.WriteString("\nRespond with ONLY the summary text, no JSON.")
	return b.String()
}
