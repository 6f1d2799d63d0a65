package tui

import (
	"fmt"
	"strings"

	"github.com/ctlscan-hq/ctlscan/core/validate"
)

// renderList renders the diagnostic list view.
func renderList(m *Model) string {
	var b strings.Builder

	// Header.
	title := titleStyle.Render(fmt.Sprintf(" ctlscan — %d diagnostics", len(m.filtered)))
	if len(m.diagnostics) != len(m.filtered) {
		title += subtleStyle.Render(fmt.Sprintf(" (of %d total)", len(m.diagnostics)))
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	// Filter status.
	filterLine := subtleStyle.Render(" Filter: ") +
		"[" + m.filter.activeSeverity() + "]"
	if m.filter.search != "" {
		filterLine += subtleStyle.Render("  Search: ") + "[" + m.filter.search + "]"
	}
	b.WriteString(filterLine)
	b.WriteString("\n\n")

	// Diagnostic list.
	if len(m.filtered) == 0 {
		b.WriteString(subtleStyle.Render("  No diagnostics match the current filters.\n"))
	} else {
		// Calculate visible window.
		visibleLines := m.height - 8 // Header + filter + help lines.
		if visibleLines < 1 {
			visibleLines = 1
		}
		start := m.cursor - visibleLines/2
		if start < 0 {
			start = 0
		}
		end := start + visibleLines
		if end > len(m.filtered) {
			end = len(m.filtered)
			start = end - visibleLines
			if start < 0 {
				start = 0
			}
		}

		for i := start; i < end; i++ {
			d := m.filtered[i]
			line := renderDiagnosticLine(d, i == m.cursor)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	// Search input.
	if m.filter.searching {
		b.WriteString("\n")
		b.WriteString(" Search: " + m.filter.search + "█")
		b.WriteString("\n")
	}

	// Help.
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(" ↑↓ navigate  enter detail  / search  s severity  q quit"))
	b.WriteString("\n")

	return b.String()
}

// renderDiagnosticLine renders a single diagnostic line in the list.
func renderDiagnosticLine(d validate.Diagnostic, selected bool) string {
	badge := severityBadge(d.Severity)
	code := codeStyle.Render(fmt.Sprintf("%-19s", d.Code))

	fileLoc := d.SourceFile
	if d.Line > 0 {
		fileLoc = fmt.Sprintf("%s:%d", d.SourceFile, d.Line)
	}
	file := fileStyle.Render(fmt.Sprintf("%-30s", fileLoc))

	line := fmt.Sprintf(" %s  %s  %s  %s", badge, code, file, d.Message)

	if selected {
		return selectedStyle.Render("▸") + line
	}
	return " " + line
}
