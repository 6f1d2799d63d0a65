package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ctlscan-hq/ctlscan/core/catalog"
)

var controlIDPattern = regexp.MustCompile(`\b[a-z]{2}-[0-9]+\b`)

// renderDetail renders the detail view for a single diagnostic.
func renderDetail(m *Model) string {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return "No diagnostic selected."
	}

	d := m.filtered[m.cursor]

	var b strings.Builder

	// Header.
	sevBadge := severityStyle(d.Severity).Render(strings.ToUpper(string(d.Severity)))
	b.WriteString(fmt.Sprintf(" %s · %s · %s\n",
		codeStyle.Render(string(d.Code)),
		d.Message,
		sevBadge))
	b.WriteString(headerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	// File location.
	fileLoc := d.SourceFile
	if d.Line > 0 {
		fileLoc = fmt.Sprintf("%s:%d", d.SourceFile, d.Line)
	}
	b.WriteString(" " + fileStyle.Render(fileLoc) + "\n\n")

	// Source context.
	for _, line := range sourceContext(m.basePath, d.SourceFile, d.Line, m.contextLines) {
		prefix := "  "
		if line.isMatch {
			prefix = matchLineStyle.Render("→ ")
		}
		lineNum := subtleStyle.Render(fmt.Sprintf("%4d │ ", line.number))
		text := line.text
		if line.isMatch {
			text = matchLineStyle.Render(text)
		}
		b.WriteString(prefix + lineNum + text + "\n")
	}
	b.WriteString("\n")

	// Referenced control.
	if ctl, ok := lookupControl(d.Message, m.catalog); ok {
		b.WriteString(" " + controlHeaderStyle.Render(ctl.ID+" "+ctl.Title) + "\n")
		b.WriteString(" " + familyStyle.Render("Family: "+ctl.Family) + "\n")
		if ctl.Description != "" {
			b.WriteString(wrapText(ctl.Description, m.width-4, "   "))
		}
		b.WriteString("\n")
	}

	// Help.
	b.WriteString(helpStyle.Render(" esc back  n/p next/prev  q quit"))
	b.WriteString("\n")

	return b.String()
}

type contextLine struct {
	number  int
	text    string
	isMatch bool
}

// sourceContext reads lines around the diagnostic location from disk.
// Returns nil when the file cannot be read.
func sourceContext(basePath, sourceFile string, line, contextLines int) []contextLine {
	if sourceFile == "" || line <= 0 {
		return nil
	}
	path := sourceFile
	if !filepath.IsAbs(path) && basePath != "" {
		path = filepath.Join(basePath, sourceFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	lines := strings.Split(string(data), "\n")
	start := line - 1 - contextLines
	if start < 0 {
		start = 0
	}
	end := line + contextLines
	if end > len(lines) {
		end = len(lines)
	}

	var result []contextLine
	for i := start; i < end; i++ {
		result = append(result, contextLine{
			number:  i + 1,
			text:    lines[i],
			isMatch: i+1 == line,
		})
	}
	return result
}

// lookupControl resolves the first control ID mentioned in the message.
func lookupControl(message string, cat *catalog.Catalog) (catalog.Control, bool) {
	if cat == nil {
		return catalog.Control{}, false
	}
	id := controlIDPattern.FindString(strings.ToLower(message))
	if id == "" {
		return catalog.Control{}, false
	}
	return cat.Get(id)
}

// wrapText wraps text at the given width with the given indent prefix.
func wrapText(text string, width int, indent string) string {
	if width <= 0 {
		width = 78
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(indent)
	lineLen := len(indent)

	for i, word := range words {
		if i > 0 && lineLen+1+len(word) > width {
			b.WriteString("\n" + indent)
			lineLen = len(indent)
		} else if i > 0 {
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	b.WriteString("\n")
	return b.String()
}
