package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

var (
	// Severity colors.
	colorError   = lipgloss.Color("#FF0000")
	colorWarning = lipgloss.Color("#FFD700")
	colorInfo    = lipgloss.Color("#808080")

	// UI colors.
	colorTitle    = lipgloss.Color("#FFFFFF")
	colorSubtle   = lipgloss.Color("#666666")
	colorSelected = lipgloss.Color("#7D56F4")
	colorMatch    = lipgloss.Color("#FF6B6B")

	// Styles.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSelected)

	matchLineStyle = lipgloss.NewStyle().
			Foreground(colorMatch)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorSubtle)

	codeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#AAAAAA"))

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#88C0D0"))

	controlHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#A3BE8C"))

	familyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B48EAD"))
)

// severityStyle returns a styled severity badge.
func severityStyle(sev validate.Severity) lipgloss.Style {
	var color lipgloss.Color
	switch sev {
	case validate.SeverityError:
		color = colorError
	case validate.SeverityWarning:
		color = colorWarning
	default:
		color = colorInfo
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}

// severityBadge returns a short severity string for list display.
func severityBadge(sev validate.Severity) string {
	style := severityStyle(sev)
	switch sev {
	case validate.SeverityError:
		return style.Render(" ERR")
	case validate.SeverityWarning:
		return style.Render("WARN")
	default:
		return style.Render("INFO")
	}
}
