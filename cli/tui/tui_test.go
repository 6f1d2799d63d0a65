package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ctlscan-hq/ctlscan/core/catalog"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

func testDiagnostics() []validate.Diagnostic {
	return []validate.Diagnostic{
		{
			Severity:   validate.SeverityError,
			Code:       validate.CodeUnknownControl,
			Message:    `unknown control "zz-99" — not present in the catalog`,
			Line:       5,
			Column:     3,
			SourceFile: "auth.go",
		},
		{
			Severity:   validate.SeverityWarning,
			Code:       validate.CodeMissingDescription,
			Message:    "tag ia-2 has no description — add a short justification",
			Line:       12,
			Column:     1,
			SourceFile: "auth.go",
		},
		{
			Severity:   validate.SeverityInformation,
			Code:       validate.CodeMissingTag,
			Message:    "Credential handling detected — consider tagging with ia-5",
			Line:       30,
			Column:     1,
			SourceFile: "vault.go",
		},
	}
}

func TestNewModel(t *testing.T) {
	m := New(testDiagnostics(), catalog.Builtin(), ".", 5)

	if m.state != listView {
		t.Errorf("initial state = %d, want listView (0)", m.state)
	}
	if len(m.filtered) != 3 {
		t.Errorf("filtered count = %d, want 3", len(m.filtered))
	}
}

func TestModelNavigateDown(t *testing.T) {
	m := New(testDiagnostics(), catalog.Builtin(), ".", 5)

	if m.cursor != 0 {
		t.Errorf("initial cursor = %d, want 0", m.cursor)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.cursor != 1 {
		t.Errorf("cursor after j = %d, want 1", m.cursor)
	}
}

func TestModelEnterDetail(t *testing.T) {
	m := New(testDiagnostics(), catalog.Builtin(), ".", 5)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != detailView {
		t.Errorf("state after enter = %d, want detailView (1)", m.state)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if m.state != listView {
		t.Errorf("state after esc = %d, want listView (0)", m.state)
	}
}

func TestModelSeverityFilter(t *testing.T) {
	m := New(testDiagnostics(), catalog.Builtin(), ".", 5)

	// Initially all 3 diagnostics.
	if len(m.filtered) != 3 {
		t.Errorf("initial filtered = %d, want 3", len(m.filtered))
	}

	// Press 's' to cycle to error.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if m.filter.activeSeverity() != "error" {
		t.Errorf("after first s: severity = %q, want error", m.filter.activeSeverity())
	}
	if len(m.filtered) != 1 {
		t.Errorf("error filtered = %d, want 1", len(m.filtered))
	}

	// Press 's' again to cycle to warning.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if m.filter.activeSeverity() != "warning" {
		t.Errorf("after second s: severity = %q, want warning", m.filter.activeSeverity())
	}
	if len(m.filtered) != 1 {
		t.Errorf("warning filtered = %d, want 1", len(m.filtered))
	}
}

func TestModelSearch(t *testing.T) {
	m := New(testDiagnostics(), catalog.Builtin(), ".", 5)

	// Enter search mode.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filter.searching {
		t.Error("expected searching = true after /")
	}

	// Type "vault".
	for _, r := range "vault" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	// Confirm search.
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filter.searching {
		t.Error("expected searching = false after enter")
	}
	if len(m.filtered) != 1 {
		t.Errorf("search filtered = %d, want 1", len(m.filtered))
	}
}

func TestModelView(t *testing.T) {
	m := New(testDiagnostics(), catalog.Builtin(), ".", 5)

	// Should render without panic.
	view := m.View()
	if view == "" {
		t.Error("View() returned empty string")
	}
	if !strings.Contains(view, "3 diagnostics") {
		t.Errorf("list view missing count header:\n%s", view)
	}
}

func TestDetailViewShowsControl(t *testing.T) {
	m := New(testDiagnostics(), catalog.Builtin(), ".", 5)

	// Move to the missing-tag diagnostic and open detail.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	view := m.View()
	if !strings.Contains(view, "ia-5") {
		t.Errorf("detail view missing control reference:\n%s", view)
	}
	if !strings.Contains(view, "vault.go:30") {
		t.Errorf("detail view missing location:\n%s", view)
	}
}

func TestWrapText(t *testing.T) {
	out := wrapText("one two three four five", 12, "  ")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 2 {
		t.Errorf("expected wrapping, got %q", out)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "  ") {
			t.Errorf("line %q missing indent", l)
		}
	}
}

func TestSourceContextMissingFile(t *testing.T) {
	if got := sourceContext(".", "does-not-exist.go", 3, 2); got != nil {
		t.Errorf("expected nil context for missing file, got %v", got)
	}
}
