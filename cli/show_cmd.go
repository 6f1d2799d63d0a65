package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/ctlscan-hq/ctlscan/cli/tui"
	ctlscan "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/catalog"
	"github.com/ctlscan-hq/ctlscan/core/report"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

// runShow implements the "ctlscan show" command.
func runShow(args []string) int {
	// Extract positional args (paths) before parsing flags so that
	// "ctlscan show . --severity error" works like "ctlscan show --severity error .".
	var flagArgs []string
	var positionalArgs []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flagArgs = append(flagArgs, args[i])
			// If this flag takes a value (not a boolean), consume the next arg too.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") &&
				!isBoolFlag(args[i]) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		} else {
			positionalArgs = append(positionalArgs, args[i])
		}
	}

	fs := flag.NewFlagSet("show", flag.ContinueOnError)

	var (
		severity    string
		codePattern string
		filePattern string
		input       string
		catalogPath string
		jsonOutput  bool
		contextN    int
	)

	fs.StringVar(&severity, "severity", "", "filter by severity: error,warning,information (comma-separated)")
	fs.StringVar(&codePattern, "code", "", "filter by diagnostic code substring (e.g., unknown-control)")
	fs.StringVar(&filePattern, "file", "", "filter by file pattern (e.g., src/)")
	fs.StringVar(&input, "input", "", "path to compliance.json (default: run scan)")
	fs.StringVar(&catalogPath, "catalog", "", "path to a supplementary control catalog file or directory")
	fs.BoolVar(&jsonOutput, "json", false, "output JSON instead of TUI")
	fs.IntVar(&contextN, "context", 5, "number of source context lines")

	if err := fs.Parse(flagArgs); err != nil {
		return 2
	}
	// Merge any remaining positional args from flag parse with pre-extracted ones.
	positionalArgs = append(positionalArgs, fs.Args()...)

	// Load or generate diagnostics.
	var (
		diagnostics []validate.Diagnostic
		basePath    string
	)

	if input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: reading %s: %v\n", input, err)
			return 2
		}
		var rep report.JSONReport
		if err := json.Unmarshal(data, &rep); err != nil {
			fmt.Fprintf(os.Stderr, "error: parsing report JSON: %v\n", err)
			return 2
		}
		diagnostics = rep.Diagnostics
		basePath = "."
	} else {
		target := "."
		if len(positionalArgs) > 0 {
			target = positionalArgs[0]
		}

		fmt.Printf("ctlscan — scanning %s\n", target)
		result, err := ctlscan.RunScanWithOptions(target, ctlscan.ScanOptions{CatalogPath: catalogPath})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: scan failed: %v\n", err)
			return 2
		}

		fmt.Printf("[results] %d diagnostic(s)\n", len(result.Diagnostics))

		if len(result.Diagnostics) == 0 {
			fmt.Println("[show] no diagnostics to display")
			return 0
		}

		diagnostics = result.Diagnostics
		basePath = target
	}

	filtered := filterDiagnostics(diagnostics, severity, codePattern, filePattern)

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading catalog: %v\n", err)
		return 2
	}

	// Non-interactive: JSON output.
	if jsonOutput || !isTerminal() {
		data, err := json.MarshalIndent(filtered, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: marshalling JSON: %v\n", err)
			return 2
		}
		fmt.Println(string(data))
		return 0
	}

	// Interactive: TUI.
	m := tui.New(filtered, cat, basePath, contextN)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: TUI failed: %v\n", err)
		return 2
	}
	return 0
}

// filterDiagnostics applies the show command's CLI filters.
func filterDiagnostics(dd []validate.Diagnostic, severity, codePattern, filePattern string) []validate.Diagnostic {
	var severities []validate.Severity
	if severity != "" {
		for _, s := range strings.Split(severity, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				severities = append(severities, validate.Severity(s))
			}
		}
	}

	var out []validate.Diagnostic
	for _, d := range dd {
		if len(severities) > 0 {
			match := false
			for _, s := range severities {
				if d.Severity == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if codePattern != "" && !strings.Contains(string(d.Code), codePattern) {
			continue
		}
		if filePattern != "" && !strings.Contains(d.SourceFile, filePattern) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// isBoolFlag returns true if the given flag name is a boolean flag
// (i.e., it does not consume a following value argument).
func isBoolFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	switch name {
	case "json":
		return true
	default:
		return false
	}
}

// isTerminal returns true if stdout is connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
