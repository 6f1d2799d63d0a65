package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ctlscan "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/badge"
	"github.com/ctlscan-hq/ctlscan/core/coverage"
	"github.com/ctlscan-hq/ctlscan/core/report"
)

// runBadge implements the "ctlscan badge" command.
func runBadge(args []string) int {
	var flagArgs []string
	var positionalArgs []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flagArgs = append(flagArgs, args[i])
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		} else {
			positionalArgs = append(positionalArgs, args[i])
		}
	}

	fs := flag.NewFlagSet("badge", flag.ContinueOnError)

	var (
		input  string
		output string
		label  string
	)

	fs.StringVar(&input, "input", "", "path to compliance.json (default: run scan)")
	fs.StringVar(&output, "output", ".github/ctlscan-badge.svg", "output SVG file path")
	fs.StringVar(&label, "label", "compliance", "badge label text")

	if err := fs.Parse(flagArgs); err != nil {
		return 2
	}
	positionalArgs = append(positionalArgs, fs.Args()...)

	var cov *coverage.Report

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
		cov = rep.Coverage
	} else {
		target := "."
		if len(positionalArgs) > 0 {
			target = positionalArgs[0]
		}
		fmt.Printf("ctlscan — scanning %s\n", target)
		result, err := ctlscan.RunScan(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: scan failed: %v\n", err)
			return 2
		}
		cov = result.Coverage
		fmt.Printf("[results] %.1f%% coverage (%s baseline)\n",
			cov.CoveragePercentage, result.Baseline)
	}

	b := badge.GenerateFromReport(cov, label)

	// Ensure parent directory exists.
	if dir := filepath.Dir(output); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error: creating directory %s: %v\n", dir, err)
			return 2
		}
	}

	if err := os.WriteFile(output, []byte(b.SVG), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", output, err)
		return 2
	}

	fmt.Printf("[badge] wrote %s (%s: %s, grade %s)\n", output, label, b.Value, b.Grade)
	return 0
}
