package main

import (
	"flag"
	"fmt"
	"os"

	ctlscan "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

// runCheck implements the "ctlscan check" command: scan and print
// diagnostics in compiler style without writing report files.
func runCheck(args []string, opts ctlscan.ScanOptions) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var quiet bool
	fs.BoolVar(&quiet, "quiet", false, "suppress diagnostics, only set the exit code")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	target := "."
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}

	result, err := ctlscan.RunScanWithOptions(target, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: scan failed: %v\n", err)
		return 2
	}

	if !quiet {
		for _, d := range result.Diagnostics {
			fmt.Printf("%s:%d:%d: %s %s: %s\n",
				d.SourceFile, d.Line, d.Column, d.Severity, d.Code, d.Message)
		}

		counts := validate.CountBySeverity(result.Diagnostics)
		fmt.Printf("[results] %d error(s), %d warning(s), %d hint(s), %.1f%% coverage (%s baseline)\n",
			counts[validate.SeverityError], counts[validate.SeverityWarning],
			counts[validate.SeverityInformation],
			result.Coverage.CoveragePercentage, result.Baseline)

		if result.PolicyResult != nil {
			fmt.Printf("[policy] %s\n", result.PolicyResult.Summary)
		}
	}

	if result.PolicyResult != nil {
		return result.PolicyResult.ExitCode
	}
	return 0
}
