// Package policy evaluates scan results against configurable thresholds to
// determine pass/fail outcomes for CI pipelines.
package policy

import (
	"fmt"
	"strings"

	"github.com/ctlscan-hq/ctlscan/core/coverage"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

// Config defines the policy evaluation parameters.
type Config struct {
	FailOn      validate.Severity `yaml:"fail_on"`
	WarnOn      validate.Severity `yaml:"warn_on"`
	MinCoverage float64           `yaml:"min_coverage"`
}

// Result holds the outcome of a policy evaluation.
type Result struct {
	Pass     bool
	ExitCode int
	Failing  []validate.Diagnostic
	Warnings []string
	Summary  string
}

// severityRank maps severity levels to numeric ranks for comparison.
// Lower rank = more severe.
var severityRank = map[validate.Severity]int{
	validate.SeverityError:       0,
	validate.SeverityWarning:     1,
	validate.SeverityInformation: 2,
}

// Evaluate applies policy rules to the scan outcome and returns the result.
func Evaluate(cfg Config, cov *coverage.Report, diags []validate.Diagnostic) *Result {
	r := &Result{Pass: true, ExitCode: 0}

	failOn := cfg.FailOn
	if failOn == "" {
		failOn = validate.SeverityError
	}

	for i := range diags {
		d := diags[i]
		if meetsThreshold(d.Severity, failOn) {
			r.Failing = append(r.Failing, d)
		}
	}
	if len(r.Failing) > 0 {
		r.Pass = false
		r.ExitCode = 1
	}

	if cfg.WarnOn != "" {
		for i := range diags {
			d := diags[i]
			if meetsThreshold(d.Severity, cfg.WarnOn) && !meetsThreshold(d.Severity, failOn) {
				r.Warnings = append(r.Warnings, fmt.Sprintf("warning: %s %s at %s:%d",
					d.Severity, d.Code, d.SourceFile, d.Line))
			}
		}
	}

	if cov != nil && cfg.MinCoverage > 0 && cov.CoveragePercentage < cfg.MinCoverage {
		r.Pass = false
		r.ExitCode = 1
		r.Warnings = append(r.Warnings, fmt.Sprintf("coverage %.1f%% below required %.1f%%",
			cov.CoveragePercentage, cfg.MinCoverage))
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d failing diagnostic(s)", len(r.Failing)))
	if cov != nil {
		parts = append(parts, fmt.Sprintf("%.1f%% coverage", cov.CoveragePercentage))
	}
	if r.Pass {
		r.Summary = fmt.Sprintf("policy: pass (%s)", strings.Join(parts, ", "))
	} else {
		r.Summary = fmt.Sprintf("policy: fail (%s)", strings.Join(parts, ", "))
	}

	return r
}

// meetsThreshold returns true if severity is at or above the threshold.
func meetsThreshold(severity, threshold validate.Severity) bool {
	sr, ok1 := severityRank[severity]
	tr, ok2 := severityRank[threshold]
	if !ok1 || !ok2 {
		return false
	}
	return sr <= tr
}
