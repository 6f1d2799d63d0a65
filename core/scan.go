// Package core provides the shared scan pipeline for ctlscan.
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ctlscan-hq/ctlscan/core/catalog"
	"github.com/ctlscan-hq/ctlscan/core/coverage"
	"github.com/ctlscan-hq/ctlscan/core/discovery"
	"github.com/ctlscan-hq/ctlscan/core/policy"
	"github.com/ctlscan-hq/ctlscan/core/tags"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

// ScanResult holds the complete output of a scan pipeline run.
type ScanResult struct {
	Catalog      *catalog.Catalog
	Baseline     catalog.Baseline
	Tags         map[string][]tags.Tag
	Diagnostics  []validate.Diagnostic
	Coverage     *coverage.Report
	PolicyResult *policy.Result
	FilesScanned int
}

// ScanOptions holds optional parameters for RunScanWithOptions. The zero
// value means no additional options are applied.
type ScanOptions struct {
	// Baseline selects which control baseline coverage is computed against.
	// CLI flags take precedence over .ctlscan.yaml config values; the
	// default is moderate.
	Baseline string

	// CatalogPath is a path to a YAML file or directory containing
	// supplementary control definitions merged over the built-in catalog.
	CatalogPath string
}

// RunScan executes the full scan pipeline against the given target path.
// It discovers scannable files, parses control tags, validates them against
// the catalog, aggregates coverage, and evaluates policy. If a .ctlscan.yaml
// config file is present in the target directory, its settings are applied.
func RunScan(target string) (*ScanResult, error) {
	return RunScanWithOptions(target, ScanOptions{})
}

// RunScanWithOptions executes the full scan pipeline with the given options.
// See RunScan for a description of the pipeline stages.
func RunScanWithOptions(target string, opts ScanOptions) (*ScanResult, error) {
	// Load project config.
	cfg, err := LoadScanConfig(target)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Resolve the baseline (CLI flag > config > moderate).
	baselineName := opts.Baseline
	if baselineName == "" {
		baselineName = cfg.Scan.Baseline
	}
	if baselineName == "" {
		baselineName = string(catalog.BaselineModerate)
	}
	if !catalog.ValidBaseline(baselineName) {
		return nil, fmt.Errorf("unknown baseline %q", baselineName)
	}
	baseline := catalog.Baseline(baselineName)

	// Phase 1: Load the control catalog.
	catalogPath := opts.CatalogPath
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	if catalogPath != "" && !filepath.IsAbs(catalogPath) {
		catalogPath = filepath.Join(target, catalogPath)
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	// Phase 2: Discover scannable files.
	walker := discovery.NewWalker(target)
	walker.IgnorePatterns = append(walker.IgnorePatterns, cfg.Scan.Exclude...)
	artifacts, err := walker.Walk()
	if err != nil {
		return nil, err
	}

	// Phase 3: Parse and validate each file in parallel. Results are
	// collected per file and combined afterwards so output stays
	// deterministic regardless of scheduling.
	type fileResult struct {
		path        string
		tags        []tags.Tag
		diagnostics []validate.Diagnostic
	}

	validator := validate.NewValidator()
	results := make([]fileResult, len(artifacts))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i := range artifacts {
		g.Go(func() error {
			artifact := artifacts[i]
			content, err := os.ReadFile(artifact.AbsPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", artifact.Path, err)
			}
			results[i] = fileResult{
				path:        artifact.Path,
				tags:        tags.Parse(content, artifact.Path),
				diagnostics: validator.ValidateDocument(content, artifact.Path, cat),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Phase 4: Merge per-file results. Artifacts are already sorted by
	// path, so iterating in index order keeps diagnostics in file order.
	perFileTags := make(map[string][]tags.Tag)
	var diagnostics []validate.Diagnostic
	partial := coverage.NewPartial()
	for i := range results {
		r := results[i]
		if len(r.tags) > 0 {
			perFileTags[r.path] = r.tags
		}
		diagnostics = append(diagnostics, r.diagnostics...)
		partial.AddFile(r.path, r.tags)
	}
	sortDiagnostics(diagnostics)

	// Phase 5: Aggregate coverage.
	report := partial.Resolve(cat, baseline)

	// Phase 6: Evaluate policy.
	policyCfg := policy.Config{
		FailOn:      validate.Severity(cfg.Policy.FailOn),
		WarnOn:      validate.Severity(cfg.Policy.WarnOn),
		MinCoverage: cfg.Policy.MinCoverage,
	}
	policyResult := policy.Evaluate(policyCfg, report, diagnostics)

	return &ScanResult{
		Catalog:      cat,
		Baseline:     baseline,
		Tags:         perFileTags,
		Diagnostics:  diagnostics,
		Coverage:     report,
		PolicyResult: policyResult,
		FilesScanned: len(artifacts),
	}, nil
}

// sortDiagnostics orders diagnostics by file, then position, then code so
// repeated scans of the same tree produce identical output.
func sortDiagnostics(dd []validate.Diagnostic) {
	sort.SliceStable(dd, func(i, j int) bool {
		if dd[i].SourceFile != dd[j].SourceFile {
			return dd[i].SourceFile < dd[j].SourceFile
		}
		if dd[i].Line != dd[j].Line {
			return dd[i].Line < dd[j].Line
		}
		if dd[i].Column != dd[j].Column {
			return dd[i].Column < dd[j].Column
		}
		return dd[i].Code < dd[j].Code
	})
}
