package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ctlscan-hq/ctlscan/assist"
	ctlscan "github.com/ctlscan-hq/ctlscan/core"
)

// runDescribe runs a scan and drafts tag annotations for untagged
// locations using an LLM.
func runDescribe(args []string) int {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)

	var (
		model     string
		baseURL   string
		batchSize int
		output    string
	)

	fs.StringVar(&model, "model", "", "LLM model name (default: gpt-4o)")
	fs.StringVar(&baseURL, "base-url", "", "custom OpenAI-compatible API base URL")
	fs.IntVar(&batchSize, "batch-size", 10, "untagged locations per LLM request")
	fs.StringVar(&output, "output", "tag-drafts.json", "output file path")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ctlscan describe <path> [flags]")
		return 2
	}
	target := fs.Arg(0)

	// Project config supplies defaults the flags can override.
	cfg, err := ctlscan.LoadScanConfig(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if model == "" {
		model = cfg.Describe.Model
	}
	if baseURL == "" {
		baseURL = cfg.Describe.BaseURL
	}

	apiKeyEnv := cfg.Describe.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" && baseURL == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required (or set --base-url for a local endpoint)\n", apiKeyEnv)
		return 2
	}

	// Run scan.
	fmt.Printf("ctlscan — scanning %s\n", target)
	result, err := ctlscan.RunScan(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: scan failed: %v\n", err)
		return 2
	}

	fmt.Printf("[results] %d diagnostic(s)\n", len(result.Diagnostics))

	// Build provider.
	var providerOpts []assist.OpenAIOption
	if model != "" {
		providerOpts = append(providerOpts, assist.WithModel(model))
	}
	if apiKey != "" {
		providerOpts = append(providerOpts, assist.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		providerOpts = append(providerOpts, assist.WithBaseURL(baseURL))
	}
	if cfg.Describe.Timeout != "" {
		d, err := time.ParseDuration(cfg.Describe.Timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid describe timeout %q: %v\n", cfg.Describe.Timeout, err)
			return 2
		}
		providerOpts = append(providerOpts, assist.WithTimeout(d))
	}
	provider := assist.NewOpenAIProvider(providerOpts...)

	// Build describer.
	describerOpts := []assist.Option{assist.WithBasePath(target)}
	if batchSize > 0 {
		describerOpts = append(describerOpts, assist.WithBatchSize(batchSize))
	}
	describer := assist.NewDescriber(provider, describerOpts...)

	// Draft annotations.
	fmt.Println("[describe] drafting tag annotations...")
	report, err := describer.Describe(context.Background(), result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: describe failed: %v\n", err)
		return 2
	}

	if len(report.Drafts) == 0 {
		fmt.Println("[describe] no untagged locations to annotate")
		return 0
	}

	// Write report.
	if err := report.WriteFile(output); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", output, err)
		return 2
	}

	fmt.Printf("[describe] wrote %s (%d drafts)\n", output, len(report.Drafts))
	if report.Summary != "" {
		fmt.Printf("[summary] %s\n", report.Summary)
	}
	fmt.Println("[done]")
	return 0
}
