// Package main is the entry point for the ctlscan CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ctlscan "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/badge"
	"github.com/ctlscan-hq/ctlscan/core/report"
	"github.com/ctlscan-hq/ctlscan/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the exit code.
// 0 = clean (policy pass), 1 = policy failure, 2 = error.
func run(args []string) int {
	fs := flag.NewFlagSet("ctlscan", flag.ContinueOnError)

	var (
		formatFlag   string
		outputDir    string
		baselineFlag string
		catalogFlag  string
		quietFlag    bool
		verboseFlag  bool
		versionFlag  bool
	)

	fs.StringVar(&formatFlag, "format", "json", "output formats: json,markdown,badge,all (comma-separated)")
	fs.StringVar(&outputDir, "output", ".", "output directory for report files")
	fs.StringVar(&baselineFlag, "baseline", "", "control baseline: low, moderate, high (default: moderate)")
	fs.StringVar(&catalogFlag, "catalog", "", "path to a supplementary control catalog file or directory")
	fs.BoolVar(&quietFlag, "quiet", false, "suppress all output except errors")
	fs.BoolVar(&quietFlag, "q", false, "suppress all output except errors (shorthand)")
	fs.BoolVar(&verboseFlag, "verbose", false, "enable verbose output")
	fs.BoolVar(&verboseFlag, "v", false, "enable verbose output (shorthand)")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ctlscan <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  scan <path>      Scan a directory and write compliance reports\n")
		fmt.Fprintf(os.Stderr, "  check <path>     Scan and report diagnostics without writing files\n")
		fmt.Fprintf(os.Stderr, "  suggest <text>   Suggest controls for a piece of text\n")
		fmt.Fprintf(os.Stderr, "  show [path]      Browse diagnostics in an interactive TUI\n")
		fmt.Fprintf(os.Stderr, "  watch [path]     Re-scan on file changes\n")
		fmt.Fprintf(os.Stderr, "  describe <path>  Draft tag descriptions using an LLM\n")
		fmt.Fprintf(os.Stderr, "  badge [path]     Generate a coverage badge SVG\n")
		fmt.Fprintf(os.Stderr, "  dashboard [path] Generate an HTML dashboard\n")
		fmt.Fprintf(os.Stderr, "  catalog          Manage catalog registry sources and installs\n")
		fmt.Fprintf(os.Stderr, "  serve            Start MCP server on stdio\n")
		fmt.Fprintf(os.Stderr, "  version          Print version and exit\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if versionFlag {
		fmt.Printf("ctlscan %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ctlscan <command> [flags]")
		return 2
	}

	scanOpts := ctlscan.ScanOptions{Baseline: baselineFlag, CatalogPath: catalogFlag}

	command := remaining[0]
	switch command {
	case "scan":
		if len(remaining) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: ctlscan scan <path> [flags]")
			return 2
		}
		return runScan(remaining[1], scanOpts, formatFlag, outputDir, quietFlag, verboseFlag)
	case "check":
		return runCheck(remaining[1:], scanOpts)
	case "suggest":
		return runSuggest(remaining[1:])
	case "show":
		return runShow(remaining[1:])
	case "watch":
		return runWatch(remaining[1:])
	case "describe":
		return runDescribe(remaining[1:])
	case "badge":
		return runBadge(remaining[1:])
	case "dashboard":
		return runDashboard(remaining[1:])
	case "catalog":
		return runCatalog(remaining[1:])
	case "serve":
		return runServe(remaining[1:])
	case "version":
		fmt.Printf("ctlscan %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fmt.Fprintln(os.Stderr, "Usage: ctlscan <command> [flags]")
		return 2
	}
}

func runScan(target string, opts ctlscan.ScanOptions, formatFlag, outputDir string, quiet, verbose bool) int {
	formats := parseFormats(formatFlag)

	if !quiet {
		fmt.Printf("ctlscan %s — scanning %s\n", version, target)
	}

	if verbose {
		fmt.Println("[discover] walking directory...")
	}

	result, err := ctlscan.RunScanWithOptions(target, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: scan failed: %v\n", err)
		return 2
	}

	if !quiet {
		fmt.Printf("[results] %d files, %d tag(s), %d diagnostic(s), %.1f%% coverage (%s baseline)\n",
			result.FilesScanned, result.Coverage.TagCount(), len(result.Diagnostics),
			result.Coverage.CoveragePercentage, result.Baseline)
	}

	now := time.Now().UTC()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating output directory: %v\n", err)
		return 2
	}

	for _, format := range formats {
		switch format {
		case "json":
			path := filepath.Join(outputDir, "compliance.json")
			r := report.NewJSONReporter(version)
			if err := r.WriteToFile(result.Coverage, result.Diagnostics, now, path); err != nil {
				fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", path, err)
				return 2
			}
			if verbose {
				fmt.Printf("[report] wrote %s\n", path)
			}

		case "markdown", "md":
			path := filepath.Join(outputDir, "compliance.md")
			md := report.Markdown(result.Coverage, now)
			if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", path, err)
				return 2
			}
			if verbose {
				fmt.Printf("[report] wrote %s\n", path)
			}

		case "badge":
			path := filepath.Join(outputDir, "coverage-badge.svg")
			b := badge.GenerateFromReport(result.Coverage, "compliance")
			if err := os.WriteFile(path, []byte(b.SVG), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", path, err)
				return 2
			}
			if verbose {
				fmt.Printf("[report] wrote %s\n", path)
			}
		}
	}

	if result.PolicyResult != nil && !quiet {
		fmt.Printf("[policy] %s\n", result.PolicyResult.Summary)
	}

	if !quiet {
		fmt.Println("[done]")
	}

	if result.PolicyResult != nil {
		return result.PolicyResult.ExitCode
	}
	return 0
}

func runServe(args []string) int {
	serveFS := flag.NewFlagSet("serve", flag.ContinueOnError)
	var allowedPaths string
	serveFS.StringVar(&allowedPaths, "allowed-paths", "", "comma-separated list of allowed workspace paths")

	if err := serveFS.Parse(args); err != nil {
		return 2
	}

	var paths []string
	if allowedPaths != "" {
		for _, p := range strings.Split(allowedPaths, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				paths = append(paths, p)
			}
		}
	}

	srv := server.New(version, paths)
	if err := srv.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "error: MCP server failed: %v\n", err)
		return 2
	}
	return 0
}

// parseFormats splits the comma-separated format flag into individual format
// strings. "all" expands to all supported formats.
func parseFormats(flag string) []string {
	if flag == "all" {
		return []string{"json", "markdown", "badge"}
	}

	var formats []string
	for _, f := range strings.Split(flag, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return []string{"json"}
	}
	return formats
}
