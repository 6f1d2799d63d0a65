package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	ctlscan "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var (
		debounce    time.Duration
		minInterval time.Duration
		baseline    string
	)
	fs.DurationVar(&debounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")
	fs.DurationVar(&minInterval, "min-interval", 2*time.Second, "minimum interval between re-scans")
	fs.StringVar(&baseline, "baseline", "", "control baseline: low, moderate, high")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	target := "."
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating watcher: %v\n", err)
		return 2
	}
	defer watcher.Close()

	// Recursively add directories.
	if err := addDirsRecursive(watcher, target); err != nil {
		fmt.Fprintf(os.Stderr, "error: watching directories: %v\n", err)
		return 2
	}

	// Signal handling.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	opts := ctlscan.ScanOptions{Baseline: baseline}

	// Initial scan.
	fmt.Printf("watch: scanning %s (debounce: %s)\n", target, debounce)
	printScanResults(target, opts)

	// Bursty editors (format-on-save, build output) can fire events faster
	// than the debounce window alone absorbs. The limiter caps the overall
	// re-scan frequency.
	limiter := rate.NewLimiter(rate.Every(minInterval), 1)

	// Debounced event loop.
	var mu sync.Mutex
	var timer *time.Timer

	resetTimer := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			_ = limiter.Wait(context.Background())
			fmt.Print("\033[2J\033[H") // clear terminal
			fmt.Printf("watch: re-scanning %s\n", target)
			printScanResults(target, opts)
		})
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				// Add new directories if created.
				if event.Has(fsnotify.Create) {
					info, err := os.Stat(event.Name)
					if err == nil && info.IsDir() {
						_ = addDirsRecursive(watcher, event.Name)
					}
				}
				resetTimer()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-sigCh:
			fmt.Println("\nwatch: stopped")
			return 0
		}
	}
}

func printScanResults(target string, opts ctlscan.ScanOptions) {
	result, err := ctlscan.RunScanWithOptions(target, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: scan failed: %v\n", err)
		return
	}

	counts := validate.CountBySeverity(result.Diagnostics)

	fmt.Printf("[results] %d tag(s), %.1f%% coverage (%s baseline)",
		result.Coverage.TagCount(), result.Coverage.CoveragePercentage, result.Baseline)
	if len(counts) > 0 {
		parts := make([]string, 0, len(counts))
		for _, sev := range []validate.Severity{validate.SeverityError, validate.SeverityWarning, validate.SeverityInformation} {
			if counts[sev] > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", counts[sev], string(sev)))
			}
		}
		if len(parts) > 0 {
			fmt.Printf(" — %s", strings.Join(parts, ", "))
		}
	}
	fmt.Println()

	if result.PolicyResult != nil {
		fmt.Printf("[policy] %s\n", result.PolicyResult.Summary)
	}
}

func addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if base == ".git" || base == "node_modules" || base == ".ctlscan" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
