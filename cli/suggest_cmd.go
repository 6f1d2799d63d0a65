package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ctlscan-hq/ctlscan/core/catalog"
	"github.com/ctlscan-hq/ctlscan/core/suggest"
)

// runSuggest implements the "ctlscan suggest" command. The context text
// comes from the positional arguments, or from stdin when none are given.
func runSuggest(args []string) int {
	fs := flag.NewFlagSet("suggest", flag.ContinueOnError)
	var (
		jsonOutput  bool
		catalogPath string
	)
	fs.BoolVar(&jsonOutput, "json", false, "output as JSON")
	fs.StringVar(&catalogPath, "catalog", "", "path to a supplementary control catalog file or directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	text := strings.Join(fs.Args(), " ")
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: reading stdin: %v\n", err)
			return 2
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "Usage: ctlscan suggest <text> [flags]")
		return 2
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading catalog: %v\n", err)
		return 2
	}

	controls := suggest.NewEngine().Suggest(text, cat)

	if jsonOutput {
		data, err := json.MarshalIndent(controls, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: marshalling JSON: %v\n", err)
			return 2
		}
		fmt.Println(string(data))
		return 0
	}

	if len(controls) == 0 {
		fmt.Println("[suggest] no matching controls")
		return 0
	}

	for _, c := range controls {
		fmt.Printf("%-8s %-42s %s\n", c.ID, c.Title, c.Family)
	}
	return 0
}
