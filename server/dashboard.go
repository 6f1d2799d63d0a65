package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	ctlscan "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/coverage"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

//go:embed dashboard/dashboard.html
var dashboardFS embed.FS

// dashboardData is the JSON structure injected into the HTML template.
type dashboardData struct {
	Version     string                `json:"version"`
	GeneratedAt string                `json:"generated_at"`
	TagCount    int                   `json:"tag_count"`
	Coverage    *coverage.Report      `json:"coverage"`
	Diagnostics []validate.Diagnostic `json:"diagnostics"`
}

// GenerateDashboardHTML renders the dashboard HTML with scan data injected.
func GenerateDashboardHTML(result *ctlscan.ScanResult, version string) (string, error) {
	tmplBytes, err := dashboardFS.ReadFile("dashboard/dashboard.html")
	if err != nil {
		return "", fmt.Errorf("reading dashboard template: %w", err)
	}

	diagnostics := result.Diagnostics
	if diagnostics == nil {
		diagnostics = []validate.Diagnostic{}
	}

	data := dashboardData{
		Version:     version,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		TagCount:    result.Coverage.TagCount(),
		Coverage:    result.Coverage,
		Diagnostics: diagnostics,
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshalling dashboard data: %w", err)
	}

	// Inject data by replacing the __CTLSCAN_DATA__ placeholder block.
	html := strings.Replace(
		string(tmplBytes),
		"// When served via MCP resource or CLI, __CTLSCAN_DATA__ is replaced with actual scan data.\nconst DATA = typeof __CTLSCAN_DATA__ !== 'undefined' ? __CTLSCAN_DATA__ : {};",
		"const DATA = "+string(dataJSON)+";",
		1,
	)

	return html, nil
}
