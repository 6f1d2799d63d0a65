package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ctlscan-hq/ctlscan/core/coverage"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

// Meta contains metadata about the report itself, including schema version,
// generation timestamp, and tool identification.
type Meta struct {
	SchemaVersion string `json:"schema_version"`
	GeneratedAt   string `json:"generated_at"`
	ToolName      string `json:"tool_name"`
	ToolVersion   string `json:"tool_version"`
}

// JSONReport is the top-level structure serialized to JSON. It pairs report
// metadata with the aggregated coverage report and all diagnostics.
type JSONReport struct {
	Meta        Meta                  `json:"meta"`
	Coverage    *coverage.Report      `json:"coverage"`
	Diagnostics []validate.Diagnostic `json:"diagnostics"`
}

// JSONReporter produces deterministic JSON output for programmatic
// consumers (CI pipelines, dashboards, the MCP server).
type JSONReporter struct {
	ToolVersion string
}

// NewJSONReporter returns a JSONReporter configured with the given tool
// version string. The version is embedded in the report metadata.
func NewJSONReporter(version string) *JSONReporter {
	return &JSONReporter{ToolVersion: version}
}

// Generate serializes the coverage report and diagnostics to pretty-printed
// JSON with 2-space indentation. Output is stable across runs given the
// same inputs and timestamp.
func (r *JSONReporter) Generate(cov *coverage.Report, dd []validate.Diagnostic, generatedAt time.Time) ([]byte, error) {
	// Guarantee a non-nil slice so JSON renders "diagnostics": [] rather
	// than null when there are none.
	if dd == nil {
		dd = []validate.Diagnostic{}
	}

	doc := JSONReport{
		Meta: Meta{
			SchemaVersion: "1.0.0",
			GeneratedAt:   generatedAt.UTC().Format(time.RFC3339),
			ToolName:      "ctlscan",
			ToolVersion:   r.ToolVersion,
		},
		Coverage:    cov,
		Diagnostics: dd,
	}

	return json.MarshalIndent(doc, "", "  ")
}

// WriteToFile generates the JSON report and writes it to the specified path
// atomically (temp file + rename), so a watcher re-reading the report never
// sees a partial document. Parent directories must already exist.
func (r *JSONReporter) WriteToFile(cov *coverage.Report, dd []validate.Diagnostic, generatedAt time.Time, path string) error {
	data, err := r.Generate(cov, dd, generatedAt)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
