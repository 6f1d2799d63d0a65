// Package assist provides optional LLM-based drafting of control tag
// descriptions. It consumes a core.ScanResult and produces ready-to-paste
// @nist annotations for security-relevant code that is not yet tagged.
//
// The package is strictly side-effect-free: it never modifies source files
// and is opt-in only.
package assist

import (
	"encoding/json"
	"fmt"
	"os"
)

// DraftReport is the top-level output of the describe pipeline.
type DraftReport struct {
	SchemaVersion string     `json:"schema_version"`
	Drafts        []TagDraft `json:"drafts"`
	Summary       string     `json:"summary"`
	Usage         UsageStats `json:"usage"`
}

// TagDraft holds an LLM-drafted annotation for a single untagged location.
type TagDraft struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	ControlID    string `json:"control_id"`
	ControlTitle string `json:"control_title,omitempty"`
	Description  string `json:"description"`
	Annotation   string `json:"annotation"`
}

// UsageStats tracks LLM token consumption across all provider calls.
type UsageStats struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	RequestCount     int `json:"request_count"`
}

// JSON returns the report as pretty-printed JSON bytes.
func (r *DraftReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteFile writes the report to the given file path.
func (r *DraftReport) WriteFile(path string) error {
	data, err := r.JSON()
	if err != nil {
		return fmt.Errorf("marshalling draft report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
