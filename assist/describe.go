package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	core "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/suggest"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

const defaultBatchSize = 10

// Describer orchestrates LLM-based drafting of control annotations. It
// collects untagged locations from a scan result, batches them, sends them
// to a Provider, and assembles a DraftReport.
type Describer struct {
	provider  Provider
	batchSize int
	basePath  string
	engine    *suggest.Engine
}

// Option configures a Describer.
type Option func(*Describer)

// WithBatchSize sets how many locations are sent per LLM call (default 10).
func WithBatchSize(n int) Option {
	return func(d *Describer) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// WithBasePath sets the workspace root used for reading source context around
// untagged locations. If not set, source context is omitted from LLM prompts.
func WithBasePath(path string) Option {
	return func(d *Describer) { d.basePath = path }
}

// NewDescriber creates a Describer with the given provider and options.
func NewDescriber(provider Provider, opts ...Option) *Describer {
	d := &Describer{
		provider:  provider,
		batchSize: defaultBatchSize,
		engine:    suggest.NewEngine(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Describe drafts an annotation for every untagged security-relevant
// location in the scan result and returns a DraftReport.
//
// If the provider returns an error for a batch, the describer degrades
// gracefully: it returns the drafts gathered so far and records the error
// in the summary field.
func (d *Describer) Describe(ctx context.Context, result *core.ScanResult) (*DraftReport, error) {
	report := &DraftReport{
		SchemaVersion: "1.0.0",
	}

	candidates := d.collectCandidates(result)
	if len(candidates) == 0 {
		report.Summary = "No untagged locations to describe."
		return report, nil
	}

	sysMsgs := []Message{
		{Role: RoleSystem, Content: systemPrompt()},
		{Role: RoleUser, Content: formatContext(result)},
	}

	var providerErr error

	for i := 0; i < len(candidates); i += d.batchSize {
		end := i + d.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[i:end]

		messages := make([]Message, len(sysMsgs)+1)
		copy(messages, sysMsgs)
		messages[len(sysMsgs)] = Message{
			Role:    RoleUser,
			Content: "Draft annotations for these locations:\n\n" + formatCandidates(batch),
		}

		resp, err := d.provider.Complete(ctx, messages)
		if err != nil {
			providerErr = err
			break
		}

		report.Usage.PromptTokens += resp.PromptTokens
		report.Usage.CompletionTokens += resp.CompletionTokens
		report.Usage.TotalTokens += resp.PromptTokens + resp.CompletionTokens
		report.Usage.RequestCount++

		drafts, err := parseDrafts(resp.Content, result)
		if err != nil {
			providerErr = fmt.Errorf("parsing LLM response: %w", err)
			break
		}

		report.Drafts = append(report.Drafts, drafts...)
	}

	if providerErr != nil {
		report.Summary = fmt.Sprintf("Partial results: %d of %d locations described. Error: %v",
			len(report.Drafts), len(candidates), providerErr)
	} else if len(report.Drafts) > 0 {
		summary, err := d.generateSummary(ctx, report)
		if err != nil {
			report.Summary = fmt.Sprintf("Drafted %d annotation(s). Summary generation failed: %v",
				len(report.Drafts), err)
		} else {
			report.Summary = summary
		}
	}

	return report, nil
}

// collectCandidates turns every missing-tag diagnostic into a candidate with
// source context and suggested controls.
func (d *Describer) collectCandidates(result *core.ScanResult) []candidate {
	var out []candidate
	for _, diag := range result.Diagnostics {
		if diag.Code != validate.CodeMissingTag {
			continue
		}

		c := candidate{diag: diag, titles: make(map[string]string)}
		c.sourceLine = d.readLine(diag.SourceFile, diag.Line)

		contextText := c.sourceLine
		if contextText == "" {
			contextText = diag.Message
		}
		for _, ctrl := range d.engine.Suggest(contextText, result.Catalog) {
			c.controls = append(c.controls, ctrl.ID)
			c.titles[ctrl.ID] = ctrl.Title
		}
		out = append(out, c)
	}
	return out
}

// readLine returns the 1-based line of a source file, or "" when the file
// cannot be read.
func (d *Describer) readLine(file string, line int) string {
	if d.basePath == "" || line < 1 {
		return ""
	}
	content, err := os.ReadFile(filepath.Join(d.basePath, file))
	if err != nil {
		return ""
	}
	lines := strings.Split(string(content), "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// generateSummary asks the provider for a short summary of all drafts.
func (d *Describer) generateSummary(ctx context.Context, report *DraftReport) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: "You are a compliance engineer summarising annotation drafts."},
		{Role: RoleUser, Content: summaryPrompt(report.Drafts)},
	}

	resp, err := d.provider.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	report.Usage.PromptTokens += resp.PromptTokens
	report.Usage.CompletionTokens += resp.CompletionTokens
	report.Usage.TotalTokens += resp.PromptTokens + resp.CompletionTokens
	report.Usage.RequestCount++

	return resp.Content, nil
}

// parseDrafts extracts TagDraft values from the LLM's JSON response and
// fills in the derived fields.
func parseDrafts(raw string, result *core.ScanResult) ([]TagDraft, error) {
	var drafts []TagDraft
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		return nil, fmt.Errorf("invalid JSON from LLM: %w", err)
	}

	for i := range drafts {
		drafts[i].ControlID = strings.ToLower(strings.TrimSpace(drafts[i].ControlID))
		if ctrl, ok := result.Catalog.Get(drafts[i].ControlID); ok {
			drafts[i].ControlTitle = ctrl.Title
		}
		drafts[i].Annotation = fmt.Sprintf("@nist %s %q", drafts[i].ControlID, drafts[i].Description)
	}
	return drafts, nil
}
