package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	core "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/catalog"
	"github.com/ctlscan-hq/ctlscan/core/coverage"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

func makeScanResult(dd []validate.Diagnostic) *core.ScanResult {
	cat := catalog.Builtin()
	return &core.ScanResult{
		Catalog:     cat,
		Baseline:    catalog.BaselineModerate,
		Diagnostics: dd,
		Coverage:    coverage.NewPartial().Resolve(cat, catalog.BaselineModerate),
	}
}

func missingTagDiag(file string, line int, message string) validate.Diagnostic {
	return validate.Diagnostic{
		Severity:   validate.SeverityInformation,
		Code:       validate.CodeMissingTag,
		Message:    message,
		Line:       line,
		Column:     1,
		SourceFile: file,
	}
}

func jsonDrafts(drafts []TagDraft) string {
	data, _ := json.Marshal(drafts)
	return string(data)
}

func TestDescribe_NoUntaggedLocations(t *testing.T) {
	mock := &MockProvider{}
	d := NewDescriber(mock)

	result := makeScanResult([]validate.Diagnostic{
		{Severity: validate.SeverityError, Code: validate.CodeUnknownControl},
	})
	report, err := d.Describe(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Drafts) != 0 {
		t.Fatalf("expected 0 drafts, got %d", len(report.Drafts))
	}
	if report.Summary != "No untagged locations to describe." {
		t.Fatalf("unexpected summary: %q", report.Summary)
	}
	if len(mock.Calls) != 0 {
		t.Fatalf("expected 0 provider calls, got %d", len(mock.Calls))
	}
}

func TestDescribe_SingleLocation(t *testing.T) {
	drafts := []TagDraft{
		{
			File:        "auth.go",
			Line:        12,
			ControlID:   "ia-5",
			Description: "Hashes passwords with bcrypt before storage",
		},
	}

	mock := &MockProvider{
		Responses: []Response{
			{Content: jsonDrafts(drafts), PromptTokens: 100, CompletionTokens: 50},
			{Content: "One credential-handling annotation drafted.", PromptTokens: 20, CompletionTokens: 10},
		},
	}

	result := makeScanResult([]validate.Diagnostic{
		missingTagDiag("auth.go", 12, "credential handling detected"),
	})

	d := NewDescriber(mock)
	report, err := d.Describe(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(report.Drafts))
	}

	draft := report.Drafts[0]
	if draft.ControlID != "ia-5" {
		t.Fatalf("unexpected control: %q", draft.ControlID)
	}
	if draft.ControlTitle == "" {
		t.Fatal("expected control title filled from catalog")
	}
	want := `@nist ia-5 "Hashes passwords with bcrypt before storage"`
	if draft.Annotation != want {
		t.Fatalf("annotation = %q, want %q", draft.Annotation, want)
	}
	if report.Summary != "One credential-handling annotation drafted." {
		t.Fatalf("unexpected summary: %q", report.Summary)
	}
	// 2 calls: 1 batch + 1 summary.
	if len(mock.Calls) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(mock.Calls))
	}
	if report.Usage.RequestCount != 2 {
		t.Fatalf("expected 2 requests counted, got %d", report.Usage.RequestCount)
	}
}

func TestDescribe_MultipleBatches(t *testing.T) {
	// 15 locations with batch size 10 means 2 batches.
	var dd []validate.Diagnostic
	for i := 0; i < 15; i++ {
		dd = append(dd, missingTagDiag("file.go", i+1, "authentication logic detected"))
	}

	batch1 := make([]TagDraft, 10)
	for i := range batch1 {
		batch1[i] = TagDraft{File: "file.go", Line: i + 1, ControlID: "ia-2", Description: "d"}
	}
	batch2 := make([]TagDraft, 5)
	for i := range batch2 {
		batch2[i] = TagDraft{File: "file.go", Line: i + 11, ControlID: "ia-2", Description: "d"}
	}

	mock := &MockProvider{
		Responses: []Response{
			{Content: jsonDrafts(batch1)},
			{Content: jsonDrafts(batch2)},
			{Content: "summary"},
		},
	}

	d := NewDescriber(mock)
	report, err := d.Describe(context.Background(), makeScanResult(dd))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Drafts) != 15 {
		t.Fatalf("expected 15 drafts, got %d", len(report.Drafts))
	}
	if len(mock.Calls) != 3 {
		t.Fatalf("expected 3 provider calls, got %d", len(mock.Calls))
	}
}

func TestDescribe_ProviderError(t *testing.T) {
	mock := &MockProvider{Err: errors.New("api down")}
	d := NewDescriber(mock)

	result := makeScanResult([]validate.Diagnostic{
		missingTagDiag("auth.go", 3, "session handling detected"),
	})

	report, err := d.Describe(context.Background(), result)
	if err != nil {
		t.Fatalf("expected graceful degradation, got: %v", err)
	}
	if len(report.Drafts) != 0 {
		t.Fatalf("expected 0 drafts, got %d", len(report.Drafts))
	}
	if !strings.Contains(report.Summary, "api down") {
		t.Fatalf("expected error in summary, got %q", report.Summary)
	}
}

func TestDescribe_InvalidJSON(t *testing.T) {
	mock := &MockProvider{
		Responses: []Response{
			{Content: "not json at all"},
		},
	}
	d := NewDescriber(mock)

	result := makeScanResult([]validate.Diagnostic{
		missingTagDiag("auth.go", 3, "encryption usage detected"),
	})

	report, err := d.Describe(context.Background(), result)
	if err != nil {
		t.Fatalf("expected graceful degradation, got: %v", err)
	}
	if !strings.Contains(report.Summary, "Partial results") {
		t.Fatalf("expected partial-results summary, got %q", report.Summary)
	}
}

func TestDescribe_PromptIncludesCandidates(t *testing.T) {
	mock := &MockProvider{
		Responses: []Response{
			{Content: "[]"},
		},
	}
	d := NewDescriber(mock)

	result := makeScanResult([]validate.Diagnostic{
		missingTagDiag("auth.go", 3, "authentication logic detected, consider tagging with ia-2"),
	})

	if _, err := d.Describe(context.Background(), result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(mock.Calls))
	}
	last := mock.Calls[0][len(mock.Calls[0])-1]
	if !strings.Contains(last.Content, "auth.go") {
		t.Fatalf("expected file in prompt, got %q", last.Content)
	}
	// The suggest engine should propose ia-2 for authentication context.
	if !strings.Contains(last.Content, "ia-2") {
		t.Fatalf("expected candidate control in prompt, got %q", last.Content)
	}
}

func TestDraftReport_JSON(t *testing.T) {
	report := &DraftReport{
		SchemaVersion: "1.0.0",
		Drafts: []TagDraft{
			{File: "a.go", Line: 1, ControlID: "ia-2", Description: "d", Annotation: `@nist ia-2 "d"`},
		},
		Summary: "one draft",
	}

	data, err := report.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded DraftReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if decoded.Drafts[0].ControlID != "ia-2" {
		t.Fatalf("unexpected control: %s", decoded.Drafts[0].ControlID)
	}
	if !strings.Contains(string(data), fmt.Sprintf("%q", "schema_version")) {
		t.Fatal("expected schema_version field in JSON")
	}
}
