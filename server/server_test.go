package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestIsPathAllowed_NoRestrictions(t *testing.T) {
	s := New("0.1.0", nil)

	if err := s.isPathAllowed("/any/path"); err != nil {
		t.Fatalf("expected no error for unrestricted server, got: %v", err)
	}
}

func TestIsPathAllowed_AllowedPath(t *testing.T) {
	dir := t.TempDir()
	s := New("0.1.0", []string{dir})

	sub := filepath.Join(dir, "subdir")
	if err := s.isPathAllowed(sub); err != nil {
		t.Fatalf("expected path under allowed root to be allowed, got: %v", err)
	}
}

func TestIsPathAllowed_DisallowedPath(t *testing.T) {
	s := New("0.1.0", []string{"/allowed/workspace"})

	if err := s.isPathAllowed("/other/path"); err == nil {
		t.Fatal("expected error for path outside allowed workspace")
	}
}

func TestIsPathAllowed_ExactRoot(t *testing.T) {
	dir := t.TempDir()
	s := New("0.1.0", []string{dir})

	if err := s.isPathAllowed(dir); err != nil {
		t.Fatalf("expected exact root path to be allowed, got: %v", err)
	}
}

func TestIsPathAllowed_TraversalBlocked(t *testing.T) {
	dir := t.TempDir()
	s := New("0.1.0", []string{dir})

	traversal := filepath.Join(dir, "..", "escape")
	if err := s.isPathAllowed(traversal); err == nil {
		t.Fatal("expected path traversal to be blocked")
	}
}

func TestHandleScan_TaggedDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "auth.go", "package main\n\n// @nist ia-2 \"Authenticates requests\"\nfunc main() {}\n")

	s := New("0.1.0", nil)
	req := makeToolRequest(t, "scan", map[string]any{"path": dir})

	result, err := s.handleScan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	text := toolResultText(result)
	if !strings.Contains(text, "1 tag(s)") {
		t.Fatalf("expected 1 tag in summary, got: %s", text)
	}
	if !strings.Contains(text, "moderate baseline") {
		t.Fatalf("expected default baseline in summary, got: %s", text)
	}
}

func TestHandleScan_BaselineArgument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")

	s := New("0.1.0", nil)
	req := makeToolRequest(t, "scan", map[string]any{"path": dir, "baseline": "low"})

	result, err := s.handleScan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}
	if !strings.Contains(toolResultText(result), "low baseline") {
		t.Fatalf("expected low baseline in summary, got: %s", toolResultText(result))
	}
}

func TestHandleScan_DisallowedPath(t *testing.T) {
	dir := t.TempDir()
	s := New("0.1.0", []string{"/allowed/only"})

	req := makeToolRequest(t, "scan", map[string]any{"path": dir})

	result, err := s.handleScan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error for disallowed path")
	}

	text := toolResultText(result)
	if !strings.Contains(text, "outside allowed workspaces") {
		t.Fatalf("expected workspace error, got: %s", text)
	}
}

func TestHandleScan_MissingPath(t *testing.T) {
	s := New("0.1.0", nil)
	req := makeToolRequest(t, "scan", map[string]any{})

	result, err := s.handleScan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error for missing path argument")
	}
}

func TestHandleSuggestControls(t *testing.T) {
	s := New("0.1.0", nil)
	req := makeToolRequest(t, "suggest_controls", map[string]any{
		"text": "func login(password string) error { return checkPassword(password) }",
	})

	result, err := s.handleSuggestControls(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	text := toolResultText(result)
	if !strings.Contains(text, "ia-5") {
		t.Fatalf("expected ia-5 suggested for password handling, got: %s", text)
	}
}

func TestHandleSuggestControls_MissingText(t *testing.T) {
	s := New("0.1.0", nil)
	req := makeToolRequest(t, "suggest_controls", map[string]any{})

	result, err := s.handleSuggestControls(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error for missing text argument")
	}
}

func TestHandleValidateText(t *testing.T) {
	s := New("0.1.0", nil)
	req := makeToolRequest(t, "validate_text", map[string]any{
		"text": "// @nist zz-99 \"Not a real control\"\n",
		"file": "snippet.go",
	})

	result, err := s.handleValidateText(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	text := toolResultText(result)
	if !strings.Contains(text, "unknown-control") {
		t.Fatalf("expected unknown-control diagnostic, got: %s", text)
	}
	if !strings.Contains(text, "snippet.go") {
		t.Fatalf("expected file name in diagnostics, got: %s", text)
	}
}

func TestHandleValidateText_Clean(t *testing.T) {
	s := New("0.1.0", nil)
	req := makeToolRequest(t, "validate_text", map[string]any{
		"text": "// @nist ia-2 \"Authenticates requests\"\n",
	})

	result, err := s.handleValidateText(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	text := strings.TrimSpace(toolResultText(result))
	if text != "[]" {
		t.Fatalf("expected empty diagnostics array, got: %s", text)
	}
}

func TestHandleGetReport_BeforeScan(t *testing.T) {
	s := New("0.1.0", nil)
	req := makeToolRequest(t, "get_report", map[string]any{})

	result, err := s.handleGetReport(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error before any scan")
	}

	text := toolResultText(result)
	if !strings.Contains(text, "no scan results") {
		t.Fatalf("expected no-scan-results message, got: %s", text)
	}
}

func TestHandleGetReport_JSON(t *testing.T) {
	s := scanTaggedDir(t)
	req := makeToolRequest(t, "get_report", map[string]any{"format": "json"})

	result, err := s.handleGetReport(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	text := toolResultText(result)
	if !strings.Contains(text, `"coverage"`) {
		t.Fatalf("expected JSON report output, got: %s", text)
	}
}

func TestHandleGetReport_Markdown(t *testing.T) {
	s := scanTaggedDir(t)
	req := makeToolRequest(t, "get_report", map[string]any{"format": "markdown"})

	result, err := s.handleGetReport(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolResultText(result))
	}

	text := toolResultText(result)
	if !strings.Contains(text, "## Coverage") {
		t.Fatalf("expected Markdown report output, got: %s", text)
	}
}

func TestResourceReport_BeforeScan(t *testing.T) {
	s := New("0.1.0", nil)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ctlscan://report"

	_, err := s.handleResourceReport(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for resource before scan")
	}
}

func TestResourceReport_AfterScan(t *testing.T) {
	s := scanTaggedDir(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ctlscan://report"

	contents, err := s.handleResourceReport(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) == 0 {
		t.Fatal("expected non-empty resource contents")
	}

	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected TextResourceContents")
	}
	if tc.URI != "ctlscan://report" {
		t.Fatalf("expected URI ctlscan://report, got %s", tc.URI)
	}
	if !strings.Contains(tc.Text, `"coverage"`) {
		t.Fatalf("expected report JSON, got: %s", tc.Text)
	}
}

func TestResourceMarkdown_AfterScan(t *testing.T) {
	s := scanTaggedDir(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ctlscan://report.md"

	contents, err := s.handleResourceMarkdown(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected TextResourceContents")
	}
	if !strings.Contains(tc.Text, "## Summary") {
		t.Fatalf("expected Markdown content, got: %s", tc.Text)
	}
}

func TestResourceDiagnostics_AfterScan(t *testing.T) {
	s := scanTaggedDir(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ctlscan://diagnostics"

	contents, err := s.handleResourceDiagnostics(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected TextResourceContents")
	}
	var decoded []json.RawMessage
	if err := json.Unmarshal([]byte(tc.Text), &decoded); err != nil {
		t.Fatalf("expected JSON array, got: %s", tc.Text)
	}
}

func TestResourceBadge_AfterScan(t *testing.T) {
	s := scanTaggedDir(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ctlscan://badge.svg"

	contents, err := s.handleResourceBadge(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected TextResourceContents")
	}
	if !strings.HasPrefix(tc.Text, "<svg") {
		t.Fatalf("expected SVG content, got: %s", tc.Text)
	}
}

func TestTruncate_Short(t *testing.T) {
	input := "short string"
	result := truncate(input)
	if result != input {
		t.Fatalf("expected unchanged string, got: %s", result)
	}
}

func TestTruncate_Long(t *testing.T) {
	input := strings.Repeat("x", maxOutputBytes+100)
	result := truncate(input)

	if len(result) <= maxOutputBytes {
		t.Fatal("expected truncated string to be longer than maxOutputBytes (includes notice)")
	}
	if !strings.Contains(result, "[truncated") {
		t.Fatal("expected truncation notice")
	}
	// The first maxOutputBytes bytes should be preserved.
	if result[:maxOutputBytes] != input[:maxOutputBytes] {
		t.Fatal("expected first maxOutputBytes bytes to match")
	}
}

// --- helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing file %s: %v", name, err)
	}
}

func makeToolRequest(t *testing.T, name string, args map[string]any) mcp.CallToolRequest {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshaling args: %v", err)
	}
	var raw any
	if err := json.Unmarshal(argsJSON, &raw); err != nil {
		t.Fatalf("unmarshaling args: %v", err)
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: raw,
		},
	}
}

func toolResultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// scanTaggedDir creates a temporary directory with a tagged Go file and
// runs a scan against it, returning the server with cached results.
func scanTaggedDir(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "auth.go", "package main\n\n// @nist ia-2 \"Authenticates requests\"\nfunc main() {}\n")

	s := New("0.1.0", nil)
	req := makeToolRequest(t, "scan", map[string]any{"path": dir})

	result, err := s.handleScan(context.Background(), req)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("scan returned error: %s", toolResultText(result))
	}
	return s
}
