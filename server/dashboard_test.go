package server

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestGenerateDashboardHTML(t *testing.T) {
	s := scanTaggedDir(t)

	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()

	html, err := GenerateDashboardHTML(cache, "0.1.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(html, "<html") {
		t.Fatal("expected valid HTML output")
	}
	if !strings.Contains(html, "ctlscan") {
		t.Fatal("expected 'ctlscan' in dashboard")
	}
	if !strings.Contains(html, "ia-2") {
		t.Fatal("expected tagged control in dashboard data")
	}
	if strings.Contains(html, "__CTLSCAN_DATA__") {
		t.Fatal("expected __CTLSCAN_DATA__ to be replaced with actual data")
	}
}

func TestHandleResourceDashboard_BeforeScan(t *testing.T) {
	s := New("0.1.0", nil)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ctlscan://dashboard"

	_, err := s.handleResourceDashboard(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for resource before scan")
	}
}

func TestHandleResourceDashboard_AfterScan(t *testing.T) {
	s := scanTaggedDir(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ctlscan://dashboard"

	contents, err := s.handleResourceDashboard(context.Background(), req)
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
	if tc.URI != "ctlscan://dashboard" {
		t.Fatalf("expected URI ctlscan://dashboard, got %s", tc.URI)
	}
	if tc.MIMEType != "text/html" {
		t.Fatalf("expected text/html MIME type, got %s", tc.MIMEType)
	}
	if !strings.Contains(tc.Text, "<html") {
		t.Fatal("expected HTML content")
	}
}
