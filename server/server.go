// Package server implements the MCP server for agent-safe compliance queries.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	ctlscan "github.com/ctlscan-hq/ctlscan/core"
	"github.com/ctlscan-hq/ctlscan/core/badge"
	"github.com/ctlscan-hq/ctlscan/core/catalog"
	"github.com/ctlscan-hq/ctlscan/core/report"
	"github.com/ctlscan-hq/ctlscan/core/suggest"
	"github.com/ctlscan-hq/ctlscan/core/validate"
)

const (
	// maxOutputBytes is the maximum response size before truncation (1 MB).
	maxOutputBytes = 1 << 20
)

// Server is the ctlscan MCP server.
type Server struct {
	version      string
	allowedPaths []string
	engine       *suggest.Engine

	mu    sync.RWMutex
	cache *ctlscan.ScanResult
}

// New creates a new MCP server. If allowedPaths is empty, any path is allowed.
func New(version string, allowedPaths []string) *Server {
	// Resolve allowed paths to absolute for consistent comparison.
	resolved := make([]string, 0, len(allowedPaths))
	for _, p := range allowedPaths {
		abs, err := filepath.Abs(p)
		if err == nil {
			resolved = append(resolved, abs)
		}
	}
	return &Server{
		version:      version,
		allowedPaths: resolved,
		engine:       suggest.NewEngine(),
	}
}

// Serve starts the MCP server on stdio and blocks until the client disconnects.
func (s *Server) Serve() error {
	srv := mcpserver.NewMCPServer(
		"ctlscan",
		s.version,
		mcpserver.WithRecovery(),
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithResourceCapabilities(false, false),
	)

	s.registerTools(srv)
	s.registerResources(srv)

	return mcpserver.ServeStdio(srv)
}

func (s *Server) registerTools(srv *mcpserver.MCPServer) {
	// scan tool: runs the full scan pipeline.
	srv.AddTool(
		mcp.NewTool("scan",
			mcp.WithDescription("Scan a directory for NIST 800-53 control tags and compute compliance coverage"),
			mcp.WithString("path",
				mcp.Description("Absolute path to the directory to scan"),
				mcp.Required(),
			),
			mcp.WithString("baseline",
				mcp.Description("Control baseline to measure coverage against"),
				mcp.Enum("low", "moderate", "high"),
				mcp.DefaultString("moderate"),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleScan,
	)

	// suggest_controls tool: pattern-based control suggestion for a code snippet.
	srv.AddTool(
		mcp.NewTool("suggest_controls",
			mcp.WithDescription("Suggest NIST 800-53 controls relevant to a code or description snippet"),
			mcp.WithString("text",
				mcp.Description("Code or prose to analyse for security patterns"),
				mcp.Required(),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleSuggestControls,
	)

	// validate_text tool: validates control tags in a document without scanning.
	srv.AddTool(
		mcp.NewTool("validate_text",
			mcp.WithDescription("Validate @nist control tags in a document and report diagnostics"),
			mcp.WithString("text",
				mcp.Description("Document content to validate"),
				mcp.Required(),
			),
			mcp.WithString("file",
				mcp.Description("File name reported in diagnostics"),
				mcp.DefaultString("document"),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleValidateText,
	)

	// get_report tool: returns the last scan's compliance report.
	srv.AddTool(
		mcp.NewTool("get_report",
			mcp.WithDescription("Get the compliance report from the last scan"),
			mcp.WithString("format",
				mcp.Description("Output format: json or markdown"),
				mcp.Enum("json", "markdown"),
				mcp.DefaultString("json"),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleGetReport,
	)
}

func (s *Server) registerResources(srv *mcpserver.MCPServer) {
	srv.AddResource(
		mcp.NewResource("ctlscan://report", "Compliance Report",
			mcp.WithResourceDescription("Coverage and diagnostics in ctlscan JSON format"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResourceReport,
	)

	srv.AddResource(
		mcp.NewResource("ctlscan://report.md", "Markdown Report",
			mcp.WithResourceDescription("Human-readable compliance report in Markdown"),
			mcp.WithMIMEType("text/markdown"),
		),
		s.handleResourceMarkdown,
	)

	srv.AddResource(
		mcp.NewResource("ctlscan://diagnostics", "Diagnostics",
			mcp.WithResourceDescription("Tag validation diagnostics from the last scan"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleResourceDiagnostics,
	)

	srv.AddResource(
		mcp.NewResource("ctlscan://dashboard", "Compliance Dashboard",
			mcp.WithResourceDescription("Self-contained HTML dashboard of the last scan"),
			mcp.WithMIMEType("text/html"),
		),
		s.handleResourceDashboard,
	)

	srv.AddResource(
		mcp.NewResource("ctlscan://badge.svg", "Coverage Badge",
			mcp.WithResourceDescription("SVG badge showing compliance coverage"),
			mcp.WithMIMEType("image/svg+xml"),
		),
		s.handleResourceBadge,
	)
}

// isPathAllowed checks if the given path is under one of the allowed workspace roots.
func (s *Server) isPathAllowed(path string) error {
	if len(s.allowedPaths) == 0 {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path: %w", err)
	}

	for _, allowed := range s.allowedPaths {
		// Use filepath.Rel to check containment properly.
		rel, err := filepath.Rel(allowed, abs)
		if err != nil {
			continue
		}
		// If the relative path doesn't start with "..", it's under the allowed root.
		if !strings.HasPrefix(rel, "..") {
			return nil
		}
	}

	return fmt.Errorf("path %q is outside allowed workspaces", path)
}

func (s *Server) handleScan(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required argument: path"), nil
	}

	if err := s.isPathAllowed(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	baseline := request.GetString("baseline", "moderate")

	result, err := ctlscan.RunScanWithOptions(path, ctlscan.ScanOptions{Baseline: baseline})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	// Cache the result for subsequent tool/resource calls.
	s.mu.Lock()
	s.cache = result
	s.mu.Unlock()

	summary := fmt.Sprintf("Scan complete: %d files, %d tag(s), %d diagnostic(s), %.1f%% coverage (%s baseline)",
		result.FilesScanned,
		result.Coverage.TagCount(),
		len(result.Diagnostics),
		result.Coverage.CoveragePercentage,
		result.Baseline)

	return mcp.NewToolResultText(summary), nil
}

func (s *Server) handleSuggestControls(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required argument: text"), nil
	}

	cat := s.catalogOrBuiltin()
	controls := s.engine.Suggest(text, cat)

	data, err := json.MarshalIndent(controls, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding suggestions: %v", err)), nil
	}

	return mcp.NewToolResultText(truncate(string(data))), nil
}

func (s *Server) handleValidateText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required argument: text"), nil
	}
	file := request.GetString("file", "document")

	validator := validate.NewValidator()
	diagnostics := validator.ValidateDocument([]byte(text), file, s.catalogOrBuiltin())
	if diagnostics == nil {
		diagnostics = []validate.Diagnostic{}
	}

	data, err := json.MarshalIndent(diagnostics, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding diagnostics: %v", err)), nil
	}

	return mcp.NewToolResultText(truncate(string(data))), nil
}

func (s *Server) handleGetReport(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()

	if cache == nil {
		return mcp.NewToolResultError("no scan results available — run the scan tool first"), nil
	}

	format := request.GetString("format", "json")

	switch format {
	case "markdown":
		return mcp.NewToolResultText(truncate(report.Markdown(cache.Coverage, time.Now()))), nil
	default:
		r := report.NewJSONReporter(s.version)
		data, err := r.Generate(cache.Coverage, cache.Diagnostics, time.Now())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("report generation failed: %v", err)), nil
		}
		return mcp.NewToolResultText(truncate(string(data))), nil
	}
}

// Resource handlers.

func (s *Server) handleResourceReport(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()

	if cache == nil {
		return nil, fmt.Errorf("no scan results available")
	}

	r := report.NewJSONReporter(s.version)
	data, err := r.Generate(cache.Coverage, cache.Diagnostics, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generating report JSON: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     truncate(string(data)),
		},
	}, nil
}

func (s *Server) handleResourceMarkdown(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()

	if cache == nil {
		return nil, fmt.Errorf("no scan results available")
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/markdown",
			Text:     truncate(report.Markdown(cache.Coverage, time.Now())),
		},
	}, nil
}

func (s *Server) handleResourceDiagnostics(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()

	if cache == nil {
		return nil, fmt.Errorf("no scan results available")
	}

	diagnostics := cache.Diagnostics
	if diagnostics == nil {
		diagnostics = []validate.Diagnostic{}
	}
	data, err := json.MarshalIndent(diagnostics, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("generating diagnostics JSON: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     truncate(string(data)),
		},
	}, nil
}

func (s *Server) handleResourceDashboard(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()

	if cache == nil {
		return nil, fmt.Errorf("no scan results available")
	}

	html, err := GenerateDashboardHTML(cache, s.version)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/html",
			Text:     truncate(html),
		},
	}, nil
}

func (s *Server) handleResourceBadge(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()

	if cache == nil {
		return nil, fmt.Errorf("no scan results available")
	}

	result := badge.GenerateFromReport(cache.Coverage, "compliance")

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "image/svg+xml",
			Text:     result.SVG,
		},
	}, nil
}

// catalogOrBuiltin returns the cached scan's catalog, falling back to the
// built-in one before any scan has run.
func (s *Server) catalogOrBuiltin() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cache != nil {
		return s.cache.Catalog
	}
	return catalog.Builtin()
}

// truncate limits output to maxOutputBytes, appending a truncation notice if needed.
func truncate(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	return s[:maxOutputBytes] + "\n... [truncated: output exceeded 1MB limit]"
}
