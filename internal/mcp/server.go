// Package mcp provides an MCP (Model Context Protocol) server for getdocs.
// This lets AI agents extract comment-declared APIs through MCP tools instead
// of CLI commands.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/toolness/getdocs2ts/internal/extract"
	"github.com/toolness/getdocs2ts/internal/output"
	"github.com/toolness/getdocs2ts/internal/parser"
	"github.com/toolness/getdocs2ts/internal/project"
)

// Server wraps the MCP server with getdocs-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	project      *project.Project
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// AllTools lists all available tools
var AllTools = []string{"getdocs_extract", "getdocs_check"}

// New creates a new MCP server answering for the given project.
func New(p *project.Project, cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"getdocs",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		project:      p,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "getdocs_extract":
		s.mcpServer.AddTool(extractTool(), s.handleExtract)
	case "getdocs_check":
		s.mcpServer.AddTool(checkTool(), s.handleCheck)
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
	return nil
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			slog.Info("getdocs serve: timeout reached", slog.Duration("idle", s.timeout))
			s.Close()
			os.Exit(0)
		}
	}
}

func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the project and its cache.
func (s *Server) Close() error {
	if s.project != nil {
		return s.project.Close()
	}
	return nil
}

// ListTools returns the registered tools in name order.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions below.
var toolSchemaRegistry = map[string]ToolSchema{
	"getdocs_extract": {
		Name:        "getdocs_extract",
		Description: "Extract comment-declared API declarations from JavaScript or TypeScript. Pass source text, or a file or directory path inside the project.",
		Parameters: []ParameterSchema{
			{Name: "source", Type: "string", Description: "Source text to extract from"},
			{Name: "path", Type: "string", Description: "File or directory, relative to the project root"},
			{Name: "language", Type: "string", Description: "Language of source text: javascript (default) or typescript"},
			{Name: "density", Type: "string", Description: "Detail level: sparse, medium, dense (default: dense)"},
		},
	},
	"getdocs_check": {
		Name:        "getdocs_check",
		Description: "Check that the declaration comments of a file or directory parse. Returns ok or one error per failing file.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "File or directory, relative to the project root (default: whole project)"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools, in name order.
func (s *Server) GetToolSchemas() []ToolSchema {
	schemas := make([]ToolSchema, 0, len(s.tools))
	for _, name := range s.ListTools() {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the result text or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'getdocs call --list' to see available tools)", name)
	}

	switch name {
	case "getdocs_extract":
		src, _ := args["source"].(string)
		path, _ := args["path"].(string)
		lang, _ := args["language"].(string)
		density, _ := args["density"].(string)
		return s.executeExtract(ctx, src, path, lang, density)

	case "getdocs_check":
		path, _ := args["path"].(string)
		return s.executeCheck(ctx, path)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func extractTool() mcp.Tool {
	return mcp.NewTool("getdocs_extract",
		mcp.WithDescription(toolSchemaRegistry["getdocs_extract"].Description),
		mcp.WithString("source",
			mcp.Description("Source text to extract from"),
		),
		mcp.WithString("path",
			mcp.Description("File or directory, relative to the project root"),
		),
		mcp.WithString("language",
			mcp.Description("Language of source text: javascript (default) or typescript"),
			mcp.Enum("javascript", "typescript"),
		),
		mcp.WithString("density",
			mcp.Description("Detail level: sparse, medium, dense (default: dense)"),
			mcp.Enum("sparse", "medium", "dense"),
		),
	)
}

func checkTool() mcp.Tool {
	return mcp.NewTool("getdocs_check",
		mcp.WithDescription(toolSchemaRegistry["getdocs_check"].Description),
		mcp.WithString("path",
			mcp.Description("File or directory, relative to the project root (default: whole project)"),
		),
	)
}

func (s *Server) handleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	src, _ := args["source"].(string)
	path, _ := args["path"].(string)
	lang, _ := args["language"].(string)
	density, _ := args["density"].(string)

	result, err := s.executeExtract(ctx, src, path, lang, density)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	path, _ := args["path"].(string)

	result, err := s.executeCheck(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// executeExtract extracts from inline source when given, otherwise from the
// files under path. The result is JSON at the requested density.
func (s *Server) executeExtract(ctx context.Context, src, path, lang, density string) (string, error) {
	if src == "" && path == "" {
		return "", fmt.Errorf("either source or path parameter is required")
	}
	if density == "" {
		density = string(output.DensityDense)
	}
	d, err := output.ParseDensity(density)
	if err != nil {
		return "", err
	}
	formatter := output.NewJSONFormatter()

	if src != "" {
		language := parser.JavaScript
		if lang != "" {
			if language, err = parser.ParseLanguage(lang); err != nil {
				return "", err
			}
		}
		decls, err := extract.ExtractCtx(ctx, []byte(src), language)
		if err != nil {
			return "", err
		}
		return formatter.Format(decls, d)
	}

	abs, err := s.resolvePath(path)
	if err != nil {
		return "", err
	}
	report, err := s.project.Run(ctx, abs)
	if err != nil {
		return "", err
	}
	if len(report.Files) == 0 {
		return "", fmt.Errorf("no JavaScript or TypeScript files found at %s", path)
	}
	return formatter.Format(report, d)
}

// executeCheck reports "ok" with counts, or one line per failing file.
func (s *Server) executeCheck(ctx context.Context, path string) (string, error) {
	var paths []string
	if path != "" {
		abs, err := s.resolvePath(path)
		if err != nil {
			return "", err
		}
		paths = append(paths, abs)
	}

	report, err := s.project.Run(ctx, paths...)
	if err != nil {
		return "", err
	}

	if report.Summary.Failed == 0 {
		return fmt.Sprintf("ok: %d files, %d declarations", report.Summary.Files, report.Summary.Declarations), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d files failed:\n", report.Summary.Failed, report.Summary.Files)
	for _, f := range report.Files {
		if f.Error != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.Path, f.Error)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// resolvePath maps a tool path argument onto the project, refusing paths
// that leave the project root.
func (s *Server) resolvePath(path string) (string, error) {
	root := s.project.Root()
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, filepath.FromSlash(path))
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the project root", path)
	}
	return abs, nil
}
