package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/toolness/getdocs2ts/internal/mcp"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call an MCP tool from the command line",
	Long: `Call any getdocs MCP tool with JSON arguments, without starting a server.

Modes:
  getdocs call --list                          List all tools and parameters
  getdocs call <tool> '{"key":"value"}'        Call a tool with JSON args
  getdocs call --pipe                          Read JSON lines from stdin

Tool names accept shorthand: "extract" is equivalent to "getdocs_extract".`,
	Example: `  getdocs call --list
  getdocs call extract '{"path":"src/index.js","density":"sparse"}'
  getdocs call check '{}'
  echo '{"tool":"check","args":{"path":"src"}}' | getdocs call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if !callList && !callPipe && len(args) == 0 {
		return fmt.Errorf("tool name required (run 'getdocs call --list' to see available tools)")
	}

	p, err := openProject(nil, false)
	if err != nil {
		return err
	}
	srv, err := mcp.New(p, mcp.Config{Tools: mcp.AllTools})
	if err != nil {
		p.Close()
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	switch {
	case callList:
		return runCallList(cmd.OutOrStdout(), srv)
	case callPipe:
		return runCallPipe(cmd, srv)
	default:
		return runCallSingle(cmd, srv, args)
	}
}

func runCallList(w io.Writer, srv *mcp.Server) error {
	schemas := srv.GetToolSchemas()

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(schemas)
	default: // yaml
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(schemas)
	}
}

func runCallSingle(cmd *cobra.Command, srv *mcp.Server, args []string) error {
	toolName := normalizeToolName(args[0])

	toolArgs := make(map[string]interface{})
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	}

	result, err := srv.CallTool(commandContext(cmd), toolName, toolArgs)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe(cmd *cobra.Command, srv *mcp.Server) error {
	ctx := commandContext(cmd)
	enc := json.NewEncoder(cmd.OutOrStdout())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	// Allow larger lines (1MB)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if req.Args == nil {
			req.Args = make(map[string]interface{})
		}

		result, err := srv.CallTool(ctx, normalizeToolName(req.Tool), req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Error: err.Error()})
			continue
		}

		// Extraction results are JSON already; check results are plain text.
		var raw json.RawMessage
		if err := json.Unmarshal([]byte(result), &raw); err != nil {
			raw, _ = json.Marshal(result)
		}
		enc.Encode(pipeResponse{Result: raw})
	}

	return scanner.Err()
}

// normalizeToolName converts shorthand names to full tool names.
// "extract" -> "getdocs_extract", "getdocs_extract" -> "getdocs_extract"
func normalizeToolName(name string) string {
	if !strings.HasPrefix(name, "getdocs_") {
		return "getdocs_" + name
	}
	return name
}
