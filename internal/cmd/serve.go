package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/toolness/getdocs2ts/internal/config"
	"github.com/toolness/getdocs2ts/internal/mcp"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server for AI agent integration.

Agents call the extraction tools over stdio instead of spawning a CLI
process per request. The extraction cache stays open between calls.

Available Tools:
  getdocs_extract   Declarations of source text or project files
  getdocs_check     Report files whose declaration comments fail

Examples:
  getdocs serve --mcp                       # Start with all tools
  getdocs serve --mcp --tools extract       # Start with specific tools only
  getdocs serve --mcp --timeout 30m         # Auto-stop after 30 minutes idle
  getdocs serve --status                    # Check if server is running
  getdocs serve --stop                      # Stop running server
  getdocs serve --list-tools                # Show available tools`,
	RunE: runServe,
}

var (
	serveMCP       bool
	serveTools     string
	serveTimeout   string
	serveStatus    bool
	serveStop      bool
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "30m", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running server")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if serveListTools {
		fmt.Fprintln(out, "Available MCP tools:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  getdocs_extract   Declarations of source text or project files")
		fmt.Fprintln(out, "  getdocs_check     Report files whose declaration comments fail")
		return nil
	}

	if serveStatus {
		return checkServerStatus(cmd)
	}

	if serveStop {
		return stopServer(cmd)
	}

	if !serveMCP {
		return fmt.Errorf("use --mcp to start the MCP server, or --help for usage")
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	p, err := openProject(nil, false)
	if err != nil {
		return err
	}

	server, err := mcp.New(p, mcp.Config{
		Tools:   parseToolList(serveTools),
		Timeout: timeout,
	})
	if err != nil {
		p.Close()
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := writePIDFile(); err != nil {
		slog.Warn("could not write PID file", slog.Any("err", err))
	}
	defer removePIDFile()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("getdocs serve: shutting down")
		server.Close()
		removePIDFile()
		os.Exit(0)
	}()

	// stdout is reserved for the MCP protocol
	slog.Info("getdocs serve: starting MCP server",
		slog.String("root", p.Root()),
		slog.Any("tools", server.ListTools()),
		slog.Duration("timeout", timeout))

	return server.ServeStdio()
}

// parseToolList splits a --tools value, accepting "extract" for
// "getdocs_extract".
func parseToolList(s string) []string {
	var tools []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tools = append(tools, normalizeToolName(t))
		}
	}
	return tools
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func getPIDFilePath() (string, error) {
	dir, err := config.FindConfigDir(".")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "serve.pid"), nil
}

func writePIDFile() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return err
	}
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile() {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return
	}
	os.Remove(pidPath)
}

// readPID returns the pid recorded by a running server, removing stale or
// unreadable PID files.
func readPID() (int, bool) {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return 0, false
	}
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		removePIDFile()
		return 0, false
	}
	return pid, true
}

func checkServerStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	pid, ok := readPID()
	if !ok {
		fmt.Fprintln(out, "Status: not running")
		return nil
	}

	// On Unix, FindProcess always succeeds, so we need to send signal 0 to check
	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.Signal(0))
	}
	if err != nil {
		fmt.Fprintln(out, "Status: not running (stale PID file)")
		removePIDFile()
		return nil
	}

	fmt.Fprintf(out, "Status: running (PID %d)\n", pid)
	return nil
}

func stopServer(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	pid, ok := readPID()
	if !ok {
		fmt.Fprintln(out, "No server running")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.SIGTERM)
	}
	if err != nil {
		removePIDFile()
		fmt.Fprintln(out, "Server already stopped")
		return nil
	}

	fmt.Fprintf(out, "Stopped server (PID %d)\n", pid)
	return nil
}
