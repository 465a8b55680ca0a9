// Package cmd contains all CLI commands for getdocs.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is the current version of getdocs
	Version = "0.1.0"

	// Global flags
	verbose       bool
	quiet         bool
	configPath    string
	forAgents     bool
	outputFormat  string
	outputDensity string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "getdocs",
	Short: "Extract comment-declared APIs from JavaScript and TypeScript",
	Long: `getdocs reads the API declarations written in source comments of
JavaScript and TypeScript files and turns them into a structured tree.

A declaration comment names a binding and gives it a type:

  // Widget::
  // A thing on the screen.
  class Widget {
    // resize:: (width: number, height?: number) → bool
    resize(width, height) { ... }
  }

Indented lines below a declaration are its documentation; further indented
declarations are its properties. Comments that do not start with a
declaration are ignored.

Output Format:
  Results print as YAML by default. Use --format json for JSON.
  Use --density to control detail (sparse|medium|dense).

Examples:
  getdocs extract src/               # Extract every file under src/
  getdocs extract --watch            # Re-extract files as they change
  cat a.js | getdocs extract -       # Extract from stdin
  getdocs check                      # Exit non-zero if any file fails
  getdocs serve --mcp                # MCP server for AI agents

See 'getdocs <command> --help' for command-specific options.`,
	Version:           Version,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress summaries; report through the exit code")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .getdocs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format (yaml|json) (default from config: yaml)")
	rootCmd.PersistentFlags().StringVar(&outputDensity, "density", "", "Output density (sparse|medium|dense) (default from config: medium)")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd.OutOrStdout(), cmd)
			return
		}
		originalHelp(cmd, args)
	})
}

// setupLogging installs the default slog logger on stderr. Stdout carries
// command output and, for serve, the MCP protocol.
func setupLogging(cmd *cobra.Command, args []string) error {
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose))
	return nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp outputs machine-readable JSON describing all commands
func outputAgentHelp(w io.Writer, cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	output := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		for _, line := range strings.Split(cmd.Example, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
