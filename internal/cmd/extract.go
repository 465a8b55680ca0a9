package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolness/getdocs2ts/internal/extract"
	"github.com/toolness/getdocs2ts/internal/files"
	"github.com/toolness/getdocs2ts/internal/output"
	"github.com/toolness/getdocs2ts/internal/parser"
	"github.com/toolness/getdocs2ts/internal/project"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract comment declarations from source files",
	Long: `Extract walks the given files and directories (or the project root if none
are given), finds the declaration comments of every JavaScript and TypeScript
file and prints the resulting declaration tree.

The extract process:
  1. Discovers source files matching the configured include/exclude globs
  2. Skips dependency and build output directories (node_modules, dist, ...)
  3. Parses each file with tree-sitter and reads its comments
  4. Builds declarations, reusing cached results of unchanged files

A file that fails to extract is reported with its error; the other files
are still printed. Pass "-" to read a single source from stdin.`,
	Example: `  getdocs extract                      # Whole project
  getdocs extract src/ lib/index.js    # Selected paths
  getdocs extract --density dense      # Include structural types and lines
  getdocs extract --watch              # Keep running, re-extract on change
  cat a.ts | getdocs extract - --lang typescript`,
	RunE: runExtract,
}

// Command-line flags
var (
	extractWatch   bool
	extractNoCache bool
	extractLang    string
)

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVarP(&extractWatch, "watch", "w", false, "Watch for changes and re-extract changed files")
	extractCmd.Flags().BoolVar(&extractNoCache, "no-cache", false, "Ignore the extraction cache")
	extractCmd.Flags().StringVar(&extractLang, "lang", "javascript", "Language of stdin source (javascript|typescript)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && args[0] == "-" {
		return runExtractStdin(cmd)
	}

	p, err := openProject(args, extractNoCache)
	if err != nil {
		return err
	}
	defer p.Close()

	formatter, format, density, err := outputSettings(p.Config())
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	report, err := p.Run(ctx, args...)
	if err != nil {
		return err
	}
	if err := formatter.FormatToWriter(cmd.OutOrStdout(), report, density); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !extractWatch {
		return nil
	}
	return watchProject(ctx, cmd.OutOrStdout(), p, formatter, format, density)
}

// runExtractStdin extracts a single source read from stdin.
func runExtractStdin(cmd *cobra.Command) error {
	lang, err := parser.ParseLanguage(extractLang)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	formatter, _, density, err := outputSettings(cfg)
	if err != nil {
		return err
	}

	src, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	decls, err := extract.ExtractCtx(commandContext(cmd), src, lang)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), decls, density)
}

// watchProject re-extracts changed files until interrupted, printing one
// report per batch of changes.
func watchProject(ctx context.Context, w io.Writer, p *project.Project, formatter output.Formatter, format output.Format, density output.Density) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := files.NewWatcher(p.Discovery(), files.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	slog.Info("watching for changes", slog.String("root", p.Root()))

	return watcher.Run(ctx, func(batch []files.File) {
		results, err := p.ExtractAll(ctx, batch)
		if err != nil {
			return
		}
		if format == output.FormatYAML {
			fmt.Fprintln(w, "---")
		}
		if err := formatter.FormatToWriter(w, output.NewReport(results), density); err != nil {
			slog.Warn("writing output failed", slog.Any("err", err))
		}
	})
}
