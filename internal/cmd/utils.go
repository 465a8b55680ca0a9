package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toolness/getdocs2ts/internal/config"
	"github.com/toolness/getdocs2ts/internal/output"
	"github.com/toolness/getdocs2ts/internal/project"
)

// workDirFor returns the directory a command operates from: the first path
// argument (or its directory when it names a file), else the current one.
func workDirFor(args []string) string {
	if len(args) == 0 {
		return "."
	}
	info, err := os.Stat(args[0])
	if err == nil && !info.IsDir() {
		return filepath.Dir(args[0])
	}
	return args[0]
}

// loadConfig reads --config when given, otherwise the .getdocs/config.yaml
// found above workDir, otherwise defaults.
func loadConfig(workDir string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load(workDir)
}

// openProject loads configuration and opens the project containing args.
func openProject(args []string, noCache bool) (*project.Project, error) {
	workDir := workDirFor(args)
	cfg, err := loadConfig(workDir)
	if err != nil {
		return nil, err
	}
	p, err := project.Open(workDir, cfg, project.Options{NoCache: noCache})
	if err != nil {
		return nil, fmt.Errorf("failed to open project: %w", err)
	}
	return p, nil
}

// outputSettings resolves --format and --density against the config.
func outputSettings(cfg *config.Config) (output.Formatter, output.Format, output.Density, error) {
	formatName := outputFormat
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	densityName := outputDensity
	if densityName == "" {
		densityName = cfg.Output.Density
	}

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, "", "", err
	}
	density, err := output.ParseDensity(densityName)
	if err != nil {
		return nil, "", "", err
	}
	formatter, err := output.GetFormatter(format)
	if err != nil {
		return nil, "", "", err
	}
	return formatter, format, density, nil
}

// commandContext returns the command's context, or Background when the
// command was invoked directly rather than through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// formatBytes formats a byte count into a human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
