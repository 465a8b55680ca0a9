package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned when at least one file fails to extract.
var ErrCheckFailed = errors.New("check failed")

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Verify that every declaration comment parses",
	Long: `Check extracts the given files and directories (or the whole project)
without printing declarations. Every file that fails is listed with the line
and text of its first error, and the command exits non-zero.

Use it in CI to keep declaration comments well-formed.`,
	Example: `  getdocs check
  getdocs check src/ --quiet`,
	SilenceUsage: true,
	RunE:         runCheck,
}

var checkNoCache bool

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "Ignore the extraction cache")
}

func runCheck(cmd *cobra.Command, args []string) error {
	p, err := openProject(args, checkNoCache)
	if err != nil {
		return err
	}
	defer p.Close()

	report, err := p.Run(commandContext(cmd), args...)
	if err != nil {
		return err
	}

	for _, f := range report.Files {
		if f.Error != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f.Path, f.Error)
		}
	}

	if report.Summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrCheckFailed, report.Summary.Failed, report.Summary.Files)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d files, %d declarations\n",
			report.Summary.Files, report.Summary.Declarations)
	}
	return nil
}
