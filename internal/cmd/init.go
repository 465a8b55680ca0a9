package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toolness/getdocs2ts/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .getdocs directory and config",
	Long: `Initialize the .getdocs directory and config.yaml in the current directory.

The directory marks the project root: getdocs run anywhere below it uses its
configuration and keeps the extraction cache there.

Examples:
  getdocs init          # Initialize in current directory
  getdocs init --force  # Rewrite config.yaml with defaults`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	return initProject(cmd, cwd)
}

func initProject(cmd *cobra.Command, dir string) error {
	configFile := filepath.Join(dir, config.ConfigDirName, config.ConfigFileName)

	_, err := os.Stat(configFile)
	if err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(dir, configFile)
			fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(configFile); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	path, err := config.SaveDefault(dir)
	if err != nil {
		return err
	}

	relPath, _ := filepath.Rel(dir, path)
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized getdocs at %s\n", relPath)
	return nil
}
