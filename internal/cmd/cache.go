package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolness/getdocs2ts/internal/cache"
	"github.com/toolness/getdocs2ts/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Extraction cache management commands",
	Long:  `Commands for managing the .getdocs/cache.db extraction cache.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Display the cache location, its size and how many files and declarations it holds.`,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached extraction",
	Long:  `Delete all cache entries. The next extract re-parses every file.`,
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openCache opens the cache of the project above the current directory.
func openCache() (*cache.Cache, error) {
	dir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("no %s directory found: run 'getdocs init' or 'getdocs extract' first", config.ConfigDirName)
	}
	return cache.Open(dir)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.GetStats()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cache: %s\n", c.Path())
	if info, err := os.Stat(c.Path()); err == nil {
		fmt.Fprintf(out, "Size: %s\n", formatBytes(info.Size()))
	}
	fmt.Fprintf(out, "Files:        %d\n", stats.Files)
	fmt.Fprintf(out, "Declarations: %d\n", stats.Declarations)

	if verbose {
		entries, err := c.Entries()
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		for _, e := range entries {
			fmt.Fprintf(out, "  %s  %s  %d declarations  %s\n",
				e.ContentHash, e.FilePath, e.DeclarationCount, e.ExtractedAt.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
	return nil
}
