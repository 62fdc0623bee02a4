package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the classpath cache",
	Long: `Commands for managing the classpath cache.

The cache stores the classes found in each jar so repeat reports skip
archives that have not changed. Cache data is stored in the XDG cache
directory (typically ~/.cache/nanoopt/classpath).`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached data",
	Long:  `Removes all cached archives. The next report rescans every jar.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath := cacheDir()

		if _, err := os.Stat(cachePath); os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache is already empty.")
			return nil
		}

		if err := os.RemoveAll(cachePath); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop entries for missing or changed archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cache.Open(cacheDir())
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		removed, err := c.Prune()
		if err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries.\n", removed)
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Displays the cache location, size on disk and number of cached archives.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath := cacheDir()
		out := cmd.OutOrStdout()

		info, err := os.Stat(cachePath)
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "Cache: empty (no cache directory)")
			fmt.Fprintf(out, "Cache location: %s\n", cachePath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stat cache: %w", err)
		}

		var size int64
		var fileCount int
		err = filepath.Walk(cachePath, func(_ string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				size += info.Size()
				fileCount++
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to calculate cache size: %w", err)
		}

		c, err := cache.Open(cachePath)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()
		archives, err := c.Len()
		if err != nil {
			return fmt.Errorf("failed to count cache entries: %w", err)
		}

		fmt.Fprintf(out, "Cache location: %s\n", cachePath)
		fmt.Fprintf(out, "Cache size: %s\n", humanize.IBytes(uint64(size)))
		fmt.Fprintf(out, "Cache files: %d\n", fileCount)
		fmt.Fprintf(out, "Cached archives: %d\n", archives)
		fmt.Fprintf(out, "Last modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path to the cache directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), cacheDir())
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

// cacheDir returns the configured cache directory.
func cacheDir() string {
	if appConfig != nil && appConfig.Classpath.CachePath != "" {
		return appConfig.Classpath.CachePath
	}
	return cache.DefaultPath()
}
