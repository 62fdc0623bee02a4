package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/config"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/manifest"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View report history",
	Long: `View the history of generated profile reports.

Every report written to a file or printed is recorded with its heap
reading, tuned parameters and command line.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific report",
	Long:  `Display a recorded report by its ID or a unique prefix of it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns the manifest at the configured history path.
func getManifest() (*manifest.Manifest, error) {
	if appConfig == nil {
		return nil, errors.New("configuration not loaded")
	}
	m, err := manifest.New(appConfig.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return m, nil
}

// runHistory lists recent reports.
func runHistory(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history entries found.")
		fmt.Fprintln(out, "Run 'nanoopt report --id <app>' to generate a report.")
		return nil
	}

	fmt.Fprintf(out, "\n%-52s  %-6s  %-16s  %-10s  %s\n", "ID", "TYPE", "PROFILE", "HEAP", "WHEN")
	fmt.Fprintln(out, strings.Repeat("-", 104))

	for _, entry := range entries {
		heap := fmt.Sprintf("%d/%dm", entry.Report.Params.MinHeapMB, entry.Report.Params.MaxHeapMB)
		fmt.Fprintf(out, "%-52s  %-6s  %-16s  %-10s  %s\n",
			truncateString(entry.ID, 52),
			entry.Operation,
			truncateString(entry.Report.ProfileID, 16),
			heap,
			humanize.Time(entry.Timestamp),
		)
	}

	fmt.Fprintln(out, strings.Repeat("-", 104))
	fmt.Fprintf(out, "\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Fprintln(out, "Use 'nanoopt history show <id>' for details on a specific entry.")

	return nil
}

// runHistoryShow displays one recorded report.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return err
	}

	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	out := cmd.OutOrStdout()
	rec := entry.Report
	fmt.Fprintln(out, "\nReport Details")
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "ID:           %s\n", entry.ID)
	fmt.Fprintf(out, "Timestamp:    %s\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Operation:    %s\n", entry.Operation)
	fmt.Fprintf(out, "Profile:      %s\n", rec.ProfileID)
	fmt.Fprintf(out, "Format:       %s\n", rec.Format)
	if rec.Path != "" {
		fmt.Fprintf(out, "Path:         %s\n", rec.Path)
	}
	fmt.Fprintf(out, "Size:         %s\n", humanize.IBytes(uint64(max(rec.Bytes, 0))))
	fmt.Fprintf(out, "Target OS:    %s\n", rec.TargetOS)

	fmt.Fprintln(out, "\nHeap")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	fmt.Fprintf(out, "Observed:     init %dm, used %dm, committed %dm, max %dm\n",
		rec.Heap.InitMB, rec.Heap.UsedMB, rec.Heap.CommittedMB, rec.Heap.MaxMB)
	fmt.Fprintf(out, "Tuned:        -Xms%dm -Xmx%dm, MaxRAM %dm, stack %dk\n",
		rec.Params.MinHeapMB, rec.Params.MaxHeapMB, rec.Params.MaxRAMMB, rec.Params.ThreadStackKB)
	for _, advice := range rec.Advisories {
		fmt.Fprintf(out, "Advice:       %s\n", advice)
	}

	fmt.Fprintln(out, "\nCommand Line")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	fmt.Fprintln(out, rec.CommandLine)
	fmt.Fprintf(out, "\n%d early imports\n", rec.Imports)

	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return err
	}

	retentionDays := appConfig.History.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("History cleanup complete, %d entries removed.", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
