package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/clip"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/cmdline"
)

var cmdlineCmd = &cobra.Command{
	Use:   "cmdline",
	Short: "Print the tuned JVM command line",
	Long: `Print the JVM options tuned from the heap reading.

With --copy the command line is also placed on the clipboard. When no
clipboard is reachable the terminal's OSC52 sequence is used, and as a
last resort the text is written to a temp file.`,
	Args: cobra.NoArgs,
	RunE: runCmdline,
}

var (
	cmdlineCopy  bool
	cmdlineLines bool
)

func init() {
	cmdlineCmd.Flags().BoolVarP(&cmdlineCopy, "copy", "c", false, "copy the command line to the clipboard")
	cmdlineCmd.Flags().BoolVarP(&cmdlineLines, "lines", "l", false, "print one option per line")
	rootCmd.AddCommand(cmdlineCmd)
}

func runCmdline(cmd *cobra.Command, args []string) error {
	opt, err := buildOptimizer(cmd.Context(), appConfig)
	if err != nil {
		return err
	}
	res := opt.Analyze()

	out := cmd.OutOrStdout()
	if cmdlineLines {
		fmt.Fprintln(out, strings.Join(cmdline.Args(res.Tuning.Params, res.Windows), "\n"))
	} else {
		fmt.Fprintln(out, res.CommandLine)
	}
	for _, advice := range res.Tuning.Advisories {
		printInfo("advice: %s", advice)
	}

	if !cmdlineCopy {
		return nil
	}
	copied, err := clip.New().Copy(res.CommandLine)
	if err != nil {
		return fmt.Errorf("failed to copy command line: %w", err)
	}
	switch copied.Method {
	case clip.MethodFile:
		printInfo("Clipboard unavailable, command line saved to %s", copied.FilePath)
	default:
		printInfo("Command line copied to the clipboard (%s)", copied.Method)
	}
	return nil
}
