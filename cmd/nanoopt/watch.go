package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/stefanofago73/nano-optimizer/cmd/nanoopt/tui"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/clip"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/config"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/manifest"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/output"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the profile of a running application",
	Long: `Open a live screen showing the profile report. The heap is read again
on every refresh, so the tuned flags follow the application as it warms up.
Best used with --source process --pid <jvm pid>.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchInterval time.Duration

func init() {
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", tui.DefaultInterval, "time between heap refreshes")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := appConfig

	// Scan once; only the heap reading changes between refreshes.
	opt, err := buildOptimizer(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	logging.Get(logging.ComponentTUI).Info("watch started", "id", opt.ID(), "interval", watchInterval)

	clipboard := clip.New()
	return tui.Run(tui.Options{
		Analyze: func() (*output.Result, error) {
			return output.NewResult(opt), nil
		},
		WriteReport: func() (string, error) {
			res, path, err := opt.WriteReport(cfg.Report.Dir, cfg.Report.Suffix)
			if err != nil {
				return path, err
			}
			recordHistory(cfg, manifest.OpFile, reportRecord(res, path, config.DefaultFormat, fileSize(path)))
			return path, nil
		},
		Copy: func(text string) (string, error) {
			res, err := clipboard.Copy(text)
			if err != nil {
				return "", err
			}
			if res.FilePath != "" {
				return res.FilePath, nil
			}
			return string(res.Method), nil
		},
		Interval: watchInterval,
		Logs:     logging.GetLogBuffer(),
	})
}
