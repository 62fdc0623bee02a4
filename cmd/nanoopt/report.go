package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/config"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/manifest"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/optimizer"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/output"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/watcher"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the profile report",
	Long: `Generate the profile report of an application.

With the default "report" format the report is written to
<dir>/<id>_REPORT_<suffix>. Other formats, and --stdout, print to stdout.

Formats: report, pretty, json, yaml, cmdline, args, imports, template.

With --follow the report is regenerated whenever the conditions dump or a
classpath entry changes, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var (
	reportTemplate  string
	reportStdout    bool
	reportLog       bool
	reportFollow    bool
	reportNoHistory bool
)

func init() {
	f := reportCmd.Flags()
	f.String("dir", "", "directory receiving the report file")
	f.String("suffix", "", "report file name suffix")
	f.StringP("format", "f", "", "output format")
	f.StringVarP(&reportTemplate, "template", "t", "", "Go template for --format template")
	f.BoolVar(&reportStdout, "stdout", false, "print the report instead of writing the file")
	f.BoolVar(&reportLog, "log", false, "write the report to the log instead of a file")
	f.BoolVar(&reportFollow, "follow", false, "regenerate when the inputs change")
	f.BoolVar(&reportNoHistory, "no-history", false, "do not record the report in the history")

	rootCmd.AddCommand(reportCmd)
}

// runReport generates the report once, then keeps regenerating it in
// follow mode.
func runReport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := generateReport(ctx, cmd, appConfig); err != nil {
		return err
	}
	if !reportFollow {
		return nil
	}
	return followReport(ctx, cmd, appConfig)
}

// generateReport produces one report in the configured format.
func generateReport(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	opt, err := buildOptimizer(ctx, cfg)
	if err != nil {
		return err
	}

	format := cfg.Report.Format
	if reportTemplate != "" {
		format = "template"
	}
	switch {
	case reportLog:
		opt.Build()
		printInfo("Report written to the log")
		return nil
	case format == config.DefaultFormat && !reportStdout:
		return writeReportFile(opt, cfg)
	}

	formatter, err := newFormatter(format, reportTemplate)
	if err != nil {
		return err
	}

	res := output.NewResult(opt)
	var buf bytes.Buffer
	if err := formatter.Format(&buf, res); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return err
	}

	recordHistory(cfg, manifest.OpPrint, reportRecord(res.Result, "", format, int64(buf.Len())))
	return nil
}

// newFormatter looks up a registered format. A template string implies the
// template format.
func newFormatter(format, tmpl string) (output.Formatter, error) {
	if tmpl != "" {
		return output.NewTemplateFormatter(tmpl), nil
	}
	formatter, err := output.Get(format)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, output.Available())
	}
	return formatter, nil
}

// writeReportFile persists the report and records it.
func writeReportFile(opt *optimizer.Optimizer, cfg *config.Config) error {
	res, path, err := opt.WriteReport(cfg.Report.Dir, cfg.Report.Suffix)
	if err != nil {
		return fmt.Errorf("problem writing report %s: %w", path, err)
	}

	size := fileSize(path)
	printInfo("Report written to %s (%s)", path, humanize.IBytes(uint64(size)))

	recordHistory(cfg, manifest.OpFile, reportRecord(res, path, config.DefaultFormat, size))
	return nil
}

// fileSize returns the size of path, or 0 when it cannot be read.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func reportRecord(res optimizer.Result, path, format string, size int64) manifest.ReportRecord {
	return manifest.ReportRecord{
		ProfileID:   res.ID,
		Path:        path,
		Format:      format,
		Bytes:       size,
		TargetOS:    res.TargetOS,
		Heap:        res.Snapshot,
		Params:      res.Tuning.Params,
		Advisories:  res.Tuning.Advisories,
		CommandLine: res.CommandLine,
		Imports:     len(res.Imports),
	}
}

// recordHistory adds an entry to the report history. Failures are only
// logged; the report itself was produced.
func recordHistory(cfg *config.Config, op manifest.OperationType, rec manifest.ReportRecord) {
	if reportNoHistory || !cfg.History.Enabled {
		return
	}
	m, err := manifest.New(cfg.History.Path)
	if err != nil {
		printVerbose("history disabled: %v", err)
		return
	}
	entry, err := m.Record(op, rec)
	if err != nil {
		printError("Failed to record history: %v", err)
		return
	}
	printVerbose("Recorded history entry %s", entry.ID)
}

var errNothingToWatch = errors.New("--follow needs a conditions dump or a classpath to watch")

// followReport regenerates the report on input changes until ctx ends.
func followReport(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	inputs := watchedInputs(cfg)
	if len(inputs) == 0 {
		return errNothingToWatch
	}

	w, err := watcher.New(watcher.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	for _, path := range inputs {
		if err := w.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}
	printInfo("Watching %d inputs, press Ctrl+C to stop", len(inputs))

	w.Run(ctx, func(changed []string) {
		printInfo("%d inputs changed, regenerating", len(changed))
		if err := generateReport(ctx, cmd, cfg); err != nil {
			printError("%v", err)
		}
	})
	return nil
}

// watchedInputs lists the files a report depends on.
func watchedInputs(cfg *config.Config) []string {
	var inputs []string
	if cfg.Conditions.Path != "" {
		inputs = append(inputs, cfg.Conditions.Path)
	}
	return append(inputs, cfg.Classpath.Paths...)
}
