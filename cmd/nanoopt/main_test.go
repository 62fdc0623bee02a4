package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/config"
)

// testConfig returns a configuration reading a fixed heap and keeping
// every file under a temp directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Report = config.ReportConfig{
		ID:     "orders",
		Dir:    filepath.Join(dir, "reports"),
		Suffix: "v1.txt",
		Format: config.DefaultFormat,
	}
	cfg.Telemetry = config.TelemetryConfig{
		Source: config.SourceStatic,
		Static: config.StaticHeapConfig{Init: "100m", Used: "40m", Committed: "64m", Max: "730m"},
	}
	cfg.CommandLine.TargetOS = "Linux"
	cfg.History = config.HistoryConfig{
		Enabled:       true,
		Path:          filepath.Join(dir, "history"),
		RetentionDays: config.DefaultRetentionDays,
	}
	return cfg
}

// testCommand returns a command writing to a buffer.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&out)
	return cmd, &out
}

// resetReportFlags restores the report flag variables after a test.
func resetReportFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		reportTemplate = ""
		reportStdout = false
		reportLog = false
		reportFollow = false
		reportNoHistory = false
	})
}
