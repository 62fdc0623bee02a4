// Package config provides configuration management for nano-optimizer.
package config

import "github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"

// Default configuration values.
const (
	// AppName names the XDG directories and the environment prefix.
	AppName = "nanoopt"

	// EnvPrefix prefixes environment overrides, e.g. NANOOPT_REPORT_ID.
	EnvPrefix = "NANOOPT"

	// DefaultReportSuffix completes <id>_REPORT_<suffix>.
	DefaultReportSuffix = "profile.txt"

	// DefaultFormat is the output format of the report command.
	DefaultFormat = "report"

	// DefaultTelemetrySource reads the heap of the running nanoopt process.
	DefaultTelemetrySource = "runtime"

	// DefaultRetentionDays is the default number of days to retain history.
	DefaultRetentionDays = 30

	// DefaultScanConcurrency is the number of classpath roots scanned at once.
	DefaultScanConcurrency = 4
)

// Telemetry sources accepted by telemetry.source.
const (
	SourceRuntime = "runtime"
	SourceProcess = "process"
	SourceStatic  = "static"
)

// DefaultComponents are the per-component log levels.
var DefaultComponents = logging.DefaultLevels()
