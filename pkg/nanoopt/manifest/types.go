// Package manifest keeps the history of generated profile reports.
package manifest

import (
	"time"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// OperationType represents where a report went.
type OperationType string

const (
	// OpFile records a report persisted to disk.
	OpFile OperationType = "file"
	// OpPrint records a report written to stdout or the log.
	OpPrint OperationType = "print"
)

// Entry represents a single history entry.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	Report    ReportRecord  `json:"report"`
}

// ReportRecord describes one generated report.
type ReportRecord struct {
	ProfileID   string                 `json:"profile_id"`
	Path        string                 `json:"path,omitempty"`
	Format      string                 `json:"format"`
	Bytes       int64                  `json:"bytes"`
	TargetOS    string                 `json:"target_os"`
	Heap        types.MemorySnapshot   `json:"heap"`
	Params      types.TuningParameters `json:"params"`
	Advisories  []string               `json:"advisories,omitempty"`
	CommandLine string                 `json:"command_line"`
	Imports     int                    `json:"imports"`
}
