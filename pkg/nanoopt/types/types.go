// Package types provides the core data types shared by the nano-optimizer
// packages: raw heap readings, megabyte snapshots, tuned launch parameters and
// resolved condition outcomes, along with helpers for parsing and formatting
// byte sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// HeapUsage is a raw heap reading in bytes, as reported by a telemetry
// provider. Values may be zero or negative when the provider could not
// determine them.
type HeapUsage struct {
	// Init is the amount of memory initially requested for the heap.
	Init int64 `json:"init" yaml:"init"`

	// Used is the amount of heap memory currently in use.
	Used int64 `json:"used" yaml:"used"`

	// Committed is the amount of memory guaranteed to be available to the heap.
	Committed int64 `json:"committed" yaml:"committed"`

	// Max is the maximum amount of memory the heap may grow to.
	Max int64 `json:"max" yaml:"max"`
}

// MemorySnapshot is a point-in-time heap reading in megabytes.
type MemorySnapshot struct {
	InitMB      int64 `json:"init_mb" yaml:"init_mb"`
	UsedMB      int64 `json:"used_mb" yaml:"used_mb"`
	CommittedMB int64 `json:"committed_mb" yaml:"committed_mb"`
	MaxMB       int64 `json:"max_mb" yaml:"max_mb"`
}

// NewSnapshot converts a raw reading into megabytes.
// Each counter is divided by 2^20 when positive; zero or negative readings
// become 0.
func NewSnapshot(u HeapUsage) MemorySnapshot {
	return MemorySnapshot{
		InitMB:      ToMB(u.Init),
		UsedMB:      ToMB(u.Used),
		CommittedMB: ToMB(u.Committed),
		MaxMB:       ToMB(u.Max),
	}
}

// ToMB integer-divides a byte count by 2^20, mapping non-positive values to 0.
func ToMB(raw int64) int64 {
	if raw <= 0 {
		return 0
	}
	return raw / MiB
}

// TuningParameters is the tuned set of launch parameters.
//
// MinHeapMB <= MaxHeapMB <= MaxRAMMB is not enforced: the tuning policy can
// produce a minimum above the maximum when the observed initial heap is large.
type TuningParameters struct {
	MinHeapMB      int64  `json:"min_heap_mb" yaml:"min_heap_mb"`
	MaxHeapMB      int64  `json:"max_heap_mb" yaml:"max_heap_mb"`
	MaxRAMMB       int64  `json:"max_ram_mb" yaml:"max_ram_mb"`
	ThreadStackKB  int    `json:"thread_stack_kb" yaml:"thread_stack_kb"`
	PreTouch       bool   `json:"pre_touch" yaml:"pre_touch"`
	ConfigLocation string `json:"config_location" yaml:"config_location"`
}

// Outcome is a resolved configuration decision.
type Outcome struct {
	// Key identifies the decision, usually a fully-qualified class name.
	// Method-level decisions carry a '#', nested classes a '$'.
	Key string `json:"key" yaml:"key"`

	// FullMatch reports whether every condition on the key was satisfied.
	FullMatch bool `json:"full_match" yaml:"full_match"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It accepts JVM-style sizes as well:
//   - Plain bytes: "1024", "0"
//   - Kilobytes: "100k", "100K", "100KB", "100KiB"
//   - Megabytes: "512m", "50M", "50MB", "50MiB"
//   - Gigabytes: "2g", "2G", "2GB", "2GiB"
//   - Terabytes: "1t", "1T", "1TB", "1TiB"
//
// Decimal values are truncated to the nearest byte.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatMB renders a megabyte count as a human-readable size.
func FormatMB(mb int64) string {
	return FormatSize(mb * MiB)
}
