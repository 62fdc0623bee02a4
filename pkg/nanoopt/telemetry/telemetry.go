// Package telemetry reads heap usage counters for nano-optimizer.
//
// A Reader never fails: when a counter cannot be determined it is reported
// as 0 and the cause is logged at warn level.
package telemetry

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// Reader supplies a raw heap reading.
type Reader interface {
	Read() types.HeapUsage
}

// Static is a Reader that always returns the same values.
type Static types.HeapUsage

// Read returns the fixed reading.
func (s Static) Read() types.HeapUsage {
	return types.HeapUsage(s)
}

var _ Reader = Static{}

// virtualMemory is replaced in tests.
var virtualMemory = mem.VirtualMemory

// HostMemory returns the physical memory of the host in bytes.
func HostMemory() (int64, error) {
	vm, err := virtualMemory()
	if err != nil {
		return 0, fmt.Errorf("reading host memory: %w", err)
	}
	total, err := safecast.Conv[int64](vm.Total)
	if err != nil {
		return 0, fmt.Errorf("host memory out of range: %w", err)
	}
	return total, nil
}

// toInt64 converts an unsigned counter, reporting 0 on overflow.
func toInt64(v uint64, name string, logger *logging.Logger) int64 {
	n, err := safecast.Conv[int64](v)
	if err != nil {
		logger.Warn("counter out of range", "counter", name, "err", err)
		return 0
	}
	return n
}

func loggerOrDefault(l *logging.Logger) *logging.Logger {
	if l != nil {
		return l
	}
	return logging.Get(logging.ComponentTelemetry)
}
