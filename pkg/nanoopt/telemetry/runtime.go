package telemetry

import (
	"math"
	"runtime"
	"runtime/debug"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// RuntimeReader reads the heap of the current Go process.
//
// Init is the heap reserved when the reader was created. Max is the soft
// memory limit when one is set, otherwise the host's physical memory.
type RuntimeReader struct {
	init   int64
	logger *logging.Logger
}

// NewRuntimeReader records the current heap reservation as the initial size.
// A nil logger uses the shared "telemetry" logger.
func NewRuntimeReader(logger *logging.Logger) *RuntimeReader {
	logger = loggerOrDefault(logger)

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return &RuntimeReader{
		init:   toInt64(ms.HeapSys, "heap_sys", logger),
		logger: logger,
	}
}

// Read implements Reader.
func (r *RuntimeReader) Read() types.HeapUsage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	committed := uint64(0)
	if ms.HeapSys > ms.HeapReleased {
		committed = ms.HeapSys - ms.HeapReleased
	}

	return types.HeapUsage{
		Init:      r.init,
		Used:      toInt64(ms.HeapAlloc, "heap_alloc", r.logger),
		Committed: toInt64(committed, "heap_committed", r.logger),
		Max:       r.max(),
	}
}

func (r *RuntimeReader) max() int64 {
	// A negative input only queries the limit.
	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit != math.MaxInt64 {
		return limit
	}

	total, err := HostMemory()
	if err != nil {
		r.logger.Warn("max heap unavailable", "err", err)
		return 0
	}
	return total
}

var _ Reader = (*RuntimeReader)(nil)
