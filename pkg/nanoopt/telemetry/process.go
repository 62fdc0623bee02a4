package telemetry

import (
	"strings"

	"fortio.org/safecast"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// JVM ergonomics: without explicit flags the initial heap is 1/64 and the
// maximum heap 1/4 of physical memory.
const (
	ergonomicInitDivisor = 64
	ergonomicMaxDivisor  = 4
)

// processInfo is the part of a gopsutil process used by ProcessReader.
type processInfo interface {
	CmdlineSlice() ([]string, error)
	MemoryInfo() (*process.MemoryInfoStat, error)
}

// ProcessReader reads the heap of a running JVM by PID.
type ProcessReader struct {
	pid    int
	logger *logging.Logger

	open     func(pid int32) (processInfo, error)
	physical func() (int64, error)
}

// NewProcessReader returns a reader for pid. A nil logger uses the shared
// "telemetry" logger.
func NewProcessReader(pid int, logger *logging.Logger) *ProcessReader {
	return &ProcessReader{
		pid:    pid,
		logger: loggerOrDefault(logger),
		open: func(pid int32) (processInfo, error) {
			return process.NewProcess(pid)
		},
		physical: HostMemory,
	}
}

// Read implements Reader.
func (r *ProcessReader) Read() types.HeapUsage {
	var usage types.HeapUsage
	log := r.logger.With("pid", r.pid)

	pid, err := safecast.Conv[int32](r.pid)
	if err != nil {
		log.Warn("invalid pid", "err", err)
		return usage
	}

	proc, err := r.open(pid)
	if err != nil {
		log.Warn("process not found", "err", err)
		return usage
	}

	args, err := proc.CmdlineSlice()
	if err != nil {
		log.Warn("reading command line", "err", err)
	}
	flags := ParseHeapFlags(args)

	usage.Init, usage.Max = flags.Init, flags.Max
	if usage.Init == 0 || usage.Max == 0 {
		physical, err := r.physical()
		if err != nil {
			log.Warn("ergonomic heap defaults unavailable", "err", err)
		} else {
			if usage.Init == 0 {
				usage.Init = physical / ergonomicInitDivisor
			}
			if usage.Max == 0 {
				usage.Max = physical / ergonomicMaxDivisor
			}
		}
	}

	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		log.Warn("reading memory info", "err", err)
		return usage
	}
	usage.Used = toInt64(info.RSS, "rss", log)
	usage.Committed = usage.Used
	if info.Data > 0 {
		usage.Committed = toInt64(info.Data, "data", log)
	}

	return usage
}

var _ Reader = (*ProcessReader)(nil)

// HeapFlags holds the heap sizes found on a JVM command line. Zero means
// the flag was absent or invalid.
type HeapFlags struct {
	Init int64
	Max  int64
}

// ParseHeapFlags extracts -Xms/-Xmx and their -XX: equivalents from args.
// When a flag repeats the last occurrence wins, as it does for the JVM.
func ParseHeapFlags(args []string) HeapFlags {
	var flags HeapFlags
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "-Xms"):
			setSize(&flags.Init, strings.TrimPrefix(arg, "-Xms"))
		case strings.HasPrefix(arg, "-Xmx"):
			setSize(&flags.Max, strings.TrimPrefix(arg, "-Xmx"))
		case strings.HasPrefix(arg, "-XX:InitialHeapSize="):
			setSize(&flags.Init, strings.TrimPrefix(arg, "-XX:InitialHeapSize="))
		case strings.HasPrefix(arg, "-XX:MaxHeapSize="):
			setSize(&flags.Max, strings.TrimPrefix(arg, "-XX:MaxHeapSize="))
		}
	}
	return flags
}

func setSize(dst *int64, value string) {
	if n, err := types.ParseSize(value); err == nil {
		*dst = n
	}
}
