package tuner

import "github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"

// Heap thresholds in megabytes.
const (
	// minInitialMB is the smallest initial heap not worth an advisory.
	minInitialMB = 200

	// smallInitialMB is the initial heap below which -Xms is raised to
	// minInitialMB.
	smallInitialMB = 256

	// floorMaxMB is the smallest -Xmx ever recommended.
	floorMaxMB = 350

	// largeMaxMB triggers the consumption advisory when exceeded.
	largeMaxMB = 512

	// ceilingMB caps MaxRAM. A max heap at most bumpWindowMB below it is
	// rounded up to it; a max above it is kept.
	ceilingMB    = 768
	bumpWindowMB = 50
)

const (
	defaultMinHeapMB = 256
	defaultMaxHeapMB = 512
	defaultMaxRAMMB  = 768

	// DefaultThreadStackKB is the -Xss value when none is configured.
	DefaultThreadStackKB = 256

	// DefaultConfigLocation is the spring.config.location when none is
	// configured.
	DefaultConfigLocation = "classpath:/application.properties"
)

// Advisory messages.
const (
	AdviseInitialMemory = "better to set initial memory to at least 200m"
	AdviseReviewMemory  = "better to review why you're consuming much memory"
)

// Calculate tunes the heap from a snapshot:
//   - MinHeapMB: 200 when the initial heap is under 256, else the initial heap
//   - MaxHeapMB: at least 350; a max within 50MB under 768 becomes 768
//   - MaxRAMMB: MaxHeapMB capped at 768
//
// An initial heap under 200 and a max over 512 each add an advisory.
func Calculate(snapshot types.MemorySnapshot) Result {
	return CalculateWithOverrides(snapshot, Overrides{})
}

// CalculateWithOverrides applies overrides to the calculated parameters.
// When UseDefaultMemory is set the snapshot is ignored entirely.
func CalculateWithOverrides(snapshot types.MemorySnapshot, o Overrides) Result {
	var result Result

	if o.UseDefaultMemory {
		d := withFallback(o.Defaults)
		result.Params.MinHeapMB = d.MinHeapMB
		result.Params.MaxHeapMB = d.MaxHeapMB
		result.Params.MaxRAMMB = d.MaxRAMMB
		result.Skipped = true
	} else {
		result.Params.MinHeapMB, result.Params.MaxHeapMB, result.Params.MaxRAMMB, result.Advisories = tune(snapshot)
	}

	result.Params.ThreadStackKB = o.ThreadStackKB
	if result.Params.ThreadStackKB <= 0 {
		result.Params.ThreadStackKB = DefaultThreadStackKB
	}
	result.Params.ConfigLocation = o.ConfigLocation
	if result.Params.ConfigLocation == "" {
		result.Params.ConfigLocation = DefaultConfigLocation
	}
	result.Params.PreTouch = o.PreTouch

	return result
}

func tune(s types.MemorySnapshot) (minMB, maxMB, maxRAM int64, advisories []string) {
	initial, observedMax := s.InitMB, s.MaxMB

	if initial < minInitialMB {
		advisories = append(advisories, AdviseInitialMemory)
	}
	minMB = initial
	if initial < smallInitialMB {
		minMB = minInitialMB
	}

	if observedMax > largeMaxMB {
		advisories = append(advisories, AdviseReviewMemory)
	}
	switch {
	case observedMax < floorMaxMB:
		maxMB = floorMaxMB
	case observedMax <= ceilingMB && ceilingMB-observedMax <= bumpWindowMB:
		maxMB = ceilingMB
	default:
		maxMB = observedMax
	}

	maxRAM = min(maxMB, ceilingMB)
	return minMB, maxMB, maxRAM, advisories
}

func withFallback(d Defaults) Defaults {
	def := DefaultDefaults()
	if d.MinHeapMB <= 0 {
		d.MinHeapMB = def.MinHeapMB
	}
	if d.MaxHeapMB <= 0 {
		d.MaxHeapMB = def.MaxHeapMB
	}
	if d.MaxRAMMB <= 0 {
		d.MaxRAMMB = def.MaxRAMMB
	}
	return d
}
