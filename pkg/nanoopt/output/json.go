package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/cmdline"
)

// document is the structured form shared by the JSON and YAML formatters.
type document struct {
	ID          string    `json:"id" yaml:"id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	TargetOS    string    `json:"target_os" yaml:"target_os"`
	Heap        heapDoc   `json:"heap" yaml:"heap"`
	Tuning      tuningDoc `json:"tuning" yaml:"tuning"`
	CommandLine string    `json:"command_line" yaml:"command_line"`
	Args        []string  `json:"args" yaml:"args"`
	Imports     []string  `json:"imports" yaml:"imports"`
	LazyPackage string    `json:"lazy_package,omitempty" yaml:"lazy_package,omitempty"`
}

type heapDoc struct {
	InitMB      int64 `json:"init_mb" yaml:"init_mb"`
	UsedMB      int64 `json:"used_mb" yaml:"used_mb"`
	CommittedMB int64 `json:"committed_mb" yaml:"committed_mb"`
	MaxMB       int64 `json:"max_mb" yaml:"max_mb"`
}

type tuningDoc struct {
	MinHeapMB      int64    `json:"min_heap_mb" yaml:"min_heap_mb"`
	MaxHeapMB      int64    `json:"max_heap_mb" yaml:"max_heap_mb"`
	MaxRAMMB       int64    `json:"max_ram_mb" yaml:"max_ram_mb"`
	ThreadStackKB  int      `json:"thread_stack_kb" yaml:"thread_stack_kb"`
	PreTouch       bool     `json:"pre_touch" yaml:"pre_touch"`
	ConfigLocation string   `json:"config_location" yaml:"config_location"`
	Skipped        bool     `json:"skipped" yaml:"skipped"`
	Advisories     []string `json:"advisories" yaml:"advisories"`
}

// buildDocument converts a Result to the structured output form. Slices are
// never nil so both encoders emit empty lists instead of null.
func buildDocument(r *Result) document {
	p := r.Tuning.Params
	advisories := r.Tuning.Advisories
	if advisories == nil {
		advisories = []string{}
	}
	names := r.Imports
	if names == nil {
		names = []string{}
	}

	return document{
		ID:          r.ID,
		GeneratedAt: r.GeneratedAt,
		TargetOS:    r.TargetOS,
		Heap: heapDoc{
			InitMB:      r.Snapshot.InitMB,
			UsedMB:      r.Snapshot.UsedMB,
			CommittedMB: r.Snapshot.CommittedMB,
			MaxMB:       r.Snapshot.MaxMB,
		},
		Tuning: tuningDoc{
			MinHeapMB:      p.MinHeapMB,
			MaxHeapMB:      p.MaxHeapMB,
			MaxRAMMB:       p.MaxRAMMB,
			ThreadStackKB:  p.ThreadStackKB,
			PreTouch:       p.PreTouch,
			ConfigLocation: p.ConfigLocation,
			Skipped:        r.Tuning.Skipped,
			Advisories:     advisories,
		},
		CommandLine: r.CommandLine,
		Args:        cmdline.Args(p, r.Windows),
		Imports:     names,
		LazyPackage: r.LazyPackage,
	}
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildDocument(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
