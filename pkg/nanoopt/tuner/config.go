// Package tuner turns a heap snapshot into JVM launch parameters for
// nano-optimizer. The policy is a pure function: the same snapshot always
// yields the same parameters and advisories.
package tuner

import "github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"

// Defaults are the heap sizes used when tuning is skipped.
type Defaults struct {
	MinHeapMB int64 `json:"min_mb" yaml:"min_mb" mapstructure:"min_mb"`
	MaxHeapMB int64 `json:"max_mb" yaml:"max_mb" mapstructure:"max_mb"`
	MaxRAMMB  int64 `json:"max_ram_mb" yaml:"max_ram_mb" mapstructure:"max_ram_mb"`
}

// DefaultDefaults returns 256/512/768.
func DefaultDefaults() Defaults {
	return Defaults{
		MinHeapMB: defaultMinHeapMB,
		MaxHeapMB: defaultMaxHeapMB,
		MaxRAMMB:  defaultMaxRAMMB,
	}
}

// Overrides are the caller's choices layered over the calculated values.
type Overrides struct {
	// UseDefaultMemory skips the policy and keeps Defaults.
	UseDefaultMemory bool

	// PreTouch adds -XX:+AlwaysPreTouch to the command line.
	PreTouch bool

	// ThreadStackKB is the -Xss value. Zero uses 256.
	ThreadStackKB int

	// ConfigLocation is the spring.config.location value. Empty uses
	// classpath:/application.properties.
	ConfigLocation string

	// Defaults apply when UseDefaultMemory is set. Zero fields use
	// DefaultDefaults.
	Defaults Defaults
}

// Result is the outcome of tuning.
type Result struct {
	Params     types.TuningParameters `json:"params" yaml:"params"`
	Advisories []string               `json:"advisories,omitempty" yaml:"advisories,omitempty"`

	// Skipped reports that the policy did not run.
	Skipped bool `json:"skipped" yaml:"skipped"`
}
