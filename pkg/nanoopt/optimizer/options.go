package optimizer

import (
	"time"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/classpath"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/telemetry"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/tuner"
)

// Config holds the report options. It is copied into the Optimizer and
// never modified afterwards.
type Config struct {
	// UseDefaultMemory keeps Defaults instead of tuning from the snapshot.
	UseDefaultMemory bool `json:"use_default_memory" yaml:"use_default_memory"`

	// PreTouch adds -XX:+AlwaysPreTouch.
	PreTouch bool `json:"pre_touch" yaml:"pre_touch"`

	// ConfigLocation is passed verbatim as spring.config.location.
	ConfigLocation string `json:"config_location" yaml:"config_location"`

	// LazyPackage is substituted into the lazy initialization template.
	LazyPackage string `json:"lazy_package" yaml:"lazy_package"`

	// ThreadStackKB is the -Xss value.
	ThreadStackKB int `json:"thread_stack_kb" yaml:"thread_stack_kb"`

	// Defaults are the heap sizes kept when UseDefaultMemory is set.
	Defaults tuner.Defaults `json:"defaults" yaml:"defaults"`

	// TargetOS names the OS the command line is for. Empty uses the host.
	TargetOS string `json:"target_os,omitempty" yaml:"target_os,omitempty"`
}

func (c Config) overrides() tuner.Overrides {
	return tuner.Overrides{
		UseDefaultMemory: c.UseDefaultMemory,
		PreTouch:         c.PreTouch,
		ThreadStackKB:    c.ThreadStackKB,
		ConfigLocation:   c.ConfigLocation,
		Defaults:         c.Defaults,
	}
}

// Option customizes an Optimizer.
type Option func(*Optimizer)

// WithReader sets the heap telemetry source.
func WithReader(r telemetry.Reader) Option {
	return func(o *Optimizer) { o.reader = r }
}

// WithClassifier sets the class visibility lookup.
func WithClassifier(c classpath.Classifier) Option {
	return func(o *Optimizer) { o.classifier = c }
}

// WithLogger sets the logger receiving reports and failures.
func WithLogger(l *logging.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// WithClock sets the time source for Result.GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(o *Optimizer) { o.now = now }
}
