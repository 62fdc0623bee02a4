// Package optimizer ties telemetry, tuning, import resolution and report
// assembly together. Every build call works on its own accumulator, so one
// Optimizer may serve concurrent callers.
package optimizer

import (
	"errors"
	"time"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/classpath"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/cmdline"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/conditions"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/imports"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/report"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/telemetry"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/tuner"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// Construction errors.
var (
	ErrMissingID     = errors.New("id is required")
	ErrMissingSource = errors.New("conditions source is required")
)

// Optimizer produces profile reports for one application id.
type Optimizer struct {
	id     string
	source conditions.Source
	cfg    Config

	reader     telemetry.Reader
	classifier classpath.Classifier
	logger     *logging.Logger
	now        func() time.Time

	// hostWindows selects the report line separator. The target OS only
	// affects the command line.
	hostWindows bool
}

// New returns an Optimizer. Without options it reads the current process
// heap and resolves no classes.
func New(id string, src conditions.Source, cfg Config, opts ...Option) (*Optimizer, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	if src == nil {
		return nil, ErrMissingSource
	}

	o := &Optimizer{
		id:     id,
		source: src,
		cfg:    cfg,
		now:    time.Now,

		hostWindows: cmdline.IsWindows(cmdline.HostOSName()),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.Get(logging.ComponentReport)
	}
	if o.reader == nil {
		o.reader = telemetry.NewRuntimeReader(o.logger)
	}
	if o.classifier == nil {
		o.classifier = classpath.NewCatalog()
	}
	return o, nil
}

// ID returns the application id.
func (o *Optimizer) ID() string { return o.id }

// Config returns a copy of the configuration.
func (o *Optimizer) Config() Config { return o.cfg }

// Result is one analysis of the application.
type Result struct {
	ID          string               `json:"id" yaml:"id"`
	GeneratedAt time.Time            `json:"generated_at" yaml:"generated_at"`
	TargetOS    string               `json:"target_os" yaml:"target_os"`
	Windows     bool                 `json:"windows" yaml:"windows"`
	Snapshot    types.MemorySnapshot `json:"heap" yaml:"heap"`
	Tuning      tuner.Result         `json:"tuning" yaml:"tuning"`
	CommandLine string               `json:"command_line" yaml:"command_line"`
	Imports     []string             `json:"imports" yaml:"imports"`
	LazyPackage string               `json:"lazy_package,omitempty" yaml:"lazy_package,omitempty"`

	sep string
}

// Separator returns the host's line separator, which the report text uses
// whatever the target OS.
func (r *Result) Separator() string {
	if r.sep == "" {
		return report.LineSeparator(cmdline.IsWindows(cmdline.HostOSName()))
	}
	return r.sep
}

// Analyze reads the heap, tunes it and resolves the import list.
func (o *Optimizer) Analyze() Result {
	osName := cmdline.Target(o.cfg.TargetOS)
	windows := cmdline.IsWindows(osName)

	snapshot := types.NewSnapshot(o.reader.Read())
	tuning := tuner.CalculateWithOverrides(snapshot, o.cfg.overrides())

	return Result{
		ID:          o.id,
		GeneratedAt: o.now(),
		TargetOS:    osName,
		Windows:     windows,
		Snapshot:    snapshot,
		Tuning:      tuning,
		CommandLine: cmdline.Build(tuning.Params, windows),
		Imports:     imports.Build(o.source, o.classifier, o.logger),
		LazyPackage: o.cfg.LazyPackage,
		sep:         report.LineSeparator(o.hostWindows),
	}
}

// Document converts a result into the report's text blocks.
func Document(r Result) report.Document {
	sep := r.Separator()
	return report.Document{
		ID:            r.ID,
		Snapshot:      r.Snapshot,
		Advisories:    r.Tuning.Advisories,
		TuningSkipped: r.Tuning.Skipped,
		CommandLine:   r.CommandLine,
		Imports:       imports.Render(r.Imports, sep),
		Lazy:          report.RenderLazyTemplate(r.LazyPackage, sep),
		Properties:    report.RenderProperties(sep),
	}
}

// BuildTo analyzes and writes the report to sink.
func (o *Optimizer) BuildTo(sink report.Sink) Result {
	res := o.Analyze()
	report.Assemble(sink, Document(res))
	return res
}

// Render analyzes and returns the report text.
func (o *Optimizer) Render() (string, Result) {
	res := o.Analyze()
	buf := report.NewBuffer(res.Separator())
	report.Assemble(buf, Document(res))
	return buf.String(), res
}

// Build logs the report once at info level and returns its text.
func (o *Optimizer) Build() string {
	text, _ := o.Render()
	o.logger.Info(text)
	return text
}

// WriteReport writes the report to <dir>/<id>_REPORT_<suffix> and returns
// the analysis behind it along with the target path.
func (o *Optimizer) WriteReport(dir, suffix string) (Result, string, error) {
	path := report.Path(dir, o.id, suffix)
	o.logger.Info("The report will be on the file", "path", path)

	text, res := o.Render()
	if _, err := report.WriteFile(dir, o.id, suffix, []byte(text)); err != nil {
		return res, path, err
	}
	return res, path, nil
}

// BuildFile writes the report to <dir>/<id>_REPORT_<suffix>. Failures are
// logged and reported through ok; the text is then lost.
func (o *Optimizer) BuildFile(dir, suffix string) (path string, ok bool) {
	_, path, err := o.WriteReport(dir, suffix)
	if err != nil {
		o.logger.Error("Problem writing on file", "path", path, "err", err)
		return path, false
	}
	return path, true
}
