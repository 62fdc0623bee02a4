package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/cache"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/classpath"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/conditions"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/config"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/optimizer"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/telemetry"
)

var errMissingID = errors.New("an application id is required (--id or report.id)")

// buildOptimizer assembles an Optimizer from the configuration. The
// conditions dump is read and the classpath scanned on every call, so a
// follow loop sees fresh inputs.
func buildOptimizer(ctx context.Context, cfg *config.Config) (*optimizer.Optimizer, error) {
	if cfg.Report.ID == "" {
		return nil, errMissingID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src, err := loadConditions(cfg.Conditions.Path)
	if err != nil {
		return nil, err
	}

	reader, err := buildReader(cfg)
	if err != nil {
		return nil, err
	}

	opts := []optimizer.Option{optimizer.WithReader(reader)}

	catalog, err := scanClasspath(ctx, cfg.Classpath)
	if err != nil {
		return nil, err
	}
	if catalog != nil {
		opts = append(opts, optimizer.WithClassifier(catalog))
	}

	return optimizer.New(cfg.Report.ID, src, cfg.Optimizer(), opts...)
}

// loadConditions reads the dump at path. Without one every class is
// unmatched and the import list stays empty.
func loadConditions(path string) (conditions.Source, error) {
	if path == "" {
		logging.Get(logging.ComponentReport).Warn("no conditions dump configured, the import list will be empty")
		return conditions.Empty, nil
	}
	m, err := conditions.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load conditions: %w", err)
	}
	printVerbose("Loaded %d condition outcomes from %s", len(m), path)
	return m, nil
}

// buildReader returns the heap reader for the effective telemetry source.
func buildReader(cfg *config.Config) (telemetry.Reader, error) {
	source := cfg.HeapSource()
	if source != cfg.Telemetry.Source && cfg.Telemetry.Source != "" {
		logging.Get(logging.ComponentTelemetry).Info("static heap sizes given, using the static source", "configured", cfg.Telemetry.Source)
	}
	switch source {
	case config.SourceProcess:
		return telemetry.NewProcessReader(int(cfg.Telemetry.PID), nil), nil
	case config.SourceStatic:
		return cfg.StaticHeap()
	default:
		return telemetry.NewRuntimeReader(nil), nil
	}
}

// scanClasspath builds the class catalog. It returns nil when no classpath
// is configured. A cache that cannot be opened only costs a full scan.
func scanClasspath(ctx context.Context, cp config.ClasspathConfig) (*classpath.Catalog, error) {
	if len(cp.Paths) == 0 {
		return nil, nil
	}

	opts := classpath.ScanOptions{Concurrency: cp.Concurrency, Exclude: cp.Exclude}
	if cp.Cache {
		path := cp.CachePath
		if path == "" {
			path = cache.DefaultPath()
		}
		c, err := cache.Open(path)
		if err != nil {
			logging.Get(logging.ComponentClasspath).Warn("classpath cache unavailable", "path", path, "err", err)
		} else {
			defer func() { _ = c.Close() }()
			opts.Cache = c
		}
	}

	catalog, err := classpath.Scan(ctx, cp.Paths, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan classpath: %w", err)
	}
	printVerbose("Classified %d classes from %d classpath roots", catalog.Len(), len(cp.Paths))
	return catalog, nil
}
