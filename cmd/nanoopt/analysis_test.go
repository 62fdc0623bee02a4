package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/config"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/telemetry"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

func TestBuildReader(t *testing.T) {
	cfg := testConfig(t)

	r, err := buildReader(cfg)
	if err != nil {
		t.Fatalf("buildReader() error = %v", err)
	}
	static, ok := r.(telemetry.Static)
	if !ok {
		t.Fatalf("buildReader() = %T, want telemetry.Static", r)
	}
	if static.Max != 730*types.MiB {
		t.Errorf("Max = %d, want %d", static.Max, 730*types.MiB)
	}

	cfg.Telemetry.Source = config.SourceProcess
	cfg.Telemetry.PID = 1
	if r, _ := buildReader(cfg); r == nil {
		t.Error("process reader is nil")
	} else if _, ok := r.(*telemetry.ProcessReader); !ok {
		t.Errorf("buildReader() = %T, want *telemetry.ProcessReader", r)
	}

	cfg.Telemetry.Source = config.SourceRuntime
	if r, _ := buildReader(cfg); r == nil {
		t.Error("heap sizes reader is nil")
	} else if _, ok := r.(telemetry.Static); !ok {
		t.Errorf("buildReader() = %T, want telemetry.Static when heap sizes are set", r)
	}

	heap := cfg.Telemetry.Static
	cfg.Telemetry.Static = config.StaticHeapConfig{}
	if r, _ := buildReader(cfg); r == nil {
		t.Error("runtime reader is nil")
	} else if _, ok := r.(*telemetry.RuntimeReader); !ok {
		t.Errorf("buildReader() = %T, want *telemetry.RuntimeReader", r)
	}
	cfg.Telemetry.Static = heap

	cfg.Telemetry.Source = config.SourceStatic
	cfg.Telemetry.Static.Max = "lots"
	if _, err := buildReader(cfg); err == nil {
		t.Error("buildReader() should reject an invalid static size")
	}
}

func TestLoadConditions(t *testing.T) {
	src, err := loadConditions("")
	if err != nil {
		t.Fatalf("loadConditions(\"\") error = %v", err)
	}
	if got := len(src.Entries()); got != 0 {
		t.Errorf("no dump should give the empty source, got %d entries", got)
	}

	path := filepath.Join(t.TempDir(), "conditions.json")
	if err := os.WriteFile(path, []byte(`{"com.example.WebConfig": true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err = loadConditions(path)
	if err != nil {
		t.Fatalf("loadConditions() error = %v", err)
	}
	if got := len(src.Entries()); got != 1 {
		t.Errorf("len(Entries()) = %d, want 1", got)
	}

	if _, err := loadConditions(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("loadConditions() should fail for a missing file")
	}
}

func TestScanClasspath_NoPaths(t *testing.T) {
	catalog, err := scanClasspath(context.Background(), config.ClasspathConfig{})
	if err != nil || catalog != nil {
		t.Errorf("scanClasspath() = %v, %v, want nil, nil", catalog, err)
	}
}

func TestScanClasspath_MissingRoot(t *testing.T) {
	cp := config.ClasspathConfig{Paths: []string{filepath.Join(t.TempDir(), "absent.jar")}}
	if _, err := scanClasspath(context.Background(), cp); err == nil {
		t.Error("scanClasspath() should fail for a missing root")
	}
}

func TestBuildOptimizer(t *testing.T) {
	cfg := testConfig(t)

	opt, err := buildOptimizer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildOptimizer() error = %v", err)
	}
	res := opt.Analyze()
	if res.Tuning.Params.MaxHeapMB != 768 {
		t.Errorf("MaxHeapMB = %d, want 768", res.Tuning.Params.MaxHeapMB)
	}

	cfg.Report.ID = ""
	if _, err := buildOptimizer(context.Background(), cfg); !errors.Is(err, errMissingID) {
		t.Errorf("buildOptimizer() error = %v, want errMissingID", err)
	}

	cfg = testConfig(t)
	cfg.Telemetry.Source = "jmx"
	if _, err := buildOptimizer(context.Background(), cfg); !errors.Is(err, config.ErrUnknownSource) {
		t.Errorf("buildOptimizer() error = %v, want ErrUnknownSource", err)
	}
}

func TestWatchedInputs(t *testing.T) {
	cfg := testConfig(t)
	if got := watchedInputs(cfg); len(got) != 0 {
		t.Errorf("watchedInputs() = %v, want none", got)
	}

	cfg.Conditions.Path = "conditions.json"
	cfg.Classpath.Paths = []string{"app.jar"}
	got := watchedInputs(cfg)
	if len(got) != 2 || got[0] != "conditions.json" || got[1] != "app.jar" {
		t.Errorf("watchedInputs() = %v", got)
	}
}
