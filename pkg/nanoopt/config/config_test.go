package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/tuner"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

func isolate(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	return tempDir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Report.Suffix != DefaultReportSuffix {
		t.Errorf("Report.Suffix = %q, want %q", cfg.Report.Suffix, DefaultReportSuffix)
	}
	if cfg.Report.Format != DefaultFormat {
		t.Errorf("Report.Format = %q, want %q", cfg.Report.Format, DefaultFormat)
	}
	if cfg.Memory.ThreadStackKB != tuner.DefaultThreadStackKB {
		t.Errorf("Memory.ThreadStackKB = %d, want %d", cfg.Memory.ThreadStackKB, tuner.DefaultThreadStackKB)
	}
	if cfg.Memory.Defaults != tuner.DefaultDefaults() {
		t.Errorf("Memory.Defaults = %+v, want %+v", cfg.Memory.Defaults, tuner.DefaultDefaults())
	}
	if cfg.CommandLine.ConfigLocation != tuner.DefaultConfigLocation {
		t.Errorf("CommandLine.ConfigLocation = %q", cfg.CommandLine.ConfigLocation)
	}
	if cfg.Telemetry.Source != SourceRuntime {
		t.Errorf("Telemetry.Source = %q, want %q", cfg.Telemetry.Source, SourceRuntime)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.RetentionDays != DefaultRetentionDays {
		t.Errorf("History.RetentionDays = %d, want %d", cfg.History.RetentionDays, DefaultRetentionDays)
	}
	if !cfg.Classpath.Cache {
		t.Error("Classpath.Cache = false, want true")
	}
	if cfg.Logging.Components["telemetry"] != "warn" {
		t.Errorf("Logging.Components[telemetry] = %q, want warn", cfg.Logging.Components["telemetry"])
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := isolate(t)
	configDir := filepath.Join(tempDir, ".config", AppName)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
report:
  id: orders
  dir: ~/reports
  suffix: v2.txt
memory:
  use_default: true
  pre_touch: true
  thread_stack_kb: 512
  defaults:
    min_mb: 128
    max_mb: 256
    max_ram_mb: 384
command_line:
  target_os: Windows 10
lazy:
  package: com.example.boot
classpath:
  paths:
    - /opt/app/app.jar
    - ~/classes
telemetry:
  source: static
  static:
    init: 128m
    max: 1g
`
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Report.ID != "orders" {
		t.Errorf("Report.ID = %q, want orders", cfg.Report.ID)
	}
	if want := filepath.Join(tempDir, "reports"); cfg.Report.Dir != want {
		t.Errorf("Report.Dir = %q, want %q", cfg.Report.Dir, want)
	}
	if want := filepath.Join(tempDir, "classes"); cfg.Classpath.Paths[1] != want {
		t.Errorf("Classpath.Paths[1] = %q, want %q", cfg.Classpath.Paths[1], want)
	}

	opt := cfg.Optimizer()
	if !opt.UseDefaultMemory || !opt.PreTouch {
		t.Errorf("Optimizer() = %+v, want use_default and pre_touch", opt)
	}
	if opt.ThreadStackKB != 512 {
		t.Errorf("ThreadStackKB = %d, want 512", opt.ThreadStackKB)
	}
	if opt.Defaults != (tuner.Defaults{MinHeapMB: 128, MaxHeapMB: 256, MaxRAMMB: 384}) {
		t.Errorf("Defaults = %+v", opt.Defaults)
	}
	if opt.TargetOS != "Windows 10" || opt.LazyPackage != "com.example.boot" {
		t.Errorf("Optimizer() = %+v", opt)
	}

	heap, err := cfg.StaticHeap()
	if err != nil {
		t.Fatalf("StaticHeap() error = %v", err)
	}
	if heap.Init != 128*types.MiB || heap.Max != types.GiB || heap.Used != 0 {
		t.Errorf("StaticHeap() = %+v", heap)
	}
}

func TestLoadFile_Explicit(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("report:\n  id: billing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Report.ID != "billing" {
		t.Errorf("Report.ID = %q, want billing", cfg.Report.ID)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() on a missing explicit file should fail")
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := isolate(t)
	xdgConfigDir := filepath.Join(tempDir, "xdg-config", AppName)
	if err := os.MkdirAll(xdgConfigDir, 0o755); err != nil {
		t.Fatalf("failed to create XDG config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(xdgConfigDir, "config.yaml"), []byte("lazy:\n  package: x.y\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg-config"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Lazy.Package != "x.y" {
		t.Errorf("Lazy.Package = %q, want x.y", cfg.Lazy.Package)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("NANOOPT_REPORT_ID", "from-env")
	t.Setenv("NANOOPT_MEMORY_PRE_TOUCH", "true")
	t.Setenv("NANOOPT_TELEMETRY_PID", "4242")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Report.ID != "from-env" {
		t.Errorf("Report.ID = %q, want from-env", cfg.Report.ID)
	}
	if !cfg.Memory.PreTouch {
		t.Error("Memory.PreTouch = false, want true")
	}
	if cfg.Telemetry.PID != 4242 {
		t.Errorf("Telemetry.PID = %d, want 4242", cfg.Telemetry.PID)
	}
}

func TestHeapSource(t *testing.T) {
	cfg := &Config{}
	if got := cfg.HeapSource(); got != SourceRuntime {
		t.Errorf("HeapSource() = %q, want %q", got, SourceRuntime)
	}

	cfg.Telemetry.Source = SourceRuntime
	cfg.Telemetry.Static.Max = "768m"
	if got := cfg.HeapSource(); got != SourceStatic {
		t.Errorf("HeapSource() with heap max = %q, want %q", got, SourceStatic)
	}

	cfg.Telemetry.Source = SourceProcess
	if got := cfg.HeapSource(); got != SourceProcess {
		t.Errorf("HeapSource() = %q, want %q", got, SourceProcess)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingPID) {
		t.Errorf("Validate() = %v, want ErrMissingPID", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Telemetry.Source = "jmx"
	if err := cfg.Validate(); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Validate() = %v, want ErrUnknownSource", err)
	}

	cfg.Telemetry.Source = SourceProcess
	if err := cfg.Validate(); !errors.Is(err, ErrMissingPID) {
		t.Errorf("Validate() = %v, want ErrMissingPID", err)
	}

	cfg.Telemetry.PID = 1
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestStaticHeap_Invalid(t *testing.T) {
	cfg := &Config{}
	cfg.Telemetry.Static.Committed = "lots"

	_, err := cfg.StaticHeap()
	if err == nil || !strings.Contains(err.Error(), "telemetry.static.committed") {
		t.Errorf("StaticHeap() error = %v", err)
	}
}

func TestLoggingConfig(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	lc, err := cfg.LoggingConfig()
	if err != nil {
		t.Fatalf("LoggingConfig() error = %v", err)
	}
	if lc.Rotation.MaxSize != 10*types.MiB {
		t.Errorf("Rotation.MaxSize = %d, want %d", lc.Rotation.MaxSize, 10*types.MiB)
	}
	if lc.Path == "" {
		t.Error("Path should default to the state log path")
	}

	cfg.Logging.Rotation.MaxSize = "huge"
	if _, err := cfg.LoggingConfig(); err == nil {
		t.Error("LoggingConfig() should reject an invalid max_size")
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if expected := filepath.Join("/custom/config", AppName); dir != expected {
			t.Errorf("ConfigDir() = %q, want %q", dir, expected)
		}
	})

	t.Run("uses HOME/.config when XDG_CONFIG_HOME not set", func(t *testing.T) {
		tempDir := isolate(t)

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if expected := filepath.Join(tempDir, ".config", AppName); dir != expected {
			t.Errorf("ConfigDir() = %q, want %q", dir, expected)
		}
	})
}

func TestWriteDefault(t *testing.T) {
	isolate(t)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read default config: %v", err)
	}
	if !strings.Contains(string(data), "thread_stack_kb: 256") {
		t.Error("default config should carry the thread stack default")
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("default config does not load: %v", err)
	}
	if cfg.Memory.Defaults != tuner.DefaultDefaults() {
		t.Errorf("Memory.Defaults = %+v", cfg.Memory.Defaults)
	}

	if err := os.WriteFile(path, []byte("# mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteDefault(); err != nil {
		t.Fatalf("second WriteDefault() error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "# mine\n" {
		t.Error("WriteDefault() must not overwrite an existing file")
	}
}

func TestExpandPath(t *testing.T) {
	tempDir := isolate(t)

	got, err := ExpandPath("~/x/y")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(tempDir, "x", "y"); got != want {
		t.Errorf("ExpandPath() = %q, want %q", got, want)
	}

	got, _ = ExpandPath("/abs")
	if got != "/abs" {
		t.Errorf("ExpandPath(/abs) = %q", got)
	}
}
