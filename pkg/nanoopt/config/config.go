package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/optimizer"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/telemetry"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/tuner"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// Validation errors.
var (
	// ErrUnknownSource is returned for a telemetry.source outside runtime,
	// process and static.
	ErrUnknownSource = errors.New("unknown telemetry source")

	ErrMissingPID = errors.New("telemetry.pid must be set for the process source")
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// ReportConfig names and places the profile report.
type ReportConfig struct {
	ID     string `mapstructure:"id"`
	Dir    string `mapstructure:"dir"`
	Suffix string `mapstructure:"suffix"`
	Format string `mapstructure:"format"`
}

// MemoryConfig holds the tuning overrides.
type MemoryConfig struct {
	UseDefault    bool           `mapstructure:"use_default"`
	PreTouch      bool           `mapstructure:"pre_touch"`
	ThreadStackKB int            `mapstructure:"thread_stack_kb"`
	Defaults      tuner.Defaults `mapstructure:"defaults"`
}

// CommandLineConfig holds the command line options that are not memory.
type CommandLineConfig struct {
	ConfigLocation string `mapstructure:"config_location"`
	TargetOS       string `mapstructure:"target_os"`
}

// ClasspathConfig lists what is scanned to classify configuration classes.
type ClasspathConfig struct {
	Paths       []string `mapstructure:"paths"`
	Exclude     []string `mapstructure:"exclude"`
	Cache       bool     `mapstructure:"cache"`
	CachePath   string   `mapstructure:"cache_path"`
	Concurrency int      `mapstructure:"concurrency"`
}

// StaticHeapConfig is a fixed heap reading, sizes like "512m".
type StaticHeapConfig struct {
	Init      string `mapstructure:"init"`
	Used      string `mapstructure:"used"`
	Committed string `mapstructure:"committed"`
	Max       string `mapstructure:"max"`
}

// IsSet reports whether any size is given.
func (s StaticHeapConfig) IsSet() bool {
	return s.Init != "" || s.Used != "" || s.Committed != "" || s.Max != ""
}

// TelemetryConfig selects where the heap reading comes from.
type TelemetryConfig struct {
	Source string           `mapstructure:"source"`
	PID    int32            `mapstructure:"pid"`
	Static StaticHeapConfig `mapstructure:"static"`
}

// HistoryConfig configures the report history.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Report      ReportConfig      `mapstructure:"report"`
	Memory      MemoryConfig      `mapstructure:"memory"`
	CommandLine CommandLineConfig `mapstructure:"command_line"`
	Lazy        struct {
		Package string `mapstructure:"package"`
	} `mapstructure:"lazy"`
	Conditions struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"conditions"`
	Classpath ClasspathConfig `mapstructure:"classpath"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	History   HistoryConfig   `mapstructure:"history"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Load loads configuration from the default file locations and
// environment variables. Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/nanoopt/config.yaml
//   - $HOME/.config/nanoopt/config.yaml
//
// Environment variables are prefixed with NANOOPT_ (e.g., NANOOPT_REPORT_ID).
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty file searches
// the default locations.
func LoadFile(file string) (*Config, error) {
	v, err := NewViper(file)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// NewViper returns a viper instance with defaults, environment binding and
// the config file read. A missing default file is not an error; a missing
// explicit file is.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, AppName))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("report.id", "")
	v.SetDefault("report.dir", filepath.Join(DataDir(), "reports"))
	v.SetDefault("report.suffix", DefaultReportSuffix)
	v.SetDefault("report.format", DefaultFormat)

	d := tuner.DefaultDefaults()
	v.SetDefault("memory.use_default", false)
	v.SetDefault("memory.pre_touch", false)
	v.SetDefault("memory.thread_stack_kb", tuner.DefaultThreadStackKB)
	v.SetDefault("memory.defaults.min_mb", d.MinHeapMB)
	v.SetDefault("memory.defaults.max_mb", d.MaxHeapMB)
	v.SetDefault("memory.defaults.max_ram_mb", d.MaxRAMMB)

	v.SetDefault("command_line.config_location", tuner.DefaultConfigLocation)
	v.SetDefault("command_line.target_os", "")

	v.SetDefault("lazy.package", "")
	v.SetDefault("conditions.path", "")

	v.SetDefault("classpath.paths", []string{})
	v.SetDefault("classpath.exclude", []string{})
	v.SetDefault("classpath.cache", true)
	v.SetDefault("classpath.cache_path", "")
	v.SetDefault("classpath.concurrency", DefaultScanConcurrency)

	v.SetDefault("telemetry.source", DefaultTelemetrySource)
	v.SetDefault("telemetry.pid", 0)
	v.SetDefault("telemetry.static.init", "")
	v.SetDefault("telemetry.static.used", "")
	v.SetDefault("telemetry.static.committed", "")
	v.SetDefault("telemetry.static.max", "")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(StateDir(), "history"))
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means logging.DefaultLogPath, a bare name goes to logging.LogDir
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", DefaultComponents)
}

// Decode unmarshals v and expands ~ in every path setting.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	paths := []*string{
		&cfg.Report.Dir,
		&cfg.Conditions.Path,
		&cfg.Classpath.CachePath,
		&cfg.History.Path,
		&cfg.Logging.Path,
	}
	for i := range cfg.Classpath.Paths {
		paths = append(paths, &cfg.Classpath.Paths[i])
	}
	for _, p := range paths {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}
	return &cfg, nil
}

// Optimizer returns the report options.
func (c *Config) Optimizer() optimizer.Config {
	return optimizer.Config{
		UseDefaultMemory: c.Memory.UseDefault,
		PreTouch:         c.Memory.PreTouch,
		ConfigLocation:   c.CommandLine.ConfigLocation,
		LazyPackage:      c.Lazy.Package,
		ThreadStackKB:    c.Memory.ThreadStackKB,
		Defaults:         c.Memory.Defaults,
		TargetOS:         c.CommandLine.TargetOS,
	}
}

// LoggingConfig converts the logging section for logging.Init.
func (c *Config) LoggingConfig() (logging.Config, error) {
	rot := logging.RotationConfig{
		MaxAge:     c.Logging.Rotation.MaxAge,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		Daily:      c.Logging.Rotation.Daily,
	}
	if c.Logging.Rotation.MaxSize != "" {
		size, err := types.ParseSize(c.Logging.Rotation.MaxSize)
		if err != nil {
			return logging.Config{}, fmt.Errorf("logging.rotation.max_size: %w", err)
		}
		rot.MaxSize = size
	}

	return logging.Config{
		Level:      c.Logging.Level,
		Path:       logging.ResolvePath(c.Logging.Path),
		Rotation:   rot,
		Components: c.Logging.Components,
	}, nil
}

// StaticHeap parses telemetry.static. Unset sizes are 0.
func (c *Config) StaticHeap() (telemetry.Static, error) {
	var s telemetry.Static
	fields := []struct {
		key string
		in  string
		out *int64
	}{
		{"init", c.Telemetry.Static.Init, &s.Init},
		{"used", c.Telemetry.Static.Used, &s.Used},
		{"committed", c.Telemetry.Static.Committed, &s.Committed},
		{"max", c.Telemetry.Static.Max, &s.Max},
	}

	for _, f := range fields {
		if f.in == "" {
			continue
		}
		size, err := types.ParseSize(f.in)
		if err != nil {
			return telemetry.Static{}, fmt.Errorf("telemetry.static.%s: %w", f.key, err)
		}
		*f.out = size
	}
	return s, nil
}

// HeapSource returns the telemetry source in effect. Static sizes given
// with the default runtime source select the static source; an explicit
// process source keeps its PID reading.
func (c *Config) HeapSource() string {
	switch c.Telemetry.Source {
	case "", SourceRuntime:
		if c.Telemetry.Static.IsSet() {
			return SourceStatic
		}
		return SourceRuntime
	default:
		return c.Telemetry.Source
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.HeapSource() {
	case SourceRuntime, SourceStatic:
	case SourceProcess:
		if c.Telemetry.PID <= 0 {
			return ErrMissingPID
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Telemetry.Source)
	}
	return nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", AppName), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists and returns
// its path.
func WriteDefault() (string, error) {
	if err := EnsureConfigDir(); err != nil {
		return "", err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	d := tuner.DefaultDefaults()
	defaultConfig := fmt.Sprintf(`# nano-optimizer configuration

# Profile report naming and placement
report:
  # Application id, shown in the report header and the file name
  id: ""
  # Directory receiving <id>_REPORT_<suffix>
  dir: %s
  suffix: %s
  # Output format: report, pretty, json, yaml, cmdline, args, imports, template
  format: %s

# Heap tuning
memory:
  # Keep the defaults below instead of tuning from the heap reading
  use_default: false
  # Add -XX:+AlwaysPreTouch
  pre_touch: false
  thread_stack_kb: %d
  defaults:
    min_mb: %d
    max_mb: %d
    max_ram_mb: %d

command_line:
  config_location: %s
  # OS the command line is for (empty means this host)
  target_os: ""

lazy:
  # Package of the generated lazy initialization post processor
  package: ""

conditions:
  # Actuator conditions dump (JSON) or a YAML/JSON map of class: matched
  path: ""

classpath:
  # Jars, fat jars and class directories used to tell public classes apart
  paths: []
  # Glob patterns, relative to a directory root, of files to skip
  exclude: []
  cache: true
  # Empty means $XDG_CACHE_HOME/nanoopt/classpath
  cache_path: ""
  concurrency: %d

telemetry:
  # runtime, process or static
  source: %s
  # Process id for the process source
  pid: 0
  # Fixed reading for the static source, sizes like 512m
  static:
    init: ""
    used: ""
    committed: ""
    max: ""

# Report history
history:
  enabled: true
  path: %s
  retention_days: %d

logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/nanoopt/nanoopt.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
    report: info
    imports: info
    classpath: info
    telemetry: warn
    watcher: warn
    tui: info
`, filepath.Join(DataDir(), "reports"), DefaultReportSuffix, DefaultFormat,
		tuner.DefaultThreadStackKB, d.MinHeapMB, d.MaxHeapMB, d.MaxRAMMB,
		tuner.DefaultConfigLocation, DefaultScanConcurrency, DefaultTelemetrySource,
		filepath.Join(StateDir(), "history"), DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/nanoopt/ for reports.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StateDir returns $XDG_STATE_HOME/nanoopt/ for logs and history.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}
