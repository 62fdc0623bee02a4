// Package logging gives each nanoopt component a named logger backed by one
// rotating log file, an optional stderr console and a feed for the watch
// screen.
//
// Loggers can be taken at package init time. They write nowhere until Init
// runs and follow every later Init or Close:
//
//	var log = logging.Get(logging.ComponentReport)
//
//	func main() {
//	    if err := logging.Init(logging.DefaultConfig()); err != nil {
//	        ...
//	    }
//	    defer logging.Close()
//	    log.Info("report written", "path", path)
//	}
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

const appName = "nanoopt"

// Components that log, one per package or screen.
const (
	ComponentReport    = "report"
	ComponentImports   = "imports"
	ComponentClasspath = "classpath"
	ComponentCache     = "cache"
	ComponentTelemetry = "telemetry"
	ComponentWatcher   = "watcher"
	ComponentTUI       = "tui"
)

// Polling components are quiet by default: they log on every tick.
var defaultLevels = map[string]Level{
	ComponentReport:    LevelInfo,
	ComponentImports:   LevelInfo,
	ComponentClasspath: LevelInfo,
	ComponentCache:     LevelInfo,
	ComponentTelemetry: LevelWarn,
	ComponentWatcher:   LevelWarn,
	ComponentTUI:       LevelInfo,
}

// DefaultLevels returns the default level of every component, keyed like
// the logging.components setting.
func DefaultLevels() map[string]string {
	m := make(map[string]string, len(defaultLevels))
	for comp, lvl := range defaultLevels {
		m[comp] = lvl.String()
	}
	return m
}

// Level is a log severity.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

var charmLevels = [...]log.Level{
	LevelDebug: log.DebugLevel,
	LevelInfo:  log.InfoLevel,
	LevelWarn:  log.WarnLevel,
	LevelError: log.ErrorLevel,
}

var levelsByName = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

func (l Level) valid() bool { return l >= LevelDebug && l <= LevelError }

func (l Level) String() string {
	if !l.valid() {
		return "unknown"
	}
	return levelNames[l]
}

func (l Level) charm() log.Level {
	if !l.valid() {
		return log.InfoLevel
	}
	return charmLevels[l]
}

// ErrInvalidLevel is returned for a level name ParseLevel does not know.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a case-insensitive level name. It returns LevelInfo
// with the error.
func ParseLevel(s string) (Level, error) {
	if l, ok := levelsByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
}

// Config configures the logging system.
type Config struct {
	// Level applies to components without an entry in Components.
	Level string

	// Path is the log file. Empty uses DefaultLogPath, a bare file name
	// is placed in LogDir.
	Path string

	Rotation RotationConfig

	// Components maps component names to levels.
	Components map[string]string

	// ConsoleLevel mirrors entries at or above it to stderr. Empty
	// disables the console.
	ConsoleLevel string

	// TUIMode keeps stderr quiet and records entries in a ring buffer for
	// the watch screen.
	TUIMode bool
}

// LogDir returns $XDG_STATE_HOME/nanoopt.
func LogDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultLogPath returns $XDG_STATE_HOME/nanoopt/nanoopt.log.
func DefaultLogPath() string {
	return filepath.Join(LogDir(), appName+".log")
}

// ResolvePath returns the log file Init opens for path.
func ResolvePath(path string) string {
	switch {
	case path == "":
		return DefaultLogPath()
	case filepath.Base(path) == path:
		return filepath.Join(LogDir(), path)
	default:
		return path
	}
}

// DefaultConfig returns info level logging to DefaultLogPath with the
// default component levels.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Path:       DefaultLogPath(),
		Rotation:   DefaultRotationConfig(),
		Components: DefaultLevels(),
	}
}

// LogEntry is a single record delivered to subscribers.
type LogEntry struct {
	Time      time.Time
	Level     Level
	Component string
	Message   string
}

// sinks are the charm loggers a component writes to. They are replaced
// as a whole on Init and Close.
type sinks struct {
	file    *log.Logger
	console *log.Logger
}

var discardSinks = &sinks{file: log.New(io.Discard)}

// Logger is a component logger. The zero value is not usable; use Get,
// New or Discard.
type Logger struct {
	component string
	fields    []interface{}
	out       *atomic.Pointer[sinks]
	// shared loggers feed subscribers and the watch buffer.
	shared bool
}

// New returns a logger for component that writes to w at level. It is not
// registered with Get and does not reach subscribers.
func New(component string, w io.Writer, level Level) *Logger {
	out := new(atomic.Pointer[sinks])
	out.Store(&sinks{file: log.NewWithOptions(w, log.Options{
		Level:  level.charm(),
		Prefix: component,
	})})
	return &Logger{component: component, out: out}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New("", io.Discard, LevelError)
}

// With returns a logger that adds keyvals to every entry.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	fields := make([]interface{}, 0, len(l.fields)+len(keyvals))
	fields = append(fields, l.fields...)
	fields = append(fields, keyvals...)
	return &Logger{component: l.component, fields: fields, out: l.out, shared: l.shared}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.log(LevelDebug, msg, keyvals) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.log(LevelInfo, msg, keyvals) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.log(LevelWarn, msg, keyvals) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.log(LevelError, msg, keyvals) }

func (l *Logger) log(level Level, msg string, keyvals []interface{}) {
	if len(l.fields) > 0 {
		keyvals = append(l.fields[:len(l.fields):len(l.fields)], keyvals...)
	}

	s := l.out.Load()
	s.file.Log(level.charm(), msg, keyvals...)
	if s.console != nil {
		s.console.Log(level.charm(), msg, keyvals...)
	}

	if l.shared {
		std.hub.publish(LogEntry{
			Time:      time.Now(),
			Level:     level,
			Component: l.component,
			Message:   msg,
		})
	}
}

// settings is a parsed Config.
type settings struct {
	level        Level
	levels       map[string]Level
	console      bool
	consoleLevel Level
}

func parseSettings(cfg Config) (*settings, error) {
	s := &settings{levels: make(map[string]Level, len(cfg.Components))}

	var err error
	if s.level, err = ParseLevel(cfg.Level); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	for comp, name := range cfg.Components {
		lvl, err := ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		s.levels[comp] = lvl
	}
	if cfg.ConsoleLevel != "" && !cfg.TUIMode {
		if s.consoleLevel, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return nil, fmt.Errorf("parsing console level: %w", err)
		}
		s.console = true
	}
	return s, nil
}

func (s *settings) levelOf(component string) Level {
	if lvl, ok := s.levels[component]; ok {
		return lvl
	}
	return s.level
}

// registry owns the shared loggers and the file they write to.
type registry struct {
	mu       sync.Mutex
	settings *settings // nil until Init
	writer   *RotatingWriter
	loggers  map[string]*Logger
	hub      hub
}

var std = &registry{
	loggers: make(map[string]*Logger),
	hub:     hub{subs: make(map[chan LogEntry]struct{})},
}

// sinksFor must be called with r.mu held.
func (r *registry) sinksFor(component string) *sinks {
	if r.settings == nil {
		return discardSinks
	}

	level := r.settings.levelOf(component)
	s := &sinks{file: log.NewWithOptions(r.writer, log.Options{
		Level:           level.charm(),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          component,
	})}
	if r.settings.console {
		s.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           r.settings.consoleLevel.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          component,
		})
	}
	return s
}

// repoint must be called with r.mu held.
func (r *registry) repoint() {
	for comp, l := range r.loggers {
		l.out.Store(r.sinksFor(comp))
	}
}

// Init opens the log file and points every shared logger at it. It can be
// called again to apply a new configuration.
func Init(cfg Config) error {
	s, err := parseSettings(cfg)
	if err != nil {
		return err
	}

	writer, err := NewRotatingWriter(ResolvePath(cfg.Path), cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	std.mu.Lock()
	defer std.mu.Unlock()

	old := std.writer
	std.settings, std.writer = s, writer
	std.repoint()

	if cfg.TUIMode {
		std.hub.setBuffer(NewLogBuffer(DefaultBufferSize))
	} else {
		std.hub.setBuffer(nil)
	}

	if old != nil {
		if err := old.Close(); err != nil {
			return fmt.Errorf("closing previous log file: %w", err)
		}
	}
	return nil
}

// Get returns the shared logger for component.
func Get(component string) *Logger {
	std.mu.Lock()
	defer std.mu.Unlock()

	if l, ok := std.loggers[component]; ok {
		return l
	}
	l := &Logger{component: component, out: new(atomic.Pointer[sinks]), shared: true}
	l.out.Store(std.sinksFor(component))
	std.loggers[component] = l
	return l
}

// Close closes every subscription and the log file. Shared loggers keep
// working and discard their output until the next Init.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if std.settings == nil {
		return nil
	}

	std.hub.closeAll()
	std.settings = nil
	std.repoint()

	w := std.writer
	std.writer = nil
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	return nil
}

// Subscribe returns a channel that receives entries from shared loggers.
// Entries are dropped while it is full.
func Subscribe() <-chan LogEntry {
	return std.hub.subscribe()
}

// Unsubscribe stops delivery to ch. The caller drains it.
func Unsubscribe(ch <-chan LogEntry) {
	std.hub.unsubscribe(ch)
}

// GetLogBuffer returns the ring buffer of recent entries, or nil outside
// TUI mode.
func GetLogBuffer() *LogBuffer {
	return std.hub.recent()
}

const subscriberQueue = 128

// hub fans entries out to subscribers and the TUI buffer.
type hub struct {
	mu     sync.RWMutex
	subs   map[chan LogEntry]struct{}
	buffer *LogBuffer
}

func (h *hub) publish(e LogEntry) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.buffer != nil {
		h.buffer.Add(e)
	}
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *hub) subscribe() <-chan LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan LogEntry, subscriberQueue)
	h.subs[ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(ch <-chan LogEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.subs {
		if c == ch {
			delete(h.subs, c)
			return
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}

func (h *hub) setBuffer(b *LogBuffer) {
	h.mu.Lock()
	h.buffer = b
	h.mu.Unlock()
}

func (h *hub) recent() *LogBuffer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.buffer
}
