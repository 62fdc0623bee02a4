package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
)

func sampleEntries(n int, level func(i int) logging.Level) []logging.LogEntry {
	entries := make([]logging.LogEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, logging.LogEntry{
			Time:      time.Date(2026, 10, 1, 12, 0, i, 0, time.UTC),
			Level:     level(i),
			Component: "optimizer",
			Message:   fmt.Sprintf("message %d", i),
		})
	}
	return entries
}

func allInfo(int) logging.Level { return logging.LevelInfo }

func TestFilterEntriesByLevel(t *testing.T) {
	entries := []logging.LogEntry{
		{Level: logging.LevelDebug},
		{Level: logging.LevelInfo},
		{Level: logging.LevelWarn},
		{Level: logging.LevelError},
		{Level: logging.LevelDebug},
	}

	tests := []struct {
		level logging.Level
		want  int
	}{
		{logging.LevelDebug, 5},
		{logging.LevelInfo, 3},
		{logging.LevelWarn, 2},
		{logging.LevelError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := filterEntriesByLevel(entries, tt.level)
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
			for _, e := range got {
				if e.Level < tt.level {
					t.Errorf("entry below %v kept: %v", tt.level, e.Level)
				}
			}
		})
	}
}

func TestClampLogScroll(t *testing.T) {
	tests := []struct {
		name                string
		offset, total, rows int
		want                int
	}{
		{"within bounds", 5, 30, 10, 5},
		{"clamped at max", 25, 30, 10, 20},
		{"clamped at zero", -7, 30, 10, 0},
		{"entries fit in view", 5, 5, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampLogScroll(tt.offset, tt.total, tt.rows); got != tt.want {
				t.Errorf("clampLogScroll(%d, %d, %d) = %d, want %d", tt.offset, tt.total, tt.rows, got, tt.want)
			}
		})
	}
}

func TestVisibleLogEntries(t *testing.T) {
	entries := sampleEntries(50, allInfo)

	visible := visibleLogEntries(entries, logging.LevelDebug, 10, 20)
	if len(visible) != 20 {
		t.Fatalf("expected 20 visible entries, got %d", len(visible))
	}
	if visible[0].Message != "message 10" {
		t.Errorf("first visible = %q, want 'message 10'", visible[0].Message)
	}

	if got := visibleLogEntries(entries, logging.LevelDebug, 60, 5); got != nil {
		t.Errorf("offset past the end should give nil, got %d entries", len(got))
	}
}

func TestVisibleLogEntries_WithFilter(t *testing.T) {
	entries := sampleEntries(20, func(i int) logging.Level {
		if i%2 == 0 {
			return logging.LevelDebug
		}
		return logging.LevelWarn
	})

	visible := visibleLogEntries(entries, logging.LevelWarn, 0, 5)
	if len(visible) != 5 {
		t.Fatalf("expected 5 visible entries, got %d", len(visible))
	}
	for i, e := range visible {
		if e.Level != logging.LevelWarn {
			t.Errorf("entry %d: level %v, want warn", i, e.Level)
		}
	}
}

func TestLogLevelChar(t *testing.T) {
	tests := map[logging.Level]string{
		logging.LevelDebug: "D",
		logging.LevelInfo:  "I",
		logging.LevelWarn:  "W",
		logging.LevelError: "E",
		logging.Level(42):  "?",
	}
	for level, want := range tests {
		if got := logLevelChar(level); got != want {
			t.Errorf("logLevelChar(%v) = %q, want %q", level, got, want)
		}
		if rendered := logLevelStyle(level).Render("test"); !strings.Contains(rendered, "test") {
			t.Errorf("style for %v lost the text: %q", level, rendered)
		}
	}
}

func TestRenderLogEntry(t *testing.T) {
	entry := logging.LogEntry{
		Time:      time.Date(2026, 10, 1, 9, 30, 5, 0, time.UTC),
		Level:     logging.LevelWarn,
		Component: "classpath-scanner",
		Message:   "skipping unreadable archive",
	}

	got := renderLogEntry(entry, 120)
	for _, want := range []string{"09:30:05", "[W]", "classpath-", "skipping unreadable archive"} {
		if !strings.Contains(got, want) {
			t.Errorf("renderLogEntry() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "classpath-scanner") {
		t.Error("component should be cut to ten characters")
	}
}

func TestRenderLogViewer(t *testing.T) {
	if got := renderLogViewer(nil, logging.LevelDebug, 0, 80, 2); got != "" {
		t.Errorf("too small pane should render nothing, got %q", got)
	}

	got := renderLogViewer(sampleEntries(30, allInfo), logging.LevelInfo, 0, 80, logPaneHeight)
	if !strings.Contains(got, "Logs [info]") {
		t.Errorf("missing title in %q", got)
	}
	if !strings.Contains(got, "message 0") || strings.Contains(got, "message 29") {
		t.Error("pane should show the first page only")
	}
	if !strings.Contains(got, "[1/30]") {
		t.Error("missing scroll indicator")
	}
}

func TestLogViewerState(t *testing.T) {
	s := NewLogViewerState(nil)
	if s.Buffer == nil {
		t.Fatal("nil buffer should be replaced by a private one")
	}
	if s.Open {
		t.Error("viewer should start closed")
	}

	s.Toggle()
	if !s.Open {
		t.Error("Toggle() should open the viewer")
	}

	for _, e := range sampleEntries(12, func(i int) logging.Level {
		if i < 4 {
			return logging.LevelError
		}
		return logging.LevelDebug
	}) {
		s.AddEntry(e)
	}
	if n := s.FilteredEntryCount(); n != 12 {
		t.Errorf("FilteredEntryCount() = %d, want 12", n)
	}

	for i := 0; i < 10; i++ {
		s.ScrollDown(8)
	}
	if s.ScrollOffset != 4 {
		t.Errorf("ScrollOffset = %d, want 4", s.ScrollOffset)
	}
	s.ScrollUp()
	if s.ScrollOffset != 3 {
		t.Errorf("ScrollOffset after ScrollUp = %d, want 3", s.ScrollOffset)
	}

	s.SetFilterLevel(logging.LevelError)
	if s.ScrollOffset != 0 || s.FilteredEntryCount() != 4 {
		t.Errorf("after SetFilterLevel: offset %d, count %d", s.ScrollOffset, s.FilteredEntryCount())
	}
	s.ScrollDown(8)
	if s.ScrollOffset != 0 {
		t.Error("no scrolling when the filtered entries fit")
	}
	s.ScrollUp()
	if s.ScrollOffset != 0 {
		t.Error("ScrollUp() must not go below zero")
	}
}

func TestNewLogViewerState_SharedBuffer(t *testing.T) {
	buf := logging.NewLogBuffer(10)
	s := NewLogViewerState(buf)
	if s.Buffer != buf {
		t.Error("given buffer should be used")
	}
}
