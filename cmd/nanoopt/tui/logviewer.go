package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
)

// filterEntriesByLevel returns entries at or above the specified level.
func filterEntriesByLevel(entries []logging.LogEntry, minLevel logging.Level) []logging.LogEntry {
	result := make([]logging.LogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Level >= minLevel {
			result = append(result, e)
		}
	}
	return result
}

// clampLogScroll ensures the scroll offset stays within valid bounds.
func clampLogScroll(offset, totalEntries, visibleRows int) int {
	if totalEntries <= visibleRows {
		return 0
	}
	maxOffset := totalEntries - visibleRows
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

// visibleLogEntries filters entries by level, then applies offset and limit.
func visibleLogEntries(entries []logging.LogEntry, minLevel logging.Level, offset, limit int) []logging.LogEntry {
	filtered := filterEntriesByLevel(entries, minLevel)

	if offset >= len(filtered) {
		return nil
	}

	end := min(offset+limit, len(filtered))
	return filtered[offset:end]
}

// logLevelStyle returns the style for a log level.
func logLevelStyle(level logging.Level) lipgloss.Style {
	switch level {
	case logging.LevelDebug:
		return logDebugStyle
	case logging.LevelInfo:
		return logInfoStyle
	case logging.LevelWarn:
		return logWarnStyle
	case logging.LevelError:
		return logErrorStyle
	default:
		return logInfoStyle
	}
}

// logLevelChar returns a single character for the log level.
func logLevelChar(level logging.Level) string {
	switch level {
	case logging.LevelDebug:
		return "D"
	case logging.LevelInfo:
		return "I"
	case logging.LevelWarn:
		return "W"
	case logging.LevelError:
		return "E"
	default:
		return "?"
	}
}

// renderLogViewer renders the log pane in width x height cells.
func renderLogViewer(entries []logging.LogEntry, filterLevel logging.Level, scrollOffset, width, height int) string {
	if height < 3 {
		return ""
	}

	var b strings.Builder

	title := fmt.Sprintf(" Logs [%s] ", filterLevel.String())
	b.WriteString(titleStyle.Render(title) + mutedTextStyle.Render("[1-4] filter  [Esc] close"))
	b.WriteString("\n")
	b.WriteString(renderDivider(width))
	b.WriteString("\n")

	visibleRows := max(height-2, 1)

	filtered := filterEntriesByLevel(entries, filterLevel)
	scrollOffset = clampLogScroll(scrollOffset, len(filtered), visibleRows)
	visible := visibleLogEntries(entries, filterLevel, scrollOffset, visibleRows)

	for _, entry := range visible {
		b.WriteString(renderLogEntry(entry, width))
		b.WriteString("\n")
	}
	for i := len(visible); i < visibleRows; i++ {
		b.WriteString("\n")
	}

	if len(filtered) > visibleRows {
		scrollPct := scrollOffset * 100 / (len(filtered) - visibleRows)
		indicator := mutedTextStyle.Render(fmt.Sprintf(" [%d/%d] %d%%", scrollOffset+1, len(filtered), scrollPct))
		if padding := width - lipgloss.Width(indicator); padding > 0 {
			b.WriteString(strings.Repeat(" ", padding))
		}
		b.WriteString(indicator)
	}

	return b.String()
}

// renderLogEntry renders one entry as "HH:MM:SS [L] component: message".
func renderLogEntry(entry logging.LogEntry, width int) string {
	const maxComponent = 10

	comp := entry.Component
	if len(comp) > maxComponent {
		comp = comp[:maxComponent]
	}

	prefixWidth := 8 + 1 + 3 + 1 + len(comp) + 2
	msgWidth := max(width-prefixWidth, 10)

	return fmt.Sprintf("%s %s %s: %s",
		logTimeStyle.Render(entry.Time.Format("15:04:05")),
		logLevelStyle(entry.Level).Render("["+logLevelChar(entry.Level)+"]"),
		logComponentStyle.Render(comp),
		truncate(entry.Message, msgWidth))
}

// LogViewerState holds the state for the log viewer pane.
type LogViewerState struct {
	Open         bool
	Buffer       *logging.LogBuffer
	FilterLevel  logging.Level
	ScrollOffset int
}

// NewLogViewerState creates a closed log viewer over buf. A nil buf gets
// a private buffer.
func NewLogViewerState(buf *logging.LogBuffer) *LogViewerState {
	if buf == nil {
		buf = logging.NewLogBuffer(logging.DefaultBufferSize)
	}
	return &LogViewerState{
		Buffer:      buf,
		FilterLevel: logging.LevelDebug,
	}
}

// Toggle toggles the log viewer open/closed.
func (s *LogViewerState) Toggle() {
	s.Open = !s.Open
}

// SetFilterLevel sets the filter level and resets the scroll.
func (s *LogViewerState) SetFilterLevel(level logging.Level) {
	s.FilterLevel = level
	s.ScrollOffset = 0
}

// ScrollUp scrolls up by one line.
func (s *LogViewerState) ScrollUp() {
	if s.ScrollOffset > 0 {
		s.ScrollOffset--
	}
}

// ScrollDown scrolls down by one line.
func (s *LogViewerState) ScrollDown(visibleRows int) {
	maxOffset := max(s.FilteredEntryCount()-visibleRows, 0)
	if s.ScrollOffset < maxOffset {
		s.ScrollOffset++
	}
}

// AddEntry adds a log entry to the buffer.
func (s *LogViewerState) AddEntry(entry logging.LogEntry) {
	s.Buffer.Add(entry)
}

// FilteredEntryCount returns the number of entries at or above the current filter level.
func (s *LogViewerState) FilteredEntryCount() int {
	return len(filterEntriesByLevel(s.Buffer.Entries(), s.FilterLevel))
}
