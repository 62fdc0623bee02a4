package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/output"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/report"
)

// DefaultInterval is the time between heap refreshes.
const DefaultInterval = 5 * time.Second

// trendSize is the number of used heap samples kept for the sparkline.
const trendSize = 30

// logPaneHeight is the height of the log pane when open.
const logPaneHeight = 10

// Options configures the watch screen.
type Options struct {
	// Analyze produces a fresh analysis and report. Required.
	Analyze func() (*output.Result, error)

	// WriteReport persists the report and returns its path. Nil disables
	// the write key.
	WriteReport func() (string, error)

	// Copy places text on the clipboard and describes where it went. Nil
	// disables the copy key.
	Copy func(text string) (string, error)

	// Interval between refreshes. Zero uses DefaultInterval.
	Interval time.Duration

	// Logs, when set, feeds the log pane. Without it the pane only shows
	// entries received while the screen is up.
	Logs *logging.LogBuffer
}

// Model is the Bubble Tea model of the watch screen.
type Model struct {
	options Options

	result   *output.Result
	sections []report.Section
	selected int
	trend    []int64
	err      error

	refreshing bool
	spinner    spinner.Model
	viewport   viewport.Model

	logs      *LogViewerState
	ownLogs   bool
	logStream <-chan logging.LogEntry

	status      string
	statusIsErr bool

	width  int
	height int
}

// NewModel creates the watch model.
func NewModel(opts Options) Model {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		options:    opts,
		refreshing: true,
		spinner:    s,
		viewport:   viewport.New(80, 10),
		logs:       NewLogViewerState(opts.Logs),
		ownLogs:    opts.Logs == nil,
		width:      80,
		height:     24,
	}
}

// Messages.
type (
	analysisMsg struct {
		result *output.Result
		err    error
	}
	refreshMsg  struct{}
	logEntryMsg logging.LogEntry
	statusMsg   struct {
		text  string
		isErr bool
	}
)

// Init starts the first analysis.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.analyze(), m.listenForLogs())
}

// analyze runs the analysis off the UI goroutine.
func (m Model) analyze() tea.Cmd {
	analyze := m.options.Analyze
	return func() tea.Msg {
		res, err := analyze()
		return analysisMsg{result: res, err: err}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.options.Interval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// listenForLogs waits for the next log entry.
func (m Model) listenForLogs() tea.Cmd {
	stream := m.logStream
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-stream
		if !ok {
			return nil
		}
		return logEntryMsg(entry)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case analysisMsg:
		m.refreshing = false
		m.err = msg.err
		if msg.err == nil && msg.result != nil {
			m.setResult(msg.result)
		}
		return m, m.scheduleRefresh()

	case refreshMsg:
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, tea.Batch(m.spinner.Tick, m.analyze())

	case logEntryMsg:
		if m.ownLogs {
			m.logs.AddEntry(logging.LogEntry(msg))
		}
		return m, m.listenForLogs()

	case statusMsg:
		m.status = msg.text
		m.statusIsErr = msg.isErr
		return m, nil

	case spinner.TickMsg:
		if !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// setResult installs a new analysis, keeping the selected section.
func (m *Model) setResult(res *output.Result) {
	m.result = res

	var sections []report.Section
	for _, s := range report.Sections(res.Report) {
		if len(s.Lines) > 0 {
			sections = append(sections, s)
		}
	}
	m.sections = sections
	if m.selected >= len(sections) {
		m.selected = 0
	}

	m.trend = append(m.trend, res.Snapshot.UsedMB)
	if len(m.trend) > trendSize {
		m.trend = m.trend[len(m.trend)-trendSize:]
	}

	m.refreshSection(false)
}

// refreshSection loads the selected section into the viewport.
func (m *Model) refreshSection(resetScroll bool) {
	if len(m.sections) == 0 {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(strings.Join(m.sections[m.selected].Lines, "\n"))
	if resetScroll {
		m.viewport.GotoTop()
	}
}

func (m *Model) resizeViewport() {
	m.viewport.Width = max(m.width-4, 10)
	m.viewport.Height = max(m.height-m.chromeHeight(), 3)
}

// chromeHeight is the number of rows taken by everything but the section
// body.
func (m Model) chromeHeight() int {
	h := 14
	if m.logs.Open {
		h += logPaneHeight
	}
	return h
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.logs.Open {
		switch key {
		case "esc", "L":
			m.logs.Toggle()
			m.resizeViewport()
			return m, nil
		case "1", "2", "3", "4":
			m.logs.SetFilterLevel(logging.Level(key[0] - '1'))
			return m, nil
		case "up", "k":
			m.logs.ScrollUp()
			return m, nil
		case "down", "j":
			m.logs.ScrollDown(logPaneHeight - 2)
			return m, nil
		}
	}

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab", "right", "l":
		if len(m.sections) > 0 {
			m.selected = (m.selected + 1) % len(m.sections)
			m.refreshSection(true)
		}
	case "shift+tab", "left", "h":
		if len(m.sections) > 0 {
			m.selected = (m.selected - 1 + len(m.sections)) % len(m.sections)
			m.refreshSection(true)
		}
	case "r":
		if !m.refreshing {
			m.refreshing = true
			return m, tea.Batch(m.spinner.Tick, m.analyze())
		}
	case "w":
		return m, m.writeReport()
	case "c":
		return m, m.copyCommandLine()
	case "L":
		m.logs.Toggle()
		m.resizeViewport()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) writeReport() tea.Cmd {
	write := m.options.WriteReport
	if write == nil {
		return nil
	}
	return func() tea.Msg {
		path, err := write()
		if err != nil {
			return statusMsg{text: "write failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "report written to " + path}
	}
}

func (m Model) copyCommandLine() tea.Cmd {
	copyFn := m.options.Copy
	if copyFn == nil || m.result == nil {
		return nil
	}
	text := m.result.CommandLine
	return func() tea.Msg {
		where, err := copyFn(text)
		if err != nil {
			return statusMsg{text: "copy failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "command line copied (" + where + ")"}
	}
}

// View renders the screen.
func (m Model) View() string {
	contentWidth := max(m.width-4, 10)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	switch {
	case m.result == nil && m.err != nil:
		b.WriteString(errorTextStyle.Render("  " + m.err.Error()))
		b.WriteString("\n")
	case m.result == nil:
		b.WriteString(center(m.spinner.View()+" Reading heap...", contentWidth))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderHeap())
		b.WriteString("\n")
		b.WriteString(m.renderTabs())
		b.WriteString("\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	if m.logs.Open {
		b.WriteString("\n")
		b.WriteString(renderLogViewer(m.logs.Buffer.Entries(), m.logs.FilterLevel, m.logs.ScrollOffset, contentWidth, logPaneHeight))
	}

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

func (m Model) renderHeader() string {
	header := " " + titleStyle.Render("NANOOPT")
	if m.result != nil {
		header += mutedTextStyle.Render(fmt.Sprintf("  %s  •  %s  •  %s",
			m.result.ID, m.result.TargetOS, humanize.Time(m.result.GeneratedAt)))
	}
	if m.refreshing {
		header += "  " + m.spinner.View()
	} else {
		header += successTextStyle.Render("  ● LIVE")
	}
	if m.err != nil && m.result != nil {
		header += errorTextStyle.Render("  last refresh failed")
	}
	return header
}

// renderHeap renders observed and tuned heap figures with the used trend.
func (m Model) renderHeap() string {
	s := m.result.Snapshot
	p := m.result.Tuning.Params

	mb := func(v int64) string { return valueStyle.Render(padLeft(fmt.Sprintf("%dm", v), 6)) }

	lines := []string{
		labelStyle.Render("Observed") + "init " + mb(s.InitMB) + "  used " + mb(s.UsedMB) +
			"  committed " + mb(s.CommittedMB) + "  max " + mb(s.MaxMB),
		labelStyle.Render("Tuned") + "-Xms " + mb(p.MinHeapMB) + "  -Xmx " + mb(p.MaxHeapMB) +
			"  MaxRAM " + mb(p.MaxRAMMB) + "  -Xss " + valueStyle.Render(fmt.Sprintf("%dk", p.ThreadStackKB)),
		labelStyle.Render("Used") + trendStyle.Render(sparkline(m.trend)),
	}

	switch {
	case m.result.Tuning.Skipped:
		lines = append(lines, mutedTextStyle.Render("default memory settings, tuning skipped"))
	default:
		for _, a := range m.result.Tuning.Advisories {
			lines = append(lines, warningTextStyle.Render("! "+a))
		}
	}

	return heapBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.sections))
	for i, s := range m.sections {
		title := truncate(s.Title, 24)
		if i == m.selected {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

type keyHint struct{ key, desc string }

func (m Model) renderFooter() string {
	hints := []keyHint{{"tab", "section"}, {"↑↓", "scroll"}, {"r", "refresh"}}
	if m.options.WriteReport != nil {
		hints = append(hints, keyHint{"w", "write"})
	}
	if m.options.Copy != nil {
		hints = append(hints, keyHint{"c", "copy"})
	}
	hints = append(hints, keyHint{"L", "logs"}, keyHint{"q", "quit"})

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyStyle.Render("["+h.key+"]")+" "+keyDescStyle.Render(h.desc))
	}
	footer := " " + strings.Join(parts, "  ")

	if m.status != "" {
		style := successTextStyle
		if m.statusIsErr {
			style = errorTextStyle
		}
		footer += "\n " + style.Render(m.status)
	}
	return footer
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws samples scaled between their minimum and maximum.
func sparkline(samples []int64) string {
	if len(samples) == 0 {
		return ""
	}
	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	out := make([]rune, len(samples))
	for i, v := range samples {
		idx := 0
		if hi > lo {
			idx = int((v - lo) * int64(len(sparkBlocks)-1) / (hi - lo))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

// Run starts the watch screen and blocks until it is closed.
func Run(opts Options) error {
	model := NewModel(opts)

	stream := logging.Subscribe()
	defer logging.Unsubscribe(stream)
	model.logStream = stream

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
