package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/report"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// PrettyFormatter renders the report sections with colors and boxes for
// terminal display. The plain report stays available as "report".
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	w.WriteString(f.formatMemory(r))
	w.WriteString("\n")

	w.WriteString(TitleStyle.Render(report.TitleCommandLine))
	w.WriteString("\n")
	w.WriteString(SectionBox.Render(ValueStyle.Render(r.CommandLine)))
	w.WriteString("\n")

	w.WriteString(TitleStyle.Render(report.TitleImport))
	w.WriteString("\n")
	w.WriteString(f.formatImports(r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("%s %s",
		LabelStyle.Render("Profile:"), TitleStyle.Render(r.ID)))

	info := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Target:"), ValueStyle.Render(r.TargetOS)),
	}
	if !r.GeneratedAt.IsZero() {
		info = append(info, fmt.Sprintf("%s %s",
			LabelStyle.Render("Generated:"), MutedStyle.Render(humanize.Time(r.GeneratedAt))))
	}
	lines = append(lines, strings.Join(info, "  "))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatMemory(r *Result) string {
	s := r.Snapshot
	p := r.Tuning.Params

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(report.TitleMemory))
	sb.WriteString("\n")

	row := func(label string, observed, tuned int64) {
		sb.WriteString(fmt.Sprintf("  %s %s  %s %s\n",
			LabelStyle.Render(padRight(label, 10)),
			ValueStyle.Render(padLeft(mbString(observed), 10)),
			MutedStyle.Render("→"),
			SizeStyle.Render(mbString(tuned))))
	}
	row("init", s.InitMB, p.MinHeapMB)
	row("max", s.MaxMB, p.MaxHeapMB)
	row("max ram", s.MaxMB, p.MaxRAMMB)
	sb.WriteString(fmt.Sprintf("  %s %s  %s %s\n",
		LabelStyle.Render(padRight("used", 10)), ValueStyle.Render(padLeft(mbString(s.UsedMB), 10)),
		LabelStyle.Render("committed"), ValueStyle.Render(mbString(s.CommittedMB))))

	if s.InitMB == 0 && s.MaxMB == 0 {
		sb.WriteString(ErrorStyle.Render("  heap reading unavailable, figures are zero"))
		sb.WriteString("\n")
	}
	if p.MinHeapMB > p.MaxRAMMB {
		sb.WriteString(ErrorStyle.Render(fmt.Sprintf("  -Xms %s exceeds MaxRAM %s", mbString(p.MinHeapMB), mbString(p.MaxRAMMB))))
		sb.WriteString("\n")
	}

	if r.Tuning.Skipped {
		sb.WriteString(MutedStyle.Render("  default memory settings, tuning skipped"))
		sb.WriteString("\n")
		return sb.String()
	}
	if len(r.Tuning.Advisories) == 0 {
		sb.WriteString(SuccessStyle.Render("  no advisories"))
		sb.WriteString("\n")
	}
	for _, a := range r.Tuning.Advisories {
		sb.WriteString("  ")
		sb.WriteString(WarningStyle.Render(a))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *PrettyFormatter) formatImports(r *Result) string {
	if len(r.Imports) == 0 {
		return MutedStyle.Render("  No public configuration classes resolved") + "\n"
	}

	var sb strings.Builder
	for _, name := range r.Imports {
		sb.WriteString("  ")
		sb.WriteString(ValueStyle.Render(name))
		sb.WriteString("\n")
	}
	sb.WriteString(LabelStyle.Render(fmt.Sprintf("  %d classes", len(r.Imports))))
	sb.WriteString("\n")
	return sb.String()
}

func mbString(mb int64) string {
	if mb <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(mb * types.MiB))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
