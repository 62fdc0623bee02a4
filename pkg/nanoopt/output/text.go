package output

import (
	"bytes"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/cmdline"
)

// ReportFormatter writes the profile report exactly as assembled.
type ReportFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *ReportFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(r.Report)
	return nil
}

// CmdlineFormatter writes only the JVM command line.
type CmdlineFormatter struct {
	// Lines puts every argument on its own line.
	Lines bool
}

// Format writes the formatted output to the buffer.
func (f *CmdlineFormatter) Format(w *bytes.Buffer, r *Result) error {
	sep := r.Separator()
	if !f.Lines {
		w.WriteString(r.CommandLine)
		w.WriteString(sep)
		return nil
	}
	for _, arg := range cmdline.Args(r.Tuning.Params, r.Windows) {
		w.WriteString(arg)
		w.WriteString(sep)
	}
	return nil
}

// ImportsFormatter writes one resolved class name per line.
type ImportsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *ImportsFormatter) Format(w *bytes.Buffer, r *Result) error {
	sep := r.Separator()
	for _, name := range r.Imports {
		w.WriteString(name)
		w.WriteString(sep)
	}
	return nil
}

func init() {
	Register("report", func() Formatter {
		return &ReportFormatter{}
	})
	Register("cmdline", func() Formatter {
		return &CmdlineFormatter{}
	})
	Register("args", func() Formatter {
		return &CmdlineFormatter{Lines: true}
	})
	Register("imports", func() Formatter {
		return &ImportsFormatter{}
	})
}

var (
	_ Formatter = (*ReportFormatter)(nil)
	_ Formatter = (*CmdlineFormatter)(nil)
	_ Formatter = (*ImportsFormatter)(nil)
)
