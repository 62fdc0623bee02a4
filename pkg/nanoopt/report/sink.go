package report

import (
	"io"
	"strings"
)

// Sink accepts one report line at a time.
type Sink interface {
	Accept(line string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(line string)

// Accept calls f(line).
func (f SinkFunc) Accept(line string) { f(line) }

// LineSeparator returns the line separator of the target host.
func LineSeparator(windows bool) string {
	if windows {
		return "\r\n"
	}
	return "\n"
}

// Buffer accumulates lines in memory, each followed by the separator.
// The zero value uses "\n".
type Buffer struct {
	sep string
	b   strings.Builder
}

// NewBuffer returns an empty buffer using sep after every line.
func NewBuffer(sep string) *Buffer {
	return &Buffer{sep: sep}
}

// Accept implements Sink.
func (b *Buffer) Accept(line string) {
	b.b.WriteString(line)
	if b.sep == "" {
		b.b.WriteString("\n")
		return
	}
	b.b.WriteString(b.sep)
}

// String returns the accumulated text.
func (b *Buffer) String() string { return b.b.String() }

// Len returns the accumulated length in bytes.
func (b *Buffer) Len() int { return b.b.Len() }

// Reset discards the accumulated text.
func (b *Buffer) Reset() { b.b.Reset() }

// WriterSink writes lines to an io.Writer. After the first write error
// further lines are dropped; Err reports it.
type WriterSink struct {
	w   io.Writer
	sep string
	err error
}

// NewWriterSink returns a sink writing to w with sep after every line.
func NewWriterSink(w io.Writer, sep string) *WriterSink {
	return &WriterSink{w: w, sep: sep}
}

// Accept implements Sink.
func (s *WriterSink) Accept(line string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, line+s.sep)
}

// Err returns the first write error.
func (s *WriterSink) Err() error { return s.err }

var (
	_ Sink = SinkFunc(nil)
	_ Sink = (*Buffer)(nil)
	_ Sink = (*WriterSink)(nil)
)
