// Package report assembles the nano-optimizer profile report. The report
// is a fixed sequence of framed sections written line by line to a Sink.
package report

import (
	"fmt"
	"strings"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// Section titles, in report order.
const (
	TitleMemory      = "MEMORY USAGE & COMMAND LINE"
	TitleCommandLine = "JVM COMMAND LINE"
	TitleImport      = "EARLY IMPORT"
	TitleLazy        = "LAZY INITIALIZATION"
	TitleProperties  = "APPLICATION PROPERTIES"
)

// borderWidth is the width of the '#' rule framing every section.
const borderWidth = 70

var border = strings.Repeat("#", borderWidth)

// Document is everything a report shows. Text blocks may span several
// lines and are emitted as single Accept calls.
type Document struct {
	ID       string
	Snapshot types.MemorySnapshot

	// Advisories are shown only when TuningSkipped is false.
	Advisories    []string
	TuningSkipped bool

	CommandLine string
	Imports     string
	Lazy        string
	Properties  string
}

// Assemble writes doc to sink.
func Assemble(sink Sink, doc Document) {
	frame(sink, "PROFILE FOR ID: "+doc.ID)

	frame(sink, TitleMemory)
	sink.Accept(HeapLine(doc.Snapshot))
	if !doc.TuningSkipped {
		for _, a := range doc.Advisories {
			sink.Accept(a)
		}
	}

	frame(sink, TitleCommandLine)
	sink.Accept(doc.CommandLine)

	frame(sink, TitleImport)
	sink.Accept(doc.Imports)

	frame(sink, TitleLazy)
	sink.Accept(doc.Lazy)

	frame(sink, TitleProperties)
	sink.Accept(doc.Properties)

	sink.Accept("")
	sink.Accept(border)
	sink.Accept("")
}

// HeapLine formats a snapshot. The trailing space is part of the format.
func HeapLine(s types.MemorySnapshot) string {
	return fmt.Sprintf("Heap: Init: %dMB, Used: %dMB, Committed: %dMB, Max: %dMB ",
		s.InitMB, s.UsedMB, s.CommittedMB, s.MaxMB)
}

func frame(sink Sink, title string) {
	sink.Accept("")
	sink.Accept(border)
	sink.Accept("#####  " + title + " ")
	sink.Accept(border)
	sink.Accept("")
}

// Sections splits report text into titled bodies, in order. Framing lines
// are dropped. Tools reading persisted reports use it.
func Sections(text string) []Section {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var (
		out     []Section
		current *Section
	)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == border && i+2 < len(lines) && lines[i+2] == border && strings.HasPrefix(lines[i+1], "#####  ") {
			title := strings.TrimSuffix(strings.TrimPrefix(lines[i+1], "#####  "), " ")
			out = append(out, Section{Title: title})
			current = &out[len(out)-1]
			i += 2
			continue
		}
		if current != nil && line != border {
			current.Lines = append(current.Lines, line)
		}
	}

	for i := range out {
		out[i].Lines = trimBlank(out[i].Lines)
	}
	return out
}

// Section is one titled part of a parsed report.
type Section struct {
	Title string
	Lines []string
}

func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return lines[start:end]
}
