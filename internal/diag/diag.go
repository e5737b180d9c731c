// Package diag implements the compiler's diagnostic system (spec.md
// §4.10): a Bag accumulates Reports from any pass, and renders them with
// the offending source line underlined.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/width"

	"github.com/jesperkha/koi/internal/source"
)

var (
	colorError = color.New(color.FgRed, color.Bold).SprintFunc()
	colorFile  = color.New(color.Bold).SprintFunc()
	colorCaret = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Report is either message-only or a code error carrying a position and
// an underline length, optionally with a cross-reference info line.
type Report struct {
	Message string
	HasPos  bool
	Pos     source.Pos
	Length  int
	Info    string
}

// NewMessage creates a report with no source position.
func NewMessage(msg string) Report {
	return Report{Message: msg}
}

// NewCodeError creates a position-bearing report. length is the number of
// characters to underline (minimum 1).
func NewCodeError(msg string, pos source.Pos, length int, info string) Report {
	return Report{Message: msg, HasPos: true, Pos: pos, Length: length, Info: info}
}

// WithInfo returns a copy of r carrying an info cross-reference line.
func (r Report) WithInfo(info string) Report {
	r.Info = info
	return r
}

// Bag accumulates Reports across a single pass or a whole build.
type Bag struct {
	reports []Report
}

// NewBag creates an empty diagnostics bag.
func NewBag() *Bag { return &Bag{} }

// Add appends a report.
func (b *Bag) Add(r Report) { b.reports = append(b.reports, r) }

// Empty reports whether no diagnostics have been collected.
func (b *Bag) Empty() bool { return len(b.reports) == 0 }

// Len returns the number of collected reports.
func (b *Bag) Len() int { return len(b.reports) }

// All returns the collected reports in insertion order.
func (b *Bag) All() []Report { return b.reports }

// Join appends all reports from other into b.
func (b *Bag) Join(other *Bag) {
	if other == nil {
		return
	}
	b.reports = append(b.reports, other.reports...)
}

// Render formats every report in the bag against sm, concatenating each
// standalone rendering (spec.md §4.10).
func (b *Bag) Render(sm *source.Map) string {
	var sb strings.Builder
	for _, r := range b.reports {
		sb.WriteString(renderOne(r, sm))
	}
	return sb.String()
}

func renderOne(r Report, sm *source.Map) string {
	if !r.HasPos {
		return fmt.Sprintf("%s %s\n", colorError("error:"), r.Message)
	}

	src := sm.Get(r.Pos.Source)
	if src == nil {
		return fmt.Sprintf("%s %s\n", colorError("error:"), r.Message)
	}

	lineNo := r.Pos.Row + 1
	lineStr := src.Line(r.Pos.Row)
	trimmed := strings.TrimSpace(lineStr)

	leadingWidth := displayWidth(lineStr[:len(lineStr)-len(strings.TrimLeft(lineStr, " \t"))])
	fromWidth := displayWidth(lineStr[:min(r.Pos.Col, len(lineStr))])

	pointStart := fromWidth - leadingWidth
	if pointStart < 0 {
		pointStart = 1
	}

	length := r.Length
	if length < 1 {
		length = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", colorFile(src.Filepath))
	fmt.Fprintf(&sb, "%s %s\n", colorError("error:"), r.Message)
	sb.WriteString("    |\n")
	fmt.Fprintf(&sb, "%d  |    %s\n", lineNo, trimmed)
	fmt.Fprintf(&sb, "    |    %s%s\n", strings.Repeat(" ", pointStart), colorCaret(strings.Repeat("^", length)))
	if r.Info != "" {
		sb.WriteString("    |\n")
		fmt.Fprintf(&sb, "    | %s\n", r.Info)
	}
	return sb.String()
}

// displayWidth sums the terminal display width of s, accounting for
// full-width/wide runes that a byte-count would misalign the caret under.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
