// Package diagram renders the spanwise blade profile and the selected
// control sections, as quick terminal output and as image files.
package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/alexiusacademia/gorotor/internal/blade"
)

// SpanProfile renders one signal across its span as an ASCII chart with a
// marker row underneath flagging the control sections.
func SpanProfile(name string, sig blade.Series, sections []float64, width, height int) string {
	if width < 10 {
		width = 60
	}
	if height < 3 {
		height = 10
	}

	lo, hi := sig.Min(), sig.Max()
	if hi <= lo {
		return fmt.Sprintf("  %s: degenerate span [%g, %g]\n", name, lo, hi)
	}

	samples := make([]float64, width)
	for i := range samples {
		x := lo + (hi-lo)*float64(i)/float64(width-1)
		samples[i] = sig.At(x)
	}

	chart := asciigraph.Plot(samples,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s over r=[%.3f, %.3f]", name, lo, hi)),
	)

	var sb strings.Builder
	sb.WriteString(chart)
	sb.WriteString("\n")
	sb.WriteString(sectionMarkerRow(sections, lo, hi, width, axisMargin(chart)))
	sb.WriteString(fmt.Sprintf("\n  sections (%d): %s\n", len(sections), formatPositions(sections)))
	return sb.String()
}

// axisMargin measures the left label margin asciigraph produced, so the
// marker row lines up with the plot area.
func axisMargin(chart string) int {
	margin := 0
	for _, line := range strings.Split(chart, "\n") {
		if i := strings.IndexAny(line, "┤┼"); i >= 0 {
			n := len([]rune(line[:i])) + 1
			if n > margin {
				margin = n
			}
		}
	}
	return margin
}

func sectionMarkerRow(sections []float64, lo, hi float64, width, margin int) string {
	row := make([]rune, margin+width)
	for i := range row {
		row[i] = ' '
	}
	for _, s := range sections {
		if s < lo || s > hi {
			continue
		}
		col := int(float64(width-1) * (s - lo) / (hi - lo))
		row[margin+col] = '^'
	}
	return string(row)
}

func formatPositions(sections []float64) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = fmt.Sprintf("%.3f", s)
	}
	return strings.Join(parts, ", ")
}

// ProfileAll renders every signal, sorted by name for stable output.
func ProfileAll(signals map[string]blade.Series, sections []float64, width, height int) string {
	names := make([]string, 0, len(signals))
	for n := range signals {
		names = append(names, n)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(SpanProfile(n, signals[n], sections, width, height))
		sb.WriteString("\n")
	}
	return sb.String()
}

// DrawSummaryBox frames a titled result summary for terminal output.
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := len(title)
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-2, title))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-2, line))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}
