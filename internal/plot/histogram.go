// Package plot renders measurement counts as a terminal bar chart.
package plot

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options controls the histogram layout.
type Options struct {
	Title string

	// Width is the length in cells of the longest bar.
	Width int
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

/*
Histogram draws one bar per outcome, sorted by bitstring, scaled so the most
frequent outcome spans Width cells. Each bar is followed by its count and
probability.
*/
func Histogram(counts map[string]int, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = 40
	}

	printer := message.NewPrinter(language.English)

	keys := make([]string, 0, len(counts))
	total, peak, labelWidth := 0, 0, 0
	for k, n := range counts {
		keys = append(keys, k)
		total += n
		peak = max(peak, n)
		labelWidth = max(labelWidth, len(k))
	}
	sort.Strings(keys)

	rows := make([]string, 0, len(keys)+2)
	if opts.Title != "" {
		rows = append(rows, titleStyle.Render(opts.Title))
	}

	if total == 0 {
		rows = append(rows, labelStyle.Render("(no counts)"))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	for _, k := range keys {
		n := counts[k]
		length := 0
		if peak > 0 {
			length = (n*opts.Width + peak/2) / peak
		}
		if n > 0 && length == 0 {
			length = 1
		}

		bar := strings.Repeat("█", length) + strings.Repeat(" ", opts.Width-length)
		rows = append(rows, lipgloss.JoinHorizontal(
			lipgloss.Top,
			labelStyle.Render(padLeft(k, labelWidth)+" │"),
			barStyle.Render(bar),
			countStyle.Render(printer.Sprintf(" %d (%.1f%%)", n, 100*float64(n)/float64(total))),
		))
	}

	rows = append(rows, labelStyle.Render(printer.Sprintf("%s %d shots", strings.Repeat(" ", labelWidth+1), total)))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
