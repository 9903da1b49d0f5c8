package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/lybrarian/internal/model"
)

const (
	nullCell     = "-"
	minTextWidth = 12
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// Options controls table rendering.
type Options struct {
	Color bool
	// Width limits the table width by truncating line text. Zero disables it.
	Width int
}

// OptionsFor returns options suited to w: color and width are enabled only
// when w is a terminal and NO_COLOR is unset.
func OptionsFor(w io.Writer) Options {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return Options{}
	}
	opts := Options{Color: os.Getenv("NO_COLOR") == ""}
	if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
		opts.Width = width
	}
	return opts
}

// LineHeaders are the column titles of a line table.
var LineHeaders = []string{"#", "Syl", "Stress", "US", "GB", "Text"}

// LineRows formats line prosody as table cells. Missing values render as "-".
func LineRows(lines []model.LineProsody) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, lp := range lines {
		stress := lp.Stress
		if stress == "" {
			stress = nullCell
		}
		rows = append(rows, []string{
			strconv.Itoa(lp.Line),
			strconv.Itoa(lp.Syllables),
			stress,
			optional(lp.EndRhymeUS),
			optional(lp.EndRhymeGB),
			lp.Text,
		})
	}
	return rows
}

// WriteFragment writes a summary line and a table of the fragment's lines.
func WriteFragment(w io.Writer, fp model.FragmentProsody, opts Options) error {
	if _, err := fmt.Fprintf(w, "%s, %d %s\n", fp.FragmentType, fp.LineCount, plural(fp.LineCount, "line", "lines")); err != nil {
		return err
	}
	if len(fp.Lines) == 0 {
		return nil
	}
	rows := LineRows(fp.Lines)
	if opts.Width > 0 {
		fitText(rows, opts.Width)
	}
	return writeTable(w, LineHeaders, rows, map[int]bool{0: true, 1: true}, opts)
}

// WriteStats writes a batch summary table.
func WriteStats(w io.Writer, pass string, stats model.BatchStats, opts Options) error {
	rows := [][]string{
		{"fragments", strconv.Itoa(stats.Fragments)},
		{"skipped", strconv.Itoa(stats.Skipped)},
		{"lines", strconv.Itoa(stats.Lines)},
		{"resolved", strconv.Itoa(stats.Resolved)},
		{"recovered", strconv.Itoa(stats.Recovered)},
		{"unresolved", strconv.Itoa(stats.Unresolved)},
		{"malformed", strconv.Itoa(stats.Malformed)},
		{"failed", strconv.Itoa(stats.Failed)},
	}
	return writeTable(w, []string{pass, "count"}, rows, map[int]bool{1: true}, opts)
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool, opts Options) error {
	lines := formatTable(headers, rows, rightAlign)
	for i, line := range lines {
		if i == 0 && opts.Color {
			line = headerStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// fitText truncates the last column so every row fits in width cells.
func fitText(rows [][]string, width int) {
	last := len(LineHeaders) - 1
	used := 0
	for i := 0; i < last; i++ {
		col := displayWidth(LineHeaders[i])
		for _, row := range rows {
			if w := displayWidth(row[i]); w > col {
				col = w
			}
		}
		used += col + 2
	}
	avail := width - used
	if avail < minTextWidth {
		avail = minTextWidth
	}
	for _, row := range rows {
		row[last] = truncate(row[last], avail)
	}
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return nullCell
	}
	return *s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
