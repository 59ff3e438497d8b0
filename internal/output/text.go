package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

// Table outputs tabular data in text format. Widths are measured in
// terminal cells, so wide runes line up.
type Table struct {
	writer   io.Writer
	headers  []string
	rows     [][]string
	widths   []int
	maxWidth int
	flex     int
}

// NewTable creates a new table with headers
func NewTable(w io.Writer, headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	return &Table{
		writer:  w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
		flex:    -1,
	}
}

// SetMaxWidth limits the rendered line width. When rows are wider, the
// flexible column is truncated to fit.
func (t *Table) SetMaxWidth(width, flexColumn int) {
	t.maxWidth = width
	t.flex = flexColumn
}

// AddRow adds a row to the table
func (t *Table) AddRow(cols ...string) {
	for i, c := range cols {
		if w := runewidth.StringWidth(c); i < len(t.widths) && w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, cols)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.widths))
	copy(widths, t.widths)
	if t.maxWidth <= 0 || t.flex < 0 || t.flex >= len(widths) {
		return widths
	}

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	if over := total - t.maxWidth; over > 0 {
		minimum := runewidth.StringWidth(t.headers[t.flex])
		if minimum < 4 {
			minimum = 4
		}
		widths[t.flex] -= over
		if widths[t.flex] < minimum {
			widths[t.flex] = minimum
		}
	}
	return widths
}

// Render outputs the table
func (t *Table) Render() error {
	widths := t.columnWidths()

	writeRow := func(cols []string) error {
		var sb strings.Builder
		for i, w := range widths {
			cell := ""
			if i < len(cols) {
				cell = cols[i]
			}
			sb.WriteString("  ")
			if i == len(widths)-1 {
				sb.WriteString(Truncate(cell, w))
			} else {
				sb.WriteString(runewidth.FillRight(Truncate(cell, w), w))
			}
		}
		sb.WriteString("\n")
		_, err := io.WriteString(t.writer, sb.String())
		return err
	}

	if err := writeRow(t.headers); err != nil {
		return err
	}

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	if err := writeRow(seps); err != nil {
		return err
	}

	for _, row := range t.rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

// Truncate shortens s to at most maxWidth terminal cells, ending with "..."
// when it had to cut. ANSI sequences do not count towards the width.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return truncate.String(s, uint(maxWidth))
	}
	return truncate.StringWithTail(s, uint(maxWidth), "...")
}

// FirstLine returns the first non-blank line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Pluralize returns singular or plural form based on count
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// CountStr returns "N item(s)" string
func CountStr(count int, singular, plural string) string {
	return fmt.Sprintf("%d %s", count, Pluralize(count, singular, plural))
}
