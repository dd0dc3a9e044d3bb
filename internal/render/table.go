// Package render formats layouts, geometry and scores for display.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Output formats.
const (
	FormatPlain    = "plain"
	FormatGrid     = "grid"
	FormatMarkdown = "markdown"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))

// ValidFormat reports whether name is a known output format.
func ValidFormat(name string) bool {
	switch name {
	case FormatPlain, FormatGrid, FormatMarkdown:
		return true
	}
	return false
}

// Table writes a titled table. Columns listed in rightAlign are right
// aligned.
func Table(w io.Writer, title string, headers []string, rows [][]string, format string, rightAlign map[int]bool) error {
	if title != "" {
		heading := title
		if shouldUseColor(w) {
			heading = titleStyle.Render(title)
		}
		if _, err := fmt.Fprintln(w, heading); err != nil {
			return err
		}
	}
	switch format {
	case FormatGrid, FormatMarkdown:
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.Style().Options.SeparateRows = format == FormatGrid
		if len(headers) > 0 {
			t.AppendHeader(toRow(headers))
		}
		for _, r := range rows {
			t.AppendRow(toRow(r))
		}
		configs := make([]table.ColumnConfig, 0, len(rightAlign))
		for col, right := range rightAlign {
			if right {
				configs = append(configs, table.ColumnConfig{Number: col + 1, Align: text.AlignRight})
			}
		}
		t.SetColumnConfigs(configs)
		var out string
		if format == FormatMarkdown {
			out = t.RenderMarkdown()
		} else {
			out = t.Render()
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	default:
		for _, line := range formatTable(headers, rows, rightAlign) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
