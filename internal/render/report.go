package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/keyscore/internal/metrics"
	"github.com/verte-zerg/keyscore/internal/model"
)

// HandHeaders returns L1..Ln R1..Rn column headers for a full-width row.
func HandHeaders(width int) []string {
	half := width / 2
	headers := make([]string, 0, width)
	for i := 0; i < half; i++ {
		headers = append(headers, fmt.Sprintf("L%d", i+1))
	}
	for i := 0; i < width-half; i++ {
		headers = append(headers, fmt.Sprintf("R%d", i+1))
	}
	return headers
}

// Layout writes a symbol layout under hand headers.
func Layout(w io.Writer, title string, letters [][]string, format string) error {
	width := 0
	if len(letters) > 0 {
		width = len(letters[0])
	}
	return Table(w, title, HandHeaders(width), letters, format, nil)
}

// Matrix writes a numeric matrix under hand headers.
func Matrix[T int | float64](w io.Writer, title string, m [][]T, format string) error {
	rows := make([][]string, len(m))
	width := 0
	for r, row := range m {
		if len(row) > width {
			width = len(row)
		}
		cells := make([]string, len(row))
		for c, v := range row {
			cells[c] = formatNumber(float64(v))
		}
		rows[r] = cells
	}
	right := make(map[int]bool, width)
	for i := 0; i < width; i++ {
		right[i] = true
	}
	return Table(w, title, HandHeaders(width), rows, format, right)
}

// Scores writes the metric table of one report.
func Scores(w io.Writer, report metrics.Report, format string) error {
	rows := make([][]string, 0, len(report.Scores))
	for _, s := range report.Scores {
		rows = append(rows, []string{s.Name, metrics.Titles[s.Name], formatScore(s.Value)})
	}
	return Table(w, "Scores", []string{"Metric", "Description", "Score"}, rows, format, map[int]bool{2: true})
}

// Batch writes one row per report: the layout string and every score.
func Batch(w io.Writer, reports []metrics.Report, km model.Keymap, format string) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No layouts scored.")
		return err
	}
	headers := []string{"#", "Layout"}
	for _, s := range reports[0].Scores {
		headers = append(headers, s.Name)
	}
	right := map[int]bool{0: true}
	for i := 2; i < len(headers); i++ {
		right[i] = true
	}
	rows := make([][]string, 0, len(reports))
	for i, rep := range reports {
		row := []string{strconv.Itoa(i + 1), FormatLayout(rep.Sequence, km)}
		for _, s := range rep.Scores {
			row = append(row, formatScore(s.Value))
		}
		rows = append(rows, row)
	}
	return Table(w, "Scores", headers, rows, format, right)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
