package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/keyscore/internal/layout"
	"github.com/verte-zerg/keyscore/internal/metrics"
	"github.com/verte-zerg/keyscore/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Metric", "Score"}
	rows := [][]string{
		{"sfb", "1100.00"},
		{"balance", "20.00"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Metric    Score" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "sfb     1100.00" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "balance   20.00" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"L1", "L2"}, [][]string{{"日", "a"}}, nil)
	if lines[1] != "日 a" {
		t.Fatalf("unexpected wide rune row: %q", lines[1])
	}
}

func TestToLettersRoundTrip(t *testing.T) {
	km := model.DefaultKeymap()
	seq, err := ParseLayout("hel_lo", km)
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	_, err = layout.Build(seq, model.DefaultGeometry().Combined())
	if !errors.Is(err, layout.ErrDuplicateCode) {
		t.Fatalf("expected duplicate l to be rejected, got %v", err)
	}

	seq, err = ParseLayout("qwe_rt", km)
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	grid := layout.Apply(seq, [][]int{{0, 0, 0, 0, 0, 0}})
	letters := ToLetters(grid, km)
	want := []string{"q", "w", "e", "r", "t", EmptyMarker}
	for i, sym := range want {
		if letters[0][i] != sym {
			t.Fatalf("expected %v, got %v", want, letters[0])
		}
	}
}

func TestToLettersKeepsSymbolCase(t *testing.T) {
	km, err := model.NewKeymap(map[string]model.Code{"A": 1, "b": 2, "Ü": 3})
	if err != nil {
		t.Fatalf("NewKeymap failed: %v", err)
	}
	letters := ToLetters([][]int{{1, 2, 3, 0}}, km)
	want := []string{"A", "b", "Ü", EmptyMarker}
	for i, sym := range want {
		if letters[0][i] != sym {
			t.Fatalf("expected %v, got %v", want, letters[0])
		}
	}
	seq, err := ParseLayout("aBü", km)
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	if got := FormatLayout(seq, km); got != "AbÜ" {
		t.Fatalf("expected AbÜ, got %q", got)
	}
}

func TestToLettersUnknownCode(t *testing.T) {
	letters := ToLetters([][]int{{0, 1, 99}}, model.DefaultKeymap())
	if letters[0][0] != EmptyMarker || letters[0][1] != "a" || letters[0][2] != UnknownMarker {
		t.Fatalf("unexpected letters: %v", letters[0])
	}
}

func TestParseLayoutUnknownSymbol(t *testing.T) {
	if _, err := ParseLayout("ab;", model.DefaultKeymap()); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestFormatLayout(t *testing.T) {
	km := model.DefaultKeymap()
	if got := FormatLayout([]model.Code{1, 0, 26, 40}, km); got != "a_z?" {
		t.Fatalf("unexpected layout string %q", got)
	}
}

func TestHandHeaders(t *testing.T) {
	got := strings.Join(HandHeaders(10), " ")
	if got != "L1 L2 L3 L4 L5 R1 R2 R3 R4 R5" {
		t.Fatalf("unexpected headers: %s", got)
	}
}

func TestScoresFormats(t *testing.T) {
	report := metrics.Report{Scores: []metrics.Score{
		{Name: metrics.NameSameFinger, Value: 1100},
		{Name: metrics.NameHandBalance, Value: 20},
	}}
	for _, format := range []string{FormatPlain, FormatGrid, FormatMarkdown} {
		var buf bytes.Buffer
		if err := Scores(&buf, report, format); err != nil {
			t.Fatalf("%s: Scores failed: %v", format, err)
		}
		out := buf.String()
		for _, needle := range []string{"Scores", "sfb", "1100.00", "Hand balance", "20.00"} {
			if !strings.Contains(out, needle) {
				t.Fatalf("%s: output missing %q:\n%s", format, needle, out)
			}
		}
	}
}

func TestMatrixDistance(t *testing.T) {
	var buf bytes.Buffer
	g := model.DefaultGeometry()
	if err := Matrix(&buf, "Distance", model.CombineRows(g.Left.Distance, g.Right.Distance), FormatPlain); err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title, header and 3 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[4], "0.18") || !strings.Contains(lines[4], "0.3") {
		t.Fatalf("unexpected last row: %q", lines[4])
	}
}

func TestBatchEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Batch(&buf, nil, model.DefaultKeymap(), FormatPlain); err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No layouts scored.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
