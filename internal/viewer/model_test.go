package viewer

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keyscore/internal/metrics"
	"github.com/verte-zerg/keyscore/internal/model"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	hand := model.DefaultGeometry().Combined()
	report, err := metrics.NewEngine().ScoreSequence([]model.Code{17, 23, 5}, hand, model.Corpus{})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	return NewModel("test layout", report, hand, model.DefaultKeymap())
}

func TestViewShowsSymbolsAndScores(t *testing.T) {
	out := testModel(t).View()
	for _, needle := range []string{"test layout", "q", "w", "L1", "R5", "Same-finger bigrams", "Hand balance"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("view missing %q:\n%s", needle, out)
		}
	}
}

func TestTabSwitching(t *testing.T) {
	m := testModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.active != tabFingers {
		t.Fatalf("expected fingers tab, got %d", m.active)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.active != tabEffort {
		t.Fatalf("expected wrap to effort tab, got %d", m.active)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	if m.active != tabSymbols {
		t.Fatalf("expected symbols tab, got %d", m.active)
	}
}

func TestFingerGridSkipsEmptySlots(t *testing.T) {
	m := testModel(t)
	fingers := m.grids[tabFingers]
	if fingers[0][1] != "1" || fingers[0][2] != "2" {
		t.Fatalf("unexpected finger row: %v", fingers[0])
	}
	if fingers[0][3] != "" || fingers[2][9] != "" {
		t.Fatalf("empty slots must stay blank")
	}
}

func TestQuit(t *testing.T) {
	_, cmd := testModel(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
