// Package viewer provides the Bubble Tea layout viewer.
package viewer

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keyscore/internal/metrics"
	"github.com/verte-zerg/keyscore/internal/model"
	"github.com/verte-zerg/keyscore/internal/render"
)

const (
	tabSymbols = iota
	tabFingers
	tabEffort
)

const cellWidth = 5

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	keyStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("#F0F0F0"))
	emptyKeyStyle = keyStyle.Foreground(lipgloss.Color("#4A4A4A"))
	splitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle     = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Model implements the Bubble Tea layout viewer.
type Model struct {
	title  string
	tabs   []string
	active int
	grids  [][][]string
	scores table.Model

	width  int
	height int
}

// NewModel builds a viewer for one scored layout on hand.
func NewModel(title string, report metrics.Report, hand model.Hand, km model.Keymap) *Model {
	symbols := render.ToLetters(report.Layout, km)
	fingers := make([][]string, len(report.Layout))
	effort := make([][]string, len(report.Layout))
	for r, row := range report.Layout {
		fingers[r] = make([]string, len(row))
		effort[r] = make([]string, len(row))
		for c, code := range row {
			if code == 0 {
				continue
			}
			fingers[r][c] = strconv.Itoa(hand.Fingers[r][c])
			effort[r][c] = strconv.FormatFloat(hand.Effort[r][c], 'f', -1, 64)
		}
	}

	columns := []table.Column{
		{Title: "Metric", Width: 24},
		{Title: "Score", Width: 12},
	}
	rows := make([]table.Row, 0, len(report.Scores))
	for _, s := range report.Scores {
		rows = append(rows, table.Row{metrics.Titles[s.Name], strconv.FormatFloat(s.Value, 'f', 2, 64)})
	}
	scores := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)

	return &Model{
		title:  title,
		tabs:   []string{"Symbols", "Fingers", "Effort"},
		active: tabSymbols,
		grids:  [][][]string{symbols, fingers, effort},
		scores: scores,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.active = (m.active + 1) % len(m.tabs)
			return m, nil
		case "shift+tab", "left", "h":
			m.active = (m.active + len(m.tabs) - 1) % len(m.tabs)
			return m, nil
		case "1", "2", "3":
			m.active = int(msg.String()[0] - '1')
			return m, nil
		}
		var cmd tea.Cmd
		m.scores, cmd = m.scores.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	nav := make([]string, len(m.tabs))
	for i, name := range m.tabs {
		style := inactiveNavStyle
		if i == m.active {
			style = activeNavStyle
		}
		nav[i] = style.Render(name)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(m.title),
		lipgloss.JoinHorizontal(lipgloss.Top, nav...),
		cardStyle.Render(renderGrid(m.grids[m.active])),
		cardStyle.Render(m.scores.View()),
		headerStyle.Render("tab/←/→ switch view • q quit"),
	)
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func renderGrid(grid [][]string) string {
	lines := make([]string, 0, len(grid)+1)
	if len(grid) > 0 {
		lines = append(lines, renderRow(render.HandHeaders(len(grid[0])), headerStyle))
	}
	for _, row := range grid {
		lines = append(lines, renderRow(row, keyStyle))
	}
	return strings.Join(lines, "\n")
}

func renderRow(cells []string, style lipgloss.Style) string {
	half := len(cells) / 2
	parts := make([]string, 0, len(cells)+1)
	for i, cell := range cells {
		if i == half {
			parts = append(parts, splitStyle.Render("│"))
		}
		s := style
		if cell == "" {
			s = emptyKeyStyle
			cell = "·"
		}
		parts = append(parts, s.Width(cellWidth).Align(lipgloss.Center).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
