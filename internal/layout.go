package livedash

import (
	"github.com/charmbracelet/lipgloss"
)

// Horizontal renders panes side by side
func Horizontal(panes ...Pane) string {
	if len(panes) == 0 {
		return ""
	}

	views := make([]string, len(panes))
	for i, pane := range panes {
		views[i] = pane.Render()
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// GridLayout renders rows of panes stacked vertically
type GridLayout struct {
	rows [][]Pane
}

// NewGrid creates a new grid layout
func NewGrid() *GridLayout {
	return &GridLayout{
		rows: make([][]Pane, 0),
	}
}

// AddRow adds a row of panes to the grid
func (g *GridLayout) AddRow(panes ...Pane) {
	g.rows = append(g.rows, panes)
}

// Render renders the grid layout
func (g *GridLayout) Render() string {
	if len(g.rows) == 0 {
		return ""
	}

	rowViews := make([]string, len(g.rows))
	for i, row := range g.rows {
		rowViews[i] = Horizontal(row...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, rowViews...)
}

// Wrap lays panes out left to right, starting a new row every columns panes
func Wrap(columns int, panes ...Pane) string {
	if columns < 1 {
		columns = 1
	}
	g := NewGrid()
	for i := 0; i < len(panes); i += columns {
		end := min(i+columns, len(panes))
		g.AddRow(panes[i:end]...)
	}
	return g.Render()
}

// gridColumns picks how many chart panes fit side by side
func gridColumns(panes, width int) int {
	columns := width / minPaneWidth
	switch {
	case columns < 1:
		columns = 1
	case columns > 3:
		columns = 3
	}
	if panes > 0 && panes < columns {
		columns = panes
	}
	return columns
}
