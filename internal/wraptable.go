package livedash

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// WrapTable wraps a lipgloss table so that rows beyond maxHeight continue in
// another table placed to the right
type WrapTable struct {
	headers     []string
	rows        [][]string
	maxHeight   int
	borderStyle lipgloss.Style
	headerStyle lipgloss.Style
	alignRight  map[int]bool
}

// NewWrapTable creates a new wrap table
func NewWrapTable() *WrapTable {
	return &WrapTable{
		borderStyle: lipgloss.NewStyle().Foreground(colorBorder),
		headerStyle: lipgloss.NewStyle().Foreground(colorTitle).Bold(true).Padding(0, 1),
		alignRight:  map[int]bool{},
	}
}

// Headers sets the table headers
func (wt *WrapTable) Headers(headers ...string) *WrapTable {
	wt.headers = headers
	return wt
}

// Rows sets the table rows
func (wt *WrapTable) Rows(rows ...[]string) *WrapTable {
	wt.rows = rows
	return wt
}

// MaxHeight sets the maximum height in lines; zero means unlimited
func (wt *WrapTable) MaxHeight(height int) *WrapTable {
	wt.maxHeight = height
	return wt
}

// AlignRight right-aligns the given columns, typically numbers
func (wt *WrapTable) AlignRight(columns ...int) *WrapTable {
	for _, c := range columns {
		wt.alignRight[c] = true
	}
	return wt
}

// RowsPerTable is how many rows one table holds before wrapping
func (wt *WrapTable) RowsPerTable() int {
	if wt.maxHeight <= 0 {
		return len(wt.rows)
	}
	// header line plus top, bottom and header separator borders
	n := wt.maxHeight - 4
	if n < 1 {
		n = 1
	}
	return n
}

func (wt *WrapTable) table(rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(wt.borderStyle).
		Headers(wt.headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return wt.headerStyle
			}
			s := lipgloss.NewStyle().Padding(0, 1)
			if wt.alignRight[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
}

// Render renders the table with wrapping if needed
func (wt *WrapTable) Render() string {
	if len(wt.rows) == 0 {
		return ""
	}

	per := wt.RowsPerTable()
	var tables []string
	for i := 0; i < len(wt.rows); i += per {
		end := min(i+per, len(wt.rows))
		tables = append(tables, wt.table(wt.rows[i:end]).String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tables...)
}

// String is a convenience method that calls Render
func (wt *WrapTable) String() string {
	return wt.Render()
}
