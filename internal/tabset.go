package livedash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jondoveston/livedash/internal/render"
)

// recentPoints is how many trailing points the focused chart lists
const recentPoints = 8

// TabSet shows one chart at a time with a tab bar to move between charts
type TabSet struct {
	charts      []*ChartHandle
	selectedTab int
	width       int
	height      int
}

// NewTabSet creates a new TabSet
func NewTabSet() *TabSet {
	return &TabSet{
		charts: []*ChartHandle{},
		width:  40,
		height: 10,
	}
}

// Sync appends charts that are not in the tab set yet, keeping the selection
func (ts *TabSet) Sync(handles []*ChartHandle) *TabSet {
	for _, h := range handles[min(len(ts.charts), len(handles)):] {
		ts.charts = append(ts.charts, h)
	}
	return ts
}

// SetSize sets the dimensions for rendering
func (ts *TabSet) SetSize(width, height int) *TabSet {
	ts.width = width
	ts.height = height
	return ts
}

// SelectTab changes the active tab
func (ts *TabSet) SelectTab(index int) *TabSet {
	if index >= 0 && index < len(ts.charts) {
		ts.selectedTab = index
	}
	return ts
}

// NextTab moves to the next tab (wraps around)
func (ts *TabSet) NextTab() *TabSet {
	if len(ts.charts) > 0 {
		ts.selectedTab = (ts.selectedTab + 1) % len(ts.charts)
	}
	return ts
}

// PrevTab moves to the previous tab (wraps around)
func (ts *TabSet) PrevTab() *TabSet {
	if len(ts.charts) > 0 {
		ts.selectedTab = (ts.selectedTab - 1 + len(ts.charts)) % len(ts.charts)
	}
	return ts
}

// GetSelectedTab returns the currently selected tab index
func (ts *TabSet) GetSelectedTab() int {
	return ts.selectedTab
}

func (ts *TabSet) Len() int {
	return len(ts.charts)
}

// Selected returns the chart on the active tab
func (ts *TabSet) Selected() *ChartHandle {
	if len(ts.charts) == 0 {
		return nil
	}
	return ts.charts[ts.selectedTab]
}

// Render renders the tab set with tabs and active chart content
func (ts *TabSet) Render() string {
	selected := ts.Selected()
	if selected == nil {
		return "No charts available"
	}

	var b strings.Builder
	nameStyle := lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)
	b.WriteString(nameStyle.Render(selected.Name + "  (" + string(selected.Type) + ")"))
	b.WriteString("\n")

	contentHeight := ts.height - 1
	if len(ts.charts) > 1 {
		b.WriteString(ts.renderTabs())
		b.WriteString("\n")
		contentHeight -= 3
	}

	points := ts.renderPoints(selected)
	chartWidth := ts.width - lipgloss.Width(points) - 2
	if chartWidth < 20 {
		chartWidth = ts.width
		points = ""
	}
	chart := selected.Object.View(chartWidth, max(contentHeight, 3))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chart, "  ", points))

	return b.String()
}

// renderTabs renders the tab bar, scrolled so the active tab is visible
func (ts *TabSet) renderTabs() string {
	activeTabStyle := lipgloss.NewStyle().
		Foreground(colorFocus).
		Background(colorBar).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFocus)

	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(colorBorder).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("236"))

	var renderedTabs []string
	for i, chart := range ts.charts {
		label := truncate(chart.Name, 18)
		if i == ts.selectedTab {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(label))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(label))
		}
	}

	// drop tabs from the front until the active one fits
	start := 0
	for start < ts.selectedTab && lipgloss.Width(lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs[start:ts.selectedTab+1]...)) > ts.width {
		start++
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs[start:]...)
	return lipgloss.NewStyle().MaxWidth(ts.width).Render(row)
}

// renderPoints lists the most recent points of a chart
func (ts *TabSet) renderPoints(h *ChartHandle) string {
	data := h.Object.Data()
	if len(data.Datasets) == 0 {
		return ""
	}
	values := data.Datasets[0].Values
	start := max(0, len(values)-recentPoints)

	rows := make([][]string, 0, len(values)-start)
	for i := len(values) - 1; i >= start; i-- {
		label := ""
		if i < len(data.Labels) {
			label = data.Labels[i]
		}
		rows = append(rows, []string{label, render.FormatNumber(values[i], -1)})
	}
	header := "Time"
	if h.Type == ChartDoughnut {
		header = "Metric"
	}
	return NewWrapTable().
		Headers(header, "Value").
		AlignRight(1).
		Rows(rows...).
		Render()
}

// String is a convenience method that calls Render
func (ts *TabSet) String() string {
	return ts.Render()
}
