package livedash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/jondoveston/livedash/internal/dom"
)

const (
	statCardWidth = 22
	minPaneWidth  = 40
	paneHeight    = 14
)

var (
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	lastUpdatedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	waitingStyle     = lipgloss.NewStyle().Foreground(colorBorder).Padding(2, 4)
)

// RenderDocument draws the session's document: the last-updated line, a row
// of stat cards and a grid of charts. selected highlights one chart pane.
func RenderDocument(s *Session, width, selected int) string {
	doc := s.Document()
	stats := renderStats(doc, width)
	charts := renderCharts(s, width, selected)
	if stats == "" && charts == "" {
		return waitingStyle.Render("Waiting for data...")
	}

	var parts []string
	if text := doc.GetElementByID(LastUpdatedID).Text(); text != "" {
		parts = append(parts, lastUpdatedStyle.Render(text))
	}
	if stats != "" {
		parts = append(parts, stats)
	}
	if charts != "" {
		parts = append(parts, charts)
	}
	return strings.Join(parts, "\n")
}

func renderStats(doc *dom.Document, width int) string {
	container := doc.GetElementByID(StatsContainerID)
	if container == nil {
		return ""
	}
	var panes []Pane
	for _, card := range container.Children() {
		title, value := card.Find("stat-title"), card.Find("stat-value")
		if title == nil || value == nil {
			continue
		}
		panes = append(panes, NewPane(title.Text(), statCardWidth, 2).SetContent(valueStyle.Render(value.Text())))
	}
	if len(panes) == 0 {
		return ""
	}
	columns := max(1, width/(statCardWidth+2))
	return Wrap(columns, panes...)
}

func renderCharts(s *Session, width, selected int) string {
	area := s.Document().GetElementByID(ChartsAreaID)
	if area == nil || len(area.Children()) == 0 {
		return ""
	}
	containers := area.Children()
	columns := gridColumns(len(containers), width)
	paneWidth := max(width/columns-2, 10)

	panes := make([]Pane, 0, len(containers))
	for i, c := range containers {
		title, canvas := c.Find("chart-title"), c.Find("chart-canvas")
		if title == nil || canvas == nil {
			continue
		}
		content := ""
		if h, ok := s.Charts().Handle(canvas.ID()); ok {
			content = h.Object.View(paneWidth, paneHeight-1)
		}
		panes = append(panes, NewPane(title.Text(), paneWidth, paneHeight).
			SetContent(content).
			SetFocused(i == selected))
	}
	return Wrap(columns, panes...)
}

// chartRow is the grid row holding chart index i
func chartRow(i, columns int) int {
	return i / max(columns, 1)
}

// DocumentTree renders the element structure of the document
func DocumentTree(doc *dom.Document) string {
	t := tree.New().Root(lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("document"))
	for _, c := range doc.Root().Children() {
		t = t.Child(elementTree(c))
	}
	return t.String()
}

func elementTree(e *dom.Element) *tree.Tree {
	label := e.Class()
	if e.ID() != "" {
		label += "#" + e.ID()
	}
	if e.Text() != "" {
		label += " " + lipgloss.NewStyle().Foreground(colorMuted).Render(truncate(e.Text(), 40))
	}
	t := tree.New().Root(label)
	for _, c := range e.Children() {
		t = t.Child(elementTree(c))
	}
	return t
}
