package livedash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorBorder  = lipgloss.Color("240")
	colorTitle   = lipgloss.Color("69")
	colorFocus   = lipgloss.Color("170")
	colorAccent  = lipgloss.Color("214")
	colorMuted   = lipgloss.Color("244")
	colorBar     = lipgloss.Color("235")
	colorFailure = lipgloss.Color("167")
)

// Pane is a bordered panel with an optional title line and footer.
//
//	pane := NewPane("Requests", 40, 10).
//	    SetContent(chart).
//	    SetFocused(true)
//	fmt.Println(pane.Render())
type Pane struct {
	title       string
	content     string
	footer      string
	width       int
	height      int
	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
	focused     bool
}

// NewPane creates a new pane with default styling
func NewPane(title string, width, height int) Pane {
	return Pane{
		title:  title,
		width:  width,
		height: height,
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder),
		titleStyle: lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true),
	}
}

// SetContent sets the pane content
func (p Pane) SetContent(content string) Pane {
	p.content = content
	return p
}

// SetFooter sets a muted line under the content
func (p Pane) SetFooter(footer string) Pane {
	p.footer = footer
	return p
}

// SetFocused sets the focus state
func (p Pane) SetFocused(focused bool) Pane {
	p.focused = focused
	if focused {
		p.borderStyle = p.borderStyle.BorderForeground(colorFocus)
	} else {
		p.borderStyle = p.borderStyle.BorderForeground(colorBorder)
	}
	return p
}

// Width is the rendered width including the border
func (p Pane) Width() int {
	return p.width + 2
}

func (p Pane) Render() string {
	var b strings.Builder
	if p.title != "" {
		b.WriteString(p.titleStyle.Render(truncate(p.title, p.width)) + "\n")
	}
	b.WriteString(p.content)
	if p.footer != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(colorMuted).Render(truncate(p.footer, p.width)))
	}

	return p.borderStyle.
		Width(p.width).
		Height(p.height).
		MaxHeight(p.height + 2).
		Render(b.String())
}

// truncate shortens s to at most width runes, marking the cut with an ellipsis
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
