package render

import (
	"image"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ui "github.com/gizak/termui/v3"
)

func termColor(c ui.Color) lipgloss.TerminalColor {
	if c < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(int(c)))
}

func cellStyle(s ui.Style) lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(termColor(s.Fg)).Background(termColor(s.Bg))
	if s.Modifier&ui.ModifierBold != 0 {
		st = st.Bold(true)
	}
	if s.Modifier&ui.ModifierUnderline != 0 {
		st = st.Underline(true)
	}
	return st
}

// Frame converts a termui buffer into text, one line per buffer row. Runs of
// cells sharing a style are rendered together.
func Frame(buf *ui.Buffer) string {
	r := buf.Rectangle
	lines := make([]string, 0, r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		var line strings.Builder
		var run strings.Builder
		var runStyle ui.Style
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runStyle == ui.StyleClear {
				line.WriteString(run.String())
			} else {
				line.WriteString(cellStyle(runStyle).Render(run.String()))
			}
			run.Reset()
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			c := buf.GetCell(image.Pt(x, y))
			ch := c.Rune
			if ch == 0 {
				ch = ' '
			}
			if c.Style != runStyle {
				flush()
				runStyle = c.Style
			}
			run.WriteRune(ch)
		}
		flush()
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
