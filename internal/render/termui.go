package render

import (
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

const (
	defaultWidth  = 60
	defaultHeight = 12
)

// Termui draws charts with termui widgets into an off-screen buffer
type Termui struct {
	width, height int
}

func NewTermui() *Termui {
	return &Termui{width: defaultWidth, height: defaultHeight}
}

// WithSize sets the frame size used until a view asks for a different one
func (t *Termui) WithSize(width, height int) *Termui {
	t.width, t.height = width, height
	return t
}

func (t *Termui) Construct(kind Kind, data Data, opts Options) Object {
	o := &termuiObject{kind: kind, data: data, opts: opts, width: t.width, height: t.height}
	o.frame = o.draw()
	return o
}

type termuiObject struct {
	kind    Kind
	data    Data
	opts    Options
	width   int
	height  int
	frame   string
	updates int
}

func (o *termuiObject) Kind() Kind       { return o.kind }
func (o *termuiObject) Data() *Data      { return &o.data }
func (o *termuiObject) Options() Options { return o.opts }
func (o *termuiObject) Updates() int     { return o.updates }

func (o *termuiObject) Update() {
	o.updates++
	o.frame = o.draw()
}

func (o *termuiObject) View(width, height int) string {
	if width > 0 && height > 0 && (width != o.width || height != o.height) {
		o.width, o.height = width, height
		o.frame = o.draw()
	}
	return o.frame
}

func (o *termuiObject) values() []float64 {
	if len(o.data.Datasets) == 0 {
		return nil
	}
	return o.data.Datasets[0].Values
}

func (o *termuiObject) style() Style {
	if len(o.data.Datasets) == 0 {
		return DefaultStyle(o.kind)
	}
	return o.data.Datasets[0].Style
}

func (o *termuiObject) draw() string {
	var top, bottom []string
	if o.kind == Doughnut && o.opts.Legend {
		legend := o.legend()
		if o.opts.LegendTop {
			top = legend
		} else {
			bottom = legend
		}
	}
	bottom = append(bottom, o.readout())

	canvasHeight := o.height - len(top) - len(bottom)
	lines := append([]string{}, top...)
	if canvasHeight > 0 {
		lines = append(lines, o.canvas(o.width, canvasHeight))
	}
	lines = append(lines, bottom...)
	return strings.Join(lines, "\n")
}

func (o *termuiObject) canvas(width, height int) string {
	values := finite(o.values())
	var d ui.Drawable
	switch o.kind {
	case Bar:
		d = o.bar(values, width)
	case Doughnut:
		d = o.pie(values)
	default:
		d = o.line(values, width)
	}
	buf := ui.NewBuffer(image.Rect(0, 0, width, height))
	if d != nil {
		d.SetRect(0, 0, width, height)
		d.Draw(buf)
	} else {
		buf.SetString("no data", ui.NewStyle(o.style().LabelColor), image.Pt(0, 0))
	}
	return Frame(buf)
}

func (o *termuiObject) line(values []float64, width int) ui.Drawable {
	if len(values) == 0 {
		return nil
	}
	usable := width
	if o.opts.ShowAxes {
		usable -= 6
	}
	if usable < 2 {
		usable = 2
	}
	if len(values) > usable {
		values = values[len(values)-usable:]
	}
	pts := make([]float64, len(values))
	copy(pts, values)
	if !o.opts.BeginAtZero {
		low := minOf(pts)
		for i := range pts {
			pts[i] -= low
		}
	}
	// a line needs two points
	if len(pts) == 1 {
		pts = append(pts, pts[0])
	}

	p := widgets.NewPlot()
	p.Border = false
	p.Marker = widgets.MarkerBraille
	p.PlotType = widgets.LineChart
	p.ShowAxes = o.opts.ShowAxes
	p.AxesColor = AxisColor
	p.LineColors = []ui.Color{o.style().LineColor}
	p.Data = [][]float64{pts}
	p.MaxVal = positiveMax(pts)
	p.HorizontalScale = 1
	if scale := usable / (len(pts) - 1); scale > 1 {
		p.HorizontalScale = scale
	}
	return p
}

func (o *termuiObject) bar(values []float64, width int) ui.Drawable {
	if len(values) == 0 {
		return nil
	}
	style := o.style()
	if style.BarWidth < 1 {
		style.BarWidth = 1
	}
	labels := o.data.Labels
	fit := width / (style.BarWidth + style.BarGap)
	if fit < 1 {
		fit = 1
	}
	if len(values) > fit {
		offset := len(values) - fit
		values = values[offset:]
		if len(labels) > offset {
			labels = labels[offset:]
		} else {
			labels = nil
		}
	}

	bc := widgets.NewBarChart()
	bc.Border = false
	bc.Data = values
	bc.Labels = labels
	bc.BarWidth = style.BarWidth
	bc.BarGap = style.BarGap
	bc.BarColors = []ui.Color{style.BarColor}
	bc.LabelStyles = []ui.Style{ui.NewStyle(style.LabelColor)}
	bc.NumStyles = []ui.Style{ui.NewStyle(White, style.BarColor)}
	bc.NumFormatter = func(v float64) string {
		return FormatNumber(v, o.opts.Precision)
	}
	bc.MaxVal = positiveMax(values)
	return bc
}

func (o *termuiObject) pie(values []float64) ui.Drawable {
	sum := 0.0
	for _, v := range values {
		if v < 0 {
			return nil
		}
		sum += v
	}
	if sum <= 0 {
		return nil
	}
	pc := widgets.NewPieChart()
	pc.Border = false
	pc.Data = values
	pc.Colors = o.style().Segments
	pc.AngleOffset = -math.Pi / 2
	return pc
}

func (o *termuiObject) legend() []string {
	values := o.values()
	style := o.style()
	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(o.data.Labels) {
			label = o.data.Labels[i]
		}
		swatch := lipgloss.NewStyle().Foreground(termColor(selectColor(style.Segments, i))).Render("■")
		lines = append(lines, swatch+" "+label+" "+FormatNumber(v, o.opts.Precision))
	}
	return lines
}

func (o *termuiObject) readout() string {
	label, value, ok := o.data.Latest()
	if !ok {
		return ""
	}
	t := o.opts.Tooltip
	text := strings.TrimSpace(label + "  " + FormatNumber(value, -1))
	return lipgloss.NewStyle().
		Background(termColor(t.Background)).
		Foreground(termColor(t.Foreground)).
		Padding(0, t.Padding).
		Render(text)
}

// FormatNumber prints v with the given number of decimals; negative precision
// means the shortest exact form
func FormatNumber(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func selectColor(colors []ui.Color, i int) ui.Color {
	if len(colors) == 0 {
		return ui.ColorClear
	}
	return colors[i%len(colors)]
}

// finite copies values with NaN and infinities replaced by zero; termui
// sizes bars and plot points from them and never terminates otherwise
func finite(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}

func positiveMax(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m && !math.IsInf(v, 1) {
			m = v
		}
	}
	if m <= 0 {
		return 1
	}
	return m
}

func minOf(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}
