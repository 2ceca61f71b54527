// Package render turns chart data into terminal frames. Callers construct an
// Object once per chart, mutate its Data in place and call Update.
package render

import (
	ui "github.com/gizak/termui/v3"
)

type Kind string

const (
	Line     Kind = "line"
	Bar      Kind = "bar"
	Doughnut Kind = "doughnut"
)

// 256-colour approximations of the dashboard palette
const (
	Blue      ui.Color = 69
	Green     ui.Color = 35
	Amber     ui.Color = 214
	Red       ui.Color = 167
	Gray      ui.Color = 244
	Slate     ui.Color = 235
	White     ui.Color = 15
	AxisColor ui.Color = 240
)

type Style struct {
	LineColor  ui.Color
	BarColor   ui.Color
	BarWidth   int
	BarGap     int
	Segments   []ui.Color
	LabelColor ui.Color
}

type Tooltip struct {
	Background ui.Color
	Foreground ui.Color
	Padding    int
}

type Options struct {
	ShowAxes    bool
	BeginAtZero bool
	// Precision is the number of decimals printed for values
	Precision int
	Legend    bool
	LegendTop bool
	Tooltip   Tooltip
}

type Dataset struct {
	Label  string
	Values []float64
	Style  Style
}

type Data struct {
	Labels   []string
	Datasets []Dataset
}

// Latest returns the last label and value of the first dataset
func (d *Data) Latest() (string, float64, bool) {
	if len(d.Datasets) == 0 || len(d.Datasets[0].Values) == 0 {
		return "", 0, false
	}
	values := d.Datasets[0].Values
	label := ""
	if n := len(d.Labels); n > 0 {
		label = d.Labels[n-1]
	}
	return label, values[len(values)-1], true
}

func DefaultStyle(k Kind) Style {
	switch k {
	case Bar:
		return Style{BarColor: Blue, BarWidth: 5, BarGap: 1, LabelColor: Gray}
	case Doughnut:
		return Style{Segments: []ui.Color{Blue, Green, Amber, Red, Gray}, LabelColor: Gray}
	default:
		return Style{LineColor: Blue, LabelColor: Gray}
	}
}

func DefaultOptions(k Kind) Options {
	tooltip := Tooltip{Background: Slate, Foreground: White, Padding: 1}
	if k == Doughnut {
		return Options{Legend: true, LegendTop: true, Precision: -1, Tooltip: tooltip}
	}
	return Options{ShowAxes: true, BeginAtZero: true, Precision: 0, Tooltip: tooltip}
}

// Object is one live chart. Data returns the mutable dataset the chart draws from.
type Object interface {
	Kind() Kind
	Data() *Data
	Options() Options
	Update()
	View(width, height int) string
	// Updates counts Update calls since construction
	Updates() int
}

type Renderer interface {
	Construct(kind Kind, data Data, opts Options) Object
}
