package render

import (
	"image"
	"math"
	"strings"
	"testing"

	ui "github.com/gizak/termui/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(kind Kind, labels []string, values ...float64) Data {
	return Data{
		Labels:   labels,
		Datasets: []Dataset{{Label: "m", Values: values, Style: DefaultStyle(kind)}},
	}
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, Blue, DefaultStyle(Line).LineColor)
	assert.Equal(t, Blue, DefaultStyle(Bar).BarColor)
	assert.Equal(t, []ui.Color{Blue, Green, Amber, Red, Gray}, DefaultStyle(Doughnut).Segments)

	line := DefaultOptions(Line)
	assert.True(t, line.BeginAtZero)
	assert.False(t, line.Legend)
	assert.Equal(t, 0, line.Precision)

	doughnut := DefaultOptions(Doughnut)
	assert.True(t, doughnut.Legend)
	assert.True(t, doughnut.LegendTop)
	assert.Equal(t, Slate, doughnut.Tooltip.Background)
}

func TestConstructDoesNotCountAsUpdate(t *testing.T) {
	o := NewTermui().Construct(Line, series(Line, []string{"10:00:00"}, 5), DefaultOptions(Line))
	assert.Equal(t, 0, o.Updates())
	assert.Equal(t, Line, o.Kind())

	o.Data().Labels = append(o.Data().Labels, "10:00:05")
	o.Data().Datasets[0].Values = append(o.Data().Datasets[0].Values, 7)
	o.Update()
	assert.Equal(t, 1, o.Updates())

	label, value, ok := o.Data().Latest()
	require.True(t, ok)
	assert.Equal(t, "10:00:05", label)
	assert.Equal(t, 7.0, value)
}

func TestViewHasRequestedHeight(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		data Data
	}{
		{"line", Line, series(Line, []string{"a", "b", "c"}, 1, 3, 2)},
		{"single point line", Line, series(Line, []string{"a"}, 4)},
		{"flat zero line", Line, series(Line, []string{"a", "b"}, 0, 0)},
		{"negative line", Line, series(Line, []string{"a", "b"}, -3, -1)},
		{"bar", Bar, series(Bar, []string{"a", "b"}, 10, 20)},
		{"wide bar history", Bar, series(Bar, make([]string, 100), make([]float64, 100)...)},
		{"doughnut", Doughnut, series(Doughnut, []string{"cpu"}, 42)},
		{"zero doughnut", Doughnut, series(Doughnut, []string{"cpu"}, 0)},
		{"empty", Line, Data{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewTermui().Construct(tt.kind, tt.data, DefaultOptions(tt.kind))
			view := o.View(40, 10)
			assert.Len(t, strings.Split(view, "\n"), 10)
		})
	}
}

func TestNonFiniteValuesStillDraw(t *testing.T) {
	values := map[string]float64{"nan": math.NaN(), "+inf": math.Inf(1), "-inf": math.Inf(-1)}
	for _, kind := range []Kind{Line, Bar, Doughnut} {
		for name, v := range values {
			t.Run(string(kind)+"/"+name, func(t *testing.T) {
				o := NewTermui().Construct(kind, series(kind, []string{"a", "b"}, 2, v), DefaultOptions(kind))
				assert.Len(t, strings.Split(o.View(40, 10), "\n"), 10)

				o.Data().Labels = append(o.Data().Labels, "c")
				o.Data().Datasets[0].Values = append(o.Data().Datasets[0].Values, v)
				o.Update()
				assert.Len(t, strings.Split(o.View(30, 8), "\n"), 8)
			})
		}
	}
}

func TestFiniteLeavesDataUntouched(t *testing.T) {
	in := []float64{1, math.NaN(), math.Inf(1), math.Inf(-1), -2}
	assert.Equal(t, []float64{1, 0, 0, 0, -2}, finite(in))
	assert.True(t, math.IsNaN(in[1]))
	assert.Equal(t, 3.0, positiveMax([]float64{math.Inf(1), 3}))
}

func TestEmptyChartSaysNoData(t *testing.T) {
	o := NewTermui().WithSize(20, 4).Construct(Line, Data{}, DefaultOptions(Line))
	assert.Contains(t, o.View(20, 4), "no data")
}

func TestDoughnutLegend(t *testing.T) {
	o := NewTermui().Construct(Doughnut, series(Doughnut, []string{"Hit Ratio"}, 0.5), DefaultOptions(Doughnut))
	lines := strings.Split(o.View(30, 8), "\n")
	assert.Contains(t, lines[0], "Hit Ratio 0.5")
	assert.Contains(t, lines[len(lines)-1], "Hit Ratio  0.5")
}

func TestViewIsStableWithoutUpdate(t *testing.T) {
	o := NewTermui().Construct(Bar, series(Bar, []string{"a", "b"}, 1, 2), DefaultOptions(Bar))
	first := o.View(30, 8)
	assert.Equal(t, first, o.View(30, 8))
	assert.Equal(t, 0, o.Updates())
}

func TestFrame(t *testing.T) {
	buf := ui.NewBuffer(image.Rect(0, 0, 5, 2))
	buf.SetString("hi", ui.StyleClear, image.Pt(1, 1))
	assert.Equal(t, "     \n hi  ", Frame(buf))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "2", FormatNumber(1.5, 0))
	assert.Equal(t, "1.5", FormatNumber(1.5, -1))
	assert.Equal(t, "20", FormatNumber(20, -1))
}
