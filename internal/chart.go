package livedash

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jondoveston/livedash/internal/dom"
	"github.com/jondoveston/livedash/internal/render"
)

// ErrSlugCollision is returned when a metric name maps onto an id owned by a different name
var ErrSlugCollision = errors.New("metric name collides with an existing element id")

// ChartHandle is a registered chart: one render object and the element holding its canvas
type ChartHandle struct {
	ID        string
	Name      string
	Type      ChartType
	Object    render.Object
	Container *dom.Element
}

// ChartRegistry creates each chart once and updates it in place afterwards
type ChartRegistry struct {
	doc      *dom.Document
	area     *dom.Element
	renderer render.Renderer
	merger   *HistoryMerger
	log      *zap.Logger
	handles  map[string]*ChartHandle
	order    []string
}

func NewChartRegistry(doc *dom.Document, renderer render.Renderer, merger *HistoryMerger, log *zap.Logger) *ChartRegistry {
	return &ChartRegistry{
		doc:      doc,
		area:     doc.GetElementByID(ChartsAreaID),
		renderer: renderer,
		merger:   merger,
		log:      log,
		handles:  map[string]*ChartHandle{},
	}
}

// CreateOrUpdate makes sure a chart exists for m and shows its current data
func (r *ChartRegistry) CreateOrUpdate(m Metric) error {
	id := ChartID(m.Name)
	h, ok := r.handles[id]
	if !ok {
		return r.create(id, m)
	}
	if h.Name != m.Name {
		return fmt.Errorf("%w: %q and %q both map to %s", ErrSlugCollision, h.Name, m.Name, id)
	}
	if requested := m.ChartType.Resolve(); requested != h.Type {
		r.log.Debug("chart type change ignored",
			zap.String("chart", id),
			zap.String("type", string(h.Type)),
			zap.String("requested", string(requested)))
	}

	fresh := r.data(h.Type, m)
	data := h.Object.Data()
	data.Labels = fresh.Labels
	if len(data.Datasets) == 0 {
		data.Datasets = fresh.Datasets
	} else {
		data.Datasets[0].Label = m.Name
		data.Datasets[0].Values = fresh.Datasets[0].Values
	}
	h.Object.Update()
	return nil
}

func (r *ChartRegistry) create(id string, m Metric) error {
	if r.area == nil {
		return fmt.Errorf("create chart %s: no %s container", id, ChartsAreaID)
	}
	chartType := m.ChartType.Resolve()

	container := r.doc.CreateElement("chart-container", "")
	header := r.doc.CreateElement("chart-header", "")
	title := r.doc.CreateElement("chart-title", "")
	title.SetText(m.Name)
	canvas := r.doc.CreateElement("chart-canvas", id)
	for _, step := range []struct{ parent, child *dom.Element }{
		{header, title},
		{container, header},
		{container, canvas},
		{r.area, container},
	} {
		if err := step.parent.AppendChild(step.child); err != nil {
			return fmt.Errorf("create chart %s: %w", id, err)
		}
	}

	kind := render.Kind(chartType)
	obj := r.renderer.Construct(kind, r.data(chartType, m), render.DefaultOptions(kind))
	r.handles[id] = &ChartHandle{ID: id, Name: m.Name, Type: chartType, Object: obj, Container: container}
	r.order = append(r.order, id)
	return nil
}

// data builds the chart data for a metric: the merged series for line and bar
// charts, the single current reading for doughnuts
func (r *ChartRegistry) data(t ChartType, m Metric) render.Data {
	kind := render.Kind(t)
	if t == ChartDoughnut {
		return render.Data{
			Labels:   []string{m.Name},
			Datasets: []render.Dataset{{Label: m.Name, Values: []float64{m.Value}, Style: render.DefaultStyle(kind)}},
		}
	}
	series := r.merger.Series(m.Name)
	return render.Data{
		Labels:   series.Timestamps,
		Datasets: []render.Dataset{{Label: m.Name, Values: series.Values, Style: render.DefaultStyle(kind)}},
	}
}

func (r *ChartRegistry) Len() int {
	return len(r.handles)
}

func (r *ChartRegistry) Handle(id string) (*ChartHandle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

// Handles returns the charts in creation order
func (r *ChartRegistry) Handles() []*ChartHandle {
	out := make([]*ChartHandle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.handles[id])
	}
	return out
}
