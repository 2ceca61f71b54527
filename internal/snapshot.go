package livedash

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrMalformedSnapshot is returned when a payload decodes but lacks the metrics list
	ErrMalformedSnapshot = errors.New("malformed snapshot: missing metrics")
	// ErrBadStatus is returned when an endpoint answers with a non-2xx status
	ErrBadStatus = errors.New("unexpected response status")
)

// ChartType is the chart kind requested by the backend for a metric
type ChartType string

const (
	ChartLine     ChartType = "line"
	ChartBar      ChartType = "bar"
	ChartDoughnut ChartType = "doughnut"
)

// Resolve maps an arbitrary requested type onto a supported one, defaulting to line
func (t ChartType) Resolve() ChartType {
	switch t {
	case ChartLine, ChartBar, ChartDoughnut:
		return t
	default:
		return ChartLine
	}
}

// Metric is one named reading within a snapshot
type Metric struct {
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	ChartType ChartType `json:"chart_type,omitempty"`
}

// Snapshot is one timestamped set of metric readings, immutable once received
type Snapshot struct {
	Timestamp string   `json:"timestamp"`
	Metrics   []Metric `json:"metrics"`
}

// Find returns the first metric with the given name
func (s Snapshot) Find(name string) (Metric, bool) {
	for _, m := range s.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// MetricSeries holds per-metric ordered (timestamp, value) pairs
type MetricSeries struct {
	Timestamps []string
	Values     []float64
}

func (s MetricSeries) Len() int {
	return len(s.Values)
}

// wireSnapshot distinguishes an absent metrics field from an empty one
type wireSnapshot struct {
	Timestamp string    `json:"timestamp"`
	Metrics   *[]Metric `json:"metrics"`
}

func (w wireSnapshot) snapshot() (Snapshot, error) {
	if w.Metrics == nil {
		return Snapshot{}, ErrMalformedSnapshot
	}
	metrics := *w.Metrics
	if metrics == nil {
		metrics = []Metric{}
	}
	return Snapshot{Timestamp: w.Timestamp, Metrics: metrics}, nil
}

// DecodeSnapshot reads a single live snapshot payload
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var w wireSnapshot
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return w.snapshot()
}

// DecodeHistory reads a historical dataset. Entries are kept in file order.
func DecodeHistory(r io.Reader) ([]Snapshot, error) {
	var ws []wireSnapshot
	if err := json.NewDecoder(r).Decode(&ws); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	dataset := make([]Snapshot, 0, len(ws))
	for i, w := range ws {
		s, err := w.snapshot()
		if err != nil {
			return nil, fmt.Errorf("history entry %d: %w", i, err)
		}
		dataset = append(dataset, s)
	}
	return dataset, nil
}
