package livedash

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jondoveston/livedash/internal/render"
)

var errNetwork = errors.New("connection refused")

type fetchResult struct {
	snap Snapshot
	err  error
}

// fakeSource replays queued live results and a fixed history
type fakeSource struct {
	mu           sync.Mutex
	results      []fetchResult
	history      []Snapshot
	historyErr   error
	latestCalls  int
	historyCalls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Check(context.Context) error { return nil }

func (f *fakeSource) push(snap Snapshot, err error) *fakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, fetchResult{snap: snap, err: err})
	return f
}

func (f *fakeSource) FetchLatest(context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++
	if len(f.results) == 0 {
		return Snapshot{}, errNetwork
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.snap, r.err
}

func (f *fakeSource) FetchHistory(context.Context) ([]Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	return f.history, f.historyErr
}

func (f *fakeSource) calls() (latest, history int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latestCalls, f.historyCalls
}

// countingRenderer records every constructed object
type countingRenderer struct {
	inner   render.Renderer
	objects map[string]int
}

func newCountingRenderer() *countingRenderer {
	return &countingRenderer{inner: render.NewTermui(), objects: map[string]int{}}
}

func (c *countingRenderer) Construct(kind render.Kind, data render.Data, opts render.Options) render.Object {
	label := ""
	if len(data.Datasets) > 0 {
		label = data.Datasets[0].Label
	}
	c.objects[label]++
	return c.inner.Construct(kind, data, opts)
}

func (c *countingRenderer) total() int {
	n := 0
	for _, v := range c.objects {
		n += v
	}
	return n
}

func snapshot(ts string, metrics ...Metric) Snapshot {
	if metrics == nil {
		metrics = []Metric{}
	}
	return Snapshot{Timestamp: ts, Metrics: metrics}
}

func metric(name string, value float64, chartType ChartType) Metric {
	return Metric{Name: name, Value: value, ChartType: chartType}
}

func newTestSession(src Source, renderer render.Renderer) *Session {
	return NewSession(SessionOptions{
		Source:   src,
		Renderer: renderer,
		Location: time.UTC,
	})
}
