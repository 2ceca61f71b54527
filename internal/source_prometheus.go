package livedash

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"go.uber.org/zap"
)

// PrometheusSource evaluates configured queries against a Prometheus server.
// Latest readings come from instant queries, history from range queries.
type PrometheusSource struct {
	url     *url.URL
	api     v1.API
	queries []Query
	window  time.Duration
	step    time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewPrometheusSource(prometheusURL *url.URL, queries []Query, window, step time.Duration, log *zap.Logger) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}
	return newPrometheusSource(prometheusURL, v1.NewAPI(client), queries, window, step, log), nil
}

func newPrometheusSource(u *url.URL, v1api v1.API, queries []Query, window, step time.Duration, log *zap.Logger) *PrometheusSource {
	return &PrometheusSource{
		url:     u,
		api:     v1api,
		queries: queries,
		window:  window,
		step:    step,
		log:     log,
		now:     time.Now,
	}
}

func (p *PrometheusSource) Name() string {
	return p.url.Host
}

func (p *PrometheusSource) Check(ctx context.Context) error {
	if _, _, err := p.api.Query(ctx, "up", p.now()); err != nil {
		return fmt.Errorf("prometheus API query failed: %w", err)
	}
	return nil
}

func (p *PrometheusSource) warn(query string, warnings v1.Warnings) {
	if len(warnings) > 0 {
		p.log.Warn("prometheus warnings", zap.String("query", query), zap.Strings("warnings", warnings))
	}
}

func (p *PrometheusSource) FetchLatest(ctx context.Context) (Snapshot, error) {
	now := p.now()
	snap := Snapshot{Timestamp: now.UTC().Format(time.RFC3339), Metrics: []Metric{}}
	for _, q := range p.queries {
		result, warnings, err := p.api.Query(ctx, q.Expr, now)
		if err != nil {
			return Snapshot{}, fmt.Errorf("query %q: %w", q.Name, err)
		}
		p.warn(q.Expr, warnings)

		switch v := result.(type) {
		case *model.Scalar:
			snap.Metrics = append(snap.Metrics, Metric{Name: q.Name, Value: float64(v.Value), ChartType: q.ChartType})
		case model.Vector:
			sort.Slice(v, func(i, j int) bool { return v[i].Metric.String() < v[j].Metric.String() })
			for _, sample := range v {
				snap.Metrics = append(snap.Metrics, Metric{
					Name:      seriesName(q.Name, sample.Metric, len(v)),
					Value:     float64(sample.Value),
					ChartType: q.ChartType,
				})
			}
		default:
			return Snapshot{}, fmt.Errorf("query %q: %w: unsupported result type %s", q.Name, ErrMalformedSnapshot, result.Type())
		}
	}
	return snap, nil
}

// FetchHistory evaluates every query over the history window and groups the
// points into one snapshot per evaluation timestamp
func (p *PrometheusSource) FetchHistory(ctx context.Context) ([]Snapshot, error) {
	if p.window <= 0 {
		return nil, nil
	}
	end := p.now()
	r := v1.Range{Start: end.Add(-p.window), End: end, Step: p.step}

	buckets := map[model.Time][]Metric{}
	for _, q := range p.queries {
		result, warnings, err := p.api.QueryRange(ctx, q.Expr, r)
		if err != nil {
			return nil, fmt.Errorf("range query %q: %w", q.Name, err)
		}
		p.warn(q.Expr, warnings)

		matrix, ok := result.(model.Matrix)
		if !ok {
			return nil, fmt.Errorf("range query %q: %w: unsupported result type %s", q.Name, ErrMalformedSnapshot, result.Type())
		}
		sort.Slice(matrix, func(i, j int) bool { return matrix[i].Metric.String() < matrix[j].Metric.String() })
		for _, stream := range matrix {
			name := seriesName(q.Name, stream.Metric, len(matrix))
			for _, pair := range stream.Values {
				buckets[pair.Timestamp] = append(buckets[pair.Timestamp], Metric{Name: name, Value: float64(pair.Value), ChartType: q.ChartType})
			}
		}
	}

	times := make([]model.Time, 0, len(buckets))
	for t := range buckets {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	dataset := make([]Snapshot, 0, len(times))
	for _, t := range times {
		dataset = append(dataset, Snapshot{Timestamp: t.Time().UTC().Format(time.RFC3339), Metrics: buckets[t]})
	}
	return dataset, nil
}

// seriesName keeps the query name for a single series and appends the
// labels when a query yields several
func seriesName(name string, metric model.Metric, count int) string {
	if count <= 1 {
		return name
	}
	labels := model.LabelSet{}
	for k, v := range metric {
		if k != model.MetricNameLabel {
			labels[k] = v
		}
	}
	return name + " " + labels.String()
}
