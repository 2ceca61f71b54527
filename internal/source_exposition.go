package livedash

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// ExpositionSource scrapes a Prometheus text endpoint and turns every sample into a metric
type ExpositionSource struct {
	target  *url.URL
	history *url.URL
	hc      *http.Client
	now     func() time.Time
}

func NewExpositionSource(target, history *url.URL, hc *http.Client) *ExpositionSource {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &ExpositionSource{target: target, history: history, hc: hc, now: time.Now}
}

func (e *ExpositionSource) Name() string {
	return e.target.Host
}

func (e *ExpositionSource) Check(ctx context.Context) error {
	_, err := e.FetchLatest(ctx)
	return err
}

func (e *ExpositionSource) FetchHistory(ctx context.Context) ([]Snapshot, error) {
	if e.history == nil {
		return nil, nil
	}
	return fetchHistoryFile(ctx, e.hc, e.history.String())
}

func (e *ExpositionSource) FetchLatest(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.target.String(), nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "text/plain")
	resp, err := e.hc.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Snapshot{}, fmt.Errorf("GET %s: %w: %s", e.target, ErrBadStatus, resp.Status)
	}

	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse metrics: %w", err)
	}
	return Snapshot{
		Timestamp: e.now().UTC().Format(time.RFC3339),
		Metrics:   familiesToMetrics(families),
	}, nil
}

// familiesToMetrics flattens metric families sorted by name. Histograms and
// summaries contribute their _count and _sum.
func familiesToMetrics(families map[string]*dto.MetricFamily) []Metric {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	metrics := []Metric{}
	for _, name := range names {
		family := families[name]
		for _, m := range family.GetMetric() {
			labels := labelSuffix(m.GetLabel())
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				metrics = append(metrics, Metric{Name: name + labels, Value: m.GetCounter().GetValue(), ChartType: ChartLine})
			case dto.MetricType_GAUGE:
				metrics = append(metrics, Metric{Name: name + labels, Value: m.GetGauge().GetValue(), ChartType: ChartLine})
			case dto.MetricType_UNTYPED:
				metrics = append(metrics, Metric{Name: name + labels, Value: m.GetUntyped().GetValue(), ChartType: ChartLine})
			case dto.MetricType_SUMMARY:
				metrics = append(metrics,
					Metric{Name: name + "_count" + labels, Value: float64(m.GetSummary().GetSampleCount()), ChartType: ChartLine},
					Metric{Name: name + "_sum" + labels, Value: m.GetSummary().GetSampleSum(), ChartType: ChartLine})
			case dto.MetricType_HISTOGRAM:
				metrics = append(metrics,
					Metric{Name: name + "_count" + labels, Value: float64(m.GetHistogram().GetSampleCount()), ChartType: ChartLine},
					Metric{Name: name + "_sum" + labels, Value: m.GetHistogram().GetSampleSum(), ChartType: ChartLine})
			}
		}
	}
	return metrics
}

func labelSuffix(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
