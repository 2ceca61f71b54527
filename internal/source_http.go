package livedash

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPSource polls the dashboard JSON endpoint and reads the static history file
type HTTPSource struct {
	base        *url.URL
	metricsPath string
	historyPath string
	hc          *http.Client
}

func NewHTTPSource(base *url.URL, metricsPath, historyPath string, hc *http.Client) *HTTPSource {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPSource{base: base, metricsPath: metricsPath, historyPath: historyPath, hc: hc}
}

func (s *HTTPSource) Name() string {
	return s.base.Host
}

func (s *HTTPSource) FetchLatest(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := getJSON(ctx, s.hc, endpoint(s.base, s.metricsPath), func(r io.Reader) error {
		var err error
		snap, err = DecodeSnapshot(r)
		return err
	})
	return snap, err
}

func (s *HTTPSource) FetchHistory(ctx context.Context) ([]Snapshot, error) {
	if s.historyPath == "" {
		return nil, nil
	}
	return fetchHistoryFile(ctx, s.hc, endpoint(s.base, s.historyPath))
}

func (s *HTTPSource) Check(ctx context.Context) error {
	_, err := s.FetchLatest(ctx)
	return err
}

func fetchHistoryFile(ctx context.Context, hc *http.Client, target string) ([]Snapshot, error) {
	var dataset []Snapshot
	err := getJSON(ctx, hc, target, func(r io.Reader) error {
		var err error
		dataset, err = DecodeHistory(r)
		return err
	})
	return dataset, err
}

// getJSON issues a GET and hands a 2xx body to decode
func getJSON(ctx context.Context, hc *http.Client, target string, decode func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: %w: %s", target, ErrBadStatus, resp.Status)
	}
	if err := decode(resp.Body); err != nil {
		return fmt.Errorf("GET %s: %w", target, err)
	}
	return nil
}
