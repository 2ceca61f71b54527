package livedash

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// ErrNoSource is returned when no URL variant answers
var ErrNoSource = errors.New("no reachable metrics source")

// Source supplies live and historical snapshots
type Source interface {
	Name() string
	FetchLatest(ctx context.Context) (Snapshot, error)
	// FetchHistory returns the historical dataset ascending by timestamp, or nil if the source has none
	FetchHistory(ctx context.Context) ([]Snapshot, error)
	Check(ctx context.Context) error
}

// sourceBuilder creates a source rooted at one candidate URL
type sourceBuilder func(u *url.URL) (Source, error)

// NewSource builds the source selected by cfg. A URL without a scheme is
// treated as a bare host and expanded into variants that are probed in turn.
func NewSource(ctx context.Context, cfg Config, log *zap.Logger) (Source, error) {
	if cfg.Source == SourceLocal {
		return NewLocalSource(), nil
	}

	// deadlines come from the caller's context
	client := &http.Client{}
	base, bare, err := parseBase(cfg.URL)
	if err != nil {
		return nil, err
	}

	var build sourceBuilder
	paths := []string{base.Path}
	switch cfg.Source {
	case SourceHTTP:
		build = func(u *url.URL) (Source, error) {
			return NewHTTPSource(u, cfg.MetricsPath, cfg.HistoryPath, client), nil
		}
	case SourceExposition:
		build = func(u *url.URL) (Source, error) {
			return NewExpositionSource(u, historyURL(u, cfg.HistoryPath), client), nil
		}
		if base.Path == "" || base.Path == "/" {
			paths = []string{"/metrics", ""}
		}
	case SourcePrometheus:
		build = func(u *url.URL) (Source, error) {
			return NewPrometheusSource(u, cfg.Queries, cfg.HistoryWindow, cfg.HistoryStep, log)
		}
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}

	if !bare {
		return build(base)
	}
	return Discover(ctx, generateURLVariants(base, paths), build, log)
}

func parseBase(raw string) (*url.URL, bool, error) {
	bare := !strings.Contains(raw, "://")
	if bare {
		raw = "http://" + raw
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, false, fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return nil, false, fmt.Errorf("parse url %q: missing host", raw)
	}
	return u, bare, nil
}

// historyURL resolves the history file against the host root of u
func historyURL(u *url.URL, path string) *url.URL {
	if path == "" {
		return nil
	}
	h := *u
	h.Path = path
	h.RawQuery = ""
	return &h
}

// endpoint joins path onto the base path of u
func endpoint(u *url.URL, path string) string {
	e := *u
	e.Path = strings.TrimRight(e.Path, "/") + path
	return e.String()
}

// Discover returns the first candidate whose source passes Check
func Discover(ctx context.Context, candidates []*url.URL, build sourceBuilder, log *zap.Logger) (Source, error) {
	for _, candidate := range candidates {
		log.Debug("probing source", zap.String("url", candidate.String()))
		src, err := build(candidate)
		if err != nil {
			log.Debug("source rejected", zap.String("url", candidate.String()), zap.Error(err))
			continue
		}
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout())
		err = src.Check(probeCtx)
		cancel()
		if err != nil {
			log.Debug("probe failed", zap.String("url", candidate.String()), zap.Error(err))
			continue
		}
		log.Info("found source", zap.String("source", src.Name()), zap.String("url", candidate.String()))
		return src, nil
	}
	return nil, ErrNoSource
}

// generateURLVariants creates the scheme, port and path combinations to try
func generateURLVariants(base *url.URL, paths []string) []*url.URL {
	var variants []*url.URL
	hostname := base.Hostname()

	// prefer https unless http was asked for
	schemes := []string{"https", "http"}
	if base.Scheme == "http" && base.Port() != "" {
		schemes = []string{"http", "https"}
	}

	ports := []string{"8080", "443", "80"}
	if port := base.Port(); port != "" {
		ports = append([]string{port}, ports...)
	}
	seen := make(map[string]bool)
	uniquePorts := []string{}
	for _, p := range ports {
		if !seen[p] {
			seen[p] = true
			uniquePorts = append(uniquePorts, p)
		}
	}

	if len(paths) == 0 {
		paths = []string{""}
	}

	for _, scheme := range schemes {
		for _, p := range uniquePorts {
			for _, urlPath := range paths {
				variants = append(variants, &url.URL{
					Scheme: scheme,
					Host:   net.JoinHostPort(hostname, p),
					Path:   strings.TrimRight(urlPath, "/"),
				})
			}
		}
	}
	return variants
}
