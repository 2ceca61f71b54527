package livedash

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// SourceKind selects where snapshots come from
type SourceKind string

const (
	SourceHTTP       SourceKind = "http"
	SourceExposition SourceKind = "exposition"
	SourcePrometheus SourceKind = "prometheus"
	SourceLocal      SourceKind = "local"
)

// OverlapPolicy decides what happens when live fetches complete out of order
type OverlapPolicy string

const (
	// OverlapLatestWins drops a result older than one already applied
	OverlapLatestWins OverlapPolicy = "latest-wins"
	// OverlapConcurrent applies results in completion order
	OverlapConcurrent OverlapPolicy = "concurrent"
)

// Configuration keys shared by flags, environment and the config file
const (
	KeyURL           = "url"
	KeySource        = "source"
	KeyMetricsPath   = "metrics_path"
	KeyHistoryPath   = "history_path"
	KeyInterval      = "interval"
	KeyOverlap       = "overlap"
	KeyFetchTimeout  = "fetch_timeout"
	KeyMaxHistory    = "max_history"
	KeyTimezone      = "timezone"
	KeyLogFile       = "log_file"
	KeyLogLevel      = "log_level"
	KeyMetricsAddr   = "metrics_addr"
	KeyOnce          = "once"
	KeyQueries       = "queries"
	KeyHistoryWindow = "history_window"
	KeyHistoryStep   = "history_step"
)

// Query is one Prometheus expression shown as a dashboard metric
type Query struct {
	Name      string    `mapstructure:"name"`
	Expr      string    `mapstructure:"query"`
	ChartType ChartType `mapstructure:"chart_type"`
}

type Config struct {
	URL           string
	Source        SourceKind
	MetricsPath   string
	HistoryPath   string
	Interval      time.Duration
	Overlap       OverlapPolicy
	FetchTimeout  time.Duration
	MaxHistory    int
	Location      *time.Location
	LogFile       string
	LogLevel      string
	MetricsAddr   string
	Once          bool
	Queries       []Query
	HistoryWindow time.Duration
	HistoryStep   time.Duration
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySource, string(SourceHTTP))
	v.SetDefault(KeyMetricsPath, "/api/metrics")
	v.SetDefault(KeyHistoryPath, "/static/metrics_history.json")
	v.SetDefault(KeyInterval, RefreshDuration())
	v.SetDefault(KeyOverlap, string(OverlapLatestWins))
	v.SetDefault(KeyFetchTimeout, time.Duration(0))
	v.SetDefault(KeyMaxHistory, 0)
	v.SetDefault(KeyTimezone, "")
	v.SetDefault(KeyLogFile, "livedash.log")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyOnce, false)
	v.SetDefault(KeyHistoryWindow, HistoryWindow())
	v.SetDefault(KeyHistoryStep, HistoryStep())
}

// DefaultQueries are used by the prometheus source when none are configured
func DefaultQueries() []Query {
	return []Query{
		{Name: "Targets up", Expr: "sum(up)", ChartType: ChartLine},
		{Name: "Scrape duration seconds", Expr: "avg(scrape_duration_seconds)", ChartType: ChartBar},
		{Name: "Targets healthy ratio", Expr: "avg(up)", ChartType: ChartDoughnut},
	}
}

// LoadConfig reads and validates the configuration held by v
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		URL:           v.GetString(KeyURL),
		Source:        SourceKind(v.GetString(KeySource)),
		MetricsPath:   v.GetString(KeyMetricsPath),
		HistoryPath:   v.GetString(KeyHistoryPath),
		Interval:      v.GetDuration(KeyInterval),
		Overlap:       OverlapPolicy(v.GetString(KeyOverlap)),
		FetchTimeout:  v.GetDuration(KeyFetchTimeout),
		MaxHistory:    v.GetInt(KeyMaxHistory),
		LogFile:       v.GetString(KeyLogFile),
		LogLevel:      v.GetString(KeyLogLevel),
		MetricsAddr:   v.GetString(KeyMetricsAddr),
		Once:          v.GetBool(KeyOnce),
		HistoryWindow: v.GetDuration(KeyHistoryWindow),
		HistoryStep:   v.GetDuration(KeyHistoryStep),
	}

	if err := v.UnmarshalKey(KeyQueries, &cfg.Queries); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", KeyQueries, err)
	}
	if len(cfg.Queries) == 0 {
		cfg.Queries = DefaultQueries()
	}

	cfg.Location = time.Local
	if tz := v.GetString(KeyTimezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", KeyTimezone, err)
		}
		cfg.Location = loc
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Source {
	case SourceHTTP, SourceExposition, SourcePrometheus, SourceLocal:
	default:
		return fmt.Errorf("config %s: unknown source %q", KeySource, c.Source)
	}
	if c.Source != SourceLocal && c.URL == "" {
		return fmt.Errorf("config %s: required for source %q", KeyURL, c.Source)
	}
	switch c.Overlap {
	case OverlapLatestWins, OverlapConcurrent:
	default:
		return fmt.Errorf("config %s: unknown policy %q", KeyOverlap, c.Overlap)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("config %s: must be positive, got %s", KeyInterval, c.Interval)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("config %s: must not be negative", KeyFetchTimeout)
	}
	if c.MaxHistory < 0 {
		return fmt.Errorf("config %s: must not be negative", KeyMaxHistory)
	}
	if c.Source == SourcePrometheus {
		if c.HistoryWindow < 0 || c.HistoryStep <= 0 {
			return fmt.Errorf("config %s/%s: invalid range", KeyHistoryWindow, KeyHistoryStep)
		}
		for i, q := range c.Queries {
			if q.Name == "" || q.Expr == "" {
				return fmt.Errorf("config %s[%d]: name and query are required", KeyQueries, i)
			}
		}
	}
	return nil
}
