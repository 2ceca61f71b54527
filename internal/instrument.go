package livedash

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	fetchLatest  = "latest"
	fetchHistory = "history"
	resultOK     = "ok"
	resultError  = "error"
)

// Instruments are the dashboard's own metrics, kept on a private registry
type Instruments struct {
	Registry      *prometheus.Registry
	Fetches       *prometheus.CounterVec
	FetchFailures prometheus.Counter
	StaleDropped  prometheus.Counter
	Collisions    prometheus.Counter
	Charts        prometheus.Gauge
	Cards         prometheus.Gauge
	FetchDuration *prometheus.HistogramVec
}

func NewInstruments() *Instruments {
	i := &Instruments{
		Registry: prometheus.NewRegistry(),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livedash_fetches_total",
			Help: "Snapshot fetches by kind and result.",
		}, []string{"kind", "result"}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livedash_fetch_failures_total",
			Help: "Live fetches that left the dashboard unchanged.",
		}),
		StaleDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livedash_stale_results_total",
			Help: "Live results discarded because a newer one was already applied.",
		}),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livedash_slug_collisions_total",
			Help: "Metrics skipped because their id was owned by another name.",
		}),
		Charts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "livedash_charts",
			Help: "Charts currently on the dashboard.",
		}),
		Cards: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "livedash_stat_cards",
			Help: "Stat cards currently on the dashboard.",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "livedash_fetch_duration_seconds",
			Help:    "Time spent fetching snapshots.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	i.Registry.MustRegister(i.Fetches, i.FetchFailures, i.StaleDropped, i.Collisions, i.Charts, i.Cards, i.FetchDuration)
	return i
}

func (i *Instruments) observeFetch(kind string, started time.Time, err error) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	i.Fetches.WithLabelValues(kind, result).Inc()
	i.FetchDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// Router exposes the registry on /metrics plus a liveness probe
func (i *Instruments) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(i.Registry, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods("GET")
	return r
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Serve runs the self-metrics endpoint until ctx is done
func (i *Instruments) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	server := newServer(addr, i.Router())
	errc := make(chan error, 1)
	go func() {
		log.Info("serving self metrics", zap.String("addr", addr))
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
