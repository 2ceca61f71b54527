package livedash

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jondoveston/livedash/internal/dom"
	"github.com/jondoveston/livedash/internal/render"
)

// Ids of the containers every document starts with
const (
	ChartsAreaID     = "charts-area"
	StatsContainerID = "stats-container"
	LastUpdatedID    = "last-updated"
)

type SessionOptions struct {
	Source       Source
	Renderer     render.Renderer
	Logger       *zap.Logger
	Instruments  *Instruments
	Location     *time.Location
	Overlap      OverlapPolicy
	MaxHistory   int
	FetchTimeout time.Duration
}

// Status summarises recent fetch outcomes for the footer
type Status struct {
	Source      string
	LastError   error
	Failures    int
	Applied     int
	LastSuccess time.Time
}

// Session owns all dashboard state for one program run. Fetch methods may run
// on any goroutine; Apply methods and Refresh/LoadHistory must be called from
// a single goroutine.
type Session struct {
	source       Source
	doc          *dom.Document
	store        *SnapshotStore
	merger       *HistoryMerger
	charts       *ChartRegistry
	cards        *StatCardRegistry
	log          *zap.Logger
	inst         *Instruments
	format       TimeFormatter
	overlap      OverlapPolicy
	maxHistory   int
	fetchTimeout time.Duration

	issued   uint64
	applied  uint64
	collided map[string]bool
	status   Status
}

func NewSession(opts SessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Instruments == nil {
		opts.Instruments = NewInstruments()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewTermui()
	}
	if opts.Overlap == "" {
		opts.Overlap = OverlapLatestWins
	}

	format := TimeFormatter{Location: opts.Location}
	doc := dom.New(ChartsAreaID, StatsContainerID, LastUpdatedID)
	store := NewSnapshotStore()
	merger := NewHistoryMerger(store, format)
	return &Session{
		source:       opts.Source,
		doc:          doc,
		store:        store,
		merger:       merger,
		charts:       NewChartRegistry(doc, opts.Renderer, merger, opts.Logger),
		cards:        NewStatCardRegistry(doc),
		log:          opts.Logger,
		inst:         opts.Instruments,
		format:       format,
		overlap:      opts.Overlap,
		maxHistory:   opts.MaxHistory,
		fetchTimeout: opts.FetchTimeout,
		collided:     map[string]bool{},
		status:       Status{Source: opts.Source.Name()},
	}
}

func (s *Session) Document() *dom.Document { return s.doc }
func (s *Session) Store() *SnapshotStore { return s.store }
func (s *Session) Charts() *ChartRegistry { return s.charts }
func (s *Session) Cards() *StatCardRegistry { return s.cards }
func (s *Session) Instruments() *Instruments { return s.inst }
func (s *Session) Status() Status { return s.status }

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.fetchTimeout > 0 {
		return context.WithTimeout(ctx, s.fetchTimeout)
	}
	return context.WithCancel(ctx)
}

// FetchHistory retrieves the historical dataset without touching session state
func (s *Session) FetchHistory(ctx context.Context) ([]Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	started := time.Now()
	dataset, err := s.source.FetchHistory(ctx)
	s.inst.observeFetch(fetchHistory, started, err)
	return dataset, err
}

// ApplyHistory stores a fetched historical dataset. A failed fetch is logged
// and the dashboard carries on with live data only.
func (s *Session) ApplyHistory(dataset []Snapshot, err error) {
	if err != nil {
		s.log.Warn("historical metrics unavailable", zap.Error(err))
		return
	}
	dataset = trimHistory(dataset, s.maxHistory)
	if err := s.store.ReplaceHistorical(dataset); err != nil {
		s.log.Warn("historical metrics ignored", zap.Error(err))
		return
	}
	s.log.Info("historical metrics loaded", zap.Int("snapshots", len(dataset)))
}

// NextFetch hands out the sequence number for a live fetch about to be issued
func (s *Session) NextFetch() uint64 {
	s.issued++
	return s.issued
}

// FetchLatest retrieves one live snapshot without touching session state
func (s *Session) FetchLatest(ctx context.Context) (Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	started := time.Now()
	snap, err := s.source.FetchLatest(ctx)
	s.inst.observeFetch(fetchLatest, started, err)
	return snap, err
}

// ApplyLatest applies the outcome of fetch seq and reports whether the
// dashboard changed. Failures and stale results leave every piece of state as it was.
func (s *Session) ApplyLatest(seq uint64, snap Snapshot, err error) bool {
	if err != nil {
		s.inst.FetchFailures.Inc()
		s.status.LastError = err
		s.status.Failures++
		s.log.Warn("fetching live metrics failed", zap.Uint64("seq", seq), zap.Error(err))
		return false
	}
	if s.overlap == OverlapLatestWins && seq <= s.applied {
		s.inst.StaleDropped.Inc()
		s.log.Debug("stale live metrics dropped", zap.Uint64("seq", seq), zap.Uint64("applied", s.applied))
		return false
	}
	if seq > s.applied {
		s.applied = seq
	}
	s.refreshUI(snap)
	s.status.LastError = nil
	s.status.Applied++
	s.status.LastSuccess = time.Now()
	return true
}

func (s *Session) refreshUI(snap Snapshot) {
	s.store.SetLatest(snap)
	for _, m := range snap.Metrics {
		if err := s.cards.CreateOrUpdate(m); err != nil {
			s.skipped(m, err)
			continue
		}
		if err := s.charts.CreateOrUpdate(m); err != nil {
			s.skipped(m, err)
		}
	}
	if el := s.doc.GetElementByID(LastUpdatedID); el != nil {
		el.SetText("Last updated: " + s.format.DateTime(snap.Timestamp))
	}
	s.inst.Charts.Set(float64(s.charts.Len()))
	s.inst.Cards.Set(float64(s.cards.Len()))
}

func (s *Session) skipped(m Metric, err error) {
	if !errors.Is(err, ErrSlugCollision) {
		s.log.Error("metric not shown", zap.String("metric", m.Name), zap.Error(err))
		return
	}
	if s.collided[m.Name] {
		s.log.Debug("metric skipped", zap.String("metric", m.Name), zap.Error(err))
		return
	}
	s.collided[m.Name] = true
	s.inst.Collisions.Inc()
	s.log.Warn("metric skipped", zap.String("metric", m.Name), zap.Error(err))
}

// LoadHistory fetches and applies the historical dataset
func (s *Session) LoadHistory(ctx context.Context) error {
	dataset, err := s.FetchHistory(ctx)
	s.ApplyHistory(dataset, err)
	return err
}

// Refresh runs one complete refresh cycle
func (s *Session) Refresh(ctx context.Context) error {
	seq := s.NextFetch()
	snap, err := s.FetchLatest(ctx)
	s.ApplyLatest(seq, snap, err)
	return err
}
