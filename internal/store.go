package livedash

import (
	"errors"
)

// ErrHistoryLoaded is returned when the historical dataset is replaced a second time
var ErrHistoryLoaded = errors.New("historical dataset already loaded")

// SnapshotStore holds the latest live snapshot and the historical dataset
type SnapshotStore struct {
	latest     Snapshot
	hasLatest  bool
	historical []Snapshot
	loaded     bool
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// SetLatest replaces the latest snapshot
func (s *SnapshotStore) SetLatest(snap Snapshot) {
	s.latest = snap
	s.hasLatest = true
}

// ReplaceHistorical stores the historical dataset. It can only happen once.
func (s *SnapshotStore) ReplaceHistorical(dataset []Snapshot) error {
	if s.loaded {
		return ErrHistoryLoaded
	}
	s.historical = dataset
	s.loaded = true
	return nil
}

func (s *SnapshotStore) Latest() (Snapshot, bool) {
	return s.latest, s.hasLatest
}

func (s *SnapshotStore) Historical() []Snapshot {
	return s.historical
}

func (s *SnapshotStore) HistoryLoaded() bool {
	return s.loaded
}

// trimHistory keeps the newest max entries, order preserved. max <= 0 keeps all.
func trimHistory(dataset []Snapshot, max int) []Snapshot {
	if max <= 0 || len(dataset) <= max {
		return dataset
	}
	return dataset[len(dataset)-max:]
}
