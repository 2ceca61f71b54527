package livedash

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore(t *testing.T) {
	store := NewSnapshotStore()
	_, ok := store.Latest()
	assert.False(t, ok)
	assert.False(t, store.HistoryLoaded())
	assert.Empty(t, store.Historical())

	store.SetLatest(snapshot("T1", metric("CPU", 1, "")))
	store.SetLatest(snapshot("T2", metric("CPU", 2, "")))
	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, "T2", latest.Timestamp)
}

func TestSnapshotStoreHistoryIsWriteOnce(t *testing.T) {
	store := NewSnapshotStore()
	first := []Snapshot{snapshot("T1", metric("CPU", 1, ""))}
	require.NoError(t, store.ReplaceHistorical(first))
	assert.True(t, store.HistoryLoaded())

	err := store.ReplaceHistorical([]Snapshot{snapshot("T9")})
	assert.ErrorIs(t, err, ErrHistoryLoaded)
	assert.Equal(t, first, store.Historical())
}

func TestSnapshotStoreEmptyHistoryCountsAsLoaded(t *testing.T) {
	store := NewSnapshotStore()
	require.NoError(t, store.ReplaceHistorical(nil))
	assert.True(t, store.HistoryLoaded())
	assert.ErrorIs(t, store.ReplaceHistorical(nil), ErrHistoryLoaded)
}

func TestTrimHistory(t *testing.T) {
	dataset := []Snapshot{snapshot("T1"), snapshot("T2"), snapshot("T3")}

	assert.Len(t, trimHistory(dataset, 0), 3)
	assert.Len(t, trimHistory(dataset, -1), 3)
	assert.Len(t, trimHistory(dataset, 5), 3)

	trimmed := trimHistory(dataset, 2)
	require.Len(t, trimmed, 2)
	assert.Equal(t, "T2", trimmed[0].Timestamp)
	assert.Equal(t, "T3", trimmed[1].Timestamp)
}

func newMerger(history []Snapshot, latest *Snapshot) *HistoryMerger {
	store := NewSnapshotStore()
	if history != nil {
		_ = store.ReplaceHistorical(history)
	}
	if latest != nil {
		store.SetLatest(*latest)
	}
	return NewHistoryMerger(store, TimeFormatter{Location: time.UTC})
}

func TestSeriesLengthFollowsPresence(t *testing.T) {
	history := []Snapshot{
		snapshot("2024-05-01T10:00:00Z", metric("CPU", 10, ""), metric("Memory", 100, "")),
		snapshot("2024-05-01T10:00:30Z", metric("CPU", 11, "")),
		snapshot("2024-05-01T10:01:00Z", metric("CPU", 12, ""), metric("Memory", 120, "")),
	}
	latest := snapshot("2024-05-01T10:01:30Z", metric("CPU", 13, ""))
	merger := newMerger(history, &latest)

	cpu := merger.Series("CPU")
	assert.Equal(t, 4, cpu.Len())
	assert.Equal(t, []float64{10, 11, 12, 13}, cpu.Values)
	assert.Equal(t, []string{"10:00:00", "10:00:30", "10:01:00", "10:01:30"}, cpu.Timestamps)

	memory := merger.Series("Memory")
	assert.Equal(t, 2, memory.Len())
	assert.Equal(t, []float64{100, 120}, memory.Values)

	assert.Equal(t, 0, merger.Series("Disk").Len())
}

func TestSeriesWithoutHistory(t *testing.T) {
	latest := snapshot("2024-05-01T10:00:00Z", metric("CPU", 5, ""))
	series := newMerger(nil, &latest).Series("CPU")
	assert.Equal(t, []float64{5}, series.Values)
	assert.Equal(t, []string{"10:00:00"}, series.Timestamps)
}

func TestSeriesAppendsLatestEvenWhenOutOfOrder(t *testing.T) {
	history := []Snapshot{snapshot("2024-05-01T10:00:00Z", metric("CPU", 10, ""))}
	latest := snapshot("2024-05-01T09:00:00Z", metric("CPU", 9, ""))
	series := newMerger(history, &latest).Series("CPU")
	assert.Equal(t, []float64{10, 9}, series.Values)
	assert.Equal(t, []string{"10:00:00", "09:00:00"}, series.Timestamps)
}

func TestSeriesKeepsHistoryDuplicates(t *testing.T) {
	history := []Snapshot{
		snapshot("2024-05-01T10:00:00Z", metric("CPU", 10, "")),
		snapshot("2024-05-01T10:00:00Z", metric("CPU", 10, "")),
	}
	latest := snapshot("2024-05-01T10:00:00Z", metric("CPU", 10, ""))
	assert.Equal(t, 3, newMerger(history, &latest).Series("CPU").Len())
}
