package livedash

// HistoryMerger builds per-metric series from the store
type HistoryMerger struct {
	store  *SnapshotStore
	format TimeFormatter
}

func NewHistoryMerger(store *SnapshotStore, format TimeFormatter) *HistoryMerger {
	return &HistoryMerger{store: store, format: format}
}

// Series returns every historical point for name in stored order, followed by
// the latest snapshot's value if it has one. The latest point is appended even
// when its timestamp repeats or precedes a historical one.
func (h *HistoryMerger) Series(name string) MetricSeries {
	historical := h.store.Historical()
	series := MetricSeries{
		Timestamps: make([]string, 0, len(historical)+1),
		Values:     make([]float64, 0, len(historical)+1),
	}
	for _, snap := range historical {
		if m, ok := snap.Find(name); ok {
			series.Timestamps = append(series.Timestamps, h.format.Time(snap.Timestamp))
			series.Values = append(series.Values, m.Value)
		}
	}
	if latest, ok := h.store.Latest(); ok {
		if m, ok := latest.Find(name); ok {
			series.Timestamps = append(series.Timestamps, h.format.Time(latest.Timestamp))
			series.Values = append(series.Values, m.Value)
		}
	}
	return series
}
