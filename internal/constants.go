package livedash

import (
	"time"
)

const (
	// REFRESH_INTERVAL is the time between live snapshot fetches in seconds
	REFRESH_INTERVAL = 5

	// HISTORY_WINDOW is how far back range queries reach for history, in seconds
	HISTORY_WINDOW = 25 * 60

	// HISTORY_STEP is the spacing of history points, in seconds
	HISTORY_STEP = 30

	// PROBE_TIMEOUT bounds each endpoint probe during discovery, in seconds
	PROBE_TIMEOUT = 2
)

// RefreshDuration returns the refresh interval as a time.Duration
func RefreshDuration() time.Duration {
	return time.Duration(REFRESH_INTERVAL) * time.Second
}

// HistoryWindow returns the default range query window
func HistoryWindow() time.Duration {
	return time.Duration(HISTORY_WINDOW) * time.Second
}

// HistoryStep returns the default range query step
func HistoryStep() time.Duration {
	return time.Duration(HISTORY_STEP) * time.Second
}

func probeTimeout() time.Duration {
	return time.Duration(PROBE_TIMEOUT) * time.Second
}
