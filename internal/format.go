package livedash

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slug derives the element key for a metric name: whitespace runs become a
// single hyphen and the result is lower-cased. Distinct names can collide.
func Slug(name string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(name, "-"))
}

// ChartID is the id of the canvas element and chart handle for a metric
func ChartID(name string) string {
	return "chart-" + Slug(name)
}

// StatID is the id of the stat card element for a metric
func StatID(name string) string {
	return "stat-" + Slug(name)
}

func statValueID(cardID string) string {
	return cardID + "-value"
}

// FormatValue prints a metric value without trailing zeros
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TimeFormatter renders snapshot timestamps for labels and the last-updated line
type TimeFormatter struct {
	Location *time.Location
}

func (f TimeFormatter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

func (f TimeFormatter) parse(ts string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", ts, f.location()); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Time formats a timestamp as a chart label (15:04:05). Unparseable input is returned as is.
func (f TimeFormatter) Time(ts string) string {
	t, ok := f.parse(ts)
	if !ok {
		return ts
	}
	return t.In(f.location()).Format("15:04:05")
}

// DateTime formats a timestamp for the last-updated line
func (f TimeFormatter) DateTime(ts string) string {
	t, ok := f.parse(ts)
	if !ok {
		return ts
	}
	return t.In(f.location()).Format("2006-01-02 15:04:05")
}
