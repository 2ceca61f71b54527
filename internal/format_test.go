package livedash

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"CPU", "cpu"},
		{"Cache Hit Ratio", "cache-hit-ratio"},
		{"Memory   usage\t(mb)", "memory-usage-(mb)"},
		{" lead", "-lead"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.name))
		})
	}
}

func TestSlugCollides(t *testing.T) {
	assert.Equal(t, ChartID("Hit Ratio"), ChartID("hit  ratio"))
	assert.Equal(t, "stat-hit-ratio", StatID("Hit Ratio"))
	assert.Equal(t, "stat-hit-ratio-value", statValueID(StatID("Hit Ratio")))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "20", FormatValue(20))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, "0.125", FormatValue(0.125))
	assert.Equal(t, "-3", FormatValue(-3))
}

func TestTimeFormatter(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	f := TimeFormatter{Location: berlin}

	assert.Equal(t, "11:00:05", f.Time("2024-05-01T10:00:05Z"))
	assert.Equal(t, "11:00:05", f.Time("2024-05-01T10:00:05.123456Z"))
	assert.Equal(t, "2024-05-01 11:00:05", f.DateTime("2024-05-01T10:00:05Z"))
	assert.Equal(t, "10:00:05", f.Time("2024-05-01T10:00:05"))
}

func TestTimeFormatterUnparseable(t *testing.T) {
	f := TimeFormatter{Location: time.UTC}
	assert.Equal(t, "T1", f.Time("T1"))
	assert.Equal(t, "yesterday", f.DateTime("yesterday"))
}
