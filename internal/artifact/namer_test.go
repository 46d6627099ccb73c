package artifact

import (
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamer_Name(t *testing.T) {
	n := NewNamer("/data/screenshots")
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("compressed", func(t *testing.T) {
		p := n.Name(ts, true)
		assert.Equal(t, filepath.Join("/data/screenshots", ".wl_20240102_030405.png"), p.Temp)
		assert.Equal(t, filepath.Join("/data/screenshots", "wl_20240102_030405.jpg"), p.Final)
	})

	t.Run("raw", func(t *testing.T) {
		p := n.Name(ts, false)
		assert.Equal(t, filepath.Join("/data/screenshots", ".wl_20240102_030405.png"), p.Temp)
		assert.Equal(t, filepath.Join("/data/screenshots", "wl_20240102_030405.png"), p.Final)
	})
}

func TestFileName_LexicalOrderIsChronological(t *testing.T) {
	base := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	offsets := []time.Duration{
		0,
		time.Second,
		9 * time.Second,
		10 * time.Second,
		59 * time.Second,
		time.Minute,
		9 * time.Minute,
		time.Hour,
		9*time.Hour + 59*time.Minute + 59*time.Second,
		10 * time.Hour,
		23*time.Hour + 59*time.Minute + 59*time.Second,
	}

	for _, compress := range []bool{true, false} {
		var names []string
		for _, off := range offsets {
			names = append(names, FileName(base.Add(off), compress))
		}
		sorted := append([]string(nil), names...)
		sort.Strings(sorted)
		assert.Equal(t, names, sorted)
	}

	for i := 1; i < len(offsets); i++ {
		t1 := base.Add(offsets[i-1])
		t2 := base.Add(offsets[i])
		assert.Less(t, FileName(t1, true), FileName(t2, true))
	}
}

func TestFileName_ZeroPadsDate(t *testing.T) {
	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	assert.Equal(t, "wl_20240203_040506.jpg", FileName(ts, true))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{"wl_20240101_090000.jpg", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), true},
		{"wl_20240101_235959.png", time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC), true},
		{"wl_20240101_246000.png", time.Time{}, false},
		{"wl_20240101_0900.jpg", time.Time{}, false},
		{"wl_20240101_090000.gif", time.Time{}, false},
		{".wl_20240101_090000.png", time.Time{}, false},
		{"wl_20240101_report.html", time.Time{}, false},
		{"screenshot.png", time.Time{}, false},
		{"wl_20241301_090000.jpg", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.name, time.UTC)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 12, 31, 18, 7, 42, 0, time.UTC)
	got, ok := Parse(FileName(ts, false), time.UTC)
	require.True(t, ok)
	assert.Equal(t, ts, got)
}

func TestDayHelpers(t *testing.T) {
	day := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "20240101", DayKey(day))
	assert.Equal(t, "wl_20240101_", DayPrefix(day))
	assert.Equal(t, "wl_20240101_*.{png,jpg}", DayPattern(day))
	assert.Equal(t, "wl_20240101_report.html", ReportName(day))
	assert.True(t, IsCompressed("wl_20240101_090000.jpg"))
	assert.False(t, IsCompressed("wl_20240101_090000.png"))
}

func TestParseReportName(t *testing.T) {
	day, ok := ParseReportName("wl_20240101_report.html", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), day)

	for _, name := range []string{"wl_20240101_090000.jpg", "wl_2024011_report.html", "report.html", "wl_20241301_report.html"} {
		_, ok := ParseReportName(name, time.UTC)
		assert.False(t, ok, name)
	}
}
