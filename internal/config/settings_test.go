package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/worklog/internal/errors"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, 60000, d.Interval)
	assert.False(t, d.AutoStart)
	assert.True(t, d.Notifications)
	assert.False(t, d.StartAtLogin)
	assert.True(t, d.GitEnabled)
	assert.True(t, d.CompressToJpeg)
	assert.Equal(t, 80, d.JpegQuality)
	assert.True(t, d.CreateDailyReport)
	assert.Equal(t, "23:00", d.DailyReportTime)
	assert.Empty(t, d.SaveDirectory)
	assert.NoError(t, d.Validate())
}

func TestConfiguration_Dirs(t *testing.T) {
	c := Defaults()
	c.SaveDirectory = "/srv/wl"
	assert.Equal(t, "/srv/wl", c.Root())
	assert.Equal(t, filepath.Join("/srv/wl", "screenshots"), c.ScreenshotDir())
	assert.Equal(t, filepath.Join("/srv/wl", "reports"), c.ReportDir())

	c.SaveDirectory = ""
	assert.Equal(t, AppName, filepath.Base(c.Root()))
}

func TestConfiguration_IntervalDuration(t *testing.T) {
	c := Defaults()
	assert.Equal(t, time.Minute, c.IntervalDuration())
}

func TestConfiguration_ApplyLeavesNilFields(t *testing.T) {
	c := Defaults()
	q := 10
	got := c.Apply(Partial{JpegQuality: &q})

	want := Defaults()
	want.JpegQuality = 10
	assert.Equal(t, want, got)
	assert.True(t, Partial{}.IsEmpty())
	assert.False(t, Partial{JpegQuality: &q}.IsEmpty())
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"23:00", TimeOfDay{23, 0}, false},
		{"09:05", TimeOfDay{9, 5}, false},
		{"9:05", TimeOfDay{9, 5}, false},
		{"00:00", TimeOfDay{0, 0}, false},
		{"24:00", TimeOfDay{}, true},
		{"12:60", TimeOfDay{}, true},
		{"noon", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidTimeOfDay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDay_String(t *testing.T) {
	assert.Equal(t, "07:03", TimeOfDay{7, 3}.String())
}

func TestValidate(t *testing.T) {
	c := Defaults()
	c.Interval = -5
	c.JpegQuality = -1
	c.DailyReportTime = "x"

	err := c.Validate()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 3)
	assert.Equal(t, "interval", fieldErrs[0].Field)
	assert.Equal(t, "jpegQuality", fieldErrs[1].Field)
	assert.Equal(t, "dailyReportTime", fieldErrs[2].Field)
}

func TestValidate_QualityBounds(t *testing.T) {
	for _, q := range []int{0, 100} {
		c := Defaults()
		c.JpegQuality = q
		assert.NoError(t, c.Validate())
	}
}

func TestValidate_SaveDirectory(t *testing.T) {
	c := Defaults()
	c.SaveDirectory = "/srv/wl\n"

	err := c.Validate()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "saveDirectory", fieldErrs[0].Field)

	fixed, reset := sanitize(c)
	assert.Equal(t, []string{"saveDirectory"}, reset)
	assert.Empty(t, fixed.SaveDirectory)
}
