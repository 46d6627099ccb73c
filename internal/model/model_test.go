package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCaptureRecord(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	r := NewCaptureRecord(at)

	assert.Len(t, r.ID, 36)
	assert.Equal(t, at, r.TakenAt)
	assert.Equal(t, "capture:20240101:"+r.ID, r.GetKey())
	assert.True(t, strings.HasPrefix(r.Key, CaptureDayPrefix(at)))
}

func TestCaptureRecordKeysSortByCreation(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	a := NewCaptureRecord(at)
	time.Sleep(2 * time.Millisecond)
	b := NewCaptureRecord(at)
	assert.Less(t, a.Key, b.Key)
}

func TestCaptureRecordSetGetKey(t *testing.T) {
	r := &CaptureRecord{}
	r.SetKey("capture:20240101:x")
	assert.Equal(t, "capture:20240101:x", r.GetKey())
}

func TestCaptureRecordFailed(t *testing.T) {
	assert.True(t, (&CaptureRecord{Error: "permission denied"}).Failed())
	assert.False(t, (&CaptureRecord{Name: "wl_20240101_090000.jpg"}).Failed())
	// Archive failures still produce an artifact.
	assert.False(t, (&CaptureRecord{Name: "wl_20240101_090000.jpg", Error: "commit failed"}).Failed())
}

func TestCaptureRecordDuration(t *testing.T) {
	r := &CaptureRecord{DurationMs: 1500}
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
}
