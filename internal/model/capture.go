package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CaptureRecord is the journal entry for one capture cycle, successful or not.
type CaptureRecord struct {
	Key        string    `json:"key"`
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	Path       string    `json:"path,omitempty"`
	TakenAt    time.Time `json:"taken_at"`
	Compressed bool      `json:"compressed"`
	Committed  bool      `json:"committed"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// SetKey sets the database key for this record.
func (r *CaptureRecord) SetKey(key string) {
	r.Key = key
}

// GetKey returns the database key for this record.
func (r *CaptureRecord) GetKey() string {
	return r.Key
}

// Failed reports whether the cycle produced no artifact.
func (r *CaptureRecord) Failed() bool {
	return r.Error != "" && r.Name == ""
}

// Duration returns how long the cycle took.
func (r *CaptureRecord) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

// CaptureDayPrefix is the key prefix shared by every record taken on day.
func CaptureDayPrefix(day time.Time) string {
	return fmt.Sprintf("%s:%s:", PrefixCapture, day.Format("20060102"))
}

// GenerateCaptureKey builds the journal key for a record. IDs are UUIDv7 so
// keys sort by creation time within a day.
func GenerateCaptureKey(takenAt time.Time, id string) string {
	return CaptureDayPrefix(takenAt) + id
}

// NewCaptureRecord creates a record with a fresh ID and key.
func NewCaptureRecord(takenAt time.Time) *CaptureRecord {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	r := &CaptureRecord{ID: id.String(), TakenAt: takenAt}
	r.Key = GenerateCaptureKey(takenAt, r.ID)
	return r
}
