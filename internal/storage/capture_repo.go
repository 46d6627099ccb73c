package storage

import (
	"time"

	"github.com/manav03panchal/worklog/internal/model"
)

// CaptureRepo is the capture journal: one record per capture cycle.
type CaptureRepo struct {
	db        *DB
	retention time.Duration
}

// NewCaptureRepo creates a new capture repository. Records expire after
// retention; zero keeps them forever.
func NewCaptureRepo(db *DB, retention time.Duration) *CaptureRepo {
	return &CaptureRepo{db: db, retention: retention}
}

// Record stores r. A record without a key gets one derived from TakenAt.
func (r *CaptureRepo) Record(rec *model.CaptureRecord) error {
	if rec.Key == "" {
		rec.Key = model.GenerateCaptureKey(rec.TakenAt, rec.ID)
	}
	return r.db.Set(rec, r.retention)
}

// Get retrieves one record by key.
func (r *CaptureRepo) Get(key string) (*model.CaptureRecord, error) {
	rec := &model.CaptureRecord{}
	if err := r.db.Get(key, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListDay returns every record taken on day, oldest first.
func (r *CaptureRepo) ListDay(day time.Time) ([]*model.CaptureRecord, error) {
	return GetAllByPrefix(r.db, model.CaptureDayPrefix(day), 0, func() *model.CaptureRecord {
		return &model.CaptureRecord{}
	})
}

// CountDay returns how many records were taken on day.
func (r *CaptureRepo) CountDay(day time.Time) (int, error) {
	return r.db.CountByPrefix(model.CaptureDayPrefix(day))
}

// DaySummary aggregates one day of the journal.
type DaySummary struct {
	Captures  int
	Failures  int
	Committed int
	First     time.Time
	Last      time.Time
}

// Summarize aggregates the records taken on day.
func (r *CaptureRepo) Summarize(day time.Time) (DaySummary, error) {
	recs, err := r.ListDay(day)
	if err != nil {
		return DaySummary{}, err
	}
	var s DaySummary
	for _, rec := range recs {
		if rec.Failed() {
			s.Failures++
			continue
		}
		s.Captures++
		if rec.Committed {
			s.Committed++
		}
		if s.First.IsZero() || rec.TakenAt.Before(s.First) {
			s.First = rec.TakenAt
		}
		if rec.TakenAt.After(s.Last) {
			s.Last = rec.TakenAt
		}
	}
	return s, nil
}
