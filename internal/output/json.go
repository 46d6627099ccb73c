package output

import (
	"time"

	"github.com/manav03panchal/worklog/internal/model"
	"github.com/manav03panchal/worklog/internal/report"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// StatusOutput describes the daemon for `worklog daemon status`.
type StatusOutput struct {
	Running     bool          `json:"running"`
	PID         int           `json:"pid,omitempty"`
	Uptime      time.Duration `json:"-"`
	UptimeSecs  int64         `json:"uptime_seconds,omitempty"`
	Recording   bool          `json:"recording"`
	Interval    string        `json:"interval,omitempty"`
	LastCapture time.Time     `json:"last_capture,omitzero"`
	LastError   string        `json:"last_error,omitempty"`
	NextReport  time.Time     `json:"next_report,omitzero"`
	Root        string        `json:"root,omitempty"`
	Commits     int           `json:"commits,omitempty"`
}

// ConfigEntry is one settings key and its current value.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Help  string `json:"help,omitempty"`
}

// CaptureOutput represents a journal record in JSON output.
type CaptureOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Path       string `json:"path,omitempty"`
	TakenAt    string `json:"taken_at"`
	Compressed bool   `json:"compressed"`
	Committed  bool   `json:"committed"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// NewCaptureOutput creates a CaptureOutput from a record.
func NewCaptureOutput(r *model.CaptureRecord) *CaptureOutput {
	return &CaptureOutput{
		ID:         r.ID,
		Name:       r.Name,
		Path:       r.Path,
		TakenAt:    r.TakenAt.Format(time.RFC3339),
		Compressed: r.Compressed,
		Committed:  r.Committed,
		Error:      r.Error,
		DurationMs: r.DurationMs,
	}
}

// CapturesResponse is the history output in JSON.
type CapturesResponse struct {
	Day      string           `json:"day"`
	Captures []*CaptureOutput `json:"captures"`
	Failures int              `json:"failures"`
}

// ReportResponse is the report command output in JSON.
type ReportResponse struct {
	Status  string         `json:"status"`
	Day     string         `json:"day"`
	Path    string         `json:"path,omitempty"`
	Total   int            `json:"total"`
	Buckets []BucketOutput `json:"buckets,omitempty"`
}

// BucketOutput is one hour of a report.
type BucketOutput struct {
	Label string   `json:"label"`
	Items []string `json:"items"`
}

// NewReportResponse creates a ReportResponse. doc may be nil when the day
// had no screenshots.
func NewReportResponse(day time.Time, doc *report.Document) *ReportResponse {
	resp := &ReportResponse{Status: "empty", Day: day.Format("2006-01-02")}
	if doc == nil {
		return resp
	}
	resp.Status = "written"
	resp.Path = doc.Path
	resp.Total = doc.Total
	for _, b := range doc.Buckets {
		out := BucketOutput{Label: b.Label}
		for _, it := range b.Items {
			out.Items = append(out.Items, it.Name)
		}
		resp.Buckets = append(resp.Buckets, out)
	}
	return resp
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PrintStatus outputs daemon status in JSON format.
func (j *JSONFormatter) PrintStatus(s *StatusOutput) error {
	out := *s
	out.UptimeSecs = int64(s.Uptime.Seconds())
	return j.JSON(out)
}

// PrintConfig outputs settings in JSON format.
func (j *JSONFormatter) PrintConfig(path string, entries []ConfigEntry) error {
	return j.JSON(struct {
		Path    string        `json:"path"`
		Entries []ConfigEntry `json:"settings"`
	}{path, entries})
}

// PrintCaptures outputs a day's journal in JSON format.
func (j *JSONFormatter) PrintCaptures(day time.Time, records []*model.CaptureRecord) error {
	resp := CapturesResponse{Day: day.Format("2006-01-02"), Captures: []*CaptureOutput{}}
	for _, r := range records {
		resp.Captures = append(resp.Captures, NewCaptureOutput(r))
		if r.Failed() {
			resp.Failures++
		}
	}
	return j.JSON(resp)
}

// PrintReport outputs a report result in JSON format.
func (j *JSONFormatter) PrintReport(day time.Time, doc *report.Document) error {
	return j.JSON(NewReportResponse(day, doc))
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(status, errMsg, message string) error {
	return j.JSON(ErrorResponse{
		Status:  status,
		Error:   errMsg,
		Message: message,
	})
}
