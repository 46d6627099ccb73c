package capture

import (
	"context"
	"os"
	"time"

	"github.com/manav03panchal/worklog/internal/archive"
	"github.com/manav03panchal/worklog/internal/artifact"
	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/model"
	"github.com/manav03panchal/worklog/internal/storage"
)

// NotificationTitle is the title of the capture-completed notification.
const NotificationTitle = "Screenshot saved"

// ConfigSource provides the current configuration.
type ConfigSource interface {
	Current() config.Configuration
}

// Archiver commits artifacts.
type Archiver interface {
	EnsureInitialized(ctx context.Context, dir string) error
	Record(ctx context.Context, dir, path, message string) error
}

// Notifier shows a desktop notification without blocking.
type Notifier interface {
	Notify(title, body string)
}

// Journal persists one record per cycle.
type Journal interface {
	Record(rec *model.CaptureRecord) error
}

// Options configures an Executor. Journal is optional.
type Options struct {
	Clock      clock.Clock
	Config     ConfigSource
	Device     Device
	Transcoder Transcoder
	Archive    Archiver
	Notifier   Notifier
	Journal    Journal
	// Timeout bounds the raw capture call. Zero uses the runtime default.
	Timeout time.Duration
}

// Executor performs capture cycles.
type Executor struct {
	opts Options
}

// NewExecutor creates an executor.
func NewExecutor(opts Options) *Executor {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Transcoder == nil {
		opts.Transcoder = JPEGTranscoder{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.Global.Capture.Timeout
	}
	return &Executor{opts: opts}
}

// Capture runs one cycle. The steps are strictly ordered: the artifact is on
// disk under its final name before it is committed, so a commit never refers
// to a missing file.
//
// Device and transcode failures return a CaptureError and no artifact. An
// archive failure returns the artifact together with an ArchiveError; the
// file stays on disk.
func (e *Executor) Capture(ctx context.Context) (art *artifact.Artifact, err error) {
	cfg := e.opts.Config.Current()
	dir := cfg.ScreenshotDir()
	started := e.opts.Clock.Now()

	rec := model.NewCaptureRecord(started)
	defer func() {
		e.journal(ctx, rec, art, err, started)
	}()

	if err := storage.EnsureDirectory(dir); err != nil {
		return nil, errors.NewCaptureError("prepare", dir, err)
	}

	paths := artifact.NewNamer(dir).Name(started, cfg.CompressToJpeg)

	cctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	err = e.opts.Device.CaptureToFile(cctx, paths.Temp)
	cancel()
	if err != nil {
		removeQuiet(paths.Temp)
		return nil, errors.NewCaptureError("capture", paths.Temp, err)
	}

	if cfg.CompressToJpeg {
		if err := e.opts.Transcoder.Transcode(ctx, paths.Temp, paths.Final, cfg.JpegQuality); err != nil {
			removeQuiet(paths.Temp)
			removeQuiet(paths.Final)
			return nil, errors.NewCaptureError("transcode", paths.Final, err)
		}
		removeQuiet(paths.Temp)
	} else if err := os.Rename(paths.Temp, paths.Final); err != nil {
		removeQuiet(paths.Temp)
		return nil, errors.NewCaptureError("rename", paths.Final, err)
	}

	art = &artifact.Artifact{
		Name:       artifact.FileName(started, cfg.CompressToJpeg),
		Path:       paths.Final,
		TakenAt:    started,
		Compressed: cfg.CompressToJpeg,
	}

	var archiveErr error
	if cfg.GitEnabled {
		archiveErr = e.commit(ctx, dir, art)
		rec.Committed = archiveErr == nil
	}

	if cfg.Notifications && e.opts.Notifier != nil {
		e.opts.Notifier.Notify(NotificationTitle, art.Name)
	}

	logging.InfoContext(ctx, "capture saved",
		logging.KeyArtifact, art.Name,
		logging.KeyDuration, e.opts.Clock.Now().Sub(started).Milliseconds(),
	)
	return art, archiveErr
}

func (e *Executor) commit(ctx context.Context, dir string, art *artifact.Artifact) error {
	if err := e.opts.Archive.EnsureInitialized(ctx, dir); err != nil {
		return err
	}
	return e.opts.Archive.Record(ctx, dir, art.Path, archive.CommitMessage(art.Name))
}

func (e *Executor) journal(ctx context.Context, rec *model.CaptureRecord, art *artifact.Artifact, err error, started time.Time) {
	if e.opts.Journal == nil {
		return
	}
	if art != nil {
		rec.Name = art.Name
		rec.Path = art.Path
		rec.Compressed = art.Compressed
	}
	if err != nil {
		rec.Error = err.Error()
	}
	rec.DurationMs = e.opts.Clock.Now().Sub(started).Milliseconds()

	if jerr := e.opts.Journal.Record(rec); jerr != nil {
		logging.WarnContext(ctx, "failed to journal capture", logging.Err(jerr))
	}
}

func removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove file", logging.KeyPath, path, logging.Err(err))
	}
}
