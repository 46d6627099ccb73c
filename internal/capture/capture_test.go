package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	wlerrors "github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/executil"
	"github.com/manav03panchal/worklog/internal/model"
)

// =============================================================================
// Fakes
// =============================================================================

type staticConfig struct{ cfg config.Configuration }

func (s staticConfig) Current() config.Configuration { return s.cfg }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writingDevice(t *testing.T) (Device, *[]string) {
	data := pngBytes(t)
	var calls []string
	return DeviceFunc(func(_ context.Context, path string) error {
		calls = append(calls, path)
		return os.WriteFile(path, data, 0o644)
	}), &calls
}

type fakeArchive struct {
	mu       sync.Mutex
	calls    []string
	initErr  error
	recordFn func(path string) error
}

func (a *fakeArchive) EnsureInitialized(_ context.Context, dir string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, "init "+dir)
	return a.initErr
}

func (a *fakeArchive) Record(_ context.Context, _ string, path, message string) error {
	a.mu.Lock()
	a.calls = append(a.calls, "record "+filepath.Base(path)+" "+message)
	fn := a.recordFn
	a.mu.Unlock()
	if fn != nil {
		return fn(path)
	}
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (n *fakeNotifier) Notify(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
}

type fakeJournal struct {
	recs []*model.CaptureRecord
	err  error
}

func (j *fakeJournal) Record(rec *model.CaptureRecord) error {
	j.recs = append(j.recs, rec)
	return j.err
}

type harness struct {
	exec     *Executor
	cfg      config.Configuration
	dir      string
	archive  *fakeArchive
	notifier *fakeNotifier
	journal  *fakeJournal
	devCalls *[]string
}

var captureTime = time.Date(2024, 1, 1, 9, 30, 15, 0, time.Local)

func newHarness(t *testing.T, mutate func(*config.Configuration), dev Device) *harness {
	t.Helper()
	cfg := config.Defaults()
	cfg.SaveDirectory = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		cfg:      cfg,
		dir:      cfg.ScreenshotDir(),
		archive:  &fakeArchive{},
		notifier: &fakeNotifier{},
		journal:  &fakeJournal{},
	}
	if dev == nil {
		dev, h.devCalls = writingDevice(t)
	}
	h.exec = NewExecutor(Options{
		Clock:    clock.NewFake(captureTime),
		Config:   staticConfig{cfg},
		Device:   dev,
		Archive:  h.archive,
		Notifier: h.notifier,
		Journal:  h.journal,
	})
	return h
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// =============================================================================
// Executor
// =============================================================================

func TestCapture_CompressedCycle(t *testing.T) {
	h := newHarness(t, nil, nil)

	art, err := h.exec.Capture(context.Background())
	require.NoError(t, err)
	require.NotNil(t, art)

	assert.Equal(t, "wl_20240101_093015.jpg", art.Name)
	assert.Equal(t, filepath.Join(h.dir, art.Name), art.Path)
	assert.True(t, art.Compressed)
	assert.Equal(t, captureTime, art.TakenAt)

	// Raw capture went to the hidden temp path, which is gone afterwards.
	require.Len(t, *h.devCalls, 1)
	assert.Equal(t, filepath.Join(h.dir, ".wl_20240101_093015.png"), (*h.devCalls)[0])
	assert.Equal(t, []string{art.Name}, listDir(t, h.dir))

	f, err := os.Open(art.Path)
	require.NoError(t, err)
	defer f.Close()
	_, err = jpeg.Decode(f)
	require.NoError(t, err, "final artifact is a JPEG")

	assert.Equal(t, []string{
		"init " + h.dir,
		"record wl_20240101_093015.jpg Add screenshot wl_20240101_093015.jpg",
	}, h.archive.calls)

	assert.Equal(t, []string{NotificationTitle}, h.notifier.titles)
	assert.Equal(t, []string{art.Name}, h.notifier.bodies)

	require.Len(t, h.journal.recs, 1)
	rec := h.journal.recs[0]
	assert.Equal(t, art.Name, rec.Name)
	assert.True(t, rec.Committed)
	assert.Empty(t, rec.Error)
}

func TestCapture_RawCycle(t *testing.T) {
	h := newHarness(t, func(c *config.Configuration) {
		c.CompressToJpeg = false
		c.GitEnabled = false
		c.Notifications = false
	}, nil)

	art, err := h.exec.Capture(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "wl_20240101_093015.png", art.Name)
	assert.False(t, art.Compressed)
	assert.Equal(t, []string{art.Name}, listDir(t, h.dir))

	data, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), data, "renamed without re-encoding")

	assert.Empty(t, h.archive.calls)
	assert.Empty(t, h.notifier.titles)
	assert.False(t, h.journal.recs[0].Committed)
}

func TestCapture_FileExistsBeforeCommit(t *testing.T) {
	h := newHarness(t, nil, nil)
	var seen bool
	h.archive.recordFn = func(path string) error {
		_, err := os.Stat(path)
		seen = err == nil
		return nil
	}

	_, err := h.exec.Capture(context.Background())
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestCapture_DeviceFailure(t *testing.T) {
	denied := DeviceFunc(func(_ context.Context, path string) error {
		// A partial temp file must not survive.
		_ = os.WriteFile(path, []byte("x"), 0o644)
		return wlerrors.ErrPermissionDenied
	})
	h := newHarness(t, nil, denied)

	art, err := h.exec.Capture(context.Background())
	require.Error(t, err)
	assert.Nil(t, art)
	assert.True(t, wlerrors.IsCaptureError(err))
	assert.ErrorIs(t, err, wlerrors.ErrPermissionDenied)

	assert.Empty(t, listDir(t, h.dir))
	assert.Empty(t, h.archive.calls)
	assert.Empty(t, h.notifier.titles)

	require.Len(t, h.journal.recs, 1)
	assert.True(t, h.journal.recs[0].Failed())
}

func TestCapture_TranscodeFailure(t *testing.T) {
	garbage := DeviceFunc(func(_ context.Context, path string) error {
		return os.WriteFile(path, []byte("not an image"), 0o644)
	})
	h := newHarness(t, nil, garbage)

	art, err := h.exec.Capture(context.Background())
	require.Error(t, err)
	assert.Nil(t, art)

	ce, ok := wlerrors.AsCaptureError(err)
	require.True(t, ok)
	assert.Equal(t, "transcode", ce.Op)
	assert.Empty(t, listDir(t, h.dir))
	assert.Empty(t, h.archive.calls)
}

func TestCapture_ArchiveFailureKeepsArtifact(t *testing.T) {
	commitErr := wlerrors.NewArchiveError("commit", "dir", errors.New("boom"))
	h := newHarness(t, nil, nil)
	h.archive.recordFn = func(string) error { return commitErr }

	art, err := h.exec.Capture(context.Background())
	require.Error(t, err)
	require.NotNil(t, art)
	assert.True(t, wlerrors.IsArchiveError(err))
	assert.FileExists(t, art.Path)

	// Notification and journal still happen.
	assert.Len(t, h.notifier.titles, 1)
	rec := h.journal.recs[0]
	assert.False(t, rec.Committed)
	assert.Equal(t, art.Name, rec.Name)
	assert.NotEmpty(t, rec.Error)
	assert.False(t, rec.Failed())
}

func TestCapture_JournalFailureIsIgnored(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.journal.err = errors.New("journal full")

	_, err := h.exec.Capture(context.Background())
	assert.NoError(t, err)
}

func TestCapture_Timeout(t *testing.T) {
	slow := DeviceFunc(func(ctx context.Context, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cfg := config.Defaults()
	cfg.SaveDirectory = t.TempDir()
	e := NewExecutor(Options{
		Clock:   clock.NewFake(captureTime),
		Config:  staticConfig{cfg},
		Device:  slow,
		Archive: &fakeArchive{},
		Timeout: 10 * time.Millisecond,
	})

	_, err := e.Capture(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// =============================================================================
// Transcoder
// =============================================================================

func TestJPEGTranscoder(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.jpg")
	require.NoError(t, os.WriteFile(src, pngBytes(t), 0o644))

	require.NoError(t, JPEGTranscoder{}.Transcode(context.Background(), src, dst, 0))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	_, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestJPEGTranscoder_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := JPEGTranscoder{}.Transcode(context.Background(), filepath.Join(dir, "nope.png"), filepath.Join(dir, "out.jpg"), 80)
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.jpg"))
}

func TestClampQuality(t *testing.T) {
	assert.Equal(t, 1, clampQuality(0))
	assert.Equal(t, 80, clampQuality(80))
	assert.Equal(t, 100, clampQuality(101))
}

// =============================================================================
// Devices
// =============================================================================

func TestSelectTool(t *testing.T) {
	only := func(names ...string) func(string) bool {
		return func(n string) bool {
			for _, x := range names {
				if x == n {
					return true
				}
			}
			return false
		}
	}

	tl, ok := selectTool(linuxTools, only("scrot", "grim"))
	require.True(t, ok)
	assert.Equal(t, "grim", tl.name)

	_, ok = selectTool(linuxTools, only())
	assert.False(t, ok)

	name, args, err := toolCommand(linuxTools, only("gnome-screenshot"))("/tmp/x.png")
	require.NoError(t, err)
	assert.Equal(t, "gnome-screenshot", name)
	assert.Equal(t, []string{"-f", "/tmp/x.png"}, args)

	_, _, err = toolCommand(linuxTools, only())("/tmp/x.png")
	assert.ErrorIs(t, err, wlerrors.ErrNoCaptureTool)

	gate := toolGate{tools: linuxTools, look: only()}
	assert.False(t, gate.IsGranted())
	assert.ErrorIs(t, gate.RequestAccess(), wlerrors.ErrNoCaptureTool)

	gate.look = only("scrot")
	assert.True(t, gate.IsGranted())
	assert.NoError(t, gate.RequestAccess())
}

func TestCommandDevice(t *testing.T) {
	data := pngBytes(t)
	rec := &executil.RecordingExecutor{
		Hook: func(_, _ string, args []string) error {
			return os.WriteFile(args[len(args)-1], data, 0o644)
		},
	}
	d := &commandDevice{exec: rec, command: toolCommand(linuxTools, func(n string) bool { return n == "scrot" })}

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, d.CaptureToFile(context.Background(), path))
	assert.Equal(t, "scrot -o "+path, rec.Recorded()[0].String())
}

func TestCommandDevice_EmptyOutput(t *testing.T) {
	rec := &executil.RecordingExecutor{}
	cmd := func(p string) (string, []string, error) { return "screencapture", []string{"-x", p}, nil }
	path := filepath.Join(t.TempDir(), "shot.png")

	err := (&commandDevice{exec: rec, command: cmd, emptyIsDenied: true}).CaptureToFile(context.Background(), path)
	assert.ErrorIs(t, err, wlerrors.ErrPermissionDenied)

	err = (&commandDevice{exec: rec, command: cmd}).CaptureToFile(context.Background(), path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, wlerrors.ErrPermissionDenied)
}

func TestCommandDevice_CommandFailure(t *testing.T) {
	boom := errors.New("exit status 1")
	rec := &executil.RecordingExecutor{Errors: map[string]error{"grim": boom}}
	d := &commandDevice{exec: rec, command: toolCommand(linuxTools, func(n string) bool { return n == "grim" })}

	err := d.CaptureToFile(context.Background(), filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, boom)
}

func TestStaticGate(t *testing.T) {
	assert.True(t, StaticGate(true).IsGranted())
	assert.NoError(t, StaticGate(true).RequestAccess())
	assert.False(t, StaticGate(false).IsGranted())
	assert.ErrorIs(t, StaticGate(false).RequestAccess(), wlerrors.ErrPermissionDenied)
}
