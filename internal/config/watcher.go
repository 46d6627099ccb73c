package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/logging"
)

// Watcher reloads a Store when its document changes on disk, so edits made
// by another process reach the live schedulers.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Watch starts watching the directory of the store's document. The directory
// is watched rather than the file because the store replaces the file with
// an atomic rename.
func Watch(store *Store, debounce time.Duration) (*Watcher, error) {
	dir := filepath.Dir(store.Path())
	if err := ensureDir(dir); err != nil {
		return nil, errors.NewConfigError("watch", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewConfigError("watch", dir, err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, errors.NewConfigError("watch", dir, err)
	}

	if debounce <= 0 {
		debounce = Global.Watcher.Debounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		store:    store,
		watcher:  fw,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("config watcher error", logging.Err(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Base(event.Name) != filepath.Base(w.store.Path()) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if w.ctx.Err() != nil {
			return
		}
		if _, changed := w.store.Reload(); changed {
			logging.Info("settings reloaded", logging.KeyPath, w.store.Path())
		}
	})
}
