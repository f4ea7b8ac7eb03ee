package lsp

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

// DataWatcher reloads a DataSource when one of its files changes on disk.
// It watches the parent directories so that editors replacing a file by
// rename are noticed too.
type DataWatcher struct {
	watcher  *fsnotify.Watcher
	source   *DataSource
	onReload func()
	log      commonlog.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending *time.Timer
}

// NewDataWatcher creates a watcher for source. onReload, when not nil, is
// called after every successful reload.
func NewDataWatcher(source *DataSource, onReload func()) (*DataWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &DataWatcher{
		watcher:  fsWatcher,
		source:   source,
		onReload: onReload,
		log:      commonlog.GetLogger("trail.lsp"),
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching. The event loop ends when ctx is done or the
// watcher is closed.
func (w *DataWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for _, path := range w.source.Paths() {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.log.Infof("watching %s", dir)
	}

	go w.eventLoop(ctx)
	return nil
}

func (w *DataWatcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.isWatched(event.Name) {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("watcher error: %v", err)
		}
	}
}

func (w *DataWatcher) isWatched(name string) bool {
	for _, path := range w.source.Paths() {
		if filepath.Clean(path) == filepath.Clean(name) {
			return true
		}
	}
	return false
}

// schedule reloads once changes have settled for the debounce interval.
func (w *DataWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.reload)
}

func (w *DataWatcher) reload() {
	if err := w.source.Load(); err != nil {
		w.log.Errorf("reload failed: %v", err)
		return
	}
	w.log.Infof("reloaded %v", w.source.Paths())
	if w.onReload != nil {
		w.onReload()
	}
}

func (w *DataWatcher) Close() error {
	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
