package namespace

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Debounce is how long to wait after the last change before reloading.
	// Default: 50ms
	Debounce time.Duration
}

func DefaultWatcherOptions() WatcherOptions {
	return WatcherOptions{Debounce: 50 * time.Millisecond}
}

// Watcher reloads a Table as soon as its file changes, instead of waiting
// for the next Resolver construction.
//
// The directory of the table's path at Start is watched; events for other
// files are ignored. If the table is redirected to a file in another
// directory, restart the watcher.
type Watcher struct {
	table    *Table
	fsw      *fsnotify.Watcher
	debounce time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func NewWatcher(t *Table, opts *WatcherOptions) (*Watcher, error) {
	if opts == nil {
		defaults := DefaultWatcherOptions()
		opts = &defaults
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		table:    t,
		fsw:      fsw,
		debounce: opts.Debounce,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The loop exits when ctx is canceled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	path, err := filepath.Abs(w.table.Path())
	if err != nil {
		return &IOError{Op: "watch", Path: w.table.Path(), Err: err}
	}
	if err := w.fsw.Add(filepath.Dir(path)); err != nil {
		return &IOError{Op: "watch", Path: path, Err: err}
	}
	go w.loop(ctx)
	return nil
}

func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.table.logger.Warn("namespace watcher error", slog.String("error", err.Error()))
		case <-fire:
			fire = nil
			w.table.ReloadIfNeeded()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Chmod) {
		return false
	}
	path, err := filepath.Abs(w.table.Path())
	if err != nil {
		return false
	}
	return filepath.Clean(ev.Name) == path
}
