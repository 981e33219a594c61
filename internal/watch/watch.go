// Package watch re-runs the audit whenever the datasource list or the rule
// file changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault is the default debounce interval for file events.
// Editors write config files in bursts (truncate, write, rename).
const debounceDefault = 500 * time.Millisecond

// pollDefault is the default polling interval when fsnotify is unavailable.
const pollDefault = 5 * time.Second

// Watcher triggers a handler when any of a fixed set of files changes.
type Watcher struct {
	files    map[string]bool // absolute paths
	dirs     []string
	handler  func()
	debounce time.Duration
}

// New creates a watcher over the given files. The handler runs once per
// debounced burst of changes.
func New(files []string, handler func()) (*Watcher, error) {
	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		handler:  handler,
		debounce: debounceDefault,
	}
	dirSeen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !dirSeen[dir] {
			dirSeen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Run watches the files' directories. Blocks until ctx is cancelled.
// Directories are watched rather than the files themselves so that
// rename-into-place saves are still observed.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	// Single debounce timer, reset on each event. Initialized as stopped;
	// first event starts it.
	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounceTimer.C:
			if pending {
				pending = false
				w.handler()
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}

			pending = true
			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_ = err
		}
	}
}

// Poll watches by modification time, as a fallback when fsnotify cannot
// watch the directories (e.g. NFS). Blocks until ctx is cancelled.
func (w *Watcher) Poll(ctx context.Context, interval time.Duration) error {
	if interval == 0 {
		interval = pollDefault
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := w.modTimes()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := w.modTimes()
			changed := false
			for f, t := range now {
				if !t.Equal(last[f]) {
					changed = true
					break
				}
			}
			last = now
			if changed {
				w.handler()
			}
		}
	}
}

func (w *Watcher) modTimes() map[string]time.Time {
	out := make(map[string]time.Time, len(w.files))
	for f := range w.files {
		if info, err := os.Stat(f); err == nil {
			out[f] = info.ModTime()
		}
	}
	return out
}
