// Package watch follows a growing journal file and triggers a full
// reload on change. Each reload constructs a fresh frozen index; there
// is no incremental update path.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the write bursts journal flushes produce.
const debounce = 250 * time.Millisecond

// Watcher monitors one journal file using OS-level notifications.
type Watcher struct {
	fsw  *fsnotify.Watcher
	path string
}

// New creates a Watcher for the journal at path. The parent directory
// is watched so rotation (remove + recreate) is still observed.
func New(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{fsw: fsw, path: abs}, nil
}

// Run blocks until ctx is cancelled, calling onChange after each
// debounced burst of writes to the watched file. onChange runs on the
// watch goroutine; a slow reload naturally throttles further triggers.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	defer w.fsw.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(debounce)

		case <-pending:
			pending = nil
			onChange(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "path", w.path, "error", err)
		}
	}
}
