// Package filesystem watches a single file for changes using fsnotify.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("filesystem: watcher closed")

// ChangeType describes what happened to the watched file.
type ChangeType int

const (
	// ChangeUpdated means the file was created or written.
	ChangeUpdated ChangeType = iota

	// ChangeDeleted means the file was removed or renamed away.
	ChangeDeleted
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is a settled change to the watched file.
type Change struct {
	Path string
	Type ChangeType
	At   time.Time
}

// Watcher reports changes to one file.
// The parent directory is watched rather than the file itself so that
// editors which replace files by renaming are still observed.
type Watcher struct {
	path     string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a watcher for path. A debounce of zero uses DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: abs, debounce: debounce}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Watch starts watching and returns a channel of settled changes.
// The channel is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}
	if w.watcher != nil {
		return nil, errors.New("filesystem: already watching")
	}

	dir := filepath.Dir(w.path)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w.watcher = fw

	changes := make(chan Change)
	go w.loop(ctx, fw, changes)

	logger.Debug("Watching %s", w.path)
	return changes, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending *Change
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

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			pending = change
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if pending == nil {
				continue
			}
			select {
			case changes <- *pending:
			case <-ctx.Done():
				return
			}
			pending = nil

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error on %s: %v", w.path, err)
		}
	}
}

// handleFsEvent converts an fsnotify event into a change of the watched
// file, or nil when the event is about something else.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	if filepath.Clean(event.Name) != w.path {
		return nil
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(w.path)
		if err != nil || info.IsDir() {
			return nil
		}
		return &Change{Path: w.path, Type: ChangeUpdated, At: time.Now()}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Path: w.path, Type: ChangeDeleted, At: time.Now()}
	default:
		return nil
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}
