package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jklebucki/rag-collector/internal/logger"
)

// DefaultDebounce is how long a changed path must stay quiet before an
// event is emitted. Editors often write a file several times in quick
// succession.
const DefaultDebounce = 2 * time.Second

// Event describes a file-system change relevant to the collector.
type Event struct {
	// Path is the affected file.
	Path string

	// Removed is true when the file was deleted or renamed away.
	Removed bool
}

// Watcher emits debounced change events for matching files under a set
// of root folders, recursively.
type Watcher struct {
	roots      []string
	extensions map[string]struct{}
	debounce   time.Duration
}

// NewWatcher creates a watcher over the given roots. An empty
// extension list matches every file.
func NewWatcher(roots, extensions []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}
	return &Watcher{
		roots:      roots,
		extensions: extSet,
		debounce:   debounce,
	}
}

// Watch blocks until ctx is cancelled, sending debounced events to the
// returned channel. The channel is closed on return.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	for _, root := range w.roots {
		if err := addRecursive(fsw, root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	events := make(chan Event)
	go w.run(ctx, fsw, events)
	return events, nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, events chan<- Event) {
	defer close(events)
	defer fsw.Close()

	// Pending writes per path, flushed after the debounce window.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, fsw, ev, pending, events)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				select {
				case events <- Event{Path: path}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event, pending map[string]time.Time, events chan<- Event) {
	// New directories need their own watches.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addRecursive(fsw, ev.Name); err != nil {
				logger.Debug("Not watching %s: %v", ev.Name, err)
			}
			return
		}
	}

	if !w.matches(ev.Name) {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		delete(pending, ev.Name)
		select {
		case events <- Event{Path: ev.Name, Removed: true}:
		case <-ctx.Done():
		}
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		pending[ev.Name] = time.Now()
	}
}

func (w *Watcher) matches(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	if len(w.extensions) == 0 {
		return true
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// addRecursive watches root and every subdirectory beneath it. Files
// passed in are ignored; fsnotify watches directories.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("Skipping unwatchable entry %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
