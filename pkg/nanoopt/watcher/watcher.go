// Package watcher reports changes to the report inputs: the conditions dump
// and the classpath. Bursts of events are coalesced into one notification.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
)

// DefaultDebounce is the quiet period before a burst is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches files and directory trees.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *logging.Logger

	mu     sync.RWMutex
	dirs   map[string]bool // every watched directory
	roots  map[string]bool // directory trees of interest
	files  map[string]bool // single files of interest
	closed bool
}

// New creates a Watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:  fsw,
		debounce: debounce,
		logger:   logging.Get(logging.ComponentWatcher),
		dirs:     make(map[string]bool),
		roots:    make(map[string]bool),
		files:    make(map[string]bool),
	}, nil
}

// Add watches path. A directory is watched recursively; a file is watched
// through its parent so that editors replacing it are still seen.
// Symlinks are not followed to avoid loops.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	info, err := os.Lstat(abs)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		w.mu.Lock()
		w.files[abs] = true
		w.mu.Unlock()
		return w.addWatch(filepath.Dir(abs))
	}

	w.mu.Lock()
	w.roots[abs] = true
	w.mu.Unlock()
	return w.walk(abs)
}

func (w *Watcher) walk(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			return w.addWatch(path)
		}
		return nil
	})
}

func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.dirs[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.dirs[path] = true
	return nil
}

// relevant reports whether an event on name concerns a watched input.
func (w *Watcher) relevant(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.files[name] {
		return true
	}
	for root := range w.roots {
		if name == root || isSubPath(name, root) {
			return true
		}
	}
	return false
}

// Run starts the event loop. It blocks until the context is cancelled or
// the watcher is closed. onChange receives the sorted set of paths changed
// during one burst.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handleEvent(event) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			w.logger.Debug("inputs changed", "paths", len(changed))
			if onChange != nil {
				onChange(changed)
			}
		}
	}
}

// handleEvent keeps directory watches current and reports relevance.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if !w.relevant(event.Name) {
		return false
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() && info.Mode()&fs.ModeSymlink == 0 {
			_ = w.walk(event.Name)
		}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.forget(event.Name)
	}
	return true
}

// forget drops watches on a removed directory and its children.
func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for dir := range w.dirs {
		if dir == path || isSubPath(dir, path) {
			_ = w.watcher.Remove(dir)
			delete(w.dirs, dir)
		}
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	w.dirs = make(map[string]bool)
	return w.watcher.Close()
}

// isSubPath checks if path is under parent directory.
func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
