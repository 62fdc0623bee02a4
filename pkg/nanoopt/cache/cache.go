// Package cache persists classpath scan results between runs. Each archive
// is cached by path and reused while its size and modification time are
// unchanged.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/classpath"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
)

// Cache is a classpath.ArchiveCache backed by Badger.
type Cache struct {
	store  *Store
	logger *logging.Logger
}

// DefaultPath returns $XDG_CACHE_HOME/nanoopt/classpath.
func DefaultPath() string {
	return filepath.Join(xdg.CacheHome, "nanoopt", "classpath")
}

// Open opens or creates a cache at path.
func Open(path string) (*Cache, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening classpath cache: %w", err)
	}
	return &Cache{store: store, logger: logging.Get(logging.ComponentCache)}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Lookup returns the cached classes of an archive when the entry matches
// size and modTime.
func (c *Cache) Lookup(path string, size int64, modTime time.Time) (map[string]uint16, bool) {
	entry, err := c.store.Get(path)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("reading cache entry", "path", path, "err", err)
		}
		return nil, false
	}
	if !Valid(entry, size, modTime) {
		c.logger.Debug("stale cache entry", "path", path)
		return nil, false
	}
	return entry.Classes, true
}

// Store records the classes of an archive.
func (c *Cache) Store(path string, size int64, modTime time.Time, classes map[string]uint16) error {
	return c.store.Put(path, &ArchiveEntry{
		Schema:  SchemaVersion,
		Size:    size,
		Mtime:   modTime.UnixNano(),
		Classes: classes,
	})
}

// Prune removes entries whose archive is gone or has changed. It returns
// the number of entries removed.
func (c *Cache) Prune() (int, error) {
	paths, err := c.store.Paths()
	if err != nil {
		return 0, fmt.Errorf("listing cache: %w", err)
	}

	removed := 0
	for _, path := range paths {
		entry, err := c.store.Get(path)
		if err != nil {
			continue
		}
		info, statErr := os.Stat(path)
		if statErr == nil && Valid(entry, info.Size(), info.ModTime()) {
			continue
		}
		if err := c.store.Delete(path); err != nil {
			return removed, fmt.Errorf("deleting %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// Len returns the number of cached archives.
func (c *Cache) Len() (int, error) {
	paths, err := c.store.Paths()
	return len(paths), err
}

var _ classpath.ArchiveCache = (*Cache)(nil)

// ClearAll removes every entry.
func (c *Cache) ClearAll() error {
	return c.store.DeletePrefix("")
}
