package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	// MaxSize in bytes triggers a rotation. Zero uses 10MB.
	MaxSize int64

	// MaxAge is the number of days backups are kept. Zero keeps them.
	MaxAge int

	// MaxBackups is the number of backups kept. Zero keeps them all.
	MaxBackups int

	// Daily also rotates on the first write of a new day.
	Daily bool
}

// DefaultRotationConfig returns the rotation defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// backupStamp names backups nanoopt-20261015T093012.log. Backups made in
// the same second get a sequence number: nanoopt-20261015T093012.1.log.
const backupStamp = "20060102T150405"

// RotatingWriter appends to a log file and moves it aside as a timestamped
// backup when it grows past MaxSize or the day changes. Writes hold an
// advisory lock so a watch session and a one-shot run can share the file.
type RotatingWriter struct {
	mu   sync.Mutex
	path string
	cfg  RotationConfig
	now  func() time.Time

	file *os.File
	size int64
	day  string
}

// NewRotatingWriter opens path for appending, creating parent directories,
// and prunes old backups.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg, now: time.Now}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()
	return w, nil
}

// Write appends p, rotating first when p would overflow the file or the
// day has changed.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, fs.ErrClosed
	}
	if w.due(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	if err := lockFile(w.file); err != nil {
		return 0, fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlockFile(w.file)

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing to log file: %w", err)
	}
	return n, nil
}

// Close syncs and closes the file. Closing twice is a no-op.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil

	syncErr := f.Sync()
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	if syncErr != nil {
		return fmt.Errorf("syncing log file: %w", syncErr)
	}
	return nil
}

// open must be called with w.mu held. An existing file keeps the day it
// was last written so a stale log still rotates on the next write.
func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	w.file = f
	w.size = info.Size()
	w.day = w.now().Format(time.DateOnly)
	if w.size > 0 {
		w.day = info.ModTime().Format(time.DateOnly)
	}
	return nil
}

// due reports whether a write of n bytes needs a fresh file. A single
// oversized write into an empty file does not rotate.
func (w *RotatingWriter) due(n int64) bool {
	if w.size > 0 && w.size+n > w.cfg.MaxSize {
		return true
	}
	return w.cfg.Daily && w.size > 0 && w.now().Format(time.DateOnly) != w.day
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing current file: %w", err)
	}
	w.file = nil

	backup := w.backupPath(w.now())
	if err := os.Rename(w.path, backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("renaming log file: %w", err)
	}
	if err := w.open(); err != nil {
		return err
	}
	w.prune()
	return nil
}

// name splits the log file name into the parts backups share.
func (w *RotatingWriter) name() (stem, ext string) {
	base := filepath.Base(w.path)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

// backupPath returns the first unused backup name for t.
func (w *RotatingWriter) backupPath(t time.Time) string {
	stem, ext := w.name()
	dir := filepath.Dir(w.path)
	stamp := t.Format(backupStamp)

	candidate := filepath.Join(dir, stem+"-"+stamp+ext)
	for seq := 1; ; seq++ {
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%s.%d%s", stem, stamp, seq, ext))
	}
}

// backup is a rotated file identified by its name.
type backup struct {
	path string
	at   time.Time
	seq  int
}

// backups lists the rotated files of w, newest first.
func (w *RotatingWriter) backups() []backup {
	stem, ext := w.name()
	dir := filepath.Dir(w.path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var found []backup
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if b, ok := parseBackup(e.Name(), stem, ext); ok {
			b.path = filepath.Join(dir, e.Name())
			found = append(found, b)
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].at.Equal(found[j].at) {
			return found[i].at.After(found[j].at)
		}
		return found[i].seq > found[j].seq
	})
	return found
}

func parseBackup(name, stem, ext string) (backup, bool) {
	rest, ok := strings.CutPrefix(name, stem+"-")
	if !ok {
		return backup{}, false
	}
	if rest, ok = strings.CutSuffix(rest, ext); !ok {
		return backup{}, false
	}

	stamp, seqText, hasSeq := strings.Cut(rest, ".")
	at, err := time.ParseInLocation(backupStamp, stamp, time.Local)
	if err != nil {
		return backup{}, false
	}
	b := backup{at: at}
	if hasSeq {
		if b.seq, err = strconv.Atoi(seqText); err != nil {
			return backup{}, false
		}
	}
	return b, true
}

// prune removes backups beyond MaxBackups or older than MaxAge days, by
// the time in their names. Removal errors are ignored.
func (w *RotatingWriter) prune() {
	cutoff := time.Time{}
	if w.cfg.MaxAge > 0 {
		cutoff = w.now().AddDate(0, 0, -w.cfg.MaxAge)
	}

	for i, b := range w.backups() {
		tooMany := w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups
		tooOld := !cutoff.IsZero() && b.at.Before(cutoff)
		if tooMany || tooOld {
			_ = os.Remove(b.path)
		}
	}
}
