package classpath

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
)

// ArchiveCache stores per-archive scan results keyed by the archive's path.
// An entry is only valid while the archive's size and modification time
// match.
type ArchiveCache interface {
	Lookup(path string, size int64, modTime time.Time) (map[string]uint16, bool)
	Store(path string, size int64, modTime time.Time, classes map[string]uint16) error
}

// ScanOptions configures Scan.
type ScanOptions struct {
	// Cache, when set, skips archives that have not changed.
	Cache ArchiveCache

	// Concurrency limits the roots scanned at once. Zero uses NumCPU.
	Concurrency int

	// Exclude holds glob patterns matched against the slash-separated path
	// of a file relative to its directory root. Matching archives and class
	// files are not read. Archive roots and the jars nested inside them are
	// always read whole.
	Exclude []string

	// Logger receives per-entry problems. Nil uses the "classpath" logger.
	Logger *logging.Logger
}

// nested archive locations inside executable jars and wars.
var nestedLibDirs = []string{"BOOT-INF/lib/", "WEB-INF/lib/"}

// Scan builds a Catalog from classpath roots. A root is a jar (or war, or
// zip) file or a directory of .class files. Unreadable entries are logged
// and skipped; a missing root fails the scan.
func Scan(ctx context.Context, paths []string, opts ScanOptions) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Get(logging.ComponentClasspath)
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	exclude, err := compilePatterns(opts.Exclude)
	if err != nil {
		return nil, err
	}

	catalog := NewCatalog()
	s := &scanner{catalog: catalog, cache: opts.Cache, exclude: exclude, logger: logger}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, root := range paths {
		g.Go(func() error {
			return s.scanRoot(ctx, root)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("classpath scanned", "roots", len(paths), "classes", catalog.Len())
	return catalog, nil
}

type scanner struct {
	catalog *Catalog
	cache   ArchiveCache
	exclude []glob.Glob
	logger  *logging.Logger
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("classpath exclude %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// excluded reports whether path, found under root, matches an exclude
// pattern.
func (s *scanner) excluded(root, path string) bool {
	if len(s.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range s.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func (s *scanner) scanRoot(ctx context.Context, root string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("classpath root: %w", err)
	}
	if info.IsDir() {
		return s.scanDir(ctx, root)
	}
	return s.scanArchiveFile(root, info)
}

func (s *scanner) scanDir(ctx context.Context, root string) error {
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.logger.Warn("walking classpath", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if s.excluded(root, path) {
			s.logger.Debug("excluded from classpath", "path", path)
			return nil
		}

		switch {
		case isClassEntry(path):
			s.addClassFile(path)
		case isArchive(path):
			info, err := d.Info()
			if err != nil {
				s.logger.Warn("stat archive", "path", path, "err", err)
				return nil
			}
			if err := s.scanArchiveFile(path, info); err != nil {
				s.logger.Warn("scanning archive", "path", path, "err", err)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		return fmt.Errorf("walking %s: %w", root, err)
	}
	return nil
}

func (s *scanner) addClassFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Warn("opening class file", "path", path, "err", err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := ParseClass(f)
	if err != nil {
		s.logger.Warn("parsing class file", "path", path, "err", err)
		return
	}
	s.catalog.Add(info.Name, info.AccessFlags)
}

func (s *scanner) scanArchiveFile(path string, info fs.FileInfo) error {
	if s.cache != nil {
		if classes, ok := s.cache.Lookup(path, info.Size(), info.ModTime()); ok {
			s.catalog.AddAll(classes)
			return nil
		}
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	classes := make(map[string]uint16)
	s.scanZip(&zr.Reader, path, classes, true)
	s.catalog.AddAll(classes)

	if s.cache != nil {
		if err := s.cache.Store(path, info.Size(), info.ModTime(), classes); err != nil {
			s.logger.Warn("caching archive", "path", path, "err", err)
		}
	}
	return nil
}

// scanZip collects the classes in zr. Nested library jars are read one
// level deep.
func (s *scanner) scanZip(zr *zip.Reader, name string, classes map[string]uint16, nested bool) {
	for _, f := range zr.File {
		switch {
		case isClassEntry(f.Name):
			info, err := readZipClass(f)
			if err != nil {
				s.logger.Warn("parsing class entry", "archive", name, "entry", f.Name, "err", err)
				continue
			}
			classes[info.Name] = info.AccessFlags
		case nested && isNestedLib(f.Name):
			inner, err := openNested(f)
			if err != nil {
				s.logger.Warn("opening nested archive", "archive", name, "entry", f.Name, "err", err)
				continue
			}
			s.scanZip(inner, name+"!/"+f.Name, classes, false)
		}
	}
}

func readZipClass(f *zip.File) (ClassInfo, error) {
	rc, err := f.Open()
	if err != nil {
		return ClassInfo{}, err
	}
	defer func() { _ = rc.Close() }()
	return ParseClass(rc)
}

func openNested(f *zip.File) (*zip.Reader, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}

// isClassEntry reports whether name is a loadable class. Module and
// package descriptors and multi-release variants are skipped.
func isClassEntry(name string) bool {
	name = filepath.ToSlash(name)
	if !strings.HasSuffix(name, ".class") {
		return false
	}
	base := name[strings.LastIndex(name, "/")+1:]
	if base == "module-info.class" || base == "package-info.class" {
		return false
	}
	return !strings.HasPrefix(name, "META-INF/versions/")
}

func isArchive(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jar", ".war", ".zip":
		return true
	}
	return false
}

func isNestedLib(name string) bool {
	if !strings.HasSuffix(name, ".jar") {
		return false
	}
	for _, dir := range nestedLibDirs {
		if strings.HasPrefix(name, dir) {
			return true
		}
	}
	return false
}
