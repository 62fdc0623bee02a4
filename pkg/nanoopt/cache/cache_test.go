package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestStoreGetPut(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	entry := &ArchiveEntry{
		Schema:  SchemaVersion,
		Size:    1234,
		Mtime:   time.Now().UnixNano(),
		Classes: map[string]uint16{"a.A": 0x21, "a.B": 0x31},
	}
	if err := store.Put("/libs/a.jar", entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get("/libs/a.jar")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Size != entry.Size || got.Mtime != entry.Mtime {
		t.Errorf("got %+v, want %+v", got, entry)
	}
	if len(got.Classes) != 2 || got.Classes["a.B"] != 0x31 {
		t.Errorf("Classes = %v", got.Classes)
	}

	if err := store.Delete("/libs/a.jar"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get("/libs/a.jar"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStorePathsAndDeletePrefix(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	for _, p := range []string{"/a/one.jar", "/a/two.jar", "/b/three.jar"} {
		if err := store.Put(p, &ArchiveEntry{Schema: SchemaVersion}); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := store.Paths()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("Paths() = %v, want 3 entries", paths)
	}

	if err := store.DeletePrefix("/a/"); err != nil {
		t.Fatal(err)
	}
	paths, _ = store.Paths()
	if len(paths) != 1 || paths[0] != "/b/three.jar" {
		t.Errorf("Paths() after DeletePrefix = %v, want [/b/three.jar]", paths)
	}
}

func TestCacheLookupValidation(t *testing.T) {
	c := openTestCache(t)
	mtime := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	classes := map[string]uint16{"com.example.App": 0x21}

	if _, ok := c.Lookup("/app.jar", 10, mtime); ok {
		t.Fatal("Lookup on empty cache reported a hit")
	}
	if err := c.Store("/app.jar", 10, mtime, classes); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, ok := c.Lookup("/app.jar", 10, mtime)
	if !ok || got["com.example.App"] != 0x21 {
		t.Errorf("Lookup = %v, %v; want hit", got, ok)
	}
	if _, ok := c.Lookup("/app.jar", 11, mtime); ok {
		t.Error("Lookup hit with a different size")
	}
	if _, ok := c.Lookup("/app.jar", 10, mtime.Add(time.Second)); ok {
		t.Error("Lookup hit with a different mtime")
	}
}

func TestValid(t *testing.T) {
	mtime := time.Now()
	entry := &ArchiveEntry{Schema: SchemaVersion, Size: 5, Mtime: mtime.UnixNano()}

	if !Valid(entry, 5, mtime) {
		t.Error("matching entry should be valid")
	}
	if Valid(nil, 5, mtime) {
		t.Error("nil entry should be invalid")
	}
	old := *entry
	old.Schema = SchemaVersion + 1
	if Valid(&old, 5, mtime) {
		t.Error("entry from another schema should be invalid")
	}
}

func TestCachePrune(t *testing.T) {
	c := openTestCache(t)
	dir := t.TempDir()

	kept := filepath.Join(dir, "kept.jar")
	changed := filepath.Join(dir, "changed.jar")
	if err := os.WriteFile(kept, []byte("kept"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(changed, []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{kept, changed} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		if err := c.Store(p, info.Size(), info.ModTime(), map[string]uint16{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Store(filepath.Join(dir, "gone.jar"), 1, time.Now(), nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(changed, []byte("changed and longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune removed %d entries, want 2", removed)
	}
	if n, _ := c.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}

	if err := c.ClearAll(); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.Len(); n != 0 {
		t.Errorf("Len() after ClearAll = %d, want 0", n)
	}
}

func TestKeys(t *testing.T) {
	key := MakeKey("archive", "/x/y.jar")
	ns, path := ParseKey(key)
	if ns != "archive" || path != "/x/y.jar" {
		t.Errorf("ParseKey = %q, %q", ns, path)
	}
	ns, path = ParseKey([]byte("plain"))
	if ns != "plain" || path != "" {
		t.Errorf("ParseKey without separator = %q, %q", ns, path)
	}
}

func TestDefaultPath(t *testing.T) {
	if filepath.Base(DefaultPath()) != "classpath" {
		t.Errorf("DefaultPath() = %q", DefaultPath())
	}
}
