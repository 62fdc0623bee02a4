package cache

import "time"

// Valid reports whether entry still describes an archive of the given size
// and modification time. Entries from another schema are never valid.
func Valid(entry *ArchiveEntry, size int64, modTime time.Time) bool {
	if entry == nil || entry.Schema != SchemaVersion {
		return false
	}
	return entry.Size == size && entry.Mtime == modTime.UnixNano()
}
