package cache

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion is incremented when the ArchiveEntry encoding changes.
// Entries with another version are treated as missing.
const SchemaVersion uint16 = 1

// KeySeparator separates the namespace from the archive path in keys.
const KeySeparator = '\x00'

// archiveNamespace prefixes archive scan results.
const archiveNamespace = "archive"

// ArchiveEntry is the cached scan of one archive.
type ArchiveEntry struct {
	Schema  uint16
	Size    int64            // archive size in bytes
	Mtime   int64            // archive modification time as UnixNano
	Classes map[string]uint16 // class name to access flags
}

// Encode serializes the entry with msgpack.
func (e *ArchiveEntry) Encode() ([]byte, error) {
	return msgpack.Marshal(e)
}

// Decode deserializes msgpack data into the entry.
func (e *ArchiveEntry) Decode(data []byte) error {
	return msgpack.Unmarshal(data, e)
}

// MakeKey creates a key: <namespace>\x00<path>.
func MakeKey(namespace, path string) []byte {
	return []byte(namespace + string(KeySeparator) + path)
}

// ParseKey splits a key into namespace and path.
func ParseKey(key []byte) (namespace, path string) {
	idx := bytes.IndexByte(key, KeySeparator)
	if idx == -1 {
		return string(key), ""
	}
	return string(key[:idx]), string(key[idx+1:])
}

// MakeKeyPrefix returns the prefix shared by every key in namespace.
func MakeKeyPrefix(namespace string) []byte {
	return []byte(namespace + string(KeySeparator))
}
