package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyDir is returned by WriteFile when no directory is given.
var ErrEmptyDir = errors.New("report directory is required")

// FileName returns "<id>_REPORT_<suffix>".
func FileName(id, suffix string) string {
	return id + "_REPORT_" + suffix
}

// Path returns the file a report with id and suffix is written to in dir.
func Path(dir, id, suffix string) string {
	return filepath.Join(dir, FileName(id, suffix))
}

// WriteFile creates dir and its parents and atomically replaces
// <dir>/<id>_REPORT_<suffix> with data. On failure no partial file is left.
func WriteFile(dir, id, suffix string, data []byte) (string, error) {
	if dir == "" {
		return "", ErrEmptyDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := Path(dir, id, suffix)
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return path, fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
