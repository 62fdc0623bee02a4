package logging

import "time"

// SetClock replaces the time source of w.
func SetClock(w *RotatingWriter, now func() time.Time) {
	w.mu.Lock()
	w.now = now
	w.mu.Unlock()
}
