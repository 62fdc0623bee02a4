package logging

import (
	"testing"
	"time"
)

func addMessages(b *LogBuffer, msgs ...string) {
	for _, m := range msgs {
		b.Add(LogEntry{Time: time.Now(), Level: LevelInfo, Component: "test", Message: m})
	}
}

func messages(entries []LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func TestLogBuffer_Entries(t *testing.T) {
	buf := NewLogBuffer(3)
	addMessages(buf, "A", "B", "C")

	got := messages(buf.Entries())
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLogBuffer_Overflow(t *testing.T) {
	buf := NewLogBuffer(3)
	addMessages(buf, "A", "B", "C", "D", "E")

	got := messages(buf.Entries())
	want := []string{"C", "D", "E"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLogBuffer_Last(t *testing.T) {
	buf := NewLogBuffer(5)
	addMessages(buf, "A", "B", "C", "D")

	got := messages(buf.Last(2))
	if len(got) != 2 || got[0] != "C" || got[1] != "D" {
		t.Errorf("Last(2) = %v, want [C D]", got)
	}
	if n := len(buf.Last(10)); n != 4 {
		t.Errorf("Last(10) returned %d entries, want 4", n)
	}
}

func TestLogBuffer_ClearAndDefaults(t *testing.T) {
	buf := NewLogBuffer(0)
	if len(buf.entries) != DefaultBufferSize {
		t.Errorf("capacity = %d, want %d", len(buf.entries), DefaultBufferSize)
	}

	addMessages(buf, "A")
	buf.Clear()
	if buf.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", buf.Len())
	}
}
