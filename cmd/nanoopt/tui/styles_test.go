package tui

import (
	"strings"
	"testing"
)

func TestRepeatChar(t *testing.T) {
	tests := []struct {
		char     rune
		n        int
		expected string
	}{
		{'a', 0, ""},
		{'a', -1, ""},
		{'a', 1, "a"},
		{'─', 3, "───"},
		{' ', 4, "    "},
	}

	for _, tt := range tests {
		if got := repeatChar(tt.char, tt.n); got != tt.expected {
			t.Errorf("repeatChar(%q, %d) = %q, want %q", tt.char, tt.n, got, tt.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s        string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exact_len", 9, "exact_len"},
		{"-Xms200m -Xmx768m", 10, "-Xms200..."},
		{"abcd", 3, "abc"},
		{"abcdef", 4, "a..."},
	}

	for _, tt := range tests {
		got := truncate(tt.s, tt.maxLen)
		if got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.expected)
		}
		if len(got) > tt.maxLen {
			t.Errorf("truncate(%q, %d) length %d exceeds maxLen", tt.s, tt.maxLen, len(got))
		}
	}
}

func TestPadLeft(t *testing.T) {
	tests := []struct {
		s        string
		width    int
		expected string
	}{
		{"abc", 5, "  abc"},
		{"abc", 3, "abc"},
		{"abc", 2, "abc"},
		{"", 3, "   "},
	}

	for _, tt := range tests {
		if got := padLeft(tt.s, tt.width); got != tt.expected {
			t.Errorf("padLeft(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.expected)
		}
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		s        string
		width    int
		expected string
	}{
		{"abc", 7, "  abc  "},
		{"abc", 6, " abc  "},
		{"abc", 2, "abc"},
		{"x", 5, "  x  "},
	}

	for _, tt := range tests {
		if got := center(tt.s, tt.width); got != tt.expected {
			t.Errorf("center(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.expected)
		}
	}
}

func TestRenderDivider(t *testing.T) {
	for _, width := range []int{10, 80} {
		if got := renderDivider(width); !strings.Contains(got, "─") {
			t.Errorf("renderDivider(%d) should contain '─'", width)
		}
	}
}
