package types

import (
	"errors"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "zero bytes", input: "0", want: 0},
		{name: "bytes with B suffix", input: "512B", want: 512},

		// JVM style suffixes
		{name: "jvm kilobytes", input: "256k", want: 256 * 1024},
		{name: "jvm megabytes", input: "512m", want: 512 * 1024 * 1024},
		{name: "jvm gigabytes", input: "2g", want: 2 * 1024 * 1024 * 1024},
		{name: "jvm terabytes", input: "1t", want: 1024 * 1024 * 1024 * 1024},

		{name: "megabytes with B", input: "50MB", want: 50 * 1024 * 1024},
		{name: "gigabytes with iB", input: "2GiB", want: 2 * 1024 * 1024 * 1024},
		{name: "surrounding whitespace", input: "  100M  ", want: 100 * 1024 * 1024},
		{name: "decimal values truncated", input: "1.5G", want: 1610612736},

		{name: "empty string", input: "", wantErr: true},
		{name: "invalid suffix", input: "100X", wantErr: true},
		{name: "negative value", input: "-100M", wantErr: true},
		{name: "suffix only", input: "M", wantErr: true},
		{name: "invalid format", input: "100M100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSize_ErrorKinds(t *testing.T) {
	if _, err := ParseSize("-1"); !errors.Is(err, ErrNegativeSize) {
		t.Errorf("ParseSize(-1) error = %v, want ErrNegativeSize", err)
	}
	if _, err := ParseSize("abc"); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("ParseSize(abc) error = %v, want ErrInvalidSize", err)
	}
}

func TestToMB(t *testing.T) {
	tests := []struct {
		raw  int64
		want int64
	}{
		{raw: -1, want: 0},
		{raw: 0, want: 0},
		{raw: 1, want: 0},
		{raw: MiB - 1, want: 0},
		{raw: MiB, want: 1},
		{raw: 256*MiB + 12345, want: 256},
		{raw: 4 * GiB, want: 4096},
	}

	for _, tt := range tests {
		if got := ToMB(tt.raw); got != tt.want {
			t.Errorf("ToMB(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestNewSnapshot(t *testing.T) {
	got := NewSnapshot(HeapUsage{
		Init:      200 * MiB,
		Used:      -5,
		Committed: 300*MiB + 1,
		Max:       0,
	})

	want := MemorySnapshot{InitMB: 200, UsedMB: 0, CommittedMB: 300, MaxMB: 0}
	if got != want {
		t.Errorf("NewSnapshot() = %+v, want %+v", got, want)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{input: 0, want: "0 B"},
		{input: -10, want: "0 B"},
		{input: 1024, want: "1.0 KiB"},
		{input: 1536 * 1024, want: "1.5 MiB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.input); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if got := FormatMB(768); got != "768 MiB" {
		t.Errorf("FormatMB(768) = %q, want %q", got, "768 MiB")
	}
}
