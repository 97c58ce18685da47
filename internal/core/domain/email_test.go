package domain

import (
	"testing"
	"time"
)

func TestContentHash_UsesMessageID(t *testing.T) {
	h1 := ContentHash("uid-123", "Alice <alice@example.com>", "2025-01-02 10:00:00", "Hello")
	h2 := ContentHash("uid-123", "Bob <bob@example.com>", "2025-06-30 23:59:59", "Different subject")

	if h1 != h2 {
		t.Errorf("expected same hash for same UID, got %s and %s", h1, h2)
	}
	if len(h1) != 32 {
		t.Errorf("expected 32-char hex hash, got %q", h1)
	}
}

func TestContentHash_FallsBackToComposite(t *testing.T) {
	h1 := ContentHash("", "Alice", "2025-01-02", "Hello")
	h2 := ContentHash("", "Alice", "2025-01-02", "Hello")
	h3 := ContentHash("", "Alice", "2025-01-02", "Goodbye")

	if h1 != h2 {
		t.Errorf("expected idempotent hash, got %s and %s", h1, h2)
	}
	if h1 == h3 {
		t.Error("expected different hash for different subject")
	}
}

func TestContentHash_Idempotent(t *testing.T) {
	rec := &EmailRecord{
		UID:     "uid-42",
		From:    "Carol <carol@example.com>",
		Subject: "Invoice",
		Date:    "Mon, 06 Jan 2025 15:04:05 +0000",
	}
	rec.Normalize()
	first := rec.ContentHash

	// Recomputing from an unchanged record must not change the hash.
	rec.Normalize()
	if rec.ContentHash != first {
		t.Errorf("hash changed on recompute: %s -> %s", first, rec.ContentHash)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rfc5322",
			in:   "Mon, 06 Jan 2025 15:04:05 +0000",
			want: time.Date(2025, 1, 6, 15, 4, 5, 0, time.UTC).Local().Format("2006-01-02 15:04:05"),
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "garbage passes through",
			in:   "not a date",
			want: "not a date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.in); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDayOf(t *testing.T) {
	d := DayOf(time.Date(2025, 3, 9, 23, 30, 0, 0, time.Local))
	if d.String() != "2025-03-09" {
		t.Errorf("expected 2025-03-09, got %s", d)
	}
}
