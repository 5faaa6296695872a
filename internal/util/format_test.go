package util

import (
	"math"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Second, "0:00"},
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{90 * time.Second, "1:30"},
		{1499 * time.Millisecond, "0:01"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSecondsAndSpeed(t *testing.T) {
	if got := FormatSeconds(600); got != "10:00" {
		t.Fatalf("FormatSeconds(600) = %q, want 10:00", got)
	}
	if got := FormatSeconds(math.NaN()); got != "-" {
		t.Fatalf("FormatSeconds(NaN) = %q, want -", got)
	}
	if got := FormatSpeed(10); got != "36.0 km/h" {
		t.Fatalf("FormatSpeed(10) = %q, want 36.0 km/h", got)
	}
	if got := FormatSpeed(math.Inf(1)); got != "-" {
		t.Fatalf("FormatSpeed(+Inf) = %q, want -", got)
	}
}

func TestFormatDistance(t *testing.T) {
	if got := FormatDistance(850.4); got != "850 m" {
		t.Fatalf("FormatDistance(850.4) = %q, want 850 m", got)
	}
	if got := FormatDistance(3240); got != "3.2 km" {
		t.Fatalf("FormatDistance(3240) = %q, want 3.2 km", got)
	}
}
