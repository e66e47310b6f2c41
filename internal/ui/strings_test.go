package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"trims", "  hello  ", 10, "hello"},
		{"cut", "hello world", 8, "hello..."},
		{"tiny", "hello", 2, "he"},
		{"no_limit", "hello", 0, "hello"},
		{"runes", "héllo wörld", 8, "héllo..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncate(tc.in, tc.limit); got != tc.want {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight long = %q", got)
	}
}

func TestHumanizeAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"future", now.Add(time.Minute), "just now"},
		{"seconds", now.Add(-20 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-49 * time.Hour), "2d ago"},
		{"old", time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), "2023-01-02"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := humanizeAge(tc.at, now); got != tc.want {
				t.Fatalf("humanizeAge = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "reply", "replies"); got != "1 reply" {
		t.Fatalf("pluralize(1) = %q", got)
	}
	if got := pluralize(0, "reply", "replies"); got != "0 replies" {
		t.Fatalf("pluralize(0) = %q", got)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 0, 3); got != 3 {
		t.Fatalf("clamp high = %d", got)
	}
	if got := clamp(-1, 0, 3); got != 0 {
		t.Fatalf("clamp low = %d", got)
	}
	if got := clamp(2, 0, -1); got != 0 {
		t.Fatalf("clamp empty range = %d, want lo", got)
	}
}
