package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBarTextKeepsSpaceRuns(t *testing.T) {
	b := newBar("#202020")
	style := lipgloss.NewStyle()

	tests := []struct {
		in    string
		width int
	}{
		{in: "", width: 0},
		{in: "word", width: 4},
		{in: "two words", width: 9},
		{in: "  padded   gaps ", width: 16},
	}
	for _, tt := range tests {
		got := b.text(tt.in, style)
		if w := lipgloss.Width(got); w != tt.width {
			t.Fatalf("text(%q) width = %d, want %d", tt.in, w, tt.width)
		}
		for _, word := range strings.Fields(tt.in) {
			if !strings.Contains(got, word) {
				t.Fatalf("text(%q) = %q, missing %q", tt.in, got, word)
			}
		}
	}
}

func TestBarLine(t *testing.T) {
	b := newBar("#202020")
	style := lipgloss.NewStyle()
	left := []string{b.text("Blogen", style), b.text("Category", style), b.text("page 1/3", style)}
	right := []string{b.text("alice", style)}

	wide := b.line(left, right, 60)
	if w := lipgloss.Width(wide); w != 60 {
		t.Fatalf("wide line width = %d, want 60", w)
	}
	if strings.Contains(wide, "\n") {
		t.Fatalf("line wrapped: %q", wide)
	}
	for _, s := range []string{"Blogen", "Category", "page", "alice"} {
		if !strings.Contains(wide, s) {
			t.Fatalf("wide line missing %q: %q", s, wide)
		}
	}

	narrow := b.line(left, right, 24)
	if w := lipgloss.Width(narrow); w != 24 {
		t.Fatalf("narrow line width = %d, want 24", w)
	}
	if strings.Contains(narrow, "page") || !strings.Contains(narrow, "Blogen") || !strings.Contains(narrow, "alice") {
		t.Fatalf("narrow line should drop trailing left segments: %q", narrow)
	}

	tiny := b.line(left, right, 8)
	if strings.Contains(tiny, "\n") || lipgloss.Width(tiny) > 8 {
		t.Fatalf("tiny line = %q, want a single line of at most 8 cells", tiny)
	}

	if got := b.line([]string{""}, nil, 10); lipgloss.Width(got) != 10 {
		t.Fatalf("empty line width = %d, want 10", lipgloss.Width(got))
	}
}
