package render

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"emphasis", "Hello **world**", "Hello world"},
		{"paragraphs", "first\n\nsecond", "first\n\nsecond"},
		{"list", "- one\n- two", "• one\n• two"},
		{"entities", "Tom & Jerry's", "Tom & Jerry's"},
		{"link", "see [docs](https://example.com)", "see docs"},
		{"heading", "# Title\n\nbody", "Title\nbody"},
		{"blank", "   ", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PlainText(tc.in); got != tc.want {
				t.Fatalf("PlainText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPlainTextDropsRawHTML(t *testing.T) {
	got := PlainText("<script>alert(1)</script>\n\nsafe")
	if got != "safe" {
		t.Fatalf("PlainText kept raw html: %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"first line\n\nsecond", 100, "first line"},
		{"abcdefghij", 5, "abcd…"},
		{"abcdefghij", 0, "abcdefghij"},
		{"abc", 1, "…"},
		{"short", 5, "short"},
	}
	for _, tc := range tests {
		if got := Excerpt(tc.in, tc.max); got != tc.want {
			t.Fatalf("Excerpt(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
