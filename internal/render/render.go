// Package render turns post text into plain text for the terminal.
package render

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md    = goldmark.New(goldmark.WithExtensions(extension.GFM))
	strip = bluemonday.StrictPolicy()

	// list items keep a bullet and paragraphs a blank line once tags are gone
	bullets   = strings.NewReplacer("<li>", "<li>• ", "</p>\n", "</p>\n\n")
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// PlainText renders markdown post text and strips every tag, leaving text
// with paragraph breaks. Text that fails to render is returned trimmed.
func PlainText(source string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return strings.TrimSpace(source)
	}
	out := bullets.Replace(buf.String())
	out = strip.Sanitize(out)
	out = html.UnescapeString(out)
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// Excerpt returns the first line of the rendered text, cut to at most max
// runes with an ellipsis.
func Excerpt(source string, max int) string {
	text := PlainText(source)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	if max == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
