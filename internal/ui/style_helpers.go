package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bar renders the one-line header and footer on a solid background.
// lipgloss resets the background after each styled segment, so every gap
// between and inside segments is painted explicitly.
type bar struct {
	bg   lipgloss.Color
	fill lipgloss.Style
}

func newBar(bgColor string) bar {
	bg := lipgloss.Color(bgColor)
	return bar{bg: bg, fill: lipgloss.NewStyle().Background(bg)}
}

// text renders s with style. Runs of spaces keep their length and carry the
// bar background.
func (b bar) text(s string, style lipgloss.Style) string {
	if s == "" {
		return ""
	}
	style = style.Background(b.bg)
	var out strings.Builder
	for start := 0; start < len(s); {
		space := s[start] == ' '
		end := start
		for end < len(s) && (s[end] == ' ') == space {
			end++
		}
		if space {
			out.WriteString(b.gap(end - start))
		} else {
			out.WriteString(style.Render(s[start:end]))
		}
		start = end
	}
	return out.String()
}

func (b bar) gap(n int) string {
	if n <= 0 {
		return ""
	}
	return b.fill.Render(strings.Repeat(" ", n))
}

// join drops empty segments and separates the rest by sep spaces.
func (b bar) join(parts []string, sep int) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, b.gap(sep))
}

// line places left at the left edge and right against the right edge of a
// width-wide line. When both sides do not fit, trailing left segments are
// dropped; the first one always stays.
func (b bar) line(left, right []string, width int) string {
	r := ""
	if len(right) > 0 {
		r = b.join(right, 1) + b.gap(1)
	}
	for {
		l := b.gap(1) + b.join(left, 2)
		free := width - lipgloss.Width(l) - lipgloss.Width(r)
		if free >= 1 || len(left) <= 1 {
			content := l + b.gap(max(free, 1)) + r
			if width <= 0 {
				return content
			}
			return b.fill.Width(width).MaxHeight(1).Render(content)
		}
		left = left[:len(left)-1]
	}
}
