package api

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders message bodies for the terminal with glamour.
// A nil renderer, or one whose glamour setup failed, returns text unchanged.
type MarkdownRenderer struct {
	tr    *glamour.TermRenderer
	theme string
	width int
}

// NewMarkdownRenderer builds a renderer for a glamour standard style
// ("dark" or "light") wrapping at width columns.
func NewMarkdownRenderer(theme string, width int) *MarkdownRenderer {
	if width <= 0 {
		width = 80
	}
	r := &MarkdownRenderer{theme: theme, width: width}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		r.tr = tr
	}
	return r
}

func (r *MarkdownRenderer) Theme() string {
	if r == nil {
		return ""
	}
	return r.theme
}

func (r *MarkdownRenderer) Width() int {
	if r == nil {
		return 0
	}
	return r.width
}

// Render returns the styled text with glamour's leading and trailing blank
// lines removed so callers can place it inside their own layout.
func (r *MarkdownRenderer) Render(text string) string {
	if r == nil || r.tr == nil {
		return text
	}
	out, err := r.tr.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
