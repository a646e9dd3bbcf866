// Package markdown renders assistant replies to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
//
// Block quotes are rendered as scripture: a colored bar and italic text, the
// way the assistant quotes verses.
package markdown

import "github.com/faithbaptist/manna"

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func Render(source string, width int, theme manna.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	return newRenderer(theme).render([]byte(source), width)
}
