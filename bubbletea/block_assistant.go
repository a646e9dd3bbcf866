package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/markdown"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders an assistant reply with markdown formatting.
// Finalized paragraphs (separated by double newline) are rendered once and
// cached; only the trailing unfinalized text is re-rendered on each delta.
// While the reply is in flight an empty block shows the loading indicator.
type AssistantTextBlock struct {
	content   strings.Builder
	theme     manna.Theme
	styles    Styles
	settled   bool
	indicator string

	// finalizedRaw is the stable prefix ending at the last double newline.
	// It's rendered once per width and cached in finalizedByWidth.
	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewAssistantTextBlock creates a block for a reply that is still in flight.
func NewAssistantTextBlock(theme manna.Theme, styles Styles) *AssistantTextBlock {
	return &AssistantTextBlock{
		theme:            theme,
		styles:           styles,
		finalizedByWidth: make(map[int]string),
	}
}

// NewSettledTextBlock creates a block for a reply that has already settled.
func NewSettledTextBlock(text string, theme manna.Theme, styles Styles) *AssistantTextBlock {
	b := NewAssistantTextBlock(theme, styles)
	b.Append(text)
	b.Settle()
	return b
}

// Append adds a text delta from the reply stream.
func (b *AssistantTextBlock) Append(text string) {
	b.content.WriteString(text)
	b.promoteFinalized()
}

// SetIndicator sets the loading indicator frame shown before the first delta.
func (b *AssistantTextBlock) SetIndicator(frame string) {
	b.indicator = frame
}

// Settle marks the reply final.
func (b *AssistantTextBlock) Settle() {
	b.settled = true
}

// Settled reports whether the reply is final.
func (b *AssistantTextBlock) Settled() bool { return b.settled }

// Text returns the raw reply text.
func (b *AssistantTextBlock) Text() string { return b.content.String() }

func (b *AssistantTextBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantTextBlock) View(width int) string {
	if b.content.Len() == 0 {
		if !b.settled {
			return b.indicator + b.styles.Muted.Render(" Thinking...")
		}
		return ""
	}
	finalizedRendered := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if hasUnclosedFence(trailing) {
		// Close fence only for rendering so partial streams display safely.
		trailing += "\n```"
	}
	if trailing == "" {
		return finalizedRendered
	}
	trailingRendered := markdown.Render(trailing, width, b.theme)
	if strings.TrimSpace(trailingRendered) == "" {
		return finalizedRendered
	}
	if finalizedRendered == "" {
		return trailingRendered
	}
	// Independently rendered fragments are joined with a single paragraph
	// break to match full-document output.
	return strings.TrimRight(finalizedRendered, "\n") + "\n\n" + strings.TrimLeft(trailingRendered, "\n")
}

// promoteFinalized scans for the last "\n\n" boundary that doesn't fall inside
// an unclosed fenced code block.
func (b *AssistantTextBlock) promoteFinalized() {
	raw := b.content.String()
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AssistantTextBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := markdown.Render(b.finalizedRaw, width, b.theme)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *AssistantTextBlock) trailingRaw() string {
	raw := b.content.String()
	if b.finalizedRaw == "" {
		return raw
	}
	return strings.TrimPrefix(raw, b.finalizedRaw+"\n\n")
}

// hasUnclosedFence reports an odd number of "```" markers. Triple backticks
// inside inline code spans are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
