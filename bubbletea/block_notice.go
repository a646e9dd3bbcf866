package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	_ MessageBlock = (*SignInBlock)(nil)
	_ MessageBlock = (*SuggestionsBlock)(nil)
)

// SignInBlock asks a signed-out visitor to sign in before chatting.
type SignInBlock struct {
	hint   string
	styles Styles
}

// NewSignInBlock creates a SignInBlock. hint tells the visitor how to sign in.
func NewSignInBlock(hint string, styles Styles) *SignInBlock {
	return &SignInBlock{hint: hint, styles: styles}
}

func (b *SignInBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *SignInBlock) View(width int) string {
	content := b.styles.Accent.Render("Sign in required") + "\n" +
		"The Bible study assistant is available to church members. " + b.hint
	return lipgloss.NewStyle().Width(width).Render(content)
}

// SuggestionsBlock lists starter questions. The selected one is highlighted.
type SuggestionsBlock struct {
	questions []string
	selected  int // -1 = none
	styles    Styles
}

// NewSuggestionsBlock creates a SuggestionsBlock with nothing selected.
func NewSuggestionsBlock(questions []string, styles Styles) *SuggestionsBlock {
	return &SuggestionsBlock{questions: questions, selected: -1, styles: styles}
}

// Next selects the following question, wrapping around, and returns it.
func (b *SuggestionsBlock) Next() string {
	if len(b.questions) == 0 {
		return ""
	}
	b.selected = (b.selected + 1) % len(b.questions)
	return b.questions[b.selected]
}

func (b *SuggestionsBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *SuggestionsBlock) View(width int) string {
	var sb strings.Builder
	sb.WriteString(b.styles.Muted.Render("Try asking (Tab to pick):"))
	for i, q := range b.questions {
		sb.WriteString("\n")
		if i == b.selected {
			sb.WriteString(b.styles.Accent.Render("› " + q))
			continue
		}
		sb.WriteString("  " + q)
	}
	return lipgloss.NewStyle().Width(width).Render(sb.String())
}
