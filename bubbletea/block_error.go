package bubbletea

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/faithbaptist/manna"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a failed turn below the reply it interrupted.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	text := fmt.Sprintf("Error: %v", b.err)
	var sErr *manna.StreamError
	if errors.As(b.err, &sErr) {
		text += " (the reply above is incomplete)"
	}
	return lipgloss.NewStyle().Width(width).Render(b.styles.Error.Render(text))
}
