// Package bubbletea provides the Bubble Tea chat view for the Bible study
// assistant.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faithbaptist/manna"
)

// SendFunc runs one conversation turn for text. The onEvent callback is
// called for each event of the turn. The function blocks until the reply
// settles or the context is cancelled.
type SendFunc func(ctx context.Context, text string, onEvent func(manna.Event)) error

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits and the reply in flight, if any, has been cancelled and returned. The
// context is used for graceful shutdown: when cancelled, the program quits.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	m.Close()
	return err
}

// StreamEventMsg wraps a conversation event for delivery to the model.
type StreamEventMsg struct {
	Event manna.Event
}

// ReplyDoneMsg signals that a turn has finished.
type ReplyDoneMsg struct {
	Err error
}

// SuggestedQuestions are offered while the conversation holds only the
// greeting.
var SuggestedQuestions = []string{
	"What does the Bible say about faith?",
	"Explain John 3:16",
	"How can I pray more effectively?",
	"What is the meaning of Psalm 23?",
	"Summarize the book of Genesis",
}
