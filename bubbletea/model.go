package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/faithbaptist/manna"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// DefaultSignInHint is shown to signed-out visitors when no hint is set.
const DefaultSignInHint = "Set MANNA_TOKEN, or MANNA_EMAIL and MANNA_PASSWORD, then restart manna."

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model
	// Spinner animates the pending reply. Exported for test access.
	Spinner spinner.Model

	send       SendFunc
	transcript *manna.Transcript
	identity   *manna.Identity
	signInHint string
	theme      manna.Theme
	styles     Styles

	blocks      []MessageBlock
	active      *AssistantTextBlock
	reply       *AssistantTextBlock // block of the current turn's reply, kept after settling
	turnStart   int                 // transcript length when the turn was submitted
	suggestions *SuggestionsBlock // nil once the conversation has started

	// The transcript is only read while no turn is running; the send
	// goroutine owns it in between.
	running bool
	cancel  context.CancelFunc
	turns   *turnGroup
	eventCh chan manna.Event
	doneCh  chan error
	err     error
	ready   bool
}

// Option configures a Model.
type Option func(*Model)

// WithIdentity sets the signed-in member. Without one the view asks the
// visitor to sign in.
func WithIdentity(id *manna.Identity) Option {
	return func(m *Model) { m.identity = id }
}

// WithSignInHint overrides the sign-in instructions.
func WithSignInHint(hint string) Option {
	return func(m *Model) { m.signInHint = hint }
}

// New creates a chat view over transcript. send runs each turn.
func New(send SendFunc, transcript *manna.Transcript, theme manna.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about a verse, a book, or prayer..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		Input:      ti,
		Spinner:    sp,
		send:       send,
		transcript: transcript,
		signInHint: DefaultSignInHint,
		theme:      theme,
		styles:     NewStyles(theme),
		turns:      &turnGroup{},
		turnStart:  transcript.Len(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.Spinner.Style = m.styles.Accent
	return m
}

// Running returns whether a reply is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error shown in the status line, if any.
func (m Model) Err() error { return m.err }

// SetRunning is a test helper that puts the model in a running state.
func SetRunning(m Model) (Model, tea.Cmd) {
	m.running = true
	m.turnStart = m.transcript.Len()
	return m, nil
}

// SetRunningWithCancel is a test helper that puts the model in a running state
// with a cancel function.
func SetRunningWithCancel(m Model, cancel func()) (Model, tea.Cmd) {
	m.running = true
	m.cancel = cancel
	m.turnStart = m.transcript.Len()
	return m, nil
}

// Close cancels the reply in flight, if any, and waits for its turn to
// return. Turns submitted after Close never start. The transcript is safe to
// read once Close returns.
func (m Model) Close() {
	if m.turns != nil {
		m.turns.close()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		if m.active != nil {
			m.active.SetIndicator(m.Spinner.View())
			m = m.refresh()
		}
		return m, cmd

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		m = m.refresh()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case ReplyDoneMsg:
		m.running = false
		m.cancel = nil
		m.eventCh = nil
		m.doneCh = nil
		if m.active != nil {
			m.active.Settle()
			m.active = nil
		}
		m = m.syncReply()
		switch {
		case msg.Err == nil, errors.Is(msg.Err, context.Canceled):
		case errors.Is(msg.Err, manna.ErrSignedOut):
			m.blocks = append(m.blocks, NewSignInBlock(m.signInHint, m.styles))
		default:
			m.err = msg.Err
			m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
		}
		m = m.refresh()
		cmd := m.Input.Focus()
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderTranscript()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		if err := manna.Authorize(m.identity, manna.MemberRoleMember); err != nil {
			m = m.showSignIn()
			return m, nil
		}
		text := m.Input.Value()
		if !m.transcript.CanSend(text) {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyTab:
		if !m.running && m.suggestions != nil {
			m.Input.SetValue(m.suggestions.Next())
			m.Input.CursorEnd()
			m = m.refresh()
		}
		return m, nil
	}

	// Only non-character keys reach the viewport so typing j/k doesn't scroll.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	m = m.dropSuggestions()

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m = m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.reply = nil
	m.turnStart = m.transcript.Len()
	m.eventCh = make(chan manna.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startSend(m.turns, m.send, ctx, cancel, text, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
		m.Spinner.Tick,
	)
}

// showSignIn appends the sign-in notice unless it is already the last block.
func (m Model) showSignIn() Model {
	if n := len(m.blocks); n > 0 {
		if _, ok := m.blocks[n-1].(*SignInBlock); ok {
			return m
		}
	}
	m.blocks = append(m.blocks, NewSignInBlock(m.signInHint, m.styles))
	return m.refresh()
}

func (m Model) dropSuggestions() Model {
	if m.suggestions == nil {
		return m
	}
	blocks := make([]MessageBlock, 0, len(m.blocks))
	for _, b := range m.blocks {
		if b != MessageBlock(m.suggestions) {
			blocks = append(blocks, b)
		}
	}
	m.blocks = blocks
	m.suggestions = nil
	return m
}

// renderTranscript creates blocks from the messages already in the transcript.
func (m Model) renderTranscript() Model {
	for _, msg := range m.transcript.Messages() {
		switch msg.Role {
		case manna.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Content, m.styles))
		case manna.RoleAssistant:
			m.blocks = append(m.blocks, NewSettledTextBlock(msg.Content, m.theme, m.styles))
		}
	}
	if m.transcript.Len() == 1 {
		m.suggestions = NewSuggestionsBlock(SuggestedQuestions, m.styles)
		m.blocks = append(m.blocks, m.suggestions)
	}
	if m.identity == nil {
		m.blocks = append(m.blocks, NewSignInBlock(m.signInHint, m.styles))
	}
	return m
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// processEvent routes a conversation event to the active reply block.
func (m Model) processEvent(evt manna.Event) Model {
	switch e := evt.(type) {
	case manna.EventReplyStarted:
		b := NewAssistantTextBlock(m.theme, m.styles)
		b.SetIndicator(m.Spinner.View())
		m.blocks = append(m.blocks, b)
		m.active = b
		m.reply = b
	case manna.EventTextDelta:
		if m.active != nil {
			m.active.Append(e.Delta)
		}
	case manna.EventReplySettled:
		if m.active != nil {
			m.active.Settle()
			m.active = nil
		}
	}
	return m
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	if m.err != nil {
		text := fmt.Sprintf(" Error: %v ", m.err)
		if width > 0 {
			text = runewidth.Truncate(text, width, "…")
		}
		return m.styles.Toast.Render(text)
	}
	if m.running {
		return m.styles.Muted.Render("Waiting for the reply... Ctrl+C to stop")
	}
	if m.suggestions != nil {
		return m.styles.Muted.Render("Enter to send, Tab for a suggestion, Ctrl+C to quit")
	}
	return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
}

// syncReply replaces the reply block with the settled transcript content.
// Events dropped after cancellation would otherwise leave the view short of
// what the transcript holds. The send goroutine has returned, so reading the
// transcript is safe.
func (m Model) syncReply() Model {
	last := m.transcript.Last()
	if m.transcript.Len()-1 < m.turnStart || last.Role != manna.RoleAssistant {
		m.reply = nil
		return m
	}
	settled := NewSettledTextBlock(last.Content, m.theme, m.styles)
	replaced := false
	if m.reply != nil {
		for i, b := range m.blocks {
			if b == MessageBlock(m.reply) {
				m.blocks[i] = settled
				replaced = true
				break
			}
		}
	}
	if !replaced {
		m.blocks = append(m.blocks, settled)
	}
	m.reply = nil
	return m
}

// turnGroup tracks the send goroutine shared by every copy of a Model so the
// program owner can stop it after the program exits.
type turnGroup struct {
	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// begin registers a turn. It reports false once the group is closed.
func (g *turnGroup) begin(cancel context.CancelFunc) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.cancel = cancel
	g.wg.Add(1)
	return true
}

func (g *turnGroup) end() {
	g.mu.Lock()
	g.cancel = nil
	g.mu.Unlock()
	g.wg.Done()
}

func (g *turnGroup) close() {
	g.mu.Lock()
	g.closed = true
	if g.cancel != nil {
		g.cancel()
	}
	g.mu.Unlock()
	g.wg.Wait()
}

// startSend runs one turn in a goroutine and signals completion.
func startSend(turns *turnGroup, send SendFunc, ctx context.Context, cancel context.CancelFunc, text string, eventCh chan<- manna.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		if !turns.begin(cancel) {
			cancel()
			close(eventCh)
			doneCh <- context.Canceled
			return nil
		}
		defer turns.end()
		err := send(ctx, text, func(e manna.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event from the channel.
// When the channel closes, it reads the error from doneCh and returns ReplyDoneMsg.
func listenForEvent(ch <-chan manna.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			err := <-doneCh
			return ReplyDoneMsg{Err: err}
		}
		return StreamEventMsg{Event: evt}
	}
}
