package manna

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// GreetingID identifies the synthetic greeting that opens every transcript.
const GreetingID = "greeting"

// DefaultGreeting is the assistant's opening line.
const DefaultGreeting = "Hello! I'm your Bible study assistant. I can help you understand scripture, " +
	"answer questions about the Bible, summarize teachings, and provide spiritual guidance. " +
	"How can I help you today?"

// Action is a sealed interface describing one transcript mutation. Apply is
// the only way to change a Transcript.
type Action interface {
	action()
}

// AppendUser appends a settled user message. Text is trimmed.
type AppendUser struct {
	ID        string
	Text      string
	Timestamp time.Time
}

func (AppendUser) action() {}

// BeginAssistant appends a pending assistant reply.
type BeginAssistant struct {
	ID        string
	Timestamp time.Time
}

func (BeginAssistant) action() {}

// AppendDelta extends the in-flight reply.
type AppendDelta struct {
	Delta string
}

func (AppendDelta) action() {}

// Settle finalizes the in-flight reply with whatever content it has.
type Settle struct{}

func (Settle) action() {}

// Interface compliance checks.
var (
	_ Action = AppendUser{}
	_ Action = BeginAssistant{}
	_ Action = AppendDelta{}
	_ Action = Settle{}
)

// Transcript is the ordered message list of one conversation. The first
// message is always the synthetic greeting. At most one assistant reply is
// in flight, and it is always the last message.
//
// A Transcript is not safe for concurrent use; the goroutine that owns the
// conversation applies all actions.
type Transcript struct {
	messages []Message
}

// NewTranscript returns a transcript holding only the greeting.
func NewTranscript(greeting string, at time.Time) *Transcript {
	return &Transcript{messages: []Message{{
		ID:        GreetingID,
		Role:      RoleAssistant,
		Content:   greeting,
		Timestamp: at,
		State:     MessageStateSettled,
	}}}
}

// RestoreTranscript rebuilds a transcript from a greeting and previously
// stored history. Replies that never settled are settled with their partial
// content.
func RestoreTranscript(greeting Message, history []Message) *Transcript {
	greeting.ID = GreetingID
	greeting.Role = RoleAssistant
	greeting.State = MessageStateSettled
	msgs := make([]Message, 0, len(history)+1)
	msgs = append(msgs, greeting)
	for _, m := range history {
		m.State = MessageStateSettled
		msgs = append(msgs, m)
	}
	return &Transcript{messages: msgs}
}

// Apply performs a single mutation and returns the message it touched.
func (t *Transcript) Apply(a Action) (Message, error) {
	switch a := a.(type) {
	case AppendUser:
		if t.InFlight() {
			return Message{}, ErrInFlight
		}
		if strings.TrimSpace(a.Text) == "" {
			return Message{}, ErrBlankInput
		}
		m := Message{ID: a.ID, Role: RoleUser, Content: a.Text, Timestamp: a.Timestamp, State: MessageStateSettled}
		t.messages = append(t.messages, m)
		return m, nil
	case BeginAssistant:
		if t.InFlight() {
			return Message{}, ErrInFlight
		}
		m := Message{ID: a.ID, Role: RoleAssistant, Timestamp: a.Timestamp, State: MessageStatePending}
		t.messages = append(t.messages, m)
		return m, nil
	case AppendDelta:
		m := t.inFlight()
		if m == nil {
			return Message{}, ErrNotInFlight
		}
		if m.State == MessageStatePending {
			advance(m, MessageStateStreaming)
		}
		m.Content += a.Delta
		return *m, nil
	case Settle:
		m := t.inFlight()
		if m == nil {
			return Message{}, ErrNotInFlight
		}
		// A reply that never received a delta still passes through streaming.
		if m.State == MessageStatePending {
			advance(m, MessageStateStreaming)
		}
		advance(m, MessageStateSettled)
		return *m, nil
	}
	return Message{}, fmt.Errorf("%w: unknown action %T", ErrValidation, a)
}

func advance(m *Message, to MessageState) {
	if to != m.State+1 {
		panic(fmt.Sprintf("manna: illegal transition %s -> %s", m.State, to))
	}
	m.State = to
}

func (t *Transcript) inFlight() *Message {
	last := &t.messages[len(t.messages)-1]
	if !last.InFlight() {
		return nil
	}
	return last
}

// InFlight reports whether an assistant reply is pending or streaming.
func (t *Transcript) InFlight() bool {
	return t.inFlight() != nil
}

// CanSend reports whether input may be sent now: nothing is in flight and
// the trimmed input is non-blank.
func (t *Transcript) CanSend(input string) bool {
	return !t.InFlight() && strings.TrimSpace(input) != ""
}

// Messages returns a copy of every message, greeting first.
func (t *Transcript) Messages() []Message {
	return slices.Clone(t.messages)
}

// History returns a copy of the messages sent upstream: everything except
// the greeting.
func (t *Transcript) History() []Message {
	return slices.Clone(t.messages[1:])
}

// Greeting returns the synthetic first message.
func (t *Transcript) Greeting() Message {
	return t.messages[0]
}

// Last returns the most recent message.
func (t *Transcript) Last() Message {
	return t.messages[len(t.messages)-1]
}

// Len returns the number of messages including the greeting.
func (t *Transcript) Len() int {
	return len(t.messages)
}
