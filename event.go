package manna

// Event is a sealed interface representing a conversation event.
// Events are purely semantic. Transport/protocol errors come from
// Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventTextDelta carries a fragment of assistant reply text.
type EventTextDelta struct {
	Delta string
}

func (EventTextDelta) event() {}

// EventReplyStarted signals that a pending assistant reply entered the
// transcript.
type EventReplyStarted struct {
	ID string
}

func (EventReplyStarted) event() {}

// EventReplySettled carries the reply in its final state, complete or partial.
type EventReplySettled struct {
	Message Message
}

func (EventReplySettled) event() {}

// Interface compliance checks.
var (
	_ Event = EventTextDelta{}
	_ Event = EventReplyStarted{}
	_ Event = EventReplySettled{}
)
