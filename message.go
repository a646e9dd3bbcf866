package manna

import "time"

// MessageState is the lifecycle position of a transcript message. States only
// move forward: pending, then streaming, then settled.
type MessageState int

const (
	MessageStatePending   MessageState = iota // Created, no delta received yet.
	MessageStateStreaming                     // Receiving deltas.
	MessageStateSettled                       // Final. Content never changes again.
)

// String returns the lowercase state name.
func (s MessageState) String() string {
	switch s {
	case MessageStatePending:
		return "pending"
	case MessageStateStreaming:
		return "streaming"
	case MessageStateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Message is one entry of a conversation transcript. User messages are created
// settled. Assistant replies start pending and accumulate Content as deltas
// arrive.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	State     MessageState
}

// InFlight reports whether m is an assistant reply that has not settled.
func (m Message) InFlight() bool {
	return m.Role == RoleAssistant && m.State != MessageStateSettled
}
