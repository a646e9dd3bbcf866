package manna

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving deltas.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Provider.Stream().
//
// Next() returns EventTextDelta values until the reply ends with io.EOF, or
// a transport error ends it early.
//
// Reply() returns the text accumulated so far. Behavior by stream state:
//   - StreamStateComplete: complete reply, nil error.
//   - StreamStateError, StreamStateStreaming, StreamStateClosed: partial
//     reply, nil error.
//   - StreamStateNew: empty reply, ErrStreamNotReady.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Reply() (string, error)
	Close() error
}
