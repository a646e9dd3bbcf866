package mock

import "github.com/faithbaptist/manna"

// Interface compliance check.
var _ manna.Stream = (*Stream)(nil)

// Stream is a test double for manna.Stream.
// Set the function fields for the methods you need. NextFn and ReplyFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value) because test code commonly calls defer stream.Close()
// and these methods rarely need custom behavior.
type Stream struct {
	NextFn  func() (manna.Event, error)
	StateFn func() manna.StreamState
	ReplyFn func() (string, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (manna.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() manna.StreamState {
	if s.StateFn == nil {
		return manna.StreamStateNew
	}
	return s.StateFn()
}

// Reply delegates to ReplyFn.
func (s *Stream) Reply() (string, error) {
	return s.ReplyFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Deltas returns a Stream that yields each text as an EventTextDelta, then
// returns end, which is usually io.EOF.
func Deltas(end error, texts ...string) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (manna.Event, error) {
			if i >= len(texts) {
				return nil, end
			}
			i++
			return manna.EventTextDelta{Delta: texts[i-1]}, nil
		},
	}
}
