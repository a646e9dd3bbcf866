package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/sse"
)

// stream implements [manna.Stream] by folding chunk deltas from a response
// body.
type stream struct {
	body   io.ReadCloser
	frames *sse.Reader
	ctx    context.Context
	state  manna.StreamState
	reply  strings.Builder
	err    error // terminal error, if any
}

// Interface compliance check.
var _ manna.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:   body,
		frames: sse.NewReader(body),
		ctx:    ctx,
		state:  manna.StreamStateNew,
	}
}

// Next returns the next non-empty delta. Returns io.EOF when the reply ends,
// either at the "[DONE]" frame or at the end of the body.
func (s *stream) Next() (manna.Event, error) {
	switch s.state {
	case manna.StreamStateComplete:
		return nil, io.EOF
	case manna.StreamStateError:
		return nil, s.err
	case manna.StreamStateClosed:
		return nil, fmt.Errorf("openai: %w", manna.ErrStreamClosed)
	}

	for {
		f, err := s.frames.Next()
		if errors.Is(err, io.EOF) {
			s.state = manna.StreamStateComplete
			return nil, io.EOF
		}
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		s.state = manna.StreamStateStreaming

		if f.Kind != sse.KindData {
			continue
		}

		if f.Payload == doneMarker {
			if s.frames.Flushing() {
				s.state = manna.StreamStateComplete
				return nil, io.EOF
			}
			// Lines buffered behind the marker still get the flush pass.
			s.frames.Finish()
			continue
		}

		delta, ok := parseDelta(f.Payload)
		if !ok {
			// The frame may be a chunk cut short by a stray terminator.
			// Put it back and wait for more bytes; in the flush pass the
			// frame is dropped.
			s.frames.Unread(f)
			continue
		}
		if delta == "" {
			continue
		}
		s.reply.WriteString(delta)
		return manna.EventTextDelta{Delta: delta}, nil
	}
}

// State returns the current stream state.
func (s *stream) State() manna.StreamState {
	return s.state
}

// Reply returns the text accumulated so far.
func (s *stream) Reply() (string, error) {
	if s.state == manna.StreamStateNew {
		return "", fmt.Errorf("openai: %w", manna.ErrStreamNotReady)
	}
	return s.reply.String(), nil
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != manna.StreamStateComplete && s.state != manna.StreamStateError {
		s.state = manna.StreamStateClosed
	}
	return s.body.Close()
}

func (s *stream) terminate(err error) {
	s.state = manna.StreamStateError
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.err = fmt.Errorf("openai: %w", ctxErr)
		return
	}
	s.err = fmt.Errorf("openai: %w", err)
}
