// Package chat runs conversation turns between a member and the assistant.
//
// A [Conversation] owns a [manna.Transcript]. Send appends the member's
// message, opens a reply stream from a [manna.Provider] and folds each delta
// into the transcript until the reply settles. The goroutine that calls Send
// is the only writer of the transcript while the turn runs.
package chat

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Conversation orchestrates one member's chat with the assistant.
type Conversation struct {
	provider   manna.Provider
	transcript *manna.Transcript
	identity   *manna.Identity
	logger     zerolog.Logger
	newID      func() string
	now        func() time.Time
}

// Option configures a [Conversation].
type Option func(*Conversation)

// WithIdentity sets the signed-in member. Without one, Send returns
// [manna.ErrSignedOut].
func WithIdentity(id *manna.Identity) Option {
	return func(c *Conversation) { c.identity = id }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Conversation) { c.logger = l.With().Str("component", "chat").Logger() }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) { c.now = now }
}

// WithIDGenerator sets the message id source.
func WithIDGenerator(f func() string) Option {
	return func(c *Conversation) { c.newID = f }
}

// New creates a Conversation over transcript.
func New(provider manna.Provider, transcript *manna.Transcript, opts ...Option) *Conversation {
	c := &Conversation{
		provider:   provider,
		transcript: transcript,
		logger:     zerolog.Nop(),
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Transcript returns the conversation's transcript.
func (c *Conversation) Transcript() *manna.Transcript {
	return c.transcript
}

// Identity returns the signed-in member, or nil.
func (c *Conversation) Identity() *manna.Identity {
	return c.identity
}

// Authorize reports whether the conversation's member may chat.
func (c *Conversation) Authorize() error {
	return manna.Authorize(c.identity, manna.MemberRoleMember)
}

// CanSend reports whether Send would accept input now.
func (c *Conversation) CanSend(input string) bool {
	return c.Authorize() == nil && c.transcript.CanSend(input)
}

// SendOption configures a single Send invocation.
type SendOption func(*sendConfig)

type sendConfig struct {
	onEvent func(manna.Event)
}

// WithEventHandler sets a callback that receives each event during the turn.
// If nil or not set, events are silently discarded.
func WithEventHandler(h func(manna.Event)) SendOption {
	return func(c *sendConfig) {
		c.onEvent = h
	}
}

// Send runs one turn.
//
// Send refuses without side effects when the member is signed out, the input
// is blank or a reply is in flight. When the request itself fails, the
// member's message stays in the transcript and no reply is created. When the
// reply fails mid-stream, it settles with its partial content and Send
// returns a *[manna.StreamError]. Failed turns are never retried.
func (c *Conversation) Send(ctx context.Context, text string, opts ...SendOption) error {
	var cfg sendConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	emit := func(e manna.Event) {
		if cfg.onEvent != nil {
			cfg.onEvent(e)
		}
	}

	if err := c.Authorize(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.transcript.Apply(manna.AppendUser{ID: c.newID(), Text: text, Timestamp: c.now()}); err != nil {
		return err
	}

	history := c.transcript.History()
	c.logger.Debug().Int("messages", len(history)).Msg("requesting reply")

	stream, err := c.provider.Stream(ctx, manna.Request{Messages: history})
	if err != nil {
		c.logger.Warn().Err(err).Msg("chat request failed")
		return err
	}
	defer stream.Close()

	reply, err := c.transcript.Apply(manna.BeginAssistant{ID: c.newID(), Timestamp: c.now()})
	if err != nil {
		return err
	}
	emit(manna.EventReplyStarted{ID: reply.ID})

	var streamErr error
	for {
		evt, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if d, ok := evt.(manna.EventTextDelta); ok {
			if _, err := c.transcript.Apply(manna.AppendDelta{Delta: d.Delta}); err != nil {
				streamErr = err
				break
			}
		}
		emit(evt)
	}

	settled, err := c.transcript.Apply(manna.Settle{})
	if err != nil {
		return err
	}
	emit(manna.EventReplySettled{Message: settled})

	if streamErr != nil {
		c.logger.Warn().Err(streamErr).Int("partial", len(settled.Content)).Msg("reply interrupted")
		return &manna.StreamError{Partial: settled.Content, Err: streamErr}
	}
	c.logger.Debug().Str("id", settled.ID).Int("chars", len(settled.Content)).Msg("reply settled")
	return nil
}
