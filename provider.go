package manna

import (
	"context"
	"iter"
)

// Provider opens a streamed assistant reply for a conversation.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Request carries the conversation sent upstream. Messages never include the
// synthetic greeting.
type Request struct {
	Messages []Message
}

// Completer generates assistant text from an upstream model. The gateway
// uses it to answer chat and personalized-verse requests.
type Completer interface {
	// StreamCompletion yields text fragments in order. A non-nil error ends
	// the sequence.
	StreamCompletion(ctx context.Context, req CompletionRequest) iter.Seq2[string, error]
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is an upstream model request. The completer uses its own
// default model when Model is empty.
type CompletionRequest struct {
	Model    string
	System   string
	Messages []Message
}
