// Package mock provides test doubles for manna interfaces using function fields.
package mock

import (
	"context"
	"iter"

	"github.com/faithbaptist/manna"
)

// Interface compliance checks.
var (
	_ manna.Provider         = (*Provider)(nil)
	_ manna.Completer        = (*Completer)(nil)
	_ manna.IdentityProvider = (*IdentityProvider)(nil)
)

// Provider is a test double for manna.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req manna.Request) (manna.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req manna.Request) (manna.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Completer is a test double for manna.Completer.
type Completer struct {
	StreamCompletionFn func(ctx context.Context, req manna.CompletionRequest) iter.Seq2[string, error]
	CompleteFn         func(ctx context.Context, req manna.CompletionRequest) (string, error)
}

// StreamCompletion delegates to StreamCompletionFn.
func (c *Completer) StreamCompletion(ctx context.Context, req manna.CompletionRequest) iter.Seq2[string, error] {
	return c.StreamCompletionFn(ctx, req)
}

// Complete delegates to CompleteFn.
func (c *Completer) Complete(ctx context.Context, req manna.CompletionRequest) (string, error) {
	return c.CompleteFn(ctx, req)
}

// IdentityProvider is a test double for manna.IdentityProvider.
type IdentityProvider struct {
	IdentityFn func(ctx context.Context) (*manna.Identity, error)
}

// Identity delegates to IdentityFn.
func (p *IdentityProvider) Identity(ctx context.Context) (*manna.Identity, error) {
	return p.IdentityFn(ctx)
}

// Fragments returns a completion sequence that yields each text, then end
// unless it is nil.
func Fragments(end error, texts ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, t := range texts {
			if !yield(t, nil) {
				return
			}
		}
		if end != nil {
			yield("", end)
		}
	}
}
