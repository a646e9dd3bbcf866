package aigateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/faithbaptist/manna"
	goopenai "github.com/sashabaranov/go-openai"
)

// Interface compliance check.
var _ manna.Completer = (*Client)(nil)

// Client implements [manna.Completer] for an OpenAI-compatible gateway.
type Client struct {
	client *goopenai.Client
	model  string
}

type options struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*options)

// WithBaseURL sets the gateway base URL. Default is [DefaultBaseURL].
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithModel sets the model ID. Default is google/gemini-2.5-flash.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithHTTPClient sets the HTTP client used for gateway calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New creates a [Client] authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	o := options{baseURL: DefaultBaseURL, model: defaultModel}
	for _, opt := range opts {
		opt(&o)
	}
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(o.baseURL, "/")
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}
	return &Client{client: goopenai.NewClientWithConfig(cfg), model: o.model}
}

// StreamCompletion streams the model's answer as text fragments.
func (c *Client) StreamCompletion(ctx context.Context, req manna.CompletionRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(req, true))
		if err != nil {
			yield("", mapError(err))
			return
		}
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", mapError(err))
				return
			}
			for _, choice := range resp.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !yield(choice.Delta.Content, nil) {
					return
				}
			}
		}
	}
}

// Complete returns the model's whole answer.
func (c *Client) Complete(ctx context.Context, req manna.CompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req, false))
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) buildRequest(req manna.CompletionRequest, stream bool) goopenai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	return goopenai.ChatCompletionRequest{
		Model:    model,
		Messages: ConvertMessages(req.System, req.Messages),
		Stream:   stream,
	}
}

// ConvertMessages builds the gateway message list: the system prompt first,
// then the conversation without the greeting and blank messages.
// Exported for testing.
func ConvertMessages(system string, msgs []manna.Message) []goopenai.ChatCompletionMessage {
	var out []goopenai.ChatCompletionMessage
	if system != "" {
		out = append(out, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range msgs {
		if m.ID == manna.GreetingID || strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := goopenai.ChatMessageRoleUser
		if m.Role == manna.RoleAssistant {
			role = goopenai.ChatMessageRoleAssistant
		}
		out = append(out, goopenai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// mapError exposes status-bearing gateway errors as [manna.TransportError].
func mapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &manna.TransportError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &manna.TransportError{StatusCode: reqErr.HTTPStatusCode, Message: strings.TrimSpace(string(reqErr.Body))}
	}
	return fmt.Errorf("aigateway: %w", err)
}
