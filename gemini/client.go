package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/faithbaptist/manna"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ manna.Completer = (*Client)(nil)

// Client implements [manna.Completer] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

type options struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*options)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	o := options{model: defaultModel}
	for _, opt := range opts {
		opt(&o)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  o.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: o.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Client{client: gc, model: o.model}, nil
}

// StreamCompletion streams the model's answer as text fragments.
func (c *Client) StreamCompletion(ctx context.Context, req manna.CompletionRequest) iter.Seq2[string, error] {
	seq := c.client.Models.GenerateContentStream(ctx, c.modelFor(req), ConvertMessages(req.Messages), buildConfig(req))
	return textDeltas(seq)
}

// Complete returns the model's whole answer.
func (c *Client) Complete(ctx context.Context, req manna.CompletionRequest) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.modelFor(req), ConvertMessages(req.Messages), buildConfig(req))
	if err != nil {
		return "", mapError(err)
	}
	return responseText(resp), nil
}

func (c *Client) modelFor(req manna.CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

func buildConfig(req manna.CompletionRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: defaultMaxTokens,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	return config
}

// ConvertMessages converts transcript messages to genai Contents. The
// greeting and empty messages are skipped.
// Exported for testing.
func ConvertMessages(msgs []manna.Message) []*genai.Content {
	var result []*genai.Content
	for _, m := range msgs {
		if m.ID == manna.GreetingID || strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := genai.RoleUser
		if m.Role == manna.RoleAssistant {
			role = genai.RoleModel
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return result
}

// mapError exposes status-bearing API errors as [manna.TransportError].
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return &manna.TransportError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini: %w", err)
}
