package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/faithbaptist/manna"
)

// Interface compliance check.
var _ manna.Provider = (*Client)(nil)

// Client implements [manna.Provider] for the chat function.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a [Client] that posts to endpoint with token as the bearer
// credential.
func New(endpoint, token string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream posts the conversation and returns a [manna.Stream] over the reply.
// A non-success status returns a *[manna.TransportError]; a success without a
// body returns [manna.ErrNoResponseBody].
func (c *Client) Stream(ctx context.Context, req manna.Request) (manna.Stream, error) {
	body, err := json.Marshal(apiRequest{Messages: convertMessages(req.Messages)})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, manna.ErrNoResponseBody
	}

	return newStream(ctx, resp.Body), nil
}

func convertMessages(msgs []manna.Message) []apiMessage {
	result := make([]apiMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.ID == manna.GreetingID {
			continue
		}
		result = append(result, apiMessage{Role: string(m.Role), Content: m.Content})
	}
	return result
}

func parseHTTPError(resp *http.Response) error {
	tErr := &manna.TransportError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tErr
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		tErr.Message = apiErr.text()
	}
	return tErr
}
