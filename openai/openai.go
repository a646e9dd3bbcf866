// Package openai implements [manna.Provider] for the congregation chat
// function, which streams OpenAI-style chat completion chunks.
//
// The response body is split into frames by [sse.Reader]; each data frame
// carries a chat.completion.chunk whose choices[0].delta.content extends the
// reply. A "[DONE]" frame ends the reply.
package openai

import (
	"encoding/json"

	goopenai "github.com/sashabaranov/go-openai"
)

const doneMarker = "[DONE]"

// apiRequest is the JSON body sent to the chat function.
type apiRequest struct {
	Messages []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiErrorResponse covers the error bodies the chat function and the
// gateways in front of it return: {"error":"..."}, {"error":{"message":"..."}}
// and {"message":"..."}.
type apiErrorResponse struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

func (r apiErrorResponse) text() string {
	if len(r.Error) > 0 {
		var s string
		if err := json.Unmarshal(r.Error, &s); err == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(r.Error, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
	}
	return r.Message
}

// parseDelta extracts choices[0].delta.content from a chunk payload. It
// reports false when the payload is not a chunk.
func parseDelta(payload string) (string, bool) {
	var chunk goopenai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", true
	}
	return chunk.Choices[0].Delta.Content, true
}
