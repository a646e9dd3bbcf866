package gemini_test

import (
	"errors"
	"testing"

	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockChunks returns a genai-style streaming iterator from pre-built chunks,
// ending with end when it is non-nil.
func mockChunks(chunks []*genai.GenerateContentResponse, end error) func(func(*genai.GenerateContentResponse, error) bool) {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
		if end != nil {
			yield(nil, end)
		}
	}
}

func textChunk(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}}},
	}
}

func TestTextDeltas(t *testing.T) {
	t.Parallel()

	t.Run("yields text in order", func(t *testing.T) {
		t.Parallel()
		chunks := []*genai.GenerateContentResponse{
			textChunk(&genai.Part{Text: "The Lord "}),
			textChunk(&genai.Part{Text: "is my shepherd"}),
		}
		var got []string
		for text, err := range gemini.TextDeltas(mockChunks(chunks, nil)) {
			require.NoError(t, err)
			got = append(got, text)
		}
		assert.Equal(t, []string{"The Lord ", "is my shepherd"}, got)
	})

	t.Run("skips thoughts and empty chunks", func(t *testing.T) {
		t.Parallel()
		chunks := []*genai.GenerateContentResponse{
			textChunk(&genai.Part{Text: "planning", Thought: true}),
			{},
			textChunk(&genai.Part{Text: "Amen"}),
		}
		var got []string
		for text, err := range gemini.TextDeltas(mockChunks(chunks, nil)) {
			require.NoError(t, err)
			got = append(got, text)
		}
		assert.Equal(t, []string{"Amen"}, got)
	})

	t.Run("api error becomes transport error", func(t *testing.T) {
		t.Parallel()
		end := genai.APIError{Code: 429, Message: "Resource exhausted", Status: "RESOURCE_EXHAUSTED"}
		var got []string
		var gotErr error
		for text, err := range gemini.TextDeltas(mockChunks([]*genai.GenerateContentResponse{textChunk(&genai.Part{Text: "partial"})}, end)) {
			if err != nil {
				gotErr = err
				break
			}
			got = append(got, text)
		}
		assert.Equal(t, []string{"partial"}, got)
		var tErr *manna.TransportError
		require.True(t, errors.As(gotErr, &tErr))
		assert.Equal(t, 429, tErr.StatusCode)
		assert.Equal(t, "Resource exhausted", tErr.Message)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		for _, err := range gemini.TextDeltas(mockChunks(nil, boom)) {
			require.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), "gemini:")
		}
	})

	t.Run("stops when the consumer stops", func(t *testing.T) {
		t.Parallel()
		chunks := []*genai.GenerateContentResponse{
			textChunk(&genai.Part{Text: "one"}),
			textChunk(&genai.Part{Text: "two"}),
		}
		n := 0
		for range gemini.TextDeltas(mockChunks(chunks, nil)) {
			n++
			break
		}
		assert.Equal(t, 1, n)
	})
}
