package gemini

import (
	"iter"

	"google.golang.org/genai"
)

// TextDeltas exports textDeltas for testing.
func TextDeltas(src iter.Seq2[*genai.GenerateContentResponse, error]) iter.Seq2[string, error] {
	return textDeltas(src)
}
