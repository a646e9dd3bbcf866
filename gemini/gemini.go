// Package gemini implements [manna.Completer] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating transcript messages
// into Gemini contents. Streaming uses the SDK's iter.Seq2 iterator, narrowed
// to the text fragments of each response chunk.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 8192
)
