// Package aigateway implements [manna.Completer] over an OpenAI-compatible
// AI gateway using the go-openai client.
package aigateway

const (
	// DefaultBaseURL is the AI gateway endpoint used when none is configured.
	DefaultBaseURL = "https://ai.gateway.lovable.dev/v1"

	defaultModel = "google/gemini-2.5-flash"
)
