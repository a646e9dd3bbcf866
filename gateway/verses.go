package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/faithbaptist/manna"
	"github.com/gin-gonic/gin"
)

// Personalized verse request types.
const (
	VerseTypeDaily       = "daily_verse"
	VerseTypeSuggestions = "reading_suggestions"
)

type verseRequest struct {
	ReadingHistory  []string `json:"readingHistory"`
	BookmarkedBooks []string `json:"bookmarkedBooks"`
	CurrentBook     string   `json:"currentBook"`
	Type            string   `json:"type"`
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

// prompts returns the system and user prompts for r.
func (r verseRequest) prompts() (system, user string) {
	switch r.Type {
	case VerseTypeDaily:
		system = `You are a wise biblical scholar and spiritual guide for Faith Baptist Church.
Based on the user's reading habits and interests, suggest a daily verse that would be meaningful to them.
Always include:
1. The verse reference (book chapter:verse)
2. The full verse text
3. A personalized reflection on why this verse is relevant to them
4. A short prayer or meditation prompt

Format your response as JSON with keys: verseReference, verseText, reflection, prayer`
		current := r.CurrentBook
		if current == "" {
			current = "the Bible"
		}
		user = fmt.Sprintf(`The user has been reading: %s.
They have bookmarked verses from: %s.
Currently reading: %s.

Suggest a personalized verse for today that connects with their spiritual journey.`,
			joinOr(r.ReadingHistory, "various books"), joinOr(r.BookmarkedBooks, "various books"), current)

	case VerseTypeSuggestions:
		system = `You are a biblical study guide for Faith Baptist Church.
Based on the user's reading patterns, suggest related passages and books they might enjoy.
Provide 3-5 suggestions with brief explanations of why they might resonate.

Format as JSON with key: suggestions (array of {book, chapter, reason})`
		user = fmt.Sprintf(`The user has been reading: %s.
Bookmarked: %s.

What should they read next to deepen their understanding?`,
			joinOr(r.ReadingHistory, "various books"), joinOr(r.BookmarkedBooks, "nothing yet"))

	default:
		system = `You are a compassionate biblical wisdom guide for Faith Baptist Church.
Provide encouragement and biblical insights tailored to the user's spiritual journey.`
		if len(r.ReadingHistory) > 0 {
			user = fmt.Sprintf("Based on their interest in %s, share words of wisdom.", strings.Join(r.ReadingHistory, ", "))
		} else {
			user = "Share an encouraging word for today's journey."
		}
	}
	return system, user
}

var (
	jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFence  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// parseAnswer decodes the model's answer as JSON, looking inside a code
// fence when there is one. Anything else is wrapped as {"message": text}.
func parseAnswer(text string) any {
	candidate := text
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if m := anyFence.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return gin.H{"message": text}
	}
	return v
}

func (s *Server) handlePersonalizedVerses(c *gin.Context) {
	var req verseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", manna.ErrValidation, err))
		return
	}
	system, user := req.prompts()
	answer, err := s.svc.Completer.Complete(c.Request.Context(), manna.CompletionRequest{
		Model:    s.model,
		System:   system,
		Messages: []manna.Message{{Role: manna.RoleUser, Content: user, State: manna.MessageStateSettled}},
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, parseAnswer(answer))
}
