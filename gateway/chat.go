package gateway

import (
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/faithbaptist/manna"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tmaxmax/go-sse"
)

// ChatSystemPrompt frames every chat conversation.
const ChatSystemPrompt = `You are a warm and knowledgeable Bible study assistant for Faith Baptist Church.
Help members understand scripture, explore its historical and cultural context, and apply it to daily life.
Quote verses with their references, stay faithful to the text, and answer with humility when a passage is debated.
Keep answers clear and encouraging, and suggest related passages when they would help.`

const doneMarker = "[DONE]"

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (r chatRequest) toMessages() ([]manna.Message, error) {
	if len(r.Messages) == 0 {
		return nil, fmt.Errorf("%w: messages are required", manna.ErrValidation)
	}
	msgs := make([]manna.Message, 0, len(r.Messages))
	for i, m := range r.Messages {
		role := manna.Role(m.Role)
		if role != manna.RoleUser && role != manna.RoleAssistant {
			return nil, fmt.Errorf("%w: message %d has unknown role %q", manna.ErrValidation, i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		msgs = append(msgs, manna.Message{Role: role, Content: m.Content, State: manna.MessageStateSettled})
	}
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != manna.RoleUser {
		return nil, fmt.Errorf("%w: conversation must end with a member message", manna.ErrValidation)
	}
	return msgs, nil
}

// handleChat streams the assistant reply as chat.completion.chunk frames
// ending with [DONE]. Upstream failures before the first fragment are
// answered with a JSON error; failures after it abort the connection so the
// client sees a truncated stream rather than a complete reply.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", manna.ErrValidation, err))
		return
	}
	msgs, err := req.toMessages()
	if err != nil {
		s.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	next, stop := iter.Pull2(s.svc.Completer.StreamCompletion(ctx, manna.CompletionRequest{
		Model:    s.model,
		System:   ChatSystemPrompt,
		Messages: msgs,
	}))
	defer stop()

	first, err, ok := next()
	if ok && err != nil {
		s.metrics.ChatStreamsTotal.WithLabelValues("failed").Inc()
		s.writeError(c, err)
		return
	}

	w := newChunkWriter(c, s.model, s.now().Unix())
	if ok {
		if err := w.delta(first); err != nil {
			s.streamBroken(err)
			return
		}
		for {
			text, err, ok := next()
			if !ok {
				break
			}
			if err != nil {
				if ctx.Err() != nil {
					s.metrics.ChatStreamsTotal.WithLabelValues("interrupted").Inc()
					return
				}
				s.metrics.ChatStreamsTotal.WithLabelValues("failed").Inc()
				s.logger.Error().Err(err).Msg("upstream failed mid-stream")
				panic(http.ErrAbortHandler)
			}
			if err := w.delta(text); err != nil {
				s.streamBroken(err)
				return
			}
		}
	}
	if err := w.finish(); err != nil {
		s.streamBroken(err)
		return
	}
	s.metrics.ChatStreamsTotal.WithLabelValues("completed").Inc()
}

func (s *Server) streamBroken(err error) {
	s.metrics.ChatStreamsTotal.WithLabelValues("interrupted").Inc()
	s.logger.Debug().Err(err).Msg("client went away")
}

// chunkWriter writes OpenAI-style chunks as server-sent events.
type chunkWriter struct {
	c       *gin.Context
	id      string
	model   string
	created int64
	started bool
}

func newChunkWriter(c *gin.Context, model string, created int64) *chunkWriter {
	return &chunkWriter{c: c, id: "chatcmpl-" + uuid.NewString(), model: model, created: created}
}

func (w *chunkWriter) start() {
	if w.started {
		return
	}
	w.started = true
	h := w.c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.c.Status(http.StatusOK)
}

func (w *chunkWriter) delta(text string) error {
	if text == "" {
		return nil
	}
	return w.chunk(goopenai.ChatCompletionStreamChoiceDelta{Role: string(manna.RoleAssistant), Content: text}, "")
}

func (w *chunkWriter) finish() error {
	if err := w.chunk(goopenai.ChatCompletionStreamChoiceDelta{}, goopenai.FinishReasonStop); err != nil {
		return err
	}
	return w.write(doneMarker)
}

func (w *chunkWriter) chunk(delta goopenai.ChatCompletionStreamChoiceDelta, finish goopenai.FinishReason) error {
	data, err := json.Marshal(goopenai.ChatCompletionStreamResponse{
		ID:      w.id,
		Object:  "chat.completion.chunk",
		Created: w.created,
		Model:   w.model,
		Choices: []goopenai.ChatCompletionStreamChoice{{
			Index:        0,
			Delta:        delta,
			FinishReason: finish,
		}},
	})
	if err != nil {
		return err
	}
	return w.write(string(data))
}

func (w *chunkWriter) write(payload string) error {
	w.start()
	var msg sse.Message
	msg.AppendData(payload)
	if _, err := msg.WriteTo(w.c.Writer); err != nil {
		return err
	}
	w.c.Writer.Flush()
	return w.c.Request.Context().Err()
}
