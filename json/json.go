// Package json stores chat transcripts as versioned JSON files.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/faithbaptist/manna"
)

// Version is the current file format version.
const Version = 1

// envelope is the v1 wire format for a saved transcript.
type envelope struct {
	Version  int          `json:"version"`
	SavedAt  time.Time    `json:"saved_at"`
	Greeting messageDTO   `json:"greeting"`
	Messages []messageDTO `json:"messages"`
}

type messageDTO struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	State     string    `json:"state,omitempty"`
}

// MarshalTranscript serializes t in the v1 envelope format.
func MarshalTranscript(t *manna.Transcript, savedAt time.Time) ([]byte, error) {
	history := t.History()
	env := envelope{
		Version:  Version,
		SavedAt:  savedAt,
		Greeting: marshalMessage(t.Greeting()),
		Messages: make([]messageDTO, len(history)),
	}
	for i, m := range history {
		env.Messages[i] = marshalMessage(m)
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript rebuilds a transcript from the v1 envelope format.
// Replies saved while still in flight come back settled.
func UnmarshalTranscript(data []byte) (*manna.Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	greeting, err := unmarshalMessage(env.Greeting)
	if err != nil {
		return nil, fmt.Errorf("greeting: %w", err)
	}
	history := make([]manna.Message, len(env.Messages))
	for i, dto := range env.Messages {
		m, err := unmarshalMessage(dto)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		history[i] = m
	}
	return manna.RestoreTranscript(greeting, history), nil
}

// Save writes t to path atomically, creating parent directories as needed.
func Save(path string, t *manna.Transcript, savedAt time.Time) error {
	data, err := MarshalTranscript(t, savedAt)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a transcript from path.
func Load(path string) (*manna.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}

func marshalMessage(m manna.Message) messageDTO {
	return messageDTO{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.Timestamp,
		State:     m.State.String(),
	}
}

func unmarshalMessage(dto messageDTO) (manna.Message, error) {
	role := manna.Role(dto.Role)
	if role != manna.RoleUser && role != manna.RoleAssistant {
		return manna.Message{}, fmt.Errorf("unknown role %q", dto.Role)
	}
	return manna.Message{
		ID:        dto.ID,
		Role:      role,
		Content:   dto.Content,
		Timestamp: dto.Timestamp,
		State:     manna.MessageStateSettled,
	}, nil
}
