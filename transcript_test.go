package manna_test

import (
	"testing"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTranscript() *manna.Transcript {
	return manna.NewTranscript(manna.DefaultGreeting, t0)
}

func TestNewTranscript_StartsWithGreeting(t *testing.T) {
	t.Parallel()
	tr := newTranscript()

	require.Equal(t, 1, tr.Len())
	g := tr.Greeting()
	assert.Equal(t, manna.GreetingID, g.ID)
	assert.Equal(t, manna.RoleAssistant, g.Role)
	assert.Equal(t, manna.MessageStateSettled, g.State)
	assert.Empty(t, tr.History())
	assert.False(t, tr.InFlight())
}

func TestTranscript_AppendUser(t *testing.T) {
	t.Parallel()

	t.Run("keeps the raw text and settles", func(t *testing.T) {
		t.Parallel()
		tr := newTranscript()
		m, err := tr.Apply(manna.AppendUser{ID: "u1", Text: "  What is faith?\n", Timestamp: t0})
		require.NoError(t, err)
		assert.Equal(t, manna.Message{ID: "u1", Role: manna.RoleUser, Content: "  What is faith?\n", Timestamp: t0, State: manna.MessageStateSettled}, m)
		assert.Equal(t, []manna.Message{m}, tr.History())
	})

	t.Run("rejects blank input", func(t *testing.T) {
		t.Parallel()
		tr := newTranscript()
		_, err := tr.Apply(manna.AppendUser{ID: "u1", Text: " \t\n"})
		require.ErrorIs(t, err, manna.ErrBlankInput)
		assert.Equal(t, 1, tr.Len())
	})

	t.Run("rejects while a reply is in flight", func(t *testing.T) {
		t.Parallel()
		tr := newTranscript()
		_, err := tr.Apply(manna.AppendUser{ID: "u1", Text: "hi"})
		require.NoError(t, err)
		_, err = tr.Apply(manna.BeginAssistant{ID: "a1"})
		require.NoError(t, err)

		_, err = tr.Apply(manna.AppendUser{ID: "u2", Text: "again"})
		require.ErrorIs(t, err, manna.ErrInFlight)
		assert.Equal(t, 3, tr.Len())
	})
}

func TestTranscript_ReplyLifecycle(t *testing.T) {
	t.Parallel()
	tr := newTranscript()
	_, err := tr.Apply(manna.AppendUser{ID: "u1", Text: "Explain John 3:16"})
	require.NoError(t, err)

	m, err := tr.Apply(manna.BeginAssistant{ID: "a1", Timestamp: t0})
	require.NoError(t, err)
	assert.Equal(t, manna.MessageStatePending, m.State)
	assert.True(t, tr.InFlight())
	assert.False(t, tr.CanSend("next question"))

	m, err = tr.Apply(manna.AppendDelta{Delta: "For God "})
	require.NoError(t, err)
	assert.Equal(t, manna.MessageStateStreaming, m.State)

	m, err = tr.Apply(manna.AppendDelta{Delta: "so loved"})
	require.NoError(t, err)
	assert.Equal(t, "For God so loved", m.Content)

	m, err = tr.Apply(manna.Settle{})
	require.NoError(t, err)
	assert.Equal(t, manna.MessageStateSettled, m.State)
	assert.Equal(t, "For God so loved", tr.Last().Content)
	assert.False(t, tr.InFlight())
	assert.True(t, tr.CanSend("next question"))
}

func TestTranscript_SettlePendingReply(t *testing.T) {
	t.Parallel()
	tr := newTranscript()
	_, err := tr.Apply(manna.AppendUser{ID: "u1", Text: "hi"})
	require.NoError(t, err)
	_, err = tr.Apply(manna.BeginAssistant{ID: "a1"})
	require.NoError(t, err)

	m, err := tr.Apply(manna.Settle{})
	require.NoError(t, err)
	assert.Equal(t, manna.MessageStateSettled, m.State)
	assert.Empty(t, m.Content)
}

func TestTranscript_MutationsWithoutReply(t *testing.T) {
	t.Parallel()
	tr := newTranscript()

	_, err := tr.Apply(manna.AppendDelta{Delta: "x"})
	require.ErrorIs(t, err, manna.ErrNotInFlight)
	_, err = tr.Apply(manna.Settle{})
	require.ErrorIs(t, err, manna.ErrNotInFlight)
	assert.Equal(t, manna.DefaultGreeting, tr.Greeting().Content)
}

func TestTranscript_SettledReplyIsFinal(t *testing.T) {
	t.Parallel()
	tr := newTranscript()
	_, err := tr.Apply(manna.AppendUser{ID: "u1", Text: "hi"})
	require.NoError(t, err)
	_, err = tr.Apply(manna.BeginAssistant{ID: "a1"})
	require.NoError(t, err)
	_, err = tr.Apply(manna.AppendDelta{Delta: "done"})
	require.NoError(t, err)
	_, err = tr.Apply(manna.Settle{})
	require.NoError(t, err)

	_, err = tr.Apply(manna.AppendDelta{Delta: " more"})
	require.ErrorIs(t, err, manna.ErrNotInFlight)
	assert.Equal(t, "done", tr.Last().Content)
}

func TestTranscript_SecondReplyRejected(t *testing.T) {
	t.Parallel()
	tr := newTranscript()
	_, err := tr.Apply(manna.AppendUser{ID: "u1", Text: "hi"})
	require.NoError(t, err)
	_, err = tr.Apply(manna.BeginAssistant{ID: "a1"})
	require.NoError(t, err)

	_, err = tr.Apply(manna.BeginAssistant{ID: "a2"})
	require.ErrorIs(t, err, manna.ErrInFlight)
	assert.Equal(t, "a1", tr.Last().ID)
}

func TestTranscript_CanSend(t *testing.T) {
	t.Parallel()
	tr := newTranscript()

	assert.True(t, tr.CanSend("hello"))
	assert.False(t, tr.CanSend(""))
	assert.False(t, tr.CanSend("   "))
}

func TestTranscript_MessagesAreCopies(t *testing.T) {
	t.Parallel()
	tr := newTranscript()
	msgs := tr.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, manna.DefaultGreeting, tr.Greeting().Content)
}

func TestRestoreTranscript(t *testing.T) {
	t.Parallel()
	greeting := manna.Message{Content: "Welcome back", Timestamp: t0}
	history := []manna.Message{
		{ID: "u1", Role: manna.RoleUser, Content: "hi", State: manna.MessageStateSettled},
		{ID: "a1", Role: manna.RoleAssistant, Content: "partial", State: manna.MessageStateStreaming},
	}

	tr := manna.RestoreTranscript(greeting, history)

	assert.Equal(t, manna.GreetingID, tr.Greeting().ID)
	assert.Equal(t, "Welcome back", tr.Greeting().Content)
	assert.False(t, tr.InFlight())
	require.Len(t, tr.History(), 2)
	assert.Equal(t, manna.MessageStateSettled, tr.Last().State)
	assert.Equal(t, "partial", tr.Last().Content)
}

func TestMessageState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "pending", manna.MessageStatePending.String())
	assert.Equal(t, "streaming", manna.MessageStateStreaming.String())
	assert.Equal(t, "settled", manna.MessageStateSettled.String())
	assert.Equal(t, "unknown", manna.MessageState(9).String())
}
