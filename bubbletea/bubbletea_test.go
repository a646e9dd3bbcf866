package bubbletea_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faithbaptist/manna"
	bt "github.com/faithbaptist/manna/bubbletea"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

var member = &manna.Identity{UserID: "u1", Email: "ruth@example.org", FullName: "Ruth", Role: manna.MemberRoleMember}

// initModel creates a signed-in model over a fresh transcript and sends a
// WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, send bt.SendFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, send, 80, 24)
}

// initModelWithSize creates a signed-in model with a custom terminal size.
func initModelWithSize(t *testing.T, send bt.SendFunc, width, height int) bt.Model {
	t.Helper()
	tr := manna.NewTranscript(manna.DefaultGreeting, t0)
	m := bt.New(send, tr, manna.DefaultTheme(), bt.WithIdentity(member))
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// typeText sets the input value.
func typeText(m bt.Model, text string) bt.Model {
	m.Input.SetValue(text)
	return m
}

// nopSend is a mock send function that does nothing.
func nopSend(_ context.Context, _ string, _ func(manna.Event)) error {
	return nil
}
