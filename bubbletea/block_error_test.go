package bubbletea_test

import (
	"errors"
	"testing"

	"github.com/faithbaptist/manna"
	bt "github.com/faithbaptist/manna/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestErrorBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("renders error prefix and message", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(manna.DefaultTheme())
		block := bt.NewErrorBlock(errors.New("something broke"), styles)
		view := block.View(80)
		assert.Contains(t, view, "Error")
		assert.Contains(t, view, "something broke")
		assert.NotContains(t, view, "incomplete")
	})

	t.Run("marks interrupted replies as incomplete", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(manna.DefaultTheme())
		err := &manna.StreamError{Partial: "In the beginning", Err: errors.New("connection reset")}
		view := bt.NewErrorBlock(err, styles).View(120)
		assert.Contains(t, view, "connection reset")
		assert.Contains(t, view, "incomplete")
	})

	t.Run("renders transport error message", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(manna.DefaultTheme())
		err := &manna.TransportError{StatusCode: 429, Message: "Rate limit exceeded. Please try again later."}
		view := bt.NewErrorBlock(err, styles).View(120)
		assert.Contains(t, view, "Rate limit exceeded")
	})
}
