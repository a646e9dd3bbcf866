package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/faithbaptist/manna"
	bt "github.com/faithbaptist/manna/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestUserMessageBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("renders text with prompt prefix", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(manna.DefaultTheme())
		block := bt.NewUserMessageBlock("Explain John 3:16", styles)
		view := block.View(80)
		assert.Contains(t, view, "> ")
		assert.Contains(t, view, "Explain John 3:16")
	})

	t.Run("pads each line to full width", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(manna.DefaultTheme())
		block := bt.NewUserMessageBlock("test", styles)
		view := block.View(40)
		for _, line := range strings.Split(view, "\n") {
			assert.Equal(t, 40, lipgloss.Width(line))
		}
	})

	t.Run("wraps long text", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(manna.DefaultTheme())
		block := bt.NewUserMessageBlock("What does the Bible say about forgiveness and mercy", styles)
		view := block.View(20)
		assert.Greater(t, strings.Count(view, "\n"), 0)
		assert.Contains(t, view, "mercy")
	})
}
