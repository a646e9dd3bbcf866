package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/faithbaptist/manna/aigateway"
	"github.com/faithbaptist/manna/config"
	"github.com/faithbaptist/manna/gemini"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompleter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ai gateway", func(t *testing.T) {
		t.Parallel()
		c, err := newCompleter(ctx, &config.Gateway{Upstream: "aigateway", AIGatewayKey: "k", AIGatewayURL: aigateway.DefaultBaseURL})
		require.NoError(t, err)
		assert.IsType(t, &aigateway.Client{}, c)
	})

	t.Run("gemini", func(t *testing.T) {
		t.Parallel()
		c, err := newCompleter(ctx, &config.Gateway{Upstream: "gemini", GeminiAPIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, &gemini.Client{}, c)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		_, err := newCompleter(ctx, &config.Gateway{Upstream: "ollama"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown upstream")
	})
}

func TestLoadPlans(t *testing.T) {
	t.Parallel()

	t.Run("missing directory serves no plans", func(t *testing.T) {
		t.Parallel()
		plans, err := loadPlans(filepath.Join(t.TempDir(), "absent"), "", zerolog.Nop())
		require.NoError(t, err)
		assert.Empty(t, plans)
	})

	t.Run("loads yaml files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "psalms.yaml"), []byte(
			"id: psalms\nname: Psalms\nduration_days: 1\nactive: true\ndays:\n  - day: 1\n    passages: [Psalm 1]\n"), 0o600))
		plans, err := loadPlans(dir, "**/*.yaml", zerolog.Nop())
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, "psalms", plans[0].ID)
	})
}
