package manna_test

import (
	"testing"

	"github.com/faithbaptist/manna"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanProgress_CompleteDay(t *testing.T) {
	t.Parallel()

	t.Run("advances to first incomplete day", func(t *testing.T) {
		t.Parallel()
		p := manna.NewPlanProgress("u1", "gospels", t0)
		require.NoError(t, p.CompleteDay(1, 3, t0))
		assert.Equal(t, 2, p.CurrentDay)

		require.NoError(t, p.CompleteDay(3, 3, t0))
		assert.Equal(t, []int{1, 3}, p.CompletedDays)
		assert.Equal(t, 2, p.CurrentDay)
		assert.False(t, p.Completed)
	})

	t.Run("completes when every day is done", func(t *testing.T) {
		t.Parallel()
		p := manna.NewPlanProgress("u1", "gospels", t0)
		for _, d := range []int{2, 1, 2} {
			require.NoError(t, p.CompleteDay(d, 2, t0))
		}
		assert.Equal(t, []int{1, 2}, p.CompletedDays)
		assert.True(t, p.Completed)
		assert.Equal(t, 2, p.CurrentDay)
	})

	t.Run("rejects out of range days", func(t *testing.T) {
		t.Parallel()
		p := manna.NewPlanProgress("u1", "gospels", t0)
		assert.ErrorIs(t, p.CompleteDay(0, 3, t0), manna.ErrValidation)
		assert.ErrorIs(t, p.CompleteDay(4, 3, t0), manna.ErrValidation)
		assert.Empty(t, p.CompletedDays)
	})
}

func TestReadingPlan_Validate(t *testing.T) {
	t.Parallel()
	plan := manna.ReadingPlan{ID: "p", Name: "Psalms", DurationDays: 2, Days: []manna.PlanDay{{Day: 1}, {Day: 2}}}
	assert.NoError(t, plan.Validate())

	plan.Days = append(plan.Days, manna.PlanDay{Day: 2})
	assert.ErrorIs(t, plan.Validate(), manna.ErrValidation)

	plan.Days = []manna.PlanDay{{Day: 3}}
	assert.ErrorIs(t, plan.Validate(), manna.ErrValidation)
}

func TestContentItem_Validate(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, manna.ContentItem{Kind: manna.ContentStory}.Validate(), manna.ErrValidation)
	assert.ErrorIs(t, manna.ContentItem{Kind: manna.ContentStory, Body: "x", Pinned: true}.Validate(), manna.ErrValidation)
	assert.NoError(t, manna.ContentItem{Kind: manna.ContentAnnouncement, Body: "x", Pinned: true}.Validate())

	k, err := manna.ParseContentKind("daily_verses")
	require.NoError(t, err)
	assert.Equal(t, manna.ContentDailyVerse, k)
	_, err = manna.ParseContentKind("notes")
	assert.ErrorIs(t, err, manna.ErrValidation)
}

func TestTransportError_Message(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Rate limit exceeded", (&manna.TransportError{StatusCode: 429, Message: "Rate limit exceeded"}).Error())
	assert.Equal(t, "chat request failed with status 503", (&manna.TransportError{StatusCode: 503}).Error())
}
