package bolt_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *bolt.Store {
	t.Helper()
	n := 0
	s, err := bolt.Open(filepath.Join(t.TempDir(), "manna.db"),
		bolt.WithClock(func() time.Time { return t0 }),
		bolt.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Content(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create assigns id and time", func(t *testing.T) {
		t.Parallel()
		s := openStore(t)
		got, err := s.CreateContent(ctx, manna.ContentItem{Kind: manna.ContentStory, Title: "Baptism", Body: "Sunday was joyful."})
		require.NoError(t, err)
		assert.Equal(t, "id-1", got.ID)
		assert.Equal(t, t0, got.CreatedAt)

		items, err := s.ListContent(ctx, manna.ContentStory)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Sunday was joyful.", items[0].Body)
	})

	t.Run("rejects invalid items", func(t *testing.T) {
		t.Parallel()
		s := openStore(t)
		_, err := s.CreateContent(ctx, manna.ContentItem{Kind: manna.ContentStory})
		require.ErrorIs(t, err, manna.ErrValidation)
		_, err = s.CreateContent(ctx, manna.ContentItem{Kind: "sermons", Body: "x"})
		require.ErrorIs(t, err, manna.ErrValidation)
	})

	t.Run("lists pinned first then newest", func(t *testing.T) {
		t.Parallel()
		s := openStore(t)
		for i, title := range []string{"old", "pinned", "new"} {
			_, err := s.CreateContent(ctx, manna.ContentItem{
				ID:        title,
				Kind:      manna.ContentAnnouncement,
				Body:      title,
				CreatedAt: t0.Add(time.Duration(i) * time.Hour),
			})
			require.NoError(t, err)
		}
		require.NoError(t, s.SetPinned(ctx, manna.ContentAnnouncement, "pinned", true))

		items, err := s.ListContent(ctx, manna.ContentAnnouncement)
		require.NoError(t, err)
		var ids []string
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		assert.Equal(t, []string{"pinned", "new", "old"}, ids)
	})

	t.Run("pin errors", func(t *testing.T) {
		t.Parallel()
		s := openStore(t)
		require.ErrorIs(t, s.SetPinned(ctx, manna.ContentAnnouncement, "missing", true), manna.ErrNotFound)
		require.ErrorIs(t, s.SetPinned(ctx, manna.ContentStory, "any", true), manna.ErrValidation)
	})

	t.Run("older than is strict and delete counts rows", func(t *testing.T) {
		t.Parallel()
		s := openStore(t)
		cutoff := t0.AddDate(0, -3, 0)
		for id, at := range map[string]time.Time{
			"ancient": cutoff.Add(-time.Hour),
			"edge":    cutoff,
			"fresh":   t0,
		} {
			_, err := s.CreateContent(ctx, manna.ContentItem{ID: id, Kind: manna.ContentDailyVerse, Body: id, CreatedAt: at})
			require.NoError(t, err)
		}

		old, err := s.ListOlderThan(ctx, manna.ContentDailyVerse, cutoff)
		require.NoError(t, err)
		require.Len(t, old, 1)
		assert.Equal(t, "ancient", old[0].ID)

		n, err := s.DeleteContent(ctx, manna.ContentDailyVerse, []string{"ancient", "missing"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		items, err := s.ListContent(ctx, manna.ContentDailyVerse)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}

func TestStore_Media(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.PutMedia(ctx, "stories/a.jpg", []byte("jpeg")))
	got, err := s.Media(ctx, "stories/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), got)

	require.NoError(t, s.RemoveMedia(ctx, []string{"stories/a.jpg", "stories/missing.jpg"}))
	_, err = s.Media(ctx, "stories/a.jpg")
	require.ErrorIs(t, err, manna.ErrNotFound)

	require.ErrorIs(t, s.PutMedia(ctx, "", nil), manna.ErrValidation)
}

func TestStore_Bookmarks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)

	_, err := s.AddBookmark(ctx, manna.Bookmark{UserID: "u1", Book: "John", Chapter: 3, Verse: 16})
	require.NoError(t, err)
	_, err = s.AddBookmark(ctx, manna.Bookmark{UserID: "u1", Book: "Psalms", Chapter: 23, Verse: 1})
	require.NoError(t, err)
	_, err = s.AddBookmark(ctx, manna.Bookmark{UserID: "u2", Book: "Ruth", Chapter: 1, Verse: 16})
	require.NoError(t, err)

	got, err := s.ListBookmarks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "John", got[0].Book)
	assert.Equal(t, "Psalms", got[1].Book)

	none, err := s.ListBookmarks(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.AddBookmark(ctx, manna.Bookmark{UserID: "u1", Book: "John"})
	require.ErrorIs(t, err, manna.ErrValidation)
}

func TestStore_Progress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)

	_, err := s.Progress(ctx, "u1", "gospels")
	require.ErrorIs(t, err, manna.ErrNotFound)

	p := manna.NewPlanProgress("u1", "gospels", t0)
	require.NoError(t, p.CompleteDay(1, 3, t0))
	require.NoError(t, s.SaveProgress(ctx, p))

	got, err := s.Progress(ctx, "u1", "gospels")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentDay)
	assert.Equal(t, []int{1}, got.CompletedDays)
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "manna.db")

	s, err := bolt.Open(path)
	require.NoError(t, err)
	_, err = s.CreateContent(ctx, manna.ContentItem{Kind: manna.ContentDailyManna, Body: "Give us this day."})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = bolt.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	items, err := s.ListContent(ctx, manna.ContentDailyManna)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
