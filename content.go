package manna

import (
	"context"
	"fmt"
	"time"
)

// ContentKind names a table of congregation content.
type ContentKind string

const (
	ContentStory        ContentKind = "stories"
	ContentAnnouncement ContentKind = "church_announcements"
	ContentDailyManna   ContentKind = "daily_manna"
	ContentDailyVerse   ContentKind = "daily_verses"
)

// ContentKinds lists every kind in retention order.
var ContentKinds = []ContentKind{ContentStory, ContentAnnouncement, ContentDailyManna, ContentDailyVerse}

// ParseContentKind validates a kind name.
func ParseContentKind(s string) (ContentKind, error) {
	for _, k := range ContentKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown content kind %q", ErrValidation, s)
}

// ContentItem is a story, announcement, daily manna or daily verse.
type ContentItem struct {
	ID             string      `json:"id"`
	Kind           ContentKind `json:"kind"`
	Title          string      `json:"title,omitempty"`
	Body           string      `json:"content"`
	VerseReference string      `json:"verse_reference,omitempty"`
	MediaURL       string      `json:"media_url,omitempty"`
	AuthorID       string      `json:"author_id,omitempty"`
	Pinned         bool        `json:"is_pinned,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Validate checks the fields every kind requires.
func (c ContentItem) Validate() error {
	if c.Body == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if c.Pinned && c.Kind != ContentAnnouncement {
		return fmt.Errorf("%w: only announcements can be pinned", ErrValidation)
	}
	return nil
}

// ContentStore persists congregation content.
type ContentStore interface {
	CreateContent(ctx context.Context, item ContentItem) (ContentItem, error)
	ListContent(ctx context.Context, kind ContentKind) ([]ContentItem, error)
	SetPinned(ctx context.Context, kind ContentKind, id string, pinned bool) error
	// ListOlderThan returns items created strictly before cutoff.
	ListOlderThan(ctx context.Context, kind ContentKind, cutoff time.Time) ([]ContentItem, error)
	DeleteContent(ctx context.Context, kind ContentKind, ids []string) (int, error)
}

// MediaStore holds uploaded media objects keyed by path.
type MediaStore interface {
	PutMedia(ctx context.Context, path string, data []byte) error
	Media(ctx context.Context, path string) ([]byte, error)
	RemoveMedia(ctx context.Context, paths []string) error
}

// Bookmark is a verse saved by a member.
type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Book      string    `json:"book"`
	Chapter   int       `json:"chapter"`
	Verse     int       `json:"verse"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BookmarkStore persists bookmarks per member.
type BookmarkStore interface {
	AddBookmark(ctx context.Context, b Bookmark) (Bookmark, error)
	ListBookmarks(ctx context.Context, userID string) ([]Bookmark, error)
}
