package mock

import (
	"context"
	"time"

	"github.com/faithbaptist/manna"
)

var (
	_ manna.ContentStore = (*ContentStore)(nil)
	_ manna.MediaStore   = (*MediaStore)(nil)
)

// ContentStore is a test double for manna.ContentStore.
type ContentStore struct {
	CreateContentFn func(ctx context.Context, item manna.ContentItem) (manna.ContentItem, error)
	ListContentFn   func(ctx context.Context, kind manna.ContentKind) ([]manna.ContentItem, error)
	SetPinnedFn     func(ctx context.Context, kind manna.ContentKind, id string, pinned bool) error
	ListOlderThanFn func(ctx context.Context, kind manna.ContentKind, cutoff time.Time) ([]manna.ContentItem, error)
	DeleteContentFn func(ctx context.Context, kind manna.ContentKind, ids []string) (int, error)
}

// CreateContent delegates to CreateContentFn.
func (s *ContentStore) CreateContent(ctx context.Context, item manna.ContentItem) (manna.ContentItem, error) {
	return s.CreateContentFn(ctx, item)
}

// ListContent delegates to ListContentFn.
func (s *ContentStore) ListContent(ctx context.Context, kind manna.ContentKind) ([]manna.ContentItem, error) {
	return s.ListContentFn(ctx, kind)
}

// SetPinned delegates to SetPinnedFn.
func (s *ContentStore) SetPinned(ctx context.Context, kind manna.ContentKind, id string, pinned bool) error {
	return s.SetPinnedFn(ctx, kind, id, pinned)
}

// ListOlderThan delegates to ListOlderThanFn.
func (s *ContentStore) ListOlderThan(ctx context.Context, kind manna.ContentKind, cutoff time.Time) ([]manna.ContentItem, error) {
	return s.ListOlderThanFn(ctx, kind, cutoff)
}

// DeleteContent delegates to DeleteContentFn.
func (s *ContentStore) DeleteContent(ctx context.Context, kind manna.ContentKind, ids []string) (int, error) {
	return s.DeleteContentFn(ctx, kind, ids)
}

// MediaStore is a test double for manna.MediaStore.
type MediaStore struct {
	PutMediaFn    func(ctx context.Context, path string, data []byte) error
	MediaFn       func(ctx context.Context, path string) ([]byte, error)
	RemoveMediaFn func(ctx context.Context, paths []string) error
}

// PutMedia delegates to PutMediaFn.
func (s *MediaStore) PutMedia(ctx context.Context, path string, data []byte) error {
	return s.PutMediaFn(ctx, path, data)
}

// Media delegates to MediaFn.
func (s *MediaStore) Media(ctx context.Context, path string) ([]byte, error) {
	return s.MediaFn(ctx, path)
}

// RemoveMedia delegates to RemoveMediaFn.
func (s *MediaStore) RemoveMedia(ctx context.Context, paths []string) error {
	return s.RemoveMediaFn(ctx, paths)
}
