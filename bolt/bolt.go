// Package bolt implements the manna storage interfaces on an embedded bbolt
// database.
//
// Each content kind has its own bucket of JSON rows keyed by id. Media
// objects live in the media bucket keyed by path. Bookmarks are kept in a
// nested bucket per member, and reading progress is keyed by member and
// plan.
package bolt

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"
)

// Interface compliance checks.
var (
	_ manna.ContentStore  = (*Store)(nil)
	_ manna.MediaStore    = (*Store)(nil)
	_ manna.BookmarkStore = (*Store)(nil)
	_ manna.ProgressStore = (*Store)(nil)
)

var (
	mediaBucket     = []byte("media")
	bookmarksBucket = []byte("bookmarks")
	progressBucket  = []byte("plan_progress")
)

// Store is a bbolt-backed store.
type Store struct {
	db    *bbolt.DB
	now   func() time.Time
	newID func() string
}

// Option configures a [Store].
type Option func(*Store)

// WithClock sets the time source for created timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the generator for new row ids.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// Open opens or creates the database at path and ensures every bucket
// exists.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}
	s := &Store{db: db, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{mediaBucket, bookmarksBucket, progressBucket}
		for _, k := range manna.ContentKinds {
			buckets = append(buckets, []byte(k))
		}
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func contentBucket(tx *bbolt.Tx, kind manna.ContentKind) (*bbolt.Bucket, error) {
	if _, err := manna.ParseContentKind(string(kind)); err != nil {
		return nil, err
	}
	return tx.Bucket([]byte(kind)), nil
}

// CreateContent stores item, assigning an id and creation time when unset.
func (s *Store) CreateContent(_ context.Context, item manna.ContentItem) (manna.ContentItem, error) {
	if err := item.Validate(); err != nil {
		return manna.ContentItem{}, err
	}
	if item.ID == "" {
		item.ID = s.newID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := contentBucket(tx, item.Kind)
		if err != nil {
			return err
		}
		return putJSON(b, item.ID, item)
	})
	if err != nil {
		return manna.ContentItem{}, err
	}
	return item, nil
}

// ListContent returns the items of kind, pinned first, then newest first.
func (s *Store) ListContent(_ context.Context, kind manna.ContentKind) ([]manna.ContentItem, error) {
	items, err := s.scanContent(kind, func(manna.ContentItem) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, func(a, b manna.ContentItem) int {
		if a.Pinned != b.Pinned {
			if a.Pinned {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items, nil
}

// ListOlderThan returns the items of kind created before cutoff, oldest
// first.
func (s *Store) ListOlderThan(_ context.Context, kind manna.ContentKind, cutoff time.Time) ([]manna.ContentItem, error) {
	items, err := s.scanContent(kind, func(it manna.ContentItem) bool { return it.CreatedAt.Before(cutoff) })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(items, func(a, b manna.ContentItem) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})
	return items, nil
}

func (s *Store) scanContent(kind manna.ContentKind, keep func(manna.ContentItem) bool) ([]manna.ContentItem, error) {
	var items []manna.ContentItem
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := contentBucket(tx, kind)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var it manna.ContentItem
			if err := json.Unmarshal(v, &it); err != nil {
				return fmt.Errorf("bolt: unmarshal %s row: %w", kind, err)
			}
			if keep(it) {
				items = append(items, it)
			}
			return nil
		})
	})
	return items, err
}

// SetPinned pins or unpins an announcement.
func (s *Store) SetPinned(_ context.Context, kind manna.ContentKind, id string, pinned bool) error {
	if kind != manna.ContentAnnouncement {
		return fmt.Errorf("%w: only announcements can be pinned", manna.ErrValidation)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := contentBucket(tx, kind)
		if err != nil {
			return err
		}
		var it manna.ContentItem
		if err := getJSON(b, id, &it); err != nil {
			return err
		}
		it.Pinned = pinned
		return putJSON(b, id, it)
	})
}

// DeleteContent removes the rows with the given ids and reports how many
// existed.
func (s *Store) DeleteContent(_ context.Context, kind manna.ContentKind, ids []string) (int, error) {
	n := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := contentBucket(tx, kind)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if b.Get([]byte(id)) == nil {
				continue
			}
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// PutMedia stores a media object.
func (s *Store) PutMedia(_ context.Context, path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: media path is required", manna.ErrValidation)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(mediaBucket).Put([]byte(path), data)
	})
}

// Media returns a stored media object.
func (s *Store) Media(_ context.Context, path string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(mediaBucket).Get([]byte(path))
		if v == nil {
			return fmt.Errorf("media %s: %w", path, manna.ErrNotFound)
		}
		data = slices.Clone(v)
		return nil
	})
	return data, err
}

// RemoveMedia deletes media objects. Missing paths are ignored.
func (s *Store) RemoveMedia(_ context.Context, paths []string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(mediaBucket)
		for _, p := range paths {
			if err := b.Delete([]byte(p)); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddBookmark stores a bookmark under its member.
func (s *Store) AddBookmark(_ context.Context, bm manna.Bookmark) (manna.Bookmark, error) {
	if bm.UserID == "" || bm.Book == "" || bm.Chapter < 1 {
		return manna.Bookmark{}, fmt.Errorf("%w: bookmark needs a member, book and chapter", manna.ErrValidation)
	}
	if bm.ID == "" {
		bm.ID = s.newID()
	}
	if bm.CreatedAt.IsZero() {
		bm.CreatedAt = s.now()
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(bookmarksBucket).CreateBucketIfNotExists([]byte(bm.UserID))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return putJSON(b, fmt.Sprintf("%020d", seq), bm)
	})
	if err != nil {
		return manna.Bookmark{}, err
	}
	return bm, nil
}

// ListBookmarks returns a member's bookmarks in the order they were added.
func (s *Store) ListBookmarks(_ context.Context, userID string) ([]manna.Bookmark, error) {
	var out []manna.Bookmark
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bookmarksBucket).Bucket([]byte(userID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var bm manna.Bookmark
			if err := json.Unmarshal(v, &bm); err != nil {
				return fmt.Errorf("bolt: unmarshal bookmark: %w", err)
			}
			out = append(out, bm)
			return nil
		})
	})
	return out, err
}

func progressKey(userID, planID string) string {
	return userID + "/" + planID
}

// Progress returns a member's progress in a plan, or [manna.ErrNotFound]
// when the member has not started it.
func (s *Store) Progress(_ context.Context, userID, planID string) (manna.PlanProgress, error) {
	var p manna.PlanProgress
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(progressBucket), progressKey(userID, planID), &p)
	})
	return p, err
}

// SaveProgress stores p, replacing earlier progress.
func (s *Store) SaveProgress(_ context.Context, p manna.PlanProgress) error {
	if p.UserID == "" || p.PlanID == "" {
		return fmt.Errorf("%w: progress needs a member and plan", manna.ErrValidation)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket(progressBucket), progressKey(p.UserID, p.PlanID), p)
	})
}

func putJSON(b *bbolt.Bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("bolt: marshal: %w", err)
	}
	return b.Put([]byte(key), data)
}

func getJSON(b *bbolt.Bucket, key string, v any) error {
	data := b.Get([]byte(key))
	if data == nil {
		return fmt.Errorf("%s: %w", key, manna.ErrNotFound)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("bolt: unmarshal %s: %w", key, err)
	}
	return nil
}
