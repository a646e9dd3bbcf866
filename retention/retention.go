// Package retention removes congregation content older than three months.
package retention

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/metrics"
	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"
)

const (
	// DefaultSchedule runs the sweep daily at 03:00.
	DefaultSchedule = "0 3 * * *"
	// JobTimeout bounds each scheduled sweep.
	JobTimeout = 10 * time.Minute
)

// mediaMarker separates the storage host from the object path in media URLs.
const mediaMarker = "/media/"

// Report summarizes one sweep.
type Report struct {
	Cutoff  time.Time                   `json:"cutoffDate"`
	Deleted map[manna.ContentKind]int   `json:"details"`
	Errors  map[manna.ContentKind]error `json:"-"`
}

// Total returns the number of rows deleted across all kinds.
func (r Report) Total() int {
	n := 0
	for _, c := range r.Deleted {
		n += c
	}
	return n
}

// Err joins the per-kind failures, or returns nil if every kind succeeded.
func (r Report) Err() error {
	var errs []error
	for _, k := range manna.ContentKinds {
		if err := r.Errors[k]; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Sweeper deletes expired content.
type Sweeper struct {
	content manna.ContentStore
	media   manna.MediaStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// Option configures a [Sweeper].
type Option func(*Sweeper)

// WithMetrics counts deleted rows and runs.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sweeper) { s.logger = l.With().Str("component", "retention").Logger() }
}

// WithClock sets the time source used to compute the cutoff.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// New creates a sweeper over the content and media stores.
func New(content manna.ContentStore, media manna.MediaStore, opts ...Option) *Sweeper {
	s := &Sweeper{content: content, media: media, logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cutoff returns the instant before which content expires.
func Cutoff(now time.Time) time.Time {
	return now.AddDate(0, -3, 0)
}

// Sweep deletes every expired row. A failure on one kind is recorded in the
// report and the sweep moves on to the next kind.
func (s *Sweeper) Sweep(ctx context.Context) Report {
	r := Report{
		Cutoff:  Cutoff(s.now()),
		Deleted: make(map[manna.ContentKind]int, len(manna.ContentKinds)),
		Errors:  make(map[manna.ContentKind]error),
	}
	s.logger.Info().Time("cutoff", r.Cutoff).Msg("starting retention sweep")

	for _, kind := range manna.ContentKinds {
		n, err := s.sweepKind(ctx, kind, r.Cutoff)
		r.Deleted[kind] = n
		if err != nil {
			r.Errors[kind] = err
			s.logger.Error().Err(err).Str("kind", string(kind)).Msg("retention sweep failed for kind")
			continue
		}
		if n > 0 {
			s.logger.Info().Str("kind", string(kind)).Int("deleted", n).Msg("deleted expired content")
		}
		if s.metrics != nil {
			s.metrics.RetentionDeleted.WithLabelValues(string(kind)).Add(float64(n))
		}
	}

	if s.metrics != nil {
		status := "ok"
		if len(r.Errors) > 0 {
			status = "partial"
		}
		s.metrics.RetentionRuns.WithLabelValues(status).Inc()
	}
	s.logger.Info().Int("total", r.Total()).Msg("retention sweep complete")
	return r
}

func (s *Sweeper) sweepKind(ctx context.Context, kind manna.ContentKind, cutoff time.Time) (int, error) {
	items, err := s.content.ListOlderThan(ctx, kind, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if kind == manna.ContentAnnouncement && it.Pinned {
			continue
		}
		if kind == manna.ContentStory {
			s.removeMedia(ctx, it)
		}
		ids = append(ids, it.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.content.DeleteContent(ctx, kind, ids)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	return n, nil
}

func (s *Sweeper) removeMedia(ctx context.Context, it manna.ContentItem) {
	path, ok := MediaPath(it.MediaURL)
	if !ok {
		return
	}
	if err := s.media.RemoveMedia(ctx, []string{path}); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to delete media")
	}
}

// MediaPath extracts the storage path from a media URL.
func MediaPath(url string) (string, bool) {
	_, path, found := strings.Cut(url, mediaMarker)
	if !found || path == "" {
		return "", false
	}
	return path, true
}

// Run sweeps once, then on schedule until ctx ends.
func (s *Sweeper) Run(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s.Sweep(ctx)

	ctab := crontab.New()
	err := ctab.AddJob(schedule, func() {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), JobTimeout)
		defer cancel()
		s.Sweep(jobCtx)
	})
	if err != nil {
		ctab.Shutdown()
		return fmt.Errorf("retention: schedule %q: %w", schedule, err)
	}
	s.logger.Info().Str("schedule", schedule).Msg("retention sweep scheduled")

	<-ctx.Done()
	ctab.Shutdown()
	return nil
}
