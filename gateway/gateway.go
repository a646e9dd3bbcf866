// Package gateway serves the congregation backend over HTTP: the streaming
// chat function, personalized verses, the pastor content surface, reading
// plans, bookmarks and media attachments.
//
// Every route that needs a member declares its minimum role explicitly with
// authorize. Bearer tokens are verified once per request by authenticate.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// TokenVerifier resolves a bearer token to the member it was issued to.
type TokenVerifier interface {
	Verify(token string) (*manna.Identity, error)
}

// Services are the collaborators the routes delegate to.
type Services struct {
	Verifier  TokenVerifier
	Completer manna.Completer
	Content   manna.ContentStore
	Media     manna.MediaStore
	Bookmarks manna.BookmarkStore
	Progress  manna.ProgressStore
	Plans     []manna.ReadingPlan
}

// Server is the HTTP gateway.
type Server struct {
	svc      Services
	router   *gin.Engine
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	model    string
	now      func() time.Time
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l.With().Str("component", "gateway").Logger() }
}

// WithMetrics records request and stream metrics in m and serves g on
// /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithModel sets the upstream model. Empty uses the completer's default.
func WithModel(model string) Option {
	return func(s *Server) { s.model = model }
}

// WithClock sets the time source for chunk timestamps and plan progress.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a server and registers its routes.
func New(svc Services, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = metrics.New(reg)
		s.gatherer = reg
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.CustomRecoveryWithWriter(nil, s.recover), s.observe, s.authenticate)
	s.router = r
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	fn := r.Group("/functions/v1")
	fn.POST("/chat", s.authorize(manna.MemberRoleMember, s.handleChat))
	fn.POST("/personalized-verses", s.authorize(manna.MemberRoleMember, s.handlePersonalizedVerses))

	rest := r.Group("/rest/v1")
	rest.GET("/content/:kind", s.authorize(manna.MemberRoleMember, s.handleListContent))
	rest.POST("/content/:kind", s.authorize(manna.MemberRolePastor, s.handleCreateContent))
	rest.POST("/content/:kind/:id/pin", s.authorize(manna.MemberRolePastor, s.handlePinContent))

	media := r.Group(MediaPrefix)
	media.GET("/*path", s.authorize(manna.MemberRoleMember, s.handleGetMedia))
	media.PUT("/*path", s.authorize(manna.MemberRolePastor, s.handlePutMedia))

	rest.GET("/reading_plans", s.handleListPlans)
	rest.GET("/reading_plans/:id/progress", s.authorize(manna.MemberRoleMember, s.handlePlanProgress))
	rest.POST("/reading_plans/:id/days/:day", s.authorize(manna.MemberRoleMember, s.handleCompleteDay))

	rest.GET("/bookmarks", s.authorize(manna.MemberRoleMember, s.handleListBookmarks))
	rest.POST("/bookmarks", s.authorize(manna.MemberRoleMember, s.handleAddBookmark))
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("gateway: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve serves on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("gateway listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway: shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway: %w", err)
	}
	s.logger.Info().Msg("gateway stopped")
	return nil
}
