// Command manna-gateway serves the congregation backend: the streaming chat
// function, personalized verses, content, reading plans and bookmarks. It
// also runs the nightly retention sweep.
//
// Usage:
//
//	MANNA_JWT_SECRET=... LOVABLE_API_KEY=... manna-gateway [flags]
//
// Flags:
//
//	-config string  Path to a YAML config file
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	iofs "io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/faithbaptist/manna"
	"github.com/faithbaptist/manna/aigateway"
	"github.com/faithbaptist/manna/bolt"
	"github.com/faithbaptist/manna/config"
	"github.com/faithbaptist/manna/gateway"
	"github.com/faithbaptist/manna/gemini"
	"github.com/faithbaptist/manna/identity"
	"github.com/faithbaptist/manna/logger"
	"github.com/faithbaptist/manna/metrics"
	"github.com/faithbaptist/manna/readingplan"
	"github.com/faithbaptist/manna/retention"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "manna-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	cfg, err := config.LoadGateway(*configPath, nil)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bolt.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	plans, err := loadPlans(cfg.PlansDir, cfg.PlansPattern, log)
	if err != nil {
		return err
	}

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	srv := gateway.New(gateway.Services{
		Verifier:  identity.NewVerifier(cfg.JWTSecret),
		Completer: completer,
		Content:   store,
		Media:     store,
		Bookmarks: store,
		Progress:  store,
		Plans:     plans,
	},
		gateway.WithLogger(log),
		gateway.WithMetrics(m, reg),
		gateway.WithModel(cfg.Model),
	)
	sweeper := retention.New(store, store,
		retention.WithLogger(log),
		retention.WithMetrics(m),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Addr, cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		return sweeper.Run(ctx, cfg.RetentionSchedule)
	})
	return g.Wait()
}

// newCompleter builds the upstream model client selected by cfg.Upstream.
func newCompleter(ctx context.Context, cfg *config.Gateway) (manna.Completer, error) {
	switch cfg.Upstream {
	case "aigateway":
		return aigateway.New(cfg.AIGatewayKey, aigateway.WithBaseURL(cfg.AIGatewayURL)), nil
	case "gemini":
		c, err := gemini.New(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown upstream %q: must be \"aigateway\" or \"gemini\"", cfg.Upstream)
	}
}

// loadPlans reads plan definitions from dir. A missing directory means no
// plans.
func loadPlans(dir, pattern string, log zerolog.Logger) ([]manna.ReadingPlan, error) {
	if _, err := os.Stat(dir); errors.Is(err, iofs.ErrNotExist) {
		log.Warn().Str("dir", dir).Msg("reading plan directory not found, serving no plans")
		return nil, nil
	}
	plans, err := readingplan.Load(os.DirFS(dir), pattern)
	if err != nil {
		return nil, err
	}
	log.Info().Int("plans", len(plans)).Str("dir", dir).Msg("loaded reading plans")
	return plans, nil
}
