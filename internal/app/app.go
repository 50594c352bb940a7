package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/worklet-invoker/internal/config"
	httpserver "github.com/yungbote/worklet-invoker/internal/http"
	"github.com/yungbote/worklet-invoker/internal/observability"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
)

const serviceName = "worklet-invoker"

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services

	server       *httpserver.Server
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(cfg, log)
}

// NewWithConfig wires every component from an already loaded config.
func NewWithConfig(cfg *config.Config, log *logger.Logger) (*App, error) {
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Env,
	})
	metrics := observability.NewMetrics(cfg.Metrics.LatencyBuckets)

	reposet, err := wireRepos(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	endpoint, err := newWorkletEndpoint(log, cfg.Worklet)
	if err != nil {
		log.Sync()
		return nil, err
	}

	serviceset := wireServices(log, reposet, endpoint, metrics)

	handlerset, err := wireHandlers(log, cfg, reposet, serviceset, metrics)
	if err != nil {
		log.Sync()
		return nil, err
	}

	server := wireServer(log, cfg, handlerset, metrics)

	log.Info("app wired",
		"addr", cfg.HTTP.Addr,
		"worklet_type", cfg.Worklet.Type,
		"worklet_url", cfg.Worklet.URL,
		"seed_sample_data", cfg.SeedSampleData,
	)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Metrics:      metrics,
		Repos:        reposet,
		Services:     serviceset,
		server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Handler exposes the full router, mainly for in-process tests.
func (a *App) Handler() http.Handler {
	return a.server.Engine
}

// Run serves HTTP until ctx is cancelled, then shuts down and flushes traces.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("http server listening", "addr", a.Cfg.HTTP.Addr)
		return a.server.Run(gctx)
	})
	err := g.Wait()
	a.Close()
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		grace := a.Cfg.HTTP.ShutdownTimeout.Duration
		if grace <= 0 {
			grace = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		if err := a.otelShutdown(shutdownCtx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
