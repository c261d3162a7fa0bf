package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"dom-engine/internal/adapter/httpapi"
	"dom-engine/internal/application/port/input"
	"dom-engine/internal/application/port/output"
	"dom-engine/internal/infrastructure/browser/rod"
	"dom-engine/internal/infrastructure/cache"
	"dom-engine/internal/infrastructure/config"
	"dom-engine/internal/infrastructure/logger"
	"dom-engine/internal/infrastructure/metrics"
	"dom-engine/internal/usecase/engine"
)

type Container struct {
	Config   config.Config
	Logger   output.LoggerPort
	Metrics  output.MetricsPort
	Cache    output.CachePort
	Sessions output.SessionProvider
	Engine   input.DocumentEngine
}

func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	m := metrics.Prometheus{}

	sessions := rod.NewSessionManager(rod.Config{
		Bin:               cfg.Browser.Bin,
		Headless:          cfg.Browser.Headless,
		NoSandbox:         cfg.Browser.NoSandbox,
		MaxSessions:       cfg.Browser.MaxSessions,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
	}, log, m)

	results := openCache(ctx, cfg.Cache, log)

	eng := engine.New(sessions, results, m, log, engine.Options{
		Viewport:         cfg.Browser.Viewport,
		Screenshot:       cfg.Screenshot,
		OperationTimeout: cfg.Engine.OperationTimeout,
	})

	return &Container{
		Config:   cfg,
		Logger:   log,
		Metrics:  m,
		Cache:    results,
		Sessions: sessions,
		Engine:   eng,
	}, nil
}

// openCache never fails: an unusable database degrades to a no-op cache and
// the service keeps running.
func openCache(ctx context.Context, cfg config.CacheConfig, log output.LoggerPort) output.CachePort {
	if !cfg.Enabled {
		return cache.Noop{}
	}

	c, err := cache.OpenSQLite(cfg.Path, cfg.TTL, log)
	if err != nil {
		log.Warn("Result cache unavailable, continuing without it", "path", cfg.Path, "error", err)
		return cache.Noop{Reason: "unavailable"}
	}
	if n, err := c.Prune(ctx); err == nil && n > 0 {
		log.Info("Pruned expired cache entries", "count", n)
	}
	log.Info("Result cache ready", "path", cfg.Path, "ttl", cfg.TTL)
	return c
}

// HTTPHandler builds the router for the service.
func (c *Container) HTTPHandler() http.Handler {
	return httpapi.NewRouter(c.Engine, c.Logger, httpapi.Options{
		MaxBodyBytes:   c.Config.HTTP.MaxBodyBytes,
		Metrics:        metrics.Handler(),
		AccessLogLevel: c.Config.Log.Level,
		AccessLogJSON:  c.Config.Log.Format != "console",
	})
}

func (c *Container) Close() error {
	var errs []error
	if err := c.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if err := c.Logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close logger: %w", err))
	}
	return errors.Join(errs...)
}
