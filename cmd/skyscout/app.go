package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skyscout/skyscout-cli/internal/api"
	"github.com/skyscout/skyscout-cli/internal/cache"
	"github.com/skyscout/skyscout-cli/internal/config"
	"github.com/skyscout/skyscout-cli/internal/deals"
	"github.com/skyscout/skyscout-cli/internal/logging"
	"github.com/skyscout/skyscout-cli/internal/metrics"
	"github.com/skyscout/skyscout-cli/internal/models"
	"github.com/skyscout/skyscout-cli/internal/tracing"
)

const serviceName = "skyscout"

// app holds the services shared by every command
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
	client  *api.Client

	closers []func()
}

// newApp loads configuration and wires logging, tracing, metrics, the cache and
// the API client. The TUI logs to a file because stderr belongs to the screen.
func newApp(toFile bool) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}

	a := &app{cfg: cfg}

	if toFile {
		path := cfg.Log.File
		if path == "" {
			path = logging.DefaultFile()
		}
		a.log, err = logging.NewFile(level, path)
	} else {
		a.log, err = logging.New(level)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	a.onClose(func() { _ = a.log.Sync() })

	if cfg.Jaeger != "" {
		tp, err := tracing.InitTracer(serviceName, cfg.Jaeger)
		if err != nil {
			a.log.Warn("tracing disabled", zap.Error(err))
		} else {
			a.onClose(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(ctx); err != nil {
					a.log.Warn("tracer shutdown", zap.Error(err))
				}
			})
		}
	}

	a.metrics = metrics.NewMetrics(serviceName)
	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}

	opts := []api.ClientOption{
		api.WithTimeout(cfg.HTTP.Timeout),
		api.WithPlacesURL(cfg.Places.BaseURL),
		api.WithFaresURL(cfg.Fares.BaseURL),
		api.WithLocale(cfg.Places.Locale),
		api.WithCurrency(cfg.Fares.Currency),
		api.WithLogger(a.log),
		api.WithMetrics(a.metrics),
	}
	if opt := a.cacheOption(); opt != nil {
		opts = append(opts, opt)
	}

	a.client, err = api.NewClient(opts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return a, nil
}

// cacheOption picks Redis when configured and reachable, the file cache
// otherwise. It returns nil when caching is disabled.
func (a *app) cacheOption() api.ClientOption {
	if flagNoCache || !a.cfg.CacheEnabled() {
		return nil
	}

	if a.cfg.UseRedis() {
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		rc := cache.NewRedisCache(client, a.cfg.Cache.TTL)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			a.log.Warn("redis unavailable, falling back to file cache",
				zap.String("addr", a.cfg.Redis.Addr), zap.Error(err))
			_ = rc.Close()
		} else {
			a.onClose(func() { _ = rc.Close() })
			return api.WithCache(rc)
		}
	}

	return api.WithDefaultCache(a.cfg.Cache.TTL)
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.log.Info("serving metrics", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server", zap.Error(err))
		}
	}()

	a.onClose(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})
}

// aggregator builds the deals aggregator for the catalog departing from origin
func (a *app) aggregator(origin string) (*deals.Aggregator, []models.Destination) {
	if origin == "" {
		origin = a.cfg.Deals.Origin
	}
	catalog := models.CatalogFrom(models.DefaultCatalog, origin)
	agg := deals.NewAggregator(a.client,
		deals.WithLogger(a.log),
		deals.WithMetrics(a.metrics),
		deals.WithConcurrency(a.cfg.Deals.Concurrency),
	)
	return agg, catalog
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
