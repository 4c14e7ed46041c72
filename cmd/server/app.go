package main

import (
	"context"
	"net/http"
	"time"

	"github.com/Ayash-Bera/miniplex/internal/api"
	"github.com/Ayash-Bera/miniplex/internal/api/handlers"
	"github.com/Ayash-Bera/miniplex/internal/cache"
	"github.com/Ayash-Bera/miniplex/internal/config"
	"github.com/Ayash-Bera/miniplex/internal/extractor"
	"github.com/Ayash-Bera/miniplex/internal/health"
	"github.com/Ayash-Bera/miniplex/internal/llm"
	"github.com/Ayash-Bera/miniplex/internal/metrics"
	"github.com/Ayash-Bera/miniplex/internal/middleware"
	"github.com/Ayash-Bera/miniplex/internal/providers"
	"github.com/Ayash-Bera/miniplex/internal/ratelimit"
	"github.com/Ayash-Bera/miniplex/internal/search"
	"github.com/Ayash-Bera/miniplex/internal/services"
	"github.com/Ayash-Bera/miniplex/internal/session"
	"github.com/sirupsen/logrus"
)

// app holds every long-lived component built from configuration.
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	cache    *cache.Cache
	sessions *session.Store
	service  *services.AnswerService
	checker  *health.HealthChecker
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *app {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		checker: health.NewHealthChecker(0, logger),
	}

	ext := extractor.New(extractor.Config{
		Timeout:       cfg.Extractor.Timeout,
		MaxParagraphs: cfg.Extractor.MaxParagraphs,
		MaxChars:      cfg.Extractor.MaxChars,
	}, logger)

	opts := []search.Option{search.WithExtractor(ext), search.WithMetrics(a.metrics)}
	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL, logger)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, search cache disabled")
		} else {
			a.cache = cache.NewCache(client, cfg.Cache.TTL, logger)
			opts = append(opts, search.WithCache(a.cache))
			a.checker.AddCheck("redis", true, a.cache.Ping)
		}
	}

	aggregator := search.NewAggregator(a.buildProviders(ext), logger, opts...)

	a.sessions = session.NewStore(cfg.Session.TTL, cfg.Session.MaxPreviousQueries, logger,
		session.WithObserver(a.metrics.SetActiveSessions))

	var generator services.Generator
	client, err := llm.NewClient(llm.Config{
		APIKey:    cfg.Cloudflare.APIKey,
		AccountID: cfg.Cloudflare.AccountID,
		Model:     cfg.Cloudflare.Model,
		BaseURL:   cfg.Cloudflare.BaseURL,
		Timeout:   cfg.Cloudflare.Timeout,
	}, a.metrics, logger)
	if err != nil {
		logger.WithError(err).Error("Answer generation disabled")
		generator = llm.NewUnavailable(err)
	} else {
		generator = client
	}
	a.checker.AddCheck("cloudflare", true, staticCheck(err))

	a.service = services.NewAnswerService(aggregator, generator, a.sessions, logger)
	return a
}

// buildProviders registers brave, serper and youtube in that order. A
// provider that cannot be configured still takes its slot and fails per
// request.
func (a *app) buildProviders(ext providers.ContentExtractor) []providers.Provider {
	cfg := a.cfg.Providers
	settings := func(p config.Provider) providers.Config {
		return providers.Config{
			APIKey:     p.APIKey,
			BaseURL:    p.BaseURL,
			MaxResults: cfg.MaxResults,
			Timeout:    cfg.Timeout,
		}
	}
	throttle := func(p config.Provider) *ratelimit.Limiter {
		return ratelimit.New(p.RateCalls, p.RatePeriod, a.logger)
	}

	var registered []providers.Provider
	add := func(name string, p providers.Provider, err error) {
		a.checker.AddCheck(name, false, staticCheck(err))
		if err != nil {
			a.logger.WithError(err).WithField("provider", name).Warn("Search provider not configured")
			registered = append(registered, providers.NewUnavailable(name, err))
			return
		}
		registered = append(registered, p)
	}

	brave, err := providers.NewBrave(settings(cfg.Brave), ext, throttle(cfg.Brave), a.logger)
	add("brave", brave, err)
	serper, err := providers.NewSerper(settings(cfg.Serper), ext, throttle(cfg.Serper), a.logger)
	add("serper", serper, err)
	youtube, err := providers.NewYouTube(settings(cfg.YouTube), throttle(cfg.YouTube), a.logger)
	add("youtube", youtube, err)

	return registered
}

func (a *app) handler(limiter *middleware.RateLimiter) http.Handler {
	return api.NewRouter(api.RouterConfig{
		CORSOrigins: a.cfg.Server.CORSOrigins,
		RateLimiter: limiter,
		Metrics:     a.metrics,
	}, handlers.NewAnswerHandler(a.service, a.logger), handlers.NewHealthHandler(a.checker), a.logger)
}

// startBackground runs the client limiter cleanup and the periodic health
// check until ctx is done. Sessions expire lazily inside the store.
func (a *app) startBackground(ctx context.Context, limiter *middleware.RateLimiter, healthEvery time.Duration) {
	go limiter.Cleanup(ctx, time.Minute)
	go a.checker.PeriodicHealthCheck(ctx, healthEvery)
}

func staticCheck(err error) health.CheckFunc {
	return func(context.Context) error { return err }
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
}
