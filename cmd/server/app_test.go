package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/Ayash-Bera/miniplex/internal/config"
	"github.com/Ayash-Bera/miniplex/internal/health"
	"github.com/Ayash-Bera/miniplex/internal/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStartBackground_SessionsExpireOnlyWhenTouched(t *testing.T) {
	cfg := &config.Config{}
	cfg.Session.TTL = 20 * time.Millisecond
	cfg.Session.MaxPreviousQueries = 3

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := quietLogger()
	a := newApp(ctx, cfg, logger)
	defer a.close()

	a.sessions.GetOrCreate("idle")
	a.startBackground(ctx, middleware.NewRateLimiter(60, logger), 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, a.sessions.Len())

	a.sessions.GetOrCreate("next")
	assert.Equal(t, 1, a.sessions.Len())
}

func TestStartBackground_RefreshesHealthReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := quietLogger()
	a := newApp(ctx, &config.Config{}, logger)
	defer a.close()

	a.startBackground(ctx, middleware.NewRateLimiter(60, logger), 5*time.Millisecond)

	// no Cloudflare credentials, so the critical check fails
	assert.Eventually(t, func() bool {
		return a.checker.CheckCached(ctx).Status == health.StatusUnhealthy
	}, time.Second, 5*time.Millisecond)
}
