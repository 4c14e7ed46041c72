package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func TestCheckAll(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(h *HealthChecker)
		status string
	}{
		{
			name:   "no checks",
			setup:  func(h *HealthChecker) {},
			status: StatusHealthy,
		},
		{
			name: "all healthy",
			setup: func(h *HealthChecker) {
				h.AddCheck("redis", true, ok)
				h.AddCheck("brave", false, ok)
			},
			status: StatusHealthy,
		},
		{
			name: "optional failure degrades",
			setup: func(h *HealthChecker) {
				h.AddCheck("redis", true, ok)
				h.AddCheck("youtube", false, failing("missing api key"))
			},
			status: StatusDegraded,
		},
		{
			name: "critical failure",
			setup: func(h *HealthChecker) {
				h.AddCheck("cloudflare", true, failing("missing credentials"))
				h.AddCheck("youtube", false, failing("missing api key"))
			},
			status: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(time.Second, logrus.New())
			tt.setup(h)

			health := h.CheckAll(context.Background())
			assert.Equal(t, tt.status, health.Status)
			assert.Len(t, health.Services, len(h.checks))
		})
	}
}

func TestCheckAll_ReportsErrorsInOrder(t *testing.T) {
	h := NewHealthChecker(time.Second, logrus.New())
	h.AddCheck("redis", true, ok)
	h.AddCheck("serper", false, failing("missing api key"))

	health := h.CheckAll(context.Background())

	require.Len(t, health.Services, 2)
	assert.Equal(t, "redis", health.Services[0].Name)
	assert.Empty(t, health.Services[0].Error)
	assert.Equal(t, "serper", health.Services[1].Name)
	assert.Equal(t, StatusDegraded, health.Services[1].Status)
	assert.Equal(t, "missing api key", health.Services[1].Error)
}

func TestCheckAll_AppliesTimeout(t *testing.T) {
	h := NewHealthChecker(20*time.Millisecond, logrus.New())
	h.AddCheck("slow", true, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	health := h.CheckAll(context.Background())
	assert.Equal(t, StatusUnhealthy, health.Status)
}

func TestCheckCached(t *testing.T) {
	calls := 0
	h := NewHealthChecker(time.Second, logrus.New())
	h.AddCheck("redis", true, func(context.Context) error {
		calls++
		return nil
	})

	h.CheckCached(context.Background())
	h.CheckCached(context.Background())
	assert.Equal(t, 1, calls)

	h.CheckAll(context.Background())
	assert.Equal(t, 2, calls)
}

func TestPeriodicHealthCheck_RefreshesCachedReport(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	h := NewHealthChecker(time.Second, logrus.New())
	h.AddCheck("redis", true, func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("connection refused")
	})
	assert.Equal(t, StatusHealthy, h.CheckCached(context.Background()).Status)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.PeriodicHealthCheck(ctx, 10*time.Millisecond)
		close(done)
	}()

	healthy.Store(false)
	assert.Eventually(t, func() bool {
		return h.CheckCached(context.Background()).Status == StatusUnhealthy
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("periodic health check did not stop after cancel")
	}
}
