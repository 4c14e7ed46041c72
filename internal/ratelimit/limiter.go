// Package ratelimit throttles calls to rate-limited services with a sliding
// window of call timestamps kept per key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Limiter allows at most calls per period for each key.
type Limiter struct {
	calls  int
	period time.Duration
	now    func() time.Time
	logger *logrus.Logger

	mu     sync.Mutex
	tokens map[string][]time.Time
}

// New creates a limiter allowing calls per period. A non-positive calls
// value disables limiting.
func New(calls int, period time.Duration, logger *logrus.Logger) *Limiter {
	if logger == nil {
		logger = logrus.New()
	}
	return &Limiter{
		calls:  calls,
		period: period,
		now:    time.Now,
		logger: logger,
		tokens: make(map[string][]time.Time),
	}
}

// WithClock replaces the time source. Used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow reports whether a call for key would currently be within quota.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowLocked(key, l.now())
}

// Record registers a call for key at the current time.
func (l *Limiter) Record(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordLocked(key, l.now())
}

// TryAcquire checks and records in one step. It returns false without
// recording when the quota is exhausted.
func (l *Limiter) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if !l.allowLocked(key, now) {
		return false
	}
	l.recordLocked(key, now)
	return true
}

// TimeUntilAvailable returns how long until key has a free slot, zero if
// one is free now.
func (l *Limiter) TimeUntilAvailable(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waitLocked(key, l.now())
}

// Wait blocks until a slot for key frees up, then records the call. It
// returns the context error if ctx ends first.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	for {
		l.mu.Lock()
		now := l.now()
		if l.allowLocked(key, now) {
			l.recordLocked(key, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.waitLocked(key, now)
		l.mu.Unlock()

		l.logger.WithFields(logrus.Fields{
			"key":  key,
			"wait": wait.String(),
		}).Debug("Rate limit reached, waiting for slot")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Prune drops every key whose window has fully elapsed and returns how
// many keys remain.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key := range l.tokens {
		l.purgeLocked(key, now)
	}
	return len(l.tokens)
}

func (l *Limiter) recordLocked(key string, now time.Time) {
	if l.calls <= 0 {
		return
	}
	l.tokens[key] = append(l.tokens[key], now)
}

func (l *Limiter) allowLocked(key string, now time.Time) bool {
	if l.calls <= 0 {
		return true
	}
	l.purgeLocked(key, now)
	return len(l.tokens[key]) < l.calls
}

func (l *Limiter) waitLocked(key string, now time.Time) time.Duration {
	if l.allowLocked(key, now) {
		return 0
	}
	// timestamps are appended in order, so the first one is the oldest
	wait := l.tokens[key][0].Add(l.period).Sub(now)
	if wait <= 0 {
		// boundary case: the oldest call ages out on the next purge
		return time.Millisecond
	}
	return wait
}

// purgeLocked drops timestamps older than the window.
func (l *Limiter) purgeLocked(key string, now time.Time) {
	stamps := l.tokens[key]
	i := 0
	for i < len(stamps) && now.Sub(stamps[i]) > l.period {
		i++
	}
	if i == 0 {
		return
	}
	if i == len(stamps) {
		delete(l.tokens, key)
		return
	}
	l.tokens[key] = append([]time.Time(nil), stamps[i:]...)
}
