// Package providers wraps the external search APIs and normalizes their
// hits into models.SearchResult.
package providers

import (
	"context"
	"time"

	"github.com/Ayash-Bera/miniplex/internal/models"
)

const (
	DefaultMaxResults = 2
	DefaultTimeout    = 5 * time.Second
)

// Provider is one search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// ContentExtractor fills SearchContent for web hits.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Throttle blocks until the provider may issue another request.
type Throttle interface {
	Wait(ctx context.Context, key string) error
}

// Config holds one provider's credentials and limits.
type Config struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

func (c Config) withDefaults(baseURL string) Config {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

type noThrottle struct{}

func (noThrottle) Wait(context.Context, string) error { return nil }
