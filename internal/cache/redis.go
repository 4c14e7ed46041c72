// backend/internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/Ayash-Bera/miniplex/pkg/utils"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// SearchResultsKey is the key layout for cached aggregations.
const SearchResultsKey = "search:results:%s"

// ErrMiss is returned when a query has no cached results.
var ErrMiss = errors.New("cache miss")

// Connect parses redisURL, configures the pool and checks connectivity.
func Connect(ctx context.Context, redisURL string, logger *logrus.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 20
	opts.MinIdleConns = 5
	opts.MaxConnAge = time.Hour
	opts.IdleTimeout = 30 * time.Minute

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return client, nil
}

// Cache stores aggregated search results by normalized query.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Key returns the Redis key for query. Case and surrounding space are ignored.
func Key(query string) string {
	return fmt.Sprintf(SearchResultsKey, utils.MD5Hash(strings.ToLower(strings.TrimSpace(query))))
}

// GetSearchResults returns ErrMiss when nothing is cached for query.
func (c *Cache) GetSearchResults(ctx context.Context, query string) ([]models.SearchResult, error) {
	data, err := c.client.Get(ctx, Key(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var results []models.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached results: %w", err)
	}
	return results, nil
}

func (c *Cache) SetSearchResults(ctx context.Context, query string, results []models.SearchResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}
	return c.client.Set(ctx, Key(query), data, c.ttl).Err()
}

func (c *Cache) InvalidateSearchResults(ctx context.Context, query string) error {
	return c.client.Del(ctx, Key(query)).Err()
}

// Ping is used by the health checker.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
