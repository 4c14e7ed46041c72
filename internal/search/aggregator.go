// backend/internal/search/aggregator.go
package search

import (
	"context"
	"errors"
	"time"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/extractor"
	"github.com/Ayash-Bera/miniplex/internal/metrics"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/Ayash-Bera/miniplex/internal/providers"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ResultCache stores aggregations by query. Implementations report a
// miss with an error; any error is treated as a miss.
type ResultCache interface {
	GetSearchResults(ctx context.Context, query string) ([]models.SearchResult, error)
	SetSearchResults(ctx context.Context, query string, results []models.SearchResult) error
}

// Outcome is what one provider produced for one query.
type Outcome struct {
	Provider string
	Results  []models.SearchResult
	Err      error
}

// Aggregator fans a query out to every provider and merges the results.
type Aggregator struct {
	providers []providers.Provider
	extractor providers.ContentExtractor
	cache     ResultCache
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

type Option func(*Aggregator)

// WithCache enables result caching.
func WithCache(cache ResultCache) Option {
	return func(a *Aggregator) { a.cache = cache }
}

// WithMetrics records per-provider outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithExtractor enables user-supplied URLs in AggregateWithURLs.
func WithExtractor(extractor providers.ContentExtractor) Option {
	return func(a *Aggregator) { a.extractor = extractor }
}

// NewAggregator registers providers in the given order. That order decides
// which duplicate wins.
func NewAggregator(registered []providers.Provider, logger *logrus.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		providers: registered,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Providers returns the registered provider names in order.
func (a *Aggregator) Providers() []string {
	names := make([]string, len(a.providers))
	for i, p := range a.providers {
		names[i] = p.Name()
	}
	return names
}

// Aggregate searches every provider concurrently. It never fails: a provider
// error only removes that provider's results, and if all of them fail the
// result is empty.
func (a *Aggregator) Aggregate(ctx context.Context, query string) []models.SearchResult {
	if cached, ok := a.fromCache(ctx, query); ok {
		return cached
	}

	outcomes := a.collect(ctx, query)

	merged := make([]models.SearchResult, 0)
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			a.logger.WithError(o.Err).WithFields(logrus.Fields{
				"provider": o.Provider,
				"query":    query,
			}).Warn("Search provider failed, continuing without its results")
			continue
		}
		merged = append(merged, o.Results...)
	}

	results := Dedup(merged)

	a.logger.WithFields(logrus.Fields{
		"query":            query,
		"providers":        len(outcomes),
		"failed_providers": failed,
		"raw_results":      len(merged),
		"results":          len(results),
	}).Info("Search aggregation completed")

	if len(results) > 0 {
		a.toCache(ctx, query, results)
	}
	return results
}

// AggregateWithURLs places extracted user-supplied pages ahead of the
// provider results. Pages that cannot be fetched are skipped.
func (a *Aggregator) AggregateWithURLs(ctx context.Context, query string, customURLs []string) []models.SearchResult {
	custom := a.fetchCustomURLs(ctx, query, customURLs)
	results := a.Aggregate(ctx, query)
	if len(custom) == 0 {
		return results
	}
	return Dedup(append(custom, results...))
}

// collect runs one task per provider, bounded at the provider count, and
// stores each outcome in its registration slot.
func (a *Aggregator) collect(ctx context.Context, query string) []Outcome {
	outcomes := make([]Outcome, len(a.providers))
	if len(a.providers) == 0 {
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(len(a.providers))

	for i, p := range a.providers {
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = a.run(ctx, p, query)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (a *Aggregator) run(ctx context.Context, p providers.Provider, query string) (outcome Outcome) {
	outcome.Provider = p.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome.Results = nil
			outcome.Err = &domain.ProviderError{Provider: p.Name(), Query: query, Err: errors.New("provider panicked")}
			a.logger.WithField("panic", r).WithField("provider", p.Name()).Error("Recovered from provider panic")
		}
		a.metrics.ObserveProvider(outcome.Provider, time.Since(start), outcome.Err)
	}()

	results, err := p.Search(ctx, query)
	if err != nil {
		var providerErr *domain.ProviderError
		if !errors.As(err, &providerErr) {
			err = &domain.ProviderError{Provider: p.Name(), Query: query, Err: err}
		}
		outcome.Err = err
		return outcome
	}
	outcome.Results = results
	return outcome
}

func (a *Aggregator) fetchCustomURLs(ctx context.Context, query string, urls []string) []models.SearchResult {
	if len(urls) == 0 {
		return nil
	}
	if a.extractor == nil {
		a.logger.WithField("urls", len(urls)).Warn("Custom URLs ignored, no content extractor configured")
		return nil
	}

	results := make([]models.SearchResult, 0, len(urls))
	for _, u := range urls {
		content, err := a.extractor.Extract(ctx, u)
		if err != nil {
			a.logger.WithError(err).WithFields(logrus.Fields{
				"query": query,
				"url":   u,
			}).Warn("Skipping custom URL, content extraction failed")
			continue
		}
		results = append(results, models.SearchResult{
			Question:      query,
			Title:         u,
			URL:           u,
			Snippet:       extractor.Truncate(content, snippetLength),
			SearchContent: content,
			Source:        models.SourceCustomURL,
		})
	}
	return results
}

func (a *Aggregator) fromCache(ctx context.Context, query string) ([]models.SearchResult, bool) {
	if a.cache == nil {
		return nil, false
	}
	results, err := a.cache.GetSearchResults(ctx, query)
	if err != nil {
		a.logger.WithError(err).WithField("query", query).Debug("Search cache miss")
		return nil, false
	}
	a.logger.WithField("query", query).Debug("Search results served from cache")
	return results, true
}

func (a *Aggregator) toCache(ctx context.Context, query string, results []models.SearchResult) {
	if a.cache == nil {
		return
	}
	if err := a.cache.SetSearchResults(ctx, query, results); err != nil {
		a.logger.WithError(err).WithField("query", query).Warn("Failed to cache search results")
	}
}

const snippetLength = 200
