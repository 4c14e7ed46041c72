package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/metrics"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/Ayash-Bera/miniplex/internal/providers"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name    string
	results []models.SearchResult
	err     error
	delay   time.Duration
	panics  bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.panics {
		panic("boom")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func result(url string, source models.Source) models.SearchResult {
	return models.SearchResult{Question: "q", Title: url, URL: url, SearchContent: "content of " + url, Source: source}
}

func TestAggregate_DedupKeepsFirstInRegistrationOrder(t *testing.T) {
	// the first provider finishes last; registration order still wins
	brave := &stubProvider{name: "brave", delay: 50 * time.Millisecond, results: []models.SearchResult{
		result("https://a.example", models.SourceBrave),
		result("https://b.example", models.SourceBrave),
	}}
	serper := &stubProvider{name: "serper", results: []models.SearchResult{
		result("https://b.example", models.SourceSerper),
		result("https://c.example", models.SourceSerper),
		result("https://a.example", models.SourceSerper),
	}}

	agg := NewAggregator([]providers.Provider{brave, serper}, logrus.New())
	results := agg.Aggregate(context.Background(), "q")

	require.Len(t, results, 3)
	assert.Equal(t, "https://a.example", results[0].URL)
	assert.Equal(t, models.SourceBrave, results[0].Source)
	assert.Equal(t, "https://b.example", results[1].URL)
	assert.Equal(t, models.SourceBrave, results[1].Source)
	assert.Equal(t, "https://c.example", results[2].URL)
}

func TestAggregate_FailingProviderIsContained(t *testing.T) {
	failing := &stubProvider{name: "brave", err: &domain.ProviderError{Provider: "brave", Query: "q", Err: errors.New("401")}}
	ok := &stubProvider{name: "youtube", results: []models.SearchResult{
		result("https://v.example", models.SourceYouTube),
		result("https://v.example", models.SourceYouTube),
	}}

	agg := NewAggregator([]providers.Provider{failing, ok}, logrus.New())
	results := agg.Aggregate(context.Background(), "q")

	assert.Equal(t, []models.SearchResult{result("https://v.example", models.SourceYouTube)}, results)
}

func TestAggregate_AllProvidersFailing(t *testing.T) {
	agg := NewAggregator([]providers.Provider{
		&stubProvider{name: "brave", err: errors.New("down")},
		&stubProvider{name: "serper", panics: true},
		providers.NewUnavailable("youtube", &domain.ConfigurationError{Component: "youtube", Message: "missing key"}),
	}, logrus.New())

	results := agg.Aggregate(context.Background(), "q")

	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestAggregate_NoProviders(t *testing.T) {
	agg := NewAggregator(nil, logrus.New())
	assert.Empty(t, agg.Aggregate(context.Background(), "q"))
}

func TestAggregate_RunsProvidersConcurrently(t *testing.T) {
	ps := []providers.Provider{
		&stubProvider{name: "brave", delay: 100 * time.Millisecond},
		&stubProvider{name: "serper", delay: 100 * time.Millisecond},
		&stubProvider{name: "youtube", delay: 100 * time.Millisecond},
	}
	agg := NewAggregator(ps, logrus.New())

	start := time.Now()
	agg.Aggregate(context.Background(), "q")
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Equal(t, []string{"brave", "serper", "youtube"}, agg.Providers())
}

func TestCollect_WrapsPlainErrors(t *testing.T) {
	agg := NewAggregator([]providers.Provider{&stubProvider{name: "brave", err: errors.New("timeout")}}, logrus.New())

	outcomes := agg.collect(context.Background(), "q")

	require.Len(t, outcomes, 1)
	assert.Equal(t, "brave", outcomes[0].Provider)
	assert.ErrorIs(t, outcomes[0].Err, domain.ErrProvider)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]models.SearchResult
	sets int
}

func (m *memoryCache) GetSearchResults(_ context.Context, query string) ([]models.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.data[query]; ok {
		return r, nil
	}
	return nil, errors.New("miss")
}

func (m *memoryCache) SetSearchResults(_ context.Context, query string, results []models.SearchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[query] = results
	return nil
}

type countingProvider struct {
	stubProvider
	calls int
}

func (c *countingProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	c.calls++
	return c.stubProvider.Search(ctx, query)
}

func TestAggregate_UsesCache(t *testing.T) {
	p := &countingProvider{stubProvider: stubProvider{name: "brave", results: []models.SearchResult{result("https://a.example", models.SourceBrave)}}}
	cache := &memoryCache{data: map[string][]models.SearchResult{}}
	agg := NewAggregator([]providers.Provider{p}, logrus.New(), WithCache(cache), WithMetrics(metrics.New()))

	first := agg.Aggregate(context.Background(), "q")
	second := agg.Aggregate(context.Background(), "q")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestAggregate_EmptyResultsAreNotCached(t *testing.T) {
	cache := &memoryCache{data: map[string][]models.SearchResult{}}
	agg := NewAggregator([]providers.Provider{&stubProvider{name: "brave", err: errors.New("down")}}, logrus.New(), WithCache(cache))

	agg.Aggregate(context.Background(), "q")
	assert.Equal(t, 0, cache.sets)
}

type mapExtractor map[string]string

func (m mapExtractor) Extract(_ context.Context, url string) (string, error) {
	if text, ok := m[url]; ok {
		return text, nil
	}
	return "", &domain.ContentFetchError{URL: url, Err: errors.New("404")}
}

func TestAggregateWithURLs_CustomResultsComeFirst(t *testing.T) {
	p := &stubProvider{name: "brave", results: []models.SearchResult{
		result("https://a.example", models.SourceBrave),
		result("https://mine.example", models.SourceBrave),
	}}
	ext := mapExtractor{"https://mine.example": "My page."}
	agg := NewAggregator([]providers.Provider{p}, logrus.New(), WithExtractor(ext))

	results := agg.AggregateWithURLs(context.Background(), "q", []string{"https://mine.example", "https://gone.example"})

	require.Len(t, results, 2)
	assert.Equal(t, models.SearchResult{
		Question:      "q",
		Title:         "https://mine.example",
		URL:           "https://mine.example",
		Snippet:       "My page.",
		SearchContent: "My page.",
		Source:        models.SourceCustomURL,
	}, results[0])
	assert.Equal(t, "https://a.example", results[1].URL)
}

func TestAggregateWithURLs_WithoutExtractor(t *testing.T) {
	p := &stubProvider{name: "brave", results: []models.SearchResult{result("https://a.example", models.SourceBrave)}}
	agg := NewAggregator([]providers.Provider{p}, logrus.New())

	results := agg.AggregateWithURLs(context.Background(), "q", []string{"https://mine.example"})
	assert.Len(t, results, 1)
}

func TestDedup(t *testing.T) {
	in := []models.SearchResult{
		result("u1", models.SourceBrave),
		result("u2", models.SourceBrave),
		result("u1", models.SourceSerper),
		result("u3", models.SourceSerper),
		result("u2", models.SourceYouTube),
	}

	out := Dedup(in)

	require.Len(t, out, 3)
	assert.Equal(t, []string{"u1", "u2", "u3"}, []string{out[0].URL, out[1].URL, out[2].URL})
	assert.Equal(t, models.SourceBrave, out[0].Source)
	assert.Empty(t, Dedup(nil))
}
