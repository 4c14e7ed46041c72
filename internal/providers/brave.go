package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/sirupsen/logrus"
)

const BraveBaseURL = "https://api.search.brave.com"

// Brave searches the web through the Brave Search API.
type Brave struct {
	cfg       Config
	client    *apiClient
	extractor ContentExtractor
	throttle  Throttle
	logger    *logrus.Logger
}

// NewBrave fails with a *domain.ConfigurationError when the API key is missing.
func NewBrave(cfg Config, extractor ContentExtractor, throttle Throttle, logger *logrus.Logger) (*Brave, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &domain.ConfigurationError{Component: string(models.SourceBrave), Message: "PROVIDERS_BRAVE_API_KEY (providers.brave.api_key) is required"}
	}
	if throttle == nil {
		throttle = noThrottle{}
	}
	cfg = cfg.withDefaults(BraveBaseURL)
	return &Brave{
		cfg:       cfg,
		client:    newAPIClient(string(models.SourceBrave), cfg.Timeout, logger),
		extractor: extractor,
		throttle:  throttle,
		logger:    logger,
	}, nil
}

func (b *Brave) Name() string { return string(models.SourceBrave) }

func (b *Brave) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if err := b.throttle.Wait(ctx, b.Name()); err != nil {
		return nil, &domain.ProviderError{Provider: b.Name(), Query: query, Err: err}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(b.cfg.MaxResults))
	params.Set("safesearch", "strict")
	endpoint := fmt.Sprintf("%s/res/v1/web/search?%s", strings.TrimRight(b.cfg.BaseURL, "/"), params.Encode())

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}

	headers := map[string]string{"X-Subscription-Token": b.cfg.APIKey}
	if err := b.client.makeRequest(ctx, http.MethodGet, endpoint, headers, nil, &payload); err != nil {
		return nil, &domain.ProviderError{Provider: b.Name(), Query: query, Err: err}
	}

	hits := make([]models.SearchResult, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		if r.URL == "" {
			continue
		}
		snippet := plainText(r.Description)
		hits = append(hits, models.SearchResult{
			Question: query,
			Title:    plainText(r.Title),
			URL:      r.URL,
			Snippet:  snippet,
			Source:   models.SourceBrave,
		})
		if len(hits) >= b.cfg.MaxResults {
			break
		}
	}

	return enrich(ctx, b.Name(), b.extractor, hits, b.logger), nil
}
