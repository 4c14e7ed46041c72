package providers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/sirupsen/logrus"
)

const SerperBaseURL = "https://google.serper.dev"

// Serper searches Google results through serper.dev.
type Serper struct {
	cfg       Config
	client    *apiClient
	extractor ContentExtractor
	throttle  Throttle
	logger    *logrus.Logger
}

type serperRequest struct {
	Q    string `json:"q"`
	Num  int    `json:"num"`
	Safe string `json:"safe"`
}

// NewSerper fails with a *domain.ConfigurationError when the API key is missing.
func NewSerper(cfg Config, extractor ContentExtractor, throttle Throttle, logger *logrus.Logger) (*Serper, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &domain.ConfigurationError{Component: string(models.SourceSerper), Message: "PROVIDERS_SERPER_API_KEY (providers.serper.api_key) is required"}
	}
	if throttle == nil {
		throttle = noThrottle{}
	}
	cfg = cfg.withDefaults(SerperBaseURL)
	return &Serper{
		cfg:       cfg,
		client:    newAPIClient(string(models.SourceSerper), cfg.Timeout, logger),
		extractor: extractor,
		throttle:  throttle,
		logger:    logger,
	}, nil
}

func (s *Serper) Name() string { return string(models.SourceSerper) }

func (s *Serper) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if err := s.throttle.Wait(ctx, s.Name()); err != nil {
		return nil, &domain.ProviderError{Provider: s.Name(), Query: query, Err: err}
	}

	var payload struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}

	req := serperRequest{Q: query, Num: s.cfg.MaxResults, Safe: "active"}
	headers := map[string]string{"X-API-KEY": s.cfg.APIKey}
	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/search"
	if err := s.client.makeRequest(ctx, http.MethodPost, endpoint, headers, req, &payload); err != nil {
		return nil, &domain.ProviderError{Provider: s.Name(), Query: query, Err: err}
	}

	hits := make([]models.SearchResult, 0, len(payload.Organic))
	for _, r := range payload.Organic {
		if r.Link == "" {
			continue
		}
		hits = append(hits, models.SearchResult{
			Question: query,
			Title:    plainText(r.Title),
			URL:      r.Link,
			Snippet:  plainText(r.Snippet),
			Source:   models.SourceSerper,
		})
		if len(hits) >= s.cfg.MaxResults {
			break
		}
	}

	return enrich(ctx, s.Name(), s.extractor, hits, s.logger), nil
}
