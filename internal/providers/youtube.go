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

const (
	YouTubeBaseURL  = "https://www.googleapis.com"
	youTubeWatchURL = "https://www.youtube.com/watch?v="
)

// YouTube searches videos through the YouTube Data API. The video
// description is used as the page content; no extraction is performed.
type YouTube struct {
	cfg      Config
	client   *apiClient
	throttle Throttle
	logger   *logrus.Logger
}

// NewYouTube fails with a *domain.ConfigurationError when the API key is missing.
func NewYouTube(cfg Config, throttle Throttle, logger *logrus.Logger) (*YouTube, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &domain.ConfigurationError{Component: string(models.SourceYouTube), Message: "PROVIDERS_YOUTUBE_API_KEY (providers.youtube.api_key) is required"}
	}
	if throttle == nil {
		throttle = noThrottle{}
	}
	cfg = cfg.withDefaults(YouTubeBaseURL)
	return &YouTube{
		cfg:      cfg,
		client:   newAPIClient(string(models.SourceYouTube), cfg.Timeout, logger),
		throttle: throttle,
		logger:   logger,
	}, nil
}

func (y *YouTube) Name() string { return string(models.SourceYouTube) }

func (y *YouTube) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if err := y.throttle.Wait(ctx, y.Name()); err != nil {
		return nil, &domain.ProviderError{Provider: y.Name(), Query: query, Err: err}
	}

	params := url.Values{}
	params.Set("key", y.cfg.APIKey)
	params.Set("q", query)
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(y.cfg.MaxResults))
	params.Set("safeSearch", "strict")
	endpoint := fmt.Sprintf("%s/youtube/v3/search?%s", strings.TrimRight(y.cfg.BaseURL, "/"), params.Encode())

	var payload struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			} `json:"snippet"`
		} `json:"items"`
	}

	if err := y.client.makeRequest(ctx, http.MethodGet, endpoint, nil, nil, &payload); err != nil {
		return nil, &domain.ProviderError{Provider: y.Name(), Query: query, Err: err}
	}

	results := make([]models.SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		description := plainText(item.Snippet.Description)
		results = append(results, models.SearchResult{
			Question:      query,
			Title:         plainText(item.Snippet.Title),
			URL:           youTubeWatchURL + item.ID.VideoID,
			Snippet:       description,
			SearchContent: description,
			Source:        models.SourceYouTube,
		})
		if len(results) >= y.cfg.MaxResults {
			break
		}
	}

	return results, nil
}
