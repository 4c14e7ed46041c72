// backend/internal/llm/cloudflare.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/metrics"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.cloudflare.com/client/v4"
	DefaultModel   = "@cf/meta/llama-3.1-70b-instruct"
	DefaultTimeout = 60 * time.Second
)

// KnownModels lists the Workers AI models the generator accepts.
var KnownModels = map[string]bool{
	"@cf/meta/llama-3.1-70b-instruct":          true,
	"@cf/meta/llama-3.1-8b-instruct":           true,
	"@cf/meta/llama-3.3-70b-instruct-fp8-fast": true,
}

// Config holds the Workers AI credentials and model selection.
type Config struct {
	APIKey    string
	AccountID string
	Model     string
	BaseURL   string
	Timeout   time.Duration
}

// Client calls the Cloudflare Workers AI chat completion endpoint.
type Client struct {
	apiKey     string
	accountID  string
	model      string
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

type completionRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// NewClient validates the configuration and fails with a
// *domain.ConfigurationError when credentials or the model are unusable.
func NewClient(cfg Config, m *metrics.Metrics, logger *logrus.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.AccountID) == "" {
		return nil, &domain.ConfigurationError{Component: "cloudflare", Message: "api_key and account_id must be specified"}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if !KnownModels[cfg.Model] {
		return nil, &domain.ConfigurationError{
			Component: "cloudflare",
			Message:   fmt.Sprintf("invalid model %q, choose from: %s", cfg.Model, strings.Join(ModelNames(), ", ")),
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		apiKey:     cfg.APIKey,
		accountID:  cfg.AccountID,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		metrics:    m,
		logger:     logger,
	}, nil
}

// ModelNames returns the accepted model identifiers, sorted.
func ModelNames() []string {
	names := make([]string, 0, len(KnownModels))
	for name := range KnownModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// URL is the run endpoint for the configured account and model.
func (c *Client) URL() string {
	return fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, c.model)
}

func (c *Client) Model() string { return c.model }

// Generate answers query using the search results as context and the
// session history as prior turns.
func (c *Client) Generate(ctx context.Context, results []models.SearchResult, history []models.Message, query string, previousQueries []string) (string, error) {
	messages := BuildMessages(results, history, query, previousQueries)

	answer, err := c.Complete(ctx, messages)
	c.metrics.ObserveCompletion(err)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"query": query,
			"model": c.model,
		}).Error("Answer generation failed")
		return "", err
	}

	c.logger.WithFields(logrus.Fields{
		"model":         c.model,
		"messages":      len(messages),
		"context_items": len(results),
		"answer_length": len(answer),
	}).Info("Answer generated")

	return answer, nil
}

// Complete sends messages as a single chat completion call.
func (c *Client) Complete(ctx context.Context, messages []models.Message) (string, error) {
	req := completionRequest{Messages: make([]chatMessage, len(messages))}
	for i, m := range messages {
		req.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", &domain.CompletionAPIError{Err: fmt.Errorf("failed to marshal payload: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(jsonData))
	if err != nil {
		return "", &domain.CompletionAPIError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.WithFields(logrus.Fields{
		"model":        c.model,
		"messages":     len(messages),
		"payload_size": len(jsonData),
	}).Debug("Making completion request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.CompletionAPIError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.CompletionAPIError{Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if len(msg) > 500 {
			msg = msg[:500]
		}
		return "", &domain.CompletionAPIError{Status: resp.StatusCode, Err: errors.New(msg)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &domain.CompletionAPIError{Status: resp.StatusCode, Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}
	if !parsed.Success {
		msg := "request was not successful"
		if len(parsed.Errors) > 0 {
			msg = parsed.Errors[0].Message
		}
		return "", &domain.CompletionAPIError{Status: resp.StatusCode, Err: errors.New(msg)}
	}

	return parsed.Result.Response, nil
}
