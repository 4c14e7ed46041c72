package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const maxErrorBody = 300

// apiClient issues JSON requests against one provider API.
type apiClient struct {
	name       string
	httpClient *http.Client
	logger     *logrus.Logger
}

func newAPIClient(name string, timeout time.Duration, logger *logrus.Logger) *apiClient {
	return &apiClient{
		name:       name,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *apiClient) makeRequest(ctx context.Context, method, url string, headers map[string]string, payload, result interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.WithFields(logrus.Fields{
		"provider": c.name,
		"method":   method,
		"has_body": payload != nil,
	}).Debug("Making provider API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"provider":      c.name,
		"status_code":   resp.StatusCode,
		"response_size": len(responseBody),
	}).Debug("Provider API response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(responseBody), maxErrorBody))
	}

	if result != nil {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
