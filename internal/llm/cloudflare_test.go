package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/metrics"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		APIKey:    "cf-token",
		AccountID: "acct",
		BaseURL:   baseURL,
	}, metrics.New(), logrus.New())
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{AccountID: "acct"}, nil, logrus.New())
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewClient(Config{APIKey: "k"}, nil, logrus.New())
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewClient(Config{APIKey: "k", AccountID: "a", Model: "gpt-4"}, nil, logrus.New())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), DefaultModel)

	client, err := NewClient(Config{APIKey: "k", AccountID: "a"}, nil, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, "https://api.cloudflare.com/client/v4/accounts/a/ai/run/@cf/meta/llama-3.1-70b-instruct", client.URL())
}

func TestGenerate(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody completionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"response":"Go is a language."},"success":true,"errors":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	results := []models.SearchResult{{URL: "https://go.dev", SearchContent: "Go is open source.", Source: models.SourceBrave}}
	history := []models.Message{{Role: models.RoleUser, Content: "hi"}, {Role: models.RoleAssistant, Content: "hello"}}

	answer, err := client.Generate(context.Background(), results, history, "What is Go?", []string{"hi"})

	require.NoError(t, err)
	assert.Equal(t, "Go is a language.", answer)
	assert.Equal(t, "Bearer cf-token", gotAuth)
	assert.Equal(t, "/accounts/acct/ai/run/@cf/meta/llama-3.1-70b-instruct", gotPath)
	require.Len(t, gotBody.Messages, 4)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "hello", gotBody.Messages[2].Content)
	assert.Equal(t, "Previous questions in this conversation: hi\n\nCurrent question: What is Go?", gotBody.Messages[3].Content)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"success":false}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"errors":[{"code":10000,"message":"Authentication error"}]}`},
		{name: "not successful", status: http.StatusOK, body: `{"result":null,"success":false,"errors":[{"code":5006,"message":"bad input"}]}`},
		{name: "malformed body", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).Generate(context.Background(), nil, nil, "q", nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCompletion)
			assert.Equal(t, http.StatusBadGateway, domain.StatusCode(err))
		})
	}
}

func TestGenerate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).Generate(context.Background(), nil, nil, "q", nil)
	assert.ErrorIs(t, err, domain.ErrCompletion)
}

func TestUnavailable(t *testing.T) {
	cause := &domain.ConfigurationError{Component: "cloudflare", Message: "api_key and account_id must be specified"}
	u := NewUnavailable(cause)

	_, err := u.Generate(context.Background(), nil, nil, "q", nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, http.StatusInternalServerError, domain.StatusCode(err))
}
