package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []string
		want       string
	}{
		{"keeps first two sentences", []string{"A. B. C."}, "A. B."},
		{"single sentence", []string{"Only one sentence."}, "Only one sentence."},
		{"adds missing period", []string{"No period"}, "No period."},
		{"joins paragraphs", []string{"First. Second. Third.", "Next one."}, "First. Second. Next one."},
		{"skips empty", []string{"  ", "Text here."}, "Text here."},
		{"collapses whitespace", []string{"Spread\n   over.  Lines"}, "Spread over. Lines."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.paragraphs))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "aé", Truncate("aéb", 2))

	// the limit counts characters, not bytes
	long := Truncate(strings.Repeat("é", 6000), DefaultMaxChars)
	assert.Equal(t, DefaultMaxChars, utf8.RuneCountInString(long))
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, "日本語", Truncate("日本語テキスト", 3))
}

func TestExtractor_Extract(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body>
			<p>One. Two. Three.</p>
			<p>Four.</p>
			<p>Five. Six.</p>
			<p>Seven.</p>
			<p>Eight.</p>
			<p>Nine.</p>
		</body></html>`))
	}))
	defer server.Close()

	ext := New(Config{Timeout: time.Second}, logrus.New())

	text, err := ext.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "One. Two. Four. Five. Six. Seven. Eight.", text)
	assert.Contains(t, UserAgents, userAgent)

	// revisiting the same URL is allowed
	again, err := ext.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestExtractor_TruncatesToMaxChars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<p>" + strings.Repeat("x", 200) + "</p>"))
	}))
	defer server.Close()

	ext := New(Config{MaxChars: 50}, logrus.New())

	text, err := ext.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, text, 50)
}

func TestExtractor_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ext := New(Config{}, logrus.New())

	_, err := ext.Extract(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrContentFetch)

	var fetchErr *domain.ContentFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, server.URL, fetchErr.URL)
}

func TestExtractor_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	ext := New(Config{Timeout: time.Second}, logrus.New())

	_, err := ext.Extract(context.Background(), url)
	assert.ErrorIs(t, err, domain.ErrContentFetch)
}

func TestExtractor_CancelledContext(t *testing.T) {
	ext := New(Config{}, logrus.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ext.Extract(ctx, "http://example.invalid")
	assert.ErrorIs(t, err, domain.ErrContentFetch)
	assert.ErrorIs(t, err, context.Canceled)
}
