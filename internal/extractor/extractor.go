// backend/internal/extractor/extractor.go
package extractor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultMaxParagraphs = 5
	DefaultMaxChars      = 5000
)

const sentencesPerParagraph = 2

// UserAgents is the pool a request's User-Agent is drawn from.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
}

var multiWhitespace = regexp.MustCompile(`\s+`)

// Config tunes the extractor. Zero values fall back to the defaults.
type Config struct {
	Timeout       time.Duration
	MaxParagraphs int
	MaxChars      int
}

// Extractor fetches a page and reduces it to a short plain-text excerpt.
type Extractor struct {
	collector     *colly.Collector
	maxParagraphs int
	maxChars      int
	logger        *logrus.Logger
}

func New(cfg Config, logger *logrus.Logger) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxParagraphs <= 0 {
		cfg.MaxParagraphs = DefaultMaxParagraphs
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(cfg.Timeout)

	return &Extractor{
		collector:     c,
		maxParagraphs: cfg.MaxParagraphs,
		maxChars:      cfg.MaxChars,
		logger:        logger,
	}
}

// Extract downloads url and returns up to the first paragraphs of the page,
// two sentences each, capped at the configured length. Any failure is a
// *domain.ContentFetchError.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.ContentFetchError{URL: url, Err: err}
	}

	// Clone shares the transport but not callbacks, so concurrent
	// extractions never see each other's handlers.
	c := e.collector.Clone()

	var paragraphs []string
	var fetchErr error
	var sawHTML bool

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("User-Agent", randomUserAgent())
	})

	c.OnHTML("html", func(h *colly.HTMLElement) {
		sawHTML = true
		paragraphs = collectParagraphs(h.DOM, e.maxParagraphs)
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("HTTP %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr == nil && ctx.Err() != nil {
		fetchErr = ctx.Err()
	}
	if fetchErr == nil && !sawHTML {
		fetchErr = errors.New("response is not an HTML document")
	}
	if fetchErr != nil {
		e.logger.WithError(fetchErr).WithField("url", url).Debug("Content extraction failed")
		return "", &domain.ContentFetchError{URL: url, Err: fetchErr}
	}

	text := Truncate(Summarize(paragraphs), e.maxChars)

	e.logger.WithFields(logrus.Fields{
		"url":            url,
		"paragraphs":     len(paragraphs),
		"content_length": utf8.RuneCountInString(text),
	}).Debug("Content extracted")

	return text, nil
}

func collectParagraphs(doc *goquery.Selection, limit int) []string {
	var out []string
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		out = append(out, s.Text())
		return true
	})
	return out
}

// Summarize keeps the first two sentences of each paragraph, splitting on
// ". " and ending every kept fragment with a period, and joins the
// fragments with spaces.
func Summarize(paragraphs []string) string {
	fragments := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(multiWhitespace.ReplaceAllString(p, " "))
		if p == "" {
			continue
		}
		sentences := strings.SplitN(p, ". ", sentencesPerParagraph+1)
		if len(sentences) > sentencesPerParagraph {
			sentences = sentences[:sentencesPerParagraph]
		}
		fragment := strings.TrimSuffix(strings.Join(sentences, ". "), ".") + "."
		fragments = append(fragments, fragment)
	}
	return strings.Join(fragments, " ")
}

// Truncate cuts s to at most max characters.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

func randomUserAgent() string {
	return UserAgents[rand.Intn(len(UserAgents))]
}
