package providers

import (
	"context"

	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/sirupsen/logrus"
)

// enrich fills SearchContent for each hit one at a time. A hit whose page
// cannot be extracted is dropped.
func enrich(ctx context.Context, provider string, extractor ContentExtractor, hits []models.SearchResult, logger *logrus.Logger) []models.SearchResult {
	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if ctx.Err() != nil {
			break
		}
		content, err := extractor.Extract(ctx, hit.URL)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"provider": provider,
				"query":    hit.Question,
				"url":      hit.URL,
			}).Warn("Dropping search result, content extraction failed")
			continue
		}
		hit.SearchContent = content
		results = append(results, hit)
	}
	return results
}
