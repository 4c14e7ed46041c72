package search

import "github.com/Ayash-Bera/miniplex/internal/models"

// Dedup drops results whose URL was already seen, keeping the first
// occurrence and the original order.
func Dedup(results []models.SearchResult) []models.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}
