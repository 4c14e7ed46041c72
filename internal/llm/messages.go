package llm

import (
	"strings"

	"github.com/Ayash-Bera/miniplex/internal/models"
)

const (
	basePrompt    = "You are a helpful AI assistant."
	contextPrompt = basePrompt + " Use the following context to answer questions:\n\n"
)

// BuildMessages assembles the chat sent to the model: a system message
// carrying the search context, the prior turns, then the current question.
func BuildMessages(results []models.SearchResult, history []models.Message, query string, previousQueries []string) []models.Message {
	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: systemPrompt(results)})

	for _, m := range history {
		messages = append(messages, models.Message{Role: m.Role, Content: m.Content})
	}

	messages = append(messages, models.Message{Role: models.RoleUser, Content: userPrompt(query, previousQueries)})
	return messages
}

func systemPrompt(results []models.SearchResult) string {
	if len(results) == 0 {
		return basePrompt
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Source == models.SourceCustomURL {
			parts = append(parts, "Content from provided URL ("+r.URL+"):\n"+r.SearchContent)
			continue
		}
		parts = append(parts, r.SearchContent)
	}
	return contextPrompt + strings.Join(parts, "\n\n")
}

func userPrompt(query string, previousQueries []string) string {
	if len(previousQueries) == 0 {
		return query
	}
	return "Previous questions in this conversation: " + strings.Join(previousQueries, " | ") +
		"\n\nCurrent question: " + query
}

// Citations lists the URLs of the results that went into the context, in
// order, without duplicates.
func Citations(results []models.SearchResult) []string {
	citations := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		citations = append(citations, r.URL)
	}
	return citations
}
