package models

type SearchRequest struct {
	Query      string   `json:"query" binding:"required"`
	CustomURLs []string `json:"custom_urls"`
}

type AnswerRequest struct {
	Query         string         `json:"query" binding:"required"`
	SearchResults []SearchResult `json:"search_results"`
}

type AnswerResponse struct {
	Answer        string         `json:"answer"`
	Citations     []string       `json:"citations"`
	SearchResults []SearchResult `json:"search_results"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type HistoryResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}
