package models

// Source tags the provider a SearchResult came from.
type Source string

const (
	SourceBrave     Source = "brave"
	SourceSerper    Source = "serper"
	SourceYouTube   Source = "youtube"
	SourceCustomURL Source = "custom_url"
)

// Valid reports whether s is one of the known provider tags.
func (s Source) Valid() bool {
	switch s {
	case SourceBrave, SourceSerper, SourceYouTube, SourceCustomURL:
		return true
	}
	return false
}

// SearchResult is one hit from any provider. URL is the dedup key.
type SearchResult struct {
	Question      string `json:"question"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	SearchContent string `json:"search_content"`
	Source        Source `json:"source"`
}
