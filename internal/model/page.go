package model

// SearchResult is a single candidate returned by a search provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Page is a search result together with the fetched page body.
// Content is empty when the fetch failed; that is a valid state, not an error.
type Page struct {
	SearchResult
	Content string `json:"content"`
}

// HasContent reports whether the page body was fetched.
func (p Page) HasContent() bool {
	return p.Content != ""
}
