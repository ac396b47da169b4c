package models

// Result is one web search hit used as fallback retrieval context.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
