package web_search

import (
	"context"
	"errors"
	"strings"

	"github.com/wanderplan/concierge/tools/web_search/brave"
	"github.com/wanderplan/concierge/tools/web_search/models"
	"github.com/wanderplan/concierge/tools/web_search/serper"
)

// Result re-exports the search hit type so callers need only this package.
type Result = models.Result

// WebSearcher is the fallback context source when catalog retrieval misses.
type WebSearcher interface {
	Search(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// FormatResults renders hits as a context block for the generation prompt.
// Empty input renders to the empty string.
func FormatResults(results []models.Result) string {
	if len(results) == 0 {
		return ""
	}
	parts := []string{"[WEB SEARCH RESULTS]"}
	for _, r := range results {
		parts = append(parts, "- "+r.Title+": "+r.Snippet)
	}
	return strings.Join(parts, "\n")
}
