// Package search defines the web-search provider used for grounding and the
// shared query strategy used by the resolver and the enrichment engine.
package search

import (
	"context"
	"strings"
)

// Result is a single search hit. Score is the provider's relevance in [0,1].
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Options narrows a single search call.
type Options struct {
	IncludeDomains []string
	ExcludeDomains []string
	MaxResults     int
	Depth          string
}

// Provider runs web searches. A nil Provider means search is unconfigured.
type Provider interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

// FilterByScore keeps results whose relevance score is at least min.
func FilterByScore(results []Result, min float64) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Score >= min {
			out = append(out, r)
		}
	}
	return out
}

// dedupeByURL keeps the first result per URL, ignoring case and trailing slashes.
func dedupeByURL(results []Result) []Result {
	seen := make(map[string]bool, len(results))
	out := make([]Result, 0, len(results))
	for _, r := range results {
		key := strings.TrimRight(strings.ToLower(strings.TrimSpace(r.URL)), "/")
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
