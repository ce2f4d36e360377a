package search

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/tavily"
)

// Tavily adapts a tavily.Client to Provider.
type Tavily struct {
	client tavily.Client
}

// NewTavily wraps client.
func NewTavily(client tavily.Client) *Tavily {
	return &Tavily{client: client}
}

// Search implements Provider.
func (t *Tavily) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	resp, err := t.client.Search(ctx, tavily.SearchRequest{
		Query:          query,
		SearchDepth:    opts.Depth,
		MaxResults:     opts.MaxResults,
		IncludeDomains: opts.IncludeDomains,
		ExcludeDomains: opts.ExcludeDomains,
	})
	if err != nil {
		var apiErr *tavily.APIError
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return nil, resilience.NewTransientError(eris.Wrap(err, "search: tavily"), apiErr.StatusCode)
		}
		return nil, eris.Wrap(err, "search: tavily")
	}

	out := make([]Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, Result{Title: r.Title, URL: r.URL, Content: r.Content, Score: r.Score})
	}
	return out, nil
}
