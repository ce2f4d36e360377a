package search

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultProfileDomain is the professional network whose company pages anchor
// resolution.
const DefaultProfileDomain = "linkedin.com"

// Strategy builds and runs the queries for one company name.
type Strategy struct {
	ProfileDomain string
	MaxResults    int
	Depth         string
}

// DefaultStrategy returns the strategy used when nothing is configured.
func DefaultStrategy() Strategy {
	return Strategy{ProfileDomain: DefaultProfileDomain, MaxResults: 5, Depth: "basic"}
}

// Query is one planned search call.
type Query struct {
	Text    string
	Options Options
}

func quoted(name string) string {
	return `"` + strings.TrimSpace(strings.ReplaceAll(name, `"`, "")) + `"`
}

func (s Strategy) withDefaults() Strategy {
	d := DefaultStrategy()
	s.ProfileDomain = strings.ToLower(strings.TrimSpace(s.ProfileDomain))
	if s.ProfileDomain == "" {
		s.ProfileDomain = d.ProfileDomain
	}
	if s.MaxResults <= 0 {
		s.MaxResults = d.MaxResults
	}
	if s.Depth == "" {
		s.Depth = d.Depth
	}
	return s
}

// Plan returns the queries for name. The dual plan pairs a search restricted
// to the profile domain with a general company search. The single plan is one
// unrestricted query with the optional industry hint appended.
func (s Strategy) Plan(name, industryHint string, dual bool) []Query {
	s = s.withDefaults()
	base := Options{MaxResults: s.MaxResults, Depth: s.Depth}

	if dual {
		profile := base
		profile.IncludeDomains = []string{s.ProfileDomain}
		return []Query{
			{Text: quoted(name), Options: profile},
			{Text: quoted(name) + " company about employees industry", Options: base},
		}
	}

	text := quoted(name) + " company"
	if hint := strings.TrimSpace(industryHint); hint != "" {
		text += " " + hint
	}
	return []Query{{Text: text, Options: base}}
}

// Gather runs the plan for name and merges the results in plan order,
// deduplicated by URL. Queries run concurrently. A failed query is tolerated
// as long as another one succeeds.
func (s Strategy) Gather(ctx context.Context, p Provider, name, industryHint string, dual bool) ([]Result, error) {
	if p == nil {
		return nil, eris.New("search: no provider configured")
	}
	queries := s.Plan(name, industryHint, dual)
	results := make([][]Result, len(queries))
	errs := make([]error, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			res, err := p.Search(ctx, q.Text, q.Options)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var merged []Result
	failed := 0
	for i := range queries {
		if errs[i] != nil {
			failed++
			zap.L().Debug("search: query failed",
				zap.String("query", queries[i].Text),
				zap.Error(errs[i]),
			)
			continue
		}
		merged = append(merged, results[i]...)
	}
	if failed == len(queries) {
		return nil, eris.Wrapf(errs[0], "search: all %d queries failed for %q", failed, name)
	}
	return dedupeByURL(merged), nil
}
