package classify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/search"
)

// Resolver is the stage 1 grounded resolver. It decides company vs person
// from web search results for one name at a time.
type Resolver struct {
	provider search.Provider
	strategy search.Strategy
	opts     Options
}

// NewResolver returns a resolver over provider. provider must not be nil.
func NewResolver(provider search.Provider, strategy search.Strategy, opts Options) *Resolver {
	return &Resolver{provider: provider, strategy: strategy, opts: opts.withDefaults()}
}

// Resolve searches for in.CompanyName. ok is false when the results do not
// support a decision; search failures are logged and reported the same way.
func (r *Resolver) Resolve(ctx context.Context, in model.ClassificationInput) (model.ClassificationResult, bool) {
	results, err := r.strategy.Gather(ctx, r.provider, in.CompanyName, "", r.opts.DualSearch)
	if err != nil {
		zap.L().Warn("classify: search failed",
			zap.String("company", in.CompanyName),
			zap.Error(err),
		)
		return model.ClassificationResult{}, false
	}
	return r.decide(in.CompanyName, search.FilterByScore(results, r.opts.MinResultScore))
}

func (r *Resolver) decide(name string, results []search.Result) (model.ClassificationResult, bool) {
	domain := r.strategy.ProfileDomain
	if domain == "" {
		domain = search.DefaultProfileDomain
	}

	var (
		companyFound bool
		bestURL      string
		personalURL  string
	)
	bestSim := -1.0
	for _, res := range results {
		switch {
		case search.IsCompanyProfileURL(res.URL, domain):
			companyFound = true
			sim := WordSimilarity(name, search.CleanTitle(res.Title))
			if sim > bestSim {
				bestSim, bestURL = sim, res.URL
			}
		case search.IsPersonalProfileURL(res.URL, domain) && personalURL == "":
			personalURL = res.URL
		}
	}

	if companyFound && bestSim >= r.opts.SimilarityThreshold {
		return model.ClassificationResult{
			Type:       model.ClassificationCompany,
			Reason:     fmt.Sprintf("company profile match (similarity %.2f)", bestSim),
			Provenance: model.SearchGrounded{URL: bestURL, Similarity: bestSim},
		}, true
	}
	if !companyFound && personalURL != "" {
		return model.ClassificationResult{
			Type:       model.ClassificationSkip,
			Reason:     "only personal profiles found",
			Provenance: model.SearchGrounded{URL: personalURL},
		}, true
	}
	return model.ClassificationResult{}, false
}
