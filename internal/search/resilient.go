package search

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

type resilientProvider struct {
	next    Provider
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// WithResilience wraps p with retry on transient errors and an optional
// circuit breaker.
func WithResilience(p Provider, breaker *resilience.CircuitBreaker, retry resilience.RetryConfig) Provider {
	if p == nil {
		return nil
	}
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("search", "search")
	}
	return &resilientProvider{next: p, breaker: breaker, retry: retry}
}

func (r *resilientProvider) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	return resilience.DoVal(ctx, r.retry, func(ctx context.Context) ([]Result, error) {
		if r.breaker == nil {
			return r.next.Search(ctx, query, opts)
		}
		return resilience.ExecuteVal(ctx, r.breaker, func(ctx context.Context) ([]Result, error) {
			return r.next.Search(ctx, query, opts)
		})
	})
}
