package llm

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

type resilientGenerator struct {
	next    Generator
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// WithResilience wraps g with retry on transient errors and a circuit breaker.
// A nil breaker disables circuit breaking.
func WithResilience(g Generator, breaker *resilience.CircuitBreaker, retry resilience.RetryConfig) Generator {
	if g == nil {
		return nil
	}
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("llm", "generate")
	}
	return &resilientGenerator{next: g, breaker: breaker, retry: retry}
}

func (r *resilientGenerator) Generate(ctx context.Context, req Request) (string, error) {
	return resilience.DoVal(ctx, r.retry, func(ctx context.Context) (string, error) {
		if r.breaker == nil {
			return r.next.Generate(ctx, req)
		}
		return resilience.ExecuteVal(ctx, r.breaker, func(ctx context.Context) (string, error) {
			return r.next.Generate(ctx, req)
		})
	})
}
