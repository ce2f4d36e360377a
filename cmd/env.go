package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/classify"
	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/internal/icp"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/search"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/tavily"
)

// pipelineEnv holds the store and the three pipeline components used by
// every command.
type pipelineEnv struct {
	Store       store.Store // nil for serve
	Classifier  *classify.Classifier
	Enricher    *enrich.Engine
	Scorer      *icp.Scorer
	EnrichPacer resilience.Pacer
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates cfg for mode, builds the provider clients and the
// pipeline components, and opens the store when withStore is set. Callers
// should defer env.Close().
func initPipeline(ctx context.Context, mode string, withStore bool) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	retry := resilience.FromRetryConfig(cfg.Resilience.MaxAttempts, cfg.Resilience.InitialBackoffMs, cfg.Resilience.MaxBackoffMs)
	breakerCfg := resilience.FromCircuitConfig(cfg.Resilience.FailureThreshold, cfg.Resilience.ResetTimeoutSecs)

	provider := buildSearch(cfg.Search, retry, breakerCfg)
	gen, err := buildGenerator(ctx, cfg, retry, breakerCfg)
	if err != nil {
		return nil, err
	}
	strategy := search.Strategy{
		ProfileDomain: cfg.Search.ProfileDomain,
		MaxResults:    cfg.Search.MaxResults,
		Depth:         cfg.Search.Depth,
	}

	env := &pipelineEnv{
		Classifier:  classify.New(provider, strategy, gen, classifyOptions(cfg.Classify)),
		Enricher:    enrich.New(provider, strategy, gen, enrichOptions(cfg.Enrich)),
		Scorer:      icp.New(gen, icpOptions(cfg.ICP)),
		EnrichPacer: resilience.Every(time.Duration(cfg.Enrich.IntervalMs) * time.Millisecond),
	}

	if withStore {
		st, err := store.New(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		env.Store = st
	}
	return env, nil
}

// buildSearch returns the resilient search provider, or nil when no key is
// configured.
func buildSearch(sc config.SearchConfig, retry resilience.RetryConfig, breakerCfg resilience.CircuitBreakerConfig) search.Provider {
	if sc.Key == "" {
		zap.L().Warn("search key not set, grounded search disabled")
		return nil
	}
	var opts []tavily.Option
	if sc.BaseURL != "" {
		opts = append(opts, tavily.WithBaseURL(sc.BaseURL))
	}
	if sc.TimeoutSecs > 0 {
		opts = append(opts, tavily.WithHTTPClient(&http.Client{Timeout: time.Duration(sc.TimeoutSecs) * time.Second}))
	}
	client := tavily.NewClient(sc.Key, opts...)
	breaker := resilience.NewCircuitBreaker("search", breakerCfg)
	return search.WithResilience(search.NewTavily(client), breaker, retry)
}

// buildGenerator returns the resilient text generator for the configured
// provider, or nil when its key is missing.
func buildGenerator(ctx context.Context, c *config.Config, retry resilience.RetryConfig, breakerCfg resilience.CircuitBreakerConfig) (llm.Generator, error) {
	name, pc := c.LLMProvider()
	gen, err := llm.New(ctx, llm.ProviderConfig{
		Provider: name,
		APIKey:   pc.Key,
		Model:    pc.Model,
		BaseURL:  pc.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	if gen == nil {
		zap.L().Warn("text model not configured, model-backed steps disabled", zap.String("provider", name))
		return nil, nil
	}
	zap.L().Info("text model configured", zap.String("provider", name), zap.String("model", pc.Model))
	return llm.WithResilience(gen, resilience.NewCircuitBreaker("llm", breakerCfg), retry), nil
}

func classifyOptions(cc config.ClassifyConfig) classify.Options {
	return classify.Options{
		BatchSize:                cc.BatchSize,
		ModelConfidenceThreshold: cc.ModelConfidenceThreshold,
		SimilarityThreshold:      cc.SimilarityThreshold,
		MinResultScore:           cc.MinResultScore,
		DualSearch:               cc.DualSearch,
		MaxOutputTokens:          classify.DefaultOptions().MaxOutputTokens,
		SearchPacer:              resilience.Every(time.Duration(cc.SearchIntervalMs) * time.Millisecond),
		BatchPacer:               resilience.Every(time.Duration(cc.BatchIntervalMs) * time.Millisecond),
	}
}

func enrichOptions(ec config.EnrichConfig) enrich.Options {
	return enrich.Options{
		MaxContextChars: ec.MaxContextChars,
		MinContextChars: ec.MinContextChars,
		MinResultScore:  ec.MinResultScore,
		StaleAfter:      time.Duration(ec.StaleAfterDays) * 24 * time.Hour,
	}
}

func icpOptions(ic config.ICPConfig) icp.Options {
	return icp.Options{
		EmployeeWeight:  ic.EmployeeWeight,
		IndustryWeight:  ic.IndustryWeight,
		SpecialtyWeight: ic.SpecialtyWeight,
	}
}
