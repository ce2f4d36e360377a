// Package enrich fills in employee count, about text, industry and
// specialties for a classified company, grounded in web search when
// available and falling back to the model's own knowledge.
package enrich

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/search"
)

// Options configures an Engine.
type Options struct {
	// MaxContextChars bounds the assembled search context.
	MaxContextChars int
	// MinContextChars is the shortest context worth sending for extraction.
	MinContextChars int
	MinResultScore  float64
	MaxOutputTokens int
	// StaleAfter is the age at which a stored enrichment should be redone.
	StaleAfter time.Duration
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MaxContextChars: 4000,
		MinContextChars: 200,
		MinResultScore:  0.5,
		MaxOutputTokens: 1024,
		StaleAfter:      DefaultStaleAfter,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxContextChars <= 0 {
		o.MaxContextChars = d.MaxContextChars
	}
	if o.MinContextChars < 0 {
		o.MinContextChars = 0
	}
	if o.MinResultScore < 0 {
		o.MinResultScore = 0
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = d.MaxOutputTokens
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = d.StaleAfter
	}
	return o
}

// Engine enriches one company per call and keeps no state between calls.
type Engine struct {
	provider search.Provider
	strategy search.Strategy
	gen      llm.Generator
	opts     Options
}

// New builds an Engine. A nil provider disables the grounded path; a nil
// gen disables enrichment entirely.
func New(provider search.Provider, strategy search.Strategy, gen llm.Generator, opts Options) *Engine {
	return &Engine{provider: provider, strategy: strategy, gen: gen, opts: opts.withDefaults()}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.opts }

// Enrich returns structured data for companyName, or nil when neither the
// grounded nor the memory path produced anything. A known profile URL
// selects the dual search plan; industryHint seasons the single plan.
func (e *Engine) Enrich(ctx context.Context, companyName, knownProfileURL, industryHint string) *model.EnrichmentResult {
	name := strings.TrimSpace(companyName)
	if name == "" || e.gen == nil {
		return nil
	}
	log := zap.L().With(zap.String("company", name))

	if e.provider != nil {
		if data, ok := e.grounded(ctx, name, strings.TrimSpace(knownProfileURL), industryHint); ok {
			log.Debug("enrich: grounded extraction succeeded")
			return &model.EnrichmentResult{Data: data, Source: model.SourceGrounded}
		}
	}

	if data, ok := e.memory(ctx, name, industryHint); ok {
		log.Debug("enrich: memory extraction succeeded")
		return &model.EnrichmentResult{Data: data, Source: model.SourceMemory}
	}

	log.Info("enrich: no data")
	return nil
}

func (e *Engine) grounded(ctx context.Context, name, profileURL, industryHint string) (model.CompanyEnrichmentData, bool) {
	results, err := e.strategy.Gather(ctx, e.provider, name, industryHint, profileURL != "")
	if err != nil {
		zap.L().Warn("enrich: search failed", zap.String("company", name), zap.Error(err))
		return model.CompanyEnrichmentData{}, false
	}

	snippets := BuildContext(search.FilterByScore(results, e.opts.MinResultScore), e.opts.MaxContextChars)
	if runeLen(snippets) < e.opts.MinContextChars {
		zap.L().Debug("enrich: search context too short",
			zap.String("company", name),
			zap.Int("chars", runeLen(snippets)),
			zap.Int("min", e.opts.MinContextChars),
		)
		return model.CompanyEnrichmentData{}, false
	}

	return e.extract(ctx, name, llm.Request{
		System:          groundedSystemPrompt,
		Prompt:          groundedPrompt(name, profileURL, snippets),
		MaxOutputTokens: e.opts.MaxOutputTokens,
		Phase:           "enrich_grounded",
	})
}

func (e *Engine) memory(ctx context.Context, name, industryHint string) (model.CompanyEnrichmentData, bool) {
	return e.extract(ctx, name, llm.Request{
		System:          memorySystemPrompt,
		Prompt:          memoryPrompt(name, industryHint),
		MaxOutputTokens: e.opts.MaxOutputTokens,
		Phase:           "enrich_memory",
	})
}

func (e *Engine) extract(ctx context.Context, name string, req llm.Request) (model.CompanyEnrichmentData, bool) {
	text, err := e.gen.Generate(ctx, req)
	if err != nil {
		zap.L().Warn("enrich: model call failed",
			zap.String("company", name),
			zap.String("phase", req.Phase),
			zap.Error(err),
		)
		return model.CompanyEnrichmentData{}, false
	}
	data, ok := ParseEnrichment(text)
	if !ok {
		zap.L().Debug("enrich: no usable fields", zap.String("company", name), zap.String("phase", req.Phase))
	}
	return data, ok
}
