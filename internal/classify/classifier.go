// Package classify labels raw company strings as company, enclosed or skip
// through a four-stage cascade: deterministic rules, grounded search, a batch
// text model, and a fail-open default.
package classify

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/search"
)

// FailOpenReason is the reason recorded by the stage 3 default.
const FailOpenReason = "fail-open default"

// ProgressFunc is called as items finish a stage. total is the number of
// items that stage received.
type ProgressFunc func(current, total int)

// Results maps normalized company name to its classification.
type Results map[string]model.ClassificationResult

// Stats summarizes a Results set.
type Stats struct {
	Total         int                              `json:"total"`
	ByStage       [4]int                           `json:"byStage"`
	ByType        map[model.ClassificationType]int `json:"byType"`
	LowConfidence int                              `json:"lowConfidence"`
}

// Stats counts results per stage and per type.
func (r Results) Stats() Stats {
	s := Stats{Total: len(r), ByType: make(map[model.ClassificationType]int)}
	for _, res := range r {
		if st := res.Stage(); st >= 0 && st < len(s.ByStage) {
			s.ByStage[st]++
		}
		s.ByType[res.Type]++
		if res.LowConfidence {
			s.LowConfidence++
		}
	}
	return s
}

// Classifier runs the cascade. It keeps no per-call state, so one Classifier
// may serve concurrent Classify calls.
type Classifier struct {
	resolver *Resolver
	batcher  *BatchClassifier
	opts     Options
}

// New builds a Classifier. A nil provider skips stage 1 and a nil gen skips
// stage 2; the fail-open default still covers every name.
func New(provider search.Provider, strategy search.Strategy, gen llm.Generator, opts Options) *Classifier {
	opts = opts.withDefaults()
	c := &Classifier{opts: opts}
	if provider != nil {
		c.resolver = NewResolver(provider, strategy, opts)
	}
	if gen != nil {
		c.batcher = NewBatchClassifier(gen, opts)
	}
	return c
}

// accumulator is the working set of one Classify call.
type accumulator struct {
	order   []string
	inputs  map[string]model.ClassificationInput
	results Results
}

func newAccumulator(inputs []model.ClassificationInput) *accumulator {
	acc := &accumulator{
		inputs:  make(map[string]model.ClassificationInput, len(inputs)),
		results: make(Results, len(inputs)),
	}
	for _, in := range inputs {
		key := model.NormalizeKey(in.CompanyName)
		if _, seen := acc.inputs[key]; seen {
			continue
		}
		acc.inputs[key] = in
		acc.order = append(acc.order, key)
	}
	return acc
}

func (a *accumulator) resolve(key string, r model.ClassificationResult) {
	if _, done := a.results[key]; done {
		return
	}
	a.results[key] = r
}

func (a *accumulator) pending() []string {
	var out []string
	for _, key := range a.order {
		if _, done := a.results[key]; !done {
			out = append(out, key)
		}
	}
	return out
}

func report(progress ProgressFunc, current, total int) {
	if progress != nil {
		progress(current, total)
	}
}

func logStage(stage, received int, acc *accumulator) {
	remaining := len(acc.pending())
	zap.L().Info("classify: stage complete",
		zap.Int("stage", stage),
		zap.Int("received", received),
		zap.Int("resolved", received-remaining),
		zap.Int("remaining", remaining),
	)
}

// Classify returns exactly one result per unique normalized company name in
// inputs. The first input per name is the representative. Stage failures
// never surface as errors; unresolved names get the fail-open default.
func (c *Classifier) Classify(ctx context.Context, inputs []model.ClassificationInput, progress ProgressFunc) Results {
	acc := newAccumulator(inputs)

	c.runDeterministic(acc, progress)
	if c.resolver != nil {
		c.runResolver(ctx, acc, progress)
	}
	if c.batcher != nil {
		c.runBatches(ctx, acc, progress)
	}
	c.runFailOpen(acc)

	stats := acc.results.Stats()
	zap.L().Info("classify: complete",
		zap.Int("unique", stats.Total),
		zap.Int("inputs", len(inputs)),
		zap.Ints("by_stage", stats.ByStage[:]),
		zap.Int("company", stats.ByType[model.ClassificationCompany]),
		zap.Int("enclosed", stats.ByType[model.ClassificationEnclosed]),
		zap.Int("skip", stats.ByType[model.ClassificationSkip]),
		zap.Int("low_confidence", stats.LowConfidence),
	)
	return acc.results
}

func (c *Classifier) runDeterministic(acc *accumulator, progress ProgressFunc) {
	keys := acc.pending()
	for i, key := range keys {
		if r, ok := Deterministic(acc.inputs[key]); ok {
			acc.resolve(key, r)
		}
		report(progress, i+1, len(keys))
	}
	logStage(0, len(keys), acc)
}

func (c *Classifier) runResolver(ctx context.Context, acc *accumulator, progress ProgressFunc) {
	keys := acc.pending()
	for i, key := range keys {
		if err := c.opts.SearchPacer.Wait(ctx); err != nil {
			zap.L().Warn("classify: search stage interrupted", zap.Error(err))
			break
		}
		if r, ok := c.resolver.Resolve(ctx, acc.inputs[key]); ok {
			acc.resolve(key, r)
		}
		report(progress, i+1, len(keys))
	}
	logStage(1, len(keys), acc)
}

func (c *Classifier) runBatches(ctx context.Context, acc *accumulator, progress ProgressFunc) {
	keys := acc.pending()
	size := c.opts.BatchSize
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		batch := keys[start:end]

		if err := c.opts.BatchPacer.Wait(ctx); err != nil {
			zap.L().Warn("classify: batch stage interrupted", zap.Error(err))
			break
		}

		items := make([]model.ClassificationInput, len(batch))
		for i, key := range batch {
			items[i] = acc.inputs[key]
		}
		answers := c.batcher.ClassifyBatch(ctx, items)
		for i, key := range batch {
			if r, ok := answers[i]; ok {
				acc.resolve(key, r)
			}
			report(progress, start+i+1, len(keys))
		}
	}
	logStage(2, len(keys), acc)
}

func (c *Classifier) runFailOpen(acc *accumulator) {
	keys := acc.pending()
	for _, key := range keys {
		acc.resolve(key, FailOpenResult())
	}
	logStage(3, len(keys), acc)
}

// FailOpenResult is the stage 3 default: a low-confidence company.
func FailOpenResult() model.ClassificationResult {
	return model.ClassificationResult{
		Type:          model.ClassificationCompany,
		Reason:        FailOpenReason,
		Provenance:    model.FailOpen{},
		LowConfidence: true,
	}
}
