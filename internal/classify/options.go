package classify

import (
	"time"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

// Options holds the thresholds and pacing for one Classifier.
type Options struct {
	// BatchSize is the number of items per stage 2 prompt.
	BatchSize int
	// ModelConfidenceThreshold is the minimum confidence for a stage 2 answer.
	ModelConfidenceThreshold float64
	// SimilarityThreshold is the minimum name/title word overlap for stage 1.
	SimilarityThreshold float64
	// MinResultScore drops search results below this relevance.
	MinResultScore float64
	// DualSearch runs the profile-domain and general searches together in stage 1.
	DualSearch      bool
	MaxOutputTokens int

	// SearchPacer spaces stage 1 calls; BatchPacer spaces stage 2 batches.
	// Nil means no delay.
	SearchPacer resilience.Pacer
	BatchPacer  resilience.Pacer
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		BatchSize:                15,
		ModelConfidenceThreshold: 0.7,
		SimilarityThreshold:      0.6,
		MinResultScore:           0.5,
		DualSearch:               true,
		MaxOutputTokens:          2048,
		SearchPacer:              resilience.Every(500 * time.Millisecond),
		BatchPacer:               resilience.Every(time.Second),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.ModelConfidenceThreshold <= 0 {
		o.ModelConfidenceThreshold = d.ModelConfidenceThreshold
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = d.SimilarityThreshold
	}
	if o.MinResultScore < 0 {
		o.MinResultScore = 0
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = d.MaxOutputTokens
	}
	if o.SearchPacer == nil {
		o.SearchPacer = resilience.NoWait()
	}
	if o.BatchPacer == nil {
		o.BatchPacer = resilience.NoWait()
	}
	return o
}
