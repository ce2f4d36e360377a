// Package store persists classification, enrichment and ICP results per
// company. The pipeline itself is storage-free; commands use a Store to keep
// results between stages.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// CompanyRecord is one company row keyed by normalized name.
type CompanyRecord struct {
	ID             string                      `json:"id"`
	Key            string                      `json:"key"`
	Name           string                      `json:"name"`
	Classification *model.ClassificationResult `json:"classification,omitempty"`
	Enrichment     *model.EnrichmentResult     `json:"enrichment,omitempty"`
	EnrichedAt     *time.Time                  `json:"enrichedAt,omitempty"`
	Score          model.IcpScore              `json:"score,omitempty"`
	Breakdown      *model.ScoreBreakdown       `json:"breakdown,omitempty"`
	ScoredAt       *time.Time                  `json:"scoredAt,omitempty"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

// EnrichmentUpdatedAt returns when enrichment last ran, or the zero time.
func (r CompanyRecord) EnrichmentUpdatedAt() time.Time {
	if r.EnrichedAt == nil {
		return time.Time{}
	}
	return *r.EnrichedAt
}

// Classified pairs a classification with the company name it was made for.
type Classified struct {
	Name   string
	Result model.ClassificationResult
}

// CompanyFilter narrows ListCompanies.
type CompanyFilter struct {
	Type     model.ClassificationType `json:"type,omitempty"`
	Score    model.IcpScore           `json:"score,omitempty"`
	Enriched *bool                    `json:"enriched,omitempty"`
	Limit    int                      `json:"limit,omitempty"`
	Offset   int                      `json:"offset,omitempty"`
}

// Store defines the persistence interface for pipeline results.
type Store interface {
	// SaveClassifications upserts one row per classified name.
	SaveClassifications(ctx context.Context, items []Classified) (int, error)
	// SaveEnrichment records an enrichment attempt for name. A nil result
	// clears earlier data but still stamps enriched_at.
	SaveEnrichment(ctx context.Context, name string, result *model.EnrichmentResult) error
	SaveScore(ctx context.Context, name string, breakdown model.ScoreBreakdown) error

	GetCompany(ctx context.Context, key string) (*CompanyRecord, error)
	ListCompanies(ctx context.Context, filter CompanyFilter) ([]CompanyRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 1000

// companyColumns is the column order every company SELECT returns.
const companyColumns = `id, key, name, classification, enrichment, enriched_at, breakdown, scored_at, created_at, updated_at`

// decodeColumns fills the JSON-backed fields of rec.
func decodeColumns(rec *CompanyRecord, classification, enrichment, breakdown []byte) error {
	var err error
	if rec.Classification, err = decodeJSON[model.ClassificationResult](classification, "classification"); err != nil {
		return err
	}
	if rec.Enrichment, err = decodeJSON[model.EnrichmentResult](enrichment, "enrichment"); err != nil {
		return err
	}
	if rec.Breakdown, err = decodeJSON[model.ScoreBreakdown](breakdown, "breakdown"); err != nil {
		return err
	}
	if rec.Breakdown != nil {
		rec.Score = rec.Breakdown.Score
	}
	return nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

// decodeJSON unmarshals an optional JSON column into a new T.
func decodeJSON[T any](raw []byte, what string) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal %s", what)
	}
	return v, nil
}

// encodeJSON marshals v for a JSON column; nil pointers become SQL NULL.
func encodeJSON(v any, what string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrapf(err, "store: marshal %s", what)
	}
	if string(raw) == "null" {
		return nil, nil
	}
	return raw, nil
}

// New opens the Store for driver ("sqlite" or "postgres") and applies the
// schema.
func New(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "sqlite":
		s, err = NewSQLite(dsn)
	case "postgres":
		s, err = NewPostgres(ctx, dsn, poolCfg)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}
