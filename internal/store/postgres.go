package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/db"
	"github.com/sells-group/prospect-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const getCompanySQL = `SELECT ` + companyColumns + ` FROM companies WHERE key = $1`

const saveEnrichmentSQL = `INSERT INTO companies (id, key, name, enrichment, enriched_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5, $5)
	ON CONFLICT (key) DO UPDATE SET
		enrichment = EXCLUDED.enrichment,
		enriched_at = EXCLUDED.enriched_at,
		updated_at = EXCLUDED.updated_at`

const saveScoreSQL = `INSERT INTO companies (id, key, name, icp_score, breakdown, scored_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6, $6)
	ON CONFLICT (key) DO UPDATE SET
		icp_score = EXCLUDED.icp_score,
		breakdown = EXCLUDED.breakdown,
		scored_at = EXCLUDED.scored_at,
		updated_at = EXCLUDED.updated_at`

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"get_company":     getCompanySQL,
	"save_enrichment": saveEnrichmentSQL,
	"save_score":      saveScoreSQL,
}

// classificationUpsert stages classification rows through COPY.
var classificationUpsert = db.UpsertConfig{
	Table:        "companies",
	Columns:      []string{"id", "key", "name", "classification_type", "classification", "created_at", "updated_at"},
	ConflictKeys: []string{"key"},
	UpdateCols:   []string{"name", "classification_type", "classification", "updated_at"},
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	key                 TEXT NOT NULL UNIQUE,
	name                TEXT NOT NULL,
	classification_type TEXT,
	classification      JSONB,
	enrichment          JSONB,
	enriched_at         TIMESTAMPTZ,
	icp_score           TEXT,
	breakdown           JSONB,
	scored_at           TIMESTAMPTZ,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_type ON companies(classification_type);
CREATE INDEX IF NOT EXISTS idx_companies_score ON companies(icp_score);
CREATE INDEX IF NOT EXISTS idx_companies_enriched_at ON companies(enriched_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveClassifications(ctx context.Context, items []Classified) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		raw, err := encodeJSON(item.Result, "classification")
		if err != nil {
			return 0, err
		}
		rows = append(rows, []any{
			uuid.New().String(), model.NormalizeKey(item.Name), strings.TrimSpace(item.Name),
			string(item.Result.Type), raw, now, now,
		})
	}
	n, err := db.BulkUpsert(ctx, s.pool, classificationUpsert, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save classifications")
	}
	return int(n), nil
}

func (s *PostgresStore) SaveEnrichment(ctx context.Context, name string, result *model.EnrichmentResult) error {
	raw, err := encodeJSON(result, "enrichment")
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, saveEnrichmentSQL,
		uuid.New().String(), model.NormalizeKey(name), strings.TrimSpace(name), raw, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save enrichment %q", name)
}

func (s *PostgresStore) SaveScore(ctx context.Context, name string, breakdown model.ScoreBreakdown) error {
	raw, err := encodeJSON(breakdown, "breakdown")
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, saveScoreSQL,
		uuid.New().String(), model.NormalizeKey(name), strings.TrimSpace(name),
		string(breakdown.Score), raw, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save score %q", name)
}

func (s *PostgresStore) GetCompany(ctx context.Context, key string) (*CompanyRecord, error) {
	rec, err := scanPgCompany(s.pool.QueryRow(ctx, getCompanySQL, model.NormalizeKey(key)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %q", key)
	}
	return rec, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]CompanyRecord, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Type != "" {
		query += fmt.Sprintf(` AND classification_type = $%d`, argIdx)
		args = append(args, string(filter.Type))
		argIdx++
	}
	if filter.Score != "" {
		query += fmt.Sprintf(` AND icp_score = $%d`, argIdx)
		args = append(args, string(filter.Score))
		argIdx++
	}
	if filter.Enriched != nil {
		if *filter.Enriched {
			query += ` AND enriched_at IS NOT NULL`
		} else {
			query += ` AND enriched_at IS NULL`
		}
	}
	query += ` ORDER BY key`

	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var out []CompanyRecord
	for rows.Next() {
		rec, err := scanPgCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func scanPgCompany(row scannable) (*CompanyRecord, error) {
	var rec CompanyRecord
	var classification, enrichment, breakdown []byte

	err := row.Scan(&rec.ID, &rec.Key, &rec.Name, &classification, &enrichment,
		&rec.EnrichedAt, &breakdown, &rec.ScoredAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeColumns(&rec, classification, enrichment, breakdown); err != nil {
		return nil, err
	}
	return &rec, nil
}
