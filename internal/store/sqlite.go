package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id                  TEXT PRIMARY KEY,
	key                 TEXT NOT NULL UNIQUE,
	name                TEXT NOT NULL,
	classification_type TEXT,
	classification      TEXT,
	enrichment          TEXT,
	enriched_at         DATETIME,
	icp_score           TEXT,
	breakdown           TEXT,
	scored_at           DATETIME,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_companies_type ON companies(classification_type);
CREATE INDEX IF NOT EXISTS idx_companies_score ON companies(icp_score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveClassifications(ctx context.Context, items []Classified) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO companies (id, key, name, classification_type, classification, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			classification_type = excluded.classification_type,
			classification = excluded.classification,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare classification upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, item := range items {
		raw, err := encodeJSON(item.Result, "classification")
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), model.NormalizeKey(item.Name), strings.TrimSpace(item.Name),
			string(item.Result.Type), string(raw), now, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert classification %q", item.Name)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit classifications")
	}
	return len(items), nil
}

func (s *SQLiteStore) SaveEnrichment(ctx context.Context, name string, result *model.EnrichmentResult) error {
	raw, err := encodeJSON(result, "enrichment")
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO companies (id, key, name, enrichment, enriched_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			enrichment = excluded.enrichment,
			enriched_at = excluded.enriched_at,
			updated_at = excluded.updated_at`,
		uuid.New().String(), model.NormalizeKey(name), strings.TrimSpace(name),
		nullString(raw), now, now, now,
	)
	return eris.Wrapf(err, "sqlite: save enrichment %q", name)
}

func (s *SQLiteStore) SaveScore(ctx context.Context, name string, breakdown model.ScoreBreakdown) error {
	raw, err := encodeJSON(breakdown, "breakdown")
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO companies (id, key, name, icp_score, breakdown, scored_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			icp_score = excluded.icp_score,
			breakdown = excluded.breakdown,
			scored_at = excluded.scored_at,
			updated_at = excluded.updated_at`,
		uuid.New().String(), model.NormalizeKey(name), strings.TrimSpace(name),
		string(breakdown.Score), string(raw), now, now, now,
	)
	return eris.Wrapf(err, "sqlite: save score %q", name)
}

func (s *SQLiteStore) GetCompany(ctx context.Context, key string) (*CompanyRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE key = ?`,
		model.NormalizeKey(key),
	)
	rec, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %q", key)
	}
	return rec, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]CompanyRecord, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE 1=1`
	var args []any

	if filter.Type != "" {
		query += ` AND classification_type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Score != "" {
		query += ` AND icp_score = ?`
		args = append(args, string(filter.Score))
	}
	if filter.Enriched != nil {
		if *filter.Enriched {
			query += ` AND enriched_at IS NOT NULL`
		} else {
			query += ` AND enriched_at IS NULL`
		}
	}
	query += ` ORDER BY key LIMIT ? OFFSET ?`
	args = append(args, listLimit(filter.Limit), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var out []CompanyRecord
	for rows.Next() {
		rec, err := scanCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCompany(row scannable) (*CompanyRecord, error) {
	var rec CompanyRecord
	var classification, enrichment, breakdown sql.NullString
	var enrichedAt, scoredAt sql.NullTime

	err := row.Scan(&rec.ID, &rec.Key, &rec.Name, &classification, &enrichment,
		&enrichedAt, &breakdown, &scoredAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if enrichedAt.Valid {
		rec.EnrichedAt = &enrichedAt.Time
	}
	if scoredAt.Valid {
		rec.ScoredAt = &scoredAt.Time
	}
	if err := decodeColumns(&rec, []byte(classification.String), []byte(enrichment.String), []byte(breakdown.String)); err != nil {
		return nil, err
	}
	return &rec, nil
}

func nullString(raw []byte) sql.NullString {
	return sql.NullString{String: string(raw), Valid: raw != nil}
}
