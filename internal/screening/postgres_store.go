package screening

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists screening records in PostgreSQL. The full record is
// stored as JSONB; level, score, and SAR flag are extracted into columns so
// case queues can filter without unpacking documents.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed screening store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the screenings table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS screenings (
			id               VARCHAR(36) PRIMARY KEY,
			kind             VARCHAR(16) NOT NULL CHECK (kind IN ('subject', 'transactions')),
			composite_score  INTEGER NOT NULL CHECK (composite_score >= 0 AND composite_score <= 100),
			level            VARCHAR(10) NOT NULL CHECK (level IN ('LOW', 'MEDIUM', 'HIGH', 'CRITICAL')),
			sar_required     BOOLEAN NOT NULL DEFAULT FALSE,
			record           JSONB NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_screenings_created
			ON screenings (created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_screenings_level
			ON screenings (level, created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_screenings_sar
			ON screenings (created_at DESC) WHERE sar_required = TRUE;
	`)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, rec *Screening) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal screening: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO screenings (id, kind, composite_score, level, sar_required, record, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		rec.ID,
		string(rec.Kind),
		rec.Assessment.CompositeScore,
		string(rec.Assessment.Level),
		rec.Assessment.SARRequired,
		doc,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record screening: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Screening, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM screenings WHERE id = $1
	`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get screening: %w", err)
	}

	var rec Screening
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal screening: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*Screening, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT record FROM screenings WHERE 1=1`
	args := []interface{}{}
	n := 0
	if filter.Level != "" {
		n++
		query += fmt.Sprintf(" AND level = $%d", n)
		args = append(args, filter.Level)
	}
	if filter.SARRequired != nil {
		n++
		query += fmt.Sprintf(" AND sar_required = $%d", n)
		args = append(args, *filter.SARRequired)
	}
	n++
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", n)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list screenings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Screening
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			continue
		}
		var rec Screening
		if err := json.Unmarshal(doc, &rec); err != nil {
			continue
		}
		result = append(result, &rec)
	}
	return result, rows.Err()
}
