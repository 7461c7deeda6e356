// Package store records the outcome of every processed revision.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Revision statuses
const (
	StatusCompleted = "completed"
	StatusEmpty     = "empty"
	StatusFailed    = "failed"
)

// Store provides database operations
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new store
func NewStore(db *DB) *Store {
	return &Store{pool: db.Pool()}
}

// NewStoreFromPool creates a store directly from a connection pool
func NewStoreFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Revision represents one processed Maven revision
type Revision struct {
	ID            uuid.UUID `json:"id"`
	GroupID       string    `json:"group_id"`
	ArtifactID    string    `json:"artifact_id"`
	Version       string    `json:"version"`
	Status        string    `json:"status"`
	FailureKind   *string   `json:"failure_kind,omitempty"`
	InternalCalls int       `json:"internal_calls"`
	ExternalCalls int       `json:"external_calls"`
	OutputPath    *string   `json:"output_path,omitempty"`
	Error         *string   `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const revisionColumns = `id, group_id, artifact_id, version, status, failure_kind,
	internal_calls, external_calls, output_path, error, created_at, updated_at`

func scanRevision(row pgx.Row) (*Revision, error) {
	rev := &Revision{}
	err := row.Scan(&rev.ID, &rev.GroupID, &rev.ArtifactID, &rev.Version, &rev.Status,
		&rev.FailureKind, &rev.InternalCalls, &rev.ExternalCalls, &rev.OutputPath,
		&rev.Error, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// SaveRevision inserts or replaces the record for a coordinate
func (s *Store) SaveRevision(ctx context.Context, rev *Revision) error {
	if rev.ID == uuid.Nil {
		rev.ID = uuid.New()
	}
	now := time.Now()
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = now
	}
	rev.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO revisions (id, group_id, artifact_id, version, status, failure_kind,
			internal_calls, external_calls, output_path, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (group_id, artifact_id, version) DO UPDATE SET
			status = EXCLUDED.status,
			failure_kind = EXCLUDED.failure_kind,
			internal_calls = EXCLUDED.internal_calls,
			external_calls = EXCLUDED.external_calls,
			output_path = EXCLUDED.output_path,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`, rev.ID, rev.GroupID, rev.ArtifactID, rev.Version, rev.Status, rev.FailureKind,
		rev.InternalCalls, rev.ExternalCalls, rev.OutputPath, rev.Error, rev.CreatedAt, rev.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save revision: %w", err)
	}

	return nil
}

// GetRevision gets a revision by ID
func (s *Store) GetRevision(ctx context.Context, id uuid.UUID) (*Revision, error) {
	rev, err := scanRevision(s.pool.QueryRow(ctx, `
		SELECT `+revisionColumns+`
		FROM revisions WHERE id = $1
	`, id))

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}

	return rev, nil
}

// GetRevisionByCoordinate gets a revision by its Maven coordinate
func (s *Store) GetRevisionByCoordinate(ctx context.Context, groupID, artifactID, version string) (*Revision, error) {
	rev, err := scanRevision(s.pool.QueryRow(ctx, `
		SELECT `+revisionColumns+`
		FROM revisions WHERE group_id = $1 AND artifact_id = $2 AND version = $3
	`, groupID, artifactID, version))

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}

	return rev, nil
}

// ListRevisions lists recently processed revisions
func (s *Store) ListRevisions(ctx context.Context, limit, offset int) ([]Revision, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+revisionColumns+`
		FROM revisions
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer rows.Close()

	revs := make([]Revision, 0)
	for rows.Next() {
		var rev Revision
		if err := rows.Scan(&rev.ID, &rev.GroupID, &rev.ArtifactID, &rev.Version, &rev.Status,
			&rev.FailureKind, &rev.InternalCalls, &rev.ExternalCalls, &rev.OutputPath,
			&rev.Error, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revs = append(revs, rev)
	}

	return revs, nil
}

// Stats summarizes processing outcomes
type Stats struct {
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Empty     int            `json:"empty"`
	Failed    int            `json:"failed"`
	Failures  map[string]int `json:"failures"`
}

// GetStats aggregates outcome counts across all revisions
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Failures: make(map[string]int)}

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'empty'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM revisions
	`).Scan(&stats.Total, &stats.Completed, &stats.Empty, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("failed to count revisions: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT failure_kind, COUNT(*)
		FROM revisions
		WHERE status = 'failed' AND failure_kind IS NOT NULL
		GROUP BY failure_kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count failures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan failure count: %w", err)
		}
		stats.Failures[kind] = count
	}

	return stats, nil
}

// Migrate creates the revisions table if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS revisions (
		id UUID PRIMARY KEY,
		group_id TEXT NOT NULL,
		artifact_id TEXT NOT NULL,
		version TEXT NOT NULL,
		status TEXT NOT NULL,
		failure_kind TEXT,
		internal_calls INTEGER NOT NULL DEFAULT 0,
		external_calls INTEGER NOT NULL DEFAULT 0,
		output_path TEXT,
		error TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE (group_id, artifact_id, version)
	);

	CREATE INDEX IF NOT EXISTS idx_revisions_status ON revisions(status);
	CREATE INDEX IF NOT EXISTS idx_revisions_updated_at ON revisions(updated_at);
	`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate revisions schema: %w", err)
	}
	return nil
}
