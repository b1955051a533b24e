package reframe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reframeColumns = `id, identity_id, journal_entry_id, original_thought, stoic_reframe, optimist_reframe, realist_reframe, created_at`

// PostgresStore implements Store on the stress_reframes table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, identityID uuid.UUID, journalEntryID *uuid.UUID, thought string, result Result) (*Reframe, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO stress_reframes (identity_id, journal_entry_id, original_thought, stoic_reframe, optimist_reframe, realist_reframe)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+reframeColumns,
		identityID, journalEntryID, strings.TrimSpace(thought), result.Stoic, result.Optimist, result.Realist)

	reframe, err := scanReframe(row)
	if err != nil {
		return nil, fmt.Errorf("insert reframe: %w", err)
	}
	return reframe, nil
}

func (s *PostgresStore) List(ctx context.Context, identityID uuid.UUID, limit int) ([]*Reframe, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+reframeColumns+`
		FROM stress_reframes
		WHERE identity_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, identityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reframes: %w", err)
	}
	defer rows.Close()

	reframes := make([]*Reframe, 0)
	for rows.Next() {
		reframe, err := scanReframe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reframe: %w", err)
		}
		reframes = append(reframes, reframe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reframes: %w", err)
	}
	return reframes, nil
}

func (s *PostgresStore) FindByJournalEntry(ctx context.Context, identityID, journalEntryID uuid.UUID) (*Reframe, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+reframeColumns+`
		FROM stress_reframes
		WHERE journal_entry_id = $1 AND identity_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, journalEntryID, identityID)

	reframe, err := scanReframe(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find reframe by journal entry: %w", err)
	}
	return reframe, nil
}

func scanReframe(row pgx.Row) (*Reframe, error) {
	var reframe Reframe
	err := row.Scan(
		&reframe.ID,
		&reframe.IdentityID,
		&reframe.JournalEntryID,
		&reframe.OriginalThought,
		&reframe.Stoic,
		&reframe.Optimist,
		&reframe.Realist,
		&reframe.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reframe, nil
}
