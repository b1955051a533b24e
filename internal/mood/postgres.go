package mood

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `id, identity_id, mood, stress_level, note, activities, created_at, updated_at`

// PostgresStore implements Store on the mood_entries table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, identityID uuid.UUID, mood string, stressLevel int, note *string, activities []string) (*Entry, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO mood_entries (identity_id, mood, stress_level, note, activities)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+entryColumns,
		identityID, mood, stressLevel, note, activities)

	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("insert mood entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) List(ctx context.Context, identityID uuid.UUID) ([]*Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM mood_entries
		WHERE identity_id = $1
		ORDER BY created_at DESC
	`, identityID)
	if err != nil {
		return nil, fmt.Errorf("list mood entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *PostgresStore) Get(ctx context.Context, identityID, id uuid.UUID) (*Entry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM mood_entries
		WHERE id = $1 AND identity_id = $2
	`, id, identityID)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mood entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Update(ctx context.Context, identityID, id uuid.UUID, update Update) (*Entry, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE mood_entries
		SET mood         = COALESCE($3, mood),
		    stress_level = COALESCE($4, stress_level),
		    note         = COALESCE($5, note),
		    activities   = COALESCE($6, activities),
		    updated_at   = now()
		WHERE id = $1 AND identity_id = $2
		RETURNING `+entryColumns,
		id, identityID, update.Mood, update.StressLevel, update.Note, update.Activities)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update mood entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Delete(ctx context.Context, identityID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM mood_entries WHERE id = $1 AND identity_id = $2
	`, id, identityID)
	if err != nil {
		return fmt.Errorf("delete mood entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, identityID uuid.UUID, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 7
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM mood_entries
		WHERE identity_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, identityID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent mood entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *PostgresStore) Stats(ctx context.Context, identityID uuid.UUID) (*Stats, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(AVG(stress_level), 0),
			COALESCE(mode() WITHIN GROUP (ORDER BY mood), ''),
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('week', now()))
		FROM mood_entries
		WHERE identity_id = $1
	`, identityID)

	var stats Stats
	if err := row.Scan(&stats.AverageStress, &stats.MostCommonMood, &stats.TotalEntries, &stats.EntriesThisWeek); err != nil {
		return nil, fmt.Errorf("mood stats: %w", err)
	}
	return &stats, nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var entry Entry
	err := row.Scan(
		&entry.ID,
		&entry.IdentityID,
		&entry.Mood,
		&entry.StressLevel,
		&entry.Note,
		&entry.Activities,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func collectEntries(rows pgx.Rows) ([]*Entry, error) {
	entries := make([]*Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood entries: %w", err)
	}
	return entries, nil
}
