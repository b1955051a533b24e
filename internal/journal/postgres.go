package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `id, identity_id, title, content, created_at, updated_at`

// PostgresStore implements Store on the journal_entries table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, identityID uuid.UUID, title, content string) (*Entry, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO journal_entries (identity_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING `+entryColumns,
		identityID, title, content)

	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) List(ctx context.Context, identityID uuid.UUID) ([]*Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE identity_id = $1
		ORDER BY created_at DESC
	`, identityID)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Get(ctx context.Context, identityID, id uuid.UUID) (*Entry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE id = $1 AND identity_id = $2
	`, id, identityID)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Update(ctx context.Context, identityID, id uuid.UUID, update Update) (*Entry, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE journal_entries
		SET title      = COALESCE($3, title),
		    content    = COALESCE($4, content),
		    updated_at = now()
		WHERE id = $1 AND identity_id = $2
		RETURNING `+entryColumns,
		id, identityID, update.Title, update.Content)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update journal entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Delete(ctx context.Context, identityID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM journal_entries WHERE id = $1 AND identity_id = $2
	`, id, identityID)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var entry Entry
	err := row.Scan(
		&entry.ID,
		&entry.IdentityID,
		&entry.Title,
		&entry.Content,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
