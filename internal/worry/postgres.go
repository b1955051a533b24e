package worry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const windowColumns = `id, identity_id, title, description, scheduled_date, start_time, end_time, is_completed, created_at, updated_at`

// PostgresStore implements Store on the worry_windows table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, identityID uuid.UUID, title string, description *string, scheduledDate time.Time, startTime, endTime string) (*Window, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO worry_windows (identity_id, title, description, scheduled_date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+windowColumns,
		identityID, title, description, scheduledDate, startTime, endTime)

	window, err := scanWindow(row)
	if err != nil {
		return nil, fmt.Errorf("insert worry window: %w", err)
	}
	return window, nil
}

func (s *PostgresStore) List(ctx context.Context, identityID uuid.UUID) ([]*Window, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+windowColumns+`
		FROM worry_windows
		WHERE identity_id = $1
		ORDER BY scheduled_date DESC, start_time
	`, identityID)
	if err != nil {
		return nil, fmt.Errorf("list worry windows: %w", err)
	}
	defer rows.Close()

	windows := make([]*Window, 0)
	for rows.Next() {
		window, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worry window: %w", err)
		}
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worry windows: %w", err)
	}
	return windows, nil
}

func (s *PostgresStore) Get(ctx context.Context, identityID, id uuid.UUID) (*Window, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+windowColumns+`
		FROM worry_windows
		WHERE id = $1 AND identity_id = $2
	`, id, identityID)

	window, err := scanWindow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get worry window: %w", err)
	}
	return window, nil
}

func (s *PostgresStore) Update(ctx context.Context, identityID, id uuid.UUID, update Update) (*Window, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE worry_windows
		SET title          = COALESCE($3, title),
		    description    = COALESCE($4, description),
		    scheduled_date = COALESCE($5, scheduled_date),
		    start_time     = COALESCE($6, start_time),
		    end_time       = COALESCE($7, end_time),
		    is_completed   = COALESCE($8, is_completed),
		    updated_at     = now()
		WHERE id = $1 AND identity_id = $2
		RETURNING `+windowColumns,
		id, identityID, update.Title, update.Description, update.ScheduledDate,
		update.StartTime, update.EndTime, update.Completed)

	window, err := scanWindow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update worry window: %w", err)
	}
	return window, nil
}

func (s *PostgresStore) Delete(ctx context.Context, identityID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM worry_windows WHERE id = $1 AND identity_id = $2
	`, id, identityID)
	if err != nil {
		return fmt.Errorf("delete worry window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWindow(row pgx.Row) (*Window, error) {
	var window Window
	err := row.Scan(
		&window.ID,
		&window.IdentityID,
		&window.Title,
		&window.Description,
		&window.ScheduledDate,
		&window.StartTime,
		&window.EndTime,
		&window.Completed,
		&window.CreatedAt,
		&window.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &window, nil
}
