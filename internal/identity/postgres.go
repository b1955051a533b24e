package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const identityColumns = `id, email, password_hash, display_name, preferred_language, preferred_theme, created_at, updated_at`

// PostgresStore implements Store on the identities table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Insert creates a new identity row with default preferences.
func (s *PostgresStore) Insert(ctx context.Context, email, passwordHash, displayName string) (*Identity, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO identities (email, password_hash, display_name, preferred_language, preferred_theme)
		VALUES ($1, $2, $3, 'en', 'light')
		RETURNING `+identityColumns,
		NormalizeEmail(email), passwordHash, displayName)

	ident, err := scanIdentity(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return ident, nil
}

// FindByEmail looks up an identity by normalized email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE email = $1`,
		NormalizeEmail(email))

	ident, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find identity by email: %w", err)
	}
	return ident, nil
}

// FindByID looks up an identity by id.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)

	ident, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find identity by id: %w", err)
	}
	return ident, nil
}

// UpdatePreferences applies the set fields of the partial update in a single
// statement; nil fields keep their current value via COALESCE.
func (s *PostgresStore) UpdatePreferences(ctx context.Context, id uuid.UUID, update PreferencesUpdate) (*Identity, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE identities
		SET display_name       = COALESCE($2, display_name),
		    preferred_language = COALESCE($3, preferred_language),
		    preferred_theme    = COALESCE($4, preferred_theme),
		    updated_at         = now()
		WHERE id = $1
		RETURNING `+identityColumns,
		id, update.DisplayName, update.PreferredLanguage, update.PreferredTheme)

	ident, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update identity preferences: %w", err)
	}
	return ident, nil
}

func scanIdentity(row pgx.Row) (*Identity, error) {
	var ident Identity
	err := row.Scan(
		&ident.ID,
		&ident.Email,
		&ident.PasswordHash,
		&ident.DisplayName,
		&ident.PreferredLanguage,
		&ident.PreferredTheme,
		&ident.CreatedAt,
		&ident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ident, nil
}
