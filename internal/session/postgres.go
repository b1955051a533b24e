package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a refresh_sessions table. It is the
// default backend: rows survive restarts and revocation is a one-way UPDATE
// guarded in SQL, so a revoked record can never flip back.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Put inserts a new active record for the token.
func (s *PostgresStore) Put(ctx context.Context, identityID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_sessions (token_hash, identity_id, created_at, expires_at, revoked)
		VALUES ($1, $2, now(), $3, false)
	`, HashToken(token), identityID, expiresAt)
	if err != nil {
		return fmt.Errorf("%w: insert refresh session: %v", ErrUnavailable, err)
	}
	return nil
}

// Find returns the record for the token regardless of its state.
func (s *PostgresStore) Find(ctx context.Context, token string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT token_hash, identity_id, created_at, expires_at, revoked, revoked_at
		FROM refresh_sessions
		WHERE token_hash = $1
	`, HashToken(token))

	var rec Record
	err := row.Scan(&rec.TokenHash, &rec.IdentityID, &rec.CreatedAt, &rec.ExpiresAt, &rec.Revoked, &rec.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find refresh session: %v", ErrUnavailable, err)
	}
	return &rec, nil
}

// Revoke marks the record revoked. The WHERE NOT revoked guard makes the
// call idempotent and preserves the original revocation timestamp.
func (s *PostgresStore) Revoke(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE refresh_sessions
		SET revoked = true, revoked_at = now()
		WHERE token_hash = $1 AND NOT revoked
	`, HashToken(token))
	if err != nil {
		return fmt.Errorf("%w: revoke refresh session: %v", ErrUnavailable, err)
	}
	return nil
}
