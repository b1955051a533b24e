// Package session tracks issued refresh tokens and their revocation state.
// Records are append-only: rotation and logout mark a record revoked, nothing
// ever deletes or un-revokes one, so the store doubles as an audit trail.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by Find when no record exists for the token.
	// A revoked or expired record is still found; callers inspect the record.
	ErrNotFound = errors.New("session record not found")
	// ErrUnavailable wraps infrastructure failures from the backing store.
	ErrUnavailable = errors.New("session store unavailable")
)

// Record is the durable row tracking one refresh token.
type Record struct {
	TokenHash  string
	IdentityID uuid.UUID
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Revoked    bool
	RevokedAt  *time.Time
}

// Expired reports whether the record's store-level expiry has passed at the
// given instant. Expiry is exclusive: a record expiring exactly now is
// already expired.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store persists refresh-token records. Implementations must guarantee that
// a revoked record can never transition back to active, even under
// concurrent Revoke calls.
type Store interface {
	// Put inserts a new active record for the token.
	Put(ctx context.Context, identityID uuid.UUID, token string, expiresAt time.Time) error

	// Find returns the record for the token regardless of revocation or
	// expiry state, or ErrNotFound when no record exists at all.
	Find(ctx context.Context, token string) (*Record, error)

	// Revoke marks the record revoked. Revoking an absent or already-revoked
	// token is not an error; the first revocation timestamp is preserved.
	Revoke(ctx context.Context, token string) error
}

// HashToken derives the storage key for a token string. Only the SHA-256
// digest is persisted, so a leaked store does not leak usable tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
