// Package identity defines the account model and its persistence interface.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no identity matches the lookup.
	ErrNotFound = errors.New("identity not found")
	// ErrDuplicateEmail is returned by Insert when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Identity is one registered account. The identity fields (ID, Email) are
// immutable after registration; only the preference fields may change.
// PasswordHash never leaves the process.
type Identity struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	DisplayName       string    `json:"display_name"`
	PreferredLanguage string    `json:"preferred_language"`
	PreferredTheme    string    `json:"preferred_theme"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PreferencesUpdate is a structured partial update: nil fields are left
// untouched, set fields are applied by a single merge routine.
type PreferencesUpdate struct {
	DisplayName       *string
	PreferredLanguage *string
	PreferredTheme    *string
}

// Store persists identities.
type Store interface {
	// Insert creates a new identity with default preferences. Returns
	// ErrDuplicateEmail when the (normalized) email already exists.
	Insert(ctx context.Context, email, passwordHash, displayName string) (*Identity, error)

	// FindByEmail looks up an identity by normalized email.
	FindByEmail(ctx context.Context, email string) (*Identity, error)

	// FindByID looks up an identity by id.
	FindByID(ctx context.Context, id uuid.UUID) (*Identity, error)

	// UpdatePreferences applies the set fields of the partial update.
	UpdatePreferences(ctx context.Context, id uuid.UUID, update PreferencesUpdate) (*Identity, error)
}

// NormalizeEmail canonicalizes an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
