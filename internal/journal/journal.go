// Package journal stores mental-box entries: short written thoughts the
// user files away to revisit later.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no entry matches the id for the identity.
var ErrNotFound = errors.New("journal entry not found")

// Entry is one mental-box note.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	IdentityID uuid.UUID `json:"identity_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Update is a structured partial update; nil fields are left untouched.
type Update struct {
	Title   *string
	Content *string
}

// Store persists journal entries, scoped per identity.
type Store interface {
	Create(ctx context.Context, identityID uuid.UUID, title, content string) (*Entry, error)
	List(ctx context.Context, identityID uuid.UUID) ([]*Entry, error)
	Get(ctx context.Context, identityID, id uuid.UUID) (*Entry, error)
	Update(ctx context.Context, identityID, id uuid.UUID, update Update) (*Entry, error)
	Delete(ctx context.Context, identityID, id uuid.UUID) error
}
