// Package reframe turns a stressful thought into three alternative
// perspectives (stoic, optimist, realist) produced by a language model,
// and keeps the results so repeat requests do not hit the model again.
package reframe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxThoughtLen caps the accepted thought length in bytes.
const MaxThoughtLen = 1000

var (
	// ErrNotFound is returned when no reframe matches the lookup.
	ErrNotFound = errors.New("reframe not found")
	// ErrEmptyThought is returned for blank input.
	ErrEmptyThought = errors.New("original thought is empty")
	// ErrThoughtTooLong is returned when input exceeds MaxThoughtLen.
	ErrThoughtTooLong = errors.New("original thought too long")
)

// Result is the set of perspectives produced for one thought.
type Result struct {
	Stoic    string `json:"stoic"`
	Optimist string `json:"optimist"`
	Realist  string `json:"realist"`
}

// Reframe is a stored reframing, optionally tied to a journal entry.
type Reframe struct {
	ID              uuid.UUID  `json:"id"`
	IdentityID      uuid.UUID  `json:"identity_id"`
	JournalEntryID  *uuid.UUID `json:"journal_entry_id,omitempty"`
	OriginalThought string     `json:"original_thought"`
	Stoic           string     `json:"stoic_reframe"`
	Optimist        string     `json:"optimist_reframe"`
	Realist         string     `json:"realist_reframe"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Store persists reframes, scoped per identity.
type Store interface {
	Create(ctx context.Context, identityID uuid.UUID, journalEntryID *uuid.UUID, thought string, result Result) (*Reframe, error)
	List(ctx context.Context, identityID uuid.UUID, limit int) ([]*Reframe, error)
	FindByJournalEntry(ctx context.Context, identityID, journalEntryID uuid.UUID) (*Reframe, error)
}

// Generator produces perspectives for a thought.
type Generator interface {
	Generate(ctx context.Context, thought string) (*Result, error)
}
