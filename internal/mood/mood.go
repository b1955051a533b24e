// Package mood stores mood tracker entries and aggregates.
package mood

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no entry matches the id for the identity.
var ErrNotFound = errors.New("mood entry not found")

// Moods accepted by the tracker.
var Moods = []string{"great", "good", "okay", "bad", "terrible"}

// ValidMood reports whether m is one of the accepted mood labels.
func ValidMood(m string) bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

// Entry is one mood check-in.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	IdentityID  uuid.UUID `json:"identity_id"`
	Mood        string    `json:"mood"`
	StressLevel int       `json:"stress_level"`
	Note        *string   `json:"note,omitempty"`
	Activities  []string  `json:"activities,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Update is a structured partial update; nil fields are left untouched.
type Update struct {
	Mood        *string
	StressLevel *int
	Note        *string
	Activities  *[]string
}

// Stats summarizes an identity's mood history.
type Stats struct {
	AverageStress   float64 `json:"average_stress"`
	MostCommonMood  string  `json:"most_common_mood"`
	TotalEntries    int64   `json:"total_entries"`
	EntriesThisWeek int64   `json:"entries_this_week"`
}

// Store persists mood entries. Every operation is scoped to one identity;
// an entry belonging to someone else behaves as if it does not exist.
type Store interface {
	Create(ctx context.Context, identityID uuid.UUID, mood string, stressLevel int, note *string, activities []string) (*Entry, error)
	List(ctx context.Context, identityID uuid.UUID) ([]*Entry, error)
	Get(ctx context.Context, identityID, id uuid.UUID) (*Entry, error)
	Update(ctx context.Context, identityID, id uuid.UUID, update Update) (*Entry, error)
	Delete(ctx context.Context, identityID, id uuid.UUID) error
	Recent(ctx context.Context, identityID uuid.UUID, limit int) ([]*Entry, error)
	Stats(ctx context.Context, identityID uuid.UUID) (*Stats, error)
}
