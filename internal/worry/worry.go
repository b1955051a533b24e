// Package worry stores scheduled worry windows: fixed daily slots the user
// reserves for worrying so it stays out of the rest of the day.
package worry

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no window matches the id for the identity.
var ErrNotFound = errors.New("worry window not found")

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClock reports whether v is a wall-clock time in HH:MM form.
func ValidClock(v string) bool {
	return clockPattern.MatchString(v)
}

// Window is one scheduled worry slot.
type Window struct {
	ID            uuid.UUID `json:"id"`
	IdentityID    uuid.UUID `json:"identity_id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	ScheduledDate time.Time `json:"scheduled_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Completed     bool      `json:"is_completed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Update is a structured partial update; nil fields are left untouched.
type Update struct {
	Title         *string
	Description   *string
	ScheduledDate *time.Time
	StartTime     *string
	EndTime       *string
	Completed     *bool
}

// Store persists worry windows, scoped per identity.
type Store interface {
	Create(ctx context.Context, identityID uuid.UUID, title string, description *string, scheduledDate time.Time, startTime, endTime string) (*Window, error)
	List(ctx context.Context, identityID uuid.UUID) ([]*Window, error)
	Get(ctx context.Context, identityID, id uuid.UUID) (*Window, error)
	Update(ctx context.Context, identityID, id uuid.UUID, update Update) (*Window, error)
	Delete(ctx context.Context, identityID, id uuid.UUID) error
}
