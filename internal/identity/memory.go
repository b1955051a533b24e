package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local tooling.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Identity
	byEmail map[string]uuid.UUID
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]*Identity),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Insert creates a new identity with default preferences.
func (s *MemoryStore) Insert(_ context.Context, email, passwordHash, displayName string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := NormalizeEmail(email)
	if _, exists := s.byEmail[normalized]; exists {
		return nil, ErrDuplicateEmail
	}

	now := time.Now()
	ident := &Identity{
		ID:                uuid.New(),
		Email:             normalized,
		PasswordHash:      passwordHash,
		DisplayName:       displayName,
		PreferredLanguage: "en",
		PreferredTheme:    "light",
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	s.byID[ident.ID] = ident
	s.byEmail[normalized] = ident.ID

	copied := *ident
	return &copied, nil
}

// FindByEmail looks up an identity by normalized email.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

// FindByID looks up an identity by id.
func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ident, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *ident
	return &copied, nil
}

// UpdatePreferences applies the set fields of the partial update.
func (s *MemoryStore) UpdatePreferences(_ context.Context, id uuid.UUID, update PreferencesUpdate) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	if update.DisplayName != nil {
		ident.DisplayName = *update.DisplayName
	}
	if update.PreferredLanguage != nil {
		ident.PreferredLanguage = *update.PreferredLanguage
	}
	if update.PreferredTheme != nil {
		ident.PreferredTheme = *update.PreferredTheme
	}
	ident.UpdatedAt = time.Now()

	copied := *ident
	return &copied, nil
}

// Delete removes an identity. Tests use it to simulate an account deleted
// while an access token for it is still circulating.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ident, ok := s.byID[id]; ok {
		delete(s.byEmail, ident.Email)
		delete(s.byID, id)
	}
}
