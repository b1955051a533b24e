package reframe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service validates input, reuses stored results for the same journal
// entry, and otherwise asks the generator for fresh perspectives.
type Service struct {
	store     Store
	generator Generator
	logger    zerolog.Logger
}

// NewService wires a store and generator together.
func NewService(store Store, generator Generator, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		generator: generator,
		logger:    logger.With().Str("component", "reframe").Logger(),
	}
}

// Reframe produces a stored reframing for the thought. When the thought
// is tied to a journal entry that already has a reframing, the stored
// one is returned without calling the generator.
func (s *Service) Reframe(ctx context.Context, identityID uuid.UUID, journalEntryID *uuid.UUID, thought string) (*Reframe, error) {
	trimmed := strings.TrimSpace(thought)
	if trimmed == "" {
		return nil, ErrEmptyThought
	}
	if len(trimmed) > MaxThoughtLen {
		return nil, ErrThoughtTooLong
	}

	if journalEntryID != nil {
		cached, err := s.store.FindByJournalEntry(ctx, identityID, *journalEntryID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("lookup cached reframe: %w", err)
		}
	}

	result, err := s.generator.Generate(ctx, trimmed)
	if err != nil {
		s.logger.Error().Err(err).Msg("reframe generation failed")
		return nil, fmt.Errorf("generate reframes: %w", err)
	}

	return s.store.Create(ctx, identityID, journalEntryID, trimmed, *result)
}

// History returns the identity's stored reframes, newest first.
func (s *Service) History(ctx context.Context, identityID uuid.UUID, limit int) ([]*Reframe, error) {
	return s.store.List(ctx, identityID, limit)
}
