package question

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fragmentforge/escape-api/internal/game"
)

// Service owns the in-memory question bank and orchestrates its loading:
// cache first, then the static source. The bank is read-only once loaded;
// Reload swaps it wholesale.
type Service struct {
	source Source
	cache  BankCache
	logger zerolog.Logger

	mu   sync.RWMutex
	bank []game.Question
}

func NewService(source Source, cache BankCache, logger zerolog.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		logger: logger.With().Str("component", "question").Logger(),
	}
}

// Bank returns the current bank. Empty until Load succeeds; the session
// engine treats an empty bank as "questions not yet available" and answers
// against it are no-ops.
func (s *Service) Bank() []game.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bank
}

// Load populates the bank, preferring the cache over the source. A cache
// failure is logged and falls through to the source.
func (s *Service) Load(ctx context.Context) error {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("bank cache read failed")
		} else if len(cached) > 0 {
			if err := s.install(cached); err == nil {
				return nil
			}
			s.logger.Warn().Msg("cached bank invalid, refetching")
		}
	}
	return s.Reload(ctx)
}

// Reload fetches the bank from the source, bypassing the cache, and updates
// the cache on success.
func (s *Service) Reload(ctx context.Context) error {
	bank, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch bank: %w", err)
	}
	if err := s.install(bank); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, s.Bank()); err != nil {
			s.logger.Warn().Err(err).Msg("bank cache write failed")
		}
	}
	return nil
}

func (s *Service) install(bank []game.Question) error {
	if err := ValidateBank(bank); err != nil {
		return fmt.Errorf("invalid bank: %w", err)
	}
	switch {
	case len(bank) > game.DoorCount:
		// Entries beyond the door layout can never be reached.
		s.logger.Warn().Int("count", len(bank)).Msg("bank larger than door layout, truncating")
		bank = bank[:game.DoorCount]
	case len(bank) < game.DoorCount:
		// Tolerated: rooms past the available data simply have no doors.
		s.logger.Warn().Int("count", len(bank)).Msg("bank smaller than door layout")
	}

	s.mu.Lock()
	s.bank = bank
	s.mu.Unlock()
	s.logger.Info().Int("count", len(bank)).Msg("question bank loaded")
	return nil
}
