package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mca-deal-ledger/internal/domain/participant"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/platform/messaging/producers"
)

// ParticipantServiceImpl implements the ParticipantService interface
type ParticipantServiceImpl struct {
	repo      participant.Repository
	publisher producers.EventPublisher
	clock     shared.Clock
	logger    *slog.Logger
}

// NewParticipantService creates a new participant service
func NewParticipantService(logger *slog.Logger, repo participant.Repository, publisher producers.EventPublisher, clock shared.Clock) ParticipantService {
	return &ParticipantServiceImpl{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Register adds the normalised name. An already registered name is returned as is
// and no event is emitted.
func (s *ParticipantServiceImpl) Register(ctx context.Context, name string) (string, error) {
	normalized, err := participant.Normalize(name)
	if err != nil {
		return "", err
	}

	exists, err := s.repo.Exists(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("failed to look up participant: %w", err)
	}
	if exists {
		return normalized, nil
	}

	if err := s.repo.Add(ctx, normalized); err != nil {
		s.logger.Error("Failed to register participant", "participant", normalized, "error", err)
		return "", fmt.Errorf("failed to register participant: %w", err)
	}

	s.logger.Info("Participant registered", "participant", normalized)

	event := shared.NewLedgerEvent(shared.EventTypeParticipantAdded, "", s.clock())
	event.Participant = normalized
	publishEvent(ctx, s.logger, s.publisher, event)

	return normalized, nil
}

// List returns participants in registration order
func (s *ParticipantServiceImpl) List(ctx context.Context) ([]string, error) {
	names, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return names, nil
}
