package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/participant"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/mca-deal-ledger/internal/platform/messaging/producers"
	"github.com/shopspring/decimal"
)

// SyndicationServiceImpl implements the SyndicationService interface
type SyndicationServiceImpl struct {
	dealRepo        deal.Repository
	participantRepo participant.Repository
	allocationRepo  syndication.Repository
	publisher       producers.EventPublisher
	clock           shared.Clock
	logger          *slog.Logger
}

// NewSyndicationService creates a new syndication service
func NewSyndicationService(
	logger *slog.Logger,
	dealRepo deal.Repository,
	participantRepo participant.Repository,
	allocationRepo syndication.Repository,
	publisher producers.EventPublisher,
	clock shared.Clock,
) SyndicationService {
	return &SyndicationServiceImpl{
		dealRepo:        dealRepo,
		participantRepo: participantRepo,
		allocationRepo:  allocationRepo,
		publisher:       publisher,
		clock:           clock,
		logger:          logger,
	}
}

// Assign validates shares and replaces the deal's allocation. Nothing is stored when
// any check fails, so the previous allocation stays in effect.
func (s *SyndicationServiceImpl) Assign(ctx context.Context, dealID string, shares map[string]decimal.Decimal) (*syndication.Allocation, error) {
	if _, err := s.dealRepo.GetByID(ctx, dealID); err != nil {
		return nil, err
	}

	allocation, err := syndication.NewAllocation(dealID, shares)
	if err != nil {
		s.logger.Info("Rejected syndication allocation", "deal_id", dealID, "reason", err.Error())
		return nil, err
	}

	if err := s.checkParticipants(ctx, allocation.Participants()); err != nil {
		return nil, err
	}

	if err := s.allocationRepo.Assign(ctx, allocation); err != nil {
		s.logger.Error("Failed to store syndication allocation", "deal_id", dealID, "error", err)
		return nil, fmt.Errorf("failed to store allocation for deal %s: %w", dealID, err)
	}

	s.logger.Info("Syndication assigned", "deal_id", dealID, "participants", len(allocation.Shares))

	event := shared.NewLedgerEvent(shared.EventTypeSyndicationAssigned, dealID, s.clock())
	event.Shares = allocation.Shares
	publishEvent(ctx, s.logger, s.publisher, event)

	return allocation, nil
}

func (s *SyndicationServiceImpl) checkParticipants(ctx context.Context, names []string) error {
	var unknown []string
	for _, name := range names {
		ok, err := s.participantRepo.Exists(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to look up participant %s: %w", name, err)
		}
		if !ok {
			unknown = append(unknown, name)
		}
	}

	if len(unknown) > 0 {
		slices.Sort(unknown)
		return participant.ErrUnknownParticipants{Names: unknown}
	}
	return nil
}

// DealAllocation returns the deal's allocation, or an empty one if none was assigned
func (s *SyndicationServiceImpl) DealAllocation(ctx context.Context, dealID string) (*syndication.Allocation, error) {
	if _, err := s.dealRepo.GetByID(ctx, dealID); err != nil {
		return nil, err
	}

	allocation, err := s.allocationRepo.Get(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation for deal %s: %w", dealID, err)
	}
	if allocation == nil {
		return &syndication.Allocation{DealID: dealID, Shares: map[string]decimal.Decimal{}}, nil
	}
	return allocation, nil
}

// DollarShare resolves the participant's percentage against the deal's size
func (s *SyndicationServiceImpl) DollarShare(ctx context.Context, dealID, name string) (decimal.Decimal, error) {
	d, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return decimal.Zero, err
	}

	allocation, err := s.allocationRepo.Get(ctx, dealID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get allocation for deal %s: %w", dealID, err)
	}

	return syndication.DollarShare(d.Size, allocation.Percentage(name)), nil
}

// ListAllocations returns every stored allocation
func (s *SyndicationServiceImpl) ListAllocations(ctx context.Context) ([]*syndication.Allocation, error) {
	allocations, err := s.allocationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return allocations, nil
}
