package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/platform/messaging/producers"
	"github.com/shopspring/decimal"
)

// DealServiceImpl implements the DealService interface
type DealServiceImpl struct {
	dealRepo    deal.Repository
	paymentRepo payment.Repository
	publisher   producers.EventPublisher
	clock       shared.Clock
	logger      *slog.Logger
}

// NewDealService creates a new deal service
func NewDealService(logger *slog.Logger, dealRepo deal.Repository, paymentRepo payment.Repository, publisher producers.EventPublisher, clock shared.Clock) DealService {
	return &DealServiceImpl{
		dealRepo:    dealRepo,
		paymentRepo: paymentRepo,
		publisher:   publisher,
		clock:       clock,
		logger:      logger,
	}
}

// AddDeal registers a deal and generates its schedule from the same clock reading
func (s *DealServiceImpl) AddDeal(ctx context.Context, name string, size, rate decimal.Decimal, term int) (*deal.Deal, error) {
	now := s.clock()

	d, err := deal.NewDeal(name, size, rate, term, now)
	if err != nil {
		return nil, err
	}

	if err := s.dealRepo.Create(ctx, d); err != nil {
		s.logger.Error("Failed to register deal", "name", d.Name, "error", err)
		return nil, fmt.Errorf("failed to register deal: %w", err)
	}

	schedule := payment.GenerateSchedule(d, now)
	if err := s.paymentRepo.CreateSchedule(ctx, d.ID, schedule); err != nil {
		s.logger.Error("Failed to store payment schedule", "deal_id", d.ID, "error", err)
		return nil, fmt.Errorf("failed to store payment schedule for deal %s: %w", d.ID, err)
	}

	s.logger.Info("Deal registered",
		"deal_id", d.ID,
		"name", d.Name,
		"size", d.Size.String(),
		"rate", d.Rate.String(),
		"term", d.Term,
	)

	event := shared.NewLedgerEvent(shared.EventTypeDealCreated, d.ID, now)
	amount := d.TotalObligation()
	event.Amount = &amount
	event.Note = d.Name
	publishEvent(ctx, s.logger, s.publisher, event)

	return d, nil
}

// ListDeals returns every deal in registration order
func (s *DealServiceImpl) ListDeals(ctx context.Context) ([]*deal.Deal, error) {
	deals, err := s.dealRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return deals, nil
}

// FindDeal looks a deal up by ID
func (s *DealServiceImpl) FindDeal(ctx context.Context, id string) (*deal.Deal, error) {
	return s.dealRepo.GetByID(ctx, id)
}
