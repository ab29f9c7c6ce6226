package service

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/metrics"
	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/shopspring/decimal"
)

// MetricsServiceImpl implements the MetricsService interface. Every call reads the
// stores afresh.
type MetricsServiceImpl struct {
	dealRepo       deal.Repository
	paymentRepo    payment.Repository
	allocationRepo syndication.Repository
	clock          shared.Clock
}

// NewMetricsService creates a new metrics service
func NewMetricsService(dealRepo deal.Repository, paymentRepo payment.Repository, allocationRepo syndication.Repository, clock shared.Clock) MetricsService {
	return &MetricsServiceImpl{
		dealRepo:       dealRepo,
		paymentRepo:    paymentRepo,
		allocationRepo: allocationRepo,
		clock:          clock,
	}
}

// Summary only loads paid and missed payments; pending and modified ones do not
// contribute to any figure.
func (s *MetricsServiceImpl) Summary(ctx context.Context) (metrics.Summary, error) {
	deals, err := s.dealRepo.List(ctx)
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("failed to list deals: %w", err)
	}

	payments, err := s.paymentRepo.ListByStatus(ctx, payment.StatusPaid, payment.StatusMissed)
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("failed to list payments: %w", err)
	}

	return metrics.Summarize(deals, payments), nil
}

// DailyCollectionSeries snapshots paid payments now; ranging over the result later
// does not hit the store again.
func (s *MetricsServiceImpl) DailyCollectionSeries(ctx context.Context, window int) (iter.Seq2[time.Time, decimal.Decimal], error) {
	if window <= 0 {
		return nil, shared.ValidationError{Field: "window", Reason: "window must be a positive number of days"}
	}

	paid, err := s.paymentRepo.ListByStatus(ctx, payment.StatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid payments: %w", err)
	}

	return metrics.DailyCollections(paid, s.clock(), window), nil
}

func (s *MetricsServiceImpl) Distribution(ctx context.Context) ([]metrics.Slice, error) {
	deals, err := s.dealRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return metrics.Distribution(deals), nil
}

func (s *MetricsServiceImpl) Exposure(ctx context.Context) ([]metrics.Position, error) {
	deals, err := s.dealRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	allocations, err := s.allocationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}

	return metrics.Exposure(deals, allocations), nil
}
