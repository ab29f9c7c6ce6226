package service

import (
	"context"
	"iter"
	"time"

	"github.com/mca-deal-ledger/internal/domain/audit"
	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/metrics"
	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/shopspring/decimal"
)

// DealService defines the interface for deal registry operations
type DealService interface {
	// AddDeal validates the terms, registers the deal under the next ID and stores its
	// payment schedule. Returns a shared.ValidationError for bad terms.
	AddDeal(ctx context.Context, name string, size, rate decimal.Decimal, term int) (*deal.Deal, error)

	// ListDeals returns every deal in registration order
	ListDeals(ctx context.Context) ([]*deal.Deal, error)

	// FindDeal returns deal.ErrDealNotFound if the ID is unknown
	FindDeal(ctx context.Context, id string) (*deal.Deal, error)
}

// PaymentService defines the interface for payment ledger operations
type PaymentService interface {
	ListPayments(ctx context.Context, dealID string) ([]*payment.Payment, error)

	// SetStatus overwrites a payment's status; amount and audit fields are kept
	SetStatus(ctx context.Context, dealID string, index int, status payment.Status) (*payment.Payment, error)

	// Modify replaces a payment's amount, recording the original amount on first use.
	// The amount is rounded half away from zero to the cent before validation, so
	// 1000.125 is stored as 1000.13 and anything below half a cent is rejected.
	Modify(ctx context.Context, dealID string, index int, amount decimal.Decimal, note string) (*payment.Payment, error)

	// Progress is the fraction of the deal's payments marked paid
	Progress(ctx context.Context, dealID string) (float64, error)
}

// SyndicationService defines the interface for allocation operations
type SyndicationService interface {
	// Assign replaces the deal's allocation. Shares must be in [0,100] and sum to 100,
	// and every participant must be registered.
	Assign(ctx context.Context, dealID string, shares map[string]decimal.Decimal) (*syndication.Allocation, error)

	// DealAllocation returns the deal's allocation, empty if none was assigned
	DealAllocation(ctx context.Context, dealID string) (*syndication.Allocation, error)

	// DollarShare is size x pct / 100, zero when the participant holds no share
	DollarShare(ctx context.Context, dealID, participant string) (decimal.Decimal, error)

	ListAllocations(ctx context.Context) ([]*syndication.Allocation, error)
}

// ParticipantService defines the interface for the participant registry
type ParticipantService interface {
	// Register normalises and stores the name; registering twice is not an error
	Register(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]string, error)
}

// MetricsService derives portfolio figures from the current state of every store
type MetricsService interface {
	Summary(ctx context.Context) (metrics.Summary, error)
	DailyCollectionSeries(ctx context.Context, window int) (iter.Seq2[time.Time, decimal.Decimal], error)
	Distribution(ctx context.Context) ([]metrics.Slice, error)
	Exposure(ctx context.Context) ([]metrics.Position, error)
}

// AuditService reads the trail written by the audit processor
type AuditService interface {
	// DealTrail returns one page of the deal's records, newest first, and the total count
	DealTrail(ctx context.Context, dealID string, page, perPage int) ([]*audit.Record, int64, error)
}
