package payment

import (
	"context"
	"strconv"

	"github.com/mca-deal-ledger/internal/domain/shared"
)

// MutateFunc applies an in-place change to a payment. Returning an error aborts the
// update without persisting anything.
type MutateFunc func(p *Payment) error

// Repository is the payment ledger, keyed by deal ID
type Repository interface {
	// CreateSchedule stores the full schedule of a deal. A deal has exactly one schedule.
	CreateSchedule(ctx context.Context, dealID string, schedule []*Payment) error
	// ListByDeal returns a deal's payments in schedule order
	ListByDeal(ctx context.Context, dealID string) ([]*Payment, error)
	Get(ctx context.Context, dealID string, index int) (*Payment, error)
	// Update applies fn to the stored payment atomically and returns the new state
	Update(ctx context.Context, dealID string, index int, fn MutateFunc) (*Payment, error)
	// ListByStatus returns payments of every deal whose status is one of statuses
	ListByStatus(ctx context.Context, statuses ...Status) ([]*Payment, error)
}

// ErrLedgerNotFound indicates a deal without a payment schedule
type ErrLedgerNotFound struct {
	DealID string
}

func (e ErrLedgerNotFound) Error() string {
	return "payment ledger not found for deal: " + e.DealID
}

// Is implements the errors.Is interface for ErrLedgerNotFound
func (e ErrLedgerNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrLedgerNotFound)
	if !ok {
		return false
	}
	return t.DealID == "" || t.DealID == e.DealID
}

// ErrPaymentNotFound indicates a payment index outside the deal's schedule
type ErrPaymentNotFound struct {
	DealID string
	Index  int
}

func (e ErrPaymentNotFound) Error() string {
	return "payment not found: " + e.DealID + "#" + strconv.Itoa(e.Index)
}

// Is implements the errors.Is interface for ErrPaymentNotFound
func (e ErrPaymentNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrPaymentNotFound)
	if !ok {
		return false
	}
	if t.DealID == "" {
		return true
	}
	return e.DealID == t.DealID && e.Index == t.Index
}

// ErrDuplicateLedger indicates a second schedule for the same deal
type ErrDuplicateLedger struct {
	DealID string
}

func (e ErrDuplicateLedger) Error() string {
	return "payment ledger already exists for deal: " + e.DealID
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	DealID string
	Index  int
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for payment: " + e.DealID + "#" + strconv.Itoa(e.Index)
}
