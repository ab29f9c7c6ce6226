package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mca-deal-ledger/internal/domain/payment"
)

// PaymentRepository keeps each deal's schedule as an index-addressed slice
type PaymentRepository struct {
	mu      sync.RWMutex
	ledgers map[string][]*payment.Payment
	order   []string
}

// NewPaymentRepository creates an empty ledger
func NewPaymentRepository() payment.Repository {
	return &PaymentRepository{ledgers: make(map[string][]*payment.Payment)}
}

func (r *PaymentRepository) CreateSchedule(ctx context.Context, dealID string, schedule []*payment.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ledgers[dealID]; exists {
		return payment.ErrDuplicateLedger{DealID: dealID}
	}

	stored := make([]*payment.Payment, len(schedule))
	for i, p := range schedule {
		stored[i] = p.Clone()
	}
	r.ledgers[dealID] = stored
	r.order = append(r.order, dealID)
	return nil
}

func (r *PaymentRepository) ListByDeal(ctx context.Context, dealID string) ([]*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ledger, ok := r.ledgers[dealID]
	if !ok {
		return nil, payment.ErrLedgerNotFound{DealID: dealID}
	}
	return cloneAll(ledger), nil
}

func (r *PaymentRepository) Get(ctx context.Context, dealID string, index int) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, err := r.locate(dealID, index)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Update runs fn on a copy and swaps it in only when fn succeeds, so a rejected
// mutation leaves the stored payment untouched.
func (r *PaymentRepository) Update(ctx context.Context, dealID string, index int, fn payment.MutateFunc) (*payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.locate(dealID, index)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.ledgers[dealID][index] = next
	return next.Clone(), nil
}

// ListByStatus walks ledgers in creation order
func (r *PaymentRepository) ListByStatus(ctx context.Context, statuses ...payment.Status) ([]*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*payment.Payment
	for _, dealID := range r.order {
		for _, p := range r.ledgers[dealID] {
			if slices.Contains(statuses, p.Status) {
				matched = append(matched, p.Clone())
			}
		}
	}
	return matched, nil
}

func (r *PaymentRepository) locate(dealID string, index int) (*payment.Payment, error) {
	ledger, ok := r.ledgers[dealID]
	if !ok {
		return nil, payment.ErrLedgerNotFound{DealID: dealID}
	}
	if index < 0 || index >= len(ledger) {
		return nil, payment.ErrPaymentNotFound{DealID: dealID, Index: index}
	}
	return ledger[index], nil
}

func cloneAll(ps []*payment.Payment) []*payment.Payment {
	out := make([]*payment.Payment, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}
