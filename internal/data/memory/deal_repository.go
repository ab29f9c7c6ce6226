// Package memory holds the default process-local stores. Each store guards its state
// with a single RWMutex and hands out copies so callers never alias stored values.
package memory

import (
	"context"
	"sync"

	"github.com/mca-deal-ledger/internal/domain/deal"
)

// DealRepository is an append-only, insertion-ordered deal registry
type DealRepository struct {
	mu    sync.RWMutex
	deals []*deal.Deal
	byID  map[string]*deal.Deal
}

// NewDealRepository creates an empty registry
func NewDealRepository() deal.Repository {
	return &DealRepository{byID: make(map[string]*deal.Deal)}
}

// Create assigns the next sequential ID under the write lock and stores a copy
func (r *DealRepository) Create(ctx context.Context, d *deal.Deal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d.ID = deal.FormatID(len(r.deals))
	stored := *d
	r.deals = append(r.deals, &stored)
	r.byID[stored.ID] = &stored
	return nil
}

func (r *DealRepository) GetByID(ctx context.Context, id string) (*deal.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return nil, deal.ErrDealNotFound{DealID: id}
	}
	c := *d
	return &c, nil
}

func (r *DealRepository) List(ctx context.Context) ([]*deal.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deals := make([]*deal.Deal, len(r.deals))
	for i, d := range r.deals {
		c := *d
		deals[i] = &c
	}
	return deals, nil
}

func (r *DealRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.deals), nil
}
