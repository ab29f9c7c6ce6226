package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/mca-deal-ledger/internal/domain/syndication"
)

// SyndicationRepository stores one allocation per deal
type SyndicationRepository struct {
	mu          sync.RWMutex
	allocations map[string]*syndication.Allocation
	order       []string
}

func NewSyndicationRepository() syndication.Repository {
	return &SyndicationRepository{allocations: make(map[string]*syndication.Allocation)}
}

// Assign swaps the whole allocation in one step; there is no partial state to observe
func (r *SyndicationRepository) Assign(ctx context.Context, allocation *syndication.Allocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.allocations[allocation.DealID]; !exists {
		r.order = append(r.order, allocation.DealID)
	}
	r.allocations[allocation.DealID] = cloneAllocation(allocation)
	return nil
}

func (r *SyndicationRepository) Get(ctx context.Context, dealID string) (*syndication.Allocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.allocations[dealID]
	if !ok {
		return nil, nil
	}
	return cloneAllocation(a), nil
}

func (r *SyndicationRepository) List(ctx context.Context) ([]*syndication.Allocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*syndication.Allocation, 0, len(r.order))
	for _, dealID := range r.order {
		out = append(out, cloneAllocation(r.allocations[dealID]))
	}
	return out, nil
}

func cloneAllocation(a *syndication.Allocation) *syndication.Allocation {
	return &syndication.Allocation{DealID: a.DealID, Shares: maps.Clone(a.Shares)}
}
