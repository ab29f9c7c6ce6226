package deal

import (
	"context"

	"github.com/mca-deal-ledger/internal/domain/shared"
)

// Repository is the deal registry. Deals are append-only: there is no update or delete.
type Repository interface {
	// Create assigns the next sequential ID to d and stores it
	Create(ctx context.Context, d *Deal) error
	GetByID(ctx context.Context, id string) (*Deal, error)
	// List returns every deal in insertion order
	List(ctx context.Context) ([]*Deal, error)
	Count(ctx context.Context) (int, error)
}

// ErrDealNotFound indicates missing deal
type ErrDealNotFound struct {
	DealID string
}

func (e ErrDealNotFound) Error() string {
	return "deal not found: " + e.DealID
}

// Is matches any ErrDealNotFound when the target carries no ID, and the generic
// shared.ErrNotFound kind.
func (e ErrDealNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrDealNotFound)
	if !ok {
		return false
	}
	if t.DealID == "" {
		return true
	}
	return e.DealID == t.DealID
}
