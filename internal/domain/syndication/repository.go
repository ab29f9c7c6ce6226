package syndication

import "context"

// Repository stores one allocation per deal
type Repository interface {
	// Assign replaces the deal's allocation in full
	Assign(ctx context.Context, allocation *Allocation) error
	// Get returns nil without error when the deal has no allocation
	Get(ctx context.Context, dealID string) (*Allocation, error)
	List(ctx context.Context) ([]*Allocation, error)
}
