package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mca-deal-ledger/internal/domain/syndication"
	"github.com/mca-deal-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

const (
	deleteSharesQuery = `DELETE FROM syndication_shares WHERE deal_id = $1`
	insertShareQuery  = `
		INSERT INTO syndication_shares (deal_id, participant, percentage, assigned_at)
		VALUES ($1, $2, $3, $4)
	`
	getSharesQuery = `
		SELECT participant, percentage::text
		FROM syndication_shares
		WHERE deal_id = $1
	`
	listSharesQuery = `
		SELECT s.deal_id, s.participant, s.percentage::text
		FROM syndication_shares s
		JOIN deals d ON d.id = s.deal_id
		ORDER BY d.position, s.participant
	`
)

// SyndicationRepository implements syndication.Repository for PostgreSQL
type SyndicationRepository struct {
	pool   persistence.Pool
	logger *slog.Logger
	now    func() time.Time
}

func NewSyndicationRepository(logger *slog.Logger, db *persistence.PostgresDB) syndication.Repository {
	return &SyndicationRepository{
		pool:   db.Pool(),
		logger: logger,
		now:    time.Now,
	}
}

// Assign deletes the deal's rows and inserts the new shares in one transaction, so
// readers see either the old allocation or the new one.
func (r *SyndicationRepository) Assign(ctx context.Context, allocation *syndication.Allocation) error {
	participants := allocation.Participants()
	sort.Strings(participants)
	assignedAt := r.now().UTC()

	err := persistence.ExecuteTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteSharesQuery, allocation.DealID); err != nil {
			return fmt.Errorf("failed to clear shares: %w", err)
		}
		for _, name := range participants {
			if _, err := tx.Exec(ctx, insertShareQuery,
				allocation.DealID, name, allocation.Shares[name], assignedAt); err != nil {
				return fmt.Errorf("failed to insert share for %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to assign syndication", "deal_id", allocation.DealID, "error", err)
		return fmt.Errorf("failed to assign syndication: %w", err)
	}

	return nil
}

// Get returns nil when the deal has no shares
func (r *SyndicationRepository) Get(ctx context.Context, dealID string) (*syndication.Allocation, error) {
	rows, err := r.pool.Query(ctx, getSharesQuery, dealID)
	if err != nil {
		r.logger.Error("Failed to get syndication", "deal_id", dealID, "error", err)
		return nil, fmt.Errorf("failed to get syndication: %w", err)
	}
	defer rows.Close()

	var allocation *syndication.Allocation
	for rows.Next() {
		var name, pct string
		if err := rows.Scan(&name, &pct); err != nil {
			return nil, fmt.Errorf("failed to scan share row: %w", err)
		}
		if allocation == nil {
			allocation = &syndication.Allocation{DealID: dealID, Shares: make(map[string]decimal.Decimal)}
		}
		if err := putShare(allocation, name, pct); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating share rows: %w", err)
	}

	return allocation, nil
}

// List groups share rows by deal, in deal registration order
func (r *SyndicationRepository) List(ctx context.Context) ([]*syndication.Allocation, error) {
	rows, err := r.pool.Query(ctx, listSharesQuery)
	if err != nil {
		r.logger.Error("Failed to list syndications", "error", err)
		return nil, fmt.Errorf("failed to list syndications: %w", err)
	}
	defer rows.Close()

	var allocations []*syndication.Allocation
	for rows.Next() {
		var dealID, name, pct string
		if err := rows.Scan(&dealID, &name, &pct); err != nil {
			return nil, fmt.Errorf("failed to scan share row: %w", err)
		}
		if n := len(allocations); n == 0 || allocations[n-1].DealID != dealID {
			allocations = append(allocations, &syndication.Allocation{
				DealID: dealID,
				Shares: make(map[string]decimal.Decimal),
			})
		}
		if err := putShare(allocations[len(allocations)-1], name, pct); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating share rows: %w", err)
	}

	return allocations, nil
}

func putShare(a *syndication.Allocation, name, pct string) error {
	value, err := decimal.NewFromString(pct)
	if err != nil {
		return fmt.Errorf("invalid percentage %q for %s on deal %s: %w", pct, name, a.DealID, err)
	}
	a.Shares[name] = value
	return nil
}
