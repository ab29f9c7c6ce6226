// Package postgres provides PostgreSQL implementations of the deal registry, the
// participant registry and the syndication allocator.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mca-deal-ledger/internal/domain/deal"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

const (
	lockDealsQuery  = `LOCK TABLE deals IN EXCLUSIVE MODE`
	countDealsQuery = `SELECT COUNT(*) FROM deals`
	insertDealQuery = `
		INSERT INTO deals (id, position, name, size_cents, rate, term, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	selectDealColumns = `SELECT id, name, size_cents, rate::text, term, created_at FROM deals`
	getDealQuery      = selectDealColumns + ` WHERE id = $1`
	listDealsQuery    = selectDealColumns + ` ORDER BY position`
)

// DealRepository implements deal.Repository for PostgreSQL
type DealRepository struct {
	pool   persistence.Pool
	logger *slog.Logger
}

// NewDealRepository creates a new PostgreSQL deal repository
func NewDealRepository(logger *slog.Logger, db *persistence.PostgresDB) deal.Repository {
	return &DealRepository{
		pool:   db.Pool(),
		logger: logger,
	}
}

// Create assigns the next sequential ID and inserts the deal. The table lock makes
// count-then-insert atomic across concurrent creators; readers are not blocked.
func (r *DealRepository) Create(ctx context.Context, d *deal.Deal) error {
	err := persistence.ExecuteTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lockDealsQuery); err != nil {
			return fmt.Errorf("failed to lock deals: %w", err)
		}

		var count int
		if err := tx.QueryRow(ctx, countDealsQuery).Scan(&count); err != nil {
			return fmt.Errorf("failed to count deals: %w", err)
		}

		id := deal.FormatID(count)
		_, err := tx.Exec(ctx, insertDealQuery,
			id,
			count,
			d.Name,
			shared.ToCents(d.Size),
			d.Rate,
			d.Term,
			d.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert deal: %w", err)
		}

		d.ID = id
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create deal", "name", d.Name, "error", err)
		return fmt.Errorf("failed to create deal: %w", err)
	}

	return nil
}

// GetByID retrieves a deal by its ID
func (r *DealRepository) GetByID(ctx context.Context, id string) (*deal.Deal, error) {
	d, err := scanDeal(r.pool.QueryRow(ctx, getDealQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, deal.ErrDealNotFound{DealID: id}
		}
		r.logger.Error("Failed to get deal", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	return d, nil
}

// List returns every deal in registration order
func (r *DealRepository) List(ctx context.Context) ([]*deal.Deal, error) {
	rows, err := r.pool.Query(ctx, listDealsQuery)
	if err != nil {
		r.logger.Error("Failed to list deals", "error", err)
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	var deals []*deal.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			r.logger.Error("Failed to scan deal row", "error", err)
			return nil, fmt.Errorf("failed to scan deal row: %w", err)
		}
		deals = append(deals, d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating deal rows", "error", err)
		return nil, fmt.Errorf("error iterating deal rows: %w", err)
	}

	return deals, nil
}

func (r *DealRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, countDealsQuery).Scan(&count); err != nil {
		r.logger.Error("Failed to count deals", "error", err)
		return 0, fmt.Errorf("failed to count deals: %w", err)
	}
	return count, nil
}

func scanDeal(row pgx.Row) (*deal.Deal, error) {
	var (
		d         deal.Deal
		sizeCents int64
		rate      string
		createdAt time.Time
	)
	if err := row.Scan(&d.ID, &d.Name, &sizeCents, &rate, &d.Term, &createdAt); err != nil {
		return nil, err
	}

	parsedRate, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q for deal %s: %w", rate, d.ID, err)
	}

	d.Size = shared.FromCents(sizeCents)
	d.Rate = parsedRate
	d.CreatedAt = createdAt.UTC()
	return &d, nil
}
