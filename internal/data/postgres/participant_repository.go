package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mca-deal-ledger/internal/domain/participant"
	"github.com/mca-deal-ledger/internal/platform/persistence"
)

const (
	insertParticipantQuery = `INSERT INTO participants (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	listParticipantsQuery  = `SELECT name FROM participants ORDER BY position`
	participantExistsQuery = `SELECT EXISTS (SELECT 1 FROM participants WHERE name = $1)`
)

// ParticipantRepository implements participant.Repository for PostgreSQL
type ParticipantRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewParticipantRepository(logger *slog.Logger, db *persistence.PostgresDB) participant.Repository {
	return &ParticipantRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Add inserts the normalised name; conflicts are ignored
func (r *ParticipantRepository) Add(ctx context.Context, name string) error {
	n, err := participant.Normalize(name)
	if err != nil {
		return err
	}

	if _, err := r.querier.Exec(ctx, insertParticipantQuery, n); err != nil {
		r.logger.Error("Failed to add participant", "name", n, "error", err)
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.querier.Query(ctx, listParticipantsQuery)
	if err != nil {
		r.logger.Error("Failed to list participants", "error", err)
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}

	return names, nil
}

func (r *ParticipantRepository) Exists(ctx context.Context, name string) (bool, error) {
	n, err := participant.Normalize(name)
	if err != nil {
		return false, nil
	}

	var exists bool
	if err := r.querier.QueryRow(ctx, participantExistsQuery, n).Scan(&exists); err != nil {
		r.logger.Error("Failed to check participant", "name", n, "error", err)
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}
