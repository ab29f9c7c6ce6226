package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mca-deal-ledger/internal/domain/audit"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/logger"
)

// AuditRecordingService writes one audit record per ledger event
type AuditRecordingService struct {
	auditRepo audit.Repository
	clock     shared.Clock
	logger    *slog.Logger
}

// NewAuditRecordingService creates the base recording service
func NewAuditRecordingService(logger *slog.Logger, auditRepo audit.Repository, clock shared.Clock) *AuditRecordingService {
	return &AuditRecordingService{
		auditRepo: auditRepo,
		clock:     clock,
		logger:    logger,
	}
}

func (s *AuditRecordingService) RecordEvent(ctx context.Context, event *shared.LedgerEvent) error {
	if event.EventID == uuid.Nil {
		return fmt.Errorf("%w: missing event ID", ErrInvalidEvent)
	}
	if !event.Type.Valid() {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, event.Type)
	}

	log := logger.WithCorrelationID(s.logger, event.CorrelationID)

	record := audit.NewRecord(event, s.clock())
	if err := s.auditRepo.Create(ctx, record); err != nil {
		if errors.Is(err, audit.ErrDuplicateRecord{}) {
			log.Info("Ledger event already recorded, skipping",
				"event_id", event.EventID.String(),
				"event_type", string(event.Type),
			)
			return nil
		}
		return fmt.Errorf("failed to record event %s: %w", event.EventID.String(), err)
	}

	log.Info("Ledger event recorded",
		"event_id", event.EventID.String(),
		"event_type", string(event.Type),
		"deal_id", event.DealID,
	)
	return nil
}
