package service

import (
	"context"
	"log/slog"

	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/platform/messaging/producers"
)

// publishEvent emits a ledger event after its mutation has been committed. A failed
// publish is logged and otherwise ignored: the store stays the source of truth.
func publishEvent(ctx context.Context, logger *slog.Logger, publisher producers.EventPublisher, event *shared.LedgerEvent) {
	event.CorrelationID = shared.CorrelationIDFromContext(ctx)

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish ledger event",
			"event_id", event.EventID.String(),
			"event_type", string(event.Type),
			"deal_id", event.DealID,
			"error", err,
		)
		return
	}

	logger.Debug("Ledger event published",
		"event_id", event.EventID.String(),
		"event_type", string(event.Type),
		"deal_id", event.DealID,
	)
}
