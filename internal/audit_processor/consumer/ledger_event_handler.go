package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mca-deal-ledger/internal/audit_processor/service"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/logger"
	"github.com/mca-deal-ledger/internal/platform/messaging/producers"
	"github.com/segmentio/kafka-go"
)

// LedgerEventHandler records ledger events read from Kafka
type LedgerEventHandler struct {
	recordingService service.RecordingService
	dlq              producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewLedgerEventHandler creates a handler. dlq may be nil, in which case poison
// messages are retried instead of parked.
func NewLedgerEventHandler(
	logger *slog.Logger,
	recordingService service.RecordingService,
	dlq producers.DeadLetterPublisher,
) *LedgerEventHandler {
	return &LedgerEventHandler{
		recordingService: recordingService,
		dlq:              dlq,
		logger:           logger,
	}
}

// HandleMessage returns nil when the offset may be committed
func (h *LedgerEventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	key := string(msg.Key)

	var event shared.LedgerEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("Failed to unmarshal ledger event from Kafka message",
			"error", err,
			"message_key", key,
		)
		return h.deadLetter(ctx, msg, fmt.Sprintf("unmarshal ledger event: %s", err.Error()), err)
	}

	if event.CorrelationID == "" {
		event.CorrelationID = headerValue(msg.Headers, producers.HeaderCorrelationID)
	}
	log := logger.WithCorrelationID(h.logger, event.CorrelationID)

	log.Debug("Received ledger event",
		"event_id", event.EventID.String(),
		"event_type", string(event.Type),
		"deal_id", event.DealID,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)

	if err := h.recordingService.RecordEvent(ctx, &event); err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			log.Warn("Rejected ledger event", "event_id", event.EventID.String(), "error", err)
			return h.deadLetter(ctx, msg, err.Error(), err)
		}
		log.Error("Failed to record ledger event",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("recording event %s failed: %w", event.EventID.String(), err)
	}

	return nil
}

// deadLetter parks msg on the DLQ. The original error is returned when there is no
// DLQ or publishing fails, so the message is redelivered.
func (h *LedgerEventHandler) deadLetter(ctx context.Context, msg kafka.Message, reason string, cause error) error {
	key := string(msg.Key)
	if h.dlq == nil {
		return fmt.Errorf("unprocessable ledger event: %w", cause)
	}

	if err := h.dlq.PublishToDLQ(ctx, key, msg.Value, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"original_error", cause,
			"message_key", key,
		)
		return fmt.Errorf("unprocessable ledger event: %w", cause)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", key, "reason", reason)
	return nil
}

func headerValue(headers []kafka.Header, name string) string {
	for _, h := range headers {
		if h.Key == name {
			return string(h.Value)
		}
	}
	return ""
}
