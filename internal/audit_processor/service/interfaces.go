package service

import (
	"context"
	"errors"

	"github.com/mca-deal-ledger/internal/domain/shared"
)

// ErrInvalidEvent marks an event that can never be recorded, however often it is retried
var ErrInvalidEvent = errors.New("invalid ledger event")

// RecordingService turns ledger events into audit records
type RecordingService interface {
	// RecordEvent stores the event's audit record. Recording an event twice is not an error.
	RecordEvent(ctx context.Context, event *shared.LedgerEvent) error
}
