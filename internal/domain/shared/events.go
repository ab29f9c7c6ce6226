package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names a ledger mutation
type EventType string

const (
	EventTypeDealCreated         EventType = "deal.created"
	EventTypePaymentStatusChange EventType = "payment.status_changed"
	EventTypePaymentModified     EventType = "payment.modified"
	EventTypeSyndicationAssigned EventType = "syndication.assigned"
	EventTypeParticipantAdded    EventType = "participant.added"
)

// Valid reports whether t is a known event type
func (t EventType) Valid() bool {
	switch t {
	case EventTypeDealCreated, EventTypePaymentStatusChange, EventTypePaymentModified,
		EventTypeSyndicationAssigned, EventTypeParticipantAdded:
		return true
	}
	return false
}

// LedgerEvent is the Kafka message emitted after every committed ledger mutation
type LedgerEvent struct {
	EventID        uuid.UUID                  `json:"event_id"`
	Type           EventType                  `json:"type"`
	DealID         string                     `json:"deal_id,omitempty"`
	PaymentIndex   *int                       `json:"payment_index,omitempty"`
	Status         string                     `json:"status,omitempty"`
	Amount         *decimal.Decimal           `json:"amount,omitempty"`
	OriginalAmount *decimal.Decimal           `json:"original_amount,omitempty"`
	Note           string                     `json:"note,omitempty"`
	Shares         map[string]decimal.Decimal `json:"shares,omitempty"`
	Participant    string                     `json:"participant,omitempty"`
	CorrelationID  string                     `json:"correlation_id,omitempty"`
	OccurredAt     time.Time                  `json:"occurred_at"`
}

// NewLedgerEvent stamps a fresh event ID and occurrence time
func NewLedgerEvent(eventType EventType, dealID string, occurredAt time.Time) *LedgerEvent {
	return &LedgerEvent{
		EventID:    uuid.New(),
		Type:       eventType,
		DealID:     dealID,
		OccurredAt: occurredAt.UTC(),
	}
}

// Key is the Kafka partition key; events for one deal stay ordered on one partition
func (e *LedgerEvent) Key() string {
	if e.DealID != "" {
		return e.DealID
	}
	return e.EventID.String()
}
