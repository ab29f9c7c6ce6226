package audit

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mca-deal-ledger/internal/domain/shared"
)

// Record is the durable trail entry written for each ledger event
type Record struct {
	EventID       uuid.UUID         `json:"event_id" bson:"event_id"`
	Type          shared.EventType  `json:"type" bson:"type"`
	DealID        string            `json:"deal_id,omitempty" bson:"deal_id,omitempty"`
	PaymentIndex  *int              `json:"payment_index,omitempty" bson:"payment_index,omitempty"`
	Details       map[string]string `json:"details,omitempty" bson:"details,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at" bson:"occurred_at"`
	RecordedAt    time.Time         `json:"recorded_at" bson:"recorded_at"`
}

// NewRecord flattens an event into a record. Money and percentages are kept as their
// decimal strings so no precision is lost in storage.
func NewRecord(event *shared.LedgerEvent, now time.Time) *Record {
	details := make(map[string]string)
	if event.Status != "" {
		details["status"] = event.Status
	}
	if event.Amount != nil {
		details["amount"] = event.Amount.String()
	}
	if event.OriginalAmount != nil {
		details["original_amount"] = event.OriginalAmount.String()
	}
	if event.Note != "" {
		details["note"] = event.Note
	}
	if event.Participant != "" {
		details["participant"] = event.Participant
	}
	if len(event.Shares) > 0 {
		names := make([]string, 0, len(event.Shares))
		for name := range event.Shares {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+"="+event.Shares[name].String())
		}
		details["shares"] = strings.Join(parts, ",")
	}
	if event.PaymentIndex != nil {
		details["payment_index"] = strconv.Itoa(*event.PaymentIndex)
	}

	return &Record{
		EventID:       event.EventID,
		Type:          event.Type,
		DealID:        event.DealID,
		PaymentIndex:  event.PaymentIndex,
		Details:       details,
		CorrelationID: event.CorrelationID,
		OccurredAt:    event.OccurredAt,
		RecordedAt:    now.UTC(),
	}
}

// Repository persists audit records, at most one per event ID
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Record, error)
	// ListByDeal returns the newest records first
	ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*Record, error)
	CountByDeal(ctx context.Context, dealID string) (int64, error)
}

// ErrRecordNotFound indicates a missing audit record
type ErrRecordNotFound struct {
	EventID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "audit record not found: " + e.EventID.String()
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	if target == shared.ErrNotFound {
		return true
	}
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	return t.EventID == uuid.Nil || e.EventID == t.EventID
}

// ErrDuplicateRecord indicates an event that was already recorded
type ErrDuplicateRecord struct {
	EventID uuid.UUID
}

func (e ErrDuplicateRecord) Error() string {
	return "duplicate audit record: " + e.EventID.String()
}

// Is implements the errors.Is interface for ErrDuplicateRecord
func (e ErrDuplicateRecord) Is(target error) bool {
	t, ok := target.(ErrDuplicateRecord)
	if !ok {
		return false
	}
	return t.EventID == uuid.Nil || e.EventID == t.EventID
}
