package payment

import (
	"strings"
	"time"

	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the collection state of a scheduled payment
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusMissed   Status = "missed"
	StatusModified Status = "modified"
)

// Common errors
var (
	ErrInvalidStatus = shared.ValidationError{Field: "status", Reason: "must be one of pending, paid, missed, modified"}
	ErrInvalidAmount = shared.ValidationError{Field: "amount", Reason: "modified amount must be positive"}
	ErrInvalidIndex  = shared.ValidationError{Field: "index", Reason: "payment index must not be negative"}
)

// Valid reports whether s is one of the four ledger states
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusMissed, StatusModified:
		return true
	}
	return false
}

// ParseStatus normalises user input into a Status
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Payment is one scheduled daily remittance of a deal, identified by (DealID, Index).
// OriginalAmount and ModificationNote form the audit trail: once a payment has been
// modified they are kept for good, whatever its later status.
type Payment struct {
	DealID           string           `json:"deal_id"`
	Index            int              `json:"index"`
	Date             time.Time        `json:"date"` // schedule date, never re-stamped
	Amount           decimal.Decimal  `json:"amount"`
	Status           Status           `json:"status"`
	OriginalAmount   *decimal.Decimal `json:"original_amount,omitempty"`
	ModificationNote string           `json:"modification_note,omitempty"`
	Version          int              `json:"version"` // For optimistic locking
	UpdatedAt        time.Time        `json:"updated_at"`
}

// SetStatus overwrites the status. Any state may move to any other state so operators
// can correct mis-marked payments; the amount and audit fields are left untouched.
func (p *Payment) SetStatus(status Status, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	p.Status = status
	p.UpdatedAt = now.UTC()
	p.Version++
	return nil
}

// Modify replaces the amount and marks the payment modified. The first modification
// captures the schedule-generated amount in OriginalAmount; later ones only overwrite
// Amount and ModificationNote.
func (p *Payment) Modify(amount decimal.Decimal, note string, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if p.OriginalAmount == nil {
		original := p.Amount
		p.OriginalAmount = &original
	}
	p.Amount = amount
	p.ModificationNote = note
	p.Status = StatusModified
	p.UpdatedAt = now.UTC()
	p.Version++
	return nil
}

// IsModified reports whether the payment has ever been modified
func (p *Payment) IsModified() bool {
	return p.OriginalAmount != nil
}

// Clone returns a copy that shares no mutable state with p
func (p *Payment) Clone() *Payment {
	c := *p
	if p.OriginalAmount != nil {
		original := *p.OriginalAmount
		c.OriginalAmount = &original
	}
	return &c
}

// Progress is the fraction of payments marked paid. An empty schedule yields 0.
func Progress(payments []*Payment) float64 {
	if len(payments) == 0 {
		return 0
	}

	paid := 0
	for _, p := range payments {
		if p.Status == StatusPaid {
			paid++
		}
	}
	return float64(paid) / float64(len(payments))
}
