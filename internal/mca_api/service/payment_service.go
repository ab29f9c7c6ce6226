package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/shared"
	"github.com/mca-deal-ledger/internal/platform/messaging/producers"
	"github.com/shopspring/decimal"
)

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct {
	paymentRepo payment.Repository
	publisher   producers.EventPublisher
	clock       shared.Clock
	logger      *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(logger *slog.Logger, paymentRepo payment.Repository, publisher producers.EventPublisher, clock shared.Clock) PaymentService {
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		publisher:   publisher,
		clock:       clock,
		logger:      logger,
	}
}

// ListPayments returns the deal's schedule in order
func (s *PaymentServiceImpl) ListPayments(ctx context.Context, dealID string) ([]*payment.Payment, error) {
	return s.paymentRepo.ListByDeal(ctx, dealID)
}

// SetStatus overwrites the status of one payment
func (s *PaymentServiceImpl) SetStatus(ctx context.Context, dealID string, index int, status payment.Status) (*payment.Payment, error) {
	if !status.Valid() {
		return nil, payment.ErrInvalidStatus
	}

	now := s.clock()
	updated, err := s.paymentRepo.Update(ctx, dealID, index, func(p *payment.Payment) error {
		return p.SetStatus(status, now)
	})
	if err != nil {
		s.logUpdateFailure("Failed to set payment status", dealID, index, err)
		return nil, err
	}

	s.logger.Info("Payment status updated",
		"deal_id", dealID,
		"payment_index", index,
		"status", string(updated.Status),
	)

	event := newPaymentEvent(shared.EventTypePaymentStatusChange, updated, now)
	publishEvent(ctx, s.logger, s.publisher, event)

	return updated, nil
}

// Modify replaces the amount of one payment. The amount is rounded to the cent
// before validation, and the returned payment carries the stored value.
func (s *PaymentServiceImpl) Modify(ctx context.Context, dealID string, index int, amount decimal.Decimal, note string) (*payment.Payment, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, payment.ErrInvalidAmount
	}

	now := s.clock()
	updated, err := s.paymentRepo.Update(ctx, dealID, index, func(p *payment.Payment) error {
		return p.Modify(amount, note, now)
	})
	if err != nil {
		s.logUpdateFailure("Failed to modify payment", dealID, index, err)
		return nil, err
	}

	s.logger.Info("Payment modified",
		"deal_id", dealID,
		"payment_index", index,
		"amount", updated.Amount.String(),
		"original_amount", updated.OriginalAmount.String(),
	)

	event := newPaymentEvent(shared.EventTypePaymentModified, updated, now)
	event.Note = updated.ModificationNote
	publishEvent(ctx, s.logger, s.publisher, event)

	return updated, nil
}

// Progress is paid / total for the deal's schedule
func (s *PaymentServiceImpl) Progress(ctx context.Context, dealID string) (float64, error) {
	payments, err := s.paymentRepo.ListByDeal(ctx, dealID)
	if err != nil {
		return 0, err
	}
	return payment.Progress(payments), nil
}

func (s *PaymentServiceImpl) logUpdateFailure(msg, dealID string, index int, err error) {
	if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrValidation) {
		s.logger.Info(msg, "deal_id", dealID, "payment_index", index, "reason", err.Error())
		return
	}
	s.logger.Error(msg, "deal_id", dealID, "payment_index", index, "error", err)
}

func newPaymentEvent(eventType shared.EventType, p *payment.Payment, now time.Time) *shared.LedgerEvent {
	event := shared.NewLedgerEvent(eventType, p.DealID, now)
	index := p.Index
	amount := p.Amount
	event.PaymentIndex = &index
	event.Status = string(p.Status)
	event.Amount = &amount
	if p.OriginalAmount != nil {
		original := *p.OriginalAmount
		event.OriginalAmount = &original
	}
	return event
}
