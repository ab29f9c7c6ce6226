package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mca-deal-ledger/internal/domain/payment"
	"github.com/mca-deal-ledger/internal/domain/shared"
)

const (
	// PaymentsCollectionName holds one document per (deal_id, index)
	PaymentsCollectionName = "payments"

	// maxUpdateAttempts bounds optimistic-lock retries in Update
	maxUpdateAttempts = 3
)

// paymentDocument is the stored form of a payment; money is kept in cents
type paymentDocument struct {
	DealID              string    `bson:"deal_id"`
	Index               int       `bson:"index"`
	Date                time.Time `bson:"date"`
	AmountCents         int64     `bson:"amount_cents"`
	Status              string    `bson:"status"`
	OriginalAmountCents *int64    `bson:"original_amount_cents,omitempty"`
	ModificationNote    string    `bson:"modification_note,omitempty"`
	Version             int       `bson:"version"`
	UpdatedAt           time.Time `bson:"updated_at"`
}

func toPaymentDocument(p *payment.Payment) paymentDocument {
	doc := paymentDocument{
		DealID:           p.DealID,
		Index:            p.Index,
		Date:             p.Date,
		AmountCents:      shared.ToCents(p.Amount),
		Status:           string(p.Status),
		ModificationNote: p.ModificationNote,
		Version:          p.Version,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.OriginalAmount != nil {
		cents := shared.ToCents(*p.OriginalAmount)
		doc.OriginalAmountCents = &cents
	}
	return doc
}

func (d paymentDocument) toPayment() *payment.Payment {
	p := &payment.Payment{
		DealID:           d.DealID,
		Index:            d.Index,
		Date:             d.Date.UTC(),
		Amount:           shared.FromCents(d.AmountCents),
		Status:           payment.Status(d.Status),
		ModificationNote: d.ModificationNote,
		Version:          d.Version,
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
	if d.OriginalAmountCents != nil {
		original := shared.FromCents(*d.OriginalAmountCents)
		p.OriginalAmount = &original
	}
	return p
}

// PaymentRepository implements payment.Repository for MongoDB
type PaymentRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPaymentRepository creates a new MongoDB payment ledger
func NewPaymentRepository(logger *slog.Logger, db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PaymentRepository) collection() *mongo.Collection {
	return r.db.Collection(PaymentsCollectionName)
}

// EnsureIndexes creates the unique (deal_id, index) key and the status index
func (r *PaymentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "deal_id", Value: 1}, {Key: "index", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("deal_index_unique"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}
	return nil
}

// CreateSchedule inserts every payment of a new deal. Returns ErrDuplicateLedger if
// the deal already has a schedule.
func (r *PaymentRepository) CreateSchedule(ctx context.Context, dealID string, schedule []*payment.Payment) error {
	existing, err := r.collection().CountDocuments(ctx, bson.M{"deal_id": dealID})
	if err != nil {
		r.logger.Error("Failed to check for existing ledger", "deal_id", dealID, "error", err)
		return fmt.Errorf("failed to check for existing ledger: %w", err)
	}
	if existing > 0 {
		return payment.ErrDuplicateLedger{DealID: dealID}
	}

	docs := make([]interface{}, len(schedule))
	for i, p := range schedule {
		docs[i] = toPaymentDocument(p)
	}

	if _, err := r.collection().InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return payment.ErrDuplicateLedger{DealID: dealID}
		}
		r.logger.Error("Failed to create payment schedule", "deal_id", dealID, "error", err)
		return fmt.Errorf("failed to create payment schedule: %w", err)
	}

	return nil
}

// ListByDeal returns the deal's payments sorted by index
func (r *PaymentRepository) ListByDeal(ctx context.Context, dealID string) ([]*payment.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "index", Value: 1}})
	payments, err := r.find(ctx, bson.M{"deal_id": dealID}, opts)
	if err != nil {
		r.logger.Error("Failed to list payments", "deal_id", dealID, "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if len(payments) == 0 {
		return nil, payment.ErrLedgerNotFound{DealID: dealID}
	}
	return payments, nil
}

// Get distinguishes a missing ledger from an out-of-range index
func (r *PaymentRepository) Get(ctx context.Context, dealID string, index int) (*payment.Payment, error) {
	var doc paymentDocument
	err := r.collection().FindOne(ctx, bson.M{"deal_id": dealID, "index": index}).Decode(&doc)
	if err == nil {
		return doc.toPayment(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Failed to get payment", "deal_id", dealID, "index", index, "error", err)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	count, err := r.collection().CountDocuments(ctx, bson.M{"deal_id": dealID})
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger: %w", err)
	}
	if count == 0 {
		return nil, payment.ErrLedgerNotFound{DealID: dealID}
	}
	return nil, payment.ErrPaymentNotFound{DealID: dealID, Index: index}
}

// Update reads the payment, applies fn and writes it back guarded by the stored
// version. A lost race is retried from a fresh read.
func (r *PaymentRepository) Update(ctx context.Context, dealID string, index int, fn payment.MutateFunc) (*payment.Payment, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		current, err := r.Get(ctx, dealID, index)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}

		doc := toPaymentDocument(next)
		set := bson.M{
			"amount_cents":      doc.AmountCents,
			"status":            doc.Status,
			"modification_note": doc.ModificationNote,
			"version":           doc.Version,
			"updated_at":        doc.UpdatedAt,
		}
		if doc.OriginalAmountCents != nil {
			set["original_amount_cents"] = *doc.OriginalAmountCents
		}

		filter := bson.M{"deal_id": dealID, "index": index, "version": current.Version}
		result, err := r.collection().UpdateOne(ctx, filter, bson.M{"$set": set})
		if err != nil {
			r.logger.Error("Failed to update payment", "deal_id", dealID, "index", index, "error", err)
			return nil, fmt.Errorf("failed to update payment: %w", err)
		}
		if result.MatchedCount == 1 {
			return next, nil
		}

		r.logger.Warn("Payment changed concurrently, retrying",
			"deal_id", dealID, "index", index, "attempt", attempt)
	}

	return nil, payment.ErrConcurrentModification{DealID: dealID, Index: index}
}

// ListByStatus returns matching payments across all deals
func (r *PaymentRepository) ListByStatus(ctx context.Context, statuses ...payment.Status) ([]*payment.Payment, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	opts := options.Find().SetSort(bson.D{{Key: "deal_id", Value: 1}, {Key: "index", Value: 1}})
	payments, err := r.find(ctx, bson.M{"status": bson.M{"$in": values}}, opts)
	if err != nil {
		r.logger.Error("Failed to list payments by status", "statuses", values, "error", err)
		return nil, fmt.Errorf("failed to list payments by status: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*payment.Payment, error) {
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []paymentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	payments := make([]*payment.Payment, len(docs))
	for i, d := range docs {
		payments[i] = d.toPayment()
	}
	return payments, nil
}
