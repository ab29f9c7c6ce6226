package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mca-deal-ledger/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the audit trail collection
	AuditCollectionName = "audit_records"
)

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes makes event_id unique and supports per-deal listing
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(AuditCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("event_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "deal_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("deal_occurred_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}

// Create stores a new record after checking for duplicates.
// Returns ErrDuplicateRecord if the event was already recorded.
func (r *AuditRepository) Create(ctx context.Context, record *audit.Record) error {
	collection := r.db.Collection(AuditCollectionName)

	existing, err := r.GetByEventID(ctx, record.EventID)
	if err != nil && !errors.Is(err, audit.ErrRecordNotFound{}) {
		r.logger.Error("Failed to check for existing audit record",
			"event_id", record.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing audit record: %w", err)
	}
	if existing != nil {
		return audit.ErrDuplicateRecord{EventID: record.EventID}
	}

	if _, err := collection.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return audit.ErrDuplicateRecord{EventID: record.EventID}
		}
		r.logger.Error("Failed to create audit record",
			"event_id", record.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

// GetByEventID returns ErrRecordNotFound if the event has not been recorded
func (r *AuditRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*audit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	var record audit.Record
	err := collection.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, audit.ErrRecordNotFound{EventID: eventID}
		}
		r.logger.Error("Failed to get audit record",
			"event_id", eventID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}

	return &record, nil
}

// ListByDeal returns a page of the deal's records, newest first
func (r *AuditRepository) ListByDeal(ctx context.Context, dealID string, limit, offset int) ([]*audit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{"deal_id": dealID}, opts)
	if err != nil {
		r.logger.Error("Failed to list audit records", "deal_id", dealID, "error", err)
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*audit.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode audit records", "deal_id", dealID, "error", err)
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return records, nil
}

func (r *AuditRepository) CountByDeal(ctx context.Context, dealID string) (int64, error) {
	count, err := r.db.Collection(AuditCollectionName).CountDocuments(ctx, bson.M{"deal_id": dealID})
	if err != nil {
		r.logger.Error("Failed to count audit records", "deal_id", dealID, "error", err)
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return count, nil
}
