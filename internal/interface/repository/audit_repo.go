package repository

import (
	"context"
	"time"

	"baggage-checkin-service/internal/domain/entity"
	"baggage-checkin-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultAuditLimit = 50

// MongoAuditRepository implements AuditRepository as an append-only collection
type MongoAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoAuditRepository creates a new audit repository and ensures its indexes
func NewMongoAuditRepository(ctx context.Context, db *mongo.Database) (repository.AuditRepository, error) {
	collection := db.Collection("baggage_audit")

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "baggageRecordId", Value: 1},
				{Key: "occurredAt", Value: -1},
			},
		},
		{
			Keys: bson.M{"reservationId": 1},
		},
	})
	if err != nil {
		return nil, translateError("create audit indexes", err)
	}

	return &MongoAuditRepository{
		collection: collection,
	}, nil
}

// Append inserts a journal entry
func (r *MongoAuditRepository) Append(ctx context.Context, entry *entity.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return translateError("append audit entry", err)
}

// ListByRecord returns the newest entries for a baggage record
func (r *MongoAuditRepository) ListByRecord(ctx context.Context, recordID uint, limit int) ([]*entity.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurredAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"baggageRecordId": recordID}, opts)
	if err != nil {
		return nil, translateError("list audit entries", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*entity.AuditEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, translateError("decode audit entries", err)
	}
	return entries, nil
}
