package repository

import (
	"context"
	"fmt"
	"time"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/infrastructure/repository/entity"
	"shopbridge-core/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDeliveryRepository implements DeliveryRepository using MongoDB
type MongoDeliveryRepository struct {
	collection *mongo.Collection
}

// NewMongoDeliveryRepository creates a new MongoDB delivery repository
func NewMongoDeliveryRepository(db *mongo.Database) ports.DeliveryRepository {
	return &MongoDeliveryRepository{
		collection: db.Collection("webhook_deliveries"),
	}
}

// Create inserts the delivery audit row
func (r *MongoDeliveryRepository) Create(ctx context.Context, delivery *domain.WebhookDelivery) error {
	doc := entity.MongoDeliveryDocFromDomain(delivery)
	if doc.ReceivedAt.IsZero() {
		doc.ReceivedAt = time.Now()
	}
	doc.UpdatedAt = doc.ReceivedAt

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create delivery record: %w", err)
	}

	return nil
}

// MarkOutcome records the dispatch result for a delivery
func (r *MongoDeliveryRepository) MarkOutcome(ctx context.Context, deliveryID string, processed bool, errMsg string) error {
	update := bson.M{"$set": bson.M{
		"processed": processed,
		"error":     errMsg,
		"updatedAt": time.Now(),
	}}

	if _, err := r.collection.UpdateByID(ctx, deliveryID, update); err != nil {
		return fmt.Errorf("failed to update delivery record: %w", err)
	}

	return nil
}

// ListUnprocessed returns unprocessed deliveries received before the given time
func (r *MongoDeliveryRepository) ListUnprocessed(ctx context.Context, before time.Time, limit int) ([]*domain.WebhookDelivery, error) {
	filter := bson.M{
		"processed":  false,
		"receivedAt": bson.M{"$lt": before},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "receivedAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed deliveries: %w", err)
	}
	defer cursor.Close(ctx)

	var deliveries []*domain.WebhookDelivery
	for cursor.Next(ctx) {
		var doc entity.MongoDeliveryDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode delivery: %w", err)
		}
		deliveries = append(deliveries, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return deliveries, nil
}

// DeleteByShopDomain removes all delivery records for a shop domain
func (r *MongoDeliveryRepository) DeleteByShopDomain(ctx context.Context, shopDomain string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"shopDomain": shopDomain}); err != nil {
		return fmt.Errorf("failed to delete delivery records: %w", err)
	}
	return nil
}
