package repository

import (
	"context"
	"fmt"
	"time"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAuditRepository implements AuditRepository using MongoDB
type MongoAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoAuditRepository creates a new MongoDB audit repository
func NewMongoAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &MongoAuditRepository{
		collection: db.Collection("audit_log"),
	}
}

// Append inserts an audit entry
func (r *MongoAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	doc := bson.M{
		"_id":        entry.ID,
		"kind":       entry.Kind,
		"shopDomain": entry.ShopDomain,
		"detail":     entry.Detail,
		"createdAt":  entry.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// MongoUserShopRepository implements UserShopRepository using MongoDB
type MongoUserShopRepository struct {
	collection *mongo.Collection
}

// NewMongoUserShopRepository creates a new MongoDB user-shop link repository
func NewMongoUserShopRepository(db *mongo.Database) ports.UserShopRepository {
	return &MongoUserShopRepository{
		collection: db.Collection("user_shops"),
	}
}

// Link upserts a user-shop association with the given role
func (r *MongoUserShopRepository) Link(ctx context.Context, userID, shopID, role string) error {
	filter := bson.M{"userId": userID, "shopId": shopID}
	update := bson.M{
		"$set": bson.M{"role": role},
		"$setOnInsert": bson.M{
			"userId":    userID,
			"shopId":    shopID,
			"createdAt": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to link user to shop: %w", err)
	}

	return nil
}

// DeleteByShop removes all user links for a shop
func (r *MongoUserShopRepository) DeleteByShop(ctx context.Context, shopID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"shopId": shopID}); err != nil {
		return fmt.Errorf("failed to delete user links: %w", err)
	}
	return nil
}
