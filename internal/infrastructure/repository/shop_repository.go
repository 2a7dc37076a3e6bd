package repository

import (
	"context"
	"fmt"
	"time"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/infrastructure/repository/entity"
	"shopbridge-core/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoShopRepository implements ShopRepository using MongoDB
type MongoShopRepository struct {
	collection *mongo.Collection
}

// NewMongoShopRepository creates a new MongoDB shop repository
func NewMongoShopRepository(db *mongo.Database) ports.ShopRepository {
	return &MongoShopRepository{
		collection: db.Collection("shops"),
	}
}

// UpsertByDomain saves or updates a shop keyed by domain
func (r *MongoShopRepository) UpsertByDomain(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	doc := entity.MongoShopDocFromDomain(shop)
	doc.UpdatedAt = time.Now()

	filter := bson.M{"domain": shop.Domain}
	update := bson.M{
		"$set": bson.M{
			"accessToken": doc.AccessToken,
			"scopes":      doc.Scopes,
			"active":      doc.Active,
			"name":        doc.Name,
			"currency":    doc.Currency,
			"timezone":    doc.Timezone,
			"updatedAt":   doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"domain":    doc.Domain,
			"createdAt": time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored entity.MongoShopDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}

	return stored.ToDomain(), nil
}

// GetByDomain retrieves a shop by domain
func (r *MongoShopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var doc entity.MongoShopDoc
	filter := bson.M{"domain": shopDomain}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	return doc.ToDomain(), nil
}

// ListActive retrieves all active shops
func (r *MongoShopRepository) ListActive(ctx context.Context) ([]*domain.Shop, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer cursor.Close(ctx)

	var shops []*domain.Shop
	for cursor.Next(ctx) {
		var doc entity.MongoShopDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode shop: %w", err)
		}
		shops = append(shops, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return shops, nil
}

// Deactivate marks a shop uninstalled and clears its credential
func (r *MongoShopRepository) Deactivate(ctx context.Context, shopDomain string) error {
	filter := bson.M{"domain": shopDomain}
	update := bson.M{"$set": bson.M{
		"active":      false,
		"accessToken": "",
		"updatedAt":   time.Now(),
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate shop: %w", err)
	}

	return nil
}

// Delete removes the shop record entirely
func (r *MongoShopRepository) Delete(ctx context.Context, shopID string) error {
	objID, err := primitive.ObjectIDFromHex(shopID)
	if err != nil {
		return fmt.Errorf("invalid shop id: %w", err)
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}

	return nil
}
