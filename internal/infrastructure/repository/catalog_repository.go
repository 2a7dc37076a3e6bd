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

// MongoCatalogRepository implements CatalogRepository using MongoDB
type MongoCatalogRepository struct {
	productsCollection  *mongo.Collection
	inventoryCollection *mongo.Collection
}

// NewMongoCatalogRepository creates a new MongoDB catalog repository
func NewMongoCatalogRepository(db *mongo.Database) ports.CatalogRepository {
	return &MongoCatalogRepository{
		productsCollection:  db.Collection("products"),
		inventoryCollection: db.Collection("inventory_levels"),
	}
}

// UpsertProduct saves or updates a product keyed by (shopId, externalId)
func (r *MongoCatalogRepository) UpsertProduct(ctx context.Context, product *domain.Product) error {
	doc := entity.MongoProductDocFromDomain(product)
	doc.UpdatedAt = time.Now()

	filter := bson.M{"shopId": product.ShopID, "externalId": product.ExternalID}
	update := bson.M{
		"$set": bson.M{
			"title":       doc.Title,
			"handle":      doc.Handle,
			"vendor":      doc.Vendor,
			"productType": doc.ProductType,
			"status":      doc.Status,
			"updatedAt":   doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"shopId":     doc.ShopID,
			"externalId": doc.ExternalID,
			"createdAt":  time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.productsCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}

// DeleteProduct removes a product by external id within a shop
func (r *MongoCatalogRepository) DeleteProduct(ctx context.Context, shopID string, externalID int64) error {
	filter := bson.M{"shopId": shopID, "externalId": externalID}
	if _, err := r.productsCollection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// DeleteProductsByShop removes all products for a shop
func (r *MongoCatalogRepository) DeleteProductsByShop(ctx context.Context, shopID string) error {
	if _, err := r.productsCollection.DeleteMany(ctx, bson.M{"shopId": shopID}); err != nil {
		return fmt.Errorf("failed to delete products: %w", err)
	}
	return nil
}

// UpsertInventoryLevel saves or updates an inventory level keyed by
// (shopId, inventoryItemId, locationId)
func (r *MongoCatalogRepository) UpsertInventoryLevel(ctx context.Context, level *domain.InventoryLevel) error {
	doc := entity.MongoInventoryDocFromDomain(level)
	doc.UpdatedAt = time.Now()

	filter := bson.M{
		"shopId":          level.ShopID,
		"inventoryItemId": level.InventoryItemID,
		"locationId":      level.LocationID,
	}
	update := bson.M{"$set": bson.M{
		"available": doc.Available,
		"updatedAt": doc.UpdatedAt,
	}}

	opts := options.Update().SetUpsert(true)
	if _, err := r.inventoryCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save inventory level: %w", err)
	}

	return nil
}

// DeleteInventoryByShop removes all inventory levels for a shop
func (r *MongoCatalogRepository) DeleteInventoryByShop(ctx context.Context, shopID string) error {
	if _, err := r.inventoryCollection.DeleteMany(ctx, bson.M{"shopId": shopID}); err != nil {
		return fmt.Errorf("failed to delete inventory levels: %w", err)
	}
	return nil
}
