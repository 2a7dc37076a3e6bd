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

// MongoCustomerRepository implements CustomerRepository using MongoDB
type MongoCustomerRepository struct {
	collection *mongo.Collection
}

// NewMongoCustomerRepository creates a new MongoDB customer repository
func NewMongoCustomerRepository(db *mongo.Database) ports.CustomerRepository {
	return &MongoCustomerRepository{
		collection: db.Collection("customers"),
	}
}

// UpsertByExternalID saves or updates a customer keyed by (shopId, externalId).
// As with orders, PII writes are guarded by the redacted flag.
func (r *MongoCustomerRepository) UpsertByExternalID(ctx context.Context, customer *domain.Customer) error {
	doc := entity.MongoCustomerDocFromDomain(customer)
	doc.UpdatedAt = time.Now()

	filter := bson.M{"shopId": customer.ShopID, "externalId": customer.ExternalID}
	update := bson.M{
		"$set": bson.M{
			"ordersCount": doc.OrdersCount,
			"totalSpent":  doc.TotalSpent,
			"updatedAt":   doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"shopId":      doc.ShopID,
			"externalId":  doc.ExternalID,
			"piiRedacted": false,
			"createdAt":   time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}

	piiFilter := bson.M{"shopId": customer.ShopID, "externalId": customer.ExternalID, "piiRedacted": false}
	piiUpdate := bson.M{"$set": bson.M{
		"email":          doc.Email,
		"firstName":      doc.FirstName,
		"lastName":       doc.LastName,
		"phone":          doc.Phone,
		"defaultAddress": doc.DefaultAddress,
	}}
	if _, err := r.collection.UpdateOne(ctx, piiFilter, piiUpdate); err != nil {
		return fmt.Errorf("failed to save customer pii fields: %w", err)
	}

	return nil
}

// GetByExternalID retrieves a customer by external id within a shop
func (r *MongoCustomerRepository) GetByExternalID(ctx context.Context, shopID string, externalID int64) (*domain.Customer, error) {
	var doc entity.MongoCustomerDoc
	filter := bson.M{"shopId": shopID, "externalId": externalID}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return doc.ToDomain(), nil
}

// Redact nulls the customer's PII fields. The piiRedacted filter makes the
// write a no-op for already-redacted customers.
func (r *MongoCustomerRepository) Redact(ctx context.Context, shopID string, externalID int64) error {
	filter := bson.M{"shopId": shopID, "externalId": externalID, "piiRedacted": false}
	update := bson.M{"$set": bson.M{
		"email":          "",
		"firstName":      "",
		"lastName":       "",
		"phone":          "",
		"defaultAddress": nil,
		"piiRedacted":    true,
		"updatedAt":      time.Now(),
	}}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to redact customer: %w", err)
	}

	return nil
}

// DeleteByExternalID removes customers matching the external id within a shop
func (r *MongoCustomerRepository) DeleteByExternalID(ctx context.Context, shopID string, externalID int64) (int64, error) {
	filter := bson.M{"shopId": shopID, "externalId": externalID}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete customer: %w", err)
	}
	return result.DeletedCount, nil
}

// DeleteByShop removes all customers for a shop
func (r *MongoCustomerRepository) DeleteByShop(ctx context.Context, shopID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"shopId": shopID}); err != nil {
		return fmt.Errorf("failed to delete customers: %w", err)
	}
	return nil
}
