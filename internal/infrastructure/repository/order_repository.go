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

// MongoOrderRepository implements OrderRepository using MongoDB
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new MongoDB order repository
func NewMongoOrderRepository(db *mongo.Database) ports.OrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

// UpsertByExternalID saves or updates an order keyed by (shopId, externalId).
// Webhook deliveries for the same order may interleave; an upsert keeps the
// write idempotent. PII fields of an already-redacted order are never
// rewritten: the redacted flag wins.
func (r *MongoOrderRepository) UpsertByExternalID(ctx context.Context, order *domain.Order) error {
	doc := entity.MongoOrderDocFromDomain(order)
	doc.UpdatedAt = time.Now()

	filter := bson.M{"shopId": order.ShopID, "externalId": order.ExternalID}

	set := bson.M{
		"orderNumber":       doc.OrderNumber,
		"name":              doc.Name,
		"financialStatus":   doc.FinancialStatus,
		"fulfillmentStatus": doc.FulfillmentStatus,
		"totalPrice":        doc.TotalPrice,
		"currency":          doc.Currency,
		"lineItems":         doc.LineItems,
		"latitude":          doc.Latitude,
		"longitude":         doc.Longitude,
		"tags":              doc.Tags,
		"discountCodes":     doc.DiscountCodes,
		"updatedAt":         doc.UpdatedAt,
	}

	// Only write PII when the stored record is not redacted. The filter on
	// piiRedacted keeps a late webhook from resurrecting scrubbed fields.
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"shopId":      doc.ShopID,
			"externalId":  doc.ExternalID,
			"piiRedacted": false,
			"placedAt":    doc.PlacedAt,
			"createdAt":   time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	piiFilter := bson.M{"shopId": order.ShopID, "externalId": order.ExternalID, "piiRedacted": false}
	piiUpdate := bson.M{"$set": bson.M{
		"email":              doc.Email,
		"shippingAddress":    doc.ShippingAddress,
		"billingAddress":     doc.BillingAddress,
		"note":               doc.Note,
		"customerExternalId": doc.CustomerExternalID,
	}}
	if _, err := r.collection.UpdateOne(ctx, piiFilter, piiUpdate); err != nil {
		return fmt.Errorf("failed to save order pii fields: %w", err)
	}

	return nil
}

// NthRecentPlacedAt returns the placed-at time of the nth most recent order
func (r *MongoOrderRepository) NthRecentPlacedAt(ctx context.Context, shopID string, n int) (time.Time, bool, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "placedAt", Value: -1}}).
		SetSkip(int64(n - 1)).
		SetProjection(bson.M{"placedAt": 1})

	var doc struct {
		PlacedAt time.Time `bson:"placedAt"`
	}
	err := r.collection.FindOne(ctx, bson.M{"shopId": shopID}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to find cutoff order: %w", err)
	}

	return doc.PlacedAt, true, nil
}

// ListUnredactedBefore fetches non-redacted orders older than cutoff, oldest first
func (r *MongoOrderRepository) ListUnredactedBefore(ctx context.Context, shopID string, cutoff time.Time, limit int) ([]*domain.Order, error) {
	filter := bson.M{
		"shopId":      shopID,
		"piiRedacted": false,
		"placedAt":    bson.M{"$lt": cutoff},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "placedAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	for cursor.Next(ctx) {
		var doc entity.MongoOrderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return orders, nil
}

// Redact nulls the order's PII and stores the minimized shipping address
func (r *MongoOrderRepository) Redact(ctx context.Context, orderID string, shipping *domain.Address) error {
	objID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return fmt.Errorf("invalid order id: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"email":           "",
		"billingAddress":  nil,
		"note":            "",
		"shippingAddress": entity.MongoAddressDocFromDomain(shipping),
		"piiRedacted":     true,
		"updatedAt":       time.Now(),
	}}

	if _, err := r.collection.UpdateByID(ctx, objID, update); err != nil {
		return fmt.Errorf("failed to redact order: %w", err)
	}

	return nil
}

// CountUnredactedByCustomer counts non-redacted orders for a customer
func (r *MongoOrderRepository) CountUnredactedByCustomer(ctx context.Context, shopID string, customerExternalID int64) (int64, error) {
	filter := bson.M{
		"shopId":             shopID,
		"customerExternalId": customerExternalID,
		"piiRedacted":        false,
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count customer orders: %w", err)
	}
	return count, nil
}

// DeleteByShop removes all orders for a shop
func (r *MongoOrderRepository) DeleteByShop(ctx context.Context, shopID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"shopId": shopID}); err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	return nil
}
