package entity

import (
	"time"

	"shopbridge-core/internal/domain"
)

// MongoDeliveryDoc represents a webhook delivery audit row in MongoDB.
// Delivery ids are assigned by the application (uuid), not by Mongo.
type MongoDeliveryDoc struct {
	ID         string    `bson:"_id"`
	ShopDomain string    `bson:"shopDomain"`
	Topic      string    `bson:"topic"`
	WebhookID  string    `bson:"webhookId"`
	Payload    []byte    `bson:"payload"`
	Processed  bool      `bson:"processed"`
	Error      string    `bson:"error,omitempty"`
	ReceivedAt time.Time `bson:"receivedAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoDeliveryDoc) ToDomain() *domain.WebhookDelivery {
	return &domain.WebhookDelivery{
		ID:         d.ID,
		ShopDomain: d.ShopDomain,
		Topic:      d.Topic,
		WebhookID:  d.WebhookID,
		Payload:    d.Payload,
		Processed:  d.Processed,
		Error:      d.Error,
		ReceivedAt: d.ReceivedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MongoDeliveryDocFromDomain converts a domain entity to a MongoDB document
func MongoDeliveryDocFromDomain(delivery *domain.WebhookDelivery) *MongoDeliveryDoc {
	return &MongoDeliveryDoc{
		ID:         delivery.ID,
		ShopDomain: delivery.ShopDomain,
		Topic:      delivery.Topic,
		WebhookID:  delivery.WebhookID,
		Payload:    delivery.Payload,
		Processed:  delivery.Processed,
		Error:      delivery.Error,
		ReceivedAt: delivery.ReceivedAt,
		UpdatedAt:  delivery.UpdatedAt,
	}
}
