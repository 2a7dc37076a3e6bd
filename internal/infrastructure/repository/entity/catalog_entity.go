package entity

import (
	"time"

	"shopbridge-core/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoProductDoc represents a catalog product in MongoDB
type MongoProductDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ShopID      string             `bson:"shopId"`
	ExternalID  int64              `bson:"externalId"`
	Title       string             `bson:"title"`
	Handle      string             `bson:"handle"`
	Vendor      string             `bson:"vendor"`
	ProductType string             `bson:"productType"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *MongoProductDoc) ToDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID.Hex(),
		ShopID:      d.ShopID,
		ExternalID:  d.ExternalID,
		Title:       d.Title,
		Handle:      d.Handle,
		Vendor:      d.Vendor,
		ProductType: d.ProductType,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func MongoProductDocFromDomain(p *domain.Product) *MongoProductDoc {
	return &MongoProductDoc{
		ShopID:      p.ShopID,
		ExternalID:  p.ExternalID,
		Title:       p.Title,
		Handle:      p.Handle,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// MongoInventoryDoc represents an inventory level in MongoDB
type MongoInventoryDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ShopID          string             `bson:"shopId"`
	InventoryItemID int64              `bson:"inventoryItemId"`
	LocationID      int64              `bson:"locationId"`
	Available       int                `bson:"available"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (d *MongoInventoryDoc) ToDomain() *domain.InventoryLevel {
	return &domain.InventoryLevel{
		ID:              d.ID.Hex(),
		ShopID:          d.ShopID,
		InventoryItemID: d.InventoryItemID,
		LocationID:      d.LocationID,
		Available:       d.Available,
		UpdatedAt:       d.UpdatedAt,
	}
}

func MongoInventoryDocFromDomain(l *domain.InventoryLevel) *MongoInventoryDoc {
	return &MongoInventoryDoc{
		ShopID:          l.ShopID,
		InventoryItemID: l.InventoryItemID,
		LocationID:      l.LocationID,
		Available:       l.Available,
		UpdatedAt:       l.UpdatedAt,
	}
}
