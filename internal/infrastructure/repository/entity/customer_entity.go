package entity

import (
	"time"

	"shopbridge-core/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoCustomerDoc represents a customer in MongoDB
type MongoCustomerDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ShopID     string             `bson:"shopId"`
	ExternalID int64              `bson:"externalId"`

	Email          string           `bson:"email"`
	FirstName      string           `bson:"firstName"`
	LastName       string           `bson:"lastName"`
	Phone          string           `bson:"phone"`
	DefaultAddress *MongoAddressDoc `bson:"defaultAddress"`

	OrdersCount int    `bson:"ordersCount"`
	TotalSpent  string `bson:"totalSpent"`

	PIIRedacted bool `bson:"piiRedacted"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoCustomerDoc) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:             d.ID.Hex(),
		ShopID:         d.ShopID,
		ExternalID:     d.ExternalID,
		Email:          d.Email,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Phone:          d.Phone,
		DefaultAddress: d.DefaultAddress.ToDomain(),
		OrdersCount:    d.OrdersCount,
		TotalSpent:     d.TotalSpent,
		PIIRedacted:    d.PIIRedacted,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// MongoCustomerDocFromDomain converts a domain entity to a MongoDB document
func MongoCustomerDocFromDomain(customer *domain.Customer) *MongoCustomerDoc {
	doc := &MongoCustomerDoc{
		ShopID:         customer.ShopID,
		ExternalID:     customer.ExternalID,
		Email:          customer.Email,
		FirstName:      customer.FirstName,
		LastName:       customer.LastName,
		Phone:          customer.Phone,
		DefaultAddress: MongoAddressDocFromDomain(customer.DefaultAddress),
		OrdersCount:    customer.OrdersCount,
		TotalSpent:     customer.TotalSpent,
		PIIRedacted:    customer.PIIRedacted,
		CreatedAt:      customer.CreatedAt,
		UpdatedAt:      customer.UpdatedAt,
	}

	if customer.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(customer.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
