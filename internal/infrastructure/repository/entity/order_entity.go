package entity

import (
	"time"

	"shopbridge-core/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoAddressDoc represents a postal address in MongoDB
type MongoAddressDoc struct {
	FirstName    string `bson:"firstName,omitempty"`
	LastName     string `bson:"lastName,omitempty"`
	Company      string `bson:"company,omitempty"`
	Address1     string `bson:"address1,omitempty"`
	Address2     string `bson:"address2,omitempty"`
	Phone        string `bson:"phone,omitempty"`
	Zip          string `bson:"zip,omitempty"`
	City         string `bson:"city,omitempty"`
	Province     string `bson:"province,omitempty"`
	ProvinceCode string `bson:"provinceCode,omitempty"`
	Country      string `bson:"country,omitempty"`
	CountryCode  string `bson:"countryCode,omitempty"`
}

// ToDomain converts the MongoDB document to a domain value
func (d *MongoAddressDoc) ToDomain() *domain.Address {
	if d == nil {
		return nil
	}
	return &domain.Address{
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Company:      d.Company,
		Address1:     d.Address1,
		Address2:     d.Address2,
		Phone:        d.Phone,
		Zip:          d.Zip,
		City:         d.City,
		Province:     d.Province,
		ProvinceCode: d.ProvinceCode,
		Country:      d.Country,
		CountryCode:  d.CountryCode,
	}
}

// MongoAddressDocFromDomain converts a domain value to a MongoDB document
func MongoAddressDocFromDomain(a *domain.Address) *MongoAddressDoc {
	if a == nil {
		return nil
	}
	return &MongoAddressDoc{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Company:      a.Company,
		Address1:     a.Address1,
		Address2:     a.Address2,
		Phone:        a.Phone,
		Zip:          a.Zip,
		City:         a.City,
		Province:     a.Province,
		ProvinceCode: a.ProvinceCode,
		Country:      a.Country,
		CountryCode:  a.CountryCode,
	}
}

// MongoLineItemDoc represents an order line item in MongoDB
type MongoLineItemDoc struct {
	ExternalID int64  `bson:"externalId"`
	Title      string `bson:"title"`
	SKU        string `bson:"sku"`
	Quantity   int    `bson:"quantity"`
	Price      string `bson:"price"`
}

// MongoOrderDoc represents an order in MongoDB
type MongoOrderDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ShopID     string             `bson:"shopId"`
	ExternalID int64              `bson:"externalId"`

	OrderNumber       int                `bson:"orderNumber"`
	Name              string             `bson:"name"`
	FinancialStatus   string             `bson:"financialStatus"`
	FulfillmentStatus string             `bson:"fulfillmentStatus"`
	TotalPrice        string             `bson:"totalPrice"`
	Currency          string             `bson:"currency"`
	LineItems         []MongoLineItemDoc `bson:"lineItems"`
	Latitude          float64            `bson:"latitude"`
	Longitude         float64            `bson:"longitude"`
	Tags              string             `bson:"tags"`
	DiscountCodes     []string           `bson:"discountCodes"`

	Email              string           `bson:"email"`
	ShippingAddress    *MongoAddressDoc `bson:"shippingAddress"`
	BillingAddress     *MongoAddressDoc `bson:"billingAddress"`
	Note               string           `bson:"note"`
	CustomerExternalID int64            `bson:"customerExternalId"`

	PIIRedacted bool `bson:"piiRedacted"`

	PlacedAt  time.Time `bson:"placedAt"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoOrderDoc) ToDomain() *domain.Order {
	items := make([]domain.LineItem, 0, len(d.LineItems))
	for _, li := range d.LineItems {
		items = append(items, domain.LineItem{
			ExternalID: li.ExternalID,
			Title:      li.Title,
			SKU:        li.SKU,
			Quantity:   li.Quantity,
			Price:      li.Price,
		})
	}

	return &domain.Order{
		ID:                 d.ID.Hex(),
		ShopID:             d.ShopID,
		ExternalID:         d.ExternalID,
		OrderNumber:        d.OrderNumber,
		Name:               d.Name,
		FinancialStatus:    d.FinancialStatus,
		FulfillmentStatus:  d.FulfillmentStatus,
		TotalPrice:         d.TotalPrice,
		Currency:           d.Currency,
		LineItems:          items,
		Latitude:           d.Latitude,
		Longitude:          d.Longitude,
		Tags:               d.Tags,
		DiscountCodes:      d.DiscountCodes,
		Email:              d.Email,
		ShippingAddress:    d.ShippingAddress.ToDomain(),
		BillingAddress:     d.BillingAddress.ToDomain(),
		Note:               d.Note,
		CustomerExternalID: d.CustomerExternalID,
		PIIRedacted:        d.PIIRedacted,
		PlacedAt:           d.PlacedAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// MongoOrderDocFromDomain converts a domain entity to a MongoDB document
func MongoOrderDocFromDomain(order *domain.Order) *MongoOrderDoc {
	items := make([]MongoLineItemDoc, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		items = append(items, MongoLineItemDoc{
			ExternalID: li.ExternalID,
			Title:      li.Title,
			SKU:        li.SKU,
			Quantity:   li.Quantity,
			Price:      li.Price,
		})
	}

	doc := &MongoOrderDoc{
		ShopID:             order.ShopID,
		ExternalID:         order.ExternalID,
		OrderNumber:        order.OrderNumber,
		Name:               order.Name,
		FinancialStatus:    order.FinancialStatus,
		FulfillmentStatus:  order.FulfillmentStatus,
		TotalPrice:         order.TotalPrice,
		Currency:           order.Currency,
		LineItems:          items,
		Latitude:           order.Latitude,
		Longitude:          order.Longitude,
		Tags:               order.Tags,
		DiscountCodes:      order.DiscountCodes,
		Email:              order.Email,
		ShippingAddress:    MongoAddressDocFromDomain(order.ShippingAddress),
		BillingAddress:     MongoAddressDocFromDomain(order.BillingAddress),
		Note:               order.Note,
		CustomerExternalID: order.CustomerExternalID,
		PIIRedacted:        order.PIIRedacted,
		PlacedAt:           order.PlacedAt,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}

	if order.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(order.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
