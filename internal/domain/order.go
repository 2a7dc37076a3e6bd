package domain

import "time"

// Address is a postal address as delivered by the platform. When an order is
// redacted the shipping address is reduced to its geographic fields only.
type Address struct {
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Company      string `json:"company,omitempty"`
	Address1     string `json:"address1,omitempty"`
	Address2     string `json:"address2,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Zip          string `json:"zip,omitempty"`
	City         string `json:"city,omitempty"`
	Province     string `json:"province,omitempty"`
	ProvinceCode string `json:"province_code,omitempty"`
	Country      string `json:"country,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
}

// Minimize returns the geographic-only projection of the address. Everything
// that can identify a person is dropped; city/province/country survive for
// display and analytics.
func (a Address) Minimize() Address {
	return Address{
		City:         a.City,
		Province:     a.Province,
		ProvinceCode: a.ProvinceCode,
		Country:      a.Country,
		CountryCode:  a.CountryCode,
	}
}

// LineItem is a single purchased item on an order. Line items carry no PII
// and are retained forever.
type LineItem struct {
	ExternalID int64  `json:"external_id"`
	Title      string `json:"title"`
	SKU        string `json:"sku"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
}

// Order is a shop-scoped commercial transaction. Fields are split between
// analytic data retained forever and PII that is scrubbed once the order
// falls outside the retention window. PIIRedacted is never reset to false.
type Order struct {
	ID         string `json:"id"`
	ShopID     string `json:"shop_id"`
	ExternalID int64  `json:"external_id"`

	// Retained forever.
	OrderNumber       int        `json:"order_number"`
	Name              string     `json:"name"`
	FinancialStatus   string     `json:"financial_status"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	TotalPrice        string     `json:"total_price"`
	Currency          string     `json:"currency"`
	LineItems         []LineItem `json:"line_items"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	Tags              string     `json:"tags"`
	DiscountCodes     []string   `json:"discount_codes"`

	// PII, nulled on redaction. The shipping address is kept in minimized
	// geographic form rather than dropped outright.
	Email              string   `json:"email,omitempty"`
	ShippingAddress    *Address `json:"shipping_address,omitempty"`
	BillingAddress     *Address `json:"billing_address,omitempty"`
	Note               string   `json:"note,omitempty"`
	CustomerExternalID int64    `json:"customer_external_id,omitempty"`

	PIIRedacted bool `json:"pii_redacted"`

	PlacedAt  time.Time `json:"placed_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
