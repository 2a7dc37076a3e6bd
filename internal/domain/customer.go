package domain

import "time"

// Customer is a shop-scoped person record referenced by zero or more orders.
// A customer may be redacted only once no non-redacted order references it;
// once PIIRedacted is true the record is never rewritten.
type Customer struct {
	ID         string `json:"id"`
	ShopID     string `json:"shop_id"`
	ExternalID int64  `json:"external_id"`

	Email          string   `json:"email,omitempty"`
	FirstName      string   `json:"first_name,omitempty"`
	LastName       string   `json:"last_name,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	DefaultAddress *Address `json:"default_address,omitempty"`

	OrdersCount int    `json:"orders_count"`
	TotalSpent  string `json:"total_spent"`

	PIIRedacted bool `json:"pii_redacted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
