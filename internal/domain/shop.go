package domain

import "time"

// Shop represents a connected merchant tenant. The domain is unique and
// immutable once created; the access token is replaced on every re-install.
type Shop struct {
	ID          string    `json:"id"`
	Domain      string    `json:"domain"`
	AccessToken string    `json:"-"`
	Scopes      []string  `json:"scopes"`
	Active      bool      `json:"active"`

	// Denormalized shop metadata, best-effort populated after OAuth.
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserShop links an application user to a shop with a role.
type UserShop struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ShopID    string    `json:"shop_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultUserRole is assigned when a user completes the OAuth flow for a shop.
const DefaultUserRole = "owner"
