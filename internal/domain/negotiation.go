package domain

import "time"

// NegotiationTTL bounds the lifetime of an OAuth negotiation. A callback
// arriving after this window always fails state validation.
const NegotiationTTL = 10 * time.Minute

// Negotiation is the ephemeral server-side record pairing a random state
// nonce with the shop domain it was issued for. It is single-use: consuming
// it removes it atomically, so a replayed callback never validates twice.
type Negotiation struct {
	State     string    `json:"state"`
	Shop      string    `json:"shop"`
	UserID    string    `json:"user_id"`
	Scopes    []string  `json:"scopes"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntry records a compliance or retention action for later review.
type AuditEntry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	ShopDomain string    `json:"shop_domain"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

// Audit entry kinds written by the compliance handler.
const (
	AuditDataRequest     = "data_request"
	AuditCustomerErasure = "customer_erasure"
	AuditShopErasure     = "shop_erasure"
)
