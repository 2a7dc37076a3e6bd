package ports

import (
	"context"
	"net/url"

	"shopbridge-core/internal/domain"
)

// WebhookVerifier authenticates an inbound webhook body against its
// base64-encoded HMAC header.
type WebhookVerifier interface {
	VerifyWebhook(rawBody []byte, signature string) bool
}

// CallbackVerifier authenticates an OAuth callback's query parameters
// against their hex-encoded HMAC parameter.
type CallbackVerifier interface {
	VerifyCallback(query url.Values) bool
}

// ShopMetadata is the denormalized shop information fetched from the
// platform after a successful token exchange.
type ShopMetadata struct {
	Name     string
	Currency string
	Timezone string
}

// PlatformClient defines the outbound operations against the commerce
// platform's API.
type PlatformClient interface {
	// AuthorizeURL builds the provider authorization endpoint URL for a shop.
	AuthorizeURL(shop string, state string) string

	// ExchangeToken posts the authorization code to the token endpoint and
	// returns the durable access token.
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)

	// GetShopMetadata fetches shop details using a fresh access token.
	GetShopMetadata(ctx context.Context, shop string, accessToken string) (*ShopMetadata, error)

	// RegisterWebhooks subscribes the application's ingest endpoint to the
	// given topics on the shop.
	RegisterWebhooks(ctx context.Context, shop string, accessToken string, topics []string) error
}

// NegotiationStore holds OAuth negotiation state server-side for a bounded
// lifetime. Consume is atomic: the first caller gets the record, every later
// caller gets nil.
type NegotiationStore interface {
	Save(ctx context.Context, n *domain.Negotiation) error
	Consume(ctx context.Context, state string) (*domain.Negotiation, error)
}

// SyncTrigger starts the asynchronous initial data sync for a newly linked
// shop. Implementations own their error handling; callers fire and forget.
type SyncTrigger interface {
	TriggerInitialSync(shopDomain string)
}
