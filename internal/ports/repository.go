package ports

import (
	"context"
	"time"

	"shopbridge-core/internal/domain"
)

// ShopRepository defines the interface for shop persistence
type ShopRepository interface {
	// UpsertByDomain saves or updates a shop keyed by its domain and returns
	// the stored record with its id populated.
	UpsertByDomain(ctx context.Context, shop *domain.Shop) (*domain.Shop, error)

	// GetByDomain retrieves a shop by domain, returning nil when absent.
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)

	// ListActive retrieves all shops with active status.
	ListActive(ctx context.Context) ([]*domain.Shop, error)

	// Deactivate marks a shop uninstalled and clears its access token.
	Deactivate(ctx context.Context, shopDomain string) error

	// Delete removes the shop record entirely. Used only by shop erasure.
	Delete(ctx context.Context, shopID string) error
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// UpsertByExternalID saves or updates an order keyed by (shopID, externalID).
	UpsertByExternalID(ctx context.Context, order *domain.Order) error

	// NthRecentPlacedAt returns the placed-at time of the nth most recent
	// order (1-based, descending by placed-at). ok is false when the shop has
	// fewer than n orders.
	NthRecentPlacedAt(ctx context.Context, shopID string, n int) (cutoff time.Time, ok bool, err error)

	// ListUnredactedBefore fetches up to limit non-redacted orders placed
	// strictly before cutoff, oldest first.
	ListUnredactedBefore(ctx context.Context, shopID string, cutoff time.Time, limit int) ([]*domain.Order, error)

	// Redact nulls the order's PII fields, stores the minimized shipping
	// address, and sets the redacted flag.
	Redact(ctx context.Context, orderID string, shipping *domain.Address) error

	// CountUnredactedByCustomer counts non-redacted orders referencing the
	// given external customer id within a shop.
	CountUnredactedByCustomer(ctx context.Context, shopID string, customerExternalID int64) (int64, error)

	// DeleteByShop removes all orders for a shop.
	DeleteByShop(ctx context.Context, shopID string) error
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	UpsertByExternalID(ctx context.Context, customer *domain.Customer) error
	GetByExternalID(ctx context.Context, shopID string, externalID int64) (*domain.Customer, error)

	// Redact nulls the customer's PII fields and sets the redacted flag. The
	// update is guarded: an already-redacted customer is never rewritten.
	Redact(ctx context.Context, shopID string, externalID int64) error

	// DeleteByExternalID removes customers matching the external id within a
	// shop and reports how many records were deleted.
	DeleteByExternalID(ctx context.Context, shopID string, externalID int64) (int64, error)

	DeleteByShop(ctx context.Context, shopID string) error
}

// CatalogRepository defines the interface for product and inventory persistence
type CatalogRepository interface {
	UpsertProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, shopID string, externalID int64) error
	DeleteProductsByShop(ctx context.Context, shopID string) error

	UpsertInventoryLevel(ctx context.Context, level *domain.InventoryLevel) error
	DeleteInventoryByShop(ctx context.Context, shopID string) error
}

// UserShopRepository defines the interface for user-shop link persistence
type UserShopRepository interface {
	Link(ctx context.Context, userID, shopID, role string) error
	DeleteByShop(ctx context.Context, shopID string) error
}

// DeliveryRepository defines the interface for webhook delivery audit rows
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *domain.WebhookDelivery) error

	// MarkOutcome records the dispatch result for a delivery.
	MarkOutcome(ctx context.Context, deliveryID string, processed bool, errMsg string) error

	// ListUnprocessed returns deliveries still marked unprocessed that were
	// received before the given time, oldest first, up to limit.
	ListUnprocessed(ctx context.Context, before time.Time, limit int) ([]*domain.WebhookDelivery, error)

	DeleteByShopDomain(ctx context.Context, shopDomain string) error
}

// AuditRepository defines the interface for compliance audit entries
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
}
