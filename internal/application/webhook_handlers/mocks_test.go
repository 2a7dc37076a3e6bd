package webhook_handlers

import (
	"context"
	"time"

	"shopbridge-core/internal/domain"
)

// recorder keeps the ordered names of destructive calls so tests can assert
// the cascade order of shop erasure.
type recorder struct {
	calls []string
}

func (r *recorder) record(name string) {
	r.calls = append(r.calls, name)
}

type stubShopRepo struct {
	rec  *recorder
	shop *domain.Shop // the single known shop, nil when absent

	deactivated []string
	deleted     []string
}

func (s *stubShopRepo) UpsertByDomain(_ context.Context, shop *domain.Shop) (*domain.Shop, error) {
	c := *shop
	if c.ID == "" && s.shop != nil {
		c.ID = s.shop.ID
	}
	s.shop = &c
	out := c
	return &out, nil
}

func (s *stubShopRepo) GetByDomain(_ context.Context, shopDomain string) (*domain.Shop, error) {
	if s.shop == nil || s.shop.Domain != shopDomain {
		return nil, nil
	}
	c := *s.shop
	return &c, nil
}

func (s *stubShopRepo) ListActive(_ context.Context) ([]*domain.Shop, error) {
	if s.shop == nil || !s.shop.Active {
		return nil, nil
	}
	c := *s.shop
	return []*domain.Shop{&c}, nil
}

func (s *stubShopRepo) Deactivate(_ context.Context, shopDomain string) error {
	s.deactivated = append(s.deactivated, shopDomain)
	if s.shop != nil && s.shop.Domain == shopDomain {
		s.shop.Active = false
		s.shop.AccessToken = ""
	}
	return nil
}

func (s *stubShopRepo) Delete(_ context.Context, shopID string) error {
	s.deleted = append(s.deleted, shopID)
	if s.rec != nil {
		s.rec.record("shop")
	}
	if s.shop != nil && s.shop.ID == shopID {
		s.shop = nil
	}
	return nil
}

type stubOrderRepo struct {
	rec      *recorder
	upserted []*domain.Order
}

func (s *stubOrderRepo) UpsertByExternalID(_ context.Context, order *domain.Order) error {
	for i, o := range s.upserted {
		if o.ShopID == order.ShopID && o.ExternalID == order.ExternalID {
			c := *order
			s.upserted[i] = &c
			return nil
		}
	}
	c := *order
	s.upserted = append(s.upserted, &c)
	return nil
}

func (s *stubOrderRepo) NthRecentPlacedAt(context.Context, string, int) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (s *stubOrderRepo) ListUnredactedBefore(context.Context, string, time.Time, int) ([]*domain.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) Redact(context.Context, string, *domain.Address) error { return nil }

func (s *stubOrderRepo) CountUnredactedByCustomer(context.Context, string, int64) (int64, error) {
	return 0, nil
}

func (s *stubOrderRepo) DeleteByShop(context.Context, string) error {
	if s.rec != nil {
		s.rec.record("orders")
	}
	s.upserted = nil
	return nil
}

type stubCustomerRepo struct {
	rec      *recorder
	upserted []*domain.Customer
	deleted  []int64

	existing int64 // external id that DeleteByExternalID reports as deleted
}

func (s *stubCustomerRepo) UpsertByExternalID(_ context.Context, customer *domain.Customer) error {
	c := *customer
	s.upserted = append(s.upserted, &c)
	return nil
}

func (s *stubCustomerRepo) GetByExternalID(context.Context, string, int64) (*domain.Customer, error) {
	return nil, nil
}

func (s *stubCustomerRepo) Redact(context.Context, string, int64) error { return nil }

func (s *stubCustomerRepo) DeleteByExternalID(_ context.Context, _ string, externalID int64) (int64, error) {
	s.deleted = append(s.deleted, externalID)
	if externalID == s.existing {
		return 1, nil
	}
	return 0, nil
}

func (s *stubCustomerRepo) DeleteByShop(context.Context, string) error {
	if s.rec != nil {
		s.rec.record("customers")
	}
	return nil
}

type stubCatalogRepo struct {
	rec             *recorder
	products        []*domain.Product
	inventory       []*domain.InventoryLevel
	deletedProducts []int64
}

func (s *stubCatalogRepo) UpsertProduct(_ context.Context, product *domain.Product) error {
	c := *product
	s.products = append(s.products, &c)
	return nil
}

func (s *stubCatalogRepo) DeleteProduct(_ context.Context, _ string, externalID int64) error {
	s.deletedProducts = append(s.deletedProducts, externalID)
	return nil
}

func (s *stubCatalogRepo) DeleteProductsByShop(context.Context, string) error {
	if s.rec != nil {
		s.rec.record("products")
	}
	return nil
}

func (s *stubCatalogRepo) UpsertInventoryLevel(_ context.Context, level *domain.InventoryLevel) error {
	c := *level
	s.inventory = append(s.inventory, &c)
	return nil
}

func (s *stubCatalogRepo) DeleteInventoryByShop(context.Context, string) error {
	if s.rec != nil {
		s.rec.record("inventory")
	}
	return nil
}

type stubUserShopRepo struct {
	rec *recorder
}

func (s *stubUserShopRepo) Link(context.Context, string, string, string) error { return nil }

func (s *stubUserShopRepo) DeleteByShop(context.Context, string) error {
	if s.rec != nil {
		s.rec.record("user links")
	}
	return nil
}

type stubDeliveryRepo struct {
	rec *recorder
}

func (s *stubDeliveryRepo) Create(context.Context, *domain.WebhookDelivery) error { return nil }

func (s *stubDeliveryRepo) MarkOutcome(context.Context, string, bool, string) error { return nil }

func (s *stubDeliveryRepo) ListUnprocessed(context.Context, time.Time, int) ([]*domain.WebhookDelivery, error) {
	return nil, nil
}

func (s *stubDeliveryRepo) DeleteByShopDomain(context.Context, string) error {
	if s.rec != nil {
		s.rec.record("delivery logs")
	}
	return nil
}

type stubAuditRepo struct {
	entries []*domain.AuditEntry
}

func (s *stubAuditRepo) Append(_ context.Context, entry *domain.AuditEntry) error {
	c := *entry
	s.entries = append(s.entries, &c)
	return nil
}
