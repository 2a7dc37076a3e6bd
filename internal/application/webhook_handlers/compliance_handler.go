package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
)

// ComplianceHandler handles data-subject-rights webhook events: data
// requests, customer erasure, and full shop erasure.
type ComplianceHandler struct {
	shops      ports.ShopRepository
	orders     ports.OrderRepository
	customers  ports.CustomerRepository
	catalog    ports.CatalogRepository
	userShops  ports.UserShopRepository
	deliveries ports.DeliveryRepository
	audit      ports.AuditRepository
	logger     zerolog.Logger
}

// NewComplianceHandler creates a new compliance webhook handler
func NewComplianceHandler(
	shops ports.ShopRepository,
	orders ports.OrderRepository,
	customers ports.CustomerRepository,
	catalog ports.CatalogRepository,
	userShops ports.UserShopRepository,
	deliveries ports.DeliveryRepository,
	audit ports.AuditRepository,
	logger zerolog.Logger,
) *ComplianceHandler {
	return &ComplianceHandler{
		shops:      shops,
		orders:     orders,
		customers:  customers,
		catalog:    catalog,
		userShops:  userShops,
		deliveries: deliveries,
		audit:      audit,
		logger:     logger,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ComplianceHandler) CanHandle(topic string) bool {
	return topic == domain.TopicCustomersDataReq ||
		topic == domain.TopicCustomersRedact ||
		topic == domain.TopicShopRedact
}

type compliancePayload struct {
	ShopID     int64  `json:"shop_id"`
	ShopDomain string `json:"shop_domain"`
	Customer   *struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"customer"`
}

// Handle processes a compliance webhook event
func (h *ComplianceHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload compliancePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse compliance payload: %w", err)
	}

	shopDomain := payload.ShopDomain
	if shopDomain == "" {
		shopDomain = event.ShopDomain
	}

	switch event.Topic {
	case domain.TopicCustomersDataReq:
		return h.handleDataRequest(ctx, shopDomain, payload)
	case domain.TopicCustomersRedact:
		return h.handleCustomerErasure(ctx, shopDomain, payload)
	case domain.TopicShopRedact:
		return h.handleShopErasure(ctx, shopDomain)
	}
	return fmt.Errorf("unexpected topic: %s", event.Topic)
}

// handleDataRequest records a follow-up note for manual fulfillment. The
// application does not retain enough discrete PII to auto-generate an
// export, so no data leaves the system here.
func (h *ComplianceHandler) handleDataRequest(ctx context.Context, shopDomain string, payload compliancePayload) error {
	detail := "data request received for manual fulfillment"
	if payload.Customer != nil {
		detail = fmt.Sprintf("data request for customer %d (%s), manual fulfillment required", payload.Customer.ID, payload.Customer.Email)
	}

	if err := h.audit.Append(ctx, &domain.AuditEntry{
		Kind:       domain.AuditDataRequest,
		ShopDomain: shopDomain,
		Detail:     detail,
	}); err != nil {
		return fmt.Errorf("failed to record data request: %w", err)
	}

	h.logger.Info().Str("shop", shopDomain).Msg("Recorded customer data request")
	return nil
}

// handleCustomerErasure deletes the customer's records scoped to the shop.
// The audit entry is written whether or not a matching record existed.
func (h *ComplianceHandler) handleCustomerErasure(ctx context.Context, shopDomain string, payload compliancePayload) error {
	if payload.Customer == nil || payload.Customer.ID == 0 {
		return fmt.Errorf("customer erasure payload missing customer id")
	}

	var deleted int64
	shop, err := h.shops.GetByDomain(ctx, shopDomain)
	if err != nil {
		return fmt.Errorf("failed to resolve shop: %w", err)
	}
	if shop != nil {
		deleted, err = h.customers.DeleteByExternalID(ctx, shop.ID, payload.Customer.ID)
		if err != nil {
			return fmt.Errorf("failed to delete customer: %w", err)
		}
	}

	detail := fmt.Sprintf("customer erasure for external id %d, %d record(s) deleted", payload.Customer.ID, deleted)
	if err := h.audit.Append(ctx, &domain.AuditEntry{
		Kind:       domain.AuditCustomerErasure,
		ShopDomain: shopDomain,
		Detail:     detail,
	}); err != nil {
		return fmt.Errorf("failed to record customer erasure: %w", err)
	}

	h.logger.Info().Str("shop", shopDomain).Int64("customerId", payload.Customer.ID).Int64("deleted", deleted).Msg("Processed customer erasure")
	return nil
}

// handleShopErasure deletes all shop-scoped records in dependency order,
// finishing with the shop itself. Deleting the shop first would orphan the
// filters every other delete relies on. Idempotent: an absent shop performs
// no deletions but still leaves an audit entry.
func (h *ComplianceHandler) handleShopErasure(ctx context.Context, shopDomain string) error {
	shop, err := h.shops.GetByDomain(ctx, shopDomain)
	if err != nil {
		return fmt.Errorf("failed to resolve shop: %w", err)
	}

	if shop == nil {
		if err := h.audit.Append(ctx, &domain.AuditEntry{
			Kind:       domain.AuditShopErasure,
			ShopDomain: shopDomain,
			Detail:     "shop erasure requested, shop already absent",
		}); err != nil {
			return fmt.Errorf("failed to record shop erasure: %w", err)
		}
		h.logger.Info().Str("shop", shopDomain).Msg("Shop erasure for absent shop, nothing to delete")
		return nil
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"orders", func() error { return h.orders.DeleteByShop(ctx, shop.ID) }},
		{"customers", func() error { return h.customers.DeleteByShop(ctx, shop.ID) }},
		{"products", func() error { return h.catalog.DeleteProductsByShop(ctx, shop.ID) }},
		{"inventory levels", func() error { return h.catalog.DeleteInventoryByShop(ctx, shop.ID) }},
		{"user links", func() error { return h.userShops.DeleteByShop(ctx, shop.ID) }},
		{"delivery logs", func() error { return h.deliveries.DeleteByShopDomain(ctx, shopDomain) }},
		{"shop", func() error { return h.shops.Delete(ctx, shop.ID) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("shop erasure failed deleting %s: %w", step.name, err)
		}
	}

	if err := h.audit.Append(ctx, &domain.AuditEntry{
		Kind:       domain.AuditShopErasure,
		ShopDomain: shopDomain,
		Detail:     "shop and all dependent records deleted",
	}); err != nil {
		return fmt.Errorf("failed to record shop erasure: %w", err)
	}

	h.logger.Info().Str("shop", shopDomain).Msg("Shop erasure completed")
	return nil
}
