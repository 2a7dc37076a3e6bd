package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
)

// ProductHandler handles product-related webhook events
type ProductHandler struct {
	catalog ports.CatalogRepository
	logger  zerolog.Logger
}

// NewProductHandler creates a new product webhook handler
func NewProductHandler(catalog ports.CatalogRepository, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *ProductHandler) CanHandle(topic string) bool {
	return topic == "products/create" ||
		topic == "products/update" ||
		topic == "products/delete"
}

type productPayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"product_type"`
	Status      string `json:"status"`
}

// Handle processes a product webhook event
func (h *ProductHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload productPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse product webhook payload: %w", err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("product webhook payload missing id")
	}

	if event.Topic == "products/delete" {
		if err := h.catalog.DeleteProduct(ctx, event.ShopID, payload.ID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		h.logger.Info().Str("shop", event.ShopDomain).Int64("productId", payload.ID).Msg("Product deleted")
		return nil
	}

	product := &domain.Product{
		ShopID:      event.ShopID,
		ExternalID:  payload.ID,
		Title:       payload.Title,
		Handle:      payload.Handle,
		Vendor:      payload.Vendor,
		ProductType: payload.ProductType,
		Status:      payload.Status,
	}

	if err := h.catalog.UpsertProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Int64("productId", payload.ID).
		Str("title", payload.Title).
		Msg("Processed product webhook event")

	return nil
}
