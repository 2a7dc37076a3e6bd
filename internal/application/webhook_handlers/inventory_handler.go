package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
)

// InventoryHandler handles inventory level webhook events
type InventoryHandler struct {
	catalog ports.CatalogRepository
	logger  zerolog.Logger
}

// NewInventoryHandler creates a new inventory webhook handler
func NewInventoryHandler(catalog ports.CatalogRepository, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{catalog: catalog, logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *InventoryHandler) CanHandle(topic string) bool {
	return topic == "inventory_levels/update" ||
		topic == "inventory_levels/connect"
}

type inventoryPayload struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       int   `json:"available"`
}

// Handle processes an inventory level webhook event
func (h *InventoryHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload inventoryPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse inventory webhook payload: %w", err)
	}
	if payload.InventoryItemID == 0 {
		return fmt.Errorf("inventory webhook payload missing inventory_item_id")
	}

	level := &domain.InventoryLevel{
		ShopID:          event.ShopID,
		InventoryItemID: payload.InventoryItemID,
		LocationID:      payload.LocationID,
		Available:       payload.Available,
	}

	if err := h.catalog.UpsertInventoryLevel(ctx, level); err != nil {
		return fmt.Errorf("failed to upsert inventory level: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Int64("inventoryItemId", payload.InventoryItemID).
		Int64("locationId", payload.LocationID).
		Msg("Processed inventory webhook event")

	return nil
}
