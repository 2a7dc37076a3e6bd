package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
)

// AppLifecycleHandler handles app install-state and shop metadata events
type AppLifecycleHandler struct {
	shops  ports.ShopRepository
	logger zerolog.Logger
}

// NewAppLifecycleHandler creates a new app lifecycle webhook handler
func NewAppLifecycleHandler(shops ports.ShopRepository, logger zerolog.Logger) *AppLifecycleHandler {
	return &AppLifecycleHandler{shops: shops, logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppLifecycleHandler) CanHandle(topic string) bool {
	return topic == domain.TopicAppUninstalled || topic == "shop/update"
}

type shopPayload struct {
	Name         string `json:"name"`
	Currency     string `json:"currency"`
	IanaTimezone string `json:"iana_timezone"`
}

// Handle processes an app lifecycle webhook event. Uninstall marks the shop
// inactive and clears its credential; the record itself survives for audit
// and a possible re-install. Shop erasure is the compliance handler's job.
func (h *AppLifecycleHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	switch event.Topic {
	case domain.TopicAppUninstalled:
		if err := h.shops.Deactivate(ctx, event.ShopDomain); err != nil {
			return fmt.Errorf("failed to deactivate shop: %w", err)
		}
		h.logger.Info().Str("shop", event.ShopDomain).Msg("App uninstalled, shop deactivated")
		return nil

	case "shop/update":
		var payload shopPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("failed to parse shop webhook payload: %w", err)
		}

		shop, err := h.shops.GetByDomain(ctx, event.ShopDomain)
		if err != nil {
			return fmt.Errorf("failed to get shop: %w", err)
		}
		if shop == nil {
			return nil
		}

		shop.Name = payload.Name
		shop.Currency = payload.Currency
		shop.Timezone = payload.IanaTimezone
		if _, err := h.shops.UpsertByDomain(ctx, shop); err != nil {
			return fmt.Errorf("failed to update shop metadata: %w", err)
		}

		h.logger.Info().Str("shop", event.ShopDomain).Msg("Shop metadata updated")
		return nil
	}

	return fmt.Errorf("unexpected topic: %s", event.Topic)
}
