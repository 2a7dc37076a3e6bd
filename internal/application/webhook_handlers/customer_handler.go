package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
)

// CustomerHandler handles customer-related webhook events
type CustomerHandler struct {
	customers ports.CustomerRepository
	logger    zerolog.Logger
}

// NewCustomerHandler creates a new customer webhook handler
func NewCustomerHandler(customers ports.CustomerRepository, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *CustomerHandler) CanHandle(topic string) bool {
	return topic == "customers/create" ||
		topic == "customers/update" ||
		topic == "customers/delete" ||
		topic == "customers/enable" ||
		topic == "customers/disable"
}

type customerPayload struct {
	ID             int64           `json:"id"`
	Email          string          `json:"email"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Phone          string          `json:"phone"`
	OrdersCount    int             `json:"orders_count"`
	TotalSpent     string          `json:"total_spent"`
	DefaultAddress *addressPayload `json:"default_address"`
}

// Handle processes a customer webhook event
func (h *CustomerHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload customerPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse customer webhook payload: %w", err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("customer webhook payload missing id")
	}

	if event.Topic == "customers/delete" {
		deleted, err := h.customers.DeleteByExternalID(ctx, event.ShopID, payload.ID)
		if err != nil {
			return fmt.Errorf("failed to delete customer: %w", err)
		}
		h.logger.Info().
			Str("shop", event.ShopDomain).
			Int64("customerId", payload.ID).
			Int64("deleted", deleted).
			Msg("Customer deleted")
		return nil
	}

	customer := &domain.Customer{
		ShopID:         event.ShopID,
		ExternalID:     payload.ID,
		Email:          payload.Email,
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		Phone:          payload.Phone,
		OrdersCount:    payload.OrdersCount,
		TotalSpent:     payload.TotalSpent,
		DefaultAddress: payload.DefaultAddress.toDomain(),
	}

	if err := h.customers.UpsertByExternalID(ctx, customer); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Int64("customerId", payload.ID).
		Msg("Processed customer webhook event")

	return nil
}
