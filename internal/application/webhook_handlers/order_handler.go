package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related webhook events
type OrderHandler struct {
	orders ports.OrderRepository
	logger zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(orders ports.OrderRepository, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == "orders/create" ||
		topic == "orders/updated" ||
		topic == "orders/cancelled" ||
		topic == "orders/paid" ||
		topic == "orders/fulfilled" ||
		topic == "orders/partially_fulfilled"
}

type orderPayload struct {
	ID                int64            `json:"id"`
	OrderNumber       int              `json:"order_number"`
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	Note              string           `json:"note"`
	TotalPrice        string           `json:"total_price"`
	Currency          string           `json:"currency"`
	FinancialStatus   string           `json:"financial_status"`
	FulfillmentStatus string           `json:"fulfillment_status"`
	Tags              string           `json:"tags"`
	CreatedAt         time.Time        `json:"created_at"`
	Customer          *struct {
		ID int64 `json:"id"`
	} `json:"customer"`
	ShippingAddress *addressPayload `json:"shipping_address"`
	BillingAddress  *addressPayload `json:"billing_address"`
	DiscountCodes   []struct {
		Code string `json:"code"`
	} `json:"discount_codes"`
	LineItems []struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		SKU      string `json:"sku"`
		Quantity int    `json:"quantity"`
		Price    string `json:"price"`
	} `json:"line_items"`
}

type addressPayload struct {
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Company      string   `json:"company"`
	Address1     string   `json:"address1"`
	Address2     string   `json:"address2"`
	Phone        string   `json:"phone"`
	Zip          string   `json:"zip"`
	City         string   `json:"city"`
	Province     string   `json:"province"`
	ProvinceCode string   `json:"province_code"`
	Country      string   `json:"country"`
	CountryCode  string   `json:"country_code"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (a *addressPayload) toDomain() *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Company:      a.Company,
		Address1:     a.Address1,
		Address2:     a.Address2,
		Phone:        a.Phone,
		Zip:          a.Zip,
		City:         a.City,
		Province:     a.Province,
		ProvinceCode: a.ProvinceCode,
		Country:      a.Country,
		CountryCode:  a.CountryCode,
	}
}

// Handle processes an order webhook event. Deliveries for the same order may
// arrive concurrently or out of order; the write is an idempotent upsert by
// external id, never a blind insert.
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var payload orderPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse order webhook payload: %w", err)
	}
	if payload.ID == 0 {
		return fmt.Errorf("order webhook payload missing id")
	}

	order := &domain.Order{
		ShopID:            event.ShopID,
		ExternalID:        payload.ID,
		OrderNumber:       payload.OrderNumber,
		Name:              payload.Name,
		FinancialStatus:   payload.FinancialStatus,
		FulfillmentStatus: payload.FulfillmentStatus,
		TotalPrice:        payload.TotalPrice,
		Currency:          payload.Currency,
		Tags:              payload.Tags,
		Email:             payload.Email,
		Note:              payload.Note,
		ShippingAddress:   payload.ShippingAddress.toDomain(),
		BillingAddress:    payload.BillingAddress.toDomain(),
		PlacedAt:          payload.CreatedAt,
	}
	if payload.Customer != nil {
		order.CustomerExternalID = payload.Customer.ID
	}
	if payload.ShippingAddress != nil {
		if payload.ShippingAddress.Latitude != nil {
			order.Latitude = *payload.ShippingAddress.Latitude
		}
		if payload.ShippingAddress.Longitude != nil {
			order.Longitude = *payload.ShippingAddress.Longitude
		}
	}
	for _, dc := range payload.DiscountCodes {
		order.DiscountCodes = append(order.DiscountCodes, dc.Code)
	}
	for _, li := range payload.LineItems {
		order.LineItems = append(order.LineItems, domain.LineItem{
			ExternalID: li.ID,
			Title:      li.Title,
			SKU:        li.SKU,
			Quantity:   li.Quantity,
			Price:      li.Price,
		})
	}

	if err := h.orders.UpsertByExternalID(ctx, order); err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.ShopDomain).
		Int64("orderId", payload.ID).
		Str("financialStatus", payload.FinancialStatus).
		Msg("Processed order webhook event")

	return nil
}
