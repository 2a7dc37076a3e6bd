package application

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/infrastructure/metrics"
	"shopbridge-core/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Webhook ingress headers set by the platform.
const (
	HeaderHmac       = "X-Shopify-Hmac-SHA256"
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderWebhookID  = "X-Shopify-Webhook-Id"
)

// WebhookRouter is the HTTP-facing ingestion pipeline: authenticate on raw
// bytes, record an audit row, resolve the shop, dispatch by topic, and
// always acknowledge success to the platform once the signature verified.
// A persistently failing handler must not turn the platform's retries into
// an amplification storm; operators recover from the delivery records.
type WebhookRouter struct {
	verifier   ports.WebhookVerifier
	shops      ports.ShopRepository
	deliveries ports.DeliveryRepository
	dispatcher *WebhookDispatcher
	logger     zerolog.Logger
}

// NewWebhookRouter creates the ingestion pipeline.
func NewWebhookRouter(
	verifier ports.WebhookVerifier,
	shops ports.ShopRepository,
	deliveries ports.DeliveryRepository,
	dispatcher *WebhookDispatcher,
	logger zerolog.Logger,
) *WebhookRouter {
	return &WebhookRouter{
		verifier:   verifier,
		shops:      shops,
		deliveries: deliveries,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handler returns the ingress http.HandlerFunc. The same contract serves
// both the general webhook endpoint and the dedicated compliance endpoint.
func (rt *WebhookRouter) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Raw bytes first: the signature covers the body exactly as sent.
		rawBody, err := io.ReadAll(r.Body)
		if err != nil {
			rt.logger.Error().Err(err).Msg("Failed to read webhook body")
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if !rt.verifier.VerifyWebhook(rawBody, r.Header.Get(HeaderHmac)) {
			// No log record for unauthenticated requests.
			metrics.WebhooksReceived.WithLabelValues("unknown", "unauthorized").Inc()
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		topic := r.Header.Get(HeaderTopic)
		shopDomain := r.Header.Get(HeaderShopDomain)
		if topic == "" || shopDomain == "" {
			rt.logger.Warn().Str("topic", topic).Str("shop", shopDomain).Msg("Webhook missing topic or shop domain header")
			metrics.WebhooksReceived.WithLabelValues(topic, "bad_request").Inc()
			http.Error(w, "missing topic or shop domain header", http.StatusBadRequest)
			return
		}

		delivery := &domain.WebhookDelivery{
			ID:         uuid.NewString(),
			ShopDomain: shopDomain,
			Topic:      topic,
			WebhookID:  r.Header.Get(HeaderWebhookID),
			Payload:    rawBody,
			Processed:  false,
			ReceivedAt: time.Now(),
		}
		// The audit row exists before dispatch so a crash mid-handler still
		// leaves a trail for reconciliation.
		if err := rt.deliveries.Create(ctx, delivery); err != nil {
			rt.logger.Error().Err(err).Str("topic", topic).Str("shop", shopDomain).Msg("Failed to create delivery record")
		}

		outcome := rt.process(r.Context(), delivery)
		metrics.WebhooksReceived.WithLabelValues(topic, outcome).Inc()

		w.WriteHeader(http.StatusOK)
	}
}

// process resolves the shop and dispatches, recording the outcome on the
// delivery record. It returns the metrics outcome label.
func (rt *WebhookRouter) process(ctx context.Context, delivery *domain.WebhookDelivery) string {
	event := &domain.WebhookEvent{
		Topic:      delivery.Topic,
		ShopDomain: delivery.ShopDomain,
		WebhookID:  delivery.WebhookID,
		Payload:    delivery.Payload,
	}

	shop, err := rt.shops.GetByDomain(ctx, delivery.ShopDomain)
	if err != nil {
		rt.logger.Error().Err(err).Str("shop", delivery.ShopDomain).Msg("Failed to resolve shop for webhook")
		rt.markOutcome(ctx, delivery.ID, false, "failed to resolve shop: "+err.Error())
		return "failed"
	}
	if shop != nil {
		event.ShopID = shop.ID
	}

	// An unknown shop means this application never installed there; a
	// success acknowledgment stops the platform from retrying forever.
	// Uninstall and compliance topics still dispatch: their handlers
	// define their own absent-shop behavior.
	if shop == nil && !dispatchesWithoutShop(delivery.Topic) {
		rt.logger.Warn().Str("shop", delivery.ShopDomain).Str("topic", delivery.Topic).Msg("Webhook for unknown shop, dropping")
		rt.markOutcome(ctx, delivery.ID, true, "shop not recognized")
		return "dropped"
	}

	if err := rt.dispatcher.Dispatch(ctx, event); err != nil {
		if errors.Is(err, ErrUnhandledTopic) {
			rt.logger.Warn().Str("topic", delivery.Topic).Msg("No handler for webhook topic, dropping")
			rt.markOutcome(ctx, delivery.ID, true, "unhandled topic")
			return "dropped"
		}
		rt.logger.Error().Err(err).Str("topic", delivery.Topic).Str("shop", delivery.ShopDomain).Msg("Webhook handler failed")
		rt.markOutcome(ctx, delivery.ID, false, err.Error())
		return "failed"
	}

	rt.markOutcome(ctx, delivery.ID, true, "")
	return "processed"
}

func (rt *WebhookRouter) markOutcome(ctx context.Context, deliveryID string, processed bool, errMsg string) {
	if err := rt.deliveries.MarkOutcome(ctx, deliveryID, processed, errMsg); err != nil {
		rt.logger.Error().Err(err).Str("delivery", deliveryID).Msg("Failed to update delivery record")
	}
}

func dispatchesWithoutShop(topic string) bool {
	switch topic {
	case domain.TopicAppUninstalled,
		domain.TopicCustomersDataReq,
		domain.TopicCustomersRedact,
		domain.TopicShopRedact:
		return true
	}
	return false
}
