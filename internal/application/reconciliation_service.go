package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
)

// ReconciliationService re-reads unprocessed webhook delivery records and
// retries them through the normal dispatcher, independently of the
// platform's own retry window. The router's always-acknowledge policy means
// a persistently failing handler silently drops events; this pass is the
// operator-facing recovery path.
type ReconciliationService struct {
	shops      ports.ShopRepository
	deliveries ports.DeliveryRepository
	dispatcher *WebhookDispatcher
	logger     zerolog.Logger

	grace time.Duration
	limit int
}

// NewReconciliationService creates the recovery pass. grace keeps deliveries
// still in flight out of scope; limit bounds one pass.
func NewReconciliationService(
	shops ports.ShopRepository,
	deliveries ports.DeliveryRepository,
	dispatcher *WebhookDispatcher,
	logger zerolog.Logger,
	grace time.Duration,
	limit int,
) *ReconciliationService {
	if grace <= 0 {
		grace = 10 * time.Minute
	}
	if limit <= 0 {
		limit = 100
	}
	return &ReconciliationService{
		shops:      shops,
		deliveries: deliveries,
		dispatcher: dispatcher,
		logger:     logger,
		grace:      grace,
		limit:      limit,
	}
}

// Run retries unprocessed deliveries once each, recording the new outcome.
// It returns how many deliveries were retried and how many now succeeded.
func (s *ReconciliationService) Run(ctx context.Context) (retried, recovered int, err error) {
	pending, err := s.deliveries.ListUnprocessed(ctx, time.Now().Add(-s.grace), s.limit)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list unprocessed deliveries: %w", err)
	}

	for _, delivery := range pending {
		retried++

		event := &domain.WebhookEvent{
			Topic:      delivery.Topic,
			ShopDomain: delivery.ShopDomain,
			WebhookID:  delivery.WebhookID,
			Payload:    delivery.Payload,
		}

		shop, err := s.shops.GetByDomain(ctx, delivery.ShopDomain)
		if err != nil {
			s.logger.Error().Err(err).Str("shop", delivery.ShopDomain).Msg("Failed to resolve shop during reconciliation")
			continue
		}
		if shop != nil {
			event.ShopID = shop.ID
		}

		if err := s.dispatcher.Dispatch(ctx, event); err != nil {
			// Handlers for the topic may have been unregistered since; stop
			// retrying those rather than spinning on them every pass.
			if errors.Is(err, ErrUnhandledTopic) {
				s.markOutcome(ctx, delivery.ID, true, "unhandled topic")
				continue
			}
			s.logger.Warn().Err(err).Str("delivery", delivery.ID).Str("topic", delivery.Topic).Msg("Delivery retry failed")
			s.markOutcome(ctx, delivery.ID, false, err.Error())
			continue
		}

		recovered++
		s.markOutcome(ctx, delivery.ID, true, "")
	}

	s.logger.Info().Int("retried", retried).Int("recovered", recovered).Msg("Reconciliation pass completed")
	return retried, recovered, nil
}

func (s *ReconciliationService) markOutcome(ctx context.Context, deliveryID string, processed bool, errMsg string) {
	if err := s.deliveries.MarkOutcome(ctx, deliveryID, processed, errMsg); err != nil {
		s.logger.Error().Err(err).Str("delivery", deliveryID).Msg("Failed to update delivery record")
	}
}
