package application

import (
	"context"
	"fmt"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/infrastructure/metrics"
	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ShopRedactionReport accumulates the outcome of one shop's pass.
type ShopRedactionReport struct {
	ShopDomain        string   `json:"shop_domain"`
	OrdersRedacted    int      `json:"orders_redacted"`
	CustomersRedacted int      `json:"customers_redacted"`
	Errors            []string `json:"errors,omitempty"`
}

// RedactionReport aggregates all shop passes of one run.
type RedactionReport struct {
	Shops             []*ShopRedactionReport `json:"shops"`
	OrdersRedacted    int                    `json:"orders_redacted"`
	CustomersRedacted int                    `json:"customers_redacted"`
}

// RedactionService enforces the PII retention window: personal data is kept
// only on the most recent N orders per shop; everything older is scrubbed
// while analytic fields survive, and a customer is redacted once no retained
// order references it. Idempotent by construction: already-redacted records
// are excluded by the not-yet-redacted filter, so re-running with no new
// stale data is a no-op and partial failures are retried on the next run.
type RedactionService struct {
	shops     ports.ShopRepository
	orders    ports.OrderRepository
	customers ports.CustomerRepository
	logger    zerolog.Logger

	window    int
	batchSize int
	workers   int
}

// NewRedactionService creates the redaction engine. window is the retention
// count, batchSize bounds one shop pass, workers bounds cross-shop
// parallelism (a single shop's pass always runs sequentially).
func NewRedactionService(
	shops ports.ShopRepository,
	orders ports.OrderRepository,
	customers ports.CustomerRepository,
	logger zerolog.Logger,
	window, batchSize, workers int,
) *RedactionService {
	if window <= 0 {
		window = 100
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	if workers <= 0 {
		workers = 1
	}
	return &RedactionService{
		shops:     shops,
		orders:    orders,
		customers: customers,
		logger:    logger,
		window:    window,
		batchSize: batchSize,
		workers:   workers,
	}
}

// Run executes one redaction pass over all active shops. Shops are processed
// by a bounded worker pool; a failure on one record or one shop never halts
// the rest.
func (s *RedactionService) Run(ctx context.Context) (*RedactionReport, error) {
	shops, err := s.shops.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}

	reports := make([]*ShopRedactionReport, len(shops))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, shop := range shops {
		i, shop := i, shop
		g.Go(func() error {
			reports[i] = s.redactShop(ctx, shop)
			return nil
		})
	}
	// Workers collect their own errors; Wait never fails.
	_ = g.Wait()

	report := &RedactionReport{Shops: reports}
	for _, r := range reports {
		report.OrdersRedacted += r.OrdersRedacted
		report.CustomersRedacted += r.CustomersRedacted
	}

	metrics.OrdersRedacted.Add(float64(report.OrdersRedacted))
	metrics.CustomersRedacted.Add(float64(report.CustomersRedacted))

	s.logger.Info().
		Int("shops", len(shops)).
		Int("ordersRedacted", report.OrdersRedacted).
		Int("customersRedacted", report.CustomersRedacted).
		Msg("Redaction run completed")

	return report, nil
}

// redactShop runs one shop's pass to completion. The cutoff is computed once
// at the start: orders ingested concurrently carry later timestamps and fall
// outside it, so the race with webhook ingestion is benign.
func (s *RedactionService) redactShop(ctx context.Context, shop *domain.Shop) *ShopRedactionReport {
	report := &ShopRedactionReport{ShopDomain: shop.Domain}

	cutoff, ok, err := s.orders.NthRecentPlacedAt(ctx, shop.ID, s.window)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("cutoff: %v", err))
		return report
	}
	if !ok {
		// Fewer than N orders: nothing is stale.
		return report
	}

	stale, err := s.orders.ListUnredactedBefore(ctx, shop.ID, cutoff, s.batchSize)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("list stale orders: %v", err))
		return report
	}

	touched := make(map[int64]struct{})
	for _, order := range stale {
		var minimized *domain.Address
		if order.ShippingAddress != nil {
			m := order.ShippingAddress.Minimize()
			minimized = &m
		}
		if err := s.orders.Redact(ctx, order.ID, minimized); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("order %d: %v", order.ExternalID, err))
			continue
		}
		report.OrdersRedacted++
		if order.CustomerExternalID != 0 {
			touched[order.CustomerExternalID] = struct{}{}
		}
	}

	for customerID := range touched {
		redacted, err := s.maybeRedactCustomer(ctx, shop.ID, customerID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("customer %d: %v", customerID, err))
			continue
		}
		if redacted {
			report.CustomersRedacted++
		}
	}

	if report.OrdersRedacted > 0 || len(report.Errors) > 0 {
		s.logger.Info().
			Str("shop", shop.Domain).
			Int("ordersRedacted", report.OrdersRedacted).
			Int("customersRedacted", report.CustomersRedacted).
			Int("errors", len(report.Errors)).
			Msg("Shop redaction pass completed")
	}

	return report
}

// maybeRedactCustomer scrubs a customer once no non-redacted order in the
// shop references it. Previously-redacted customers are never rewritten.
func (s *RedactionService) maybeRedactCustomer(ctx context.Context, shopID string, customerExternalID int64) (bool, error) {
	remaining, err := s.orders.CountUnredactedByCustomer(ctx, shopID, customerExternalID)
	if err != nil {
		return false, fmt.Errorf("failed to count remaining orders: %w", err)
	}
	if remaining > 0 {
		return false, nil
	}

	customer, err := s.customers.GetByExternalID(ctx, shopID, customerExternalID)
	if err != nil {
		return false, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil || customer.PIIRedacted {
		return false, nil
	}

	if err := s.customers.Redact(ctx, shopID, customerExternalID); err != nil {
		return false, fmt.Errorf("failed to redact customer: %w", err)
	}
	return true, nil
}
