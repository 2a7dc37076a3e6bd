package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhooksReceived counts inbound webhook deliveries by topic and
	// outcome (processed, failed, unauthorized, dropped).
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopbridge_webhooks_received_total",
		Help: "Inbound webhook deliveries by topic and outcome.",
	}, []string{"topic", "outcome"})

	// OAuthFlows counts OAuth flow terminations by outcome (linked or a
	// failure reason code).
	OAuthFlows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopbridge_oauth_flows_total",
		Help: "OAuth flow terminations by outcome.",
	}, []string{"outcome"})

	// OrdersRedacted counts orders scrubbed by the redaction engine.
	OrdersRedacted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopbridge_orders_redacted_total",
		Help: "Orders whose PII fields were scrubbed.",
	})

	// CustomersRedacted counts customers scrubbed by the redaction engine.
	CustomersRedacted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopbridge_customers_redacted_total",
		Help: "Customers whose PII fields were scrubbed.",
	})
)
