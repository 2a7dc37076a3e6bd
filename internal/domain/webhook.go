package domain

import "time"

// WebhookDelivery is the audit row created for every authenticated inbound
// webhook before business-logic dispatch. Operators rely on Processed and
// Error for reconciliation; the platform is always acknowledged with success
// once the signature has verified.
type WebhookDelivery struct {
	ID         string    `json:"id"`
	ShopDomain string    `json:"shop_domain"`
	Topic      string    `json:"topic"`
	WebhookID  string    `json:"webhook_id"`
	Payload    []byte    `json:"payload"`
	Processed  bool      `json:"processed"`
	Error      string    `json:"error,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WebhookEvent is the unit handed to topic handlers after authentication.
// Payload holds the raw request body exactly as received. ShopID is set when
// the router resolved a known shop; compliance and uninstall handlers must
// tolerate it being empty.
type WebhookEvent struct {
	Topic      string
	ShopDomain string
	ShopID     string
	WebhookID  string
	Payload    []byte
}

// Webhook topics dispatched by the router. Topics follow the platform's
// resource/action naming.
const (
	TopicAppUninstalled      = "app/uninstalled"
	TopicCustomersDataReq    = "customers/data_request"
	TopicCustomersRedact     = "customers/redact"
	TopicShopRedact          = "shop/redact"
)
