package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"shopbridge-core/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// Client talks to the platform's admin API for the operations the OAuth flow
// needs: token exchange, shop metadata, and webhook subscription.
type Client struct {
	app        goshopify.App
	scopes     []string
	webhookURL string
	logger     zerolog.Logger
}

// NewClient creates a platform API client. redirectURL is the OAuth callback
// endpoint; webhookURL is the address webhook subscriptions point at.
func NewClient(apiKey, apiSecret string, scopes []string, redirectURL, webhookURL string, logger zerolog.Logger) *Client {
	return &Client{
		app: goshopify.App{
			ApiKey:      apiKey,
			ApiSecret:   apiSecret,
			RedirectUrl: redirectURL,
			Scope:       strings.Join(scopes, ","),
		},
		scopes:     scopes,
		webhookURL: webhookURL,
		logger:     logger,
	}
}

var _ ports.PlatformClient = (*Client)(nil)

// AuthorizeURL builds the provider's authorization endpoint URL.
func (c *Client) AuthorizeURL(shop string, state string) string {
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		c.app.ApiKey,
		url.QueryEscape(c.app.Scope),
		url.QueryEscape(c.app.RedirectUrl),
		state,
	)
}

// ExchangeToken exchanges the authorization code for an access token.
func (c *Client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// GetShopMetadata fetches shop details with a fresh access token.
func (c *Client) GetShopMetadata(ctx context.Context, shop string, accessToken string) (*ports.ShopMetadata, error) {
	client, err := goshopify.NewClient(c.app, shop, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	info, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop info: %w", err)
	}

	return &ports.ShopMetadata{
		Name:     info.Name,
		Currency: info.Currency,
		Timezone: info.IanaTimezone,
	}, nil
}

// RegisterWebhooks subscribes the ingest endpoint to the given topics.
// Subscriptions already present on the shop surface as per-topic errors from
// the platform; those are logged and skipped so re-auth stays idempotent.
func (c *Client) RegisterWebhooks(ctx context.Context, shop string, accessToken string, topics []string) error {
	client, err := goshopify.NewClient(c.app, shop, accessToken)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	var failed int
	for _, topic := range topics {
		_, err := client.Webhook.Create(ctx, goshopify.Webhook{
			Topic:   topic,
			Address: c.webhookURL,
			Format:  "json",
		})
		if err != nil {
			failed++
			c.logger.Warn().Err(err).Str("shop", shop).Str("topic", topic).Msg("Failed to register webhook subscription")
		}
	}

	if failed == len(topics) && len(topics) > 0 {
		return fmt.Errorf("failed to register all %d webhook subscriptions", failed)
	}
	return nil
}
