package webhook_handlers

import (
	"context"
	"testing"

	"shopbridge-core/internal/domain"

	"github.com/rs/zerolog"
)

func TestUninstallDeactivatesShopAndClearsToken(t *testing.T) {
	shops := &stubShopRepo{shop: &domain.Shop{
		ID:          "shop-1",
		Domain:      "acme.myshopify.com",
		AccessToken: "token-123",
		Active:      true,
	}}
	handler := NewAppLifecycleHandler(shops, zerolog.Nop())

	err := handler.Handle(context.Background(), &domain.WebhookEvent{
		Topic:      domain.TopicAppUninstalled,
		ShopDomain: "acme.myshopify.com",
		Payload:    []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if shops.shop.Active {
		t.Fatal("uninstalled shop must be inactive")
	}
	if shops.shop.AccessToken != "" {
		t.Fatal("uninstall invalidates the credential; it must not be kept")
	}
	if shops.shop.Domain != "acme.myshopify.com" {
		t.Fatal("the shop record itself survives uninstall for audit and re-install")
	}
}

func TestShopUpdateRefreshesMetadata(t *testing.T) {
	shops := &stubShopRepo{shop: &domain.Shop{
		ID:     "shop-1",
		Domain: "acme.myshopify.com",
		Active: true,
		Name:   "Old Name",
	}}
	handler := NewAppLifecycleHandler(shops, zerolog.Nop())

	err := handler.Handle(context.Background(), &domain.WebhookEvent{
		Topic:      "shop/update",
		ShopDomain: "acme.myshopify.com",
		Payload:    []byte(`{"name":"New Name","currency":"EUR","iana_timezone":"Europe/Paris"}`),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if shops.shop.Name != "New Name" || shops.shop.Currency != "EUR" || shops.shop.Timezone != "Europe/Paris" {
		t.Fatalf("metadata not refreshed: %+v", shops.shop)
	}
}

func TestShopUpdateForUnknownShopIsANoOp(t *testing.T) {
	shops := &stubShopRepo{}
	handler := NewAppLifecycleHandler(shops, zerolog.Nop())

	err := handler.Handle(context.Background(), &domain.WebhookEvent{
		Topic:      "shop/update",
		ShopDomain: "gone.myshopify.com",
		Payload:    []byte(`{"name":"New Name"}`),
	})
	if err != nil {
		t.Fatalf("an update for an unknown shop should be dropped quietly, got %v", err)
	}
	if shops.shop != nil {
		t.Fatal("no record should be created for an unknown shop")
	}
}
