package webhook_handlers

import (
	"context"
	"strings"
	"testing"

	"shopbridge-core/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

type complianceFixture struct {
	handler    *ComplianceHandler
	rec        *recorder
	shops      *stubShopRepo
	orders     *stubOrderRepo
	customers  *stubCustomerRepo
	catalog    *stubCatalogRepo
	userShops  *stubUserShopRepo
	deliveries *stubDeliveryRepo
	audit      *stubAuditRepo
}

func newComplianceFixture(shop *domain.Shop) *complianceFixture {
	rec := &recorder{}
	f := &complianceFixture{
		rec:        rec,
		shops:      &stubShopRepo{rec: rec, shop: shop},
		orders:     &stubOrderRepo{rec: rec},
		customers:  &stubCustomerRepo{rec: rec},
		catalog:    &stubCatalogRepo{rec: rec},
		userShops:  &stubUserShopRepo{rec: rec},
		deliveries: &stubDeliveryRepo{rec: rec},
		audit:      &stubAuditRepo{},
	}
	f.handler = NewComplianceHandler(
		f.shops, f.orders, f.customers, f.catalog, f.userShops, f.deliveries, f.audit, zerolog.Nop(),
	)
	return f
}

func complianceEvent(topic, shopDomain string, payload string) *domain.WebhookEvent {
	return &domain.WebhookEvent{
		Topic:      topic,
		ShopDomain: shopDomain,
		Payload:    []byte(payload),
	}
}

func TestComplianceHandlerTopics(t *testing.T) {
	f := newComplianceFixture(nil)
	for _, topic := range []string{domain.TopicCustomersDataReq, domain.TopicCustomersRedact, domain.TopicShopRedact} {
		if !f.handler.CanHandle(topic) {
			t.Errorf("handler must claim %s", topic)
		}
	}
	if f.handler.CanHandle("orders/create") {
		t.Error("handler must not claim non-compliance topics")
	}
}

func TestDataRequestRecordsAuditOnly(t *testing.T) {
	f := newComplianceFixture(&domain.Shop{ID: "shop-1", Domain: "acme.myshopify.com", Active: true})

	err := f.handler.Handle(context.Background(), complianceEvent(
		domain.TopicCustomersDataReq,
		"acme.myshopify.com",
		`{"shop_domain":"acme.myshopify.com","customer":{"id":42,"email":"jamie@example.com"}}`,
	))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(f.audit.entries) != 1 {
		t.Fatalf("recorded %d audit entries, want 1", len(f.audit.entries))
	}
	entry := f.audit.entries[0]
	if entry.Kind != domain.AuditDataRequest || entry.ShopDomain != "acme.myshopify.com" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if !strings.Contains(entry.Detail, "42") {
		t.Fatalf("audit detail should name the customer: %q", entry.Detail)
	}
	if len(f.rec.calls) != 0 {
		t.Fatalf("a data request must not delete anything, got %v", f.rec.calls)
	}
}

func TestCustomerErasureDeletesAndAudits(t *testing.T) {
	f := newComplianceFixture(&domain.Shop{ID: "shop-1", Domain: "acme.myshopify.com", Active: true})
	f.customers.existing = 42

	err := f.handler.Handle(context.Background(), complianceEvent(
		domain.TopicCustomersRedact,
		"acme.myshopify.com",
		`{"shop_domain":"acme.myshopify.com","customer":{"id":42}}`,
	))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if diff := cmp.Diff([]int64{42}, f.customers.deleted); diff != "" {
		t.Fatalf("deletion mismatch (-want +got):\n%s", diff)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Kind != domain.AuditCustomerErasure {
		t.Fatalf("unexpected audit entries: %+v", f.audit.entries)
	}
	if !strings.Contains(f.audit.entries[0].Detail, "1 record(s) deleted") {
		t.Fatalf("audit detail should report the deletion count: %q", f.audit.entries[0].Detail)
	}
}

func TestCustomerErasureUnknownShopStillAudits(t *testing.T) {
	f := newComplianceFixture(nil)

	err := f.handler.Handle(context.Background(), complianceEvent(
		domain.TopicCustomersRedact,
		"gone.myshopify.com",
		`{"shop_domain":"gone.myshopify.com","customer":{"id":42}}`,
	))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(f.customers.deleted) != 0 {
		t.Fatalf("no shop means no deletion target, got %v", f.customers.deleted)
	}
	if len(f.audit.entries) != 1 || !strings.Contains(f.audit.entries[0].Detail, "0 record(s) deleted") {
		t.Fatalf("erasure must be audited even with no matching shop: %+v", f.audit.entries)
	}
}

func TestCustomerErasureRequiresCustomerID(t *testing.T) {
	f := newComplianceFixture(nil)

	err := f.handler.Handle(context.Background(), complianceEvent(
		domain.TopicCustomersRedact,
		"acme.myshopify.com",
		`{"shop_domain":"acme.myshopify.com"}`,
	))
	if err == nil {
		t.Fatal("erasure without a customer id must fail for reconciliation to retry")
	}
}

func TestShopErasureCascade(t *testing.T) {
	f := newComplianceFixture(&domain.Shop{ID: "shop-1", Domain: "acme.myshopify.com", Active: true})

	err := f.handler.Handle(context.Background(), complianceEvent(
		domain.TopicShopRedact,
		"acme.myshopify.com",
		`{"shop_domain":"acme.myshopify.com"}`,
	))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	// Dependent records go first; the shop row anchors every other filter.
	want := []string{"orders", "customers", "products", "inventory", "user links", "delivery logs", "shop"}
	if diff := cmp.Diff(want, f.rec.calls); diff != "" {
		t.Fatalf("cascade order mismatch (-want +got):\n%s", diff)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Kind != domain.AuditShopErasure {
		t.Fatalf("unexpected audit entries: %+v", f.audit.entries)
	}
}

func TestShopErasureIsIdempotent(t *testing.T) {
	f := newComplianceFixture(&domain.Shop{ID: "shop-1", Domain: "acme.myshopify.com", Active: true})
	event := complianceEvent(domain.TopicShopRedact, "acme.myshopify.com", `{"shop_domain":"acme.myshopify.com"}`)

	if err := f.handler.Handle(context.Background(), event); err != nil {
		t.Fatalf("first Handle: %v", err)
	}
	deletesAfterFirst := len(f.rec.calls)

	// The platform may redeliver; the second pass finds no shop and only audits.
	if err := f.handler.Handle(context.Background(), event); err != nil {
		t.Fatalf("second Handle: %v", err)
	}
	if len(f.rec.calls) != deletesAfterFirst {
		t.Fatalf("redelivered erasure must not delete again, calls %v", f.rec.calls)
	}
	if len(f.audit.entries) != 2 {
		t.Fatalf("each delivery should leave an audit entry, got %d", len(f.audit.entries))
	}
	if !strings.Contains(f.audit.entries[1].Detail, "absent") {
		t.Fatalf("second audit entry should note the shop was already gone: %q", f.audit.entries[1].Detail)
	}
}
