package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/ports"
)

// In-memory fakes of the ports, used across the application tests.

type fakeShopRepo struct {
	mu    sync.Mutex
	shops map[string]*domain.Shop // keyed by domain
	seq   int
}

func newFakeShopRepo() *fakeShopRepo {
	return &fakeShopRepo{shops: make(map[string]*domain.Shop)}
}

func (r *fakeShopRepo) UpsertByDomain(_ context.Context, shop *domain.Shop) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.shops[shop.Domain]
	stored := *shop
	if ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		r.seq++
		stored.ID = "shop-" + strconv.Itoa(r.seq)
		stored.CreatedAt = time.Now()
	}
	stored.UpdatedAt = time.Now()
	r.shops[shop.Domain] = &stored
	out := stored
	return &out, nil
}

func (r *fakeShopRepo) GetByDomain(_ context.Context, shopDomain string) (*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shop, ok := r.shops[shopDomain]
	if !ok {
		return nil, nil
	}
	out := *shop
	return &out, nil
}

func (r *fakeShopRepo) ListActive(_ context.Context) ([]*domain.Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Shop
	for _, shop := range r.shops {
		if shop.Active {
			s := *shop
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out, nil
}

func (r *fakeShopRepo) Deactivate(_ context.Context, shopDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if shop, ok := r.shops[shopDomain]; ok {
		shop.Active = false
		shop.AccessToken = ""
	}
	return nil
}

func (r *fakeShopRepo) Delete(_ context.Context, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for d, shop := range r.shops {
		if shop.ID == shopID {
			delete(r.shops, d)
		}
	}
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders []*domain.Order
	seq    int

	redactFailID string // order id whose Redact call fails, for error paths
}

func (r *fakeOrderRepo) add(order *domain.Order) *domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o := *order
	o.ID = "order-" + strconv.Itoa(r.seq)
	r.orders = append(r.orders, &o)
	return &o
}

func (r *fakeOrderRepo) UpsertByExternalID(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ShopID == order.ShopID && o.ExternalID == order.ExternalID {
			o.FinancialStatus = order.FinancialStatus
			o.FulfillmentStatus = order.FulfillmentStatus
			o.TotalPrice = order.TotalPrice
			if !o.PIIRedacted {
				o.Email = order.Email
				o.Note = order.Note
				o.ShippingAddress = order.ShippingAddress
				o.BillingAddress = order.BillingAddress
				o.CustomerExternalID = order.CustomerExternalID
			}
			return nil
		}
	}
	r.seq++
	o := *order
	o.ID = "order-" + strconv.Itoa(r.seq)
	r.orders = append(r.orders, &o)
	return nil
}

func (r *fakeOrderRepo) NthRecentPlacedAt(_ context.Context, shopID string, n int) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var times []time.Time
	for _, o := range r.orders {
		if o.ShopID == shopID {
			times = append(times, o.PlacedAt)
		}
	}
	if len(times) < n {
		return time.Time{}, false, nil
	}
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })
	return times[n-1], true, nil
}

func (r *fakeOrderRepo) ListUnredactedBefore(_ context.Context, shopID string, cutoff time.Time, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.ShopID == shopID && !o.PIIRedacted && o.PlacedAt.Before(cutoff) {
			c := *o
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.Before(out[j].PlacedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOrderRepo) Redact(_ context.Context, orderID string, shipping *domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if orderID == r.redactFailID {
		return errors.New("simulated storage failure")
	}
	for _, o := range r.orders {
		if o.ID == orderID {
			o.Email = ""
			o.Note = ""
			o.BillingAddress = nil
			o.ShippingAddress = shipping
			o.PIIRedacted = true
			return nil
		}
	}
	return fmt.Errorf("order not found: %s", orderID)
}

func (r *fakeOrderRepo) CountUnredactedByCustomer(_ context.Context, shopID string, customerExternalID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if o.ShopID == shopID && o.CustomerExternalID == customerExternalID && !o.PIIRedacted {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) DeleteByShop(_ context.Context, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.Order
	for _, o := range r.orders {
		if o.ShopID != shopID {
			kept = append(kept, o)
		}
	}
	r.orders = kept
	return nil
}

func (r *fakeOrderRepo) get(orderID string) *domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == orderID {
			c := *o
			return &c
		}
	}
	return nil
}

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers []*domain.Customer
	seq       int
}

func (r *fakeCustomerRepo) add(c *domain.Customer) *domain.Customer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cc := *c
	cc.ID = "customer-" + strconv.Itoa(r.seq)
	r.customers = append(r.customers, &cc)
	return &cc
}

func (r *fakeCustomerRepo) UpsertByExternalID(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ShopID == customer.ShopID && c.ExternalID == customer.ExternalID {
			c.OrdersCount = customer.OrdersCount
			c.TotalSpent = customer.TotalSpent
			if !c.PIIRedacted {
				c.Email = customer.Email
				c.FirstName = customer.FirstName
				c.LastName = customer.LastName
				c.Phone = customer.Phone
				c.DefaultAddress = customer.DefaultAddress
			}
			return nil
		}
	}
	r.seq++
	c := *customer
	c.ID = "customer-" + strconv.Itoa(r.seq)
	r.customers = append(r.customers, &c)
	return nil
}

func (r *fakeCustomerRepo) GetByExternalID(_ context.Context, shopID string, externalID int64) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ShopID == shopID && c.ExternalID == externalID {
			cc := *c
			return &cc, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) Redact(_ context.Context, shopID string, externalID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ShopID == shopID && c.ExternalID == externalID && !c.PIIRedacted {
			c.Email = ""
			c.FirstName = ""
			c.LastName = ""
			c.Phone = ""
			c.DefaultAddress = nil
			c.PIIRedacted = true
		}
	}
	return nil
}

func (r *fakeCustomerRepo) DeleteByExternalID(_ context.Context, shopID string, externalID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.Customer
	var deleted int64
	for _, c := range r.customers {
		if c.ShopID == shopID && c.ExternalID == externalID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	r.customers = kept
	return deleted, nil
}

func (r *fakeCustomerRepo) DeleteByShop(_ context.Context, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.Customer
	for _, c := range r.customers {
		if c.ShopID != shopID {
			kept = append(kept, c)
		}
	}
	r.customers = kept
	return nil
}

type fakeDeliveryRepo struct {
	mu         sync.Mutex
	deliveries []*domain.WebhookDelivery
}

func (r *fakeDeliveryRepo) Create(_ context.Context, d *domain.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *d
	r.deliveries = append(r.deliveries, &c)
	return nil
}

func (r *fakeDeliveryRepo) MarkOutcome(_ context.Context, deliveryID string, processed bool, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deliveries {
		if d.ID == deliveryID {
			d.Processed = processed
			d.Error = errMsg
		}
	}
	return nil
}

func (r *fakeDeliveryRepo) ListUnprocessed(_ context.Context, before time.Time, limit int) ([]*domain.WebhookDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.WebhookDelivery
	for _, d := range r.deliveries {
		if !d.Processed && d.ReceivedAt.Before(before) {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeDeliveryRepo) DeleteByShopDomain(_ context.Context, shopDomain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.WebhookDelivery
	for _, d := range r.deliveries {
		if d.ShopDomain != shopDomain {
			kept = append(kept, d)
		}
	}
	r.deliveries = kept
	return nil
}

func (r *fakeDeliveryRepo) all() []*domain.WebhookDelivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.WebhookDelivery, 0, len(r.deliveries))
	for _, d := range r.deliveries {
		c := *d
		out = append(out, &c)
	}
	return out
}

type fakeUserShopRepo struct {
	mu    sync.Mutex
	links []domain.UserShop
}

func (r *fakeUserShopRepo) Link(_ context.Context, userID, shopID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.UserID == userID && l.ShopID == shopID {
			return nil
		}
	}
	r.links = append(r.links, domain.UserShop{UserID: userID, ShopID: shopID, Role: role})
	return nil
}

func (r *fakeUserShopRepo) DeleteByShop(_ context.Context, shopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []domain.UserShop
	for _, l := range r.links {
		if l.ShopID != shopID {
			kept = append(kept, l)
		}
	}
	r.links = kept
	return nil
}

type fakeNegotiationStore struct {
	mu     sync.Mutex
	stored map[string]*domain.Negotiation
}

func newFakeNegotiationStore() *fakeNegotiationStore {
	return &fakeNegotiationStore{stored: make(map[string]*domain.Negotiation)}
}

func (s *fakeNegotiationStore) Save(_ context.Context, n *domain.Negotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *n
	s.stored[n.State] = &c
	return nil
}

func (s *fakeNegotiationStore) Consume(_ context.Context, state string) (*domain.Negotiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.stored[state]
	if !ok {
		return nil, nil
	}
	delete(s.stored, state)
	return n, nil
}

type fakePlatformClient struct {
	mu sync.Mutex

	exchangeErr error
	metadataErr error
	registerErr error
	metadata    ports.ShopMetadata
	token       string

	exchangedShops  []string
	registeredShops []string
}

func (c *fakePlatformClient) AuthorizeURL(shop string, state string) string {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state
}

func (c *fakePlatformClient) ExchangeToken(_ context.Context, shop string, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exchangeErr != nil {
		return "", c.exchangeErr
	}
	c.exchangedShops = append(c.exchangedShops, shop)
	if c.token == "" {
		return "token-123", nil
	}
	return c.token, nil
}

func (c *fakePlatformClient) GetShopMetadata(_ context.Context, _ string, _ string) (*ports.ShopMetadata, error) {
	if c.metadataErr != nil {
		return nil, c.metadataErr
	}
	m := c.metadata
	return &m, nil
}

func (c *fakePlatformClient) RegisterWebhooks(_ context.Context, shop string, _ string, _ []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registerErr != nil {
		return c.registerErr
	}
	c.registeredShops = append(c.registeredShops, shop)
	return nil
}

type fakeSyncTrigger struct {
	mu        sync.Mutex
	triggered []string
}

func (t *fakeSyncTrigger) TriggerInitialSync(shopDomain string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.triggered = append(t.triggered, shopDomain)
}

type fakeCallbackVerifier struct {
	valid bool
}

func (v *fakeCallbackVerifier) VerifyCallback(_ url.Values) bool { return v.valid }

// stubHandler is a registrable topic handler for router and reconciliation tests.
type stubHandler struct {
	mu     sync.Mutex
	topics map[string]bool
	err    error
	events []*domain.WebhookEvent
}

func newStubHandler(err error, topics ...string) *stubHandler {
	m := make(map[string]bool, len(topics))
	for _, t := range topics {
		m[t] = true
	}
	return &stubHandler{topics: m, err: err}
}

func (h *stubHandler) CanHandle(topic string) bool { return h.topics[topic] }

func (h *stubHandler) Handle(_ context.Context, event *domain.WebhookEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.events = append(h.events, event)
	return nil
}

func (h *stubHandler) handled() []*domain.WebhookEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*domain.WebhookEvent(nil), h.events...)
}
