package service

import (
	"context"
	"sync"
	"time"

	"github.com/mgiraldo/storefront/internal/core/domain"
	"github.com/mgiraldo/storefront/internal/port"
)

// Hand-rolled collaborator fakes shared by the service tests.

type mockCatalog struct {
	products map[string]domain.Product
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

type mockCartRepo struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
	saves int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[string]domain.Cart)}
}

func (m *mockCartRepo) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, nil
	}
	return &cart, nil
}

func (m *mockCartRepo) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = cart
	m.saves++
	return nil
}

func (m *mockCartRepo) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

// mockLedger keeps the real adapter's contract: a successful Deduct marks the
// order and a successful Restore clears it, so retry paths see the mark.
type mockLedger struct {
	mu           sync.Mutex
	orders       *mockOrderRepo
	validateErr  error
	deductErr    error
	deductCalls  int
	restoreCalls int
	validated    []domain.StockRequest
}

func (m *mockLedger) ValidateStock(ctx context.Context, items []domain.StockRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validated = append([]domain.StockRequest(nil), items...)
	return m.validateErr
}

func (m *mockLedger) Deduct(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deductErr != nil {
		return m.deductErr
	}
	m.deductCalls++
	if m.orders != nil {
		o := m.orders.get(orderID)
		o.StockDeducted = true
		m.orders.put(o)
	}
	return nil
}

func (m *mockLedger) Restore(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreCalls++
	if m.orders != nil {
		o := m.orders.get(orderID)
		o.StockDeducted = false
		m.orders.put(o)
	}
	return nil
}

type mockOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	audits    []domain.AuditEntry
	createErr error
	created   int

	// casHook, when set, runs before every compare-and-swap so tests can
	// simulate a concurrent writer.
	casHook func()
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]domain.Order)}
}

func (m *mockOrderRepo) put(o domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}

func (m *mockOrderRepo) get(id string) domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[order.ID] = *order
	m.created++
	return nil
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (m *mockOrderRepo) UpdateStatusCAS(ctx context.Context, id string, expected, target domain.OrderStatus, carrier, tracking string) (bool, error) {
	if m.casHook != nil {
		m.casHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok || order.Status != expected {
		return false, nil
	}
	order.Status = target
	if carrier != "" {
		order.Carrier = carrier
	}
	if tracking != "" {
		order.TrackingNumber = tracking
	}
	m.orders[id] = order
	return true, nil
}

func (m *mockOrderRepo) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, entry)
	return nil
}

type mockCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]domain.Coupon // by canonical code
	deleted []string
}

func newMockCouponRepo() *mockCouponRepo {
	return &mockCouponRepo{coupons: make(map[string]domain.Coupon)}
}

func (m *mockCouponRepo) GetActiveByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[code]
	if !ok || !c.Active {
		return nil, nil
	}
	return &c, nil
}

func (m *mockCouponRepo) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[c.Code] = *c
	return nil
}

func (m *mockCouponRepo) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[c.Code] = *c
	return nil
}

func (m *mockCouponRepo) SetCouponActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, c := range m.coupons {
		if c.ID == id {
			c.Active = active
			m.coupons[code] = c
		}
	}
	return nil
}

func (m *mockCouponRepo) DeleteCoupon(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, c := range m.coupons {
		if c.ID == id {
			delete(m.coupons, code)
		}
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCouponRepo) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Coupon, 0, len(m.coupons))
	for _, c := range m.coupons {
		out = append(out, c)
	}
	return out, nil
}

type mockNotifier struct {
	mu      sync.Mutex
	notices []port.ShippedNotice
	sendErr error
}

func (m *mockNotifier) SendShipped(ctx context.Context, notice port.ShippedNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, notice)
	return m.sendErr
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.OrderStatus
}

func (m *mockPublisher) PublishOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, status)
	return nil
}

type mockAuthorizer struct {
	actors map[string]*port.Actor
}

func staffAuthorizer(token, name string) *mockAuthorizer {
	return &mockAuthorizer{actors: map[string]*port.Actor{
		token: {ID: token, Name: name, Staff: true},
	}}
}

func (m *mockAuthorizer) Authenticate(ctx context.Context, token string) (*port.Actor, error) {
	return m.actors[token], nil
}

type mockGateway struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (m *mockGateway) CreatePreference(ctx context.Context, orderID string, items []port.PaymentItem) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

type mockGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMockGuard() *mockGuard {
	return &mockGuard{keys: make(map[string]bool)}
}

func (m *mockGuard) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}
