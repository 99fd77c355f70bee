package port

import (
	"context"

	"github.com/mgiraldo/storefront/internal/core/domain"
)

type CatalogRepository interface {
	// GetProduct returns nil when the product does not exist
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// ListProducts returns the browsable catalog
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// StockLedger is the authoritative stock counter. Decrements run under a
// conditional update so two orders racing for the last unit cannot both
// succeed.
type StockLedger interface {
	// ValidateStock re-reads authoritative stock server-side; returns a
	// *domain.StockError for the first unfulfillable line
	ValidateStock(ctx context.Context, items []domain.StockRequest) error

	// Deduct decrements stock for every line of the order at most once,
	// marking the order deducted in the same atomic unit
	Deduct(ctx context.Context, orderID string) error

	// Restore re-adds a previously deducted order's stock and clears the
	// mark (compensation for cancellation)
	Restore(ctx context.Context, orderID string) error
}

type OrderRepository interface {
	// CreateOrder persists the order and its line snapshots; when the order
	// carries a coupon code the usage-count increment commits in the same
	// transaction and a reached limit returns domain.ErrCouponExhausted
	CreateOrder(ctx context.Context, order *domain.Order) error

	// GetOrder returns nil when the order does not exist
	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	// UpdateStatusCAS persists the new status only if the order is still at
	// the expected status; returns false on a lost race. Empty carrier or
	// tracking leaves the stored value untouched.
	UpdateStatusCAS(ctx context.Context, id string, expected, target domain.OrderStatus, carrier, tracking string) (bool, error)

	// AppendAudit writes an immutable audit entry
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}

type CouponRepository interface {
	// GetActiveByCode looks up an active coupon by canonical code; nil on miss
	GetActiveByCode(ctx context.Context, code string) (*domain.Coupon, error)

	CreateCoupon(ctx context.Context, c *domain.Coupon) error
	UpdateCoupon(ctx context.Context, c *domain.Coupon) error
	SetCouponActive(ctx context.Context, id string, active bool) error
	DeleteCoupon(ctx context.Context, id string) error
	ListCoupons(ctx context.Context) ([]domain.Coupon, error)
}
