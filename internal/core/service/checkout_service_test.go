package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgiraldo/storefront/internal/core/domain"
)

type checkoutFixture struct {
	svc     *CheckoutService
	ledger  *mockLedger
	orders  *mockOrderRepo
	coupons *mockCouponRepo
	gateway *mockGateway
	guard   *mockGuard
}

func newCheckoutFixture() *checkoutFixture {
	price := func(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
	ten := 10
	catalog := &mockCatalog{products: map[string]domain.Product{
		"tee-orbit":  {ID: "tee-orbit", Name: "Orbit Tee", Price: price(90000), Stock: &ten},
		"cap-static": {ID: "cap-static", Name: "Static Cap", Price: price(60000), Stock: &ten},
	}}

	f := &checkoutFixture{
		ledger:  &mockLedger{},
		orders:  newMockOrderRepo(),
		coupons: newMockCouponRepo(),
		gateway: &mockGateway{url: "https://pay.example.com/p/abc"},
		guard:   newMockGuard(),
	}
	couponSvc := NewCouponService(f.coupons, staffAuthorizer(staffToken, "maria"))
	f.svc = NewCheckoutService(f.ledger, catalog, f.orders, couponSvc, f.gateway, f.guard)
	return f
}

func checkoutReq() CheckoutRequest {
	return CheckoutRequest{
		OrderRef:        "ref-001",
		Items:           []CheckoutItem{{ProductID: "tee-orbit", Size: "M", Quantity: 2}},
		CustomerName:    "Ana",
		CustomerEmail:   "ana@example.com",
		ShippingAddress: "Calle 10 #5-23, Bogotá",
	}
}

func TestCheckout_Success(t *testing.T) {
	f := newCheckoutFixture()

	res, err := f.svc.Checkout(context.Background(), checkoutReq())
	require.NoError(t, err)

	assert.Equal(t, "ref-001", res.OrderID)
	assert.Equal(t, "https://pay.example.com/p/abc", res.RedirectURL)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(180000)))

	order := f.orders.get("ref-001")
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "es", order.Language, "language defaults to Spanish")
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 2, order.Lines[0].Quantity)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	req := checkoutReq()
	req.Items = nil

	_, err := f.svc.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_DuplicateSubmission(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.Checkout(context.Background(), checkoutReq())
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), checkoutReq())
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.Equal(t, 1, f.orders.created)
	assert.Equal(t, 1, f.gateway.calls)
}

func TestCheckout_GeneratesOrderRefWhenMissing(t *testing.T) {
	f := newCheckoutFixture()
	req := checkoutReq()
	req.OrderRef = ""

	res, err := f.svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderID)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	f := newCheckoutFixture()
	f.ledger.validateErr = &domain.StockError{ProductID: "tee-orbit", Size: "M", Available: 1}

	_, err := f.svc.Checkout(context.Background(), checkoutReq())
	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "tee-orbit", se.ProductID)
	assert.Equal(t, 1, se.Available)
	assert.Equal(t, 0, f.orders.created, "no order is placed when stock fails")
}

func TestCheckout_RepeatedVariantLinesValidateCombined(t *testing.T) {
	f := newCheckoutFixture()
	req := checkoutReq()
	req.Items = []CheckoutItem{
		{ProductID: "tee-orbit", Size: "M", Quantity: 2},
		{ProductID: "cap-static", Quantity: 1},
		{ProductID: "tee-orbit", Size: "M", Quantity: 2},
	}

	_, err := f.svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	// The stock check sees one request of 4 for the repeated variant, the
	// same total the deduction will attempt.
	require.Len(t, f.ledger.validated, 2)
	assert.Equal(t, domain.StockRequest{ProductID: "tee-orbit", Size: "M", Quantity: 4}, f.ledger.validated[0])
	assert.Equal(t, domain.StockRequest{ProductID: "cap-static", Quantity: 1}, f.ledger.validated[1])

	// The order snapshot keeps the lines as submitted.
	order := f.orders.get("ref-001")
	require.Len(t, order.Lines, 3)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(420000)))
}

func TestCheckout_PricesComeFromCatalog(t *testing.T) {
	f := newCheckoutFixture()
	req := checkoutReq()
	// The client's display name is cosmetic; price is never client-supplied.
	req.Items = []CheckoutItem{{ProductID: "cap-static", Quantity: 1, DisplayName: "Free Cap"}}

	res, err := f.svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(60000)))

	order := f.orders.get("ref-001")
	assert.Equal(t, "Static Cap", order.Lines[0].Name)
	assert.True(t, order.Lines[0].PriceAtTime.Equal(decimal.NewFromInt(60000)))
}

func TestCheckout_UnknownProduct(t *testing.T) {
	f := newCheckoutFixture()
	req := checkoutReq()
	req.Items = []CheckoutItem{{ProductID: "ghost", Quantity: 1}}

	_, err := f.svc.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCheckout_WithCoupon(t *testing.T) {
	f := newCheckoutFixture()
	cap := decimal.NewFromInt(20000)
	f.coupons.coupons["SUMMER25"] = domain.Coupon{
		ID:          "c-summer25",
		Code:        "SUMMER25",
		Kind:        domain.DiscountPercentage,
		Value:       decimal.NewFromInt(25),
		MaxDiscount: &cap,
		Active:      true,
	}

	req := checkoutReq()
	req.CouponCode = "summer25"

	// 25% of 180000 is 45000, capped at 20000.
	res, err := f.svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Discount.Equal(decimal.NewFromInt(20000)))
	assert.True(t, res.Total.Equal(decimal.NewFromInt(160000)))

	order := f.orders.get("ref-001")
	assert.Equal(t, "SUMMER25", order.CouponCode)
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(20000)))
}

func TestCheckout_CouponRejectionAborts(t *testing.T) {
	f := newCheckoutFixture()
	req := checkoutReq()
	req.CouponCode = "NOPE"

	_, err := f.svc.Checkout(context.Background(), req)
	var rej *domain.CouponRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, domain.RejectInvalidCode, rej.Reason)
	assert.Equal(t, 0, f.orders.created)
}

func TestCheckout_CouponExhaustedAtPlacement(t *testing.T) {
	f := newCheckoutFixture()
	f.coupons.coupons["SUMMER25"] = domain.Coupon{
		ID:     "c-summer25",
		Code:   "SUMMER25",
		Kind:   domain.DiscountPercentage,
		Value:  decimal.NewFromInt(25),
		Active: true,
	}
	// The pure validation passed but the atomic increment at placement found
	// the limit reached.
	f.orders.createErr = domain.ErrCouponExhausted

	req := checkoutReq()
	req.CouponCode = "SUMMER25"

	_, err := f.svc.Checkout(context.Background(), req)
	var rej *domain.CouponRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, domain.RejectUsageLimit, rej.Reason)
}

func TestCheckout_GatewayFailureLeavesOrderPending(t *testing.T) {
	f := newCheckoutFixture()
	f.gateway.err = context.DeadlineExceeded

	_, err := f.svc.Checkout(context.Background(), checkoutReq())
	require.ErrorIs(t, err, ErrPaymentUnavailable)

	order := f.orders.get("ref-001")
	assert.Equal(t, domain.OrderStatusPending, order.Status, "the order survives a gateway outage")
	assert.WithinDuration(t, time.Now(), order.PlacedAt, time.Minute)
}
