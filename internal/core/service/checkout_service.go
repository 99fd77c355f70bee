package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mgiraldo/storefront/internal/core/domain"
	"github.com/mgiraldo/storefront/internal/port"
)

var (
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrEmptyCart          = errors.New("no items to check out")
	ErrPaymentUnavailable = errors.New("payment initialization failed")
)

type CheckoutItem struct {
	ProductID   string `json:"product_id"`
	Size        string `json:"size"`
	Quantity    int    `json:"quantity"`
	DisplayName string `json:"display_name"`
}

type CheckoutRequest struct {
	// OrderRef is the client-supplied order reference; generated when empty.
	// It doubles as the idempotency key against duplicate submissions.
	OrderRef        string
	Items           []CheckoutItem
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	Language        string
	CouponCode      string
}

type CheckoutResult struct {
	OrderID     string
	RedirectURL string
	Total       decimal.Decimal
	Discount    decimal.Decimal
}

// CheckoutService turns a cart into a pending order and a payment redirect.
// Stock is revalidated server-side and lines are priced from the catalog:
// client-supplied stock or price figures are never trusted.
type CheckoutService struct {
	ledger   port.StockLedger
	catalog  port.CatalogRepository
	orders   port.OrderRepository
	coupons  *CouponService
	payments port.PaymentGateway
	guard    port.IdempotencyGuard
}

func NewCheckoutService(
	ledger port.StockLedger,
	catalog port.CatalogRepository,
	orders port.OrderRepository,
	coupons *CouponService,
	payments port.PaymentGateway,
	guard port.IdempotencyGuard,
) *CheckoutService {
	return &CheckoutService{
		ledger:   ledger,
		catalog:  catalog,
		orders:   orders,
		coupons:  coupons,
		payments: payments,
		guard:    guard,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	orderID := req.OrderRef
	if orderID == "" {
		orderID = uuid.New().String()
	} else {
		ok, err := s.guard.SetIdempotency(ctx, "checkout:"+orderID)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	// Quantities are aggregated per (product, size): a request may repeat a
	// variant across lines, and the stock check must see the combined total
	// or an order could pass validation yet be impossible to deduct.
	type variantKey struct {
		productID string
		size      string
	}
	index := make(map[variantKey]int, len(req.Items))
	stockReqs := make([]domain.StockRequest, 0, len(req.Items))
	for _, item := range req.Items {
		key := variantKey{item.ProductID, item.Size}
		if i, ok := index[key]; ok {
			stockReqs[i].Quantity += item.Quantity
			continue
		}
		index[key] = len(stockReqs)
		stockReqs = append(stockReqs, domain.StockRequest{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		})
	}
	if err := s.ledger.ValidateStock(ctx, stockReqs); err != nil {
		return nil, err
	}

	lines := make([]domain.OrderLine, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, ErrProductNotFound
		}
		lines = append(lines, domain.OrderLine{
			ProductID:   product.ID,
			Name:        product.Name,
			Size:        item.Size,
			PriceAtTime: product.Price,
			Quantity:    item.Quantity,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discount := decimal.Zero
	couponCode := ""
	if req.CouponCode != "" {
		redemption, err := s.coupons.Validate(ctx, req.CouponCode, total)
		if err != nil {
			return nil, err
		}
		discount = redemption.AppliedDiscount
		couponCode = redemption.Code
	}

	language := req.Language
	if language == "" {
		language = "es"
	}

	order := &domain.Order{
		ID:              orderID,
		Status:          domain.OrderStatusPending,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Language:        language,
		Total:           total.Sub(discount),
		Discount:        discount,
		CouponCode:      couponCode,
		PlacedAt:        time.Now(),
		UpdatedAt:       time.Now(),
		Lines:           lines,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, domain.ErrCouponExhausted) {
			return nil, &domain.CouponRejection{Reason: domain.RejectUsageLimit}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]port.PaymentItem, 0, len(lines))
	for _, line := range lines {
		title := line.Name
		if line.Size != "" {
			title = fmt.Sprintf("%s (%s)", line.Name, line.Size)
		}
		items = append(items, port.PaymentItem{
			ID:        line.ProductID,
			Title:     title,
			Quantity:  line.Quantity,
			UnitPrice: line.PriceAtTime,
		})
	}

	// A gateway failure leaves the order pending; the customer can retry
	// and the confirm webhook remains the only path to paid.
	url, err := s.payments.CreatePreference(ctx, order.ID, items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	return &CheckoutResult{
		OrderID:     order.ID,
		RedirectURL: url,
		Total:       order.Total,
		Discount:    discount,
	}, nil
}
