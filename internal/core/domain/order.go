package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// transitions is the forward-only status graph. delivered and cancelled are
// terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError rejects an edge outside the status graph.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal order transition %s -> %s", e.From, e.To)
}

// OrderLine is an immutable snapshot of a cart line captured at order
// creation. PriceAtTime never changes, even if the catalog product does.
type OrderLine struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Size        string          `json:"size,omitempty"`
	PriceAtTime decimal.Decimal `json:"price_at_time"`
	Quantity    int             `json:"quantity"`
}

type Order struct {
	ID              string          `json:"id"`
	Status          OrderStatus     `json:"status"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress string          `json:"shipping_address"`
	Language        string          `json:"language"`
	Total           decimal.Decimal `json:"total"`
	Discount        decimal.Decimal `json:"discount"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Carrier         string          `json:"carrier,omitempty"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	StockDeducted   bool            `json:"stock_deducted"`
	PlacedAt        time.Time       `json:"placed_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Lines           []OrderLine     `json:"lines"`
}

// Effect is one intended side effect of a status transition. The planner
// below produces the list; an executor performs them, so persistence,
// notification and audit stay independently mockable and a failed email can
// never roll back an already persisted status.
type Effect int

const (
	EffectPersistStatus Effect = iota
	EffectDeductStock
	EffectRestoreStock
	EffectNotifyShipped
	EffectAudit
	EffectPublishStatus
)

// PlanTransition decides whether the move from the order's current status to
// target is legal and which effects it carries. A transition to the current
// status plans nothing: duplicate delivery is resolved as success. The one
// exception is a paid order whose deduction never landed (an earlier attempt
// failed after the status committed): the retry still owes the deduction,
// and the ledger's mark makes repeating it safe.
func PlanTransition(o Order, target OrderStatus) ([]Effect, error) {
	if o.Status == target {
		if target == OrderStatusPaid && !o.StockDeducted {
			return []Effect{EffectDeductStock}, nil
		}
		return nil, nil
	}
	if !CanTransition(o.Status, target) {
		return nil, &TransitionError{From: o.Status, To: target}
	}

	effects := []Effect{EffectPersistStatus}
	switch target {
	case OrderStatusPaid:
		effects = append(effects, EffectDeductStock)
	case OrderStatusCancelled:
		if o.StockDeducted {
			effects = append(effects, EffectRestoreStock)
		}
	case OrderStatusShipped:
		if o.CustomerEmail != "" {
			effects = append(effects, EffectNotifyShipped)
		}
	}
	return append(effects, EffectAudit, EffectPublishStatus), nil
}
