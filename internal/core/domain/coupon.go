package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// ErrCouponExhausted is returned when the atomic usage-count increment at
// order placement finds the limit already reached.
var ErrCouponExhausted = errors.New("coupon usage limit reached")

type Coupon struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	Kind        DiscountKind     `json:"discount_type"`
	Value       decimal.Decimal  `json:"discount_value"`
	ExpiresAt   *time.Time       `json:"expiration_date,omitempty"`
	UsageLimit  *int             `json:"usage_limit,omitempty"`
	UsageCount  int              `json:"usage_count"`
	MinPurchase decimal.Decimal  `json:"min_purchase_amount"`
	MaxDiscount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	Active      bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
}

type RejectionReason string

const (
	RejectInvalidCode RejectionReason = "invalid_code"
	RejectExpired     RejectionReason = "expired"
	RejectUsageLimit  RejectionReason = "usage_limit_reached"
	RejectMinPurchase RejectionReason = "minimum_purchase_not_met"
)

// CouponRejection is the typed refusal of a coupon. MinPurchase is set only
// for RejectMinPurchase so the UI can display the required amount.
type CouponRejection struct {
	Reason      RejectionReason
	MinPurchase decimal.Decimal
}

func (r *CouponRejection) Error() string {
	return "coupon rejected: " + string(r.Reason)
}

// Redemption is a successful validation: the coupon's public fields plus the
// discount actually applied to this cart total.
type Redemption struct {
	Code            string          `json:"code"`
	Kind            DiscountKind    `json:"discount_type"`
	Value           decimal.Decimal `json:"discount_value"`
	AppliedDiscount decimal.Decimal `json:"applied_discount"`
}

// NormalizeCouponCode canonicalizes a raw code for lookup and storage.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// RedeemCoupon runs the validation pipeline against an already looked-up
// coupon. It is pure: the usage counter is not touched here, the caller
// commits the increment atomically with order placement. First failure wins.
func RedeemCoupon(c Coupon, cartTotal decimal.Decimal, now time.Time) (Redemption, error) {
	if !c.Active {
		return Redemption{}, &CouponRejection{Reason: RejectInvalidCode}
	}

	// Expiration is day-granular: a coupon expiring today stays valid
	// through the end of today.
	if c.ExpiresAt != nil {
		e := *c.ExpiresAt
		cutoff := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		if !now.Before(cutoff) {
			return Redemption{}, &CouponRejection{Reason: RejectExpired}
		}
	}

	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return Redemption{}, &CouponRejection{Reason: RejectUsageLimit}
	}

	if cartTotal.LessThan(c.MinPurchase) {
		return Redemption{}, &CouponRejection{Reason: RejectMinPurchase, MinPurchase: c.MinPurchase}
	}

	var discount decimal.Decimal
	if c.Kind == DiscountPercentage {
		discount = cartTotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(0)
		// The cap applies to percentage coupons only; fixed coupons are
		// never capped by MaxDiscount.
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
	} else {
		discount = c.Value
	}

	if discount.GreaterThan(cartTotal) {
		discount = cartTotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	return Redemption{
		Code:            c.Code,
		Kind:            c.Kind,
		Value:           c.Value,
		AppliedDiscount: discount,
	}, nil
}
