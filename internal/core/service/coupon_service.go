package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mgiraldo/storefront/internal/core/domain"
	"github.com/mgiraldo/storefront/internal/port"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrCouponNotFound = errors.New("coupon not found")
	ErrInvalidCoupon  = errors.New("invalid coupon definition")
)

type CouponService struct {
	coupons port.CouponRepository
	auth    port.Authorizer
}

func NewCouponService(coupons port.CouponRepository, auth port.Authorizer) *CouponService {
	return &CouponService{coupons: coupons, auth: auth}
}

// Validate runs the full redemption pipeline without side effects. The
// usage counter is only incremented later, atomically with order placement.
func (s *CouponService) Validate(ctx context.Context, code string, cartTotal decimal.Decimal) (*domain.Redemption, error) {
	coupon, err := s.coupons.GetActiveByCode(ctx, domain.NormalizeCouponCode(code))
	if err != nil {
		return nil, fmt.Errorf("coupon lookup: %w", err)
	}
	if coupon == nil {
		return nil, &domain.CouponRejection{Reason: domain.RejectInvalidCode}
	}

	redemption, err := domain.RedeemCoupon(*coupon, cartTotal, time.Now())
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (s *CouponService) authorize(ctx context.Context, token string) error {
	actor, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if actor == nil || !actor.Staff {
		return ErrUnauthorized
	}
	return nil
}

func validateCoupon(c *domain.Coupon) error {
	c.Code = domain.NormalizeCouponCode(c.Code)
	if c.Code == "" {
		return ErrInvalidCoupon
	}
	if c.Kind != domain.DiscountPercentage && c.Kind != domain.DiscountFixed {
		return ErrInvalidCoupon
	}
	if !c.Value.IsPositive() {
		return ErrInvalidCoupon
	}
	if c.Kind == domain.DiscountPercentage && c.Value.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidCoupon
	}
	// The discount cap is a percentage-only field.
	if c.Kind == domain.DiscountFixed {
		c.MaxDiscount = nil
	}
	return nil
}

func (s *CouponService) Create(ctx context.Context, token string, c *domain.Coupon) error {
	if err := s.authorize(ctx, token); err != nil {
		return err
	}
	if err := validateCoupon(c); err != nil {
		return err
	}
	return s.coupons.CreateCoupon(ctx, c)
}

func (s *CouponService) Update(ctx context.Context, token string, c *domain.Coupon) error {
	if err := s.authorize(ctx, token); err != nil {
		return err
	}
	if err := validateCoupon(c); err != nil {
		return err
	}
	return s.coupons.UpdateCoupon(ctx, c)
}

func (s *CouponService) SetActive(ctx context.Context, token, id string, active bool) error {
	if err := s.authorize(ctx, token); err != nil {
		return err
	}
	return s.coupons.SetCouponActive(ctx, id, active)
}

func (s *CouponService) Delete(ctx context.Context, token, id string) error {
	if err := s.authorize(ctx, token); err != nil {
		return err
	}
	return s.coupons.DeleteCoupon(ctx, id)
}

func (s *CouponService) List(ctx context.Context, token string) ([]domain.Coupon, error) {
	if err := s.authorize(ctx, token); err != nil {
		return nil, err
	}
	return s.coupons.ListCoupons(ctx)
}
