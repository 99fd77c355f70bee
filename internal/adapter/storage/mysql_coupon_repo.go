package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mgiraldo/storefront/internal/core/domain"
)

func (m *MySQLAdapter) GetActiveByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, code, discount_type, discount_value, expiration_date,
			usage_limit, usage_count, min_purchase_amount, max_discount_amount,
			is_active, created_at
		FROM coupons WHERE code = ? AND is_active = 1`, code)

	coupon, err := scanCoupon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query coupon: %w", err)
	}
	return coupon, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*domain.Coupon, error) {
	var (
		c           domain.Coupon
		expiresAt   sql.NullTime
		usageLimit  sql.NullInt64
		maxDiscount sql.NullString
	)
	err := row.Scan(&c.ID, &c.Code, &c.Kind, &c.Value, &expiresAt,
		&usageLimit, &c.UsageCount, &c.MinPurchase, &maxDiscount,
		&c.Active, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	if usageLimit.Valid {
		n := int(usageLimit.Int64)
		c.UsageLimit = &n
	}
	if maxDiscount.Valid {
		d, err := decimal.NewFromString(maxDiscount.String)
		if err != nil {
			return nil, fmt.Errorf("parse max discount: %w", err)
		}
		c.MaxDiscount = &d
	}
	return &c, nil
}

func (m *MySQLAdapter) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO coupons (id, code, discount_type, discount_value, expiration_date,
			usage_limit, usage_count, min_purchase_amount, max_discount_amount, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, NOW())`,
		c.ID, c.Code, c.Kind, c.Value, nullTime(c.ExpiresAt),
		nullInt(c.UsageLimit), c.MinPurchase, nullDecimal(c.MaxDiscount), c.Active,
	)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE coupons SET code = ?, discount_type = ?, discount_value = ?,
			expiration_date = ?, usage_limit = ?, min_purchase_amount = ?,
			max_discount_amount = ?, is_active = ?
		WHERE id = ?`,
		c.Code, c.Kind, c.Value, nullTime(c.ExpiresAt), nullInt(c.UsageLimit),
		c.MinPurchase, nullDecimal(c.MaxDiscount), c.Active, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) SetCouponActive(ctx context.Context, id string, active bool) error {
	if _, err := m.db.ExecContext(ctx, `UPDATE coupons SET is_active = ? WHERE id = ?`, active, id); err != nil {
		return fmt.Errorf("toggle coupon: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteCoupon(ctx context.Context, id string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, code, discount_type, discount_value, expiration_date,
			usage_limit, usage_count, min_purchase_amount, max_discount_amount,
			is_active, created_at
		FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}
