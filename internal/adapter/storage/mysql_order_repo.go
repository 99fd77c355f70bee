package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mgiraldo/storefront/internal/core/domain"
)

// CreateOrder inserts the order and its immutable line snapshots. When a
// coupon rides along, its usage counter is incremented in the same
// transaction under a limit guard, so concurrent placements cannot
// over-redeem.
func (m *MySQLAdapter) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if order.CouponCode != "" {
		result, err := tx.ExecContext(ctx, `
			UPDATE coupons SET usage_count = usage_count + 1
			WHERE code = ? AND is_active = 1
			  AND (usage_limit IS NULL OR usage_count < usage_limit)`,
			order.CouponCode,
		)
		if err != nil {
			return fmt.Errorf("redeem coupon: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrCouponExhausted
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, status, customer_name, customer_email, customer_phone,
			shipping_address, language, total, discount, coupon_code,
			carrier, tracking_number, stock_deducted, placed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', '', 0, ?, ?)`,
		order.ID, order.Status, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.ShippingAddress, order.Language, order.Total, order.Discount, order.CouponCode,
		order.PlacedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, size, price_at_time, quantity)
			VALUES (?, ?, ?, ?, ?, ?)`,
			order.ID, line.ProductID, line.Name, line.Size, line.PriceAtTime, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var (
		o          domain.Order
		couponCode sql.NullString
		carrier    sql.NullString
		tracking   sql.NullString
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT id, status, customer_name, customer_email, customer_phone,
			shipping_address, language, total, discount, coupon_code,
			carrier, tracking_number, stock_deducted, placed_at, updated_at
		FROM orders WHERE id = ?`, id,
	).Scan(&o.ID, &o.Status, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.Language, &o.Total, &o.Discount, &couponCode,
		&carrier, &tracking, &o.StockDeducted, &o.PlacedAt, &o.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	o.CouponCode = couponCode.String
	o.Carrier = carrier.String
	o.TrackingNumber = tracking.String

	o.Lines, err = readOrderLines(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatusCAS persists target only if the row still holds expected.
// Carrier and tracking overwrite only when non-empty.
func (m *MySQLAdapter) UpdateStatusCAS(ctx context.Context, id string, expected, target domain.OrderStatus, carrier, tracking string) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders SET status = ?,
			carrier = IF(? = '', carrier, ?),
			tracking_number = IF(? = '', tracking_number, ?),
			updated_at = NOW()
		WHERE id = ? AND status = ?`,
		target, carrier, carrier, tracking, tracking, id, expected,
	)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (m *MySQLAdapter) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO audit_log (action, description, actor, order_id, new_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Action, entry.Description, entry.Actor, entry.OrderID, entry.NewStatus, entry.At,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
