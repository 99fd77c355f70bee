package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mgiraldo/storefront/internal/core/domain"
)

// MySQLAdapter is the authoritative store: catalog, stock counters, orders,
// coupons and the audit log. Stock decrements are conditional updates so a
// race for the last unit can only have one winner.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var (
		p     domain.Product
		stock sql.NullInt64
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, price, stock, is_new, created_at, updated_at
		FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &stock, &p.IsNew, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	if stock.Valid {
		v := int(stock.Int64)
		p.Stock = &v
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT size, stock FROM product_sizes WHERE product_id = ? ORDER BY size`, id)
	if err != nil {
		return nil, fmt.Errorf("query product sizes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			size string
			n    int
		)
		if err := rows.Scan(&size, &n); err != nil {
			return nil, fmt.Errorf("scan product size: %w", err)
		}
		if p.StockBySize == nil {
			p.StockBySize = make(map[string]int)
		}
		p.Sizes = append(p.Sizes, size)
		p.StockBySize[size] = n
	}
	return &p, rows.Err()
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, description, category, price, stock, is_new, created_at, updated_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			stock sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &stock, &p.IsNew, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if stock.Valid {
			v := int(stock.Int64)
			p.Stock = &v
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// availableStock reads the counter a deduction for (productID, size) would
// hit: the per-size row when one exists, the product row otherwise. Missing
// data counts as zero.
func availableStock(ctx context.Context, q queryRower, productID, size string) (int, error) {
	if size != "" {
		var n int
		err := q.QueryRowContext(ctx, `
			SELECT stock FROM product_sizes WHERE product_id = ? AND size = ?`, productID, size,
		).Scan(&n)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("query size stock: %w", err)
		}
	}

	var stock sql.NullInt64
	err := q.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = ?`, productID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query product stock: %w", err)
	}
	if !stock.Valid {
		return 0, nil
	}
	return int(stock.Int64), nil
}

func (m *MySQLAdapter) ValidateStock(ctx context.Context, items []domain.StockRequest) error {
	for _, item := range items {
		available, err := availableStock(ctx, m.db, item.ProductID, item.Size)
		if err != nil {
			return err
		}
		if available < item.Quantity {
			return &domain.StockError{ProductID: item.ProductID, Size: item.Size, Available: available}
		}
	}
	return nil
}

// Deduct decrements stock for every line of the order exactly once. The
// stock_deducted mark is read under a row lock and written in the same
// transaction as the decrements, so a repeated call observes the mark and
// does nothing.
func (m *MySQLAdapter) Deduct(ctx context.Context, orderID string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var deducted bool
	err = tx.QueryRowContext(ctx, `
		SELECT stock_deducted FROM orders WHERE id = ? FOR UPDATE`, orderID,
	).Scan(&deducted)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("order %s not found", orderID)
	}
	if err != nil {
		return fmt.Errorf("lock order: %w", err)
	}
	if deducted {
		return nil
	}

	lines, err := readOrderLines(ctx, tx, orderID)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if err := deductLine(ctx, tx, line); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET stock_deducted = 1, updated_at = NOW() WHERE id = ?`, orderID); err != nil {
		return fmt.Errorf("mark order deducted: %w", err)
	}

	return tx.Commit()
}

func deductLine(ctx context.Context, tx *sql.Tx, line domain.OrderLine) error {
	if line.Size != "" {
		result, err := tx.ExecContext(ctx, `
			UPDATE product_sizes SET stock = stock - ?
			WHERE product_id = ? AND size = ? AND stock >= ?`,
			line.Quantity, line.ProductID, line.Size, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("deduct size stock: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows > 0 {
			return nil
		}

		// Distinguish a missing per-size row (fall back to the product
		// counter) from an insufficient one.
		var n int
		err = tx.QueryRowContext(ctx, `
			SELECT stock FROM product_sizes WHERE product_id = ? AND size = ?`,
			line.ProductID, line.Size,
		).Scan(&n)
		if err == nil {
			return &domain.StockError{ProductID: line.ProductID, Size: line.Size, Available: n}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query size stock: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE products SET stock = stock - ?, updated_at = NOW()
		WHERE id = ? AND stock IS NOT NULL AND stock >= ?`,
		line.Quantity, line.ProductID, line.Quantity,
	)
	if err != nil {
		return fmt.Errorf("deduct product stock: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		available, err := availableStock(ctx, tx, line.ProductID, "")
		if err != nil {
			return err
		}
		return &domain.StockError{ProductID: line.ProductID, Size: line.Size, Available: available}
	}
	return nil
}

// Restore re-adds a deducted order's stock and clears the mark. Safe to call
// repeatedly: only a marked order restores anything.
func (m *MySQLAdapter) Restore(ctx context.Context, orderID string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var deducted bool
	err = tx.QueryRowContext(ctx, `
		SELECT stock_deducted FROM orders WHERE id = ? FOR UPDATE`, orderID,
	).Scan(&deducted)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("order %s not found", orderID)
	}
	if err != nil {
		return fmt.Errorf("lock order: %w", err)
	}
	if !deducted {
		return nil
	}

	lines, err := readOrderLines(ctx, tx, orderID)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if line.Size != "" {
			result, err := tx.ExecContext(ctx, `
				UPDATE product_sizes SET stock = stock + ?
				WHERE product_id = ? AND size = ?`,
				line.Quantity, line.ProductID, line.Size,
			)
			if err != nil {
				return fmt.Errorf("restore size stock: %w", err)
			}
			if rows, _ := result.RowsAffected(); rows > 0 {
				continue
			}
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock + ?, updated_at = NOW()
			WHERE id = ? AND stock IS NOT NULL`,
			line.Quantity, line.ProductID,
		); err != nil {
			return fmt.Errorf("restore product stock: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET stock_deducted = 0, updated_at = NOW() WHERE id = ?`, orderID); err != nil {
		return fmt.Errorf("clear deduction mark: %w", err)
	}

	return tx.Commit()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func readOrderLines(ctx context.Context, q queryer, orderID string) ([]domain.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, name, size, price_at_time, quantity
		FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var (
			line domain.OrderLine
			size sql.NullString
		)
		if err := rows.Scan(&line.ProductID, &line.Name, &size, &line.PriceAtTime, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		line.Size = size.String
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
