package main

import (
	"context"
	"database/sql"
	"log"

	_ "github.com/go-sql-driver/mysql"

	"github.com/mgiraldo/storefront/internal/config"
)

// Creates the schema and loads a small catalog plus demo coupons for local
// runs. Safe to re-run: inserts upsert on their primary keys.
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("failed to create schema: %v", err)
		}
	}
	log.Println("schema ready")

	products := []struct {
		id, name, description, category string
		price                           int
		stock                           any
		isNew                           bool
	}{
		{"tee-orbit", "Orbit Tee", "Heavyweight cotton tee", "shirts", 90000, 40, true},
		{"hoodie-eclipse", "Eclipse Hoodie", "Oversized fleece hoodie", "hoodies", 220000, 15, false},
		{"cap-static", "Static Cap", "Five-panel cap", "accessories", 60000, nil, false},
	}
	for _, p := range products {
		_, err := db.ExecContext(ctx, `
			INSERT INTO products (id, name, description, category, price, stock, is_new, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
			ON DUPLICATE KEY UPDATE name = VALUES(name), price = VALUES(price), stock = VALUES(stock)`,
			p.id, p.name, p.description, p.category, p.price, p.stock, p.isNew,
		)
		if err != nil {
			log.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}

	sizes := []struct {
		productID, size string
		stock           int
	}{
		{"tee-orbit", "S", 10},
		{"tee-orbit", "M", 20},
		{"tee-orbit", "L", 10},
		{"hoodie-eclipse", "M", 8},
		{"hoodie-eclipse", "L", 7},
	}
	for _, s := range sizes {
		_, err := db.ExecContext(ctx, `
			INSERT INTO product_sizes (product_id, size, stock) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE stock = VALUES(stock)`,
			s.productID, s.size, s.stock,
		)
		if err != nil {
			log.Fatalf("failed to seed size %s/%s: %v", s.productID, s.size, err)
		}
	}

	coupons := []struct {
		id, code, kind string
		value          int
		minPurchase    int
		maxDiscount    any
		usageLimit     any
	}{
		{"c-summer25", "SUMMER25", "percentage", 25, 0, 20000, nil},
		{"c-welcome", "WELCOME10", "fixed", 10000, 50000, nil, 100},
	}
	for _, c := range coupons {
		_, err := db.ExecContext(ctx, `
			INSERT INTO coupons (id, code, discount_type, discount_value, expiration_date,
				usage_limit, usage_count, min_purchase_amount, max_discount_amount, is_active, created_at)
			VALUES (?, ?, ?, ?, NULL, ?, 0, ?, ?, 1, NOW())
			ON DUPLICATE KEY UPDATE discount_value = VALUES(discount_value)`,
			c.id, c.code, c.kind, c.value, c.usageLimit, c.minPurchase, c.maxDiscount,
		)
		if err != nil {
			log.Fatalf("failed to seed coupon %s: %v", c.code, err)
		}
	}

	log.Println("seed data loaded")
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		category VARCHAR(100) NOT NULL DEFAULT '',
		price DECIMAL(12,2) NOT NULL,
		stock INT NULL,
		is_new TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_sizes (
		product_id VARCHAR(64) NOT NULL,
		size VARCHAR(16) NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		PRIMARY KEY (product_id, size)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR(64) PRIMARY KEY,
		status VARCHAR(16) NOT NULL,
		customer_name VARCHAR(255) NOT NULL DEFAULT '',
		customer_email VARCHAR(255) NOT NULL DEFAULT '',
		customer_phone VARCHAR(64) NOT NULL DEFAULT '',
		shipping_address VARCHAR(512) NOT NULL DEFAULT '',
		language VARCHAR(8) NOT NULL DEFAULT 'es',
		total DECIMAL(12,2) NOT NULL,
		discount DECIMAL(12,2) NOT NULL DEFAULT 0,
		coupon_code VARCHAR(64) NOT NULL DEFAULT '',
		carrier VARCHAR(128) NOT NULL DEFAULT '',
		tracking_number VARCHAR(128) NOT NULL DEFAULT '',
		stock_deducted TINYINT(1) NOT NULL DEFAULT 0,
		placed_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id VARCHAR(64) NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		size VARCHAR(16) NULL,
		price_at_time DECIMAL(12,2) NOT NULL,
		quantity INT NOT NULL,
		KEY idx_order_items_order (order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id VARCHAR(64) PRIMARY KEY,
		code VARCHAR(64) NOT NULL UNIQUE,
		discount_type VARCHAR(16) NOT NULL,
		discount_value DECIMAL(12,2) NOT NULL,
		expiration_date DATE NULL,
		usage_limit INT NULL,
		usage_count INT NOT NULL DEFAULT 0,
		min_purchase_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
		max_discount_amount DECIMAL(12,2) NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		action VARCHAR(64) NOT NULL,
		description VARCHAR(512) NOT NULL,
		actor VARCHAR(255) NOT NULL,
		order_id VARCHAR(64) NOT NULL,
		new_status VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL
	)`,
}
