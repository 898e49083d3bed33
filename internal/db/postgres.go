package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ConnectPostgres opens the pool, pings it and bootstraps the schema.
func ConnectPostgres(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("✅ Connected to PostgreSQL")

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("✅ Schema initialized successfully")
	return db, nil
}

// schema is applied in order; every statement is idempotent.
var schema = []string{
	// -------------------------------
	// MENU ITEMS (dishes and drinks)
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS menu_items (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(50) NOT NULL DEFAULT 'dish',
		is_limited_offer BOOLEAN NOT NULL DEFAULT FALSE,
		ingredients TEXT[],
		size VARCHAR(50),
		price NUMERIC(10, 2),
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS menu_items_restaurant_category_idx
		ON menu_items (restaurant_id, category)`,

	// -------------------------------
	// VARIANTS
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS item_variants (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES menu_items(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		position INT NOT NULL DEFAULT 0
	)`,

	// -------------------------------
	// PRICING
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS item_pricing (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES menu_items(id) ON DELETE CASCADE,
		variant_id TEXT NULL,
		size VARCHAR(100) NOT NULL DEFAULT '',
		price NUMERIC(10, 2) NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		free_drinks_included BOOLEAN NOT NULL DEFAULT FALSE,
		free_drinks_quantity INT NOT NULL DEFAULT 0,
		free_drinks_list TEXT[],
		offer_end_at TIMESTAMPTZ NULL,
		position INT NOT NULL DEFAULT 0
	)`,

	// -------------------------------
	// SUPPLEMENTS (id optional: older rows are keyed by name)
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS item_supplements (
		id TEXT NULL,
		item_id TEXT NOT NULL REFERENCES menu_items(id) ON DELETE CASCADE,
		variant_id TEXT NULL,
		name VARCHAR(255) NOT NULL,
		price NUMERIC(10, 2) NOT NULL DEFAULT 0
	)`,

	// -------------------------------
	// DEALS
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS item_deals (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES menu_items(id) ON DELETE CASCADE,
		variant_id TEXT NULL,
		type VARCHAR(20) NOT NULL CHECK (type IN ('PERCENTAGE', 'FLAT')),
		discount_value NUMERIC(10, 2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING'
	)`,

	// -------------------------------
	// CART
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS cart_items (
		id TEXT PRIMARY KEY,
		seq BIGINT GENERATED BY DEFAULT AS IDENTITY,
		customer_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		variant_id TEXT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(10, 2) NOT NULL,
		extras_price NUMERIC(10, 2) NOT NULL DEFAULT 0,
		discount NUMERIC(10, 2) NOT NULL DEFAULT 0,
		total_price NUMERIC(10, 2) NOT NULL,
		customizations JSONB NOT NULL,
		special_instructions TEXT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	// insertion order breaks created_at ties between lines of one confirm
	`ALTER TABLE cart_items
		ADD COLUMN IF NOT EXISTS seq BIGINT GENERATED BY DEFAULT AS IDENTITY`,
	`CREATE INDEX IF NOT EXISTS cart_items_customer_idx
		ON cart_items (customer_id, created_at, seq)`,
}

// InitSchema creates or updates the database schema.
func InitSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
