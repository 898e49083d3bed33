package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// FETCH ENHANCED ITEM (item + variants + pricing + supplements + deals)
// --------------------------------------------------
func (r *PostgresRepository) FetchEnhancedItem(
	ctx context.Context,
	itemID string,
) (*Model, error) {

	m := &Model{ItemID: itemID}

	err := r.db.QueryRow(ctx, `
		SELECT restaurant_id, name, is_limited_offer, ingredients
		FROM menu_items
		WHERE id = $1
	`, itemID).Scan(&m.RestaurantID, &m.Name, &m.IsLimitedOffer, &m.Ingredients)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if m.Variants, err = r.variants(ctx, itemID); err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	if m.Pricing, err = r.pricing(ctx, itemID); err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	if m.Supplements, err = r.supplements(ctx, itemID); err != nil {
		return nil, fmt.Errorf("load supplements: %w", err)
	}
	if m.Deals, err = r.deals(ctx, itemID); err != nil {
		return nil, fmt.Errorf("load deals: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) variants(ctx context.Context, itemID string) ([]Variant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description
		FROM item_variants
		WHERE item_id = $1
		ORDER BY position, name
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.Name, &v.Description); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) pricing(ctx context.Context, itemID string) ([]Pricing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			id,
			COALESCE(variant_id, ''),
			size,
			price,
			is_default,
			free_drinks_included,
			free_drinks_quantity,
			free_drinks_list,
			offer_end_at
		FROM item_pricing
		WHERE item_id = $1
		ORDER BY position, size
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pricing
	for rows.Next() {
		var p Pricing
		if err := rows.Scan(
			&p.ID,
			&p.VariantID,
			&p.Size,
			&p.Price,
			&p.IsDefault,
			&p.FreeDrinksIncluded,
			&p.FreeDrinksQuantity,
			&p.FreeDrinksList,
			&p.OfferEndAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) supplements(ctx context.Context, itemID string) ([]Supplement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT COALESCE(id, ''), name, price, COALESCE(variant_id, '')
		FROM item_supplements
		WHERE item_id = $1
		ORDER BY name
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Supplement
	for rows.Next() {
		var s Supplement
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.VariantID); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) deals(ctx context.Context, itemID string) ([]Deal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, type, discount_value, COALESCE(variant_id, ''), status
		FROM item_deals
		WHERE item_id = $1
		  AND status = 'APPROVED'
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Deal
	for rows.Next() {
		var d Deal
		if err := rows.Scan(&d.ID, &d.Type, &d.DiscountValue, &d.VariantID, &d.Status); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// --------------------------------------------------
// FETCH DRINKS (category = 'drink')
// --------------------------------------------------
func (r *PostgresRepository) FetchDrinks(
	ctx context.Context,
	restaurantID string,
) ([]Drink, error) {

	rows, err := r.db.Query(ctx, `
		SELECT id, name, COALESCE(size, ''), price
		FROM menu_items
		WHERE restaurant_id = $1
		  AND category = 'drink'
		ORDER BY name
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drinks []Drink
	for rows.Next() {
		var d Drink
		if err := rows.Scan(&d.ID, &d.Name, &d.Size, &d.Price); err != nil {
			return nil, err
		}
		drinks = append(drinks, d)
	}
	return drinks, rows.Err()
}

// --------------------------------------------------
// SEED (used by cmd/catalog-seed)
// --------------------------------------------------

// SaveItem replaces an item and all of its child rows atomically.
func (r *PostgresRepository) SaveItem(ctx context.Context, m *Model, category string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO menu_items (id, restaurant_id, name, category, is_limited_offer, ingredients)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    category = EXCLUDED.category,
		    is_limited_offer = EXCLUDED.is_limited_offer,
		    ingredients = EXCLUDED.ingredients
	`, m.ItemID, m.RestaurantID, m.Name, category, m.IsLimitedOffer, m.Ingredients)
	if err != nil {
		return err
	}

	for _, table := range []string{"item_variants", "item_pricing", "item_supplements", "item_deals"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE item_id = $1", m.ItemID); err != nil {
			return err
		}
	}

	for i, v := range m.Variants {
		if _, err := tx.Exec(ctx, `
			INSERT INTO item_variants (id, item_id, name, description, position)
			VALUES ($1, $2, $3, $4, $5)
		`, v.ID, m.ItemID, v.Name, v.Description, i); err != nil {
			return err
		}
	}

	for i, p := range m.Pricing {
		if _, err := tx.Exec(ctx, `
			INSERT INTO item_pricing (
				id, item_id, variant_id, size, price, is_default,
				free_drinks_included, free_drinks_quantity, free_drinks_list,
				offer_end_at, position
			)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11)
		`, p.ID, m.ItemID, p.VariantID, p.Size, p.Price, p.IsDefault,
			p.FreeDrinksIncluded, p.FreeDrinksQuantity, p.FreeDrinksList,
			p.OfferEndAt, i); err != nil {
			return err
		}
	}

	for _, s := range m.Supplements {
		if _, err := tx.Exec(ctx, `
			INSERT INTO item_supplements (id, item_id, variant_id, name, price)
			VALUES (NULLIF($1, ''), $2, NULLIF($3, ''), $4, $5)
		`, s.ID, m.ItemID, s.VariantID, s.Name, s.Price); err != nil {
			return err
		}
	}

	for _, d := range m.Deals {
		if _, err := tx.Exec(ctx, `
			INSERT INTO item_deals (id, item_id, variant_id, type, discount_value, status)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		`, d.ID, m.ItemID, d.VariantID, d.Type, d.DiscountValue, d.Status); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// SaveDrink upserts a drinks-category menu item.
func (r *PostgresRepository) SaveDrink(ctx context.Context, restaurantID string, d Drink) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO menu_items (id, restaurant_id, name, category, size, price)
		VALUES ($1, $2, $3, 'drink', NULLIF($4, ''), $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    size = EXCLUDED.size,
		    price = EXCLUDED.price
	`, d.ID, restaurantID, d.Name, d.Size, d.Price)
	return err
}
