package cart

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ForCustomer(customerID string) Cart {
	return &postgresCart{db: s.db, customerID: customerID}
}

type postgresCart struct {
	db         *pgxpool.Pool
	customerID string
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// --------------------------------------------------
// APPEND LINE
// --------------------------------------------------
func (c *postgresCart) Append(ctx context.Context, line LineItem) error {
	return c.insert(ctx, c.db, line)
}

func (c *postgresCart) insert(ctx context.Context, db execer, line LineItem) error {
	custom, err := json.Marshal(line.Customizations)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO cart_items (
			id,
			customer_id,
			item_id,
			variant_id,
			quantity,
			unit_price,
			extras_price,
			discount,
			total_price,
			customizations,
			special_instructions,
			created_at
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12)
	`,
		line.ID,
		c.customerID,
		line.ItemID,
		line.VariantID,
		line.Quantity,
		line.UnitPrice,
		line.ExtrasPrice,
		line.Discount,
		line.TotalPrice,
		custom,
		line.SpecialInstructions,
		line.CreatedAt,
	)
	return err
}

// --------------------------------------------------
// LIST LINES (oldest first)
// --------------------------------------------------
func (c *postgresCart) Items(ctx context.Context) ([]LineItem, error) {
	rows, err := c.db.Query(ctx, `
		SELECT
			id::text,
			item_id,
			COALESCE(variant_id, ''),
			quantity,
			unit_price,
			extras_price,
			discount,
			total_price,
			customizations,
			COALESCE(special_instructions, ''),
			created_at
		FROM cart_items
		WHERE customer_id = $1
		ORDER BY created_at ASC, seq ASC
	`, c.customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var (
			l   LineItem
			raw []byte
		)
		if err := rows.Scan(
			&l.ID,
			&l.ItemID,
			&l.VariantID,
			&l.Quantity,
			&l.UnitPrice,
			&l.ExtrasPrice,
			&l.Discount,
			&l.TotalPrice,
			&raw,
			&l.SpecialInstructions,
			&l.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &l.Customizations); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

// --------------------------------------------------
// REMOVE LINE
// --------------------------------------------------
func (c *postgresCart) Remove(ctx context.Context, lineID string) error {
	return c.delete(ctx, c.db, lineID)
}

func (c *postgresCart) delete(ctx context.Context, db execer, lineID string) error {
	cmd, err := db.Exec(ctx, `
		DELETE FROM cart_items
		WHERE id = $1
		  AND customer_id = $2
	`, lineID, c.customerID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

// --------------------------------------------------
// REPLACE LINES (edit confirm)
// --------------------------------------------------
func (c *postgresCart) Replace(ctx context.Context, remove []string, add []LineItem) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, id := range remove {
		if err := c.delete(ctx, tx, id); err != nil {
			return err
		}
	}
	for _, line := range add {
		if err := c.insert(ctx, tx, line); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
