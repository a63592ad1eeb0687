// internal/adapters/out/db/cart_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	cartdom "storefront/internal/domain/cart"
)

// CartRepositoryPG stores one row per uid with items as jsonb.
type CartRepositoryPG struct {
	DB *sql.DB
}

func NewCartRepositoryPG(db *sql.DB) *CartRepositoryPG {
	return &CartRepositoryPG{DB: db}
}

func (r *CartRepositoryPG) GetByUID(ctx context.Context, uid string) (*cartdom.Cart, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, fmt.Errorf("cart uid is required")
	}
	run := r.DB
	const q = `SELECT items, updated_at FROM carts WHERE uid = $1`

	var (
		raw []byte
		c   = cartdom.Cart{ID: uid}
	)
	if err := run.QueryRowContext(ctx, q, uid).Scan(&raw, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var items map[string]int
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	c.Items = cartdom.Normalize(items)
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func (r *CartRepositoryPG) Replace(ctx context.Context, c *cartdom.Cart) error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("cart uid is required")
	}
	raw, err := json.Marshal(cartdom.Normalize(c.Items))
	if err != nil {
		return err
	}
	run := r.DB
	const q = `
INSERT INTO carts (uid, items, updated_at)
VALUES ($1, $2::jsonb, $3)
ON CONFLICT (uid) DO UPDATE SET
  items      = EXCLUDED.items,
  updated_at = EXCLUDED.updated_at`
	_, err = run.ExecContext(ctx, q, strings.TrimSpace(c.ID), string(raw), c.UpdatedAt.UTC())
	return err
}
