// internal/adapters/out/db/product_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	productdom "storefront/internal/domain/product"
)

type ProductRepositoryPG struct {
	DB *sql.DB
}

func NewProductRepositoryPG(db *sql.DB) *ProductRepositoryPG {
	return &ProductRepositoryPG{DB: db}
}

const productColumns = `id, name, description, price, image_url, origin_country, vendor, created_at`

func (r *ProductRepositoryPG) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}
	run := r.DB
	row := run.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}
	return p, nil
}

// Add lets the database generate the id.
func (r *ProductRepositoryPG) Add(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	run := r.DB
	const q = `
INSERT INTO products (
  id, name, description, price, image_url, origin_country, vendor, created_at
) VALUES (
  gen_random_uuid()::text, $1, $2, $3, $4, $5, $6, $7
)
RETURNING ` + productColumns
	row := run.QueryRowContext(ctx, q,
		p.Name,
		p.Description,
		p.Price,
		p.ImageURL,
		p.OriginCountry,
		p.Vendor,
		p.CreatedAt.UTC(),
	)
	return scanProduct(row)
}

func (r *ProductRepositoryPG) ListAll(ctx context.Context) ([]productdom.Product, error) {
	run := r.DB
	rows, err := run.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []productdom.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepositoryPG) SetVendor(ctx context.Context, id, vendor string) error {
	run := r.DB
	res, err := run.ExecContext(ctx,
		`UPDATE products SET vendor = $2 WHERE id = $1`,
		strings.TrimSpace(id), strings.TrimSpace(vendor),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return productdom.ErrNotFound
	}
	return nil
}

func scanProduct(s RowScanner) (productdom.Product, error) {
	var p productdom.Product
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.OriginCountry,
		&p.Vendor,
		&p.CreatedAt,
	); err != nil {
		return productdom.Product{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
