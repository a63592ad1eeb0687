package bolt

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"

	productdom "storefront/internal/domain/product"
)

type productRecord struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	OriginCountry string          `json:"originCountry,omitempty"`
	Vendor        string          `json:"vendor,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (rec productRecord) toDomain(id string) productdom.Product {
	return productdom.Product{
		ID:            id,
		Name:          rec.Name,
		Description:   rec.Description,
		Price:         rec.Price,
		ImageURL:      rec.ImageURL,
		OriginCountry: rec.OriginCountry,
		Vendor:        rec.Vendor,
		CreatedAt:     rec.CreatedAt,
	}
}

// ProductRepository implements product.Repository on a Store.
// Ids are random UUIDs, so ListAll returns products in no particular order.
type ProductRepository struct {
	store *Store
}

func NewProductRepository(s *Store) *ProductRepository {
	return &ProductRepository{store: s}
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if err := r.store.ready(ctx); err != nil {
		return productdom.Product{}, err
	}
	id = strings.TrimSpace(id)

	var rec productRecord
	var found bool
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = get(tx, productsBucket, id, &rec)
		return err
	})
	if err != nil {
		return productdom.Product{}, err
	}
	if !found || id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return rec.toDomain(id), nil
}

func (r *ProductRepository) Add(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if err := r.store.ready(ctx); err != nil {
		return productdom.Product{}, err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.ID = uuid.NewString()
	rec := productRecord{
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		OriginCountry: p.OriginCountry,
		Vendor:        p.Vendor,
		CreatedAt:     p.CreatedAt.UTC(),
	}
	err := r.store.db.Update(func(tx *bbolt.Tx) error {
		return put(tx, productsBucket, p.ID, rec)
	})
	if err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]productdom.Product, error) {
	if err := r.store.ready(ctx); err != nil {
		return nil, err
	}
	var out []productdom.Product
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		return forEach(tx, productsBucket, func(id string, rec *productRecord) {
			out = append(out, rec.toDomain(id))
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepository) SetVendor(ctx context.Context, id, vendor string) error {
	if err := r.store.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	return r.store.db.Update(func(tx *bbolt.Tx) error {
		var rec productRecord
		found, err := get(tx, productsBucket, id, &rec)
		if err != nil {
			return err
		}
		if !found || id == "" {
			return productdom.ErrNotFound
		}
		rec.Vendor = strings.TrimSpace(vendor)
		return put(tx, productsBucket, id, rec)
	})
}
