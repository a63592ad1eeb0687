// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "storefront/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
// Prices are stored as plain numbers so that other clients of the
// collection keep reading them.
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return productdom.Product{}, productdom.ErrNotFound
	}
	if err != nil {
		return productdom.Product{}, err
	}
	return docToProduct(snap), nil
}

// Add stores p under a generated id.
func (r *ProductRepositoryFS) Add(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	ref, _, err := r.col().Add(ctx, productToDoc(p))
	if err != nil {
		return productdom.Product{}, err
	}
	p.ID = ref.ID
	return p, nil
}

func (r *ProductRepositoryFS) ListAll(ctx context.Context) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	it := r.col().Documents(ctx)
	defer it.Stop()

	var out []productdom.Product
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, docToProduct(snap))
	}
	return out, nil
}

func (r *ProductRepositoryFS) SetVendor(ctx context.Context, id, vendor string) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.ErrNotFound
	}
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "vendor", Value: strings.TrimSpace(vendor)},
	})
	if status.Code(err) == codes.NotFound {
		return productdom.ErrNotFound
	}
	return err
}

// ========================
// mapping
// ========================

func productToDoc(p productdom.Product) map[string]any {
	m := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.InexactFloat64(),
		"imageUrl":    p.ImageURL,
		"createdAt":   p.CreatedAt.UTC(),
	}
	if p.OriginCountry != "" {
		m["originCountry"] = p.OriginCountry
	}
	if p.Vendor != "" {
		m["vendor"] = p.Vendor
	}
	return m
}

func docToProduct(snap *firestore.DocumentSnapshot) productdom.Product {
	data := snap.Data()
	p := productdom.Product{
		ID:            snap.Ref.ID,
		Name:          asString(data["name"]),
		Description:   asString(data["description"]),
		ImageURL:      asString(data["imageUrl"]),
		OriginCountry: firstString(data, "originCountry", "origincountry"),
		Vendor:        asString(data["vendor"]),
		Price:         decimal.NewFromFloat(cast.ToFloat64(data["price"])),
	}
	if t, ok := asTime(data["createdAt"]); ok {
		p.CreatedAt = t
	}
	return p
}

func firstString(data map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(data[k]); s != "" {
			return s
		}
	}
	return ""
}
